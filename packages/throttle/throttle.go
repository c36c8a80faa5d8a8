// Package throttle rate-limits outgoing fetch requests.
package throttle

import (
	"context"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/abdul-hamid-achik/fetchkit/packages/fetch"
)

// Limiter gates request dispatch by sustained rate and, optionally, by
// in-flight concurrency.
type Limiter struct {
	limiter *rate.Limiter
	sem     chan struct{} // semaphore for max concurrency
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithBurst allows short bursts above the sustained rate.
func WithBurst(n int) Option {
	return func(l *Limiter) {
		if l.limiter != nil && n > 0 {
			l.limiter.SetBurst(n)
		}
	}
}

// WithMaxInFlight caps how many requests may be in flight at once.
func WithMaxInFlight(n int) Option {
	return func(l *Limiter) {
		if n > 0 {
			l.sem = make(chan struct{}, n)
		}
	}
}

// New creates a Limiter sustaining perSecond requests per second. A zero or
// negative rate leaves the rate unbounded, which is useful when only
// WithMaxInFlight matters.
func New(perSecond float64, opts ...Option) *Limiter {
	l := &Limiter{}
	if perSecond > 0 {
		l.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Acquire blocks until a dispatch slot is available or ctx is done. Release
// must be called afterwards when a concurrency cap is set.
func (l *Limiter) Acquire(ctx context.Context) error {
	if l.sem != nil {
		select {
		case l.sem <- struct{}{}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if l.limiter != nil {
		if err := l.limiter.Wait(ctx); err != nil {
			if l.sem != nil {
				<-l.sem
			}
			return err
		}
	}

	return nil
}

// Release returns a concurrency slot. It is a no-op without a cap.
func (l *Limiter) Release() {
	if l.sem != nil {
		<-l.sem
	}
}

// Hook returns a before hook that waits for the rate gate. Hooks run once
// per call and cannot observe completion, so the concurrency cap does not
// apply here; use Doer or Acquire/Release for that.
func (l *Limiter) Hook() fetch.BeforeHook {
	return func(ctx context.Context, url string, opts *fetch.Options) (string, *fetch.Options, error) {
		if l.limiter != nil {
			if err := l.limiter.Wait(ctx); err != nil {
				return "", nil, err
			}
		}
		return "", nil, nil
	}
}

// Doer wraps a transport so both the rate gate and the concurrency cap
// cover the exchange.
func (l *Limiter) Doer(next fetch.Doer) fetch.Doer {
	if next == nil {
		next = http.DefaultClient
	}
	return &limitedDoer{limiter: l, next: next}
}

type limitedDoer struct {
	limiter *Limiter
	next    fetch.Doer
}

func (d *limitedDoer) Do(req *http.Request) (*http.Response, error) {
	if err := d.limiter.Acquire(req.Context()); err != nil {
		return nil, err
	}
	defer d.limiter.Release()
	return d.next.Do(req)
}
