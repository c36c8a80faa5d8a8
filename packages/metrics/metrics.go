package metrics

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"

	"github.com/abdul-hamid-achik/fetchkit/packages/fetch"
)

// Collector aggregates exchange outcomes and latencies.
type Collector struct {
	mu sync.RWMutex

	// Counters
	totalRequests   atomic.Int64
	successRequests atomic.Int64
	errorRequests   atomic.Int64
	timeoutRequests atomic.Int64

	// Latency histogram (in microseconds for precision)
	histogram *hdrhistogram.Histogram

	// Status code distribution
	statusCodes map[int]int64

	startTime time.Time
}

// Snapshot is a point-in-time view of collected metrics.
type Snapshot struct {
	TotalRequests int64
	SuccessCount  int64
	ErrorCount    int64
	TimeoutCount  int64
	StatusCodes   map[int]int64
	MinLatency    time.Duration
	MaxLatency    time.Duration
	MeanLatency   time.Duration
	P50           time.Duration
	P95           time.Duration
	P99           time.Duration
	Elapsed       time.Duration
	RPS           float64
}

// NewCollector creates an empty Collector.
func NewCollector() *Collector {
	return &Collector{
		// Histogram: 1us to 60s range, 3 significant digits
		histogram:   hdrhistogram.New(1, 60_000_000, 3),
		statusCodes: make(map[int]int64),
		startTime:   time.Now(),
	}
}

// Record records one exchange outcome. A non-nil err counts as a failure
// and statusCode is ignored; timeouts are tracked separately.
func (c *Collector) Record(duration time.Duration, statusCode int, err error) {
	c.totalRequests.Add(1)

	if err != nil {
		c.errorRequests.Add(1)
		if errors.Is(err, context.DeadlineExceeded) {
			c.timeoutRequests.Add(1)
		}
		return
	}

	if statusCode >= 200 && statusCode < 300 {
		c.successRequests.Add(1)
	} else {
		c.errorRequests.Add(1)
	}

	// Record latency in microseconds
	latencyUs := duration.Microseconds()
	if latencyUs < 1 {
		latencyUs = 1
	}
	if latencyUs > 60_000_000 {
		latencyUs = 60_000_000
	}

	c.mu.Lock()
	_ = c.histogram.RecordValue(latencyUs)
	c.statusCodes[statusCode]++
	c.mu.Unlock()
}

// RecordFailure records an exchange that never produced a response.
func (c *Collector) RecordFailure(err error) {
	c.Record(0, 0, err)
}

// AfterHook returns an after hook that records every observed response and
// passes the body through unchanged. Failures that never produce a
// response are not seen by after hooks; pair with RecordFailure or use
// Doer to count those.
func (c *Collector) AfterHook() fetch.AfterHook {
	return func(ctx context.Context, resp *fetch.Response, body any) (any, error) {
		c.Record(resp.Duration, resp.StatusCode, nil)
		return body, nil
	}
}

// Doer wraps a transport so every exchange is recorded, including
// transport-level failures. Do not combine with AfterHook on the same
// collector, or responses are counted twice.
func (c *Collector) Doer(next fetch.Doer) fetch.Doer {
	if next == nil {
		next = http.DefaultClient
	}
	return &collectingDoer{collector: c, next: next}
}

type collectingDoer struct {
	collector *Collector
	next      fetch.Doer
}

func (d *collectingDoer) Do(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := d.next.Do(req)
	duration := time.Since(start)

	if err != nil {
		d.collector.Record(duration, 0, err)
		return nil, err
	}

	d.collector.Record(duration, resp.StatusCode, nil)
	return resp, nil
}

// Snapshot captures the current state of the collector.
func (c *Collector) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	total := c.totalRequests.Load()
	elapsed := time.Since(c.startTime)

	rps := 0.0
	if seconds := elapsed.Seconds(); seconds > 0 {
		rps = float64(total) / seconds
	}

	statusCodes := make(map[int]int64, len(c.statusCodes))
	for code, count := range c.statusCodes {
		statusCodes[code] = count
	}

	snapshot := Snapshot{
		TotalRequests: total,
		SuccessCount:  c.successRequests.Load(),
		ErrorCount:    c.errorRequests.Load(),
		TimeoutCount:  c.timeoutRequests.Load(),
		StatusCodes:   statusCodes,
		Elapsed:       elapsed,
		RPS:           rps,
	}

	if c.histogram.TotalCount() > 0 {
		snapshot.MinLatency = time.Duration(c.histogram.Min()) * time.Microsecond
		snapshot.MaxLatency = time.Duration(c.histogram.Max()) * time.Microsecond
		snapshot.MeanLatency = time.Duration(c.histogram.Mean()) * time.Microsecond
		snapshot.P50 = time.Duration(c.histogram.ValueAtQuantile(50)) * time.Microsecond
		snapshot.P95 = time.Duration(c.histogram.ValueAtQuantile(95)) * time.Microsecond
		snapshot.P99 = time.Duration(c.histogram.ValueAtQuantile(99)) * time.Microsecond
	}

	return snapshot
}

// Reset clears all collected data and restarts the elapsed clock.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.totalRequests.Store(0)
	c.successRequests.Store(0)
	c.errorRequests.Store(0)
	c.timeoutRequests.Store(0)
	c.histogram.Reset()
	c.statusCodes = make(map[int]int64)
	c.startTime = time.Now()
}
