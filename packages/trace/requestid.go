package trace

import (
	"context"

	"github.com/google/uuid"

	"github.com/abdul-hamid-achik/fetchkit/packages/fetch"
)

// HeaderRequestID carries the per-request correlation ID.
const HeaderRequestID = "X-Request-ID"

// RequestID returns a before hook that stamps each request with a fresh
// UUID. A request ID already present in the options is kept.
func RequestID() fetch.BeforeHook {
	return func(ctx context.Context, url string, opts *fetch.Options) (string, *fetch.Options, error) {
		if opts.Headers[HeaderRequestID] != "" {
			return "", nil, nil
		}
		next := opts.Clone()
		next.Headers[HeaderRequestID] = uuid.NewString()
		return url, next, nil
	}
}
