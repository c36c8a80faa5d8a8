package fetch

import (
	"context"
	"time"
)

// BeforeHook runs after request preparation and before transport dispatch.
// It receives the final URL (query string attached) and the prepared
// options. Returning a non-empty URL together with non-nil options replaces
// both; any other combination keeps the current values. An error aborts the
// call and reaches the caller unchanged.
type BeforeHook func(ctx context.Context, url string, opts *Options) (string, *Options, error)

// AfterHook runs once a response has arrived. On JSON successes body holds
// the decoded document and the hook's return value becomes the call's
// result. On non-2xx responses the hook runs with a nil body for its side
// effects only; the call still fails afterwards. An error aborts the call
// and reaches the caller unchanged.
type AfterHook func(ctx context.Context, resp *Response, body any) (any, error)

// Options configures a single request.
type Options struct {
	// Method is the HTTP method; empty means GET.
	Method string

	// Headers are merged over the client's default headers and win on
	// conflict.
	Headers map[string]string

	// Body is the raw outgoing body. It is overwritten when Data is set.
	Body []byte

	// Data is the structured payload. It is encoded into Body, and the
	// matching Content-Type header is set, before the before hook runs.
	Data Payload

	// Params are serialized and attached to the URL query string.
	Params Params

	// Timeout bounds the whole exchange; zero or negative means the
	// client's default.
	Timeout time.Duration

	// Before replaces the client-level before hook for this call.
	Before BeforeHook

	// After replaces the client-level after hook for this call.
	After AfterHook
}

// Clone copies the options with a fresh header map and params slice. Hooks
// that modify options should return a modified clone rather than mutate the
// value they were handed.
func (o *Options) Clone() *Options {
	out := Options{}
	if o != nil {
		out = *o
	}
	headers := make(map[string]string, len(out.Headers)+1)
	for k, v := range out.Headers {
		headers[k] = v
	}
	out.Headers = headers
	if len(out.Params) > 0 {
		out.Params = append(Params(nil), out.Params...)
	}
	return &out
}

// ChainBefore composes before hooks left to right. Each hook observes the
// URL and options produced by the one before it; the first error stops the
// chain.
func ChainBefore(hooks ...BeforeHook) BeforeHook {
	return func(ctx context.Context, url string, opts *Options) (string, *Options, error) {
		for _, hook := range hooks {
			if hook == nil {
				continue
			}
			nextURL, nextOpts, err := hook(ctx, url, opts)
			if err != nil {
				return "", nil, err
			}
			if nextURL != "" && nextOpts != nil {
				url, opts = nextURL, nextOpts
			}
		}
		return url, opts, nil
	}
}

// ChainAfter composes after hooks left to right. Each hook observes the
// value produced by the one before it; the first error stops the chain.
func ChainAfter(hooks ...AfterHook) AfterHook {
	return func(ctx context.Context, resp *Response, body any) (any, error) {
		result := body
		for _, hook := range hooks {
			if hook == nil {
				continue
			}
			var err error
			result, err = hook(ctx, resp, result)
			if err != nil {
				return nil, err
			}
		}
		return result, nil
	}
}
