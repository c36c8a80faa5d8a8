package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"
)

// Fetch executes one request and interprets the response by content type.
//
// The call proceeds in fixed stages: options are normalized (missing
// timeout filled from the client), Data is encoded into the body with its
// Content-Type header, Params are attached to the URL, the before hook
// runs, the request is dispatched under a deadline, and the response is
// decoded. The timeout, before hook and after hook in effect are the ones
// present when the call starts; a before hook may replace the URL and
// options for dispatch, but it cannot retarget those three.
//
// The deadline is the shorter of the options timeout and any deadline
// already carried by ctx. It covers dispatch and body read only; hooks run
// outside it on the caller's context.
//
// Results depend on the response: JSON bodies decode into generic values
// (map[string]any, []any, ...) and pass through the after hook, whose
// return value becomes the result. Octet-stream bodies return *Download
// without invoking the after hook. Any other content type on a 2xx
// response fails with MsgUnsupportedContentType. Non-2xx responses invoke
// the after hook with a nil body, then fail with MsgStatusOutOfRange
// carrying the status.
//
// All failures surface as *Error except hook errors, which propagate
// unchanged.
func (c *Client) Fetch(ctx context.Context, url string, opts *Options) (any, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	opts = opts.Clone()
	if opts.Timeout <= 0 {
		opts.Timeout = c.timeout
	}

	timeout := opts.Timeout
	before := opts.Before
	if before == nil {
		before = c.before
	}
	after := opts.After
	if after == nil {
		after = c.after
	}

	if opts.Data != nil {
		body, contentType, err := opts.Data.encode()
		if err != nil {
			return nil, wrapError(err)
		}
		opts.Body = body
		opts.Headers["Content-Type"] = contentType
	}

	url = AppendParams(url, opts.Params)

	if before != nil {
		nextURL, nextOpts, err := before(ctx, url, opts)
		if err != nil {
			return nil, err
		}
		if nextURL != "" && nextOpts != nil {
			url, opts = nextURL, nextOpts
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := c.dispatch(callCtx, url, opts)
	// Disarm the timer the moment the exchange settles; decoding and the
	// after hook run on the caller's context.
	cancel()
	if err != nil {
		return nil, wrapError(err)
	}

	return interpret(ctx, resp, after)
}

// dispatch sends the request and reads the full body under callCtx.
func (c *Client) dispatch(callCtx context.Context, url string, opts *Options) (*Response, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if len(opts.Body) > 0 {
		body = bytes.NewReader(opts.Body)
	}

	req, err := http.NewRequestWithContext(callCtx, method, url, body)
	if err != nil {
		return nil, err
	}

	for key, value := range c.defaultHeaders {
		req.Header.Set(key, value)
	}
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	httpResp, err := c.transport.Do(req)
	duration := time.Since(start)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, err
	}

	headers := make(map[string]string, len(httpResp.Header))
	for key := range httpResp.Header {
		headers[key] = httpResp.Header.Get(key)
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Status:     httpResp.Status,
		Headers:    headers,
		Body:       respBody,
		Duration:   duration,
	}, nil
}

// interpret turns a settled response into the call's result.
func interpret(ctx context.Context, resp *Response, after AfterHook) (any, error) {
	if !resp.IsSuccess() {
		if after != nil {
			if _, err := after(ctx, resp, nil); err != nil {
				return nil, err
			}
		}
		return nil, statusError(resp)
	}

	switch {
	case resp.IsJSON():
		var body any
		if err := json.Unmarshal(resp.Body, &body); err != nil {
			return nil, wrapError(err)
		}
		if after != nil {
			return after(ctx, resp, body)
		}
		return body, nil

	case resp.IsBinary():
		// The after hook does not see binary results.
		return &Download{FileName: resp.fileName(), Data: resp.Body}, nil

	default:
		return nil, contentTypeError()
	}
}

// DefaultClient backs the package-level helpers.
var DefaultClient = NewClient()

// Fetch executes a request with DefaultClient.
func Fetch(ctx context.Context, url string, opts *Options) (any, error) {
	return DefaultClient.Fetch(ctx, url, opts)
}

// Get executes a GET request with DefaultClient.
func Get(ctx context.Context, url string, opts *Options) (any, error) {
	return DefaultClient.Get(ctx, url, opts)
}

// Post executes a POST request with DefaultClient.
func Post(ctx context.Context, url string, data Payload, opts *Options) (any, error) {
	return DefaultClient.Post(ctx, url, data, opts)
}

// Put executes a PUT request with DefaultClient.
func Put(ctx context.Context, url string, data Payload, opts *Options) (any, error) {
	return DefaultClient.Put(ctx, url, data, opts)
}

// Patch executes a PATCH request with DefaultClient.
func Patch(ctx context.Context, url string, data Payload, opts *Options) (any, error) {
	return DefaultClient.Patch(ctx, url, data, opts)
}

// Delete executes a DELETE request with DefaultClient.
func Delete(ctx context.Context, url string, opts *Options) (any, error) {
	return DefaultClient.Delete(ctx, url, opts)
}
