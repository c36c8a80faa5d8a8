package fetch

import (
	"context"
	"crypto/tls"
	"net/http"
	neturl "net/url"
	"time"
)

const (
	// DefaultTimeout bounds an exchange when neither the client nor the
	// request options specify one.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxRedirects is the redirect ceiling for clients that follow
	// redirects.
	DefaultMaxRedirects = 10

	defaultMaxIdleConns        = 100
	defaultMaxIdleConnsPerHost = 10
	defaultIdleConnTimeout     = 90 * time.Second
)

// Content types this layer understands.
const (
	ContentTypeJSON   = "application/json"
	ContentTypeBinary = "application/octet-stream"
)

// Doer issues a single HTTP request. *http.Client satisfies it; transport
// middleware and tests substitute their own.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client executes requests with shared defaults and hooks. The zero value
// is not usable; construct one with NewClient.
type Client struct {
	transport       Doer
	timeout         time.Duration
	followRedirects bool
	maxRedirects    int
	validateSSL     bool
	proxyURL        string
	defaultHeaders  map[string]string
	before          BeforeHook
	after           AfterHook
}

// ClientOption configures a Client during construction.
type ClientOption func(*Client)

// WithTimeout sets the default per-request timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithFollowRedirects controls whether redirects are followed. When
// disabled the redirect response itself is returned.
func WithFollowRedirects(follow bool) ClientOption {
	return func(c *Client) {
		c.followRedirects = follow
	}
}

// WithMaxRedirects caps how many redirects are followed before the last
// response is returned as-is.
func WithMaxRedirects(max int) ClientOption {
	return func(c *Client) {
		c.maxRedirects = max
	}
}

// WithValidateSSL controls TLS certificate verification.
func WithValidateSSL(validate bool) ClientOption {
	return func(c *Client) {
		c.validateSSL = validate
	}
}

// WithProxy routes requests through the given proxy URL.
func WithProxy(proxyURL string) ClientOption {
	return func(c *Client) {
		c.proxyURL = proxyURL
	}
}

// WithDefaultHeader adds one header sent on every request unless the
// request options override it.
func WithDefaultHeader(key, value string) ClientOption {
	return func(c *Client) {
		c.defaultHeaders[key] = value
	}
}

// WithDefaultHeaders merges headers sent on every request unless the
// request options override them.
func WithDefaultHeaders(headers map[string]string) ClientOption {
	return func(c *Client) {
		for k, v := range headers {
			c.defaultHeaders[k] = v
		}
	}
}

// WithTransport replaces the underlying transport. Redirect, proxy and TLS
// options only apply to the built-in transport.
func WithTransport(transport Doer) ClientOption {
	return func(c *Client) {
		c.transport = transport
	}
}

// WithBefore sets the client-level before hook.
func WithBefore(hook BeforeHook) ClientOption {
	return func(c *Client) {
		c.before = hook
	}
}

// WithAfter sets the client-level after hook.
func WithAfter(hook AfterHook) ClientOption {
	return func(c *Client) {
		c.after = hook
	}
}

// NewClient creates a Client with sensible defaults: a 30 second timeout,
// redirects followed up to DefaultMaxRedirects, and TLS verification on.
func NewClient(opts ...ClientOption) *Client {
	client := &Client{
		timeout:         DefaultTimeout,
		followRedirects: true,
		maxRedirects:    DefaultMaxRedirects,
		validateSSL:     true,
		defaultHeaders:  make(map[string]string),
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.transport == nil {
		client.transport = client.buildHTTPClient()
	}

	return client
}

func (c *Client) buildHTTPClient() *http.Client {
	transport := &http.Transport{
		MaxIdleConns:        defaultMaxIdleConns,
		MaxIdleConnsPerHost: defaultMaxIdleConnsPerHost,
		IdleConnTimeout:     defaultIdleConnTimeout,
	}

	if !c.validateSSL {
		transport.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: true,
		}
	}

	if c.proxyURL != "" {
		if proxyURL, err := neturl.Parse(c.proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	}

	checkRedirect := func(req *http.Request, via []*http.Request) error {
		if !c.followRedirects {
			return http.ErrUseLastResponse
		}
		if len(via) >= c.maxRedirects {
			return http.ErrUseLastResponse
		}
		return nil
	}

	// The per-call context carries the deadline, so the http.Client itself
	// has no timeout.
	return &http.Client{
		Transport:     transport,
		CheckRedirect: checkRedirect,
	}
}

// Get executes a GET request.
func (c *Client) Get(ctx context.Context, url string, opts *Options) (any, error) {
	return c.fetchMethod(ctx, http.MethodGet, url, nil, opts)
}

// Post executes a POST request carrying data as the body.
func (c *Client) Post(ctx context.Context, url string, data Payload, opts *Options) (any, error) {
	return c.fetchMethod(ctx, http.MethodPost, url, data, opts)
}

// Put executes a PUT request carrying data as the body.
func (c *Client) Put(ctx context.Context, url string, data Payload, opts *Options) (any, error) {
	return c.fetchMethod(ctx, http.MethodPut, url, data, opts)
}

// Patch executes a PATCH request carrying data as the body.
func (c *Client) Patch(ctx context.Context, url string, data Payload, opts *Options) (any, error) {
	return c.fetchMethod(ctx, http.MethodPatch, url, data, opts)
}

// Delete executes a DELETE request.
func (c *Client) Delete(ctx context.Context, url string, opts *Options) (any, error) {
	return c.fetchMethod(ctx, http.MethodDelete, url, nil, opts)
}

func (c *Client) fetchMethod(ctx context.Context, method, url string, data Payload, opts *Options) (any, error) {
	opts = opts.Clone()
	opts.Method = method
	if data != nil {
		opts.Data = data
	}
	return c.Fetch(ctx, url, opts)
}
