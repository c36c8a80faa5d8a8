package record

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/fetchkit/packages/fetch"
)

// Exchange is one recorded request/response pair.
type Exchange struct {
	Timestamp       time.Time         `json:"timestamp"`
	Method          string            `json:"method"`
	URL             string            `json:"url"`
	Path            string            `json:"path"`
	RequestHeaders  map[string]string `json:"request_headers,omitempty"`
	RequestBody     string            `json:"request_body,omitempty"`
	StatusCode      int               `json:"status_code"`
	Status          string            `json:"status"`
	ResponseHeaders map[string]string `json:"response_headers,omitempty"`
	ResponseBody    string            `json:"response_body,omitempty"`
	ContentType     string            `json:"content_type,omitempty"`
	DurationMs      float64           `json:"duration_ms"`
}

// Recorder captures exchanges flowing through a wrapped transport.
type Recorder struct {
	store    Store
	exclude  []string
	sanitize []string // Headers to redact
	maxBody  int
}

// Option is a functional option for Recorder.
type Option func(*Recorder)

// WithStore directs exchanges somewhere other than the in-memory store.
func WithStore(store Store) Option {
	return func(r *Recorder) {
		r.store = store
	}
}

// WithExclude sets path fragments to exclude from recording.
func WithExclude(paths []string) Option {
	return func(r *Recorder) {
		r.exclude = paths
	}
}

// WithSanitize replaces the default list of headers whose values are
// masked in the transcript.
func WithSanitize(headers []string) Option {
	return func(r *Recorder) {
		r.sanitize = headers
	}
}

// WithMaxBody caps stored request and response bodies at n bytes.
// Zero keeps bodies whole.
func WithMaxBody(n int) Option {
	return func(r *Recorder) {
		r.maxBody = n
	}
}

// NewRecorder creates a Recorder backed by an in-memory store.
func NewRecorder(opts ...Option) *Recorder {
	r := &Recorder{
		store:    NewMemoryStore(),
		sanitize: []string{"Authorization", "Cookie", "X-Api-Key", "Api-Key"},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Doer wraps a transport so every completed exchange is appended to the
// store. Transport-level failures produce no response and are not recorded.
func (r *Recorder) Doer(next fetch.Doer) fetch.Doer {
	if next == nil {
		next = http.DefaultClient
	}
	return &recordingDoer{recorder: r, next: next}
}

type recordingDoer struct {
	recorder *Recorder
	next     fetch.Doer
}

func (d *recordingDoer) Do(req *http.Request) (*http.Response, error) {
	if d.recorder.shouldExclude(req.URL.Path) {
		return d.next.Do(req)
	}

	var reqBody []byte
	if req.Body != nil {
		reqBody, _ = io.ReadAll(req.Body)
		req.Body = io.NopCloser(bytes.NewReader(reqBody))
	}

	start := time.Now()
	resp, err := d.next.Do(req)
	if err != nil {
		return nil, err
	}

	var respBody []byte
	if resp.Body != nil {
		respBody, _ = io.ReadAll(resp.Body)
		resp.Body = io.NopCloser(bytes.NewReader(respBody))
	}

	exchange := Exchange{
		Timestamp:       start,
		Method:          req.Method,
		URL:             req.URL.String(),
		Path:            req.URL.Path,
		RequestHeaders:  d.recorder.sanitizeHeaders(req.Header),
		RequestBody:     clip(reqBody, d.recorder.maxBody),
		StatusCode:      resp.StatusCode,
		Status:          resp.Status,
		ResponseHeaders: d.recorder.sanitizeHeaders(resp.Header),
		ResponseBody:    clip(respBody, d.recorder.maxBody),
		ContentType:     resp.Header.Get("Content-Type"),
		DurationMs:      float64(time.Since(start).Microseconds()) / 1000,
	}
	_ = d.recorder.store.Append(exchange)

	return resp, nil
}

// Exchanges returns all recorded exchanges in order.
func (r *Recorder) Exchanges() ([]Exchange, error) {
	return r.store.Recent(0)
}

// ExportJSON writes the recorded exchanges as indented JSON.
func (r *Recorder) ExportJSON(w io.Writer) error {
	exchanges, err := r.store.Recent(0)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(exchanges, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Clear drops all recorded exchanges.
func (r *Recorder) Clear() error {
	return r.store.Clear()
}

// Close releases the underlying store.
func (r *Recorder) Close() error {
	return r.store.Close()
}

func (r *Recorder) shouldExclude(path string) bool {
	for _, exclude := range r.exclude {
		if strings.Contains(path, exclude) {
			return true
		}
	}
	return false
}

func (r *Recorder) sanitizeHeaders(h http.Header) map[string]string {
	result := make(map[string]string)
	for key, values := range h {
		if len(values) == 0 {
			continue
		}
		if r.shouldRedact(key) {
			result[key] = "{{" + strings.ToUpper(strings.ReplaceAll(key, "-", "_")) + "}}"
		} else {
			result[key] = values[0]
		}
	}
	return result
}

func (r *Recorder) shouldRedact(name string) bool {
	for _, s := range r.sanitize {
		if strings.EqualFold(name, s) {
			return true
		}
	}
	return false
}

func clip(b []byte, max int) string {
	if max > 0 && len(b) > max {
		return string(b[:max])
	}
	return string(b)
}
