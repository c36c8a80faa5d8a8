package fetch

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// Response carries the status line, headers and fully read body of one
// exchange. Hooks receive it for inspection; callers normally only see the
// decoded result returned by Fetch.
type Response struct {
	StatusCode int
	Status     string
	Headers    map[string]string
	Body       []byte
	Duration   time.Duration
}

// Download is the result envelope for octet-stream responses. FileName is
// taken from the Content-Disposition header and is empty when the server
// did not suggest one.
type Download struct {
	FileName string
	Data     []byte
}

// BodyString returns the response body as a string.
func (r *Response) BodyString() string {
	return string(r.Body)
}

// BodyJSON unmarshals the response body into v.
func (r *Response) BodyJSON(v any) error {
	return json.Unmarshal(r.Body, v)
}

// Get queries a JSON body with a gjson path, e.g. "items.0.id".
func (r *Response) Get(path string) gjson.Result {
	return gjson.GetBytes(r.Body, path)
}

// Header returns the value of the named header, case-insensitively.
func (r *Response) Header(name string) string {
	if v, ok := r.Headers[name]; ok {
		return v
	}
	for k, v := range r.Headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// ContentType returns the Content-Type header value.
func (r *Response) ContentType() string {
	return r.Header("Content-Type")
}

// IsJSON reports whether the response declares a JSON body. Parameters such
// as charset may follow the media type.
func (r *Response) IsJSON() bool {
	return strings.Contains(r.ContentType(), ContentTypeJSON)
}

// IsBinary reports whether the response declares an octet-stream body.
func (r *Response) IsBinary() bool {
	return strings.Contains(r.ContentType(), ContentTypeBinary)
}

// IsSuccess reports whether the status code is in the 2xx range.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// DurationMs returns the exchange duration in milliseconds.
func (r *Response) DurationMs() float64 {
	return float64(r.Duration.Microseconds()) / 1000.0
}

// fileName extracts the suggested filename from a Content-Disposition
// header of the form `attachment; filename="report.pdf"`.
func (r *Response) fileName() string {
	disposition := r.Header("Content-Disposition")
	if disposition == "" {
		return ""
	}
	_, name, ok := strings.Cut(disposition, "filename=")
	if !ok {
		return ""
	}
	if i := strings.IndexByte(name, ';'); i >= 0 {
		name = name[:i]
	}
	return strings.Trim(strings.TrimSpace(name), `"`)
}
