package fetch

import (
	"errors"
	"fmt"
	"strings"
)

// Fixed messages carried by Error for the two response-shape failures.
// Callers match on these to tell decoding failures apart from transport
// ones.
const (
	MsgUnsupportedContentType = "Response Content-Type is unsupported"
	MsgStatusOutOfRange       = "Response status out of 200-299 range"
)

// Error is the unified failure type raised by this package. Status is zero
// when the failure happened before or below the HTTP exchange (encoding,
// transport, timeout); it carries the response status when a response
// arrived outside the 200-299 range. Hook errors are never wrapped into an
// Error and reach the caller as-is.
type Error struct {
	Message    string
	Status     int
	StatusText string
	Err        error
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s: %d %s", e.Message, e.Status, e.StatusText)
	}
	return e.Message
}

// Unwrap exposes the originating error, if any, to errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// StatusOf returns the HTTP status carried by err when err is an Error
// raised for a non-2xx response.
func StatusOf(err error) (int, bool) {
	var fe *Error
	if errors.As(err, &fe) && fe.Status > 0 {
		return fe.Status, true
	}
	return 0, false
}

func wrapError(err error) *Error {
	return &Error{Message: err.Error(), Err: err}
}

func statusError(resp *Response) *Error {
	return &Error{
		Message:    MsgStatusOutOfRange,
		Status:     resp.StatusCode,
		StatusText: statusText(resp),
	}
}

func contentTypeError() *Error {
	return &Error{Message: MsgUnsupportedContentType}
}

// statusText strips the numeric code from a status line, turning
// "404 Not Found" into "Not Found".
func statusText(resp *Response) string {
	prefix := fmt.Sprintf("%d ", resp.StatusCode)
	if text, ok := strings.CutPrefix(resp.Status, prefix); ok {
		return text
	}
	return resp.Status
}
