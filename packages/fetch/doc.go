// Package fetch is a convenience layer over net/http request execution.
//
// It wraps the standard library's http package with additional features:
//   - Ordered query-string serialization
//   - JSON and binary body auto-encoding
//   - Content-type-aware response decoding
//   - Per-request timeouts combined with caller cancellation
//   - Before/after hooks around transport dispatch
package fetch
