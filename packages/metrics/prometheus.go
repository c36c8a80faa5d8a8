package metrics

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"
)

// WritePrometheus writes the collector's current state to w in Prometheus
// text exposition format under the fetchkit_ namespace.
func (c *Collector) WritePrometheus(w io.Writer) error {
	snapshot := c.Snapshot()
	now := time.Now().UnixMilli()

	// Total requests counter
	fmt.Fprintf(w, "# HELP fetchkit_requests_total Total number of HTTP requests made\n")
	fmt.Fprintf(w, "# TYPE fetchkit_requests_total counter\n")
	fmt.Fprintf(w, "fetchkit_requests_total %d %d\n", snapshot.TotalRequests, now)
	fmt.Fprintln(w)

	// Success/failure counters
	fmt.Fprintf(w, "# HELP fetchkit_requests_success_total Total number of successful requests\n")
	fmt.Fprintf(w, "# TYPE fetchkit_requests_success_total counter\n")
	fmt.Fprintf(w, "fetchkit_requests_success_total %d %d\n", snapshot.SuccessCount, now)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "# HELP fetchkit_requests_failed_total Total number of failed requests\n")
	fmt.Fprintf(w, "# TYPE fetchkit_requests_failed_total counter\n")
	fmt.Fprintf(w, "fetchkit_requests_failed_total %d %d\n", snapshot.ErrorCount, now)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "# HELP fetchkit_requests_timeout_total Total number of timed out requests\n")
	fmt.Fprintf(w, "# TYPE fetchkit_requests_timeout_total counter\n")
	fmt.Fprintf(w, "fetchkit_requests_timeout_total %d %d\n", snapshot.TimeoutCount, now)
	fmt.Fprintln(w)

	// Duration metrics
	fmt.Fprintf(w, "# HELP fetchkit_request_duration_ms Request duration in milliseconds\n")
	fmt.Fprintf(w, "# TYPE fetchkit_request_duration_ms gauge\n")
	fmt.Fprintf(w, "fetchkit_request_duration_ms{quantile=\"min\"} %.2f %d\n", durationMs(snapshot.MinLatency), now)
	fmt.Fprintf(w, "fetchkit_request_duration_ms{quantile=\"max\"} %.2f %d\n", durationMs(snapshot.MaxLatency), now)
	fmt.Fprintf(w, "fetchkit_request_duration_ms{quantile=\"avg\"} %.2f %d\n", durationMs(snapshot.MeanLatency), now)
	if snapshot.P50 > 0 {
		fmt.Fprintf(w, "fetchkit_request_duration_ms{quantile=\"0.50\"} %.2f %d\n", durationMs(snapshot.P50), now)
	}
	if snapshot.P95 > 0 {
		fmt.Fprintf(w, "fetchkit_request_duration_ms{quantile=\"0.95\"} %.2f %d\n", durationMs(snapshot.P95), now)
	}
	if snapshot.P99 > 0 {
		fmt.Fprintf(w, "fetchkit_request_duration_ms{quantile=\"0.99\"} %.2f %d\n", durationMs(snapshot.P99), now)
	}
	fmt.Fprintln(w)

	// Status code distribution
	fmt.Fprintf(w, "# HELP fetchkit_requests_by_status_total Requests by HTTP status code\n")
	fmt.Fprintf(w, "# TYPE fetchkit_requests_by_status_total counter\n")

	// Sort status codes for consistent output
	codes := make([]int, 0, len(snapshot.StatusCodes))
	for code := range snapshot.StatusCodes {
		codes = append(codes, code)
	}
	sort.Ints(codes)

	for _, code := range codes {
		fmt.Fprintf(w, "fetchkit_requests_by_status_total{status=\"%d\"} %d %d\n", code, snapshot.StatusCodes[code], now)
	}

	return nil
}

// Handler serves the collector in Prometheus text format, for mounting at
// a /metrics route.
func (c *Collector) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		_ = c.WritePrometheus(w)
	})
}

func durationMs(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000.0
}
