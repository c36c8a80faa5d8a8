package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdul-hamid-achik/fetchkit/packages/fetch"
)

func TestCollectorRecord(t *testing.T) {
	collector := NewCollector()

	collector.Record(10*time.Millisecond, 200, nil)
	collector.Record(20*time.Millisecond, 200, nil)
	collector.Record(30*time.Millisecond, 404, nil)
	collector.RecordFailure(errors.New("connection refused"))

	snapshot := collector.Snapshot()

	assert.Equal(t, int64(4), snapshot.TotalRequests)
	assert.Equal(t, int64(2), snapshot.SuccessCount)
	assert.Equal(t, int64(2), snapshot.ErrorCount)
	assert.Equal(t, int64(0), snapshot.TimeoutCount)
	assert.Equal(t, int64(2), snapshot.StatusCodes[200])
	assert.Equal(t, int64(1), snapshot.StatusCodes[404])
}

func TestCollectorTracksTimeouts(t *testing.T) {
	collector := NewCollector()

	collector.RecordFailure(fmt.Errorf("request failed: %w", context.DeadlineExceeded))
	collector.RecordFailure(errors.New("dns failure"))

	snapshot := collector.Snapshot()

	assert.Equal(t, int64(2), snapshot.ErrorCount)
	assert.Equal(t, int64(1), snapshot.TimeoutCount)
}

func TestCollectorLatencyQuantiles(t *testing.T) {
	collector := NewCollector()

	for i := 1; i <= 100; i++ {
		collector.Record(time.Duration(i)*time.Millisecond, 200, nil)
	}

	snapshot := collector.Snapshot()

	// HDR histograms hold values within the configured precision, so allow
	// some slack around the exact quantiles.
	assert.InDelta(t, 50, snapshot.P50.Milliseconds(), 2)
	assert.InDelta(t, 95, snapshot.P95.Milliseconds(), 2)
	assert.InDelta(t, 99, snapshot.P99.Milliseconds(), 2)
	assert.InDelta(t, 1, snapshot.MinLatency.Milliseconds(), 1)
	assert.InDelta(t, 100, snapshot.MaxLatency.Milliseconds(), 1)
}

func TestCollectorClampsLatency(t *testing.T) {
	collector := NewCollector()

	collector.Record(0, 200, nil)
	collector.Record(2*time.Minute, 200, nil)

	snapshot := collector.Snapshot()

	assert.Equal(t, int64(2), snapshot.TotalRequests)
	assert.LessOrEqual(t, snapshot.MaxLatency, 61*time.Second)
}

func TestCollectorAfterHook(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	collector := NewCollector()
	client := fetch.NewClient(fetch.WithAfter(collector.AfterHook()))

	result, err := client.Get(context.Background(), server.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"ok": true}, result)

	snapshot := collector.Snapshot()
	assert.Equal(t, int64(1), snapshot.TotalRequests)
	assert.Equal(t, int64(1), snapshot.SuccessCount)
	assert.Equal(t, int64(1), snapshot.StatusCodes[200])
	assert.Greater(t, snapshot.MaxLatency, time.Duration(0))
}

func TestCollectorDoer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"error":"upstream"}`))
	}))
	defer server.Close()

	collector := NewCollector()
	client := fetch.NewClient(fetch.WithTransport(collector.Doer(nil)))

	_, err := client.Get(context.Background(), server.URL, nil)
	var fe *fetch.Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, http.StatusBadGateway, fe.Status)

	// Transport failure is counted too.
	_, err = client.Get(context.Background(), "http://127.0.0.1:1", nil)
	require.Error(t, err)

	snapshot := collector.Snapshot()
	assert.Equal(t, int64(2), snapshot.TotalRequests)
	assert.Equal(t, int64(2), snapshot.ErrorCount)
	assert.Equal(t, int64(1), snapshot.StatusCodes[502])
}

func TestCollectorReset(t *testing.T) {
	collector := NewCollector()
	collector.Record(time.Millisecond, 200, nil)

	collector.Reset()
	snapshot := collector.Snapshot()

	assert.Equal(t, int64(0), snapshot.TotalRequests)
	assert.Empty(t, snapshot.StatusCodes)
	assert.Equal(t, time.Duration(0), snapshot.P99)
}

func TestCollectorRPS(t *testing.T) {
	collector := NewCollector()
	for i := 0; i < 10; i++ {
		collector.Record(time.Millisecond, 200, nil)
	}

	snapshot := collector.Snapshot()

	assert.Greater(t, snapshot.RPS, 0.0)
	assert.Greater(t, snapshot.Elapsed, time.Duration(0))
}
