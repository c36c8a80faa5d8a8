// Package metrics collects latency and outcome metrics for fetch clients.
//
// A Collector aggregates counts and an HDR latency histogram. It plugs into
// a client either as an after hook or as a transport wrapper, and exposes
// results as a point-in-time Snapshot or in Prometheus text format.
package metrics
