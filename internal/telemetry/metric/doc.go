// Package metric provides Prometheus metrics for TouchMap.
//
// This package implements metrics collection and exposition:
//
//   - prometheus.go: the Registry of tracking, render and HTTP metrics
//   - collector.go: a Collector reporting live session totals on scrape
//
// Metrics are exposed at /metrics in Prometheus format.
package metric
