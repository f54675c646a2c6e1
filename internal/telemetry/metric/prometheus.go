package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "touchmap"

// Drop reasons for SamplesDropped.
const (
	DropUntracked = "untracked"
	DropNoActive  = "no_active"
	DropPhase     = "phase"
	DropInvalid   = "invalid"
)

// Render outcomes for Renders.
const (
	RenderRendered   = "rendered"
	RenderUnmodified = "unmodified"
	RenderFailed     = "failed"
)

// Registry holds all application metrics.
type Registry struct {
	reg *prometheus.Registry

	// Session metrics
	SessionsCreated prometheus.Counter
	SessionsClosed  prometheus.Counter

	// Tracking metrics
	SamplesAccepted   prometheus.Counter
	SamplesDropped    *prometheus.CounterVec
	Navigations       prometheus.Counter
	SnapshotsAttached prometheus.Counter
	SnapshotsIgnored  prometheus.Counter
	CaptureFailures   prometheus.Counter

	// Render metrics
	Renders        *prometheus.CounterVec
	RenderDuration prometheus.Histogram
	FlushDuration  prometheus.Histogram
	Exports        *prometheus.CounterVec

	// Request metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// NewRegistry creates a registry with all metrics registered, plus the Go
// runtime and process collectors.
func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),

		SessionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_created_total",
			Help:      "Tracking sessions created",
		}),
		SessionsClosed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_closed_total",
			Help:      "Tracking sessions closed",
		}),
		SamplesAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "samples_accepted_total",
			Help:      "Touch samples stored",
		}),
		SamplesDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "samples_dropped_total",
			Help:      "Touch samples discarded, by reason",
		}, []string{"reason"}),
		Navigations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "navigations_total",
			Help:      "Screen activations recorded",
		}),
		SnapshotsAttached: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_attached_total",
			Help:      "Snapshots attached to screens",
		}),
		SnapshotsIgnored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_ignored_total",
			Help:      "Snapshots ignored because the screen already had one or was untracked",
		}),
		CaptureFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "capture_failures_total",
			Help:      "Snapshot captures that returned an error",
		}),
		Renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "renders_total",
			Help:      "Screens processed at flush, by outcome",
		}, []string{"result"}),
		RenderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Time to render one screen",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		}),
		FlushDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "flush_duration_seconds",
			Help:      "Time to drain, render and export a session",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
		Exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Artifacts handed to the exporter, by result",
		}, []string{"result"}),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests, by method, route and status",
		}, []string{"method", "route", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency, by method and route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	r.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.SessionsCreated,
		r.SessionsClosed,
		r.SamplesAccepted,
		r.SamplesDropped,
		r.Navigations,
		r.SnapshotsAttached,
		r.SnapshotsIgnored,
		r.CaptureFailures,
		r.Renders,
		r.RenderDuration,
		r.FlushDuration,
		r.Exports,
		r.RequestsTotal,
		r.RequestDuration,
	)

	return r
}

// Prometheus returns the underlying registry for components that register
// their own collectors.
func (r *Registry) Prometheus() *prometheus.Registry {
	return r.reg
}

// MustRegister registers additional collectors.
func (r *Registry) MustRegister(cs ...prometheus.Collector) {
	r.reg.MustRegister(cs...)
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}
