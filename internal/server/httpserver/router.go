package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/yndnr/touchmap-go/internal/core/service"
	"github.com/yndnr/touchmap-go/internal/export"
	"github.com/yndnr/touchmap-go/internal/server/httpserver/handler"
	"github.com/yndnr/touchmap-go/internal/telemetry/metric"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// Registry hosts the tracking sessions.
	Registry *service.Registry

	// Catalog serves exported artifacts. Nil serves an empty listing.
	Catalog export.Catalog

	// Metrics records request metrics and backs /metrics.
	Metrics *metric.Registry

	// Logger for request logging.
	Logger *slog.Logger

	// RateLimit is the per-IP request rate (requests/second); 0 disables it.
	RateLimit float64

	// RateBurst is the per-IP burst size.
	RateBurst int

	// MaxBodyBytes caps request bodies; 0 disables the cap.
	MaxBodyBytes int64
}

// DefaultRouterConfig returns default router configuration.
func DefaultRouterConfig() *RouterConfig {
	return &RouterConfig{
		RateLimit:    200,
		RateBurst:    400,
		MaxBodyBytes: 32 << 20,
	}
}

// NewRouter creates the HTTP router with all routes and middleware.
//
// Middleware runs inside the mux so the audit log and request metrics see
// the matched route pattern.
func NewRouter(cfg *RouterConfig) http.Handler {
	l := cfg.Logger
	if l == nil {
		l = slog.Default()
	}
	m := cfg.Metrics
	if m == nil {
		m = metric.NewRegistry()
	}

	h := handler.New(cfg.Registry, cfg.Catalog, l)

	// Order: RequestID -> Recover -> Audit -> RateLimit -> BodyLimit -> Handler
	base := []Middleware{RequestID(), Recover(l), Audit(l, m)}
	api := base
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		api = append(api[:len(api):len(api)], RateLimit(cfg.RateLimit, burst))
	}
	if cfg.MaxBodyBytes > 0 {
		api = append(api[:len(api):len(api)], BodyLimit(cfg.MaxBodyBytes))
	}

	mux := http.NewServeMux()
	probe := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, Chain(fn, base...))
	}
	route := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, Chain(fn, api...))
	}

	// Probes and metrics bypass rate limiting.
	probe("GET /health", h.Health)
	probe("GET /ready", h.Ready)
	mux.Handle("GET /metrics", Chain(m.Handler(), RequestID(), Recover(l)))

	// Session endpoints
	route("GET /sessions", h.ListSessions)
	route("POST /sessions", h.CreateSession)
	route("GET /sessions/{id}", h.GetSession)
	route("DELETE /sessions/{id}", h.CloseSession)
	route("POST /sessions/{id}/flush", h.FlushSession)

	// Tracking input
	route("POST /sessions/{id}/navigations", h.Navigate)
	route("POST /sessions/{id}/samples", h.AddSamples)
	route("PUT /sessions/{id}/screens/{screen}/snapshot", h.PutSnapshot)
	route("GET /sessions/{id}/screens/{screen}/heatmap.png", h.Heatmap)

	// Export catalog
	route("GET /exports", h.ListExports)
	route("GET /exports/{session}/{screen}", h.GetExport)
	route("DELETE /exports/{session}", h.DeleteExports)

	return mux
}
