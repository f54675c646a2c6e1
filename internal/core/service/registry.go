package service

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/yndnr/touchmap-go/internal/core/domain"
	"github.com/yndnr/touchmap-go/internal/core/render"
	"github.com/yndnr/touchmap-go/internal/storage/memory"
	"github.com/yndnr/touchmap-go/internal/telemetry/metric"
	"github.com/yndnr/touchmap-go/pkg/cmap"
)

// SessionInfo summarizes a hosted session.
type SessionInfo struct {
	ID        string       `json:"session_id"`
	CreatedAt time.Time    `json:"created_at"`
	Stats     memory.Stats `json:"stats"`
}

// Registry hosts independent tracking sessions.
type Registry struct {
	sessions *cmap.Map[*Tracker]
	renderer *render.Renderer
	metrics  *metric.Registry
	logger   *slog.Logger
	opts     []TrackerOption
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithRegistryMetrics sets the metrics registry shared by every session
// and registers the live session collector on it.
func WithRegistryMetrics(m *metric.Registry) RegistryOption {
	return func(r *Registry) {
		r.metrics = m
	}
}

// WithRegistryLogger sets the logger.
func WithRegistryLogger(l *slog.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = l
	}
}

// WithSessionOptions adds options applied to every created tracker.
func WithSessionOptions(opts ...TrackerOption) RegistryOption {
	return func(r *Registry) {
		r.opts = append(r.opts, opts...)
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(renderer *render.Renderer, opts ...RegistryOption) *Registry {
	r := &Registry{
		sessions: cmap.New[*Tracker](),
		renderer: renderer,
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.metrics == nil {
		r.metrics = metric.NewRegistry()
	}
	r.metrics.MustRegister(metric.NewCollector(r.Stats))

	return r
}

// Create starts a new session.
func (r *Registry) Create(ctx context.Context) (*Tracker, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	id, err := domain.GenerateSessionID()
	if err != nil {
		return nil, err
	}

	opts := make([]TrackerOption, 0, len(r.opts)+2)
	opts = append(opts, r.opts...)
	opts = append(opts, WithMetrics(r.metrics), WithLogger(r.logger))

	t, err := NewTracker(id, r.renderer, opts...)
	if err != nil {
		return nil, err
	}
	if !r.sessions.SetIfAbsent(id, t) {
		t.Close()
		return nil, domain.ErrInternalServer.WithDetails("session id collision")
	}

	r.metrics.SessionsCreated.Inc()
	r.logger.Info("session created", "session_id", id)
	return t, nil
}

// Get returns a hosted session.
func (r *Registry) Get(id string) (*Tracker, error) {
	if t, ok := r.sessions.Get(id); ok {
		return t, nil
	}
	return nil, domain.ErrSessionNotFound.WithDetails("session_id: " + id)
}

// Close flushes a session and stops hosting it. The session is removed
// before flushing, so concurrent callers see ErrSessionNotFound.
func (r *Registry) Close(ctx context.Context, id string) (FlushReport, error) {
	t, ok := r.sessions.Pop(id)
	if !ok {
		return FlushReport{}, domain.ErrSessionNotFound.WithDetails("session_id: " + id)
	}
	defer func() {
		t.Close()
		r.metrics.SessionsClosed.Inc()
		r.logger.Info("session closed", "session_id", id)
	}()

	return t.Flush(ctx)
}

// CloseAll flushes and removes every session.
func (r *Registry) CloseAll(ctx context.Context) error {
	var errs []error
	for _, id := range r.sessions.Keys() {
		if _, err := r.Close(ctx, id); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// List returns every hosted session, oldest first.
func (r *Registry) List() []SessionInfo {
	trackers := r.sessions.Values()
	out := make([]SessionInfo, 0, len(trackers))
	for _, t := range trackers {
		out = append(out, SessionInfo{ID: t.ID(), CreatedAt: t.CreatedAt(), Stats: t.Stats()})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Count returns the number of hosted sessions.
func (r *Registry) Count() int {
	return r.sessions.Count()
}

// Stats totals the hosted sessions.
func (r *Registry) Stats() metric.SessionStats {
	var st metric.SessionStats
	r.sessions.Range(func(_ string, t *Tracker) bool {
		s := t.Stats()
		st.Sessions++
		st.Screens += s.Screens
		st.Samples += s.Samples
		st.Snapshots += s.Snapshots
		return true
	})
	return st
}
