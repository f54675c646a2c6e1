package service

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yndnr/touchmap-go/internal/core/domain"
	"github.com/yndnr/touchmap-go/internal/core/render"
	"github.com/yndnr/touchmap-go/internal/export"
	"github.com/yndnr/touchmap-go/internal/storage/memory"
	"github.com/yndnr/touchmap-go/internal/telemetry/metric"
)

// Tracker records one session and renders it on flush.
type Tracker struct {
	id        string
	createdAt time.Time

	store    *memory.Store
	renderer *render.Renderer
	capturer Capturer
	exporter export.Exporter
	metrics  *metric.Registry
	logger   *slog.Logger

	phases  domain.PhaseSet
	workers int

	// ctx bounds background captures; cancelled by Close.
	ctx      context.Context
	cancel   context.CancelFunc
	captures sync.WaitGroup
	closed   atomic.Bool

	// capCtx is the context handed to captures started since the last
	// timed out Flush.
	capMu     sync.Mutex
	capCtx    context.Context
	capCancel context.CancelFunc
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithCapturer requests a snapshot whenever a screen without one becomes
// active.
func WithCapturer(c Capturer) TrackerOption {
	return func(t *Tracker) {
		t.capturer = c
	}
}

// WithExporter sets the flush destination. Defaults to export.Nop.
func WithExporter(e export.Exporter) TrackerOption {
	return func(t *Tracker) {
		t.exporter = e
	}
}

// WithMetrics sets the metrics registry.
func WithMetrics(m *metric.Registry) TrackerOption {
	return func(t *Tracker) {
		t.metrics = m
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) TrackerOption {
	return func(t *Tracker) {
		t.logger = l
	}
}

// WithPhases restricts which touch phases are recorded.
func WithPhases(p domain.PhaseSet) TrackerOption {
	return func(t *Tracker) {
		t.phases = p
	}
}

// WithWorkers bounds the number of screens rendered in parallel on flush.
// Values below 1 use GOMAXPROCS.
func WithWorkers(n int) TrackerOption {
	return func(t *Tracker) {
		t.workers = n
	}
}

// WithStore replaces the default store.
func WithStore(s *memory.Store) TrackerOption {
	return func(t *Tracker) {
		t.store = s
	}
}

// NewTracker creates a tracker for session id.
func NewTracker(id string, renderer *render.Renderer, opts ...TrackerOption) (*Tracker, error) {
	if id == "" {
		return nil, domain.ErrMissingArgument.WithDetails("session id is required")
	}
	if renderer == nil {
		return nil, domain.ErrMissingArgument.WithDetails("renderer is required")
	}

	t := &Tracker{
		id:        id,
		createdAt: time.Now(),
		renderer:  renderer,
		exporter:  export.Nop{},
		phases:    domain.AllPhases,
	}
	for _, opt := range opts {
		opt(t)
	}

	if t.store == nil {
		t.store = memory.New()
	}
	if t.metrics == nil {
		t.metrics = metric.NewRegistry()
	}
	if t.logger == nil {
		t.logger = slog.Default()
	}
	t.logger = t.logger.With("session_id", id)
	if t.workers < 1 {
		t.workers = runtime.GOMAXPROCS(0)
	}
	t.ctx, t.cancel = context.WithCancel(context.Background())
	t.capCtx, t.capCancel = context.WithCancel(t.ctx)

	return t, nil
}

// ID returns the session id.
func (t *Tracker) ID() string {
	return t.id
}

// CreatedAt returns when the tracker was created.
func (t *Tracker) CreatedAt() time.Time {
	return t.createdAt
}

// OnTouchSample implements TouchSink.
func (t *Tracker) OnTouchSample(screenID string, s domain.TouchSample) {
	t.AddSample(screenID, s)
}

// OnScreenActivated implements ScreenObserver.
func (t *Tracker) OnScreenActivated(screenID string) {
	if _, err := t.Navigate(screenID); err != nil {
		t.logger.Warn("navigation rejected", "screen_id", screenID, "error", err)
	}
}

// AddSample records s against screenID, or against the active screen when
// screenID is empty. It reports whether the sample was kept. Samples for
// untracked screens, filtered phases or unplaceable positions are dropped.
func (t *Tracker) AddSample(screenID string, s domain.TouchSample) bool {
	if t.closed.Load() {
		return false
	}

	reason := ""
	switch {
	case !t.phases.Has(s.Phase):
		reason = metric.DropPhase
	case s.Validate() != nil:
		reason = metric.DropInvalid
	}

	if reason == "" && screenID == "" {
		if screenID = t.store.Active(); screenID == "" {
			reason = metric.DropNoActive
		}
	}
	if reason == "" && !t.store.AddSample(screenID, s) {
		reason = metric.DropUntracked
	}

	if reason != "" {
		t.metrics.SamplesDropped.WithLabelValues(reason).Inc()
		t.logger.Debug("sample dropped", "screen_id", screenID, "reason", reason)
		return false
	}
	t.metrics.SamplesAccepted.Inc()
	return true
}

// Navigate makes screenID active. When the screen still lacks a snapshot
// and a Capturer is configured, a capture is started in the background.
func (t *Tracker) Navigate(screenID string) (memory.Transition, error) {
	if t.closed.Load() {
		return memory.Transition{}, domain.ErrSessionClosed.WithDetails(t.id)
	}
	if err := domain.ValidateScreenID(screenID); err != nil {
		return memory.Transition{}, err
	}

	tr := t.store.RecordNavigation(screenID)
	t.metrics.Navigations.Inc()
	t.logger.Debug("screen activated",
		"from", tr.From,
		"to", tr.To,
		"created", tr.Created,
		"needs_snapshot", tr.NeedsSnapshot)

	if tr.NeedsSnapshot && t.capturer != nil {
		t.startCapture(screenID)
	}
	return tr, nil
}

func (t *Tracker) startCapture(screenID string) {
	t.capMu.Lock()
	ctx := t.capCtx
	t.capMu.Unlock()

	t.captures.Add(1)
	go func() {
		defer t.captures.Done()

		img, err := t.capturer.Capture(ctx, screenID)
		if err != nil {
			t.metrics.CaptureFailures.Inc()
			t.logger.Warn("snapshot capture failed", "screen_id", screenID, "error", err)
			return
		}
		t.AttachSnapshot(screenID, img)
	}()
}

// AttachSnapshot sets the screen's snapshot. Only the first attach for a
// tracked screen takes effect.
func (t *Tracker) AttachSnapshot(screenID string, img image.Image) bool {
	if t.closed.Load() {
		return false
	}
	if !t.store.AttachSnapshot(screenID, img) {
		t.metrics.SnapshotsIgnored.Inc()
		return false
	}
	t.metrics.SnapshotsAttached.Inc()
	return true
}

// Active returns the active screen.
func (t *Tracker) Active() string {
	return t.store.Active()
}

// Stats returns the store counters.
func (t *Tracker) Stats() memory.Stats {
	return t.store.Stats()
}

// Screens returns copies of every tracked record.
func (t *Tracker) Screens() []*domain.Record {
	return t.store.Screens()
}

// Screen returns a copy of one record.
func (t *Tracker) Screen(screenID string) (*domain.Record, error) {
	return t.store.Get(screenID)
}

// Preview renders a screen without draining it.
func (t *Tracker) Preview(ctx context.Context, screenID string) (render.Result, error) {
	rec, err := t.store.Get(screenID)
	if err != nil {
		return render.Result{}, err
	}
	return t.renderer.RenderRecord(ctx, rec)
}

// FlushFailure is a screen that could not be rendered or exported.
type FlushFailure struct {
	ScreenID string `json:"screen_id"`
	Error    string `json:"error"`
}

// FlushReport summarizes a flush.
type FlushReport struct {
	SessionID string `json:"session_id"`

	// Rendered lists screens exported with an overlay.
	Rendered []string `json:"rendered"`

	// Unmodified lists screens exported as their bare snapshot because no
	// sample landed on the image.
	Unmodified []string `json:"unmodified"`

	// Incomplete lists screens dropped because they had no snapshot.
	Incomplete []string `json:"incomplete"`

	Failed   []FlushFailure `json:"failed"`
	Duration time.Duration  `json:"duration"`
}

// Flush waits for in-flight captures, drains the store, renders every
// complete screen in parallel and exports the results. The store is empty
// afterwards and no screen remains active.
//
// A screen that fails to render or export is reported in Failed and does
// not stop the others. Flush itself fails only when ctx ends.
func (t *Tracker) Flush(ctx context.Context) (FlushReport, error) {
	if t.closed.Load() {
		return FlushReport{}, domain.ErrSessionClosed.WithDetails(t.id)
	}

	start := time.Now()
	if err := t.waitCaptures(ctx); err != nil {
		return FlushReport{}, err
	}

	drained := t.store.DrainAll(true)
	report := FlushReport{
		SessionID:  t.id,
		Incomplete: drained.Incomplete,
	}
	if n := len(drained.Incomplete); n > 0 {
		t.logger.Debug("screens without snapshot skipped", "count", n, "screens", drained.Incomplete)
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.workers)

	for _, rec := range drained.Records {
		g.Go(func() error {
			rendered, err := t.flushRecord(gctx, rec)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				report.Failed = append(report.Failed, FlushFailure{ScreenID: rec.ScreenID, Error: err.Error()})
			case rendered:
				report.Rendered = append(report.Rendered, rec.ScreenID)
			default:
				report.Unmodified = append(report.Unmodified, rec.ScreenID)
			}

			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			return nil
		})
	}

	err := g.Wait()

	sort.Strings(report.Rendered)
	sort.Strings(report.Unmodified)
	sort.Slice(report.Failed, func(i, j int) bool {
		return report.Failed[i].ScreenID < report.Failed[j].ScreenID
	})
	report.Duration = time.Since(start)
	t.metrics.FlushDuration.Observe(report.Duration.Seconds())

	if err != nil {
		return report, fmt.Errorf("flush %s: %w", t.id, err)
	}

	t.logger.Info("session flushed",
		"rendered", len(report.Rendered),
		"unmodified", len(report.Unmodified),
		"incomplete", len(report.Incomplete),
		"failed", len(report.Failed),
		"duration", report.Duration)
	return report, nil
}

func (t *Tracker) flushRecord(ctx context.Context, rec *domain.Record) (bool, error) {
	start := time.Now()
	res, err := t.renderer.RenderRecord(ctx, rec)
	t.metrics.RenderDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		t.metrics.Renders.WithLabelValues(metric.RenderFailed).Inc()
		t.logger.Error("render failed", "screen_id", rec.ScreenID, "error", err)
		return false, err
	}

	if res.Rendered {
		t.metrics.Renders.WithLabelValues(metric.RenderRendered).Inc()
	} else {
		t.metrics.Renders.WithLabelValues(metric.RenderUnmodified).Inc()
	}

	err = t.exporter.Export(ctx, export.Artifact{
		SessionID:   t.id,
		ScreenID:    rec.ScreenID,
		Rendered:    res.Rendered,
		Image:       res.Image,
		Provenance:  rec.Provenance,
		SampleCount: len(rec.Samples),
	})
	if err != nil {
		t.metrics.Exports.WithLabelValues("error").Inc()
		t.logger.Error("export failed", "screen_id", rec.ScreenID, "error", err)
		return false, err
	}
	t.metrics.Exports.WithLabelValues("ok").Inc()
	return res.Rendered, nil
}

// waitCaptures blocks until in-flight captures finish. If ctx ends first,
// the outstanding captures are cancelled and later captures get a fresh
// context. A Capturer that ignores cancellation keeps running until it
// returns on its own.
func (t *Tracker) waitCaptures(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		t.captures.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		t.cancelCaptures()
		return ctx.Err()
	}
}

func (t *Tracker) cancelCaptures() {
	t.capMu.Lock()
	defer t.capMu.Unlock()
	t.capCancel()
	t.capCtx, t.capCancel = context.WithCancel(t.ctx)
}

// Close stops background captures and rejects further input. It does not
// flush; pending records are discarded.
func (t *Tracker) Close() {
	if !t.closed.CompareAndSwap(false, true) {
		return
	}
	t.cancel()
	t.captures.Wait()
}
