package service

import (
	"context"
	"errors"
	"image"
	"image/color"
	"math"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/yndnr/touchmap-go/internal/core/domain"
	"github.com/yndnr/touchmap-go/internal/core/render"
	"github.com/yndnr/touchmap-go/internal/export"
	"github.com/yndnr/touchmap-go/internal/telemetry/metric"
)

// recordingExporter keeps every exported artifact.
type recordingExporter struct {
	mu        sync.Mutex
	artifacts map[string]export.Artifact
	fail      string
}

func newRecordingExporter() *recordingExporter {
	return &recordingExporter{artifacts: make(map[string]export.Artifact)}
}

func (e *recordingExporter) Export(ctx context.Context, a export.Artifact) error {
	if a.ScreenID == e.fail {
		return errors.New("disk full")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.artifacts[a.ScreenID] = a
	return nil
}

func (e *recordingExporter) get(screenID string) (export.Artifact, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	a, ok := e.artifacts[screenID]
	return a, ok
}

func white(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	return img
}

func touch(x, y float64) domain.TouchSample {
	return domain.NewTouchSample(x, y, 10, 1, domain.PhaseBegan)
}

func newTestTracker(t *testing.T, opts ...TrackerOption) (*Tracker, *metric.Registry) {
	t.Helper()
	r, err := render.NewRenderer(render.DefaultConfig())
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	m := metric.NewRegistry()
	tr, err := NewTracker("ths-test", r, append([]TrackerOption{WithMetrics(m)}, opts...)...)
	if err != nil {
		t.Fatalf("NewTracker: %v", err)
	}
	t.Cleanup(tr.Close)
	return tr, m
}

func TestNewTracker_Validation(t *testing.T) {
	r, _ := render.NewRenderer(render.DefaultConfig())

	if _, err := NewTracker("", r); !errors.Is(err, domain.ErrMissingArgument) {
		t.Errorf("empty id: err = %v", err)
	}
	if _, err := NewTracker("ths-x", nil); !errors.Is(err, domain.ErrMissingArgument) {
		t.Errorf("nil renderer: err = %v", err)
	}
}

func TestTracker_AddSample(t *testing.T) {
	phases, _ := domain.NewPhaseSet([]string{"began", "moved"})
	tr, m := newTestTracker(t, WithPhases(phases))

	if tr.AddSample("", touch(1, 1)) {
		t.Error("sample accepted with no active screen")
	}
	if tr.AddSample("home", touch(1, 1)) {
		t.Error("sample accepted for untracked screen")
	}

	if _, err := tr.Navigate("home"); err != nil {
		t.Fatalf("Navigate: %v", err)
	}

	ended := domain.NewTouchSample(1, 1, 10, 1, domain.PhaseEnded)
	if tr.AddSample("home", ended) {
		t.Error("filtered phase accepted")
	}
	if tr.AddSample("home", touch(math.NaN(), 1)) {
		t.Error("invalid sample accepted")
	}

	if !tr.AddSample("", touch(2, 2)) {
		t.Error("sample for active screen rejected")
	}
	tr.OnTouchSample("home", touch(3, 3))

	if got := tr.Stats().Samples; got != 2 {
		t.Errorf("Samples = %d, want 2", got)
	}

	tests := []struct {
		reason string
		want   float64
	}{
		{metric.DropNoActive, 1},
		{metric.DropUntracked, 1},
		{metric.DropPhase, 1},
		{metric.DropInvalid, 1},
	}
	for _, tt := range tests {
		if got := testutil.ToFloat64(m.SamplesDropped.WithLabelValues(tt.reason)); got != tt.want {
			t.Errorf("dropped[%s] = %v, want %v", tt.reason, got, tt.want)
		}
	}
	if got := testutil.ToFloat64(m.SamplesAccepted); got != 2 {
		t.Errorf("accepted = %v, want 2", got)
	}
}

func TestTracker_Navigate(t *testing.T) {
	tr, m := newTestTracker(t)

	if _, err := tr.Navigate(""); !errors.Is(err, domain.ErrMissingArgument) {
		t.Errorf("empty screen: err = %v", err)
	}

	first, _ := tr.Navigate("home")
	if first.From != "" || !first.Created || !first.NeedsSnapshot {
		t.Errorf("first transition = %+v", first)
	}

	tr.AttachSnapshot("home", white(10, 10))
	tr.OnScreenActivated("cart")
	back, _ := tr.Navigate("home")
	if back.From != "cart" || back.Created || back.NeedsSnapshot {
		t.Errorf("return transition = %+v", back)
	}
	if tr.Active() != "home" {
		t.Errorf("Active = %q", tr.Active())
	}
	if got := testutil.ToFloat64(m.Navigations); got != 3 {
		t.Errorf("navigations = %v, want 3", got)
	}
}

func TestTracker_AttachSnapshot(t *testing.T) {
	tr, m := newTestTracker(t)
	tr.Navigate("home")

	if !tr.AttachSnapshot("home", white(4, 4)) {
		t.Fatal("first attach rejected")
	}
	if tr.AttachSnapshot("home", white(8, 8)) {
		t.Error("second attach accepted")
	}
	if tr.AttachSnapshot("missing", white(4, 4)) {
		t.Error("attach to untracked screen accepted")
	}

	rec, _ := tr.Screen("home")
	if rec.Snapshot.Bounds().Dx() != 4 {
		t.Error("first snapshot was replaced")
	}
	if got := testutil.ToFloat64(m.SnapshotsIgnored); got != 2 {
		t.Errorf("ignored = %v, want 2", got)
	}
}

func TestTracker_CaptureOnNavigation(t *testing.T) {
	var calls sync.Map
	capturer := CapturerFunc(func(ctx context.Context, screenID string) (image.Image, error) {
		calls.Store(screenID, true)
		if screenID == "broken" {
			return nil, errors.New("surface gone")
		}
		return white(100, 100), nil
	})

	exp := newRecordingExporter()
	tr, m := newTestTracker(t, WithCapturer(capturer), WithExporter(exp))

	tr.Navigate("home")
	tr.AddSample("home", touch(50, 50))
	tr.Navigate("broken")

	report, err := tr.Flush(context.Background())
	if err != nil {
		t.Fatalf("Flush: %v", err)
	}

	if _, ok := calls.Load("home"); !ok {
		t.Error("capture not requested for home")
	}
	if !slices.Equal(report.Rendered, []string{"home"}) {
		t.Errorf("Rendered = %v", report.Rendered)
	}
	if !slices.Equal(report.Incomplete, []string{"broken"}) {
		t.Errorf("Incomplete = %v", report.Incomplete)
	}
	if got := testutil.ToFloat64(m.CaptureFailures); got != 1 {
		t.Errorf("capture failures = %v, want 1", got)
	}
}

func TestTracker_CaptureSkippedWhenSnapshotPresent(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	capturer := CapturerFunc(func(ctx context.Context, screenID string) (image.Image, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		return white(10, 10), nil
	})
	tr, _ := newTestTracker(t, WithCapturer(capturer))

	tr.Navigate("home")
	if _, err := tr.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	tr.Navigate("home")
	tr.AttachSnapshot("home", white(10, 10))
	tr.Navigate("other")
	tr.Navigate("home")
	tr.waitCaptures(context.Background())

	mu.Lock()
	defer mu.Unlock()
	// home twice (once per flush cycle), other once.
	if calls != 3 {
		t.Errorf("captures = %d, want 3", calls)
	}
}

func TestTracker_Flush(t *testing.T) {
	exp := newRecordingExporter()
	exp.fail = "settings"
	tr, m := newTestTracker(t, WithExporter(exp), WithWorkers(2))

	tr.Navigate("home")
	tr.AttachSnapshot("home", white(100, 100))
	tr.AddSample("home", touch(50, 50))
	tr.AddSample("home", touch(52, 48))

	tr.Navigate("about")
	tr.AttachSnapshot("about", white(20, 20))

	tr.Navigate("draft")

	tr.Navigate("settings")
	tr.AttachSnapshot("settings", white(20, 20))

	report, err := tr.Flush(context.Background())
	if err != nil {
		t.Fatalf("Flush: %v", err)
	}

	if report.SessionID != "ths-test" {
		t.Errorf("SessionID = %q", report.SessionID)
	}
	if !slices.Equal(report.Rendered, []string{"home"}) {
		t.Errorf("Rendered = %v", report.Rendered)
	}
	if !slices.Equal(report.Unmodified, []string{"about"}) {
		t.Errorf("Unmodified = %v", report.Unmodified)
	}
	if !slices.Equal(report.Incomplete, []string{"draft"}) {
		t.Errorf("Incomplete = %v", report.Incomplete)
	}
	if len(report.Failed) != 1 || report.Failed[0].ScreenID != "settings" {
		t.Errorf("Failed = %v", report.Failed)
	}

	home, ok := exp.get("home")
	if !ok {
		t.Fatal("home not exported")
	}
	if !home.Rendered || home.SampleCount != 2 || !home.Provenance.Start {
		t.Errorf("home artifact = %+v", home)
	}
	// Low density over white shows as a light red tint.
	if c := color.RGBAModel.Convert(home.Image.At(50, 25)).(color.RGBA); c.R != 255 || c.G == 255 {
		t.Errorf("pixel (50,25) = %v, want red tint", c)
	}
	if c := color.RGBAModel.Convert(home.Image.At(2, 2)).(color.RGBA); c != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("pixel (2,2) = %v, want background", c)
	}

	about, _ := exp.get("about")
	if about.Rendered {
		t.Error("about marked rendered")
	}

	if st := tr.Stats(); st.Screens != 0 || st.Active != "" {
		t.Errorf("store not reset: %+v", st)
	}
	if got := testutil.ToFloat64(m.Renders.WithLabelValues(metric.RenderRendered)); got != 1 {
		t.Errorf("renders[rendered] = %v", got)
	}
	if got := testutil.ToFloat64(m.Exports.WithLabelValues("error")); got != 1 {
		t.Errorf("exports[error] = %v", got)
	}
}

func TestTracker_FlushEmpty(t *testing.T) {
	tr, _ := newTestTracker(t)

	report, err := tr.Flush(context.Background())
	if err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if len(report.Rendered)+len(report.Unmodified)+len(report.Incomplete)+len(report.Failed) != 0 {
		t.Errorf("report = %+v", report)
	}
}

func TestTracker_FlushWaitsForCapture(t *testing.T) {
	release := make(chan struct{})
	capturer := CapturerFunc(func(ctx context.Context, screenID string) (image.Image, error) {
		<-release
		return white(10, 10), nil
	})
	tr, _ := newTestTracker(t, WithCapturer(capturer))
	tr.Navigate("home")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := tr.Flush(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Flush with blocked capture: err = %v", err)
	}

	close(release)
	report, err := tr.Flush(context.Background())
	if err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if !slices.Equal(report.Unmodified, []string{"home"}) {
		t.Errorf("Unmodified = %v", report.Unmodified)
	}
}

func TestTracker_FlushTimeoutCancelsCapture(t *testing.T) {
	canceled := make(chan string, 2)
	capturer := CapturerFunc(func(ctx context.Context, screenID string) (image.Image, error) {
		if screenID == "cart" {
			return white(10, 10), nil
		}
		<-ctx.Done()
		canceled <- screenID
		return nil, ctx.Err()
	})
	tr, _ := newTestTracker(t, WithCapturer(capturer))
	tr.Navigate("home")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := tr.Flush(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Flush: err = %v", err)
	}

	select {
	case id := <-canceled:
		if id != "home" {
			t.Errorf("cancelled capture for %q", id)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("hung capture was not cancelled after Flush timed out")
	}

	// Captures started after the timeout run with a live context.
	tr.Navigate("cart")
	if err := tr.waitCaptures(context.Background()); err != nil {
		t.Fatal(err)
	}
	rec, err := tr.Screen("cart")
	if err != nil || !rec.HasSnapshot() {
		t.Errorf("cart snapshot missing: %v", err)
	}
}

func TestTracker_Preview(t *testing.T) {
	tr, _ := newTestTracker(t)

	if _, err := tr.Preview(context.Background(), "home"); !errors.Is(err, domain.ErrScreenNotTracked) {
		t.Errorf("untracked: err = %v", err)
	}

	tr.Navigate("home")
	if _, err := tr.Preview(context.Background(), "home"); !errors.Is(err, domain.ErrSnapshotMissing) {
		t.Errorf("no snapshot: err = %v", err)
	}

	tr.AttachSnapshot("home", white(100, 100))
	tr.AddSample("home", touch(50, 50))
	res, err := tr.Preview(context.Background(), "home")
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if !res.Rendered || res.Samples != 1 {
		t.Errorf("result = %+v", res)
	}

	if st := tr.Stats(); st.Samples != 1 {
		t.Error("Preview drained the store")
	}
}

func TestTracker_Close(t *testing.T) {
	canceled := make(chan struct{})
	capturer := CapturerFunc(func(ctx context.Context, screenID string) (image.Image, error) {
		<-ctx.Done()
		close(canceled)
		return nil, ctx.Err()
	})
	tr, _ := newTestTracker(t, WithCapturer(capturer))
	tr.Navigate("home")

	tr.Close()
	select {
	case <-canceled:
	default:
		t.Error("Close returned before capture was cancelled")
	}

	if _, err := tr.Navigate("cart"); !errors.Is(err, domain.ErrSessionClosed) {
		t.Errorf("Navigate after Close: err = %v", err)
	}
	if _, err := tr.Flush(context.Background()); !errors.Is(err, domain.ErrSessionClosed) {
		t.Errorf("Flush after Close: err = %v", err)
	}
	if tr.AddSample("home", touch(1, 1)) {
		t.Error("sample accepted after Close")
	}
	tr.Close()
}

func TestTracker_ConcurrentInput(t *testing.T) {
	tr, _ := newTestTracker(t)
	tr.Navigate("home")

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 100 {
				tr.AddSample("home", touch(float64(i), float64(j)))
				if j%25 == 0 {
					tr.OnScreenActivated("home")
				}
			}
		}()
	}
	wg.Wait()

	if got := tr.Stats().Samples; got != 800 {
		t.Errorf("Samples = %d, want 800", got)
	}
}
