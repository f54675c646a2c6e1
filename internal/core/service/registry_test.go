package service

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/yndnr/touchmap-go/internal/core/domain"
	"github.com/yndnr/touchmap-go/internal/core/render"
	"github.com/yndnr/touchmap-go/internal/telemetry/metric"
)

func newTestRegistry(t *testing.T, opts ...RegistryOption) (*Registry, *metric.Registry) {
	t.Helper()
	r, err := render.NewRenderer(render.DefaultConfig())
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	m := metric.NewRegistry()
	reg := NewRegistry(r, append([]RegistryOption{WithRegistryMetrics(m)}, opts...)...)
	t.Cleanup(func() { reg.CloseAll(context.Background()) })
	return reg, m
}

func TestRegistry_CreateGet(t *testing.T) {
	reg, m := newTestRegistry(t)
	ctx := context.Background()

	a, err := reg.Create(ctx)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	b, _ := reg.Create(ctx)

	if !domain.IsValidSessionID(a.ID()) {
		t.Errorf("ID %q is not a session id", a.ID())
	}
	if a.ID() == b.ID() {
		t.Fatal("duplicate session ids")
	}

	got, err := reg.Get(a.ID())
	if err != nil || got != a {
		t.Errorf("Get = %v, %v", got, err)
	}
	if _, err := reg.Get("ths-unknown"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("Get unknown: err = %v", err)
	}

	if reg.Count() != 2 {
		t.Errorf("Count = %d", reg.Count())
	}
	if got := testutil.ToFloat64(m.SessionsCreated); got != 2 {
		t.Errorf("sessions created = %v", got)
	}
}

func TestRegistry_CreateCancelled(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := reg.Create(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v", err)
	}
}

func TestRegistry_SessionsAreIndependent(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx := context.Background()

	a, _ := reg.Create(ctx)
	b, _ := reg.Create(ctx)

	a.Navigate("home")
	a.AddSample("home", touch(1, 1))
	b.Navigate("cart")

	if a.Active() != "home" || b.Active() != "cart" {
		t.Errorf("active = %q, %q", a.Active(), b.Active())
	}
	if b.AddSample("home", touch(1, 1)) {
		t.Error("sample crossed sessions")
	}
	if _, err := b.Screen("home"); !errors.Is(err, domain.ErrScreenNotTracked) {
		t.Errorf("b sees a's screen: %v", err)
	}
}

func TestRegistry_Close(t *testing.T) {
	exp := newRecordingExporter()
	reg, m := newTestRegistry(t, WithSessionOptions(WithExporter(exp)))
	ctx := context.Background()

	tr, _ := reg.Create(ctx)
	tr.Navigate("home")
	tr.AttachSnapshot("home", white(50, 50))
	tr.AddSample("home", touch(25, 25))

	report, err := reg.Close(ctx, tr.ID())
	if err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !slices.Equal(report.Rendered, []string{"home"}) {
		t.Errorf("Rendered = %v", report.Rendered)
	}
	if a, ok := exp.get("home"); !ok || a.SessionID != tr.ID() {
		t.Errorf("artifact = %+v, %v", a, ok)
	}

	if _, err := reg.Get(tr.ID()); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("Get after Close: err = %v", err)
	}
	if _, err := reg.Close(ctx, tr.ID()); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("second Close: err = %v", err)
	}
	if _, err := tr.Navigate("cart"); !errors.Is(err, domain.ErrSessionClosed) {
		t.Errorf("tracker still open: %v", err)
	}
	if got := testutil.ToFloat64(m.SessionsClosed); got != 1 {
		t.Errorf("sessions closed = %v", got)
	}
}

func TestRegistry_ListAndStats(t *testing.T) {
	reg, m := newTestRegistry(t)
	ctx := context.Background()

	var ids []string
	for range 3 {
		tr, _ := reg.Create(ctx)
		tr.Navigate("home")
		tr.AttachSnapshot("home", white(10, 10))
		tr.AddSample("home", touch(1, 1))
		tr.AddSample("home", touch(2, 2))
		ids = append(ids, tr.ID())
	}

	list := reg.List()
	if len(list) != 3 {
		t.Fatalf("List = %d entries", len(list))
	}
	for _, info := range list {
		if !slices.Contains(ids, info.ID) || info.Stats.Samples != 2 {
			t.Errorf("info = %+v", info)
		}
	}

	st := reg.Stats()
	want := metric.SessionStats{Sessions: 3, Screens: 3, Samples: 6, Snapshots: 3}
	if st != want {
		t.Errorf("Stats = %+v, want %+v", st, want)
	}

	expected := `
# HELP touchmap_samples_buffered Touch samples held in memory awaiting flush
# TYPE touchmap_samples_buffered gauge
touchmap_samples_buffered 6
# HELP touchmap_sessions_active Tracking sessions currently hosted
# TYPE touchmap_sessions_active gauge
touchmap_sessions_active 3
`
	if err := testutil.GatherAndCompare(m.Prometheus(), strings.NewReader(expected),
		"touchmap_sessions_active", "touchmap_samples_buffered"); err != nil {
		t.Error(err)
	}
}

func TestRegistry_CloseAll(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx := context.Background()

	for range 5 {
		tr, _ := reg.Create(ctx)
		tr.Navigate("home")
	}

	if err := reg.CloseAll(ctx); err != nil {
		t.Fatalf("CloseAll: %v", err)
	}
	if reg.Count() != 0 {
		t.Errorf("Count = %d after CloseAll", reg.Count())
	}
}

func TestRegistry_ConcurrentCreateClose(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr, err := reg.Create(ctx)
			if err != nil {
				t.Error(err)
				return
			}
			tr.Navigate("home")
			if _, err := reg.Close(ctx, tr.ID()); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	if reg.Count() != 0 {
		t.Errorf("Count = %d", reg.Count())
	}
}
