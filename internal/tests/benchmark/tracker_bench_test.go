package benchmark

import (
	"context"
	"fmt"
	"log/slog"
	"testing"

	"github.com/yndnr/touchmap-go/internal/core/render"
	"github.com/yndnr/touchmap-go/internal/core/service"
)

func newTracker(b *testing.B, opts ...service.TrackerOption) *service.Tracker {
	b.Helper()
	r, err := render.NewRenderer(render.DefaultConfig())
	if err != nil {
		b.Fatal(err)
	}
	t, err := service.NewTracker("ths-bench", r, opts...)
	if err != nil {
		b.Fatal(err)
	}
	b.Cleanup(t.Close)
	return t
}

// BenchmarkTrackerAddSample measures sample intake on the active screen.
func BenchmarkTrackerAddSample(b *testing.B) {
	t := newTracker(b)
	if _, err := t.Navigate("home"); err != nil {
		b.Fatal(err)
	}
	samples := newSamples(1024, ScreenSizes[0])

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		t.AddSample("", samples[i%len(samples)])
	}
	b.StopTimer()
	reportMemory(b, "mem")
}

// BenchmarkTrackerAddSample_Parallel measures intake under contention.
func BenchmarkTrackerAddSample_Parallel(b *testing.B) {
	t := newTracker(b)
	if _, err := t.Navigate("home"); err != nil {
		b.Fatal(err)
	}
	samples := newSamples(1024, ScreenSizes[0])

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			t.AddSample("home", samples[i%len(samples)])
			i++
		}
	})
}

// BenchmarkTrackerNavigate measures screen switches across a small app.
func BenchmarkTrackerNavigate(b *testing.B) {
	t := newTracker(b)
	screens := []string{"home", "search", "detail", "cart", "checkout"}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := t.Navigate(screens[i%len(screens)]); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkTrackerFlush measures rendering every screen of a session.
func BenchmarkTrackerFlush(b *testing.B) {
	size := ScreenSizes[0]
	snapshot := newSnapshot(size)
	samples := newSamples(500, size)
	ctx := context.Background()

	for _, screens := range []int{1, 4, 16} {
		b.Run(fmt.Sprintf("screens_%d", screens), func(b *testing.B) {
			t := newTracker(b, service.WithLogger(slog.New(slog.DiscardHandler)))

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				b.StopTimer()
				for s := range screens {
					id := fmt.Sprintf("screen-%d", s)
					if _, err := t.Navigate(id); err != nil {
						b.Fatal(err)
					}
					t.AttachSnapshot(id, snapshot)
					for _, sample := range samples {
						t.AddSample(id, sample)
					}
				}
				b.StartTimer()

				if _, err := t.Flush(ctx); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
