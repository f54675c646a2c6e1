package benchmark

import (
	"fmt"
	"image"
	"image/color"
	"math/rand/v2"
	"runtime"
	"testing"
	"time"

	"github.com/yndnr/touchmap-go/internal/core/domain"
)

// SampleCounts defines the per-screen sample counts for benchmarking.
var SampleCounts = []int{100, 1000, 10000}

// ScreenSizes are common phone snapshot sizes.
var ScreenSizes = []image.Point{
	{X: 390, Y: 844},
	{X: 1170, Y: 2532},
}

// newSnapshot returns an opaque gray snapshot.
func newSnapshot(size image.Point) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size.X, size.Y))
	gray := color.RGBA{R: 200, G: 200, B: 200, A: 255}
	for y := range size.Y {
		for x := range size.X {
			img.SetRGBA(x, y, gray)
		}
	}
	return img
}

// newSamples scatters n samples over size, clustered the way taps gather
// around controls.
func newSamples(n int, size image.Point) []domain.TouchSample {
	r := rand.New(rand.NewPCG(1, uint64(n)))
	hot := []domain.Point{
		{X: float64(size.X) / 2, Y: float64(size.Y) * 0.9},
		{X: float64(size.X) * 0.1, Y: float64(size.Y) * 0.05},
		{X: float64(size.X) * 0.8, Y: float64(size.Y) * 0.4},
	}

	out := make([]domain.TouchSample, n)
	start := time.Now()
	for i := range out {
		c := hot[i%len(hot)]
		out[i] = domain.TouchSample{
			Position: domain.Point{
				X: c.X + r.NormFloat64()*float64(size.X)/20,
				Y: c.Y + r.NormFloat64()*float64(size.Y)/40,
			},
			Timestamp: start.Add(time.Duration(i) * 10 * time.Millisecond),
			Phase:     domain.Phase(i % 4),
		}
	}
	return out
}

// reportMemory reports memory usage.
func reportMemory(b *testing.B, prefix string) {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	b.ReportMetric(float64(m.Alloc)/(1024*1024), prefix+"_MB")
	b.ReportMetric(float64(m.NumGC), prefix+"_GC")
}

// runWithSampleCounts runs benchFn for every sample count.
func runWithSampleCounts(b *testing.B, counts []int, benchFn func(b *testing.B, count int)) {
	for _, count := range counts {
		b.Run(fmt.Sprintf("samples_%d", count), func(b *testing.B) {
			benchFn(b, count)
		})
	}
}
