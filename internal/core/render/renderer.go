package render

import (
	"context"
	"fmt"
	"image"
	"log/slog"

	"github.com/yndnr/touchmap-go/internal/core/domain"
)

// Config holds render parameters.
type Config struct {
	// Radius is the kernel size in image units. Must be positive.
	Radius int

	// KernelCacheSize bounds the number of cached kernels (0 = unlimited).
	KernelCacheSize int

	// Logger receives debug diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns the default render configuration.
func DefaultConfig() Config {
	return Config{
		Radius:          DefaultRadius,
		KernelCacheSize: 8,
	}
}

// Result is the outcome of rendering one screen.
type Result struct {
	// Image is the composited image, or the unmodified background when
	// Rendered is false.
	Image image.Image

	// Rendered reports whether an overlay was blended in.
	Rendered bool

	// Peak is the maximum accumulated density.
	Peak float64

	// Samples is the number of samples rasterized.
	Samples int
}

// Renderer runs the kernel → density → colorize → composite pipeline.
// It keeps no per-render state and is safe for concurrent use.
type Renderer struct {
	radius  int
	kernels *KernelCache
	logger  *slog.Logger
}

// NewRenderer creates a renderer. It fails when the radius is not positive.
func NewRenderer(cfg Config) (*Renderer, error) {
	if cfg.Radius <= 0 {
		return nil, domain.ErrInvalidRenderConfig.WithDetails(fmt.Sprintf("radius must be positive, got %d", cfg.Radius))
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Renderer{
		radius:  cfg.Radius,
		kernels: NewKernelCache(cfg.KernelCacheSize),
		logger:  cfg.Logger,
	}, nil
}

// Radius returns the configured kernel size.
func (r *Renderer) Radius() int {
	return r.radius
}

// Render draws the heat overlay for samples onto background.
//
// The configuration is checked before any work is done: a non-positive
// radius or an empty background fails with ErrInvalidRenderConfig and no
// partial output. An empty or fully off-image sample set is not an error;
// it yields the background unchanged with Rendered false.
func (r *Renderer) Render(ctx context.Context, background image.Image, samples []domain.TouchSample) (Result, error) {
	return r.RenderWithRadius(ctx, background, samples, r.radius)
}

// RenderWithRadius is Render with an explicit kernel size.
func (r *Renderer) RenderWithRadius(ctx context.Context, background image.Image, samples []domain.TouchSample, radius int) (Result, error) {
	if radius <= 0 {
		return Result{}, domain.ErrInvalidRenderConfig.WithDetails(fmt.Sprintf("radius must be positive, got %d", radius))
	}
	if background == nil {
		return Result{}, domain.ErrInvalidRenderConfig.WithDetails("background image is required")
	}
	b := background.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return Result{}, domain.ErrInvalidRenderConfig.WithDetails(fmt.Sprintf("image size must be positive, got %dx%d", b.Dx(), b.Dy()))
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	kernel := r.kernels.Get(radius)
	field := NewDensityField(b.Dx(), b.Dy())
	Accumulate(field, kernel, samples)

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	overlay, noSignal := Colorize(field)
	img, rendered := Composite(background, overlay, noSignal)
	peak, _, _ := field.Max()

	r.logger.Debug("heatmap rendered",
		"width", b.Dx(),
		"height", b.Dy(),
		"radius", radius,
		"samples", len(samples),
		"peak", peak,
		"rendered", rendered)

	return Result{
		Image:    img,
		Rendered: rendered,
		Peak:     peak,
		Samples:  len(samples),
	}, nil
}

// RenderRecord renders a tracked screen onto its snapshot. Records without
// a snapshot fail with ErrSnapshotMissing.
func (r *Renderer) RenderRecord(ctx context.Context, rec *domain.Record) (Result, error) {
	if rec == nil || !rec.HasSnapshot() {
		id := ""
		if rec != nil {
			id = rec.ScreenID
		}
		return Result{}, domain.ErrSnapshotMissing.WithDetails("screen_id: " + id)
	}
	return r.Render(ctx, rec.Snapshot, rec.Samples)
}
