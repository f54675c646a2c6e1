package service

import (
	"context"
	"image"

	"github.com/yndnr/touchmap-go/internal/core/domain"
)

// TouchSink receives touch samples as they are delivered.
type TouchSink interface {
	OnTouchSample(screenID string, s domain.TouchSample)
}

// ScreenObserver is notified when a screen becomes active.
type ScreenObserver interface {
	OnScreenActivated(screenID string)
}

// Capturer produces a snapshot of a screen. Capture may block; it runs
// off the caller's goroutine.
type Capturer interface {
	Capture(ctx context.Context, screenID string) (image.Image, error)
}

// CapturerFunc adapts a function to Capturer.
type CapturerFunc func(ctx context.Context, screenID string) (image.Image, error)

// Capture implements Capturer.
func (f CapturerFunc) Capture(ctx context.Context, screenID string) (image.Image, error) {
	return f(ctx, screenID)
}
