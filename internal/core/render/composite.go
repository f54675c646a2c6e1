package render

import (
	"image"

	"github.com/anthonynsimon/bild/clone"
	"golang.org/x/image/draw"
)

// Composite blends overlay onto background with source-over, driven by
// the overlay's per-pixel alpha. The background is never modified; the
// result is a new image with the background's bounds.
//
// When noSignal is set the background is returned as is and rendered is
// false.
func Composite(background image.Image, overlay *image.RGBA, noSignal bool) (out image.Image, rendered bool) {
	if noSignal || overlay == nil {
		return background, false
	}

	b := background.Bounds()
	dst := clone.AsRGBA(background)

	// The overlay is anchored at the origin; shift it onto the background's
	// bounds so images with a non-zero Min line up.
	draw.Draw(dst, b, overlay, overlay.Bounds().Min, draw.Over)

	return dst, true
}
