package render

import (
	"image"
	"math"
)

// floorTolerance absorbs float64 representation error before flooring, so
// (1−0.8)·255·5 at n = 1 floors to 255 rather than 254.
const floorTolerance = 1e-9

// Ramp maps a normalized intensity n in (0, 1] to an RGBA color. Alpha
// and red track intensity; green joins above 0.5 and blue above 0.8, so
// the ramp runs from transparent through red and yellow to white.
//
// Each channel is floor(expr) of its expression evaluated as written,
// e.g. (n−0.5)·255·3 for green, then clamped to [0, 255]. Green and blue
// are capped at alpha, so the result is valid premultiplied color.
func Ramp(n float64) (r, g, b, a uint8) {
	if !(n > 0) {
		return 0, 0, 0, 0
	}

	a = clampByte(n * 255)
	r = a

	switch {
	case n >= 0.75:
		g = r
	case n >= 0.5:
		g = min(clampByte((n-0.5)*255*3), a)
	}

	if n >= 0.8 {
		b = min(clampByte((n-0.8)*255*5), a)
	}

	return r, g, b, a
}

// clampByte floors v into [0, 255].
func clampByte(v float64) uint8 {
	// float64(v) forces rounding so no FMA fuses across the call.
	v = math.Floor(float64(v) + floorTolerance)
	switch {
	case v <= 0 || math.IsNaN(v):
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v)
	}
}

// Colorize normalizes f by its maximum and maps every positive cell
// through Ramp. Cells with zero density stay fully transparent.
//
// noSignal is true when the field is all zero; the overlay is then blank
// and callers should skip compositing.
func Colorize(f *DensityField) (overlay *image.RGBA, noSignal bool) {
	overlay = image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))

	m, _, _ := f.Max()
	if m == 0 {
		return overlay, true
	}

	for y := 0; y < f.Height; y++ {
		row := y * f.Width
		pix := overlay.Pix[y*overlay.Stride:]
		for x := 0; x < f.Width; x++ {
			v := f.Values[row+x]
			if v <= 0 {
				continue
			}
			i := x * 4
			pix[i+0], pix[i+1], pix[i+2], pix[i+3] = Ramp(v / m)
		}
	}

	return overlay, false
}
