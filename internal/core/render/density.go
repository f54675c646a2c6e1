package render

import (
	"math"

	"github.com/yndnr/touchmap-go/internal/core/domain"
)

// DensityField is a width×height grid of accumulated kernel weights in
// row-major order. Values are never negative.
type DensityField struct {
	Width  int
	Height int
	Values []float64
}

// NewDensityField creates a zeroed field.
func NewDensityField(width, height int) *DensityField {
	return &DensityField{
		Width:  width,
		Height: height,
		Values: make([]float64, width*height),
	}
}

// At returns the value at column x, row y.
func (f *DensityField) At(x, y int) float64 {
	return f.Values[y*f.Width+x]
}

// Max returns the largest value in the field and its position.
// An all-zero field returns 0 at (0, 0).
//
// Ties resolve to the first cell in row-major order. An even-sized kernel
// peaks on a 2×2 plateau, so a lone sample at (50, 50) with radius 70
// reports (49, 49) even though (50, 50) holds the same value.
func (f *DensityField) Max() (m float64, x, y int) {
	idx := 0
	for i, v := range f.Values {
		if v > m {
			m = v
			idx = i
		}
	}
	if f.Width == 0 {
		return m, 0, 0
	}
	return m, idx % f.Width, idx / f.Width
}

// Placement returns the grid position of a kernel's top-left cell for a
// sample at p.
func Placement(p domain.Point, size int) (x, y int) {
	half := size / 2
	return int(math.Round(p.X)) - half, int(math.Round(p.Y)) - half
}

// Accumulate adds the kernel at every sample position. Overlapping
// samples intensify; kernel cells falling outside the field are dropped
// individually so touches near an edge still contribute their in-bounds
// part. Samples with non-finite or absurdly large coordinates are skipped.
func Accumulate(f *DensityField, k *Kernel, samples []domain.TouchSample) {
	if k.Size == 0 || f.Width <= 0 || f.Height <= 0 {
		return
	}

	for _, s := range samples {
		if !placeable(s.Position.X) || !placeable(s.Position.Y) {
			continue
		}
		ox, oy := Placement(s.Position, k.Size)
		addKernel(f, k, ox, oy)
	}
}

// addKernel adds k with its top-left cell at (ox, oy), clipped to f.
func addKernel(f *DensityField, k *Kernel, ox, oy int) {
	// Clip the kernel rectangle once instead of testing every cell.
	x0, y0 := max(0, -ox), max(0, -oy)
	x1, y1 := min(k.Size, f.Width-ox), min(k.Size, f.Height-oy)
	if x0 >= x1 || y0 >= y1 {
		return
	}

	for ky := y0; ky < y1; ky++ {
		row := (oy+ky)*f.Width + ox
		krow := ky * k.Size
		for kx := x0; kx < x1; kx++ {
			f.Values[row+kx] += k.Weights[krow+kx]
		}
	}
}

// maxCoordinate bounds sample coordinates so placement arithmetic cannot
// overflow int. Kernels placed this far out never reach a field anyway.
const maxCoordinate = 1 << 30

func placeable(v float64) bool {
	return !math.IsNaN(v) && math.Abs(v) < maxCoordinate
}
