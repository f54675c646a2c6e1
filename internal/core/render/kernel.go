package render

import (
	"math"
	"sync"
)

// DefaultRadius is the kernel size used when none is configured.
const DefaultRadius = 70

const (
	// falloff is the exponent scale of the Gaussian term, exp(-falloff·t²)
	// with t the distance relative to the kernel radius. 4.5 puts the kernel
	// edge at three standard deviations.
	falloff = 4.5

	// weightScale is the fixed-point grid weights are quantized to. Sums of
	// multiples of 2⁻¹⁶ are exact in float64, which keeps accumulation
	// independent of sample order.
	weightScale = 1 << 16
)

// Kernel is a square radial falloff template in row-major order.
type Kernel struct {
	Size    int
	Weights []float64
}

// At returns the weight at column x, row y.
func (k *Kernel) At(x, y int) float64 {
	return k.Weights[y*k.Size+x]
}

// BuildKernel generates an R×R kernel. Cells are sampled at their centers
// against the geometric center of the grid; the weight falls off as a Gaussian that is
// shifted to reach exactly zero at distance R/2 and is zero beyond it. The
// result is scaled so its peak is 1.0 and quantized to multiples of 2⁻¹⁶.
//
// For R <= 0, returns an empty kernel.
func BuildKernel(r int) *Kernel {
	if r <= 0 {
		return &Kernel{}
	}

	k := &Kernel{
		Size:    r,
		Weights: make([]float64, r*r),
	}

	radius := float64(r) / 2
	c := radius
	floor := math.Exp(-falloff)

	peak := 0.0
	for y := 0; y < r; y++ {
		dy := float64(y) + 0.5 - c
		for x := 0; x < r; x++ {
			dx := float64(x) + 0.5 - c
			d := math.Sqrt(dx*dx + dy*dy)
			if d >= radius {
				continue
			}
			t := d / radius
			w := (math.Exp(-falloff*t*t) - floor) / (1 - floor)
			k.Weights[y*r+x] = w
			if w > peak {
				peak = w
			}
		}
	}

	if peak == 0 {
		return k
	}
	for i, w := range k.Weights {
		k.Weights[i] = math.Round(w/peak*weightScale) / weightScale
	}

	return k
}

// KernelCache caches kernels by size. Every sample of a render shares one
// kernel, and a process usually renders with a single radius.
//
// KernelCache is safe for concurrent use.
type KernelCache struct {
	mu     sync.RWMutex
	cache  map[int]*Kernel
	maxLen int
}

// NewKernelCache creates a kernel cache holding at most maxLen kernels.
// A maxLen of 0 means unlimited.
func NewKernelCache(maxLen int) *KernelCache {
	return &KernelCache{
		cache:  make(map[int]*Kernel),
		maxLen: maxLen,
	}
}

// Get retrieves a kernel from cache or builds and caches it.
// Cached kernels are shared and must not be modified.
func (c *KernelCache) Get(r int) *Kernel {
	c.mu.RLock()
	if k, ok := c.cache[r]; ok {
		c.mu.RUnlock()
		return k
	}
	c.mu.RUnlock()

	k := BuildKernel(r)

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.cache[r]; ok {
		return existing
	}
	if c.maxLen > 0 && len(c.cache) >= c.maxLen {
		// Radii rarely change at runtime; dropping everything is enough.
		clear(c.cache)
	}
	c.cache[r] = k
	return k
}

// Len returns the number of cached kernels.
func (c *KernelCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}
