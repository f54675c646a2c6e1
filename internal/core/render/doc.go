// Package render turns recorded touch samples into a heat overlay
// composited onto a screen snapshot.
//
// The pipeline runs in four steps, each usable on its own:
//
//   - BuildKernel: a fixed R×R radial falloff template
//   - Accumulate: rasterizes samples through the kernel onto a DensityField
//   - Colorize: normalizes the field and maps it onto an RGBA color ramp
//   - Composite: source-over blends the overlay onto the snapshot
//
// Renderer chains the steps and caches kernels per radius. All steps are
// deterministic: the same inputs always produce byte-identical output.
package render
