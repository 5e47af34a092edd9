// Package grid provides the dense array substrate for voxel and raster
// computation: flat-backed 2D/3D float64 grids with NaN-aware reductions
// and the guarded arithmetic the metric engine depends on.
//
// NaN is the "no data" sentinel throughout. A zero value is a measured
// zero; a NaN is the absence of a measurement. Keeping the two apart is
// a core design rule (empty voxel columns must not read as zero foliage
// downstream), so reductions here either skip NaN explicitly or report
// when a slice is entirely NaN.
package grid

import "math"

// Grid2D is a dense (X, Y) float64 grid. Data is flat with Y contiguous:
// index = ix*NY + iy. Row iy=0 is, by pipeline convention, the
// northernmost (maximum Y) row once a grid has been oriented north-up.
type Grid2D struct {
	NX, NY int
	Data   []float64
}

// NewGrid2D returns a zero-filled grid of the given shape.
func NewGrid2D(nx, ny int) *Grid2D {
	return &Grid2D{NX: nx, NY: ny, Data: make([]float64, nx*ny)}
}

// NewGrid2DNaN returns a grid of the given shape filled with NaN.
func NewGrid2DNaN(nx, ny int) *Grid2D {
	g := NewGrid2D(nx, ny)
	nan := math.NaN()
	for i := range g.Data {
		g.Data[i] = nan
	}
	return g
}

// At returns the value at (ix, iy).
func (g *Grid2D) At(ix, iy int) float64 { return g.Data[ix*g.NY+iy] }

// Set stores v at (ix, iy).
func (g *Grid2D) Set(ix, iy int, v float64) { g.Data[ix*g.NY+iy] = v }

// Clone returns a deep copy of the grid.
func (g *Grid2D) Clone() *Grid2D {
	out := NewGrid2D(g.NX, g.NY)
	copy(out.Data, g.Data)
	return out
}

// FlipY returns a new grid mirrored along the Y axis, so that row 0 and
// row NY-1 swap. Used to restore north-up orientation after binning with
// ascending Y edges.
func (g *Grid2D) FlipY() *Grid2D {
	out := NewGrid2D(g.NX, g.NY)
	for ix := 0; ix < g.NX; ix++ {
		for iy := 0; iy < g.NY; iy++ {
			out.Data[ix*g.NY+(g.NY-1-iy)] = g.Data[ix*g.NY+iy]
		}
	}
	return out
}

// Grid3D is a dense (X, Y, Z) float64 grid. Data is flat with Z
// contiguous: index = (ix*NY+iy)*NZ + iz, so a vertical column is a
// contiguous slice. Z index 0 is the lowest (ground) layer.
type Grid3D struct {
	NX, NY, NZ int
	Data       []float64
}

// NewGrid3D returns a zero-filled grid of the given shape.
func NewGrid3D(nx, ny, nz int) *Grid3D {
	return &Grid3D{NX: nx, NY: ny, NZ: nz, Data: make([]float64, nx*ny*nz)}
}

// At returns the value at (ix, iy, iz).
func (g *Grid3D) At(ix, iy, iz int) float64 {
	return g.Data[(ix*g.NY+iy)*g.NZ+iz]
}

// Set stores v at (ix, iy, iz).
func (g *Grid3D) Set(ix, iy, iz int, v float64) {
	g.Data[(ix*g.NY+iy)*g.NZ+iz] = v
}

// Column returns the vertical (Z) column at (ix, iy) as a mutable slice
// view into the grid's backing array, ground layer first.
func (g *Grid3D) Column(ix, iy int) []float64 {
	base := (ix*g.NY + iy) * g.NZ
	return g.Data[base : base+g.NZ]
}

// Extent is a spatial bounding box [XMin, XMax, YMin, YMax] in the
// source coordinate system, reported alongside every grid so raster
// sinks can georeference the output.
type Extent struct {
	XMin, XMax float64
	YMin, YMax float64
}
