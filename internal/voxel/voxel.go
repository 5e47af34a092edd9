// Package voxel bins height-normalized point batches into a regular 3D
// return-count grid over (X, Y, HeightAboveGround). The count grid and
// its extent are the sole input to the vertical-profile metric engine.
package voxel

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/treeline-data/forestscan/internal/grid"
	"github.com/treeline-data/forestscan/internal/pointcloud"
)

// Resolution is the per-axis voxel size (same units as the point
// coordinates; metres for projected LiDAR).
type Resolution struct {
	DX, DY, DZ float64
}

// Validate rejects non-positive cell sizes.
func (r Resolution) Validate() error {
	if r.DX <= 0 || r.DY <= 0 || r.DZ <= 0 {
		return fmt.Errorf("voxel resolution must be > 0 on every axis (got %g, %g, %g)", r.DX, r.DY, r.DZ)
	}
	return nil
}

// edgesUp generates ascending bin edges start, start+step, ... stopping
// before stop, always yielding at least two edges (one bin) so a
// degenerate single-value axis still bins.
func edgesUp(start, stop, step float64) []float64 {
	n := int(math.Ceil((stop - start) / step))
	if n < 2 {
		n = 2
	}
	edges := make([]float64, n)
	for k := range edges {
		edges[k] = start + float64(k)*step
	}
	return edges
}

// digitize maps v onto the bin index for ascending uniform edges. A
// value landing exactly on the final edge belongs to the last bin
// (right-closed last bin, matching the histogram convention the Y-flip
// logic was built against).
func digitize(v, e0, step float64, nbins int) int {
	i := int(math.Floor((v - e0) / step))
	if i == nbins && v <= e0+float64(nbins)*step {
		i = nbins - 1
	}
	return i
}

// Assign bins a point batch into a 3D return-count grid.
//
// Points with HeightAboveGround < 0 are excluded first: below-ground
// returns are normalization artifacts, not canopy. Bin edges are
// anchored so the grid is reproducible across tiles: X starts on a
// floor-aligned multiple of DX, Y on a ceil-aligned multiple of DY, and
// Z always starts at height 0 so the ground layer is well defined for
// PAD/PAI ground masking.
//
// The returned grid is north-up: Y row 0 is the maximum-Y row. The
// extent is [xmin, xmax, ymin, ymax] in ordinary ascending sense.
func Assign(b *pointcloud.Batch, res Resolution) (*grid.Grid3D, grid.Extent, error) {
	if err := res.Validate(); err != nil {
		return nil, grid.Extent{}, err
	}
	if err := b.Require(pointcloud.FieldX, pointcloud.FieldY, pointcloud.FieldHAG); err != nil {
		return nil, grid.Extent{}, err
	}

	pts := b.FilterMinHAG(0)
	if pts.Len() == 0 {
		return nil, grid.Extent{}, fmt.Errorf("no points at or above ground height; cannot derive voxel bins")
	}

	xMin, xMax := floats.Min(pts.X), floats.Max(pts.X)
	yMin, yMax := floats.Min(pts.Y), floats.Max(pts.Y)
	hagMax := floats.Max(pts.HeightAboveGround)

	x0 := math.Floor(xMin/res.DX) * res.DX
	xEdges := edgesUp(x0, xMax+res.DX, res.DX)

	// Y edges are conceptually generated descending from a ceil-aligned
	// maximum (north-up rasters); binning uses the ascending mirror and
	// the row order is flipped when counts are stored.
	y0 := math.Ceil(yMax/res.DY) * res.DY
	yEdgesDesc := edgesUp(-y0, -(yMin - res.DY), res.DY)
	for i := range yEdgesDesc {
		yEdgesDesc[i] = -yEdgesDesc[i]
	}
	yEdgesAsc := grid.Reverse(yEdgesDesc)

	zEdges := edgesUp(0, hagMax+res.DZ, res.DZ)

	nx, ny, nz := len(xEdges)-1, len(yEdgesAsc)-1, len(zEdges)-1
	counts := grid.NewGrid3D(nx, ny, nz)

	for i := 0; i < pts.Len(); i++ {
		ix := digitize(pts.X[i], xEdges[0], res.DX, nx)
		iyAsc := digitize(pts.Y[i], yEdgesAsc[0], res.DY, ny)
		iz := digitize(pts.HeightAboveGround[i], 0, res.DZ, nz)
		if ix < 0 || ix >= nx || iyAsc < 0 || iyAsc >= ny || iz < 0 || iz >= nz {
			continue
		}
		// Row 0 is the northernmost row.
		iy := ny - 1 - iyAsc
		counts.Set(ix, iy, iz, counts.At(ix, iy, iz)+1)
	}

	extent := grid.Extent{
		XMin: xEdges[0],
		XMax: xEdges[len(xEdges)-1],
		YMin: yEdgesDesc[len(yEdgesDesc)-1],
		YMax: yEdgesDesc[0],
	}
	return counts, extent, nil
}
