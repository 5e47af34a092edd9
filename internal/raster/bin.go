// Package raster bins point clouds into 2D height grids: per-cell
// minimum ground elevation (DTM) and per-cell maximum height above
// ground (CHM), with optional scattered-data gap interpolation and
// morphological edge cleanup on the CHM.
package raster

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/treeline-data/forestscan/internal/grid"
)

// binned is the shared result of 2D extremum binning before the
// north-up flip: the grid in ascending-Y row order plus the cell-center
// coordinates interpolation needs.
type binned struct {
	g        *grid.Grid2D
	extent   grid.Extent
	xCenters []float64
	yCenters []float64
}

// binExtremum bins points by (X, Y) with resolution-derived edges and
// keeps, per cell, the extremum of v selected by better (candidate vs
// current). Cells with no points stay NaN. Points falling outside the
// derived bins (only possible on an exactly grid-aligned maximum edge)
// are dropped, matching the right-open digitize rule.
func binExtremum(x, y, v []float64, xres, yres float64, better func(candidate, current float64) bool) binned {
	xMin, xMax := floats.Min(x), floats.Max(x)
	yMin, yMax := floats.Min(y), floats.Max(y)

	nx := edgeCount(xMin, xMax+xres, xres) - 1
	ny := edgeCount(yMin, yMax+yres, yres) - 1

	g := grid.NewGrid2DNaN(nx, ny)
	for i := range x {
		ix := int(math.Floor((x[i] - xMin) / xres))
		iy := int(math.Floor((y[i] - yMin) / yres))
		if ix < 0 || ix >= nx || iy < 0 || iy >= ny {
			continue
		}
		cur := g.At(ix, iy)
		if math.IsNaN(cur) || better(v[i], cur) {
			g.Set(ix, iy, v[i])
		}
	}

	xc := make([]float64, nx)
	for i := range xc {
		xc[i] = xMin + (float64(i)+0.5)*xres
	}
	yc := make([]float64, ny)
	for i := range yc {
		yc[i] = yMin + (float64(i)+0.5)*yres
	}

	return binned{
		g:        g,
		extent:   grid.Extent{XMin: xMin, XMax: xMax, YMin: yMin, YMax: yMax},
		xCenters: xc,
		yCenters: yc,
	}
}

// edgeCount returns the number of edges arange(start, stop, step) would
// produce, floored at two so a degenerate single-value axis still gets
// one bin.
func edgeCount(start, stop, step float64) int {
	n := int(math.Ceil((stop - start) / step))
	if n < 2 {
		n = 2
	}
	return n
}
