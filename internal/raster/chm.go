package raster

import (
	"fmt"

	"github.com/treeline-data/forestscan/internal/grid"
	"github.com/treeline-data/forestscan/internal/pointcloud"
)

// CHMParams configures Canopy Height Model generation.
type CHMParams struct {
	// XResolution, YResolution are the cell sizes. Must be > 0.
	XResolution float64
	YResolution float64

	// Interpolation selects the gap-filling method for empty cells;
	// InterpNone leaves gaps as NaN.
	Interpolation Interpolation

	// InterpValidRegion restricts gap filling to a morphological valid
	// region (valid cells dilated one ring, holes filled) instead of
	// every NaN cell, preventing extrapolation far beyond data
	// coverage. Ignored when Interpolation is InterpNone.
	InterpValidRegion bool

	// InterpCleanEdges blanks interpolated cells near the original
	// data boundary after filling (erode twice, then drop anything
	// within 5 cells of the edge), suppressing fringe artifacts.
	// Ignored when Interpolation is InterpNone.
	InterpCleanEdges bool
}

// CHM generates a Canopy Height Model: per (X, Y) cell, the maximum
// HeightAboveGround (highest return = canopy top). Cells with no points
// are NaN unless gap interpolation is enabled.
//
// The returned grid is north-up (row 0 = maximum-Y row); interpolation
// runs before the flip, in bin-ascending orientation.
func CHM(b *pointcloud.Batch, p CHMParams) (*grid.Grid2D, grid.Extent, error) {
	if p.XResolution <= 0 || p.YResolution <= 0 {
		return nil, grid.Extent{}, fmt.Errorf("chm resolution must be > 0 on both axes (got %g, %g)", p.XResolution, p.YResolution)
	}
	if err := p.Interpolation.Validate(); err != nil {
		return nil, grid.Extent{}, err
	}
	if err := b.Require(pointcloud.FieldX, pointcloud.FieldY, pointcloud.FieldHAG); err != nil {
		return nil, grid.Extent{}, err
	}
	if b.Len() == 0 {
		return nil, grid.Extent{}, fmt.Errorf("no points available for CHM generation")
	}

	bin := binExtremum(b.X, b.Y, b.HeightAboveGround, p.XResolution, p.YResolution,
		func(candidate, current float64) bool { return candidate > current })

	if p.Interpolation != InterpNone {
		fillGaps(bin, p)
	}

	return bin.g.FlipY(), bin.extent, nil
}
