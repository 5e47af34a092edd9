package raster

import (
	"fmt"

	"github.com/treeline-data/forestscan/internal/grid"
	"github.com/treeline-data/forestscan/internal/pointcloud"
)

// DTM generates a Digital Terrain Model from classified ground points:
// per (X, Y) cell, the minimum Z (lowest return = ground surface).
// The input batches are merged into one logical point set; they are
// expected to be classification-filtered already.
//
// The returned grid is north-up (row 0 = maximum-Y row) and cells with
// no ground points are NaN. Resolution is the cell size on both axes.
func DTM(groundBatches []*pointcloud.Batch, resolution float64) (*grid.Grid2D, grid.Extent, error) {
	if resolution <= 0 {
		return nil, grid.Extent{}, fmt.Errorf("dtm resolution must be > 0 (got %g)", resolution)
	}

	merged := pointcloud.Merge(groundBatches)
	if err := merged.Require(pointcloud.FieldX, pointcloud.FieldY, pointcloud.FieldZ); err != nil {
		return nil, grid.Extent{}, fmt.Errorf("ground point data unusable for DTM: %w", err)
	}
	if merged.Len() == 0 {
		return nil, grid.Extent{}, fmt.Errorf("no ground points available for DTM generation")
	}

	b := binExtremum(merged.X, merged.Y, merged.Z, resolution, resolution,
		func(candidate, current float64) bool { return candidate < current })

	return b.g.FlipY(), b.extent, nil
}
