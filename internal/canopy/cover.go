package canopy

import (
	"fmt"
	"math"

	"github.com/treeline-data/forestscan/internal/grid"
)

// CoverParams configures the Beer–Lambert canopy cover computation.
type CoverParams struct {
	// VoxelHeight is the vertical voxel size in metres. Must be > 0.
	VoxelHeight float64

	// MinHeight is the height-above-ground threshold defining "canopy".
	// The 2 m default follows the GEDI convention.
	MinHeight float64

	// MaxHeight is the upper integration bound; nil integrates to the
	// top of the volume.
	MaxHeight *float64

	// K is the extinction coefficient. Must be >= 0; typical value 0.5.
	K float64
}

// DefaultCoverParams returns the GEDI-convention cover parameters for
// the given voxel height: 2 m canopy threshold, extinction 0.5.
func DefaultCoverParams(voxelHeight float64) CoverParams {
	return CoverParams{VoxelHeight: voxelHeight, MinHeight: 2.0, K: 0.5}
}

// Cover computes the canopy cover fraction above a height threshold via
// the Beer–Lambert relation Cover = 1 − exp(−k · PAI_above).
//
// Results are clamped to [0, 1]; non-finite intermediates become NaN
// first, and columns whose PAD is entirely NaN over the integration
// band stay NaN (no-data propagation, same rule as PAI). An empty
// integration band yields an all-zero raster.
func Cover(pad *grid.Grid3D, p CoverParams) (*grid.Grid2D, error) {
	if p.VoxelHeight <= 0 {
		return nil, fmt.Errorf("voxel height must be > 0 metres (got %g)", p.VoxelHeight)
	}
	if p.K < 0 {
		return nil, fmt.Errorf("extinction coefficient k must be >= 0 (got %g)", p.K)
	}

	out := grid.NewGrid2D(pad.NX, pad.NY)
	start, end, ok := integrationRange(pad.NZ, p.VoxelHeight, p.MinHeight, p.MaxHeight)
	if !ok {
		// No foliage above threshold: cover is zero everywhere.
		return out, nil
	}

	pai, err := PAI(pad, PAIParams{
		VoxelHeight: p.VoxelHeight,
		MinHeight:   p.MinHeight,
		MaxHeight:   p.MaxHeight,
	})
	if err != nil {
		return nil, err
	}

	for ix := 0; ix < pad.NX; ix++ {
		for iy := 0; iy < pad.NY; iy++ {
			if grid.AllNaN(pad.Column(ix, iy)[start:end]) {
				out.Set(ix, iy, math.NaN())
				continue
			}
			c := 1.0 - math.Exp(-p.K*pai.At(ix, iy))
			if math.IsInf(c, 0) || math.IsNaN(c) {
				out.Set(ix, iy, math.NaN())
				continue
			}
			out.Set(ix, iy, math.Min(1.0, math.Max(0.0, c)))
		}
	}
	return out, nil
}
