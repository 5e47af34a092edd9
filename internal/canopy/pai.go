package canopy

import (
	"fmt"
	"math"

	"github.com/treeline-data/forestscan/internal/grid"
)

// PAIParams configures the PAD height-band integration. MinHeight and
// MaxHeight are in the same physical units as VoxelHeight times layer
// count (metres end to end).
type PAIParams struct {
	// VoxelHeight is the vertical voxel size in metres. Must be > 0.
	VoxelHeight float64

	// MinHeight is the lower integration bound. The 1 m default skips
	// the understorey/ground-noise band.
	MinHeight float64

	// MaxHeight is the upper integration bound; nil integrates to the
	// top of the volume.
	MaxHeight *float64
}

// DefaultPAIParams returns the standard integration band for the given
// voxel height: from 1 m up to the top of the volume.
func DefaultPAIParams(voxelHeight float64) PAIParams {
	return PAIParams{VoxelHeight: voxelHeight, MinHeight: 1.0}
}

// integrationRange converts a height band into a [start, end) layer
// index range. ok is false when the band is empty: minHeight at or
// above the effective max, or a slice collapsed by index rounding.
// An empty band is a well-defined "no canopy above threshold" outcome,
// not an error.
func integrationRange(nz int, voxelHeight, minHeight float64, maxHeight *float64) (start, end int, ok bool) {
	effMax := float64(nz) * voxelHeight
	if maxHeight != nil {
		effMax = *maxHeight
	}
	if minHeight >= effMax {
		return 0, 0, false
	}
	start = int(math.Ceil(minHeight / voxelHeight))
	end = int(math.Floor(effMax / voxelHeight))
	if start < 0 {
		start = 0
	}
	if end > nz {
		end = nz
	}
	if start >= end {
		return 0, 0, false
	}
	return start, end, true
}

// PAI integrates Plant Area Density over a height band, yielding Plant
// Area Index per (x, y) column: plant surface area per unit ground area.
//
// NaN layers inside the band are skipped in the sum, but a column whose
// entire band is NaN yields NaN — "no data" must stay distinguishable
// from "zero plant area". An empty integration band yields an all-zero
// raster (no canopy above the threshold), never an error.
func PAI(pad *grid.Grid3D, p PAIParams) (*grid.Grid2D, error) {
	if p.VoxelHeight <= 0 {
		return nil, fmt.Errorf("voxel height must be > 0 metres (got %g)", p.VoxelHeight)
	}

	out := grid.NewGrid2D(pad.NX, pad.NY)
	start, end, ok := integrationRange(pad.NZ, p.VoxelHeight, p.MinHeight, p.MaxHeight)
	if !ok {
		return out, nil
	}

	for ix := 0; ix < pad.NX; ix++ {
		for iy := 0; iy < pad.NY; iy++ {
			band := pad.Column(ix, iy)[start:end]
			if grid.AllNaN(band) {
				out.Set(ix, iy, math.NaN())
				continue
			}
			out.Set(ix, iy, grid.NaNSum(band)*p.VoxelHeight)
		}
	}
	return out, nil
}
