// Package canopy is the vertical-profile metric engine. It consumes the
// 3D return-count grid produced by the voxelizer and derives
// physically-meaningful canopy structure metrics: Plant Area Density
// (Beer–Lambert inversion), Plant Area Index (height-band integration),
// canopy cover (extinction at a height threshold) and Foliage Height
// Diversity (vertical return entropy).
//
// Throughout the package, NaN means "no data" and zero means "measured
// zero"; the two are never conflated. Parameter mistakes (non-positive
// voxel height, negative extinction coefficient) fail fast with an
// error, while numerical degeneracies (zero shots through a layer,
// empty columns) are trapped locally and become NaN.
package canopy

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/treeline-data/forestscan/internal/grid"
)

// PADParams configures the Beer–Lambert PAD inversion.
type PADParams struct {
	// VoxelHeight is the vertical size of each voxel layer in metres.
	// Must be > 0.
	VoxelHeight float64

	// BeerLambertConstant scales the log-ratio attenuation term.
	// Typical value: 1.0.
	BeerLambertConstant float64

	// DropGround forces the lowest layer's PAD to NaN. Ground return
	// noise is not foliage; enabled in the defaults.
	DropGround bool
}

// DefaultPADParams returns the standard inversion parameters for the
// given voxel height: Beer–Lambert constant 1.0, ground layer dropped.
func DefaultPADParams(voxelHeight float64) PADParams {
	return PADParams{
		VoxelHeight:         voxelHeight,
		BeerLambertConstant: 1.0,
		DropGround:          true,
	}
}

// PAD computes Plant Area Density per voxel from raw return counts
// using the Beer–Lambert law applied vertically.
//
// For each (x, y) column the laser shots are traced top-down: the top
// layer sees every shot that eventually leaves the column, and each
// layer below sees whatever the layer above let through. A layer's PAD
// is ln(shotsIn/shotsOut) / (k * voxelHeight). A layer no shot passes
// through is undefined (NaN), not foliage-free: zero transmitted pulses
// carry no information about what lies below. Columns with zero returns
// over all Z are entirely NaN for the same reason.
//
// The returned grid has the same shape as the input and shares no
// storage with it.
func PAD(returns *grid.Grid3D, p PADParams) (*grid.Grid3D, error) {
	if p.VoxelHeight <= 0 {
		return nil, fmt.Errorf("voxel height must be > 0 metres (got %g)", p.VoxelHeight)
	}

	out := grid.NewGrid3D(returns.NX, returns.NY, returns.NZ)
	nz := returns.NZ
	denom := p.BeerLambertConstant * p.VoxelHeight

	for ix := 0; ix < returns.NX; ix++ {
		for iy := 0; iy < returns.NY; iy++ {
			col := returns.Column(ix, iy)
			pad := out.Column(ix, iy)

			total := floats.Sum(col)
			if total == 0 {
				// A column with literally no data is "no data",
				// not "zero plant area".
				grid.Fill(pad, math.NaN())
				continue
			}

			// Walk layers from the top of the column down, tracking
			// the shots entering and leaving each layer.
			shotsIn := total
			cum := 0.0
			for k := 0; k < nz; k++ {
				iz := nz - 1 - k
				cum += col[iz]
				shotsOut := total - cum

				v := math.NaN()
				if shotsOut > 0 && shotsIn > 0 {
					v = math.Log(shotsIn/shotsOut) / denom
					if math.IsInf(v, 0) || math.IsNaN(v) {
						v = math.NaN()
					}
				}
				pad[iz] = v
				shotsIn = shotsOut
			}

			if p.DropGround {
				pad[0] = math.NaN()
			}
		}
	}
	return out, nil
}
