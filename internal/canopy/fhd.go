package canopy

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/treeline-data/forestscan/internal/grid"
)

// FHD computes Foliage Height Diversity: the Shannon entropy (natural
// log) of the vertical return distribution in each (x, y) column of a
// raw return-count grid. Higher values mean returns spread evenly over
// many height layers; the maximum for nz layers is ln(nz).
//
// Columns with zero total returns yield NaN — no data, not zero
// diversity. The division into proportions is guarded so an empty
// column never faults.
func FHD(returns *grid.Grid3D) *grid.Grid2D {
	out := grid.NewGrid2D(returns.NX, returns.NY)
	prop := make([]float64, returns.NZ)

	for ix := 0; ix < returns.NX; ix++ {
		for iy := 0; iy < returns.NY; iy++ {
			col := returns.Column(ix, iy)
			total := floats.Sum(col)
			if total == 0 {
				out.Set(ix, iy, math.NaN())
				continue
			}
			for i, c := range col {
				prop[i] = grid.GuardedDiv(c, total, 0)
			}
			out.Set(ix, iy, stat.Entropy(prop))
		}
	}
	return out
}
