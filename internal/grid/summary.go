package grid

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary holds per-raster statistics recorded in the raster catalog:
// total cell count, finite (non-NaN) cell count, and the min/max/mean of
// the finite cells. Min, Max and Mean are NaN when no finite cell exists.
type Summary struct {
	Cells       int
	FiniteCells int
	Min         float64
	Max         float64
	Mean        float64
}

// Summarize computes catalog statistics for a 2D raster. NaN cells are
// excluded before the reductions so nodata never poisons the stats.
func Summarize(g *Grid2D) Summary {
	finite := make([]float64, 0, len(g.Data))
	for _, v := range g.Data {
		if !math.IsNaN(v) {
			finite = append(finite, v)
		}
	}
	s := Summary{Cells: len(g.Data), FiniteCells: len(finite)}
	if len(finite) == 0 {
		s.Min, s.Max, s.Mean = math.NaN(), math.NaN(), math.NaN()
		return s
	}
	s.Min = floats.Min(finite)
	s.Max = floats.Max(finite)
	s.Mean = stat.Mean(finite, nil)
	return s
}
