package canopy

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/treeline-data/forestscan/internal/grid"
)

func TestFHDUniformColumn(t *testing.T) {
	t.Parallel()

	// Returns spread evenly over three layers: entropy is exactly ln(3).
	counts := onesGrid(3, 3, 3)
	fhd := FHD(counts)
	for _, v := range fhd.Data {
		assert.InDelta(t, math.Log(3), v, 1e-12)
	}
}

func TestFHDSingleLayerIsZero(t *testing.T) {
	t.Parallel()

	counts := grid.NewGrid3D(1, 1, 5)
	counts.Set(0, 0, 3, 42)
	fhd := FHD(counts)
	assert.InDelta(t, 0.0, fhd.At(0, 0), 1e-12)
}

func TestFHDEmptyColumnIsNaN(t *testing.T) {
	t.Parallel()

	counts := onesGrid(2, 2, 4)
	col := counts.Column(1, 0)
	for i := range col {
		col[i] = 0
	}
	fhd := FHD(counts)
	assert.True(t, math.IsNaN(fhd.At(1, 0)))
	assert.False(t, math.IsNaN(fhd.At(0, 0)))
}

func TestFHDBounds(t *testing.T) {
	t.Parallel()

	// Any non-empty column stays within [0, ln(nz)].
	counts := grid.NewGrid3D(2, 2, 6)
	vals := [][]float64{
		{1, 0, 0, 0, 0, 0},
		{5, 1, 0, 2, 0, 0},
		{1, 1, 1, 1, 1, 1},
		{10, 1, 1, 1, 1, 1},
	}
	i := 0
	for ix := 0; ix < 2; ix++ {
		for iy := 0; iy < 2; iy++ {
			copy(counts.Column(ix, iy), vals[i])
			i++
		}
	}
	fhd := FHD(counts)
	for _, v := range fhd.Data {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, math.Log(6))
	}
}
