package canopy

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/treeline-data/forestscan/internal/grid"
)

func onesGrid(nx, ny, nz int) *grid.Grid3D {
	g := grid.NewGrid3D(nx, ny, nz)
	for i := range g.Data {
		g.Data[i] = 1
	}
	return g
}

func fptr(v float64) *float64 { return &v }

func TestPAIFixedBand(t *testing.T) {
	t.Parallel()

	// All-ones (10,10,10) PAD, band [2m, 5m): three unit layers of
	// density one integrate to exactly 3 everywhere.
	pad := onesGrid(10, 10, 10)
	pai, err := PAI(pad, PAIParams{VoxelHeight: 1, MinHeight: 2, MaxHeight: fptr(5)})
	require.NoError(t, err)
	for _, v := range pai.Data {
		assert.InDelta(t, 3.0, v, 1e-12)
	}
}

func TestPAIEmptyRangeReturnsZeros(t *testing.T) {
	t.Parallel()

	pad := onesGrid(4, 4, 10)

	t.Run("min above top of volume", func(t *testing.T) {
		t.Parallel()
		pai, err := PAI(pad, PAIParams{VoxelHeight: 1, MinHeight: 12})
		require.NoError(t, err)
		for _, v := range pai.Data {
			assert.Equal(t, 0.0, v)
		}
	})

	t.Run("min equals max", func(t *testing.T) {
		t.Parallel()
		pai, err := PAI(pad, PAIParams{VoxelHeight: 1, MinHeight: 5, MaxHeight: fptr(5)})
		require.NoError(t, err)
		for _, v := range pai.Data {
			assert.Equal(t, 0.0, v)
		}
	})

	t.Run("range collapsed by rounding", func(t *testing.T) {
		t.Parallel()
		// ceil(2.2/1)=3, floor(2.9/1)=2: start >= end.
		pai, err := PAI(pad, PAIParams{VoxelHeight: 1, MinHeight: 2.2, MaxHeight: fptr(2.9)})
		require.NoError(t, err)
		for _, v := range pai.Data {
			assert.Equal(t, 0.0, v)
		}
	})
}

func TestPAIAllNaNColumnPropagates(t *testing.T) {
	t.Parallel()

	pad := onesGrid(3, 3, 6)
	// Blank the whole integration band for column (1,2).
	for iz := 0; iz < 6; iz++ {
		pad.Set(1, 2, iz, math.NaN())
	}
	pai, err := PAI(pad, PAIParams{VoxelHeight: 1, MinHeight: 1})
	require.NoError(t, err)
	assert.True(t, math.IsNaN(pai.At(1, 2)))
	assert.False(t, math.IsNaN(pai.At(0, 0)))
}

func TestPAIIgnoresPartialNaN(t *testing.T) {
	t.Parallel()

	pad := onesGrid(1, 1, 5)
	pad.Set(0, 0, 2, math.NaN())
	pai, err := PAI(pad, PAIParams{VoxelHeight: 1, MinHeight: 0})
	require.NoError(t, err)
	// Layers 0..4 minus the NaN layer: 4 unit contributions.
	assert.InDelta(t, 4.0, pai.At(0, 0), 1e-12)
}

func TestPAIValidatesVoxelHeight(t *testing.T) {
	t.Parallel()

	_, err := PAI(onesGrid(1, 1, 1), PAIParams{VoxelHeight: 0})
	assert.Error(t, err)
}

func TestPAIScalesWithVoxelHeight(t *testing.T) {
	t.Parallel()

	pad := onesGrid(2, 2, 4)
	pai, err := PAI(pad, PAIParams{VoxelHeight: 0.5, MinHeight: 0})
	require.NoError(t, err)
	// Four layers of density 1 at 0.5m each.
	assert.InDelta(t, 2.0, pai.At(0, 0), 1e-12)
}
