package voxel

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/treeline-data/forestscan/internal/grid"
	"github.com/treeline-data/forestscan/internal/pointcloud"
)

func TestResolutionValidate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, Resolution{1, 1, 1}.Validate())
	assert.Error(t, Resolution{0, 1, 1}.Validate())
	assert.Error(t, Resolution{1, -2, 1}.Validate())
	assert.Error(t, Resolution{1, 1, 0}.Validate())
}

func TestAssignCountsAndOrientation(t *testing.T) {
	t.Parallel()

	// Three points in a 2x2 (x,y) footprint with two height layers.
	b := &pointcloud.Batch{
		X:                 []float64{0.2, 1.5, 0.7},
		Y:                 []float64{0.2, 0.3, 1.8},
		HeightAboveGround: []float64{0.5, 1.2, 0.1},
	}
	counts, extent, err := Assign(b, Resolution{1, 1, 1})
	require.NoError(t, err)

	require.Equal(t, 2, counts.NX)
	require.Equal(t, 2, counts.NY)
	require.Equal(t, 2, counts.NZ)

	// Row 0 is the northernmost row: the y=1.8 point lands there.
	assert.Equal(t, 1.0, counts.At(0, 0, 0))
	// Southern row holds the other two points.
	assert.Equal(t, 1.0, counts.At(0, 1, 0))
	assert.Equal(t, 1.0, counts.At(1, 1, 1))
	assert.Equal(t, 3.0, sum(counts))

	want := grid.Extent{XMin: 0, XMax: 2, YMin: 0, YMax: 2}
	assert.Empty(t, cmp.Diff(want, extent))
}

func TestAssignFiltersBelowGround(t *testing.T) {
	t.Parallel()

	b := &pointcloud.Batch{
		X:                 []float64{0.5, 0.6},
		Y:                 []float64{0.5, 0.6},
		HeightAboveGround: []float64{1.0, -0.5},
	}
	counts, _, err := Assign(b, Resolution{1, 1, 1})
	require.NoError(t, err)
	assert.Equal(t, 1.0, sum(counts))
}

func TestAssignShapeInvariant(t *testing.T) {
	t.Parallel()

	b := &pointcloud.Batch{
		X:                 []float64{3.1, 17.8, 9.4, 12.0},
		Y:                 []float64{-4.2, 6.9, 1.1, 3.3},
		HeightAboveGround: []float64{0.4, 22.6, 7.1, 14.9},
	}
	res := Resolution{DX: 2.5, DY: 3.0, DZ: 5.0}
	counts, _, err := Assign(b, res)
	require.NoError(t, err)

	// Shape tracks ceil(span/resolution) within one bin from edge
	// alignment.
	assert.InDelta(t, math.Ceil((17.8-3.1)/res.DX), float64(counts.NX), 1)
	assert.InDelta(t, math.Ceil((6.9+4.2)/res.DY), float64(counts.NY), 1)
	assert.InDelta(t, math.Ceil(22.6/res.DZ), float64(counts.NZ), 1)
	assert.Equal(t, 4.0, sum(counts))
}

func TestAssignZeroLayerStartsAtGround(t *testing.T) {
	t.Parallel()

	// A single return at 2.5m with dz=1 must land in layer 2, because
	// the bottom layer always begins at height 0.
	b := &pointcloud.Batch{
		X:                 []float64{0.5},
		Y:                 []float64{0.5},
		HeightAboveGround: []float64{2.5},
	}
	counts, _, err := Assign(b, Resolution{1, 1, 1})
	require.NoError(t, err)
	require.Equal(t, 3, counts.NZ)
	assert.Equal(t, 1.0, counts.At(0, 0, 2))
	assert.Equal(t, 0.0, counts.At(0, 0, 0))
}

func TestAssignErrors(t *testing.T) {
	t.Parallel()

	t.Run("missing fields", func(t *testing.T) {
		t.Parallel()
		b := &pointcloud.Batch{X: []float64{1}}
		_, _, err := Assign(b, Resolution{1, 1, 1})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "HeightAboveGround")
	})

	t.Run("all points below ground", func(t *testing.T) {
		t.Parallel()
		b := &pointcloud.Batch{
			X:                 []float64{1},
			Y:                 []float64{1},
			HeightAboveGround: []float64{-3},
		}
		_, _, err := Assign(b, Resolution{1, 1, 1})
		assert.Error(t, err)
	})

	t.Run("bad resolution", func(t *testing.T) {
		t.Parallel()
		b := &pointcloud.Batch{
			X:                 []float64{1},
			Y:                 []float64{1},
			HeightAboveGround: []float64{1},
		}
		_, _, err := Assign(b, Resolution{1, 0, 1})
		assert.Error(t, err)
	})
}

func sum(g *grid.Grid3D) float64 {
	var s float64
	for _, v := range g.Data {
		s += v
	}
	return s
}
