package pointcloud

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequire(t *testing.T) {
	t.Parallel()

	t.Run("all present", func(t *testing.T) {
		t.Parallel()
		b := &Batch{X: []float64{1}, Y: []float64{2}, HeightAboveGround: []float64{3}}
		assert.NoError(t, b.Require(FieldX, FieldY, FieldHAG))
	})

	t.Run("missing columns named in error", func(t *testing.T) {
		t.Parallel()
		b := &Batch{X: []float64{1}}
		err := b.Require(FieldX, FieldY, FieldZ)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Y")
		assert.Contains(t, err.Error(), "Z")
		assert.NotContains(t, err.Error(), "X,")
	})
}

func TestMerge(t *testing.T) {
	t.Parallel()

	t.Run("concatenates batches", func(t *testing.T) {
		t.Parallel()
		a := &Batch{X: []float64{1, 2}, Y: []float64{1, 2}, Z: []float64{10, 20}}
		b := &Batch{X: []float64{3}, Y: []float64{3}, Z: []float64{30}}

		m := Merge([]*Batch{a, b})
		assert.Equal(t, 3, m.Len())
		assert.Equal(t, []float64{1, 2, 3}, m.X)
		assert.Equal(t, []float64{10, 20, 30}, m.Z)
	})

	t.Run("optional column dropped unless present everywhere", func(t *testing.T) {
		t.Parallel()
		a := &Batch{X: []float64{1}, Y: []float64{1}, Classification: []int32{2}}
		b := &Batch{X: []float64{2}, Y: []float64{2}}

		m := Merge([]*Batch{a, b})
		assert.Nil(t, m.Classification)
		assert.Equal(t, 2, m.Len())
	})
}

func TestFilterMinHAG(t *testing.T) {
	t.Parallel()

	b := &Batch{
		X:                 []float64{1, 2, 3, 4},
		Y:                 []float64{1, 2, 3, 4},
		HeightAboveGround: []float64{-0.5, 0, 2.5, -10},
	}
	f := b.FilterMinHAG(0)
	assert.Equal(t, []float64{2, 3}, f.X)
	assert.Equal(t, []float64{0, 2.5}, f.HeightAboveGround)
	// Input batch untouched.
	assert.Equal(t, 4, b.Len())
}

func TestGroundPoints(t *testing.T) {
	t.Parallel()

	b := &Batch{
		X:              []float64{1, 2, 3},
		Y:              []float64{1, 2, 3},
		Z:              []float64{10, 11, 12},
		Classification: []int32{1, ClassGround, ClassGround},
	}
	g := b.GroundPoints()
	assert.Equal(t, []float64{2, 3}, g.X)
	assert.Equal(t, []float64{11, 12}, g.Z)
	assert.Equal(t, []int32{ClassGround, ClassGround}, g.Classification)
}
