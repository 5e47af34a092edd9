package main

import (
	"bufio"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/treeline-data/forestscan/internal/pointcloud"
)

func parseTable(t *testing.T, body string) (*pointcloud.Batch, error) {
	t.Helper()
	return parsePointTable(bufio.NewScanner(strings.NewReader(body)))
}

func TestParsePointTableCSV(t *testing.T) {
	t.Parallel()

	b, err := parseTable(t, strings.Join([]string{
		"# exported point table",
		"X,Y,Z,HeightAboveGround,Classification",
		"1.5, 2.5, 100.2, 0.5, 1",
		"",
		"3.5, 4.5, 98.0, 0.0, 2",
	}, "\n"))
	require.NoError(t, err)

	assert.Equal(t, []float64{1.5, 3.5}, b.X)
	assert.Equal(t, []float64{2.5, 4.5}, b.Y)
	assert.Equal(t, []float64{100.2, 98.0}, b.Z)
	assert.Equal(t, []float64{0.5, 0.0}, b.HeightAboveGround)
	assert.Equal(t, []int32{1, 2}, b.Classification)
	assert.Nil(t, b.PointSourceID)
}

func TestParsePointTableWhitespace(t *testing.T) {
	t.Parallel()

	b, err := parseTable(t, strings.Join([]string{
		"X  Y  HeightAboveGround",
		"1  2  3.5",
		"4  5  6.5",
	}, "\n"))
	require.NoError(t, err)

	assert.Equal(t, []float64{1, 4}, b.X)
	assert.Equal(t, []float64{3.5, 6.5}, b.HeightAboveGround)
	assert.Nil(t, b.Z)
}

func TestParsePointTableIgnoresUnknownColumns(t *testing.T) {
	t.Parallel()

	b, err := parseTable(t, strings.Join([]string{
		"X,Y,Intensity",
		"1,2,255",
	}, "\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, b.Len())
	assert.Nil(t, b.Z)
}

func TestParsePointTableErrors(t *testing.T) {
	t.Parallel()

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()
		_, err := parseTable(t, "\n# just a comment\n")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "header")
	})

	t.Run("missing coordinate columns", func(t *testing.T) {
		t.Parallel()
		_, err := parseTable(t, "X,Z\n1,2\n")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "X and Y")
	})

	t.Run("field count mismatch names line", func(t *testing.T) {
		t.Parallel()
		_, err := parseTable(t, "X,Y\n1,2\n3\n")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "line 3")
	})

	t.Run("bad value names column and line", func(t *testing.T) {
		t.Parallel()
		_, err := parseTable(t, "X,Y\n1,north\n")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "line 2")
		assert.Contains(t, err.Error(), "Y")
	})

	t.Run("bad classification", func(t *testing.T) {
		t.Parallel()
		_, err := parseTable(t, "X,Y,Classification\n1,2,2.5\n")
		assert.Error(t, err)
	})
}
