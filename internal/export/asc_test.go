package export

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/treeline-data/forestscan/internal/grid"
)

func TestWriteRaster(t *testing.T) {
	t.Parallel()

	g := grid.NewGrid2D(3, 2)
	g.Set(0, 0, 1.5)
	g.Set(1, 0, 2)
	g.Set(2, 0, math.NaN())
	g.Set(0, 1, 4)
	g.Set(1, 1, 5)
	g.Set(2, 1, 6)
	extent := grid.Extent{XMin: 10, XMax: 16, YMin: 20, YMax: 24}

	dir := t.TempDir()
	w := &ASCWriter{Dir: dir}
	require.NoError(t, w.WriteRaster("chm", g, extent, "", -9999))

	raw, err := os.ReadFile(filepath.Join(dir, "chm.asc"))
	require.NoError(t, err)

	want := strings.Join([]string{
		"ncols 3",
		"nrows 2",
		"xllcorner 10",
		"yllcorner 20",
		"cellsize 2",
		"NODATA_value -9999",
		"1.5 2 -9999",
		"4 5 6",
		"",
	}, "\n")
	assert.Equal(t, want, string(raw))

	// No CRS, no sidecar.
	_, err = os.Stat(filepath.Join(dir, "chm.prj"))
	assert.True(t, os.IsNotExist(err))
}

func TestWriteRasterProjectionSidecar(t *testing.T) {
	t.Parallel()

	g := grid.NewGrid2D(1, 1)
	extent := grid.Extent{XMin: 0, XMax: 1, YMin: 0, YMax: 1}

	dir := t.TempDir()
	w := &ASCWriter{Dir: dir}
	require.NoError(t, w.WriteRaster("dtm", g, extent, "EPSG:32633", -9999))

	raw, err := os.ReadFile(filepath.Join(dir, "dtm.prj"))
	require.NoError(t, err)
	assert.Equal(t, "EPSG:32633\n", string(raw))
}

func TestWriteRasterRejectsNonSquareCells(t *testing.T) {
	t.Parallel()

	g := grid.NewGrid2D(2, 2)
	extent := grid.Extent{XMin: 0, XMax: 4, YMin: 0, YMax: 2}

	w := &ASCWriter{Dir: t.TempDir()}
	err := w.WriteRaster("bad", g, extent, "", -9999)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "square cells")
}
