// Package export hands finished metric rasters to their sink. The core
// always produces grids in (X, Y) axis order with row 0 at maximum Y;
// sinks own the transposition to storage order, the nodata substitution
// and the georeferencing.
package export

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/treeline-data/forestscan/internal/grid"
)

// Sink accepts a finished 2D metric raster: the grid in (X, Y) axis
// order, an output identifier, a coordinate-reference-system string,
// the spatial extent and the nodata value to substitute for NaN.
type Sink interface {
	WriteRaster(name string, g *grid.Grid2D, extent grid.Extent, srs string, nodata float64) error
}

// ASCWriter writes rasters as Esri ASCII grids (.asc) into a directory,
// with a sidecar .prj file when a CRS string is supplied. The format
// requires square cells, so grids binned with unequal X/Y resolution
// are rejected.
type ASCWriter struct {
	Dir string
}

// cellSizeTolerance is the relative X/Y cell-size mismatch accepted as
// floating-point noise.
const cellSizeTolerance = 1e-9

// WriteRaster writes g as Dir/name.asc. NaN cells are substituted with
// the nodata value here; the grid itself is not modified.
func (w *ASCWriter) WriteRaster(name string, g *grid.Grid2D, extent grid.Extent, srs string, nodata float64) error {
	cw := (extent.XMax - extent.XMin) / float64(g.NX)
	ch := (extent.YMax - extent.YMin) / float64(g.NY)
	if math.Abs(cw-ch) > cellSizeTolerance*math.Max(math.Abs(cw), 1) {
		return fmt.Errorf("esri ascii grid requires square cells (got %g x %g)", cw, ch)
	}

	path := filepath.Join(w.Dir, name+".asc")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create raster %s: %w", path, err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	fmt.Fprintf(bw, "ncols %d\n", g.NX)
	fmt.Fprintf(bw, "nrows %d\n", g.NY)
	fmt.Fprintf(bw, "xllcorner %g\n", extent.XMin)
	fmt.Fprintf(bw, "yllcorner %g\n", extent.YMin)
	fmt.Fprintf(bw, "cellsize %g\n", cw)
	fmt.Fprintf(bw, "NODATA_value %g\n", nodata)

	// Grid row 0 is already the northernmost row, which is also the
	// first raster row in the format.
	for iy := 0; iy < g.NY; iy++ {
		for ix := 0; ix < g.NX; ix++ {
			if ix > 0 {
				if err := bw.WriteByte(' '); err != nil {
					return err
				}
			}
			v := g.At(ix, iy)
			if math.IsNaN(v) {
				v = nodata
			}
			if _, err := fmt.Fprintf(bw, "%g", v); err != nil {
				return err
			}
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		return err
	}

	if srs != "" {
		prj := filepath.Join(w.Dir, name+".prj")
		if err := os.WriteFile(prj, []byte(srs+"\n"), 0o644); err != nil {
			return fmt.Errorf("write projection sidecar %s: %w", prj, err)
		}
	}
	return nil
}
