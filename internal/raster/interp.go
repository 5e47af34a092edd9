package raster

import (
	"fmt"
	"math"

	"github.com/fogleman/delaunay"
	"gonum.org/v1/gonum/mat"

	"github.com/treeline-data/forestscan/internal/grid"
	"github.com/treeline-data/forestscan/internal/monitoring"
	"github.com/treeline-data/forestscan/internal/morph"
)

// Interpolation names a CHM gap-filling method.
type Interpolation string

const (
	// InterpNone disables gap filling; empty cells stay NaN.
	InterpNone Interpolation = ""

	// InterpNearest copies the value of the nearest valid cell center.
	InterpNearest Interpolation = "nearest"

	// InterpLinear interpolates over a Delaunay triangulation of the
	// valid cell centers; queries outside the convex hull stay NaN.
	InterpLinear Interpolation = "linear"

	// InterpCubic fits a local cubic radial-basis surface through the
	// valid cells around each gap; queries outside the convex hull
	// stay NaN.
	InterpCubic Interpolation = "cubic"
)

// Validate rejects unknown interpolation names.
func (m Interpolation) Validate() error {
	switch m {
	case InterpNone, InterpNearest, InterpLinear, InterpCubic:
		return nil
	}
	return fmt.Errorf("unsupported interpolation method %q (want nearest, linear or cubic)", string(m))
}

// cleanEdgeDistance is the cell distance below which interpolated cells
// near the data boundary are blanked by InterpCleanEdges.
const cleanEdgeDistance = 5.0

// cleanEdgeErosions is how many erosion passes shrink the valid mask
// before the boundary distance is measured.
const cleanEdgeErosions = 2

// rbfWindow is the Chebyshev cell radius of the neighborhood used for
// the local cubic radial-basis fit.
const rbfWindow = 4

// rbfMinPoints is the minimum neighborhood size for a cubic fit; gaps
// with fewer nearby valid cells fall back to linear interpolation.
const rbfMinPoints = 6

// fillGaps interpolates the NaN cells of a freshly binned CHM in place.
// Interpolation failures (e.g. a degenerate valid-cell set that cannot
// be triangulated) are logged and leave the grid unfilled; gap filling
// is best-effort and never fails the rasterization.
func fillGaps(bin binned, p CHMParams) {
	g := bin.g
	nx, ny := g.NX, g.NY

	valid := make([]bool, len(g.Data))
	for i, v := range g.Data {
		valid[i] = !math.IsNaN(v)
	}

	interpMask := make([]bool, len(g.Data))
	any := false
	if p.InterpValidRegion {
		region := validRegionMask(valid, nx, ny)
		for i := range interpMask {
			interpMask[i] = !valid[i] && region[i]
			any = any || interpMask[i]
		}
	} else {
		for i := range interpMask {
			interpMask[i] = !valid[i]
			any = any || interpMask[i]
		}
	}
	if !any {
		return
	}

	switch p.Interpolation {
	case InterpNearest:
		fillNearest(g, valid, interpMask, p.XResolution, p.YResolution)
	case InterpLinear, InterpCubic:
		fillTriangulated(bin, valid, interpMask, p.Interpolation)
	}

	if p.InterpCleanEdges {
		cleanEdges(g)
	}
}

// validRegionMask builds the morphological valid region: valid cells
// dilated by one ring, then enclosed holes filled.
func validRegionMask(valid []bool, nx, ny int) []bool {
	m := morph.Dilate(valid, nx, ny, 1)
	return morph.FillHoles(m, nx, ny)
}

// fillNearest assigns each gap cell the value of its nearest valid cell
// center, via the exact Euclidean feature transform with physical cell
// spacing (so anisotropic resolutions resolve ties correctly).
func fillNearest(g *grid.Grid2D, valid, interpMask []bool, xres, yres float64) {
	_, nearest := morph.FeatureTransform(valid, g.NX, g.NY, xres, yres)
	for i := range interpMask {
		if interpMask[i] && nearest[i] >= 0 {
			g.Data[i] = g.Data[nearest[i]]
		}
	}
}

// fillTriangulated handles the linear and cubic methods. Both start
// from a Delaunay triangulation of the valid cell centers: linear
// interpolates barycentrically inside the containing triangle, cubic
// fits a local radial-basis surface but uses the triangulation for
// convex-hull masking (and as fallback when the local fit is
// under-determined or singular).
func fillTriangulated(bin binned, valid, interpMask []bool, method Interpolation) {
	g := bin.g
	ny := g.NY

	pts := make([]delaunay.Point, 0)
	vals := make([]float64, 0)
	for i, ok := range valid {
		if !ok {
			continue
		}
		ix, iy := i/ny, i%ny
		pts = append(pts, delaunay.Point{X: bin.xCenters[ix], Y: bin.yCenters[iy]})
		vals = append(vals, g.Data[i])
	}
	if len(pts) < 3 {
		monitoring.Logf("chm interpolation skipped: only %d valid cells", len(pts))
		return
	}

	tri, err := delaunay.Triangulate(pts)
	if err != nil {
		monitoring.Logf("chm interpolation skipped: triangulation failed: %v", err)
		return
	}
	locator := triLocator{tri: tri, values: vals}

	for i, fill := range interpMask {
		if !fill {
			continue
		}
		ix, iy := i/ny, i%ny
		qx, qy := bin.xCenters[ix], bin.yCenters[iy]

		linear, inside := locator.at(qx, qy)
		if !inside {
			continue // outside the convex hull of the data
		}
		if method == InterpLinear {
			g.Data[i] = linear
			continue
		}
		if v, ok := rbfAt(g, bin, valid, ix, iy, qx, qy); ok {
			g.Data[i] = v
		} else {
			g.Data[i] = linear
		}
	}
}

// cleanEdges blanks interpolated cells too close to the original data
// boundary: erode the valid mask, measure each surviving cell's
// distance to the nearest invalid cell, and drop anything closer than
// cleanEdgeDistance cells.
func cleanEdges(g *grid.Grid2D) {
	valid := make([]bool, len(g.Data))
	for i, v := range g.Data {
		valid[i] = !math.IsNaN(v)
	}
	eroded := morph.Erode(valid, g.NX, g.NY, cleanEdgeErosions)
	dist := morph.DistanceToFalse(eroded, g.NX, g.NY)
	for i := range g.Data {
		if !eroded[i] || dist[i] < cleanEdgeDistance {
			g.Data[i] = math.NaN()
		}
	}
}

// triLocator answers barycentric point queries against a triangulation.
type triLocator struct {
	tri    *delaunay.Triangulation
	values []float64
}

// at returns the linearly interpolated value at (x, y) and whether the
// point lies inside any triangle (i.e. inside the convex hull).
func (t triLocator) at(x, y float64) (float64, bool) {
	const eps = 1e-12
	tris := t.tri.Triangles
	pts := t.tri.Points
	for k := 0; k+2 < len(tris); k += 3 {
		ia, ib, ic := tris[k], tris[k+1], tris[k+2]
		a, b, c := pts[ia], pts[ib], pts[ic]

		denom := (b.Y-c.Y)*(a.X-c.X) + (c.X-b.X)*(a.Y-c.Y)
		if denom == 0 {
			continue
		}
		wa := ((b.Y-c.Y)*(x-c.X) + (c.X-b.X)*(y-c.Y)) / denom
		wb := ((c.Y-a.Y)*(x-c.X) + (a.X-c.X)*(y-c.Y)) / denom
		wc := 1 - wa - wb
		if wa < -eps || wb < -eps || wc < -eps {
			continue
		}
		return wa*t.values[ia] + wb*t.values[ib] + wc*t.values[ic], true
	}
	return math.NaN(), false
}

// rbfAt fits a cubic radial-basis surface (phi(r) = r^3 plus an affine
// term) through the valid cells within rbfWindow cells of the query and
// evaluates it at (qx, qy). Returns ok=false when the neighborhood is
// too small or the system is singular.
func rbfAt(g *grid.Grid2D, bin binned, valid []bool, cx, cy int, qx, qy float64) (float64, bool) {
	nx, ny := g.NX, g.NY

	var xs, ys, vs []float64
	for ix := max(0, cx-rbfWindow); ix <= min(nx-1, cx+rbfWindow); ix++ {
		for iy := max(0, cy-rbfWindow); iy <= min(ny-1, cy+rbfWindow); iy++ {
			i := ix*ny + iy
			if valid[i] {
				xs = append(xs, bin.xCenters[ix])
				ys = append(ys, bin.yCenters[iy])
				vs = append(vs, g.Data[i])
			}
		}
	}
	n := len(xs)
	if n < rbfMinPoints {
		return 0, false
	}

	// Symmetric system [A P; P^T 0] [w; c] = [v; 0] with A_ij = r^3 and
	// P = [1 x y].
	m := n + 3
	a := mat.NewDense(m, m, nil)
	rhs := mat.NewVecDense(m, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			r := math.Hypot(xs[i]-xs[j], ys[i]-ys[j])
			a.Set(i, j, r*r*r)
		}
		a.Set(i, n, 1)
		a.Set(i, n+1, xs[i])
		a.Set(i, n+2, ys[i])
		a.Set(n, i, 1)
		a.Set(n+1, i, xs[i])
		a.Set(n+2, i, ys[i])
		rhs.SetVec(i, vs[i])
	}

	var sol mat.VecDense
	if err := sol.SolveVec(a, rhs); err != nil {
		return 0, false
	}

	v := sol.AtVec(n) + sol.AtVec(n+1)*qx + sol.AtVec(n+2)*qy
	for i := 0; i < n; i++ {
		r := math.Hypot(qx-xs[i], qy-ys[i])
		v += sol.AtVec(i) * r * r * r
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
