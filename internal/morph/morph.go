// Package morph implements the binary image-morphology primitives the
// CHM gap-filling path needs: dilation, erosion, hole filling and an
// exact Euclidean distance/feature transform. Masks are flat []bool
// with the same (ix*ny + iy) layout as the grid package, and the
// structuring element is the 4-connected cross throughout.
package morph

import "math"

func idx(ix, iy, ny int) int { return ix*ny + iy }

// Dilate grows the mask by the cross structuring element the given
// number of iterations.
func Dilate(mask []bool, nx, ny, iterations int) []bool {
	cur := make([]bool, len(mask))
	copy(cur, mask)
	for it := 0; it < iterations; it++ {
		next := make([]bool, len(cur))
		for ix := 0; ix < nx; ix++ {
			for iy := 0; iy < ny; iy++ {
				i := idx(ix, iy, ny)
				if cur[i] ||
					(ix > 0 && cur[idx(ix-1, iy, ny)]) ||
					(ix < nx-1 && cur[idx(ix+1, iy, ny)]) ||
					(iy > 0 && cur[idx(ix, iy-1, ny)]) ||
					(iy < ny-1 && cur[idx(ix, iy+1, ny)]) {
					next[i] = true
				}
			}
		}
		cur = next
	}
	return cur
}

// Erode shrinks the mask by the cross structuring element the given
// number of iterations. Cells on the grid border erode (the outside is
// treated as false).
func Erode(mask []bool, nx, ny, iterations int) []bool {
	cur := make([]bool, len(mask))
	copy(cur, mask)
	for it := 0; it < iterations; it++ {
		next := make([]bool, len(cur))
		for ix := 0; ix < nx; ix++ {
			for iy := 0; iy < ny; iy++ {
				i := idx(ix, iy, ny)
				if cur[i] &&
					ix > 0 && cur[idx(ix-1, iy, ny)] &&
					ix < nx-1 && cur[idx(ix+1, iy, ny)] &&
					iy > 0 && cur[idx(ix, iy-1, ny)] &&
					iy < ny-1 && cur[idx(ix, iy+1, ny)] {
					next[i] = true
				}
			}
		}
		cur = next
	}
	return cur
}

// FillHoles sets to true every false region not connected to the grid
// border, i.e. enclosed holes. Connectivity is 4-connected.
func FillHoles(mask []bool, nx, ny int) []bool {
	outside := make([]bool, len(mask))
	queue := make([]int, 0, 2*(nx+ny))

	push := func(ix, iy int) {
		i := idx(ix, iy, ny)
		if !mask[i] && !outside[i] {
			outside[i] = true
			queue = append(queue, i)
		}
	}
	for ix := 0; ix < nx; ix++ {
		push(ix, 0)
		push(ix, ny-1)
	}
	for iy := 0; iy < ny; iy++ {
		push(0, iy)
		push(nx-1, iy)
	}
	for len(queue) > 0 {
		i := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		ix, iy := i/ny, i%ny
		if ix > 0 {
			push(ix-1, iy)
		}
		if ix < nx-1 {
			push(ix+1, iy)
		}
		if iy > 0 {
			push(ix, iy-1)
		}
		if iy < ny-1 {
			push(ix, iy+1)
		}
	}

	out := make([]bool, len(mask))
	for i := range mask {
		out[i] = mask[i] || !outside[i]
	}
	return out
}

// FeatureTransform computes, for every cell, the Euclidean distance to
// the nearest site (true cell) and that site's flat index, with
// per-axis cell spacing sx, sy. Cells with no reachable site (a mask
// with no sites at all) get +Inf distance and index -1.
//
// Two separable lower-envelope passes (Felzenszwalb–Huttenlocher), so
// the transform is exact and O(cells).
func FeatureTransform(sites []bool, nx, ny int, sx, sy float64) (dist []float64, nearest []int) {
	n := nx * ny
	dist = make([]float64, n)
	nearest = make([]int, n)

	// Pass 1: squared distance to the nearest site within each column
	// (along Y, the contiguous axis), with the site's row recorded.
	dcol := make([]float64, n)
	rowOf := make([]int, n)
	f := make([]float64, ny)
	d := make([]float64, ny)
	a := make([]int, ny)
	for ix := 0; ix < nx; ix++ {
		base := ix * ny
		for iy := 0; iy < ny; iy++ {
			if sites[base+iy] {
				f[iy] = 0
			} else {
				f[iy] = math.Inf(1)
			}
		}
		dt1d(f, sy*sy, d, a)
		copy(dcol[base:base+ny], d)
		copy(rowOf[base:base+ny], a)
	}

	// Pass 2: combine across columns (along X).
	fx := make([]float64, nx)
	dx := make([]float64, nx)
	ax := make([]int, nx)
	for iy := 0; iy < ny; iy++ {
		for ix := 0; ix < nx; ix++ {
			fx[ix] = dcol[ix*ny+iy]
		}
		dt1d(fx, sx*sx, dx, ax)
		for ix := 0; ix < nx; ix++ {
			i := ix*ny + iy
			dist[i] = math.Sqrt(dx[ix])
			if ax[ix] < 0 {
				nearest[i] = -1
			} else {
				scol := ax[ix]
				nearest[i] = scol*ny + rowOf[scol*ny+iy]
			}
		}
	}
	return dist, nearest
}

// DistanceToFalse returns each cell's Euclidean distance (in cell
// units) to the nearest false cell; false cells themselves are at
// distance zero. Matches the usual distance-transform convention for
// edge cleaning.
func DistanceToFalse(mask []bool, nx, ny int) []float64 {
	inv := make([]bool, len(mask))
	for i, m := range mask {
		inv[i] = !m
	}
	d, _ := FeatureTransform(inv, nx, ny, 1, 1)
	return d
}

// dt1d computes the 1D lower envelope of parabolas rooted at (i, f[i])
// with squared spacing s2: d[q] = min_i (s2*(q-i)^2 + f[i]), recording
// the minimizing i in arg. Samples with f = +Inf contribute no
// parabola; if every sample is +Inf, d is +Inf and arg is -1.
func dt1d(f []float64, s2 float64, d []float64, arg []int) {
	n := len(f)
	first := -1
	for q := 0; q < n; q++ {
		if !math.IsInf(f[q], 1) {
			first = q
			break
		}
	}
	if first < 0 {
		for q := 0; q < n; q++ {
			d[q] = math.Inf(1)
			arg[q] = -1
		}
		return
	}

	v := make([]int, n)
	z := make([]float64, n+1)
	k := 0
	v[0] = first
	z[0] = math.Inf(-1)
	z[1] = math.Inf(1)

	for q := first + 1; q < n; q++ {
		if math.IsInf(f[q], 1) {
			continue
		}
		var s float64
		for {
			p := v[k]
			s = ((f[q] + s2*float64(q)*float64(q)) - (f[p] + s2*float64(p)*float64(p))) /
				(2 * s2 * float64(q-p))
			if s > z[k] {
				break
			}
			k--
		}
		k++
		v[k] = q
		z[k] = s
		z[k+1] = math.Inf(1)
	}

	k = 0
	for q := 0; q < n; q++ {
		for z[k+1] < float64(q) {
			k++
		}
		p := v[k]
		dq := float64(q - p)
		d[q] = s2*dq*dq + f[p]
		arg[q] = p
	}
}
