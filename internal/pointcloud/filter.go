package pointcloud

// Filters return new batches rather than compacting in place: the same
// batch typically feeds both the voxelizer and the CHM rasterizer, so
// inputs must stay intact.

// filterIndex copies the rows selected by keep into a new batch.
func (b *Batch) filterIndex(keep []int) *Batch {
	out := &Batch{}
	if b.X != nil {
		out.X = make([]float64, len(keep))
		for i, j := range keep {
			out.X[i] = b.X[j]
		}
	}
	if b.Y != nil {
		out.Y = make([]float64, len(keep))
		for i, j := range keep {
			out.Y[i] = b.Y[j]
		}
	}
	if b.Z != nil {
		out.Z = make([]float64, len(keep))
		for i, j := range keep {
			out.Z[i] = b.Z[j]
		}
	}
	if b.HeightAboveGround != nil {
		out.HeightAboveGround = make([]float64, len(keep))
		for i, j := range keep {
			out.HeightAboveGround[i] = b.HeightAboveGround[j]
		}
	}
	if b.Classification != nil {
		out.Classification = make([]int32, len(keep))
		for i, j := range keep {
			out.Classification[i] = b.Classification[j]
		}
	}
	if b.PointSourceID != nil {
		out.PointSourceID = make([]int32, len(keep))
		for i, j := range keep {
			out.PointSourceID[i] = b.PointSourceID[j]
		}
	}
	return out
}

// FilterMinHAG returns the points with HeightAboveGround >= minHAG.
// The voxelizer uses this with minHAG = 0 to exclude below-ground
// returns from canopy binning.
func (b *Batch) FilterMinHAG(minHAG float64) *Batch {
	keep := make([]int, 0, len(b.HeightAboveGround))
	for i, h := range b.HeightAboveGround {
		if h >= minHAG {
			keep = append(keep, i)
		}
	}
	return b.filterIndex(keep)
}

// GroundPoints returns the points classified as ground (class 2).
func (b *Batch) GroundPoints() *Batch {
	keep := make([]int, 0, len(b.Classification))
	for i, c := range b.Classification {
		if c == ClassGround {
			keep = append(keep, i)
		}
	}
	return b.filterIndex(keep)
}
