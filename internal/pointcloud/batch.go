// Package pointcloud defines the column-oriented point batch the metric
// engine consumes, plus the schema checks and filters applied before
// binning. Point decoding (LAS/LAZ, cropping, ground classification) is
// an external collaborator's job; batches arrive here already decoded
// and height-normalized.
package pointcloud

import (
	"fmt"
	"strings"
)

// Field names a point column. Names match the upstream point-engine
// dimension names so schema errors read the same on both sides.
type Field string

const (
	FieldX              Field = "X"
	FieldY              Field = "Y"
	FieldZ              Field = "Z"
	FieldHAG            Field = "HeightAboveGround"
	FieldClassification Field = "Classification"
	FieldPointSourceID  Field = "PointSourceId"
)

// ClassGround is the ASPRS classification code for ground returns.
const ClassGround = 2

// Batch is a homogeneously-typed set of points stored column-wise.
// X, Y and the height columns are float64; Classification and
// PointSourceID are optional and nil when the source did not supply
// them. All non-nil columns have equal length.
type Batch struct {
	X                 []float64
	Y                 []float64
	Z                 []float64
	HeightAboveGround []float64
	Classification    []int32
	PointSourceID     []int32
}

// Len returns the number of points in the batch.
func (b *Batch) Len() int {
	switch {
	case b.X != nil:
		return len(b.X)
	case b.Y != nil:
		return len(b.Y)
	case b.Z != nil:
		return len(b.Z)
	case b.HeightAboveGround != nil:
		return len(b.HeightAboveGround)
	}
	return 0
}

func (b *Batch) column(f Field) bool {
	switch f {
	case FieldX:
		return b.X != nil
	case FieldY:
		return b.Y != nil
	case FieldZ:
		return b.Z != nil
	case FieldHAG:
		return b.HeightAboveGround != nil
	case FieldClassification:
		return b.Classification != nil
	case FieldPointSourceID:
		return b.PointSourceID != nil
	}
	return false
}

// Require checks that the named columns are present, returning a single
// descriptive error listing every missing one. Binning operations call
// this up front so a malformed batch fails at the boundary instead of
// as an index fault mid-histogram.
func (b *Batch) Require(fields ...Field) error {
	var missing []string
	for _, f := range fields {
		if !b.column(f) {
			missing = append(missing, string(f))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("point batch missing required field(s): %s", strings.Join(missing, ", "))
	}
	return nil
}

// Merge concatenates batches into one logical point set. Optional
// columns are carried only when present in every input batch, so the
// merged batch never has a partially-populated column.
func Merge(batches []*Batch) *Batch {
	total := 0
	haveZ, haveHAG, haveClass, haveSrc := true, true, true, true
	for _, b := range batches {
		total += b.Len()
		haveZ = haveZ && b.Z != nil
		haveHAG = haveHAG && b.HeightAboveGround != nil
		haveClass = haveClass && b.Classification != nil
		haveSrc = haveSrc && b.PointSourceID != nil
	}
	out := &Batch{
		X: make([]float64, 0, total),
		Y: make([]float64, 0, total),
	}
	if haveZ {
		out.Z = make([]float64, 0, total)
	}
	if haveHAG {
		out.HeightAboveGround = make([]float64, 0, total)
	}
	if haveClass {
		out.Classification = make([]int32, 0, total)
	}
	if haveSrc {
		out.PointSourceID = make([]int32, 0, total)
	}
	for _, b := range batches {
		out.X = append(out.X, b.X...)
		out.Y = append(out.Y, b.Y...)
		if haveZ {
			out.Z = append(out.Z, b.Z...)
		}
		if haveHAG {
			out.HeightAboveGround = append(out.HeightAboveGround, b.HeightAboveGround...)
		}
		if haveClass {
			out.Classification = append(out.Classification, b.Classification...)
		}
		if haveSrc {
			out.PointSourceID = append(out.PointSourceID, b.PointSourceID...)
		}
	}
	return out
}
