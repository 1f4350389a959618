// Package svgsize computes the pixel size of the output image from the
// intrinsic size of a document and an optional requested width.
package svgsize

import (
	"math"

	"github.com/benoitkugler/svg2jpeg/svgerr"
)

// Dimensions is an output size in pixels. Both fields are at least 1.
type Dimensions struct {
	Width, Height int
}

// Pixels returns Width*Height.
func (d Dimensions) Pixels() int64 { return int64(d.Width) * int64(d.Height) }

// Resolve returns the output dimensions for a document of intrinsic size
// w x h. A requested width of 0 keeps the intrinsic size; otherwise the
// height follows the intrinsic aspect ratio. Values are rounded half away
// from zero.
func Resolve(w, h float64, requested int) (Dimensions, error) {
	if !valid(w) || !valid(h) {
		return Dimensions{}, svgerr.New(svgerr.InvalidDocumentSize, "invalid document size %gx%g", w, h)
	}
	if requested < 0 {
		return Dimensions{}, svgerr.New(svgerr.InvalidConfig, "width must be greater than 0, got %d", requested)
	}
	if requested == 0 {
		return Dimensions{Width: roundPositive(w), Height: roundPositive(h)}, nil
	}
	return Dimensions{
		Width:  requested,
		Height: roundPositive(float64(requested) * h / w),
	}, nil
}

func valid(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// roundPositive rounds v and never returns less than 1.
func roundPositive(v float64) int {
	r := math.Round(v)
	if r < 1 {
		return 1
	}
	if r > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(r)
}
