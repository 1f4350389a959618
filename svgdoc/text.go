package svgdoc

import (
	"image/color"

	"github.com/srwiley/rasterx"
)

// Anchor is the text-anchor property.
type Anchor uint8

const (
	AnchorStart Anchor = iota
	AnchorMiddle
	AnchorEnd
)

func (a Anchor) String() string {
	switch a {
	case AnchorMiddle:
		return "middle"
	case AnchorEnd:
		return "end"
	default:
		return "start"
	}
}

// Text is a <text> element flattened to a single run: the character data of
// the element and its <tspan> children, positioned at the first x/y value.
type Text struct {
	X, Y     float64 // baseline origin, in user units
	Content  string
	FontSize float64  // in user units
	Families []string // font-family list, most preferred first
	Anchor   Anchor
	// Fill is the straight-alpha fill, opacity properties already applied.
	Fill color.NRGBA
	// Transform maps user units to viewBox coordinates.
	Transform rasterx.Matrix2D

	hidden bool   // fill:none
	server string // url(...) paint replaced by its fallback
}
