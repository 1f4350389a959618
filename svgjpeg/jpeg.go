// Package svgjpeg encodes flattened rasters.
package svgjpeg

import (
	"io"

	"github.com/disintegration/imaging"

	"github.com/benoitkugler/svg2jpeg/svgerr"
	"github.com/benoitkugler/svg2jpeg/svgflatten"
)

// DefaultQuality is used by the command line when no quality is given.
const DefaultQuality = 80

// Encoder writes an opaque image in a specific format.
type Encoder interface {
	// Format returns the output format name, such as "jpeg".
	Format() string

	// Encode writes img to w at the given quality (1-100).
	Encode(w io.Writer, img *svgflatten.RGB, quality int) error
}

var _ Encoder = JPEG{} // assert interface conformance

// JPEG encodes baseline JPEG files.
type JPEG struct{}

func (JPEG) Format() string { return "jpeg" }

// Encode clamps quality to [1, 100]. A buffer that does not match its
// bounds, or an encoder error, fails with an EncodeFailure.
func (JPEG) Encode(w io.Writer, img *svgflatten.RGB, quality int) error {
	if img == nil {
		return svgerr.New(svgerr.EncodeFailure, "JPEG encoding failed: no image")
	}
	dx, dy := img.Rect.Dx(), img.Rect.Dy()
	if dx < 1 || dy < 1 {
		return svgerr.New(svgerr.EncodeFailure, "JPEG encoding failed: empty image %v", img.Rect)
	}
	if img.Stride < 3*dx || len(img.Pix) < img.Stride*(dy-1)+3*dx {
		return svgerr.New(svgerr.EncodeFailure,
			"JPEG encoding failed: %d bytes do not hold a %dx%d image", len(img.Pix), dx, dy)
	}

	if err := imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(clamp(quality))); err != nil {
		return svgerr.Wrap(svgerr.EncodeFailure, err, "JPEG encoding failed")
	}
	return nil
}

func clamp(quality int) int {
	if quality < 1 {
		return 1
	}
	if quality > 100 {
		return 100
	}
	return quality
}
