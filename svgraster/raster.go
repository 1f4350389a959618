// Implements the raster backend turning a loaded SVG document into pixels,
// by wrapping oksvg and rasterx.
package svgraster

import (
	"fmt"
	"image"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/srwiley/rasterx"

	"github.com/benoitkugler/svg2jpeg/svgdoc"
	"github.com/benoitkugler/svg2jpeg/svgerr"
	"github.com/benoitkugler/svg2jpeg/svgsize"
)

// MaxPixels is the largest canvas NewRenderer accepts by default
// (1 GiB of RGBA samples).
const MaxPixels = 1 << 28

// Rasterizer draws a document onto a transparent canvas of the given size.
type Rasterizer interface {
	Rasterize(doc *svgdoc.Document, dims svgsize.Dimensions) (*image.RGBA, error)
}

var _ Rasterizer = (*Renderer)(nil) // assert interface conformance

// Diagnostics collects the non fatal problems of the last Rasterize call.
type Diagnostics struct {
	MissingFonts []string // requested families replaced by the fallback face
	Warnings     []string
}

// Renderer is the oksvg/rasterx implementation of Rasterizer.
// A Renderer is not safe for concurrent use.
type Renderer struct {
	fonts     *FontRegistry
	logger    *log.Logger
	maxPixels int

	diag Diagnostics
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithFonts sets the fonts used for <text> elements.
func WithFonts(fonts *FontRegistry) Option {
	return func(rd *Renderer) { rd.fonts = fonts }
}

// WithLogger sets the logger receiving timings and diagnostics.
func WithLogger(logger *log.Logger) Option {
	return func(rd *Renderer) { rd.logger = logger }
}

// WithMaxPixels overrides MaxPixels.
func WithMaxPixels(n int) Option {
	return func(rd *Renderer) { rd.maxPixels = n }
}

// NewRenderer returns a renderer with default values: the built-in font
// registry, a discarding logger and the MaxPixels limit.
func NewRenderer(opts ...Option) *Renderer {
	rd := &Renderer{maxPixels: MaxPixels}
	for _, opt := range opts {
		opt(rd)
	}
	if rd.fonts == nil {
		rd.fonts = NewFontRegistry()
	}
	if rd.logger == nil {
		rd.logger = log.New(io.Discard)
	}
	return rd
}

// LastDiagnostics returns the diagnostics of the previous Rasterize call.
func (rd *Renderer) LastDiagnostics() Diagnostics { return rd.diag }

// Rasterize uses a ScannerGV instance to render the document into a new
// image of exactly dims. Pixels left uncovered have alpha 0.
func (rd *Renderer) Rasterize(doc *svgdoc.Document, dims svgsize.Dimensions) (img *image.RGBA, err error) {
	rd.diag = Diagnostics{}
	if doc == nil || doc.Icon() == nil {
		return nil, svgerr.New(svgerr.RenderFailure, "rendering failed: no document")
	}
	if dims.Width < 1 || dims.Height < 1 {
		return nil, svgerr.New(svgerr.RenderFailure, "rendering failed: invalid canvas %dx%d", dims.Width, dims.Height)
	}
	if dims.Pixels() > int64(rd.maxPixels) {
		return nil, svgerr.New(svgerr.RenderFailure,
			"rendering failed: canvas %dx%d exceeds the %d pixels limit", dims.Width, dims.Height, rd.maxPixels)
	}
	vb := doc.ViewBox
	if !(vb.W > 0 && vb.H > 0) {
		return nil, svgerr.New(svgerr.RenderFailure, "rendering failed: empty viewBox")
	}

	defer func() {
		if r := recover(); r != nil {
			img, err = nil, svgerr.New(svgerr.RenderFailure, "rendering failed: %v", r)
		}
	}()

	start := time.Now()
	w, h := dims.Width, dims.Height
	img = image.NewRGBA(image.Rect(0, 0, w, h))
	m := viewportMatrix(vb, doc.Aspect, float64(w), float64(h))

	icon := doc.Icon()
	icon.Transform = m
	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	dasher := rasterx.NewDasher(w, h, scanner)
	icon.Draw(dasher, 1.0)

	rd.drawTexts(img, doc.Texts, m)

	rd.logger.Debug("rasterized", "width", w, "height", h,
		"paths", len(icon.SVGPaths), "texts", len(doc.Texts), "took", time.Since(start))
	for _, family := range rd.diag.MissingFonts {
		rd.logger.Warn("font not found, using fallback", "family", family)
	}
	for _, warning := range rd.diag.Warnings {
		rd.logger.Warn(warning)
	}
	return img, nil
}

// viewportMatrix maps viewBox user units to canvas pixels, centering the
// content (xMidYMid) for the uniform modes.
func viewportMatrix(vb svgdoc.Box, mode svgdoc.AspectMode, w, h float64) rasterx.Matrix2D {
	sx, sy := w/vb.W, h/vb.H
	switch mode {
	case svgdoc.AspectMeet:
		s := min(sx, sy)
		sx, sy = s, s
	case svgdoc.AspectSlice:
		s := max(sx, sy)
		sx, sy = s, s
	}
	ox, oy := (w-vb.W*sx)/2, (h-vb.H*sy)/2
	return rasterx.Identity.Translate(ox, oy).Scale(sx, sy).Translate(-vb.X, -vb.Y)
}

func (rd *Renderer) warnf(format string, args ...any) {
	rd.diag.Warnings = append(rd.diag.Warnings, fmt.Sprintf(format, args...))
}
