package svgraster

import (
	"image"
	"math"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/benoitkugler/svg2jpeg/svgdoc"
)

// smaller glyphs are not drawn
const minTextSize = 0.5

func (rd *Renderer) drawTexts(img *image.RGBA, texts []svgdoc.Text, m rasterx.Matrix2D) {
	missing := make(map[string]bool)
	for _, t := range texts {
		f, ok := rd.fonts.Lookup(t.Families)
		if !ok && len(t.Families) > 0 && !missing[t.Families[0]] {
			missing[t.Families[0]] = true
			rd.diag.MissingFonts = append(rd.diag.MissingFonts, t.Families[0])
		}
		rd.drawText(img, t, f, m)
	}
}

// drawText draws a single run at its baseline origin. Only axis aligned
// transforms are supported; the vertical scale gives the pixel size.
func (rd *Renderer) drawText(img *image.RGBA, t svgdoc.Text, f *opentype.Font, m rasterx.Matrix2D) {
	tm := m.Mult(t.Transform)
	if tm.B != 0 || tm.C != 0 {
		rd.warnf("skipping rotated or skewed text %q", t.Content)
		return
	}
	if tm.A <= 0 || tm.D <= 0 {
		rd.warnf("skipping mirrored text %q", t.Content)
		return
	}
	size := t.FontSize * tm.D
	if size < minTextSize {
		return
	}

	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		rd.warnf("skipping text %q: %v", t.Content, err)
		return
	}
	defer face.Close()

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(t.Fill),
		Face: face,
	}
	x, y := tm.Transform(t.X, t.Y)
	switch t.Anchor {
	case svgdoc.AnchorMiddle:
		x -= float64(d.MeasureString(t.Content)) / 128
	case svgdoc.AnchorEnd:
		x -= float64(d.MeasureString(t.Content)) / 64
	}
	d.Dot = fixed.Point26_6{X: fixed.Int26_6(math.Round(x * 64)), Y: fixed.Int26_6(math.Round(y * 64))}
	d.DrawString(t.Content)
}
