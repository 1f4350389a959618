// Package svgflatten composites a transparent raster over an opaque
// background color, producing the 3 bytes per pixel buffer JPEG needs.
package svgflatten

import (
	"image"
	"image/color"

	"github.com/benoitkugler/svg2jpeg/svgcolor"
)

// RGB is an opaque in-memory image with 3 bytes per pixel.
type RGB struct {
	// Pix holds the samples in R, G, B order.
	// The pixel at (x, y) starts at Pix[(y-Rect.Min.Y)*Stride + (x-Rect.Min.X)*3].
	Pix    []uint8
	Stride int
	Rect   image.Rectangle
}

// NewRGB returns a black RGB image of the given bounds.
func NewRGB(r image.Rectangle) *RGB {
	return &RGB{
		Pix:    make([]uint8, 3*r.Dx()*r.Dy()),
		Stride: 3 * r.Dx(),
		Rect:   r,
	}
}

func (p *RGB) ColorModel() color.Model { return color.RGBAModel }

func (p *RGB) Bounds() image.Rectangle { return p.Rect }

func (p *RGB) At(x, y int) color.Color { return p.RGBAAt(x, y) }

// RGBAAt returns the always opaque color at (x, y).
func (p *RGB) RGBAAt(x, y int) color.RGBA {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return color.RGBA{}
	}
	i := p.PixOffset(x, y)
	s := p.Pix[i : i+3 : i+3]
	return color.RGBA{s[0], s[1], s[2], 0xff}
}

// PixOffset returns the index of the first sample of (x, y) in Pix.
func (p *RGB) PixOffset(x, y int) int {
	return (y-p.Rect.Min.Y)*p.Stride + (x-p.Rect.Min.X)*3
}

// Opaque always reports true.
func (p *RGB) Opaque() bool { return true }

// Composite blends src over bg. The pixel convention of src selects the
// formula: *image.RGBA is premultiplied (out = src + bg*(1-a)),
// *image.NRGBA is straight (out = src*a + bg*(1-a)). Other images go
// through color.NRGBAModel. Every pixel is written exactly once and the
// result has the bounds of src.
func Composite(src image.Image, bg svgcolor.Color) *RGB {
	dst := NewRGB(src.Bounds())
	switch src := src.(type) {
	case *image.RGBA:
		compositePremul(dst, src.Pix, src.Stride, src.Rect, bg)
	case *image.NRGBA:
		compositeStraight(dst, src.Pix, src.Stride, src.Rect, bg)
	default:
		b := src.Bounds()
		nrgba := image.NewNRGBA(b)
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				nrgba.SetNRGBA(x, y, color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA))
			}
		}
		compositeStraight(dst, nrgba.Pix, nrgba.Stride, b, bg)
	}
	return dst
}

func compositePremul(dst *RGB, pix []uint8, stride int, r image.Rectangle, bg svgcolor.Color) {
	bgc := [3]uint32{uint32(bg.R), uint32(bg.G), uint32(bg.B)}
	w, h := r.Dx(), r.Dy()
	for y := 0; y < h; y++ {
		in := pix[y*stride : y*stride+4*w]
		out := dst.Pix[y*dst.Stride : y*dst.Stride+3*w]
		for x := 0; x < w; x++ {
			s := in[4*x : 4*x+4 : 4*x+4]
			inv := 255 - uint32(s[3])
			for c := 0; c < 3; c++ {
				v := uint32(s[c]) + div255(bgc[c]*inv)
				if v > 255 {
					v = 255
				}
				out[3*x+c] = uint8(v)
			}
		}
	}
}

func compositeStraight(dst *RGB, pix []uint8, stride int, r image.Rectangle, bg svgcolor.Color) {
	bgc := [3]uint32{uint32(bg.R), uint32(bg.G), uint32(bg.B)}
	w, h := r.Dx(), r.Dy()
	for y := 0; y < h; y++ {
		in := pix[y*stride : y*stride+4*w]
		out := dst.Pix[y*dst.Stride : y*dst.Stride+3*w]
		for x := 0; x < w; x++ {
			s := in[4*x : 4*x+4 : 4*x+4]
			a := uint32(s[3])
			for c := 0; c < 3; c++ {
				out[3*x+c] = uint8(div255(uint32(s[c])*a + bgc[c]*(255-a)))
			}
		}
	}
}

// div255 divides by 255, rounding to nearest, for v <= 255*255.
func div255(v uint32) uint32 {
	v += 128
	return (v + v>>8) >> 8
}
