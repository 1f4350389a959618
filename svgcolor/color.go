// Package svgcolor parses the background color given on the command line.
//
// A token is either a CSS color keyword ("white", "SteelBlue", ...) or a
// '#'-prefixed hexadecimal value with 3, 4, 6 or 8 digits. Alpha digits are
// validated but dropped: the color is always opaque since it ends up behind a
// JPEG image.
package svgcolor

import (
	"fmt"
	"image/color"
	"strings"

	"golang.org/x/image/colornames"

	"github.com/benoitkugler/svg2jpeg/svgerr"
)

// Color is an opaque 8-bit sRGB color.
type Color struct {
	R, G, B uint8
}

var (
	White = Color{0xff, 0xff, 0xff}
	Black = Color{0, 0, 0}
)

// RGBA implements color.Color. The result is always fully opaque.
func (c Color) RGBA() (r, g, b, a uint32) {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}.RGBA()
}

// Hex returns the #rrggbb form of c.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func (c Color) String() string { return c.Hex() }

// Parse converts token into a Color. Keywords are matched case-insensitively.
func Parse(token string) (Color, error) {
	s := strings.TrimSpace(token)
	if strings.HasPrefix(s, "#") {
		return parseHex(token, s[1:])
	}
	if c, ok := colornames.Map[strings.ToLower(s)]; ok {
		return Color{c.R, c.G, c.B}, nil
	}
	return Color{}, svgerr.New(svgerr.InvalidColorFormat, "invalid color %q: unknown color name", token)
}

// MustParse is like Parse but panics on error.
func MustParse(token string) Color {
	c, err := Parse(token)
	if err != nil {
		panic(err)
	}
	return c
}

func parseHex(token, digits string) (Color, error) {
	var v [8]uint8
	for i := 0; i < len(digits); i++ {
		if i == len(v) {
			break
		}
		d, ok := hexDigit(digits[i])
		if !ok {
			return Color{}, svgerr.New(svgerr.InvalidColorFormat, "invalid color %q: %q is not a hex digit", token, digits[i])
		}
		v[i] = d
	}
	switch len(digits) {
	case 3, 4: // #RGB[A], each digit duplicated
		return Color{v[0] * 17, v[1] * 17, v[2] * 17}, nil
	case 6, 8: // #RRGGBB[AA]
		return Color{v[0]<<4 | v[1], v[2]<<4 | v[3], v[4]<<4 | v[5]}, nil
	default:
		return Color{}, svgerr.New(svgerr.InvalidColorFormat, "invalid color %q: expected 3, 4, 6 or 8 hex digits", token)
	}
}

func hexDigit(c byte) (uint8, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
