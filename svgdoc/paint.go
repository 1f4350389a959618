package svgdoc

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/benoitkugler/svg2jpeg/svgcolor"
)

// paint is a resolved fill value.
type paint struct {
	color  color.NRGBA
	none   bool
	server string // url(...) reference, drawn with color as fallback
}

// parsePaint resolves an SVG paint against the current color.
func parsePaint(v string, current color.NRGBA) (paint, error) {
	v = strings.TrimSpace(v)
	lower := strings.ToLower(v)
	switch {
	case lower == "none" || lower == "transparent":
		return paint{none: true}, nil
	case lower == "currentcolor":
		return paint{color: current}, nil
	case strings.HasPrefix(lower, "url("):
		ref, fallback, _ := strings.Cut(v, ")")
		p := paint{color: color.NRGBA{A: 0xff}, server: ref + ")"}
		if fallback = strings.TrimSpace(fallback); fallback != "" {
			fb, err := parsePaint(fallback, current)
			if err == nil {
				p.color, p.none = fb.color, fb.none
			}
		}
		return p, nil
	case strings.HasPrefix(lower, "rgb(") || strings.HasPrefix(lower, "rgba("):
		c, err := parseRGBFunc(lower)
		if err != nil {
			return paint{}, fmt.Errorf("unsupported paint %q: %v", v, err)
		}
		return paint{color: c}, nil
	}
	c, err := svgcolor.Parse(v)
	if err != nil {
		return paint{}, fmt.Errorf("unsupported paint %q", v)
	}
	return paint{color: color.NRGBA{R: c.R, G: c.G, B: c.B, A: 0xff}}, nil
}

// parseRGBFunc reads rgb(r, g, b) and rgba(r, g, b, a), channels given as
// integers or percentages.
func parseRGBFunc(v string) (color.NRGBA, error) {
	open, end := strings.IndexByte(v, '('), strings.LastIndexByte(v, ')')
	if open < 0 || end < open {
		return color.NRGBA{}, errParamMismatch
	}
	args := strings.FieldsFunc(v[open+1:end], func(r rune) bool {
		return r == ',' || r == ' ' || r == '/'
	})
	if len(args) != 3 && len(args) != 4 {
		return color.NRGBA{}, errParamMismatch
	}
	var ch [3]uint8
	for i := range ch {
		a := args[i]
		scale := 1.0
		if strings.HasSuffix(a, "%") {
			a, scale = strings.TrimSuffix(a, "%"), 2.55
		}
		f, err := parseFloat(a)
		if err != nil {
			return color.NRGBA{}, err
		}
		ch[i] = uint8(clamp01(f*scale/255)*255 + 0.5)
	}
	alpha := 1.0
	if len(args) == 4 {
		op, ok := parseOpacity(args[3])
		if !ok {
			return color.NRGBA{}, errParamMismatch
		}
		alpha = op
	}
	return color.NRGBA{R: ch[0], G: ch[1], B: ch[2], A: uint8(alpha*255 + 0.5)}, nil
}
