package svgdoc

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/srwiley/rasterx"
)

const defaultFontSize = 16.0

var errParamMismatch = errors.New("svg: param mismatch")

// CSS absolute units, in px.
var unitFactors = map[string]float64{
	"":   1,
	"px": 1,
	"pt": 96.0 / 72,
	"pc": 16,
	"mm": 96 / 25.4,
	"cm": 96 / 2.54,
	"in": 96,
}

// parseLength converts an SVG length to px. Relative units use fontSize.
// Percentages, empty values and "auto" report false: they need a viewport
// the caller does not have.
func parseLength(v string, fontSize float64) (float64, bool) {
	v = strings.TrimSpace(v)
	if v == "" || v == "auto" || strings.HasSuffix(v, "%") {
		return 0, false
	}
	i := len(v)
	for i > 0 && isLetter(v[i-1]) {
		i--
	}
	num, unit := v[:i], strings.ToLower(v[i:])
	f, err := parseFloat(num)
	if err != nil {
		return 0, false
	}
	switch unit {
	case "em":
		return f * fontSize, true
	case "ex":
		return f * fontSize / 2, true
	}
	factor, ok := unitFactors[unit]
	if !ok {
		return 0, false
	}
	return f * factor, true
}

// parseFontSize resolves font-size against the inherited size.
func parseFontSize(v string, parent float64) (float64, bool) {
	v = strings.TrimSpace(v)
	switch v {
	case "xx-small":
		return 9, true
	case "x-small":
		return 10, true
	case "small":
		return 13, true
	case "medium":
		return 16, true
	case "large":
		return 18, true
	case "x-large":
		return 24, true
	case "xx-large":
		return 32, true
	case "smaller":
		return parent / 1.2, true
	case "larger":
		return parent * 1.2, true
	}
	if strings.HasSuffix(v, "%") {
		p, err := parseFloat(strings.TrimSuffix(v, "%"))
		if err != nil || p <= 0 {
			return 0, false
		}
		return parent * p / 100, true
	}
	size, ok := parseLength(v, parent)
	if !ok || size <= 0 {
		return 0, false
	}
	return size, true
}

func parseOpacity(v string) (float64, bool) {
	v = strings.TrimSpace(v)
	d := 1.0
	if strings.HasSuffix(v, "%") {
		d = 100
		v = strings.TrimSuffix(v, "%")
	}
	f, err := parseFloat(v)
	if err != nil {
		return 0, false
	}
	return clamp01(f / d), true
}

// parseFamilies splits a font-family list, dropping quotes.
func parseFamilies(v string) []string {
	var out []string
	for _, name := range strings.Split(v, ",") {
		name = strings.Trim(strings.TrimSpace(name), `"'`)
		if name != "" {
			out = append(out, name)
		}
	}
	return out
}

func parseAspect(v string) AspectMode {
	fields := strings.Fields(v)
	for _, f := range fields {
		switch f {
		case "none":
			return AspectStretch
		case "slice":
			return AspectSlice
		}
	}
	return AspectMeet
}

func parseFloat(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errParamMismatch
	}
	return f, nil
}

func parseNumbers(v string) ([]float64, error) {
	fields := splitOnCommaOrSpace(v)
	out := make([]float64, len(fields))
	for i, f := range fields {
		n, err := parseFloat(f)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

// splitOnCommaOrSpace returns a list of strings after splitting the input on comma and space delimiters
func splitOnCommaOrSpace(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
}

// parseTransform applies the transform list v on top of m.
func parseTransform(m rasterx.Matrix2D, v string) (rasterx.Matrix2D, error) {
	for _, t := range strings.Split(v, ")") {
		t = strings.TrimSpace(t)
		t = strings.TrimLeft(t, ", ")
		if len(t) == 0 {
			continue
		}
		name, args, ok := strings.Cut(t, "(")
		if !ok {
			return m, errParamMismatch
		}
		points, err := parseNumbers(args)
		if err != nil {
			return m, err
		}
		m, err = applyTransform(m, strings.ToLower(strings.TrimSpace(name)), points)
		if err != nil {
			return m, err
		}
	}
	return m, nil
}

func applyTransform(m rasterx.Matrix2D, k string, p []float64) (rasterx.Matrix2D, error) {
	ln := len(p)
	switch k {
	case "rotate":
		switch ln {
		case 1:
			return m.Rotate(p[0] * math.Pi / 180), nil
		case 3:
			return m.Translate(p[1], p[2]).Rotate(p[0]*math.Pi/180).Translate(-p[1], -p[2]), nil
		}
	case "translate":
		switch ln {
		case 1:
			return m.Translate(p[0], 0), nil
		case 2:
			return m.Translate(p[0], p[1]), nil
		}
	case "skewx":
		if ln == 1 {
			return m.SkewX(p[0] * math.Pi / 180), nil
		}
	case "skewy":
		if ln == 1 {
			return m.SkewY(p[0] * math.Pi / 180), nil
		}
	case "scale":
		switch ln {
		case 1:
			return m.Scale(p[0], p[0]), nil
		case 2:
			return m.Scale(p[0], p[1]), nil
		}
	case "matrix":
		if ln == 6 {
			return m.Mult(rasterx.Matrix2D{A: p[0], B: p[1], C: p[2], D: p[3], E: p[4], F: p[5]}), nil
		}
	}
	return m, errParamMismatch
}

func isLetter(c byte) bool { return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') }
