package svgdoc

import (
	"bytes"
	"encoding/xml"
	"image/color"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/srwiley/rasterx"
	"golang.org/x/net/html/charset"
)

const svgNamespace = "http://www.w3.org/2000/svg"

// drawable lists the elements handled either by the engine or by the
// text pass. Anything else in the SVG namespace is reported as unsupported.
var drawable = map[string]bool{
	"svg": true, "g": true, "line": true, "stop": true, "rect": true,
	"circle": true, "ellipse": true, "polyline": true, "polygon": true,
	"path": true, "desc": true, "defs": true, "title": true, "use": true,
	"linearGradient": true, "radialGradient": true, "metadata": true,
	"text": true, "tspan": true,
}

// geometry lists the shape elements whose length attributes are resolved
// to user units before the engine sees them.
var geometry = map[string]bool{
	"rect": true, "circle": true, "ellipse": true, "line": true, "use": true,
}

// lengthAxis tells which viewBox side a percentage of each geometry
// attribute refers to: 'x' for the width, 'y' for the height, 'd' for the
// normalized diagonal.
var lengthAxis = map[string]byte{
	"x": 'x', "cx": 'x', "x1": 'x', "x2": 'x', "width": 'x', "rx": 'x',
	"y": 'y', "cy": 'y', "y1": 'y', "y2": 'y', "height": 'y', "ry": 'y',
	"r": 'd',
}

// effects maps the attributes referencing a paint effect the engine does
// not apply to the element providing it.
var effects = map[string]string{
	"clip-path": "clipPath", "mask": "mask", "filter": "filter",
}

// hidden elements never paint their children directly.
var hidden = map[string]bool{
	"defs": true, "symbol": true, "clipPath": true, "mask": true,
	"pattern": true, "marker": true, "metadata": true,
}

// textStyle is the inherited state relevant to text runs.
type textStyle struct {
	fill        paint
	current     color.NRGBA // value of the color property, for currentColor
	fillOpacity float64
	opacity     float64
	fontSize    float64
	families    []string
	anchor      Anchor
	transform   rasterx.Matrix2D
}

var defaultTextStyle = textStyle{
	fill:        paint{color: color.NRGBA{A: 0xff}},
	current:     color.NRGBA{A: 0xff},
	fillOpacity: 1,
	opacity:     1,
	fontSize:    defaultFontSize,
	families:    []string{"serif"},
	transform:   rasterx.Identity,
}

type scanner struct {
	doc         *Document
	styleStack  []textStyle
	unsupported []string
	warnings    []string

	seenUnsupported map[string]bool
	hiddenDepth     int // > 0 inside defs and friends

	text       *Text // open <text> element
	textBuf    strings.Builder
	hasViewBox bool

	// byte range of the root start tag, and whether offsets are unreliable
	rootStart, rootEnd int
	transcoded         bool
	edits              []tagEdit // after the root tag, in document order
}

// tagEdit holds the resolved values of the length attributes of the start
// tag found at data[start:end].
type tagEdit struct {
	start, end int
	values     map[string]string
}

func scan(data []byte) (*scanner, error) {
	sc := &scanner{
		doc:             &Document{},
		styleStack:      []textStyle{defaultTextStyle},
		seenUnsupported: make(map[string]bool),
	}
	decoder := xml.NewDecoder(bytes.NewReader(data))
	decoder.CharsetReader = func(label string, input io.Reader) (io.Reader, error) {
		sc.transcoded = true
		return charset.NewReaderLabel(label, input)
	}
	seenRoot := false
	for {
		start := int(decoder.InputOffset())
		t, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch se := t.(type) {
		case xml.ProcInst:
			if se.Target == "xml" && !isUTF8Declaration(se.Inst) {
				sc.transcoded = true
			}
		case xml.StartElement:
			end := int(decoder.InputOffset())
			if !seenRoot {
				if se.Name.Local != "svg" {
					return nil, &rootError{name: se.Name.Local}
				}
				seenRoot = true
				sc.rootStart, sc.rootEnd = start, end
				if err := sc.readRoot(se.Attr); err != nil {
					return nil, err
				}
			} else {
				sc.resolveLengths(se, start, end)
			}
			sc.startElement(se)
		case xml.EndElement:
			sc.endElement(se)
		case xml.CharData:
			if sc.text != nil {
				sc.textBuf.Write(se)
			}
		}
	}
	if !seenRoot {
		return nil, errNoRoot
	}
	return sc, nil
}

type rootError struct{ name string }

func (e *rootError) Error() string { return "root element is <" + e.name + ">, not <svg>" }

func isUTF8Declaration(inst []byte) bool {
	s := strings.ToLower(string(inst))
	i := strings.Index(s, "encoding")
	if i < 0 {
		return true
	}
	s = s[i:]
	return strings.Contains(s, "utf-8") || strings.Contains(s, "utf8")
}

// readRoot resolves the intrinsic size and viewBox from the root attributes.
func (sc *scanner) readRoot(attrs []xml.Attr) error {
	var (
		width, height string
		vb            Box
	)
	for _, attr := range attrs {
		switch attr.Name.Local {
		case "width":
			width = attr.Value
		case "height":
			height = attr.Value
		case "viewBox":
			nums, err := parseNumbers(attr.Value)
			if err != nil || len(nums) != 4 {
				return errParamMismatch
			}
			vb = Box{nums[0], nums[1], nums[2], nums[3]}
			sc.hasViewBox = vb.W > 0 && vb.H > 0
		case "preserveAspectRatio":
			sc.doc.Aspect = parseAspect(attr.Value)
		}
	}

	w, wOK := parseLength(width, defaultFontSize)
	h, hOK := parseLength(height, defaultFontSize)
	switch {
	case wOK && hOK:
	case sc.hasViewBox && wOK:
		h = w * vb.H / vb.W
	case sc.hasViewBox && hOK:
		w = h * vb.W / vb.H
	case sc.hasViewBox:
		w, h = vb.W, vb.H
	}
	sc.doc.Width, sc.doc.Height = w, h
	if !sc.hasViewBox {
		vb = Box{0, 0, w, h}
	}
	sc.doc.ViewBox = vb
	return nil
}

func (sc *scanner) startElement(se xml.StartElement) {
	sc.pushStyle(se.Attr)

	name := se.Name.Local
	if se.Name.Space != "" && se.Name.Space != svgNamespace {
		return // foreign vocabulary, such as inkscape or rdf metadata
	}
	if hidden[name] {
		sc.hiddenDepth++
	}
	if sc.hiddenDepth > 0 {
		return
	}
	if !drawable[name] {
		sc.reportUnsupported(name)
	}
	for _, ref := range referencedEffects(se.Attr) {
		sc.reportUnsupported(ref)
	}
	if name == "text" {
		sc.openText(se.Attr)
	}
}

func (sc *scanner) reportUnsupported(name string) {
	if sc.seenUnsupported[name] {
		return
	}
	sc.seenUnsupported[name] = true
	sc.unsupported = append(sc.unsupported, name)
}

// referencedEffects returns the clipPath, mask and filter elements an
// element applies through attributes or its style.
func referencedEffects(attrs []xml.Attr) []string {
	var refs []string
	check := func(k, v string) {
		k, v = strings.ToLower(strings.TrimSpace(k)), strings.TrimSpace(v)
		if el, ok := effects[k]; ok && v != "" && v != "none" {
			refs = append(refs, el)
		}
	}
	for _, attr := range attrs {
		if attr.Name.Space != "" {
			continue
		}
		if strings.ToLower(attr.Name.Local) == "style" {
			for _, pair := range strings.Split(attr.Value, ";") {
				if k, v, ok := strings.Cut(pair, ":"); ok {
					check(k, v)
				}
			}
			continue
		}
		check(attr.Name.Local, attr.Value)
	}
	return refs
}

// resolveLengths converts the percentages and units of shape geometry to
// plain user units, which is all the engine reads. Percentages refer to
// the root viewBox.
func (sc *scanner) resolveLengths(se xml.StartElement, start, end int) {
	if !geometry[se.Name.Local] || (se.Name.Space != "" && se.Name.Space != svgNamespace) {
		return
	}
	vb := sc.doc.ViewBox
	fontSize := sc.styleStack[len(sc.styleStack)-1].fontSize
	var values map[string]string
	for _, attr := range se.Attr {
		axis, ok := lengthAxis[attr.Name.Local]
		if !ok || attr.Name.Space != "" {
			continue
		}
		v := strings.TrimSpace(attr.Value)
		if _, err := parseFloat(v); err == nil || v == "" {
			continue
		}
		var resolved float64
		if p, isPercent := strings.CutSuffix(v, "%"); isPercent {
			f, err := parseFloat(p)
			if err != nil {
				continue
			}
			ref := vb.W
			switch axis {
			case 'y':
				ref = vb.H
			case 'd':
				ref = math.Sqrt(vb.W*vb.W+vb.H*vb.H) / math.Sqrt2
			}
			resolved = f * ref / 100
		} else if l, ok := parseLength(v, fontSize); ok {
			resolved = l
		} else {
			continue
		}
		if values == nil {
			values = make(map[string]string)
		}
		values[attr.Name.Local] = strconv.FormatFloat(resolved, 'g', -1, 64)
	}
	if values != nil {
		sc.edits = append(sc.edits, tagEdit{start: start, end: end, values: values})
	}
}

func (sc *scanner) endElement(se xml.EndElement) {
	if len(sc.styleStack) > 1 {
		sc.styleStack = sc.styleStack[:len(sc.styleStack)-1]
	}
	if se.Name.Space != "" && se.Name.Space != svgNamespace {
		return
	}
	if hidden[se.Name.Local] && sc.hiddenDepth > 0 {
		sc.hiddenDepth--
	}
	if se.Name.Local == "text" && sc.text != nil {
		sc.closeText()
	}
}

// pushStyle reads the style attribute and the presentation attributes
// relevant to text, on top of a copy of the current style.
func (sc *scanner) pushStyle(attrs []xml.Attr) {
	var pairs []string
	for _, attr := range attrs {
		switch strings.ToLower(attr.Name.Local) {
		case "style":
			pairs = append(pairs, strings.Split(attr.Value, ";")...)
		default:
			pairs = append(pairs, attr.Name.Local+":"+attr.Value)
		}
	}
	curStyle := sc.styleStack[len(sc.styleStack)-1]
	curStyle.opacity = 1 // group opacity is folded into the parent value below
	parentOpacity := sc.styleStack[len(sc.styleStack)-1].opacity
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, ":")
		if !ok {
			continue
		}
		sc.readStyleAttr(&curStyle, strings.ToLower(strings.TrimSpace(k)), strings.TrimSpace(v))
	}
	curStyle.opacity *= parentOpacity
	sc.styleStack = append(sc.styleStack, curStyle)
}

func (sc *scanner) readStyleAttr(curStyle *textStyle, k, v string) {
	if v == "inherit" {
		return
	}
	switch k {
	case "fill":
		p, err := parsePaint(v, curStyle.current)
		if err != nil {
			sc.warnings = append(sc.warnings, err.Error())
			return
		}
		curStyle.fill = p
	case "color":
		if p, err := parsePaint(v, curStyle.current); err == nil && !p.none {
			curStyle.current = p.color
		}
	case "fill-opacity":
		if op, ok := parseOpacity(v); ok {
			curStyle.fillOpacity = op
		}
	case "opacity":
		if op, ok := parseOpacity(v); ok {
			curStyle.opacity = op
		}
	case "font-size":
		if size, ok := parseFontSize(v, curStyle.fontSize); ok {
			curStyle.fontSize = size
		}
	case "font-family":
		if families := parseFamilies(v); len(families) > 0 {
			curStyle.families = families
		}
	case "text-anchor":
		switch v {
		case "start":
			curStyle.anchor = AnchorStart
		case "middle":
			curStyle.anchor = AnchorMiddle
		case "end":
			curStyle.anchor = AnchorEnd
		}
	case "transform":
		m, err := parseTransform(curStyle.transform, v)
		if err != nil {
			sc.warnings = append(sc.warnings, "ignoring transform "+strconv.Quote(v)+": "+err.Error())
			return
		}
		curStyle.transform = m
	}
}

func (sc *scanner) openText(attrs []xml.Attr) {
	style := sc.styleStack[len(sc.styleStack)-1]
	t := &Text{
		FontSize:  style.fontSize,
		Families:  style.families,
		Anchor:    style.anchor,
		Transform: style.transform,
		Fill:      style.fill.color,
		hidden:    style.fill.none,
		server:    style.fill.server,
	}
	t.Fill.A = uint8(float64(t.Fill.A)*clamp01(style.fillOpacity*style.opacity) + 0.5)
	for _, attr := range attrs {
		switch attr.Name.Local {
		case "x":
			t.X = sc.firstCoordinate(attr.Value, sc.doc.ViewBox.W)
		case "y":
			t.Y = sc.firstCoordinate(attr.Value, sc.doc.ViewBox.H)
		}
	}
	sc.text = t
	sc.textBuf.Reset()
}

func (sc *scanner) closeText() {
	t := sc.text
	sc.text = nil
	t.Content = collapseSpaces(sc.textBuf.String())
	if t.Content == "" || t.hidden || t.Fill.A == 0 {
		return
	}
	if t.server != "" {
		sc.warnings = append(sc.warnings, "text fill "+t.server+" drawn as a solid color")
	}
	sc.doc.Texts = append(sc.doc.Texts, *t)
}

// firstCoordinate reads the first length of an x or y list.
// Percentages are relative to ref.
func (sc *scanner) firstCoordinate(v string, ref float64) float64 {
	fields := splitOnCommaOrSpace(v)
	if len(fields) == 0 {
		return 0
	}
	f := fields[0]
	if strings.HasSuffix(f, "%") {
		p, err := parseFloat(strings.TrimSuffix(f, "%"))
		if err != nil {
			return 0
		}
		return p * ref / 100
	}
	l, ok := parseLength(f, sc.styleStack[len(sc.styleStack)-1].fontSize)
	if !ok {
		return 0
	}
	return l
}

// collapseSpaces applies the default xml:space handling: newlines are
// dropped, tabs become spaces, runs of spaces collapse and ends are trimmed.
func collapseSpaces(s string) string {
	s = strings.NewReplacer("\r", "", "\n", "", "\t", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
