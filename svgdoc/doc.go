// Package svgdoc loads SVG documents.
//
// Loading happens in two passes over the input. A first XML walk reads what
// the drawing engine does not expose: the intrinsic size with its units, the
// preserveAspectRatio mode, <text> runs with their inherited style, and the
// elements the engine cannot draw. The bytes are then handed to
// github.com/srwiley/oksvg, which builds the path representation drawn by
// package svgraster.
package svgdoc

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"

	"github.com/srwiley/oksvg"

	"github.com/benoitkugler/svg2jpeg/svgerr"
)

// ErrorMode determines how Load reacts to elements it cannot draw.
type ErrorMode uint8

const (
	// IgnoreErrorMode silently skips unsupported elements.
	IgnoreErrorMode ErrorMode = iota
	// WarnErrorMode records unsupported elements in Document.Warnings.
	WarnErrorMode
	// StrictErrorMode fails with a ParseFailure on the first unsupported element.
	StrictErrorMode
)

// Box is a rectangle in document user units, such as the viewBox.
type Box struct{ X, Y, W, H float64 }

// AspectMode is the scaling policy of preserveAspectRatio.
// Alignment is always xMidYMid.
type AspectMode uint8

const (
	AspectMeet    AspectMode = iota // uniform scale, whole viewBox visible (default)
	AspectSlice                     // uniform scale, canvas fully covered
	AspectStretch                   // "none": independent x and y scales
)

// Document is a parsed SVG ready to be rasterized.
type Document struct {
	// Width and Height are the intrinsic size in CSS pixels.
	Width, Height float64
	ViewBox       Box
	Aspect        AspectMode

	Texts       []Text
	Unsupported []string // element names the engine skips, in order of first appearance
	Warnings    []string

	icon *oksvg.SvgIcon
}

// Icon returns the engine representation of the document paths.
func (d *Document) Icon() *oksvg.SvgIcon { return d.icon }

// Load parses data as an SVG document.
// Malformed XML, a root element other than <svg>, or an empty input fail
// with a ParseFailure.
func Load(data []byte, mode ErrorMode) (*Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, svgerr.New(svgerr.ParseFailure, "failed to parse SVG data: empty input")
	}

	sc, err := scan(data)
	if err != nil {
		return nil, svgerr.Wrap(svgerr.ParseFailure, err, "failed to parse SVG data")
	}
	doc := sc.doc
	doc.Unsupported = sc.unsupported
	doc.Warnings = sc.warnings
	if len(doc.Unsupported) > 0 {
		switch mode {
		case StrictErrorMode:
			return nil, svgerr.New(svgerr.ParseFailure, "failed to parse SVG data: cannot process svg element %s", doc.Unsupported[0])
		case WarnErrorMode:
			for _, name := range doc.Unsupported {
				doc.Warnings = append(doc.Warnings, "cannot process svg element "+name)
			}
		}
	}

	if sc.transcoded && len(sc.edits) > 0 {
		const msg = "cannot resolve relative shape lengths in a document not encoded as UTF-8"
		switch mode {
		case StrictErrorMode:
			return nil, svgerr.New(svgerr.ParseFailure, "failed to parse SVG data: %s", msg)
		case WarnErrorMode:
			doc.Warnings = append(doc.Warnings, msg)
		}
	}

	icon, err := oksvg.ReadIconStream(bytes.NewReader(engineInput(data, sc)), oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, svgerr.Wrap(svgerr.ParseFailure, err, "failed to parse SVG data")
	}
	if icon == nil {
		return nil, svgerr.New(svgerr.ParseFailure, "failed to parse SVG data: no drawable content")
	}
	icon.ViewBox.X, icon.ViewBox.Y = doc.ViewBox.X, doc.ViewBox.Y
	icon.ViewBox.W, icon.ViewBox.H = doc.ViewBox.W, doc.ViewBox.H
	doc.icon = icon
	return doc, nil
}

var (
	sizeAttr   = regexp.MustCompile(`(\s)(?:width|height)\s*=\s*(?:"[^"]*"|'[^']*')`)
	lengthAttr = regexp.MustCompile(`(\s)(x|y|cx|cy|x1|y1|x2|y2|width|height|r|rx|ry)\s*=\s*(?:"[^"]*"|'[^']*')`)
)

// engineInput rewrites the root start tag so the engine sees the resolved
// viewBox instead of width/height lengths it may not understand, and
// replaces the shape lengths resolved by the scan.
func engineInput(data []byte, sc *scanner) []byte {
	if sc.transcoded || sc.rootEnd <= sc.rootStart || sc.rootEnd > len(data) {
		return data
	}
	tag := sizeAttr.ReplaceAll(data[sc.rootStart:sc.rootEnd], []byte("$1"))
	if !sc.hasViewBox {
		vb := sc.doc.ViewBox
		attr := fmt.Sprintf(` viewBox="%g %g %g %g"`, vb.X, vb.Y, vb.W, vb.H)
		tag = insertAttr(tag, attr)
	}

	out := make([]byte, 0, len(data)+32)
	out = append(out, data[:sc.rootStart]...)
	out = append(out, tag...)
	pos := sc.rootEnd
	for _, e := range sc.edits {
		if e.start < pos || e.end > len(data) {
			continue
		}
		out = append(out, data[pos:e.start]...)
		out = append(out, replaceLengths(data[e.start:e.end], e.values)...)
		pos = e.end
	}
	return append(out, data[pos:]...)
}

func replaceLengths(tag []byte, values map[string]string) []byte {
	return lengthAttr.ReplaceAllFunc(tag, func(m []byte) []byte {
		sub := lengthAttr.FindSubmatch(m)
		v, ok := values[string(sub[2])]
		if !ok {
			return m
		}
		return []byte(string(sub[1]) + string(sub[2]) + `="` + v + `"`)
	})
}

// insertAttr adds attr right after the element name of the start tag.
func insertAttr(tag []byte, attr string) []byte {
	lt := bytes.IndexByte(tag, '<')
	if lt < 0 {
		return tag
	}
	i := lt + 1
	for i < len(tag) && !isSpace(tag[i]) && tag[i] != '>' && tag[i] != '/' {
		i++
	}
	out := make([]byte, 0, len(tag)+len(attr))
	out = append(out, tag[:i]...)
	out = append(out, attr...)
	return append(out, tag[i:]...)
}

func isSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }

var errNoRoot = errors.New("no svg element found")
