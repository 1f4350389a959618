// Package svgconv runs a whole SVG to JPEG conversion: it reads the input,
// loads and rasterizes the document, flattens it over the background color,
// encodes it and writes the result.
//
// The rendering and encoding engines are interfaces so tests and other
// front ends can substitute their own:
//
//	c := svgconv.Converter{Stdin: os.Stdin, Stdout: os.Stdout}
//	res, err := c.Run(cfg)
package svgconv

import (
	"bytes"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/benoitkugler/svg2jpeg/svgcolor"
	"github.com/benoitkugler/svg2jpeg/svgdoc"
	"github.com/benoitkugler/svg2jpeg/svgflatten"
	"github.com/benoitkugler/svg2jpeg/svgjpeg"
	"github.com/benoitkugler/svg2jpeg/svgraster"
	"github.com/benoitkugler/svg2jpeg/svgsize"
)

// Result describes a successful conversion.
type Result struct {
	Dimensions  svgsize.Dimensions
	Bytes       int // size of the encoded output
	Diagnostics svgraster.Diagnostics
}

// Converter sequences the conversion stages. The zero value reads and
// writes nothing; set Stdin and Stdout for stream input and output.
type Converter struct {
	Stdin  io.Reader
	Stdout io.Writer

	// Rasterizer defaults to a svgraster.Renderer loading Config.FontsDir.
	Rasterizer svgraster.Rasterizer
	// Encoder defaults to svgjpeg.JPEG.
	Encoder svgjpeg.Encoder
	// Logger defaults to a discarding logger.
	Logger *log.Logger
}

type diagnoser interface {
	LastDiagnostics() svgraster.Diagnostics
}

// Run converts the document described by cfg. Nothing is written to the
// output unless every stage succeeds.
func (c *Converter) Run(cfg Config) (Result, error) {
	logger := c.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}

	bg, err := svgcolor.Parse(cfg.Background)
	if err != nil {
		return Result{}, err
	}

	src := NewSource(cfg.Input, c.Stdin)
	dst := NewSink(cfg.Output, c.Stdout)

	p := newProgress(logger)
	data, err := src.ReadAll()
	if err != nil {
		return Result{}, err
	}
	p.done("read input", "source", src.Name(), "bytes", len(data))

	mode := svgdoc.WarnErrorMode
	if cfg.Strict {
		mode = svgdoc.StrictErrorMode
	}
	doc, err := svgdoc.Load(data, mode)
	if err != nil {
		return Result{}, err
	}
	p.done("loaded document", "width", doc.Width, "height", doc.Height, "texts", len(doc.Texts))

	dims, err := svgsize.Resolve(doc.Width, doc.Height, cfg.Width)
	if err != nil {
		return Result{}, err
	}

	rasterizer := c.Rasterizer
	if rasterizer == nil {
		rasterizer = svgraster.NewRenderer(
			svgraster.WithFonts(loadFonts(cfg.FontsDir, logger)),
			svgraster.WithLogger(logger),
		)
	}
	img, err := rasterizer.Rasterize(doc, dims)
	if err != nil {
		return Result{}, err
	}
	p.done("rasterized", "width", dims.Width, "height", dims.Height)

	res := Result{Dimensions: dims}
	res.Diagnostics.Warnings = append(res.Diagnostics.Warnings, doc.Warnings...)
	for _, w := range doc.Warnings {
		logger.Warn(w)
	}
	if d, ok := rasterizer.(diagnoser); ok {
		diag := d.LastDiagnostics()
		res.Diagnostics.MissingFonts = diag.MissingFonts
		res.Diagnostics.Warnings = append(res.Diagnostics.Warnings, diag.Warnings...)
	}

	flat := svgflatten.Composite(img, bg)
	p.done("composited", "background", bg.Hex())

	encoder := c.Encoder
	if encoder == nil {
		encoder = svgjpeg.JPEG{}
	}
	var buf bytes.Buffer
	if err := encoder.Encode(&buf, flat, cfg.Quality); err != nil {
		return Result{}, err
	}
	p.done("encoded", "format", encoder.Format(), "quality", cfg.Quality, "bytes", buf.Len())

	if err := dst.Write(buf.Bytes()); err != nil {
		return Result{}, err
	}
	res.Bytes = buf.Len()
	logger.Debug("wrote output", "sink", dst.Name())
	return res, nil
}

// loadFonts returns a registry with the fonts of dir, backed by the fonts
// installed on the system. A missing or unreadable directory only adds no
// fonts.
func loadFonts(dir string, logger *log.Logger) *svgraster.FontRegistry {
	fonts := svgraster.NewFontRegistry()
	fonts.UseSystemFonts()
	if dir == "" {
		return fonts
	}
	n, err := fonts.LoadDir(dir)
	if err != nil {
		logger.Warn("no fonts loaded", "err", err)
		return fonts
	}
	for _, problem := range fonts.Problems() {
		logger.Warn("skipping font file", "err", problem)
	}
	logger.Debug("loaded fonts", "dir", dir, "count", n)
	return fonts
}

// progress logs the duration of each stage at debug level.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

func (p *progress) done(msg string, keyvals ...any) {
	keyvals = append(keyvals, "took", time.Since(p.start).Round(time.Microsecond))
	p.logger.Debug(msg, keyvals...)
	p.start = time.Now()
}
