package svgconv

import (
	"path/filepath"

	"github.com/benoitkugler/svg2jpeg/svgerr"
	"github.com/benoitkugler/svg2jpeg/svgjpeg"
)

// DefaultBackground is the background used when none is configured.
const DefaultBackground = "white"

// Config holds the options of one conversion.
type Config struct {
	Input      string // input file path; empty reads standard input
	Output     string // output file path; empty writes standard output
	Width      int    // output width in pixels; 0 keeps the intrinsic width
	Quality    int    // JPEG quality, 1 to 100
	Background string // color token composited under transparent pixels
	FontsDir   string // optional directory of font files
	Strict     bool   // reject documents with elements the renderer skips
}

// DefaultConfig returns a Config reading standard input and writing
// standard output, with quality 80 over a white background.
func DefaultConfig() Config {
	return Config{
		Quality:    svgjpeg.DefaultQuality,
		Background: DefaultBackground,
	}
}

// Validate checks the numeric ranges and paths of c. Failures are
// InvalidConfig errors; the background token is checked by Run.
func (c Config) Validate() error {
	if c.Width < 0 {
		return svgerr.New(svgerr.InvalidConfig, "width must be greater than 0, got %d", c.Width)
	}
	if c.Quality < 1 || c.Quality > 100 {
		return svgerr.New(svgerr.InvalidConfig, "quality must be between 1 and 100, got %d", c.Quality)
	}
	if c.Input != "" && c.Output != "" && filepath.Clean(c.Input) == filepath.Clean(c.Output) {
		return svgerr.New(svgerr.InvalidConfig, "input and output are the same file %s", c.Input)
	}
	return nil
}
