// Package cli implements the svg2jpeg command-line interface.
//
// The command reads one SVG document from a file or standard input and
// writes one JPEG to a file or standard output:
//
//	svg2jpeg -i drawing.svg -o drawing.jpg -w 800 -q 90 -b "#fafafa"
//	cat drawing.svg | svg2jpeg > drawing.jpg
//
// Defaults may be stored in a TOML file passed with --config; flags given
// explicitly override it. Logs go to standard error; --verbose (-v) enables
// debug output with stage timings.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/benoitkugler/svg2jpeg/svgconv"
	"github.com/benoitkugler/svg2jpeg/svgerr"
)

var (
	version = "dev" // semantic version (e.g., "v1.2.3")
	commit  string  // git commit SHA
	date    string  // build timestamp
)

// SetVersion sets the version information displayed by --version.
// It is typically called by the main package with values injected via
// ldflags at build time.
func SetVersion(v, c, d string) {
	if v != "" {
		version = v
	}
	commit = c
	date = d
}

// options holds the command-line flags.
type options struct {
	input      string
	output     string
	width      int
	quality    int
	background string
	fontsDir   string
	configPath string
	strict     bool
	verbose    bool
}

// Execute runs the command on the process arguments and streams.
// Failures are reported on standard error as "svg2jpeg: <message>".
func Execute() error {
	return run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cmd, _ := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(stderr, "svg2jpeg: %v\n", err)
		return err
	}
	return nil
}

// newRootCmd creates the command and the options its flags are bound to.
func newRootCmd() (*cobra.Command, *options) {
	defaults := svgconv.DefaultConfig()
	opts := &options{
		quality:    defaults.Quality,
		background: defaults.Background,
	}

	cmd := &cobra.Command{
		Use:   "svg2jpeg",
		Short: "Convert an SVG document to a JPEG image",
		Long: `svg2jpeg rasterizes an SVG document and encodes it as a baseline JPEG.
Transparent areas are filled with the background color.
Without --input the document is read from standard input; without --output
the image is written to standard output.`,
		Args:          cobra.NoArgs,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, opts)
		},
	}

	cmd.SetVersionTemplate(fmt.Sprintf("svg2jpeg %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "input SVG file (default: standard input)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output JPEG file (default: standard output)")
	cmd.Flags().IntVarP(&opts.width, "width", "w", 0, "output width in pixels, height keeps the aspect ratio (default: intrinsic size)")
	cmd.Flags().IntVarP(&opts.quality, "quality", "q", opts.quality, "JPEG quality, 1 to 100")
	cmd.Flags().StringVarP(&opts.background, "background", "b", opts.background, "background color, a name or #RGB/#RRGGBB")
	cmd.Flags().StringVar(&opts.fontsDir, "use-fonts-dir", "", "directory of additional .ttf/.otf/.ttc fonts")
	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "TOML file with default option values")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "fail on SVG elements that cannot be rendered")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose logging")

	return cmd, opts
}

func runConvert(cmd *cobra.Command, opts *options) error {
	level := log.InfoLevel
	if opts.verbose {
		level = log.DebugLevel
	}
	logger := newLogger(cmd.ErrOrStderr(), level)

	cfg, err := buildConfig(cmd, opts)
	if err != nil {
		return err
	}

	conv := svgconv.Converter{
		Stdin:  cmd.InOrStdin(),
		Stdout: cmd.OutOrStdout(),
		Logger: logger,
	}
	res, err := conv.Run(cfg)
	if err != nil {
		return err
	}
	logger.Debug("converted", "width", res.Dimensions.Width, "height", res.Dimensions.Height, "bytes", res.Bytes)
	return nil
}

// buildConfig layers the config file and the explicitly set flags over
// the defaults.
func buildConfig(cmd *cobra.Command, opts *options) (svgconv.Config, error) {
	cfg := svgconv.DefaultConfig()
	if opts.configPath != "" {
		fc, err := loadConfigFile(opts.configPath)
		if err != nil {
			return cfg, err
		}
		fc.apply(&cfg)
	}

	flags := cmd.Flags()
	if flags.Changed("width") {
		if opts.width <= 0 {
			return cfg, svgerr.New(svgerr.InvalidConfig, "width must be greater than 0, got %d", opts.width)
		}
		cfg.Width = opts.width
	}
	if flags.Changed("quality") {
		cfg.Quality = opts.quality
	}
	if flags.Changed("background") {
		cfg.Background = opts.background
	}
	if flags.Changed("use-fonts-dir") {
		cfg.FontsDir = opts.fontsDir
	}
	if flags.Changed("strict") {
		cfg.Strict = opts.strict
	}
	cfg.Input, cfg.Output = opts.input, opts.output
	return cfg, nil
}
