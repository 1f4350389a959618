package cli

import (
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/benoitkugler/svg2jpeg/svgconv"
	"github.com/benoitkugler/svg2jpeg/svgerr"
)

// fileConfig is the content of a --config TOML file. Every key is optional;
// flags given on the command line take precedence.
//
//	width = 800
//	quality = 90
//	background = "#f0f0f0"
//	fonts_dir = "/usr/share/fonts"
//	strict = true
type fileConfig struct {
	Width      *int    `toml:"width"`
	Quality    *int    `toml:"quality"`
	Background *string `toml:"background"`
	FontsDir   *string `toml:"fonts_dir"`
	Strict     *bool   `toml:"strict"`
}

// loadConfigFile decodes path. Unknown keys are rejected so that typos do
// not go unnoticed.
func loadConfigFile(path string) (fileConfig, error) {
	var fc fileConfig
	md, err := toml.DecodeFile(path, &fc)
	if err != nil {
		return fileConfig{}, svgerr.Wrap(svgerr.InvalidConfig, err, "failed to load config file %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return fileConfig{}, svgerr.New(svgerr.InvalidConfig, "unknown keys in config file %s: %s", path, strings.Join(keys, ", "))
	}
	if fc.Width != nil && *fc.Width <= 0 {
		return fileConfig{}, svgerr.New(svgerr.InvalidConfig, "width must be greater than 0, got %d in %s", *fc.Width, path)
	}
	return fc, nil
}

func (fc fileConfig) apply(cfg *svgconv.Config) {
	if fc.Width != nil {
		cfg.Width = *fc.Width
	}
	if fc.Quality != nil {
		cfg.Quality = *fc.Quality
	}
	if fc.Background != nil {
		cfg.Background = *fc.Background
	}
	if fc.FontsDir != nil {
		cfg.FontsDir = *fc.FontsDir
	}
	if fc.Strict != nil {
		cfg.Strict = *fc.Strict
	}
}
