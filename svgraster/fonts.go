package svgraster

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/flopp/go-findfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"

	"github.com/benoitkugler/svg2jpeg/svgerr"
)

// generic CSS families, all served by the fallback face
var genericFamilies = map[string]bool{
	"serif": true, "sans-serif": true, "monospace": true, "cursive": true,
	"fantasy": true, "system-ui": true, "ui-serif": true, "ui-sans-serif": true,
	"ui-monospace": true,
}

// FontRegistry maps font family names to parsed fonts.
// The zero value is not usable; use NewFontRegistry.
type FontRegistry struct {
	families map[string]*opentype.Font // by lower-cased family name
	fallback *opentype.Font
	problems []string

	// system lists the installed font files, read on the first lookup miss
	system       func() []string
	systemLoaded bool
}

// NewFontRegistry returns a registry holding only the built-in Go Regular face,
// used for generic families and as a last resort.
func NewFontRegistry() *FontRegistry {
	fallback, err := opentype.Parse(goregular.TTF)
	if err != nil {
		panic(fmt.Sprintf("svgraster: embedded font: %v", err))
	}
	r := &FontRegistry{families: make(map[string]*opentype.Font)}
	r.fallback = fallback
	r.Add(fallback)
	return r
}

// Add registers f under its family name. A family already present keeps
// its first font.
func (r *FontRegistry) Add(f *opentype.Font) (string, error) {
	family, err := f.Name(nil, sfnt.NameIDFamily)
	if err != nil {
		return "", err
	}
	key := strings.ToLower(strings.TrimSpace(family))
	if key == "" {
		return "", fmt.Errorf("empty family name")
	}
	if _, ok := r.families[key]; !ok {
		r.families[key] = f
	}
	return family, nil
}

// LoadDir registers every font file (.ttf, .otf, .ttc, .otc) found under dir,
// recursively, and returns the number of fonts added.
// Files that fail to parse are skipped and listed by Problems.
// An unreadable dir fails with an IoFailure.
func (r *FontRegistry) LoadDir(dir string) (int, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return 0, svgerr.IO(dir, err, "failed to read fonts directory")
	}
	if !info.IsDir() {
		return 0, svgerr.IO(dir, fmt.Errorf("not a directory"), "failed to read fonts directory")
	}

	added := 0
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			r.problems = append(r.problems, fmt.Sprintf("%s: %v", path, err))
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".ttf", ".otf":
			added += r.loadFile(path, false)
		case ".ttc", ".otc":
			added += r.loadFile(path, true)
		}
		return nil
	})
	if err != nil {
		return added, svgerr.IO(dir, err, "failed to read fonts directory")
	}
	return added, nil
}

// UseSystemFonts makes lookups also search the fonts installed on the
// platform. Fonts already registered take precedence.
func (r *FontRegistry) UseSystemFonts() {
	r.system = findfont.List
	r.systemLoaded = false
}

// loadSystem registers the installed fonts once. Unreadable system files
// are not reported.
func (r *FontRegistry) loadSystem() int {
	if r.system == nil || r.systemLoaded {
		return 0
	}
	r.systemLoaded = true
	problems := len(r.problems)
	added := 0
	for _, path := range r.system() {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".ttf", ".otf":
			added += r.loadFile(path, false)
		case ".ttc", ".otc":
			added += r.loadFile(path, true)
		}
	}
	r.problems = r.problems[:problems]
	return added
}

func (r *FontRegistry) loadFile(path string, collection bool) int {
	data, err := os.ReadFile(path)
	if err != nil {
		r.problems = append(r.problems, fmt.Sprintf("%s: %v", path, err))
		return 0
	}

	var fonts []*opentype.Font
	if collection {
		c, err := opentype.ParseCollection(data)
		if err != nil {
			r.problems = append(r.problems, fmt.Sprintf("%s: %v", path, err))
			return 0
		}
		for i := 0; i < c.NumFonts(); i++ {
			f, err := c.Font(i)
			if err != nil {
				r.problems = append(r.problems, fmt.Sprintf("%s[%d]: %v", path, i, err))
				continue
			}
			fonts = append(fonts, f)
		}
	} else {
		f, err := opentype.Parse(data)
		if err != nil {
			r.problems = append(r.problems, fmt.Sprintf("%s: %v", path, err))
			return 0
		}
		fonts = append(fonts, f)
	}

	added := 0
	for _, f := range fonts {
		if _, err := r.Add(f); err != nil {
			r.problems = append(r.problems, fmt.Sprintf("%s: %v", path, err))
			continue
		}
		added++
	}
	return added
}

// Problems lists the font files LoadDir could not use.
func (r *FontRegistry) Problems() []string { return r.problems }

// Families returns the number of registered families, the fallback included.
func (r *FontRegistry) Families() int { return len(r.families) }

// Lookup walks a CSS font-family list and returns the first available font.
// Generic families resolve to the fallback face. When nothing matches, the
// fallback is returned with ok == false. With UseSystemFonts, the first
// named family not registered triggers loading the installed fonts.
func (r *FontRegistry) Lookup(families []string) (f *opentype.Font, ok bool) {
	for _, name := range families {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, ok := r.families[key]; !ok && !genericFamilies[key] {
			r.loadSystem()
		}
		if f, ok := r.families[key]; ok {
			return f, true
		}
		if genericFamilies[key] {
			return r.fallback, true
		}
	}
	return r.fallback, false
}
