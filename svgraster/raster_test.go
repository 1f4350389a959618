package svgraster

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/font/gofont/gomono"

	"github.com/benoitkugler/svg2jpeg/svgdoc"
	"github.com/benoitkugler/svg2jpeg/svgerr"
	"github.com/benoitkugler/svg2jpeg/svgsize"
)

func mustLoad(t *testing.T, src string) *svgdoc.Document {
	t.Helper()
	doc, err := svgdoc.Load([]byte(src), svgdoc.IgnoreErrorMode)
	if err != nil {
		t.Fatalf("can't load svg source: %s", err)
	}
	return doc
}

func rasterize(t *testing.T, rd *Renderer, src string, w, h int) *image.RGBA {
	t.Helper()
	img, err := rd.Rasterize(mustLoad(t, src), svgsize.Dimensions{Width: w, Height: h})
	if err != nil {
		t.Fatalf("can't raster image: %s", err)
	}
	if got := img.Bounds(); got != image.Rect(0, 0, w, h) {
		t.Fatalf("bounds = %v, want %dx%d", got, w, h)
	}
	return img
}

func opaqueRed(img *image.RGBA, x, y int) bool {
	c := img.RGBAAt(x, y)
	return c.R >= 250 && c.G == 0 && c.B == 0 && c.A >= 250
}

func transparent(img *image.RGBA, x, y int) bool { return img.RGBAAt(x, y).A == 0 }

func TestRasterizeEmptyIsTransparent(t *testing.T) {
	img := rasterize(t, NewRenderer(), `<svg xmlns="http://www.w3.org/2000/svg" width="100" height="100"/>`, 50, 50)
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0 {
			t.Fatalf("pixel %d has alpha %d, want 0", i/4, img.Pix[i])
		}
	}
}

func TestRasterizeAspect(t *testing.T) {
	const half = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 50" %s>
  <rect x="0" y="0" width="50" height="50" fill="red"/>
</svg>`
	rd := NewRenderer()

	// meet: 100x50 content centered vertically in a 100x100 canvas
	img := rasterize(t, rd, fmt.Sprintf(half, ""), 100, 100)
	if !opaqueRed(img, 25, 50) || !transparent(img, 25, 10) || !transparent(img, 75, 50) {
		t.Error("meet: unexpected coverage")
	}

	// none: the left half is stretched over the full height
	img = rasterize(t, rd, fmt.Sprintf(half, `preserveAspectRatio="none"`), 100, 100)
	if !opaqueRed(img, 25, 10) || !opaqueRed(img, 25, 90) || !transparent(img, 75, 50) {
		t.Error("none: unexpected coverage")
	}

	// slice: scaled by 2 and centered, the rect spans x in [-50, 50]
	img = rasterize(t, rd, fmt.Sprintf(half, `preserveAspectRatio="xMidYMid slice"`), 100, 100)
	if !opaqueRed(img, 25, 5) || !opaqueRed(img, 25, 95) || !transparent(img, 75, 50) {
		t.Error("slice: unexpected coverage")
	}
}

func TestRasterizeViewBoxOrigin(t *testing.T) {
	img := rasterize(t, NewRenderer(), `<svg xmlns="http://www.w3.org/2000/svg" viewBox="50 50 100 100">
  <rect x="50" y="50" width="50" height="50" fill="red"/>
</svg>`, 100, 100)
	if !opaqueRed(img, 10, 10) || !transparent(img, 90, 90) {
		t.Error("viewBox origin not applied")
	}
}

func TestRasterizeLimits(t *testing.T) {
	doc := mustLoad(t, `<svg xmlns="http://www.w3.org/2000/svg" width="10" height="10"/>`)
	rd := NewRenderer(WithMaxPixels(100))
	if _, err := rd.Rasterize(doc, svgsize.Dimensions{Width: 10, Height: 10}); err != nil {
		t.Fatalf("canvas at the limit: %v", err)
	}
	for _, dims := range []svgsize.Dimensions{{Width: 11, Height: 10}, {Width: 0, Height: 10}} {
		if _, err := rd.Rasterize(doc, dims); !svgerr.Is(err, svgerr.RenderFailure) {
			t.Errorf("Rasterize(%v) error = %v, want %s", dims, err, svgerr.RenderFailure)
		}
	}
	if _, err := rd.Rasterize(nil, svgsize.Dimensions{Width: 1, Height: 1}); !svgerr.Is(err, svgerr.RenderFailure) {
		t.Errorf("nil document error = %v", err)
	}
}

func TestRasterizeText(t *testing.T) {
	rd := NewRenderer()
	img := rasterize(t, rd, `<svg xmlns="http://www.w3.org/2000/svg" width="200" height="100">
  <text x="10" y="70" font-size="60" font-family="NoSuchFont">HH</text>
</svg>`, 200, 100)

	covered := 0
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0 {
			covered++
		}
	}
	if covered == 0 {
		t.Error("text left the canvas empty")
	}
	diag := rd.LastDiagnostics()
	if len(diag.MissingFonts) != 1 || diag.MissingFonts[0] != "NoSuchFont" {
		t.Errorf("MissingFonts = %v", diag.MissingFonts)
	}

	img = rasterize(t, rd, `<svg xmlns="http://www.w3.org/2000/svg" width="200" height="100">
  <text x="10" y="70" font-size="60" transform="rotate(30)" font-family="sans-serif">HH</text>
</svg>`, 200, 100)
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0 {
			t.Fatal("rotated text should be skipped")
		}
	}
	diag = rd.LastDiagnostics()
	if len(diag.Warnings) != 1 || len(diag.MissingFonts) != 0 {
		t.Errorf("diagnostics = %+v", diag)
	}
}

func TestViewportMatrix(t *testing.T) {
	tests := []struct {
		mode         svgdoc.AspectMode
		vb           svgdoc.Box
		w, h         float64
		x, y         float64 // user point
		wantX, wantY float64
	}{
		{svgdoc.AspectMeet, svgdoc.Box{W: 100, H: 50}, 100, 100, 0, 0, 0, 25},
		{svgdoc.AspectMeet, svgdoc.Box{W: 100, H: 50}, 100, 100, 100, 50, 100, 75},
		{svgdoc.AspectStretch, svgdoc.Box{W: 100, H: 50}, 100, 100, 100, 50, 100, 100},
		{svgdoc.AspectSlice, svgdoc.Box{W: 100, H: 50}, 100, 100, 0, 0, -50, 0},
		{svgdoc.AspectMeet, svgdoc.Box{X: 10, Y: 20, W: 10, H: 10}, 50, 50, 15, 25, 25, 25},
	}
	for _, tt := range tests {
		m := viewportMatrix(tt.vb, tt.mode, tt.w, tt.h)
		if x, y := m.Transform(tt.x, tt.y); x != tt.wantX || y != tt.wantY {
			t.Errorf("mode %d, vb %v: (%g, %g) -> (%g, %g), want (%g, %g)",
				tt.mode, tt.vb, tt.x, tt.y, x, y, tt.wantX, tt.wantY)
		}
	}
}

func TestFontRegistry(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "sub"), os.ModePerm); err != nil {
		t.Fatal(err)
	}
	files := map[string][]byte{
		"sub/mono.TTF": gomono.TTF,
		"broken.otf":   []byte("not a font"),
		"readme.txt":   []byte("ignored"),
	}
	for name, data := range files {
		if err := os.WriteFile(filepath.Join(dir, name), data, os.ModePerm); err != nil {
			t.Fatal(err)
		}
	}

	reg := NewFontRegistry()
	n, err := reg.LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if n != 1 || len(reg.Problems()) != 1 || reg.Families() != 2 {
		t.Errorf("added %d, problems %v, families %d", n, reg.Problems(), reg.Families())
	}

	f, ok := reg.Lookup([]string{"Missing", "go mono"})
	if !ok || f == reg.fallback {
		t.Error("registered family not found")
	}
	if f, ok := reg.Lookup([]string{"Missing", "monospace"}); !ok || f != reg.fallback {
		t.Error("generic family should map to the fallback")
	}
	if f, ok := reg.Lookup([]string{"Missing"}); ok || f != reg.fallback {
		t.Error("unknown family should report a miss")
	}

	empty := NewFontRegistry()
	if n, err := empty.LoadDir(t.TempDir()); n != 0 || err != nil {
		t.Errorf("empty dir: %d, %v", n, err)
	}
	if _, err := empty.LoadDir(filepath.Join(dir, "nope")); !svgerr.Is(err, svgerr.IoFailure) {
		t.Errorf("missing dir error = %v, want %s", err, svgerr.IoFailure)
	}
}

func TestSystemFonts(t *testing.T) {
	dir := t.TempDir()
	mono := filepath.Join(dir, "mono.ttf")
	if err := os.WriteFile(mono, gomono.TTF, 0o644); err != nil {
		t.Fatal(err)
	}
	calls := 0
	reg := NewFontRegistry()
	reg.system = func() []string {
		calls++
		return []string{mono, filepath.Join(dir, "gone.ttf"), filepath.Join(dir, "notes.txt")}
	}

	if _, ok := reg.Lookup([]string{"sans-serif"}); !ok || calls != 0 {
		t.Errorf("generic lookup: ok %v, system scanned %d times", ok, calls)
	}
	if f, ok := reg.Lookup([]string{"Go Mono"}); !ok || f == reg.fallback {
		t.Error("installed family not found")
	}
	if _, ok := reg.Lookup([]string{"NoSuchFont"}); ok {
		t.Error("unknown family reported as found")
	}
	if calls != 1 {
		t.Errorf("system scanned %d times, want 1", calls)
	}
	if len(reg.Problems()) != 0 {
		t.Errorf("system problems reported: %v", reg.Problems())
	}
}
