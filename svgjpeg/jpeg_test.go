package svgjpeg

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
	"testing"

	"github.com/benoitkugler/svg2jpeg/svgerr"
	"github.com/benoitkugler/svg2jpeg/svgflatten"
)

func gradient(w, h int) *svgflatten.RGB {
	img := svgflatten.NewRGB(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := img.PixOffset(x, y)
			img.Pix[i] = uint8(x * 255 / w)
			img.Pix[i+1] = uint8(y * 255 / h)
			img.Pix[i+2] = uint8((x ^ y) * 7)
		}
	}
	return img
}

func encode(t *testing.T, img *svgflatten.RGB, quality int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := (JPEG{}).Encode(&buf, img, quality); err != nil {
		t.Fatalf("Encode(q=%d): %v", quality, err)
	}
	return buf.Bytes()
}

func TestEncodeDecodes(t *testing.T) {
	data := encode(t, gradient(40, 30), DefaultQuality)
	if !bytes.HasPrefix(data, []byte{0xff, 0xd8}) {
		t.Fatal("missing SOI marker")
	}
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 40 || cfg.Height != 30 {
		t.Errorf("decoded size %dx%d, want 40x30", cfg.Width, cfg.Height)
	}
}

func TestQuality(t *testing.T) {
	img := gradient(64, 64)
	low, high := encode(t, img, 1), encode(t, img, 100)
	if len(low) >= len(high) {
		t.Errorf("quality 1 gave %d bytes, quality 100 gave %d", len(low), len(high))
	}
	if !bytes.Equal(encode(t, img, -5), low) {
		t.Error("quality below 1 should clamp to 1")
	}
	if !bytes.Equal(encode(t, img, 250), high) {
		t.Error("quality above 100 should clamp to 100")
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestEncodeFailures(t *testing.T) {
	short := gradient(10, 10)
	short.Pix = short.Pix[:len(short.Pix)-1]

	for name, img := range map[string]*svgflatten.RGB{
		"nil":          nil,
		"empty":        svgflatten.NewRGB(image.Rect(0, 0, 0, 0)),
		"short buffer": short,
	} {
		if err := (JPEG{}).Encode(new(bytes.Buffer), img, 80); !svgerr.Is(err, svgerr.EncodeFailure) {
			t.Errorf("%s: error = %v, want %s", name, err, svgerr.EncodeFailure)
		}
	}

	if err := (JPEG{}).Encode(failingWriter{}, gradient(8, 8), 80); !svgerr.Is(err, svgerr.EncodeFailure) {
		t.Errorf("write error = %v, want %s", err, svgerr.EncodeFailure)
	}
}
