package svgcolor

import (
	"fmt"
	"testing"

	"github.com/benoitkugler/svg2jpeg/svgerr"
)

func TestParseNamed(t *testing.T) {
	tests := []struct {
		token string
		want  Color
	}{
		{"white", White},
		{"WHITE", White},
		{"White", White},
		{"  black ", Black},
		{"red", Color{255, 0, 0}},
		{"SteelBlue", Color{70, 130, 180}},
		{"grey", Color{128, 128, 128}},
		{"gray", Color{128, 128, 128}},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, err := Parse(tt.token)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.token, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %v, want %v", tt.token, got, tt.want)
			}
		})
	}
}

func TestParseHex(t *testing.T) {
	tests := []struct {
		token string
		want  Color
	}{
		{"#ffffff", White},
		{"#FFFFFF", White},
		{"#000", Black},
		{"#f80", Color{0xff, 0x88, 0x00}},
		{"#f80c", Color{0xff, 0x88, 0x00}},
		{"#1a2B3c", Color{0x1a, 0x2b, 0x3c}},
		{"#1a2b3c00", Color{0x1a, 0x2b, 0x3c}},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, err := Parse(tt.token)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.token, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %v, want %v", tt.token, got, tt.want)
			}
		})
	}
}

func TestParseHexRoundTrip(t *testing.T) {
	for _, v := range []int{0, 1, 15, 16, 127, 128, 200, 254, 255} {
		c := Color{uint8(v), uint8(255 - v), uint8(v * 7 % 256)}
		token := fmt.Sprintf("#%02X%02x%02X", c.R, c.G, c.B)
		got, err := Parse(token)
		if err != nil {
			t.Fatalf("Parse(%q) error: %v", token, err)
		}
		if got != c {
			t.Errorf("Parse(%q) = %v, want %v", token, got, c)
		}
		if got.Hex() != fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B) {
			t.Errorf("Hex() = %q", got.Hex())
		}
	}
}

func TestParseInvalid(t *testing.T) {
	for _, token := range []string{
		"#12", "#ZZZZZZ", "notacolor", "#xyz", "", "#", "#12345", "#1234567", "#123456789", "rgb(1,2,3)",
	} {
		t.Run(token, func(t *testing.T) {
			_, err := Parse(token)
			if err == nil {
				t.Fatalf("Parse(%q) succeeded, want error", token)
			}
			if !svgerr.Is(err, svgerr.InvalidColorFormat) {
				t.Errorf("Parse(%q) error kind = %q, want %q", token, svgerr.KindOf(err), svgerr.InvalidColorFormat)
			}
		})
	}
}

func TestColorIsOpaque(t *testing.T) {
	_, _, _, a := Color{1, 2, 3}.RGBA()
	if a != 0xffff {
		t.Errorf("alpha = %#x, want 0xffff", a)
	}
}
