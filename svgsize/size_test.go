package svgsize

import (
	"math"
	"testing"

	"github.com/benoitkugler/svg2jpeg/svgerr"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name      string
		w, h      float64
		requested int
		want      Dimensions
	}{
		{"intrinsic", 100, 100, 0, Dimensions{100, 100}},
		{"intrinsic rounds half up", 10.5, 20.4, 0, Dimensions{11, 20}},
		{"intrinsic minimum", 0.2, 0.4, 0, Dimensions{1, 1}},
		{"square scaled down", 100, 100, 50, Dimensions{50, 50}},
		{"landscape", 200, 100, 50, Dimensions{50, 25}},
		{"portrait", 100, 300, 40, Dimensions{40, 120}},
		{"half away from zero", 4, 1, 2, Dimensions{2, 1}},
		{"height clamped to one", 1000, 1, 10, Dimensions{10, 1}},
		{"fractional intrinsic", 33.3, 66.6, 100, Dimensions{100, 200}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.w, tt.h, tt.requested)
			if err != nil {
				t.Fatalf("Resolve error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%g, %g, %d) = %v, want %v", tt.w, tt.h, tt.requested, got, tt.want)
			}
		})
	}
}

func TestResolveKeepsAspectRatio(t *testing.T) {
	sizes := [][2]float64{{1, 1}, {3, 7}, {640, 480}, {12.75, 99.5}, {1920, 1}, {1, 1920}}
	for _, s := range sizes {
		for _, requested := range []int{1, 2, 17, 100, 1000} {
			got, err := Resolve(s[0], s[1], requested)
			if err != nil {
				t.Fatalf("Resolve(%v, %d) error: %v", s, requested, err)
			}
			if got.Width != requested {
				t.Errorf("Resolve(%v, %d).Width = %d", s, requested, got.Width)
			}
			exact := float64(requested) * s[1] / s[0]
			if got.Height < 1 || math.Abs(float64(got.Height)-math.Max(exact, 1)) > 1 {
				t.Errorf("Resolve(%v, %d).Height = %d, exact %g", s, requested, got.Height, exact)
			}
		}
	}
}

func TestResolveInvalidSize(t *testing.T) {
	for _, s := range [][2]float64{{0, 10}, {10, 0}, {-1, 10}, {10, -5}, {math.NaN(), 1}, {math.Inf(1), 1}} {
		_, err := Resolve(s[0], s[1], 0)
		if !svgerr.Is(err, svgerr.InvalidDocumentSize) {
			t.Errorf("Resolve(%v) error = %v, want %s", s, err, svgerr.InvalidDocumentSize)
		}
	}
}

func TestResolveNegativeWidth(t *testing.T) {
	_, err := Resolve(10, 10, -3)
	if !svgerr.Is(err, svgerr.InvalidConfig) {
		t.Errorf("error = %v, want %s", err, svgerr.InvalidConfig)
	}
}
