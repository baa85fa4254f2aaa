package render

import (
	"errors"
	"image/color"
	"slices"
	"testing"

	"github.com/willbeason/newton-fractal/pkg/newton"
)

func TestPalettes_NoRootIsDistinct(t *testing.T) {
	for name, build := range Palettes {
		for _, n := range []int{2, 3, 7, 30} {
			palette := build(n, 60)

			if got := palette(newton.None, 60); got != noRoot {
				t.Errorf("%s: None = %v, want %v", name, got, noRoot)
			}

			seen := make(map[color.RGBA]int)
			for k := 0; k < n; k++ {
				c := palette(k, 0)
				if c == noRoot {
					t.Errorf("%s n=%d: root %d at 0 iterations is the no-root color", name, n, k)
				}
				if c.A != 0xff {
					t.Errorf("%s n=%d: root %d is not opaque", name, n, k)
				}
				if other, ok := seen[c]; ok {
					t.Errorf("%s n=%d: roots %d and %d share color %v", name, n, other, k, c)
				}
				seen[c] = k
			}
		}
	}
}

func TestPalettes_DarkenWithIterations(t *testing.T) {
	brightness := func(c color.RGBA) int { return int(c.R) + int(c.G) + int(c.B) }

	for name, build := range Palettes {
		palette := build(5, 100)
		for k := 0; k < 5; k++ {
			last := brightness(palette(k, 0))
			for it := 1; it <= 100; it++ {
				b := brightness(palette(k, it))
				if b > last {
					t.Errorf("%s: root %d brighter at %d iterations than at %d", name, k, it, it-1)
				}
				if b == 0 {
					t.Errorf("%s: root %d went black at %d iterations", name, k, it)
				}
				last = b
			}
		}
	}
}

func TestPalettes_Deterministic(t *testing.T) {
	a := Hue(7, 50)
	b := Hue(7, 50)

	for k := 0; k < 7; k++ {
		for it := 0; it <= 50; it += 5 {
			if a(k, it) != b(k, it) {
				t.Errorf("Hue(%d, %d) differs between builds", k, it)
			}
		}
	}
}

func TestHue_PrimaryRoots(t *testing.T) {
	palette := Hue(3, 60)

	tcs := []struct {
		root int
		want color.RGBA
	}{
		{root: 0, want: color.RGBA{R: 0xff, A: 0xff}},
		{root: 1, want: color.RGBA{G: 0xff, A: 0xff}},
		{root: 2, want: color.RGBA{B: 0xff, A: 0xff}},
	}

	for _, tc := range tcs {
		if got := palette(tc.root, 0); got != tc.want {
			t.Errorf("root %d = %v, want %v", tc.root, got, tc.want)
		}
	}
}

func TestLookupPalette(t *testing.T) {
	for _, name := range []string{"hue", "classic"} {
		if _, err := LookupPalette(name); err != nil {
			t.Errorf("LookupPalette(%q) = %v", name, err)
		}
	}

	if _, err := LookupPalette("plasma"); !errors.Is(err, ErrUnknownPalette) {
		t.Errorf("LookupPalette(plasma) = %v, want ErrUnknownPalette", err)
	}

	if got, want := PaletteNames(), []string{"classic", "hue"}; !slices.Equal(got, want) {
		t.Errorf("PaletteNames() = %v, want %v", got, want)
	}
}
