package render

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"sort"

	"github.com/willbeason/newton-fractal/pkg/newton"
)

// ErrUnknownPalette is returned by LookupPalette for names not in Palettes.
var ErrUnknownPalette = errors.New("unknown palette")

// A Palette colors one pixel from the root it reached and how long that took.
// It must be a pure function: the same inputs always give the same color.
type Palette func(root, iterations int) color.RGBA

// A PaletteFunc builds the Palette for one render.
type PaletteFunc func(n, maxIter int) Palette

// Palettes are the built-in colorings by name.
var Palettes = map[string]PaletteFunc{
	"hue":     Hue,
	"classic": Classic,
}

// DefaultPalette is the name of the palette used when none is chosen.
const DefaultPalette = "hue"

func LookupPalette(name string) (PaletteFunc, error) {
	p, ok := Palettes[name]
	if !ok {
		return nil, fmt.Errorf("%w %q, want one of %v", ErrUnknownPalette, name, PaletteNames())
	}

	return p, nil
}

// PaletteNames returns the names of Palettes in sorted order.
func PaletteNames() []string {
	names := make([]string, 0, len(Palettes))
	for name := range Palettes {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

var noRoot = color.RGBA{A: 0xff}

// minValue is how dark the slowest converging pixels get, so that they stay
// distinguishable from pixels which never converged.
const minValue = 0.25

// Hue gives root k the hue k/n at full saturation and darkens pixels the more
// iterations they needed. Pixels that did not converge are black.
func Hue(n, maxIter int) Palette {
	bases := make([]rgb, n)
	for k := range bases {
		bases[k] = hsv(float64(k)/float64(n), 1, 1)
	}

	return shaded(bases, maxIter)
}

// classicColors are picked to stay apart from each other on screen.
var classicColors = []rgb{
	{0.90, 0.10, 0.15},
	{0.15, 0.55, 0.95},
	{0.95, 0.80, 0.10},
	{0.20, 0.75, 0.30},
	{0.60, 0.25, 0.85},
	{0.95, 0.50, 0.10},
	{0.10, 0.80, 0.80},
	{0.90, 0.35, 0.65},
}

// Classic uses a fixed table for the first roots and continues with Hue's
// rotation once the table runs out.
func Classic(n, maxIter int) Palette {
	bases := make([]rgb, n)
	for k := range bases {
		if k < len(classicColors) {
			bases[k] = classicColors[k]
		} else {
			bases[k] = hsv(float64(k)/float64(n), 0.8, 1)
		}
	}

	return shaded(bases, maxIter)
}

func shaded(bases []rgb, maxIter int) Palette {
	return func(root, iterations int) color.RGBA {
		if root == newton.None {
			return noRoot
		}

		v := 1 - (1-minValue)*float64(iterations)/float64(maxIter)
		if v < minValue {
			v = minValue
		}

		return bases[root].scale(v)
	}
}

type rgb struct {
	r, g, b float64
}

func (c rgb) scale(v float64) color.RGBA {
	return color.RGBA{
		R: channel(c.r * v),
		G: channel(c.g * v),
		B: channel(c.b * v),
		A: 0xff,
	}
}

func channel(f float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, f)) * 0xff))
}

// hsv converts a hue in [0, 1) with saturation s and value v to RGB.
func hsv(h, s, v float64) rgb {
	h = math.Mod(h, 1)
	i := int(h * 6)
	f := h*6 - float64(i)
	p := v * (1 - s)
	q := v * (1 - f*s)
	t := v * (1 - (1-f)*s)

	switch i % 6 {
	case 0:
		return rgb{v, t, p}
	case 1:
		return rgb{q, v, p}
	case 2:
		return rgb{p, v, t}
	case 3:
		return rgb{p, q, v}
	case 4:
		return rgb{t, p, v}
	default:
		return rgb{v, p, q}
	}
}
