package render

import (
	"math"

	"github.com/willbeason/newton-fractal/pkg/transforms"
)

// ViewportRadius is the half-width of the square [-2,2]x[-2,2] of the complex
// plane that is always visible. The shorter image side spans it exactly; the
// longer side shows more of the plane at the same scale.
const ViewportRadius = 2.0

// Viewport maps pixel coordinates onto the complex plane. Pixel (0, 0) is the
// top-left corner and imaginary parts grow upwards.
type Viewport struct {
	toPlane      transforms.Linear
	halfW, halfH float64
}

func NewViewport(width, height int) Viewport {
	// px is the real size of each pixel.
	px := 2 * ViewportRadius / float64(min(width, height))

	return Viewport{
		toPlane: transforms.Linear{Multiply: complex(px, 0)},
		halfW:   float64(width) / 2,
		halfH:   float64(height) / 2,
	}
}

// At returns the point of the plane under pixel (x, y). The origin falls
// exactly on pixel (width/2, height/2) when both sides are even.
func (v Viewport) At(x, y int) complex128 {
	return v.toPlane.Next(complex(float64(x)-v.halfW, v.halfH-float64(y)))
}

// Pixel returns the pixel whose coordinate is nearest to c. It may lie
// outside the image.
func (v Viewport) Pixel(c complex128) (x, y int) {
	z := v.toPlane.Inverse().Next(c)
	return int(math.Round(real(z) + v.halfW)), int(math.Round(v.halfH - imag(z)))
}
