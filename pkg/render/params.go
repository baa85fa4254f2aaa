package render

import (
	"errors"
	"fmt"
)

// ErrInvalidParams is wrapped by every error Params.Validate returns.
var ErrInvalidParams = errors.New("invalid fractal parameters")

// Params is a snapshot of everything one render depends on.
type Params struct {
	Width, Height int

	// N is the degree of the polynomial z^N - 1, and so the number of roots.
	N int

	// MaxIter caps the Newton iterations spent on each pixel.
	MaxIter int
}

// Validate reports whether p describes a renderable image. Callers must
// reject invalid Params before handing them to the kernel.
func (p Params) Validate() error {
	switch {
	case p.Width <= 0:
		return fmt.Errorf("%w: width must be positive, got %d", ErrInvalidParams, p.Width)
	case p.Height <= 0:
		return fmt.Errorf("%w: height must be positive, got %d", ErrInvalidParams, p.Height)
	case p.N < 2:
		return fmt.Errorf("%w: n must be at least 2, got %d", ErrInvalidParams, p.N)
	case p.MaxIter < 1:
		return fmt.Errorf("%w: max_iter must be at least 1, got %d", ErrInvalidParams, p.MaxIter)
	}

	return nil
}

// Pixels is the number of pixels p covers.
func (p Params) Pixels() int {
	return p.Width * p.Height
}
