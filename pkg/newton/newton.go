// Package newton runs Newton's method for z^n - 1 and classifies where each
// starting point ends up.
package newton

import (
	"math"
	"math/cmplx"

	"github.com/willbeason/newton-fractal/pkg/transforms"
)

const (
	// Tolerance is how close |z^n - 1| must get to zero for an iteration to
	// count as converged.
	Tolerance = 1e-6

	// None is the Root of a starting point that did not converge.
	None = -1
)

// Result is where Newton's method took one starting point.
type Result struct {
	// Root is the index k of the root exp(2πik/n) reached, or None.
	Root int

	// Iterations is the number of steps taken before convergence was
	// detected. It is the iteration cap when the iteration ran out.
	Iterations int
}

func (r Result) Converged() bool {
	return r.Root != None
}

// Iterate runs Newton's method for z^n - 1 starting at c for at most maxIter
// steps.
//
// A starting point whose derivative vanishes (the origin) or whose iterates
// overflow is reported as None at the step where that happened.
func Iterate(c complex128, n, maxIter int) Result {
	step := transforms.Newton{N: n}

	z := c
	for i := 0; i < maxIter; i++ {
		next, residual, ok := step.Step(z)

		r2 := transforms.Abs2(residual)
		if r2 < Tolerance*Tolerance {
			return Result{Root: Classify(z, n), Iterations: i}
		}
		if !ok || !(r2 <= math.MaxFloat64) {
			return Result{Root: None, Iterations: i}
		}

		z = next
	}

	return Result{Root: None, Iterations: maxIter}
}

// Classify returns the index of the n-th root of unity closest in angle to z.
// For z near the unit circle this is also the closest root by distance.
func Classify(z complex128, n int) int {
	k := int(math.Round(cmplx.Phase(z) * float64(n) / (2 * math.Pi)))
	k %= n
	if k < 0 {
		k += n
	}

	return k
}

// Roots returns the n roots of unity, ordered by index.
func Roots(n int) []complex128 {
	roots := make([]complex128, n)
	for k := range roots {
		roots[k] = cmplx.Rect(1, 2*math.Pi*float64(k)/float64(n))
	}

	return roots
}
