package transforms

import "math/cmplx"

// Newton is one step of Newton's method for f(z) = z^N - 1.
type Newton struct {
	N int
}

// Step returns the next iterate z - f(z)/f'(z) together with f(z).
//
// ok is false if the step cannot be taken: f'(z) = N*z^(N-1) is zero, or
// dividing by it does not give a finite point. next is then z unchanged.
//
// A tiny but non-zero derivative is a valid step. It throws z far out, and
// from there the iterates walk back in towards a root.
func (t Newton) Step(z complex128) (next, residual complex128, ok bool) {
	zn1 := Pow(z, t.N-1)
	residual = zn1*z - 1

	derivative := complex(float64(t.N), 0) * zn1
	if derivative == 0 {
		return z, residual, false
	}

	next = z - residual/derivative
	if cmplx.IsInf(next) || cmplx.IsNaN(next) {
		return z, residual, false
	}

	return next, residual, true
}

func (t Newton) Next(z complex128) complex128 {
	next, _, _ := t.Step(z)
	return next
}

// Pow raises z to a non-negative integer power by repeated squaring.
//
// Every pixel goes through this same sequence of rectangular
// multiplications; cmplx.Pow takes the polar route and rounds differently,
// which moves basin boundaries.
func Pow(z complex128, k int) complex128 {
	result := complex(1, 0)
	for k > 0 {
		if k&1 == 1 {
			result *= z
		}
		z *= z
		k >>= 1
	}

	return result
}
