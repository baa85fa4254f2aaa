package transforms

// A Transform maps a point of the complex plane to another.
type Transform interface {
	Next(complex128) complex128
}

// Abs2 is the squared modulus of z.
func Abs2(z complex128) float64 {
	return real(z)*real(z) + imag(z)*imag(z)
}

var (
	_ Transform = Linear{}
	_ Transform = Newton{}
)
