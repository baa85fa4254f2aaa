package transforms

// Linear is the affine map z -> z*Multiply + Add.
type Linear struct {
	Multiply complex128
	Add      complex128
}

func (l Linear) Next(z complex128) complex128 {
	return z*l.Multiply + l.Add
}

// Inverse returns the map undoing l. Multiply must be non-zero.
func (l Linear) Inverse() Linear {
	inv := 1 / l.Multiply
	return Linear{
		Multiply: inv,
		Add:      -l.Add * inv,
	}
}
