package viewer

// Affine is a 2D affine matrix:
//
//	| A  B  C |
//	| D  E  F |
//	| 0  0  1 |
type Affine struct {
	A float64 `json:"a"`
	B float64 `json:"b"`
	C float64 `json:"c"`
	D float64 `json:"d"`
	E float64 `json:"e"`
	F float64 `json:"f"`
}

func identity() Affine {
	return Affine{A: 1, E: 1}
}

func translate(tx, ty float64) Affine {
	return Affine{A: 1, C: tx, E: 1, F: ty}
}

func uniformScale(s float64) Affine {
	return Affine{A: s, E: s}
}

// Multiply returns m * n, so n is applied first
func (m Affine) Multiply(n Affine) Affine {
	return Affine{
		A: m.A*n.A + m.B*n.D,
		B: m.A*n.B + m.B*n.E,
		C: m.A*n.C + m.B*n.F + m.C,
		D: m.D*n.A + m.E*n.D,
		E: m.D*n.B + m.E*n.E,
		F: m.D*n.C + m.E*n.F + m.F,
	}
}

// Apply maps a point through the matrix
func (m Affine) Apply(x, y float64) (float64, float64) {
	return m.A*x + m.B*y + m.C, m.D*x + m.E*y + m.F
}
