package engine2D

import "math"

// Matrix is a 2D affine transform stored as [a b c d tx ty], mapping
// (x, y) to (a*x + c*y + tx, b*x + d*y + ty).
type Matrix struct {
	A, B, C, D, TX, TY float64
}

func Identity() Matrix {
	return Matrix{A: 1, D: 1}
}

func MatrixFromArray(v [6]float64) Matrix {
	return Matrix{A: v[0], B: v[1], C: v[2], D: v[3], TX: v[4], TY: v[5]}
}

func (m Matrix) Array() [6]float64 {
	return [6]float64{m.A, m.B, m.C, m.D, m.TX, m.TY}
}

// Multiply returns m × n: n is applied first, then m. Composition order
// matters, callers compose base first.
func (m Matrix) Multiply(n Matrix) Matrix {
	return Matrix{
		A:  m.A*n.A + m.C*n.B,
		B:  m.B*n.A + m.D*n.B,
		C:  m.A*n.C + m.C*n.D,
		D:  m.B*n.C + m.D*n.D,
		TX: m.A*n.TX + m.C*n.TY + m.TX,
		TY: m.B*n.TX + m.D*n.TY + m.TY,
	}
}

// Rotate post-multiplies a rotation of deg degrees.
func (m Matrix) Rotate(deg float64) Matrix {
	rad := deg * math.Pi / 180
	sin, cos := math.Sincos(rad)
	return m.Multiply(Matrix{A: cos, B: sin, C: -sin, D: cos})
}

// ScaleTranslate builds [s 0 0 s tx ty].
func ScaleTranslate(s, tx, ty float64) Matrix {
	return Matrix{A: s, D: s, TX: tx, TY: ty}
}

func (m Matrix) Apply(x, y float64) (float64, float64) {
	return m.A*x + m.C*y + m.TX, m.B*x + m.D*y + m.TY
}

// Mat4 is the column-major 4x4 form expected by rlgl.
func (m Matrix) Mat4() []float32 {
	return []float32{
		float32(m.A), float32(m.B), 0, 0,
		float32(m.C), float32(m.D), 0, 0,
		0, 0, 1, 0,
		float32(m.TX), float32(m.TY), 0, 1,
	}
}
