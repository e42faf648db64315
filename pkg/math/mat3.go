package math

import "math"

// Mat3 is a 3x3 matrix stored row-major: [r0c0, r0c1, r0c2, r1c0, ...].
type Mat3 [9]float64

// Mat3Identity returns the 3x3 identity.
func Mat3Identity() Mat3 {
	return Mat3{1, 0, 0, 0, 1, 0, 0, 0, 1}
}

// Mat3Diag returns a diagonal matrix.
func Mat3Diag(x, y, z float64) Mat3 {
	return Mat3{x, 0, 0, 0, y, 0, 0, 0, z}
}

// Mat3FromColumns builds a matrix from three column vectors.
func Mat3FromColumns(c0, c1, c2 Vec3) Mat3 {
	return Mat3{
		c0.X, c1.X, c2.X,
		c0.Y, c1.Y, c2.Y,
		c0.Z, c1.Z, c2.Z,
	}
}

// At returns the element at row r, column c.
func (m Mat3) At(r, c int) float64 {
	return m[r*3+c]
}

// Column returns column c as a vector.
func (m Mat3) Column(c int) Vec3 {
	return Vec3{m[c], m[3+c], m[6+c]}
}

// Mul returns m × other.
func (m Mat3) Mul(other Mat3) Mat3 {
	var out Mat3
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			out[r*3+c] = m[r*3+0]*other[0*3+c] + m[r*3+1]*other[1*3+c] + m[r*3+2]*other[2*3+c]
		}
	}
	return out
}

// MulVec3 returns m × v.
func (m Mat3) MulVec3(v Vec3) Vec3 {
	return Vec3{
		m[0]*v.X + m[1]*v.Y + m[2]*v.Z,
		m[3]*v.X + m[4]*v.Y + m[5]*v.Z,
		m[6]*v.X + m[7]*v.Y + m[8]*v.Z,
	}
}

// Det returns the determinant.
func (m Mat3) Det() float64 {
	return m[0]*(m[4]*m[8]-m[5]*m[7]) -
		m[1]*(m[3]*m[8]-m[5]*m[6]) +
		m[2]*(m[3]*m[7]-m[4]*m[6])
}

// Transpose returns the transposed matrix.
func (m Mat3) Transpose() Mat3 {
	return Mat3{
		m[0], m[3], m[6],
		m[1], m[4], m[7],
		m[2], m[5], m[8],
	}
}

// IsOrthogonal reports whether m × mᵀ is the identity within tol.
func (m Mat3) IsOrthogonal(tol float64) bool {
	p := m.Mul(m.Transpose())
	id := Mat3Identity()
	for i := range p {
		if math.Abs(p[i]-id[i]) > tol {
			return false
		}
	}
	return true
}

// ApproxEqual reports whether every element differs by at most eps.
func (m Mat3) ApproxEqual(other Mat3, eps float64) bool {
	for i := range m {
		if math.Abs(m[i]-other[i]) > eps {
			return false
		}
	}
	return true
}
