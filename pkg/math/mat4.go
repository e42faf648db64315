package math

import "math"

// Mat4 is a 4x4 affine matrix in column-major order (OpenGL compatible).
// Layout: [m0 m4 m8  m12]
//
//	[m1 m5 m9  m13]
//	[m2 m6 m10 m14]
//	[m3 m7 m11 m15]
type Mat4 [16]float64

// Identity returns an identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// FromLDraw builds the matrix of an LDraw type 1 line
// "1 <colour> x y z a b c d e f g h i":
//
//	| a b c x |
//	| d e f y |
//	| g h i z |
//	| 0 0 0 1 |
func FromLDraw(x, y, z, a, b, c, d, e, f, g, h, i float64) Mat4 {
	return Mat4{
		a, d, g, 0,
		b, e, h, 0,
		c, f, i, 0,
		x, y, z, 1,
	}
}

// Translate returns a translation matrix.
func Translate(x, y, z float64) Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		x, y, z, 1,
	}
}

// Scale returns a scale matrix.
func Scale(x, y, z float64) Mat4 {
	return Mat4{
		x, 0, 0, 0,
		0, y, 0, 0,
		0, 0, z, 0,
		0, 0, 0, 1,
	}
}

// RotateAxis creates a rotation matrix around an arbitrary axis.
// axis should be normalized, angle is in radians.
func RotateAxis(axis Vec3, angle float64) Mat4 {
	c := math.Cos(angle)
	s := math.Sin(angle)
	t := 1 - c

	x, y, z := axis.X, axis.Y, axis.Z

	return Mat4{
		t*x*x + c, t*x*y + s*z, t*x*z - s*y, 0,
		t*x*y - s*z, t*y*y + c, t*y*z + s*x, 0,
		t*x*z + s*y, t*y*z - s*x, t*z*z + c, 0,
		0, 0, 0, 1,
	}
}

// Mul multiplies this matrix by another (m * other).
// other is applied first when transforming points.
func (m Mat4) Mul(other Mat4) Mat4 {
	var result Mat4
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			result[col*4+row] =
				m[0*4+row]*other[col*4+0] +
					m[1*4+row]*other[col*4+1] +
					m[2*4+row]*other[col*4+2] +
					m[3*4+row]*other[col*4+3]
		}
	}
	return result
}

// TransformPoint transforms a point (w=1). The matrix is treated as affine.
func (m Mat4) TransformPoint(p Vec3) Vec3 {
	return Vec3{
		m[0]*p.X + m[4]*p.Y + m[8]*p.Z + m[12],
		m[1]*p.X + m[5]*p.Y + m[9]*p.Z + m[13],
		m[2]*p.X + m[6]*p.Y + m[10]*p.Z + m[14],
	}
}

// TransformDirection transforms a direction vector (ignores translation).
func (m Mat4) TransformDirection(d Vec3) Vec3 {
	return Vec3{
		m[0]*d.X + m[4]*d.Y + m[8]*d.Z,
		m[1]*d.X + m[5]*d.Y + m[9]*d.Z,
		m[2]*d.X + m[6]*d.Y + m[10]*d.Z,
	}
}

// Translation returns the translation column.
func (m Mat4) Translation() Vec3 {
	return Vec3{m[12], m[13], m[14]}
}

// Column returns one of the first three columns of the linear part.
func (m Mat4) Column(c int) Vec3 {
	return Vec3{m[c*4], m[c*4+1], m[c*4+2]}
}

// Linear returns the upper-left 3x3 portion as a row-major Mat3.
func (m Mat4) Linear() Mat3 {
	return Mat3FromColumns(m.Column(0), m.Column(1), m.Column(2))
}

// FromLinear creates an affine matrix from a 3x3 linear map and a translation.
func FromLinear(l Mat3, t Vec3) Mat4 {
	return Mat4{
		l[0], l[3], l[6], 0,
		l[1], l[4], l[7], 0,
		l[2], l[5], l[8], 0,
		t.X, t.Y, t.Z, 1,
	}
}

// IsIdentity reports whether m is exactly the identity.
func (m Mat4) IsIdentity() bool {
	return m == Identity()
}

// ApproxEqual reports whether every element differs by at most eps.
func (m Mat4) ApproxEqual(other Mat4, eps float64) bool {
	for i := range m {
		if math.Abs(m[i]-other[i]) > eps {
			return false
		}
	}
	return true
}
