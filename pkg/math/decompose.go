package math

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Decomposition errors.
var (
	ErrDegenerateTransform = errors.New("degenerate transform")
	ErrNoReflection        = errors.New("matrix has no -1 eigenvalue")
)

const (
	scaleEpsilon       = 1e-9
	orthoTolerance     = 1e-3
	eigenTolerance     = 1e-2
	axisAlignTolerance = 1e-3
)

// Decomposition is an affine transform split into scene-graph components.
// Recomposed as T·R·S it reproduces the source matrix. When Bake is set the
// source matrix could not be expressed that way and must be applied to the
// mesh vertices instead; the components are then the identity.
type Decomposition struct {
	Position Vec3
	Rotation Quat
	Scale    Vec3 // negative components flip an axis
	Bake     bool
}

// IdentityDecomposition returns the decomposition of the identity matrix.
func IdentityDecomposition() Decomposition {
	return Decomposition{Rotation: QuatIdentity(), Scale: Vec3{1, 1, 1}}
}

// Matrix recomposes T·R·S.
func (d Decomposition) Matrix() Mat4 {
	linear := d.Rotation.ToMat3().Mul(Mat3Diag(d.Scale.X, d.Scale.Y, d.Scale.Z))
	return FromLinear(linear, d.Position)
}

// Decompose separates m into position, rotation and scale.
//
// Improper linear parts (determinant -1) whose reflection normal lies on a
// world axis become a negative scale on that axis. Oblique reflections and
// non-orthogonal (sheared) linear parts return Bake. A zero-length basis
// column returns ErrDegenerateTransform together with an identity rotation
// and the measured scale, which callers may still use.
func Decompose(m Mat4) (Decomposition, error) {
	d := Decomposition{Position: m.Translation(), Rotation: QuatIdentity()}

	cols := [3]Vec3{m.Column(0), m.Column(1), m.Column(2)}
	var scale [3]float64
	for i, c := range cols {
		scale[i] = c.Length()
	}
	d.Scale = Vec3{scale[0], scale[1], scale[2]}

	for i := range cols {
		if scale[i] < scaleEpsilon {
			return d, fmt.Errorf("%w: basis column %d has zero length", ErrDegenerateTransform, i)
		}
		cols[i] = cols[i].Scale(1 / scale[i])
	}

	pure := Mat3FromColumns(cols[0], cols[1], cols[2])
	if !pure.IsOrthogonal(orthoTolerance) {
		return bakeDecomposition(), nil
	}

	if pure.Det() > 0 {
		d.Rotation = QuatFromRotation(pure)
		return d, nil
	}

	normal, err := ReflectionNormal(pure)
	if err != nil {
		return bakeDecomposition(), nil
	}
	axis := AlignedAxis(normal)
	if axis < 0 {
		return bakeDecomposition(), nil
	}

	// pure = proper · F where F flips the aligned axis; F is its own inverse.
	flip := [3]float64{1, 1, 1}
	flip[axis] = -1
	proper := pure.Mul(Mat3Diag(flip[0], flip[1], flip[2]))
	d.Rotation = QuatFromRotation(proper)

	scale[axis] = -scale[axis]
	d.Scale = Vec3{scale[0], scale[1], scale[2]}
	return d, nil
}

func bakeDecomposition() Decomposition {
	d := IdentityDecomposition()
	d.Bake = true
	return d
}

// ReflectionNormal returns the unit eigenvector of eigenvalue -1 of an
// improper orthogonal matrix: the normal of its mirror plane.
func ReflectionNormal(m Mat3) (Vec3, error) {
	data := make([]float64, 9)
	copy(data, m[:])
	a := mat.NewDense(3, 3, data)

	var eig mat.Eigen
	if ok := eig.Factorize(a, mat.EigenRight); !ok {
		return Vec3{}, fmt.Errorf("%w: eigendecomposition failed", ErrNoReflection)
	}
	values := eig.Values(nil)
	var vectors mat.CDense
	eig.VectorsTo(&vectors)

	best, bestDist := -1, eigenTolerance
	for i, v := range values {
		if imag(v) != 0 {
			continue
		}
		if dist := math.Abs(real(v) + 1); dist <= bestDist {
			best, bestDist = i, dist
		}
	}
	if best >= 0 {
		n := Vec3{
			real(vectors.At(0, best)),
			real(vectors.At(1, best)),
			real(vectors.At(2, best)),
		}.Normalize()
		if n != (Vec3{}) {
			return n, nil
		}
	}
	return Vec3{}, ErrNoReflection
}

// AlignedAxis returns the index of the world axis n lies on, or -1.
func AlignedAxis(n Vec3) int {
	n = n.Normalize()
	for i := 0; i < 3; i++ {
		if math.Abs(math.Abs(n.Component(i))-1) < axisAlignTolerance {
			return i
		}
	}
	return -1
}
