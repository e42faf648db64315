package math

import (
	"math"
	"testing"
)

func TestQuatIdentity(t *testing.T) {
	q := QuatIdentity()
	if q.X != 0 || q.Y != 0 || q.Z != 0 || q.W != 1 {
		t.Errorf("Identity quaternion should be (0,0,0,1), got (%v,%v,%v,%v)", q.X, q.Y, q.Z, q.W)
	}
}

func TestQuatNormalize(t *testing.T) {
	q := Quat{X: 1, Y: 2, Z: 3, W: 4}
	n := q.Normalize()

	length := math.Sqrt(n.Dot(n))
	if math.Abs(length-1.0) > 1e-12 {
		t.Errorf("Normalized quaternion length should be 1, got %v", length)
	}
}

func TestQuatFromAxisAngle(t *testing.T) {
	// 90 degrees around Y axis
	q := QuatFromAxisAngle(Vec3{X: 0, Y: 1, Z: 0}, math.Pi/2)

	expectedW := math.Cos(math.Pi / 4)
	expectedY := math.Sin(math.Pi / 4)

	if math.Abs(q.W-expectedW) > 1e-12 {
		t.Errorf("QuatFromAxisAngle W: expected %v, got %v", expectedW, q.W)
	}
	if math.Abs(q.Y-expectedY) > 1e-12 {
		t.Errorf("QuatFromAxisAngle Y: expected %v, got %v", expectedY, q.Y)
	}
}

func TestQuatToMat3Identity(t *testing.T) {
	if m := QuatIdentity().ToMat3(); !m.ApproxEqual(Mat3Identity(), 1e-12) {
		t.Errorf("identity quaternion should produce identity matrix, got %v", m)
	}
}

// Each case lands in a different extraction branch: positive trace, then
// the largest diagonal entry on X, Y and Z (180 degree turns).
func TestQuatFromRotationBranches(t *testing.T) {
	tests := []struct {
		name  string
		axis  Vec3
		angle float64
	}{
		{"trace positive", Vec3{1, 2, 3}.Normalize(), 0.7},
		{"x dominant", Vec3{1, 0, 0}, math.Pi},
		{"y dominant", Vec3{0, 1, 0}, math.Pi},
		{"z dominant", Vec3{0, 0, 1}, math.Pi},
		{"x dominant oblique", Vec3{0.9, 0.3, 0.1}.Normalize(), 3.0},
		{"y dominant oblique", Vec3{0.1, 0.9, 0.3}.Normalize(), 3.0},
		{"z dominant oblique", Vec3{0.3, 0.1, 0.9}.Normalize(), 3.0},
	}

	probes := []Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}, {1, -2, 0.5}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := RotateAxis(tt.axis, tt.angle).Linear()
			q := QuatFromRotation(m)

			if l := math.Sqrt(q.Dot(q)); math.Abs(l-1) > 1e-9 {
				t.Fatalf("quaternion not unit: %v", l)
			}
			want := QuatFromAxisAngle(tt.axis, tt.angle)
			if !q.SameRotation(want, 1e-9) {
				t.Errorf("QuatFromRotation = %+v, want %+v (up to sign)", q, want)
			}
			for _, p := range probes {
				if got, exp := q.Rotate(p), m.MulVec3(p); !got.ApproxEqual(exp, 1e-9) {
					t.Errorf("rotate %v: got %v, want %v", p, got, exp)
				}
			}
		})
	}
}

func TestQuatMulComposesRotations(t *testing.T) {
	a := QuatFromAxisAngle(Vec3{0, 0, 1}, math.Pi/2)
	b := QuatFromAxisAngle(Vec3{1, 0, 0}, math.Pi/2)
	p := Vec3{0, 1, 0}

	got := a.Mul(b).Rotate(p)
	want := a.Rotate(b.Rotate(p))
	if !got.ApproxEqual(want, 1e-12) {
		t.Errorf("(a*b)p = %v, want a(b(p)) = %v", got, want)
	}
}
