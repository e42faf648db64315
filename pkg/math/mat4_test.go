package math

import (
	"math"
	"testing"
)

func TestIdentity(t *testing.T) {
	m := Identity()
	// Diagonal should be 1
	if m[0] != 1 || m[5] != 1 || m[10] != 1 || m[15] != 1 {
		t.Error("Identity diagonal should be 1")
	}
	// Off-diagonal should be 0
	if m[1] != 0 || m[4] != 0 {
		t.Error("Identity off-diagonal should be 0")
	}
}

func TestMulIdentity(t *testing.T) {
	m := Translate(1, 2, 3)
	result := m.Mul(Identity())
	if result != m {
		t.Errorf("M * I should equal M, got %v", result)
	}
}

func TestMulOrder(t *testing.T) {
	// Parent translates, child scales: the child is applied first.
	parent := Translate(10, 0, 0)
	child := Scale(2, 2, 2)
	got := parent.Mul(child).TransformPoint(Vec3{1, 1, 1})
	want := Vec3{12, 2, 2}
	if got != want {
		t.Errorf("parent*child point = %v, want %v", got, want)
	}
}

func TestFromLDraw(t *testing.T) {
	// 1 16 5 6 7  1 2 3  4 5 6  7 8 9
	m := FromLDraw(5, 6, 7, 1, 2, 3, 4, 5, 6, 7, 8, 9)

	if got, want := m.Translation(), (Vec3{5, 6, 7}); got != want {
		t.Errorf("Translation() = %v, want %v", got, want)
	}
	// The x axis maps to the first column a d g.
	got := m.TransformPoint(Vec3{1, 0, 0})
	want := Vec3{1 + 5, 4 + 6, 7 + 7}
	if got != want {
		t.Errorf("x axis maps to %v, want %v", got, want)
	}
	if l := m.Linear(); l != (Mat3{1, 2, 3, 4, 5, 6, 7, 8, 9}) {
		t.Errorf("Linear() = %v", l)
	}
}

func TestTransformPoint(t *testing.T) {
	m := Translate(10, 20, 30)
	result := m.TransformPoint(Vec3{1, 2, 3})

	expected := Vec3{11, 22, 33}
	if result != expected {
		t.Errorf("TransformPoint: got %v, want %v", result, expected)
	}
}

func TestTransformDirectionIgnoresTranslation(t *testing.T) {
	m := Translate(10, 20, 30).Mul(Scale(2, 2, 2))
	if got, want := m.TransformDirection(Vec3{1, 0, 0}), (Vec3{2, 0, 0}); got != want {
		t.Errorf("TransformDirection: got %v, want %v", got, want)
	}
}

func TestRotateAxis90(t *testing.T) {
	m := RotateAxis(Vec3{0, 1, 0}, math.Pi/2)
	result := m.TransformPoint(Vec3{1, 0, 0})

	// After 90 degree Y rotation, (1,0,0) should become approximately (0,0,-1)
	if !result.ApproxEqual(Vec3{0, 0, -1}, 1e-9) {
		t.Errorf("RotateAxis Y 90: got %v, want (0, 0, -1)", result)
	}
}

func TestFromLinearRoundTrip(t *testing.T) {
	l := Mat3{1, 2, 3, 4, 5, 6, 7, 8, 9}
	m := FromLinear(l, Vec3{1, 2, 3})
	if m.Linear() != l {
		t.Errorf("Linear() = %v, want %v", m.Linear(), l)
	}
	if m[15] != 1 {
		t.Errorf("FromLinear [15] should be 1, got %f", m[15])
	}
}

func TestMat3Det(t *testing.T) {
	tests := []struct {
		name string
		m    Mat3
		want float64
	}{
		{"identity", Mat3Identity(), 1},
		{"mirror x", Mat3Diag(-1, 1, 1), -1},
		{"scale", Mat3Diag(2, 3, 4), 24},
		{"singular", Mat3{1, 2, 3, 2, 4, 6, 0, 0, 1}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.m.Det(); got != tt.want {
				t.Errorf("Det() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMat3IsOrthogonal(t *testing.T) {
	if !RotateAxis(Vec3{0, 0, 1}, 0.3).Linear().IsOrthogonal(1e-9) {
		t.Error("rotation should be orthogonal")
	}
	if Mat3Diag(2, 1, 1).IsOrthogonal(1e-9) {
		t.Error("scale should not be orthogonal")
	}
	shear := Mat3{1, 0.5, 0, 0, 1, 0, 0, 0, 1}
	if shear.IsOrthogonal(1e-3) {
		t.Error("shear should not be orthogonal")
	}
}
