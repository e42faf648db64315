package math

import (
	"errors"
	"math"
	"testing"
)

func TestDecomposeIdentity(t *testing.T) {
	d, err := Decompose(Identity())
	if err != nil {
		t.Fatalf("Decompose: %v", err)
	}
	if d.Position != (Vec3{}) {
		t.Errorf("position = %v, want zero", d.Position)
	}
	if d.Rotation != QuatIdentity() {
		t.Errorf("rotation = %+v, want identity", d.Rotation)
	}
	if d.Scale != (Vec3{1, 1, 1}) {
		t.Errorf("scale = %v, want (1,1,1)", d.Scale)
	}
	if d.Bake {
		t.Error("identity should not need baking")
	}
}

func TestDecomposeRecomposes(t *testing.T) {
	tests := []struct {
		name string
		m    Mat4
	}{
		{"translation", Translate(10, -24, 8)},
		{"rotation", RotateAxis(Vec3{0, 1, 0}, math.Pi/2)},
		{"ldraw brick turned", FromLDraw(20, -24, 40, 0, 0, -1, 0, 1, 0, 1, 0, 0)},
		{"non uniform scale", Translate(1, 2, 3).Mul(RotateAxis(Vec3{1, 1, 0}.Normalize(), 1.1)).Mul(Scale(2, 0.5, 7))},
		{"upside down", FromLDraw(0, 0, 0, 1, 0, 0, 0, -1, 0, 0, 0, -1)},
	}

	probes := []Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}, {3, -4, 5}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Decompose(tt.m)
			if err != nil {
				t.Fatalf("Decompose: %v", err)
			}
			if d.Bake {
				t.Fatal("proper transform should not need baking")
			}
			r := d.Matrix()
			for _, p := range probes {
				if got, want := r.TransformPoint(p), tt.m.TransformPoint(p); !got.ApproxEqual(want, 1e-9) {
					t.Errorf("point %v: recomposed %v, original %v", p, got, want)
				}
			}
		})
	}
}

func TestDecomposeAxisAlignedReflection(t *testing.T) {
	m := FromLinear(Mat3Diag(-1, 1, 1), Vec3{})

	d, err := Decompose(m)
	if err != nil {
		t.Fatalf("Decompose: %v", err)
	}
	if d.Bake {
		t.Fatal("axis-aligned reflection should not need baking")
	}
	if !d.Scale.ApproxEqual(Vec3{-1, 1, 1}, 1e-12) {
		t.Errorf("scale = %v, want (-1,1,1)", d.Scale)
	}
	if !d.Rotation.SameRotation(QuatIdentity(), 1e-12) {
		t.Errorf("rotation = %+v, want identity", d.Rotation)
	}
}

func TestDecomposeRotatedAxisReflection(t *testing.T) {
	// Mirror on X followed by a turn about X keeps the normal on X.
	m := RotateAxis(Vec3{1, 0, 0}, math.Pi/2).Mul(Scale(-3, 1, 1))
	m[12], m[13], m[14] = 5, 6, 7

	d, err := Decompose(m)
	if err != nil {
		t.Fatalf("Decompose: %v", err)
	}
	if d.Bake {
		t.Fatal("axis-aligned reflection should not need baking")
	}
	if d.Scale.X >= 0 || d.Scale.Y <= 0 || d.Scale.Z <= 0 {
		t.Errorf("scale = %v, want only X negative", d.Scale)
	}
	for _, p := range []Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}, {2, 3, 4}} {
		if got, want := d.Matrix().TransformPoint(p), m.TransformPoint(p); !got.ApproxEqual(want, 1e-9) {
			t.Errorf("point %v: recomposed %v, original %v", p, got, want)
		}
	}
}

func TestDecomposeObliqueReflectionBakes(t *testing.T) {
	// Householder reflection I - 2nnᵀ with n = (1,1,0)/√2.
	m := FromLinear(Mat3{0, -1, 0, -1, 0, 0, 0, 0, 1}, Vec3{4, 5, 6})

	n, err := ReflectionNormal(m.Linear())
	if err != nil {
		t.Fatalf("ReflectionNormal: %v", err)
	}
	want := Vec3{1, 1, 0}.Normalize()
	if math.Abs(math.Abs(n.Dot(want))-1) > 1e-9 {
		t.Errorf("normal = %v, want ±%v", n, want)
	}

	d, err := Decompose(m)
	if err != nil {
		t.Fatalf("Decompose: %v", err)
	}
	if !d.Bake {
		t.Fatal("oblique reflection should bake")
	}
	if d.Rotation != QuatIdentity() || d.Scale != (Vec3{1, 1, 1}) || d.Position != (Vec3{}) {
		t.Errorf("baked decomposition should be identity, got %+v", d)
	}
}

func TestDecomposeShearBakes(t *testing.T) {
	m := FromLinear(Mat3{1, 0.5, 0, 0, 1, 0, 0, 0, 1}, Vec3{})
	d, err := Decompose(m)
	if err != nil {
		t.Fatalf("Decompose: %v", err)
	}
	if !d.Bake {
		t.Error("sheared transform should bake")
	}
}

func TestDecomposeDegenerate(t *testing.T) {
	m := FromLinear(Mat3Diag(1, 0, 1), Vec3{1, 2, 3})
	d, err := Decompose(m)
	if !errors.Is(err, ErrDegenerateTransform) {
		t.Fatalf("expected ErrDegenerateTransform, got %v", err)
	}
	if d.Rotation != QuatIdentity() {
		t.Errorf("rotation = %+v, want identity fallback", d.Rotation)
	}
	if d.Scale != (Vec3{1, 0, 1}) {
		t.Errorf("scale = %v, want measured (1,0,1)", d.Scale)
	}
	if d.Position != (Vec3{1, 2, 3}) {
		t.Errorf("position = %v, want (1,2,3)", d.Position)
	}
}

func TestAlignedAxis(t *testing.T) {
	tests := []struct {
		n    Vec3
		want int
	}{
		{Vec3{1, 0, 0}, 0},
		{Vec3{0, -1, 0}, 1},
		{Vec3{0, 0, 2}, 2},
		{Vec3{1, 1, 0}, -1},
	}
	for _, tt := range tests {
		if got := AlignedAxis(tt.n); got != tt.want {
			t.Errorf("AlignedAxis(%v) = %d, want %d", tt.n, got, tt.want)
		}
	}
}
