// Package mesh accumulates LDraw geometry and finalizes it into welded meshes
// made of triangle and line-strip submeshes.
package mesh

import (
	"fmt"
	gomath "math"

	"github.com/Faultbox/brickyard/pkg/ldraw"
	"github.com/Faultbox/brickyard/pkg/math"
)

// Topology is the primitive type of a submesh.
type Topology int

const (
	Triangles Topology = iota // indexed triangle list
	LineStrip                 // one polyline
)

// String returns a human-readable topology name.
func (t Topology) String() string {
	switch t {
	case Triangles:
		return "Triangles"
	case LineStrip:
		return "LineStrip"
	default:
		return fmt.Sprintf("Unknown(%d)", int(t))
	}
}

// Submesh is one index list over the shared vertex buffer.
type Submesh struct {
	Topology Topology
	Color    ldraw.ColorRef // code 16 means the colour of the instance
	Indices  []uint32
}

// Mesh is finalized geometry: triangle submeshes first, then one line strip
// per polyline.
type Mesh struct {
	Name      string
	Vertices  []math.Vec3
	Submeshes []Submesh
	Bounds    Bounds
}

// TriangleCount returns the number of triangles across all submeshes.
func (m *Mesh) TriangleCount() int {
	n := 0
	for _, s := range m.Submeshes {
		if s.Topology == Triangles {
			n += len(s.Indices) / 3
		}
	}
	return n
}

// PolylineCount returns the number of line-strip submeshes.
func (m *Mesh) PolylineCount() int {
	n := 0
	for _, s := range m.Submeshes {
		if s.Topology == LineStrip {
			n++
		}
	}
	return n
}

// IsEmpty reports whether the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return m == nil || len(m.Vertices) == 0
}

// Transformed returns a copy of m with every vertex multiplied by t.
func (m *Mesh) Transformed(t math.Mat4) *Mesh {
	out := &Mesh{
		Name:      m.Name,
		Vertices:  make([]math.Vec3, len(m.Vertices)),
		Submeshes: make([]Submesh, len(m.Submeshes)),
		Bounds:    EmptyBounds(),
	}
	for i, v := range m.Vertices {
		out.Vertices[i] = t.TransformPoint(v)
		out.Bounds.Extend(out.Vertices[i])
	}
	for i, s := range m.Submeshes {
		out.Submeshes[i] = Submesh{
			Topology: s.Topology,
			Color:    s.Color,
			Indices:  append([]uint32(nil), s.Indices...),
		}
	}
	return out
}

// Bounds holds an axis-aligned bounding box.
type Bounds struct {
	Min math.Vec3
	Max math.Vec3
}

// EmptyBounds returns an inverted box that any point extends.
func EmptyBounds() Bounds {
	inf := gomath.Inf(1)
	return Bounds{
		Min: math.Vec3{X: inf, Y: inf, Z: inf},
		Max: math.Vec3{X: -inf, Y: -inf, Z: -inf},
	}
}

// Extend grows the box to contain p.
func (b *Bounds) Extend(p math.Vec3) {
	b.Min = b.Min.Min(p)
	b.Max = b.Max.Max(p)
}

// Valid reports whether the box contains at least one point.
func (b Bounds) Valid() bool {
	return b.Min.X <= b.Max.X && b.Min.Y <= b.Max.Y && b.Min.Z <= b.Max.Z
}

// Center returns the box center.
func (b Bounds) Center() math.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns the box extent on each axis.
func (b Bounds) Size() math.Vec3 {
	return b.Max.Sub(b.Min)
}

