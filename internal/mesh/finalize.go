package mesh

import "github.com/Faultbox/brickyard/pkg/math"

// Finalize welds the accumulated geometry into a mesh named name. Triangle
// lists become Triangles submeshes in first-use colour order, followed by one
// LineStrip submesh per polyline. A digits value below zero selects
// DefaultWeldDigits.
func Finalize(name string, acc *Accumulator, digits int) *Mesh {
	if digits < 0 {
		digits = DefaultWeldDigits
	}
	return build(name, acc, func(vertices []math.Vec3, lists [][]uint32) ([]math.Vec3, [][]uint32) {
		return Weld(vertices, lists, digits)
	})
}

// Assemble builds a mesh like Finalize but keeps every accumulated vertex.
func Assemble(name string, acc *Accumulator) *Mesh {
	return build(name, acc, func(vertices []math.Vec3, lists [][]uint32) ([]math.Vec3, [][]uint32) {
		out := make([]math.Vec3, len(vertices))
		copy(out, vertices)
		copied := make([][]uint32, len(lists))
		for i, list := range lists {
			copied[i] = append([]uint32(nil), list...)
		}
		return out, copied
	})
}

func build(name string, acc *Accumulator, pack func([]math.Vec3, [][]uint32) ([]math.Vec3, [][]uint32)) *Mesh {
	var lists [][]uint32
	var subs []Submesh
	for _, t := range acc.Triangles() {
		if len(t.Indices) == 0 {
			continue
		}
		lists = append(lists, t.Indices)
		subs = append(subs, Submesh{Topology: Triangles, Color: t.Color})
	}
	for _, p := range acc.Polylines() {
		lists = append(lists, p.Indices)
		subs = append(subs, Submesh{Topology: LineStrip, Color: p.Color})
	}

	vertices, packed := pack(acc.Vertices(), lists)
	for i := range subs {
		subs[i].Indices = packed[i]
	}

	m := &Mesh{
		Name:      name,
		Vertices:  vertices,
		Submeshes: subs,
		Bounds:    EmptyBounds(),
	}
	for _, v := range vertices {
		m.Bounds.Extend(v)
	}
	return m
}
