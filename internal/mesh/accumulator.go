package mesh

import (
	"fmt"

	"github.com/Faultbox/brickyard/pkg/ldraw"
	"github.com/Faultbox/brickyard/pkg/math"
)

// Polyline is an ordered chain of vertex indices drawn as one strip.
type Polyline struct {
	Color   ldraw.ColorRef
	Indices []uint32
}

// TriangleList is the triangle index list of one colour.
type TriangleList struct {
	Color   ldraw.ColorRef
	Indices []uint32
}

// Accumulator collects geometry during one composition pass. Vertices are
// appended unwelded; Finalize welds them.
//
// Line segments are chained: a segment whose first point equals the last
// point of the open polyline (exactly, same colour) extends it, otherwise a
// new polyline starts. Any other geometry closes the open polyline.
type Accumulator struct {
	vertices  []math.Vec3
	triangles []TriangleList
	byColor   map[ldraw.ColorRef]int
	polylines []Polyline
	open      bool
}

// NewAccumulator creates an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{byColor: make(map[ldraw.ColorRef]int)}
}

// VertexCount returns the number of vertices appended so far.
func (a *Accumulator) VertexCount() int {
	return len(a.vertices)
}

// Vertices returns the accumulated vertices. The slice is shared.
func (a *Accumulator) Vertices() []math.Vec3 {
	return a.vertices
}

// Triangles returns the triangle lists in first-use colour order.
func (a *Accumulator) Triangles() []TriangleList {
	return a.triangles
}

// Polylines returns the polylines in creation order.
func (a *Accumulator) Polylines() []Polyline {
	return a.polylines
}

func (a *Accumulator) addVertex(p math.Vec3) uint32 {
	a.vertices = append(a.vertices, p)
	return uint32(len(a.vertices) - 1)
}

func (a *Accumulator) list(color ldraw.ColorRef) *TriangleList {
	i, ok := a.byColor[color]
	if !ok {
		i = len(a.triangles)
		a.byColor[color] = i
		a.triangles = append(a.triangles, TriangleList{Color: color})
	}
	return &a.triangles[i]
}

// AddTriangle appends one triangle.
func (a *Accumulator) AddTriangle(color ldraw.ColorRef, p0, p1, p2 math.Vec3) {
	a.ClosePolyline()
	i0 := a.addVertex(p0)
	i1 := a.addVertex(p1)
	i2 := a.addVertex(p2)
	l := a.list(color)
	l.Indices = append(l.Indices, i0, i1, i2)
}

// AddQuad appends a quad as the triangles (p0,p1,p2) and (p0,p2,p3).
func (a *Accumulator) AddQuad(color ldraw.ColorRef, p0, p1, p2, p3 math.Vec3) {
	a.ClosePolyline()
	i0 := a.addVertex(p0)
	i1 := a.addVertex(p1)
	i2 := a.addVertex(p2)
	i3 := a.addVertex(p3)
	l := a.list(color)
	l.Indices = append(l.Indices, i0, i1, i2, i0, i2, i3)
}

// AddLine appends a segment, extending the open polyline when it continues
// from that polyline's last point. It returns the number of vertices added.
func (a *Accumulator) AddLine(color ldraw.ColorRef, p0, p1 math.Vec3) int {
	if a.open {
		cur := &a.polylines[len(a.polylines)-1]
		last := a.vertices[cur.Indices[len(cur.Indices)-1]]
		if last == p0 && cur.Color == color {
			cur.Indices = append(cur.Indices, a.addVertex(p1))
			return 1
		}
	}
	a.ClosePolyline()
	i0 := a.addVertex(p0)
	i1 := a.addVertex(p1)
	a.polylines = append(a.polylines, Polyline{Color: color, Indices: []uint32{i0, i1}})
	a.open = true
	return 2
}

// ClosePolyline ends the open polyline, if any.
func (a *Accumulator) ClosePolyline() {
	a.open = false
}

// TransformFrom multiplies every vertex appended since start by m. It closes
// the open polyline: transformed points no longer compare equal to the
// untransformed points of later segments.
func (a *Accumulator) TransformFrom(start int, m math.Mat4) {
	if start < 0 || start > len(a.vertices) {
		panic(fmt.Sprintf("mesh: transform start %d out of range [0,%d]", start, len(a.vertices)))
	}
	a.ClosePolyline()
	if m.IsIdentity() {
		return
	}
	for i := start; i < len(a.vertices); i++ {
		a.vertices[i] = m.TransformPoint(a.vertices[i])
	}
}

// Vertex returns vertex i. An index past the end is a programming error.
func (a *Accumulator) Vertex(i uint32) math.Vec3 {
	if int(i) >= len(a.vertices) {
		panic(fmt.Sprintf("mesh: vertex index %d out of range [0,%d)", i, len(a.vertices)))
	}
	return a.vertices[i]
}
