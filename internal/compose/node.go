package compose

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Faultbox/brickyard/internal/mesh"
	"github.com/Faultbox/brickyard/internal/store"
	"github.com/Faultbox/brickyard/pkg/ldraw"
	"github.com/Faultbox/brickyard/pkg/math"
)

// Node is one instance in an imported model tree.
//
// Matrix is the transform relative to the parent node and Transform its
// decomposition. When the matrix could not be decomposed (oblique
// reflection, shear) it has been applied to Mesh and pushed into the
// children's matrices; Baked is then set and Matrix is the identity.
type Node struct {
	Name      string
	Matrix    math.Mat4
	Transform math.Decomposition
	Color     ldraw.ColorRef // what colour code 16 in Mesh resolves to
	Mesh      *mesh.Mesh     // part geometry, or loose geometry of an assembly
	Children  []*Node
	Part      bool
	Baked     bool
	Missing   bool  // placeholder for a reference that could not be imported
	Err       error // set on placeholders
}

// Walk calls fn for n and every descendant in depth-first order.
func (n *Node) Walk(fn func(n *Node, depth int)) {
	n.walk(fn, 0)
}

func (n *Node) walk(fn func(*Node, int), depth int) {
	fn(n, depth)
	for _, c := range n.Children {
		c.walk(fn, depth+1)
	}
}

// Scene converts the tree to the node type the glTF exporter writes.
func (n *Node) Scene() *store.SceneNode {
	d := n.Transform
	out := &store.SceneNode{
		Name:        n.Name,
		Translation: d.Position.Array(),
		Rotation: [4]float32{
			float32(d.Rotation.X),
			float32(d.Rotation.Y),
			float32(d.Rotation.Z),
			float32(d.Rotation.W),
		},
		Scale: d.Scale.Array(),
		Mesh:  n.Mesh,
		Color: n.Color,
	}
	for _, c := range n.Children {
		out.Children = append(out.Children, c.Scene())
	}
	return out
}

// Result is the outcome of one Generate call.
type Result struct {
	Root     *Node
	Problems []error
}

// Stats summarizes an instance tree.
type Stats struct {
	Nodes     int
	Parts     int
	Missing   int
	Baked     int
	Triangles int
	Polylines int
}

// Stats counts the nodes and geometry of the tree.
func (r *Result) Stats() Stats {
	var st Stats
	r.Root.Walk(func(n *Node, _ int) {
		st.Nodes++
		if n.Part {
			st.Parts++
		}
		if n.Missing {
			st.Missing++
		}
		if n.Baked {
			st.Baked++
		}
		if n.Mesh != nil {
			st.Triangles += n.Mesh.TriangleCount()
			st.Polylines += n.Mesh.PolylineCount()
		}
	})
	return st
}

// MissingParts returns the sorted, distinct names of referenced files no
// source could provide.
func (r *Result) MissingParts() []string {
	seen := make(map[string]bool)
	var names []string
	for _, p := range r.Problems {
		var pe *PartError
		if errors.As(p, &pe) && errors.Is(pe.Err, ldraw.ErrPartNotFound) && !seen[pe.Name] {
			seen[pe.Name] = true
			names = append(names, pe.Name)
		}
	}
	sort.Strings(names)
	return names
}

// PartError records a reference that could not be imported.
type PartError struct {
	Parent string // model holding the reference
	Name   string // referenced file
	Err    error
}

func (e *PartError) Error() string {
	return fmt.Sprintf("%s referenced by %s: %v", e.Name, e.Parent, e.Err)
}

func (e *PartError) Unwrap() error {
	return e.Err
}
