package compose

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/brickyard/internal/mesh"
	"github.com/Faultbox/brickyard/internal/store"
	"github.com/Faultbox/brickyard/pkg/ldraw"
	"github.com/Faultbox/brickyard/pkg/math"
)

// generation holds the state of one Generate call. It is not shared between
// goroutines.
type generation struct {
	s        *Session
	visiting map[string]bool // models on the current reference path
	problems []error
}

func (g *generation) report(parent, name string, err error) {
	g.problems = append(g.problems, &PartError{Parent: parent, Name: name, Err: err})
	g.s.log.Warn("reference not imported",
		zap.String("model", parent),
		zap.String("reference", name),
		zap.Error(err))
}

// resolve loads the model a sub-file reference points at, enforcing the
// depth limit and rejecting references back to an ancestor.
func (g *generation) resolve(cmd *ldraw.Command, depth int) (*ldraw.Model, error) {
	if depth+1 > g.s.opts.MaxDepth {
		return nil, fmt.Errorf("%w: depth %d", ErrRecursionLimit, depth+1)
	}
	if g.visiting[cmd.File] {
		return nil, fmt.Errorf("%w: %s references itself", ErrRecursionLimit, cmd.File)
	}
	return g.s.registry.GetOrCreate(cmd.File, g.s.source)
}

// build turns model into a node. Parts become a single node carrying the
// welded part mesh; assemblies get one child per sub-file reference.
func (g *generation) build(model *ldraw.Model, local math.Mat4, color ldraw.ColorRef, depth int) *Node {
	node := &Node{
		Name:   model.Name,
		Matrix: local,
		Color:  color,
		Part:   model.IsPart(),
	}

	g.visiting[model.Name] = true
	defer delete(g.visiting, model.Name)

	if node.Part {
		node.Mesh = g.partMesh(model, depth)
	} else {
		acc := mesh.NewAccumulator()
		for _, cmd := range model.Commands {
			if cmd.Kind != ldraw.KindSubFile {
				addGeometry(acc, cmd, cmd.Color)
				continue
			}
			acc.ClosePolyline()
			node.Children = append(node.Children, g.child(model, cmd, color, depth))
		}
		if acc.VertexCount() > 0 {
			node.Mesh = mesh.Assemble(model.Name, acc)
		}
	}

	g.place(node)
	return node
}

func (g *generation) child(parent *ldraw.Model, cmd *ldraw.Command, inherit ldraw.ColorRef, depth int) *Node {
	color := cmd.Color
	if color.IsMain() {
		color = inherit
	}

	model, err := g.resolve(cmd, depth)
	if err != nil {
		g.report(parent.Name, cmd.File, err)
		n := &Node{
			Name:    cmd.File,
			Matrix:  cmd.Transform,
			Color:   color,
			Missing: true,
			Err:     err,
		}
		g.place(n)
		return n
	}
	return g.build(model, cmd.Transform, color, depth+1)
}

// place decomposes the node matrix. Matrices the scene graph cannot express
// are baked into the node mesh and pushed down into the children.
func (g *generation) place(n *Node) {
	d, err := math.Decompose(n.Matrix)
	if err != nil {
		g.s.log.Warn("degenerate transform",
			zap.String("model", n.Name),
			zap.Error(err))
	}
	if !d.Bake {
		n.Transform = d
		return
	}

	m := n.Matrix
	if n.Mesh != nil {
		n.Mesh = n.Mesh.Transformed(m)
	}
	n.Matrix = math.Identity()
	n.Transform = d
	n.Baked = true
	for _, c := range n.Children {
		c.Matrix = m.Mul(c.Matrix)
		g.place(c)
	}
}

// partMesh returns the welded mesh of a part from the cache, the store, or
// by composing it. A mesh whose composition reported problems depends on
// where the part sat in the tree, so it is neither cached nor persisted.
func (g *generation) partMesh(model *ldraw.Model, depth int) *mesh.Mesh {
	s := g.s
	if m, ok := s.meshes.Get(model.Name); ok {
		return m
	}
	if s.store != nil {
		m, err := s.store.Get(model.Name)
		switch {
		case err == nil:
			return s.meshes.Put(m)
		case !errors.Is(err, store.ErrMeshNotFound):
			s.log.Warn("mesh store read failed", zap.String("model", model.Name), zap.Error(err))
		}
	}

	before := len(g.problems)
	acc := mesh.NewAccumulator()
	g.compose(model, math.Identity(), ldraw.ColorCode(ldraw.MainColor), acc, depth)
	m := mesh.Finalize(model.Name, acc, s.opts.WeldDigits)

	s.log.Debug("part composed",
		zap.String("model", model.Name),
		zap.Int("vertices", len(m.Vertices)),
		zap.Int("triangles", m.TriangleCount()),
		zap.Int("polylines", m.PolylineCount()))
	if len(g.problems) != before {
		return m
	}
	if s.store != nil {
		if err := s.store.Save(m); err != nil {
			s.log.Warn("mesh store write failed", zap.String("model", model.Name), zap.Error(err))
		}
	}
	return s.meshes.Put(m)
}

// compose appends the geometry of model and everything it references to acc,
// transformed by transform, and returns the number of vertices added.
// Colour code 16 takes inherit.
func (g *generation) compose(model *ldraw.Model, transform math.Mat4, inherit ldraw.ColorRef, acc *mesh.Accumulator, depth int) int {
	start := acc.VertexCount()
	for _, cmd := range model.Commands {
		color := cmd.Color
		if color.IsMain() {
			color = inherit
		}
		if cmd.Kind != ldraw.KindSubFile {
			addGeometry(acc, cmd, color)
			continue
		}

		acc.ClosePolyline()
		child, err := g.resolve(cmd, depth)
		if err != nil {
			g.report(model.Name, cmd.File, err)
			continue
		}
		g.visiting[child.Name] = true
		g.compose(child, cmd.Transform, color, acc, depth+1)
		delete(g.visiting, child.Name)
	}
	acc.TransformFrom(start, transform)
	return acc.VertexCount() - start
}

func addGeometry(acc *mesh.Accumulator, cmd *ldraw.Command, color ldraw.ColorRef) {
	p := cmd.Points
	if len(p) < cmd.Kind.PointCount() {
		return
	}
	switch cmd.Kind {
	case ldraw.KindTriangle:
		acc.AddTriangle(color, p[0], p[1], p[2])
	case ldraw.KindQuad:
		acc.AddQuad(color, p[0], p[1], p[2], p[3])
	case ldraw.KindLine, ldraw.KindOptionalLine:
		acc.AddLine(color, p[0], p[1])
	}
}
