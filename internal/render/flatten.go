// Package render turns an imported instance tree into a flat draw list.
package render

import (
	"image/color"
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/brickyard/internal/compose"
	"github.com/Faultbox/brickyard/internal/mesh"
	"github.com/Faultbox/brickyard/pkg/ldraw"
	"github.com/Faultbox/brickyard/pkg/math"
)

// Item is one mesh placed in world space.
type Item struct {
	Name  string
	Mesh  *mesh.Mesh
	World mgl32.Mat4
	Color ldraw.ColorRef // instance colour code 16 resolves to

	colors *ldraw.ColorTable
}

var defaultColors = sync.OnceValue(ldraw.DefaultColors)

// SubmeshColor returns the colour submesh i is drawn with.
func (it Item) SubmeshColor(i int) color.NRGBA {
	colors := it.colors
	if colors == nil {
		colors = defaultColors()
	}
	return colors.Surface(it.Mesh.Submeshes[i].Color, it.Color)
}

// Flatten walks root depth-first and returns one item per node carrying
// geometry. World matrices are recomposed from each node's decomposed
// translation, rotation and scale. A nil colors uses ldraw.DefaultColors.
func Flatten(root *compose.Node, colors *ldraw.ColorTable) []Item {
	if colors == nil {
		colors = defaultColors()
	}
	var items []Item
	flatten(root, mgl32.Ident4(), colors, &items)
	return items
}

func flatten(n *compose.Node, parent mgl32.Mat4, colors *ldraw.ColorTable, items *[]Item) {
	world := parent.Mul4(LocalMatrix(n.Transform))
	if !n.Mesh.IsEmpty() {
		*items = append(*items, Item{
			Name:   n.Name,
			Mesh:   n.Mesh,
			World:  world,
			Color:  n.Color,
			colors: colors,
		})
	}
	for _, c := range n.Children {
		flatten(c, world, colors, items)
	}
}

// LocalMatrix recomposes T·R·S as a float32 matrix.
func LocalMatrix(d math.Decomposition) mgl32.Mat4 {
	t := mgl32.Translate3D(float32(d.Position.X), float32(d.Position.Y), float32(d.Position.Z))
	q := mgl32.Quat{
		W: float32(d.Rotation.W),
		V: mgl32.Vec3{float32(d.Rotation.X), float32(d.Rotation.Y), float32(d.Rotation.Z)},
	}
	s := mgl32.Scale3D(float32(d.Scale.X), float32(d.Scale.Y), float32(d.Scale.Z))
	return t.Mul4(q.Mat4()).Mul4(s)
}

// WorldVertex returns vertex i of the item's mesh in world space.
func (it Item) WorldVertex(i int) mgl32.Vec3 {
	v := it.Mesh.Vertices[i]
	return mgl32.TransformCoordinate(mgl32.Vec3{float32(v.X), float32(v.Y), float32(v.Z)}, it.World)
}

// Bounds returns the world-space box enclosing every item. ok is false for an
// empty list.
func Bounds(items []Item) (min, max mgl32.Vec3, ok bool) {
	for _, it := range items {
		for i := range it.Mesh.Vertices {
			p := it.WorldVertex(i)
			if !ok {
				min, max, ok = p, p, true
				continue
			}
			for k := 0; k < 3; k++ {
				if p[k] < min[k] {
					min[k] = p[k]
				}
				if p[k] > max[k] {
					max[k] = p[k]
				}
			}
		}
	}
	return min, max, ok
}
