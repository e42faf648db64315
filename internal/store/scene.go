package store

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"github.com/qmuntal/gltf"

	"github.com/Faultbox/brickyard/internal/mesh"
	"github.com/Faultbox/brickyard/pkg/ldraw"
)

// SceneNode is one node of an exported instance tree.
type SceneNode struct {
	Name        string
	Translation [3]float32
	Rotation    [4]float32 // x, y, z, w
	Scale       [3]float32
	Mesh        *mesh.Mesh     // nil for assemblies and placeholders
	Color       ldraw.ColorRef // colour code-16 submeshes take
	Children    []*SceneNode
}

type sceneEncoder struct {
	doc       *gltf.Document
	colors    *ldraw.ColorTable
	materials map[color.NRGBA]uint32
	meshes    map[meshKey]uint32
}

type meshKey struct {
	mesh  *mesh.Mesh
	color ldraw.ColorRef
}

// ExportScene writes root and its descendants to path as binary glTF. Part
// meshes shared by several nodes with the same colour are written once.
// Colours are resolved through colors; code 16 takes the node colour and
// code 24 that colour's edge.
func ExportScene(path string, root *SceneNode, colors *ldraw.ColorTable) error {
	if colors == nil {
		colors = ldraw.DefaultColors()
	}
	e := &sceneEncoder{
		doc:       gltf.NewDocument(),
		colors:    colors,
		materials: make(map[color.NRGBA]uint32),
		meshes:    make(map[meshKey]uint32),
	}
	e.doc.Asset.Generator = generator

	rootIdx := e.addNode(root)
	e.doc.Scenes[0].Nodes = append(e.doc.Scenes[0].Nodes, rootIdx)

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}
	if err := gltf.SaveBinary(e.doc, path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func (e *sceneEncoder) addNode(n *SceneNode) uint32 {
	node := &gltf.Node{
		Name:        n.Name,
		Translation: n.Translation,
		Rotation:    n.Rotation,
		Scale:       n.Scale,
	}
	e.doc.Nodes = append(e.doc.Nodes, node)
	idx := uint32(len(e.doc.Nodes) - 1)

	if !n.Mesh.IsEmpty() {
		key := meshKey{mesh: n.Mesh, color: n.Color}
		meshIdx, ok := e.meshes[key]
		if !ok {
			meshIdx = encodeMesh(e.doc, n.Mesh, func(c ldraw.ColorRef) uint32 {
				return e.material(c, n.Color)
			})
			e.meshes[key] = meshIdx
		}
		node.Mesh = gltf.Index(meshIdx)
	}

	for _, child := range n.Children {
		node.Children = append(node.Children, e.addNode(child))
	}
	return idx
}

// material returns the material for a submesh colour drawn on an instance
// of colour inherit.
func (e *sceneEncoder) material(c, inherit ldraw.ColorRef) uint32 {
	value := e.colors.Surface(c, inherit)
	if idx, ok := e.materials[value]; ok {
		return idx
	}
	pbr := &gltf.PBRMetallicRoughness{
		BaseColorFactor: &[4]float32{
			float32(value.R) / 255,
			float32(value.G) / 255,
			float32(value.B) / 255,
			float32(value.A) / 255,
		},
		MetallicFactor:  gltf.Float(0),
		RoughnessFactor: gltf.Float(0.6),
	}
	mat := &gltf.Material{
		Name:                 fmt.Sprintf("#%02X%02X%02X", value.R, value.G, value.B),
		PBRMetallicRoughness: pbr,
		AlphaMode:            gltf.AlphaOpaque,
	}
	if value.A < 255 {
		mat.AlphaMode = gltf.AlphaBlend
	}
	e.doc.Materials = append(e.doc.Materials, mat)
	idx := uint32(len(e.doc.Materials) - 1)
	e.materials[value] = idx
	return idx
}
