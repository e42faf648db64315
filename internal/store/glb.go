package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/Faultbox/brickyard/internal/mesh"
	"github.com/Faultbox/brickyard/pkg/ldraw"
	"github.com/Faultbox/brickyard/pkg/math"
)

const generator = "brickyard"

// GLB stores each mesh as a binary glTF file at <dir>/<name>.glb. Names with
// slashes (s/3001s01, 48/4-4cyli) land in sub-directories.
//
// One file holds one glTF mesh whose primitives share a single position
// accessor: triangle submeshes use mode TRIANGLES, polylines LINE_STRIP. The
// submesh colour reference is kept as the primitive's material name.
type GLB struct {
	dir string
}

// NewGLB creates a store rooted at dir. The directory is created on first Save.
func NewGLB(dir string) *GLB {
	return &GLB{dir: dir}
}

// Dir returns the store root.
func (s *GLB) Dir() string {
	return s.dir
}

// Path returns the file a mesh name maps to.
func (s *GLB) Path(name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(name))
	if name == "" || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid mesh name %q", name)
	}
	return filepath.Join(s.dir, clean+".glb"), nil
}

// Get implements Store.
func (s *GLB) Get(name string) (*mesh.Mesh, error) {
	path, err := s.Path(name)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrMeshNotFound, name)
	}
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	m, err := decodeMesh(doc)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	m.Name = name
	return m, nil
}

// Save implements Store. The file is written to a temporary name first and
// renamed into place, so concurrent readers never see a partial file.
func (s *GLB) Save(m *mesh.Mesh) error {
	path, err := s.Path(m.Name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating mesh directory: %w", err)
	}

	doc := gltf.NewDocument()
	doc.Asset.Generator = generator
	if !m.IsEmpty() {
		materials := make(map[string]uint32)
		idx := encodeMesh(doc, m, func(c ldraw.ColorRef) uint32 {
			key := c.String()
			if i, ok := materials[key]; ok {
				return i
			}
			doc.Materials = append(doc.Materials, &gltf.Material{Name: key})
			i := uint32(len(doc.Materials) - 1)
			materials[key] = i
			return i
		})
		doc.Nodes = []*gltf.Node{newNode(m.Name, idx)}
		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(0))
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".mesh-*.glb")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	tmp.Close()

	if err := gltf.SaveBinary(doc, tmpName); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming %s: %w", path, err)
	}
	return nil
}

// encodeMesh appends m to doc as one glTF mesh and returns its index.
// material maps a submesh colour to a material index.
func encodeMesh(doc *gltf.Document, m *mesh.Mesh, material func(ldraw.ColorRef) uint32) uint32 {
	positions := make([][3]float32, len(m.Vertices))
	for i, v := range m.Vertices {
		positions[i] = v.Array()
	}
	posAccessor := modeler.WritePosition(doc, positions)

	gm := &gltf.Mesh{Name: m.Name}
	for _, sub := range m.Submeshes {
		if len(sub.Indices) == 0 {
			continue
		}
		indices := make([]uint32, len(sub.Indices))
		copy(indices, sub.Indices)
		indicesAccessor := modeler.WriteIndices(doc, indices)

		prim := &gltf.Primitive{
			Attributes: map[string]uint32{
				gltf.POSITION: uint32(posAccessor),
			},
			Indices:  gltf.Index(uint32(indicesAccessor)),
			Material: gltf.Index(material(sub.Color)),
			Mode:     gltf.PrimitiveTriangles,
		}
		if sub.Topology == mesh.LineStrip {
			prim.Mode = gltf.PrimitiveLineStrip
		}
		gm.Primitives = append(gm.Primitives, prim)
	}
	doc.Meshes = append(doc.Meshes, gm)
	return uint32(len(doc.Meshes) - 1)
}

// decodeMesh reads the first mesh of doc back into a mesh.Mesh.
func decodeMesh(doc *gltf.Document) (*mesh.Mesh, error) {
	m := &mesh.Mesh{Bounds: mesh.EmptyBounds()}
	if len(doc.Meshes) == 0 {
		return m, nil
	}
	gm := doc.Meshes[0]
	m.Name = gm.Name

	var posAccessor uint32
	for i, prim := range gm.Primitives {
		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			return nil, fmt.Errorf("primitive %d has no POSITION", i)
		}
		if i == 0 {
			posAccessor = posIdx
			positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
			if err != nil {
				return nil, fmt.Errorf("reading positions: %w", err)
			}
			m.Vertices = make([]math.Vec3, len(positions))
			for j, p := range positions {
				m.Vertices[j] = math.Vec3{X: float64(p[0]), Y: float64(p[1]), Z: float64(p[2])}
				m.Bounds.Extend(m.Vertices[j])
			}
		} else if posIdx != posAccessor {
			return nil, fmt.Errorf("primitive %d does not share the position accessor", i)
		}

		if prim.Indices == nil {
			return nil, fmt.Errorf("primitive %d is not indexed", i)
		}
		indices, err := modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return nil, fmt.Errorf("reading indices: %w", err)
		}

		sub := mesh.Submesh{Indices: indices, Color: ldraw.ColorCode(ldraw.MainColor)}
		switch prim.Mode {
		case gltf.PrimitiveTriangles:
			sub.Topology = mesh.Triangles
		case gltf.PrimitiveLineStrip:
			sub.Topology = mesh.LineStrip
		default:
			return nil, fmt.Errorf("primitive %d: unsupported mode %v", i, prim.Mode)
		}
		if prim.Material != nil && int(*prim.Material) < len(doc.Materials) {
			sub.Color = parseColorRef(doc.Materials[*prim.Material].Name)
		}
		m.Submeshes = append(m.Submeshes, sub)
	}
	return m, nil
}

func parseColorRef(s string) ldraw.ColorRef {
	if code, err := strconv.Atoi(s); err == nil {
		return ldraw.ColorCode(code)
	}
	return ldraw.ColorName(s)
}

func newNode(name string, meshIdx uint32) *gltf.Node {
	n := identityNode(name)
	n.Mesh = gltf.Index(meshIdx)
	return n
}

func identityNode(name string) *gltf.Node {
	return &gltf.Node{
		Name:     name,
		Rotation: [4]float32{0, 0, 0, 1},
		Scale:    [3]float32{1, 1, 1},
	}
}
