package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"

	"github.com/Faultbox/brickyard/internal/mesh"
	"github.com/Faultbox/brickyard/pkg/ldraw"
	"github.com/Faultbox/brickyard/pkg/math"
)

func testMesh(name string) *mesh.Mesh {
	acc := mesh.NewAccumulator()
	acc.AddQuad(ldraw.ColorCode(ldraw.MainColor),
		math.Vec3{X: -10, Y: 0, Z: -10}, math.Vec3{X: 10, Y: 0, Z: -10},
		math.Vec3{X: 10, Y: 0, Z: 10}, math.Vec3{X: -10, Y: 0, Z: 10})
	acc.AddTriangle(ldraw.ColorCode(4),
		math.Vec3{X: 0, Y: -5, Z: 0}, math.Vec3{X: 1, Y: -5, Z: 0}, math.Vec3{X: 0, Y: -5, Z: 1})
	acc.AddLine(ldraw.ColorCode(ldraw.EdgeColor), math.Vec3{X: -10, Y: 0, Z: -10}, math.Vec3{X: 10, Y: 0, Z: -10})
	acc.AddLine(ldraw.ColorCode(ldraw.EdgeColor), math.Vec3{X: 10, Y: 0, Z: -10}, math.Vec3{X: 10, Y: 0, Z: 10})
	return mesh.Finalize(name, acc, mesh.DefaultWeldDigits)
}

func TestMemoryStore(t *testing.T) {
	s := NewMemory()
	if _, err := s.Get("3001"); !errors.Is(err, ErrMeshNotFound) {
		t.Fatalf("expected ErrMeshNotFound, got %v", err)
	}
	m := testMesh("3001")
	if err := s.Save(m); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Get("3001")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != m {
		t.Error("expected the saved mesh")
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d", s.Len())
	}
}

func TestGLBRoundTrip(t *testing.T) {
	s := NewGLB(t.TempDir())
	m := testMesh("s/3001s01")

	if _, err := s.Get(m.Name); !errors.Is(err, ErrMeshNotFound) {
		t.Fatalf("expected ErrMeshNotFound before save, got %v", err)
	}
	if err := s.Save(m); err != nil {
		t.Fatalf("Save: %v", err)
	}
	path, _ := s.Path(m.Name)
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected %s to exist: %v", path, err)
	}

	got, err := s.Get(m.Name)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != m.Name {
		t.Errorf("Name = %q, want %q", got.Name, m.Name)
	}
	if len(got.Vertices) != len(m.Vertices) {
		t.Fatalf("vertex count = %d, want %d", len(got.Vertices), len(m.Vertices))
	}
	for i := range m.Vertices {
		if !got.Vertices[i].ApproxEqual(m.Vertices[i], 1e-5) {
			t.Errorf("vertex %d = %v, want %v", i, got.Vertices[i], m.Vertices[i])
		}
	}
	if len(got.Submeshes) != len(m.Submeshes) {
		t.Fatalf("submesh count = %d, want %d", len(got.Submeshes), len(m.Submeshes))
	}
	for i, want := range m.Submeshes {
		sub := got.Submeshes[i]
		if sub.Topology != want.Topology || sub.Color != want.Color {
			t.Errorf("submesh %d = %v/%v, want %v/%v", i, sub.Topology, sub.Color, want.Topology, want.Color)
		}
		if len(sub.Indices) != len(want.Indices) {
			t.Errorf("submesh %d has %d indices, want %d", i, len(sub.Indices), len(want.Indices))
			continue
		}
		for j := range want.Indices {
			if sub.Indices[j] != want.Indices[j] {
				t.Errorf("submesh %d index %d = %d, want %d", i, j, sub.Indices[j], want.Indices[j])
				break
			}
		}
	}
	if got.TriangleCount() != 3 || got.PolylineCount() != 1 {
		t.Errorf("counts = %d triangles, %d polylines", got.TriangleCount(), got.PolylineCount())
	}
}

func TestGLBEmptyMesh(t *testing.T) {
	s := NewGLB(t.TempDir())
	if err := s.Save(&mesh.Mesh{Name: "empty"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Get("empty")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !got.IsEmpty() {
		t.Errorf("expected empty mesh, got %d vertices", len(got.Vertices))
	}
}

func TestGLBPath(t *testing.T) {
	s := NewGLB("cache")
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"3001", filepath.Join("cache", "3001.glb"), false},
		{"48/4-4cyli", filepath.Join("cache", "48", "4-4cyli.glb"), false},
		{"", "", true},
		{"../escape", "", true},
	}
	for _, tt := range tests {
		got, err := s.Path(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("Path(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("Path(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestExportScene(t *testing.T) {
	brick := testMesh("3001")
	identity := func(name string, m *mesh.Mesh, c int) *SceneNode {
		return &SceneNode{
			Name:     name,
			Rotation: [4]float32{0, 0, 0, 1},
			Scale:    [3]float32{1, 1, 1},
			Mesh:     m,
			Color:    ldraw.ColorCode(c),
		}
	}
	root := identity("car", nil, ldraw.MainColor)
	a := identity("3001", brick, 4)
	a.Translation = [3]float32{0, -24, 0}
	b := identity("3001", brick, 4)
	c := identity("3001", brick, 1)
	missing := identity("9999", nil, 4)
	root.Children = []*SceneNode{a, b, c, missing}

	path := filepath.Join(t.TempDir(), "out", "car.glb")
	if err := ExportScene(path, root, nil); err != nil {
		t.Fatalf("ExportScene: %v", err)
	}

	doc, err := gltf.Open(path)
	if err != nil {
		t.Fatalf("gltf.Open: %v", err)
	}
	if len(doc.Nodes) != 5 {
		t.Errorf("nodes = %d, want 5", len(doc.Nodes))
	}
	// Red and blue instances of the same part need two meshes.
	if len(doc.Meshes) != 2 {
		t.Errorf("meshes = %d, want 2", len(doc.Meshes))
	}
	if len(doc.Nodes[0].Children) != 4 {
		t.Errorf("root children = %d, want 4", len(doc.Nodes[0].Children))
	}
	if doc.Nodes[4].Mesh != nil {
		t.Error("placeholder node should have no mesh")
	}
	if doc.Nodes[1].Translation != [3]float32{0, -24, 0} {
		t.Errorf("translation = %v", doc.Nodes[1].Translation)
	}
}
