package engine

import (
	"fmt"
	"strings"

	"github.com/chazu/trimesh/pkg/mesh"
)

// CheckExportName reports whether name can label an exported mesh. Names
// double as file names when a scene is saved, so they must be a single
// non-empty path element.
func CheckExportName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return fmt.Errorf("engine: invalid export name %q", name)
	case strings.ContainsAny(name, `/\:`+"\x00"):
		return fmt.Errorf("engine: export name %q must not contain path separators", name)
	}
	return nil
}

// Scene collects the meshes a script exports, in export order.
// A script that never calls export yields an empty scene.
type Scene struct {
	meshes map[string]*mesh.IndexedMesh
	names  []string
}

// NewScene returns an empty scene.
func NewScene() *Scene {
	return &Scene{meshes: make(map[string]*mesh.IndexedMesh)}
}

// Export stores m under name. Re-exporting a name replaces the mesh but
// keeps its original position.
func (s *Scene) Export(name string, m *mesh.IndexedMesh) {
	if _, ok := s.meshes[name]; !ok {
		s.names = append(s.names, name)
	}
	s.meshes[name] = m
}

// Lookup returns the mesh exported under name, or nil.
func (s *Scene) Lookup(name string) *mesh.IndexedMesh {
	return s.meshes[name]
}

// Names returns exported names in export order.
func (s *Scene) Names() []string {
	return append([]string(nil), s.names...)
}

// MeshCount returns the number of exported meshes.
func (s *Scene) MeshCount() int {
	return len(s.names)
}
