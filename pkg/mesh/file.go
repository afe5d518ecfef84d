package mesh

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/chazu/trimesh/pkg/meshio"
)

// ErrUnknownFormat is returned for file names whose extension names no
// supported mesh format.
var ErrUnknownFormat = errors.New("mesh: unknown file format")

// Format enumerates the supported mesh file formats.
type Format int

const (
	FormatOBJ Format = iota
	FormatPLY
)

func (f Format) String() string {
	switch f {
	case FormatOBJ:
		return "obj"
	case FormatPLY:
		return "ply"
	default:
		return "unknown"
	}
}

// FormatFromPath resolves the format from the file extension, ignoring case.
func FormatFromPath(path string) (Format, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch ext {
	case "obj":
		return FormatOBJ, nil
	case "ply":
		return FormatPLY, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, path)
}

// LoadFromFile replaces the mesh content with the file at path, choosing the
// codec from the extension. On failure the mesh is left untouched.
func (m *IndexedMesh) LoadFromFile(path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	return m.load(path, format)
}

// LoadOBJ replaces the mesh content with the OBJ file at path.
func (m *IndexedMesh) LoadOBJ(path string) error {
	return m.load(path, FormatOBJ)
}

// LoadPLY replaces the mesh content with the PLY file at path.
func (m *IndexedMesh) LoadPLY(path string) error {
	return m.load(path, FormatPLY)
}

func (m *IndexedMesh) load(path string, format Format) error {
	var (
		coords  []float64
		indices []int
		err     error
	)
	switch format {
	case FormatOBJ:
		coords, indices, err = meshio.LoadOBJ(path)
	case FormatPLY:
		coords, indices, err = meshio.LoadPLY(path)
	default:
		return fmt.Errorf("%w: %v", ErrUnknownFormat, format)
	}
	if err != nil {
		return fmt.Errorf("mesh: load %s: %w", format, err)
	}
	loaded, err := FromBuffers(coords, indices)
	if err != nil {
		return err
	}
	*m = *loaded
	return nil
}

// SaveToFile writes the mesh to path, choosing the codec from the extension.
func (m *IndexedMesh) SaveToFile(path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	return m.save(path, format)
}

// SaveOBJ writes the mesh to path as OBJ.
func (m *IndexedMesh) SaveOBJ(path string) error {
	return m.save(path, FormatOBJ)
}

// SavePLY writes the mesh to path as PLY.
func (m *IndexedMesh) SavePLY(path string) error {
	return m.save(path, FormatPLY)
}

func (m *IndexedMesh) save(path string, format Format) error {
	coords, indices := m.Buffers()
	var err error
	switch format {
	case FormatOBJ:
		err = meshio.SaveOBJ(path, len(m.vertices), len(m.faces), coords, indices)
	case FormatPLY:
		err = meshio.SavePLY(path, len(m.vertices), len(m.faces), coords, indices)
	default:
		return fmt.Errorf("%w: %v", ErrUnknownFormat, format)
	}
	if err != nil {
		return fmt.Errorf("mesh: save %s: %w", format, err)
	}
	return nil
}

// LoadFile is a convenience wrapper returning a freshly loaded mesh.
func LoadFile(path string) (*IndexedMesh, error) {
	m := New()
	if err := m.LoadFromFile(path); err != nil {
		return nil, err
	}
	return m, nil
}
