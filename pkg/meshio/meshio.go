// Package meshio reads and writes triangle meshes in Wavefront OBJ and
// Stanford PLY format. Meshes travel as flat buffers: three coordinates per
// vertex and three zero-based vertex indices per triangle. Polygons wider
// than a triangle are fan-triangulated on load.
package meshio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
)

// ErrMalformed is wrapped by every error caused by file content rather than
// by the file system.
var ErrMalformed = errors.New("meshio: malformed mesh data")

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(format, args...))
}

// checkBuffers validates the buffers handed to a writer.
func checkBuffers(vertexCount, faceCount int, coords []float64, faces []int) error {
	if vertexCount < 0 || faceCount < 0 {
		return fmt.Errorf("meshio: negative element count (%d vertices, %d faces)", vertexCount, faceCount)
	}
	if len(coords) < 3*vertexCount {
		return fmt.Errorf("meshio: %d coordinates cannot hold %d vertices", len(coords), vertexCount)
	}
	if len(faces) < 3*faceCount {
		return fmt.Errorf("meshio: %d indices cannot hold %d faces", len(faces), faceCount)
	}
	for i, idx := range faces[:3*faceCount] {
		if idx < 0 || idx >= vertexCount {
			return fmt.Errorf("meshio: face %d references vertex %d outside [0,%d)", i/3, idx, vertexCount)
		}
	}
	return nil
}

// fan appends the fan triangulation of polygon to faces.
func fan(faces []int, polygon []int) []int {
	for i := 1; i+1 < len(polygon); i++ {
		faces = append(faces, polygon[0], polygon[i], polygon[i+1])
	}
	return faces
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// loadFile opens path and hands it to read.
func loadFile(path string, read func(io.Reader) ([]float64, []int, error)) ([]float64, []int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("meshio: %w", err)
	}
	defer f.Close()

	coords, faces, err := read(bufio.NewReader(f))
	if err != nil {
		return nil, nil, fmt.Errorf("meshio: %s: %w", path, err)
	}
	return coords, faces, nil
}

// saveFile creates path and hands a buffered writer to write.
func saveFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("meshio: %w", err)
	}
	w := bufio.NewWriter(f)
	if err := write(w); err != nil {
		f.Close()
		return fmt.Errorf("meshio: %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("meshio: %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("meshio: %s: %w", path, err)
	}
	return nil
}
