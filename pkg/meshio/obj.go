package meshio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// LoadOBJ reads the OBJ file at path.
func LoadOBJ(path string) (coords []float64, faces []int, err error) {
	return loadFile(path, ReadOBJ)
}

// ReadOBJ parses OBJ geometry: `v` and `f` statements. Texture and normal
// references in face tokens are ignored, negative indices count back from the
// last vertex read so far, and every other statement is skipped.
func ReadOBJ(r io.Reader) (coords []float64, faces []int, err error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return nil, nil, malformed("line %d: vertex needs 3 coordinates", lineNo)
			}
			for _, s := range fields[1:4] {
				f, err := strconv.ParseFloat(s, 64)
				if err != nil {
					return nil, nil, malformed("line %d: %v", lineNo, err)
				}
				coords = append(coords, f)
			}
		case "f":
			if len(fields) < 4 {
				return nil, nil, malformed("line %d: face needs at least 3 vertices", lineNo)
			}
			vertexCount := len(coords) / 3
			polygon := make([]int, 0, len(fields)-1)
			for _, tok := range fields[1:] {
				idx, err := objIndex(tok, vertexCount)
				if err != nil {
					return nil, nil, malformed("line %d: %v", lineNo, err)
				}
				polygon = append(polygon, idx)
			}
			faces = fan(faces, polygon)
		}
	}
	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, nil, malformed("line %d: %v", lineNo+1, err)
		}
		return nil, nil, fmt.Errorf("meshio: read obj: %w", err)
	}
	return coords, faces, nil
}

// objIndex resolves a face token ("7", "7/2", "7//3", "-1/-1/-1") into a
// zero-based vertex index.
func objIndex(tok string, vertexCount int) (int, error) {
	head, _, _ := strings.Cut(tok, "/")
	i, err := strconv.Atoi(head)
	if err != nil {
		return 0, fmt.Errorf("bad face token %q", tok)
	}
	switch {
	case i > 0:
		i--
	case i < 0:
		i += vertexCount
	default:
		return 0, fmt.Errorf("face token %q: index 0 is invalid", tok)
	}
	if i < 0 || i >= vertexCount {
		return 0, fmt.Errorf("face token %q references vertex outside [1,%d]", tok, vertexCount)
	}
	return i, nil
}

// SaveOBJ writes vertexCount vertices and faceCount triangles to path.
func SaveOBJ(path string, vertexCount, faceCount int, coords []float64, faces []int) error {
	if err := checkBuffers(vertexCount, faceCount, coords, faces); err != nil {
		return err
	}
	return saveFile(path, func(w io.Writer) error {
		return WriteOBJ(w, vertexCount, faceCount, coords, faces)
	})
}

// WriteOBJ writes the buffers as OBJ with one-based indices.
func WriteOBJ(w io.Writer, vertexCount, faceCount int, coords []float64, faces []int) error {
	if err := checkBuffers(vertexCount, faceCount, coords, faces); err != nil {
		return err
	}
	for _, p := range lo.Chunk(coords[:3*vertexCount], 3) {
		if _, err := fmt.Fprintf(w, "v %s %s %s\n", formatFloat(p[0]), formatFloat(p[1]), formatFloat(p[2])); err != nil {
			return err
		}
	}
	for _, t := range lo.Chunk(faces[:3*faceCount], 3) {
		if _, err := fmt.Fprintf(w, "f %d %d %d\n", t[0]+1, t[1]+1, t[2]+1); err != nil {
			return err
		}
	}
	return nil
}
