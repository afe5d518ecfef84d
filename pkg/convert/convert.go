// Package convert flattens half-edge meshes into coordinate and face-index
// buffers, optionally recording which half-edge vertex and face each output
// entry came from so results computed on the flat mesh can be mapped back.
package convert

import (
	"fmt"

	"github.com/chazu/trimesh/pkg/halfedge"
	"github.com/chazu/trimesh/pkg/mesh"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/samber/lo"
)

// Provenance selects which source mappings VectorMesh records.
type Provenance uint8

const (
	ProvenanceNone     Provenance = 0
	ProvenanceVertices Provenance = 1 << 0
	ProvenanceFaces    Provenance = 1 << 1
	ProvenanceBoth                = ProvenanceVertices | ProvenanceFaces
)

// Options configures VectorMesh.
type Options struct {
	Provenance Provenance
}

// Result holds the flattened mesh. VertexSources and FaceSources are nil
// unless requested; when present, VertexSources[i] is the half-edge vertex
// that produced Coords[i] and FaceSources[i] the face that produced Faces[i].
type Result struct {
	Coords        []v3.Vec
	Faces         []mesh.Face
	VertexSources []halfedge.VertexHandle
	FaceSources   []halfedge.FaceHandle
}

// VectorFaces lists every face of src in enumeration order.
func VectorFaces(src halfedge.Mesh) []halfedge.FaceHandle {
	return append([]halfedge.FaceHandle(nil), src.Faces()...)
}

// FaceRecords lists mutable records for every face of d in enumeration
// order. The pointers are invalidated by the next AddFace on d.
func FaceRecords(d *halfedge.Dcel) []*halfedge.Face {
	return lo.Map(d.Faces(), func(f halfedge.FaceHandle, _ int) *halfedge.Face {
		return d.Face(f)
	})
}

// VectorMesh flattens src. Every vertex gets a dense output index in
// enumeration order, assigned in a single pass before any face is read;
// faces are then re-indexed through the source vertex ids.
func VectorMesh(src halfedge.Mesh, opts Options) (*Result, error) {
	vertices := src.Vertices()
	faces := src.Faces()

	res := &Result{
		Coords: make([]v3.Vec, len(vertices)),
		Faces:  make([]mesh.Face, len(faces)),
	}
	if opts.Provenance&ProvenanceVertices != 0 {
		res.VertexSources = make([]halfedge.VertexHandle, len(vertices))
	}
	if opts.Provenance&ProvenanceFaces != 0 {
		res.FaceSources = make([]halfedge.FaceHandle, len(faces))
	}

	ids := make(map[int]int, len(vertices))
	for i, v := range vertices {
		ids[src.VertexID(v)] = i
		res.Coords[i] = src.Coordinate(v)
		if res.VertexSources != nil {
			res.VertexSources[i] = v
		}
	}

	for i, f := range faces {
		for c, v := range src.Corners(f) {
			id := src.VertexID(v)
			idx, ok := ids[id]
			if !ok {
				return nil, fmt.Errorf("convert: face %d corner %d (vertex id %d): %w", i, c, id, halfedge.ErrDanglingCorner)
			}
			res.Faces[i][c] = idx
		}
		if res.FaceSources != nil {
			res.FaceSources[i] = f
		}
	}
	return res, nil
}

// Mesh copies the result into a new IndexedMesh.
func (r *Result) Mesh() *mesh.IndexedMesh {
	m, err := mesh.FromVectors(r.Coords, r.Faces)
	if err != nil {
		// VectorMesh only emits indices into Coords.
		panic(fmt.Sprintf("convert: inconsistent result: %v", err))
	}
	return m
}

// Buffers flattens the result into codec buffers.
func (r *Result) Buffers() (coords []float64, indices []int) {
	coords = lo.FlatMap(r.Coords, func(p v3.Vec, _ int) []float64 {
		return []float64{p.X, p.Y, p.Z}
	})
	indices = lo.FlatMap(r.Faces, func(f mesh.Face, _ int) []int {
		return f[:]
	})
	return coords, indices
}
