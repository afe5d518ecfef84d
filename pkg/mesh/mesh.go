// Package mesh implements IndexedMesh, a compact triangle mesh made of a
// dense vertex table and a dense table of index triples into it.
//
// An IndexedMesh has single-owner value semantics: mutators assume exclusive
// access, and read-only queries may run concurrently only while no mutator
// runs. Index arguments outside the tables are contract violations and panic.
package mesh

import (
	"fmt"

	"github.com/chazu/trimesh/pkg/halfedge"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Face is a triangle given as three indices into the vertex table.
type Face [3]int

// IndexedMesh is a triangle mesh stored as a vertex table and a face table.
type IndexedMesh struct {
	vertices []v3.Vec
	faces    []Face
}

// New returns an empty mesh.
func New() *IndexedMesh {
	return &IndexedMesh{}
}

// FromVectors builds a mesh from a vertex table and a face table. Both slices
// are copied. Every face index must address the vertex table.
func FromVectors(vertices []v3.Vec, faces []Face) (*IndexedMesh, error) {
	m := &IndexedMesh{
		vertices: append([]v3.Vec(nil), vertices...),
		faces:    append([]Face(nil), faces...),
	}
	for i, f := range m.faces {
		if !m.validFace(f) {
			return nil, fmt.Errorf("mesh: face %d %v references a vertex outside [0,%d)", i, f, len(m.vertices))
		}
	}
	return m, nil
}

// FromBuffers builds a mesh from flat buffers: three coordinates per vertex
// and three indices per face, as exchanged with file codecs.
func FromBuffers(coords []float64, indices []int) (*IndexedMesh, error) {
	if len(coords)%3 != 0 {
		return nil, fmt.Errorf("mesh: coordinate buffer length %d is not a multiple of 3", len(coords))
	}
	if len(indices)%3 != 0 {
		return nil, fmt.Errorf("mesh: index buffer length %d is not a multiple of 3", len(indices))
	}
	vertices := make([]v3.Vec, len(coords)/3)
	for i := range vertices {
		vertices[i] = v3.Vec{X: coords[3*i], Y: coords[3*i+1], Z: coords[3*i+2]}
	}
	faces := make([]Face, len(indices)/3)
	for i := range faces {
		faces[i] = Face{indices[3*i], indices[3*i+1], indices[3*i+2]}
	}
	return FromVectors(vertices, faces)
}

// FromHalfEdge converts a half-edge mesh. Vertices are numbered densely in
// enumeration order; faces keep enumeration order and are re-indexed through
// the source vertex ids, whatever values those ids take.
func FromHalfEdge(src halfedge.Mesh) (*IndexedMesh, error) {
	handles := src.Vertices()
	m := &IndexedMesh{
		vertices: make([]v3.Vec, len(handles)),
		faces:    make([]Face, 0, src.FaceCount()),
	}
	ids := make(map[int]int, len(handles))
	for i, v := range handles {
		ids[src.VertexID(v)] = i
		m.vertices[i] = src.Coordinate(v)
	}
	for _, f := range src.Faces() {
		var face Face
		for c, v := range src.Corners(f) {
			idx, ok := ids[src.VertexID(v)]
			if !ok {
				return nil, fmt.Errorf("mesh: face corner id %d: %w", src.VertexID(v), halfedge.ErrDanglingCorner)
			}
			face[c] = idx
		}
		m.faces = append(m.faces, face)
	}
	return m, nil
}

// Clone returns a deep copy of m.
func (m *IndexedMesh) Clone() *IndexedMesh {
	return &IndexedMesh{
		vertices: append([]v3.Vec(nil), m.vertices...),
		faces:    append([]Face(nil), m.faces...),
	}
}

// Clear removes every vertex and face.
func (m *IndexedMesh) Clear() {
	m.vertices = m.vertices[:0]
	m.faces = m.faces[:0]
}

// VertexCount returns the number of vertices.
func (m *IndexedMesh) VertexCount() int {
	return len(m.vertices)
}

// FaceCount returns the number of faces.
func (m *IndexedMesh) FaceCount() int {
	return len(m.faces)
}

// IsEmpty returns true if the mesh has no vertices.
func (m *IndexedMesh) IsEmpty() bool {
	return len(m.vertices) == 0
}

// Vertex returns the position of vertex v.
func (m *IndexedMesh) Vertex(v int) v3.Vec {
	m.checkVertex(v)
	return m.vertices[v]
}

// Face returns the index triple of face f.
func (m *IndexedMesh) Face(f int) Face {
	m.checkFace(f)
	return m.faces[f]
}

// Vertices returns a copy of the vertex table.
func (m *IndexedMesh) Vertices() []v3.Vec {
	return append([]v3.Vec(nil), m.vertices...)
}

// Faces returns a copy of the face table.
func (m *IndexedMesh) Faces() []Face {
	return append([]Face(nil), m.faces...)
}

// SetVertex moves vertex v to p.
func (m *IndexedMesh) SetVertex(v int, p v3.Vec) {
	m.checkVertex(v)
	m.vertices[v] = p
}

// SetFace replaces the index triple of face f.
func (m *IndexedMesh) SetFace(f int, face Face) {
	m.checkFace(f)
	m.checkIndices(face)
	m.faces[f] = face
}

// AddVertex appends a vertex and returns its index.
func (m *IndexedMesh) AddVertex(p v3.Vec) int {
	m.vertices = append(m.vertices, p)
	return len(m.vertices) - 1
}

// AddFace appends a face and returns its index.
func (m *IndexedMesh) AddFace(i0, i1, i2 int) int {
	face := Face{i0, i1, i2}
	m.checkIndices(face)
	m.faces = append(m.faces, face)
	return len(m.faces) - 1
}

// RemoveFace deletes face f. Later faces shift down by one.
func (m *IndexedMesh) RemoveFace(f int) {
	m.checkFace(f)
	m.faces = append(m.faces[:f], m.faces[f+1:]...)
}

// RemoveVertex deletes vertex v together with every face using it. Indices
// above v are decremented so the remaining faces stay valid.
func (m *IndexedMesh) RemoveVertex(v int) {
	m.checkVertex(v)
	m.vertices = append(m.vertices[:v], m.vertices[v+1:]...)
	kept := m.faces[:0]
	for _, f := range m.faces {
		if f[0] == v || f[1] == v || f[2] == v {
			continue
		}
		for c := range f {
			if f[c] > v {
				f[c]--
			}
		}
		kept = append(kept, f)
	}
	m.faces = kept
}

// ResizeVertices grows or shrinks the vertex table. New vertices sit at the
// origin. Shrinking below an index still used by a face is a contract
// violation.
func (m *IndexedMesh) ResizeVertices(n int) {
	if n < 0 {
		panic(fmt.Sprintf("mesh: negative vertex count %d", n))
	}
	if n <= len(m.vertices) {
		for i, f := range m.faces {
			if f[0] >= n || f[1] >= n || f[2] >= n {
				panic(fmt.Sprintf("mesh: resize to %d vertices orphans face %d %v", n, i, f))
			}
		}
		m.vertices = m.vertices[:n]
		return
	}
	m.vertices = append(m.vertices, make([]v3.Vec, n-len(m.vertices))...)
}

// ResizeFaces grows or shrinks the face table. New faces are (0, 0, 0) and
// require at least one vertex.
func (m *IndexedMesh) ResizeFaces(n int) {
	if n < 0 {
		panic(fmt.Sprintf("mesh: negative face count %d", n))
	}
	if n <= len(m.faces) {
		m.faces = m.faces[:n]
		return
	}
	if len(m.vertices) == 0 {
		panic("mesh: cannot grow the face table of a mesh without vertices")
	}
	m.faces = append(m.faces, make([]Face, n-len(m.faces))...)
}

// Buffers flattens the mesh into codec buffers.
func (m *IndexedMesh) Buffers() (coords []float64, indices []int) {
	coords = make([]float64, 0, 3*len(m.vertices))
	for _, p := range m.vertices {
		coords = append(coords, p.X, p.Y, p.Z)
	}
	indices = make([]int, 0, 3*len(m.faces))
	for _, f := range m.faces {
		indices = append(indices, f[0], f[1], f[2])
	}
	return coords, indices
}

func (m *IndexedMesh) validFace(f Face) bool {
	for _, i := range f {
		if i < 0 || i >= len(m.vertices) {
			return false
		}
	}
	return true
}

func (m *IndexedMesh) checkVertex(v int) {
	if v < 0 || v >= len(m.vertices) {
		panic(fmt.Sprintf("mesh: vertex index %d out of range [0,%d)", v, len(m.vertices)))
	}
}

func (m *IndexedMesh) checkFace(f int) {
	if f < 0 || f >= len(m.faces) {
		panic(fmt.Sprintf("mesh: face index %d out of range [0,%d)", f, len(m.faces)))
	}
}

func (m *IndexedMesh) checkIndices(face Face) {
	if !m.validFace(face) {
		panic(fmt.Sprintf("mesh: face %v references a vertex outside [0,%d)", face, len(m.vertices)))
	}
}
