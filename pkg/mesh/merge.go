package mesh

import (
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Merge returns a new mesh holding m1 followed by m2. Coincident vertices are
// not deduplicated; faces of m2 are shifted by m1.VertexCount().
func Merge(m1, m2 *IndexedMesh) *IndexedMesh {
	result := New()
	MergeInto(result, m1, m2)
	return result
}

// MergeInto stores the merge of m1 and m2 in result, replacing its content.
// result may alias m1 or m2.
func MergeInto(result, m1, m2 *IndexedMesh) {
	vertices := make([]v3.Vec, 0, len(m1.vertices)+len(m2.vertices))
	vertices = append(vertices, m1.vertices...)
	vertices = append(vertices, m2.vertices...)

	faces := make([]Face, 0, len(m1.faces)+len(m2.faces))
	faces = append(faces, m1.faces...)
	start := len(m1.vertices)
	for _, f := range m2.faces {
		faces = append(faces, Face{f[0] + start, f[1] + start, f[2] + start})
	}

	result.vertices = vertices
	result.faces = faces
}

// Append merges other into m in place.
func (m *IndexedMesh) Append(other *IndexedMesh) {
	MergeInto(m, m, other)
}
