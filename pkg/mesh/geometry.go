package mesh

import (
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// faceCross returns (v1-v0) x (v2-v0) for face f.
func (m *IndexedMesh) faceCross(f int) v3.Vec {
	m.checkFace(f)
	face := m.faces[f]
	v0 := m.vertices[face[0]]
	e1 := m.vertices[face[1]].Sub(v0)
	e2 := m.vertices[face[2]].Sub(v0)
	return e1.Cross(e2)
}

// FaceNormal returns the unit normal of face f, oriented by the right-hand
// rule over its corner order. A degenerate face yields the zero vector.
func (m *IndexedMesh) FaceNormal(f int) v3.Vec {
	n := m.faceCross(f)
	l := n.Length()
	if l == 0 {
		return v3.Vec{}
	}
	return n.DivScalar(l)
}

// FaceArea returns the area of face f.
func (m *IndexedMesh) FaceArea(f int) float64 {
	return m.faceCross(f).Length() / 2
}

// FaceBarycenter returns the average of the three corners of face f.
func (m *IndexedMesh) FaceBarycenter(f int) v3.Vec {
	m.checkFace(f)
	face := m.faces[f]
	sum := m.vertices[face[0]].Add(m.vertices[face[1]]).Add(m.vertices[face[2]])
	return sum.DivScalar(3)
}

// VertexNormal averages the normals of the faces incident to v. A face that
// uses v in several corners contributes once per corner. Isolated vertices
// yield the zero vector. The result is not cached: every call scans all faces.
func (m *IndexedMesh) VertexNormal(v int) v3.Vec {
	m.checkVertex(v)
	var sum v3.Vec
	n := 0
	for f, face := range m.faces {
		for _, i := range face {
			if i == v {
				sum = sum.Add(m.FaceNormal(f))
				n++
			}
		}
	}
	if n == 0 {
		return v3.Vec{}
	}
	return sum.DivScalar(float64(n))
}

// VertexNormals returns VertexNormal for every vertex in a single pass over
// the faces.
func (m *IndexedMesh) VertexNormals() []v3.Vec {
	normals := make([]v3.Vec, len(m.vertices))
	counts := make([]int, len(m.vertices))
	for f, face := range m.faces {
		n := m.FaceNormal(f)
		for _, i := range face {
			normals[i] = normals[i].Add(n)
			counts[i]++
		}
	}
	for v, c := range counts {
		if c > 0 {
			normals[v] = normals[v].DivScalar(float64(c))
		}
	}
	return normals
}

// IsDegenerateTriangle reports whether face f has area at most epsilon.
func (m *IndexedMesh) IsDegenerateTriangle(f int, epsilon float64) bool {
	return m.FaceArea(f) <= epsilon
}

// RemoveDegenerateTriangles drops every face with area at most epsilon,
// keeping the relative order of the remaining faces. Vertices are untouched.
// It returns the number of faces removed.
func (m *IndexedMesh) RemoveDegenerateTriangles(epsilon float64) int {
	w := 0
	for r := range m.faces {
		if m.IsDegenerateTriangle(r, epsilon) {
			continue
		}
		m.faces[w] = m.faces[r]
		w++
	}
	removed := len(m.faces) - w
	m.faces = m.faces[:w]
	return removed
}
