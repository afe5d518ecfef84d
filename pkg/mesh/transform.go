package mesh

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// BoundingBox returns the axis-aligned box enclosing every vertex. An empty
// mesh has a zero box.
func (m *IndexedMesh) BoundingBox() sdf.Box3 {
	if len(m.vertices) == 0 {
		return sdf.Box3{}
	}
	lo, hi := m.vertices[0], m.vertices[0]
	for _, p := range m.vertices[1:] {
		lo = v3.Vec{X: math.Min(lo.X, p.X), Y: math.Min(lo.Y, p.Y), Z: math.Min(lo.Z, p.Z)}
		hi = v3.Vec{X: math.Max(hi.X, p.X), Y: math.Max(hi.Y, p.Y), Z: math.Max(hi.Z, p.Z)}
	}
	return sdf.Box3{Min: lo, Max: hi}
}

// Translate adds delta to every vertex.
func (m *IndexedMesh) Translate(delta v3.Vec) {
	for i := range m.vertices {
		m.vertices[i] = m.vertices[i].Add(delta)
	}
}

// Rotate applies the linear part of rot to every vertex around centroid.
// Any translation carried by rot is ignored.
func (m *IndexedMesh) Rotate(rot sdf.M44, centroid v3.Vec) {
	origin := rot.MulPosition(v3.Vec{})
	for i, p := range m.vertices {
		q := rot.MulPosition(p.Sub(centroid)).Sub(origin)
		m.vertices[i] = q.Add(centroid)
	}
}

// RotateAxis rotates every vertex by angle radians around the axis through
// centroid with direction axis (right-hand rule).
func (m *IndexedMesh) RotateAxis(axis v3.Vec, angle float64, centroid v3.Vec) {
	m.Rotate(sdf.Rotate3d(axis, angle), centroid)
}

// Scale multiplies every vertex component-wise by factor. Unless all three
// components are strictly positive the mesh is left unchanged.
func (m *IndexedMesh) Scale(factor v3.Vec) {
	if !(factor.X > 0 && factor.Y > 0 && factor.Z > 0) {
		return
	}
	for i := range m.vertices {
		m.vertices[i] = m.vertices[i].Mul(factor)
	}
}

// ScaleUniform scales all three axes by factor, under the same positivity
// rule as Scale.
func (m *IndexedMesh) ScaleUniform(factor float64) {
	m.Scale(v3.Vec{X: factor, Y: factor, Z: factor})
}

// Fit remaps the mesh so that its current bounding box lands on box.
func (m *IndexedMesh) Fit(box sdf.Box3) {
	m.ScaleBox(m.BoundingBox(), box)
}

// ScaleBox remaps every vertex affinely so that from maps onto to:
// p' = (p - from.Center) * (to.Size / from.Size) + to.Center, per axis.
// An axis on which from has zero extent keeps a ratio of 1, so coordinates
// on that axis are only re-centred.
func (m *IndexedMesh) ScaleBox(from, to sdf.Box3) {
	oldCenter, newCenter := from.Center(), to.Center()
	ratio := boxRatio(from.Size(), to.Size())
	for i, p := range m.vertices {
		m.vertices[i] = p.Sub(oldCenter).Mul(ratio).Add(newCenter)
	}
}

func boxRatio(oldSize, newSize v3.Vec) v3.Vec {
	axis := func(o, n float64) float64 {
		if o == 0 {
			return 1
		}
		return n / o
	}
	return v3.Vec{
		X: axis(oldSize.X, newSize.X),
		Y: axis(oldSize.Y, newSize.Y),
		Z: axis(oldSize.Z, newSize.Z),
	}
}
