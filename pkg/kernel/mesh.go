package kernel

import (
	"math"

	"github.com/chazu/trimesh/pkg/halfedge"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// DefaultWeldTolerance is the grid spacing used to merge coincident
// triangle-soup corners into shared vertices.
const DefaultWeldTolerance = 1e-9

// Welder accumulates a triangle soup into a half-edge mesh, merging corners
// that fall into the same tolerance cell.
type Welder struct {
	tol       float64
	mesh      *halfedge.Dcel
	cells     map[[3]int64]halfedge.VertexHandle
	collapsed int
}

// NewWelder returns a Welder with the given tolerance. Non-positive values
// select DefaultWeldTolerance.
func NewWelder(tol float64) *Welder {
	if tol <= 0 {
		tol = DefaultWeldTolerance
	}
	return &Welder{
		tol:   tol,
		mesh:  halfedge.New(),
		cells: make(map[[3]int64]halfedge.VertexHandle),
	}
}

func (w *Welder) vertex(p v3.Vec) halfedge.VertexHandle {
	key := [3]int64{
		int64(math.Round(p.X / w.tol)),
		int64(math.Round(p.Y / w.tol)),
		int64(math.Round(p.Z / w.tol)),
	}
	if h, ok := w.cells[key]; ok {
		return h
	}
	h := w.mesh.AddVertex(p)
	w.cells[key] = h
	return h
}

// AddTriangle welds the corners of a triangle and adds it as a face.
// Triangles whose corners weld together are dropped and counted.
func (w *Welder) AddTriangle(a, b, c v3.Vec) {
	va, vb, vc := w.vertex(a), w.vertex(b), w.vertex(c)
	if va == vb || vb == vc || va == vc {
		w.collapsed++
		return
	}
	// Corners are live and distinct, so AddFace cannot fail.
	_, _ = w.mesh.AddFace(va, vb, vc)
}

// Collapsed returns the number of triangles dropped by welding.
func (w *Welder) Collapsed() int {
	return w.collapsed
}

// Mesh returns the welded half-edge mesh.
func (w *Welder) Mesh() *halfedge.Dcel {
	return w.mesh
}
