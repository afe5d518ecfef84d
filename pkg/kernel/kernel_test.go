package kernel

import (
	"testing"

	"github.com/chazu/trimesh/pkg/halfedge"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// --- Welder tests ---

func TestWelderSharesCorners(t *testing.T) {
	w := NewWelder(0)
	a := v3.Vec{X: 0, Y: 0, Z: 0}
	b := v3.Vec{X: 1, Y: 0, Z: 0}
	c := v3.Vec{X: 0, Y: 1, Z: 0}
	d := v3.Vec{X: 1, Y: 1, Z: 0}
	w.AddTriangle(a, b, c)
	w.AddTriangle(c, b, d)

	m := w.Mesh()
	if m.VertexCount() != 4 {
		t.Errorf("VertexCount() = %d, want 4", m.VertexCount())
	}
	if m.FaceCount() != 2 {
		t.Errorf("FaceCount() = %d, want 2", m.FaceCount())
	}
	if w.Collapsed() != 0 {
		t.Errorf("Collapsed() = %d, want 0", w.Collapsed())
	}

	// The shared edge b-c is linked as twins.
	twins := 0
	for _, f := range m.Faces() {
		for _, e := range m.FaceEdges(f) {
			if !m.IsBoundaryEdge(e) {
				twins++
			}
		}
	}
	if twins != 2 {
		t.Errorf("linked half-edges = %d, want 2", twins)
	}
}

func TestWelderTolerance(t *testing.T) {
	tests := []struct {
		name      string
		tol       float64
		wantVerts int
	}{
		{"default tolerance keeps nearby corners apart", 0, 5},
		{"coarse tolerance merges nearby corners", 1e-3, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWelder(tt.tol)
			w.AddTriangle(v3.Vec{X: 0}, v3.Vec{X: 1}, v3.Vec{Y: 1})
			w.AddTriangle(v3.Vec{X: 1.0001}, v3.Vec{X: 2}, v3.Vec{Y: 1})
			if got := w.Mesh().VertexCount(); got != tt.wantVerts {
				t.Errorf("VertexCount() = %d, want %d", got, tt.wantVerts)
			}
		})
	}
}

func TestWelderDropsCollapsedTriangles(t *testing.T) {
	w := NewWelder(0.5)
	w.AddTriangle(v3.Vec{X: 0}, v3.Vec{X: 0.1}, v3.Vec{Y: 3})
	if w.Mesh().FaceCount() != 0 {
		t.Errorf("FaceCount() = %d, want 0", w.Mesh().FaceCount())
	}
	if w.Collapsed() != 1 {
		t.Errorf("Collapsed() = %d, want 1", w.Collapsed())
	}
}

// --- Compile-time interface check with a stub kernel ---

// stubSolid is a minimal Solid implementation for testing.
type stubSolid struct {
	minBB, maxBB [3]float64
}

func (s *stubSolid) BoundingBox() (min, max [3]float64) {
	return s.minBB, s.maxBB
}

// stubKernel is a minimal Kernel implementation that proves the interface
// is satisfiable. All methods return trivial results.
type stubKernel struct{}

func (k *stubKernel) Box(x, y, z float64) Solid {
	return &stubSolid{
		minBB: [3]float64{0, 0, 0},
		maxBB: [3]float64{x, y, z},
	}
}

func (k *stubKernel) Cylinder(height, radius float64, _ int) Solid {
	return &stubSolid{
		minBB: [3]float64{-radius, -radius, 0},
		maxBB: [3]float64{radius, radius, height},
	}
}

func (k *stubKernel) Sphere(radius float64) Solid {
	return &stubSolid{
		minBB: [3]float64{-radius, -radius, -radius},
		maxBB: [3]float64{radius, radius, radius},
	}
}

func (k *stubKernel) Union(a, _ Solid) Solid        { return a }
func (k *stubKernel) Difference(a, _ Solid) Solid   { return a }
func (k *stubKernel) Intersection(a, _ Solid) Solid { return a }

func (k *stubKernel) Translate(s Solid, _, _, _ float64) Solid { return s }
func (k *stubKernel) Rotate(s Solid, _, _, _ float64) Solid    { return s }

func (k *stubKernel) ToMesh(_ Solid) (*halfedge.Dcel, error) {
	return halfedge.New(), nil
}

// Compile-time checks that the stubs implement the interfaces.
var _ Solid = (*stubSolid)(nil)
var _ Kernel = (*stubKernel)(nil)

func TestStubKernelBoxBoundingBox(t *testing.T) {
	var k Kernel = &stubKernel{}
	s := k.Box(10, 20, 30)
	min, max := s.BoundingBox()
	if min != [3]float64{0, 0, 0} {
		t.Errorf("Box min = %v, want [0 0 0]", min)
	}
	if max != [3]float64{10, 20, 30} {
		t.Errorf("Box max = %v, want [10 20 30]", max)
	}
}

func TestStubKernelToMesh(t *testing.T) {
	var k Kernel = &stubKernel{}
	m, err := k.ToMesh(k.Box(1, 1, 1))
	if err != nil {
		t.Fatalf("ToMesh() error = %v", err)
	}
	if m == nil {
		t.Fatal("ToMesh() returned nil mesh")
	}
	if m.VertexCount() != 0 || m.FaceCount() != 0 {
		t.Error("stub ToMesh() should return empty mesh")
	}
}
