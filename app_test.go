package main

import (
	"os"
	"testing"

	"github.com/chazu/trimesh/pkg/engine"
	"github.com/chazu/trimesh/pkg/kernel/sdfx"
)

// testApp uses a coarse grid so tessellation stays fast.
func testApp(opts ...engine.Option) *App {
	k := sdfx.NewWithOptions(sdfx.Options{Cells: 24})
	return NewApp(append([]engine.Option{engine.WithKernel(k)}, opts...)...)
}

// TestE2EBracketExample exercises the full pipeline: Lisp source -> engine ->
// solids -> tessellate -> indexed meshes -> render buffers.
func TestE2EBracketExample(t *testing.T) {
	app := testApp()

	source, err := os.ReadFile("examples/bracket.tm")
	if err != nil {
		t.Fatalf("failed to read bracket.tm: %v", err)
	}

	result := app.Evaluate(string(source))

	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("eval error (line %d): %s", e.Line, e.Message)
		}
		t.FailNow()
	}

	wantNames := []string{"bracket", "preview", "pair"}
	if len(result.Meshes) != len(wantNames) {
		t.Fatalf("expected %d meshes, got %d", len(wantNames), len(result.Meshes))
	}
	for i, m := range result.Meshes {
		if m.PartName != wantNames[i] {
			t.Errorf("mesh %d: name %q, want %q", i, m.PartName, wantNames[i])
		}
		if len(m.Vertices) == 0 || len(m.Indices) == 0 {
			t.Errorf("mesh %q: empty geometry", m.PartName)
		}
		if len(m.Normals) != len(m.Vertices) {
			t.Errorf("mesh %q: %d normal components for %d vertex components",
				m.PartName, len(m.Normals), len(m.Vertices))
		}
		if len(m.Indices)%3 != 0 {
			t.Errorf("mesh %q: index count %d not a multiple of 3", m.PartName, len(m.Indices))
		}
		if m.Color == "" {
			t.Errorf("mesh %q: no color assigned", m.PartName)
		}
	}

	// The preview is fitted into the unit cube.
	for i, c := range result.Meshes[1].Vertices {
		if c < -1e-5 || c > 1+1e-5 {
			t.Fatalf("preview coordinate %d = %g outside [0,1]", i, c)
		}
	}

	// The pair holds two copies of the bracket.
	if got, want := len(result.Meshes[2].Vertices), 2*len(result.Meshes[0].Vertices); got != want {
		t.Errorf("pair has %d vertex components, want %d", got, want)
	}
}

func TestE2EPrimitivesExample(t *testing.T) {
	source, err := os.ReadFile("examples/primitives.tm")
	if err != nil {
		t.Fatalf("failed to read primitives.tm: %v", err)
	}
	result := testApp().Evaluate(string(source))
	if len(result.Errors) > 0 {
		t.Fatalf("eval errors: %v", result.Errors)
	}
	if len(result.Meshes) != 5 {
		t.Fatalf("expected 5 meshes, got %d", len(result.Meshes))
	}
}

// TestE2EEmptySource ensures the pipeline handles empty input gracefully.
func TestE2EEmptySource(t *testing.T) {
	app := testApp()
	result := app.Evaluate("")

	if len(result.Errors) > 0 {
		t.Errorf("unexpected errors for empty source: %v", result.Errors)
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes for empty source, got %d", len(result.Meshes))
	}
}

// TestE2ESyntaxError ensures eval errors are reported, not fatal errors.
func TestE2ESyntaxError(t *testing.T) {
	app := testApp()
	result := app.Evaluate(`(export "test"`)

	if len(result.Errors) == 0 {
		t.Fatal("expected eval errors for syntax error")
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes on error, got %d", len(result.Meshes))
	}
}

// TestE2ESingleBox ensures a minimal single-box source renders one mesh.
func TestE2ESingleBox(t *testing.T) {
	app := testApp()
	result := app.Evaluate(`(export "shelf" (mesh (box 60 30 10)))`)

	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("eval error: %s", e.Message)
		}
		t.FailNow()
	}
	if len(result.Meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(result.Meshes))
	}
	if result.Meshes[0].PartName != "shelf" {
		t.Errorf("expected part name 'shelf', got %q", result.Meshes[0].PartName)
	}
}
