package main

import (
	"fmt"
	"log"

	"github.com/chazu/trimesh/pkg/engine"
	"github.com/chazu/trimesh/pkg/mesh"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/samber/lo"
)

// colorPalette is a default palette used to assign distinct colors to meshes.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App runs mesh scripts and flattens the exported meshes into render-ready
// buffers.
type App struct {
	engine *engine.Engine
}

// MeshData is the JSON-serializable mesh format written by -json.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	PartName string    `json:"partName"`
	Color    string    `json:"color"`
}

// EvalErrorData is a JSON-serializable eval error.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result of one script run.
type EvalResult struct {
	Meshes   []MeshData      `json:"meshes"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`

	// scene keeps the exported meshes for callers that save them.
	scene *engine.Scene
}

// NewApp creates a new App. Options are passed to the engine.
func NewApp(opts ...engine.Option) *App {
	return &App{engine: engine.NewEngine(opts...)}
}

// Evaluate takes Lisp source and returns mesh data + errors.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{
		Meshes:   []MeshData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}

	// Step 1: Evaluate the Lisp source into a scene of exported meshes.
	scene, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		log.Printf("Evaluate fatal error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{
			Line:    0,
			Col:     0,
			Message: err.Error(),
		})
		return result
	}

	// Step 2: Convert eval errors.
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result
	}
	result.scene = scene

	// Step 3: Flatten every exported mesh, in export order.
	for i, name := range scene.Names() {
		m := scene.Lookup(name)
		if n := countDegenerate(m); n > 0 {
			result.Warnings = append(result.Warnings, EvalErrorData{
				Message: fmt.Sprintf("mesh %q has %d degenerate faces", name, n),
			})
		}
		result.Meshes = append(result.Meshes, meshData(name, m, colorPalette[i%len(colorPalette)]))
	}

	return result
}

// meshData flattens m into float32 vertex and normal buffers and a uint32
// index buffer.
func meshData(name string, m *mesh.IndexedMesh, color string) MeshData {
	toFloat32 := func(p v3.Vec, _ int) []float32 {
		return []float32{float32(p.X), float32(p.Y), float32(p.Z)}
	}
	return MeshData{
		Vertices: lo.FlatMap(m.Vertices(), toFloat32),
		Normals:  lo.FlatMap(m.VertexNormals(), toFloat32),
		Indices: lo.FlatMap(m.Faces(), func(f mesh.Face, _ int) []uint32 {
			return []uint32{uint32(f[0]), uint32(f[1]), uint32(f[2])}
		}),
		PartName: name,
		Color:    color,
	}
}

func countDegenerate(m *mesh.IndexedMesh) int {
	n := 0
	for f := 0; f < m.FaceCount(); f++ {
		if m.IsDegenerateTriangle(f, 0) {
			n++
		}
	}
	return n
}
