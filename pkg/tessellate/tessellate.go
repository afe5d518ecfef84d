// Package tessellate turns named kernel solids into indexed triangle meshes.
// Each solid is tessellated by the kernel into a half-edge mesh, then
// flattened by the converter. One mesh is produced per part.
package tessellate

import (
	"fmt"

	"github.com/chazu/trimesh/pkg/convert"
	"github.com/chazu/trimesh/pkg/halfedge"
	"github.com/chazu/trimesh/pkg/kernel"
	"github.com/chazu/trimesh/pkg/mesh"
	"github.com/samber/lo"
)

// Part is a named solid to tessellate.
type Part struct {
	Name  string
	Solid kernel.Solid
}

// Options configures Tessellate.
type Options struct {
	// KeepSource retains the half-edge mesh and provenance of every output.
	KeepSource bool
	// Epsilon drops faces whose area is at most this value. Zero still drops
	// zero-area faces; negative values keep every face.
	Epsilon float64
}

// Result is the tessellation of one part.
type Result struct {
	PartName string
	Mesh     *mesh.IndexedMesh
	// Removed counts degenerate faces dropped from Mesh.
	Removed int

	// Populated when Options.KeepSource is set. FaceSources[i] is the
	// half-edge face behind face i of Mesh.
	Source        *halfedge.Dcel
	VertexSources []halfedge.VertexHandle
	FaceSources   []halfedge.FaceHandle
}

// Tessellate produces one mesh per part using the provided geometry kernel,
// in part order. Parts are read-only.
func Tessellate(parts []Part, k kernel.Kernel, opts Options) ([]*Result, error) {
	results := make([]*Result, 0, len(parts))
	for i, p := range parts {
		if p.Solid == nil {
			return nil, fmt.Errorf("tessellate: part %d (%s) has no solid", i, p.Name)
		}
		r, err := tessellatePart(p, k, opts)
		if err != nil {
			return nil, fmt.Errorf("tessellate: part %s: %w", partName(p, i), err)
		}
		if r.PartName == "" {
			r.PartName = partName(p, i)
		}
		results = append(results, r)
	}
	return results, nil
}

func tessellatePart(p Part, k kernel.Kernel, opts Options) (*Result, error) {
	src, err := k.ToMesh(p.Solid)
	if err != nil {
		return nil, fmt.Errorf("ToMesh failed: %w", err)
	}

	provenance := convert.ProvenanceNone
	if opts.KeepSource {
		provenance = convert.ProvenanceBoth
	}
	flat, err := convert.VectorMesh(src, convert.Options{Provenance: provenance})
	if err != nil {
		return nil, err
	}

	r := &Result{PartName: p.Name, Mesh: flat.Mesh()}
	if opts.KeepSource {
		r.Source = src
		r.VertexSources = flat.VertexSources
		r.FaceSources = flat.FaceSources
		if opts.Epsilon >= 0 {
			r.FaceSources = lo.Filter(flat.FaceSources, func(_ halfedge.FaceHandle, i int) bool {
				return !r.Mesh.IsDegenerateTriangle(i, opts.Epsilon)
			})
		}
	}
	if opts.Epsilon >= 0 {
		r.Removed = r.Mesh.RemoveDegenerateTriangles(opts.Epsilon)
	}
	return r, nil
}

// partName prefers the part's Name and falls back to its position.
func partName(p Part, i int) string {
	if p.Name != "" {
		return p.Name
	}
	return fmt.Sprintf("part-%d", i)
}
