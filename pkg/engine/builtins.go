package engine

import (
	"fmt"
	"math"
	"strings"

	"github.com/chazu/trimesh/pkg/kernel"
	"github.com/chazu/trimesh/pkg/mesh"
	"github.com/chazu/trimesh/pkg/tessellate"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/samber/lo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms mesh script source code before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: face-count -> face_count
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpVec3 wraps a v3.Vec.
type sexpVec3 struct {
	vec v3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpSolid wraps a kernel solid produced by the primitive and boolean builtins.
type sexpSolid struct {
	solid kernel.Solid
}

func (s *sexpSolid) SexpString(ps *zygo.PrintState) string {
	min, max := s.solid.BoundingBox()
	return fmt.Sprintf("(solid %v %v)", min, max)
}
func (s *sexpSolid) Type() *zygo.RegisteredType { return nil }

// sexpMesh wraps an indexed mesh. Builtins never mutate a wrapped mesh;
// every edit works on a clone so script values behave immutably.
type sexpMesh struct {
	m *mesh.IndexedMesh
}

func (m *sexpMesh) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(mesh %d vertices %d faces)", m.m.VertexCount(), m.m.FaceCount())
}
func (m *sexpMesh) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value: treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts an integer from a SexpInt.
func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toVec3 extracts a v3.Vec from a sexpVec3.
func toVec3(s zygo.Sexp) (v3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return v3.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toSolid extracts a kernel.Solid from a sexpSolid.
func toSolid(s zygo.Sexp) (kernel.Solid, error) {
	if v, ok := s.(*sexpSolid); ok {
		return v.solid, nil
	}
	return nil, fmt.Errorf("expected solid, got %T (%s)", s, s.SexpString(nil))
}

// toMesh extracts the mesh from a sexpMesh.
func toMesh(s zygo.Sexp) (*mesh.IndexedMesh, error) {
	if v, ok := s.(*sexpMesh); ok {
		return v.m, nil
	}
	return nil, fmt.Errorf("expected mesh, got %T (%s)", s, s.SexpString(nil))
}

// optVec3 reads an optional vec3 keyword argument.
func optVec3(a kwArgs, key string) (v3.Vec, bool, error) {
	s, ok := a.kw[key]
	if !ok {
		return v3.Vec{}, false, nil
	}
	v, err := toVec3(s)
	if err != nil {
		return v3.Vec{}, false, fmt.Errorf("%s: %w", key, err)
	}
	return v, true, nil
}

// eulerMatrix builds the rotation used by the kernel for Euler angles in
// degrees: X first, then Y, then Z.
func eulerMatrix(deg v3.Vec) sdf.M44 {
	rad := deg.MulScalar(math.Pi / 180)
	return sdf.RotateZ(rad.Z).Mul(sdf.RotateY(rad.Y)).Mul(sdf.RotateX(rad.X))
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// builtinConfig carries the engine settings visible to builtins.
type builtinConfig struct {
	kernel     kernel.Kernel
	fileAccess bool
}

// userFunc is the zygomys builtin signature.
type userFunc = func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error)

// solidOp lifts a binary kernel operation into a builtin.
func solidOp(label string, op func(a, b kernel.Solid) kernel.Solid) userFunc {
	return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 2 {
			return zygo.SexpNull, fmt.Errorf("%s requires at least two solids", label)
		}
		acc, err := toSolid(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: argument 1: %w", label, err)
		}
		for i, arg := range args[1:] {
			s, err := toSolid(arg)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: argument %d: %w", label, i+2, err)
			}
			acc = op(acc, s)
		}
		return &sexpSolid{solid: acc}, nil
	}
}

// meshIndex validates an index argument against a table size.
func meshIndex(label string, s zygo.Sexp, n int) (int, error) {
	i, err := toInt(s)
	if err != nil {
		return 0, fmt.Errorf("%s: index: %w", label, err)
	}
	if i < 0 || i >= n {
		return 0, fmt.Errorf("%s: index %d out of range [0,%d)", label, i, n)
	}
	return i, nil
}

// registerBuiltins installs the mesh scripting builtins into a zygomys
// environment. Exported meshes are collected into scene.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, scene *Scene, cfg builtinConfig) {
	k := cfg.kernel

	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		var c [3]float64
		for i, label := range []string{"x", "y", "z"} {
			f, err := toFloat64(args[i])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: %s: %w", label, err)
			}
			c[i] = f
		}
		return &sexpVec3{vec: v3.Vec{X: c[0], Y: c[1], Z: c[2]}}, nil
	})

	// --- Solids ---

	env.AddFunction("box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("box requires 3 dimensions, got %d", len(args))
		}
		var d [3]float64
		for i := range d {
			f, err := toFloat64(args[i])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("box: dimension %d: %w", i+1, err)
			}
			if f <= 0 {
				return zygo.SexpNull, fmt.Errorf("box: dimension %d must be positive, got %g", i+1, f)
			}
			d[i] = f
		}
		return &sexpSolid{solid: k.Box(d[0], d[1], d[2])}, nil
	})

	env.AddFunction("cylinder", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		a := parseArgs(args)
		if len(a.positional) != 2 {
			return zygo.SexpNull, fmt.Errorf("cylinder requires a height and a radius")
		}
		height, err := toFloat64(a.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cylinder: height: %w", err)
		}
		radius, err := toFloat64(a.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cylinder: radius: %w", err)
		}
		if height <= 0 || radius <= 0 {
			return zygo.SexpNull, fmt.Errorf("cylinder: height and radius must be positive")
		}
		segments := 32
		if v, ok := a.kw["segments"]; ok {
			if segments, err = toInt(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("cylinder: segments: %w", err)
			}
		}
		return &sexpSolid{solid: k.Cylinder(height, radius, segments)}, nil
	})

	env.AddFunction("sphere", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("sphere requires a radius")
		}
		r, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("sphere: radius: %w", err)
		}
		if r <= 0 {
			return zygo.SexpNull, fmt.Errorf("sphere: radius must be positive, got %g", r)
		}
		return &sexpSolid{solid: k.Sphere(r)}, nil
	})

	env.AddFunction("union", solidOp("union", k.Union))
	env.AddFunction("difference", solidOp("difference", k.Difference))
	env.AddFunction("intersection", solidOp("intersection", k.Intersection))

	// --- Solid to mesh ---

	env.AddFunction("mesh", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		a := parseArgs(args)
		if len(a.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("mesh requires a solid")
		}
		s, err := toSolid(a.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("mesh: %w", err)
		}
		eps := 0.0
		if v, ok := a.kw["eps"]; ok {
			if eps, err = toFloat64(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("mesh: eps: %w", err)
			}
		}
		results, err := tessellate.Tessellate([]tessellate.Part{{Solid: s}}, k, tessellate.Options{Epsilon: eps})
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("mesh: %w", err)
		}
		return &sexpMesh{m: results[0].Mesh}, nil
	})

	// --- Transforms (solids and meshes) ---

	env.AddFunction("translate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("translate requires a target and a vec3")
		}
		d, err := toVec3(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("translate: offset: %w", err)
		}
		switch target := args[0].(type) {
		case *sexpSolid:
			return &sexpSolid{solid: k.Translate(target.solid, d.X, d.Y, d.Z)}, nil
		case *sexpMesh:
			m := target.m.Clone()
			m.Translate(d)
			return &sexpMesh{m: m}, nil
		}
		return zygo.SexpNull, fmt.Errorf("translate: expected solid or mesh, got %T", args[0])
	})

	env.AddFunction("rotate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		a := parseArgs(args)
		if len(a.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("rotate requires a target")
		}

		// Euler form: (rotate x (vec3 rx ry rz)), degrees.
		if len(a.positional) == 2 {
			deg, err := toVec3(a.positional[1])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("rotate: angles: %w", err)
			}
			switch target := a.positional[0].(type) {
			case *sexpSolid:
				return &sexpSolid{solid: k.Rotate(target.solid, deg.X, deg.Y, deg.Z)}, nil
			case *sexpMesh:
				m := target.m.Clone()
				center, ok, err := optVec3(a, "center")
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("rotate: %w", err)
				}
				if !ok {
					center = m.BoundingBox().Center()
				}
				m.Rotate(eulerMatrix(deg), center)
				return &sexpMesh{m: m}, nil
			}
			return zygo.SexpNull, fmt.Errorf("rotate: expected solid or mesh, got %T", a.positional[0])
		}

		// Axis form: (rotate m :axis (vec3 ...) :angle deg [:center (vec3 ...)]).
		src, err := toMesh(a.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rotate: axis form: %w", err)
		}
		axis, ok, err := optVec3(a, "axis")
		if err != nil || !ok {
			return zygo.SexpNull, fmt.Errorf("rotate: axis form requires :axis (vec3 ...)")
		}
		if axis.Length() == 0 {
			return zygo.SexpNull, fmt.Errorf("rotate: axis must be non-zero")
		}
		angleArg, ok := a.kw["angle"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("rotate: axis form requires :angle")
		}
		angle, err := toFloat64(angleArg)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rotate: angle: %w", err)
		}
		m := src.Clone()
		center, ok, err := optVec3(a, "center")
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rotate: %w", err)
		}
		if !ok {
			center = m.BoundingBox().Center()
		}
		m.RotateAxis(axis.Normalize(), angle*math.Pi/180, center)
		return &sexpMesh{m: m}, nil
	})

	// --- Mesh edits ---

	env.AddFunction("scale", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("scale requires a mesh and a factor")
		}
		src, err := toMesh(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("scale: %w", err)
		}
		m := src.Clone()
		// Non-positive factors leave the mesh unchanged.
		if v, ok := args[1].(*sexpVec3); ok {
			m.Scale(v.vec)
			return &sexpMesh{m: m}, nil
		}
		f, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("scale: factor: %w", err)
		}
		m.ScaleUniform(f)
		return &sexpMesh{m: m}, nil
	})

	env.AddFunction("fit", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		a := parseArgs(args)
		if len(a.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("fit requires a mesh")
		}
		src, err := toMesh(a.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("fit: %w", err)
		}
		var to, from sdf.Box3
		var ok1, ok2 bool
		if to.Min, ok1, err = optVec3(a, "min"); err != nil {
			return zygo.SexpNull, fmt.Errorf("fit: %w", err)
		}
		if to.Max, ok2, err = optVec3(a, "max"); err != nil {
			return zygo.SexpNull, fmt.Errorf("fit: %w", err)
		}
		if !ok1 || !ok2 {
			return zygo.SexpNull, fmt.Errorf("fit requires :min and :max")
		}

		m := src.Clone()
		if from.Min, ok1, err = optVec3(a, "from-min"); err != nil {
			return zygo.SexpNull, fmt.Errorf("fit: %w", err)
		}
		if from.Max, ok2, err = optVec3(a, "from-max"); err != nil {
			return zygo.SexpNull, fmt.Errorf("fit: %w", err)
		}
		switch {
		case ok1 && ok2:
			m.ScaleBox(from, to)
		case ok1 || ok2:
			return zygo.SexpNull, fmt.Errorf("fit: :from-min and :from-max must be given together")
		default:
			m.Fit(to)
		}
		return &sexpMesh{m: m}, nil
	})

	env.AddFunction("merge", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("merge requires at least one mesh")
		}
		meshes := make([]*mesh.IndexedMesh, len(args))
		for i, arg := range args {
			m, err := toMesh(arg)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("merge: argument %d: %w", i+1, err)
			}
			meshes[i] = m
		}
		merged := lo.Reduce(meshes[1:], func(acc *mesh.IndexedMesh, m *mesh.IndexedMesh, _ int) *mesh.IndexedMesh {
			return mesh.Merge(acc, m)
		}, meshes[0].Clone())
		return &sexpMesh{m: merged}, nil
	})

	env.AddFunction("clean", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 || len(args) > 2 {
			return zygo.SexpNull, fmt.Errorf("clean requires a mesh and an optional epsilon")
		}
		src, err := toMesh(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("clean: %w", err)
		}
		eps := 0.0
		if len(args) == 2 {
			if eps, err = toFloat64(args[1]); err != nil {
				return zygo.SexpNull, fmt.Errorf("clean: epsilon: %w", err)
			}
		}
		m := src.Clone()
		m.RemoveDegenerateTriangles(eps)
		return &sexpMesh{m: m}, nil
	})

	// --- Queries ---

	env.AddFunction("vertex_count", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("vertex-count requires a mesh")
		}
		m, err := toMesh(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vertex-count: %w", err)
		}
		return &zygo.SexpInt{Val: int64(m.VertexCount())}, nil
	})

	env.AddFunction("face_count", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("face-count requires a mesh")
		}
		m, err := toMesh(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("face-count: %w", err)
		}
		return &zygo.SexpInt{Val: int64(m.FaceCount())}, nil
	})

	env.AddFunction("face_normal", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("face-normal requires a mesh and a face index")
		}
		m, err := toMesh(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("face-normal: %w", err)
		}
		f, err := meshIndex("face-normal", args[1], m.FaceCount())
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpVec3{vec: m.FaceNormal(f)}, nil
	})

	env.AddFunction("vertex_normal", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("vertex-normal requires a mesh and a vertex index")
		}
		m, err := toMesh(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vertex-normal: %w", err)
		}
		v, err := meshIndex("vertex-normal", args[1], m.VertexCount())
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpVec3{vec: m.VertexNormal(v)}, nil
	})

	env.AddFunction("export", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("export requires a name and a mesh")
		}
		meshName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("export: name: %w", err)
		}
		if err := CheckExportName(meshName); err != nil {
			return zygo.SexpNull, fmt.Errorf("export: %w", err)
		}
		m, err := toMesh(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("export: %w", err)
		}
		scene.Export(meshName, m)
		return args[1], nil
	})

	// --- Files ---

	env.AddFunction("load", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if !cfg.fileAccess {
			return zygo.SexpNull, fmt.Errorf("load: file access is disabled")
		}
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("load requires a path")
		}
		path, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("load: path: %w", err)
		}
		m, err := mesh.LoadFile(path)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("load: %w", err)
		}
		return &sexpMesh{m: m}, nil
	})

	env.AddFunction("save", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if !cfg.fileAccess {
			return zygo.SexpNull, fmt.Errorf("save: file access is disabled")
		}
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("save requires a mesh and a path")
		}
		m, err := toMesh(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("save: %w", err)
		}
		path, err := toString(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("save: path: %w", err)
		}
		if err := m.SaveToFile(path); err != nil {
			return zygo.SexpNull, fmt.Errorf("save: %w", err)
		}
		return args[0], nil
	})
}
