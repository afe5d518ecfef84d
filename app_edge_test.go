package main

import (
	"fmt"
	"math"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// 1. Empty editor: empty string -> 0 meshes, 0 errors.
// ---------------------------------------------------------------------------

func TestE2EEmptySourceExtended(t *testing.T) {
	app := testApp()
	result := app.Evaluate("")

	if len(result.Errors) != 0 {
		t.Errorf("expected 0 errors for empty source, got %d", len(result.Errors))
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes for empty source, got %d", len(result.Meshes))
	}
	if len(result.Warnings) != 0 {
		t.Errorf("expected 0 warnings for empty source, got %d", len(result.Warnings))
	}
	// Ensure slices are non-nil (JSON should serialize as [] not null).
	if result.Meshes == nil {
		t.Error("Meshes should be non-nil empty slice, got nil")
	}
	if result.Errors == nil {
		t.Error("Errors should be non-nil empty slice, got nil")
	}
	if result.Warnings == nil {
		t.Error("Warnings should be non-nil empty slice, got nil")
	}
}

// ---------------------------------------------------------------------------
// 2. Syntax errors: unmatched parens -> eval error, 0 meshes.
// ---------------------------------------------------------------------------

func TestE2ESyntaxErrorWithLineInfo(t *testing.T) {
	app := testApp()

	// Put valid code on line 1, broken code on line 2 so line info is meaningful.
	source := "(+ 1 2)\n(export \"test\""
	result := app.Evaluate(source)

	if len(result.Errors) == 0 {
		t.Fatal("expected at least one eval error for unmatched parens")
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes on syntax error, got %d", len(result.Meshes))
	}

	e := result.Errors[0]
	if e.Message == "" {
		t.Error("syntax error should have a non-empty message")
	}
	t.Logf("syntax error: line=%d, col=%d, message=%q", e.Line, e.Col, e.Message)
}

func TestE2ESyntaxErrorSingleLineMissingParen(t *testing.T) {
	app := testApp()

	result := app.Evaluate("(+ 1 2")

	if len(result.Errors) == 0 {
		t.Fatal("expected eval error for missing closing paren")
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes, got %d", len(result.Meshes))
	}
	if result.Errors[0].Message == "" {
		t.Error("error message should not be empty")
	}
}

// ---------------------------------------------------------------------------
// 3. Undefined references and bad arguments -> eval error, 0 meshes.
// ---------------------------------------------------------------------------

func TestE2EUndefinedSymbol(t *testing.T) {
	app := testApp()

	result := app.Evaluate(`(export "ghost" (mesh ghost-solid))`)
	if len(result.Errors) == 0 {
		t.Fatal("expected eval error for undefined symbol")
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes on error, got %d", len(result.Meshes))
	}
}

func TestE2EInvalidDimensions(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"zero dimension", `(export "b" (mesh (box 0 10 10)))`},
		{"all zero", `(export "b" (mesh (box 0 0 0)))`},
		{"negative dimension", `(export "b" (mesh (box 10 -5 10)))`},
		{"negative radius", `(export "s" (mesh (sphere -1)))`},
		{"zero height cylinder", `(export "c" (mesh (cylinder 0 5)))`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := testApp().Evaluate(tt.source)
			if len(result.Errors) == 0 {
				t.Fatal("expected eval error")
			}
			if !strings.Contains(result.Errors[0].Message, "positive") {
				t.Errorf("error %q does not mention positive dimensions", result.Errors[0].Message)
			}
			if len(result.Meshes) != 0 {
				t.Errorf("expected 0 meshes, got %d", len(result.Meshes))
			}
		})
	}
}

func TestE2EExportRequiresMesh(t *testing.T) {
	result := testApp().Evaluate(`(export "raw" (box 10 10 10))`)
	if len(result.Errors) == 0 {
		t.Fatal("exporting a solid should fail; solids must be meshed first")
	}
}

// ---------------------------------------------------------------------------
// 4. Rapid re-evaluation on the same App.
// ---------------------------------------------------------------------------

func TestE2ERapidEvaluation(t *testing.T) {
	// Simulates an editor re-running the script on every keystroke.
	//
	// Note: we call Evaluate sequentially because zygomys has internal
	// global state that is not safe for concurrent sandbox creation.
	app := testApp()

	sources := []string{
		`(export "a" (mesh (box 10 5 2)))`,
		`(export "b" (mesh (box 20 10 2)))`,
		`(+ 1 2)`,
		``,
		`(export "c" (mesh (sphere 3)))`,
		`(export "d" (mesh (box 40 20 5`,
		`(+ 100 200)`,
		``,
		`(export "e" (mesh (cylinder 5 2)))`,
		`(export "f" (scale (mesh (box 6 3 2)) 2))`,
	}

	for i, source := range sources {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("iteration %d panicked: %v", i, r)
				}
			}()
			result := app.Evaluate(source)
			_ = result
		}()
	}
}

func TestE2ERapidEvaluationAlternating(t *testing.T) {
	app := testApp()
	valid := `(export "ok" (mesh (box 10 10 10)))`
	invalid := `(export "bad" (mesh (box 10 10`

	for i := 0; i < 6; i++ {
		if i%2 == 0 {
			result := app.Evaluate(valid)
			if len(result.Errors) > 0 || len(result.Meshes) != 1 {
				t.Fatalf("iteration %d: valid source gave %d errors, %d meshes",
					i, len(result.Errors), len(result.Meshes))
			}
			continue
		}
		result := app.Evaluate(invalid)
		if len(result.Errors) == 0 || len(result.Meshes) != 0 {
			t.Fatalf("iteration %d: invalid source gave %d errors, %d meshes",
				i, len(result.Errors), len(result.Meshes))
		}
	}
}

// ---------------------------------------------------------------------------
// 5. Scale and precision.
// ---------------------------------------------------------------------------

func TestE2ELargeDimensions(t *testing.T) {
	result := testApp().Evaluate(`(export "slab" (mesh (box 5000 3000 1000)))`)
	if len(result.Errors) > 0 {
		t.Fatalf("eval errors: %v", result.Errors)
	}
	if len(result.Meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(result.Meshes))
	}
	var maxX float32
	for i := 0; i < len(result.Meshes[0].Vertices); i += 3 {
		if x := result.Meshes[0].Vertices[i]; x > maxX {
			maxX = x
		}
	}
	if maxX < 4500 {
		t.Errorf("max x = %g, expected close to 5000", maxX)
	}
}

func TestE2EFloatingPointDimensions(t *testing.T) {
	result := testApp().Evaluate(`(export "thin" (mesh (box 10.5 7.25 3.125)))`)
	if len(result.Errors) > 0 {
		t.Fatalf("eval errors: %v", result.Errors)
	}
	if len(result.Meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(result.Meshes))
	}
	if len(result.Meshes[0].Vertices) == 0 {
		t.Error("floating-point dimension mesh should have vertices")
	}
}

// ---------------------------------------------------------------------------
// 6. Comments, arithmetic and definitions.
// ---------------------------------------------------------------------------

func TestE2ECommentsOnly(t *testing.T) {
	result := testApp().Evaluate(";; just a comment\n; another :keyword comment\n")
	if len(result.Errors) != 0 {
		t.Errorf("expected 0 errors, got %v", result.Errors)
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes, got %d", len(result.Meshes))
	}
}

func TestE2ENestedArithmeticDef(t *testing.T) {
	source := `
(def width 20)
(def depth (* width 2))
(def height (/ depth 4))
(export "computed" (mesh (box width depth height)))
`
	result := testApp().Evaluate(source)
	if len(result.Errors) > 0 {
		t.Fatalf("eval errors: %v", result.Errors)
	}
	if len(result.Meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(result.Meshes))
	}
	var maxY float32
	for i := 1; i < len(result.Meshes[0].Vertices); i += 3 {
		if y := result.Meshes[0].Vertices[i]; y > maxY {
			maxY = y
		}
	}
	if math.Abs(float64(maxY)-40) > 3 {
		t.Errorf("max y = %g, want about 40", maxY)
	}
}

// ---------------------------------------------------------------------------
// 7. Normals, warnings and colors.
// ---------------------------------------------------------------------------

func TestE2ENormalsAreUnitOrZero(t *testing.T) {
	result := testApp().Evaluate(`(export "ball" (mesh (sphere 10)))`)
	if len(result.Errors) > 0 {
		t.Fatalf("eval errors: %v", result.Errors)
	}
	normals := result.Meshes[0].Normals
	for i := 0; i < len(normals); i += 3 {
		l := math.Sqrt(float64(normals[i]*normals[i] + normals[i+1]*normals[i+1] + normals[i+2]*normals[i+2]))
		if l > 1+1e-4 {
			t.Fatalf("normal %d has length %g", i/3, l)
		}
	}
}

func TestE2EDegenerateFacesWarn(t *testing.T) {
	// Keeping every face may leave slivers from marching cubes; cleaning
	// afterwards must silence the warning.
	result := testApp().Evaluate(`(export "clean" (clean (mesh (box 10 10 10) :eps -1)))`)
	if len(result.Errors) > 0 {
		t.Fatalf("eval errors: %v", result.Errors)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("cleaned mesh should not warn, got %v", result.Warnings)
	}
}

func TestE2EColorPaletteWrapping(t *testing.T) {
	app := testApp()

	// Export more meshes than the palette has colors to ensure wrapping works.
	var b strings.Builder
	b.WriteString("(def cube (mesh (box 5 5 5)))\n")
	n := len(colorPalette) + 1
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "(export \"p%d\" (translate cube (vec3 %d 0 0)))\n", i, 10*i)
	}
	result := app.Evaluate(b.String())

	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("eval error: %s", e.Message)
		}
		t.FailNow()
	}
	if len(result.Meshes) != n {
		t.Fatalf("expected %d meshes, got %d", n, len(result.Meshes))
	}
	for _, m := range result.Meshes {
		if m.Color == "" {
			t.Errorf("mesh %q should have a color assigned (palette wrapping)", m.PartName)
		}
	}
	if result.Meshes[n-1].Color != result.Meshes[0].Color {
		t.Errorf("palette did not wrap: %q vs %q", result.Meshes[n-1].Color, result.Meshes[0].Color)
	}
}
