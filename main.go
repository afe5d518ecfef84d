// Command trimesh runs mesh scripts and converts mesh files.
//
// Script mode evaluates a Lisp script and reports or saves the meshes it
// exports:
//
//	trimesh [-json] [-dir out/] [-format ply] [-cells 200] bracket.tm
//
// Convert mode loads a mesh file, drops degenerate faces and writes it back
// out, choosing codecs by extension:
//
//	trimesh -in part.obj -out part.ply [-eps 1e-9]
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/trimesh/pkg/engine"
	"github.com/chazu/trimesh/pkg/kernel/sdfx"
	"github.com/chazu/trimesh/pkg/mesh"
)

type options struct {
	in, out string
	eps     float64

	script  string
	dir     string
	format  string
	cells   int
	asJSON  bool
	noFiles bool
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("trimesh: ")
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("trimesh", flag.ContinueOnError)
	fs.StringVar(&o.in, "in", "", "mesh file to convert (.obj or .ply)")
	fs.StringVar(&o.out, "out", "", "destination of the converted mesh")
	fs.Float64Var(&o.eps, "eps", 0, "drop faces with area at most this value; negative keeps every face")
	fs.StringVar(&o.dir, "dir", "", "save every exported mesh into this directory")
	fs.StringVar(&o.format, "format", "obj", "file format used with -dir (obj or ply)")
	fs.IntVar(&o.cells, "cells", sdfx.DefaultMeshCells, "marching cubes cells along the longest axis")
	fs.BoolVar(&o.asJSON, "json", false, "write the evaluation result as JSON to stdout")
	fs.BoolVar(&o.noFiles, "no-files", false, "disable the load and save builtins")
	if err := fs.Parse(args); err != nil {
		return o, err
	}

	switch {
	case o.in != "" && fs.NArg() > 0:
		return o, errors.New("-in and a script are mutually exclusive")
	case o.in != "":
		if o.out == "" {
			return o, errors.New("-in requires -out")
		}
	case fs.NArg() == 1:
		o.script = fs.Arg(0)
	default:
		return o, errors.New("usage: trimesh [flags] script | trimesh -in file -out file")
	}
	if _, err := mesh.FormatFromPath("x." + o.format); err != nil {
		return o, fmt.Errorf("-format: %w", err)
	}
	return o, nil
}

func run(args []string, stdout io.Writer) error {
	o, err := parseFlags(args)
	if err != nil {
		return err
	}
	if o.in != "" {
		return convertFile(o)
	}
	return runScript(o, stdout)
}

// convertFile loads o.in, removes degenerate faces and saves to o.out.
func convertFile(o options) error {
	m, err := mesh.LoadFile(o.in)
	if err != nil {
		return err
	}
	removed := 0
	if o.eps >= 0 {
		removed = m.RemoveDegenerateTriangles(o.eps)
	}
	if err := m.SaveToFile(o.out); err != nil {
		return err
	}
	log.Printf("%s -> %s: %d vertices, %d faces (%d degenerate removed)",
		o.in, o.out, m.VertexCount(), m.FaceCount(), removed)
	return nil
}

// runScript evaluates o.script and reports or saves its exported meshes.
func runScript(o options, stdout io.Writer) error {
	source, err := os.ReadFile(o.script)
	if err != nil {
		return err
	}

	opts := []engine.Option{engine.WithKernel(sdfx.NewWithOptions(sdfx.Options{Cells: o.cells}))}
	if !o.noFiles {
		opts = append(opts, engine.WithFileAccess())
	}
	result := NewApp(opts...).Evaluate(string(source))

	for _, w := range result.Warnings {
		log.Printf("warning: %s", w.Message)
	}
	if o.asJSON {
		enc := json.NewEncoder(stdout)
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
	}
	if len(result.Errors) > 0 {
		msgs := make([]string, len(result.Errors))
		for i, e := range result.Errors {
			if e.Line > 0 {
				msgs[i] = fmt.Sprintf("%s:%d: %s", o.script, e.Line, e.Message)
			} else {
				msgs[i] = fmt.Sprintf("%s: %s", o.script, e.Message)
			}
		}
		return errors.New(strings.Join(msgs, "\n"))
	}

	for _, md := range result.Meshes {
		if !o.asJSON {
			fmt.Fprintf(stdout, "%s\t%d vertices\t%d faces\n", md.PartName, len(md.Vertices)/3, len(md.Indices)/3)
		}
	}
	if o.dir == "" {
		return nil
	}
	if err := os.MkdirAll(o.dir, 0o755); err != nil {
		return err
	}
	for _, name := range result.scene.Names() {
		if err := engine.CheckExportName(name); err != nil {
			return err
		}
		path := filepath.Join(o.dir, name+"."+o.format)
		if err := result.scene.Lookup(name).SaveToFile(path); err != nil {
			return err
		}
		log.Printf("wrote %s", path)
	}
	return nil
}
