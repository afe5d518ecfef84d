package meshio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

const asciiQuadPLY = `ply
format ascii 1.0
comment made by hand
obj_info test
element vertex 4
property float x
property float y
property float z
property uchar red
element face 1
property uchar flags
property list uchar int vertex_indices
element edge 1
property int vertex1
property int vertex2
end_header
0 0 0 255
1 0 0 255
1 1 0 255
0 1 0 255
7 4 0 1 2 3
0 1
`

func TestReadPLYASCII(t *testing.T) {
	coords, faces, err := ReadPLY(strings.NewReader(asciiQuadPLY))
	if err != nil {
		t.Fatalf("ReadPLY: %v", err)
	}
	wantCoords := []float64{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0}
	wantFaces := []int{0, 1, 2, 0, 2, 3}
	if !reflect.DeepEqual(coords, wantCoords) {
		t.Errorf("coords = %v, want %v", coords, wantCoords)
	}
	if !reflect.DeepEqual(faces, wantFaces) {
		t.Errorf("faces = %v, want %v", faces, wantFaces)
	}
}

func TestReadPLYVertexIndexAlias(t *testing.T) {
	input := "ply\nformat ascii 1.0\nelement vertex 3\nproperty double x\nproperty double y\nproperty double z\n" +
		"element face 1\nproperty list uchar uint vertex_index\nend_header\n" +
		"0 0 0\n1 0 0\n0 1 0\n3 2 1 0\n"
	_, faces, err := ReadPLY(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadPLY: %v", err)
	}
	if !reflect.DeepEqual(faces, []int{2, 1, 0}) {
		t.Errorf("faces = %v, want [2 1 0]", faces)
	}
}

func TestPLYBinaryLittleEndianRoundTrip(t *testing.T) {
	coords := []float64{0, 0, 0, 1.25, 0, 0, 0, 1, -3, 2, 2, 2}
	faces := []int{0, 1, 2, 1, 3, 2}
	var buf bytes.Buffer
	if err := WritePLYBinary(&buf, 4, 2, coords, faces); err != nil {
		t.Fatalf("WritePLYBinary: %v", err)
	}
	gotCoords, gotFaces, err := ReadPLY(&buf)
	if err != nil {
		t.Fatalf("ReadPLY: %v", err)
	}
	if !reflect.DeepEqual(gotCoords, coords) {
		t.Errorf("coords = %v, want %v", gotCoords, coords)
	}
	if !reflect.DeepEqual(gotFaces, faces) {
		t.Errorf("faces = %v, want %v", gotFaces, faces)
	}
}

func TestReadPLYBinaryBigEndian(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("ply\nformat binary_big_endian 1.0\nelement vertex 3\n" +
		"property float x\nproperty float y\nproperty float z\n" +
		"element face 1\nproperty list uchar ushort vertex_indices\nend_header\n")
	for _, v := range []float32{0, 0, 0, 1, 0, 0, 0, 1, 0} {
		if err := binary.Write(&buf, binary.BigEndian, v); err != nil {
			t.Fatal(err)
		}
	}
	face := struct {
		N       uint8
		A, B, C uint16
	}{3, 0, 1, 2}
	if err := binary.Write(&buf, binary.BigEndian, face); err != nil {
		t.Fatal(err)
	}

	coords, faces, err := ReadPLY(&buf)
	if err != nil {
		t.Fatalf("ReadPLY: %v", err)
	}
	if !reflect.DeepEqual(coords, []float64{0, 0, 0, 1, 0, 0, 0, 1, 0}) {
		t.Errorf("coords = %v", coords)
	}
	if !reflect.DeepEqual(faces, []int{0, 1, 2}) {
		t.Errorf("faces = %v", faces)
	}
}

func TestWritePLYHeader(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePLY(&buf, 3, 1, []float64{0, 0, 0, 1, 0, 0, 0, 1, 0}, []int{0, 1, 2}); err != nil {
		t.Fatalf("WritePLY: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"format ascii 1.0\n",
		"element vertex 3\n",
		"element face 1\n",
		"property list uchar int vertex_indices\n",
		"end_header\n0 0 0\n1 0 0\n0 1 0\n3 0 1 2\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestReadPLYMalformed(t *testing.T) {
	const vertexHeader = "element vertex 3\nproperty float x\nproperty float y\nproperty float z\n"
	tests := []struct {
		name  string
		input string
	}{
		{"no magic", "plx\nformat ascii 1.0\nend_header\n"},
		{"no format", "ply\nelement vertex 0\nend_header\n"},
		{"unknown format", "ply\nformat utf8 1.0\nend_header\n"},
		{"unterminated header", "ply\nformat ascii 1.0\n"},
		{"unknown keyword", "ply\nformat ascii 1.0\ncolour red\nend_header\n"},
		{"orphan property", "ply\nformat ascii 1.0\nproperty float x\nend_header\n"},
		{"unknown type", "ply\nformat ascii 1.0\nelement vertex 1\nproperty quad x\nend_header\n"},
		{"bad count", "ply\nformat ascii 1.0\nelement vertex many\nend_header\n"},
		{"missing z", "ply\nformat ascii 1.0\nelement vertex 1\nproperty float x\nproperty float y\nend_header\n0 0\n"},
		{"truncated body", "ply\nformat ascii 1.0\n" + vertexHeader + "end_header\n0 0 0\n1 0 0\n"},
		{"bad number", "ply\nformat ascii 1.0\n" + vertexHeader + "end_header\n0 0 0\n1 0 0\n0 one 0\n"},
		{
			"face without index list",
			"ply\nformat ascii 1.0\n" + vertexHeader + "element face 1\nproperty int n\nend_header\n0 0 0\n1 0 0\n0 1 0\n3\n",
		},
		{
			"index out of range",
			"ply\nformat ascii 1.0\n" + vertexHeader + "element face 1\nproperty list uchar int vertex_indices\nend_header\n" +
				"0 0 0\n1 0 0\n0 1 0\n3 0 1 3\n",
		},
		{
			"two-vertex face",
			"ply\nformat ascii 1.0\n" + vertexHeader + "element face 1\nproperty list uchar int vertex_indices\nend_header\n" +
				"0 0 0\n1 0 0\n0 1 0\n2 0 1\n",
		},
		{
			"overflowing count",
			"ply\nformat ascii 1.0\nelement vertex 3074457345618258603\nproperty float x\nproperty float y\nproperty float z\nend_header\n0 0 0\n",
		},
		{
			"count larger than body",
			"ply\nformat ascii 1.0\nelement vertex 1000000000\nproperty float x\nproperty float y\nproperty float z\nend_header\n0 0 0\n",
		},
		{
			"face count larger than body",
			"ply\nformat binary_little_endian 1.0\nelement face 1000000000\nproperty list uchar int vertex_indices\nend_header\n",
		},
		{
			"huge list length",
			"ply\nformat ascii 1.0\n" + vertexHeader + "element face 1\nproperty list uint int vertex_indices\nend_header\n" +
				"0 0 0\n1 0 0\n0 1 0\n4000000000 0 1 2\n",
		},
		{
			"list length larger than body",
			"ply\nformat ascii 1.0\n" + vertexHeader + "element face 1\nproperty list uint int vertex_indices\nend_header\n" +
				"0 0 0\n1 0 0\n0 1 0\n100000000 0 1 2\n",
		},
		{
			"truncated binary",
			"ply\nformat binary_little_endian 1.0\n" + vertexHeader + "end_header\n\x00\x00",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ReadPLY(strings.NewReader(tt.input))
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("expected ErrMalformed, got %v", err)
			}
		})
	}
}

func TestPLYFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tri.ply")
	coords := []float64{0.1, 0.2, 0.3, 1e-7, 2, 3, -4, 5.25, 6}
	faces := []int{2, 0, 1}
	if err := SavePLY(path, 3, 1, coords, faces); err != nil {
		t.Fatalf("SavePLY: %v", err)
	}
	gotCoords, gotFaces, err := LoadPLY(path)
	if err != nil {
		t.Fatalf("LoadPLY: %v", err)
	}
	if !reflect.DeepEqual(gotCoords, coords) || !reflect.DeepEqual(gotFaces, faces) {
		t.Errorf("round trip = %v %v, want %v %v", gotCoords, gotFaces, coords, faces)
	}
}
