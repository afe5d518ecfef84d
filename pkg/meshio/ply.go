package meshio

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

type plyEncoding int

const (
	plyASCII plyEncoding = iota
	plyBinaryLE
	plyBinaryBE
)

type plyProperty struct {
	name      string
	typ       string
	list      bool
	countType string
}

type plyElement struct {
	name  string
	count int
	props []plyProperty
}

type plyHeader struct {
	encoding plyEncoding
	elements []plyElement
}

// plyPrealloc caps how many records are reserved up front from a header
// count; larger bodies grow as records are read.
const plyPrealloc = 1 << 16

var plyScalarSize = map[string]int{
	"char": 1, "int8": 1, "uchar": 1, "uint8": 1,
	"short": 2, "int16": 2, "ushort": 2, "uint16": 2,
	"int": 4, "int32": 4, "uint": 4, "uint32": 4,
	"float": 4, "float32": 4, "double": 8, "float64": 8,
}

// LoadPLY reads the PLY file at path.
func LoadPLY(path string) (coords []float64, faces []int, err error) {
	return loadFile(path, ReadPLY)
}

// ReadPLY parses ASCII, binary little-endian and binary big-endian PLY. The
// `vertex` element must carry x, y and z; the `face` element must carry a
// vertex_indices (or vertex_index) list. Other elements and properties are
// skipped.
func ReadPLY(r io.Reader) (coords []float64, faces []int, err error) {
	br := bufio.NewReader(r)
	hdr, err := readPLYHeader(br)
	if err != nil {
		return nil, nil, err
	}

	var src plySource
	switch hdr.encoding {
	case plyASCII:
		s := bufio.NewScanner(br)
		s.Split(bufio.ScanWords)
		src = &plyASCIISource{s: s}
	case plyBinaryLE:
		src = &plyBinarySource{r: br, order: binary.LittleEndian}
	case plyBinaryBE:
		src = &plyBinarySource{r: br, order: binary.BigEndian}
	}

	vertexCount := 0
	for _, el := range hdr.elements {
		switch el.name {
		case "vertex":
			vertexCount = el.count
			coords, err = readPLYVertices(src, el)
		case "face":
			faces, err = readPLYFaces(src, el, vertexCount)
		default:
			err = skipPLYElement(src, el)
		}
		if err != nil {
			return nil, nil, err
		}
	}
	return coords, faces, nil
}

func readPLYHeader(br *bufio.Reader) (plyHeader, error) {
	var hdr plyHeader
	line, err := br.ReadString('\n')
	if err != nil || strings.TrimSpace(line) != "ply" {
		return hdr, malformed("missing ply magic")
	}
	sawFormat := false
	for {
		line, err := br.ReadString('\n')
		if err != nil {
			return hdr, malformed("header ends before end_header")
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "format":
			if len(fields) < 2 {
				return hdr, malformed("format line %q", strings.TrimSpace(line))
			}
			switch fields[1] {
			case "ascii":
				hdr.encoding = plyASCII
			case "binary_little_endian":
				hdr.encoding = plyBinaryLE
			case "binary_big_endian":
				hdr.encoding = plyBinaryBE
			default:
				return hdr, malformed("unknown format %q", fields[1])
			}
			sawFormat = true
		case "comment", "obj_info":
		case "element":
			if len(fields) != 3 {
				return hdr, malformed("element line %q", strings.TrimSpace(line))
			}
			n, err := strconv.Atoi(fields[2])
			if err != nil || n < 0 || n > math.MaxInt/3 {
				return hdr, malformed("element %s count %q", fields[1], fields[2])
			}
			hdr.elements = append(hdr.elements, plyElement{name: fields[1], count: n})
		case "property":
			if len(hdr.elements) == 0 {
				return hdr, malformed("property before any element")
			}
			prop, err := parsePLYProperty(fields)
			if err != nil {
				return hdr, err
			}
			el := &hdr.elements[len(hdr.elements)-1]
			el.props = append(el.props, prop)
		case "end_header":
			if !sawFormat {
				return hdr, malformed("missing format line")
			}
			return hdr, nil
		default:
			return hdr, malformed("unknown header keyword %q", fields[0])
		}
	}
}

func parsePLYProperty(fields []string) (plyProperty, error) {
	if len(fields) == 5 && fields[1] == "list" {
		p := plyProperty{name: fields[4], typ: fields[3], list: true, countType: fields[2]}
		if _, ok := plyScalarSize[p.typ]; !ok {
			return p, malformed("property %s: unknown type %q", p.name, p.typ)
		}
		if _, ok := plyScalarSize[p.countType]; !ok {
			return p, malformed("property %s: unknown count type %q", p.name, p.countType)
		}
		return p, nil
	}
	if len(fields) != 3 {
		return plyProperty{}, malformed("property line %q", strings.Join(fields, " "))
	}
	p := plyProperty{name: fields[2], typ: fields[1]}
	if _, ok := plyScalarSize[p.typ]; !ok {
		return p, malformed("property %s: unknown type %q", p.name, p.typ)
	}
	return p, nil
}

func readPLYVertices(src plySource, el plyElement) ([]float64, error) {
	axis := map[string]int{"x": 0, "y": 1, "z": 2}
	for name := range axis {
		if !lo.ContainsBy(el.props, func(p plyProperty) bool { return p.name == name && !p.list }) {
			return nil, malformed("vertex element has no scalar %q property", name)
		}
	}
	coords := make([]float64, 0, 3*min(el.count, plyPrealloc))
	for i := 0; i < el.count; i++ {
		var p3 [3]float64
		for _, p := range el.props {
			if p.list {
				if _, err := readPLYList(src, p); err != nil {
					return nil, err
				}
				continue
			}
			v, err := src.scalar(p.typ)
			if err != nil {
				return nil, fmt.Errorf("vertex %d: %w", i, err)
			}
			if a, ok := axis[p.name]; ok {
				p3[a] = v
			}
		}
		coords = append(coords, p3[:]...)
	}
	return coords, nil
}

func readPLYFaces(src plySource, el plyElement, vertexCount int) ([]int, error) {
	if !lo.ContainsBy(el.props, isPLYIndexList) {
		return nil, malformed("face element has no vertex_indices list")
	}
	faces := make([]int, 0, 3*min(el.count, plyPrealloc))
	for i := 0; i < el.count; i++ {
		for _, p := range el.props {
			if !p.list {
				if _, err := src.scalar(p.typ); err != nil {
					return nil, fmt.Errorf("face %d: %w", i, err)
				}
				continue
			}
			values, err := readPLYList(src, p)
			if err != nil {
				return nil, fmt.Errorf("face %d: %w", i, err)
			}
			if !isPLYIndexList(p) {
				continue
			}
			if len(values) < 3 {
				return nil, malformed("face %d has %d vertices", i, len(values))
			}
			polygon := make([]int, len(values))
			for j, v := range values {
				idx := int(v)
				if idx < 0 || idx >= vertexCount {
					return nil, malformed("face %d references vertex %d outside [0,%d)", i, idx, vertexCount)
				}
				polygon[j] = idx
			}
			faces = fan(faces, polygon)
		}
	}
	return faces, nil
}

func isPLYIndexList(p plyProperty) bool {
	return p.list && (p.name == "vertex_indices" || p.name == "vertex_index")
}

func readPLYList(src plySource, p plyProperty) ([]float64, error) {
	n, err := src.scalar(p.countType)
	if err != nil {
		return nil, err
	}
	if n < 0 || n != math.Trunc(n) {
		return nil, malformed("list %s has invalid length %v", p.name, n)
	}
	if n > math.MaxInt32 {
		return nil, malformed("list %s has invalid length %v", p.name, n)
	}
	values := make([]float64, 0, min(int(n), plyPrealloc))
	for i := 0; i < int(n); i++ {
		v, err := src.scalar(p.typ)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

func skipPLYElement(src plySource, el plyElement) error {
	for i := 0; i < el.count; i++ {
		for _, p := range el.props {
			var err error
			if p.list {
				_, err = readPLYList(src, p)
			} else {
				_, err = src.scalar(p.typ)
			}
			if err != nil {
				return fmt.Errorf("element %s %d: %w", el.name, i, err)
			}
		}
	}
	return nil
}

// plySource yields the scalar values of a PLY body one at a time.
type plySource interface {
	scalar(typ string) (float64, error)
}

type plyASCIISource struct {
	s *bufio.Scanner
}

func (a *plyASCIISource) scalar(typ string) (float64, error) {
	if !a.s.Scan() {
		if err := a.s.Err(); err != nil {
			return 0, err
		}
		return 0, malformed("unexpected end of data")
	}
	v, err := strconv.ParseFloat(a.s.Text(), 64)
	if err != nil {
		return 0, malformed("%s value %q", typ, a.s.Text())
	}
	return v, nil
}

type plyBinarySource struct {
	r     io.Reader
	order binary.ByteOrder
	buf   [8]byte
}

func (b *plyBinarySource) scalar(typ string) (float64, error) {
	size := plyScalarSize[typ]
	buf := b.buf[:size]
	if _, err := io.ReadFull(b.r, buf); err != nil {
		return 0, malformed("unexpected end of data: %v", err)
	}
	switch typ {
	case "char", "int8":
		return float64(int8(buf[0])), nil
	case "uchar", "uint8":
		return float64(buf[0]), nil
	case "short", "int16":
		return float64(int16(b.order.Uint16(buf))), nil
	case "ushort", "uint16":
		return float64(b.order.Uint16(buf)), nil
	case "int", "int32":
		return float64(int32(b.order.Uint32(buf))), nil
	case "uint", "uint32":
		return float64(b.order.Uint32(buf)), nil
	case "float", "float32":
		return float64(math.Float32frombits(b.order.Uint32(buf))), nil
	default:
		return math.Float64frombits(b.order.Uint64(buf)), nil
	}
}

// SavePLY writes vertexCount vertices and faceCount triangles to path as
// ASCII PLY with double precision coordinates.
func SavePLY(path string, vertexCount, faceCount int, coords []float64, faces []int) error {
	if err := checkBuffers(vertexCount, faceCount, coords, faces); err != nil {
		return err
	}
	return saveFile(path, func(w io.Writer) error {
		return WritePLY(w, vertexCount, faceCount, coords, faces)
	})
}

// WritePLY writes the buffers as ASCII PLY.
func WritePLY(w io.Writer, vertexCount, faceCount int, coords []float64, faces []int) error {
	if err := checkBuffers(vertexCount, faceCount, coords, faces); err != nil {
		return err
	}
	header := fmt.Sprintf("ply\nformat ascii 1.0\nelement vertex %d\n"+
		"property double x\nproperty double y\nproperty double z\n"+
		"element face %d\nproperty list uchar int vertex_indices\nend_header\n",
		vertexCount, faceCount)
	if _, err := io.WriteString(w, header); err != nil {
		return err
	}
	for _, p := range lo.Chunk(coords[:3*vertexCount], 3) {
		if _, err := fmt.Fprintf(w, "%s %s %s\n", formatFloat(p[0]), formatFloat(p[1]), formatFloat(p[2])); err != nil {
			return err
		}
	}
	for _, t := range lo.Chunk(faces[:3*faceCount], 3) {
		if _, err := fmt.Fprintf(w, "3 %d %d %d\n", t[0], t[1], t[2]); err != nil {
			return err
		}
	}
	return nil
}

// WritePLYBinary writes the buffers as little-endian binary PLY.
func WritePLYBinary(w io.Writer, vertexCount, faceCount int, coords []float64, faces []int) error {
	if err := checkBuffers(vertexCount, faceCount, coords, faces); err != nil {
		return err
	}
	header := fmt.Sprintf("ply\nformat binary_little_endian 1.0\nelement vertex %d\n"+
		"property double x\nproperty double y\nproperty double z\n"+
		"element face %d\nproperty list uchar int vertex_indices\nend_header\n",
		vertexCount, faceCount)
	if _, err := io.WriteString(w, header); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, coords[:3*vertexCount]); err != nil {
		return err
	}
	for _, t := range lo.Chunk(faces[:3*faceCount], 3) {
		rec := struct {
			N       uint8
			A, B, C int32
		}{3, int32(t[0]), int32(t[1]), int32(t[2])}
		if err := binary.Write(w, binary.LittleEndian, rec); err != nil {
			return err
		}
	}
	return nil
}
