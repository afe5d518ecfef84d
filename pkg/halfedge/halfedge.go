// Package halfedge provides a half-edge (doubly-connected edge list) triangle
// mesh. Vertices, faces and half-edges live in flat arenas and refer to each
// other by typed handles, so callers can hold stable references without
// sharing ownership of the records.
package halfedge

import (
	"errors"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ErrDanglingCorner is returned when a face references a vertex that is not
// part of the mesh's vertex enumeration.
var ErrDanglingCorner = errors.New("halfedge: face corner references unknown vertex")

// VertexHandle indexes the vertex arena of a Dcel.
type VertexHandle int

// FaceHandle indexes the face arena of a Dcel.
type FaceHandle int

// EdgeHandle indexes the half-edge arena of a Dcel.
type EdgeHandle int

const (
	NoVertex VertexHandle = -1
	NoFace   FaceHandle   = -1
	NoEdge   EdgeHandle   = -1
)

// Mesh is the read-only surface that mesh conversions consume.
// Enumeration order is stable between calls as long as the mesh is not
// edited.
type Mesh interface {
	// VertexCount returns the number of live vertices.
	VertexCount() int
	// FaceCount returns the number of live faces.
	FaceCount() int
	// Vertices enumerates live vertices in a stable order.
	Vertices() []VertexHandle
	// Faces enumerates live faces in a stable order.
	Faces() []FaceHandle
	// VertexID returns the integer id of a vertex.
	VertexID(v VertexHandle) int
	// Coordinate returns the position of a vertex.
	Coordinate(v VertexHandle) v3.Vec
	// Corners returns the three corner vertices of a triangular face.
	Corners(f FaceHandle) [3]VertexHandle
}

// Vertex is a vertex record.
type Vertex struct {
	ID      int        `json:"id"`
	Coord   v3.Vec     `json:"coord"`
	Leaving EdgeHandle `json:"leaving"` // any outgoing half-edge, NoEdge if isolated
	deleted bool
}

// HalfEdge is a directed edge record bounding exactly one face.
type HalfEdge struct {
	Origin VertexHandle `json:"origin"`
	Twin   EdgeHandle   `json:"twin"` // NoEdge on a boundary
	Next   EdgeHandle   `json:"next"`
	Prev   EdgeHandle   `json:"prev"`
	Face   FaceHandle   `json:"face"`
}

// Face is a face record. Edge points at the half-edge leaving the first corner.
type Face struct {
	ID      int        `json:"id"`
	Edge    EdgeHandle `json:"edge"`
	deleted bool
}
