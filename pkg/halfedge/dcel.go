package halfedge

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/samber/lo"
)

// Compile-time interface check.
var _ Mesh = (*Dcel)(nil)

type edgeKey [2]VertexHandle

// Dcel is an arena-backed half-edge triangle mesh. Deleted records keep
// their arena slot, so handles stay valid for the lifetime of the mesh;
// enumeration skips them. Ids are assigned on insertion and never reused
// while the owning record is live.
//
// A Dcel is not safe for concurrent mutation.
type Dcel struct {
	vertices []Vertex
	faces    []Face
	edges    []HalfEdge

	vertexIDs map[int]VertexHandle
	// directed lists the live half-edges running from one vertex to another.
	// Non-manifold input can put several under one key.
	directed map[edgeKey][]EdgeHandle

	nextVertexID int
	nextFaceID   int
	liveVertices int
	liveFaces    int
}

// New returns an empty Dcel.
func New() *Dcel {
	return &Dcel{
		vertexIDs: make(map[int]VertexHandle),
		directed:  make(map[edgeKey][]EdgeHandle),
	}
}

// FromTriangles builds a Dcel from a point table and index triples. Vertex i
// receives handle i and id i.
func FromTriangles(points []v3.Vec, tris [][3]int) (*Dcel, error) {
	d := New()
	for _, p := range points {
		d.AddVertex(p)
	}
	for i, t := range tris {
		if _, err := d.AddFace(VertexHandle(t[0]), VertexHandle(t[1]), VertexHandle(t[2])); err != nil {
			return nil, fmt.Errorf("halfedge: triangle %d: %w", i, err)
		}
	}
	return d, nil
}

// AddVertex appends a vertex with the next free id.
func (d *Dcel) AddVertex(p v3.Vec) VertexHandle {
	for {
		if _, taken := d.vertexIDs[d.nextVertexID]; !taken {
			break
		}
		d.nextVertexID++
	}
	h, _ := d.AddVertexWithID(d.nextVertexID, p)
	return h
}

// AddVertexWithID appends a vertex carrying a caller-chosen id. Ids must be
// unique among live vertices.
func (d *Dcel) AddVertexWithID(id int, p v3.Vec) (VertexHandle, error) {
	if _, taken := d.vertexIDs[id]; taken {
		return NoVertex, fmt.Errorf("halfedge: vertex id %d already in use", id)
	}
	h := VertexHandle(len(d.vertices))
	d.vertices = append(d.vertices, Vertex{ID: id, Coord: p, Leaving: NoEdge})
	d.vertexIDs[id] = h
	if id >= d.nextVertexID {
		d.nextVertexID = id + 1
	}
	d.liveVertices++
	return h, nil
}

// AddFace adds the triangle (a, b, c) with counter-clockwise orientation and
// links its half-edges to any existing opposite half-edges.
func (d *Dcel) AddFace(a, b, c VertexHandle) (FaceHandle, error) {
	corners := [3]VertexHandle{a, b, c}
	for _, v := range corners {
		if !d.liveVertex(v) {
			return NoFace, fmt.Errorf("%w: handle %d", ErrDanglingCorner, v)
		}
	}
	if a == b || b == c || a == c {
		return NoFace, fmt.Errorf("halfedge: face repeats a corner (%d, %d, %d)", a, b, c)
	}

	f := FaceHandle(len(d.faces))
	first := EdgeHandle(len(d.edges))
	for i := 0; i < 3; i++ {
		d.edges = append(d.edges, HalfEdge{
			Origin: corners[i],
			Twin:   NoEdge,
			Next:   first + EdgeHandle((i+1)%3),
			Prev:   first + EdgeHandle((i+2)%3),
			Face:   f,
		})
	}
	for i := 0; i < 3; i++ {
		e := first + EdgeHandle(i)
		from, to := corners[i], corners[(i+1)%3]
		d.directed[edgeKey{from, to}] = append(d.directed[edgeKey{from, to}], e)
		d.linkTwin(e, from, to)
		if d.vertices[from].Leaving == NoEdge {
			d.vertices[from].Leaving = e
		}
	}

	d.faces = append(d.faces, Face{ID: d.nextFaceID, Edge: first})
	d.nextFaceID++
	d.liveFaces++
	return f, nil
}

// DeleteFace removes a face and its half-edges. Neighbouring half-edges
// become boundary edges.
func (d *Dcel) DeleteFace(f FaceHandle) error {
	if !d.liveFace(f) {
		return fmt.Errorf("halfedge: no live face with handle %d", f)
	}
	edges := d.FaceEdges(f)
	var freed []EdgeHandle
	for _, e := range edges {
		he := d.edges[e]
		key := edgeKey{he.Origin, d.edges[he.Next].Origin}
		d.directed[key] = lo.Without(d.directed[key], e)
		if len(d.directed[key]) == 0 {
			delete(d.directed, key)
		}
		if he.Twin != NoEdge {
			d.edges[he.Twin].Twin = NoEdge
			freed = append(freed, he.Twin)
		}
	}
	for _, e := range edges {
		d.edges[e].Face = NoFace
		d.edges[e].Twin = NoEdge
	}
	// A surviving duplicate of a deleted half-edge takes over its twin.
	for _, t := range freed {
		if d.edges[t].Face == NoFace {
			continue
		}
		from := d.edges[t].Origin
		d.linkTwin(t, from, d.edges[d.edges[t].Next].Origin)
	}
	for _, e := range edges {
		origin := d.edges[e].Origin
		if d.vertices[origin].Leaving == e {
			d.vertices[origin].Leaving = d.findLeaving(origin)
		}
	}
	d.faces[f].deleted = true
	d.liveFaces--
	return nil
}

// DeleteVertex removes an isolated vertex. Vertices still used by a face
// cannot be deleted.
func (d *Dcel) DeleteVertex(v VertexHandle) error {
	if !d.liveVertex(v) {
		return fmt.Errorf("halfedge: no live vertex with handle %d", v)
	}
	if d.vertices[v].Leaving != NoEdge {
		return fmt.Errorf("halfedge: vertex %d is still referenced by a face", d.vertices[v].ID)
	}
	delete(d.vertexIDs, d.vertices[v].ID)
	d.vertices[v].deleted = true
	d.liveVertices--
	return nil
}

// linkTwin pairs the unpaired half-edge e (from -> to) with the first unpaired
// live half-edge running to -> from, if any.
func (d *Dcel) linkTwin(e EdgeHandle, from, to VertexHandle) {
	if d.edges[e].Twin != NoEdge {
		return
	}
	twin, ok := lo.Find(d.directed[edgeKey{to, from}], func(t EdgeHandle) bool {
		return d.edges[t].Twin == NoEdge
	})
	if !ok {
		return
	}
	d.edges[twin].Twin = e
	d.edges[e].Twin = twin
}

// findLeaving returns any live half-edge leaving v, or NoEdge.
func (d *Dcel) findLeaving(v VertexHandle) EdgeHandle {
	for i, he := range d.edges {
		if he.Origin == v && he.Face != NoFace {
			return EdgeHandle(i)
		}
	}
	return NoEdge
}

func (d *Dcel) liveVertex(v VertexHandle) bool {
	return v >= 0 && int(v) < len(d.vertices) && !d.vertices[v].deleted
}

func (d *Dcel) liveFace(f FaceHandle) bool {
	return f >= 0 && int(f) < len(d.faces) && !d.faces[f].deleted
}

func (d *Dcel) mustVertex(v VertexHandle) {
	if !d.liveVertex(v) {
		panic(fmt.Sprintf("halfedge: invalid vertex handle %d", v))
	}
}

func (d *Dcel) mustFace(f FaceHandle) {
	if !d.liveFace(f) {
		panic(fmt.Sprintf("halfedge: invalid face handle %d", f))
	}
}

// VertexCount returns the number of live vertices.
func (d *Dcel) VertexCount() int { return d.liveVertices }

// FaceCount returns the number of live faces.
func (d *Dcel) FaceCount() int { return d.liveFaces }

// EdgeCount returns the number of live half-edges.
func (d *Dcel) EdgeCount() int { return d.liveFaces * 3 }

// Vertices enumerates live vertices in insertion order.
func (d *Dcel) Vertices() []VertexHandle {
	out := make([]VertexHandle, 0, d.liveVertices)
	for i := range d.vertices {
		if !d.vertices[i].deleted {
			out = append(out, VertexHandle(i))
		}
	}
	return out
}

// Faces enumerates live faces in insertion order.
func (d *Dcel) Faces() []FaceHandle {
	out := make([]FaceHandle, 0, d.liveFaces)
	for i := range d.faces {
		if !d.faces[i].deleted {
			out = append(out, FaceHandle(i))
		}
	}
	return out
}

// Vertex returns the record behind v. The pointer is invalidated by the next
// AddVertex call.
func (d *Dcel) Vertex(v VertexHandle) *Vertex {
	d.mustVertex(v)
	return &d.vertices[v]
}

// Face returns the record behind f. The pointer is invalidated by the next
// AddFace call.
func (d *Dcel) Face(f FaceHandle) *Face {
	d.mustFace(f)
	return &d.faces[f]
}

// Edge returns a copy of the half-edge record behind e.
func (d *Dcel) Edge(e EdgeHandle) HalfEdge {
	if e < 0 || int(e) >= len(d.edges) {
		panic(fmt.Sprintf("halfedge: invalid edge handle %d", e))
	}
	return d.edges[e]
}

// VertexByID looks up a live vertex by id.
func (d *Dcel) VertexByID(id int) (VertexHandle, bool) {
	h, ok := d.vertexIDs[id]
	return h, ok
}

// VertexID returns the id of v.
func (d *Dcel) VertexID(v VertexHandle) int {
	d.mustVertex(v)
	return d.vertices[v].ID
}

// Coordinate returns the position of v.
func (d *Dcel) Coordinate(v VertexHandle) v3.Vec {
	d.mustVertex(v)
	return d.vertices[v].Coord
}

// SetCoordinate moves v.
func (d *Dcel) SetCoordinate(v VertexHandle, p v3.Vec) {
	d.mustVertex(v)
	d.vertices[v].Coord = p
}

// FaceEdges returns the three half-edges of f, starting at f.Edge.
func (d *Dcel) FaceEdges(f FaceHandle) [3]EdgeHandle {
	d.mustFace(f)
	e0 := d.faces[f].Edge
	e1 := d.edges[e0].Next
	return [3]EdgeHandle{e0, e1, d.edges[e1].Next}
}

// Corners returns the three corner vertices of f in orientation order.
func (d *Dcel) Corners(f FaceHandle) [3]VertexHandle {
	edges := d.FaceEdges(f)
	return [3]VertexHandle{
		d.edges[edges[0]].Origin,
		d.edges[edges[1]].Origin,
		d.edges[edges[2]].Origin,
	}
}

// IsBoundaryEdge reports whether e has no opposite half-edge.
func (d *Dcel) IsBoundaryEdge(e EdgeHandle) bool {
	return d.Edge(e).Twin == NoEdge
}
