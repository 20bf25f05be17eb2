// Package graph holds the undirected graph drawn on a board: vertices with
// presentation attributes, edges, and a symmetric adjacency index.
package graph

import (
	"strconv"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// neighbourSet is an insertion-ordered set of vertex ids.
type neighbourSet = orderedmap.OrderedMap[int, struct{}]

// Graph owns vertices, edges and adjacency. Vertices are never removed, so a
// vertex id is also its index in the vertex slice.
//
// Graph is not safe for concurrent use; callers serialise access.
type Graph struct {
	vertices  []*Vertex
	adjacency []*neighbourSet // id → neighbours, in the order they were linked
	edges     []Edge
}

// New allocates an empty Graph.
func New() *Graph {
	return &Graph{}
}

// AddVertex appends a vertex whose id is the current vertex count. An empty
// label defaults to the stringified id.
func (g *Graph) AddVertex(label string, pos Point, radius float64, style Style) *Vertex {
	id := len(g.vertices)
	if label == "" {
		label = strconv.Itoa(id)
	}
	v := &Vertex{
		ID:       id,
		Label:    label,
		Position: pos,
		Radius:   radius,
		Style:    style,
	}
	g.vertices = append(g.vertices, v)
	g.adjacency = append(g.adjacency, orderedmap.New[int, struct{}]())
	return v
}

// AddEdge links a and b. It returns false, leaving the graph untouched, when
// a == b, when either id is unknown, or when the pair is already adjacent.
func (g *Graph) AddEdge(a, b int) bool {
	if a == b || !g.valid(a) || !g.valid(b) {
		return false
	}
	if _, ok := g.adjacency[a].Get(b); ok {
		return false
	}
	g.adjacency[a].Set(b, struct{}{})
	g.adjacency[b].Set(a, struct{}{})
	g.edges = append(g.edges, Edge{A: a, B: b})
	return true
}

// VertexAt returns the earliest-created vertex whose bounding square contains p.
func (g *Graph) VertexAt(p Point) (*Vertex, bool) {
	for _, v := range g.vertices {
		if v.Contains(p) {
			return v, true
		}
	}
	return nil, false
}

// ExportAdjacency serialises the adjacency list: one bracketed list of
// neighbour ids per vertex in id order, entries joined by ",\r\n", the whole
// wrapped in brackets. Three vertices forming a triangle export as
// "[[1,2],\r\n[0,2],\r\n[0,1]]".
func (g *Graph) ExportAdjacency() string {
	var b strings.Builder
	b.WriteByte('[')
	for id := range g.vertices {
		if id > 0 {
			b.WriteString(",\r\n")
		}
		b.WriteByte('[')
		first := true
		for pair := g.adjacency[id].Oldest(); pair != nil; pair = pair.Next() {
			if !first {
				b.WriteByte(',')
			}
			b.WriteString(strconv.Itoa(pair.Key))
			first = false
		}
		b.WriteByte(']')
	}
	b.WriteByte(']')
	return b.String()
}

// Vertex returns the vertex with the given id.
func (g *Graph) Vertex(id int) (*Vertex, bool) {
	if !g.valid(id) {
		return nil, false
	}
	return g.vertices[id], true
}

// Vertices returns all vertices in id order. The slice is a copy; the
// vertices are shared.
func (g *Graph) Vertices() []*Vertex {
	out := make([]*Vertex, len(g.vertices))
	copy(out, g.vertices)
	return out
}

// Edges returns all edges in insertion order.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// Neighbors returns the neighbours of id in the order they were linked.
func (g *Graph) Neighbors(id int) []int {
	if !g.valid(id) {
		return nil
	}
	set := g.adjacency[id]
	out := make([]int, 0, set.Len())
	for pair := set.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}

// Adjacent reports whether a and b share an edge.
func (g *Graph) Adjacent(a, b int) bool {
	if !g.valid(a) || !g.valid(b) {
		return false
	}
	_, ok := g.adjacency[a].Get(b)
	return ok
}

// VertexCount returns the number of vertices.
func (g *Graph) VertexCount() int { return len(g.vertices) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// MoveVertex repositions a vertex.
func (g *Graph) MoveVertex(id int, p Point) bool {
	if !g.valid(id) {
		return false
	}
	g.vertices[id].Position = p
	return true
}

// SetLabel replaces a vertex label.
func (g *Graph) SetLabel(id int, label string) bool {
	if !g.valid(id) {
		return false
	}
	g.vertices[id].Label = label
	return true
}

// SetRadius resizes a vertex. Non-positive radii are ignored.
func (g *Graph) SetRadius(id int, r float64) bool {
	if !g.valid(id) || r <= 0 {
		return false
	}
	g.vertices[id].Radius = r
	return true
}

// SetHighlighted sets the highlight flag of a vertex.
func (g *Graph) SetHighlighted(id int, on bool) bool {
	if !g.valid(id) {
		return false
	}
	g.vertices[id].Style.Highlighted = on
	return true
}

func (g *Graph) valid(id int) bool {
	return id >= 0 && id < len(g.vertices)
}
