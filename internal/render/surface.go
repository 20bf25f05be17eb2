// Package render defines the drawing-surface contract the interaction
// controller drives, and the registry of surface backends a session is built from.
package render

import "github.com/gyaneshwarpardhi/graphboard/internal/graph"

// Surface is the rendering collaborator. Implementations own their pixels (or
// whatever they draw into); callers never touch them except through Snapshot
// and Restore.
type Surface interface {
	// DrawVertex paints a vertex (circle, fill, label) on top of the surface.
	DrawVertex(v graph.Vertex)
	// DrawEdgeLine paints a straight line between two surface positions.
	DrawEdgeLine(from, to graph.Point)
	// DrawText paints free text anchored at a surface position.
	DrawText(text string, at graph.Point)
	// Snapshot captures the current contents.
	Snapshot() Snapshot
	// Restore puts back contents captured by Snapshot on the same surface.
	Restore(s Snapshot)
	// Clear wipes the surface to its background.
	Clear()
}

// Snapshot is an opaque handle to saved surface contents. Only the surface
// that produced it knows how to interpret it.
type Snapshot struct {
	state any
}

// NewSnapshot wraps backend-specific saved state.
func NewSnapshot(state any) Snapshot {
	return Snapshot{state: state}
}

// State returns the wrapped backend state.
func (s Snapshot) State() any { return s.state }

// Valid reports whether the snapshot holds any state.
func (s Snapshot) Valid() bool { return s.state != nil }

// Options configures a backend at construction.
type Options struct {
	Width      int
	Height     int
	Background graph.Color
	EdgeColor  graph.Color
	EdgeWidth  float64
}

// Multi fans every call out to several surfaces in order.
type Multi []Surface

func (m Multi) DrawVertex(v graph.Vertex) {
	for _, s := range m {
		s.DrawVertex(v)
	}
}

func (m Multi) DrawEdgeLine(from, to graph.Point) {
	for _, s := range m {
		s.DrawEdgeLine(from, to)
	}
}

func (m Multi) DrawText(text string, at graph.Point) {
	for _, s := range m {
		s.DrawText(text, at)
	}
}

// Snapshot captures every member; the handle keeps one snapshot per member.
func (m Multi) Snapshot() Snapshot {
	snaps := make([]Snapshot, len(m))
	for i, s := range m {
		snaps[i] = s.Snapshot()
	}
	return NewSnapshot(snaps)
}

func (m Multi) Restore(snap Snapshot) {
	snaps, ok := snap.State().([]Snapshot)
	if !ok || len(snaps) != len(m) {
		return
	}
	for i, s := range m {
		s.Restore(snaps[i])
	}
}

func (m Multi) Clear() {
	for _, s := range m {
		s.Clear()
	}
}
