// Package stream is a surface that records draw operations and broadcasts
// them to subscribers (live canvas clients).
package stream

import (
	"sync"

	"github.com/gyaneshwarpardhi/graphboard/internal/graph"
	"github.com/gyaneshwarpardhi/graphboard/internal/render"
)

// Name is the registry key of this backend.
const Name = "stream"

// OpKind names a draw operation on the wire.
type OpKind string

const (
	OpVertex   OpKind = "vertex"
	OpLine     OpKind = "line"
	OpText     OpKind = "text"
	OpSnapshot OpKind = "snapshot"
	OpRestore  OpKind = "restore"
	OpClear    OpKind = "clear"
)

// Op is one recorded draw operation.
type Op struct {
	Op     OpKind        `json:"op"`
	Vertex *graph.Vertex `json:"vertex,omitempty"`
	From   *graph.Point  `json:"from,omitempty"`
	To     *graph.Point  `json:"to,omitempty"`
	At     *graph.Point  `json:"at,omitempty"`
	Text   string        `json:"text,omitempty"`
	Handle uint64        `json:"handle,omitempty"`
}

// subscriberBuffer bounds each subscriber channel; a full channel drops ops.
const subscriberBuffer = 256

// Stream keeps the ops drawn since the last Clear so late subscribers can
// rebuild the picture, and fans new ops out to subscribers.
type Stream struct {
	mu         sync.Mutex
	log        []Op
	nextHandle uint64
	subs       map[uint64]chan Op
	nextSub    uint64
	dropped    uint64
}

// New creates an empty stream surface.
func New(render.Options) render.Surface {
	return NewStream()
}

// NewStream is New with the concrete return type.
func NewStream() *Stream {
	return &Stream{subs: make(map[uint64]chan Op)}
}

func (s *Stream) DrawVertex(v graph.Vertex) {
	s.emit(Op{Op: OpVertex, Vertex: &v})
}

func (s *Stream) DrawEdgeLine(from, to graph.Point) {
	s.emit(Op{Op: OpLine, From: &from, To: &to})
}

func (s *Stream) DrawText(text string, at graph.Point) {
	s.emit(Op{Op: OpText, Text: text, At: &at})
}

// Snapshot issues a numbered handle; clients store their pixels under it.
func (s *Stream) Snapshot() render.Snapshot {
	s.mu.Lock()
	s.nextHandle++
	h := s.nextHandle
	s.mu.Unlock()
	s.emit(Op{Op: OpSnapshot, Handle: h})
	return render.NewSnapshot(h)
}

// Restore tells clients to put back the pixels stored under the handle.
// Ops recorded after the snapshot are trimmed from the replay log.
func (s *Stream) Restore(snap render.Snapshot) {
	h, ok := snap.State().(uint64)
	if !ok {
		return
	}
	s.mu.Lock()
	for i := len(s.log) - 1; i >= 0; i-- {
		if s.log[i].Op == OpSnapshot && s.log[i].Handle == h {
			s.log = s.log[:i+1]
			break
		}
	}
	s.mu.Unlock()
	s.emit(Op{Op: OpRestore, Handle: h})
}

// Clear wipes the replay log and tells clients to clear.
func (s *Stream) Clear() {
	s.mu.Lock()
	s.log = s.log[:0]
	s.mu.Unlock()
	s.emit(Op{Op: OpClear})
}

// Subscribe returns the replay log, a channel of subsequent ops and a cancel
// function that must be called to release the subscription.
func (s *Stream) Subscribe() ([]Op, <-chan Op, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	replay := make([]Op, len(s.log))
	copy(replay, s.log)
	id := s.nextSub
	s.nextSub++
	ch := make(chan Op, subscriberBuffer)
	s.subs[id] = ch
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
			close(ch)
		})
	}
	return replay, ch, cancel
}

// Subscribers returns the number of open subscriptions.
func (s *Stream) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// Ops returns a copy of the replay log.
func (s *Stream) Ops() []Op {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Op, len(s.log))
	copy(out, s.log)
	return out
}

// Dropped returns how many ops were discarded for slow subscribers.
func (s *Stream) Dropped() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

func (s *Stream) emit(op Op) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if op.Op != OpRestore && op.Op != OpClear {
		s.log = append(s.log, op)
	}
	for _, ch := range s.subs {
		select {
		case ch <- op:
		default:
			s.dropped++
		}
	}
}
