package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/gyaneshwarpardhi/graphboard/internal/config"
	"github.com/gyaneshwarpardhi/graphboard/internal/controller"
	"github.com/gyaneshwarpardhi/graphboard/internal/event"
	"github.com/gyaneshwarpardhi/graphboard/internal/metrics"
	"github.com/gyaneshwarpardhi/graphboard/internal/render"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrQueueFull       = errors.New("event queue full")
	ErrTimeout         = errors.New("event processing timeout")
)

// Result is the outcome of processing a single event.
type Result struct {
	EventID    string          `json:"event_id"`
	SessionID  string          `json:"session_id"`
	Type       event.Type      `json:"type"`
	Mode       controller.Mode `json:"mode"`
	Vertices   int             `json:"vertices"`
	Edges      int             `json:"edges"`
	Export     string          `json:"export,omitempty"`
	DurationMs int64           `json:"duration_ms"`
}

// Engine owns the drawing sessions and serialises each session's events on a
// sharded worker pool.
type Engine struct {
	board    atomic.Pointer[config.BoardConfig]
	registry *render.Registry
	pool     *workerPool[*work]
	log      *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// work runs fn against one session on that session's shard.
type work struct {
	session *Session
	fn      func(*Session)
}

// New creates an Engine using board and starts the worker pool. The shard
// count and queue depth are fixed for the engine's lifetime.
func New(ctx context.Context, board *config.BoardConfig, reg *render.Registry) *Engine {
	e := &Engine{
		registry: reg,
		sessions: make(map[string]*Session),
		log:      slog.Default().With("component", "engine"),
	}
	e.board.Store(board)
	e.pool = newWorkerPool(ctx, board.Engine.Shards, board.Engine.QueueDepth,
		func(_ context.Context, w *work) { w.fn(w.session) })
	return e
}

// SwapConfig atomically replaces the board config (used on hot-reload).
// Sessions created afterwards use the new canvas and vertex settings.
func (e *Engine) SwapConfig(board *config.BoardConfig) {
	old := e.board.Swap(board)
	if old.Engine.Shards != board.Engine.Shards || old.Engine.QueueDepth != board.Engine.QueueDepth {
		e.log.Warn("engine shard settings change on restart only",
			"running_shards", e.pool.Shards(), "queue_depth", e.pool.QueueCap())
	}
}

// Shards returns the number of running shard workers.
func (e *Engine) Shards() int { return e.pool.Shards() }

// Config returns the active board config.
func (e *Engine) Config() *config.BoardConfig {
	return e.board.Load()
}

// CreateSession builds a session with a fresh controller and one surface per
// configured backend.
func (e *Engine) CreateSession() (*Session, error) {
	board := e.board.Load()
	backends, multi, err := e.registry.Build(board.Canvas.Backends, board.RenderOptions())
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	s := &Session{
		ID:        uuid.New().String(),
		CreatedAt: time.Now(),
		ctrl:      controller.New(board.Controller(nil), multi),
		backends:  backends,
	}
	e.mu.Lock()
	e.sessions[s.ID] = s
	e.mu.Unlock()
	metrics.SessionsActive.Inc()
	e.log.Info("session created", "session", s.ID, "backends", board.Canvas.Backends)
	return s, nil
}

// Session returns a live session by id.
func (e *Engine) Session(id string) (*Session, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	s, ok := e.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s, nil
}

// DeleteSession drops a session. Events already queued for it still run.
func (e *Engine) DeleteSession(id string) error {
	e.mu.Lock()
	_, ok := e.sessions[id]
	delete(e.sessions, id)
	e.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	metrics.SessionsActive.Dec()
	e.log.Info("session deleted", "session", id)
	return nil
}

// Sessions lists live session ids, sorted.
func (e *Engine) Sessions() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]string, 0, len(e.sessions))
	for id := range e.sessions {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// ProcessSync applies an event to its session and returns the result.
func (e *Engine) ProcessSync(ctx context.Context, ev *event.Event) (*Result, error) {
	resultC := make(chan *Result, 1)
	err := e.submit(ev.Session, func(s *Session) {
		resultC <- e.apply(s, ev)
	})
	if err != nil {
		return nil, err
	}

	timeout := time.Duration(e.board.Load().Engine.EventTimeoutMs) * time.Millisecond
	select {
	case res := <-resultC:
		return res, nil
	case <-time.After(timeout):
		return nil, fmt.Errorf("%w after %v", ErrTimeout, timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// ProcessAsync enqueues an event for background processing.
func (e *Engine) ProcessAsync(ev *event.Event) error {
	return e.submit(ev.Session, func(s *Session) {
		e.apply(s, ev)
	})
}

// Inspect runs fn on the session's shard, after every event queued before it,
// and waits for it to finish.
func (e *Engine) Inspect(ctx context.Context, id string, fn func(*Session)) error {
	done := make(chan struct{})
	err := e.submit(id, func(s *Session) {
		fn(s)
		close(done)
	})
	if err != nil {
		return err
	}

	timeout := time.Duration(e.board.Load().Engine.EventTimeoutMs) * time.Millisecond
	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("%w after %v", ErrTimeout, timeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Engine) submit(id string, fn func(*Session)) error {
	s, err := e.Session(id)
	if err != nil {
		return err
	}
	if !e.pool.Submit(id, &work{session: s, fn: fn}) {
		metrics.EventsDropped.Inc()
		return fmt.Errorf("%w (capacity %d per shard)", ErrQueueFull, e.pool.QueueCap())
	}
	metrics.EventsEnqueued.Inc()
	return nil
}

// QueueUtilization returns the fullest shard's used / capacity (0–1).
func (e *Engine) QueueUtilization() float64 {
	if e.pool.QueueCap() == 0 {
		return 0
	}
	return float64(e.pool.QueueLen()) / float64(e.pool.QueueCap())
}

func (e *Engine) apply(s *Session, ev *event.Event) *Result {
	start := time.Now()
	c := s.ctrl
	g := c.Graph()
	vertices, edges := g.VertexCount(), g.EdgeCount()

	res := &Result{EventID: ev.ID, SessionID: s.ID, Type: ev.Type}
	res.Export = Apply(c, ev)

	// Clear resets the graph, so only growth counts.
	g = c.Graph()
	if d := g.VertexCount() - vertices; d > 0 {
		metrics.VerticesAdded.Add(float64(d))
	}
	if d := g.EdgeCount() - edges; d > 0 {
		metrics.EdgesAdded.Add(float64(d))
	}

	res.Mode = c.Mode()
	res.Vertices = g.VertexCount()
	res.Edges = g.EdgeCount()
	elapsed := time.Since(start)
	res.DurationMs = elapsed.Milliseconds()
	metrics.EventsProcessed.WithLabelValues(string(ev.Type)).Inc()
	metrics.EventProcessingDuration.Observe(float64(elapsed.Microseconds()) / 1000)
	return res
}

// Apply feeds one event to a controller. It returns the export text for
// export events and "" otherwise. Unknown types are ignored.
func Apply(c *controller.Controller, ev *event.Event) string {
	switch ev.Type {
	case event.ToggleVertex:
		c.ToggleVertexMode()
	case event.ToggleEdge:
		c.ToggleEdgeMode()
	case event.StageText:
		c.StageText(ev.Text)
	case event.Click:
		c.PointerClick(ev.Point())
	case event.Move:
		c.PointerMove(ev.Point())
	case event.Clear:
		c.Clear()
	case event.RadiusUp:
		c.IncreaseRadius()
	case event.RadiusDown:
		c.DecreaseRadius()
	case event.Export:
		return c.Export()
	case event.LabelVertex:
		c.LabelSelected(ev.Text)
	case event.MoveVertex:
		if ev.Vertex != nil {
			c.MoveVertex(*ev.Vertex, ev.Point())
		}
	}
	return ""
}

// Shutdown drains the pool gracefully.
func (e *Engine) Shutdown() {
	e.pool.Drain()
}
