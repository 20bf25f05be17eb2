// Package controller is the interaction state machine of a drawing session.
// It turns pointer and mode events into graph mutations and draw requests.
package controller

import (
	"math/rand/v2"
	"time"

	"github.com/gyaneshwarpardhi/graphboard/internal/graph"
	"github.com/gyaneshwarpardhi/graphboard/internal/render"
)

// none marks an unset optional vertex id.
const none = -1

// Config holds the per-session defaults. The zero value is not usable; start
// from DefaultConfig.
type Config struct {
	DefaultRadius float64
	MinRadius     float64
	RadiusStep    float64
	// FillMin and FillMax bound each random fill channel to [FillMin, FillMax).
	FillMin int
	FillMax int
	Stroke  graph.Color
	// Rand drives fill colours. Nil means a time-seeded source.
	Rand *rand.Rand
}

// DefaultConfig returns the stock vertex settings.
func DefaultConfig() Config {
	return Config{
		DefaultRadius: 50,
		MinRadius:     15,
		RadiusStep:    5,
		FillMin:       80,
		FillMax:       256,
		Stroke:        graph.Black,
	}
}

// Annotation is free text placed on the surface.
type Annotation struct {
	Text     string      `json:"text"`
	Position graph.Point `json:"position"`
}

// Controller owns one session's graph and transient interaction state. It is
// not safe for concurrent use: each event must finish before the next starts.
type Controller struct {
	cfg     Config
	surface render.Surface
	rng     *rand.Rand

	g      *graph.Graph
	mode   Mode
	radius float64

	pendingEdge int
	base        render.Snapshot // surface before any rubber-band preview
	previewing  bool

	pendingText string
	selected    int
	annotations []Annotation
}

// New creates a controller in Select mode with an empty graph.
func New(cfg Config, surface render.Surface) *Controller {
	rng := cfg.Rand
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1))
	}
	if cfg.MinRadius <= 0 {
		cfg.MinRadius = 1
	}
	cfg.FillMin = max(cfg.FillMin, 0)
	cfg.FillMax = min(cfg.FillMax, 256)
	if cfg.FillMax <= cfg.FillMin {
		cfg.FillMin, cfg.FillMax = 0, 256
	}
	return &Controller{
		cfg:         cfg,
		surface:     surface,
		rng:         rng,
		g:           graph.New(),
		radius:      max(cfg.DefaultRadius, cfg.MinRadius),
		pendingEdge: none,
		selected:    none,
	}
}

// ToggleVertexMode switches PlacingVertex on or off. Turning it on while
// PlacingEdge is active leaves edge mode and drops the pending endpoint.
func (c *Controller) ToggleVertexMode() {
	if c.mode == ModePlacingVertex {
		c.setMode(ModeSelect)
		return
	}
	c.setMode(ModePlacingVertex)
}

// ToggleEdgeMode switches PlacingEdge on or off and drops any pending endpoint.
func (c *Controller) ToggleEdgeMode() {
	if c.mode == ModePlacingEdge {
		c.setMode(ModeSelect)
	} else {
		c.setMode(ModePlacingEdge)
	}
	c.cancelEdge()
}

// StageText queues text for the next click. Empty text is ignored.
func (c *Controller) StageText(text string) {
	if text == "" {
		return
	}
	c.setMode(ModePlacingText)
	c.pendingText = text
}

// PointerClick interprets a click according to the active mode.
func (c *Controller) PointerClick(p graph.Point) {
	switch c.mode {
	case ModePlacingVertex:
		c.placeVertex(p)
	case ModePlacingEdge:
		c.pickEndpoint(p)
	case ModePlacingText:
		c.placeText(p)
	case ModeSelect:
		c.toggleHighlight(p)
	}
}

// PointerMove draws the rubber-band preview while an edge is half specified.
func (c *Controller) PointerMove(p graph.Point) {
	if c.mode != ModePlacingEdge || c.pendingEdge == none {
		return
	}
	start, _ := c.g.Vertex(c.pendingEdge)
	c.surface.Restore(c.base)
	c.surface.DrawEdgeLine(start.Position, p)
	c.previewing = true
}

// Clear discards the graph and returns to Select with nothing pending.
// The default radius is kept.
func (c *Controller) Clear() {
	c.g = graph.New()
	c.mode = ModeSelect
	c.pendingEdge = none
	c.base = render.Snapshot{}
	c.previewing = false
	c.pendingText = ""
	c.selected = none
	c.annotations = nil
	c.surface.Clear()
}

// IncreaseRadius grows the default radius for vertices placed from now on.
func (c *Controller) IncreaseRadius() {
	c.radius += c.cfg.RadiusStep
}

// DecreaseRadius shrinks the default radius, never below the minimum.
func (c *Controller) DecreaseRadius() {
	c.radius = max(c.radius-c.cfg.RadiusStep, c.cfg.MinRadius)
}

// LabelSelected renames the highlighted vertex. It reports whether a vertex
// was relabelled.
func (c *Controller) LabelSelected(label string) bool {
	if c.selected == none || label == "" {
		return false
	}
	c.g.SetLabel(c.selected, label)
	v, _ := c.g.Vertex(c.selected)
	c.surface.DrawVertex(*v)
	return true
}

// MoveVertex repositions a vertex and redraws the scene.
func (c *Controller) MoveVertex(id int, p graph.Point) bool {
	if !c.g.MoveVertex(id, p) {
		return false
	}
	c.Redraw()
	return true
}

// Redraw repaints the whole scene: edges, then vertices, then text.
func (c *Controller) Redraw() {
	c.surface.Clear()
	for _, e := range c.g.Edges() {
		a, _ := c.g.Vertex(e.A)
		b, _ := c.g.Vertex(e.B)
		c.surface.DrawEdgeLine(a.Position, b.Position)
	}
	for _, v := range c.g.Vertices() {
		c.surface.DrawVertex(*v)
	}
	for _, a := range c.annotations {
		c.surface.DrawText(a.Text, a.Position)
	}
	c.previewing = false
	if c.pendingEdge != none {
		c.base = c.surface.Snapshot()
	}
}

// Export returns the adjacency list in its exchange format.
func (c *Controller) Export() string {
	return c.g.ExportAdjacency()
}

// Mode returns the active mode.
func (c *Controller) Mode() Mode { return c.mode }

// Radius returns the radius the next vertex will get.
func (c *Controller) Radius() float64 { return c.radius }

// Graph returns the session graph. Callers must not mutate it.
func (c *Controller) Graph() *graph.Graph { return c.g }

// PendingEdgeStart returns the first endpoint of a half-specified edge.
func (c *Controller) PendingEdgeStart() (int, bool) {
	return c.pendingEdge, c.pendingEdge != none
}

// PendingText returns the staged text, if any.
func (c *Controller) PendingText() (string, bool) {
	return c.pendingText, c.pendingText != ""
}

// Selected returns the highlighted vertex, if any.
func (c *Controller) Selected() (int, bool) {
	return c.selected, c.selected != none
}

// Annotations returns the placed text items in placement order.
func (c *Controller) Annotations() []Annotation {
	out := make([]Annotation, len(c.annotations))
	copy(out, c.annotations)
	return out
}

func (c *Controller) setMode(m Mode) {
	if c.mode == ModePlacingEdge && m != ModePlacingEdge {
		c.cancelEdge()
	}
	if c.mode == ModePlacingText && m != ModePlacingText {
		c.pendingText = ""
	}
	c.mode = m
}

// cancelEdge drops the pending endpoint and erases a preview if one is showing.
func (c *Controller) cancelEdge() {
	if c.previewing {
		c.surface.Restore(c.base)
	}
	c.pendingEdge = none
	c.base = render.Snapshot{}
	c.previewing = false
}

func (c *Controller) placeVertex(p graph.Point) {
	style := graph.Style{Stroke: c.cfg.Stroke, Fill: c.randomFill()}
	v := c.g.AddVertex("", p, c.radius, style)
	c.surface.DrawVertex(*v)
}

func (c *Controller) pickEndpoint(p graph.Point) {
	v, ok := c.g.VertexAt(p)
	if !ok {
		return
	}
	if c.pendingEdge == none {
		c.pendingEdge = v.ID
		c.surface.DrawVertex(*v)
		c.base = c.surface.Snapshot()
		return
	}
	if v.ID == c.pendingEdge {
		return
	}
	start, _ := c.g.Vertex(c.pendingEdge)
	c.g.AddEdge(start.ID, v.ID)
	c.pendingEdge = none
	c.base = render.Snapshot{}
	c.Redraw()
	c.surface.DrawEdgeLine(start.Position, v.Position)
	c.surface.DrawVertex(*start)
	c.surface.DrawVertex(*v)
}

func (c *Controller) placeText(p graph.Point) {
	if c.pendingText == "" {
		return
	}
	c.surface.DrawText(c.pendingText, p)
	c.annotations = append(c.annotations, Annotation{Text: c.pendingText, Position: p})
	c.pendingText = ""
	c.mode = ModeSelect
}

func (c *Controller) toggleHighlight(p graph.Point) {
	hit, ok := c.g.VertexAt(p)
	if !ok {
		return
	}
	for _, v := range c.g.Vertices() {
		if v.ID != hit.ID && v.Style.Highlighted {
			c.g.SetHighlighted(v.ID, false)
			c.surface.DrawVertex(*v)
		}
	}
	on := !hit.Style.Highlighted
	c.g.SetHighlighted(hit.ID, on)
	c.surface.DrawVertex(*hit)
	if on {
		c.selected = hit.ID
	} else {
		c.selected = none
	}
}

func (c *Controller) randomFill() graph.Color {
	span := c.cfg.FillMax - c.cfg.FillMin
	channel := func() uint8 {
		return uint8(c.cfg.FillMin + c.rng.IntN(span))
	}
	return graph.Color{R: channel(), G: channel(), B: channel()}
}
