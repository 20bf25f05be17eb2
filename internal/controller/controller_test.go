package controller_test

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyaneshwarpardhi/graphboard/internal/controller"
	"github.com/gyaneshwarpardhi/graphboard/internal/graph"
	"github.com/gyaneshwarpardhi/graphboard/internal/render"
)

// call is one request the controller made of the surface.
type call struct {
	kind  string
	id    int
	label string
	lit   bool
	from  graph.Point
	to    graph.Point
	text  string
	snap  int
}

// recorder is a Surface that keeps every call; snapshots are numbered.
type recorder struct {
	calls []call
	snaps int
}

func (r *recorder) DrawVertex(v graph.Vertex) {
	r.calls = append(r.calls, call{kind: "vertex", id: v.ID, label: v.Label, lit: v.Style.Highlighted})
}
func (r *recorder) DrawEdgeLine(from, to graph.Point) {
	r.calls = append(r.calls, call{kind: "line", from: from, to: to})
}
func (r *recorder) DrawText(text string, at graph.Point) {
	r.calls = append(r.calls, call{kind: "text", text: text, to: at})
}
func (r *recorder) Snapshot() render.Snapshot {
	r.snaps++
	r.calls = append(r.calls, call{kind: "snapshot", snap: r.snaps})
	return render.NewSnapshot(r.snaps)
}
func (r *recorder) Restore(s render.Snapshot) {
	n, _ := s.State().(int)
	r.calls = append(r.calls, call{kind: "restore", snap: n})
}
func (r *recorder) Clear() { r.calls = append(r.calls, call{kind: "clear"}) }

func (r *recorder) reset() { r.calls = nil }

func (r *recorder) kinds() []string {
	out := make([]string, len(r.calls))
	for i, c := range r.calls {
		out[i] = c.kind
	}
	return out
}

func newController(t *testing.T) (*controller.Controller, *recorder) {
	t.Helper()
	cfg := controller.DefaultConfig()
	cfg.Rand = rand.New(rand.NewPCG(1, 2))
	rec := &recorder{}
	return controller.New(cfg, rec), rec
}

func pt(x, y float64) graph.Point { return graph.Point{X: x, Y: y} }

// placeVertices drops vertices at the given points and returns to Select.
func placeVertices(c *controller.Controller, pts ...graph.Point) {
	c.ToggleVertexMode()
	for _, p := range pts {
		c.PointerClick(p)
	}
	c.ToggleVertexMode()
}

func TestPlacingVertex_Repeatable(t *testing.T) {
	c, rec := newController(t)
	c.ToggleVertexMode()
	require.Equal(t, controller.ModePlacingVertex, c.Mode())

	c.PointerClick(pt(100, 100))
	c.PointerClick(pt(300, 100))
	c.PointerClick(pt(100, 100)) // overlapping placement is allowed

	assert.Equal(t, controller.ModePlacingVertex, c.Mode())
	g := c.Graph()
	require.Equal(t, 3, g.VertexCount())
	for i, v := range g.Vertices() {
		assert.Equal(t, i, v.ID)
		assert.Equal(t, 50.0, v.Radius)
		assert.Equal(t, graph.Black, v.Style.Stroke)
		for _, ch := range []uint8{v.Style.Fill.R, v.Style.Fill.G, v.Style.Fill.B} {
			assert.GreaterOrEqual(t, ch, uint8(80))
		}
	}
	assert.Equal(t, []string{"vertex", "vertex", "vertex"}, rec.kinds())

	c.ToggleVertexMode()
	assert.Equal(t, controller.ModeSelect, c.Mode())
}

func TestRadius_ClampAndApplyToNewVerticesOnly(t *testing.T) {
	c, _ := newController(t)
	c.ToggleVertexMode()
	c.PointerClick(pt(100, 100))

	c.IncreaseRadius()
	assert.Equal(t, 55.0, c.Radius())
	c.PointerClick(pt(400, 100))

	for i := 0; i < 100; i++ {
		c.DecreaseRadius()
	}
	assert.Equal(t, 15.0, c.Radius())
	c.PointerClick(pt(700, 100))

	vs := c.Graph().Vertices()
	assert.Equal(t, []float64{50, 55, 15}, []float64{vs[0].Radius, vs[1].Radius, vs[2].Radius})
}

func TestPlacingEdge_TwoClicks(t *testing.T) {
	c, rec := newController(t)
	placeVertices(c, pt(100, 100), pt(300, 100))
	c.ToggleEdgeMode()
	rec.reset()

	c.PointerClick(pt(500, 500)) // miss
	_, pending := c.PendingEdgeStart()
	assert.False(t, pending)
	assert.Empty(t, rec.calls)

	c.PointerClick(pt(110, 90))
	start, pending := c.PendingEdgeStart()
	require.True(t, pending)
	assert.Equal(t, 0, start)
	assert.Equal(t, []string{"vertex", "snapshot"}, rec.kinds())

	c.PointerClick(pt(105, 105)) // same vertex again
	_, pending = c.PendingEdgeStart()
	assert.True(t, pending)
	assert.Zero(t, c.Graph().EdgeCount())

	rec.reset()
	c.PointerClick(pt(300, 120))
	_, pending = c.PendingEdgeStart()
	assert.False(t, pending)
	assert.Equal(t, []graph.Edge{{A: 0, B: 1}}, c.Graph().Edges())
	assert.Equal(t, controller.ModePlacingEdge, c.Mode())

	// Full redraw, then the edge and both endpoints on top.
	assert.Equal(t,
		[]string{"clear", "line", "vertex", "vertex", "line", "vertex", "vertex"},
		rec.kinds())
	last := rec.calls[len(rec.calls)-3:]
	assert.Equal(t, pt(100, 100), last[0].from)
	assert.Equal(t, pt(300, 100), last[0].to)
	assert.Equal(t, 0, last[1].id)
	assert.Equal(t, 1, last[2].id)
}

func TestPlacingEdge_DuplicateIsNoop(t *testing.T) {
	c, _ := newController(t)
	placeVertices(c, pt(100, 100), pt(300, 100))
	c.ToggleEdgeMode()
	c.PointerClick(pt(100, 100))
	c.PointerClick(pt(300, 100))
	c.PointerClick(pt(300, 100))
	c.PointerClick(pt(100, 100))

	assert.Equal(t, 1, c.Graph().EdgeCount())
	assert.Equal(t, []int{1}, c.Graph().Neighbors(0))
}

func TestPointerMove_RubberBand(t *testing.T) {
	c, rec := newController(t)
	placeVertices(c, pt(100, 100), pt(300, 100))

	c.PointerMove(pt(200, 200)) // Select mode: ignored
	c.ToggleEdgeMode()
	c.PointerMove(pt(200, 200)) // no pending start: ignored
	rec.reset()
	c.PointerMove(pt(200, 200))
	assert.Empty(t, rec.calls)

	c.PointerClick(pt(100, 100))
	rec.reset()
	c.PointerMove(pt(150, 160))
	c.PointerMove(pt(170, 180))
	require.Equal(t, []string{"restore", "line", "restore", "line"}, rec.kinds())
	assert.Equal(t, 1, rec.calls[0].snap)
	assert.Equal(t, pt(100, 100), rec.calls[3].from)
	assert.Equal(t, pt(170, 180), rec.calls[3].to)

	// Leaving edge mode erases the preview.
	rec.reset()
	c.ToggleEdgeMode()
	assert.Equal(t, []string{"restore"}, rec.kinds())
	_, pending := c.PendingEdgeStart()
	assert.False(t, pending)
}

func TestToggleVertexMode_LeavesEdgeMode(t *testing.T) {
	c, _ := newController(t)
	placeVertices(c, pt(100, 100))
	c.ToggleEdgeMode()
	c.PointerClick(pt(100, 100))
	_, pending := c.PendingEdgeStart()
	require.True(t, pending)

	c.ToggleVertexMode()
	assert.Equal(t, controller.ModePlacingVertex, c.Mode())
	_, pending = c.PendingEdgeStart()
	assert.False(t, pending)

	// Toggling edge mode back on starts without a pending endpoint.
	c.ToggleEdgeMode()
	assert.Equal(t, controller.ModePlacingEdge, c.Mode())
	_, pending = c.PendingEdgeStart()
	assert.False(t, pending)
}

func TestSelect_HighlightExclusive(t *testing.T) {
	c, _ := newController(t)
	placeVertices(c, pt(100, 100), pt(300, 100))
	g := c.Graph()
	lit := func(id int) bool {
		v, _ := g.Vertex(id)
		return v.Style.Highlighted
	}

	c.PointerClick(pt(100, 100)) // A
	assert.True(t, lit(0))

	c.PointerClick(pt(300, 100)) // B
	assert.False(t, lit(0))
	assert.True(t, lit(1))
	sel, ok := c.Selected()
	assert.True(t, ok)
	assert.Equal(t, 1, sel)

	c.PointerClick(pt(600, 600)) // miss keeps B
	assert.True(t, lit(1))

	c.PointerClick(pt(310, 110)) // B again
	assert.False(t, lit(0))
	assert.False(t, lit(1))
	_, ok = c.Selected()
	assert.False(t, ok)
}

func TestStageText(t *testing.T) {
	c, rec := newController(t)
	c.ToggleVertexMode()

	c.StageText("")
	assert.Equal(t, controller.ModePlacingVertex, c.Mode())

	c.StageText("hello")
	assert.Equal(t, controller.ModePlacingText, c.Mode())
	text, ok := c.PendingText()
	assert.True(t, ok)
	assert.Equal(t, "hello", text)

	rec.reset()
	c.PointerClick(pt(40, 50))
	assert.Equal(t, controller.ModeSelect, c.Mode())
	_, ok = c.PendingText()
	assert.False(t, ok)
	require.Len(t, rec.calls, 1)
	assert.Equal(t, call{kind: "text", text: "hello", to: pt(40, 50)}, rec.calls[0])
	assert.Equal(t, []controller.Annotation{{Text: "hello", Position: pt(40, 50)}}, c.Annotations())
	assert.Zero(t, c.Graph().VertexCount())
}

func TestStageText_DiscardedOnModeChange(t *testing.T) {
	c, _ := newController(t)
	c.StageText("later")
	c.ToggleEdgeMode()
	_, ok := c.PendingText()
	assert.False(t, ok)
	assert.Equal(t, controller.ModePlacingEdge, c.Mode())
}

func TestClear_ResetsEverything(t *testing.T) {
	c, rec := newController(t)
	placeVertices(c, pt(100, 100), pt(300, 100))
	c.PointerClick(pt(100, 100))
	c.ToggleEdgeMode()
	c.PointerClick(pt(100, 100))
	c.PointerClick(pt(300, 100))
	c.PointerClick(pt(300, 100))
	c.StageText("note")
	c.IncreaseRadius()

	rec.reset()
	c.Clear()

	assert.Equal(t, controller.ModeSelect, c.Mode())
	assert.Zero(t, c.Graph().VertexCount())
	assert.Zero(t, c.Graph().EdgeCount())
	_, ok := c.PendingEdgeStart()
	assert.False(t, ok)
	_, ok = c.PendingText()
	assert.False(t, ok)
	_, ok = c.Selected()
	assert.False(t, ok)
	assert.Empty(t, c.Annotations())
	assert.Equal(t, "[]", c.Export())
	assert.Equal(t, 55.0, c.Radius())
	assert.Equal(t, []string{"clear"}, rec.kinds())

	// New ids start from zero again in the fresh graph.
	placeVertices(c, pt(10, 10))
	assert.Equal(t, 0, c.Graph().Vertices()[0].ID)
}

func TestExport_Triangle(t *testing.T) {
	c, _ := newController(t)
	placeVertices(c, pt(100, 100), pt(300, 100), pt(200, 300))
	c.ToggleEdgeMode()
	for _, pair := range [][2]graph.Point{
		{pt(100, 100), pt(300, 100)},
		{pt(100, 100), pt(200, 300)},
		{pt(300, 100), pt(200, 300)},
	} {
		c.PointerClick(pair[0])
		c.PointerClick(pair[1])
	}
	assert.Equal(t, "[[1,2],\r\n[0,2],\r\n[0,1]]", c.Export())
}

func TestLabelSelected(t *testing.T) {
	c, rec := newController(t)
	placeVertices(c, pt(100, 100))
	assert.False(t, c.LabelSelected("start"))

	c.PointerClick(pt(100, 100))
	rec.reset()
	assert.True(t, c.LabelSelected("start"))
	v, _ := c.Graph().Vertex(0)
	assert.Equal(t, "start", v.Label)
	assert.Equal(t, []call{{kind: "vertex", id: 0, label: "start", lit: true}}, rec.calls)
}

func TestMoveVertex_Redraws(t *testing.T) {
	c, rec := newController(t)
	placeVertices(c, pt(100, 100), pt(300, 100))
	c.ToggleEdgeMode()
	c.PointerClick(pt(100, 100))
	c.PointerClick(pt(300, 100))
	c.StageText("t")
	c.PointerClick(pt(5, 5))

	rec.reset()
	assert.True(t, c.MoveVertex(1, pt(300, 400)))
	assert.Equal(t, []string{"clear", "line", "vertex", "vertex", "text"}, rec.kinds())
	assert.Equal(t, pt(300, 400), rec.calls[1].to)

	assert.False(t, c.MoveVertex(9, pt(0, 0)))
}

func TestModeStrings(t *testing.T) {
	for m, want := range map[controller.Mode]string{
		controller.ModeSelect:        "select",
		controller.ModePlacingVertex: "placing_vertex",
		controller.ModePlacingEdge:   "placing_edge",
		controller.ModePlacingText:   "placing_text",
		controller.Mode(9):           "mode(9)",
	} {
		assert.Equal(t, want, m.String())
		text, err := m.MarshalText()
		require.NoError(t, err)
		assert.Equal(t, want, string(text))
	}
}
