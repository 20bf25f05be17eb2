package render_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyaneshwarpardhi/graphboard/internal/graph"
	"github.com/gyaneshwarpardhi/graphboard/internal/render"
)

// tape records calls by name.
type tape struct {
	calls []string
	saved int
}

func (t *tape) DrawVertex(graph.Vertex)               { t.calls = append(t.calls, "vertex") }
func (t *tape) DrawEdgeLine(graph.Point, graph.Point) { t.calls = append(t.calls, "line") }
func (t *tape) DrawText(string, graph.Point)          { t.calls = append(t.calls, "text") }
func (t *tape) Clear()                                { t.calls = append(t.calls, "clear") }

func (t *tape) Snapshot() render.Snapshot {
	t.calls = append(t.calls, "snapshot")
	t.saved = len(t.calls)
	return render.NewSnapshot(t.saved)
}

func (t *tape) Restore(s render.Snapshot) {
	if n, ok := s.State().(int); ok {
		t.calls = append(t.calls, "restore")
		t.saved = n
	}
}

func TestRegistry(t *testing.T) {
	reg := render.NewRegistry()
	reg.Register("a", func(render.Options) render.Surface { return &tape{} })
	reg.Register("b", func(render.Options) render.Surface { return &tape{} })

	assert.Equal(t, []string{"a", "b"}, reg.Names())
	assert.Panics(t, func() {
		reg.Register("a", func(render.Options) render.Surface { return &tape{} })
	})

	_, err := reg.Get("missing")
	assert.Error(t, err)

	byName, multi, err := reg.Build([]string{"b", "a"}, render.Options{})
	require.NoError(t, err)
	require.Len(t, multi, 2)
	assert.Same(t, byName["b"], multi[0])

	_, _, err = reg.Build([]string{"a", "nope"}, render.Options{})
	assert.Error(t, err)
}

func TestMulti_FansOut(t *testing.T) {
	a, b := &tape{}, &tape{}
	m := render.Multi{a, b}

	m.DrawVertex(graph.Vertex{})
	snap := m.Snapshot()
	m.DrawEdgeLine(graph.Point{}, graph.Point{})
	m.Restore(snap)
	m.DrawText("x", graph.Point{})
	m.Clear()

	want := []string{"vertex", "snapshot", "line", "restore", "text", "clear"}
	assert.Equal(t, want, a.calls)
	assert.Equal(t, want, b.calls)

	m.Restore(render.NewSnapshot("bogus"))
	assert.Equal(t, want, a.calls)
}
