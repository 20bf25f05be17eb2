package tui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/gyaneshwarpardhi/graphboard/internal/graph"
	"github.com/gyaneshwarpardhi/graphboard/internal/render"
)

// Terminal cells are roughly twice as tall as wide.
const (
	unitsPerCol = 10.0
	unitsPerRow = 20.0
)

var highlight = graph.Color{R: 255, G: 196, B: 0}

type cell struct {
	ch     rune
	fg, bg graph.Color
}

// Grid is a Surface made of terminal cells. Surface coordinates are scaled
// down so a board of the configured size fits a terminal.
type Grid struct {
	cols, rows int
	cells      []cell
	blank      cell
	edge       graph.Color
}

// NewGrid creates a grid covering opts.Width x opts.Height surface units.
func NewGrid(opts render.Options) *Grid {
	cols := max(int(float64(opts.Width)/unitsPerCol), 1)
	rows := max(int(float64(opts.Height)/unitsPerRow), 1)
	g := &Grid{
		cols:  cols,
		rows:  rows,
		cells: make([]cell, cols*rows),
		blank: cell{ch: ' ', fg: opts.EdgeColor, bg: opts.Background},
		edge:  opts.EdgeColor,
	}
	g.Clear()
	return g
}

// Size returns the grid size in cells.
func (g *Grid) Size() (cols, rows int) { return g.cols, g.rows }

// ToSurface maps a cell to the surface point at its centre.
func (g *Grid) ToSurface(col, row int) graph.Point {
	return graph.Point{X: (float64(col) + 0.5) * unitsPerCol, Y: (float64(row) + 0.5) * unitsPerRow}
}

// Contains reports whether a cell lies on the grid.
func (g *Grid) Contains(col, row int) bool {
	return col >= 0 && col < g.cols && row >= 0 && row < g.rows
}

// cellLimit keeps far-away points representable as cell indices.
const cellLimit = 1 << 20

func (g *Grid) toCell(p graph.Point) (int, int) {
	return toIndex(p.X / unitsPerCol), toIndex(p.Y / unitsPerRow)
}

func toIndex(f float64) int {
	if math.IsNaN(f) {
		return -cellLimit
	}
	return int(math.Max(-cellLimit, math.Min(cellLimit, math.Floor(f))))
}

func (g *Grid) set(col, row int, c cell) {
	if g.Contains(col, row) {
		g.cells[row*g.cols+col] = c
	}
}

func (g *Grid) at(col, row int) cell {
	return g.cells[row*g.cols+col]
}

// DrawVertex fills the cells whose centres fall inside the circle and rings
// them with the stroke colour.
func (g *Grid) DrawVertex(v graph.Vertex) {
	stroke, ring := v.Style.Stroke, 'o'
	if v.Style.Highlighted {
		stroke, ring = highlight, '#'
	}
	c0, r0 := g.toCell(graph.Point{X: v.Position.X - v.Radius, Y: v.Position.Y - v.Radius})
	c1, r1 := g.toCell(graph.Point{X: v.Position.X + v.Radius, Y: v.Position.Y + v.Radius})
	c0, r0 = max(c0, 0), max(r0, 0)
	c1, r1 = min(c1, g.cols-1), min(r1, g.rows-1)
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			p := g.ToSurface(col, row)
			d := math.Hypot(p.X-v.Position.X, p.Y-v.Position.Y)
			switch {
			case d > v.Radius:
			case d > v.Radius-unitsPerCol:
				g.set(col, row, cell{ch: ring, fg: stroke, bg: v.Style.Fill})
			default:
				g.set(col, row, cell{ch: ' ', fg: graph.Black, bg: v.Style.Fill})
			}
		}
	}
	col, row := g.toCell(v.Position)
	label := []rune(v.Label)
	col -= len(label) / 2
	for i, r := range label {
		g.set(col+i, row, cell{ch: r, fg: graph.Black, bg: v.Style.Fill})
	}
}

// DrawEdgeLine plots the part of the line that crosses the grid, cell by cell.
func (g *Grid) DrawEdgeLine(from, to graph.Point) {
	hi := graph.Point{X: float64(g.cols) * unitsPerCol, Y: float64(g.rows) * unitsPerRow}
	from, to, ok := render.ClipSegment(from, to, graph.Point{}, hi)
	if !ok {
		return
	}
	c0, r0 := g.toCell(from)
	c1, r1 := g.toCell(to)
	dc, dr := abs(c1-c0), -abs(r1-r0)
	sc, sr := sign(c1-c0), sign(r1-r0)
	e := dc + dr
	for {
		if g.Contains(c0, r0) {
			g.set(c0, r0, cell{ch: '*', fg: g.edge, bg: g.at(c0, r0).bg})
		}
		if c0 == c1 && r0 == r1 {
			return
		}
		e2 := 2 * e
		if e2 >= dr {
			e += dr
			c0 += sc
		}
		if e2 <= dc {
			e += dc
			r0 += sr
		}
	}
}

// DrawText writes text left to right from the cell holding at.
func (g *Grid) DrawText(text string, at graph.Point) {
	col, row := g.toCell(at)
	for i, r := range []rune(text) {
		if g.Contains(col+i, row) {
			g.set(col+i, row, cell{ch: r, fg: graph.Black, bg: g.at(col+i, row).bg})
		}
	}
}

func (g *Grid) Snapshot() render.Snapshot {
	saved := make([]cell, len(g.cells))
	copy(saved, g.cells)
	return render.NewSnapshot(saved)
}

func (g *Grid) Restore(s render.Snapshot) {
	saved, ok := s.State().([]cell)
	if !ok || len(saved) != len(g.cells) {
		return
	}
	copy(g.cells, saved)
}

func (g *Grid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.blank
	}
}

// Rune returns the character shown in a cell.
func (g *Grid) Rune(col, row int) rune {
	return g.at(col, row).ch
}

// Background returns the background colour of a cell.
func (g *Grid) Background(col, row int) graph.Color {
	return g.at(col, row).bg
}

// Render draws the grid with ANSI colours, one line per row. Runs of cells
// sharing colours are styled together.
func (g *Grid) Render() string {
	var b strings.Builder
	for row := 0; row < g.rows; row++ {
		if row > 0 {
			b.WriteByte('\n')
		}
		start := 0
		for col := 1; col <= g.cols; col++ {
			if col < g.cols && sameStyle(g.at(col, row), g.at(start, row)) {
				continue
			}
			var run strings.Builder
			for i := start; i < col; i++ {
				run.WriteRune(g.at(i, row).ch)
			}
			c := g.at(start, row)
			style := lipgloss.NewStyle().
				Foreground(lipgloss.Color(c.fg.Hex())).
				Background(lipgloss.Color(c.bg.Hex()))
			b.WriteString(style.Render(run.String()))
			start = col
		}
	}
	return b.String()
}

// Plain returns the grid characters without styling.
func (g *Grid) Plain() string {
	var b strings.Builder
	for row := 0; row < g.rows; row++ {
		if row > 0 {
			b.WriteByte('\n')
		}
		for col := 0; col < g.cols; col++ {
			b.WriteRune(g.at(col, row).ch)
		}
	}
	return b.String()
}

func sameStyle(a, b cell) bool {
	return a.fg == b.fg && a.bg == b.bg
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	}
	return 0
}
