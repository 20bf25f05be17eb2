package render

import (
	"math"

	"github.com/gyaneshwarpardhi/graphboard/internal/graph"
)

// ClipSegment cuts the segment from-to down to the part inside the box
// [min, max] (Liang-Barsky). ok is false when nothing of it is inside or when
// a coordinate is not finite.
func ClipSegment(from, to, min, max graph.Point) (graph.Point, graph.Point, bool) {
	for _, v := range []float64{from.X, from.Y, to.X, to.Y} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return from, to, false
		}
	}
	dx, dy := to.X-from.X, to.Y-from.Y
	t0, t1 := 0.0, 1.0
	edges := [4][2]float64{
		{-dx, from.X - min.X},
		{dx, max.X - from.X},
		{-dy, from.Y - min.Y},
		{dy, max.Y - from.Y},
	}
	for _, e := range edges {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return from, to, false
			}
			continue
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return from, to, false
			}
			t0 = math.Max(t0, r)
		} else {
			if r < t0 {
				return from, to, false
			}
			t1 = math.Min(t1, r)
		}
	}
	return graph.Point{X: from.X + t0*dx, Y: from.Y + t0*dy},
		graph.Point{X: from.X + t1*dx, Y: from.Y + t1*dy}, true
}
