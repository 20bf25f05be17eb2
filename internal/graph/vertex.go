package graph

import (
	"fmt"
	"strings"
)

// Point is a position in surface coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Color is an opaque RGB colour.
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Black is the default stroke colour.
var Black = Color{}

// String renders the colour the way canvas fill styles expect it.
func (c Color) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", c.R, c.G, c.B)
}

// Hex returns the colour as #rrggbb.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ParseColor accepts #rgb and #rrggbb forms.
func ParseColor(s string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	var r, g, b uint8
	switch len(hex) {
	case 3:
		if _, err := fmt.Sscanf(hex, "%1x%1x%1x", &r, &g, &b); err != nil {
			return Color{}, fmt.Errorf("parse colour %q: %w", s, err)
		}
		return Color{R: r * 17, G: g * 17, B: b * 17}, nil
	case 6:
		if _, err := fmt.Sscanf(hex, "%2x%2x%2x", &r, &g, &b); err != nil {
			return Color{}, fmt.Errorf("parse colour %q: %w", s, err)
		}
		return Color{R: r, G: g, B: b}, nil
	default:
		return Color{}, fmt.Errorf("parse colour %q: want #rgb or #rrggbb", s)
	}
}

// Style is presentation only; it carries no structural meaning.
type Style struct {
	Stroke      Color `json:"stroke"`
	Fill        Color `json:"fill"`
	Highlighted bool  `json:"highlighted"`
}

// Vertex is a node placed on the surface. Its ID equals its insertion index.
type Vertex struct {
	ID       int     `json:"id"`
	Label    string  `json:"label"`
	Position Point   `json:"position"`
	Radius   float64 `json:"radius"`
	Style    Style   `json:"style"`
}

// Contains reports whether p lies inside the vertex's axis-aligned bounding
// square (position ± radius on both axes). Corners outside the drawn circle
// still count as hits.
func (v *Vertex) Contains(p Point) bool {
	return p.X >= v.Position.X-v.Radius && p.X <= v.Position.X+v.Radius &&
		p.Y >= v.Position.Y-v.Radius && p.Y <= v.Position.Y+v.Radius
}

// Edge is an unordered pair of vertex ids, stored in the order the endpoints
// were specified.
type Edge struct {
	A int `json:"a"`
	B int `json:"b"`
}
