// Package raster is an in-memory RGBA drawing surface.
package raster

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/gyaneshwarpardhi/graphboard/internal/graph"
	"github.com/gyaneshwarpardhi/graphboard/internal/render"
)

// Name is the registry key of this backend.
const Name = "raster"

// highlightColor outlines highlighted vertices.
var highlightColor = color.RGBA{R: 255, G: 196, B: 0, A: 255}

// Surface draws into an *image.RGBA.
type Surface struct {
	img       *image.RGBA
	bg        color.RGBA
	edgeColor color.RGBA
	edgeWidth float64
	face      font.Face
}

// New creates a surface cleared to the background colour.
func New(opts render.Options) render.Surface {
	return NewSurface(opts)
}

// NewSurface is New with the concrete return type.
func NewSurface(opts render.Options) *Surface {
	w, h := opts.Width, opts.Height
	if w <= 0 {
		w = 800
	}
	if h <= 0 {
		h = 600
	}
	width := opts.EdgeWidth
	if width <= 0 {
		width = 1
	}
	s := &Surface{
		img:       image.NewRGBA(image.Rect(0, 0, w, h)),
		bg:        rgba(opts.Background),
		edgeColor: rgba(opts.EdgeColor),
		edgeWidth: width,
		face:      basicfont.Face7x13,
	}
	s.Clear()
	return s
}

// Image exposes the backing image.
func (s *Surface) Image() *image.RGBA { return s.img }

// DrawVertex paints a filled circle with a stroke and the label centred. Only
// the pixels where the circle overlaps the image are visited.
func (s *Surface) DrawVertex(v graph.Vertex) {
	cx, cy, r := v.Position.X, v.Position.Y, v.Radius
	fill, stroke := rgba(v.Style.Fill), rgba(v.Style.Stroke)
	thickness := 1.0
	if v.Style.Highlighted {
		stroke = highlightColor
		thickness = 4
	}

	b := s.img.Bounds()
	x0, x1, okX := span(cx-r, cx+r, b.Min.X, b.Max.X)
	y0, y1, okY := span(cy-r, cy+r, b.Min.Y, b.Max.Y)
	if okX && okY {
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				d := math.Hypot(float64(x)+0.5-cx, float64(y)+0.5-cy)
				switch {
				case d > r:
				// Strokes grow inwards so a later plain redraw covers a highlight.
				case d > r-thickness:
					s.img.SetRGBA(x, y, stroke)
				default:
					s.img.SetRGBA(x, y, fill)
				}
			}
		}
	}

	if v.Label != "" {
		s.text(v.Label, cx, cy, true)
	}
}

// DrawEdgeLine paints a line of the configured width, clipped to the image.
func (s *Surface) DrawEdgeLine(from, to graph.Point) {
	dx := to.X - from.X
	dy := to.Y - from.Y
	half := s.edgeWidth / 2
	b := s.img.Bounds()
	lo := graph.Point{X: float64(b.Min.X) - half - 1, Y: float64(b.Min.Y) - half - 1}
	hi := graph.Point{X: float64(b.Max.X) + half + 1, Y: float64(b.Max.Y) + half + 1}

	dist := math.Hypot(dx, dy)
	if dist < 1 {
		if _, _, ok := render.ClipSegment(from, from, lo, hi); !ok {
			return
		}
		for ty := -half; ty <= half; ty++ {
			for tx := -half; tx <= half; tx++ {
				s.img.SetRGBA(int(from.X+tx), int(from.Y+ty), s.edgeColor)
			}
		}
		return
	}
	a, z, ok := render.ClipSegment(from, to, lo, hi)
	if !ok {
		return
	}
	perpX, perpY := -dy/dist, dx/dist
	cdx, cdy := z.X-a.X, z.Y-a.Y
	steps := math.Max(math.Max(math.Abs(cdx), math.Abs(cdy)), 1)
	for i := 0.0; i <= steps; i++ {
		t := i / steps
		px := a.X + cdx*t
		py := a.Y + cdy*t
		for off := -half; off <= half; off += 0.5 {
			s.img.SetRGBA(int(px+perpX*off), int(py+perpY*off), s.edgeColor)
		}
	}
}

// DrawText paints text with its baseline starting at the given point.
func (s *Surface) DrawText(text string, at graph.Point) {
	s.text(text, at.X, at.Y, false)
}

// Snapshot copies the pixel buffer.
func (s *Surface) Snapshot() render.Snapshot {
	pix := make([]uint8, len(s.img.Pix))
	copy(pix, s.img.Pix)
	return render.NewSnapshot(pix)
}

// Restore copies a snapshot back. Snapshots of a different size are ignored.
func (s *Surface) Restore(snap render.Snapshot) {
	pix, ok := snap.State().([]uint8)
	if !ok || len(pix) != len(s.img.Pix) {
		return
	}
	copy(s.img.Pix, pix)
}

// Clear fills the surface with the background colour.
func (s *Surface) Clear() {
	draw.Draw(s.img, s.img.Bounds(), image.NewUniform(s.bg), image.Point{}, draw.Src)
}

// EncodePNG writes the current contents as PNG.
func (s *Surface) EncodePNG(w io.Writer) error {
	return png.Encode(w, s.img)
}

func (s *Surface) text(text string, x, y float64, centred bool) {
	width := float64(font.MeasureString(s.face, text).Ceil())
	if centred {
		x -= width / 2
		y += float64(s.face.Metrics().Ascent.Ceil()) / 2
	}
	b := s.img.Bounds()
	height := float64(s.face.Metrics().Height.Ceil())
	// Off-image text is skipped before fixed-point conversion can wrap it.
	if !(x+width >= float64(b.Min.X) && x <= float64(b.Max.X) &&
		y+height >= float64(b.Min.Y) && y-height <= float64(b.Max.Y)) {
		return
	}
	d := &font.Drawer{
		Dst:  s.img,
		Src:  image.NewUniform(color.Black),
		Face: s.face,
		Dot:  fixed.Point26_6{X: fixed.I(int(x)), Y: fixed.I(int(y))},
	}
	d.DrawString(text)
}

// span returns the pixel range [lo, hi) covered by [from, to] inside
// [min, max). ok is false when they do not overlap.
func span(from, to float64, min, max int) (lo, hi int, ok bool) {
	from = math.Max(math.Floor(from), float64(min))
	to = math.Min(math.Ceil(to)+1, float64(max))
	if !(from < to) {
		return 0, 0, false
	}
	return int(from), int(to), true
}

func rgba(c graph.Color) color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
}
