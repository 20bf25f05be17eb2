package event

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/gyaneshwarpardhi/graphboard/internal/graph"
)

// Type names an interaction a UI can send to a session.
type Type string

const (
	ToggleVertex Type = "toggle_vertex"
	ToggleEdge   Type = "toggle_edge"
	StageText    Type = "stage_text"
	Click        Type = "click"
	Move         Type = "move"
	Clear        Type = "clear"
	RadiusUp     Type = "radius_up"
	RadiusDown   Type = "radius_down"
	Export       Type = "export"
	LabelVertex  Type = "label_vertex"
	MoveVertex   Type = "move_vertex"
)

var known = map[Type]bool{
	ToggleVertex: true, ToggleEdge: true, StageText: true, Click: true,
	Move: true, Clear: true, RadiusUp: true, RadiusDown: true,
	Export: true, LabelVertex: true, MoveVertex: true,
}

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid event")

// Event is the canonical input model for all incoming interactions.
// Positions are already in surface coordinates. Text carries the stage_text
// and label_vertex payloads; Vertex is the target id of move_vertex.
type Event struct {
	ID         string    `json:"id" yaml:"id"`
	Session    string    `json:"session,omitempty" yaml:"session,omitempty"`
	Type       Type      `json:"type" yaml:"type"`
	X          float64   `json:"x,omitempty" yaml:"x,omitempty"`
	Y          float64   `json:"y,omitempty" yaml:"y,omitempty"`
	Text       string    `json:"text,omitempty" yaml:"text,omitempty"`
	Vertex     *int      `json:"vertex,omitempty" yaml:"vertex,omitempty"`
	OccurredAt time.Time `json:"occurred_at,omitempty" yaml:"-"`
	ReceivedAt time.Time `json:"-" yaml:"-"`
}

// Point returns the event position.
func (e *Event) Point() graph.Point {
	return graph.Point{X: e.X, Y: e.Y}
}

// Stamp fills in a missing id and the receive time.
func (e *Event) Stamp(now time.Time) {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	e.ReceivedAt = now
}

// Validate checks that the type is known and that type-specific fields are
// present. Empty stage_text is valid; the controller ignores it.
func (e *Event) Validate() error {
	if e.Type == "" {
		return fmt.Errorf("%w: type is required", ErrInvalid)
	}
	if !known[e.Type] {
		return fmt.Errorf("%w: unknown type %q", ErrInvalid, e.Type)
	}
	if !finite(e.X) || !finite(e.Y) {
		return fmt.Errorf("%w: position must be finite", ErrInvalid)
	}
	switch e.Type {
	case LabelVertex:
		if e.Text == "" {
			return fmt.Errorf("%w: label_vertex needs text", ErrInvalid)
		}
	case MoveVertex:
		if e.Vertex == nil {
			return fmt.Errorf("%w: move_vertex needs vertex", ErrInvalid)
		}
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
