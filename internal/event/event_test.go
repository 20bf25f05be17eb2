package event

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	id := 2
	cases := []struct {
		name string
		ev   Event
		ok   bool
	}{
		{"click", Event{Type: Click, X: 1, Y: 2}, true},
		{"empty stage text", Event{Type: StageText}, true},
		{"missing type", Event{}, false},
		{"unknown type", Event{Type: "drag"}, false},
		{"label without text", Event{Type: LabelVertex}, false},
		{"label", Event{Type: LabelVertex, Text: "a"}, true},
		{"move without vertex", Event{Type: MoveVertex}, false},
		{"move", Event{Type: MoveVertex, Vertex: &id}, true},
		{"far but finite", Event{Type: Move, X: 1e10, Y: -1e10}, true},
		{"nan position", Event{Type: Click, X: math.NaN()}, false},
		{"infinite position", Event{Type: Move, Y: math.Inf(-1)}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.ev.Validate()
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok {
				if err == nil {
					t.Fatal("expected error")
				}
				if !errors.Is(err, ErrInvalid) {
					t.Errorf("error %v does not wrap ErrInvalid", err)
				}
			}
		})
	}
}

func TestStamp(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	ev := Event{Type: Click}
	ev.Stamp(now)
	if ev.ID == "" {
		t.Error("expected generated id")
	}
	if !ev.ReceivedAt.Equal(now) {
		t.Errorf("ReceivedAt = %v", ev.ReceivedAt)
	}

	ev = Event{ID: "keep", Type: Click}
	ev.Stamp(now)
	if ev.ID != "keep" {
		t.Errorf("ID overwritten: %q", ev.ID)
	}
}

func TestDecode(t *testing.T) {
	var ev Event
	if err := json.Unmarshal([]byte(`{"type":"move_vertex","vertex":0,"x":3.5,"y":4}`), &ev); err != nil {
		t.Fatal(err)
	}
	if ev.Type != MoveVertex || ev.Vertex == nil || *ev.Vertex != 0 {
		t.Fatalf("decoded %+v", ev)
	}
	if p := ev.Point(); p.X != 3.5 || p.Y != 4 {
		t.Errorf("Point() = %+v", p)
	}
	if err := ev.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}
