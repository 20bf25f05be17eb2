package controller

import "fmt"

// Mode is the active interaction mode. Exactly one is active at a time.
type Mode int

const (
	ModeSelect Mode = iota
	ModePlacingVertex
	ModePlacingEdge
	ModePlacingText
)

var modeNames = [...]string{
	ModeSelect:        "select",
	ModePlacingVertex: "placing_vertex",
	ModePlacingEdge:   "placing_edge",
	ModePlacingText:   "placing_text",
}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("mode(%d)", int(m))
	}
	return modeNames[m]
}

// MarshalText encodes the mode by name.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}
