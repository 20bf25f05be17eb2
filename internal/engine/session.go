package engine

import (
	"time"

	"github.com/gyaneshwarpardhi/graphboard/internal/controller"
	"github.com/gyaneshwarpardhi/graphboard/internal/render"
)

// Session is one drawing board: a controller plus the surfaces it draws on.
// Touch the controller and surfaces only from inside Engine.Inspect.
type Session struct {
	ID        string
	CreatedAt time.Time

	ctrl     *controller.Controller
	backends map[string]render.Surface
}

// Controller returns the session's interaction controller.
func (s *Session) Controller() *controller.Controller { return s.ctrl }

// Backend returns the surface registered under name, if the session has one.
func (s *Session) Backend(name string) (render.Surface, bool) {
	b, ok := s.backends[name]
	return b, ok
}
