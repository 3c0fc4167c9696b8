// Package render defines the renderer collaborator the capture core drives:
// attach to a drawable surface, resize on demand, produce pixels into it.
package render

import (
	"fmt"

	"github.com/GriffinCanCode/screencapture/backend/platform/internal/surface"
)

// Renderer attaches a view to a drawable surface.
type Renderer interface {
	Attach(s *surface.Surface) (View, error)
}

// View is a live renderer handle bound to one surface.
type View interface {
	// Resize changes the render size; the surface follows.
	Resize(width, height int)
	// Close detaches the view from its surface. Further Resize calls are no-ops.
	Close() error
}

// New returns the renderer registered under name.
func New(name string) (Renderer, error) {
	switch name {
	case "", "pattern":
		return NewPattern(), nil
	case "screen":
		return NewScreen(nil), nil
	default:
		return nil, fmt.Errorf("unknown renderer %q", name)
	}
}
