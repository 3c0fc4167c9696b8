package capture

import (
	"context"

	"github.com/GriffinCanCode/screencapture/backend/platform/internal/render"
	"github.com/GriffinCanCode/screencapture/backend/platform/internal/surface"
	"github.com/GriffinCanCode/screencapture/backend/platform/internal/trace"
)

// session is the lifetime of one capture: a surface with a live view on it.
type session struct {
	surface *surface.Surface
	view    render.View
}

// open allocates a surface at the viewport size and attaches the renderer.
func (c *Controller) open() (*session, error) {
	w, h := c.win.InnerSize()
	surf := c.surfaces.Create(w, h)

	view, err := c.renderer.Attach(surf)
	if err != nil {
		surf.Remove()
		return nil, err
	}

	s := &session{surface: surf, view: view}
	c.live.Set(s)
	return s, nil
}

// dispose releases the session. Safe on every exit path.
func (c *Controller) dispose(ctx context.Context, s *session) {
	c.live.CompareAndClear(func(cur *session) bool { return cur == s })
	if err := s.view.Close(); err != nil {
		trace.Logger(ctx).Debug("view close failed", "surface", s.surface.ID(), "error", err)
	}
	s.surface.Remove()
}

// resize forwards a viewport change to the live view, if any.
func (c *Controller) resize(width, height int) {
	if s := c.live.Get(); s != nil {
		s.view.Resize(width, height)
	}
}
