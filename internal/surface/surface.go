// Package surface provides off-screen drawable surfaces and the registry that
// tracks which of them are attached.
package surface

import (
	"image"
	"image/draw"
	"sync"
)

// Surface is an exclusively-owned off-screen RGBA canvas.
type Surface struct {
	id       uint64
	registry *Registry

	mu      sync.RWMutex
	img     *image.RGBA
	removed bool
}

// ID returns the registry-assigned identifier.
func (s *Surface) ID() uint64 { return s.id }

// Size returns the current width and height.
func (s *Surface) Size() (int, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}

// Resize reallocates the backing buffer. Existing pixels are discarded,
// matching canvas semantics.
func (s *Surface) Resize(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.img = newRGBA(width, height)
}

// Draw runs fn with exclusive access to the pixel buffer.
func (s *Surface) Draw(fn func(img *image.RGBA)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.img)
}

// Snapshot copies the current pixels. It returns nil for a zero-sized surface.
func (s *Surface) Snapshot() *image.RGBA {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b := s.img.Bounds()
	if b.Empty() {
		return nil
	}
	out := image.NewRGBA(b)
	draw.Draw(out, b, s.img, b.Min, draw.Src)
	return out
}

// Remove detaches the surface from its registry. Safe to call twice.
func (s *Surface) Remove() {
	s.mu.Lock()
	if s.removed {
		s.mu.Unlock()
		return
	}
	s.removed = true
	s.mu.Unlock()

	if s.registry != nil {
		s.registry.detach(s.id)
	}
}

// Removed reports whether Remove has been called.
func (s *Surface) Removed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.removed
}

func newRGBA(width, height int) *image.RGBA {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return image.NewRGBA(image.Rect(0, 0, width, height))
}
