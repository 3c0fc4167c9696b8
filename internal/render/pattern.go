package render

import (
	"image"
	"image/color"
	"sync"

	"github.com/GriffinCanCode/screencapture/backend/platform/internal/surface"
)

// checkerSize is the edge of one checker cell in pixels.
const checkerSize = 16

// Pattern renders a deterministic gradient with a checker overlay.
type Pattern struct{}

// NewPattern creates a pattern renderer.
func NewPattern() *Pattern { return &Pattern{} }

// Attach draws the pattern into s and keeps it in sync on resize.
func (p *Pattern) Attach(s *surface.Surface) (View, error) {
	v := &patternView{surface: s}
	s.Draw(paintPattern)
	return v, nil
}

type patternView struct {
	mu      sync.Mutex
	surface *surface.Surface
	closed  bool
}

func (v *patternView) Resize(width, height int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	v.surface.Resize(width, height)
	v.surface.Draw(paintPattern)
}

func (v *patternView) Close() error {
	v.mu.Lock()
	v.closed = true
	v.mu.Unlock()
	return nil
}

func paintPattern(img *image.RGBA) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.RGBA{
				R: uint8(x * 255 / w),
				G: uint8(y * 255 / h),
				B: 128,
				A: 255,
			}
			if (x/checkerSize+y/checkerSize)%2 == 0 {
				c.B = 255
			}
			img.SetRGBA(x, y, c)
		}
	}
}
