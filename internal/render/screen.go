package render

import (
	"image"
	"log/slog"
	"sync"

	"golang.org/x/image/draw"

	"github.com/GriffinCanCode/screencapture/backend/platform/internal/screen"
	"github.com/GriffinCanCode/screencapture/backend/platform/internal/surface"
)

// Screen renders the host desktop, as grabbed by the OS screenshot tool,
// scaled into the surface.
type Screen struct {
	grabber screen.Capturer
}

// NewScreen creates a screen renderer. A nil grabber uses the platform default.
func NewScreen(grabber screen.Capturer) *Screen {
	if grabber == nil {
		grabber = screen.New()
	}
	return &Screen{grabber: grabber}
}

// Attach grabs the screen into s. A failed grab leaves the surface blank;
// the encoder still sees a surface of the right size.
func (r *Screen) Attach(s *surface.Surface) (View, error) {
	v := &screenView{grabber: r.grabber, surface: s}
	v.paint()
	return v, nil
}

// Close releases the grabber's temp directory.
func (r *Screen) Close() {
	r.grabber.Close()
}

type screenView struct {
	grabber screen.Capturer
	mu      sync.Mutex
	surface *surface.Surface
	closed  bool
}

func (v *screenView) Resize(width, height int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	v.surface.Resize(width, height)
	v.paint()
}

func (v *screenView) Close() error {
	v.mu.Lock()
	v.closed = true
	v.mu.Unlock()
	return nil
}

func (v *screenView) paint() {
	src, err := v.grabber.Grab()
	if err != nil {
		slog.Warn("screen grab failed", "error", err)
		return
	}
	v.surface.Draw(func(dst *image.RGBA) { scaleNearest(dst, src) })
}

// scaleNearest resamples src into the whole of dst.
func scaleNearest(dst *image.RGBA, src image.Image) {
	if dst.Bounds().Empty() || src.Bounds().Empty() {
		return
	}
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
}
