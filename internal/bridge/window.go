// Package bridge models the host window the capture core lives in: a viewport
// size plus passive listeners for cross-context messages and resize events.
package bridge

import (
	"encoding/json"
	"sync"

	"github.com/GriffinCanCode/screencapture/backend/platform/internal/syncx"
)

// Size is a viewport size in pixels.
type Size struct {
	Width  int
	Height int
}

// MessageListener receives every message posted to the window.
type MessageListener func(data json.RawMessage)

// ResizeListener receives the new viewport size.
type ResizeListener func(width, height int)

// Window holds the viewport and dispatches events to listeners.
type Window struct {
	viewport *syncx.Guard[Size]

	mu       sync.RWMutex
	messages []MessageListener
	resizes  []ResizeListener
}

// NewWindow creates a window with the given inner size.
func NewWindow(width, height int) *Window {
	return &Window{viewport: syncx.NewGuard(Size{Width: width, Height: height})}
}

// InnerSize returns the current viewport size.
func (w *Window) InnerSize() (int, int) {
	s := w.viewport.Get()
	return s.Width, s.Height
}

// AddMessageListener registers fn for all subsequent messages.
func (w *Window) AddMessageListener(fn MessageListener) {
	w.mu.Lock()
	w.messages = append(w.messages, fn)
	w.mu.Unlock()
}

// AddResizeListener registers fn for all subsequent resize events.
func (w *Window) AddResizeListener(fn ResizeListener) {
	w.mu.Lock()
	w.resizes = append(w.resizes, fn)
	w.mu.Unlock()
}

// PostMessage delivers data to every message listener in registration order.
func (w *Window) PostMessage(data json.RawMessage) {
	w.mu.RLock()
	listeners := append([]MessageListener(nil), w.messages...)
	w.mu.RUnlock()

	for _, fn := range listeners {
		fn(data)
	}
}

// Resize updates the viewport and notifies resize listeners immediately.
// Non-positive dimensions are ignored.
func (w *Window) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	w.viewport.Set(Size{Width: width, Height: height})

	w.mu.RLock()
	listeners := append([]ResizeListener(nil), w.resizes...)
	w.mu.RUnlock()

	for _, fn := range listeners {
		fn(width, height)
	}
}
