//go:build windows

package screen

import "errors"

type windowsBackend struct{}

func (w *windowsBackend) captureRaw() ([]byte, error) {
	// TODO: Implement using Windows GDI or DXGI
	return nil, errors.New("windows screen capture not implemented")
}

func (w *windowsBackend) cleanup() {}

// New creates a platform-specific screen capturer
func New() Capturer {
	return newBase(&windowsBackend{}, "")
}
