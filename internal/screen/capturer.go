// Package screen grabs the host display through the platform screenshot tool
package screen

import (
	"bytes"
	"crypto/md5"
	"fmt"
	"image"
	_ "image/jpeg" // JPEG decoder
	_ "image/png"  // PNG decoder
	"os"
	"sync"
)

// hashPrefix is how many leading bytes feed the change-detection hash.
const hashPrefix = 4096

// Capturer grabs decoded screenshots.
type Capturer interface {
	Grab() (image.Image, error)
	Close()
}

// backend implements platform-specific raw capture
type backend interface {
	captureRaw() ([]byte, error)
	cleanup()
}

// baseCapturer skips decoding when the raw screenshot is unchanged.
type baseCapturer struct {
	backend
	tempDir string

	mu       sync.Mutex
	lastHash [16]byte
	last     image.Image
}

func newBase(b backend, tempDir string) *baseCapturer {
	return &baseCapturer{backend: b, tempDir: tempDir}
}

func (c *baseCapturer) Grab() (image.Image, error) {
	data, err := c.captureRaw()
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("screenshot is empty")
	}

	hash := md5.Sum(data[:min(len(data), hashPrefix)])

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last != nil && hash == c.lastHash {
		return c.last, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode screenshot: %w", err)
	}
	c.lastHash = hash
	c.last = img
	return img, nil
}

func (c *baseCapturer) Close() {
	c.cleanup()
	if c.tempDir != "" {
		os.RemoveAll(c.tempDir)
	}
}

// tempDir creates the per-process scratch directory for screenshot files.
func tempDir() string {
	dir, err := os.MkdirTemp("", "screencapture-grab-*")
	if err != nil {
		return os.TempDir()
	}
	return dir
}
