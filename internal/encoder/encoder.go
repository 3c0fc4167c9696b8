// Package encoder turns a drawable surface into an encoded image payload,
// either a binary blob or a textual data URL.
package encoder

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"math"

	"github.com/HugoSmits86/nativewebp"
)

// Quality is the fixed compression quality for every encode, in [0,1].
const Quality = 0.7

// Format is an image encoding accepted by the encoder.
type Format string

const (
	WebP Format = "webp"
	JPG  Format = "jpg"
	PNG  Format = "png"
)

// DefaultFormat is used when a request names no encoding.
const DefaultFormat = PNG

var (
	ErrNoBlob    = errors.New("no blob available")
	ErrNoDataURL = errors.New("no data URL available")
)

// ParseFormat reports whether s names a supported format.
func ParseFormat(s string) (Format, bool) {
	switch f := Format(s); f {
	case WebP, JPG, PNG:
		return f, true
	default:
		return "", false
	}
}

// MIME returns the blob type for f, "image/" followed by the format name.
func (f Format) MIME() string { return "image/" + string(f) }

// Blob is a binary image payload.
type Blob struct {
	Data []byte
	Type string
}

// Size returns the payload length in bytes.
func (b *Blob) Size() int { return len(b.Data) }

// Source is anything that can hand over its current pixels.
type Source interface {
	Snapshot() *image.RGBA
}

type encodeFunc func(w io.Writer, img image.Image, quality float64) error

var encoders = map[Format]encodeFunc{
	WebP: encodeWebP,
	JPG:  encodeJPEG,
	PNG:  encodePNG,
}

// Encoder encodes surfaces at a fixed quality.
type Encoder struct {
	quality float64
}

// New creates an encoder at the fixed Quality.
func New() *Encoder {
	return &Encoder{quality: Quality}
}

// Encode renders the source's current pixels into a blob of format f.
// A zero-sized source or an unsupported format yields ErrNoBlob.
func (e *Encoder) Encode(src Source, f Format) (*Blob, error) {
	data, err := e.encode(src, f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoBlob, err)
	}
	return &Blob{Data: data, Type: f.MIME()}, nil
}

// EncodeDataURL renders the source as a webp data URL regardless of the
// format a caller asked for.
func (e *Encoder) EncodeDataURL(src Source) (string, error) {
	data, err := e.encode(src, WebP)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoDataURL, err)
	}
	return "data:" + WebP.MIME() + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// Quality returns the compression quality in [0,1].
func (e *Encoder) Quality() float64 { return e.quality }

func (e *Encoder) encode(src Source, f Format) ([]byte, error) {
	enc, ok := encoders[f]
	if !ok {
		return nil, fmt.Errorf("unsupported format %q", f)
	}
	img := src.Snapshot()
	if img == nil || img.Bounds().Empty() {
		return nil, errors.New("surface is empty")
	}

	var buf bytes.Buffer
	buf.Grow(256 * 1024)
	if err := enc(&buf, img, e.quality); err != nil {
		return nil, err
	}
	if buf.Len() == 0 {
		return nil, errors.New("encoder produced no bytes")
	}
	return buf.Bytes(), nil
}

// encodeWebP writes lossless VP8L; quality does not apply.
func encodeWebP(w io.Writer, img image.Image, _ float64) error {
	return nativewebp.Encode(w, img, nil)
}

func encodeJPEG(w io.Writer, img image.Image, quality float64) error {
	return jpeg.Encode(w, img, &jpeg.Options{Quality: int(math.Round(quality * 100))})
}

func encodePNG(w io.Writer, img image.Image, _ float64) error {
	enc := &png.Encoder{CompressionLevel: png.DefaultCompression}
	return enc.Encode(w, img)
}
