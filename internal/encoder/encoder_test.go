package encoder

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"golang.org/x/image/webp"
)

type fakeSource struct{ img *image.RGBA }

func (f fakeSource) Snapshot() *image.RGBA { return f.img }

// makePattern creates test images with distinct patterns for hashing.
func makePattern(pattern, w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var c color.RGBA
			switch pattern {
			case 0: // solid gray
				c = color.RGBA{R: 128, G: 128, B: 128, A: 255}
			case 1: // checkerboard
				if (x/8+y/8)%2 == 0 {
					c = color.RGBA{R: 255, G: 255, B: 255, A: 255}
				} else {
					c = color.RGBA{A: 255}
				}
			case 2: // horizontal gradient
				c = color.RGBA{R: uint8(x * 255 / w), B: uint8(255 - x*255/w), A: 255}
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		ok   bool
	}{
		{"webp", WebP, true},
		{"jpg", JPG, true},
		{"png", PNG, true},
		{"jpeg", "", false},
		{"gif", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseFormat(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseFormat(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestEncodeFormats(t *testing.T) {
	src := fakeSource{img: makePattern(2, 80, 60)}
	enc := New()

	tests := []struct {
		format Format
		mime   string
		decode func([]byte) (image.Image, error)
	}{
		{PNG, "image/png", func(b []byte) (image.Image, error) { return png.Decode(bytes.NewReader(b)) }},
		{JPG, "image/jpg", func(b []byte) (image.Image, error) { return jpeg.Decode(bytes.NewReader(b)) }},
		{WebP, "image/webp", func(b []byte) (image.Image, error) { return webp.Decode(bytes.NewReader(b)) }},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			blob, err := enc.Encode(src, tt.format)
			if err != nil {
				t.Fatalf("Encode() error: %v", err)
			}
			if blob.Type != tt.mime {
				t.Errorf("Type = %q, want %q", blob.Type, tt.mime)
			}
			if blob.Size() == 0 {
				t.Fatal("blob should not be empty")
			}
			img, err := tt.decode(blob.Data)
			if err != nil {
				t.Fatalf("decode error: %v", err)
			}
			if b := img.Bounds(); b.Dx() != 80 || b.Dy() != 60 {
				t.Errorf("decoded size = %dx%d, want 80x60", b.Dx(), b.Dy())
			}
		})
	}
}

func TestEncodeQualityIsFixed(t *testing.T) {
	if New().Quality() != 0.7 {
		t.Errorf("Quality() = %v, want 0.7", New().Quality())
	}

	// a JPEG at quality 70 is smaller than one at 100 for a busy image
	img := makePattern(1, 128, 128)
	var q100 bytes.Buffer
	_ = jpeg.Encode(&q100, img, &jpeg.Options{Quality: 100})

	blob, err := New().Encode(fakeSource{img: img}, JPG)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	if blob.Size() >= q100.Len() {
		t.Errorf("quality 0.7 blob (%d bytes) should be smaller than quality 1.0 (%d bytes)", blob.Size(), q100.Len())
	}
}

func TestEncodeNoBlob(t *testing.T) {
	tests := []struct {
		name   string
		src    Source
		format Format
	}{
		{"nil snapshot", fakeSource{}, PNG},
		{"zero size", fakeSource{img: image.NewRGBA(image.Rect(0, 0, 0, 0))}, JPG},
		{"unsupported format", fakeSource{img: makePattern(0, 4, 4)}, Format("gif")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blob, err := New().Encode(tt.src, tt.format)
			if !errors.Is(err, ErrNoBlob) {
				t.Errorf("Encode() error = %v, want ErrNoBlob", err)
			}
			if blob != nil {
				t.Error("blob should be nil on failure")
			}
		})
	}
}

func TestEncodeDataURL(t *testing.T) {
	url, err := New().EncodeDataURL(fakeSource{img: makePattern(1, 32, 32)})
	if err != nil {
		t.Fatalf("EncodeDataURL() error: %v", err)
	}

	const prefix = "data:image/webp;base64,"
	if !strings.HasPrefix(url, prefix) {
		t.Fatalf("data URL = %.40q..., want prefix %q", url, prefix)
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(url, prefix))
	if err != nil {
		t.Fatalf("base64 decode error: %v", err)
	}
	img, err := webp.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("webp decode error: %v", err)
	}
	if img.Bounds().Dx() != 32 {
		t.Errorf("decoded width = %d, want 32", img.Bounds().Dx())
	}
}

func TestEncodeDataURLEmpty(t *testing.T) {
	_, err := New().EncodeDataURL(fakeSource{img: image.NewRGBA(image.Rect(0, 0, 0, 10))})
	if !errors.Is(err, ErrNoDataURL) {
		t.Errorf("EncodeDataURL() error = %v, want ErrNoDataURL", err)
	}
}

func TestFingerprint(t *testing.T) {
	if Fingerprint(nil) != "" {
		t.Error("nil image should have no fingerprint")
	}

	gray := Fingerprint(makePattern(0, 64, 64))
	grayAgain := Fingerprint(makePattern(0, 64, 64))
	checker := Fingerprint(makePattern(1, 64, 64))
	gradient := Fingerprint(makePattern(2, 64, 64))

	if gray == "" || checker == "" {
		t.Fatal("fingerprints should not be empty")
	}
	if gray != grayAgain {
		t.Error("identical frames should have identical fingerprints")
	}

	d, err := Distance(checker, gradient)
	if err != nil {
		t.Fatalf("Distance() error: %v", err)
	}
	if d == 0 {
		t.Error("visually distinct frames should have distinct fingerprints")
	}
	if _, err := Distance("garbage", checker); err == nil {
		t.Error("Distance() should reject malformed fingerprints")
	}
}
