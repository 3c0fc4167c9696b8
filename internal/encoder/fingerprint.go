package encoder

import (
	"image"

	"github.com/corona10/goimagehash"
)

// Fingerprint returns the perceptual hash of img, or "" if it cannot be hashed.
// Visually similar frames produce hashes a small Hamming distance apart.
func Fingerprint(img image.Image) string {
	if img == nil || img.Bounds().Empty() {
		return ""
	}
	hash, err := goimagehash.PerceptionHash(img)
	if err != nil {
		return ""
	}
	return hash.ToString()
}

// Distance returns the Hamming distance between two fingerprints.
func Distance(a, b string) (int, error) {
	ha, err := goimagehash.ImageHashFromString(a)
	if err != nil {
		return 0, err
	}
	hb, err := goimagehash.ImageHashFromString(b)
	if err != nil {
		return 0, err
	}
	return ha.Distance(hb)
}
