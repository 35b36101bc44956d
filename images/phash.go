package images

import (
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/corona10/goimagehash"
	"github.com/pkg/errors"
)

// PerceptualHash computes the 64-bit DCT-based perceptual hash of an
// on-disk frame. The hash fingerprints the frame's coarse visual structure
// and is robust to minor encoding differences, which makes the Hamming
// distance between two hashes a cheap near-duplicate signal.
func PerceptualHash(path string) (*goimagehash.ImageHash, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening frame %s", path)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding frame %s", path)
	}
	return goimagehash.PerceptionHash(img)
}

// HashDistance returns the Hamming distance between two perceptual hashes.
// Mismatched hash kinds count as maximally distant rather than erroring,
// since the caller only uses the distance as a duplicate signal.
func HashDistance(a, b *goimagehash.ImageHash) int {
	d, err := a.Distance(b)
	if err != nil {
		return 64
	}
	return d
}

// DecodeDimensions returns the pixel width and height of an encoded image
// file without decoding the full pixel data.
func DecodeDimensions(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, errors.Wrapf(err, "opening image %s", path)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, errors.Wrapf(err, "decoding image config %s", path)
	}
	return cfg.Width, cfg.Height, nil
}
