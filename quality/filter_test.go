package quality

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roomscan-ai/roomscan/capture"
	"github.com/roomscan-ai/roomscan/images"
)

// writeJPEG encodes img to path.
func writeJPEG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, jpeg.Encode(f, img, &jpeg.Options{Quality: 92}))
}

// checkerboard produces a sharp high-frequency image whose Laplacian
// variance is far above any sensible blur threshold.
func checkerboard(size, cell int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if (x/cell+y/cell)%2 == 0 {
				img.Set(x, y, color.RGBA{R: 255, G: 255, B: 255, A: 255})
			} else {
				img.Set(x, y, color.RGBA{A: 255})
			}
		}
	}
	return img
}

// flatGray is a featureless frame: zero edge response, so it reads as blurry.
func flatGray(size int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.Set(x, y, color.RGBA{R: 128, G: 128, B: 128, A: 255})
		}
	}
	return img
}

// stripes produces a sharp image structurally distinct from a checkerboard.
func stripes(size, band int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if (y/band)%2 == 0 {
				img.Set(x, y, color.RGBA{R: 255, A: 255})
			} else {
				img.Set(x, y, color.RGBA{B: 255, A: 255})
			}
		}
	}
	return img
}

func frameAt(path string, index int, ts float64) capture.RawFrame {
	return capture.RawFrame{Index: index, Path: path, Timestamp: ts}
}

// TestApplyDropsNearDuplicate covers the 3-frame scenario: frame 2 is a
// near-duplicate of frame 1 and frame 3 is sharp and distinct, so only
// frames 1 and 3 survive.
func TestApplyDropsNearDuplicate(t *testing.T) {
	dir := t.TempDir()

	p1 := filepath.Join(dir, "frame_0000.jpg")
	p2 := filepath.Join(dir, "frame_0001.jpg")
	p3 := filepath.Join(dir, "frame_0002.jpg")
	writeJPEG(t, p1, checkerboard(128, 16))
	// Same structure re-encoded: hash distance should be well under 10.
	writeJPEG(t, p2, checkerboard(128, 16))
	writeJPEG(t, p3, stripes(128, 16))

	f := NewFilter(Config{}, nil)
	out := f.Apply([]capture.RawFrame{
		frameAt(p1, 0, 0.0),
		frameAt(p2, 1, 0.66),
		frameAt(p3, 2, 1.33),
	})

	require.Len(t, out, 2, "near-duplicate middle frame must be dropped")
	assert.Equal(t, 0, out[0].Index)
	assert.Equal(t, 2, out[1].Index)
	assert.Equal(t, 0.0, out[0].Timestamp, "timestamps are retained, not renumbered")
	assert.Equal(t, 1.33, out[1].Timestamp)
}

// TestApplyDropsBlurryFrames verifies the focus-measure gate.
func TestApplyDropsBlurryFrames(t *testing.T) {
	dir := t.TempDir()

	sharp := filepath.Join(dir, "sharp.jpg")
	blurry := filepath.Join(dir, "blurry.jpg")
	writeJPEG(t, sharp, checkerboard(128, 8))
	writeJPEG(t, blurry, flatGray(128))

	f := NewFilter(Config{}, nil)
	out := f.Apply([]capture.RawFrame{
		frameAt(blurry, 0, 0.0),
		frameAt(sharp, 1, 1.0),
	})

	require.Len(t, out, 1)
	assert.Equal(t, 1, out[0].Index, "only the sharp frame survives")
}

// TestApplyOutputIsSubsequence verifies that for any input the output
// length never exceeds the input length and timestamps form a subsequence
// of the input timestamps in original order.
func TestApplyOutputIsSubsequence(t *testing.T) {
	dir := t.TempDir()

	var in []capture.RawFrame
	patterns := []image.Image{
		checkerboard(128, 8),
		checkerboard(128, 8), // duplicate
		flatGray(128),        // blurry
		stripes(128, 8),
		stripes(128, 8), // duplicate
	}
	for i, pat := range patterns {
		p := filepath.Join(dir, fmt.Sprintf("f%02d.jpg", i))
		writeJPEG(t, p, pat)
		in = append(in, frameAt(p, i, float64(i)*0.5))
	}

	out := NewFilter(Config{}, nil).Apply(in)
	assert.LessOrEqual(t, len(out), len(in))

	// Every output timestamp must appear in the input, in order.
	cursor := 0
	for _, kept := range out {
		found := false
		for ; cursor < len(in); cursor++ {
			if in[cursor].Timestamp == kept.Timestamp {
				found = true
				cursor++
				break
			}
		}
		assert.True(t, found, "output timestamp %.2f must be an in-order input timestamp", kept.Timestamp)
	}
}

// TestApplyPairwiseHashDistance verifies the accepted set's pairwise
// perceptual-hash distances all meet the duplicate threshold.
func TestApplyPairwiseHashDistance(t *testing.T) {
	dir := t.TempDir()

	paths := []string{
		filepath.Join(dir, "a.jpg"),
		filepath.Join(dir, "b.jpg"),
		filepath.Join(dir, "c.jpg"),
	}
	writeJPEG(t, paths[0], checkerboard(128, 8))
	writeJPEG(t, paths[1], checkerboard(128, 8))
	writeJPEG(t, paths[2], stripes(128, 8))

	var in []capture.RawFrame
	for i, p := range paths {
		in = append(in, frameAt(p, i, float64(i)))
	}

	f := NewFilter(Config{}, nil)
	out := f.Apply(in)

	for i := 0; i < len(out); i++ {
		hi, err := images.PerceptualHash(out[i].Path)
		require.NoError(t, err)
		for j := i + 1; j < len(out); j++ {
			hj, err := images.PerceptualHash(out[j].Path)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, images.HashDistance(hi, hj), DefaultDuplicateDistance,
				"accepted frames %d and %d are closer than the duplicate threshold", i, j)
		}
	}
}

// TestApplySkipsUnreadableFrames verifies input errors degrade to fewer
// frames rather than an error.
func TestApplySkipsUnreadableFrames(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.jpg")
	writeJPEG(t, good, checkerboard(128, 8))

	out := NewFilter(Config{}, nil).Apply([]capture.RawFrame{
		frameAt(filepath.Join(dir, "missing.jpg"), 0, 0.0),
		frameAt(good, 1, 1.0),
	})
	require.Len(t, out, 1)
	assert.Equal(t, 1, out[0].Index)
}
