package detect

import (
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/nfnt/resize"
	"github.com/pkg/errors"
)

// prepareInput stages an image into the model's input tensor layout:
// resized to InputSize x InputSize, pixel values scaled to [0,1], arranged
// as NCHW planes (all red, then green, then blue).
//
// Arguments:
//   - img: The decoded frame at its native resolution.
//   - dst: The input tensor's backing slice.
func prepareInput(img image.Image, dst []float32) error {
	channelSize := InputSize * InputSize
	if len(dst) < channelSize*3 {
		return errors.Errorf("input tensor holds %d floats, need %d", len(dst), channelSize*3)
	}
	red := dst[0:channelSize]
	green := dst[channelSize : channelSize*2]
	blue := dst[channelSize*2 : channelSize*3]

	img = resize.Resize(InputSize, InputSize, img, resize.Lanczos3)

	i := 0
	for y := 0; y < InputSize; y++ {
		for x := 0; x < InputSize; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			red[i] = float32(r>>8) / 255.0
			green[i] = float32(g>>8) / 255.0
			blue[i] = float32(b>>8) / 255.0
			i++
		}
	}
	return nil
}

// loadImage decodes an on-disk frame.
func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening frame %s", path)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding frame %s", path)
	}
	return img, nil
}
