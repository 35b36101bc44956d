package images

import (
	"gocv.io/x/gocv"
)

// FocusMeasure computes the variance of the Laplacian of the grayscale
// image, a standard scalar proxy for sharpness. Blurry frames have weak
// edge response and therefore low variance.
//
// Arguments:
//   - img: A BGR frame as read by gocv.IMRead.
//
// Returns:
//   - float64: The focus measure. 0 for empty input.
func FocusMeasure(img gocv.Mat) float64 {
	if img.Empty() {
		return 0
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)

	lap := gocv.NewMat()
	defer lap.Close()
	gocv.Laplacian(gray, &lap, gocv.MatTypeCV64F, 1, 1, 0, gocv.BorderDefault)

	data, err := lap.DataPtrFloat64()
	if err != nil || len(data) == 0 {
		return 0
	}

	var sum float64
	for _, v := range data {
		sum += v
	}
	mean := sum / float64(len(data))

	var varSum float64
	for _, v := range data {
		d := v - mean
		varSum += d * d
	}
	return varSum / float64(len(data))
}

// FocusMeasureFile is FocusMeasure for an on-disk frame. Unreadable files
// score 0 so they fall below any sensible blur threshold.
func FocusMeasureFile(path string) float64 {
	img := gocv.IMRead(path, gocv.IMReadColor)
	if img.Empty() {
		return 0
	}
	defer img.Close()
	return FocusMeasure(img)
}
