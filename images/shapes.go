// Package images - Image geometry and quality measurements for the capture
// pipeline. Boxes here are normalized to [0,1] in the frame's own coordinate
// space so detections from differently sized sources stay comparable.
package images

// Rect is a lightweight bounding box in normalized image coordinates.
type Rect struct {
	// X1,Y1 is the top-left corner; X2,Y2 the bottom-right. All in [0,1].
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// NewRect builds a clamped normalized Rect from pixel coordinates.
//
// Arguments:
//   - x1, y1, x2, y2: Corner coordinates in pixels.
//   - width, height: Frame dimensions the coordinates are relative to.
//
// Returns:
//   - Rect: The normalized, clamped rectangle.
func NewRect(x1, y1, x2, y2 float64, width, height int) Rect {
	if width <= 0 || height <= 0 {
		return Rect{}
	}
	w := float64(width)
	h := float64(height)
	return Rect{
		X1: Clamp01(x1 / w),
		Y1: Clamp01(y1 / h),
		X2: Clamp01(x2 / w),
		Y2: Clamp01(y2 / h),
	}
}

// Clamp01 clamps v to the [0,1] interval.
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Clamped returns a copy of r with all coordinates clamped to [0,1].
func (r Rect) Clamped() Rect {
	return Rect{
		X1: Clamp01(r.X1),
		Y1: Clamp01(r.Y1),
		X2: Clamp01(r.X2),
		Y2: Clamp01(r.Y2),
	}
}

// Area returns the area of the rectangle. Degenerate boxes have zero area.
func (r Rect) Area() float64 {
	w := r.X2 - r.X1
	h := r.Y2 - r.Y1
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// CalculateIoU computes the Intersection over Union of two boxes.
//
// The intersection corner coordinates are the max of the top-left corners
// and the min of the bottom-right corners; if either intersection dimension
// is non-positive the boxes do not overlap and the IoU is 0. The union uses
// inclusion-exclusion: Area(A) + Area(B) - Area(A∩B).
//
// Returns:
//   - float64: A value in [0,1]. Identical boxes score 1.0, disjoint boxes 0.0.
func CalculateIoU(r, o Rect) float64 {
	ix1 := max(r.X1, o.X1)
	iy1 := max(r.Y1, o.Y1)
	ix2 := min(r.X2, o.X2)
	iy2 := min(r.Y2, o.Y2)

	interW := ix2 - ix1
	interH := iy2 - iy1
	if interW <= 0 || interH <= 0 {
		return 0.0
	}
	interArea := interW * interH

	unionArea := r.Area() + o.Area() - interArea
	if unionArea <= 0 {
		return 0.0
	}
	return interArea / unionArea
}
