package pixbuf

import (
	"image"
	"math"
)

// Vec is a sub-pixel offset or scale pair.
type Vec struct {
	X, Y float32
}

// Floor truncates towards negative infinity. Used for whole-buffer
// relocation origins.
func (v Vec) Floor() image.Point {
	return image.Pt(int(math.Floor(float64(v.X))), int(math.Floor(float64(v.Y))))
}

// Round rounds half away from zero. Used for patch placement and mask offsets.
func (v Vec) Round() image.Point {
	return image.Pt(int(math.Round(float64(v.X))), int(math.Round(float64(v.Y))))
}
