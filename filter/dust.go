package filter

import (
	"image"

	"rasterkit/pixbuf"
)

// RemoveDust clears every 8-connected group of pixels with alpha above
// alphaThreshold that has at most maxSize pixels. Cleared pixels become
// transparent black. It returns the number of groups removed.
func RemoveDust(buf *pixbuf.Buffer, maxSize int, alphaThreshold uint8) int {
	if maxSize < 1 || !usable(buf, "dust-removal") {
		return 0
	}

	w, h := buf.Width, buf.Height
	solid := func(x, y int) bool {
		return buf.Pix[(y*w+x)*4+3] > alphaThreshold
	}

	seen := make([]bool, w*h)
	var group, stack []image.Point
	removed := 0
	for y := range h {
		for x := range w {
			if seen[y*w+x] || !solid(x, y) {
				continue
			}

			group = group[:0]
			stack = append(stack[:0], image.Pt(x, y))
			seen[y*w+x] = true
			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				group = append(group, p)

				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						nx, ny := p.X+dx, p.Y+dy
						if !buf.InBounds(nx, ny) || seen[ny*w+nx] || !solid(nx, ny) {
							continue
						}
						seen[ny*w+nx] = true
						stack = append(stack, image.Pt(nx, ny))
					}
				}
			}

			if len(group) > maxSize {
				continue
			}
			for _, p := range group {
				i := buf.Offset(p.X, p.Y)
				clear(buf.Pix[i : i+4])
			}
			removed++
		}
	}

	if removed > 0 {
		pixbuf.Logger().Debug("removed dust", "groups", removed, "max_size", maxSize)
	}
	return removed
}
