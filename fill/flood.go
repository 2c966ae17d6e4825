// Package fill implements scanline flood fill over a pixel buffer.
package fill

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"rasterkit/pixbuf"
)

// LimitMode selects which side of a confinement mask a fill may reach.
type LimitMode uint8

const (
	// Inside restricts the fill to set mask cells.
	Inside LimitMode = iota
	// Outside restricts the fill to unset mask cells.
	Outside
)

func (m LimitMode) String() string {
	switch m {
	case Inside:
		return "inside"
	case Outside:
		return "outside"
	default:
		return fmt.Sprintf("LimitMode(%d)", uint8(m))
	}
}

// UnmarshalText parses "inside" or "outside".
func (m *LimitMode) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "inside":
		*m = Inside
	case "outside":
		*m = Outside
	default:
		return fmt.Errorf("unsupported limit mode: %q", text)
	}
	return nil
}

// FloodFill replaces the 4-connected region around seed whose colours lie
// within threshold of the seed colour. It reports whether any pixel changed.
func FloodFill(buf *pixbuf.Buffer, seed image.Point, c color.NRGBA, threshold uint8) bool {
	return flood(buf, seed, c, threshold, nil, Inside)
}

// FloodFillWithMask is FloodFill confined by mask according to mode. Mask
// cells are addressed by pixel coordinate; pixels without a mask cell are
// never filled.
func FloodFillWithMask(buf *pixbuf.Buffer, seed image.Point, c color.NRGBA, threshold uint8,
	mask *pixbuf.Mask, mode LimitMode,
) bool {
	if mask == nil {
		return FloodFill(buf, seed, c, threshold)
	}
	return flood(buf, seed, c, threshold, mask, mode)
}

type filler struct {
	buf       *pixbuf.Buffer
	target    [4]uint8
	fill      [4]uint8
	threshold uint8
	mask      *pixbuf.Mask
	mode      LimitMode
}

func flood(buf *pixbuf.Buffer, seed image.Point, c color.NRGBA, threshold uint8,
	mask *pixbuf.Mask, mode LimitMode,
) bool {
	if !buf.Valid() {
		pixbuf.Logger().Debug("refusing flood fill: malformed buffer")
		return false
	}
	if !buf.InBounds(seed.X, seed.Y) {
		return false
	}

	f := &filler{
		buf:       buf,
		fill:      [4]uint8{c.R, c.G, c.B, c.A},
		threshold: threshold,
		mask:      mask,
		mode:      mode,
	}
	i := buf.Offset(seed.X, seed.Y)
	copy(f.target[:], buf.Pix[i:i+4])
	if f.target == f.fill {
		return false
	}
	if !f.matches(seed.X, seed.Y) {
		return false
	}

	return f.run(seed)
}

// matches reports whether (x, y) is still to be filled: it passes the mask
// predicate, holds a colour within threshold of the seed colour, and does
// not hold the fill colour yet. Filled pixels never match again, which is
// what ends the fill.
func (f *filler) matches(x, y int) bool {
	if f.mask != nil {
		if !f.mask.Has(x, y) {
			return false
		}
		if f.mask.Covers(x, y) != (f.mode == Inside) {
			return false
		}
	}

	i := f.buf.Offset(x, y)
	p := f.buf.Pix[i : i+4 : i+4]
	if [4]uint8(p) == f.fill {
		return false
	}
	for ch := range 4 {
		d := int(p[ch]) - int(f.target[ch])
		if d < 0 {
			d = -d
		}
		if d > int(f.threshold) {
			return false
		}
	}
	return true
}

func (f *filler) run(seed image.Point) bool {
	w, h := f.buf.Width, f.buf.Height
	changed := false

	stack := []image.Point{seed}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !f.matches(p.X, p.Y) {
			continue
		}

		left, right := p.X, p.X
		for left > 0 && f.matches(left-1, p.Y) {
			left--
		}
		for right < w-1 && f.matches(right+1, p.Y) {
			right++
		}

		row := p.Y * w
		for x := left; x <= right; x++ {
			i := (row + x) * 4
			copy(f.buf.Pix[i:i+4], f.fill[:])
		}
		changed = true

		if p.Y > 0 {
			stack = f.queueRuns(stack, left, right, p.Y-1)
		}
		if p.Y < h-1 {
			stack = f.queueRuns(stack, left, right, p.Y+1)
		}
	}

	return changed
}

// queueRuns pushes the first pixel of every candidate run of row y within
// [left, right].
func (f *filler) queueRuns(stack []image.Point, left, right, y int) []image.Point {
	inRun := false
	for x := left; x <= right; x++ {
		if f.matches(x, y) {
			if !inRun {
				stack = append(stack, image.Pt(x, y))
				inRun = true
			}
		} else {
			inRun = false
		}
	}
	return stack
}
