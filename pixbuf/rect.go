package pixbuf

import "image"

// clipRow returns the column span [start, end) of a rect row of width w
// placed at x that lies inside a row of width limit.
func clipRow(x, w, limit int) (int, int) {
	start, end := 0, w
	if x < 0 {
		start = -x
	}
	if x+end > limit {
		end = limit - x
	}
	return start, end
}

// ReadRect returns the pixels of r as a contiguous RGBA slice of
// r.Dx()*r.Dy()*4 bytes. Parts of r outside the buffer read as transparent.
func (b *Buffer) ReadRect(r image.Rectangle) []uint8 {
	w, h := r.Dx(), r.Dy()
	if w <= 0 || h <= 0 {
		return nil
	}

	out := make([]uint8, w*h*4)
	start, end := clipRow(r.Min.X, w, b.Width)
	if start >= end {
		return out
	}
	for row := range h {
		sy := r.Min.Y + row
		if sy < 0 || sy >= b.Height {
			continue
		}
		src := b.Offset(r.Min.X+start, sy)
		dst := (row*w + start) * 4
		copy(out[dst:dst+(end-start)*4], b.Pix[src:])
	}
	return out
}

// WriteRect copies data, laid out as r.Dx()*r.Dy() RGBA pixels, into r.
// Rows and columns falling outside the buffer are dropped. It fails only
// when r is empty or data has the wrong length.
func (b *Buffer) WriteRect(r image.Rectangle, data []uint8) bool {
	w, h := r.Dx(), r.Dy()
	if w <= 0 || h <= 0 || len(data) != w*h*4 {
		Logger().Debug("refusing rect write", "rect", r, "len", len(data))
		return false
	}

	start, end := clipRow(r.Min.X, w, b.Width)
	if start >= end {
		return true
	}
	for row := range h {
		dy := r.Min.Y + row
		if dy < 0 || dy >= b.Height {
			continue
		}
		dst := b.Offset(r.Min.X+start, dy)
		src := (row*w + start) * 4
		copy(b.Pix[dst:dst+(end-start)*4], data[src:])
	}
	return true
}

// WritePixels writes sparse pixels given as x,y pairs in coords and RGBA
// quadruples in colors. Coordinates outside the buffer are skipped; the
// whole batch is refused when the arrays do not describe the same count.
func (b *Buffer) WritePixels(coords []uint32, colors []uint8) bool {
	if len(coords)%2 != 0 || len(colors)%4 != 0 || len(coords)/2 != len(colors)/4 {
		Logger().Debug("refusing pixel batch", "coords", len(coords), "colors", len(colors))
		return false
	}

	for i := range len(coords) / 2 {
		x, y := uint64(coords[i*2]), uint64(coords[i*2+1])
		if x >= uint64(b.Width) || y >= uint64(b.Height) {
			continue
		}
		dst := b.Offset(int(x), int(y))
		copy(b.Pix[dst:dst+4], colors[i*4:i*4+4])
	}
	return true
}
