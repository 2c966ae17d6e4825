// Package maskops extracts, excludes and fills buffer regions selected by a mask.
package maskops

import (
	"image/color"

	"rasterkit/pixbuf"
)

// FillArea overwrites every pixel whose mask cell is set with c. The mask
// is aligned with the buffer origin; cells outside the buffer are ignored.
// It returns false only for a malformed buffer or mask.
func FillArea(buf *pixbuf.Buffer, mask *pixbuf.Mask, c color.NRGBA) bool {
	if !buf.Valid() || !mask.Valid() {
		pixbuf.Logger().Debug("refusing area fill: malformed buffer or mask")
		return false
	}

	px := [4]uint8{c.R, c.G, c.B, c.A}
	w := min(buf.Width, mask.Width)
	h := min(buf.Height, mask.Height)
	for y := range h {
		row := mask.Data[y*mask.Width : y*mask.Width+w]
		for x, v := range row {
			if v == 0 {
				continue
			}
			i := buf.Offset(x, y)
			copy(buf.Pix[i:i+4], px[:])
		}
	}
	return true
}

// Slice returns a mask-sized buffer holding the pixels of buf under the set
// cells of mask, with the mask placed at offset (rounded) over buf. Cells
// that land outside buf stay transparent. It returns nil for a malformed
// or empty mask.
func Slice(buf *pixbuf.Buffer, mask *pixbuf.Mask, offset pixbuf.Vec) *pixbuf.Buffer {
	if !buf.Valid() || !mask.Valid() || mask.Width == 0 || mask.Height == 0 {
		pixbuf.Logger().Debug("refusing slice: malformed buffer or mask")
		return nil
	}

	out := pixbuf.NewBuffer(mask.Width, mask.Height)
	o := offset.Round()
	for my := range mask.Height {
		sy := my + o.Y
		if sy < 0 || sy >= buf.Height {
			continue
		}
		for mx := range mask.Width {
			mi := my*mask.Width + mx
			if mask.Data[mi] == 0 {
				continue
			}
			sx := mx + o.X
			if sx < 0 || sx >= buf.Width {
				continue
			}
			si := buf.Offset(sx, sy)
			copy(out.Pix[mi*4:mi*4+4], buf.Pix[si:si+4])
		}
	}
	return out
}

// Crop returns a copy of buf with every pixel under a set mask cell made
// transparent; it is the complement of Slice for the same mask and offset.
// It returns nil for a malformed buffer or mask.
func Crop(buf *pixbuf.Buffer, mask *pixbuf.Mask, offset pixbuf.Vec) *pixbuf.Buffer {
	if !buf.Valid() || !mask.Valid() {
		pixbuf.Logger().Debug("refusing crop: malformed buffer or mask")
		return nil
	}

	out := buf.Clone()
	o := offset.Round()

	// Only the mask's footprint on buf can differ from the copy.
	x0, x1 := max(o.X, 0), min(o.X+mask.Width, buf.Width)
	y0, y1 := max(o.Y, 0), min(o.Y+mask.Height, buf.Height)
	for sy := y0; sy < y1; sy++ {
		for sx := x0; sx < x1; sx++ {
			if mask.Covers(sx-o.X, sy-o.Y) {
				i := out.Offset(sx, sy)
				clear(out.Pix[i : i+4])
			}
		}
	}
	return out
}
