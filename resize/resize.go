// Package resize relocates buffer content into a new canvas size while
// keeping the overlapping pixels.
package resize

import (
	"image"

	"rasterkit/pixbuf"
)

// plan is the row copy shared by both variants: destination rows
// [dst.Min.Y, dst.Max.Y) and columns [dst.Min.X, dst.Max.X) are read from
// the old buffer shifted by delta.
type plan struct {
	oldW, newW int
	dst        image.Rectangle
	delta      image.Point // source = destination + delta
}

// newPlan maps old pixel (sx, sy) to (sx-srcOrigin+destOrigin) in a canvas
// of the given size, both origins floored.
func newPlan(oldW, oldH int, size image.Point, srcOrigin, destOrigin pixbuf.Vec) plan {
	src, dest := srcOrigin.Floor(), destOrigin.Floor()
	delta := src.Sub(dest)

	valid := image.Rect(0, 0, oldW, oldH).Sub(delta)
	return plan{
		oldW:  oldW,
		newW:  size.X,
		dst:   valid.Intersect(image.Rect(0, 0, size.X, size.Y)),
		delta: delta,
	}
}

func (p plan) rowLen() int {
	return p.dst.Dx() * 4
}

// offsets returns the byte offsets of destination row dy and its source row.
func (p plan) offsets(dy int) (dst, src int) {
	dst = (dy*p.newW + p.dst.Min.X) * 4
	src = ((dy+p.delta.Y)*p.oldW + p.dst.Min.X + p.delta.X) * 4
	return dst, src
}

func (p plan) copyInto(out, in []uint8) {
	n := p.rowLen()
	for dy := p.dst.Min.Y; dy < p.dst.Max.Y; dy++ {
		d, s := p.offsets(dy)
		copy(out[d:d+n], in[s:s+n])
	}
}

// Copy returns a new buffer of the given size holding old's pixels moved
// from srcOrigin to destOrigin. Everything outside the overlap is
// transparent. A malformed old buffer yields a transparent canvas; a zero
// size yields an empty buffer.
func Copy(old *pixbuf.Buffer, size image.Point, srcOrigin, destOrigin pixbuf.Vec) *pixbuf.Buffer {
	out := pixbuf.NewBuffer(size.X, size.Y)
	if out.Len() == 0 {
		return out
	}
	if !old.Valid() || old.Len() == 0 {
		pixbuf.Logger().Debug("resize copy from malformed buffer", "width", old.Width, "height", old.Height)
		return out
	}

	p := newPlan(old.Width, old.Height, size, srcOrigin, destOrigin)
	if !p.dst.Empty() {
		p.copyInto(out.Pix, old.Pix)
	}
	return out
}

// Resize changes buf to the given size in place, moving content from
// srcOrigin to destOrigin. Growing the pixel count allocates a new array;
// otherwise rows are moved within the existing one and the slice is
// truncated. A zero size, or an unchanged size with zero origins, leaves
// buf untouched.
func Resize(buf *pixbuf.Buffer, size image.Point, srcOrigin, destOrigin pixbuf.Vec) {
	if size.X <= 0 || size.Y <= 0 {
		return
	}
	if !buf.Valid() {
		pixbuf.Logger().Debug("refusing resize of malformed buffer")
		return
	}

	var origin image.Point
	src, dest := srcOrigin.Floor(), destOrigin.Floor()
	if buf.Width == size.X && buf.Height == size.Y && src == origin && dest == origin {
		return
	}

	n := pixbuf.ByteLen(size.X, size.Y)
	if n > buf.Len() {
		out := Copy(buf, size, srcOrigin, destOrigin)
		buf.Replace(out.Pix, out.Width, out.Height)
		return
	}

	p := newPlan(buf.Width, buf.Height, size, srcOrigin, destOrigin)
	pix := buf.Pix
	if !p.dst.Empty() {
		moveRows(p, pix)
	}
	clearOutside(pix[:n], size, p.dst)

	buf.Replace(pix[:n], size.X, size.Y)
}

// moveRows performs the plan inside a single array. Source rows are ordered
// in memory, so walking top down is safe while every row moves towards the
// start of the array and bottom up while every row moves towards the end.
// The shift changes linearly with the row, so checking the first and last
// rows is enough; when they disagree the source is snapshotted.
func moveRows(p plan, pix []uint8) {
	n := p.rowLen()
	firstDst, firstSrc := p.offsets(p.dst.Min.Y)
	lastDst, lastSrc := p.offsets(p.dst.Max.Y - 1)

	switch {
	case firstDst <= firstSrc && lastDst <= lastSrc:
		for dy := p.dst.Min.Y; dy < p.dst.Max.Y; dy++ {
			d, s := p.offsets(dy)
			copy(pix[d:d+n], pix[s:s+n])
		}
	case firstDst >= firstSrc && lastDst >= lastSrc:
		for dy := p.dst.Max.Y - 1; dy >= p.dst.Min.Y; dy-- {
			d, s := p.offsets(dy)
			copy(pix[d:d+n], pix[s:s+n])
		}
	default:
		snapshot := make([]uint8, lastSrc+n-firstSrc)
		copy(snapshot, pix[firstSrc:])
		for dy := p.dst.Min.Y; dy < p.dst.Max.Y; dy++ {
			d, s := p.offsets(dy)
			s -= firstSrc
			copy(pix[d:d+n], snapshot[s:s+n])
		}
	}
}

// clearOutside zeroes every pixel of a size canvas outside keep.
func clearOutside(pix []uint8, size image.Point, keep image.Rectangle) {
	rowLen := size.X * 4
	for y := range size.Y {
		row := pix[y*rowLen : (y+1)*rowLen]
		if keep.Empty() || y < keep.Min.Y || y >= keep.Max.Y {
			clear(row)
			continue
		}
		clear(row[:keep.Min.X*4])
		clear(row[keep.Max.X*4:])
	}
}
