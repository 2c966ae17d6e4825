// Package pixbuf holds the RGBA pixel buffer shared by every raster operation.
package pixbuf

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// Buffer is a straight (non-premultiplied) 8-bit RGBA pixel buffer.
type Buffer struct {
	Width  int
	Height int
	// Pix holds the pixels in R, G, B, A order. The pixel at (x, y) starts
	// at Pix[(y*Width+x)*4].
	Pix []uint8
}

// ByteLen returns the number of bytes a width x height buffer needs, or 0
// for degenerate sizes.
func ByteLen(width, height int) int {
	if width <= 0 || height <= 0 {
		return 0
	}
	return width * height * 4
}

// NewBuffer creates a fully transparent buffer.
func NewBuffer(width, height int) *Buffer {
	if width < 0 || height < 0 {
		width, height = 0, 0
	}
	return &Buffer{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, ByteLen(width, height)),
	}
}

// FromImage copies img into a new buffer, converting to straight alpha.
func FromImage(img image.Image) *Buffer {
	b := img.Bounds()
	buf := NewBuffer(b.Dx(), b.Dy())
	if len(buf.Pix) == 0 {
		return buf
	}

	if src, ok := img.(*image.NRGBA); ok {
		// Straight alpha already; copy rows to avoid a premultiplied round trip.
		rowLen := buf.Width * 4
		for y := range buf.Height {
			i := src.PixOffset(b.Min.X, b.Min.Y+y)
			copy(buf.Pix[y*rowLen:(y+1)*rowLen], src.Pix[i:i+rowLen])
		}
		return buf
	}

	dst := buf.Image()
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return buf
}

// Valid reports whether the pixel slice matches the declared dimensions.
func (b *Buffer) Valid() bool {
	return b != nil && b.Width >= 0 && b.Height >= 0 && len(b.Pix) == ByteLen(b.Width, b.Height)
}

// Len returns the length of the pixel data in bytes.
func (b *Buffer) Len() int {
	return len(b.Pix)
}

// Image returns an image.NRGBA sharing the buffer's memory.
func (b *Buffer) Image() *image.NRGBA {
	return &image.NRGBA{
		Pix:    b.Pix,
		Stride: b.Width * 4,
		Rect:   image.Rect(0, 0, b.Width, b.Height),
	}
}

// Clone returns a deep copy of the buffer.
func (b *Buffer) Clone() *Buffer {
	c := &Buffer{Width: b.Width, Height: b.Height, Pix: make([]uint8, len(b.Pix))}
	copy(c.Pix, b.Pix)
	return c
}

// InBounds reports whether (x, y) addresses a pixel of b.
func (b *Buffer) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < b.Width && y < b.Height
}

// Offset returns the index of the first byte of pixel (x, y). The caller
// must check bounds.
func (b *Buffer) Offset(x, y int) int {
	return (y*b.Width + x) * 4
}

// Pixel returns the colour at (x, y), or transparent black when out of bounds.
func (b *Buffer) Pixel(x, y int) color.NRGBA {
	if !b.InBounds(x, y) {
		return color.NRGBA{}
	}
	return b.PixelAt(b.Offset(x, y))
}

// SetPixel writes c at (x, y) and reports whether the stored value changed.
func (b *Buffer) SetPixel(x, y int, c color.NRGBA) bool {
	if !b.InBounds(x, y) {
		return false
	}
	return b.SetPixelAt(b.Offset(x, y), c)
}

// PixelAt reads the four bytes starting at byte index idx.
func (b *Buffer) PixelAt(idx int) color.NRGBA {
	if idx < 0 || idx+4 > len(b.Pix) {
		return color.NRGBA{}
	}
	p := b.Pix[idx : idx+4 : idx+4]
	return color.NRGBA{R: p[0], G: p[1], B: p[2], A: p[3]}
}

// SetPixelAt writes c at byte index idx and reports whether it changed.
func (b *Buffer) SetPixelAt(idx int, c color.NRGBA) bool {
	if idx < 0 || idx+4 > len(b.Pix) {
		return false
	}
	p := b.Pix[idx : idx+4 : idx+4]
	changed := p[0] != c.R || p[1] != c.G || p[2] != c.B || p[3] != c.A
	p[0], p[1], p[2], p[3] = c.R, c.G, c.B, c.A
	return changed
}

// Replace swaps in pix as the new backing array together with the new
// dimensions. It refuses (returns false) when the length does not match.
func (b *Buffer) Replace(pix []uint8, width, height int) bool {
	if width < 0 || height < 0 || len(pix) != ByteLen(width, height) {
		Logger().Debug("refusing buffer replace", "len", len(pix), "width", width, "height", height)
		return false
	}
	b.Width, b.Height, b.Pix = width, height, pix
	return true
}

// Import copies raw into the buffer, reusing its backing array when possible.
func (b *Buffer) Import(raw []uint8, width, height int) bool {
	n := ByteLen(width, height)
	if width < 0 || height < 0 || len(raw) != n {
		Logger().Debug("refusing buffer import", "len", len(raw), "width", width, "height", height)
		return false
	}
	if cap(b.Pix) < n {
		b.Pix = make([]uint8, n)
	}
	b.Pix = b.Pix[:n]
	copy(b.Pix, raw)
	b.Width, b.Height = width, height
	return true
}
