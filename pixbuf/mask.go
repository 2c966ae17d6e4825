package pixbuf

import "image"

// Mask is a byte-per-cell selection. A cell is set when its byte is nonzero;
// the magnitude is carried along but not interpreted.
type Mask struct {
	Width  int
	Height int
	Data   []uint8
}

// NewMask creates an empty mask.
func NewMask(width, height int) *Mask {
	if width < 0 || height < 0 {
		width, height = 0, 0
	}
	return &Mask{
		Width:  width,
		Height: height,
		Data:   make([]uint8, width*height),
	}
}

// MaskFromAlpha creates a mask from the alpha channel of img.
func MaskFromAlpha(img image.Image) *Mask {
	b := img.Bounds()
	m := NewMask(b.Dx(), b.Dy())
	for y := range m.Height {
		for x := range m.Width {
			_, _, _, a := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			m.Data[y*m.Width+x] = uint8(a >> 8)
		}
	}
	return m
}

// Valid reports whether Data covers every declared cell.
func (m *Mask) Valid() bool {
	return m != nil && m.Width >= 0 && m.Height >= 0 && len(m.Data) >= m.Width*m.Height
}

// Covers reports whether the cell at (x, y) is set. Cells outside the mask,
// or beyond the end of Data, are never set.
func (m *Mask) Covers(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	i := y*m.Width + x
	return i < len(m.Data) && m.Data[i] != 0
}

// Has reports whether (x, y) addresses an existing cell of the mask.
func (m *Mask) Has(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return y*m.Width+x < len(m.Data)
}

// Set stores v at (x, y); out-of-range writes are ignored.
func (m *Mask) Set(x, y int, v uint8) {
	if m.Has(x, y) {
		m.Data[y*m.Width+x] = v
	}
}
