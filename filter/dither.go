package filter

import (
	"fmt"
	"math"
	"strings"

	"rasterkit/pixbuf"
)

// DitherMode selects how quantization error is spread.
type DitherMode uint8

const (
	// Ordered offsets each pixel by a 4x4 Bayer threshold.
	Ordered DitherMode = iota
	// Diffusion pushes the error of each pixel onto its unvisited
	// neighbours with Floyd-Steinberg weights.
	Diffusion
)

func (m DitherMode) String() string {
	switch m {
	case Ordered:
		return "ordered"
	case Diffusion:
		return "diffusion"
	default:
		return fmt.Sprintf("DitherMode(%d)", uint8(m))
	}
}

// UnmarshalText parses "ordered" (or "bayer") and "diffusion" (or
// "floyd-steinberg").
func (m *DitherMode) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "ordered", "bayer":
		*m = Ordered
	case "diffusion", "floyd-steinberg":
		*m = Diffusion
	default:
		return fmt.Errorf("unsupported dither mode: %q", text)
	}
	return nil
}

var bayer4x4 = [16]float32{
	0.0 / 16.0, 8.0 / 16.0, 2.0 / 16.0, 10.0 / 16.0,
	12.0 / 16.0, 4.0 / 16.0, 14.0 / 16.0, 6.0 / 16.0,
	3.0 / 16.0, 11.0 / 16.0, 1.0 / 16.0, 9.0 / 16.0,
	15.0 / 16.0, 7.0 / 16.0, 13.0 / 16.0, 5.0 / 16.0,
}

// Dither reduces each colour channel to levels evenly spaced values,
// spreading the error by mode. strength in [0, 1] scales the dither; zero
// gives plain posterization. Fewer than two levels is a no-op.
func Dither(buf *pixbuf.Buffer, mode DitherMode, levels int, strength float32) {
	if levels < 2 || levels > 256 || !usable(buf, "dither") {
		return
	}
	strength = min(max(strength, 0), 1)
	step := 255 / float32(levels-1)

	quantize := func(v float32) uint8 {
		q := float32(math.Round(float64(v/step))) * step
		return clampByte(float64(q))
	}

	w, h := buf.Width, buf.Height
	if mode == Ordered {
		for y := range h {
			for x := range w {
				offset := (bayer4x4[(y&3)<<2|(x&3)] - 0.5) * step * strength
				i := buf.Offset(x, y)
				for ch := range 3 {
					buf.Pix[i+ch] = quantize(float32(buf.Pix[i+ch]) + offset)
				}
			}
		}
		return
	}

	// Error carried to the current and the next row, per channel.
	cur := make([]float32, (w+2)*3)
	next := make([]float32, (w+2)*3)
	for y := range h {
		for x := range w {
			i := buf.Offset(x, y)
			e := (x + 1) * 3
			for ch := range 3 {
				v := float32(buf.Pix[i+ch]) + cur[e+ch]
				q := quantize(v)
				buf.Pix[i+ch] = q
				err := (v - float32(q)) * strength

				cur[e+3+ch] += err * 7 / 16
				next[e-3+ch] += err * 3 / 16
				next[e+ch] += err * 5 / 16
				next[e+3+ch] += err * 1 / 16
			}
		}
		cur, next = next, cur
		clear(next)
	}
}
