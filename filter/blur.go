package filter

import (
	"fmt"
	"math"
	"strings"

	"rasterkit/pixbuf"
)

// AlphaMode selects what a blur does with the alpha channel.
type AlphaMode uint8

const (
	// AlphaBlur blurs alpha along with colour.
	AlphaBlur AlphaMode = iota
	// AlphaKeep blurs colour only; every pixel keeps its alpha.
	AlphaKeep
)

func (m AlphaMode) String() string {
	switch m {
	case AlphaBlur:
		return "blur"
	case AlphaKeep:
		return "keep"
	default:
		return fmt.Sprintf("AlphaMode(%d)", uint8(m))
	}
}

// UnmarshalText parses "blur" or "keep".
func (m *AlphaMode) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "blur":
		*m = AlphaBlur
	case "keep":
		*m = AlphaKeep
	default:
		return fmt.Errorf("unsupported alpha mode: %q", text)
	}
	return nil
}

// gaussianKernel returns a normalized kernel of 2*ceil(3*sigma)+1 taps.
func gaussianKernel(sigma float64) []float32 {
	half := int(math.Ceil(sigma * 3))
	kernel := make([]float32, 2*half+1)

	twoSigmaSq := 2 * sigma * sigma
	sum := 0.0
	vals := make([]float64, len(kernel))
	for i := range vals {
		x := float64(i - half)
		vals[i] = math.Exp(-(x * x) / twoSigmaSq)
		sum += vals[i]
	}
	for i, v := range vals {
		kernel[i] = float32(v / sum)
	}
	return kernel
}

// GaussianBlur blurs buf with a Gaussian of standard deviation radius.
// Colour is averaged weighted by alpha so transparent pixels do not bleed
// their colour into neighbours. A radius of zero or less is a no-op.
func GaussianBlur(buf *pixbuf.Buffer, radius float32, mode AlphaMode) {
	if radius <= 0 || !usable(buf, "gaussian-blur") || buf.Len() == 0 {
		return
	}

	w, h := buf.Width, buf.Height
	kernel := gaussianKernel(float64(radius))
	half := len(kernel) / 2

	// Premultiplied working copy.
	src := make([]float32, len(buf.Pix))
	for i := 0; i < len(buf.Pix); i += 4 {
		a := float32(buf.Pix[i+3]) / 255
		src[i] = float32(buf.Pix[i]) * a
		src[i+1] = float32(buf.Pix[i+1]) * a
		src[i+2] = float32(buf.Pix[i+2]) * a
		src[i+3] = a
	}

	tmp := make([]float32, len(src))
	for y := range h {
		for x := range w {
			var acc [4]float32
			for k, weight := range kernel {
				kx := min(max(x+k-half, 0), w-1)
				j := (y*w + kx) * 4
				acc[0] += src[j] * weight
				acc[1] += src[j+1] * weight
				acc[2] += src[j+2] * weight
				acc[3] += src[j+3] * weight
			}
			copy(tmp[(y*w+x)*4:], acc[:])
		}
	}

	for y := range h {
		for x := range w {
			var acc [4]float32
			for k, weight := range kernel {
				ky := min(max(y+k-half, 0), h-1)
				j := (ky*w + x) * 4
				acc[0] += tmp[j] * weight
				acc[1] += tmp[j+1] * weight
				acc[2] += tmp[j+2] * weight
				acc[3] += tmp[j+3] * weight
			}

			i := (y*w + x) * 4
			if acc[3] > 0 {
				buf.Pix[i] = clampByte(float64(acc[0] / acc[3]))
				buf.Pix[i+1] = clampByte(float64(acc[1] / acc[3]))
				buf.Pix[i+2] = clampByte(float64(acc[2] / acc[3]))
			}
			if mode == AlphaBlur {
				buf.Pix[i+3] = clampByte(float64(acc[3] * 255))
			}
		}
	}
}
