// Package filter holds per-pixel passes over a pixel buffer. Every pass
// keeps alpha and leaves malformed buffers untouched.
package filter

import (
	"image"
	"image/color"
	"math"

	"rasterkit/okcolor"
	"rasterkit/palette"
	"rasterkit/pixbuf"

	"golang.org/x/image/draw"
)

func usable(buf *pixbuf.Buffer, name string) bool {
	if !buf.Valid() {
		pixbuf.Logger().Debug("refusing filter on malformed buffer", "filter", name)
		return false
	}
	return true
}

func clampByte(v float64) uint8 {
	return uint8(math.Round(min(max(v, 0), 255)))
}

// Invert replaces each colour channel v with 255-v.
func Invert(buf *pixbuf.Buffer) {
	if !usable(buf, "invert") {
		return
	}
	for i := 0; i < len(buf.Pix); i += 4 {
		buf.Pix[i] = 255 - buf.Pix[i]
		buf.Pix[i+1] = 255 - buf.Pix[i+1]
		buf.Pix[i+2] = 255 - buf.Pix[i+2]
	}
}

// Grayscale replaces each colour by the gray of the same OKLab lightness.
func Grayscale(buf *pixbuf.Buffer) {
	if !usable(buf, "grayscale") {
		return
	}
	for i := 0; i < len(buf.Pix); i += 4 {
		p := buf.Pix[i : i+4 : i+4]
		g := okcolor.FromNRGBA(color.NRGBA{R: p[0], G: p[1], B: p[2], A: p[3]}).Gray()
		p[0], p[1], p[2] = g, g, g
	}
}

// BrightnessContrast shifts brightness and stretches contrast around mid
// gray. Both amounts are in [-1, 1]; zero leaves the channel unchanged.
func BrightnessContrast(buf *pixbuf.Buffer, brightness, contrast float32) {
	if !usable(buf, "brightness-contrast") {
		return
	}
	b := float64(min(max(brightness, -1), 1)) * 255
	c := float64(min(max(contrast, -1), 0.999))
	factor := (1 + c) / (1 - c)

	var lut [256]uint8
	for v := range lut {
		lut[v] = clampByte((float64(v)-128)*factor + 128 + b)
	}
	for i := 0; i < len(buf.Pix); i += 4 {
		buf.Pix[i] = lut[buf.Pix[i]]
		buf.Pix[i+1] = lut[buf.Pix[i+1]]
		buf.Pix[i+2] = lut[buf.Pix[i+2]]
	}
}

// Posterize reduces each colour channel to levels evenly spaced values.
// Fewer than two levels is a no-op.
func Posterize(buf *pixbuf.Buffer, levels int) {
	if levels < 2 || levels > 256 || !usable(buf, "posterize") {
		return
	}
	step := 255 / float64(levels-1)

	var lut [256]uint8
	for v := range lut {
		lut[v] = clampByte(math.Round(float64(v)/step) * step)
	}
	for i := 0; i < len(buf.Pix); i += 4 {
		buf.Pix[i] = lut[buf.Pix[i]]
		buf.Pix[i+1] = lut[buf.Pix[i+1]]
		buf.Pix[i+2] = lut[buf.Pix[i+2]]
	}
}

// Quantize maps every colour onto pal. Without dithering each pixel takes
// the perceptually nearest entry; with dithering the error is diffused
// with Floyd-Steinberg.
func Quantize(buf *pixbuf.Buffer, pal color.Palette, dither bool) {
	if len(pal) == 0 || !usable(buf, "quantize") {
		return
	}

	if !dither {
		lab := palette.NewLab(pal)
		entries := make([]color.NRGBA, len(pal))
		for i, c := range pal {
			entries[i] = color.NRGBAModel.Convert(c).(color.NRGBA)
		}
		for i := 0; i < len(buf.Pix); i += 4 {
			p := buf.Pix[i : i+4 : i+4]
			e := entries[lab.Index(okcolor.FromNRGBA(color.NRGBA{R: p[0], G: p[1], B: p[2], A: 255}))]
			p[0], p[1], p[2] = e.R, e.G, e.B
		}
		return
	}

	// Dither the opaque colours; alpha is restored afterwards.
	src := buf.Clone()
	for i := 3; i < len(src.Pix); i += 4 {
		src.Pix[i] = 255
	}
	r := image.Rect(0, 0, buf.Width, buf.Height)
	dst := image.NewPaletted(r, pal)
	draw.FloydSteinberg.Draw(dst, r, src.Image(), image.Point{})

	for y := range buf.Height {
		for x := range buf.Width {
			e := color.NRGBAModel.Convert(pal[dst.ColorIndexAt(x, y)]).(color.NRGBA)
			i := buf.Offset(x, y)
			buf.Pix[i], buf.Pix[i+1], buf.Pix[i+2] = e.R, e.G, e.B
		}
	}
}
