package blit

import (
	"math"

	"rasterkit/pixbuf"
)

// texel is an RGBA sample with channels in [0, 255].
type texel [4]float32

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// fetch reads the texel at (x, y) clamped to the patch edges.
func fetch(p *pixbuf.Buffer, x, y int) texel {
	x = clampInt(x, 0, p.Width-1)
	y = clampInt(y, 0, p.Height-1)
	i := p.Offset(x, y)
	return texel{float32(p.Pix[i]), float32(p.Pix[i+1]), float32(p.Pix[i+2]), float32(p.Pix[i+3])}
}

func sampleNearest(p *pixbuf.Buffer, x, y float32) texel {
	return fetch(p, int(math.Floor(float64(x))), int(math.Floor(float64(y))))
}

func sampleBilinear(p *pixbuf.Buffer, x, y float32) texel {
	x0 := int(math.Floor(float64(x)))
	y0 := int(math.Floor(float64(y)))
	fx := x - float32(x0)
	fy := y - float32(y0)

	t00 := fetch(p, x0, y0)
	t10 := fetch(p, x0+1, y0)
	t01 := fetch(p, x0, y0+1)
	t11 := fetch(p, x0+1, y0+1)

	var out texel
	for c := range out {
		top := t00[c]*(1-fx) + t10[c]*fx
		bottom := t01[c]*(1-fx) + t11[c]*fx
		out[c] = top*(1-fy) + bottom*fy
	}
	return out
}

// channel rounds half away from zero and clamps to a byte.
func channel(v float32) uint8 {
	r := math.Round(float64(v))
	if r <= 0 {
		return 0
	}
	if r >= 255 {
		return 255
	}
	return uint8(r)
}

// over composites s onto the 4-byte straight alpha pixel d (source-over).
func over(d []uint8, s texel) {
	sa := s[3] / 255
	da := float32(d[3]) / 255

	d[0] = channel(s[0]*sa + float32(d[0])*(1-sa))
	d[1] = channel(s[1]*sa + float32(d[1])*(1-sa))
	d[2] = channel(s[2]*sa + float32(d[2])*(1-sa))
	d[3] = channel((sa + da*(1-sa)) * 255)
}
