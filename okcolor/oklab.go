// based on:
// https://bottosson.github.io/posts/oklab/
// https://bottosson.github.io/posts/colorwrong/#what-can-we-do%3F

package okcolor

import (
	"image/color"
	"math"
)

// Lab is an OKLab colour with straight 8-bit alpha.
type Lab struct {
	L     float64 // perceived lightness
	A     float64 // how green/red the color is
	B     float64 // how blue/yellow the color is
	Alpha uint8
}

// linear maps an 8-bit sRGB channel to linear light.
var linear [256]float64

func init() {
	for i := range linear {
		linear[i] = toLinear(float64(i) / 255)
	}
}

func toLinear(x float64) float64 {
	if x >= 0.04045 {
		return math.Pow((x+0.055)/1.055, 2.4)
	}
	return x / 12.92
}

const pow float64 = 1.0 / 2.4

func fromLinear(x float64) float64 {
	if x >= 0.0031308 {
		return math.Pow(x, pow)*1.055 - 0.055
	}
	return x * 12.92
}

// FromNRGBA converts a straight alpha sRGB colour to OKLab.
func FromNRGBA(c color.NRGBA) Lab {
	r, g, b := linear[c.R], linear[c.G], linear[c.B]

	l := math.Cbrt(0.4122214708*r + 0.5363325363*g + 0.0514459929*b)
	m := math.Cbrt(0.2119034982*r + 0.6806995451*g + 0.1073969566*b)
	s := math.Cbrt(0.0883024619*r + 0.2817188376*g + 0.6299787005*b)

	return Lab{
		L:     0.2104542553*l + 0.7936177850*m - 0.0040720468*s,
		A:     1.9779984951*l - 2.4285922050*m + 0.4505937099*s,
		B:     0.0259040371*l + 0.7827717662*m - 0.8086757660*s,
		Alpha: c.A,
	}
}

// FromColor converts any colour to OKLab.
func FromColor(c color.Color) Lab {
	return FromNRGBA(color.NRGBAModel.Convert(c).(color.NRGBA))
}

// Gray returns the 8-bit sRGB gray level with the lightness of lc. With
// zero chroma every cone response equals L^3, which is also the linear
// value of each channel, so no gamut clipping is involved.
func (lc Lab) Gray() uint8 {
	l := min(max(lc.L, 0), 1)
	v := fromLinear(l*l*l) * 255
	return uint8(math.Round(min(max(v, 0), 255)))
}

// Distance returns the squared distance between two colours, alpha
// weighted on the same unit scale as lightness.
func (lc Lab) Distance(o Lab) float64 {
	dL := lc.L - o.L
	da := lc.A - o.A
	db := lc.B - o.B
	dA := (float64(lc.Alpha) - float64(o.Alpha)) / 255
	return dL*dL + da*da + db*db + dA*dA
}
