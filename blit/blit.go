// Package blit composites a patch buffer onto a destination buffer, either
// through a translate/scale/rotate transform with resampling or by a plain
// offset copy.
package blit

import (
	"fmt"
	"math"
	"strings"

	"rasterkit/pixbuf"
)

// Antialias selects how patch texels are sampled by Blit.
type Antialias uint8

const (
	None Antialias = iota
	Bilinear
)

func (a Antialias) String() string {
	switch a {
	case None:
		return "none"
	case Bilinear:
		return "bilinear"
	default:
		return fmt.Sprintf("Antialias(%d)", uint8(a))
	}
}

// UnmarshalText parses "none" or "bilinear".
func (a *Antialias) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "none", "nearest":
		*a = None
	case "bilinear":
		*a = Bilinear
	default:
		return fmt.Errorf("unsupported antialias mode: %q", text)
	}
	return nil
}

// Options describes where and how a patch lands on the destination. The
// forward transform rotates the patch about its centre, scales it, then
// translates it by Offset.
type Options struct {
	Offset pixbuf.Vec
	Scale  pixbuf.Vec
	// Rotation is in degrees.
	Rotation  float32
	Antialias Antialias
	FlipX     bool
	FlipY     bool
}

// DefaultOptions places the patch unscaled at the origin with bilinear sampling.
func DefaultOptions() Options {
	return Options{
		Scale:     pixbuf.Vec{X: 1, Y: 1},
		Antialias: Bilinear,
	}
}

// Blit composites patch onto dst under opts. Every destination pixel is
// mapped back into patch space; pixels landing outside the patch, or on a
// sample whose alpha is below 1, are left untouched. Malformed buffers or a
// zero scale make the call a no-op.
func Blit(dst, patch *pixbuf.Buffer, opts Options) {
	if !dst.Valid() || !patch.Valid() || patch.Len() == 0 {
		pixbuf.Logger().Debug("refusing blit: malformed buffer")
		return
	}
	if opts.Scale.X == 0 || opts.Scale.Y == 0 {
		pixbuf.Logger().Debug("refusing blit: zero scale", "scale", opts.Scale)
		return
	}

	cos, sin := rotation(opts.Rotation)

	pw, ph := float32(patch.Width), float32(patch.Height)
	cx := pw * opts.Scale.X / 2
	cy := ph * opts.Scale.Y / 2

	for ty := range dst.Height {
		relY := float32(ty) - opts.Offset.Y - cy
		for tx := range dst.Width {
			relX := float32(tx) - opts.Offset.X - cx

			// inverse rotation, then inverse scale
			sx := (relX*cos + relY*sin + cx) / opts.Scale.X
			sy := (-relX*sin + relY*cos + cy) / opts.Scale.Y
			if sx < 0 || sy < 0 || sx >= pw || sy >= ph {
				continue
			}

			if opts.FlipX {
				sx = pw - 1 - sx
			}
			if opts.FlipY {
				sy = ph - 1 - sy
			}

			var s texel
			if opts.Antialias == Bilinear {
				s = sampleBilinear(patch, sx, sy)
			} else {
				s = sampleNearest(patch, sx, sy)
			}
			if s[3] < 1 {
				continue
			}

			i := dst.Offset(tx, ty)
			over(dst.Pix[i:i+4:i+4], s)
		}
	}
}

// Patch composites patch onto dst translated by offset rounded to the
// nearest pixel, without any resampling. Fully transparent patch pixels
// and pixels falling outside dst are skipped.
func Patch(dst, patch *pixbuf.Buffer, offset pixbuf.Vec) {
	if !dst.Valid() || !patch.Valid() || patch.Len() == 0 {
		pixbuf.Logger().Debug("refusing patch: malformed buffer")
		return
	}

	d := offset.Round()
	for sy := range patch.Height {
		ty := sy + d.Y
		if ty < 0 || ty >= dst.Height {
			continue
		}
		for sx := range patch.Width {
			tx := sx + d.X
			if tx < 0 || tx >= dst.Width {
				continue
			}

			si := patch.Offset(sx, sy)
			p := patch.Pix[si : si+4 : si+4]
			if p[3] == 0 {
				continue
			}

			ti := dst.Offset(tx, ty)
			over(dst.Pix[ti:ti+4:ti+4], texel{float32(p[0]), float32(p[1]), float32(p[2]), float32(p[3])})
		}
	}
}

// PatchCopy is Patch on a copy of dst; dst itself is not modified.
func PatchCopy(dst, patch *pixbuf.Buffer, offset pixbuf.Vec) *pixbuf.Buffer {
	out := dst.Clone()
	Patch(out, patch, offset)
	return out
}

// rotation returns the cosine and sine of deg degrees. The angle is
// converted in float32 like the rest of the transform; only the trig
// itself runs in float64.
func rotation(deg float32) (cos, sin float32) {
	rad := deg * math.Pi / 180
	return float32(math.Cos(float64(rad))), float32(math.Sin(float64(rad)))
}
