package blit

import (
	"bytes"
	"image/color"
	"math"
	"math/rand"
	"testing"

	"rasterkit/pixbuf"
)

var (
	red  = color.NRGBA{R: 255, A: 255}
	blue = color.NRGBA{B: 255, A: 255}
)

func solid(w, h int, c color.NRGBA) *pixbuf.Buffer {
	b := pixbuf.NewBuffer(w, h)
	for y := range h {
		for x := range w {
			b.SetPixel(x, y, c)
		}
	}
	return b
}

func opts(offX, offY float32) Options {
	o := DefaultOptions()
	o.Offset = pixbuf.Vec{X: offX, Y: offY}
	return o
}

func TestBlitPlacesOpaquePatch(t *testing.T) {
	dst := pixbuf.NewBuffer(4, 4)
	patch := solid(2, 2, red)

	Blit(dst, patch, opts(1, 1))

	for y := range 4 {
		for x := range 4 {
			want := color.NRGBA{}
			if x >= 1 && x <= 2 && y >= 1 && y <= 2 {
				want = red
			}
			if got := dst.Pixel(x, y); got != want {
				t.Errorf("Pixel(%d, %d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestBlitMatchesPatchWithoutTransform(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	offsets := []pixbuf.Vec{{X: 0, Y: 0}, {X: 2, Y: 1}, {X: -1, Y: 3}, {X: 5, Y: -2}}
	for _, mode := range []Antialias{None, Bilinear} {
		for _, off := range offsets {
			patch := pixbuf.NewBuffer(3, 4)
			rng.Read(patch.Pix)
			base := pixbuf.NewBuffer(6, 5)
			rng.Read(base.Pix)

			viaBlit := base.Clone()
			o := opts(off.X, off.Y)
			o.Antialias = mode
			Blit(viaBlit, patch, o)

			viaPatch := base.Clone()
			Patch(viaPatch, patch, off)

			if !bytes.Equal(viaBlit.Pix, viaPatch.Pix) {
				t.Errorf("mode %v offset %v: Blit and Patch disagree\nblit:  %v\npatch: %v",
					mode, off, viaBlit.Pix, viaPatch.Pix)
			}
		}
	}
}

func TestBlitScaleNearest(t *testing.T) {
	patch := pixbuf.NewBuffer(2, 2)
	colors := []color.NRGBA{
		{R: 10, A: 255}, {R: 20, A: 255},
		{R: 30, A: 255}, {R: 40, A: 255},
	}
	for i, c := range colors {
		patch.SetPixel(i%2, i/2, c)
	}

	dst := pixbuf.NewBuffer(4, 4)
	o := DefaultOptions()
	o.Scale = pixbuf.Vec{X: 2, Y: 2}
	o.Antialias = None
	Blit(dst, patch, o)

	for y := range 4 {
		for x := range 4 {
			want := colors[(y/2)*2+x/2]
			if got := dst.Pixel(x, y); got != want {
				t.Errorf("Pixel(%d, %d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestBlitBilinearBlendsNeighbours(t *testing.T) {
	patch := pixbuf.NewBuffer(2, 1)
	patch.SetPixel(0, 0, red)
	patch.SetPixel(1, 0, blue)

	dst := pixbuf.NewBuffer(4, 1)
	o := DefaultOptions()
	o.Scale = pixbuf.Vec{X: 2, Y: 1}
	Blit(dst, patch, o)

	tests := []struct {
		x    int
		want color.NRGBA
	}{
		{0, red},
		{1, color.NRGBA{R: 128, B: 128, A: 255}},
		{2, blue},
		{3, blue}, // right edge clamps instead of wrapping
	}
	for _, tt := range tests {
		if got := dst.Pixel(tt.x, 0); got != tt.want {
			t.Errorf("Pixel(%d, 0) = %v, want %v", tt.x, got, tt.want)
		}
	}
}

func TestBlitFlip(t *testing.T) {
	patch := pixbuf.NewBuffer(2, 2)
	patch.SetPixel(0, 0, red)
	patch.SetPixel(1, 1, blue)

	tests := []struct {
		name         string
		flipX, flipY bool
		at00, at11   color.NRGBA
	}{
		{"none", false, false, red, blue},
		{"x", true, false, color.NRGBA{}, color.NRGBA{}},
		{"both", true, true, blue, red},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := pixbuf.NewBuffer(2, 2)
			o := DefaultOptions()
			o.Antialias = None
			o.FlipX, o.FlipY = tt.flipX, tt.flipY
			Blit(dst, patch, o)

			if got := dst.Pixel(0, 0); got != tt.at00 {
				t.Errorf("Pixel(0, 0) = %v, want %v", got, tt.at00)
			}
			if got := dst.Pixel(1, 1); got != tt.at11 {
				t.Errorf("Pixel(1, 1) = %v, want %v", got, tt.at11)
			}
		})
	}
}

func TestBlitRotationAboutCentre(t *testing.T) {
	patch := solid(3, 3, red)
	dst := pixbuf.NewBuffer(6, 6)

	o := DefaultOptions()
	o.Rotation = 45
	Blit(dst, patch, o)

	if got := dst.Pixel(1, 1); got != red {
		t.Errorf("centre Pixel(1, 1) = %v, want %v", got, red)
	}
	if got := dst.Pixel(0, 0); got != (color.NRGBA{}) {
		t.Errorf("rotated-away corner Pixel(0, 0) = %v, want untouched", got)
	}
	if got := dst.Pixel(5, 5); got != (color.NRGBA{}) {
		t.Errorf("Pixel(5, 5) = %v, want untouched", got)
	}
}

func TestBlitAlphaCutoff(t *testing.T) {
	patch := pixbuf.NewBuffer(2, 1)
	patch.SetPixel(0, 0, color.NRGBA{R: 255})
	patch.SetPixel(1, 0, color.NRGBA{R: 255, A: 1})

	bg := color.NRGBA{G: 200, A: 255}
	dst := solid(4, 1, bg)
	o := DefaultOptions()
	o.Scale = pixbuf.Vec{X: 2, Y: 1}
	Blit(dst, patch, o)

	// x=1 samples alpha 0.5, which is below the cutoff.
	for _, x := range []int{0, 1} {
		if got := dst.Pixel(x, 0); got != bg {
			t.Errorf("Pixel(%d, 0) = %v, want untouched %v", x, got, bg)
		}
	}
	if got := dst.Pixel(2, 0); got == bg {
		t.Error("Pixel(2, 0) with alpha 1 should be composited")
	}
}

func TestBlitSourceOver(t *testing.T) {
	patch := solid(1, 1, color.NRGBA{R: 200, G: 100, A: 128})
	dst := solid(1, 1, blue)

	Blit(dst, patch, DefaultOptions())

	want := color.NRGBA{R: 100, G: 50, B: 127, A: 255}
	if got := dst.Pixel(0, 0); got != want {
		t.Errorf("Pixel(0, 0) = %v, want %v", got, want)
	}
}

func TestBlitRefusesMalformed(t *testing.T) {
	dst := pixbuf.NewBuffer(2, 2)
	patch := solid(1, 1, red)
	patch.Pix = patch.Pix[:3]

	Blit(dst, patch, DefaultOptions())
	if !bytes.Equal(dst.Pix, make([]uint8, 16)) {
		t.Error("Blit with malformed patch modified the destination")
	}

	good := solid(1, 1, red)
	o := DefaultOptions()
	o.Scale.X = 0
	Blit(dst, good, o)
	if !bytes.Equal(dst.Pix, make([]uint8, 16)) {
		t.Error("Blit with zero scale modified the destination")
	}
}

func TestPatchRoundsOffset(t *testing.T) {
	tests := []struct {
		name   string
		offset pixbuf.Vec
		x, y   int
	}{
		{"half up", pixbuf.Vec{X: 0.5, Y: 1.4}, 1, 1},
		{"half away from zero", pixbuf.Vec{X: -0.5, Y: 2.5}, -1, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := pixbuf.NewBuffer(4, 4)
			Patch(dst, solid(2, 2, red), tt.offset)

			for y := range 4 {
				for x := range 4 {
					inside := x >= tt.x && x < tt.x+2 && y >= tt.y && y < tt.y+2
					if got := dst.Pixel(x, y) == red; got != inside {
						t.Errorf("Pixel(%d, %d) red = %v, want %v", x, y, got, inside)
					}
				}
			}
		})
	}
}

func TestPatchCopyLeavesInput(t *testing.T) {
	dst := pixbuf.NewBuffer(2, 2)
	out := PatchCopy(dst, solid(1, 1, red), pixbuf.Vec{X: 1, Y: 1})

	if got := out.Pixel(1, 1); got != red {
		t.Errorf("out Pixel(1, 1) = %v, want %v", got, red)
	}
	if got := dst.Pixel(1, 1); got != (color.NRGBA{}) {
		t.Errorf("dst Pixel(1, 1) = %v, want untouched", got)
	}
	if !out.Valid() {
		t.Error("PatchCopy result violates the size invariant")
	}
}

func TestAntialiasText(t *testing.T) {
	var a Antialias
	if err := a.UnmarshalText([]byte("Bilinear")); err != nil || a != Bilinear {
		t.Errorf("UnmarshalText(Bilinear) = %v, %v", a, err)
	}
	if err := a.UnmarshalText([]byte("cubic")); err == nil {
		t.Error("UnmarshalText(cubic) should fail")
	}
	if None.String() != "none" {
		t.Errorf("None.String() = %q", None.String())
	}
}

func TestRotation(t *testing.T) {
	tests := []struct {
		deg      float32
		cos, sin float32
	}{
		{0, 1, 0},
		{90, 0, 1},
		{180, -1, 0},
		{-90, 0, -1},
		{45, 0.70710677, 0.70710677},
	}

	for _, tt := range tests {
		cos, sin := rotation(tt.deg)
		if d := cos - tt.cos; d > 1e-6 || d < -1e-6 {
			t.Errorf("cos(%v) = %v, want %v", tt.deg, cos, tt.cos)
		}
		if d := sin - tt.sin; d > 1e-6 || d < -1e-6 {
			t.Errorf("sin(%v) = %v, want %v", tt.deg, sin, tt.sin)
		}
	}

	// The radian conversion happens in float32, so the angle handed to
	// the trig is the float32 nearest to pi/2, not the float64 one.
	deg := float32(90)
	rad := deg * math.Pi / 180
	if cos, _ := rotation(90); cos != float32(math.Cos(float64(rad))) {
		t.Errorf("cos(90) = %v, want the float32 angle's cosine %v", cos, float32(math.Cos(float64(rad))))
	}
}
