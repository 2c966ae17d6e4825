// Package palette provides the colour palettes used for quantization:
// a few built-in ones and RIFF PAL files.
package palette

import (
	"fmt"
	"image/color"
	stdpalette "image/color/palette"
	"log/slog"
	"math"
	"os"

	"rasterkit/okcolor"
)

var builtin = map[string]func() color.Palette{
	"bw":      func() color.Palette { return grays(2) },
	"gray4":   func() color.Palette { return grays(4) },
	"gray16":  func() color.Palette { return grays(16) },
	"vga16":   vga16,
	"websafe": func() color.Palette { return append(color.Palette{}, stdpalette.WebSafe...) },
	"plan9":   func() color.Palette { return append(color.Palette{}, stdpalette.Plan9...) },
}

// Names lists the built-in palettes.
func Names() []string {
	return []string{"bw", "gray4", "gray16", "vga16", "websafe", "plan9"}
}

// Load returns the built-in palette called name, or reads name as a RIFF
// PAL file and merges every palette it holds.
func Load(name string) (color.Palette, error) {
	if f, ok := builtin[name]; ok {
		return f(), nil
	}

	file, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("could not open palette %q: %w", name, err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			slog.Error("could not close palette file", "name", name, "error", closeErr)
		}
	}()

	pals, err := ReadFrom(file)
	if err != nil {
		return nil, fmt.Errorf("could not load palette %q: %w", name, err)
	}

	var res color.Palette
	for _, pal := range pals {
		res = append(res, pal...)
	}
	if len(res) == 0 {
		return nil, fmt.Errorf("palette %q has no colors", name)
	}
	return res, nil
}

func grays(n int) color.Palette {
	pal := make(color.Palette, n)
	for i := range n {
		v := uint8(i * 255 / (n - 1))
		pal[i] = color.NRGBA{R: v, G: v, B: v, A: 0xFF}
	}
	return pal
}

func vga16() color.Palette {
	rgb := [16][3]uint8{
		{0x00, 0x00, 0x00}, {0x00, 0x00, 0xAA}, {0x00, 0xAA, 0x00}, {0x00, 0xAA, 0xAA},
		{0xAA, 0x00, 0x00}, {0xAA, 0x00, 0xAA}, {0xAA, 0x55, 0x00}, {0xAA, 0xAA, 0xAA},
		{0x55, 0x55, 0x55}, {0x55, 0x55, 0xFF}, {0x55, 0xFF, 0x55}, {0x55, 0xFF, 0xFF},
		{0xFF, 0x55, 0x55}, {0xFF, 0x55, 0xFF}, {0xFF, 0xFF, 0x55}, {0xFF, 0xFF, 0xFF},
	}
	pal := make(color.Palette, len(rgb))
	for i, c := range rgb {
		pal[i] = color.NRGBA{R: c[0], G: c[1], B: c[2], A: 0xFF}
	}
	return pal
}

// Lab is a palette held in OKLab for perceptual nearest-colour lookups.
type Lab []okcolor.Lab

func NewLab(pal color.Palette) Lab {
	p := make(Lab, len(pal))
	for i, c := range pal {
		p[i] = okcolor.FromColor(c)
	}
	return p
}

// Index returns the index of the entry closest to lc, or 0 for an empty palette.
func (p Lab) Index(lc okcolor.Lab) int {
	ret, bestSum := 0, math.MaxFloat64
	for i, v := range p {
		sum := lc.Distance(v)
		if sum < bestSum {
			if sum == 0 {
				return i
			}
			ret, bestSum = i, sum
		}
	}
	return ret
}
