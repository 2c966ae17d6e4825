package edit

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"

	"rasterkit/fill"
	"rasterkit/pixbuf"

	"github.com/alecthomas/kong"
)

type FillCmd struct {
	FileParams
	X         int            `help:"Seed x" required:""`
	Y         int            `help:"Seed y" required:""`
	Color     string         `help:"Fill color as #RGB, #RGBA, #RRGGBB or #RRGGBBAA" required:""`
	Threshold uint8          `help:"Largest per channel difference from the seed color still filled" default:"0"`
	Mask      string         `help:"Image whose alpha confines the fill" type:"existingfile" group:"mask"`
	Limit     fill.LimitMode `help:"Fill inside or outside the mask" default:"inside" enum:"inside,outside" group:"mask"`
	FillColor color.NRGBA    `kong:"-"`
}

func (c *FillCmd) Validate(kctx *kong.Context) error {
	if err := c.validate(); err != nil {
		return err
	}

	var err error
	if c.FillColor, err = parseHexToColor(c.Color); err != nil {
		return fmt.Errorf("invalid fill color: %w", err)
	}
	return nil
}

func (c *FillCmd) Run() error {
	var mask *pixbuf.Mask
	if c.Mask != "" {
		var err error
		if mask, err = loadMask(c.Mask); err != nil {
			return err
		}
	}

	return c.process(func(logger *slog.Logger, buf *pixbuf.Buffer) (*pixbuf.Buffer, error) {
		seed := image.Pt(c.X, c.Y)
		if !buf.InBounds(seed.X, seed.Y) {
			return nil, fmt.Errorf("seed %v outside %dx%d image", seed, buf.Width, buf.Height)
		}

		var changed bool
		if mask != nil {
			changed = fill.FloodFillWithMask(buf, seed, c.FillColor, c.Threshold, mask, c.Limit)
		} else {
			changed = fill.FloodFill(buf, seed, c.FillColor, c.Threshold)
		}
		if !changed {
			logger.Warn("nothing to fill", "seed", seed)
		}
		return buf, nil
	})
}
