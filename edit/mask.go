package edit

import (
	"fmt"
	"image/color"
	"log/slog"

	"rasterkit/maskops"
	"rasterkit/pixbuf"

	"github.com/alecthomas/kong"
)

// MaskCmd applies a mask taken from the alpha channel of another image.
type MaskCmd struct {
	FileParams
	Mask      string      `help:"Image whose alpha is the mask" type:"existingfile" required:""`
	Op        string      `help:"slice keeps the masked pixels, crop removes them, fill paints them" enum:"slice,crop,fill" default:"slice"`
	X         float32     `help:"Mask offset along x, ignored by fill"`
	Y         float32     `help:"Mask offset along y, ignored by fill"`
	Color     string      `help:"Paint color for fill, as #RGB, #RGBA, #RRGGBB or #RRGGBBAA"`
	FillColor color.NRGBA `kong:"-"`
}

func (c *MaskCmd) Validate(kctx *kong.Context) error {
	if err := c.validate(); err != nil {
		return err
	}

	if c.Op == "fill" {
		if c.Color == "" {
			return fmt.Errorf("fill needs a color")
		}
		var err error
		if c.FillColor, err = parseHexToColor(c.Color); err != nil {
			return fmt.Errorf("invalid fill color: %w", err)
		}
	}
	return nil
}

func (c *MaskCmd) Run() error {
	mask, err := loadMask(c.Mask)
	if err != nil {
		return err
	}

	return c.process(func(logger *slog.Logger, buf *pixbuf.Buffer) (*pixbuf.Buffer, error) {
		return c.apply(logger, buf, mask)
	})
}

func (c *MaskCmd) apply(logger *slog.Logger, buf *pixbuf.Buffer, mask *pixbuf.Mask) (*pixbuf.Buffer, error) {
	offset := pixbuf.Vec{X: c.X, Y: c.Y}
	logger = logger.With("op", c.Op, "mask", c.Mask)

	var out *pixbuf.Buffer
	switch c.Op {
	case "slice":
		out = maskops.Slice(buf, mask, offset)
	case "crop":
		out = maskops.Crop(buf, mask, offset)
	case "fill":
		if maskops.FillArea(buf, mask, c.FillColor) {
			out = buf
		}
	default:
		return nil, fmt.Errorf("unsupported mask operation: %s", c.Op)
	}

	if out == nil {
		return nil, fmt.Errorf("could not apply %dx%d mask", mask.Width, mask.Height)
	}
	logger.Info("mask applied", "width", out.Width, "height", out.Height)
	return out, nil
}
