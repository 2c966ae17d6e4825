package edit

import (
	"fmt"
	"log/slog"

	"rasterkit/blit"
	"rasterkit/pixbuf"

	"github.com/alecthomas/kong"
)

type BlitCmd struct {
	FileParams
	Patch     string         `help:"Image composited over the source" type:"existingfile" required:""`
	X         float32        `help:"Patch offset along x"`
	Y         float32        `help:"Patch offset along y"`
	ScaleX    float32        `help:"Horizontal scale" default:"1" group:"transform"`
	ScaleY    float32        `help:"Vertical scale" default:"1" group:"transform"`
	Rotation  float32        `help:"Rotation in degrees about the patch centre" group:"transform"`
	FlipX     bool           `help:"Mirror the patch horizontally" group:"transform"`
	FlipY     bool           `help:"Mirror the patch vertically" group:"transform"`
	Antialias blit.Antialias `help:"Sampling (none, nearest, bilinear)" default:"bilinear" group:"transform"`
	Fast      bool           `help:"Composite at the rounded offset, ignoring every transform option"`
}

func (c *BlitCmd) Validate(kctx *kong.Context) error {
	if err := c.validate(); err != nil {
		return err
	}
	if c.ScaleX == 0 || c.ScaleY == 0 {
		return fmt.Errorf("invalid scale: %vx%v", c.ScaleX, c.ScaleY)
	}
	return nil
}

func (c *BlitCmd) options() blit.Options {
	return blit.Options{
		Offset:    pixbuf.Vec{X: c.X, Y: c.Y},
		Scale:     pixbuf.Vec{X: c.ScaleX, Y: c.ScaleY},
		Rotation:  c.Rotation,
		Antialias: c.Antialias,
		FlipX:     c.FlipX,
		FlipY:     c.FlipY,
	}
}

func (c *BlitCmd) Run() error {
	patch, _, err := load(c.Patch)
	if err != nil {
		return err
	}

	return c.process(func(logger *slog.Logger, buf *pixbuf.Buffer) (*pixbuf.Buffer, error) {
		if c.Fast {
			logger.Info("patching", "patch", c.Patch, "x", c.X, "y", c.Y)
			blit.Patch(buf, patch, pixbuf.Vec{X: c.X, Y: c.Y})
			return buf, nil
		}

		opts := c.options()
		logger.Info("blitting", "patch", c.Patch, "options", opts)
		blit.Blit(buf, patch, opts)
		return buf, nil
	})
}
