package edit

import (
	"fmt"
	"image"
	"log/slog"

	"rasterkit/pixbuf"
	"rasterkit/resize"

	"github.com/alecthomas/kong"
)

// ResizeCmd changes the canvas size without resampling.
type ResizeCmd struct {
	FileParams
	Width  int     `help:"New width" required:""`
	Height int     `help:"New height" required:""`
	SrcX   float32 `help:"Source point along x aligned with the destination point"`
	SrcY   float32 `help:"Source point along y aligned with the destination point"`
	DestX  float32 `help:"Destination point along x"`
	DestY  float32 `help:"Destination point along y"`
}

func (c *ResizeCmd) Validate(kctx *kong.Context) error {
	if err := c.validate(); err != nil {
		return err
	}

	switch {
	case c.Width <= 0:
		return fmt.Errorf("invalid width: %d", c.Width)
	case c.Height <= 0:
		return fmt.Errorf("invalid height: %d", c.Height)
	}
	return nil
}

func (c *ResizeCmd) Run() error {
	return c.process(func(logger *slog.Logger, buf *pixbuf.Buffer) (*pixbuf.Buffer, error) {
		logger.Info("resizing canvas", "from_width", buf.Width, "from_height", buf.Height,
			"width", c.Width, "height", c.Height)
		resize.Resize(buf, image.Pt(c.Width, c.Height),
			pixbuf.Vec{X: c.SrcX, Y: c.SrcY}, pixbuf.Vec{X: c.DestX, Y: c.DestY})
		return buf, nil
	})
}
