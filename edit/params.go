// Package edit defines the command line operations over image files.
package edit

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"rasterkit/codec"
	"rasterkit/pixbuf"
)

// FileParams are shared by the commands that edit a single image.
type FileParams struct {
	In     string       `arg:"" help:"Source image" type:"existingfile"`
	Out    string       `short:"o" help:"Destination image, encoded after its extension. Overwrites the source if not given."`
	Format codec.Format `kong:"-"`
}

func (p *FileParams) validate() error {
	if p.Out == "" {
		p.Out = p.In
	}

	format, err := codec.ParseFormat(filepath.Ext(p.Out))
	if err != nil {
		return fmt.Errorf("invalid destination %q: %w", p.Out, err)
	}
	p.Format = format
	return nil
}

// process loads the source image, hands it to op and saves what op returns.
func (p *FileParams) process(op func(logger *slog.Logger, buf *pixbuf.Buffer) (*pixbuf.Buffer, error)) error {
	logger := slog.Default().With("file", p.In)

	buf, _, err := load(p.In)
	if err != nil {
		return err
	}

	out, err := op(logger, buf)
	if err != nil {
		return err
	}

	if err = save(out, p.Format, p.Out); err != nil {
		return err
	}
	logger.Info("saved", "dest", p.Out, "width", out.Width, "height", out.Height)
	return nil
}
