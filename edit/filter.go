package edit

import (
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"

	"rasterkit/filter"
	"rasterkit/palette"
	"rasterkit/parallel"
	"rasterkit/pixbuf"

	"github.com/alecthomas/kong"
)

// FilterCmd runs the same pipeline over every image of a folder.
type FilterCmd struct {
	Scan           string            `help:"Source folder to scan" default:"."`
	Dest           string            `help:"Destination folder for processed pictures. Relative to scan dir if not absolute. If same as scan dir, will overwrite source files." default:"filtered"`
	Format         string            `help:"Output format. If prefixed with 'unsup:' will convert only WebP sources" enum:"same,gif,unsup:gif,jpeg,unsup:jpeg,png,unsup:png,bmp,unsup:bmp,tiff,unsup:tiff,webp" default:"unsup:png"`
	Fit            bool              `help:"Scale image" default:"false" group:"fit"`
	Width          int               `help:"Max width" group:"fit"`
	Height         int               `help:"Max height" group:"fit"`
	Crop           bool              `help:"Crop image to maintain requested aspect ratio" default:"false" group:"fit"`
	Background     string            `help:"If given and not cropping, will fill background with this color to maintain destination aspect ratio" group:"fit"`
	Despeckle      int               `help:"Remove isolated pixel groups up to this size, 0 to disable" group:"clean"`
	DespeckleAlpha uint8             `help:"Pixels with alpha at or below this value count as background when despeckling" group:"clean"`
	Blur           float32           `help:"Gaussian blur radius, 0 to disable" group:"clean"`
	BlurAlpha      filter.AlphaMode  `help:"Alpha handling when blurring (blur, keep)" default:"blur" group:"clean"`
	Invert         bool              `help:"Invert colors" group:"adjust"`
	Grayscale      bool              `help:"Convert to gray keeping perceived lightness" group:"adjust"`
	Brightness     float32           `help:"Brightness shift in [-1, 1]" group:"adjust"`
	Contrast       float32           `help:"Contrast change in [-1, 1]" group:"adjust"`
	Posterize      int               `help:"Levels per channel, 0 to disable" group:"adjust"`
	Palette        string            `help:"Palette name (bw, gray4, gray16, vga16, websafe, plan9) or PAL file in RIFF format to apply" group:"palette"`
	Dither         bool              `help:"Apply dithering" default:"false" group:"palette"`
	DitherLevels   int               `help:"Dither to this many levels per channel, 0 to disable" group:"dither"`
	DitherMode     filter.DitherMode `help:"Dither pattern (ordered, diffusion)" default:"ordered" group:"dither"`
	DitherStrength float32           `help:"Dither strength in [0, 1]" default:"1" group:"dither"`
	FillColor      *color.NRGBA      `kong:"-"`
	Colors         color.Palette     `kong:"-"`
}

func (c *FilterCmd) Validate(kctx *kong.Context) error {
	scanDir, err := filepath.Abs(c.Scan)
	var info os.FileInfo
	if err == nil {
		if info, err = os.Stat(scanDir); err == nil && !info.IsDir() {
			err = fmt.Errorf("not a directory")
		}
	}
	if err != nil {
		return fmt.Errorf("invalid scan path %q: %w", c.Scan, err)
	}
	c.Scan = scanDir

	if !filepath.IsAbs(c.Dest) {
		c.Dest = filepath.Join(scanDir, c.Dest)
	}

	if c.Fit {
		switch {
		case (c.Width < 0):
			return fmt.Errorf("invalid fit width: %d", c.Width)
		case (c.Height < 0):
			return fmt.Errorf("invalid fit height: %d", c.Height)
		case (c.Width == 0) && (c.Height == 0):
			return fmt.Errorf("no fit dimensions given")
		}
	}

	if (!c.Crop) && (c.Background != "") {
		bg, err := parseHexToColor(c.Background)
		if err != nil {
			return err
		}
		c.FillColor = &bg
	}

	switch {
	case c.Brightness < -1 || c.Brightness > 1:
		return fmt.Errorf("invalid brightness: %v", c.Brightness)
	case c.Contrast < -1 || c.Contrast > 1:
		return fmt.Errorf("invalid contrast: %v", c.Contrast)
	case c.Posterize < 0 || c.Posterize == 1 || c.Posterize > 256:
		return fmt.Errorf("invalid posterize levels: %d", c.Posterize)
	case c.Despeckle < 0:
		return fmt.Errorf("invalid despeckle size: %d", c.Despeckle)
	case c.Blur < 0:
		return fmt.Errorf("invalid blur radius: %v", c.Blur)
	case c.DitherLevels < 0 || c.DitherLevels == 1 || c.DitherLevels > 256:
		return fmt.Errorf("invalid dither levels: %d", c.DitherLevels)
	case c.DitherStrength < 0 || c.DitherStrength > 1:
		return fmt.Errorf("invalid dither strength: %v", c.DitherStrength)
	}

	if c.Palette != "" {
		if c.Colors, err = palette.Load(c.Palette); err != nil {
			return err
		}
	}

	return nil
}

// apply runs the configured pipeline: fit, cleanup, adjustments, then
// levels and palette.
func (c *FilterCmd) apply(logger *slog.Logger, buf *pixbuf.Buffer) *pixbuf.Buffer {
	if c.Fit {
		buf = fit(logger, buf, c.Width, c.Height, c.Crop, c.FillColor)
	}
	if c.Despeckle > 0 {
		if n := filter.RemoveDust(buf, c.Despeckle, c.DespeckleAlpha); n > 0 {
			logger.Info("removed specks", "groups", n)
		}
	}
	if c.Blur > 0 {
		filter.GaussianBlur(buf, c.Blur, c.BlurAlpha)
	}
	if c.Invert {
		filter.Invert(buf)
	}
	if c.Grayscale {
		filter.Grayscale(buf)
	}
	if c.Brightness != 0 || c.Contrast != 0 {
		filter.BrightnessContrast(buf, c.Brightness, c.Contrast)
	}
	if c.Posterize > 1 {
		filter.Posterize(buf, c.Posterize)
	}
	if c.DitherLevels > 1 {
		filter.Dither(buf, c.DitherMode, c.DitherLevels, c.DitherStrength)
	}
	if len(c.Colors) > 0 {
		logger.Info("applying palette", "palette", c.Palette, "colors", len(c.Colors))
		filter.Quantize(buf, c.Colors, c.Dither)
	}
	return buf
}

func (c *FilterCmd) Run(worker parallel.WorkerFunc, wait parallel.WaitFunc) error {
	if err := os.MkdirAll(c.Dest, 0o755); err != nil {
		return fmt.Errorf("unable to create destination folder %q: %w", c.Dest, err)
	}

	files, err := os.ReadDir(c.Scan)
	if err != nil {
		return fmt.Errorf("unable to read folder %q: %w", c.Scan, err)
	}

	for _, file := range files {
		if file.IsDir() {
			continue
		}

		worker(func(fileName string) func() error {
			return func() error {
				filePath := filepath.Join(c.Scan, fileName)
				logger := slog.Default().With("file", filePath)

				buf, srcFormat, err := load(filePath)
				if err != nil {
					logger.Error("could not load image", "error", err)
					return err
				}

				buf = c.apply(logger, buf)

				format := outputFormat(srcFormat, c.Format)
				if err = save(buf, format, destFor(c.Dest, fileName, format)); err != nil {
					logger.Error("could not save image", "dir", c.Dest, "error", err)
					return err
				}
				return nil
			}
		}(file.Name()))
	}

	stats := wait(true)
	slog.Info("stats", "processed", stats.Processed, "errors", stats.Failed,
		"total", stats.Total())

	if stats.Failed > 0 {
		return fmt.Errorf("error processing %d files", stats.Failed)
	}
	return nil
}
