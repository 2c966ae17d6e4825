package edit

import (
	"image"
	"image/color"
	"log/slog"
	"math"

	"rasterkit/pixbuf"

	"golang.org/x/image/draw"
)

// fit scales buf to width x height with Catmull-Rom resampling. A zero
// dimension keeps the source one. The aspect ratio is kept by cropping the
// source, by letterboxing onto background when given, or else by shrinking
// the destination.
func fit(logger *slog.Logger, buf *pixbuf.Buffer, width, height int, crop bool, background *color.NRGBA) *pixbuf.Buffer {
	if !buf.Valid() || buf.Len() == 0 {
		return buf
	}

	srcBounds := image.Rect(0, 0, buf.Width, buf.Height)
	srcWidth := float64(buf.Width)
	srcHeight := float64(buf.Height)

	destWidth := float64(width)
	if destWidth == 0 {
		destWidth = srcWidth
	}

	destHeight := float64(height)
	if destHeight == 0 {
		destHeight = srcHeight
	}

	if (srcWidth == destWidth) && (srcHeight == destHeight) {
		return buf
	}

	destSize := image.Rect(0, 0, int(destWidth), int(destHeight))
	destBounds := destSize

	srcAR := srcWidth / srcHeight
	destAR := destWidth / destHeight
	var letterbox bool
	if crop {
		if srcAR < destAR {
			dh := int(math.Round((srcHeight - srcWidth/destAR) / 2))
			srcBounds.Min.Y += dh
			srcBounds.Max.Y -= dh
		} else if srcAR > destAR {
			dw := int(math.Round((srcWidth - srcHeight*destAR) / 2))
			srcBounds.Min.X += dw
			srcBounds.Max.X -= dw
		}
	} else {
		if srcAR < destAR {
			dw := destHeight * srcAR
			if background == nil {
				destSize.Max.X = max(int(math.Round(dw)), 1)
				destBounds.Max.X = destSize.Max.X
			} else if letterbox = destWidth > dw; letterbox {
				idw := int(math.Round((destWidth - dw) / 2))
				destBounds.Min.X += idw
				destBounds.Max.X -= idw
			}
		} else if srcAR > destAR {
			dh := destWidth / srcAR
			if background == nil {
				destSize.Max.Y = max(int(math.Round(dh)), 1)
				destBounds.Max.Y = destSize.Max.Y
			} else if letterbox = destHeight > dh; letterbox {
				idh := int(math.Round((destHeight - dh) / 2))
				destBounds.Min.Y += idh
				destBounds.Max.Y -= idh
			}
		}
	}

	logger.Info("scaling", "width", destBounds.Dx(), "height", destBounds.Dy())
	dest := pixbuf.NewBuffer(destSize.Dx(), destSize.Dy())
	if letterbox {
		draw.Draw(dest.Image(), destSize, image.NewUniform(*background), image.Point{}, draw.Src)
	}
	draw.CatmullRom.Scale(dest.Image(), destBounds, buf.Image(), srcBounds, draw.Over, nil)

	return dest
}
