// Package codec converts between container image formats and raw RGBA pixels.
package codec

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"strings"
	"sync"

	"rasterkit/pixbuf"

	"github.com/HugoSmits86/nativewebp"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Format names a container format.
type Format string

const (
	PNG  Format = "png"
	JPEG Format = "jpeg"
	GIF  Format = "gif"
	BMP  Format = "bmp"
	TIFF Format = "tiff"
	WebP Format = "webp"
)

var ErrUnsupported = errors.New("unsupported format")

// ParseFormat accepts a format name or a file extension.
func ParseFormat(s string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(s), ".") {
	case "png":
		return PNG, nil
	case "jpeg", "jpg":
		return JPEG, nil
	case "gif":
		return GIF, nil
	case "bmp":
		return BMP, nil
	case "tiff", "tif":
		return TIFF, nil
	case "webp":
		return WebP, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupported, s)
}

func (f *Format) UnmarshalText(text []byte) error {
	v, err := ParseFormat(string(text))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// Ext returns the file extension for f, without the dot.
func (f Format) Ext() string {
	return string(f)
}

// DecodeBuffer decodes any registered format into a new buffer.
func DecodeBuffer(r io.Reader) (*pixbuf.Buffer, Format, error) {
	img, name, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("could not decode image: %w", err)
	}
	f, err := ParseFormat(name)
	if err != nil {
		return nil, "", err
	}
	return pixbuf.FromImage(img), f, nil
}

// Decode returns the raw RGBA pixels of data. Any failure, or an image
// whose size differs from width x height, yields a transparent buffer of
// the expected size instead.
func Decode(data []byte, width, height int) []uint8 {
	buf, _, err := DecodeBuffer(bytes.NewReader(data))
	if err != nil || buf.Width != width || buf.Height != height {
		logger := pixbuf.Logger()
		if err != nil {
			logger.Debug("decode failed, using transparent pixels", "error", err)
		} else {
			logger.Debug("decoded size mismatch, using transparent pixels",
				"width", buf.Width, "height", buf.Height, "expected_width", width, "expected_height", height)
		}
		return make([]uint8, pixbuf.ByteLen(width, height))
	}
	return buf.Pix
}

// Encode writes width x height RGBA pixels as f. It returns an empty slice
// on any failure, including formats without an encoder.
func Encode(pix []uint8, width, height int, f Format) []byte {
	buf := &pixbuf.Buffer{Width: width, Height: height, Pix: pix}
	if !buf.Valid() || len(pix) == 0 {
		pixbuf.Logger().Debug("refusing encode of malformed pixels", "len", len(pix), "width", width, "height", height)
		return []byte{}
	}

	var out bytes.Buffer
	if err := EncodeTo(&out, buf, f); err != nil {
		pixbuf.Logger().Debug("encode failed", "format", f, "error", err)
		return []byte{}
	}
	return out.Bytes()
}

// EncodeTo writes buf to w as f.
func EncodeTo(w io.Writer, buf *pixbuf.Buffer, f Format) error {
	img := buf.Image()

	switch f {
	case PNG:
		enc := png.Encoder{
			CompressionLevel: png.BestCompression,
			BufferPool:       pngPool,
		}
		if err := enc.Encode(w, img); err != nil {
			return fmt.Errorf("could not encode PNG: %w", err)
		}
	case JPEG:
		if err := jpeg.Encode(w, img, &jpeg.Options{Quality: 100}); err != nil {
			return fmt.Errorf("could not encode JPEG: %w", err)
		}
	case GIF:
		if err := gif.Encode(w, img, nil); err != nil {
			return fmt.Errorf("could not encode GIF: %w", err)
		}
	case BMP:
		if err := bmp.Encode(w, img); err != nil {
			return fmt.Errorf("could not encode BMP: %w", err)
		}
	case TIFF:
		if err := tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate}); err != nil {
			return fmt.Errorf("could not encode TIFF: %w", err)
		}
	case WebP:
		// Always lossless.
		if err := nativewebp.Encode(w, img, nil); err != nil {
			return fmt.Errorf("could not encode WebP: %w", err)
		}
	default:
		return fmt.Errorf("%w for encoding: %s", ErrUnsupported, f)
	}
	return nil
}

// Import decodes data into buf, replacing its contents. Decode failures
// leave buf transparent at the expected size.
func Import(buf *pixbuf.Buffer, data []byte, width, height int) bool {
	return buf.Replace(Decode(data, width, height), width, height)
}

// Export encodes buf as f.
func Export(buf *pixbuf.Buffer, f Format) []byte {
	return Encode(buf.Pix, buf.Width, buf.Height, f)
}

type pngEncoderBufferPool struct {
	pool sync.Pool
}

func (p *pngEncoderBufferPool) Get() *png.EncoderBuffer {
	return p.pool.Get().(*png.EncoderBuffer)
}

func (p *pngEncoderBufferPool) Put(buf *png.EncoderBuffer) {
	p.pool.Put(buf)
}

var pngPool = &pngEncoderBufferPool{
	pool: sync.Pool{
		New: func() any {
			return &png.EncoderBuffer{}
		},
	},
}
