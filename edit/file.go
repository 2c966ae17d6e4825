package edit

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"rasterkit/codec"
	"rasterkit/pixbuf"
)

func load(path string) (*pixbuf.Buffer, codec.Format, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("could not open image %q: %w", path, err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			slog.Error("could not close image", "name", path, "error", closeErr)
		}
	}()

	buf, format, err := codec.DecodeBuffer(file)
	if err != nil {
		return nil, "", fmt.Errorf("could not read image %q: %w", path, err)
	}
	return buf, format, nil
}

func loadMask(path string) (*pixbuf.Mask, error) {
	buf, _, err := load(path)
	if err != nil {
		return nil, err
	}
	return pixbuf.MaskFromAlpha(buf.Image()), nil
}

// outputFormat resolves a requested output format against the source one.
// "same" keeps the source format; an "unsup:" prefix converts only WebP
// sources.
func outputFormat(src codec.Format, want string) codec.Format {
	want, unsupOnly := strings.CutPrefix(want, "unsup:")
	if (unsupOnly && src != codec.WebP) || want == "same" {
		return src
	}
	return codec.Format(want)
}

// save encodes buf into a temporary file next to dest and renames it over
// dest once fully written.
func save(buf *pixbuf.Buffer, format codec.Format, dest string) (err error) {
	destDir, destName := filepath.Split(dest)
	if destDir == "" {
		destDir = "."
	}

	outFile, err := os.CreateTemp(destDir, destName)
	if err != nil {
		return fmt.Errorf("could not create temporary destination %q: %w", destName, err)
	}
	canRename := false
	defer func() {
		if defErr := outFile.Sync(); defErr != nil && err == nil {
			err = fmt.Errorf("could not flush temporary destination %q: %w", destName, defErr)
		}
		if defErr := outFile.Close(); defErr != nil && err == nil {
			err = fmt.Errorf("could not close temporary destination %q: %w", destName, defErr)
		}

		if canRename && err == nil {
			if defErr := os.Rename(outFile.Name(), dest); defErr != nil {
				err = fmt.Errorf("could not rename destination file %q: %w", destName, defErr)
			}
		}
		if err != nil {
			if defErr := os.Remove(outFile.Name()); defErr != nil {
				slog.Error("could not remove temporary destination", "name", outFile.Name(), "error", defErr)
			}
		}
	}()

	if err = codec.EncodeTo(outFile, buf, format); err != nil {
		return fmt.Errorf("could not save %q: %w", dest, err)
	}

	canRename = true
	return nil
}

// destFor names the output of srcName inside destDir for format.
func destFor(destDir, srcName string, format codec.Format) string {
	oldExt := filepath.Ext(srcName)
	return filepath.Join(destDir, fmt.Sprintf("%s.%s", srcName[:len(srcName)-len(oldExt)], format.Ext()))
}
