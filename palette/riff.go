package palette

import (
	"encoding/binary"
	"fmt"
	"image/color"
	"io"

	"golang.org/x/image/riff"
)

/*
typedef struct tagLOGPALETTE {
  WORD         palVersion;
  WORD         palNumEntries;
  PALETTEENTRY palPalEntry[1];
} LOGPALETTE;

typedef struct tagPALETTEENTRY {
  BYTE peRed;
  BYTE peGreen;
  BYTE peBlue;
  BYTE peFlags;
} PALETTEENTRY;
*/

var (
	riffType = riff.FourCC{'R', 'I', 'F', 'F'}
	palType  = riff.FourCC{'P', 'A', 'L', ' '}
	dataType = riff.FourCC{'d', 'a', 't', 'a'}
)

// ReadFrom reads every palette stored in a RIFF PAL stream.
func ReadFrom(r io.Reader) ([]color.Palette, error) {
	formType, rd, err := riff.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("could not open RIFF stream: %w", err)
	} else if formType != palType {
		return nil, fmt.Errorf("unsupported RIFF content type: %s", string(formType[:]))
	}

	return readPalettes(rd, string(formType[:]))
}

func readPalettes(r *riff.Reader, ident string) ([]color.Palette, error) {
	var res []color.Palette

	for {
		id, size, data, err := r.Next()
		if err != nil {
			if err == io.EOF {
				break
			}
			return res, fmt.Errorf("could not read chunk %q#%d: %w", ident, len(res), err)
		}

		switch id {
		case riff.LIST:
			listType, list, lerr := riff.NewListReader(size, data)
			if lerr != nil {
				return res, fmt.Errorf("could not read list from chunk %q#%d: %w", ident, len(res), lerr)
			} else if listType != palType {
				return res, fmt.Errorf("chunk %q#%d unsupported type: %s", ident, len(res), string(listType[:]))
			}

			listRes, lerr := readPalettes(list, fmt.Sprintf("%s%d.%s", ident, len(res), listType[:]))
			res = append(res, listRes...)
			if lerr != nil {
				return res, lerr
			}
		case dataType:
			pal, err := readPalette(data, fmt.Sprintf("%s%d", ident, len(res)))
			if err != nil {
				return res, err
			}
			res = append(res, pal)
		default:
			return res, fmt.Errorf("unsupported chunk type in %q#%d: %s", ident, len(res), id)
		}
	}

	return res, nil
}

func readPalette(r io.Reader, ident string) (color.Palette, error) {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("could not read header from chunk %s: %w", ident, err)
	}

	if ver := binary.BigEndian.Uint16(header[:2]); ver != 3 {
		return nil, fmt.Errorf("unsupported palette version in chunk %s: %d", ident, ver)
	}

	count := int(binary.LittleEndian.Uint16(header[2:]))
	entries := make([]byte, count*4)
	if n, err := io.ReadFull(r, entries); err != nil {
		return nil, fmt.Errorf("could not read color %d/%d from chunk %s: %w", n/4, count, ident, err)
	}

	res := make(color.Palette, count)
	for i := range count {
		e := entries[i*4 : i*4+4]
		res[i] = color.NRGBA{R: e[0], G: e[1], B: e[2], A: 0xFF}
	}
	return res, nil
}

// WriteTo stores pals as a RIFF PAL stream and returns the number of bytes
// written.
func WriteTo(w io.Writer, pals []color.Palette) (int64, error) {
	size := 4
	for _, pal := range pals {
		size += 4 + 4 + 4 + len(pal)*4 // chunk id + chunk size + palVersion + palNumEntries + 4 bytes/color
	}

	header := make([]byte, 0, 12)
	header = append(header, riffType[:]...)
	header = binary.LittleEndian.AppendUint32(header, uint32(size))
	header = append(header, palType[:]...)

	count, err := writeBytes(w, header)
	if err != nil {
		return count, fmt.Errorf("could not write RIFF header: %w", err)
	}

	for i, pal := range pals {
		n, err := writePalette(w, pal)
		count += n
		if err != nil {
			return count, fmt.Errorf("could not write chunk %d: %w", i, err)
		}
	}

	return count, nil
}

func writePalette(w io.Writer, pal color.Palette) (int64, error) {
	chunk := make([]byte, 0, 12+len(pal)*4)
	chunk = append(chunk, dataType[:]...)
	chunk = binary.LittleEndian.AppendUint32(chunk, uint32(4+len(pal)*4))
	chunk = append(chunk, 0, 0x03)
	chunk = binary.LittleEndian.AppendUint16(chunk, uint16(len(pal)))

	for _, col := range pal {
		c := color.NRGBAModel.Convert(col).(color.NRGBA)
		chunk = append(chunk, c.R, c.G, c.B, 0x00)
	}

	return writeBytes(w, chunk)
}

func writeBytes(w io.Writer, b []byte) (int64, error) {
	n, err := w.Write(b)
	if err != nil {
		return int64(n), err
	} else if n != len(b) {
		return int64(n), fmt.Errorf("wrote only %d/%d bytes", n, len(b))
	}

	return int64(n), nil
}
