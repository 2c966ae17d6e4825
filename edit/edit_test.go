package edit

import (
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"rasterkit/blit"
	"rasterkit/codec"
	"rasterkit/filter"
	"rasterkit/parallel"
	"rasterkit/pixbuf"
)

var (
	red         = color.NRGBA{R: 255, A: 255}
	blue        = color.NRGBA{B: 255, A: 255}
	transparent = color.NRGBA{}
)

func solid(w, h int, c color.NRGBA) *pixbuf.Buffer {
	buf := pixbuf.NewBuffer(w, h)
	for y := range h {
		for x := range w {
			buf.SetPixel(x, y, c)
		}
	}
	return buf
}

func writeImage(t *testing.T, path string, buf *pixbuf.Buffer) {
	t.Helper()
	f, err := codec.ParseFormat(filepath.Ext(path))
	if err != nil {
		t.Fatal(err)
	}
	if err := save(buf, f, path); err != nil {
		t.Fatalf("save %q: %v", path, err)
	}
}

func readImage(t *testing.T, path string) *pixbuf.Buffer {
	t.Helper()
	buf, _, err := load(path)
	if err != nil {
		t.Fatalf("load %q: %v", path, err)
	}
	return buf
}

func TestParseHexToColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.NRGBA
		wantErr bool
	}{
		{in: "#f00", want: red},
		{in: "#1234", want: color.NRGBA{R: 0x11, G: 0x22, B: 0x33, A: 0x44}},
		{in: "#a1b2c3", want: color.NRGBA{R: 0xA1, G: 0xB2, B: 0xC3, A: 0xFF}},
		{in: "#a1b2c3d4", want: color.NRGBA{R: 0xA1, G: 0xB2, B: 0xC3, A: 0xD4}},
		{in: "red", wantErr: true},
		{in: "#ggg", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseHexToColor(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOutputFormat(t *testing.T) {
	tests := []struct {
		src  codec.Format
		want string
		out  codec.Format
	}{
		{codec.JPEG, "same", codec.JPEG},
		{codec.JPEG, "png", codec.PNG},
		{codec.JPEG, "unsup:png", codec.JPEG},
		{codec.WebP, "unsup:png", codec.PNG},
		{codec.WebP, "unsup:tiff", codec.TIFF},
		{codec.PNG, "webp", codec.WebP},
	}
	for _, tt := range tests {
		if got := outputFormat(tt.src, tt.want); got != tt.out {
			t.Errorf("outputFormat(%s, %q) = %s, want %s", tt.src, tt.want, got, tt.out)
		}
	}

	if got, want := destFor("/out", "pic.large.webp", codec.PNG), filepath.Join("/out", "pic.large.png"); got != want {
		t.Errorf("destFor = %q, want %q", got, want)
	}
}

func TestSaveReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "img.png")

	writeImage(t, path, solid(2, 2, red))
	writeImage(t, path, solid(3, 1, blue))

	got := readImage(t, path)
	if got.Width != 3 || got.Height != 1 || got.Pixel(2, 0) != blue {
		t.Errorf("reloaded %dx%d image with %v", got.Width, got.Height, got.Pixel(0, 0))
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("temporary files left behind: %v", entries)
	}

	if err := save(solid(1, 1, red), codec.Format("xcf"), filepath.Join(dir, "img.xcf")); err == nil {
		t.Error("saving an unknown format should fail")
	}
	if entries, _ = os.ReadDir(dir); len(entries) != 1 {
		t.Errorf("failed save left files behind: %v", entries)
	}

	webp := filepath.Join(dir, "img.webp")
	writeImage(t, webp, solid(2, 3, blue))
	if got := readImage(t, webp); got.Width != 2 || got.Height != 3 || got.Pixel(1, 2) != blue {
		t.Errorf("reloaded WebP %dx%d with %v", got.Width, got.Height, got.Pixel(1, 2))
	}
}

func TestFileParamsValidate(t *testing.T) {
	p := FileParams{In: "a.jpg"}
	if err := p.validate(); err != nil {
		t.Fatal(err)
	}
	if p.Out != "a.jpg" || p.Format != codec.JPEG {
		t.Errorf("got out %q format %s", p.Out, p.Format)
	}

	webp := FileParams{In: "a.png", Out: "a.webp"}
	if err := webp.validate(); err != nil || webp.Format != codec.WebP {
		t.Errorf("WebP destination: format %s, err %v", webp.Format, err)
	}

	for _, out := range []string{"a.txt", "noext"} {
		p := FileParams{In: "a.png", Out: out}
		if err := p.validate(); err == nil {
			t.Errorf("destination %q should be refused", out)
		}
	}
}

func TestBlitCmd(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "base.png")
	patch := filepath.Join(dir, "patch.png")
	out := filepath.Join(dir, "out.png")
	writeImage(t, base, pixbuf.NewBuffer(4, 4))
	writeImage(t, patch, solid(2, 2, red))

	for _, fast := range []bool{false, true} {
		cmd := BlitCmd{
			FileParams: FileParams{In: base, Out: out},
			Patch:      patch,
			X:          1,
			Y:          1,
			ScaleX:     1,
			ScaleY:     1,
			Antialias:  blit.Bilinear,
			Fast:       fast,
		}
		if err := cmd.Validate(nil); err != nil {
			t.Fatal(err)
		}
		if err := cmd.Run(); err != nil {
			t.Fatal(err)
		}

		got := readImage(t, out)
		for y := range 4 {
			for x := range 4 {
				want := transparent
				if x >= 1 && x <= 2 && y >= 1 && y <= 2 {
					want = red
				}
				if p := got.Pixel(x, y); p != want {
					t.Errorf("fast=%v: pixel (%d,%d) = %v, want %v", fast, x, y, p, want)
				}
			}
		}
	}

	bad := BlitCmd{FileParams: FileParams{In: base}, Patch: patch, ScaleX: 0, ScaleY: 1}
	if err := bad.Validate(nil); err == nil {
		t.Error("zero scale should be refused")
	}
}

func TestFillCmd(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.png")

	buf := solid(3, 1, red)
	buf.SetPixel(1, 0, blue)
	writeImage(t, in, buf)

	cmd := FillCmd{FileParams: FileParams{In: in}, X: 0, Y: 0, Color: "#00ff00"}
	if err := cmd.Validate(nil); err != nil {
		t.Fatal(err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatal(err)
	}

	got := readImage(t, in)
	green := color.NRGBA{G: 255, A: 255}
	for x, want := range []color.NRGBA{green, blue, red} {
		if p := got.Pixel(x, 0); p != want {
			t.Errorf("pixel %d = %v, want %v", x, p, want)
		}
	}

	outside := FillCmd{FileParams: FileParams{In: in}, X: 5, Y: 0, Color: "#00ff00"}
	if err := outside.Validate(nil); err != nil {
		t.Fatal(err)
	}
	if err := outside.Run(); err == nil {
		t.Error("seed outside the image should fail")
	}

	badColor := FillCmd{FileParams: FileParams{In: in}, Color: "green"}
	if err := badColor.Validate(nil); err == nil {
		t.Error("invalid color should be refused")
	}
}

func TestResizeCmd(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.png")
	out := filepath.Join(dir, "out.tiff")
	writeImage(t, in, solid(2, 2, red))

	cmd := ResizeCmd{FileParams: FileParams{In: in, Out: out}, Width: 3, Height: 3, DestX: 1, DestY: 1}
	if err := cmd.Validate(nil); err != nil {
		t.Fatal(err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatal(err)
	}

	got := readImage(t, out)
	if got.Width != 3 || got.Height != 3 {
		t.Fatalf("resized to %dx%d", got.Width, got.Height)
	}
	if p := got.Pixel(2, 2); p != red {
		t.Errorf("moved content = %v, want red", p)
	}
	if p := got.Pixel(0, 0); p.A != 0 {
		t.Errorf("new area = %v, want transparent", p)
	}

	bad := ResizeCmd{FileParams: FileParams{In: in}, Width: 0, Height: 3}
	if err := bad.Validate(nil); err == nil {
		t.Error("zero width should be refused")
	}
}

func TestMaskCmdApply(t *testing.T) {
	mask := pixbuf.NewMask(2, 1)
	mask.Set(0, 0, 255)

	tests := []struct {
		op   string
		want []color.NRGBA
	}{
		{"slice", []color.NRGBA{blue, transparent}},
		{"crop", []color.NRGBA{red, transparent, red}},
		{"fill", []color.NRGBA{blue, red, red}},
	}

	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			cmd := MaskCmd{FileParams: FileParams{In: "in.png"}, Op: tt.op, X: 1, Color: "#00f"}
			if err := cmd.Validate(nil); err != nil {
				t.Fatal(err)
			}

			buf := solid(3, 1, red)
			if tt.op != "fill" {
				buf.SetPixel(1, 0, blue)
			}
			out, err := cmd.apply(slog.Default(), buf, mask)
			if err != nil {
				t.Fatal(err)
			}
			if out.Width != len(tt.want) {
				t.Fatalf("width = %d, want %d", out.Width, len(tt.want))
			}
			for x, want := range tt.want {
				if p := out.Pixel(x, 0); p != want {
					t.Errorf("pixel %d = %v, want %v", x, p, want)
				}
			}
		})
	}

	empty := MaskCmd{Op: "slice"}
	if _, err := empty.apply(slog.Default(), solid(1, 1, red), pixbuf.NewMask(0, 0)); err == nil {
		t.Error("empty mask should fail")
	}

	noColor := MaskCmd{FileParams: FileParams{In: "in.png"}, Op: "fill"}
	if err := noColor.Validate(nil); err == nil {
		t.Error("fill without a color should be refused")
	}
}

func TestFit(t *testing.T) {
	src := solid(8, 4, blue)

	tests := []struct {
		name          string
		width, height int
		crop          bool
		background    *color.NRGBA
		wantW, wantH  int
	}{
		{"same size", 8, 4, false, nil, 8, 4},
		{"shrink keeps aspect", 4, 4, false, nil, 4, 2},
		{"crop", 4, 4, true, nil, 4, 4},
		{"letterbox", 4, 4, false, &red, 4, 4},
		{"width only", 4, 0, false, nil, 4, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fit(slog.Default(), src, tt.width, tt.height, tt.crop, tt.background)
			if got.Width != tt.wantW || got.Height != tt.wantH {
				t.Fatalf("fit = %dx%d, want %dx%d", got.Width, got.Height, tt.wantW, tt.wantH)
			}
			if tt.background != nil {
				if p := got.Pixel(0, 0); p != red {
					t.Errorf("letterbox = %v, want red", p)
				}
				if p := got.Pixel(0, 3); p != red {
					t.Errorf("letterbox = %v, want red", p)
				}
			}
			if p := got.Pixel(got.Width/2, got.Height/2); p.B < 250 || p.R > 5 || p.A < 250 {
				t.Errorf("centre = %v, want blue", p)
			}
		})
	}
}

func TestFilterCmdRun(t *testing.T) {
	scan := t.TempDir()
	writeImage(t, filepath.Join(scan, "a.png"), solid(4, 2, red))
	writeImage(t, filepath.Join(scan, "b.bmp"), solid(2, 2, color.NRGBA{R: 30, G: 30, B: 30, A: 255}))
	if err := os.Mkdir(filepath.Join(scan, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}

	cmd := FilterCmd{
		Scan:    scan,
		Dest:    "out",
		Format:  "png",
		Invert:  true,
		Palette: "bw",
	}
	if err := cmd.Validate(nil); err != nil {
		t.Fatal(err)
	}

	pool := parallel.Start(2)
	if err := cmd.Run(pool.Do, pool.Wait); err != nil {
		t.Fatal(err)
	}

	white := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	a := readImage(t, filepath.Join(scan, "out", "a.png"))
	b := readImage(t, filepath.Join(scan, "out", "b.png"))
	if p := b.Pixel(0, 0); p != white {
		t.Errorf("inverted dark gray = %v, want white", p)
	}
	if a.Width != 4 || a.Height != 2 {
		t.Errorf("a.png is %dx%d", a.Width, a.Height)
	}

	if err := os.WriteFile(filepath.Join(scan, "notes.txt"), []byte("not an image"), 0o600); err != nil {
		t.Fatal(err)
	}
	cmd.Dest = filepath.Join(scan, "out2")
	pool = parallel.Start(1)
	if err := cmd.Run(pool.Do, pool.Wait); err == nil {
		t.Error("undecodable file should make the batch fail")
	}
	if _, err := os.Stat(filepath.Join(scan, "out2", "a.png")); err != nil {
		t.Errorf("valid files should still be processed: %v", err)
	}
}

func TestFilterCmdValidate(t *testing.T) {
	scan := t.TempDir()

	tests := []struct {
		name string
		cmd  FilterCmd
	}{
		{"missing scan", FilterCmd{Scan: filepath.Join(scan, "missing")}},
		{"fit without size", FilterCmd{Scan: scan, Fit: true}},
		{"brightness", FilterCmd{Scan: scan, Brightness: 2}},
		{"posterize", FilterCmd{Scan: scan, Posterize: 1}},
		{"palette", FilterCmd{Scan: scan, Palette: filepath.Join(scan, "none.pal")}},
		{"background", FilterCmd{Scan: scan, Background: "#12"}},
		{"despeckle", FilterCmd{Scan: scan, Despeckle: -1}},
		{"blur", FilterCmd{Scan: scan, Blur: -0.5}},
		{"dither levels", FilterCmd{Scan: scan, DitherLevels: 1}},
		{"dither strength", FilterCmd{Scan: scan, DitherLevels: 2, DitherStrength: 1.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cmd.Validate(nil); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestFilterCmdCleanupAndDither(t *testing.T) {
	gray := color.NRGBA{R: 128, G: 128, B: 128, A: 255}
	buf := pixbuf.NewBuffer(6, 6)
	buf.SetPixel(0, 0, gray)
	for y := 2; y < 6; y++ {
		for x := 2; x < 6; x++ {
			buf.SetPixel(x, y, gray)
		}
	}

	cmd := FilterCmd{
		Despeckle:      2,
		Blur:           1,
		BlurAlpha:      filter.AlphaKeep,
		DitherLevels:   2,
		DitherMode:     filter.Ordered,
		DitherStrength: 1,
	}
	out := cmd.apply(slog.Default(), buf)

	if p := out.Pixel(0, 0); p.A != 0 {
		t.Errorf("speck = %v, want removed", p)
	}
	white := 0
	for y := 2; y < 6; y++ {
		for x := 2; x < 6; x++ {
			p := out.Pixel(x, y)
			if p.A != 255 {
				t.Errorf("pixel (%d,%d) alpha = %d, want kept", x, y, p.A)
			}
			switch p.R {
			case 255:
				white++
			case 0:
			default:
				t.Errorf("pixel (%d,%d) = %v, want black or white", x, y, p)
			}
		}
	}
	if white != 8 {
		t.Errorf("%d white pixels in the block, want 8", white)
	}
}
