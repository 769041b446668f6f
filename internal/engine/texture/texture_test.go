package texture

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"
)

func tgaHeader(imageType, width, height, bpp int, descriptor byte) []byte {
	h := make([]byte, tgaHeaderSize)
	h[2] = byte(imageType)
	h[12], h[13] = byte(width), byte(width>>8)
	h[14], h[15] = byte(height), byte(height>>8)
	h[16] = byte(bpp)
	h[17] = descriptor
	return h
}

func TestDecodeTGAUncompressedBottomUp(t *testing.T) {
	data := tgaHeader(TGATypeUncompressed, 2, 2, 24, 0)
	// BGR, first row in the file is the bottom row
	data = append(data,
		0, 0, 255, 0, 255, 0, // bottom: red, green
		255, 0, 0, 255, 255, 255, // top: blue, white
	)

	img, err := DecodeTGA(data)
	if err != nil {
		t.Fatalf("DecodeTGA: %v", err)
	}
	rgba := img.(*image.RGBA)

	tests := []struct {
		x, y int
		want color.RGBA
	}{
		{0, 1, color.RGBA{255, 0, 0, 255}},
		{1, 1, color.RGBA{0, 255, 0, 255}},
		{0, 0, color.RGBA{0, 0, 255, 255}},
		{1, 0, color.RGBA{255, 255, 255, 255}},
	}
	for _, tt := range tests {
		if got := rgba.RGBAAt(tt.x, tt.y); got != tt.want {
			t.Errorf("pixel (%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestDecodeTGARLETopDown(t *testing.T) {
	data := tgaHeader(TGATypeRLE, 3, 1, 32, 0x20)
	data = append(data,
		0x81, 10, 20, 30, 128, // run of two
		0x00, 1, 2, 3, 4, // one raw pixel
	)

	img, err := DecodeTGA(data)
	if err != nil {
		t.Fatalf("DecodeTGA: %v", err)
	}
	rgba := img.(*image.RGBA)
	if got, want := rgba.RGBAAt(1, 0), (color.RGBA{30, 20, 10, 128}); got != want {
		t.Errorf("run pixel = %v, want %v", got, want)
	}
	if got, want := rgba.RGBAAt(2, 0), (color.RGBA{3, 2, 1, 4}); got != want {
		t.Errorf("raw pixel = %v, want %v", got, want)
	}
}

func TestDecodeTGAErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"short header", []byte{0, 0, 2}},
		{"color mapped", func() []byte { h := tgaHeader(1, 1, 1, 24, 0); h[1] = 1; return h }()},
		{"unsupported type", tgaHeader(3, 1, 1, 8, 0)},
		{"unsupported depth", tgaHeader(TGATypeUncompressed, 1, 1, 16, 0)},
		{"truncated raw", append(tgaHeader(TGATypeUncompressed, 2, 2, 24, 0), 1, 2, 3)},
		{"truncated rle", tgaHeader(TGATypeRLE, 2, 2, 24, 0)},
	}

	for _, tt := range tests {
		if _, err := DecodeTGA(tt.data); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func writeImage(t *testing.T, path string, img image.Image, encode func(*os.File, image.Image) error) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func encodePNG(f *os.File, img image.Image) error { return png.Encode(f, img) }
func encodeBMP(f *os.File, img image.Image) error { return bmp.Encode(f, img) }

func TestLoadLayersResizesToFirst(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "terrain"), 0o755); err != nil {
		t.Fatal(err)
	}
	green := color.RGBA{0, 200, 0, 255}
	grey := color.RGBA{90, 90, 90, 255}
	// Content is sniffed, so a PNG with a .jpg name still decodes
	writeImage(t, filepath.Join(dir, "terrain", "grass.jpg"), solid(8, 8, green), encodePNG)
	writeImage(t, filepath.Join(dir, "terrain", "stone.bmp"), solid(4, 2, grey), encodeBMP)

	layers, err := LoadLayers(dir, []string{"terrain/grass.jpg", "terrain/stone.bmp"})
	if err != nil {
		t.Fatalf("LoadLayers: %v", err)
	}
	if len(layers) != 2 {
		t.Fatalf("expected 2 layers, got %d", len(layers))
	}
	for i, l := range layers {
		if l.Bounds().Size() != image.Pt(8, 8) {
			t.Errorf("layer %d size = %v, want 8x8", i, l.Bounds().Size())
		}
	}
	if got := layers[0].RGBAAt(3, 3); got != green {
		t.Errorf("layer 0 pixel = %v, want %v", got, green)
	}
	if got := layers[1].RGBAAt(4, 4); got != grey {
		t.Errorf("layer 1 pixel = %v, want %v", got, grey)
	}
}

func TestLoadLayersErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadLayers(dir, nil); err == nil {
		t.Error("expected error for no files")
	}
	if _, err := LoadLayers(dir, []string{"missing.jpg"}); err == nil {
		t.Error("expected error for missing file")
	}
	if err := os.WriteFile(filepath.Join(dir, "junk.jpg"), []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadLayers(dir, []string{"junk.jpg"}); err == nil {
		t.Error("expected error for undecodable file")
	}
}

func TestToRGBAMovesOrigin(t *testing.T) {
	src := image.NewNRGBA(image.Rect(2, 3, 4, 5))
	src.Set(2, 3, color.NRGBA{1, 2, 3, 255})

	got := ToRGBA(src)
	if got.Rect.Min != (image.Point{}) || got.Bounds().Size() != image.Pt(2, 2) {
		t.Fatalf("bounds = %v", got.Bounds())
	}
	if c := got.RGBAAt(0, 0); c != (color.RGBA{1, 2, 3, 255}) {
		t.Errorf("pixel = %v", c)
	}

	same := image.NewRGBA(image.Rect(0, 0, 1, 1))
	if ToRGBA(same) != same {
		t.Error("expected zero-origin RGBA to be returned as is")
	}
}
