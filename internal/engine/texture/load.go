// Package texture loads image files into RGBA layers ready for GPU upload.
package texture

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// LoadFile decodes an image file. TGA is selected by extension since it has
// no magic number; every other format is sniffed from the content.
func LoadFile(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read texture: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".tga") {
		img, err := DecodeTGA(data)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		return img, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// ToRGBA returns img as *image.RGBA with its origin at (0, 0).
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}

// Resize scales img to the given size with bilinear filtering.
func Resize(img image.Image, size image.Point) *image.RGBA {
	if img.Bounds().Size() == size {
		return ToRGBA(img)
	}
	dst := image.NewRGBA(image.Rectangle{Max: size})
	draw.BiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// LoadLayers loads files relative to dir as texture array layers.
// Every layer is resized to the size of the first.
func LoadLayers(dir string, files []string) ([]*image.RGBA, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no texture files")
	}

	layers := make([]*image.RGBA, 0, len(files))
	var size image.Point
	for i, name := range files {
		img, err := LoadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		if i == 0 {
			size = img.Bounds().Size()
		}
		layers = append(layers, Resize(img, size))
	}
	return layers, nil
}
