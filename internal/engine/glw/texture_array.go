package glw

import (
	"fmt"
	"image"

	"github.com/go-gl/gl/v4.1-core/gl"
)

func wrapMode(w TextureWrap) int32 {
	switch w {
	case WrapClampToEdge:
		return gl.CLAMP_TO_EDGE
	case WrapMirroredRepeat:
		return gl.MIRRORED_REPEAT
	default:
		return gl.REPEAT
	}
}

type glTexture2DArray struct {
	name     string
	settings TextureSettings
	layers   []*image.RGBA
	size     image.Point
	id       uint32
}

func (t *glTexture2DArray) Name() string { return t.name }
func (t *glTexture2DArray) Layers() int  { return len(t.layers) }

func (t *glTexture2DArray) SetData(layers []*image.RGBA) error {
	if len(layers) == 0 {
		return fmt.Errorf("texture array %s: no layers", t.name)
	}
	size := layers[0].Bounds().Size()
	for i, l := range layers[1:] {
		if l.Bounds().Size() != size {
			return fmt.Errorf("texture array %s: layer %d is %v, want %v", t.name, i+1, l.Bounds().Size(), size)
		}
	}
	t.layers = layers
	t.size = size
	return nil
}

func (t *glTexture2DArray) IsVideoMemoryAllocated() bool {
	return t.id != 0
}

func (t *glTexture2DArray) AllocateVideoMemory() error {
	if t.id != 0 {
		return nil
	}
	if len(t.layers) == 0 {
		return fmt.Errorf("texture array %s: no data", t.name)
	}
	gl.GenTextures(1, &t.id)
	gl.BindTexture(gl.TEXTURE_2D_ARRAY, t.id)
	gl.TexImage3D(gl.TEXTURE_2D_ARRAY, 0, gl.RGBA8,
		int32(t.size.X), int32(t.size.Y), int32(len(t.layers)),
		0, gl.RGBA, gl.UNSIGNED_BYTE, nil)

	wrap := wrapMode(t.settings.Wrap)
	gl.TexParameteri(gl.TEXTURE_2D_ARRAY, gl.TEXTURE_WRAP_S, wrap)
	gl.TexParameteri(gl.TEXTURE_2D_ARRAY, gl.TEXTURE_WRAP_T, wrap)
	gl.TexParameteri(gl.TEXTURE_2D_ARRAY, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	if t.settings.Mipmaps {
		gl.TexParameteri(gl.TEXTURE_2D_ARRAY, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	} else {
		gl.TexParameteri(gl.TEXTURE_2D_ARRAY, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	}
	gl.BindTexture(gl.TEXTURE_2D_ARRAY, 0)

	if err := CheckError("allocate texture array " + t.name); err != nil {
		t.FreeVideoMemory()
		return err
	}
	return nil
}

func (t *glTexture2DArray) PushToVideoMemory() error {
	gl.BindTexture(gl.TEXTURE_2D_ARRAY, t.id)
	for i, l := range t.layers {
		gl.TexSubImage3D(gl.TEXTURE_2D_ARRAY, 0, 0, 0, int32(i),
			int32(t.size.X), int32(t.size.Y), 1,
			gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(l.Pix))
	}
	if t.settings.Mipmaps {
		gl.GenerateMipmap(gl.TEXTURE_2D_ARRAY)
	}
	gl.BindTexture(gl.TEXTURE_2D_ARRAY, 0)
	return CheckError("push texture array " + t.name)
}

func (t *glTexture2DArray) FreeVideoMemory() {
	if t.id != 0 {
		gl.DeleteTextures(1, &t.id)
		t.id = 0
	}
}

func (t *glTexture2DArray) Bind(unit uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(gl.TEXTURE_2D_ARRAY, t.id)
}
