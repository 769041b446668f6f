package glw

import (
	"image"
	"testing"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeviceRegistry(t *testing.T) {
	d := NewOpenGlDevice(DeviceSettings{DefaultTextureDir: "data/textures/"})

	assert.Nil(t, d.ShaderProgram("voxel"))
	assert.Nil(t, d.Material("terrain"))
	assert.Nil(t, d.Texture2DArray("terrain"))
	assert.Equal(t, "data/textures/", d.Settings().DefaultTextureDir)

	m, err := d.AddMaterial("terrain")
	require.NoError(t, err)
	assert.Equal(t, "terrain", m.Name())
	assert.Same(t, m, d.Material("terrain"))
	assert.Zero(t, m.BufferID())

	_, err = d.AddMaterial("terrain")
	assert.Error(t, err)

	tex, err := d.AddTexture2DArray("terrain", TextureSettings{Wrap: WrapRepeat})
	require.NoError(t, err)
	assert.Same(t, tex, d.Texture2DArray("terrain"))
	assert.False(t, tex.IsVideoMemoryAllocated())

	_, err = d.AddTexture2DArray("terrain", TextureSettings{})
	assert.Error(t, err)

	mesh := d.NewTerrainMesh("terrain_0_0_0_model")
	assert.Equal(t, "terrain_0_0_0_model", mesh.Name())
	mesh.SetVertices(make([]mgl32.Vec3, 6))
	assert.Equal(t, 6, mesh.VertexCount())
}

func TestTextureArraySetData(t *testing.T) {
	tex := &glTexture2DArray{name: "layers"}

	assert.Error(t, tex.SetData(nil))

	a := image.NewRGBA(image.Rect(0, 0, 4, 4))
	b := image.NewRGBA(image.Rect(0, 0, 8, 4))
	assert.Error(t, tex.SetData([]*image.RGBA{a, b}))
	assert.Zero(t, tex.Layers())

	require.NoError(t, tex.SetData([]*image.RGBA{a, image.NewRGBA(image.Rect(0, 0, 4, 4))}))
	assert.Equal(t, 2, tex.Layers())
}

func TestMaterialBlockLayout(t *testing.T) {
	// std140: four vec4 then two floats padded to a vec4 boundary
	assert.Equal(t, 80, materialBlockSize)
	assert.Equal(t, uintptr(64), unsafe.Offsetof(materialBlock{}.Shininess))

	block := packMaterial(MaterialData{
		Ambient:   mgl32.Vec4{0.2, 0.2, 0.2, 1},
		Shininess: 1,
		Strength:  0.5,
	})
	assert.Equal(t, [4]float32{0.2, 0.2, 0.2, 1}, block.Ambient)
	assert.Equal(t, float32(1), block.Shininess)
	assert.Equal(t, float32(0.5), block.Strength)
}
