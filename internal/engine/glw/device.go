// Package glw is the graphics device capability the terrain streamer draws through.
//
// Lookups and object creation on a Device are safe from any goroutine. Methods
// that touch video memory (Allocate*, Push*, Free*, Bind, Render) must run on
// the thread that owns the GL context.
package glw

import (
	"image"

	"github.com/go-gl/mathgl/mgl32"
)

// MaterialBinding is the uniform block binding point materials are bound to.
const MaterialBinding = 1

// Device creates and looks up GPU resources by name.
type Device interface {
	// ShaderProgram returns the named program, or nil if none is loaded.
	ShaderProgram(name string) ShaderProgram
	// Material returns the named material, or nil.
	Material(name string) Material
	// AddMaterial registers a new material. It fails if the name is taken.
	AddMaterial(name string) (Material, error)
	// Texture2DArray returns the named texture array, or nil.
	Texture2DArray(name string) Texture2DArray
	// AddTexture2DArray registers a new texture array. It fails if the name is taken.
	AddTexture2DArray(name string, settings TextureSettings) (Texture2DArray, error)
	// NewTerrainMesh returns an unregistered mesh owned by the caller.
	NewTerrainMesh(name string) TerrainMesh
	Settings() DeviceSettings
}

// DeviceSettings are device-wide resource settings.
type DeviceSettings struct {
	DefaultTextureDir string
}

// ShaderProgram is a linked GL program.
type ShaderProgram interface {
	Name() string
	// AttribLocation returns the attribute location, or -1 if it is not active.
	AttribLocation(name string) int32
	Use()
	SetMat4(name string, m mgl32.Mat4)
	SetVec3(name string, v mgl32.Vec3)
	SetInt(name string, v int32)
}

// MaterialData is the lighting response of a surface.
type MaterialData struct {
	Ambient   mgl32.Vec4
	Diffuse   mgl32.Vec4
	Specular  mgl32.Vec4
	Emission  mgl32.Vec4
	Shininess float32
	Strength  float32
}

// Material is a uniform buffer holding MaterialData.
type Material interface {
	Name() string
	Data() MaterialData
	SetData(data MaterialData)
	// BufferID is zero until video memory is allocated.
	BufferID() uint32
	AllocateVideoMemory() error
	PushToVideoMemory() error
	FreeVideoMemory()
	Bind()
}

// TextureWrap is the texture coordinate wrap mode.
type TextureWrap int

const (
	WrapRepeat TextureWrap = iota
	WrapClampToEdge
	WrapMirroredRepeat
)

// TextureSettings configure sampling of a texture.
type TextureSettings struct {
	Wrap    TextureWrap
	Mipmaps bool
}

// Texture2DArray is a layered 2D texture; all layers share one size.
type Texture2DArray interface {
	Name() string
	// SetData replaces the CPU-side layers. Every layer must have the size of the first.
	SetData(layers []*image.RGBA) error
	Layers() int
	IsVideoMemoryAllocated() bool
	AllocateVideoMemory() error
	PushToVideoMemory() error
	FreeVideoMemory()
	Bind(unit uint32)
}

// TerrainMesh is non-indexed triangle geometry with per-vertex blend weights.
type TerrainMesh interface {
	Name() string
	SetVertices(v []mgl32.Vec3)
	SetNormals(n []mgl32.Vec3)
	SetTextureBlendingData(w []mgl32.Vec4)
	// SetShaderVariableLocation sets the attribute location the blend weights are bound to.
	SetShaderVariableLocation(loc int32)
	VertexCount() int
	AllocateVideoMemory() error
	PushToVideoMemory() error
	FreeVideoMemory()
	Render()
}
