package glw

import (
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// materialBlock mirrors the std140 layout of the Material uniform block.
type materialBlock struct {
	Ambient   [4]float32
	Diffuse   [4]float32
	Specular  [4]float32
	Emission  [4]float32
	Shininess float32
	Strength  float32
	_         [2]float32
}

const materialBlockSize = int(unsafe.Sizeof(materialBlock{}))

func packMaterial(d MaterialData) materialBlock {
	return materialBlock{
		Ambient:   d.Ambient,
		Diffuse:   d.Diffuse,
		Specular:  d.Specular,
		Emission:  d.Emission,
		Shininess: d.Shininess,
		Strength:  d.Strength,
	}
}

type glMaterial struct {
	name   string
	data   MaterialData
	buffer uint32
}

func (m *glMaterial) Name() string              { return m.name }
func (m *glMaterial) Data() MaterialData        { return m.data }
func (m *glMaterial) SetData(data MaterialData) { m.data = data }
func (m *glMaterial) BufferID() uint32          { return m.buffer }

func (m *glMaterial) AllocateVideoMemory() error {
	if m.buffer != 0 {
		return nil
	}
	gl.GenBuffers(1, &m.buffer)
	gl.BindBuffer(gl.UNIFORM_BUFFER, m.buffer)
	gl.BufferData(gl.UNIFORM_BUFFER, materialBlockSize, nil, gl.DYNAMIC_DRAW)
	gl.BindBuffer(gl.UNIFORM_BUFFER, 0)
	if err := CheckError("allocate material " + m.name); err != nil {
		m.FreeVideoMemory()
		return err
	}
	return nil
}

func (m *glMaterial) PushToVideoMemory() error {
	block := packMaterial(m.data)
	gl.BindBuffer(gl.UNIFORM_BUFFER, m.buffer)
	gl.BufferSubData(gl.UNIFORM_BUFFER, 0, materialBlockSize, unsafe.Pointer(&block))
	gl.BindBuffer(gl.UNIFORM_BUFFER, 0)
	return CheckError("push material " + m.name)
}

func (m *glMaterial) FreeVideoMemory() {
	if m.buffer != 0 {
		gl.DeleteBuffers(1, &m.buffer)
		m.buffer = 0
	}
}

func (m *glMaterial) Bind() {
	gl.BindBufferBase(gl.UNIFORM_BUFFER, MaterialBinding, m.buffer)
}
