package glw

import (
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/glr/internal/engine/shader"
)

type glTerrainMesh struct {
	name     string
	vertices []mgl32.Vec3
	normals  []mgl32.Vec3
	blend    []mgl32.Vec4
	blendLoc int32

	vao   uint32
	vbos  [3]uint32
	count int32
}

func (m *glTerrainMesh) Name() string                          { return m.name }
func (m *glTerrainMesh) SetVertices(v []mgl32.Vec3)            { m.vertices = v }
func (m *glTerrainMesh) SetNormals(n []mgl32.Vec3)             { m.normals = n }
func (m *glTerrainMesh) SetTextureBlendingData(w []mgl32.Vec4) { m.blend = w }
func (m *glTerrainMesh) SetShaderVariableLocation(loc int32)   { m.blendLoc = loc }

func (m *glTerrainMesh) VertexCount() int {
	if m.vao != 0 {
		return int(m.count)
	}
	return len(m.vertices)
}

func (m *glTerrainMesh) AllocateVideoMemory() error {
	if m.vao != 0 {
		return nil
	}
	gl.GenVertexArrays(1, &m.vao)
	gl.GenBuffers(int32(len(m.vbos)), &m.vbos[0])
	if err := CheckError("allocate mesh " + m.name); err != nil {
		m.FreeVideoMemory()
		return err
	}
	return nil
}

// PushToVideoMemory uploads the geometry and drops the CPU-side copies.
func (m *glTerrainMesh) PushToVideoMemory() error {
	gl.BindVertexArray(m.vao)

	m.count = int32(len(m.vertices))
	if m.count > 0 {
		uploadAttrib(m.vbos[0], shader.VoxelPositionLocation, 3, len(m.vertices)*3*4, gl.Ptr(&m.vertices[0][0]))
		uploadAttrib(m.vbos[1], shader.VoxelNormalLocation, 3, len(m.normals)*3*4, gl.Ptr(&m.normals[0][0]))
		if m.blendLoc >= 0 {
			uploadAttrib(m.vbos[2], uint32(m.blendLoc), 4, len(m.blend)*4*4, gl.Ptr(&m.blend[0][0]))
		}
	}

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	if err := CheckError("push mesh " + m.name); err != nil {
		return err
	}
	m.vertices, m.normals, m.blend = nil, nil, nil
	return nil
}

func uploadAttrib(vbo, loc uint32, components int32, size int, data unsafe.Pointer) {
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, size, data, gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(loc)
	gl.VertexAttribPointerWithOffset(loc, components, gl.FLOAT, false, components*4, 0)
}

func (m *glTerrainMesh) FreeVideoMemory() {
	if m.vbos[0] != 0 {
		gl.DeleteBuffers(int32(len(m.vbos)), &m.vbos[0])
		m.vbos = [3]uint32{}
	}
	if m.vao != 0 {
		gl.DeleteVertexArrays(1, &m.vao)
		m.vao = 0
	}
	m.count = 0
}

func (m *glTerrainMesh) Render() {
	if m.vao == 0 || m.count == 0 {
		return
	}
	gl.BindVertexArray(m.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, m.count)
	gl.BindVertexArray(0)
}
