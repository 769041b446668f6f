package terrain

import "github.com/Faultbox/glr/internal/engine/glw"

// Model groups a chunk's mesh with the shared terrain texture and material.
type Model struct {
	Mesh     glw.TerrainMesh
	Textures glw.Texture2DArray
	Material glw.Material
}

func (m *Model) Render() {
	m.Material.Bind()
	m.Textures.Bind(0)
	m.Mesh.Render()
}

// FreeVideoMemory frees the mesh only.
func (m *Model) FreeVideoMemory() {
	m.Mesh.FreeVideoMemory()
}
