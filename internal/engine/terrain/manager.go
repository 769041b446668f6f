// Package terrain streams voxel terrain chunks around a moving viewer.
//
// Chunk generation (sampling and meshing) runs on whatever goroutine calls
// AddChunk, usually the streaming goroutine driving Tick. All GL work is
// posted to a queue that the render thread drains with Update.
package terrain

import (
	"fmt"
	"sync"

	"github.com/alitto/pond/v2"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/glr/internal/engine/glw"
	"github.com/Faultbox/glr/internal/engine/shader"
	"github.com/Faultbox/glr/internal/engine/texture"
	"github.com/Faultbox/glr/internal/engine/voxel"
	"github.com/Faultbox/glr/internal/logger"
	"github.com/Faultbox/glr/pkg/math"
)

// Shared GPU resource names.
const (
	MaterialName     = "terrain_material_1"
	TextureArrayName = "terrain_textures_2d_array"
	BlendAttribute   = "in_texBlend"
)

var terrainMaterial = glw.MaterialData{
	Ambient:   mgl32.Vec4{0.2, 0.2, 0.2, 0.2},
	Diffuse:   mgl32.Vec4{0.2, 0.2, 0.2, 0.2},
	Specular:  mgl32.Vec4{1, 1, 1, 1},
	Emission:  mgl32.Vec4{1, 1, 1, 1},
	Shininess: 1,
	Strength:  1,
}

// FollowTarget is anything the terrain can be centred on.
type FollowTarget interface {
	Position() mgl32.Vec3
}

// Manager keeps the chunks around a follow target resident.
type Manager struct {
	device   glw.Device
	field    voxel.FieldFunction
	settings Settings
	mesher   *voxel.MeshGenerator
	log      *zap.Logger
	pool     pond.Pool // nil when generating inline

	ids IdManager

	chunksMu sync.Mutex
	chunks   map[math.IVec3]*SceneNode

	queue WorkQueue

	materialMu sync.Mutex

	// tickMu serializes residency decisions; gridMu guards the fields below it.
	tickMu   sync.Mutex
	gridMu   sync.RWMutex
	target   FollowTarget
	current  math.IVec3
	previous math.IVec3
	ticked   bool

	listenersMu sync.RWMutex
	listeners   []EventListener

	textureErr error // render thread only
}

// New creates a manager. The field must be safe for concurrent use when
// settings.Workers > 1.
func New(device glw.Device, field voxel.FieldFunction, settings Settings) (*Manager, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	m := &Manager{
		device:   device,
		field:    field,
		settings: settings,
		mesher:   voxel.NewMeshGenerator(field, settings.SmoothingAlgorithm, settings.IsoLevel),
		log:      logger.Named("terrain"),
		chunks:   make(map[math.IVec3]*SceneNode),
	}
	if settings.Workers > 1 {
		m.pool = pond.NewPool(settings.Workers)
	}
	m.log.Info("terrain manager created",
		zap.Stringer("algorithm", settings.SmoothingAlgorithm),
		zap.Int("chunkSize", settings.ChunkSize),
		zap.Int("blockSize", settings.BlockSize()),
		zap.Int("radius", settings.QuadrantRadius),
		zap.Int("workers", max(settings.Workers, 1)),
	)
	return m, nil
}

// Close stops the generation workers. GPU resources are released through
// RemoveAllChunks and Update on the render thread.
func (m *Manager) Close() {
	if m.pool != nil {
		m.pool.StopAndWait()
	}
}

func (m *Manager) Settings() Settings {
	return m.settings
}

func (m *Manager) SetFollowTarget(t FollowTarget) {
	m.gridMu.Lock()
	m.target = t
	m.gridMu.Unlock()
}

func (m *Manager) FollowTarget() FollowTarget {
	m.gridMu.RLock()
	defer m.gridMu.RUnlock()
	return m.target
}

// CurrentGridLocation returns the grid cell the target was in at the last tick.
func (m *Manager) CurrentGridLocation() math.IVec3 {
	m.gridMu.RLock()
	defer m.gridMu.RUnlock()
	return m.current
}

// PreviousGridLocation returns the grid cell before the last move.
func (m *Manager) PreviousGridLocation() math.IVec3 {
	m.gridMu.RLock()
	defer m.gridMu.RUnlock()
	return m.previous
}

// GridLocation converts a world position to a grid coordinate.
func (m *Manager) GridLocation(pos mgl32.Vec3) math.IVec3 {
	return math.FloorToGrid(pos, m.settings.WorldScale)
}

// Tick recomputes the target's grid cell and updates residency if it moved.
// The first tick always updates.
func (m *Manager) Tick() error {
	m.tickMu.Lock()
	defer m.tickMu.Unlock()

	target := m.FollowTarget()
	if target == nil {
		return nil
	}
	next := m.GridLocation(target.Position())

	m.gridMu.Lock()
	if m.ticked && next == m.current {
		m.gridMu.Unlock()
		return nil
	}
	if m.ticked {
		m.previous = m.current
	} else {
		m.previous = next
	}
	m.current = next
	m.ticked = true
	m.gridMu.Unlock()

	m.log.Debug("grid location changed",
		zap.Stringer("from", m.PreviousGridLocation()),
		zap.Stringer("to", next),
	)
	return m.updateChunks()
}

// UpdateChunks loads the cube around the current grid location and evicts
// the planes the target moved away from.
func (m *Manager) UpdateChunks() error {
	m.tickMu.Lock()
	defer m.tickMu.Unlock()
	return m.updateChunks()
}

func (m *Manager) updateChunks() error {
	m.gridMu.RLock()
	current, previous := m.current, m.previous
	m.gridMu.RUnlock()
	d := m.settings.QuadrantRadius

	m.AddChunk(current)
	if err := m.addCube(current, d); err != nil {
		return err
	}

	diff := current.Sub(previous)
	for axis := range 3 {
		delta := component(diff, axis)
		steps := math.AbsInt(delta)
		for i := range steps {
			var plane int
			if delta >= 0 {
				plane = -(d + delta) + i
			} else {
				plane = d + steps - i
			}
			m.removePlane(current, axis, plane, d)
		}
	}
	return nil
}

func (m *Manager) addCube(center math.IVec3, d int) error {
	if m.pool == nil {
		for k := -d; k <= d; k++ {
			for j := -d; j <= d; j++ {
				for i := -d; i <= d; i++ {
					m.AddChunk(center.Add(math.IVec3{X: i, Y: j, Z: k}))
				}
			}
		}
		return nil
	}

	group := m.pool.NewGroup()
	for k := -d; k <= d; k++ {
		for j := -d; j <= d; j++ {
			for i := -d; i <= d; i++ {
				c := center.Add(math.IVec3{X: i, Y: j, Z: k})
				group.Submit(func() { m.AddChunk(c) })
			}
		}
	}
	if err := group.Wait(); err != nil {
		return fmt.Errorf("generate chunks around %v: %w", center, err)
	}
	return nil
}

// removePlane removes every chunk whose offset from center along axis is
// plane, sweeping the other two axes over [-d, d].
func (m *Manager) removePlane(center math.IVec3, axis, plane, d int) {
	for a := -d; a <= d; a++ {
		for b := -d; b <= d; b++ {
			var off math.IVec3
			switch axis {
			case 0:
				off = math.IVec3{X: plane, Y: a, Z: b}
			case 1:
				off = math.IVec3{X: a, Y: plane, Z: b}
			default:
				off = math.IVec3{X: a, Y: b, Z: plane}
			}
			m.RemoveChunk(center.Add(off))
		}
	}
}

func component(v math.IVec3, axis int) int {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// Update runs up to maxUpdates queued GPU work items. Render thread only.
func (m *Manager) Update(maxUpdates int) error {
	_, err := m.queue.Drain(maxUpdates, m.settings.IsolateWorkErrors)
	if err != nil && m.settings.IsolateWorkErrors {
		for _, e := range multierr.Errors(err) {
			m.log.Error("terrain work failed", zap.Error(e))
		}
	}
	return err
}

// PendingWork returns the number of queued GPU work items.
func (m *Manager) PendingWork() int {
	return m.queue.Len()
}

// Render draws every active chunk with the currently bound program.
// Render thread only.
func (m *Manager) Render() {
	m.chunksMu.Lock()
	visible := make([]*SceneNode, 0, len(m.chunks))
	for _, n := range m.chunks {
		if n.IsActive() {
			visible = append(visible, n)
		}
	}
	m.chunksMu.Unlock()

	for _, n := range visible {
		n.Render()
	}
}

// GetChunk returns the active node at c, or nil.
func (m *Manager) GetChunk(c math.IVec3) *SceneNode {
	m.chunksMu.Lock()
	defer m.chunksMu.Unlock()
	if n, ok := m.chunks[c]; ok && n.IsActive() {
		return n
	}
	return nil
}

// GetChunkAt returns the active node covering a world position, or nil.
func (m *Manager) GetChunkAt(pos mgl32.Vec3) *SceneNode {
	return m.GetChunk(m.GridLocation(pos))
}

// ActiveChunks returns the coordinates of every active node.
func (m *Manager) ActiveChunks() []math.IVec3 {
	m.chunksMu.Lock()
	defer m.chunksMu.Unlock()
	var out []math.IVec3
	for c, n := range m.chunks {
		if n.IsActive() {
			out = append(out, c)
		}
	}
	return out
}

// Len returns the number of resident nodes, active or not.
func (m *Manager) Len() int {
	m.chunksMu.Lock()
	defer m.chunksMu.Unlock()
	return len(m.chunks)
}

// LevelOfDetail returns the detail band of chunk c seen from the follow target.
func (m *Manager) LevelOfDetail(c math.IVec3) LevelOfDetail {
	target := m.FollowTarget()
	if target == nil {
		return LODNone
	}
	size := float32(m.settings.ChunkSize)
	center := c.Vec3().Mul(size).Add(mgl32.Vec3{0, size / 2, 0})
	return m.settings.LevelOfDetailFor(center.Sub(target.Position()).Len())
}

func (m *Manager) AddChunkXYZ(x, y, z int) {
	m.AddChunk(math.IVec3{X: x, Y: y, Z: z})
}

// AddChunkAt adds the chunk covering a world position.
func (m *Manager) AddChunkAt(pos mgl32.Vec3) {
	m.AddChunk(m.GridLocation(pos))
}

// AddChunk makes the chunk at c resident. An inactive node is reactivated; a
// pending or active node is left alone. Otherwise the chunk is sampled and
// meshed on the calling goroutine and its upload is queued. Chunks that are
// entirely empty or solid are dropped.
func (m *Manager) AddChunk(c math.IVec3) {
	m.chunksMu.Lock()
	if n, ok := m.chunks[c]; ok {
		switch n.loadState() {
		case stateInactive:
			if n.transition(stateInactive, stateActive) {
				m.chunksMu.Unlock()
				m.log.Debug("chunk reactivated", zap.Stringer("coord", c))
				return
			}
		case statePending, stateActive:
			m.chunksMu.Unlock()
			return
		}
		// Cancelled or released nodes are replaced; their queued release
		// only erases the entry while it still points at them.
	}
	node := newSceneNode(m.ids.CreateID(), c)
	m.chunks[c] = node
	m.chunksMu.Unlock()

	chunk := voxel.NewChunk(c, m.settings.BlockSize(), m.settings.Resolution)
	voxel.GenerateNoise(chunk, m.field)
	if voxel.DetermineIfEmptyOrSolid(chunk, m.settings.IsoLevel) {
		m.drop(node)
		return
	}
	data := m.mesher.GenerateMesh(chunk)
	if data.Empty() {
		m.drop(node)
		return
	}

	prog := m.device.ShaderProgram(shader.VoxelProgram)
	if prog == nil {
		panic(fmt.Sprintf("terrain: shader program %q not loaded", shader.VoxelProgram))
	}

	mesh := m.device.NewTerrainMesh(fmt.Sprintf("terrain_%d_%d_%d_model", c.X, c.Y, c.Z))
	mesh.SetVertices(data.Vertices)
	mesh.SetNormals(data.Normals)
	mesh.SetTextureBlendingData(data.BlendWeights)

	material := m.material()

	half := float32(m.settings.ChunkSize) / 2
	node.Attach(prog)
	node.Translate(mgl32.Vec3{-half, 0, -half})

	m.log.Debug("chunk generated",
		zap.Stringer("coord", c),
		zap.Int("triangles", data.Triangles()),
	)
	m.queue.Post(func() error {
		return m.upload(node, prog, mesh, material)
	})
}

// drop discards a node that has no geometry.
func (m *Manager) drop(n *SceneNode) {
	m.chunksMu.Lock()
	if m.chunks[n.coord] == n {
		delete(m.chunks, n.coord)
	}
	m.chunksMu.Unlock()
	n.state.Store(int32(stateReleased))
}

// material returns the shared terrain material, creating it on first use.
func (m *Manager) material() glw.Material {
	m.materialMu.Lock()
	defer m.materialMu.Unlock()

	if mat := m.device.Material(MaterialName); mat != nil {
		return mat
	}
	mat, err := m.device.AddMaterial(MaterialName)
	if err != nil {
		panic(fmt.Sprintf("terrain: create material %q: %v", MaterialName, err))
	}
	mat.SetData(terrainMaterial)
	return mat
}

// upload runs on the render thread and makes a pending node visible. A
// failed upload abandons the node so the coordinate can be added again.
func (m *Manager) upload(n *SceneNode, prog glw.ShaderProgram, mesh glw.TerrainMesh, material glw.Material) error {
	if n.loadState() != statePending {
		return nil
	}
	if err := m.pushModel(n, prog, mesh, material); err != nil {
		m.abandon(n)
		return err
	}

	c := n.coord
	n.SetName(fmt.Sprintf("terrain_%d_%d_%d", c.X, c.Y, c.Z))
	if !n.transition(statePending, stateActive) {
		// Cancelled while uploading.
		n.FreeVideoMemory()
		return nil
	}
	m.notifyVisible(n)
	return nil
}

func (m *Manager) pushModel(n *SceneNode, prog glw.ShaderProgram, mesh glw.TerrainMesh, material glw.Material) error {
	textures, err := m.textures()
	if err != nil {
		return err
	}

	n.AttachModel(&Model{Mesh: mesh, Textures: textures, Material: material})

	if material.BufferID() == 0 {
		if err := material.AllocateVideoMemory(); err != nil {
			return fmt.Errorf("allocate material %s: %w", material.Name(), err)
		}
		if err := material.PushToVideoMemory(); err != nil {
			material.FreeVideoMemory()
			return fmt.Errorf("push material %s: %w", material.Name(), err)
		}
	}

	loc := prog.AttribLocation(BlendAttribute)
	if loc < 0 {
		panic(fmt.Sprintf("terrain: attribute %q not found in program %q", BlendAttribute, prog.Name()))
	}
	mesh.SetShaderVariableLocation(loc)
	if err := mesh.AllocateVideoMemory(); err != nil {
		return fmt.Errorf("allocate %s: %w", mesh.Name(), err)
	}
	if err := mesh.PushToVideoMemory(); err != nil {
		return fmt.Errorf("push %s: %w", mesh.Name(), err)
	}
	return nil
}

// abandon releases a node whose upload failed and frees its entry.
func (m *Manager) abandon(n *SceneNode) {
	if !n.transition(statePending, stateReleased) && !n.transition(stateCancelled, stateReleased) {
		return
	}
	n.FreeVideoMemory()

	m.chunksMu.Lock()
	if m.chunks[n.coord] == n {
		delete(m.chunks, n.coord)
	}
	m.chunksMu.Unlock()
}

// textures returns the shared texture array, loading it on first use. A load
// failure is sticky: every later upload fails with the same error.
func (m *Manager) textures() (glw.Texture2DArray, error) {
	if m.textureErr != nil {
		return nil, m.textureErr
	}
	if tex := m.device.Texture2DArray(TextureArrayName); tex != nil && tex.IsVideoMemoryAllocated() {
		return tex, nil
	}

	tex, err := m.loadTextures()
	if err != nil {
		m.textureErr = err
		m.log.Error("terrain textures unavailable", zap.Error(err))
		return nil, err
	}
	return tex, nil
}

func (m *Manager) loadTextures() (glw.Texture2DArray, error) {
	dir := m.device.Settings().DefaultTextureDir
	layers, err := texture.LoadLayers(dir, m.settings.TextureFiles)
	if err != nil {
		return nil, fmt.Errorf("load terrain textures: %w", err)
	}

	tex := m.device.Texture2DArray(TextureArrayName)
	if tex == nil {
		tex, err = m.device.AddTexture2DArray(TextureArrayName, glw.TextureSettings{Wrap: glw.WrapRepeat, Mipmaps: true})
		if err != nil {
			return nil, fmt.Errorf("create terrain textures: %w", err)
		}
	}
	if err := tex.SetData(layers); err != nil {
		return nil, err
	}
	if err := tex.AllocateVideoMemory(); err != nil {
		return nil, fmt.Errorf("allocate terrain textures: %w", err)
	}
	if err := tex.PushToVideoMemory(); err != nil {
		tex.FreeVideoMemory()
		return nil, fmt.Errorf("push terrain textures: %w", err)
	}

	m.log.Info("terrain textures loaded",
		zap.String("dir", dir),
		zap.Strings("files", m.settings.TextureFiles),
	)
	return tex, nil
}

func (m *Manager) RemoveChunkXYZ(x, y, z int) {
	m.RemoveChunk(math.IVec3{X: x, Y: y, Z: z})
}

// RemoveChunkAt removes the chunk covering a world position.
func (m *Manager) RemoveChunkAt(pos mgl32.Vec3) {
	m.RemoveChunk(m.GridLocation(pos))
}

// RemoveChunk hides the active node at c right away and queues the release
// of its GPU buffers. Pending, inactive and absent coordinates are ignored.
func (m *Manager) RemoveChunk(c math.IVec3) {
	m.chunksMu.Lock()
	n, ok := m.chunks[c]
	m.chunksMu.Unlock()
	if !ok || !n.transition(stateActive, stateInactive) {
		return
	}
	m.queue.Post(func() error {
		m.release(n)
		return nil
	})
}

// RemoveAllChunks hides every node, queues their release and starts a new
// id generation.
func (m *Manager) RemoveAllChunks() {
	m.chunksMu.Lock()
	var doomed []*SceneNode
	for _, n := range m.chunks {
		if n.transition(stateActive, stateInactive) ||
			n.transition(statePending, stateCancelled) ||
			n.loadState() == stateInactive {
			doomed = append(doomed, n)
		}
	}
	m.chunksMu.Unlock()

	for _, n := range doomed {
		m.queue.Post(func() error {
			m.release(n)
			return nil
		})
	}
	m.ids.Reset()
	m.log.Info("all chunks removed", zap.Int("count", len(doomed)))
}

// release frees a hidden node and erases it. A node reactivated since it was
// hidden is left alone.
func (m *Manager) release(n *SceneNode) {
	if !n.transition(stateInactive, stateReleased) && !n.transition(stateCancelled, stateReleased) {
		return
	}
	n.FreeVideoMemory()

	m.chunksMu.Lock()
	if m.chunks[n.coord] == n {
		delete(m.chunks, n.coord)
	}
	m.chunksMu.Unlock()

	m.notifyReleased(n)
}
