package terrain

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	stdmath "math"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/glr/internal/engine/glw"
	"github.com/Faultbox/glr/internal/engine/shader"
	"github.com/Faultbox/glr/internal/engine/voxel"
	"github.com/Faultbox/glr/pkg/math"
)

type fakeDevice struct {
	settings glw.DeviceSettings

	mu        sync.Mutex
	programs  map[string]*fakeProgram
	materials map[string]*fakeMaterial
	textures  map[string]*fakeTextures
	meshes    []*fakeMesh

	// failMeshAllocs makes the next n meshes fail AllocateVideoMemory.
	failMeshAllocs int
}

func newFakeDevice(textureDir string) *fakeDevice {
	d := &fakeDevice{
		settings:  glw.DeviceSettings{DefaultTextureDir: textureDir},
		programs:  make(map[string]*fakeProgram),
		materials: make(map[string]*fakeMaterial),
		textures:  make(map[string]*fakeTextures),
	}
	d.programs[shader.VoxelProgram] = &fakeProgram{name: shader.VoxelProgram, blendLoc: 2}
	return d
}

func (d *fakeDevice) ShaderProgram(name string) glw.ShaderProgram {
	d.mu.Lock()
	defer d.mu.Unlock()
	if p, ok := d.programs[name]; ok {
		return p
	}
	return nil
}

func (d *fakeDevice) Material(name string) glw.Material {
	d.mu.Lock()
	defer d.mu.Unlock()
	if m, ok := d.materials[name]; ok {
		return m
	}
	return nil
}

func (d *fakeDevice) AddMaterial(name string) (glw.Material, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.materials[name]; ok {
		return nil, fmt.Errorf("material %q exists", name)
	}
	m := &fakeMaterial{name: name}
	d.materials[name] = m
	return m, nil
}

func (d *fakeDevice) Texture2DArray(name string) glw.Texture2DArray {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.textures[name]; ok {
		return t
	}
	return nil
}

func (d *fakeDevice) AddTexture2DArray(name string, settings glw.TextureSettings) (glw.Texture2DArray, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.textures[name]; ok {
		return nil, fmt.Errorf("texture %q exists", name)
	}
	t := &fakeTextures{name: name, settings: settings}
	d.textures[name] = t
	return t, nil
}

func (d *fakeDevice) NewTerrainMesh(name string) glw.TerrainMesh {
	m := &fakeMesh{name: name, loc: -1}
	d.mu.Lock()
	if d.failMeshAllocs > 0 {
		d.failMeshAllocs--
		m.allocErr = &glw.GLError{Op: "allocate " + name, Code: gl.OUT_OF_MEMORY}
	}
	d.meshes = append(d.meshes, m)
	d.mu.Unlock()
	return m
}

func (d *fakeDevice) Settings() glw.DeviceSettings { return d.settings }

func (d *fakeDevice) allMeshes() []*fakeMesh {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*fakeMesh(nil), d.meshes...)
}

func (d *fakeDevice) program() *fakeProgram {
	return d.programs[shader.VoxelProgram]
}

type fakeProgram struct {
	name     string
	blendLoc int32

	mu    sync.Mutex
	model mgl32.Mat4
}

func (p *fakeProgram) Name() string { return p.name }
func (p *fakeProgram) Use()         {}

func (p *fakeProgram) AttribLocation(name string) int32 {
	if name == BlendAttribute {
		return p.blendLoc
	}
	return -1
}

func (p *fakeProgram) SetMat4(name string, m mgl32.Mat4) {
	if name == "model" {
		p.mu.Lock()
		p.model = m
		p.mu.Unlock()
	}
}

func (p *fakeProgram) SetVec3(string, mgl32.Vec3) {}
func (p *fakeProgram) SetInt(string, int32)       {}

type fakeMaterial struct {
	name   string
	data   glw.MaterialData
	buffer uint32
	allocs int
	pushes int

	pushErr error // returned by the next push
}

func (m *fakeMaterial) Name() string                  { return m.name }
func (m *fakeMaterial) Data() glw.MaterialData        { return m.data }
func (m *fakeMaterial) SetData(data glw.MaterialData) { m.data = data }
func (m *fakeMaterial) BufferID() uint32              { return m.buffer }
func (m *fakeMaterial) FreeVideoMemory()              { m.buffer = 0 }
func (m *fakeMaterial) Bind()                         {}

func (m *fakeMaterial) AllocateVideoMemory() error {
	m.allocs++
	m.buffer = 7
	return nil
}

func (m *fakeMaterial) PushToVideoMemory() error {
	m.pushes++
	err := m.pushErr
	m.pushErr = nil
	return err
}

type fakeTextures struct {
	name      string
	settings  glw.TextureSettings
	layers    []*image.RGBA
	allocated bool
}

func (t *fakeTextures) Name() string                 { return t.name }
func (t *fakeTextures) Layers() int                  { return len(t.layers) }
func (t *fakeTextures) IsVideoMemoryAllocated() bool { return t.allocated }
func (t *fakeTextures) PushToVideoMemory() error     { return nil }
func (t *fakeTextures) FreeVideoMemory()             { t.allocated = false }
func (t *fakeTextures) Bind(uint32)                  {}

func (t *fakeTextures) SetData(l []*image.RGBA) error {
	t.layers = l
	return nil
}

func (t *fakeTextures) AllocateVideoMemory() error {
	t.allocated = true
	return nil
}

type fakeMesh struct {
	name     string
	vertices []mgl32.Vec3
	normals  []mgl32.Vec3
	blend    []mgl32.Vec4
	loc      int32
	allocErr error

	allocated bool
	pushed    bool
	freed     atomic.Int32
	renders   atomic.Int32
}

func (m *fakeMesh) Name() string                          { return m.name }
func (m *fakeMesh) SetVertices(v []mgl32.Vec3)            { m.vertices = v }
func (m *fakeMesh) SetNormals(n []mgl32.Vec3)             { m.normals = n }
func (m *fakeMesh) SetTextureBlendingData(w []mgl32.Vec4) { m.blend = w }
func (m *fakeMesh) SetShaderVariableLocation(loc int32)   { m.loc = loc }
func (m *fakeMesh) VertexCount() int                      { return len(m.vertices) }

func (m *fakeMesh) AllocateVideoMemory() error {
	if m.allocErr != nil {
		return m.allocErr
	}
	m.allocated = true
	return nil
}

func (m *fakeMesh) PushToVideoMemory() error {
	m.pushed = true
	return nil
}

func (m *fakeMesh) FreeVideoMemory() {
	if m.allocated {
		m.freed.Add(1)
	}
	m.allocated = false
}

func (m *fakeMesh) Render() {
	m.renders.Add(1)
}

// stripes is mixed in every chunk: samples alternate sign along x.
var stripes = voxel.FieldFunc(func(p mgl32.Vec3) float32 {
	return float32(stdmath.Cos(stdmath.Pi * float64(p.X())))
})

type countingField struct {
	inner voxel.FieldFunction
	calls atomic.Int64
}

func (f *countingField) Density(p mgl32.Vec3) float32 {
	f.calls.Add(1)
	return f.inner.Density(p)
}

// target is a follow target that can be moved from the test goroutine.
type target struct {
	mu  sync.Mutex
	pos mgl32.Vec3
}

func (t *target) Position() mgl32.Vec3 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pos
}

func (t *target) moveToCell(c math.IVec3, scale float32) {
	t.mu.Lock()
	t.pos = c.Vec3().Mul(scale).Add(mgl32.Vec3{0.5, 0.5, 0.5})
	t.mu.Unlock()
}

// writeTextures creates the default texture layers under a temp dir.
func writeTextures(t *testing.T, files []string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		img := image.NewRGBA(image.Rect(0, 0, 4, 4))
		img.SetRGBA(0, 0, color.RGBA{10, 120, 10, 255})
		f, err := os.Create(path)
		if err != nil {
			t.Fatal(err)
		}
		if err := png.Encode(f, img); err != nil {
			f.Close()
			t.Fatal(err)
		}
		f.Close()
	}
	return dir
}

// testSettings uses small chunks so a full neighbourhood is cheap to generate.
func testSettings() Settings {
	s := DefaultSettings()
	s.ChunkSize = 4
	s.WorldScale = 4
	s.QuadrantRadius = 2
	return s
}

type testRig struct {
	device  *fakeDevice
	field   *countingField
	manager *Manager
	target  *target
}

func newRig(t *testing.T, field voxel.FieldFunction, settings Settings) *testRig {
	t.Helper()
	dir := writeTextures(t, settings.TextureFiles)
	return newRigWithDir(t, field, settings, dir)
}

func newRigWithDir(t *testing.T, field voxel.FieldFunction, settings Settings, dir string) *testRig {
	t.Helper()
	cf := &countingField{inner: field}
	dev := newFakeDevice(dir)
	m, err := New(dev, cf, settings)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(m.Close)
	tg := &target{}
	m.SetFollowTarget(tg)
	return &testRig{device: dev, field: cf, manager: m, target: tg}
}

// drain runs the queue until it is empty.
func (r *testRig) drain(t *testing.T) {
	t.Helper()
	for r.manager.PendingWork() > 0 {
		if err := r.manager.Update(r.manager.PendingWork()); err != nil {
			t.Fatalf("Update: %v", err)
		}
	}
}

func (r *testRig) node(c math.IVec3) *SceneNode {
	r.manager.chunksMu.Lock()
	defer r.manager.chunksMu.Unlock()
	return r.manager.chunks[c]
}
