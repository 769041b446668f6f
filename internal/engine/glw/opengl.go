package glw

import (
	"fmt"
	"sync"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/glr/internal/engine/shader"
	"github.com/Faultbox/glr/internal/logger"
)

// OpenGlDevice is a Device backed by the current GL context.
type OpenGlDevice struct {
	settings DeviceSettings
	log      *zap.Logger

	mu        sync.RWMutex
	programs  map[string]*glShaderProgram
	materials map[string]*glMaterial
	textures  map[string]*glTexture2DArray
}

// NewOpenGlDevice creates a device. gl.Init must already have succeeded.
func NewOpenGlDevice(settings DeviceSettings) *OpenGlDevice {
	return &OpenGlDevice{
		settings:  settings,
		log:       logger.Named("glw"),
		programs:  make(map[string]*glShaderProgram),
		materials: make(map[string]*glMaterial),
		textures:  make(map[string]*glTexture2DArray),
	}
}

// LoadShaderProgram compiles and registers a program. Render thread only.
func (d *OpenGlDevice) LoadShaderProgram(name, vertexSrc, fragmentSrc string) (ShaderProgram, error) {
	id, err := shader.CompileProgram(vertexSrc, fragmentSrc)
	if err != nil {
		return nil, fmt.Errorf("shader %q: %w", name, err)
	}
	p := &glShaderProgram{name: name, id: id, uniforms: make(map[string]int32)}

	d.mu.Lock()
	old := d.programs[name]
	d.programs[name] = p
	d.mu.Unlock()

	if old != nil {
		gl.DeleteProgram(old.id)
	}
	d.log.Info("shader program loaded", zap.String("name", name), zap.Uint32("id", id))
	return p, nil
}

func (d *OpenGlDevice) ShaderProgram(name string) ShaderProgram {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if p, ok := d.programs[name]; ok {
		return p
	}
	return nil
}

func (d *OpenGlDevice) Material(name string) Material {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if m, ok := d.materials[name]; ok {
		return m
	}
	return nil
}

func (d *OpenGlDevice) AddMaterial(name string) (Material, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.materials[name]; ok {
		return nil, fmt.Errorf("material %q already exists", name)
	}
	m := &glMaterial{name: name}
	d.materials[name] = m
	return m, nil
}

func (d *OpenGlDevice) Texture2DArray(name string) Texture2DArray {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if t, ok := d.textures[name]; ok {
		return t
	}
	return nil
}

func (d *OpenGlDevice) AddTexture2DArray(name string, settings TextureSettings) (Texture2DArray, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.textures[name]; ok {
		return nil, fmt.Errorf("texture array %q already exists", name)
	}
	t := &glTexture2DArray{name: name, settings: settings}
	d.textures[name] = t
	return t, nil
}

func (d *OpenGlDevice) NewTerrainMesh(name string) TerrainMesh {
	return &glTerrainMesh{name: name, blendLoc: -1}
}

func (d *OpenGlDevice) Settings() DeviceSettings {
	return d.settings
}

// Close frees every registered resource. Render thread only.
func (d *OpenGlDevice) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, t := range d.textures {
		t.FreeVideoMemory()
	}
	for _, m := range d.materials {
		m.FreeVideoMemory()
	}
	for _, p := range d.programs {
		gl.DeleteProgram(p.id)
	}
	clear(d.textures)
	clear(d.materials)
	clear(d.programs)
}

type glShaderProgram struct {
	name     string
	id       uint32
	uniforms map[string]int32 // render thread only
}

func (p *glShaderProgram) Name() string { return p.name }

func (p *glShaderProgram) AttribLocation(name string) int32 {
	return shader.GetAttrib(p.id, name)
}

func (p *glShaderProgram) Use() {
	gl.UseProgram(p.id)
}

func (p *glShaderProgram) uniform(name string) int32 {
	if loc, ok := p.uniforms[name]; ok {
		return loc
	}
	loc := shader.GetUniform(p.id, name)
	p.uniforms[name] = loc
	return loc
}

func (p *glShaderProgram) SetMat4(name string, m mgl32.Mat4) {
	gl.UniformMatrix4fv(p.uniform(name), 1, false, &m[0])
}

func (p *glShaderProgram) SetVec3(name string, v mgl32.Vec3) {
	gl.Uniform3fv(p.uniform(name), 1, &v[0])
}

func (p *glShaderProgram) SetInt(name string, v int32) {
	gl.Uniform1i(p.uniform(name), v)
}

// BindUniformBlock attaches a named uniform block to a binding point.
func (p *glShaderProgram) BindUniformBlock(block string, binding uint32) {
	idx := gl.GetUniformBlockIndex(p.id, gl.Str(block+"\x00"))
	if idx != gl.INVALID_INDEX {
		gl.UniformBlockBinding(p.id, idx, binding)
	}
}

// UniformBlockBinder is implemented by programs that expose uniform blocks.
type UniformBlockBinder interface {
	BindUniformBlock(block string, binding uint32)
}
