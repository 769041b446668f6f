// Package renderer owns global OpenGL state and per-frame setup.
package renderer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/glr/internal/engine/glw"
	"github.com/Faultbox/glr/internal/logger"
)

// Config holds renderer settings.
type Config struct {
	Width      int
	Height     int
	ClearColor mgl32.Vec4
	Wireframe  bool
}

// DefaultClearColor is a pale sky blue.
var DefaultClearColor = mgl32.Vec4{0.55, 0.7, 0.85, 1}

// Renderer sets up the frame the terrain is drawn into.
// Must be created after the GL context.
type Renderer struct {
	config Config
	log    *zap.Logger
}

// New loads the GL function pointers and applies the default state.
func New(cfg Config) (*Renderer, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	r := &Renderer{config: cfg, log: logger.Named("renderer")}
	r.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
		zap.String("glsl", gl.GoStr(gl.GetString(gl.SHADING_LANGUAGE_VERSION))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	gl.FrontFace(gl.CCW)
	c := cfg.ClearColor
	gl.ClearColor(c.X(), c.Y(), c.Z(), c.W())
	r.SetWireframe(cfg.Wireframe)
	gl.Viewport(0, 0, int32(cfg.Width), int32(cfg.Height))

	if err := glw.CheckError("renderer setup"); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Renderer) Close() {
	r.log.Info("closing renderer")
}

// Resize updates the viewport.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	r.log.Debug("renderer resized", zap.Int("width", width), zap.Int("height", height))
}

func (r *Renderer) Size() (int, int) {
	return r.config.Width, r.config.Height
}

// SetWireframe switches polygon mode between lines and fill.
func (r *Renderer) SetWireframe(on bool) {
	r.config.Wireframe = on
	if on {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
	} else {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}
}

func (r *Renderer) Wireframe() bool {
	return r.config.Wireframe
}

// Begin clears the frame.
func (r *Renderer) Begin() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// ReadPixels returns the back buffer as bottom-up RGBA rows.
func (r *Renderer) ReadPixels() ([]byte, int, int) {
	w, h := r.config.Width, r.config.Height
	pixels := make([]byte, w*h*4)
	if len(pixels) > 0 {
		gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
		gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	}
	return pixels, w, h
}

// End reports any GL error raised during the frame.
func (r *Renderer) End() error {
	return glw.CheckError("frame")
}
