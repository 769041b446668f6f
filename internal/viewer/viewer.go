// Package viewer runs the terrain viewer: the render thread drains terrain GPU
// work and draws, while a background goroutine streams chunks around the camera.
package viewer

import (
	"context"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/glr/internal/config"
	"github.com/Faultbox/glr/internal/engine/camera"
	"github.com/Faultbox/glr/internal/engine/debug"
	"github.com/Faultbox/glr/internal/engine/glw"
	"github.com/Faultbox/glr/internal/engine/input"
	"github.com/Faultbox/glr/internal/engine/lighting"
	"github.com/Faultbox/glr/internal/engine/renderer"
	"github.com/Faultbox/glr/internal/engine/shader"
	"github.com/Faultbox/glr/internal/engine/terrain"
	"github.com/Faultbox/glr/internal/engine/voxel"
	"github.com/Faultbox/glr/internal/engine/window"
	"github.com/Faultbox/glr/internal/logger"
)

const title = "GLR Terrain"

// Viewer owns the window and every GL resource.
type Viewer struct {
	cfg *config.Config
	log *zap.Logger

	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	device   *glw.OpenGlDevice
	program  glw.ShaderProgram
	camera   *camera.FlyCamera
	terrain  *terrain.Manager
	hud      *hud

	lightDir    mgl32.Vec3
	screenshots *debug.ScreenshotCapture
	wantShot    bool
}

// New creates the window, the GL device and the terrain manager.
func New(cfg *config.Config) (*Viewer, error) {
	v := &Viewer{cfg: cfg, log: logger.Named("viewer")}

	settings, err := terrain.SettingsFromConfig(cfg.Terrain, cfg.Data)
	if err != nil {
		return nil, err
	}

	v.window, err = window.New(window.Config{
		Title:      title,
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
		MouseLook:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// The renderer loads GL, so it must follow the window.
	width, height := v.window.Size()
	v.renderer, err = renderer.New(renderer.Config{
		Width:      width,
		Height:     height,
		ClearColor: renderer.DefaultClearColor,
	})
	if err != nil {
		v.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	v.device = glw.NewOpenGlDevice(glw.DeviceSettings{DefaultTextureDir: cfg.Data.TextureDir})
	v.program, err = v.device.LoadShaderProgram(shader.VoxelProgram, shader.VoxelVertex, shader.VoxelFragment)
	if err != nil {
		v.closeGraphics()
		return nil, err
	}

	field := voxel.NewPerlinField(cfg.Terrain.Seed)
	v.terrain, err = terrain.New(v.device, field, settings)
	if err != nil {
		v.closeGraphics()
		return nil, err
	}

	start := mgl32.Vec3{0, field.BaseHeight + field.Amplitude + 8, 0}
	v.camera = camera.NewFlyCamera(start)
	v.camera.Far = max(settings.MaxViewDistance, v.camera.Far)
	v.terrain.SetFollowTarget(v.camera)

	v.input = input.New()
	v.lightDir = lighting.LightDirection(cfg.Graphics.SunLongitude, cfg.Graphics.SunLatitude)
	v.screenshots = debug.NewScreenshotCapture(cfg.Data.ScreenshotDir, "terrain")
	v.hud = newHUD(v.terrain, field)
	v.terrain.AddEventListener(v.hud)

	v.log.Info("viewer initialized",
		zap.String("algorithm", cfg.Terrain.SmoothingAlgorithm),
		zap.Int64("seed", cfg.Terrain.Seed),
		zap.Stringer("start", v.hud.cell(start)),
	)
	return v, nil
}

// Run streams terrain and renders until the window closes, Escape is pressed
// or ctx is cancelled.
func (v *Viewer) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	streamErr := make(chan error, 1)
	go func() {
		streamErr <- v.terrain.Stream(ctx, v.cfg.Terrain.TickInterval)
	}()
	defer func() {
		cancel()
		<-streamErr
	}()

	v.log.Info("starting render loop")
	last := time.Now()
	var lastWorkErr, lastFrameErr string

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-streamErr:
			// Stream only returns early on failure; put a value back for the deferred wait.
			streamErr <- err
			if err != nil {
				return fmt.Errorf("terrain streaming: %w", err)
			}
			return nil
		default:
		}

		now := time.Now()
		dt := float32(now.Sub(last).Seconds())
		last = now

		if quit := v.handleInput(dt); quit {
			return nil
		}

		// GPU work posted by the streaming goroutine is only ever run here.
		if err := v.terrain.Update(v.cfg.Terrain.MaxUpdatesPerFrame); err != nil {
			if msg := err.Error(); msg != lastWorkErr {
				v.log.Error("terrain update failed", zap.Error(err))
				lastWorkErr = msg
			}
		}

		// A bad frame is not fatal. CheckError already logged the GL error.
		if err := v.render(); err != nil {
			if msg := err.Error(); msg != lastFrameErr {
				v.log.Debug("frame failed", zap.Error(err))
				lastFrameErr = msg
			}
		}
		if v.wantShot {
			v.screenshot()
			v.wantShot = false
		}
		v.window.SwapBuffers()

		if line, ok := v.hud.frame(now, v.camera.Position(), v.camera.Forward()); ok {
			v.window.SetTitle(title + " | " + line)
		}
	}
}

func (v *Viewer) handleInput(dt float32) bool {
	if v.input.Update() {
		return true
	}
	for _, e := range v.input.Events() {
		switch e.Type {
		case input.EventWindowResize:
			v.renderer.Resize(v.window.Size())
		case input.EventKeyDown:
			switch e.Key {
			case sdl.SCANCODE_ESCAPE:
				return true
			case sdl.SCANCODE_TAB:
				v.window.SetMouseLook(!v.window.MouseLook())
			case sdl.SCANCODE_F1:
				v.renderer.SetWireframe(!v.renderer.Wireframe())
			case sdl.SCANCODE_F12:
				v.wantShot = true
			}
		}
	}

	if v.window.MouseLook() {
		dx, dy := v.input.MouseDelta()
		v.camera.Look(float32(dx), float32(dy))
	}
	boost := float32(1)
	if v.input.IsKeyHeld(sdl.SCANCODE_LSHIFT) {
		boost = 4
	}
	v.camera.Move(
		v.input.Axis(sdl.SCANCODE_W, sdl.SCANCODE_S),
		v.input.Axis(sdl.SCANCODE_D, sdl.SCANCODE_A),
		v.input.Axis(sdl.SCANCODE_SPACE, sdl.SCANCODE_LCTRL),
		dt*boost,
	)
	return false
}

func (v *Viewer) render() error {
	v.renderer.Begin()

	width, height := v.renderer.Size()
	v.program.Use()
	v.program.SetMat4("view", v.camera.ViewMatrix())
	v.program.SetMat4("projection", v.camera.ProjectionMatrix(width, height))
	v.program.SetVec3("lightDir", v.lightDir)
	v.program.SetVec3("viewPos", v.camera.Position())
	v.program.SetInt("textures", 0)
	if b, ok := v.program.(glw.UniformBlockBinder); ok {
		b.BindUniformBlock("Material", glw.MaterialBinding)
	}

	v.terrain.Render()
	return v.renderer.End()
}

// screenshot saves the frame just rendered, before it is swapped.
func (v *Viewer) screenshot() {
	pixels, w, h := v.renderer.ReadPixels()
	path, err := v.screenshots.CaptureFromPixels(pixels, w, h)
	if err != nil {
		v.log.Error("screenshot failed", zap.Error(err))
		return
	}
	v.log.Info("screenshot saved", zap.String("path", path))
}

// Close releases every chunk, then the device, the renderer and the window.
func (v *Viewer) Close() {
	v.log.Info("closing viewer")
	if v.terrain != nil {
		v.terrain.RemoveAllChunks()
		// Every Update consumes at least one item, so this terminates even
		// when uploads keep failing.
		for n := v.terrain.PendingWork(); n > 0; n = v.terrain.PendingWork() {
			if err := v.terrain.Update(n); err != nil {
				v.log.Warn("terrain work failed during shutdown", zap.Error(err))
			}
		}
		v.terrain.Close()
	}
	v.closeGraphics()
}

func (v *Viewer) closeGraphics() {
	if v.device != nil {
		v.device.Close()
	}
	if v.renderer != nil {
		v.renderer.Close()
	}
	if v.window != nil {
		v.window.Close()
	}
}
