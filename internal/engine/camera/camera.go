// Package camera provides the free-flying viewer camera.
package camera

import (
	"sync"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// FlyCamera moves freely with yaw/pitch mouse look. It is read by the terrain
// streaming goroutine, so every accessor takes the lock.
type FlyCamera struct {
	mu sync.RWMutex

	position mgl32.Vec3
	yaw      float32 // radians, 0 looks down -Z
	pitch    float32 // radians

	// Fixed after construction.
	Speed       float32 // units per second
	Sensitivity float32 // radians per pixel
	FovY        float32 // degrees
	Near, Far   float32
}

const maxPitch = 89 * math32.Pi / 180

// NewFlyCamera creates a camera at pos looking down -Z.
func NewFlyCamera(pos mgl32.Vec3) *FlyCamera {
	return &FlyCamera{
		position:    pos,
		Speed:       24,
		Sensitivity: 0.0025,
		FovY:        60,
		Near:        0.1,
		Far:         1024,
	}
}

// Position returns the camera position in world space.
func (c *FlyCamera) Position() mgl32.Vec3 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.position
}

func (c *FlyCamera) SetPosition(pos mgl32.Vec3) {
	c.mu.Lock()
	c.position = pos
	c.mu.Unlock()
}

// Orientation returns yaw and pitch in radians.
func (c *FlyCamera) Orientation() (yaw, pitch float32) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.yaw, c.pitch
}

// Forward returns the unit view direction.
func (c *FlyCamera) Forward() mgl32.Vec3 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return forward(c.yaw, c.pitch)
}

func forward(yaw, pitch float32) mgl32.Vec3 {
	cp := math32.Cos(pitch)
	return mgl32.Vec3{math32.Sin(yaw) * cp, math32.Sin(pitch), -math32.Cos(yaw) * cp}
}

// Look turns the camera by a mouse delta in pixels. Pitch is clamped short
// of straight up and down.
func (c *FlyCamera) Look(dx, dy float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.yaw += dx * c.Sensitivity
	c.pitch = mgl32.Clamp(c.pitch-dy*c.Sensitivity, -maxPitch, maxPitch)
}

// Move advances the camera for dt seconds. forwardAxis follows the view
// direction, rightAxis strafes on the horizontal plane and upAxis is world up.
func (c *FlyCamera) Move(forwardAxis, rightAxis, upAxis, dt float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	f := forward(c.yaw, c.pitch)
	right := mgl32.Vec3{math32.Cos(c.yaw), 0, math32.Sin(c.yaw)}
	dir := f.Mul(forwardAxis).Add(right.Mul(rightAxis)).Add(mgl32.Vec3{0, upAxis, 0})
	if dir.Len() == 0 {
		return
	}
	c.position = c.position.Add(dir.Normalize().Mul(c.Speed * dt))
}

// ViewMatrix returns the world-to-view transform.
func (c *FlyCamera) ViewMatrix() mgl32.Mat4 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return mgl32.LookAtV(c.position, c.position.Add(forward(c.yaw, c.pitch)), mgl32.Vec3{0, 1, 0})
}

// ProjectionMatrix returns the perspective projection for a viewport.
func (c *FlyCamera) ProjectionMatrix(width, height int) mgl32.Mat4 {
	aspect := float32(1)
	if height > 0 {
		aspect = float32(width) / float32(height)
	}
	return mgl32.Perspective(mgl32.DegToRad(c.FovY), aspect, c.Near, c.Far)
}
