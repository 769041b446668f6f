package voxel

import (
	"github.com/aquilax/go-perlin"
	"github.com/go-gl/mathgl/mgl32"
)

// FieldFunction samples a scalar density at a world position.
// Values above the iso level are solid. Implementations must be free of side
// effects and safe for concurrent use: chunks are sampled from several workers.
type FieldFunction interface {
	Density(p mgl32.Vec3) float32
}

// FieldFunc adapts a plain function to FieldFunction.
type FieldFunc func(p mgl32.Vec3) float32

// Density calls f(p).
func (f FieldFunc) Density(p mgl32.Vec3) float32 {
	return f(p)
}

// SphereField is solid inside a sphere.
func SphereField(center mgl32.Vec3, radius float32) FieldFunction {
	return FieldFunc(func(p mgl32.Vec3) float32 {
		return radius - p.Sub(center).Len()
	})
}

// PlaneField is solid below the given height.
func PlaneField(height float32) FieldFunction {
	return FieldFunc(func(p mgl32.Vec3) float32 {
		return height - p.Y()
	})
}

// PerlinField is rolling terrain: a ground plane at BaseHeight displaced by
// octave Perlin noise, which also carves overhangs and caves.
type PerlinField struct {
	BaseHeight float32
	Amplitude  float32
	Frequency  float32

	noise *perlin.Perlin
}

// NewPerlinField returns a terrain field for the given seed.
func NewPerlinField(seed int64) *PerlinField {
	return &PerlinField{
		BaseHeight: 8,
		Amplitude:  24,
		Frequency:  1.0 / 48.0,
		noise:      perlin.NewPerlin(2, 2, 4, seed),
	}
}

// Density implements FieldFunction.
func (f *PerlinField) Density(p mgl32.Vec3) float32 {
	n := f.noise.Noise3D(
		float64(p.X()*f.Frequency),
		float64(p.Y()*f.Frequency),
		float64(p.Z()*f.Frequency),
	)
	return (f.BaseHeight - p.Y()) + float32(n)*f.Amplitude
}
