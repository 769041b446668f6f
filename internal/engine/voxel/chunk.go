// Package voxel samples scalar fields into chunks and extracts iso-surfaces from them.
package voxel

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/glr/pkg/math"
)

// Chunk is one grid cell's worth of sampled density.
// Samples form a (BlockSize+1)^3 lattice so that BlockSize^3 cells span the
// whole chunk; neighbouring chunks sample identical boundary planes.
type Chunk struct {
	Coord      math.IVec3
	BlockSize  int     // cells per axis
	Resolution float32 // world units between lattice points
	Samples    []float32
}

// NewChunk allocates an unsampled chunk for the given grid coordinate.
func NewChunk(coord math.IVec3, blockSize int, resolution float32) *Chunk {
	n := blockSize + 1
	return &Chunk{
		Coord:      coord,
		BlockSize:  blockSize,
		Resolution: resolution,
		Samples:    make([]float32, n*n*n),
	}
}

// Points returns the number of lattice points per axis.
func (c *Chunk) Points() int {
	return c.BlockSize + 1
}

// Index returns the sample index of lattice point (x, y, z).
func (c *Chunk) Index(x, y, z int) int {
	n := c.Points()
	return (z*n+y)*n + x
}

// At returns the sample at lattice point (x, y, z).
func (c *Chunk) At(x, y, z int) float32 {
	return c.Samples[c.Index(x, y, z)]
}

// Origin returns the world position of lattice point (0, 0, 0).
func (c *Chunk) Origin() mgl32.Vec3 {
	extent := float32(c.BlockSize) * c.Resolution
	return c.Coord.Vec3().Mul(extent)
}

// WorldPosition returns the world position of lattice point (x, y, z).
func (c *Chunk) WorldPosition(x, y, z int) mgl32.Vec3 {
	return c.Origin().Add(mgl32.Vec3{float32(x), float32(y), float32(z)}.Mul(c.Resolution))
}

// GenerateNoise samples f at every lattice point of c.
// The result depends only on f and the chunk's coordinate and lattice settings.
func GenerateNoise(c *Chunk, f FieldFunction) {
	n := c.Points()
	origin := c.Origin()
	i := 0
	for z := range n {
		for y := range n {
			for x := range n {
				p := mgl32.Vec3{
					origin.X() + float32(x)*c.Resolution,
					origin.Y() + float32(y)*c.Resolution,
					origin.Z() + float32(z)*c.Resolution,
				}
				c.Samples[i] = f.Density(p)
				i++
			}
		}
	}
}

// DetermineIfEmptyOrSolid reports whether every sample lies on the same side of
// isoLevel, in which case the chunk has no surface to extract.
func DetermineIfEmptyOrSolid(c *Chunk, isoLevel float32) bool {
	if len(c.Samples) == 0 {
		return true
	}
	solid := c.Samples[0] > isoLevel
	for _, s := range c.Samples[1:] {
		if (s > isoLevel) != solid {
			return false
		}
	}
	return true
}
