// Package math provides integer grid math for chunked worlds.
package math

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// IVec3 is an integer 3D vector, used as a chunk grid coordinate.
// It is comparable and can key a map.
type IVec3 struct {
	X, Y, Z int
}

// Add returns v + other.
func (v IVec3) Add(other IVec3) IVec3 {
	return IVec3{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

// Sub returns v - other.
func (v IVec3) Sub(other IVec3) IVec3 {
	return IVec3{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

// Scale returns v * s.
func (v IVec3) Scale(s int) IVec3 {
	return IVec3{v.X * s, v.Y * s, v.Z * s}
}

// Abs returns the component-wise absolute value.
func (v IVec3) Abs() IVec3 {
	return IVec3{AbsInt(v.X), AbsInt(v.Y), AbsInt(v.Z)}
}

// Chebyshev returns the largest absolute component.
func (v IVec3) Chebyshev() int {
	return max(AbsInt(v.X), AbsInt(v.Y), AbsInt(v.Z))
}

// Vec3 converts to a float vector.
func (v IVec3) Vec3() mgl32.Vec3 {
	return mgl32.Vec3{float32(v.X), float32(v.Y), float32(v.Z)}
}

// String formats as (x, y, z).
func (v IVec3) String() string {
	return fmt.Sprintf("(%d, %d, %d)", v.X, v.Y, v.Z)
}

// FloorToGrid divides a world position by cellSize and floors each component.
// Negative positions map to negative cells (-0.5 -> -1), unlike truncation.
func FloorToGrid(pos mgl32.Vec3, cellSize float32) IVec3 {
	return IVec3{
		X: int(math32.Floor(pos.X() / cellSize)),
		Y: int(math32.Floor(pos.Y() / cellSize)),
		Z: int(math32.Floor(pos.Z() / cellSize)),
	}
}

// FloorDiv divides a by b rounding toward negative infinity.
func FloorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// AbsInt returns |a|.
func AbsInt(a int) int {
	if a < 0 {
		return -a
	}
	return a
}
