// Package lighting holds light helpers for the terrain shader.
package lighting

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// SunDirection converts a sun position in degrees to the unit vector pointing
// towards the sun. Longitude rotates around +Y starting at +Z; latitude is the
// elevation above the horizon.
func SunDirection(longitude, latitude float32) mgl32.Vec3 {
	lon := mgl32.DegToRad(longitude)
	lat := mgl32.DegToRad(latitude)
	return mgl32.Vec3{
		math32.Cos(lat) * math32.Sin(lon),
		math32.Sin(lat),
		math32.Cos(lat) * math32.Cos(lon),
	}
}

// LightDirection is the direction sunlight travels, as the terrain shader's
// lightDir uniform expects.
func LightDirection(longitude, latitude float32) mgl32.Vec3 {
	return SunDirection(longitude, latitude).Mul(-1)
}
