// Package picking casts rays against chunk bounds and the terrain field.
package picking

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/glr/internal/engine/voxel"
)

// Ray is a half-line with a unit direction.
type Ray struct {
	Origin    mgl32.Vec3
	Direction mgl32.Vec3
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float32) mgl32.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// AABB is an axis-aligned box.
type AABB struct {
	Min, Max mgl32.Vec3
}

// NewAABB orders the corners so Min <= Max on every axis.
func NewAABB(a, b mgl32.Vec3) AABB {
	return AABB{
		Min: mgl32.Vec3{min(a.X(), b.X()), min(a.Y(), b.Y()), min(a.Z(), b.Z())},
		Max: mgl32.Vec3{max(a.X(), b.X()), max(a.Y(), b.Y()), max(a.Z(), b.Z())},
	}
}

// ScreenToRay unprojects a pixel into a world-space ray. invViewProj is the
// inverse of projection * view.
func ScreenToRay(screenX, screenY, viewportW, viewportH float32, invViewProj mgl32.Mat4) Ray {
	ndcX := 2*screenX/viewportW - 1
	ndcY := 1 - 2*screenY/viewportH

	near := unproject(invViewProj, mgl32.Vec4{ndcX, ndcY, -1, 1})
	far := unproject(invViewProj, mgl32.Vec4{ndcX, ndcY, 1, 1})
	dir := far.Sub(near)
	if dir.Len() > 0 {
		dir = dir.Normalize()
	}
	return Ray{Origin: near, Direction: dir}
}

func unproject(m mgl32.Mat4, ndc mgl32.Vec4) mgl32.Vec3 {
	w := m.Mul4x1(ndc)
	if w.W() != 0 {
		return w.Vec3().Mul(1 / w.W())
	}
	return w.Vec3()
}

// IntersectAABB returns the distance to the first hit with box. A ray that
// starts inside reports the exit distance.
func (r Ray) IntersectAABB(box AABB) (float32, bool) {
	tmin := float32(-math32.MaxFloat32)
	tmax := float32(math32.MaxFloat32)

	for axis := range 3 {
		o, d := r.Origin[axis], r.Direction[axis]
		if d == 0 {
			if o < box.Min[axis] || o > box.Max[axis] {
				return 0, false
			}
			continue
		}
		t1 := (box.Min[axis] - o) / d
		t2 := (box.Max[axis] - o) / d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = max(tmin, t1)
		tmax = min(tmax, t2)
	}

	if tmax < tmin || tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		return tmax, true
	}
	return tmin, true
}

// refineSteps is the number of bisections after the march brackets a crossing.
const refineSteps = 12

// MarchField walks the ray in fixed steps until the field crosses isoLevel
// from empty to solid, then bisects the last step. It returns the surface
// point and false when nothing is hit within maxDistance.
func MarchField(r Ray, field voxel.FieldFunction, isoLevel, step, maxDistance float32) (mgl32.Vec3, bool) {
	if step <= 0 {
		return mgl32.Vec3{}, false
	}
	prevT := float32(0)
	if field.Density(r.Origin) > isoLevel {
		return r.Origin, true
	}
	for t := step; t <= maxDistance; t += step {
		if field.Density(r.At(t)) <= isoLevel {
			prevT = t
			continue
		}
		lo, hi := prevT, t
		for range refineSteps {
			mid := (lo + hi) / 2
			if field.Density(r.At(mid)) > isoLevel {
				hi = mid
			} else {
				lo = mid
			}
		}
		return r.At(hi), true
	}
	return mgl32.Vec3{}, false
}
