package voxel

import (
	"github.com/go-gl/mathgl/mgl32"
)

func (g *MeshGenerator) marchingCubes(c *Chunk, out *MeshData) {
	var (
		values  [8]float32
		corners [8]mgl32.Vec3
		verts   [12]mgl32.Vec3
	)
	h := c.Resolution * 0.5

	for z := range c.BlockSize {
		for y := range c.BlockSize {
			for x := range c.BlockSize {
				cubeIndex := 0
				for i, off := range cornerOffsets {
					v := c.At(x+off[0], y+off[1], z+off[2])
					values[i] = v
					if v <= g.isoLevel {
						cubeIndex |= 1 << i
					}
				}
				edges := edgeTable[cubeIndex]
				if edges == 0 {
					continue
				}

				for i, off := range cornerOffsets {
					corners[i] = c.WorldPosition(x+off[0], y+off[1], z+off[2])
				}
				for e, pair := range edgeCorners {
					if edges&(1<<e) == 0 {
						continue
					}
					verts[e] = g.edgeVertex(pair[0], pair[1], &corners, &values)
				}

				// The table winds clockwise seen from empty space; emit
				// reversed so front faces point out of the solid.
				tris := &triTable[cubeIndex]
				for i := 0; tris[i] != -1; i += 3 {
					for _, e := range [3]int8{tris[i], tris[i+2], tris[i+1]} {
						p := verts[e]
						out.append(p, g.normal(p, h))
					}
				}
			}
		}
	}
}

// edgeVertex interpolates the iso crossing between two corners. Endpoints are
// ordered by lattice position so that both cells sharing an edge compute the
// exact same vertex.
func (g *MeshGenerator) edgeVertex(a, b int, corners *[8]mgl32.Vec3, values *[8]float32) mgl32.Vec3 {
	if cornerLess(b, a) {
		a, b = b, a
	}
	va, vb := values[a], values[b]
	if va == vb {
		return corners[a].Add(corners[b]).Mul(0.5)
	}
	t := (g.isoLevel - va) / (vb - va)
	return corners[a].Add(corners[b].Sub(corners[a]).Mul(t))
}

func cornerLess(a, b int) bool {
	oa, ob := cornerOffsets[a], cornerOffsets[b]
	for axis := 2; axis >= 0; axis-- {
		if oa[axis] != ob[axis] {
			return oa[axis] < ob[axis]
		}
	}
	return false
}
