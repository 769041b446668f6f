package voxel

import (
	"github.com/go-gl/mathgl/mgl32"
)

// dualCell is the single surface vertex placed inside a sign-changing cell.
type dualCell struct {
	pos    mgl32.Vec3
	normal mgl32.Vec3
	ok     bool
}

// dualContour places one vertex per sign-changing cell at the mass point of its
// edge crossings, then emits a quad for every sign-changing lattice edge whose
// four surrounding cells all lie inside the chunk.
func (g *MeshGenerator) dualContour(c *Chunk, out *MeshData) {
	b := c.BlockSize
	cells := make([]dualCell, b*b*b)
	cellAt := func(x, y, z int) *dualCell {
		return &cells[(z*b+y)*b+x]
	}
	h := c.Resolution * 0.5

	var (
		values  [8]float32
		corners [8]mgl32.Vec3
	)
	for z := range b {
		for y := range b {
			for x := range b {
				mask := 0
				for i, off := range cornerOffsets {
					v := c.At(x+off[0], y+off[1], z+off[2])
					values[i] = v
					if v <= g.isoLevel {
						mask |= 1 << i
					}
				}
				edges := edgeTable[mask]
				if edges == 0 {
					continue
				}
				for i, off := range cornerOffsets {
					corners[i] = c.WorldPosition(x+off[0], y+off[1], z+off[2])
				}

				var sum mgl32.Vec3
				count := 0
				for e, pair := range edgeCorners {
					if edges&(1<<e) == 0 {
						continue
					}
					sum = sum.Add(g.edgeVertex(pair[0], pair[1], &corners, &values))
					count++
				}
				p := sum.Mul(1 / float32(count))
				*cellAt(x, y, z) = dualCell{pos: p, normal: g.normal(p, h), ok: true}
			}
		}
	}

	solid := func(x, y, z int) bool {
		return c.At(x, y, z) > g.isoLevel
	}
	quad := func(q [4]*dualCell, flip bool) {
		for _, d := range q {
			if !d.ok {
				return
			}
		}
		if flip {
			q[1], q[3] = q[3], q[1]
		}
		for _, i := range [6]int{0, 1, 2, 2, 3, 0} {
			out.append(q[i].pos, q[i].normal)
		}
	}

	// Quads face +axis when density falls along the edge (solid behind, empty ahead).
	for z := 1; z < b; z++ {
		for y := 1; y < b; y++ {
			for x := range b {
				if s := solid(x, y, z); s != solid(x+1, y, z) {
					quad([4]*dualCell{
						cellAt(x, y-1, z-1), cellAt(x, y, z-1), cellAt(x, y, z), cellAt(x, y-1, z),
					}, !s)
				}
			}
		}
	}
	for z := 1; z < b; z++ {
		for y := range b {
			for x := 1; x < b; x++ {
				if s := solid(x, y, z); s != solid(x, y+1, z) {
					quad([4]*dualCell{
						cellAt(x-1, y, z-1), cellAt(x-1, y, z), cellAt(x, y, z), cellAt(x, y, z-1),
					}, !s)
				}
			}
		}
	}
	for z := range b {
		for y := 1; y < b; y++ {
			for x := 1; x < b; x++ {
				if s := solid(x, y, z); s != solid(x, y, z+1) {
					quad([4]*dualCell{
						cellAt(x-1, y-1, z), cellAt(x, y-1, z), cellAt(x, y, z), cellAt(x-1, y, z),
					}, !s)
				}
			}
		}
	}
}
