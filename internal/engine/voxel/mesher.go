package voxel

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Algorithm selects the iso-surface extraction method.
type Algorithm int

const (
	MarchingCubes Algorithm = iota
	DualContouring
)

// String returns the config name of the algorithm.
func (a Algorithm) String() string {
	switch a {
	case MarchingCubes:
		return "marching_cubes"
	case DualContouring:
		return "dual_contouring"
	default:
		return fmt.Sprintf("Algorithm(%d)", int(a))
	}
}

// ParseAlgorithm maps a config name to an Algorithm.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch name {
	case "marching_cubes":
		return MarchingCubes, nil
	case "dual_contouring":
		return DualContouring, nil
	default:
		return 0, fmt.Errorf("unknown smoothing algorithm %q", name)
	}
}

// MeshData is non-indexed triangle geometry: every three consecutive entries
// form one triangle. All three slices always have the same length.
type MeshData struct {
	Vertices     []mgl32.Vec3
	Normals      []mgl32.Vec3
	BlendWeights []mgl32.Vec4
}

// Triangles returns the triangle count.
func (m *MeshData) Triangles() int {
	return len(m.Vertices) / 3
}

// Empty reports whether the mesh has no geometry.
func (m *MeshData) Empty() bool {
	return len(m.Vertices) == 0
}

func (m *MeshData) append(p, n mgl32.Vec3) {
	m.Vertices = append(m.Vertices, p)
	m.Normals = append(m.Normals, n)
	m.BlendWeights = append(m.BlendWeights, blendWeights(n))
}

// MeshGenerator turns sampled chunks into triangle meshes.
// The algorithm is fixed for the generator's lifetime. A generator holds no
// per-chunk state and may be shared between goroutines.
type MeshGenerator struct {
	field     FieldFunction
	algorithm Algorithm
	isoLevel  float32
}

// NewMeshGenerator returns a generator for the given algorithm.
// It panics on an unknown algorithm, which is a programming error.
func NewMeshGenerator(field FieldFunction, algorithm Algorithm, isoLevel float32) *MeshGenerator {
	switch algorithm {
	case MarchingCubes, DualContouring:
	default:
		panic(fmt.Sprintf("voxel: unknown mesh algorithm %v", algorithm))
	}
	return &MeshGenerator{field: field, algorithm: algorithm, isoLevel: isoLevel}
}

// Algorithm returns the configured extraction algorithm.
func (g *MeshGenerator) Algorithm() Algorithm {
	return g.algorithm
}

// GenerateMesh extracts the iso-surface of a sampled chunk.
func (g *MeshGenerator) GenerateMesh(c *Chunk) *MeshData {
	out := &MeshData{}
	g.AppendMesh(c, out)
	return out
}

// AppendMesh appends the chunk's triangles to out in generation order.
// No vertices are shared or deduplicated, including across chunk seams.
func (g *MeshGenerator) AppendMesh(c *Chunk, out *MeshData) {
	switch g.algorithm {
	case MarchingCubes:
		g.marchingCubes(c, out)
	case DualContouring:
		g.dualContour(c, out)
	}
}

// normal estimates the surface normal at p from the field gradient.
// Density falls off toward empty space, so the normal is the negated gradient.
func (g *MeshGenerator) normal(p mgl32.Vec3, h float32) mgl32.Vec3 {
	dx := g.field.Density(p.Add(mgl32.Vec3{h, 0, 0})) - g.field.Density(p.Sub(mgl32.Vec3{h, 0, 0}))
	dy := g.field.Density(p.Add(mgl32.Vec3{0, h, 0})) - g.field.Density(p.Sub(mgl32.Vec3{0, h, 0}))
	dz := g.field.Density(p.Add(mgl32.Vec3{0, 0, h})) - g.field.Density(p.Sub(mgl32.Vec3{0, 0, h}))
	n := mgl32.Vec3{-dx, -dy, -dz}
	if n.Len() < 1e-12 {
		return mgl32.Vec3{0, 1, 0}
	}
	return n.Normalize()
}

// blendWeights picks texture layer weights (grass, stone, unused, unused) from slope.
// Flat, upward-facing ground is grass; steep faces and overhangs are stone.
func blendWeights(n mgl32.Vec3) mgl32.Vec4 {
	grass := smoothstep(0.55, 0.8, n.Y())
	return mgl32.Vec4{grass, 1 - grass, 0, 0}
}

func smoothstep(edge0, edge1, x float32) float32 {
	t := math32.Min(math32.Max((x-edge0)/(edge1-edge0), 0), 1)
	return t * t * (3 - 2*t)
}
