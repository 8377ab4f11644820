package meshing

import (
	"image/color"
	"math/rand"
	"testing"

	"mini-terrain/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

// unitFace is one voxel-sized face: the plane it lies on, the cell it
// covers in that plane, the sign of its outward normal and its color.
type unitFace struct {
	axis  int
	plane int
	u, v  int
	sign  int
	color color.RGBA
}

// naiveFaces emits one face per visible voxel side.
func naiveFaces(c *world.Chunk) map[unitFace]int {
	faces := make(map[unitFace]int)
	d := c.Dims()
	for i := 0; i < d.Volume(); i++ {
		x, y, z := d.Unflatten(i)
		v := c.At(x, y, z)
		if !v.IsSolid() {
			continue
		}
		p := [3]int{x, y, z}
		for axis := range 3 {
			for _, sign := range []int{-1, 1} {
				q := p
				q[axis] += sign
				if c.AtPos(q).IsSolid() {
					continue
				}
				plane := p[axis]
				if sign > 0 {
					plane++
				}
				f := unitFace{
					axis:  axis,
					plane: plane,
					u:     p[(axis+1)%3],
					v:     p[(axis+2)%3],
					sign:  sign,
					color: v.Material.Color(),
				}
				faces[f]++
			}
		}
	}
	return faces
}

// outwardNormal returns the outward normal of a clockwise triangle.
func outwardNormal(a, b, c mgl32.Vec3) mgl32.Vec3 {
	return b.Sub(a).Cross(c.Sub(a)).Mul(-1)
}

// greedyFaces splits every quad of m back into unit faces, using the
// winding of its first triangle to find the outward side.
func greedyFaces(t *testing.T, m *Mesh) map[unitFace]int {
	t.Helper()
	faces := make(map[unitFace]int)
	for q := 0; q < m.QuadCount(); q++ {
		tri := m.Triangles[q*6 : q*6+3]
		n := outwardNormal(m.Vertices[tri[0]], m.Vertices[tri[1]], m.Vertices[tri[2]])

		axis, sign := -1, 0
		for i := range 3 {
			if n[i] > 0 {
				axis, sign = i, 1
			} else if n[i] < 0 {
				axis, sign = i, -1
			}
		}
		if axis < 0 {
			t.Fatalf("quad %d is degenerate", q)
		}
		if !n.Normalize().ApproxEqual(m.Normals[q*4]) {
			t.Fatalf("quad %d normal %v disagrees with winding %v", q, m.Normals[q*4], n)
		}

		corners := m.Vertices[q*4 : q*4+4]
		lo, hi := corners[0], corners[0]
		for _, c := range corners[1:] {
			for i := range 3 {
				lo[i] = min(lo[i], c[i])
				hi[i] = max(hi[i], c[i])
			}
		}
		a1, a2 := (axis+1)%3, (axis+2)%3
		for u := int(lo[a1]); u < int(hi[a1]); u++ {
			for v := int(lo[a2]); v < int(hi[a2]); v++ {
				f := unitFace{axis: axis, plane: int(lo[axis]), u: u, v: v, sign: sign, color: m.Colors[q*4]}
				faces[f]++
			}
		}
	}
	return faces
}

func assertLossless(t *testing.T, c *world.Chunk) *Mesh {
	t.Helper()
	m := BuildGreedyMesh(c)
	naive := naiveFaces(c)
	greedy := greedyFaces(t, m)

	for f, n := range greedy {
		if n != 1 {
			t.Fatalf("face %+v covered %d times", f, n)
		}
		if naive[f] == 0 {
			t.Fatalf("greedy face %+v has no visible voxel behind it", f)
		}
	}
	if len(greedy) != len(naive) {
		t.Fatalf("greedy covers %d faces, naive %d", len(greedy), len(naive))
	}
	if got, limit := m.TriangleCount(), 2*len(naive); got > limit {
		t.Fatalf("greedy emitted %d triangles, naive %d", got, limit)
	}
	return m
}

func checkMeshShape(t *testing.T, m *Mesh) {
	t.Helper()
	if len(m.Triangles)%3 != 0 {
		t.Fatalf("triangle index count %d not divisible by 3", len(m.Triangles))
	}
	if len(m.Colors) != len(m.Vertices) || len(m.Normals) != len(m.Vertices) {
		t.Fatalf("colors %d, normals %d, vertices %d", len(m.Colors), len(m.Normals), len(m.Vertices))
	}
	for _, idx := range m.Triangles {
		if int(idx) >= len(m.Vertices) {
			t.Fatalf("triangle index %d out of range", idx)
		}
	}
}

func TestSingleVoxelMesh(t *testing.T) {
	c := world.NewChunk(world.ChunkCoord{}, world.Dims{X: 4, Y: 4, Z: 4})
	c.Set(1, 1, 1, world.Stone)

	m := assertLossless(t, c)
	checkMeshShape(t, m)
	if m.QuadCount() != 6 || m.TriangleCount() != 12 {
		t.Fatalf("single voxel: got %d quads, %d triangles", m.QuadCount(), m.TriangleCount())
	}
	for _, col := range m.Colors {
		if col != world.MaterialStone.Color() {
			t.Fatalf("vertex color %v, want stone", col)
		}
	}
}

func TestTwoVoxelsSeparated(t *testing.T) {
	c := world.NewChunk(world.ChunkCoord{}, world.Dims{X: 4, Y: 4, Z: 4})
	c.Set(0, 0, 0, world.Grass)
	c.Set(2, 0, 0, world.Grass)

	m := assertLossless(t, c)
	if m.TriangleCount() != 24 {
		t.Fatalf("two separated voxels: got %d triangles, want 24", m.TriangleCount())
	}
}

func TestTwoVoxelsTouchingMerge(t *testing.T) {
	c := world.NewChunk(world.ChunkCoord{}, world.Dims{X: 4, Y: 4, Z: 4})
	c.Set(0, 0, 0, world.Grass)
	c.Set(1, 0, 0, world.Grass)

	m := assertLossless(t, c)
	// Union is a 2x1x1 cuboid => 12 triangles
	if m.TriangleCount() != 12 {
		t.Fatalf("two touching voxels: got %d triangles, want 12", m.TriangleCount())
	}
}

func TestDifferentMaterialsDoNotMerge(t *testing.T) {
	c := world.NewChunk(world.ChunkCoord{}, world.Dims{X: 4, Y: 4, Z: 4})
	c.Set(0, 0, 0, world.Grass)
	c.Set(1, 0, 0, world.Dirt)

	m := assertLossless(t, c)
	// 10 visible unit faces, none mergeable across materials.
	if m.QuadCount() != 10 {
		t.Fatalf("got %d quads, want 10", m.QuadCount())
	}
}

func TestFlatSlabMesh(t *testing.T) {
	d := world.Dims{X: 16, Y: 24, Z: 16}
	g := world.NewGenerator(world.NewFlatTerrain(10), d)
	c := g.Generate(world.ChunkCoord{})

	m := assertLossless(t, c)
	checkMeshShape(t, m)
	if m.QuadCount() != 6 || m.TriangleCount() != 12 || len(m.Vertices) != 24 {
		t.Fatalf("slab: got %d quads, %d triangles, %d vertices; want 6, 12, 24",
			m.QuadCount(), m.TriangleCount(), len(m.Vertices))
	}

	var top, bottom bool
	for q := 0; q < m.QuadCount(); q++ {
		if m.Normals[q*4] == (mgl32.Vec3{0, 1, 0}) && m.Vertices[q*4].Y() == 10 {
			top = true
		}
		if m.Normals[q*4] == (mgl32.Vec3{0, -1, 0}) && m.Vertices[q*4].Y() == 0 {
			bottom = true
		}
	}
	if !top || !bottom {
		t.Errorf("slab top=%v bottom=%v, want both", top, bottom)
	}
}

func TestEmptyChunkMesh(t *testing.T) {
	c := world.NewChunk(world.ChunkCoord{}, world.Dims{X: 3, Y: 3, Z: 3})
	c.Set(1, 1, 1, world.Voxel{Material: world.MaterialCloud, Opacity: 128})
	if m := BuildGreedyMesh(c); !m.Empty() {
		t.Fatalf("non-solid chunk produced %d quads", m.QuadCount())
	}
}

func TestRandomChunksLossless(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	materials := []world.Voxel{
		world.Air, world.Grass, world.Dirt, world.Stone,
		{Material: world.MaterialCloud, Opacity: 100},
	}
	d := world.Dims{X: 9, Y: 7, Z: 11}
	for iter := 0; iter < 20; iter++ {
		c := world.NewChunk(world.ChunkCoord{}, d)
		for i := 0; i < d.Volume(); i++ {
			x, y, z := d.Unflatten(i)
			// Bias toward runs of grass so merges happen.
			if r.Intn(3) == 0 {
				c.Set(x, y, z, materials[r.Intn(len(materials))])
			} else if y < 4 {
				c.Set(x, y, z, world.Grass)
			}
		}
		checkMeshShape(t, assertLossless(t, c))
	}
}

func TestGeneratedChunkLossless(t *testing.T) {
	d := world.Dims{X: 16, Y: 40, Z: 16}
	g := world.NewGenerator(world.NewNoiseField(world.DefaultNoiseParams(1337, 99), d), d)
	for _, coord := range []world.ChunkCoord{{X: 0, Z: 0}, {X: 3, Z: -2}} {
		c := g.Generate(coord)
		m := assertLossless(t, c)
		naive := naiveFaces(c)
		if len(naive) > 0 && m.TriangleCount() >= 2*len(naive) {
			t.Errorf("chunk %v: no reduction (%d triangles vs %d naive)", coord, m.TriangleCount(), 2*len(naive))
		}
	}
}

func TestAddQuadPanicsOnWrongCornerCount(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for a 3-corner quad")
		}
	}()
	NewMesh().AddQuad(make([]mgl32.Vec3, 3), color.RGBA{}, false)
}

func TestAddQuadWinding(t *testing.T) {
	m := NewMesh()
	corners := []mgl32.Vec3{{0, 1, 0}, {0, 1, 1}, {1, 1, 1}, {1, 1, 0}}
	m.AddQuad(corners, color.RGBA{}, false)
	m.AddQuad(corners, color.RGBA{}, true)

	want := []uint32{2, 1, 0, 3, 2, 0, 4, 5, 6, 4, 6, 7}
	for i := range want {
		if m.Triangles[i] != want[i] {
			t.Fatalf("triangles = %v, want %v", m.Triangles, want)
		}
	}
}

func TestInterleave(t *testing.T) {
	c := world.NewChunk(world.ChunkCoord{}, world.Dims{X: 2, Y: 2, Z: 2})
	c.Set(0, 0, 0, world.Grass)
	m := BuildGreedyMesh(c)
	buf := m.Interleave()
	if len(buf) != len(m.Vertices)*VertexStride {
		t.Fatalf("interleaved length %d, want %d", len(buf), len(m.Vertices)*VertexStride)
	}
	if a := buf[VertexStride-1]; a != 1 {
		t.Errorf("alpha = %f, want 1", a)
	}
}

func TestJobReportsSource(t *testing.T) {
	c := world.NewChunk(world.ChunkCoord{X: 2, Z: 3}, world.Dims{X: 2, Y: 2, Z: 2})
	res := Job(c)()
	if res.Source != c {
		t.Fatal("result does not reference the meshed chunk")
	}
	if !res.Mesh.Empty() {
		t.Fatal("empty chunk produced geometry")
	}
}
