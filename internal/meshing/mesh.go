package meshing

import (
	"fmt"
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
)

// VertexStride is number of float32 per interleaved vertex (pos.xyz + normal.xyz + color.rgba)
const VertexStride = 10

// Mesh is the surface geometry of one chunk in chunk-local coordinates.
// Vertices are not shared between quads.
type Mesh struct {
	Vertices  []mgl32.Vec3
	Normals   []mgl32.Vec3
	Colors    []color.RGBA
	Triangles []uint32
}

// NewMesh returns an empty mesh with room for a few quads.
func NewMesh() *Mesh {
	return &Mesh{
		Vertices:  make([]mgl32.Vec3, 0, 64),
		Normals:   make([]mgl32.Vec3, 0, 64),
		Colors:    make([]color.RGBA, 0, 64),
		Triangles: make([]uint32, 0, 96),
	}
}

// AddQuad appends one quad of exactly four corners sharing color c.
// Corners are o, o+m, o+m+n, o+n. Back faces wind (0,1,2)(0,2,3), front
// faces reverse both triangles, so every face is clockwise seen from outside.
func (m *Mesh) AddQuad(corners []mgl32.Vec3, c color.RGBA, backFace bool) {
	if len(corners) != 4 {
		panic(fmt.Sprintf("meshing: quad needs 4 corners, got %d", len(corners)))
	}

	normal := corners[1].Sub(corners[0]).Cross(corners[2].Sub(corners[0])).Normalize()
	if backFace {
		normal = normal.Mul(-1)
	}
	for _, v := range corners {
		m.Vertices = append(m.Vertices, v)
		m.Normals = append(m.Normals, normal)
		m.Colors = append(m.Colors, c)
	}

	l := uint32(len(m.Vertices))
	if backFace {
		m.Triangles = append(m.Triangles, l-4, l-3, l-2, l-4, l-2, l-1)
	} else {
		m.Triangles = append(m.Triangles, l-2, l-3, l-4, l-1, l-2, l-4)
	}
}

// QuadCount returns the number of quads emitted so far.
func (m *Mesh) QuadCount() int { return len(m.Vertices) / 4 }

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int { return len(m.Triangles) / 3 }

// Empty reports whether the mesh has no geometry.
func (m *Mesh) Empty() bool { return len(m.Triangles) == 0 }

// Interleave packs vertices for upload as VertexStride floats each.
func (m *Mesh) Interleave() []float32 {
	out := make([]float32, 0, len(m.Vertices)*VertexStride)
	for i, v := range m.Vertices {
		n := m.Normals[i]
		c := m.Colors[i]
		out = append(out,
			v.X(), v.Y(), v.Z(),
			n.X(), n.Y(), n.Z(),
			float32(c.R)/255, float32(c.G)/255, float32(c.B)/255, float32(c.A)/255,
		)
	}
	return out
}
