package meshing

import (
	"mini-terrain/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

// Result is the output of a meshing job. Source is the chunk that was
// meshed, so a caller can tell whether the chunk was replaced meanwhile.
type Result struct {
	Mesh   *Mesh
	Source *world.Chunk
}

// Job returns the unit of work that meshes c. The chunk must not be
// mutated while the job runs.
func Job(c *world.Chunk) func() Result {
	return func() Result {
		return Result{Mesh: BuildGreedyMesh(c), Source: c}
	}
}

// BuildGreedyMesh converts the solid voxels of c into quads, merging
// rectangles of equal voxels whose faces are visible in the same direction.
//
// Faces 0-2 face +x, +y, +z and faces 3-5 mirror them. For each face the
// chunk is walked one layer at a time along the face normal; within a
// layer cells are scanned with axis1 outer and axis2 inner. A quad grows
// along axis2 to get its width, then along axis1 one full-width row at a
// time.
func BuildGreedyMesh(c *world.Chunk) *Mesh {
	mesh := NewMesh()
	d := c.Dims()
	size := [3]int{d.X, d.Y, d.Z}

	for face := range 6 {
		backFace := face > 2
		dir := face % 3
		axis1 := (dir + 1) % 3
		axis2 := (dir + 2) % 3
		step := 1
		if backFace {
			step = -1
		}

		s := scan{chunk: c, dir: dir, step: step, merged: make([]bool, size[axis1]*size[axis2]), stride: size[axis2]}
		for layer := 0; layer < size[dir]; layer++ {
			clear(s.merged)
			var p [3]int
			p[dir] = layer

			for i1 := 0; i1 < size[axis1]; i1++ {
				for i2 := 0; i2 < size[axis2]; i2++ {
					if s.merged[i1*s.stride+i2] {
						continue
					}
					p[axis1], p[axis2] = i1, i2
					start := c.AtPos(p)
					if !start.IsSolid() || !s.visible(p) {
						continue
					}

					// Every candidate must equal the solid start voxel, so
					// a merged cell is always solid.
					cell := p
					width := 1
					for i2+width < size[axis2] {
						cell[axis2] = i2 + width
						if !s.mergeable(cell, i1, i2+width, start) {
							break
						}
						width++
					}

					height := 1
					for i1+height < size[axis1] {
						cell[axis1] = i1 + height
						run := 0
						for run < width {
							cell[axis2] = i2 + run
							if !s.mergeable(cell, i1+height, i2+run, start) {
								break
							}
							run++
						}
						if run < width {
							break
						}
						height++
					}

					for h := range height {
						for w := range width {
							s.merged[(i1+h)*s.stride+i2+w] = true
						}
					}

					origin := mgl32.Vec3{float32(p[0]), float32(p[1]), float32(p[2])}
					if !backFace {
						origin[dir]++
					}
					var du, dv mgl32.Vec3
					du[axis1] = float32(height)
					dv[axis2] = float32(width)

					mesh.AddQuad([]mgl32.Vec3{
						origin,
						origin.Add(du),
						origin.Add(du).Add(dv),
						origin.Add(dv),
					}, start.Material.Color(), backFace)
				}
			}
		}
	}
	return mesh
}

// scan holds the per-face state of one greedy pass.
type scan struct {
	chunk  *world.Chunk
	dir    int
	step   int
	merged []bool
	stride int
}

// visible reports whether the face of p toward dir is uncovered.
// Out-of-bounds neighbors are air.
func (s *scan) visible(p [3]int) bool {
	p[s.dir] += s.step
	return !s.chunk.AtPos(p).IsSolid()
}

func (s *scan) mergeable(p [3]int, i1, i2 int, start world.Voxel) bool {
	if s.merged[i1*s.stride+i2] {
		return false
	}
	return s.chunk.AtPos(p) == start && s.visible(p)
}
