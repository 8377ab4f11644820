// Package physics answers spatial queries against streamed voxels.
package physics

import (
	"math"

	"mini-terrain/internal/profiling"
	"mini-terrain/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	MinReachDistance = 0.1
	MaxReachDistance = 8.0
)

// VoxelSource looks up voxels by world coordinate. The bool is false when
// the owning chunk is not resident.
type VoxelSource interface {
	VoxelAt(worldX, worldY, worldZ int) (world.Voxel, bool)
}

// RaycastResult stores the result of a raycast operation
type RaycastResult struct {
	HitPosition      [3]int
	AdjacentPosition [3]int
	Distance         float32
	Hit              bool
}

// Raycast marches from start along direction and returns the first solid
// voxel between minDist and maxDist. Voxel (x, y, z) fills the unit cube
// with its minimum corner at (x, y, z).
func Raycast(start, direction mgl32.Vec3, minDist, maxDist float32, src VoxelSource) RaycastResult {
	defer profiling.Track("physics.Raycast")()
	stepSize := float32(0.02)
	steps := int(maxDist / stepSize)
	direction = direction.Normalize()

	lastEmpty := voxelAt(start)
	for i := 0; i <= steps; i++ {
		dist := float32(i) * stepSize
		if dist < minDist {
			continue
		}
		p := voxelAt(start.Add(direction.Mul(dist)))
		if v, ok := src.VoxelAt(p[0], p[1], p[2]); ok && v.IsSolid() {
			return RaycastResult{
				HitPosition:      p,
				AdjacentPosition: lastEmpty,
				Distance:         dist,
				Hit:              true,
			}
		}
		lastEmpty = p
	}
	return RaycastResult{}
}

func voxelAt(p mgl32.Vec3) [3]int {
	return [3]int{
		int(math.Floor(float64(p.X()))),
		int(math.Floor(float64(p.Y()))),
		int(math.Floor(float64(p.Z()))),
	}
}

// FindGroundLevel returns the height just above the highest solid voxel
// of the column containing (x, z), scanning down from top. It returns 0
// if the column has no solid voxel or is not resident.
func FindGroundLevel(x, z float32, top int, src VoxelSource) float32 {
	bx := int(math.Floor(float64(x)))
	bz := int(math.Floor(float64(z)))
	for y := top - 1; y >= 0; y-- {
		v, ok := src.VoxelAt(bx, y, bz)
		if !ok {
			return 0
		}
		if v.IsSolid() {
			return float32(y + 1)
		}
	}
	return 0
}
