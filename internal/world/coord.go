package world

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// ChunkCoord identifies a chunk column on the horizontal chunk grid.
type ChunkCoord struct {
	X, Z int
}

func (c ChunkCoord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Z)
}

// Origin returns the world-space position of the chunk's (0,0,0) voxel.
func (c ChunkCoord) Origin(d Dims) mgl32.Vec3 {
	return mgl32.Vec3{float32(c.X * d.X), 0, float32(c.Z * d.Z)}
}

// Add offsets the coordinate by (dx, dz) chunks.
func (c ChunkCoord) Add(dx, dz int) ChunkCoord {
	return ChunkCoord{X: c.X + dx, Z: c.Z + dz}
}

// ManhattanDistance is the taxicab distance between two chunk coordinates.
func ManhattanDistance(a, b ChunkCoord) int {
	return abs(a.X-b.X) + abs(a.Z-b.Z)
}

// ChunkCoordAt returns the chunk containing the world-space position.
func ChunkCoordAt(pos mgl32.Vec3, d Dims) ChunkCoord {
	return ChunkCoord{
		X: int(math.Floor(float64(pos.X()) / float64(d.X))),
		Z: int(math.Floor(float64(pos.Z()) / float64(d.Z))),
	}
}

// Locate splits a world voxel position into its chunk and chunk-local coordinates.
func Locate(worldX, worldY, worldZ int, d Dims) (ChunkCoord, int, int, int) {
	coord := ChunkCoord{X: floorDiv(worldX, d.X), Z: floorDiv(worldZ, d.Z)}
	return coord, mod(worldX, d.X), worldY, mod(worldZ, d.Z)
}

// floorDiv performs floor division for possibly negative integers.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
