package physics

import (
	"testing"

	"mini-terrain/internal/world"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

// voxelMap is a sparse world; everything inside bounds but absent is air.
type voxelMap struct {
	solid  map[[3]int]bool
	bounds int
}

func (m voxelMap) VoxelAt(x, y, z int) (world.Voxel, bool) {
	if x < -m.bounds || x >= m.bounds || z < -m.bounds || z >= m.bounds {
		return world.Air, false
	}
	if m.solid[[3]int{x, y, z}] {
		return world.Stone, true
	}
	return world.Air, true
}

func floor(height, size int) voxelMap {
	m := voxelMap{solid: map[[3]int]bool{}, bounds: size}
	for x := -size; x < size; x++ {
		for z := -size; z < size; z++ {
			for y := 0; y < height; y++ {
				m.solid[[3]int{x, y, z}] = true
			}
		}
	}
	return m
}

func TestRaycastDown(t *testing.T) {
	w := floor(10, 4)
	res := Raycast(mgl32.Vec3{0.5, 15.5, 0.5}, mgl32.Vec3{0, -1, 0}, MinReachDistance, MaxReachDistance, w)

	assert.True(t, res.Hit)
	assert.Equal(t, [3]int{0, 9, 0}, res.HitPosition)
	assert.Equal(t, [3]int{0, 10, 0}, res.AdjacentPosition)
	assert.InDelta(t, 5.5, res.Distance, 0.03)
}

func TestRaycastMisses(t *testing.T) {
	w := floor(10, 4)
	// Straight up never hits.
	res := Raycast(mgl32.Vec3{0.5, 15.5, 0.5}, mgl32.Vec3{0, 1, 0}, MinReachDistance, MaxReachDistance, w)
	assert.False(t, res.Hit)
	// Too far away.
	res = Raycast(mgl32.Vec3{0.5, 30, 0.5}, mgl32.Vec3{0, -1, 0}, MinReachDistance, MaxReachDistance, w)
	assert.False(t, res.Hit)
}

func TestRaycastNegativeCoordinates(t *testing.T) {
	w := voxelMap{solid: map[[3]int]bool{{-3, 2, -1}: true}, bounds: 8}
	res := Raycast(mgl32.Vec3{-0.5, 2.5, -0.5}, mgl32.Vec3{-1, 0, 0}, 0, MaxReachDistance, w)

	assert.True(t, res.Hit)
	assert.Equal(t, [3]int{-3, 2, -1}, res.HitPosition)
	assert.Equal(t, [3]int{-2, 2, -1}, res.AdjacentPosition)
	assert.InDelta(t, 1.5, res.Distance, 0.03)
}

func TestFindGroundLevel(t *testing.T) {
	w := floor(10, 4)
	assert.Equal(t, float32(10), FindGroundLevel(1.2, -3.7, 80, w))
	// Outside resident bounds.
	assert.Equal(t, float32(0), FindGroundLevel(100, 0, 80, w))
	// Empty column.
	empty := voxelMap{solid: map[[3]int]bool{}, bounds: 4}
	assert.Equal(t, float32(0), FindGroundLevel(0, 0, 80, empty))
}
