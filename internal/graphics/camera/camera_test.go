package camera

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestFrontDefaultsToNegativeZ(t *testing.T) {
	c := New(800, 600, 70)
	assert.True(t, c.Front().ApproxEqualThreshold(mgl32.Vec3{0, 0, -1}, 1e-6))
	assert.True(t, c.Right().ApproxEqualThreshold(mgl32.Vec3{1, 0, 0}, 1e-6))
}

func TestLookClampsPitch(t *testing.T) {
	c := New(800, 600, 70)
	c.Look(0, 200)
	assert.Equal(t, float32(maxPitch), c.Pitch)
	c.Look(0, -400)
	assert.Equal(t, float32(-maxPitch), c.Pitch)
}

func TestMove(t *testing.T) {
	c := New(800, 600, 70)
	c.Move(10, 0, 0)
	assert.True(t, c.Position.ApproxEqualThreshold(mgl32.Vec3{0, 0, -10}, 1e-5))

	c.Look(90, 0)
	c.Move(5, 0, 2)
	assert.True(t, c.Position.ApproxEqualThreshold(mgl32.Vec3{5, 2, -10}, 1e-4), "got %v", c.Position)
}

func TestViewMatrixMapsPositionToOrigin(t *testing.T) {
	c := New(800, 600, 70)
	c.Position = mgl32.Vec3{3, 40, -7}
	c.Look(30, -20)
	p := c.ViewMatrix().Mul4x1(c.Position.Vec4(1))
	assert.True(t, p.Vec3().ApproxEqualThreshold(mgl32.Vec3{}, 1e-4))
}

func TestFrustumCulling(t *testing.T) {
	c := New(800, 600, 70)
	c.Position = mgl32.Vec3{0, 10, 0}
	f := NewFrustum(c.ProjectionMatrix().Mul4(c.ViewMatrix()))

	// A chunk straight ahead is visible.
	assert.True(t, f.IntersectsAABB(mgl32.Vec3{-4, 0, -40}, mgl32.Vec3{4, 20, -32}))
	// A chunk directly behind is not.
	assert.False(t, f.IntersectsAABB(mgl32.Vec3{-4, 0, 32}, mgl32.Vec3{4, 20, 40}))
	// Beyond the far plane.
	assert.False(t, f.IntersectsAABB(mgl32.Vec3{-4, 0, -3000}, mgl32.Vec3{4, 20, -2990}))
	// Containing the camera.
	assert.True(t, f.IntersectsAABB(mgl32.Vec3{-16, 0, -16}, mgl32.Vec3{16, 80, 16}))
}
