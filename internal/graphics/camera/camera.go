// Package camera holds the viewer's fly camera and view-frustum tests.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Pitch is limited just short of straight up/down.
const maxPitch = 89.0

// Camera is a free-flying perspective camera. Yaw and pitch are in degrees;
// yaw 0 looks along -Z.
type Camera struct {
	Position    mgl32.Vec3
	Yaw         float32
	Pitch       float32
	AspectRatio float32
	FOV         float32
	NearPlane   float32
	FarPlane    float32
}

// New creates a camera for a viewport of the given size.
func New(width, height int, fov float32) *Camera {
	return &Camera{
		AspectRatio: float32(width) / float32(max(height, 1)),
		FOV:         fov,
		NearPlane:   0.1,
		FarPlane:    2000.0,
	}
}

// Resize updates the aspect ratio.
func (c *Camera) Resize(width, height int) {
	if height > 0 {
		c.AspectRatio = float32(width) / float32(height)
	}
}

// Front returns the unit look direction.
func (c *Camera) Front() mgl32.Vec3 {
	yaw := float64(mgl32.DegToRad(c.Yaw))
	pitch := float64(mgl32.DegToRad(c.Pitch))
	return mgl32.Vec3{
		float32(math.Sin(yaw) * math.Cos(pitch)),
		float32(math.Sin(pitch)),
		float32(-math.Cos(yaw) * math.Cos(pitch)),
	}.Normalize()
}

// Right returns the unit strafe direction, always horizontal.
func (c *Camera) Right() mgl32.Vec3 {
	yaw := float64(mgl32.DegToRad(c.Yaw))
	return mgl32.Vec3{float32(math.Cos(yaw)), 0, float32(math.Sin(yaw))}
}

// Look turns the camera by mouse deltas in degrees.
func (c *Camera) Look(dYaw, dPitch float32) {
	c.Yaw = float32(math.Mod(float64(c.Yaw+dYaw), 360))
	c.Pitch = mgl32.Clamp(c.Pitch+dPitch, -maxPitch, maxPitch)
}

// Move translates the camera: forward along Front, right along Right,
// up along world +Y.
func (c *Camera) Move(forward, right, up float32) {
	c.Position = c.Position.
		Add(c.Front().Mul(forward)).
		Add(c.Right().Mul(right)).
		Add(mgl32.Vec3{0, up, 0})
}

// ProjectionMatrix returns the perspective projection.
func (c *Camera) ProjectionMatrix() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), c.AspectRatio, c.NearPlane, c.FarPlane)
}

// ViewMatrix returns the world-to-camera transform.
func (c *Camera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Position.Add(c.Front()), mgl32.Vec3{0, 1, 0})
}
