package streaming

import (
	"mini-terrain/internal/meshing"
	"mini-terrain/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

// RenderSink owns the drawable for each meshed chunk.
type RenderSink interface {
	// Upsert creates or replaces the drawable at coord. transform places
	// the chunk-local mesh in world space.
	Upsert(coord world.ChunkCoord, mesh *meshing.Mesh, transform mgl32.Mat4)
	// Dispose destroys the drawable at coord.
	Dispose(coord world.ChunkCoord)
}

// ViewerSource supplies the current viewer positions in world space.
type ViewerSource interface {
	ViewerPositions() []mgl32.Vec3
}

// ViewerFunc adapts a function to ViewerSource.
type ViewerFunc func() []mgl32.Vec3

func (f ViewerFunc) ViewerPositions() []mgl32.Vec3 { return f() }

// NopSink discards every notification.
type NopSink struct{}

func (NopSink) Upsert(world.ChunkCoord, *meshing.Mesh, mgl32.Mat4) {}
func (NopSink) Dispose(world.ChunkCoord)                           {}
