package main

import (
	"fmt"
	"math"
	"time"

	"mini-terrain/internal/config"
	"mini-terrain/internal/graphics"
	"mini-terrain/internal/graphics/camera"
	"mini-terrain/internal/input"
	"mini-terrain/internal/logger"
	"mini-terrain/internal/physics"
	"mini-terrain/internal/profiling"
	"mini-terrain/internal/streaming"
	"mini-terrain/internal/world"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

const (
	mouseSensitivity = 0.1
	fastMultiplier   = 4
)

// ViewerLoop owns the per-frame state of the interactive viewer.
type ViewerLoop struct {
	window   *glfw.Window
	streamer *streaming.Streamer
	chunks   *graphics.ChunkRenderer
	overlay  *graphics.TextRenderer
	cam      *camera.Camera
	input    *input.InputManager
	limiter  *FPSLimiter

	viewDistance int
	speed        float32
	showOverlay  bool
	spawned      bool

	frames       int
	fps          int
	lastFPSCheck time.Time
	lastTime     time.Time
	overlayLines []string
}

func newViewerLoop(w *glfw.Window, s *streaming.Streamer, chunks *graphics.ChunkRenderer,
	overlay *graphics.TextRenderer, cam *camera.Camera, im *input.InputManager, cfg *config.Config) *ViewerLoop {
	now := time.Now()
	limit := cfg.Viewer.MaxFPS
	if cfg.Viewer.VSync {
		limit = 0
	}
	return &ViewerLoop{
		window:       w,
		streamer:     s,
		chunks:       chunks,
		overlay:      overlay,
		cam:          cam,
		input:        im,
		limiter:      NewFPSLimiter(limit),
		viewDistance: cfg.Streaming.ViewDistance,
		speed:        cfg.Viewer.Speed,
		showOverlay:  true,
		lastFPSCheck: now,
		lastTime:     now,
	}
}

// Run ticks until the window closes or a tick fails.
func (l *ViewerLoop) Run() {
	for !l.window.ShouldClose() {
		if err := l.tick(); err != nil {
			logger.Log.Error("tick failed", zap.Error(err))
			return
		}
	}
}

func (l *ViewerLoop) tick() error {
	profiling.ResetFrame()
	now := time.Now()
	dt := float32(now.Sub(l.lastTime).Seconds())
	l.lastTime = now

	func() { defer profiling.Track("glfw.PollEvents")(); glfw.PollEvents() }()

	l.handleInput(dt)

	if err := l.streamer.Tick([]mgl32.Vec3{l.cam.Position}, l.viewDistance); err != nil {
		return err
	}
	l.placeOnGround()

	l.renderFrame()

	func() { defer profiling.Track("glfw.SwapBuffers")(); l.window.SwapBuffers() }()
	l.input.PostUpdate()
	l.updateFPS(now)
	l.limiter.Wait()
	return nil
}

func (l *ViewerLoop) handleInput(dt float32) {
	if l.input.JustPressed(input.ActionQuit) {
		l.window.SetShouldClose(true)
	}
	if l.input.JustPressed(input.ActionToggleWireframe) {
		l.chunks.ToggleWireframe()
	}
	if l.input.JustPressed(input.ActionToggleOverlay) {
		l.showOverlay = !l.showOverlay
	}

	dx, dy := l.input.MouseDelta()
	l.cam.Look(float32(dx)*mouseSensitivity, -float32(dy)*mouseSensitivity)

	var forward, right, up float32
	if l.input.IsActive(input.ActionMoveForward) {
		forward++
	}
	if l.input.IsActive(input.ActionMoveBackward) {
		forward--
	}
	if l.input.IsActive(input.ActionMoveRight) {
		right++
	}
	if l.input.IsActive(input.ActionMoveLeft) {
		right--
	}
	if l.input.IsActive(input.ActionMoveUp) {
		up++
	}
	if l.input.IsActive(input.ActionMoveDown) {
		up--
	}
	step := l.speed * dt
	if l.input.IsActive(input.ActionFast) {
		step *= fastMultiplier
	}
	l.cam.Move(forward*step, right*step, up*step)

	if l.input.JustPressed(input.ActionRemoveVoxel) || l.input.JustPressed(input.ActionPlaceVoxel) {
		l.editVoxel(l.input.JustPressed(input.ActionPlaceVoxel))
	}
}

func (l *ViewerLoop) editVoxel(place bool) {
	hit := physics.Raycast(l.cam.Position, l.cam.Front(), physics.MinReachDistance, physics.MaxReachDistance, l.streamer)
	if !hit.Hit {
		return
	}
	target, v := hit.HitPosition, world.Air
	if place {
		target, v = hit.AdjacentPosition, world.Stone
	}
	if err := l.streamer.SetVoxelWorld(target[0], target[1], target[2], v); err != nil {
		logger.Log.Debug("edit rejected", zap.Error(err), zap.Ints("voxel", target[:]))
	}
}

// placeOnGround drops the camera onto the terrain once the spawn chunk
// has been generated.
func (l *ViewerLoop) placeOnGround() {
	if l.spawned {
		return
	}
	p := l.cam.Position
	dims := l.streamer.Dims()
	x, z := int(math.Floor(float64(p.X()))), int(math.Floor(float64(p.Z())))
	if _, ok := l.streamer.VoxelAt(x, 0, z); !ok {
		return
	}
	ground := physics.FindGroundLevel(p.X(), p.Z(), dims.Y, l.streamer)
	l.cam.Position = mgl32.Vec3{p.X(), ground + 3, p.Z()}
	l.spawned = true
}

func (l *ViewerLoop) renderFrame() {
	defer profiling.Track("render.Frame")()
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	l.chunks.Draw(l.cam.ViewMatrix(), l.cam.ProjectionMatrix(), l.cam.Position)

	if !l.showOverlay {
		return
	}
	st := l.streamer.Stats()
	coord := world.ChunkCoordAt(l.cam.Position, l.streamer.Dims())
	p := l.cam.Position
	l.overlayLines = append(l.overlayLines[:0],
		fmt.Sprintf("FPS: %d", l.fps),
		fmt.Sprintf("pos: %.1f %.1f %.1f  chunk: %v", p.X(), p.Y(), p.Z(), coord),
		fmt.Sprintf("chunks: %d  meshes: %d  drawn: %d", st.Chunks, st.Meshes, l.chunks.Drawn()),
		fmt.Sprintf("gen: %d in flight, avg %v", st.GenerationInFlight, st.GenerationLatency.Round(time.Microsecond)),
		fmt.Sprintf("mesh: %d in flight, avg %v", st.MeshingInFlight, st.MeshingLatency.Round(time.Microsecond)),
		fmt.Sprintf("queued: %d", st.QueuedJobs),
	)
	if top := profiling.TopN(3); top != "" {
		l.overlayLines = append(l.overlayLines, top)
	}
	lh := l.overlay.LineHeight()
	l.overlay.RenderLines(l.overlayLines, 10, 10+lh, lh+2, 1, mgl32.Vec3{1, 1, 1})
}

func (l *ViewerLoop) updateFPS(now time.Time) {
	l.frames++
	if now.Sub(l.lastFPSCheck) >= time.Second {
		l.fps = l.frames
		l.frames = 0
		l.lastFPSCheck = now
	}
}
