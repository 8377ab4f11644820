package main

import (
	"fmt"
	"os"
	"runtime"

	"mini-terrain/internal/config"
	"mini-terrain/internal/graphics"
	"mini-terrain/internal/graphics/camera"
	"mini-terrain/internal/input"
	"mini-terrain/internal/logger"
	"mini-terrain/internal/streaming"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

var skyColor = mgl32.Vec3{0.55, 0.72, 0.92}

func init() {
	runtime.LockOSThread()
}

func main() {
	config.ParseFlags()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := glfw.Init(); err != nil {
		logger.Fatal("glfw init", zap.Error(err))
	}
	defer glfw.Terminate()

	window, err := setupWindow(cfg.Viewer)
	if err != nil {
		logger.Fatal("window", zap.Error(err))
	}

	terrain, err := cfg.Terrain()
	if err != nil {
		logger.Fatal("terrain", zap.Error(err))
	}
	dims := cfg.Dims()
	fogDistance := float32(cfg.Streaming.ViewDistance * min(dims.X, dims.Z))

	chunks, err := graphics.NewChunkRenderer(dims, skyColor, fogDistance)
	if err != nil {
		logger.Fatal("chunk renderer", zap.Error(err))
	}
	fbW, fbH := window.GetFramebufferSize()
	overlay, err := graphics.NewTextRenderer(18, fbW, fbH)
	if err != nil {
		logger.Fatal("text renderer", zap.Error(err))
	}

	s, err := streaming.New(streaming.Options{
		Dims:               dims,
		Terrain:            terrain,
		Workers:            cfg.Streaming.Workers,
		MaxRequestsPerTick: cfg.Streaming.MaxRequestsPerTick,
		Logger:             logger.Named("streaming"),
	}, chunks)
	if err != nil {
		logger.Fatal("streamer", zap.Error(err))
	}

	cam := camera.New(fbW, fbH, cfg.Viewer.FOV)
	cam.FarPlane = fogDistance * 1.5
	cam.Position = mgl32.Vec3{0.5, float32(dims.Y) + 2, 0.5}

	im := input.NewInputManager()
	im.Attach(window)
	window.SetFramebufferSizeCallback(func(_ *glfw.Window, w, h int) {
		gl.Viewport(0, 0, int32(w), int32(h))
		cam.Resize(w, h)
		overlay.Resize(w, h)
	})

	logger.Log.Info("viewer started",
		zap.Int64("seed", cfg.World.Seed),
		zap.Int("viewDistance", cfg.Streaming.ViewDistance),
		zap.String("dims", fmt.Sprintf("%dx%dx%d", dims.X, dims.Y, dims.Z)))

	loop := newViewerLoop(window, s, chunks, overlay, cam, im, cfg)
	loop.Run()

	// Shutdown disposes through the renderer, so it runs on this thread
	// while the context is still current.
	s.Shutdown()
	overlay.Delete()
	chunks.Delete()
	logger.Log.Info("viewer stopped")
}

func setupWindow(vc config.ViewerConfig) (*glfw.Window, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)

	window, err := glfw.CreateWindow(vc.Width, vc.Height, "mini-terrain", nil, nil)
	if err != nil {
		return nil, err
	}
	window.MakeContextCurrent()

	if err := gl.Init(); err != nil {
		return nil, err
	}
	if vc.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}
	window.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
	gl.ClearColor(skyColor.X(), skyColor.Y(), skyColor.Z(), 1)
	return window, nil
}
