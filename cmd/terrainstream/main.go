package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sync"
	"time"

	"mini-terrain/internal/config"
	"mini-terrain/internal/logger"
	"mini-terrain/internal/preview"
	"mini-terrain/internal/profiling"
	"mini-terrain/internal/streaming"
	"mini-terrain/internal/world"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/xlab/closer"
	"go.uber.org/zap"
)

var (
	flagHeightmap = flag.String("heightmap", "", "Write a BMP heightmap of the spawn area and exit")
	flagRadius    = flag.Int("heightmap-radius", 4, "Heightmap radius in chunks")
	flagSpeed     = flag.Float64("speed", 16, "Viewer speed along +X in voxels per second")
	flagDuration  = flag.Duration("duration", 0, "Stop after this long (0 runs until interrupted)")
)

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

	terrain, err := cfg.Terrain()
	if err != nil {
		logger.Fatal("terrain", zap.Error(err))
	}

	if *flagHeightmap != "" {
		if err := writeHeightmap(*flagHeightmap, terrain, cfg.Dims()); err != nil {
			logger.Fatal("heightmap", zap.Error(err))
		}
		return
	}

	s, err := streaming.New(streaming.Options{
		Dims:               cfg.Dims(),
		Terrain:            terrain,
		Workers:            cfg.Streaming.Workers,
		MaxRequestsPerTick: cfg.Streaming.MaxRequestsPerTick,
		Logger:             logger.Named("streaming"),
	}, streaming.NopSink{})
	if err != nil {
		logger.Fatal("streamer", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	closer.Bind(func() {
		cancel()
		wg.Wait()
		s.Shutdown()
		logger.Sync()
	})

	v := newViewer(float32(*flagSpeed), cfg.Dims())
	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := s.Run(ctx, v, cfg.Streaming.ViewDistance, cfg.Streaming.TickInterval); err != nil {
			logger.Log.Error("streaming stopped", zap.Error(err))
			go closer.Close()
		}
	}()
	go func() {
		defer wg.Done()
		report(ctx, s, v)
	}()

	logger.Log.Info("streaming",
		zap.Int64("seed", cfg.World.Seed),
		zap.String("generator", cfg.World.Generator),
		zap.Int("viewDistance", cfg.Streaming.ViewDistance),
		zap.Int("workers", cfg.Streaming.Workers))

	if *flagDuration > 0 {
		time.AfterFunc(*flagDuration, closer.Close)
	}
	closer.Hold()
}

// viewer walks along +X at a fixed speed, starting at the origin.
type viewer struct {
	start time.Time
	speed float32
	y     float32
}

func newViewer(speed float32, d world.Dims) *viewer {
	return &viewer{start: time.Now(), speed: speed, y: float32(d.Y)}
}

func (v *viewer) ViewerPositions() []mgl32.Vec3 {
	return []mgl32.Vec3{v.position()}
}

func (v *viewer) position() mgl32.Vec3 {
	t := float32(time.Since(v.start).Seconds())
	return mgl32.Vec3{v.speed * t, v.y, 0}
}

func report(ctx context.Context, s *streaming.Streamer, v *viewer) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		st := s.Stats()
		logger.Log.Info("telemetry",
			zap.Stringer("viewer", world.ChunkCoordAt(v.position(), s.Dims())),
			zap.Int("chunks", st.Chunks),
			zap.Int("meshes", st.Meshes),
			zap.Int("genInFlight", st.GenerationInFlight),
			zap.Int("meshInFlight", st.MeshingInFlight),
			zap.Duration("genAvg", st.GenerationLatency),
			zap.Duration("meshAvg", st.MeshingLatency),
			zap.Uint64("queued", st.QueuedJobs),
			zap.String("top", profiling.TopN(3)))
		profiling.ResetFrame()
	}
}

func writeHeightmap(path string, t world.Terrain, d world.Dims) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	img := preview.Heightmap(t, world.ChunkCoord{}, *flagRadius, d)
	if err := preview.WriteBMP(f, img, 2); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	logger.Log.Info("heightmap written", zap.String("path", path), zap.Stringer("bounds", img.Bounds()))
	return f.Close()
}
