// Package config handles terrain streaming configuration loading and management.
package config

import (
	"fmt"
	"time"

	"mini-terrain/internal/world"
)

// View distance limits in chunks.
const (
	MinViewDistance = 1
	MaxViewDistance = 32
)

// Generator kinds.
const (
	GeneratorNoise = "noise"
	GeneratorFlat  = "flat"
)

// Config holds all settings.
type Config struct {
	World     WorldConfig     `yaml:"world"`
	Streaming StreamingConfig `yaml:"streaming"`
	Viewer    ViewerConfig    `yaml:"viewer"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// WorldConfig describes chunk size and terrain shape.
type WorldConfig struct {
	ChunkX int `yaml:"chunk_x"`
	ChunkY int `yaml:"chunk_y"`
	ChunkZ int `yaml:"chunk_z"`

	Generator  string `yaml:"generator"`
	FlatHeight int    `yaml:"flat_height"`

	Seed           int64   `yaml:"seed"`
	CarveSeed      int64   `yaml:"carve_seed"`
	HeightScale    float64 `yaml:"height_scale"`
	HeightOctaves  int     `yaml:"height_octaves"`
	HeightFalloff  float64 `yaml:"height_falloff"`
	CarveScale     float64 `yaml:"carve_scale"`
	CarveOctaves   int     `yaml:"carve_octaves"`
	CarveThreshold float64 `yaml:"carve_threshold"`
}

// StreamingConfig holds orchestrator settings.
type StreamingConfig struct {
	ViewDistance       int           `yaml:"view_distance"`
	Workers            int           `yaml:"workers"`
	TickInterval       time.Duration `yaml:"tick_interval"`
	MaxRequestsPerTick int           `yaml:"max_requests_per_tick"`
}

// ViewerConfig holds window and camera settings for the interactive viewer.
type ViewerConfig struct {
	Width  int     `yaml:"width"`
	Height int     `yaml:"height"`
	FOV    float32 `yaml:"fov"`
	Speed  float32 `yaml:"speed"`
	VSync  bool    `yaml:"vsync"`
	// MaxFPS caps the frame rate when VSync is off; 0 means uncapped.
	MaxFPS int `yaml:"max_fps"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with the reference terrain and streaming values.
func Default() *Config {
	noise := world.DefaultNoiseParams(1337, 7331)
	return &Config{
		World: WorldConfig{
			ChunkX:         world.DefaultDims.X,
			ChunkY:         world.DefaultDims.Y,
			ChunkZ:         world.DefaultDims.Z,
			Generator:      GeneratorNoise,
			FlatHeight:     10,
			Seed:           noise.Seed,
			CarveSeed:      noise.CarveSeed,
			HeightScale:    noise.HeightScale,
			HeightOctaves:  noise.HeightOctaves,
			HeightFalloff:  noise.HeightFalloff,
			CarveScale:     noise.CarveScale,
			CarveOctaves:   noise.CarveOctaves,
			CarveThreshold: noise.CarveThreshold,
		},
		Streaming: StreamingConfig{
			ViewDistance:       6,
			Workers:            3,
			TickInterval:       50 * time.Millisecond,
			MaxRequestsPerTick: 0,
		},
		Viewer: ViewerConfig{
			Width:  1280,
			Height: 720,
			FOV:    70,
			Speed:  24,
			VSync:  true,
			MaxFPS: 240,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Dims returns the configured chunk dimensions.
func (c *Config) Dims() world.Dims {
	return world.Dims{X: c.World.ChunkX, Y: c.World.ChunkY, Z: c.World.ChunkZ}
}

// NoiseParams returns the configured noise parameters.
func (c *Config) NoiseParams() world.NoiseParams {
	w := c.World
	return world.NoiseParams{
		Seed:           w.Seed,
		HeightScale:    w.HeightScale,
		HeightOctaves:  w.HeightOctaves,
		HeightFalloff:  w.HeightFalloff,
		CarveSeed:      w.CarveSeed,
		CarveScale:     w.CarveScale,
		CarveOctaves:   w.CarveOctaves,
		CarveThreshold: w.CarveThreshold,
	}
}

// Terrain builds the terrain source the config selects.
func (c *Config) Terrain() (world.Terrain, error) {
	switch c.World.Generator {
	case GeneratorNoise, "":
		return world.NewNoiseField(c.NoiseParams(), c.Dims()), nil
	case GeneratorFlat:
		return world.NewFlatTerrain(c.World.FlatHeight), nil
	default:
		return nil, fmt.Errorf("config: unknown generator %q", c.World.Generator)
	}
}

// Validate checks the settings and clamps the view distance into range.
func (c *Config) Validate() error {
	if err := c.Dims().Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Streaming.Workers < 1 {
		return fmt.Errorf("config: workers must be positive, got %d", c.Streaming.Workers)
	}
	if c.Streaming.TickInterval <= 0 {
		return fmt.Errorf("config: tick interval must be positive, got %v", c.Streaming.TickInterval)
	}
	if c.Viewer.MaxFPS < 0 {
		return fmt.Errorf("config: max fps must not be negative, got %d", c.Viewer.MaxFPS)
	}
	c.Streaming.ViewDistance = ClampViewDistance(c.Streaming.ViewDistance)
	return nil
}

// ClampViewDistance limits d to [MinViewDistance, MaxViewDistance].
func ClampViewDistance(d int) int {
	return min(max(d, MinViewDistance), MaxViewDistance)
}
