package config

import "flag"

var (
	flagConfig       = flag.String("config", "", "Path to config file")
	flagDebug        = flag.Bool("debug", false, "Enable debug logging")
	flagSeed         = flag.Int64("seed", 0, "Height noise seed (0 keeps the configured seed)")
	flagCarveSeed    = flag.Int64("carve-seed", 0, "Carve noise seed (0 keeps the configured seed)")
	flagFlat         = flag.Bool("flat", false, "Use flat terrain instead of noise")
	flagViewDistance = flag.Int("view-distance", 0, "View distance in chunks")
	flagWorkers      = flag.Int("workers", 0, "Generation and meshing worker count")
	flagLogFile      = flag.String("log-file", "", "Write logs to this file as well")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via -config.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagSeed != 0 {
		cfg.World.Seed = *flagSeed
	}
	if *flagCarveSeed != 0 {
		cfg.World.CarveSeed = *flagCarveSeed
	}
	if *flagFlat {
		cfg.World.Generator = GeneratorFlat
	}
	if *flagViewDistance > 0 {
		cfg.Streaming.ViewDistance = *flagViewDistance
	}
	if *flagWorkers > 0 {
		cfg.Streaming.Workers = *flagWorkers
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
}
