package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
	flagAlgorithm  = flag.String("algorithm", "", "Smoothing algorithm (marching_cubes, dual_contouring)")
	flagRadius     = flag.Int("radius", -1, "Chunk load radius around the camera")
	flagSeed       = flag.Int64("seed", 0, "Terrain noise seed")
	flagWorkers    = flag.Int("workers", 0, "Chunk generation workers")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagFullscreen {
		cfg.Graphics.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Graphics.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Graphics.Height = *flagHeight
	}
	if *flagAlgorithm != "" {
		cfg.Terrain.SmoothingAlgorithm = *flagAlgorithm
	}
	if *flagRadius >= 0 {
		cfg.Terrain.QuadrantRadius = *flagRadius
	}
	if *flagSeed != 0 {
		cfg.Terrain.Seed = *flagSeed
	}
	if *flagWorkers > 0 {
		cfg.Terrain.Workers = *flagWorkers
	}
}
