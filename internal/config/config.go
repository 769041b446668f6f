// Package config handles viewer configuration loading and management.
package config

import (
	"fmt"
	"time"
)

// Smoothing algorithm names accepted in terrain.smoothing_algorithm.
const (
	AlgorithmMarchingCubes  = "marching_cubes"
	AlgorithmDualContouring = "dual_contouring"
)

// Config holds all viewer settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Terrain  TerrainConfig  `yaml:"terrain"`
	Data     DataConfig     `yaml:"data"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display and rendering settings.
type GraphicsConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`

	// Sun position in degrees: rotation around +Y from +Z, and elevation.
	SunLongitude float32 `yaml:"sun_longitude"`
	SunLatitude  float32 `yaml:"sun_latitude"`
}

// TerrainConfig holds terrain streaming and meshing settings.
type TerrainConfig struct {
	SmoothingAlgorithm string        `yaml:"smoothing_algorithm"`
	ChunkSize          int           `yaml:"chunk_size"`
	Resolution         float32       `yaml:"resolution"`
	QuadrantRadius     int           `yaml:"quadrant_radius"`
	WorldScale         float32       `yaml:"world_scale"`
	IsoLevel           float32       `yaml:"iso_level"`
	MaxUpdatesPerFrame int           `yaml:"max_updates_per_frame"`
	Workers            int           `yaml:"workers"`
	TickInterval       time.Duration `yaml:"tick_interval"`
	IsolateWorkErrors  bool          `yaml:"isolate_work_errors"`
	Seed               int64         `yaml:"seed"`

	MaxViewDistance  float32 `yaml:"max_view_distance"`
	LODHighestRadius float32 `yaml:"lod_highest_radius"`
	LODHighRadius    float32 `yaml:"lod_high_radius"`
	LODMediumRadius  float32 `yaml:"lod_medium_radius"`
	LODLowRadius     float32 `yaml:"lod_low_radius"`
}

// DataConfig holds asset locations.
type DataConfig struct {
	TextureDir    string   `yaml:"texture_dir"`
	TextureFiles  []string `yaml:"texture_files"` // relative to TextureDir, one per array layer
	ScreenshotDir string   `yaml:"screenshot_dir"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:        1280,
			Height:       720,
			Fullscreen:   false,
			VSync:        true,
			SunLongitude: 135,
			SunLatitude:  55,
		},
		Terrain: TerrainConfig{
			SmoothingAlgorithm: AlgorithmMarchingCubes,
			ChunkSize:          16,
			Resolution:         1,
			QuadrantRadius:     2,
			WorldScale:         16,
			IsoLevel:           0,
			MaxUpdatesPerFrame: 4,
			Workers:            4,
			TickInterval:       50 * time.Millisecond,
			Seed:               1337,
			MaxViewDistance:    256,
			LODHighestRadius:   32,
			LODHighRadius:      64,
			LODMediumRadius:    128,
			LODLowRadius:       256,
		},
		Data: DataConfig{
			TextureDir:    "data/textures/",
			TextureFiles:  []string{"terrain/cgrass2.jpg", "terrain/co_stone.jpg"},
			ScreenshotDir: "screenshots",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports settings that would make terrain generation impossible.
func (c *Config) Validate() error {
	t := c.Terrain
	switch t.SmoothingAlgorithm {
	case AlgorithmMarchingCubes, AlgorithmDualContouring:
	default:
		return fmt.Errorf("terrain.smoothing_algorithm: unknown algorithm %q", t.SmoothingAlgorithm)
	}
	if t.ChunkSize <= 0 {
		return fmt.Errorf("terrain.chunk_size must be positive, got %d", t.ChunkSize)
	}
	if t.Resolution <= 0 {
		return fmt.Errorf("terrain.resolution must be positive, got %v", t.Resolution)
	}
	if blocks := float32(t.ChunkSize) / t.Resolution; blocks != float32(int(blocks)) {
		return fmt.Errorf("terrain.resolution %v does not divide chunk size %d", t.Resolution, t.ChunkSize)
	}
	if t.QuadrantRadius < 0 {
		return fmt.Errorf("terrain.quadrant_radius must not be negative, got %d", t.QuadrantRadius)
	}
	if t.WorldScale <= 0 {
		return fmt.Errorf("terrain.world_scale must be positive, got %v", t.WorldScale)
	}
	if t.MaxUpdatesPerFrame <= 0 {
		return fmt.Errorf("terrain.max_updates_per_frame must be positive, got %d", t.MaxUpdatesPerFrame)
	}
	if len(c.Data.TextureFiles) == 0 {
		return fmt.Errorf("data.texture_files must list at least one texture")
	}
	return nil
}
