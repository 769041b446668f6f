package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Graphics.Width != 1280 {
		t.Errorf("expected width 1280, got %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 720 {
		t.Errorf("expected height 720, got %d", cfg.Graphics.Height)
	}
	if !cfg.Graphics.VSync {
		t.Error("expected vsync to be true by default")
	}

	if cfg.Terrain.SmoothingAlgorithm != AlgorithmMarchingCubes {
		t.Errorf("expected marching cubes, got %s", cfg.Terrain.SmoothingAlgorithm)
	}
	if cfg.Terrain.ChunkSize != 16 {
		t.Errorf("expected chunk size 16, got %d", cfg.Terrain.ChunkSize)
	}
	if cfg.Terrain.Resolution != 1 {
		t.Errorf("expected resolution 1, got %v", cfg.Terrain.Resolution)
	}
	if cfg.Terrain.QuadrantRadius != 2 {
		t.Errorf("expected quadrant radius 2, got %d", cfg.Terrain.QuadrantRadius)
	}
	if cfg.Terrain.WorldScale != 16 {
		t.Errorf("expected world scale 16, got %v", cfg.Terrain.WorldScale)
	}
	if cfg.Terrain.TickInterval != 50*time.Millisecond {
		t.Errorf("expected tick interval 50ms, got %v", cfg.Terrain.TickInterval)
	}
	if cfg.Terrain.LODHighestRadius != 32 || cfg.Terrain.LODLowRadius != 256 {
		t.Errorf("unexpected LOD radii: %+v", cfg.Terrain)
	}

	if len(cfg.Data.TextureFiles) != 2 {
		t.Errorf("expected two terrain textures, got %v", cfg.Data.TextureFiles)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
graphics:
  width: 1920
  height: 1080
  fullscreen: true
  vsync: false

terrain:
  smoothing_algorithm: dual_contouring
  chunk_size: 32
  resolution: 0.5
  quadrant_radius: 3
  tick_interval: 100ms
  isolate_work_errors: true

data:
  texture_dir: /srv/textures
  texture_files: [a.png, b.png, c.png]

logging:
  level: "debug"
  log_file: "terrain.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Graphics.Width != 1920 {
		t.Errorf("expected width 1920, got %d", cfg.Graphics.Width)
	}
	if !cfg.Graphics.Fullscreen {
		t.Error("expected fullscreen to be true")
	}
	if cfg.Graphics.VSync {
		t.Error("expected vsync to be false")
	}

	if cfg.Terrain.SmoothingAlgorithm != AlgorithmDualContouring {
		t.Errorf("expected dual contouring, got %s", cfg.Terrain.SmoothingAlgorithm)
	}
	if cfg.Terrain.ChunkSize != 32 {
		t.Errorf("expected chunk size 32, got %d", cfg.Terrain.ChunkSize)
	}
	if cfg.Terrain.Resolution != 0.5 {
		t.Errorf("expected resolution 0.5, got %v", cfg.Terrain.Resolution)
	}
	if cfg.Terrain.QuadrantRadius != 3 {
		t.Errorf("expected radius 3, got %d", cfg.Terrain.QuadrantRadius)
	}
	if cfg.Terrain.TickInterval != 100*time.Millisecond {
		t.Errorf("expected tick interval 100ms, got %v", cfg.Terrain.TickInterval)
	}
	if !cfg.Terrain.IsolateWorkErrors {
		t.Error("expected isolate_work_errors to be true")
	}
	// Untouched keys keep defaults
	if cfg.Terrain.WorldScale != 16 {
		t.Errorf("expected default world scale 16, got %v", cfg.Terrain.WorldScale)
	}

	if cfg.Data.TextureDir != "/srv/textures" {
		t.Errorf("expected texture dir /srv/textures, got %s", cfg.Data.TextureDir)
	}
	if len(cfg.Data.TextureFiles) != 3 {
		t.Errorf("expected 3 texture files, got %v", cfg.Data.TextureFiles)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "terrain.log" {
		t.Errorf("expected log file 'terrain.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "invalid.yaml")

	invalidYAML := `
terrain:
  chunk_size: not a number
  invalid syntax here
`
	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	if err := loadFromFile(Default(), configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	if err := loadFromFile(Default(), "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"unknown algorithm", func(c *Config) { c.Terrain.SmoothingAlgorithm = "surface_nets" }, "unknown algorithm"},
		{"zero chunk size", func(c *Config) { c.Terrain.ChunkSize = 0 }, "chunk_size"},
		{"negative resolution", func(c *Config) { c.Terrain.Resolution = -1 }, "resolution"},
		{"resolution does not divide", func(c *Config) { c.Terrain.Resolution = 3 }, "does not divide"},
		{"negative radius", func(c *Config) { c.Terrain.QuadrantRadius = -1 }, "quadrant_radius"},
		{"zero world scale", func(c *Config) { c.Terrain.WorldScale = 0 }, "world_scale"},
		{"zero updates", func(c *Config) { c.Terrain.MaxUpdatesPerFrame = 0 }, "max_updates_per_frame"},
		{"no textures", func(c *Config) { c.Data.TextureFiles = nil }, "texture_files"},
		{"half resolution ok", func(c *Config) { c.Terrain.Resolution = 0.5 }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "algorithm flag",
			setup: func() { *flagAlgorithm = AlgorithmDualContouring },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Terrain.SmoothingAlgorithm != AlgorithmDualContouring {
					t.Errorf("expected dual contouring, got %s", cfg.Terrain.SmoothingAlgorithm)
				}
			},
			teardown: func() { *flagAlgorithm = "" },
		},
		{
			name:  "radius zero is honoured",
			setup: func() { *flagRadius = 0 },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Terrain.QuadrantRadius != 0 {
					t.Errorf("expected radius 0, got %d", cfg.Terrain.QuadrantRadius)
				}
			},
			teardown: func() { *flagRadius = -1 },
		},
		{
			name: "seed and workers",
			setup: func() {
				*flagSeed = 42
				*flagWorkers = 8
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Terrain.Seed != 42 {
					t.Errorf("expected seed 42, got %d", cfg.Terrain.Seed)
				}
				if cfg.Terrain.Workers != 8 {
					t.Errorf("expected 8 workers, got %d", cfg.Terrain.Workers)
				}
			},
			teardown: func() {
				*flagSeed = 0
				*flagWorkers = 0
			},
		},
		{
			name: "width and height flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Graphics.Width != 2560 {
					t.Errorf("expected width 2560, got %d", cfg.Graphics.Width)
				}
				if cfg.Graphics.Height != 1440 {
					t.Errorf("expected height 1440, got %d", cfg.Graphics.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)
			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	yamlContent := `
graphics:
  width: 1600
  height: 900
terrain:
  quadrant_radius: 4
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagWidth = 1920
	defer func() {
		*flagConfig = ""
		*flagWidth = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Flag beats file
	if cfg.Graphics.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Graphics.Height)
	}
	if cfg.Terrain.QuadrantRadius != 4 {
		t.Errorf("expected radius 4 from file, got %d", cfg.Terrain.QuadrantRadius)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("terrain:\n  smoothing_algorithm: voxels\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	defer func() { *flagConfig = "" }()

	if _, err := Load(); err == nil {
		t.Error("expected validation error, got nil")
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Terrain.Seed = 99
	cfg.Terrain.SmoothingAlgorithm = AlgorithmDualContouring
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("failed to reload: %v", err)
	}
	if loaded.Terrain.Seed != 99 || loaded.Terrain.SmoothingAlgorithm != AlgorithmDualContouring {
		t.Errorf("round trip lost terrain settings: %+v", loaded.Terrain)
	}
}
