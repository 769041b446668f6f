package terrain

import (
	"fmt"

	"github.com/Faultbox/glr/internal/config"
	"github.com/Faultbox/glr/internal/engine/voxel"
)

// LevelOfDetail is a distance band around the viewer.
type LevelOfDetail int

const (
	LODHighest LevelOfDetail = iota
	LODHigh
	LODMedium
	LODLow
	LODNone // beyond the view distance
)

func (l LevelOfDetail) String() string {
	switch l {
	case LODHighest:
		return "highest"
	case LODHigh:
		return "high"
	case LODMedium:
		return "medium"
	case LODLow:
		return "low"
	default:
		return "none"
	}
}

// Settings are fixed for a manager's lifetime.
type Settings struct {
	SmoothingAlgorithm voxel.Algorithm

	ChunkSize  int     // world units per chunk side
	Resolution float32 // world units between samples
	IsoLevel   float32

	QuadrantRadius int     // resident cube half-width, in chunks
	WorldScale     float32 // follow target units per grid cell

	MaxViewDistance  float32
	LODHighestRadius float32
	LODHighRadius    float32
	LODMediumRadius  float32
	LODLowRadius     float32

	// Workers > 1 generates the neighbourhood's chunks in parallel.
	Workers int
	// IsolateWorkErrors keeps draining the GPU queue past a failing item.
	IsolateWorkErrors bool

	// TextureFiles are the texture array layers, relative to the device's texture dir.
	TextureFiles []string
}

// DefaultSettings returns the stock terrain configuration.
func DefaultSettings() Settings {
	return Settings{
		SmoothingAlgorithm: voxel.MarchingCubes,
		ChunkSize:          16,
		Resolution:         1,
		QuadrantRadius:     2,
		WorldScale:         16,
		MaxViewDistance:    256,
		LODHighestRadius:   32,
		LODHighRadius:      64,
		LODMediumRadius:    128,
		LODLowRadius:       256,
		Workers:            1,
		TextureFiles:       []string{"terrain/cgrass2.jpg", "terrain/co_stone.jpg"},
	}
}

// SettingsFromConfig builds Settings from the terrain and data config sections.
func SettingsFromConfig(t config.TerrainConfig, d config.DataConfig) (Settings, error) {
	alg, err := voxel.ParseAlgorithm(t.SmoothingAlgorithm)
	if err != nil {
		return Settings{}, err
	}
	s := Settings{
		SmoothingAlgorithm: alg,
		ChunkSize:          t.ChunkSize,
		Resolution:         t.Resolution,
		IsoLevel:           t.IsoLevel,
		QuadrantRadius:     t.QuadrantRadius,
		WorldScale:         t.WorldScale,
		MaxViewDistance:    t.MaxViewDistance,
		LODHighestRadius:   t.LODHighestRadius,
		LODHighRadius:      t.LODHighRadius,
		LODMediumRadius:    t.LODMediumRadius,
		LODLowRadius:       t.LODLowRadius,
		Workers:            t.Workers,
		IsolateWorkErrors:  t.IsolateWorkErrors,
		TextureFiles:       d.TextureFiles,
	}
	return s, s.Validate()
}

// BlockSize returns the number of cells per chunk side.
func (s Settings) BlockSize() int {
	return int(float32(s.ChunkSize) / s.Resolution)
}

// Validate reports settings a manager cannot run with.
func (s Settings) Validate() error {
	switch {
	case s.ChunkSize <= 0:
		return fmt.Errorf("terrain: chunk size must be positive, got %d", s.ChunkSize)
	case s.Resolution <= 0:
		return fmt.Errorf("terrain: resolution must be positive, got %v", s.Resolution)
	case float32(s.BlockSize())*s.Resolution != float32(s.ChunkSize):
		return fmt.Errorf("terrain: resolution %v does not divide chunk size %d", s.Resolution, s.ChunkSize)
	case s.QuadrantRadius < 0:
		return fmt.Errorf("terrain: quadrant radius must not be negative, got %d", s.QuadrantRadius)
	case s.WorldScale <= 0:
		return fmt.Errorf("terrain: world scale must be positive, got %v", s.WorldScale)
	case len(s.TextureFiles) == 0:
		return fmt.Errorf("terrain: no texture files")
	}
	if s.LODHighestRadius > s.LODHighRadius || s.LODHighRadius > s.LODMediumRadius || s.LODMediumRadius > s.LODLowRadius {
		return fmt.Errorf("terrain: level of detail radii must be ascending")
	}
	return nil
}

// LevelOfDetailFor returns the band a chunk at the given distance falls into.
func (s Settings) LevelOfDetailFor(distance float32) LevelOfDetail {
	switch {
	case distance > s.MaxViewDistance:
		return LODNone
	case distance <= s.LODHighestRadius:
		return LODHighest
	case distance <= s.LODHighRadius:
		return LODHigh
	case distance <= s.LODMediumRadius:
		return LODMedium
	case distance <= s.LODLowRadius:
		return LODLow
	default:
		return LODNone
	}
}
