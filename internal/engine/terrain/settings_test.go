package terrain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/glr/internal/config"
	"github.com/Faultbox/glr/internal/engine/voxel"
)

func TestSettingsValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Settings)
	}{
		{"zero chunk size", func(s *Settings) { s.ChunkSize = 0 }},
		{"negative resolution", func(s *Settings) { s.Resolution = -1 }},
		{"resolution does not divide", func(s *Settings) { s.Resolution = 3 }},
		{"negative radius", func(s *Settings) { s.QuadrantRadius = -1 }},
		{"zero world scale", func(s *Settings) { s.WorldScale = 0 }},
		{"no textures", func(s *Settings) { s.TextureFiles = nil }},
		{"lod not ascending", func(s *Settings) { s.LODHighRadius = 500 }},
	}

	require.NoError(t, DefaultSettings().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.modify(&s)
			assert.Error(t, s.Validate())
		})
	}
}

func TestBlockSize(t *testing.T) {
	s := DefaultSettings()
	assert.Equal(t, 16, s.BlockSize())
	s.Resolution = 0.5
	assert.Equal(t, 32, s.BlockSize())
	assert.NoError(t, s.Validate())
}

func TestLevelOfDetailFor(t *testing.T) {
	s := DefaultSettings()
	s.MaxViewDistance = 200

	tests := []struct {
		distance float32
		want     LevelOfDetail
	}{
		{0, LODHighest},
		{32, LODHighest},
		{33, LODHigh},
		{100, LODMedium},
		{150, LODLow},
		{201, LODNone},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, s.LevelOfDetailFor(tt.distance), "distance %v", tt.distance)
	}
	assert.Equal(t, "medium", LODMedium.String())
	assert.Equal(t, "none", LODNone.String())
}

func TestSettingsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Terrain.SmoothingAlgorithm = config.AlgorithmDualContouring
	cfg.Terrain.IsolateWorkErrors = true

	s, err := SettingsFromConfig(cfg.Terrain, cfg.Data)
	require.NoError(t, err)
	assert.Equal(t, voxel.DualContouring, s.SmoothingAlgorithm)
	assert.Equal(t, cfg.Terrain.ChunkSize, s.ChunkSize)
	assert.Equal(t, cfg.Terrain.WorldScale, s.WorldScale)
	assert.Equal(t, cfg.Terrain.Workers, s.Workers)
	assert.True(t, s.IsolateWorkErrors)
	assert.Equal(t, cfg.Data.TextureFiles, s.TextureFiles)

	cfg.Terrain.SmoothingAlgorithm = "surface_nets"
	_, err = SettingsFromConfig(cfg.Terrain, cfg.Data)
	assert.Error(t, err)

	cfg.Terrain.SmoothingAlgorithm = config.AlgorithmMarchingCubes
	cfg.Terrain.ChunkSize = -4
	_, err = SettingsFromConfig(cfg.Terrain, cfg.Data)
	assert.Error(t, err)
}
