package viewer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/xrp/internal/config"
	"github.com/Faultbox/xrp/internal/engine/scene"
)

func TestSettingsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Pipeline.Instancing = true
	cfg.Pipeline.ShadowMapSize = 2048

	s := Settings(cfg.Pipeline)
	assert.True(t, s.Instancing)
	assert.False(t, s.DynamicBatching)
	assert.Equal(t, 2048, s.Shadows.MapSize)
	assert.Equal(t, float32(100), s.Shadows.Distance)
	assert.Equal(t, 4, s.Shadows.Cascades)
	assert.Equal(t, mgl32.Vec3{0.067, 0.2, 0.467}, s.Shadows.CascadeSplit)

	cfg.Pipeline.ShadowCascades = 2
	assert.Equal(t, mgl32.Vec3{0.25, 0, 0}, Settings(cfg.Pipeline).Shadows.CascadeSplit)
}

func TestNewCameraFramesScene(t *testing.T) {
	cam := newCamera(scene.Demo(), 1600, 800)
	assert.Equal(t, float32(2), cam.Aspect)

	b, ok := scene.Demo().Bounds()
	require.True(t, ok)
	assert.InDelta(t, b.Center()[0], cam.Center[0], 1e-4)

	empty := newCamera(&scene.Scene{}, 0, 0)
	assert.Equal(t, float32(16.0/9.0), empty.Aspect)
}

func TestRunHeadlessDemo(t *testing.T) {
	dir := t.TempDir()
	stats, err := RunHeadless(config.Default(), scene.Demo(), HeadlessOptions{
		Frames:    3,
		Width:     1280,
		Height:    720,
		OrbitStep: 0.2,
		AtlasDir:  dir,
	})
	require.NoError(t, err)

	assert.Equal(t, "main", stats.Camera)
	assert.Positive(t, stats.VisibleLights)
	assert.NotNil(t, stats.AtlasTexture)

	_, err = os.Stat(filepath.Join(dir, "atlas.png"))
	assert.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "cascades.png"))
	if stats.Cascades > 0 {
		assert.NoError(t, err)
	} else {
		assert.True(t, os.IsNotExist(err))
	}
}

func TestRunHeadlessWithoutLights(t *testing.T) {
	dir := t.TempDir()
	s := scene.Demo()
	s.Lights = nil

	stats, err := RunHeadless(config.Default(), s, HeadlessOptions{AtlasDir: dir})
	require.NoError(t, err)
	assert.Zero(t, stats.VisibleLights)
	assert.Equal(t, -1, stats.MainLight)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
