package viewer

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/xrp/internal/config"
	"github.com/Faultbox/xrp/internal/engine/debug"
	"github.com/Faultbox/xrp/internal/engine/gpu"
	"github.com/Faultbox/xrp/internal/engine/render"
	"github.com/Faultbox/xrp/internal/engine/renderer"
	"github.com/Faultbox/xrp/internal/engine/scene"
	"github.com/Faultbox/xrp/internal/logger"
)

// HeadlessOptions configures a run without a window.
type HeadlessOptions struct {
	Frames int
	// Width and Height set the camera aspect.
	Width  int
	Height int
	// OrbitStep is the yaw added per frame, in radians.
	OrbitStep float32
	// AtlasDir receives layout snapshots of the last frame when set.
	AtlasDir string
}

// RunHeadless renders frames of s against a recording device and returns
// the stats of the last frame.
func RunHeadless(cfg *config.Config, s *scene.Scene, opts HeadlessOptions) (renderer.FrameStats, error) {
	if opts.Frames <= 0 {
		opts.Frames = 1
	}

	dev := gpu.NewRecorder(gpu.Caps{MaxTextureSize: 16384})
	r := renderer.New(Settings(cfg.Pipeline), dev)
	cam := newCamera(s, opts.Width, opts.Height)

	var stats renderer.FrameStats
	acquired := 0
	for frame := 0; frame < opts.Frames; frame++ {
		dev.Reset()
		if err := r.Render(scene.NewContext(s, dev), []render.Camera{cam}); err != nil {
			return stats, fmt.Errorf("frame %d: %w", frame, err)
		}
		stats = r.Stats()
		acquired += dev.Acquired()

		logger.Debug("frame rendered",
			zap.Int("frame", frame),
			zap.Int("commands", len(dev.Commands())),
			zap.Int("lights", stats.VisibleLights),
			zap.Int("main_light", stats.MainLight),
			zap.Int("cascades", stats.Cascades),
			zap.Int("shadow_tiles", stats.ShadowTiles),
		)
		if dev.Live() != 0 {
			return stats, fmt.Errorf("frame %d: %d shadow targets still live", frame, dev.Live())
		}
		cam.Yaw += opts.OrbitStep
	}

	logger.Info("headless run finished",
		zap.Int("frames", opts.Frames),
		zap.Int("acquired", acquired),
		zap.Int("lights", stats.VisibleLights),
		zap.Int("cascades", stats.Cascades),
		zap.Int("shadow_tiles", stats.ShadowTiles),
	)

	if opts.AtlasDir != "" {
		if err := writeSnapshots(opts.AtlasDir, stats); err != nil {
			return stats, err
		}
	}
	return stats, nil
}

// writeSnapshots saves the cascade and atlas layouts of stats as PNGs.
func writeSnapshots(dir string, stats renderer.FrameStats) error {
	if stats.Cascades > 0 {
		path := filepath.Join(dir, "cascades.png")
		if err := debug.WriteImage(path, debug.AtlasSnapshot(stats.CascadeLayout, true)); err != nil {
			return fmt.Errorf("writing cascade snapshot: %w", err)
		}
		logger.Info("cascade snapshot written", zap.String("path", path))
	}
	if stats.AtlasLayout.Size > 0 {
		path := filepath.Join(dir, "atlas.png")
		if err := debug.WriteImage(path, debug.AtlasSnapshot(stats.AtlasLayout, false)); err != nil {
			return fmt.Errorf("writing atlas snapshot: %w", err)
		}
		logger.Info("atlas snapshot written", zap.String("path", path))
	}
	return nil
}
