// Package main is the entry point for the XRP renderer demo.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/xrp/internal/config"
	"github.com/Faultbox/xrp/internal/engine/scene"
	"github.com/Faultbox/xrp/internal/logger"
	"github.com/Faultbox/xrp/internal/viewer"
)

var (
	flagHeadless   = flag.Bool("headless", false, "Render without a window against a recording device")
	flagFrames     = flag.Int("frames", 1, "Frames to render in headless mode")
	flagScene      = flag.String("scene", "", "Scene file (YAML); the built-in demo scene when empty")
	flagOutput     = flag.String("output", ".", "Directory for screenshots and shadow atlas dumps")
	flagDumpAtlas  = flag.Bool("dump-atlas", false, "Write shadow atlas snapshots after a headless run")
	flagSaveConfig = flag.Bool("save-config", false, "Write the effective config to the user config directory")
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== XRP Renderer ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	if *flagSaveConfig {
		if err := cfg.Save(); err != nil {
			logger.Error("failed to save config", zap.Error(err))
			os.Exit(1)
		}
		logger.Info("config saved", zap.String("dir", config.ConfigDir()))
	}

	s, err := loadScene(*flagScene)
	if err != nil {
		logger.Error("failed to load scene", zap.Error(err))
		os.Exit(1)
	}

	if *flagHeadless {
		opts := viewer.HeadlessOptions{
			Frames:    *flagFrames,
			Width:     cfg.Window.Width,
			Height:    cfg.Window.Height,
			OrbitStep: 0.05,
		}
		if *flagDumpAtlas {
			opts.AtlasDir = *flagOutput
		}
		if _, err := viewer.RunHeadless(cfg, s, opts); err != nil {
			logger.Error("headless run failed", zap.Error(err))
			os.Exit(1)
		}
		return
	}

	// Create and run viewer
	v, err := viewer.New(cfg, s, *flagOutput)
	if err != nil {
		logger.Error("failed to create viewer", zap.Error(err))
		os.Exit(1)
	}
	defer v.Close()

	if err := v.Run(); err != nil {
		logger.Error("viewer error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("viewer closed normally")
}

func loadScene(path string) (*scene.Scene, error) {
	if path == "" {
		return scene.Demo(), nil
	}
	return scene.Load(path)
}
