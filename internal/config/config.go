// Package config handles renderer configuration loading and management.
package config

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// ShadowMapSizes are the supported shadow atlas resolutions.
var ShadowMapSizes = []int{256, 512, 1024, 2048, 4096}

var (
	ErrInvalidShadowMapSize  = errors.New("shadow_map_size must be one of 256, 512, 1024, 2048, 4096")
	ErrInvalidShadowDistance = errors.New("shadow_distance must not be negative")
	ErrInvalidCascades       = errors.New("shadow_cascades must be 0, 2 or 4")
	ErrInvalidCascadeSplit   = errors.New("cascade split ratios must be increasing and within 0..1")
	ErrInvalidWindow         = errors.New("window size must be positive")
)

// Config holds all renderer settings.
type Config struct {
	Pipeline PipelineConfig `yaml:"pipeline"`
	Window   WindowConfig   `yaml:"window"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// PipelineConfig holds the render pipeline settings.
type PipelineConfig struct {
	DynamicBatching   bool      `yaml:"dynamic_batching"`
	Instancing        bool      `yaml:"instancing"`
	ShadowMapSize     int       `yaml:"shadow_map_size"`
	ShadowDistance    float32   `yaml:"shadow_distance"`
	ShadowCascades    int       `yaml:"shadow_cascades"`
	TwoCascadesSplit  float32   `yaml:"two_cascades_split"`
	FourCascadesSplit []float32 `yaml:"four_cascades_split,flow"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			DynamicBatching:   false,
			Instancing:        false,
			ShadowMapSize:     1024,
			ShadowDistance:    100,
			ShadowCascades:    4,
			TwoCascadesSplit:  0.25,
			FourCascadesSplit: []float32{0.067, 0.2, 0.467},
		},
		Window: WindowConfig{
			Title:      "XRP",
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks the pipeline and window settings.
func (c *Config) Validate() error {
	p := &c.Pipeline
	if !validMapSize(p.ShadowMapSize) {
		return fmt.Errorf("%w: got %d", ErrInvalidShadowMapSize, p.ShadowMapSize)
	}
	if p.ShadowDistance < 0 {
		return fmt.Errorf("%w: got %g", ErrInvalidShadowDistance, p.ShadowDistance)
	}
	switch p.ShadowCascades {
	case 0, 2, 4:
	default:
		return fmt.Errorf("%w: got %d", ErrInvalidCascades, p.ShadowCascades)
	}
	if p.TwoCascadesSplit < 0 || p.TwoCascadesSplit > 1 {
		return fmt.Errorf("%w: two_cascades_split %g", ErrInvalidCascadeSplit, p.TwoCascadesSplit)
	}
	if len(p.FourCascadesSplit) != 3 {
		return fmt.Errorf("%w: four_cascades_split needs 3 values, got %d", ErrInvalidCascadeSplit, len(p.FourCascadesSplit))
	}
	prev := float32(0)
	for _, r := range p.FourCascadesSplit {
		if r < prev || r > 1 {
			return fmt.Errorf("%w: four_cascades_split %v", ErrInvalidCascadeSplit, p.FourCascadesSplit)
		}
		prev = r
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidWindow, c.Window.Width, c.Window.Height)
	}
	return nil
}

func validMapSize(size int) bool {
	for _, s := range ShadowMapSizes {
		if s == size {
			return true
		}
	}
	return false
}

// CascadeSplit returns the split ratios handed to the cascade builder: all
// three ratios for four cascades, otherwise the two-cascade ratio in x.
func (p *PipelineConfig) CascadeSplit() mgl32.Vec3 {
	if p.ShadowCascades == 4 && len(p.FourCascadesSplit) == 3 {
		return mgl32.Vec3{p.FourCascadesSplit[0], p.FourCascadesSplit[1], p.FourCascadesSplit[2]}
	}
	return mgl32.Vec3{p.TwoCascadesSplit, 0, 0}
}
