// Package viewer runs the renderer against a scene, either in an SDL2
// window or headless against a recording device.
package viewer

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/xrp/internal/config"
	"github.com/Faultbox/xrp/internal/engine/camera"
	"github.com/Faultbox/xrp/internal/engine/debug"
	"github.com/Faultbox/xrp/internal/engine/glbackend"
	"github.com/Faultbox/xrp/internal/engine/gpu"
	"github.com/Faultbox/xrp/internal/engine/input"
	"github.com/Faultbox/xrp/internal/engine/render"
	"github.com/Faultbox/xrp/internal/engine/renderer"
	"github.com/Faultbox/xrp/internal/engine/scene"
	"github.com/Faultbox/xrp/internal/engine/shadow"
	"github.com/Faultbox/xrp/internal/engine/window"
	"github.com/Faultbox/xrp/internal/logger"
)

// Settings converts the pipeline config into renderer settings.
func Settings(p config.PipelineConfig) renderer.Settings {
	return renderer.Settings{
		DynamicBatching: p.DynamicBatching,
		Instancing:      p.Instancing,
		Shadows: shadow.Settings{
			MapSize:      p.ShadowMapSize,
			Distance:     p.ShadowDistance,
			Cascades:     p.ShadowCascades,
			CascadeSplit: p.CascadeSplit(),
		},
	}
}

// newCamera frames the whole scene.
func newCamera(s *scene.Scene, width, height int) *camera.OrbitCamera {
	cam := camera.NewOrbitCamera("main")
	if b, ok := s.Bounds(); ok {
		cam.FitToBounds(b)
	}
	if height > 0 {
		cam.Aspect = float32(width) / float32(height)
	}
	return cam
}

// Viewer is the interactive window.
type Viewer struct {
	config  *config.Config
	running bool

	scene    *scene.Scene
	window   *window.Window
	device   *glbackend.Device
	drawer   *glbackend.SceneDrawer
	renderer *renderer.Renderer
	input    *input.Input
	camera   *camera.OrbitCamera
	capture  *debug.ScreenshotCapture

	outputDir string
	dumpNext  bool
}

// New opens the window and sets up GL for s. Screenshots and atlas dumps
// are written to outputDir.
func New(cfg *config.Config, s *scene.Scene, outputDir string) (*Viewer, error) {
	v := &Viewer{
		config:    cfg,
		scene:     s,
		outputDir: outputDir,
		capture:   debug.NewScreenshotCapture(outputDir, "xrp"),
	}

	// Create window (this also creates OpenGL context)
	var err error
	v.window, err = window.New(cfg.Window)
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// Device AFTER window, since OpenGL context must exist
	width, height := v.window.GetSize()
	v.device, err = glbackend.New(width, height)
	if err != nil {
		v.window.Close()
		return nil, fmt.Errorf("failed to create device: %w", err)
	}

	v.drawer, err = glbackend.NewSceneDrawer(s)
	if err != nil {
		v.device.Close()
		v.window.Close()
		return nil, fmt.Errorf("failed to create scene drawer: %w", err)
	}
	v.device.SetDrawer(v.drawer)

	v.renderer = renderer.New(Settings(cfg.Pipeline), v.device, renderer.WithStateHook(v.onState))
	v.input = input.New()
	v.camera = newCamera(s, width, height)

	logger.Info("viewer initialized",
		zap.Int("lights", len(s.Lights)),
		zap.Int("renderers", len(s.Renderers)),
	)
	return v, nil
}

// Run starts the main loop.
func (v *Viewer) Run() error {
	v.running = true

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	logger.Info("starting render loop")

	for v.running {
		now := time.Now()
		dt := now.Sub(lastTime).Seconds()
		lastTime = now

		if v.input.Update() {
			v.running = false
			break
		}
		v.handleEvents()

		cams := []render.Camera{v.camera}
		if err := v.renderer.Render(scene.NewContext(v.scene, v.device), cams); err != nil {
			return fmt.Errorf("render error: %w", err)
		}

		if v.input.IsKeyPressed(sdl.SCANCODE_F12) {
			v.screenshot()
		}

		v.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			stats := v.renderer.Stats()
			logger.Debug("fps",
				zap.Int("count", frameCount),
				zap.String("dt", fmt.Sprintf("%.2fms", dt*1000)),
				zap.Int("lights", stats.VisibleLights),
				zap.Int("cascades", stats.Cascades),
				zap.Int("tiles", len(stats.AtlasLayout.Tiles)),
			)
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

func (v *Viewer) handleEvents() {
	for _, event := range v.input.Events() {
		switch event.Type {
		case input.EventWindowResize:
			width, height := v.window.GetSize()
			v.device.Resize(width, height)
			if height > 0 {
				v.camera.Aspect = float32(width) / float32(height)
			}
			v.device.Trim()
		case input.EventMouseDrag:
			v.camera.HandleDrag(event.DX, event.DY)
		case input.EventMouseWheel:
			v.camera.HandleZoom(event.DY)
		case input.EventKeyDown:
			switch event.Key {
			case sdl.SCANCODE_F1:
				v.drawer.ShowBounds = !v.drawer.ShowBounds
			case sdl.SCANCODE_F10:
				v.dumpNext = true
			}
		}
	}
}

// onState reads back the shadow atlases while they are still live.
func (v *Viewer) onState(s renderer.State) {
	if s != renderer.StateSubmitted || !v.dumpNext {
		return
	}
	v.dumpNext = false

	stats := v.renderer.Stats()
	stamp := time.Now().Format("2006-01-02_15-04-05")
	dumps := []struct {
		name   string
		layout shadow.Layout
		rt     *gpu.RenderTexture
	}{
		{"cascades", stats.CascadeLayout, stats.CascadeTexture},
		{"atlas", stats.AtlasLayout, stats.AtlasTexture},
	}
	for _, d := range dumps {
		if d.rt == nil {
			continue
		}
		depth, err := v.device.ReadDepth(d.rt)
		if err != nil {
			logger.Warn("shadow readback failed", zap.String("target", d.name), zap.Error(err))
			continue
		}
		img, err := debug.DepthImage(depth, d.layout.Size, d.layout.Size)
		if err != nil {
			logger.Warn("shadow readback failed", zap.String("target", d.name), zap.Error(err))
			continue
		}
		path := filepath.Join(v.outputDir, fmt.Sprintf("%s_%s.png", d.name, stamp))
		if err := debug.WriteImage(path, img); err != nil {
			logger.Warn("shadow dump failed", zap.String("path", path), zap.Error(err))
			continue
		}
		logger.Info("shadow map written", zap.String("path", path))
	}
}

func (v *Viewer) screenshot() {
	width, height := v.device.Size()
	path, err := v.capture.CaptureFromPixels(v.device.ReadPixels(), width, height)
	if err != nil {
		logger.Warn("screenshot failed", zap.Error(err))
		return
	}
	logger.Info("screenshot saved", zap.String("path", path))
}

// Close cleans up viewer resources.
func (v *Viewer) Close() {
	logger.Info("closing viewer")

	if v.device != nil {
		v.device.Close()
	}
	if v.window != nil {
		v.window.Close()
	}
}
