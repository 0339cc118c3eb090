// Package renderer drives one forward-rendered frame per camera: culling,
// light setup, shadow atlases and the opaque, skybox and transparent draws.
package renderer

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/xrp/internal/engine/gpu"
	"github.com/Faultbox/xrp/internal/engine/lighting"
	"github.com/Faultbox/xrp/internal/engine/render"
	"github.com/Faultbox/xrp/internal/engine/shadow"
	"github.com/Faultbox/xrp/internal/logger"
)

// PassForwardBase is the shader pass used for every scene draw.
const PassForwardBase = "ForwardBase"

const sampleClearCamera = "Clear Camera"

// Settings holds renderer configuration.
type Settings struct {
	DynamicBatching bool
	Instancing      bool
	Shadows         shadow.Settings
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithStateHook calls fn on every state transition.
func WithStateHook(fn func(State)) Option {
	return func(r *Renderer) {
		r.hook = fn
	}
}

// Renderer records and submits frames. It is not safe for concurrent use;
// cameras are rendered one after another.
type Renderer struct {
	settings Settings
	device   gpu.Device

	cameraCmd *gpu.CommandBuffer
	shadowCmd *gpu.CommandBuffer

	configurator lighting.Configurator
	lights       *lighting.Set
	cascades     *shadow.CascadeBuilder
	atlas        *shadow.AtlasBuilder

	hook  func(State)
	state State
	stats FrameStats
}

// New creates a renderer submitting to device.
func New(settings Settings, device gpu.Device, opts ...Option) *Renderer {
	caps := device.Caps()
	r := &Renderer{
		settings:     settings,
		device:       device,
		cameraCmd:    gpu.NewCommandBuffer("Render Camera"),
		shadowCmd:    gpu.NewCommandBuffer("Render Shadow"),
		configurator: lighting.Configurator{Cascades: settings.Shadows.Cascades > 0},
		lights:       lighting.NewSet(),
		cascades:     shadow.NewCascadeBuilder(device, caps),
		atlas:        shadow.NewAtlasBuilder(device, caps),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Settings returns the renderer configuration.
func (r *Renderer) Settings() Settings {
	return r.settings
}

// State returns the current state of the per-camera state machine.
func (r *Renderer) State() State {
	return r.state
}

// Lights returns the light set configured for the last camera.
func (r *Renderer) Lights() *lighting.Set {
	return r.lights
}

// Render draws every camera in order. A camera that cannot be culled is
// skipped. The first submission failure stops the frame.
func (r *Renderer) Render(ctx render.Context, cameras []render.Camera) error {
	for _, cam := range cameras {
		if err := r.renderCamera(ctx, cam); err != nil {
			return fmt.Errorf("rendering camera %q: %w", cam.Name(), err)
		}
	}
	return nil
}

func (r *Renderer) renderCamera(ctx render.Context, cam render.Camera) error {
	r.stats = FrameStats{Camera: cam.Name(), MainLight: -1}
	r.enter(StateIdle)

	params, ok := cam.CullingParameters()
	if !ok {
		logger.Debug("camera skipped, culling unsupported", zap.String("camera", cam.Name()))
		return nil
	}
	params.ShadowDistance = r.ShadowDistance(cam.FarClipPlane())

	cull := ctx.Cull(params)
	r.enter(StateCulled)

	// Shadow targets live until the camera is submitted, whatever happens.
	var transient []*gpu.RenderTexture
	defer func() {
		for _, rt := range transient {
			r.device.ReleaseTemporary(rt)
		}
	}()

	if visible := len(cull.VisibleLights()); visible > 0 {
		transient = r.renderLightsAndShadows(ctx, cull, params.ShadowDistance)
	} else {
		// Keep the previous frame's techniques from leaking into this one.
		r.lights.Reset()
		r.lights.Publish(r.cameraCmd)
		r.disableCascadeKeywords()
		r.cameraCmd.DisableKeyword(gpu.KeywordShadowsSoft)
	}

	ctx.SetupCameraProperties(cam)

	flags := cam.ClearFlags()
	r.cameraCmd.BeginSample(sampleClearCamera)
	r.cameraCmd.SetRenderTarget(nil, gpu.LoadLoad, gpu.StoreStore, gpu.ClearNone)
	if flags.ClearsDepth() || flags.ClearsColor() {
		r.cameraCmd.ClearRenderTarget(flags.ClearsDepth(), flags.ClearsColor(), cam.BackgroundColor())
	}
	r.cameraCmd.EndSample(sampleClearCamera)
	ctx.ExecuteCommandBuffer(r.cameraCmd)
	r.cameraCmd.Clear()
	r.enter(StateCleared)

	ctx.DrawRenderers(cull,
		render.DrawingSettings{
			Pass:            PassForwardBase,
			Sort:            render.SortCommonOpaque,
			DynamicBatching: r.settings.DynamicBatching,
			Instancing:      r.settings.Instancing,
		},
		render.FilteringSettings{Queue: render.QueueOpaque, LayerMask: -1},
	)
	r.enter(StateOpaqueDrawn)

	if flags == render.ClearSkybox {
		ctx.DrawSkybox(cam)
		r.enter(StateSkyboxDrawn)
	}

	ctx.DrawRenderers(cull,
		render.DrawingSettings{Pass: PassForwardBase, Sort: render.SortCommonTransparent},
		render.FilteringSettings{Queue: render.QueueTransparent, LayerMask: -1},
	)
	r.enter(StateTransparentDrawn)

	if err := ctx.Submit(); err != nil {
		r.enter(StateIdle)
		return fmt.Errorf("submitting: %w", err)
	}
	r.enter(StateSubmitted)

	logger.Debug("camera rendered",
		zap.String("camera", cam.Name()),
		zap.Int("lights", r.stats.VisibleLights),
		zap.Int("mainLight", r.stats.MainLight),
		zap.Int("shadowTiles", r.stats.ShadowTiles),
	)
	r.enter(StateIdle)
	return nil
}

// renderLightsAndShadows configures the visible lights and renders both
// shadow atlases. It returns the textures to release after submission.
func (r *Renderer) renderLightsAndShadows(ctx render.Context, cull render.CullingResults, distance float32) []*gpu.RenderTexture {
	var transient []*gpu.RenderTexture

	r.configurator.Configure(cull, r.lights)
	r.lights.Publish(r.cameraCmd)
	r.stats.VisibleLights = r.lights.Count
	r.stats.MainLight = r.lights.MainLight
	r.stats.ShadowTiles = r.lights.ShadowTileCount
	r.enter(StateLightsConfigured)

	settings := r.settings.Shadows
	settings.Distance = distance

	if r.lights.MainLight >= 0 {
		ca, err := r.cascades.Build(ctx, r.shadowCmd, cull, r.lights, settings)
		r.shadowCmd.Clear()
		if err != nil {
			logger.Warn("cascaded shadows disabled", zap.Error(err))
			r.disableCascadeKeywords()
		} else {
			transient = append(transient, ca.Texture)
			r.stats.Cascades = len(ca.Layout.Tiles)
			r.stats.CascadeLayout = ca.Layout
			r.stats.CascadeTexture = ca.Texture
		}
		r.enter(StateCascadesRendered)
	} else {
		r.disableCascadeKeywords()
	}

	atlas, err := r.atlas.Build(ctx, r.shadowCmd, cull, r.lights, settings)
	r.shadowCmd.Clear()
	if err != nil {
		logger.Warn("shadow atlas disabled", zap.Error(err))
		r.cameraCmd.DisableKeyword(gpu.KeywordShadowsSoft)
	} else {
		transient = append(transient, atlas.Texture)
		r.stats.AtlasLayout = atlas.Layout
		r.stats.AtlasTexture = atlas.Texture
	}
	r.enter(StateShadowsRendered)
	return transient
}

func (r *Renderer) disableCascadeKeywords() {
	r.cameraCmd.DisableKeyword(gpu.KeywordCascadedShadowsHard)
	r.cameraCmd.DisableKeyword(gpu.KeywordCascadedShadowsSoft)
}

func (r *Renderer) enter(s State) {
	r.state = s
	r.stats.States = append(r.stats.States, s)
	if r.hook != nil {
		r.hook(s)
	}
}

// Stats returns what happened to the last rendered camera.
func (r *Renderer) Stats() FrameStats {
	s := r.stats
	s.States = append([]State(nil), r.stats.States...)
	return s
}

// ShadowDistance returns the distance shadows are rendered to for a camera
// with the given far plane.
func (r *Renderer) ShadowDistance(far float32) float32 {
	return mgl32.Clamp(r.settings.Shadows.Distance, 0, far)
}
