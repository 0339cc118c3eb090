package renderer

import (
	"github.com/Faultbox/xrp/internal/engine/gpu"
	"github.com/Faultbox/xrp/internal/engine/shadow"
)

// State is a step of the per-camera render sequence.
type State int

const (
	StateIdle State = iota
	StateCulled
	StateLightsConfigured
	StateCascadesRendered
	StateShadowsRendered
	StateCleared
	StateOpaqueDrawn
	StateSkyboxDrawn
	StateTransparentDrawn
	StateSubmitted
)

var stateNames = [...]string{
	StateIdle:             "Idle",
	StateCulled:           "Culled",
	StateLightsConfigured: "LightsConfigured",
	StateCascadesRendered: "CascadesRendered",
	StateShadowsRendered:  "ShadowsRendered",
	StateCleared:          "Cleared",
	StateOpaqueDrawn:      "OpaqueDrawn",
	StateSkyboxDrawn:      "SkyboxDrawn",
	StateTransparentDrawn: "TransparentDrawn",
	StateSubmitted:        "Submitted",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "Unknown"
	}
	return stateNames[s]
}

// FrameStats describes the last rendered camera.
type FrameStats struct {
	Camera        string
	VisibleLights int
	// MainLight is the cascaded light index, or -1.
	MainLight   int
	ShadowTiles int
	// Cascades is the number of cascades actually rendered.
	Cascades      int
	CascadeLayout shadow.Layout
	AtlasLayout   shadow.Layout
	// The shadow targets are live only until the camera leaves
	// StateSubmitted; a state hook can read them back then.
	CascadeTexture *gpu.RenderTexture
	AtlasTexture   *gpu.RenderTexture
	States         []State
}
