// Package lighting converts culled engine lights into the fixed GPU light
// layout and decides each light's shadow technique.
package lighting

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/xrp/internal/engine/gpu"
	"github.com/Faultbox/xrp/internal/engine/render"
)

// MaxVisibleLights is the number of light slots in the shader layout.
// Lights past this count are dropped.
const MaxVisibleLights = 16

// Technique is how a light's shadows are rendered this frame.
type Technique int

const (
	TechniqueNone Technique = iota
	// TechniqueCascaded marks the main directional light, rendered into the
	// cascade atlas.
	TechniqueCascaded
	// TechniqueAtlasTile marks a light that takes one tile of the shadow atlas.
	TechniqueAtlasTile
)

func (t Technique) String() string {
	switch t {
	case TechniqueCascaded:
		return "cascaded"
	case TechniqueAtlasTile:
		return "atlas"
	}
	return "none"
}

// VisibleLight is the GPU-ready form of one light.
type VisibleLight struct {
	Type                render.LightType
	Color               mgl32.Vec4
	DirectionOrPosition mgl32.Vec4
	// Attenuation is (1/range², 0, spot scale, spot offset).
	Attenuation   mgl32.Vec4
	SpotDirection mgl32.Vec4
	// Shadow is (strength, soft, tile u, tile v). Directional lights keep
	// z = 1 until the atlas assigns them a tile.
	Shadow    mgl32.Vec4
	Technique Technique
}

// ShadowStrength returns the shadow strength; <= 0 means no shadow.
func (l *VisibleLight) ShadowStrength() float32 {
	return l.Shadow[0]
}

// SoftShadows reports whether the light asked for soft shadows.
func (l *VisibleLight) SoftShadows() bool {
	return l.Shadow[1] > 0
}

// TileOffset returns the atlas tile origin in texture space.
func (l *VisibleLight) TileOffset() mgl32.Vec2 {
	return mgl32.Vec2{l.Shadow[2], l.Shadow[3]}
}

// IsMain reports whether this is the cascaded main light.
func (l *VisibleLight) IsMain() bool {
	return l.Technique == TechniqueCascaded
}

// DisableShadows zeroes the strength and drops the light from shadow work.
func (l *VisibleLight) DisableShadows() {
	l.Shadow[0] = 0
	l.Technique = TechniqueNone
}

// Set is the per-frame light arena. Slots past Count stay zeroed.
type Set struct {
	Lights          [MaxVisibleLights]VisibleLight
	Count           int
	MainLight       int
	ShadowTileCount int
}

// NewSet returns an empty set.
func NewSet() *Set {
	s := &Set{}
	s.Reset()
	return s
}

// Reset clears every slot.
func (s *Set) Reset() {
	s.Lights = [MaxVisibleLights]VisibleLight{}
	s.Count = 0
	s.MainLight = -1
	s.ShadowTileCount = 0
}

// Active returns the occupied slots.
func (s *Set) Active() []VisibleLight {
	return s.Lights[:s.Count]
}

// Main returns the cascaded main light, if any.
func (s *Set) Main() (*VisibleLight, bool) {
	if s.MainLight < 0 {
		return nil, false
	}
	return &s.Lights[s.MainLight], true
}

func (s *Set) vectors(field func(*VisibleLight) mgl32.Vec4) []mgl32.Vec4 {
	out := make([]mgl32.Vec4, MaxVisibleLights)
	for i := 0; i < s.Count; i++ {
		out[i] = field(&s.Lights[i])
	}
	return out
}

// Colors returns all 16 color slots.
func (s *Set) Colors() []mgl32.Vec4 {
	return s.vectors(func(l *VisibleLight) mgl32.Vec4 { return l.Color })
}

// DirectionsOrPositions returns all 16 direction/position slots.
func (s *Set) DirectionsOrPositions() []mgl32.Vec4 {
	return s.vectors(func(l *VisibleLight) mgl32.Vec4 { return l.DirectionOrPosition })
}

// Attenuations returns all 16 attenuation slots.
func (s *Set) Attenuations() []mgl32.Vec4 {
	return s.vectors(func(l *VisibleLight) mgl32.Vec4 { return l.Attenuation })
}

// SpotDirections returns all 16 spot direction slots.
func (s *Set) SpotDirections() []mgl32.Vec4 {
	return s.vectors(func(l *VisibleLight) mgl32.Vec4 { return l.SpotDirection })
}

// ShadowData returns all 16 shadow data slots.
func (s *Set) ShadowData() []mgl32.Vec4 {
	return s.vectors(func(l *VisibleLight) mgl32.Vec4 { return l.Shadow })
}

var (
	idVisibleLightColors     = gpu.Properties.MustID(gpu.VisibleLightColors)
	idVisibleLightDirections = gpu.Properties.MustID(gpu.VisibleLightDirectionsOrPositions)
	idVisibleLightAtten      = gpu.Properties.MustID(gpu.VisibleLightAttenuations)
	idVisibleLightSpotDirs   = gpu.Properties.MustID(gpu.VisibleLightSpotDirections)
)

// Publish records the four light arrays as global shader parameters.
func (s *Set) Publish(cb *gpu.CommandBuffer) {
	cb.SetGlobalVectorArray(idVisibleLightColors, s.Colors())
	cb.SetGlobalVectorArray(idVisibleLightDirections, s.DirectionsOrPositions())
	cb.SetGlobalVectorArray(idVisibleLightAtten, s.Attenuations())
	cb.SetGlobalVectorArray(idVisibleLightSpotDirs, s.SpotDirections())
}
