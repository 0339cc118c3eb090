package lighting

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/xrp/internal/engine/render"
	"github.com/Faultbox/xrp/internal/logger"
)

const (
	// innerOuterRatio fixes the inner cone tangent relative to the outer one.
	innerOuterRatio = 46.0 / 64.0
	minAngleRange   = 0.001
	minRangeSquared = 0.00001
)

// Configurator fills a Set from culling results.
type Configurator struct {
	// Cascades enables the cascaded path for the main directional light.
	// Without it every shadowed directional light takes an atlas tile.
	Cascades bool
}

// Configure rebuilds s from the visible lights of cull. At most
// MaxVisibleLights are kept, in culling order.
func (c *Configurator) Configure(cull render.CullingResults, s *Set) {
	s.Reset()

	lights := cull.VisibleLights()
	n := len(lights)
	if n > MaxVisibleLights {
		logger.Debug("visible lights truncated",
			zap.Int("visible", n),
			zap.Int("kept", MaxVisibleLights),
		)
		n = MaxVisibleLights
	}

	for i := 0; i < n; i++ {
		src := &lights[i]
		dst := &s.Lights[i]
		*dst = VisibleLight{
			Type:        src.Type(),
			Color:       src.Color,
			Attenuation: mgl32.Vec4{0, 0, 0, 1},
		}

		switch k := src.Kind.(type) {
		case render.Directional:
			dir := src.Forward().Mul(-1).Normalize()
			dst.DirectionOrPosition = dir.Vec4(0)
			dst.Shadow = s.configureShadows(i, src, cull)
			dst.Shadow[2] = 1
			if dst.ShadowStrength() > 0 {
				if c.Cascades && s.MainLight < 0 {
					s.MainLight = i
					dst.Technique = TechniqueCascaded
					// The cascade atlas renders it, not a generic tile.
					s.ShadowTileCount--
				} else {
					dst.Technique = TechniqueAtlasTile
				}
			}
		case render.Spot:
			dst.DirectionOrPosition = src.Position().Vec4(1)
			dst.Attenuation[0] = rangeAttenuation(k.Range)
			dst.SpotDirection = src.Forward().Mul(-1).Normalize().Vec4(0)
			dst.Attenuation[2], dst.Attenuation[3] = spotAttenuation(k.Angle)
			dst.Shadow = s.configureShadows(i, src, cull)
			if dst.ShadowStrength() > 0 {
				dst.Technique = TechniqueAtlasTile
			}
		default:
			dst.DirectionOrPosition = src.Position().Vec4(1)
			dst.Attenuation[0] = rangeAttenuation(src.Range())
		}
	}
	s.Count = n
}

// configureShadows returns (strength, soft, 0, 0) for a light with shadows
// and visible casters, counting one tile for it. Otherwise it returns zero.
func (s *Set) configureShadows(index int, l *render.Light, cull render.CullingResults) mgl32.Vec4 {
	if l.Shadow.Mode == render.ShadowsNone || l.Shadow.Strength <= 0 {
		return mgl32.Vec4{}
	}
	if _, ok := cull.ShadowCasterBounds(index); !ok {
		return mgl32.Vec4{}
	}
	s.ShadowTileCount++
	var soft float32
	if l.Shadow.Mode == render.ShadowsSoft {
		soft = 1
	}
	return mgl32.Vec4{l.Shadow.Strength, soft, 0, 0}
}

func rangeAttenuation(r float32) float32 {
	return 1 / float32(math.Max(float64(r*r), minRangeSquared))
}

// spotAttenuation returns the (scale, offset) pair that maps the cosine of
// the angle to the spot axis onto a 0..1 fade between the outer and inner cone.
func spotAttenuation(angleDeg float32) (float32, float32) {
	outer := float64(mgl32.DegToRad(0.5 * angleDeg))
	outerCos := math.Cos(outer)
	innerCos := math.Cos(math.Atan(innerOuterRatio * math.Tan(outer)))
	angleRange := math.Max(innerCos-outerCos, minAngleRange)
	scale := 1 / angleRange
	return float32(scale), float32(-outerCos * scale)
}
