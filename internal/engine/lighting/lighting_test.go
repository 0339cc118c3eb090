package lighting

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/xrp/internal/engine/gpu"
	"github.com/Faultbox/xrp/internal/engine/render"
)

type fakeCull struct {
	lights    []render.Light
	noCasters map[int]bool
}

func (f *fakeCull) VisibleLights() []render.Light { return f.lights }

func (f *fakeCull) ShadowCasterBounds(i int) (render.Bounds, bool) {
	return render.Bounds{}, !f.noCasters[i]
}

func (f *fakeCull) ComputeDirectionalShadowMatrices(int, int, int, mgl32.Vec3, int, float32) (render.ShadowMatrices, bool) {
	return render.ShadowMatrices{}, false
}

func (f *fakeCull) ComputeSpotShadowMatrices(int) (render.ShadowMatrices, bool) {
	return render.ShadowMatrices{}, false
}

var shadowed = render.ShadowSettings{Mode: render.ShadowsSoft, Strength: 0.7}

func directional(forward mgl32.Vec3, shadow render.ShadowSettings) render.Light {
	m := mgl32.Ident4()
	m.SetCol(2, forward.Vec4(0))
	return render.Light{Color: mgl32.Vec4{1, 1, 1, 1}, LocalToWorld: m, Shadow: shadow, Kind: render.Directional{}}
}

func point(pos mgl32.Vec3, rng float32) render.Light {
	return render.Light{
		Color:        mgl32.Vec4{0.5, 0.5, 0.5, 1},
		LocalToWorld: mgl32.Translate3D(pos.X(), pos.Y(), pos.Z()),
		Kind:         render.Point{Range: rng},
	}
}

func spot(pos mgl32.Vec3, angle float32, shadow render.ShadowSettings) render.Light {
	m := mgl32.Translate3D(pos.X(), pos.Y(), pos.Z())
	m.SetCol(2, mgl32.Vec4{0, -1, 0, 0})
	return render.Light{
		Color:        mgl32.Vec4{1, 0, 0, 1},
		LocalToWorld: m,
		Shadow:       shadow,
		Kind:         render.Spot{Range: 10, Angle: angle},
	}
}

func configure(c Configurator, lights ...render.Light) *Set {
	s := NewSet()
	c.Configure(&fakeCull{lights: lights}, s)
	return s
}

func TestConfigureDirectional(t *testing.T) {
	s := configure(Configurator{Cascades: true}, directional(mgl32.Vec3{0, 0, 2}, shadowed))

	require.Equal(t, 1, s.Count)
	l := s.Lights[0]
	assert.Equal(t, mgl32.Vec4{0, 0, -1, 0}, l.DirectionOrPosition)
	assert.Equal(t, mgl32.Vec4{0.7, 1, 1, 0}, l.Shadow)
	assert.True(t, l.IsMain())
	assert.Equal(t, 0, s.MainLight)
	assert.Equal(t, 0, s.ShadowTileCount)
}

func TestConfigurePoint(t *testing.T) {
	s := configure(Configurator{}, point(mgl32.Vec3{1, 2, 3}, 4))

	l := s.Lights[0]
	assert.Equal(t, mgl32.Vec4{1, 2, 3, 1}, l.DirectionOrPosition)
	assert.Equal(t, mgl32.Vec4{1.0 / 16, 0, 0, 1}, l.Attenuation)
	assert.Equal(t, mgl32.Vec4{}, l.Shadow)
	assert.Equal(t, TechniqueNone, l.Technique)

	zero := configure(Configurator{}, point(mgl32.Vec3{}, 0))
	assert.InDelta(t, 1e5, zero.Lights[0].Attenuation.X(), 1)
}

func TestConfigureSpot(t *testing.T) {
	s := configure(Configurator{}, spot(mgl32.Vec3{0, 5, 0}, 90, shadowed))

	l := s.Lights[0]
	assert.Equal(t, mgl32.Vec4{0, 5, 0, 1}, l.DirectionOrPosition)
	assert.Equal(t, mgl32.Vec4{0, 1, 0, 0}, l.SpotDirection)
	assert.InDelta(t, 0.01, l.Attenuation.X(), 1e-6)
	assert.Equal(t, TechniqueAtlasTile, l.Technique)
	assert.Equal(t, 1, s.ShadowTileCount)

	// The fade runs from 0 at the outer cone to 1 at the inner cone.
	outer := math.Pi / 4
	inner := math.Atan(46.0 / 64.0 * math.Tan(outer))
	fade := func(angle float64) float64 {
		return float64(l.Attenuation.Z())*math.Cos(angle) + float64(l.Attenuation.W())
	}
	assert.InDelta(t, 0, fade(outer), 1e-4)
	assert.InDelta(t, 1, fade(inner), 1e-4)
}

func TestSpotAttenuationClampsRange(t *testing.T) {
	scale, offset := spotAttenuation(0)
	assert.InDelta(t, 1/minAngleRange, scale, 1e-2)
	assert.InDelta(t, -scale, offset, 1e-2)
}

func TestMainLightSelection(t *testing.T) {
	noShadow := render.ShadowSettings{Mode: render.ShadowsHard}
	s := configure(Configurator{Cascades: true},
		directional(mgl32.Vec3{0, -1, 0}, noShadow),
		spot(mgl32.Vec3{}, 60, shadowed),
		directional(mgl32.Vec3{0, -1, 0}, shadowed),
		directional(mgl32.Vec3{1, -1, 0}, shadowed),
	)

	assert.Equal(t, 2, s.MainLight)
	assert.Equal(t, 2, s.ShadowTileCount)
	main, ok := s.Main()
	require.True(t, ok)
	assert.Same(t, &s.Lights[2], main)
	assert.Equal(t, TechniqueAtlasTile, s.Lights[3].Technique)
	assert.Equal(t, TechniqueNone, s.Lights[0].Technique)

	var mains int
	for _, l := range s.Active() {
		if l.IsMain() {
			mains++
		}
	}
	assert.Equal(t, 1, mains)
}

func TestNoMainLightWithoutCascades(t *testing.T) {
	s := configure(Configurator{}, directional(mgl32.Vec3{0, -1, 0}, shadowed))
	assert.Equal(t, -1, s.MainLight)
	assert.Equal(t, 1, s.ShadowTileCount)
	_, ok := s.Main()
	assert.False(t, ok)
	assert.Equal(t, TechniqueAtlasTile, s.Lights[0].Technique)
}

func TestShadowThreshold(t *testing.T) {
	zero := shadowed
	zero.Strength = 0
	negative := shadowed
	negative.Strength = -1
	none := shadowed
	none.Mode = render.ShadowsNone

	for _, shadow := range []render.ShadowSettings{zero, negative, none} {
		s := configure(Configurator{Cascades: true}, spot(mgl32.Vec3{}, 60, shadow))
		assert.Equal(t, 0, s.ShadowTileCount)
		assert.Equal(t, mgl32.Vec4{}, s.Lights[0].Shadow)
	}

	s := NewSet()
	(&Configurator{}).Configure(&fakeCull{
		lights:    []render.Light{spot(mgl32.Vec3{}, 60, shadowed)},
		noCasters: map[int]bool{0: true},
	}, s)
	assert.Equal(t, 0, s.ShadowTileCount)
	assert.Equal(t, float32(0), s.Lights[0].ShadowStrength())
}

func TestTruncation(t *testing.T) {
	var lights []render.Light
	for i := 0; i < 20; i++ {
		lights = append(lights, point(mgl32.Vec3{float32(i), 0, 0}, 1))
	}
	s := configure(Configurator{}, lights...)

	assert.Equal(t, MaxVisibleLights, s.Count)
	assert.Len(t, s.Active(), MaxVisibleLights)
	assert.Equal(t, mgl32.Vec4{15, 0, 0, 1}, s.Lights[15].DirectionOrPosition)
}

func TestConfigureResetsPreviousFrame(t *testing.T) {
	s := NewSet()
	c := Configurator{Cascades: true}
	c.Configure(&fakeCull{lights: []render.Light{
		directional(mgl32.Vec3{0, -1, 0}, shadowed),
		point(mgl32.Vec3{}, 1),
	}}, s)
	c.Configure(&fakeCull{lights: []render.Light{point(mgl32.Vec3{}, 2)}}, s)

	assert.Equal(t, 1, s.Count)
	assert.Equal(t, -1, s.MainLight)
	assert.Equal(t, VisibleLight{}, s.Lights[1])
}

func TestPublish(t *testing.T) {
	s := configure(Configurator{}, point(mgl32.Vec3{1, 2, 3}, 4), spot(mgl32.Vec3{}, 60, shadowed))
	cb := gpu.NewCommandBuffer("lights")
	s.Publish(cb)

	state := gpu.NewGlobalState()
	for _, c := range cb.Commands() {
		state.Apply(c)
	}
	for _, name := range []string{
		gpu.VisibleLightColors,
		gpu.VisibleLightDirectionsOrPositions,
		gpu.VisibleLightAttenuations,
		gpu.VisibleLightSpotDirections,
	} {
		values := state.VectorArrays[gpu.Properties.MustID(name)]
		require.Len(t, values, MaxVisibleLights, name)
		for i := 2; i < MaxVisibleLights; i++ {
			assert.Equal(t, mgl32.Vec4{}, values[i], "%s slot %d", name, i)
		}
	}
	colors := state.VectorArrays[gpu.Properties.MustID(gpu.VisibleLightColors)]
	assert.Equal(t, mgl32.Vec4{1, 0, 0, 1}, colors[1])
}

func TestTechniqueString(t *testing.T) {
	assert.Equal(t, "cascaded", TechniqueCascaded.String())
	assert.Equal(t, "atlas", TechniqueAtlasTile.String())
	assert.Equal(t, "none", TechniqueNone.String())
}
