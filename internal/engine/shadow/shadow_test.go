package shadow

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/xrp/internal/engine/gpu"
	"github.com/Faultbox/xrp/internal/engine/lighting"
	"github.com/Faultbox/xrp/internal/engine/render"
)

func TestSplitFor(t *testing.T) {
	thresholds := []int{1, 4, 9, 16}
	for n := 0; n <= MaxTiles; n++ {
		split := SplitFor(n)
		assert.GreaterOrEqual(t, split*split, n, "tiles %d", n)

		want := 1
		for i, th := range thresholds {
			if n <= th {
				want = i + 1
				break
			}
		}
		assert.Equal(t, want, split, "tiles %d", n)
	}
	assert.Equal(t, 4, SplitFor(40))
}

func TestTileRectScissor(t *testing.T) {
	for _, size := range []float32{64, 256, 341} {
		for split := 1; split <= 4; split++ {
			for i := 0; i < split*split; i++ {
				tile := TileRect(i, split, size)
				assert.Equal(t, size-8, tile.Scissor.W)
				assert.Equal(t, size-8, tile.Scissor.H)
				assert.Equal(t, tile.Viewport.X+4, tile.Scissor.X)
				assert.Equal(t, tile.Viewport.Y+4, tile.Scissor.Y)
				assert.Equal(t, size, tile.Viewport.W)
			}
		}
	}

	tile := TileRect(5, 3, 100)
	assert.Equal(t, mgl32.Vec2{2, 1}, tile.Offset)
	assert.Equal(t, gpu.Rect{X: 200, Y: 100, W: 100, H: 100}, tile.Viewport)
}

func TestCorrectProjection(t *testing.T) {
	proj := mgl32.Perspective(1, 1, 0.1, 100)
	assert.Equal(t, proj, CorrectProjection(proj, false))

	corrected := CorrectProjection(proj, true)
	for col := 0; col < 4; col++ {
		assert.Equal(t, -proj.At(2, col), corrected.At(2, col))
		assert.Equal(t, proj.At(1, col), corrected.At(1, col))
	}
}

func TestClipToTexture(t *testing.T) {
	m := ClipToTexture()
	assert.Equal(t, mgl32.Vec3{0, 0, 0}, mgl32.TransformCoordinate(mgl32.Vec3{-1, -1, -1}, m))
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, mgl32.TransformCoordinate(mgl32.Vec3{1, 1, 1}, m))
	assert.Equal(t, mgl32.Vec3{0.5, 0.5, 0.5}, mgl32.TransformCoordinate(mgl32.Vec3{}, m))
}

func TestTileRemap(t *testing.T) {
	m := TileRemap(mgl32.Vec2{1, 2}, 0.25)
	lo := mgl32.TransformCoordinate(mgl32.Vec3{0, 0, 0.3}, m)
	hi := mgl32.TransformCoordinate(mgl32.Vec3{1, 1, 0.3}, m)
	assert.Equal(t, mgl32.Vec3{0.25, 0.5, 0.3}, lo)
	assert.Equal(t, mgl32.Vec3{0.5, 0.75, 0.3}, hi)
}

func testSettings() Settings {
	return Settings{
		MapSize:      1024,
		Distance:     50,
		Cascades:     4,
		CascadeSplit: mgl32.Vec3{0.067, 0.2, 0.467},
	}
}

func configure(cull *fakeCull, cascades bool) *lighting.Set {
	set := lighting.NewSet()
	c := lighting.Configurator{Cascades: cascades}
	c.Configure(cull, set)
	return set
}

func TestCascadeBuilderErrors(t *testing.T) {
	pool := gpu.NewRecorder(gpu.Caps{})
	b := NewCascadeBuilder(pool, pool.Caps())
	cb := gpu.NewCommandBuffer("test")

	cull := &fakeCull{lights: []render.Light{spot(0, 1)}}
	_, err := b.Build(&fakeContext{}, cb, cull, configure(cull, true), testSettings())
	assert.ErrorIs(t, err, ErrNoMainLight)

	cull = &fakeCull{lights: []render.Light{directional(render.ShadowsSoft)}}
	s := testSettings()
	s.Cascades = 3
	_, err = b.Build(&fakeContext{}, cb, cull, configure(cull, true), s)
	assert.ErrorIs(t, err, ErrCascadeCount)

	s = testSettings()
	s.MapSize = 1 << 20
	_, err = b.Build(&fakeContext{}, cb, cull, configure(cull, true), s)
	assert.ErrorIs(t, err, gpu.ErrTextureTooLarge)
	assert.Equal(t, 0, pool.Acquired())
}

func TestCascadeBuilder(t *testing.T) {
	pool := gpu.NewRecorder(gpu.Caps{})
	b := NewCascadeBuilder(pool, pool.Caps())
	ctx := &fakeContext{}
	cull := &fakeCull{
		lights:   []render.Light{directional(render.ShadowsHard)},
		failCasc: map[int]bool{2: true},
	}

	atlas, err := b.Build(ctx, gpu.NewCommandBuffer("test"), cull, configure(cull, true), testSettings())
	require.NoError(t, err)
	assert.Equal(t, 1, pool.Live())

	require.Len(t, atlas.Layout.Tiles, 3)
	assert.Len(t, ctx.shadows, 3)
	assert.Equal(t, mgl32.Vec4{0, 0, 0, 25}, atlas.CullingSpheres[0])
	assert.Equal(t, mgl32.Vec4{0, 0, 0, 100}, atlas.CullingSpheres[1])
	assert.Equal(t, mgl32.Vec4{}, atlas.CullingSpheres[2])
	assert.Equal(t, mgl32.Mat4{}, atlas.Matrices[2])
	assert.Equal(t, mgl32.Mat4{}, atlas.Matrices[4])

	// Each cascade samples its own quadrant.
	for _, a := range atlas.Layout.Tiles {
		p := mgl32.TransformCoordinate(mgl32.Vec3{0, 0, 0}, atlas.Matrices[a.Cascade])
		assert.InDelta(t, (a.Tile.Offset.X()+0.5)*0.5, p.X(), 1e-5)
		assert.InDelta(t, (a.Tile.Offset.Y()+0.5)*0.5, p.Y(), 1e-5)
	}

	state := ctx.state()
	assert.True(t, state.Keyword(gpu.KeywordCascadedShadowsHard))
	assert.False(t, state.Keyword(gpu.KeywordCascadedShadowsSoft))
	assert.Equal(t, float32(0.05), state.Floats[idShadowBias])
	assert.Equal(t, atlas.Texture, state.Textures[idCascadedShadowMap])
	assert.Equal(t, mgl32.Vec4{1.0 / 1024, 1.0 / 1024, 1024, 1024}, state.Vectors[idCascadedShadowMapSize])

	var bound *gpu.SetRenderTarget
	for _, c := range ctx.cmds {
		if rt, ok := c.(gpu.SetRenderTarget); ok {
			bound = &rt
		}
	}
	require.NotNil(t, bound)
	assert.Equal(t, gpu.ClearDepth, bound.Clear)
	assert.Equal(t, gpu.LoadDontCare, bound.Load)
	assert.Equal(t, 16, bound.Target.Desc.DepthBits)
}

func TestCascadeSentinel(t *testing.T) {
	pool := gpu.NewRecorder(gpu.Caps{})
	assert.Equal(t, mgl32.Mat4{}, NewCascadeBuilder(pool, gpu.Caps{}).matrices[MaxCascades])
	assert.Equal(t, float32(1), NewCascadeBuilder(pool, gpu.Caps{ReversedZ: true}).matrices[MaxCascades].At(3, 3))
}

func TestAtlasBuilderCompactsTiles(t *testing.T) {
	pool := gpu.NewRecorder(gpu.Caps{})
	b := NewAtlasBuilder(pool, pool.Caps())
	ctx := &fakeContext{}
	cull := &fakeCull{
		lights: []render.Light{
			directional(render.ShadowsSoft),
			spot(-4, 1),
			spot(0, 1),
			spot(4, 0),
			spot(8, 0.5),
		},
		fail: map[int]bool{2: true},
	}
	set := configure(cull, true)
	require.Equal(t, 0, set.MainLight)
	require.Equal(t, 3, set.ShadowTileCount)

	atlas, err := b.Build(ctx, gpu.NewCommandBuffer("test"), cull, set, testSettings())
	require.NoError(t, err)

	assert.Equal(t, 2, atlas.Layout.Split)
	assert.Equal(t, float32(512), atlas.Layout.TileSize)
	require.Len(t, atlas.Layout.Tiles, 2)
	assert.Equal(t, 1, atlas.Layout.Tiles[0].Light)
	assert.Equal(t, 4, atlas.Layout.Tiles[1].Light)
	assert.Equal(t, 1, atlas.Layout.Tiles[1].Tile.Index)

	assert.Equal(t, float32(0), set.Lights[2].ShadowStrength())
	assert.Equal(t, lighting.TechniqueNone, set.Lights[2].Technique)
	assert.Equal(t, mgl32.Vec2{0.5, 0}, set.Lights[4].TileOffset())
	assert.Equal(t, mgl32.Mat4{}, atlas.Matrices[0])
	assert.Equal(t, mgl32.Mat4{}, atlas.Matrices[2])
	assert.Len(t, ctx.shadows, 2)

	state := ctx.state()
	assert.Equal(t, mgl32.Vec4{0.5, 2500, 0, 0}, state.Vectors[idGlobalShadowData])
	// Bias and soft toggle come from the first visible light.
	assert.Equal(t, float32(0.05), state.Floats[idShadowBias])
	assert.True(t, state.Keyword(gpu.KeywordShadowsSoft))
	require.Len(t, state.VectorArrays[idShadowData], lighting.MaxVisibleLights)
	assert.Equal(t, mgl32.Vec4{0.5, 0, 0.5, 0}, state.VectorArrays[idShadowData][4])

	// The spot straight above the origin would see it in the middle of its tile.
	p := atlas.Matrices[4].Mul4x1(mgl32.Vec4{8, 0, 0, 1})
	uv := p.Vec3().Mul(1 / p.W())
	assert.InDelta(t, 0.75, uv.X(), 1e-4)
	assert.InDelta(t, 0.25, uv.Y(), 1e-4)
}

func TestAtlasSingleTileIsNotRemapped(t *testing.T) {
	pool := gpu.NewRecorder(gpu.Caps{ReversedZ: true})
	b := NewAtlasBuilder(pool, pool.Caps())
	cull := &fakeCull{lights: []render.Light{spot(0, 1)}}

	atlas, err := b.Build(&fakeContext{}, gpu.NewCommandBuffer("test"), cull, configure(cull, true), testSettings())
	require.NoError(t, err)

	m, ok := cull.ComputeSpotShadowMatrices(0)
	require.True(t, ok)
	assert.Equal(t, WorldToShadow(m.View, m.Proj, true), atlas.Matrices[0])
	assert.Equal(t, 1, atlas.Layout.Split)
}
