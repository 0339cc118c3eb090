package shadow

import (
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/xrp/internal/engine/gpu"
	"github.com/Faultbox/xrp/internal/engine/lighting"
	"github.com/Faultbox/xrp/internal/engine/render"
	"github.com/Faultbox/xrp/internal/logger"
)

// MaxCascades is the cascade capacity of the shader layout.
const MaxCascades = 4

// cascadeSplit is the fixed 2x2 grid of the cascade atlas.
const cascadeSplit = 2

// CascadeAtlas is the output of one cascade pass.
type CascadeAtlas struct {
	Texture *gpu.RenderTexture
	Layout  Layout
	// Matrices has one slot per cascade plus a sentinel used when no
	// cascade sphere contains the fragment.
	Matrices       [MaxCascades + 1]mgl32.Mat4
	CullingSpheres [MaxCascades]mgl32.Vec4
}

// CascadeBuilder renders the main directional light into a 2x2 atlas.
type CascadeBuilder struct {
	pool      gpu.TexturePool
	reversedZ bool
	matrices  [MaxCascades + 1]mgl32.Mat4
	spheres   [MaxCascades]mgl32.Vec4
}

// NewCascadeBuilder creates a builder for a device with the given caps.
func NewCascadeBuilder(pool gpu.TexturePool, caps gpu.Caps) *CascadeBuilder {
	b := &CascadeBuilder{pool: pool, reversedZ: caps.ReversedZ}
	if b.reversedZ {
		// Fragments past the last cascade land on the far plane, which is
		// depth 0 when reversed.
		b.matrices[MaxCascades].Set(3, 3, 1)
	}
	return b
}

// Build renders every cascade of the main light and publishes the cascade
// atlas parameters. The caller owns the returned texture and must release it.
func (b *CascadeBuilder) Build(ctx render.Context, cb *gpu.CommandBuffer, cull render.CullingResults, lights *lighting.Set, s Settings) (*CascadeAtlas, error) {
	main, ok := lights.Main()
	if !ok {
		return nil, ErrNoMainLight
	}
	if s.Cascades != 2 && s.Cascades != 4 {
		return nil, ErrCascadeCount
	}

	tileSize := float32(s.MapSize / cascadeSplit)
	rt, err := acquireTarget(b.pool, cb, s.MapSize)
	if err != nil {
		return nil, err
	}
	cb.BeginSample(sampleRenderShadows)
	flush(ctx, cb)

	index := lights.MainLight
	src := &cull.VisibleLights()[index]
	cb.SetGlobalFloat(idShadowBias, src.Shadow.Bias)

	for i := 0; i < MaxCascades; i++ {
		b.matrices[i] = mgl32.Mat4{}
		b.spheres[i] = mgl32.Vec4{}
	}

	layout := Layout{Size: s.MapSize, Split: cascadeSplit, TileSize: tileSize}
	for i := 0; i < s.Cascades; i++ {
		m, ok := cull.ComputeDirectionalShadowMatrices(index, i, s.Cascades, s.CascadeSplit, int(tileSize), src.Shadow.NearPlane)
		if !ok {
			// A zero sphere is never selected by the shader.
			logger.Debug("cascade matrices unavailable",
				zap.Int("light", index),
				zap.Int("cascade", i),
			)
			continue
		}

		tile := TileRect(i, cascadeSplit, tileSize)
		tile.configure(cb)
		cb.SetViewProjectionMatrices(m.View, m.Proj)
		flush(ctx, cb)

		sphere := m.Split.CullingSphere
		sphere[3] *= m.Split.CullingSphere[3]
		b.spheres[i] = sphere
		ctx.DrawShadows(render.ShadowDrawingSettings{LightIndex: index, Split: m.Split})

		b.matrices[i] = TileRemap(tile.Offset, 1/float32(cascadeSplit)).Mul4(WorldToShadow(m.View, m.Proj, b.reversedZ))
		layout.Tiles = append(layout.Tiles, Assignment{Light: index, Cascade: i, Tile: tile})
	}

	cb.DisableScissorRect()
	cb.SetGlobalTexture(idCascadedShadowMap, rt)
	cb.SetGlobalVectorArray(idCascadeCullingSpheres, b.spheres[:])
	cb.SetGlobalMatrixArray(idWorldToShadowCascadeMatrices, b.matrices[:])
	cb.SetGlobalVector(idCascadedShadowMapSize, sizeVector(s.MapSize))
	cb.SetGlobalFloat(idCascadedShadowStrength, main.ShadowStrength())
	hard := src.Shadow.Mode == render.ShadowsHard
	cb.SetKeyword(gpu.KeywordCascadedShadowsHard, hard)
	cb.SetKeyword(gpu.KeywordCascadedShadowsSoft, !hard)
	cb.EndSample(sampleRenderShadows)
	flush(ctx, cb)

	return &CascadeAtlas{
		Texture:        rt,
		Layout:         layout,
		Matrices:       b.matrices,
		CullingSpheres: b.spheres,
	}, nil
}
