package shadow

import (
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/xrp/internal/engine/gpu"
	"github.com/Faultbox/xrp/internal/engine/lighting"
	"github.com/Faultbox/xrp/internal/engine/render"
	"github.com/Faultbox/xrp/internal/logger"
)

// Atlas is the output of one atlas pass.
type Atlas struct {
	Texture  *gpu.RenderTexture
	Layout   Layout
	Matrices [lighting.MaxVisibleLights]mgl32.Mat4
}

// AtlasBuilder packs every shadowed light except the main one into a
// square atlas of split x split tiles.
type AtlasBuilder struct {
	pool      gpu.TexturePool
	reversedZ bool
	matrices  [lighting.MaxVisibleLights]mgl32.Mat4
}

// NewAtlasBuilder creates a builder for a device with the given caps.
func NewAtlasBuilder(pool gpu.TexturePool, caps gpu.Caps) *AtlasBuilder {
	return &AtlasBuilder{pool: pool, reversedZ: caps.ReversedZ}
}

// Build renders one tile per shadowed light and publishes the atlas
// parameters. Lights whose matrices cannot be computed lose their shadows
// and take no tile, so tiles stay packed. The caller owns the returned
// texture and must release it.
func (b *AtlasBuilder) Build(ctx render.Context, cb *gpu.CommandBuffer, cull render.CullingResults, lights *lighting.Set, s Settings) (*Atlas, error) {
	split := SplitFor(lights.ShadowTileCount)
	tileSize := float32(s.MapSize / split)
	tileScale := 1 / float32(split)

	cb.SetGlobalVector(idGlobalShadowData, mgl32.Vec4{tileScale, s.Distance * s.Distance, 0, 0})

	rt, err := acquireTarget(b.pool, cb, s.MapSize)
	if err != nil {
		return nil, err
	}
	cb.BeginSample(sampleRenderShadows)
	flush(ctx, cb)

	b.matrices = [lighting.MaxVisibleLights]mgl32.Mat4{}
	visible := cull.VisibleLights()
	layout := Layout{Size: s.MapSize, Split: split, TileSize: tileSize}

	tileIndex := 0
	for i := 0; i < lights.Count; i++ {
		l := &lights.Lights[i]
		if i == lights.MainLight || l.ShadowStrength() <= 0 {
			continue
		}

		m, ok := b.lightMatrices(cull, i, l, &visible[i], int(tileSize))
		if !ok {
			logger.Debug("shadow matrices unavailable, dropping shadows",
				zap.Int("light", i),
				zap.Stringer("type", l.Type),
			)
			l.DisableShadows()
			continue
		}

		tile := TileRect(tileIndex, split, tileSize)
		tileIndex++
		l.Shadow[2] = tile.Offset.X() * tileScale
		l.Shadow[3] = tile.Offset.Y() * tileScale

		tile.configure(cb)
		cb.SetViewProjectionMatrices(m.View, m.Proj)
		flush(ctx, cb)
		ctx.DrawShadows(render.ShadowDrawingSettings{LightIndex: i, Split: m.Split})

		w := WorldToShadow(m.View, m.Proj, b.reversedZ)
		if split > 1 {
			w = TileRemap(tile.Offset, tileScale).Mul4(w)
		}
		b.matrices[i] = w
		layout.Tiles = append(layout.Tiles, Assignment{Light: i, Tile: tile})
	}

	var bias float32
	soft := false
	if len(visible) > 0 {
		// One global bias and soft/hard toggle, taken from the first light.
		bias = visible[0].Shadow.Bias
		soft = visible[0].Shadow.Mode == render.ShadowsSoft
	}

	cb.DisableScissorRect()
	cb.SetGlobalTexture(idShadowMap, rt)
	cb.SetGlobalMatrixArray(idWorldToShadowMatrices, b.matrices[:])
	cb.SetGlobalFloat(idShadowBias, bias)
	cb.SetGlobalVectorArray(idShadowData, lights.ShadowData())
	cb.SetGlobalVector(idShadowMapSize, sizeVector(s.MapSize))
	cb.SetKeyword(gpu.KeywordShadowsSoft, soft)
	cb.EndSample(sampleRenderShadows)
	flush(ctx, cb)

	logger.Debug("shadow atlas built",
		zap.Int("split", split),
		zap.Int("tiles", tileIndex),
	)
	return &Atlas{Texture: rt, Layout: layout, Matrices: b.matrices}, nil
}

// lightMatrices asks culling for the light's shadow matrices: secondary
// directional lights get a single cascade, spot lights a perspective frustum.
func (b *AtlasBuilder) lightMatrices(cull render.CullingResults, index int, l *lighting.VisibleLight, src *render.Light, tileSize int) (render.ShadowMatrices, bool) {
	switch l.Type {
	case render.LightDirectional:
		return cull.ComputeDirectionalShadowMatrices(index, 0, 1, mgl32.Vec3{1, 0, 0}, tileSize, src.Shadow.NearPlane)
	case render.LightSpot:
		return cull.ComputeSpotShadowMatrices(index)
	}
	return render.ShadowMatrices{}, false
}
