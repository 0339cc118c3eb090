// Package shadow renders the per-frame shadow atlases: a 2x2 cascade atlas
// for the main directional light and a tiled atlas for every other
// shadowed light.
package shadow

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/xrp/internal/engine/gpu"
	"github.com/Faultbox/xrp/internal/engine/render"
)

const sampleRenderShadows = "Render Shadows"

var (
	// ErrNoMainLight is returned when the cascade atlas is built without a
	// cascaded light.
	ErrNoMainLight = errors.New("no main light")
	// ErrCascadeCount is returned for cascade counts other than 2 or 4.
	ErrCascadeCount = errors.New("cascade count must be 2 or 4")
)

var (
	idShadowMap                    = gpu.Properties.MustID(gpu.ShadowMap)
	idWorldToShadowMatrices        = gpu.Properties.MustID(gpu.WorldToShadowMatrices)
	idShadowBias                   = gpu.Properties.MustID(gpu.ShadowBias)
	idShadowData                   = gpu.Properties.MustID(gpu.ShadowData)
	idShadowMapSize                = gpu.Properties.MustID(gpu.ShadowMapSize)
	idGlobalShadowData             = gpu.Properties.MustID(gpu.GlobalShadowData)
	idCascadedShadowMap            = gpu.Properties.MustID(gpu.CascadedShadowMap)
	idWorldToShadowCascadeMatrices = gpu.Properties.MustID(gpu.WorldToShadowCascadeMatrices)
	idCascadedShadowMapSize        = gpu.Properties.MustID(gpu.CascadedShadowMapSize)
	idCascadedShadowStrength       = gpu.Properties.MustID(gpu.CascadedShadowStrength)
	idCascadeCullingSpheres        = gpu.Properties.MustID(gpu.CascadeCullingSpheres)
)

// Settings are the pipeline shadow parameters.
type Settings struct {
	MapSize  int
	Distance float32
	Cascades int
	// CascadeSplit holds the split ratios: x only for two cascades, xyz for four.
	CascadeSplit mgl32.Vec3
}

// Assignment records which light (or cascade) went into which tile.
type Assignment struct {
	Light   int
	Cascade int
	Tile    Tile
}

// Layout describes how an atlas was carved up this frame.
type Layout struct {
	Size     int
	Split    int
	TileSize float32
	Tiles    []Assignment
}

// sizeVector is the (1/size, 1/size, size, size) vector shaders use for
// texel math.
func sizeVector(size int) mgl32.Vec4 {
	s := float32(size)
	return mgl32.Vec4{1 / s, 1 / s, s, s}
}

// acquireTarget takes a transient shadow map from pool and binds it with a
// depth-only clear.
func acquireTarget(pool gpu.TexturePool, cb *gpu.CommandBuffer, size int) (*gpu.RenderTexture, error) {
	rt, err := pool.GetTemporary(gpu.ShadowMapDesc(size))
	if err != nil {
		return nil, fmt.Errorf("acquiring %dx%d shadow map: %w", size, size, err)
	}
	cb.SetRenderTarget(rt, gpu.LoadDontCare, gpu.StoreStore, gpu.ClearDepth)
	return rt, nil
}

func flush(ctx render.Context, cb *gpu.CommandBuffer) {
	ctx.ExecuteCommandBuffer(cb)
	cb.Clear()
}
