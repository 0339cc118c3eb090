package gpu

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryIDs(t *testing.T) {
	r := NewRegistry("a", "b", "a", "c")

	assert.Equal(t, 3, r.Len())
	assert.Equal(t, PropertyID(0), r.ID("a"))
	assert.Equal(t, PropertyID(1), r.ID("b"))
	assert.Equal(t, PropertyID(2), r.ID("c"))
	assert.Equal(t, InvalidProperty, r.ID("missing"))
	assert.Equal(t, "b", r.Name(1))
	assert.Equal(t, "", r.Name(7))
	assert.Panics(t, func() { r.MustID("missing") })
}

func TestPropertiesRegistryComplete(t *testing.T) {
	for _, name := range []string{
		VisibleLightColors, VisibleLightDirectionsOrPositions,
		VisibleLightAttenuations, VisibleLightSpotDirections,
		ShadowMap, WorldToShadowMatrices, ShadowBias, ShadowData,
		ShadowMapSize, GlobalShadowData, CascadedShadowMap,
		WorldToShadowCascadeMatrices, CascadedShadowMapSize,
		CascadedShadowStrength, CascadeCullingSpheres,
	} {
		assert.NotEqual(t, InvalidProperty, Properties.ID(name), name)
	}
}

func TestCommandBufferCopiesArrays(t *testing.T) {
	cb := NewCommandBuffer("test")
	values := []mgl32.Vec4{{1, 2, 3, 4}}
	cb.SetGlobalVectorArray(Properties.MustID(VisibleLightColors), values)
	values[0] = mgl32.Vec4{}

	require.Equal(t, 1, cb.Len())
	rec := cb.Commands()[0].(SetGlobalVectorArray)
	assert.Equal(t, mgl32.Vec4{1, 2, 3, 4}, rec.Values[0])

	cb.Clear()
	assert.Zero(t, cb.Len())
}

func TestRecorderTracksTemporaries(t *testing.T) {
	r := NewRecorder(Caps{MaxTextureSize: 2048})

	a, err := r.GetTemporary(ShadowMapDesc(1024))
	require.NoError(t, err)
	b, err := r.GetTemporary(ShadowMapDesc(512))
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 2, r.Live())

	r.ReleaseTemporary(a)
	r.ReleaseTemporary(nil)
	assert.Equal(t, 1, r.Live())
	assert.Equal(t, 2, r.Acquired())

	_, err = r.GetTemporary(ShadowMapDesc(4096))
	assert.True(t, errors.Is(err, ErrTextureTooLarge))
}

func TestRecorderMirrorsGlobalState(t *testing.T) {
	r := NewRecorder(Caps{})
	cb := NewCommandBuffer("state")
	id := Properties.MustID(ShadowBias)
	cb.SetGlobalFloat(id, 0.05)
	cb.EnableKeyword(KeywordShadowsSoft)
	cb.DisableKeyword(KeywordShadowsSoft)
	cb.SetViewport(Rect{W: 10, H: 10})

	require.NoError(t, r.Execute(cb.Commands()))

	assert.Len(t, r.Commands(), 4)
	assert.Equal(t, float32(0.05), r.State().Floats[id])
	assert.False(t, r.State().Keyword(KeywordShadowsSoft))

	r.Reset()
	assert.Empty(t, r.Commands())
	assert.Equal(t, float32(0.05), r.State().Floats[id])
}
