package glbackend

import (
	"errors"
	"testing"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/xrp/internal/engine/gpu"
	"github.com/Faultbox/xrp/internal/engine/render"
	"github.com/Faultbox/xrp/internal/engine/scene"
)

// fakeStorage stands in for GL allocation.
type fakeStorage struct {
	next      uint32
	created   int
	destroyed int
	fail      bool
}

func (f *fakeStorage) create(desc gpu.TextureDesc) (*target, error) {
	if f.fail {
		return nil, errors.New("out of memory")
	}
	f.next++
	f.created++
	return &target{texture: f.next, desc: desc}, nil
}

func (f *fakeStorage) destroy(*target) {
	f.destroyed++
}

func newFakePool(max int) (*pool, *fakeStorage) {
	fs := &fakeStorage{}
	return newPool(max, fs.create, fs.destroy), fs
}

func TestPoolReusesReleasedTargets(t *testing.T) {
	p, fs := newFakePool(4096)
	desc := gpu.ShadowMapDesc(1024)

	a, err := p.get(desc)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), a.Native)

	p.put(a)
	b, err := p.get(desc)
	require.NoError(t, err)

	assert.Equal(t, 1, fs.created, "released storage should be reused")
	assert.Equal(t, a.Native, b.Native)
	assert.NotEqual(t, a.ID, b.ID, "each acquisition gets a fresh handle")

	_, ok := p.lookup(a)
	assert.False(t, ok, "stale handle must not resolve")
	_, ok = p.lookup(b)
	assert.True(t, ok)
}

func TestPoolSeparatesDescriptors(t *testing.T) {
	p, fs := newFakePool(4096)

	a, err := p.get(gpu.ShadowMapDesc(1024))
	require.NoError(t, err)
	p.put(a)

	_, err = p.get(gpu.ShadowMapDesc(2048))
	require.NoError(t, err)
	assert.Equal(t, 2, fs.created)

	live, free := p.stats()
	assert.Equal(t, 1, live)
	assert.Equal(t, 1, free)
}

func TestPoolRejectsOversize(t *testing.T) {
	p, fs := newFakePool(2048)

	_, err := p.get(gpu.ShadowMapDesc(4096))
	assert.ErrorIs(t, err, gpu.ErrTextureTooLarge)

	_, err = p.get(gpu.TextureDesc{Width: 0, Height: 16})
	assert.Error(t, err)
	assert.Zero(t, fs.created)
}

func TestPoolCreateFailure(t *testing.T) {
	p, fs := newFakePool(4096)
	fs.fail = true

	_, err := p.get(gpu.ShadowMapDesc(512))
	assert.Error(t, err)

	live, free := p.stats()
	assert.Zero(t, live)
	assert.Zero(t, free)
}

func TestPoolDoubleReleaseIgnored(t *testing.T) {
	p, _ := newFakePool(4096)

	a, err := p.get(gpu.ShadowMapDesc(256))
	require.NoError(t, err)
	p.put(a)
	p.put(a)
	p.put(nil)

	_, free := p.stats()
	assert.Equal(t, 1, free)
}

func TestPoolTrimAndClose(t *testing.T) {
	p, fs := newFakePool(4096)

	a, _ := p.get(gpu.ShadowMapDesc(256))
	b, _ := p.get(gpu.ShadowMapDesc(256))
	_, _ = p.get(gpu.ShadowMapDesc(512))
	p.put(a)
	p.put(b)

	assert.Equal(t, 2, p.trim())
	assert.Equal(t, 2, fs.destroyed)

	live, free := p.stats()
	assert.Equal(t, 1, live)
	assert.Zero(t, free)

	p.close()
	assert.Equal(t, 3, fs.destroyed)
	live, _ = p.stats()
	assert.Zero(t, live)
}

func TestCubeVertices(t *testing.T) {
	v := cubeVertices()
	require.Len(t, v, cubeVertexCount*6)

	for i := 0; i < cubeVertexCount; i++ {
		pos := mgl32.Vec3{v[i*6], v[i*6+1], v[i*6+2]}
		n := mgl32.Vec3{v[i*6+3], v[i*6+4], v[i*6+5]}

		assert.InDelta(t, 1, n.Len(), 1e-6)
		for axis := 0; axis < 3; axis++ {
			assert.InDelta(t, 0.5, abs(pos[axis]), 1e-6, "vertex %d axis %d on a corner", i, axis)
		}
		// Every vertex lies on the face its normal points out of.
		assert.InDelta(t, 0.5, pos.Dot(n), 1e-6)
	}

	// Triangles wind counter-clockwise seen from outside.
	for tri := 0; tri < cubeVertexCount/3; tri++ {
		p := func(k int) mgl32.Vec3 {
			j := (tri*3 + k) * 6
			return mgl32.Vec3{v[j], v[j+1], v[j+2]}
		}
		n := mgl32.Vec3{v[tri*18+3], v[tri*18+4], v[tri*18+5]}
		face := p(1).Sub(p(0)).Cross(p(2).Sub(p(0)))
		assert.Greater(t, face.Dot(n), float32(0), "triangle %d", tri)
	}
}

func TestBoxModel(t *testing.T) {
	b := scene.Box(mgl32.Vec3{2, 3, 4}, mgl32.Vec3{2, 6, 1})
	m := boxModel(b)

	assert.True(t, m.Mul4x1(mgl32.Vec4{0.5, 0.5, 0.5, 1}).Vec3().ApproxEqual(b.Max))
	assert.True(t, m.Mul4x1(mgl32.Vec4{-0.5, -0.5, -0.5, 1}).Vec3().ApproxEqual(b.Min))
}

func TestQueueColor(t *testing.T) {
	assert.Equal(t, float32(1), queueColor(scene.QueueGeometry)[3])
	assert.Equal(t, float32(1), queueColor(scene.QueueAlphaTest)[3])
	assert.Less(t, queueColor(scene.QueueTransparent)[3], float32(1))
	assert.NotEqual(t, queueColor(scene.QueueGeometry), queueColor(scene.QueueAlphaTest))
}

func TestDepthFormat(t *testing.T) {
	assert.Equal(t, uint32(gl.DEPTH_COMPONENT16), depthFormat(16))
	assert.Equal(t, uint32(gl.DEPTH_COMPONENT24), depthFormat(24))
	assert.Equal(t, uint32(gl.DEPTH_COMPONENT32F), depthFormat(32))
}

func TestSortedTextureIDs(t *testing.T) {
	s := gpu.NewGlobalState()
	s.Apply(gpu.SetGlobalTexture{ID: gpu.Properties.MustID(gpu.CascadedShadowMap)})
	s.Apply(gpu.SetGlobalTexture{ID: gpu.Properties.MustID(gpu.ShadowMap)})

	ids := sortedTextureIDs(s)
	require.Len(t, ids, 2)
	assert.Equal(t, gpu.Properties.MustID(gpu.ShadowMap), ids[0])
	assert.Equal(t, gpu.Properties.MustID(gpu.CascadedShadowMap), ids[1])
}

func TestBoundsHelperMatchesScene(t *testing.T) {
	b := render.Bounds{Min: mgl32.Vec3{-1, 0, -1}, Max: mgl32.Vec3{1, 2, 1}}
	m := boxModel(b)
	assert.True(t, m.Mul4x1(mgl32.Vec4{0, 0, 0, 1}).Vec3().ApproxEqual(b.Center()))
}

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
