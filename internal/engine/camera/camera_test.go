package camera

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/xrp/internal/engine/render"
)

func TestPositionOnOrbit(t *testing.T) {
	c := NewOrbitCamera("main")
	c.Center = mgl32.Vec3{1, 2, 3}
	c.Distance = 10
	c.Pitch = 0
	c.Yaw = 0

	assert.True(t, c.Position().ApproxEqualThreshold(mgl32.Vec3{1, 2, 13}, 1e-5))
	assert.InDelta(t, 10, c.Position().Sub(c.Center).Len(), 1e-4)
}

func TestViewLooksAtCenter(t *testing.T) {
	c := NewOrbitCamera("main")
	c.Pitch = 0.7
	c.Yaw = 1.2

	center := mgl32.TransformCoordinate(c.Center, c.ViewMatrix())
	assert.InDelta(t, 0, center.X(), 1e-4)
	assert.InDelta(t, 0, center.Y(), 1e-4)
	assert.InDelta(t, -c.Distance, center.Z(), 1e-3)
}

func TestCullingParameters(t *testing.T) {
	c := NewOrbitCamera("main")
	p, ok := c.CullingParameters()
	require.True(t, ok)
	assert.Equal(t, "main", p.Camera)
	assert.Equal(t, c.Far, p.Far)
	assert.Equal(t, c.Position(), p.Position)

	tests := []struct {
		name   string
		mutate func(*OrbitCamera)
	}{
		{"zero aspect", func(c *OrbitCamera) { c.Aspect = 0 }},
		{"zero fov", func(c *OrbitCamera) { c.FieldOfView = 0 }},
		{"inverted planes", func(c *OrbitCamera) { c.Far = c.Near }},
		{"negative near", func(c *OrbitCamera) { c.Near = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewOrbitCamera("bad")
			tt.mutate(c)
			_, ok := c.CullingParameters()
			assert.False(t, ok)
		})
	}
}

func TestZoomAndDragClamp(t *testing.T) {
	c := NewOrbitCamera("main")
	c.HandleZoom(1000)
	assert.Equal(t, c.MinDistance, c.Distance)

	c.HandleDrag(0, 1e6)
	assert.Equal(t, c.MaxPitch, c.Pitch)
}

func TestFitToBounds(t *testing.T) {
	c := NewOrbitCamera("main")
	c.FitToBounds(render.Bounds{Min: mgl32.Vec3{-10, 0, -10}, Max: mgl32.Vec3{10, 4, 10}})
	assert.Equal(t, mgl32.Vec3{0, 2, 0}, c.Center)
	assert.Greater(t, c.Distance, float32(20))
}
