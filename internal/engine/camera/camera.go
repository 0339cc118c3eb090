// Package camera provides the orbit camera rendered by the frame renderer.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/xrp/internal/engine/render"
)

// OrbitCamera orbits around a center point and renders the scene from there.
type OrbitCamera struct {
	ID string

	// Center point to orbit around
	Center mgl32.Vec3

	// Spherical coordinates
	Distance float32
	Pitch    float32 // radians above the horizon
	Yaw      float32 // radians around Y

	// Projection
	FieldOfView float32 // vertical, degrees
	Aspect      float32
	Near        float32
	Far         float32

	Clear      render.ClearFlags
	Background mgl32.Vec4

	// Constraints
	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	// Sensitivity
	DragSensitivity float32
	ZoomSensitivity float32
}

// NewOrbitCamera creates an orbit camera with default settings.
func NewOrbitCamera(id string) *OrbitCamera {
	return &OrbitCamera{
		ID:              id,
		Distance:        30,
		Pitch:           0.5,
		FieldOfView:     60,
		Aspect:          16.0 / 9.0,
		Near:            0.3,
		Far:             1000,
		Clear:           render.ClearSkybox,
		Background:      mgl32.Vec4{0.19, 0.3, 0.47, 1},
		MinDistance:     1,
		MaxDistance:     500,
		MinPitch:        -1.5,
		MaxPitch:        1.5,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
	}
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() mgl32.Vec3 {
	cp, sp := math.Cos(float64(c.Pitch)), math.Sin(float64(c.Pitch))
	cy, sy := math.Cos(float64(c.Yaw)), math.Sin(float64(c.Yaw))
	offset := mgl32.Vec3{
		float32(cp * sy),
		float32(sp),
		float32(cp * cy),
	}
	return c.Center.Add(offset.Mul(c.Distance))
}

// ViewMatrix returns the world-to-camera matrix.
func (c *OrbitCamera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position(), c.Center, c.up())
}

// up avoids a degenerate basis when looking straight down or up.
func (c *OrbitCamera) up() mgl32.Vec3 {
	if math.Abs(math.Cos(float64(c.Pitch))) < 1e-4 {
		return mgl32.Vec3{0, 0, -1}
	}
	return mgl32.Vec3{0, 1, 0}
}

// ProjectionMatrix returns the perspective projection.
func (c *OrbitCamera) ProjectionMatrix() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FieldOfView), c.Aspect, c.Near, c.Far)
}

// HandleDrag updates rotation based on mouse drag delta.
func (c *OrbitCamera) HandleDrag(deltaX, deltaY float32) {
	c.Yaw -= deltaX * c.DragSensitivity
	c.Pitch = mgl32.Clamp(c.Pitch+deltaY*c.DragSensitivity, c.MinPitch, c.MaxPitch)
}

// HandleZoom updates distance based on scroll wheel delta.
func (c *OrbitCamera) HandleZoom(delta float32) {
	c.Distance = mgl32.Clamp(c.Distance-delta*c.Distance*c.ZoomSensitivity, c.MinDistance, c.MaxDistance)
}

// FitToBounds centers the camera on b and backs off to see all of it.
func (c *OrbitCamera) FitToBounds(b render.Bounds) {
	c.Center = b.Center()
	c.Distance = mgl32.Clamp(b.Extents().Len()*2, c.MinDistance, c.MaxDistance)
}

func (c *OrbitCamera) Name() string {
	return c.ID
}

func (c *OrbitCamera) FarClipPlane() float32 {
	return c.Far
}

func (c *OrbitCamera) ClearFlags() render.ClearFlags {
	return c.Clear
}

func (c *OrbitCamera) BackgroundColor() mgl32.Vec4 {
	return c.Background
}

// CullingParameters fails for cameras whose projection is degenerate.
func (c *OrbitCamera) CullingParameters() (render.CullingParameters, bool) {
	if c.Aspect <= 0 || c.FieldOfView <= 0 || c.FieldOfView >= 180 {
		return render.CullingParameters{}, false
	}
	if c.Near <= 0 || c.Far <= c.Near || c.Distance <= 0 {
		return render.CullingParameters{}, false
	}
	return render.CullingParameters{
		Camera:   c.ID,
		Position: c.Position(),
		View:     c.ViewMatrix(),
		Proj:     c.ProjectionMatrix(),
		Near:     c.Near,
		Far:      c.Far,
	}, true
}
