// Package scene is a small scene graph with lights and renderer bounds. It
// implements culling, shadow matrix computation and draw recording for the
// frame renderer on top of any gpu.Device.
package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/xrp/internal/engine/render"
)

// Render queues used by the built-in scenes.
const (
	QueueGeometry    = 2000
	QueueAlphaTest   = 2450
	QueueTransparent = 3000
)

// Renderer is a drawable object. Only its bounds take part in culling.
type Renderer struct {
	Name        string
	Bounds      render.Bounds
	Queue       int
	CastShadows bool
}

// Scene holds the lights and renderers of a world. Light order is kept by
// culling, so it decides which lights survive truncation.
type Scene struct {
	Lights    []render.Light
	Renderers []Renderer
}

// Bounds returns the box around every renderer, or false for an empty scene.
func (s *Scene) Bounds() (render.Bounds, bool) {
	if len(s.Renderers) == 0 {
		return render.Bounds{}, false
	}
	b := s.Renderers[0].Bounds
	for _, r := range s.Renderers[1:] {
		b = b.Encapsulate(r.Bounds)
	}
	return b, true
}

// AddLight appends a light and returns its scene index.
func (s *Scene) AddLight(l render.Light) int {
	s.Lights = append(s.Lights, l)
	return len(s.Lights) - 1
}

// AddRenderer appends a renderer.
func (s *Scene) AddRenderer(r Renderer) {
	s.Renderers = append(s.Renderers, r)
}

// DirectionalLight builds a directional light shining along dir.
func DirectionalLight(dir mgl32.Vec3, color mgl32.Vec4, shadow render.ShadowSettings) render.Light {
	return render.Light{
		Color:        color,
		LocalToWorld: orientation(mgl32.Vec3{}, dir),
		Shadow:       shadow,
		Kind:         render.Directional{},
	}
}

// PointLight builds a point light at pos.
func PointLight(pos mgl32.Vec3, rng float32, color mgl32.Vec4) render.Light {
	return render.Light{
		Color:        color,
		LocalToWorld: mgl32.Translate3D(pos.X(), pos.Y(), pos.Z()),
		Kind:         render.Point{Range: rng},
	}
}

// SpotLight builds a spot light at pos shining along dir. angle is the full
// cone angle in degrees.
func SpotLight(pos, dir mgl32.Vec3, rng, angle float32, color mgl32.Vec4, shadow render.ShadowSettings) render.Light {
	return render.Light{
		Color:        color,
		LocalToWorld: orientation(pos, dir),
		Shadow:       shadow,
		Kind:         render.Spot{Range: rng, Angle: angle},
	}
}

// orientation returns a rigid transform at pos whose Z axis is dir.
func orientation(pos, dir mgl32.Vec3) mgl32.Mat4 {
	f := dir.Normalize()
	r := upFor(f).Cross(f).Normalize()
	u := f.Cross(r)
	return mgl32.Mat4FromCols(r.Vec4(0), u.Vec4(0), f.Vec4(0), pos.Vec4(1))
}

// upFor picks an up vector that is not parallel to forward.
func upFor(forward mgl32.Vec3) mgl32.Vec3 {
	if math.Abs(float64(forward.Normalize().Y())) > 0.99 {
		return mgl32.Vec3{0, 0, 1}
	}
	return mgl32.Vec3{0, 1, 0}
}

// Box returns the bounds of a box centered at center with the given size.
func Box(center, size mgl32.Vec3) render.Bounds {
	half := size.Mul(0.5)
	return render.Bounds{Min: center.Sub(half), Max: center.Add(half)}
}
