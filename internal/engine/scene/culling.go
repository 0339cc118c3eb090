package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/xrp/internal/engine/render"
)

// frustum holds six inward-facing planes (a, b, c, d) with a*x+b*y+c*z+d >= 0
// inside.
type frustum [6]mgl32.Vec4

// frustumFromMatrix extracts the clip planes of a view-projection matrix.
func frustumFromMatrix(vp mgl32.Mat4) frustum {
	r0, r1, r2, r3 := vp.Row(0), vp.Row(1), vp.Row(2), vp.Row(3)
	f := frustum{
		r3.Add(r0), r3.Sub(r0),
		r3.Add(r1), r3.Sub(r1),
		r3.Add(r2), r3.Sub(r2),
	}
	for i, p := range f {
		if n := p.Vec3().Len(); n > 0 {
			f[i] = p.Mul(1 / n)
		}
	}
	return f
}

func (f *frustum) intersectsSphere(center mgl32.Vec3, radius float32) bool {
	for _, p := range f {
		if p.Vec3().Dot(center)+p.W() < -radius {
			return false
		}
	}
	return true
}

func (f *frustum) intersectsBounds(b render.Bounds) bool {
	for _, p := range f {
		// Corner furthest along the plane normal.
		v := b.Min
		for i := 0; i < 3; i++ {
			if p[i] >= 0 {
				v[i] = b.Max[i]
			}
		}
		if p.Vec3().Dot(v)+p.W() < 0 {
			return false
		}
	}
	return true
}

func boundsIntersectSphere(b render.Bounds, center mgl32.Vec3, radius float32) bool {
	var d2 float32
	for i := 0; i < 3; i++ {
		switch {
		case center[i] < b.Min[i]:
			d := b.Min[i] - center[i]
			d2 += d * d
		case center[i] > b.Max[i]:
			d := center[i] - b.Max[i]
			d2 += d * d
		}
	}
	return d2 <= radius*radius
}

// CullResults is the visible set of a scene for one camera. It implements
// render.CullingResults.
type CullResults struct {
	scene   *Scene
	params  render.CullingParameters
	frustum frustum

	lights    []render.Light
	renderers []int
}

// Cull computes the lights and renderers visible from params. Directional
// lights are always visible; local lights are visible when their range
// reaches into the frustum.
func (s *Scene) Cull(params render.CullingParameters) *CullResults {
	c := &CullResults{
		scene:   s,
		params:  params,
		frustum: frustumFromMatrix(params.Proj.Mul4(params.View)),
	}
	for _, l := range s.Lights {
		if l.Type() == render.LightDirectional || c.frustum.intersectsSphere(l.Position(), l.Range()) {
			c.lights = append(c.lights, l)
		}
	}
	for i, r := range s.Renderers {
		if c.frustum.intersectsBounds(r.Bounds) {
			c.renderers = append(c.renderers, i)
		}
	}
	return c
}

func (c *CullResults) VisibleLights() []render.Light {
	return c.lights
}

// VisibleRenderers returns the renderers in view, in scene order.
func (c *CullResults) VisibleRenderers() []Renderer {
	out := make([]Renderer, 0, len(c.renderers))
	for _, i := range c.renderers {
		out = append(out, c.scene.Renderers[i])
	}
	return out
}

// Params returns the parameters the results were culled with.
func (c *CullResults) Params() render.CullingParameters {
	return c.params
}

// influence is the sphere inside which casters affect a light's shadows.
func (c *CullResults) influence(l *render.Light) (mgl32.Vec3, float32) {
	if l.Type() == render.LightDirectional {
		return c.params.Position, c.shadowDistance()
	}
	return l.Position(), l.Range()
}

func (c *CullResults) shadowDistance() float32 {
	d := c.params.ShadowDistance
	if c.params.Far < d {
		d = c.params.Far
	}
	return d
}

// casters returns the shadow casters whose bounds reach the sphere.
func (c *CullResults) casters(center mgl32.Vec3, radius float32) []Renderer {
	var out []Renderer
	for _, r := range c.scene.Renderers {
		if r.CastShadows && boundsIntersectSphere(r.Bounds, center, radius) {
			out = append(out, r)
		}
	}
	return out
}

// ShadowCasterBounds returns the box around every caster that can throw a
// shadow for the light. Lights without shadows have none.
func (c *CullResults) ShadowCasterBounds(lightIndex int) (render.Bounds, bool) {
	if lightIndex < 0 || lightIndex >= len(c.lights) {
		return render.Bounds{}, false
	}
	l := &c.lights[lightIndex]
	if l.Shadow.Mode == render.ShadowsNone {
		return render.Bounds{}, false
	}
	center, radius := c.influence(l)
	if radius <= 0 {
		return render.Bounds{}, false
	}
	casters := c.casters(center, radius)
	if len(casters) == 0 {
		return render.Bounds{}, false
	}
	b := casters[0].Bounds
	for _, r := range casters[1:] {
		b = b.Encapsulate(r.Bounds)
	}
	return b, true
}
