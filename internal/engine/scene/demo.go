package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/xrp/internal/engine/render"
)

// Demo builds the default scene: a lit courtyard with a row of pillars,
// a soft-shadowed sun, a few shadowed spots and some unshadowed fill lights.
func Demo() *Scene {
	s := &Scene{}

	s.AddLight(DirectionalLight(
		SunLightDirection(45, 50),
		mgl32.Vec4{1, 0.95, 0.85, 1},
		render.ShadowSettings{Mode: render.ShadowsSoft, Strength: 1, Bias: 0.05, NearPlane: 0.2},
	))

	spotShadow := render.ShadowSettings{Mode: render.ShadowsHard, Strength: 0.8, Bias: 0.05, NearPlane: 0.2}
	for i, x := range []float32{-12, 0, 12} {
		color := mgl32.Vec4{1, 0.6 + 0.1*float32(i), 0.3, 1}
		s.AddLight(SpotLight(mgl32.Vec3{x, 8, 6}, mgl32.Vec3{0, -1, -0.5}, 20, 50, color, spotShadow))
	}
	s.AddLight(PointLight(mgl32.Vec3{-6, 2, -6}, 8, mgl32.Vec4{0.3, 0.4, 1, 1}))
	s.AddLight(PointLight(mgl32.Vec3{6, 2, -6}, 8, mgl32.Vec4{0.3, 1, 0.4, 1}))

	s.AddRenderer(Renderer{
		Name:        "ground",
		Bounds:      Box(mgl32.Vec3{0, -0.5, 0}, mgl32.Vec3{60, 1, 60}),
		Queue:       QueueGeometry,
		CastShadows: false,
	})
	for i := 0; i < 5; i++ {
		x := float32(i-2) * 6
		s.AddRenderer(Renderer{
			Name:        fmt.Sprintf("pillar-%d", i),
			Bounds:      Box(mgl32.Vec3{x, 3, 0}, mgl32.Vec3{1.5, 6, 1.5}),
			Queue:       QueueGeometry,
			CastShadows: true,
		})
	}
	s.AddRenderer(Renderer{
		Name:        "hedge",
		Bounds:      Box(mgl32.Vec3{0, 1, -10}, mgl32.Vec3{30, 2, 1}),
		Queue:       QueueAlphaTest,
		CastShadows: true,
	})
	s.AddRenderer(Renderer{
		Name:   "glass",
		Bounds: Box(mgl32.Vec3{0, 2, 8}, mgl32.Vec3{8, 4, 0.2}),
		Queue:  QueueTransparent,
	})
	return s
}
