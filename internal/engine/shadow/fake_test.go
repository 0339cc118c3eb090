package shadow

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/xrp/internal/engine/gpu"
	"github.com/Faultbox/xrp/internal/engine/render"
)

// fakeCull hands out fixed matrices. Every light has casters unless listed
// in noCasters; matrix requests fail for lights or cascades in fail.
type fakeCull struct {
	lights    []render.Light
	noCasters map[int]bool
	fail      map[int]bool
	failCasc  map[int]bool
}

func (f *fakeCull) VisibleLights() []render.Light {
	return f.lights
}

func (f *fakeCull) ShadowCasterBounds(i int) (render.Bounds, bool) {
	if f.noCasters[i] {
		return render.Bounds{}, false
	}
	return render.Bounds{Min: mgl32.Vec3{-1, 0, -1}, Max: mgl32.Vec3{1, 2, 1}}, true
}

func (f *fakeCull) ComputeDirectionalShadowMatrices(i, cascade, count int, _ mgl32.Vec3, _ int, _ float32) (render.ShadowMatrices, bool) {
	if f.fail[i] || f.failCasc[cascade] {
		return render.ShadowMatrices{}, false
	}
	r := float32(5 * (cascade + 1))
	return render.ShadowMatrices{
		View:  mgl32.LookAtV(mgl32.Vec3{0, 20, 0}, mgl32.Vec3{}, mgl32.Vec3{0, 0, 1}),
		Proj:  mgl32.Ortho(-r, r, -r, r, 0.1, 40),
		Split: render.SplitData{CullingSphere: mgl32.Vec4{0, 0, 0, r}},
	}, true
}

func (f *fakeCull) ComputeSpotShadowMatrices(i int) (render.ShadowMatrices, bool) {
	if f.fail[i] {
		return render.ShadowMatrices{}, false
	}
	pos := f.lights[i].Position()
	return render.ShadowMatrices{
		View:  mgl32.LookAtV(pos, pos.Add(mgl32.Vec3{0, -1, 0}), mgl32.Vec3{0, 0, 1}),
		Proj:  mgl32.Perspective(mgl32.DegToRad(60), 1, 0.2, 20),
		Split: render.SplitData{CullingSphere: pos.Vec4(20)},
	}, true
}

// fakeContext collects everything a builder sends to the render context.
type fakeContext struct {
	cmds    []gpu.Command
	shadows []render.ShadowDrawingSettings
}

func (c *fakeContext) Cull(render.CullingParameters) render.CullingResults { return nil }
func (c *fakeContext) SetupCameraProperties(render.Camera)                   {}
func (c *fakeContext) DrawRenderers(render.CullingResults, render.DrawingSettings, render.FilteringSettings) {
}
func (c *fakeContext) DrawSkybox(render.Camera) {}
func (c *fakeContext) Submit() error            { return nil }

func (c *fakeContext) ExecuteCommandBuffer(cb *gpu.CommandBuffer) {
	c.cmds = append(c.cmds, cb.Commands()...)
}

func (c *fakeContext) DrawShadows(s render.ShadowDrawingSettings) {
	c.shadows = append(c.shadows, s)
}

// state folds the collected commands into global state.
func (c *fakeContext) state() *gpu.GlobalState {
	s := gpu.NewGlobalState()
	for _, cmd := range c.cmds {
		s.Apply(cmd)
	}
	return s
}

func spot(x float32, strength float32) render.Light {
	return render.Light{
		Color:        mgl32.Vec4{1, 1, 1, 1},
		LocalToWorld: mgl32.Translate3D(x, 8, 0),
		Shadow:       render.ShadowSettings{Mode: render.ShadowsHard, Strength: strength, Bias: 0.1},
		Kind:         render.Spot{Range: 20, Angle: 60},
	}
}

func directional(mode render.ShadowMode) render.Light {
	return render.Light{
		Color:        mgl32.Vec4{1, 1, 1, 1},
		LocalToWorld: mgl32.HomogRotate3DX(mgl32.DegToRad(90)),
		Shadow:       render.ShadowSettings{Mode: mode, Strength: 1, Bias: 0.05},
		Kind:         render.Directional{},
	}
}
