package glbackend

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/xrp/internal/engine/debug"
	"github.com/Faultbox/xrp/internal/engine/gpu"
	"github.com/Faultbox/xrp/internal/engine/render"
	"github.com/Faultbox/xrp/internal/engine/scene"
	"github.com/Faultbox/xrp/internal/logger"
)

// SceneDrawer draws scene renderers as lit boxes.
type SceneDrawer struct {
	renderers map[string]scene.Renderer

	lit    *program
	caster *program
	sky    *program
	wire   *program

	cubeVAO  uint32
	cubeVBO  uint32
	emptyVAO uint32
	wireVAO  uint32
	wireVBO  uint32

	camera scene.SetupCamera
	drawn  []render.Bounds

	// Sky gradient
	Horizon mgl32.Vec4
	Zenith  mgl32.Vec4

	// ShowBounds outlines every renderer drawn for the camera.
	ShowBounds bool
}

// NewSceneDrawer compiles the scene programs and uploads the box mesh.
// IMPORTANT: Must be called after New, which initializes GL.
func NewSceneDrawer(s *scene.Scene) (*SceneDrawer, error) {
	sd := &SceneDrawer{
		renderers: make(map[string]scene.Renderer, len(s.Renderers)),
		Horizon:   mgl32.Vec4{0.62, 0.72, 0.82, 1},
		Zenith:    mgl32.Vec4{0.19, 0.3, 0.47, 1},
	}
	for _, r := range s.Renderers {
		sd.renderers[r.Name] = r
	}

	var err error
	if sd.lit, err = compileProgram("lit", litVertexSrc, litFragmentSrc); err != nil {
		return nil, err
	}
	if sd.caster, err = compileProgram("shadow caster", casterVertexSrc, casterFragmentSrc); err != nil {
		sd.Close()
		return nil, err
	}
	if sd.sky, err = compileProgram("skybox", skyVertexSrc, skyFragmentSrc); err != nil {
		sd.Close()
		return nil, err
	}
	if sd.wire, err = compileProgram("wireframe", wireVertexSrc, wireFragmentSrc); err != nil {
		sd.Close()
		return nil, err
	}

	sd.createCube()
	sd.createWire()
	gl.GenVertexArrays(1, &sd.emptyVAO)

	logger.Debug("scene drawer created",
		zap.Int("renderers", len(sd.renderers)),
		zap.Uint32("cube_vao", sd.cubeVAO),
	)
	return sd, nil
}

// Draw handles the scene commands recorded by scene.Context.
func (sd *SceneDrawer) Draw(d *Device, cmd gpu.Command) error {
	switch c := cmd.(type) {
	case scene.SetupCamera:
		sd.camera = c
		sd.drawn = sd.drawn[:0]
		d.SetViewProjection(c.View, c.Proj)
	case scene.DrawShadows:
		if !d.DrawingShadows() {
			return fmt.Errorf("shadow draw for light %d without a shadow map bound", c.LightIndex)
		}
		sd.drawCasters(d, c.Casters)
	case scene.DrawRenderers:
		sd.drawLit(d, c)
	case scene.DrawSkybox:
		sd.drawSky()
	}
	return nil
}

func (sd *SceneDrawer) drawCasters(d *Device, names []string) {
	sd.caster.use()
	sd.caster.setMat4("uViewProj", d.ViewProjection())

	// Front-face culling to reduce shadow acne
	gl.CullFace(gl.FRONT)
	gl.BindVertexArray(sd.cubeVAO)
	for _, name := range names {
		r, ok := sd.renderers[name]
		if !ok {
			continue
		}
		sd.caster.setMat4("uModel", boxModel(r.Bounds))
		gl.DrawArrays(gl.TRIANGLES, 0, cubeVertexCount)
	}
	gl.BindVertexArray(0)
	gl.CullFace(gl.BACK)
}

func (sd *SceneDrawer) drawLit(d *Device, c scene.DrawRenderers) {
	sd.lit.use()
	sd.lit.uploadGlobals(d.Globals(), d.Texture)
	sd.lit.setMat4("uViewProj", d.ViewProjection())
	sd.lit.setVec3("uCameraPos", sd.camera.Position)

	transparent := c.Sort == render.SortCommonTransparent
	if transparent {
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
		gl.DepthMask(false)
	}

	gl.BindVertexArray(sd.cubeVAO)
	for _, name := range c.Renderers {
		r, ok := sd.renderers[name]
		if !ok {
			continue
		}
		sd.lit.setMat4("uModel", boxModel(r.Bounds))
		sd.lit.setVec4("uColor", queueColor(r.Queue))
		gl.DrawArrays(gl.TRIANGLES, 0, cubeVertexCount)
		sd.drawn = append(sd.drawn, r.Bounds)
	}
	gl.BindVertexArray(0)

	if transparent {
		gl.DepthMask(true)
		gl.Disable(gl.BLEND)
		if sd.ShowBounds {
			sd.drawBounds(d)
		}
	}
}

// drawBounds outlines the renderers drawn since the camera was set up.
func (sd *SceneDrawer) drawBounds(d *Device) {
	if len(sd.drawn) == 0 {
		return
	}
	vertices := make([]float32, 0, len(sd.drawn)*debug.BBoxWireframeVertexCount*3)
	for _, b := range sd.drawn {
		vertices = append(vertices, debug.BoundsWireframe(debug.PaddedBounds(b, 0.02))...)
	}

	sd.wire.use()
	sd.wire.setMat4("uViewProj", d.ViewProjection())
	sd.wire.setVec4("uColor", mgl32.Vec4{1, 0.85, 0.2, 1})

	gl.BindVertexArray(sd.wireVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, sd.wireVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, unsafe.Pointer(&vertices[0]), gl.STREAM_DRAW)
	gl.DrawArrays(gl.LINES, 0, int32(len(vertices)/3))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
}

func (sd *SceneDrawer) drawSky() {
	sd.sky.use()
	sd.sky.setVec4("uHorizon", sd.Horizon)
	sd.sky.setVec4("uZenith", sd.Zenith)

	gl.DepthFunc(gl.LEQUAL)
	gl.DepthMask(false)
	gl.BindVertexArray(sd.emptyVAO)
	gl.DrawArrays(gl.TRIANGLES, 0, 3)
	gl.BindVertexArray(0)
	gl.DepthMask(true)
	gl.DepthFunc(gl.LESS)
}

// createCube uploads a unit cube centered at the origin, position + normal.
func (sd *SceneDrawer) createCube() {
	vertices := cubeVertices()

	gl.GenVertexArrays(1, &sd.cubeVAO)
	gl.BindVertexArray(sd.cubeVAO)

	gl.GenBuffers(1, &sd.cubeVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, sd.cubeVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, unsafe.Pointer(&vertices[0]), gl.STATIC_DRAW)

	// Position attribute (location = 0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, 6*4, nil)
	gl.EnableVertexAttribArray(0)

	// Normal attribute (location = 1)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, 6*4, unsafe.Pointer(uintptr(3*4)))
	gl.EnableVertexAttribArray(1)

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
}

// createWire sets up the streamed line buffer, position only.
func (sd *SceneDrawer) createWire() {
	gl.GenVertexArrays(1, &sd.wireVAO)
	gl.BindVertexArray(sd.wireVAO)

	gl.GenBuffers(1, &sd.wireVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, sd.wireVBO)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, 3*4, nil)
	gl.EnableVertexAttribArray(0)

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
}

// Close cleans up drawer resources.
func (sd *SceneDrawer) Close() {
	if sd.cubeVAO != 0 {
		gl.DeleteVertexArrays(1, &sd.cubeVAO)
	}
	if sd.cubeVBO != 0 {
		gl.DeleteBuffers(1, &sd.cubeVBO)
	}
	if sd.emptyVAO != 0 {
		gl.DeleteVertexArrays(1, &sd.emptyVAO)
	}
	if sd.wireVAO != 0 {
		gl.DeleteVertexArrays(1, &sd.wireVAO)
	}
	if sd.wireVBO != 0 {
		gl.DeleteBuffers(1, &sd.wireVBO)
	}
	sd.lit.delete()
	sd.caster.delete()
	sd.sky.delete()
	sd.wire.delete()
}

const cubeVertexCount = 36

// cubeVertices returns 36 vertices of [x, y, z, nx, ny, nz], counter-clockwise
// seen from outside.
func cubeVertices() []float32 {
	faces := [6]struct {
		normal, u, v mgl32.Vec3
	}{
		{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}},
		{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}},
		{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 1, 0}},
	}
	corners := [6][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, -1}, {1, 1}, {-1, 1}}

	out := make([]float32, 0, cubeVertexCount*6)
	for _, f := range faces {
		for _, c := range corners {
			p := f.normal.Add(f.u.Mul(c[0])).Add(f.v.Mul(c[1])).Mul(0.5)
			out = append(out, p[0], p[1], p[2], f.normal[0], f.normal[1], f.normal[2])
		}
	}
	return out
}

// boxModel maps the unit cube onto b.
func boxModel(b render.Bounds) mgl32.Mat4 {
	c := b.Center()
	size := b.Max.Sub(b.Min)
	return mgl32.Translate3D(c[0], c[1], c[2]).Mul4(mgl32.Scale3D(size[0], size[1], size[2]))
}

// queueColor picks a base color per render queue band.
func queueColor(queue int) mgl32.Vec4 {
	switch {
	case queue >= scene.QueueTransparent:
		return mgl32.Vec4{0.55, 0.75, 0.95, 0.4}
	case queue >= scene.QueueAlphaTest:
		return mgl32.Vec4{0.35, 0.6, 0.3, 1}
	}
	return mgl32.Vec4{0.8, 0.8, 0.78, 1}
}
