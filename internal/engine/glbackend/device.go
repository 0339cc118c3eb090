// Package glbackend executes recorded frame commands on an OpenGL 4.1 core
// context.
package glbackend

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/xrp/internal/engine/gpu"
	"github.com/Faultbox/xrp/internal/logger"
)

// Drawer handles the commands a device does not know, such as scene draws.
// Commands the drawer does not know either are ignored.
type Drawer interface {
	Draw(d *Device, cmd gpu.Command) error
	Close()
}

// Device is a gpu.Device backed by the current GL context.
// IMPORTANT: Must be created AFTER the OpenGL context and used from the
// thread that owns it.
type Device struct {
	caps    gpu.Caps
	pool    *pool
	globals *gpu.GlobalState
	drawer  Drawer

	width, height int32
	viewProj      mgl32.Mat4
	current       *target
	samples       []string
}

// New initializes GL and creates a device for a width x height default
// framebuffer.
func New(width, height int) (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	var maxSize int32
	gl.GetIntegerv(gl.MAX_TEXTURE_SIZE, &maxSize)

	logger.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
		zap.Int32("max_texture_size", maxSize),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)

	d := &Device{
		caps:     gpu.Caps{ReversedZ: false, MaxTextureSize: int(maxSize)},
		globals:  gpu.NewGlobalState(),
		width:    int32(width),
		height:   int32(height),
		viewProj: mgl32.Ident4(),
	}
	d.pool = newPool(int(maxSize), newTarget, (*target).destroy)
	return d, nil
}

// SetDrawer installs the handler for commands the device does not know.
// The device closes it on Close.
func (d *Device) SetDrawer(dr Drawer) {
	d.drawer = dr
}

func (d *Device) Caps() gpu.Caps {
	return d.caps
}

func (d *Device) GetTemporary(desc gpu.TextureDesc) (*gpu.RenderTexture, error) {
	return d.pool.get(desc)
}

func (d *Device) ReleaseTemporary(rt *gpu.RenderTexture) {
	d.pool.put(rt)
}

// Trim frees pooled textures no frame is using.
func (d *Device) Trim() {
	if n := d.pool.trim(); n > 0 {
		logger.Debug("render textures trimmed", zap.Int("count", n))
	}
}

// Resize handles window resize.
func (d *Device) Resize(width, height int) {
	d.width, d.height = int32(width), int32(height)
	logger.Debug("device resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Globals returns the global shader state built from executed commands.
func (d *Device) Globals() *gpu.GlobalState {
	return d.globals
}

// ViewProjection returns the current view-projection matrix.
func (d *Device) ViewProjection() mgl32.Mat4 {
	return d.viewProj
}

// SetViewProjection replaces the current view-projection matrix.
func (d *Device) SetViewProjection(view, proj mgl32.Mat4) {
	d.viewProj = proj.Mul4(view)
}

// DrawingShadows reports whether a shadow map is bound.
func (d *Device) DrawingShadows() bool {
	return d.current != nil && d.current.desc.Format == gpu.FormatShadowMap
}

// Texture returns the GL texture behind a live render texture.
func (d *Device) Texture(rt *gpu.RenderTexture) (uint32, bool) {
	t, ok := d.pool.lookup(rt)
	if !ok {
		return 0, false
	}
	return t.texture, true
}

// ReadDepth reads back a live shadow map, row 0 at the bottom.
func (d *Device) ReadDepth(rt *gpu.RenderTexture) ([]float32, error) {
	t, ok := d.pool.lookup(rt)
	if !ok {
		return nil, fmt.Errorf("reading %s: not a live texture", rt)
	}
	if t.desc.Format != gpu.FormatShadowMap {
		return nil, fmt.Errorf("reading %s: not a depth texture", rt)
	}
	return t.readDepth(), nil
}

// ReadPixels reads the default framebuffer as RGBA, row 0 at the bottom.
func (d *Device) ReadPixels() []byte {
	pixels := make([]byte, d.width*d.height*4)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.ReadPixels(0, 0, d.width, d.height, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels
}

// Size returns the default framebuffer size.
func (d *Device) Size() (width, height int) {
	return int(d.width), int(d.height)
}

// Execute replays cmds against the GL context.
func (d *Device) Execute(cmds []gpu.Command) error {
	for i, cmd := range cmds {
		if d.globals.Apply(cmd) {
			continue
		}
		if err := d.execute(cmd); err != nil {
			return fmt.Errorf("command %d %s: %w", i, cmd, err)
		}
	}
	if len(d.samples) > 0 {
		logger.Warn("unbalanced samples after execute", zap.Strings("open", d.samples))
		d.samples = d.samples[:0]
	}
	return nil
}

func (d *Device) execute(cmd gpu.Command) error {
	switch c := cmd.(type) {
	case gpu.SetRenderTarget:
		return d.bindTarget(c)

	case gpu.SetViewport:
		gl.Viewport(int32(c.Rect.X), int32(c.Rect.Y), int32(c.Rect.W), int32(c.Rect.H))

	case gpu.EnableScissor:
		gl.Enable(gl.SCISSOR_TEST)
		gl.Scissor(int32(c.Rect.X), int32(c.Rect.Y), int32(c.Rect.W), int32(c.Rect.H))

	case gpu.DisableScissor:
		gl.Disable(gl.SCISSOR_TEST)

	case gpu.SetViewProjection:
		d.SetViewProjection(c.View, c.Proj)

	case gpu.ClearRenderTarget:
		clearTarget(c.Depth, c.Color, c.Background)

	case gpu.BeginSample:
		d.samples = append(d.samples, c.Name)

	case gpu.EndSample:
		n := len(d.samples)
		if n == 0 || d.samples[n-1] != c.Name {
			return fmt.Errorf("sample %q ended but not open", c.Name)
		}
		d.samples = d.samples[:n-1]

	default:
		if d.drawer == nil {
			return nil
		}
		return d.drawer.Draw(d, cmd)
	}
	return nil
}

func (d *Device) bindTarget(c gpu.SetRenderTarget) error {
	if c.Target == nil {
		d.current = nil
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		gl.Viewport(0, 0, d.width, d.height)
	} else {
		t, ok := d.pool.lookup(c.Target)
		if !ok {
			return fmt.Errorf("binding %s: not a live texture", c.Target)
		}
		d.current = t
		t.bind()
	}

	if c.Clear != gpu.ClearNone {
		clearTarget(c.Clear&gpu.ClearDepth != 0, c.Clear&gpu.ClearColor != 0, mgl32.Vec4{})
	}
	return nil
}

// clearTarget clears the bound target. Scissor state is respected.
func clearTarget(depth, color bool, background mgl32.Vec4) {
	var mask uint32
	if depth {
		gl.DepthMask(true)
		mask |= gl.DEPTH_BUFFER_BIT
	}
	if color {
		gl.ClearColor(background[0], background[1], background[2], background[3])
		mask |= gl.COLOR_BUFFER_BIT
	}
	if mask != 0 {
		gl.Clear(mask)
	}
}

// Close releases every GL object owned by the device.
func (d *Device) Close() {
	logger.Info("closing device")
	if d.drawer != nil {
		d.drawer.Close()
	}
	d.pool.close()
}
