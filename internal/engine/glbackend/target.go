package glbackend

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/xrp/internal/engine/gpu"
)

// target is the GL side of a render texture: a framebuffer with either a
// depth-only texture (shadow maps) or a color texture plus depth renderbuffer.
type target struct {
	fbo      uint32
	texture  uint32
	depthRBO uint32
	desc     gpu.TextureDesc
}

// newTarget allocates GL storage for desc.
func newTarget(desc gpu.TextureDesc) (*target, error) {
	t := &target{desc: desc}

	gl.GenFramebuffers(1, &t.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)
	defer gl.BindFramebuffer(gl.FRAMEBUFFER, 0)

	gl.GenTextures(1, &t.texture)
	gl.BindTexture(gl.TEXTURE_2D, t.texture)
	defer gl.BindTexture(gl.TEXTURE_2D, 0)

	w, h := int32(desc.Width), int32(desc.Height)
	switch desc.Format {
	case gpu.FormatShadowMap:
		gl.TexImage2D(gl.TEXTURE_2D, 0, depthFormat(desc.DepthBits), w, h, 0, gl.DEPTH_COMPONENT, gl.FLOAT, nil)
		t.sampling()

		// Compare mode for sampler2DShadow
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_COMPARE_MODE, gl.COMPARE_REF_TO_TEXTURE)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_COMPARE_FUNC, gl.LEQUAL)

		gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.TEXTURE_2D, t.texture, 0)

		// No color buffer for shadow passes
		gl.DrawBuffer(gl.NONE)
		gl.ReadBuffer(gl.NONE)

	case gpu.FormatColor:
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, w, h, 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
		t.sampling()
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, t.texture, 0)

		if desc.DepthBits > 0 {
			gl.GenRenderbuffers(1, &t.depthRBO)
			gl.BindRenderbuffer(gl.RENDERBUFFER, t.depthRBO)
			gl.RenderbufferStorage(gl.RENDERBUFFER, depthFormat(desc.DepthBits), w, h)
			gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, t.depthRBO)
			gl.BindRenderbuffer(gl.RENDERBUFFER, 0)
		}

	default:
		t.destroy()
		return nil, fmt.Errorf("unsupported texture format %d", desc.Format)
	}

	if status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE {
		t.destroy()
		return nil, fmt.Errorf("framebuffer incomplete: 0x%x", status)
	}
	return t, nil
}

// sampling applies the descriptor's filter and wrap modes to the bound texture.
func (t *target) sampling() {
	filter := int32(gl.NEAREST)
	if t.desc.Filter == gpu.FilterBilinear {
		filter = gl.LINEAR
	}
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, filter)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, filter)

	wrap := int32(gl.CLAMP_TO_EDGE)
	if t.desc.Wrap == gpu.WrapRepeat {
		wrap = gl.REPEAT
	}
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, wrap)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, wrap)
}

// bind makes the target current and sets a full-size viewport.
func (t *target) bind() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)
	gl.Viewport(0, 0, int32(t.desc.Width), int32(t.desc.Height))
}

// readDepth returns the depth texture contents, row 0 at the bottom.
func (t *target) readDepth() []float32 {
	out := make([]float32, t.desc.Width*t.desc.Height)
	gl.BindTexture(gl.TEXTURE_2D, t.texture)
	gl.GetTexImage(gl.TEXTURE_2D, 0, gl.DEPTH_COMPONENT, gl.FLOAT, gl.Ptr(out))
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return out
}

func (t *target) destroy() {
	if t.fbo != 0 {
		gl.DeleteFramebuffers(1, &t.fbo)
		t.fbo = 0
	}
	if t.texture != 0 {
		gl.DeleteTextures(1, &t.texture)
		t.texture = 0
	}
	if t.depthRBO != 0 {
		gl.DeleteRenderbuffers(1, &t.depthRBO)
		t.depthRBO = 0
	}
}

func depthFormat(bits int) uint32 {
	switch {
	case bits <= 16:
		return gl.DEPTH_COMPONENT16
	case bits <= 24:
		return gl.DEPTH_COMPONENT24
	}
	return gl.DEPTH_COMPONENT32F
}
