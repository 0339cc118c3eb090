package gpu

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrTextureTooLarge is returned when a requested texture exceeds the device limit.
var ErrTextureTooLarge = errors.New("texture exceeds device size limit")

// TextureFormat is the storage format of a render texture.
type TextureFormat int

const (
	FormatShadowMap TextureFormat = iota
	FormatColor
)

// FilterMode selects texture sampling.
type FilterMode int

const (
	FilterPoint FilterMode = iota
	FilterBilinear
)

// WrapMode selects addressing outside [0,1].
type WrapMode int

const (
	WrapClamp WrapMode = iota
	WrapRepeat
)

// TextureDesc describes a render texture request.
type TextureDesc struct {
	Width     int
	Height    int
	DepthBits int
	Format    TextureFormat
	Filter    FilterMode
	Wrap      WrapMode
}

// ShadowMapDesc returns the descriptor used for shadow atlases:
// square, 16-bit depth, bilinear and clamped.
func ShadowMapDesc(size int) TextureDesc {
	return TextureDesc{
		Width:     size,
		Height:    size,
		DepthBits: 16,
		Format:    FormatShadowMap,
		Filter:    FilterBilinear,
		Wrap:      WrapClamp,
	}
}

// RenderTexture is a handle to a device texture.
type RenderTexture struct {
	ID   uuid.UUID
	Desc TextureDesc

	// Native is the backend object name (a GL texture, for instance).
	Native uint32
}

func (t *RenderTexture) String() string {
	if t == nil {
		return "<nil>"
	}
	return fmt.Sprintf("rt:%s(%dx%d)", t.ID.String()[:8], t.Desc.Width, t.Desc.Height)
}

// TexturePool hands out transient render textures.
// A released texture may be returned by a later GetTemporary call.
type TexturePool interface {
	GetTemporary(desc TextureDesc) (*RenderTexture, error)
	ReleaseTemporary(rt *RenderTexture)
}

// Caps describes platform conventions the renderer must honor.
type Caps struct {
	// ReversedZ is true when the depth buffer maps near to 1 and far to 0.
	ReversedZ      bool
	MaxTextureSize int
}

// Device executes recorded command streams and owns the texture pool.
type Device interface {
	TexturePool
	Execute(cmds []Command) error
	Caps() Caps
}
