package gpu

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Command is one recorded GPU operation. Backends type-switch on the
// concrete command; unknown commands are ignored.
type Command interface {
	fmt.Stringer
}

// Rect is a pixel rectangle with its origin at the bottom-left.
type Rect struct {
	X, Y, W, H float32
}

// ClearFlag selects the buffers cleared when binding a render target.
type ClearFlag int

const (
	ClearDepth ClearFlag = 1 << iota
	ClearColor

	ClearNone ClearFlag = 0
)

// LoadAction says what happens to existing target contents on bind.
type LoadAction int

const (
	LoadDontCare LoadAction = iota
	LoadLoad
)

// StoreAction says whether target contents are kept after the pass.
type StoreAction int

const (
	StoreStore StoreAction = iota
	StoreDontCare
)

type SetGlobalVectorArray struct {
	ID     PropertyID
	Values []mgl32.Vec4
}

func (c SetGlobalVectorArray) String() string {
	return fmt.Sprintf("SetGlobalVectorArray(%s, %d)", Properties.Name(c.ID), len(c.Values))
}

type SetGlobalMatrixArray struct {
	ID     PropertyID
	Values []mgl32.Mat4
}

func (c SetGlobalMatrixArray) String() string {
	return fmt.Sprintf("SetGlobalMatrixArray(%s, %d)", Properties.Name(c.ID), len(c.Values))
}

type SetGlobalVector struct {
	ID    PropertyID
	Value mgl32.Vec4
}

func (c SetGlobalVector) String() string {
	return fmt.Sprintf("SetGlobalVector(%s, %v)", Properties.Name(c.ID), c.Value)
}

type SetGlobalFloat struct {
	ID    PropertyID
	Value float32
}

func (c SetGlobalFloat) String() string {
	return fmt.Sprintf("SetGlobalFloat(%s, %g)", Properties.Name(c.ID), c.Value)
}

type SetGlobalTexture struct {
	ID      PropertyID
	Texture *RenderTexture
}

func (c SetGlobalTexture) String() string {
	return fmt.Sprintf("SetGlobalTexture(%s, %s)", Properties.Name(c.ID), c.Texture)
}

type SetKeyword struct {
	Keyword string
	Enabled bool
}

func (c SetKeyword) String() string {
	return fmt.Sprintf("SetKeyword(%s, %t)", c.Keyword, c.Enabled)
}

// SetRenderTarget binds a texture for drawing. A nil Target binds the
// camera's default target.
type SetRenderTarget struct {
	Target *RenderTexture
	Load   LoadAction
	Store  StoreAction
	Clear  ClearFlag
}

func (c SetRenderTarget) String() string {
	return fmt.Sprintf("SetRenderTarget(%s)", c.Target)
}

type SetViewport struct {
	Rect Rect
}

func (c SetViewport) String() string {
	return fmt.Sprintf("SetViewport(%v)", c.Rect)
}

type EnableScissor struct {
	Rect Rect
}

func (c EnableScissor) String() string {
	return fmt.Sprintf("EnableScissor(%v)", c.Rect)
}

type DisableScissor struct{}

func (DisableScissor) String() string { return "DisableScissor" }

type SetViewProjection struct {
	View mgl32.Mat4
	Proj mgl32.Mat4
}

func (SetViewProjection) String() string { return "SetViewProjection" }

type ClearRenderTarget struct {
	Depth      bool
	Color      bool
	Background mgl32.Vec4
}

func (c ClearRenderTarget) String() string {
	return fmt.Sprintf("ClearRenderTarget(depth=%t, color=%t)", c.Depth, c.Color)
}

type BeginSample struct {
	Name string
}

func (c BeginSample) String() string { return "BeginSample(" + c.Name + ")" }

type EndSample struct {
	Name string
}

func (c EndSample) String() string { return "EndSample(" + c.Name + ")" }

// CommandBuffer records commands for later execution by a render context.
// Recorded arrays are copied, so callers may reuse their backing storage.
type CommandBuffer struct {
	Name string
	cmds []Command
}

// NewCommandBuffer creates an empty named buffer.
func NewCommandBuffer(name string) *CommandBuffer {
	return &CommandBuffer{Name: name}
}

// Commands returns the recorded commands.
func (b *CommandBuffer) Commands() []Command {
	return b.cmds
}

// Len returns the number of recorded commands.
func (b *CommandBuffer) Len() int {
	return len(b.cmds)
}

// Clear drops all recorded commands, keeping capacity.
func (b *CommandBuffer) Clear() {
	for i := range b.cmds {
		b.cmds[i] = nil
	}
	b.cmds = b.cmds[:0]
}

func (b *CommandBuffer) add(c Command) {
	b.cmds = append(b.cmds, c)
}

func (b *CommandBuffer) SetGlobalVectorArray(id PropertyID, values []mgl32.Vec4) {
	b.add(SetGlobalVectorArray{ID: id, Values: append([]mgl32.Vec4(nil), values...)})
}

func (b *CommandBuffer) SetGlobalMatrixArray(id PropertyID, values []mgl32.Mat4) {
	b.add(SetGlobalMatrixArray{ID: id, Values: append([]mgl32.Mat4(nil), values...)})
}

func (b *CommandBuffer) SetGlobalVector(id PropertyID, v mgl32.Vec4) {
	b.add(SetGlobalVector{ID: id, Value: v})
}

func (b *CommandBuffer) SetGlobalFloat(id PropertyID, v float32) {
	b.add(SetGlobalFloat{ID: id, Value: v})
}

func (b *CommandBuffer) SetGlobalTexture(id PropertyID, rt *RenderTexture) {
	b.add(SetGlobalTexture{ID: id, Texture: rt})
}

func (b *CommandBuffer) EnableKeyword(keyword string) {
	b.add(SetKeyword{Keyword: keyword, Enabled: true})
}

func (b *CommandBuffer) DisableKeyword(keyword string) {
	b.add(SetKeyword{Keyword: keyword, Enabled: false})
}

// SetKeyword enables or disables keyword.
func (b *CommandBuffer) SetKeyword(keyword string, enabled bool) {
	b.add(SetKeyword{Keyword: keyword, Enabled: enabled})
}

func (b *CommandBuffer) SetRenderTarget(rt *RenderTexture, load LoadAction, store StoreAction, clear ClearFlag) {
	b.add(SetRenderTarget{Target: rt, Load: load, Store: store, Clear: clear})
}

func (b *CommandBuffer) SetViewport(r Rect) {
	b.add(SetViewport{Rect: r})
}

func (b *CommandBuffer) EnableScissorRect(r Rect) {
	b.add(EnableScissor{Rect: r})
}

func (b *CommandBuffer) DisableScissorRect() {
	b.add(DisableScissor{})
}

func (b *CommandBuffer) SetViewProjectionMatrices(view, proj mgl32.Mat4) {
	b.add(SetViewProjection{View: view, Proj: proj})
}

func (b *CommandBuffer) ClearRenderTarget(depth, color bool, background mgl32.Vec4) {
	b.add(ClearRenderTarget{Depth: depth, Color: color, Background: background})
}

func (b *CommandBuffer) BeginSample(name string) {
	b.add(BeginSample{Name: name})
}

func (b *CommandBuffer) EndSample(name string) {
	b.add(EndSample{Name: name})
}
