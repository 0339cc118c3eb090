package render

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/xrp/internal/engine/gpu"
)

// ClearFlags describes how a camera clears its target before drawing.
type ClearFlags int

const (
	ClearSkybox ClearFlags = iota
	ClearSolidColor
	ClearDepthOnly
	ClearNothing
)

// ClearsDepth reports whether the depth buffer is cleared.
func (f ClearFlags) ClearsDepth() bool {
	return f != ClearNothing
}

// ClearsColor reports whether the color buffer is cleared. Skybox cameras
// leave color alone since the skybox covers it.
func (f ClearFlags) ClearsColor() bool {
	return f == ClearSolidColor
}

// Bounds is an axis-aligned box.
type Bounds struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// Center returns the box center.
func (b Bounds) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Extents returns the half size of the box.
func (b Bounds) Extents() mgl32.Vec3 {
	return b.Max.Sub(b.Min).Mul(0.5)
}

// Encapsulate returns the smallest box containing b and o.
func (b Bounds) Encapsulate(o Bounds) Bounds {
	for i := 0; i < 3; i++ {
		if o.Min[i] < b.Min[i] {
			b.Min[i] = o.Min[i]
		}
		if o.Max[i] > b.Max[i] {
			b.Max[i] = o.Max[i]
		}
	}
	return b
}

// SplitData carries the culling primitive computed with shadow matrices.
type SplitData struct {
	// CullingSphere is (center, radius).
	CullingSphere mgl32.Vec4
}

// ShadowMatrices is the result of a shadow matrix primitive.
type ShadowMatrices struct {
	View  mgl32.Mat4
	Proj  mgl32.Mat4
	Split SplitData
}

// CullingParameters is what a camera hands to culling.
type CullingParameters struct {
	Camera         string
	Position       mgl32.Vec3
	View           mgl32.Mat4
	Proj           mgl32.Mat4
	Near           float32
	Far            float32
	ShadowDistance float32
}

// Camera is a viewpoint rendered once per frame.
type Camera interface {
	Name() string
	// CullingParameters returns false when the camera cannot be culled,
	// for instance with a degenerate viewport.
	CullingParameters() (CullingParameters, bool)
	FarClipPlane() float32
	ClearFlags() ClearFlags
	BackgroundColor() mgl32.Vec4
}

// CullingResults is the visible set for one camera.
type CullingResults interface {
	VisibleLights() []Light
	// ShadowCasterBounds returns false when the light has no shadow casters
	// in view.
	ShadowCasterBounds(lightIndex int) (Bounds, bool)
	ComputeDirectionalShadowMatrices(lightIndex, cascadeIndex, cascadeCount int, splitRatios mgl32.Vec3, tileResolution int, nearPlane float32) (ShadowMatrices, bool)
	ComputeSpotShadowMatrices(lightIndex int) (ShadowMatrices, bool)
}

// SortCriteria orders renderers within a draw.
type SortCriteria int

const (
	SortCommonOpaque SortCriteria = iota
	SortCommonTransparent
)

// QueueRange selects renderers by render queue.
type QueueRange struct {
	Lower int
	Upper int
}

var (
	QueueOpaque      = QueueRange{Lower: 0, Upper: 2500}
	QueueTransparent = QueueRange{Lower: 2501, Upper: 5000}
)

// Contains reports whether queue falls in the range.
func (q QueueRange) Contains(queue int) bool {
	return queue >= q.Lower && queue <= q.Upper
}

type DrawingSettings struct {
	Pass            string
	Sort            SortCriteria
	DynamicBatching bool
	Instancing      bool
}

type FilteringSettings struct {
	Queue QueueRange
	// LayerMask of -1 accepts every layer.
	LayerMask int32
}

type ShadowDrawingSettings struct {
	LightIndex int
	Split      SplitData
}

// Context buffers commands and draws for later submission.
type Context interface {
	Cull(params CullingParameters) CullingResults
	SetupCameraProperties(cam Camera)
	// ExecuteCommandBuffer copies the buffer's commands into the context queue.
	ExecuteCommandBuffer(cb *gpu.CommandBuffer)
	DrawRenderers(cull CullingResults, draw DrawingSettings, filter FilteringSettings)
	DrawShadows(settings ShadowDrawingSettings)
	DrawSkybox(cam Camera)
	Submit() error
}
