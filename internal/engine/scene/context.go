package scene

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/xrp/internal/engine/gpu"
	"github.com/Faultbox/xrp/internal/engine/render"
	"github.com/Faultbox/xrp/internal/logger"
)

// SetupCamera binds a camera's matrices as the current view.
type SetupCamera struct {
	Camera   string
	Position mgl32.Vec3
	View     mgl32.Mat4
	Proj     mgl32.Mat4
}

func (c SetupCamera) String() string { return "SetupCamera(" + c.Camera + ")" }

// DrawRenderers draws the listed renderers with one shader pass.
type DrawRenderers struct {
	Pass            string
	Sort            render.SortCriteria
	DynamicBatching bool
	Instancing      bool
	Renderers       []string
}

func (c DrawRenderers) String() string {
	return fmt.Sprintf("DrawRenderers(%s, [%s])", c.Pass, strings.Join(c.Renderers, " "))
}

// DrawShadows draws the casters of one light into the bound shadow target.
type DrawShadows struct {
	LightIndex    int
	CullingSphere mgl32.Vec4
	Casters       []string
}

func (c DrawShadows) String() string {
	return fmt.Sprintf("DrawShadows(light=%d, [%s])", c.LightIndex, strings.Join(c.Casters, " "))
}

// DrawSkybox fills the untouched background of a camera.
type DrawSkybox struct {
	Camera string
}

func (c DrawSkybox) String() string { return "DrawSkybox(" + c.Camera + ")" }

// Context queues a frame's commands and submits them to a device. It
// implements render.Context.
type Context struct {
	scene  *Scene
	device gpu.Device
	queue  []gpu.Command
	cull   *CullResults
}

// NewContext creates a context drawing s on device.
func NewContext(s *Scene, device gpu.Device) *Context {
	return &Context{scene: s, device: device}
}

func (c *Context) Cull(params render.CullingParameters) render.CullingResults {
	c.cull = c.scene.Cull(params)
	return c.cull
}

func (c *Context) SetupCameraProperties(cam render.Camera) {
	p, ok := cam.CullingParameters()
	if !ok {
		return
	}
	c.queue = append(c.queue, SetupCamera{
		Camera:   cam.Name(),
		Position: p.Position,
		View:     p.View,
		Proj:     p.Proj,
	})
}

func (c *Context) ExecuteCommandBuffer(cb *gpu.CommandBuffer) {
	c.queue = append(c.queue, cb.Commands()...)
}

// DrawRenderers draws the visible renderers in the filter's queue range,
// opaque front to back and transparent back to front.
func (c *Context) DrawRenderers(cull render.CullingResults, draw render.DrawingSettings, filter render.FilteringSettings) {
	cr, ok := cull.(*CullResults)
	if !ok {
		logger.Warn("draw skipped, culling results from another context")
		return
	}

	type entry struct {
		name string
		dist float32
	}
	var entries []entry
	eye := cr.params.Position
	for _, r := range cr.VisibleRenderers() {
		if !filter.Queue.Contains(r.Queue) {
			continue
		}
		entries = append(entries, entry{r.Name, r.Bounds.Center().Sub(eye).Len()})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if draw.Sort == render.SortCommonTransparent {
			return entries[i].dist > entries[j].dist
		}
		return entries[i].dist < entries[j].dist
	})

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.name
	}
	c.queue = append(c.queue, DrawRenderers{
		Pass:            draw.Pass,
		Sort:            draw.Sort,
		DynamicBatching: draw.DynamicBatching,
		Instancing:      draw.Instancing,
		Renderers:       names,
	})
}

// DrawShadows draws the casters reaching the split's culling sphere, or all
// casters of the light when the sphere is empty.
func (c *Context) DrawShadows(settings render.ShadowDrawingSettings) {
	if c.cull == nil || settings.LightIndex < 0 || settings.LightIndex >= len(c.cull.lights) {
		return
	}
	sphere := settings.Split.CullingSphere
	center, radius := sphere.Vec3(), sphere.W()
	if radius <= 0 {
		center, radius = c.cull.influence(&c.cull.lights[settings.LightIndex])
	}

	casters := c.cull.casters(center, radius)
	names := make([]string, len(casters))
	for i, r := range casters {
		names[i] = r.Name
	}
	c.queue = append(c.queue, DrawShadows{
		LightIndex:    settings.LightIndex,
		CullingSphere: sphere,
		Casters:       names,
	})
}

func (c *Context) DrawSkybox(cam render.Camera) {
	c.queue = append(c.queue, DrawSkybox{Camera: cam.Name()})
}

// Submit hands the queued commands to the device and empties the queue.
func (c *Context) Submit() error {
	cmds := c.queue
	c.queue = nil
	logger.Debug("submitting frame", zap.Int("commands", len(cmds)))
	if err := c.device.Execute(cmds); err != nil {
		return fmt.Errorf("executing %d commands: %w", len(cmds), err)
	}
	return nil
}

// Pending returns the number of queued commands.
func (c *Context) Pending() int {
	return len(c.queue)
}
