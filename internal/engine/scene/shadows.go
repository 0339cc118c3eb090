package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/xrp/internal/engine/render"
)

// minSpotNearPlane keeps spot projections away from a zero near plane.
const minSpotNearPlane = 0.01

// ComputeDirectionalShadowMatrices fits an orthographic light frustum around
// one slice of the camera frustum. The slice runs between the split ratios of
// the shadow distance; its bounding sphere becomes the culling sphere. The
// light is pulled back far enough to include every caster in front of it.
func (c *CullResults) ComputeDirectionalShadowMatrices(lightIndex, cascadeIndex, cascadeCount int, splitRatios mgl32.Vec3, tileResolution int, nearPlane float32) (render.ShadowMatrices, bool) {
	if cascadeCount < 1 || cascadeCount > 4 || cascadeIndex < 0 || cascadeIndex >= cascadeCount {
		return render.ShadowMatrices{}, false
	}
	if lightIndex < 0 || lightIndex >= len(c.lights) || tileResolution <= 0 {
		return render.ShadowMatrices{}, false
	}
	l := &c.lights[lightIndex]
	if l.Type() != render.LightDirectional {
		return render.ShadowMatrices{}, false
	}
	casters, ok := c.ShadowCasterBounds(lightIndex)
	if !ok {
		return render.ShadowMatrices{}, false
	}
	distance := c.shadowDistance()
	if distance <= c.params.Near {
		return render.ShadowMatrices{}, false
	}

	fractions := sliceFractions(cascadeCount, splitRatios)
	from := fractions[cascadeIndex] * distance
	if from < c.params.Near {
		from = c.params.Near
	}
	to := fractions[cascadeIndex+1] * distance
	if to <= from {
		return render.ShadowMatrices{}, false
	}

	corners, ok := c.sliceCorners(from, to)
	if !ok {
		return render.ShadowMatrices{}, false
	}
	center, radius := boundingSphere(corners[:])
	// Quantize so that the projection size does not shimmer between frames.
	texels := float32(tileResolution) / 2
	radius = float32(math.Ceil(float64(radius*texels))) / texels

	forward := l.Forward().Normalize()
	backoff := radius
	for _, p := range boundsCorners(casters) {
		if d := -p.Sub(center).Dot(forward); d > backoff {
			backoff = d
		}
	}
	if nearPlane < 0 {
		nearPlane = 0
	}
	backoff += nearPlane

	eye := center.Sub(forward.Mul(backoff))
	return render.ShadowMatrices{
		View:  mgl32.LookAtV(eye, center, upFor(forward)),
		Proj:  mgl32.Ortho(-radius, radius, -radius, radius, nearPlane, backoff+radius),
		Split: render.SplitData{CullingSphere: center.Vec4(radius)},
	}, true
}

// ComputeSpotShadowMatrices builds a perspective frustum covering the spot
// cone from its near plane out to its range.
func (c *CullResults) ComputeSpotShadowMatrices(lightIndex int) (render.ShadowMatrices, bool) {
	if lightIndex < 0 || lightIndex >= len(c.lights) {
		return render.ShadowMatrices{}, false
	}
	l := &c.lights[lightIndex]
	spot, ok := l.Kind.(render.Spot)
	if !ok || spot.Angle <= 0 || spot.Angle >= 180 {
		return render.ShadowMatrices{}, false
	}
	if _, ok := c.ShadowCasterBounds(lightIndex); !ok {
		return render.ShadowMatrices{}, false
	}
	near := l.Shadow.NearPlane
	if near < minSpotNearPlane {
		near = minSpotNearPlane
	}
	if spot.Range <= near {
		return render.ShadowMatrices{}, false
	}

	pos := l.Position()
	forward := l.Forward().Normalize()
	return render.ShadowMatrices{
		View:  mgl32.LookAtV(pos, pos.Add(forward), upFor(forward)),
		Proj:  mgl32.Perspective(mgl32.DegToRad(spot.Angle), 1, near, spot.Range),
		Split: render.SplitData{CullingSphere: pos.Vec4(spot.Range)},
	}, true
}

// sliceFractions returns cascadeCount+1 boundaries in [0, 1].
func sliceFractions(cascadeCount int, ratios mgl32.Vec3) []float32 {
	f := make([]float32, cascadeCount+1)
	for i := 1; i < cascadeCount; i++ {
		f[i] = ratios[i-1]
	}
	f[cascadeCount] = 1
	return f
}

// sliceCorners returns the eight world-space corners of the camera frustum
// between view depths from and to.
func (c *CullResults) sliceCorners(from, to float32) ([8]mgl32.Vec3, bool) {
	var corners [8]mgl32.Vec3
	inv := c.params.Proj.Mul4(c.params.View).Inv()
	if inv == (mgl32.Mat4{}) {
		return corners, false
	}
	depth := c.params.Far - c.params.Near
	tFrom := (from - c.params.Near) / depth
	tTo := (to - c.params.Near) / depth

	i := 0
	for _, x := range []float32{-1, 1} {
		for _, y := range []float32{-1, 1} {
			n := mgl32.TransformCoordinate(mgl32.Vec3{x, y, -1}, inv)
			f := mgl32.TransformCoordinate(mgl32.Vec3{x, y, 1}, inv)
			ray := f.Sub(n)
			corners[i] = n.Add(ray.Mul(tFrom))
			corners[i+1] = n.Add(ray.Mul(tTo))
			i += 2
		}
	}
	return corners, true
}

func boundingSphere(points []mgl32.Vec3) (mgl32.Vec3, float32) {
	var center mgl32.Vec3
	for _, p := range points {
		center = center.Add(p)
	}
	center = center.Mul(1 / float32(len(points)))

	var radius float32
	for _, p := range points {
		if d := p.Sub(center).Len(); d > radius {
			radius = d
		}
	}
	return center, radius
}

func boundsCorners(b render.Bounds) [8]mgl32.Vec3 {
	var out [8]mgl32.Vec3
	for i := range out {
		for axis := 0; axis < 3; axis++ {
			if i&(1<<axis) != 0 {
				out[i][axis] = b.Max[axis]
			} else {
				out[i][axis] = b.Min[axis]
			}
		}
	}
	return out
}
