// Package render defines the contracts between the frame renderer and the
// engine services it drives: cameras, culling, shadow matrix primitives and
// draw submission.
package render

import "github.com/go-gl/mathgl/mgl32"

// LightType identifies the kind of light source.
type LightType int

const (
	LightDirectional LightType = iota
	LightPoint
	LightSpot
)

func (t LightType) String() string {
	switch t {
	case LightDirectional:
		return "directional"
	case LightPoint:
		return "point"
	case LightSpot:
		return "spot"
	}
	return "unknown"
}

// ShadowMode selects whether and how a light casts shadows.
type ShadowMode int

const (
	ShadowsNone ShadowMode = iota
	ShadowsHard
	ShadowsSoft
)

// LightKind carries the parameters specific to one type of light.
type LightKind interface {
	Type() LightType
}

// Directional is a light infinitely far away along its forward axis.
type Directional struct{}

func (Directional) Type() LightType { return LightDirectional }

// Point emits in all directions up to Range.
type Point struct {
	Range float32
}

func (Point) Type() LightType { return LightPoint }

// Spot emits in a cone around its forward axis.
type Spot struct {
	Range float32
	// Angle is the full cone angle in degrees.
	Angle float32
}

func (Spot) Type() LightType { return LightSpot }

// ShadowSettings are the per-light shadow parameters.
type ShadowSettings struct {
	Mode      ShadowMode
	Strength  float32
	Bias      float32
	NearPlane float32
}

// Light is a visible light as reported by culling.
type Light struct {
	// Color is the final linear color, intensity already applied.
	Color mgl32.Vec4
	// LocalToWorld places the light; column 2 is its forward axis and
	// column 3 its position.
	LocalToWorld mgl32.Mat4
	Shadow       ShadowSettings
	Kind         LightKind
}

// Type returns the light type, or LightPoint if Kind is nil.
func (l *Light) Type() LightType {
	if l.Kind == nil {
		return LightPoint
	}
	return l.Kind.Type()
}

// Forward returns the unnormalized direction the light shines along.
func (l *Light) Forward() mgl32.Vec3 {
	return l.LocalToWorld.Col(2).Vec3()
}

// Position returns the world position of the light.
func (l *Light) Position() mgl32.Vec3 {
	return l.LocalToWorld.Col(3).Vec3()
}

// Range returns the light range, or 0 for directional lights.
func (l *Light) Range() float32 {
	switch k := l.Kind.(type) {
	case Point:
		return k.Range
	case Spot:
		return k.Range
	}
	return 0
}
