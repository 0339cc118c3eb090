// Package gpu defines the recorded command stream and device contracts the
// frame renderer writes into.
package gpu

import "fmt"

// PropertyID identifies a global shader parameter.
type PropertyID int32

// InvalidProperty is returned for names a registry does not know.
const InvalidProperty PropertyID = -1

// Registry maps shader parameter names to stable IDs.
// A registry is immutable once built and safe for concurrent reads.
type Registry struct {
	ids   map[string]PropertyID
	names []string
}

// NewRegistry builds a registry assigning IDs in argument order.
// Duplicate names keep their first ID.
func NewRegistry(names ...string) *Registry {
	r := &Registry{
		ids:   make(map[string]PropertyID, len(names)),
		names: make([]string, 0, len(names)),
	}
	for _, name := range names {
		if _, ok := r.ids[name]; ok {
			continue
		}
		r.ids[name] = PropertyID(len(r.names))
		r.names = append(r.names, name)
	}
	return r
}

// ID returns the ID for name, or InvalidProperty.
func (r *Registry) ID(name string) PropertyID {
	if id, ok := r.ids[name]; ok {
		return id
	}
	return InvalidProperty
}

// MustID is like ID but panics on unknown names. Use it for package-level
// lookups resolved at process start.
func (r *Registry) MustID(name string) PropertyID {
	id := r.ID(name)
	if id == InvalidProperty {
		panic(fmt.Sprintf("gpu: unknown shader property %q", name))
	}
	return id
}

// Name returns the parameter name for id, or "" if out of range.
func (r *Registry) Name(id PropertyID) string {
	if id < 0 || int(id) >= len(r.names) {
		return ""
	}
	return r.names[id]
}

// Len returns the number of registered names.
func (r *Registry) Len() int {
	return len(r.names)
}

// Global shader parameter names published by the frame renderer.
const (
	VisibleLightColors                = "_VisibleLightColors"
	VisibleLightDirectionsOrPositions = "_VisibleLightDirectionsOrPositions"
	VisibleLightAttenuations          = "_VisibleLightAttenuations"
	VisibleLightSpotDirections        = "_VisibleLightSpotDirections"
	ShadowMap                         = "_ShadowMap"
	WorldToShadowMatrices             = "_WorldToShadowMatrices"
	ShadowBias                        = "_ShadowBias"
	ShadowData                        = "_ShadowData"
	ShadowMapSize                     = "_ShadowMapSize"
	GlobalShadowData                  = "_GlobalShadowData"
	CascadedShadowMap                 = "_CascadedShadowMap"
	WorldToShadowCascadeMatrices      = "_WorldToShadowCascadeMatrices"
	CascadedShadowMapSize             = "_CascadedShadowMapSize"
	CascadedShadowStrength            = "_CascadedShadowStrength"
	CascadeCullingSpheres             = "_CascadeCullingSpheres"
)

// Shader keywords toggled by the frame renderer.
const (
	KeywordShadowsSoft         = "_SHADOWS_SOFT"
	KeywordCascadedShadowsHard = "_CASCADED_SHADOWS_HARD"
	KeywordCascadedShadowsSoft = "_CASCADED_SHADOWS_SOFT"
)

// Properties is the process-wide registry of every published parameter.
var Properties = NewRegistry(
	VisibleLightColors,
	VisibleLightDirectionsOrPositions,
	VisibleLightAttenuations,
	VisibleLightSpotDirections,
	ShadowMap,
	WorldToShadowMatrices,
	ShadowBias,
	ShadowData,
	ShadowMapSize,
	GlobalShadowData,
	CascadedShadowMap,
	WorldToShadowCascadeMatrices,
	CascadedShadowMapSize,
	CascadedShadowStrength,
	CascadeCullingSpheres,
)
