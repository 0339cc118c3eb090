package gpu

import "github.com/go-gl/mathgl/mgl32"

// GlobalState mirrors the global shader parameters and keywords produced by
// a command stream. Later writes replace earlier ones wholesale.
type GlobalState struct {
	VectorArrays map[PropertyID][]mgl32.Vec4
	MatrixArrays map[PropertyID][]mgl32.Mat4
	Vectors      map[PropertyID]mgl32.Vec4
	Floats       map[PropertyID]float32
	Textures     map[PropertyID]*RenderTexture
	Keywords     map[string]bool
}

// NewGlobalState returns an empty state.
func NewGlobalState() *GlobalState {
	return &GlobalState{
		VectorArrays: make(map[PropertyID][]mgl32.Vec4),
		MatrixArrays: make(map[PropertyID][]mgl32.Mat4),
		Vectors:      make(map[PropertyID]mgl32.Vec4),
		Floats:       make(map[PropertyID]float32),
		Textures:     make(map[PropertyID]*RenderTexture),
		Keywords:     make(map[string]bool),
	}
}

// Apply folds cmd into the state. It reports whether cmd was a global
// parameter or keyword command.
func (s *GlobalState) Apply(cmd Command) bool {
	switch c := cmd.(type) {
	case SetGlobalVectorArray:
		s.VectorArrays[c.ID] = c.Values
	case SetGlobalMatrixArray:
		s.MatrixArrays[c.ID] = c.Values
	case SetGlobalVector:
		s.Vectors[c.ID] = c.Value
	case SetGlobalFloat:
		s.Floats[c.ID] = c.Value
	case SetGlobalTexture:
		s.Textures[c.ID] = c.Texture
	case SetKeyword:
		s.Keywords[c.Keyword] = c.Enabled
	default:
		return false
	}
	return true
}

// Keyword reports whether keyword is currently enabled.
func (s *GlobalState) Keyword(keyword string) bool {
	return s.Keywords[keyword]
}
