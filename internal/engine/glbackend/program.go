package glbackend

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/xrp/internal/engine/gpu"
)

// program is a linked shader program with cached uniform locations.
type program struct {
	id   uint32
	name string
	locs map[string]int32
}

// compileProgram compiles vertex and fragment shaders and links them into a program.
func compileProgram(name, vertexSrc, fragmentSrc string) (*program, error) {
	vert, err := compileShader(vertexSrc, gl.VERTEX_SHADER)
	if err != nil {
		return nil, fmt.Errorf("%s: vertex shader: %w", name, err)
	}
	defer gl.DeleteShader(vert)

	frag, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		return nil, fmt.Errorf("%s: fragment shader: %w", name, err)
	}
	defer gl.DeleteShader(frag)

	id := gl.CreateProgram()
	gl.AttachShader(id, vert)
	gl.AttachShader(id, frag)
	gl.LinkProgram(id)

	var status int32
	gl.GetProgramiv(id, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(id, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		gl.GetProgramInfoLog(id, logLen, nil, &log[0])
		gl.DeleteProgram(id)
		return nil, fmt.Errorf("%s: link: %s", name, string(log))
	}

	return &program{id: id, name: name, locs: make(map[string]int32)}, nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		gl.GetShaderInfoLog(shader, logLen, nil, &log[0])
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("compile: %s", string(log))
	}
	return shader, nil
}

// loc returns the uniform location for name, or -1 if the program does not
// use it. GL ignores writes to -1.
func (p *program) loc(name string) int32 {
	if l, ok := p.locs[name]; ok {
		return l
	}
	l := gl.GetUniformLocation(p.id, gl.Str(name+"\x00"))
	p.locs[name] = l
	return l
}

func (p *program) use() {
	gl.UseProgram(p.id)
}

func (p *program) setMat4(name string, m mgl32.Mat4) {
	gl.UniformMatrix4fv(p.loc(name), 1, false, &m[0])
}

func (p *program) setVec3(name string, v mgl32.Vec3) {
	gl.Uniform3f(p.loc(name), v[0], v[1], v[2])
}

func (p *program) setVec4(name string, v mgl32.Vec4) {
	gl.Uniform4f(p.loc(name), v[0], v[1], v[2], v[3])
}

func (p *program) setInt(name string, v int32) {
	gl.Uniform1i(p.loc(name), v)
}

// firstGlobalUnit is the first texture unit handed to global textures.
// Unit 0 stays free for per-draw textures.
const firstGlobalUnit = 1

// uploadGlobals writes every global parameter and keyword of s into the
// program. Parameters are addressed by their registered names, keywords by
// the keyword itself as an int uniform.
func (p *program) uploadGlobals(s *gpu.GlobalState, native func(*gpu.RenderTexture) (uint32, bool)) {
	for id, values := range s.VectorArrays {
		if len(values) == 0 {
			continue
		}
		gl.Uniform4fv(p.loc(gpu.Properties.Name(id)), int32(len(values)), &values[0][0])
	}
	for id, values := range s.MatrixArrays {
		if len(values) == 0 {
			continue
		}
		gl.UniformMatrix4fv(p.loc(gpu.Properties.Name(id)), int32(len(values)), false, &values[0][0])
	}
	for id, v := range s.Vectors {
		p.setVec4(gpu.Properties.Name(id), v)
	}
	for id, v := range s.Floats {
		gl.Uniform1f(p.loc(gpu.Properties.Name(id)), v)
	}

	unit := int32(firstGlobalUnit)
	for _, id := range sortedTextureIDs(s) {
		tex, ok := native(s.Textures[id])
		if !ok {
			continue
		}
		gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
		gl.BindTexture(gl.TEXTURE_2D, tex)
		p.setInt(gpu.Properties.Name(id), unit)
		unit++
	}
	gl.ActiveTexture(gl.TEXTURE0)

	for keyword, enabled := range s.Keywords {
		p.setInt(keyword, boolInt(enabled))
	}
}

// sortedTextureIDs gives texture units a stable assignment across frames.
func sortedTextureIDs(s *gpu.GlobalState) []gpu.PropertyID {
	ids := make([]gpu.PropertyID, 0, len(s.Textures))
	for id := 0; id < gpu.Properties.Len(); id++ {
		if _, ok := s.Textures[gpu.PropertyID(id)]; ok {
			ids = append(ids, gpu.PropertyID(id))
		}
	}
	return ids
}

func boolInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

func (p *program) delete() {
	if p != nil && p.id != 0 {
		gl.DeleteProgram(p.id)
		p.id = 0
	}
}
