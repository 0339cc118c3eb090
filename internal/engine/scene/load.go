package scene

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/xrp/internal/engine/render"
)

// ErrInvalidScene is wrapped by every scene file validation error.
var ErrInvalidScene = errors.New("invalid scene")

type fileScene struct {
	Lights    []fileLight    `yaml:"lights"`
	Renderers []fileRenderer `yaml:"renderers"`
}

type fileLight struct {
	Type      string      `yaml:"type"`
	Color     []float32   `yaml:"color"`
	Intensity *float32    `yaml:"intensity"`
	Position  []float32   `yaml:"position"`
	Direction []float32   `yaml:"direction"`
	Sun       *fileSun    `yaml:"sun"`
	Range     float32     `yaml:"range"`
	Angle     float32     `yaml:"angle"`
	Shadow    *fileShadow `yaml:"shadow"`
}

type fileSun struct {
	Longitude float32 `yaml:"longitude"`
	Latitude  float32 `yaml:"latitude"`
}

type fileShadow struct {
	Mode      string  `yaml:"mode"`
	Strength  float32 `yaml:"strength"`
	Bias      float32 `yaml:"bias"`
	NearPlane float32 `yaml:"near_plane"`
}

type fileRenderer struct {
	Name        string    `yaml:"name"`
	Center      []float32 `yaml:"center"`
	Size        []float32 `yaml:"size"`
	Queue       *int      `yaml:"queue"`
	CastShadows *bool     `yaml:"cast_shadows"`
}

// Load reads a YAML scene file.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scene: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes a YAML scene document.
func Parse(data []byte) (*Scene, error) {
	var f fileScene
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing scene: %w", err)
	}

	s := &Scene{}
	for i, fl := range f.Lights {
		l, err := fl.light()
		if err != nil {
			return nil, fmt.Errorf("light %d: %w", i, err)
		}
		s.AddLight(l)
	}
	for i, fr := range f.Renderers {
		r, err := fr.renderer()
		if err != nil {
			return nil, fmt.Errorf("renderer %d (%s): %w", i, fr.Name, err)
		}
		s.AddRenderer(r)
	}
	return s, nil
}

func (fl *fileLight) light() (render.Light, error) {
	color := mgl32.Vec4{1, 1, 1, 1}
	if fl.Color != nil {
		c, err := vec(fl.Color, 3, 4)
		if err != nil {
			return render.Light{}, fmt.Errorf("color: %w", err)
		}
		color = mgl32.Vec4{c[0], c[1], c[2], 1}
		if len(c) == 4 {
			color[3] = c[3]
		}
	}
	if fl.Intensity != nil {
		color = mgl32.Vec4{color[0] * *fl.Intensity, color[1] * *fl.Intensity, color[2] * *fl.Intensity, color[3]}
	}

	shadow, err := fl.Shadow.settings()
	if err != nil {
		return render.Light{}, err
	}

	switch strings.ToLower(fl.Type) {
	case "directional":
		dir, err := fl.direction()
		if err != nil {
			return render.Light{}, err
		}
		return DirectionalLight(dir, color, shadow), nil
	case "point", "":
		pos, err := vec3(fl.Position, "position")
		if err != nil {
			return render.Light{}, err
		}
		l := PointLight(pos, fl.Range, color)
		l.Shadow = shadow
		return l, nil
	case "spot":
		pos, err := vec3(fl.Position, "position")
		if err != nil {
			return render.Light{}, err
		}
		dir, err := fl.direction()
		if err != nil {
			return render.Light{}, err
		}
		return SpotLight(pos, dir, fl.Range, fl.Angle, color, shadow), nil
	}
	return render.Light{}, fmt.Errorf("%w: unknown light type %q", ErrInvalidScene, fl.Type)
}

func (fl *fileLight) direction() (mgl32.Vec3, error) {
	if fl.Sun != nil {
		return SunLightDirection(fl.Sun.Longitude, fl.Sun.Latitude), nil
	}
	dir, err := vec3(fl.Direction, "direction")
	if err != nil {
		return mgl32.Vec3{}, err
	}
	if dir.Len() == 0 {
		return mgl32.Vec3{}, fmt.Errorf("%w: zero direction", ErrInvalidScene)
	}
	return dir, nil
}

func (fs *fileShadow) settings() (render.ShadowSettings, error) {
	if fs == nil {
		return render.ShadowSettings{}, nil
	}
	s := render.ShadowSettings{Strength: fs.Strength, Bias: fs.Bias, NearPlane: fs.NearPlane}
	switch strings.ToLower(fs.Mode) {
	case "", "none":
		s.Mode = render.ShadowsNone
	case "hard":
		s.Mode = render.ShadowsHard
	case "soft":
		s.Mode = render.ShadowsSoft
	default:
		return s, fmt.Errorf("%w: unknown shadow mode %q", ErrInvalidScene, fs.Mode)
	}
	return s, nil
}

func (fr *fileRenderer) renderer() (Renderer, error) {
	if fr.Name == "" {
		return Renderer{}, fmt.Errorf("%w: missing name", ErrInvalidScene)
	}
	center, err := vec3(fr.Center, "center")
	if err != nil {
		return Renderer{}, err
	}
	size, err := vec3(fr.Size, "size")
	if err != nil {
		return Renderer{}, err
	}
	r := Renderer{
		Name:        fr.Name,
		Bounds:      Box(center, size),
		Queue:       QueueGeometry,
		CastShadows: true,
	}
	if fr.Queue != nil {
		r.Queue = *fr.Queue
	}
	if fr.CastShadows != nil {
		r.CastShadows = *fr.CastShadows
	}
	return r, nil
}

func vec(v []float32, lengths ...int) ([]float32, error) {
	for _, n := range lengths {
		if len(v) == n {
			return v, nil
		}
	}
	return nil, fmt.Errorf("%w: expected %v components, got %d", ErrInvalidScene, lengths, len(v))
}

func vec3(v []float32, field string) (mgl32.Vec3, error) {
	if _, err := vec(v, 3); err != nil {
		return mgl32.Vec3{}, fmt.Errorf("%s: %w", field, err)
	}
	return mgl32.Vec3{v[0], v[1], v[2]}, nil
}
