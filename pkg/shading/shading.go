// Package shading evaluates Lambert and Phong lighting with binary shadows.
package shading

import (
	"fmt"
	"math"
	"strings"

	"github.com/df07/go-scene-raytracer/pkg/core"
	"github.com/df07/go-scene-raytracer/pkg/lights"
)

// ShadowBias offsets shadow ray origins along the surface normal
const ShadowBias = 1e-4

// Mode selects how a hit is colored
type Mode int

const (
	Flat Mode = iota
	Lambert
	Phong
)

var modeNames = [...]string{"flat", "lambert", "phong"}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("mode(%d)", int(m))
	}
	return modeNames[m]
}

// ParseMode converts "flat", "lambert" or "phong" into a Mode
func ParseMode(s string) (Mode, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range modeNames {
		if n == name {
			return Mode(i), nil
		}
	}
	return Flat, fmt.Errorf("unknown shading mode %q", s)
}

// MarshalText implements encoding.TextMarshaler
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Params are the global shading controls
type Params struct {
	GlobalIntensity float64 // Added to every light's intensity
	Exponent        float64 // Phong specular exponent

	// ShadowCutoff only counts occluders between the point and the light.
	// Off by default: any object hit along the shadow ray, even beyond the
	// light, blocks that light.
	ShadowCutoff bool
}

// DefaultParams returns no intensity bias and a specular exponent of 10
func DefaultParams() Params {
	return Params{GlobalIntensity: 0, Exponent: 10}
}

// Occluder answers shadow queries against the scene
type Occluder interface {
	// Occluded reports whether anything is hit along ray closer than
	// maxDistance, which is +Inf unless Params.ShadowCutoff is set
	Occluded(ray core.Ray, maxDistance float64) bool
}

// Shader evaluates lighting at surface points
type Shader struct {
	Lights   []lights.Light
	Occluder Occluder // nil disables shadows
	Params   Params

	// ViewPosition stands in for the eye when computing specular highlights.
	// It is a fixed point (the camera's view plane position), not the
	// per-pixel view direction.
	ViewPosition core.Vec3
}

// Shade colors a hit according to mode
func (s *Shader) Shade(mode Mode, p, n, diffuse, specular core.Vec3) core.Vec3 {
	switch mode {
	case Lambert:
		return s.Lambert(p, n, diffuse)
	case Phong:
		return s.Phong(p, n, diffuse, specular, s.Params.Exponent)
	default:
		return diffuse
	}
}

// Lambert sums diffuse * (I + global) * lightColor * max(n.L, 0) over every
// unshadowed sample of every light. Samples are summed, not averaged.
func (s *Shader) Lambert(p, n, diffuse core.Vec3) core.Vec3 {
	var color core.Vec3
	s.eachVisibleSample(p, n, func(light lights.Light, l core.Vec3, strength float64) {
		color = color.Add(s.diffuseTerm(light, n, l, diffuse, strength))
	})
	return color
}

// Phong adds a specular term to the Lambert term for every unshadowed sample:
// specular * max(normalize(view).reflect(-L, n), 0)^exponent * lightColor * (I + global)
func (s *Shader) Phong(p, n, diffuse, specular core.Vec3, exponent float64) core.Vec3 {
	var color core.Vec3
	view := s.ViewPosition.Normalize()
	s.eachVisibleSample(p, n, func(light lights.Light, l core.Vec3, strength float64) {
		highlight := math.Pow(math.Max(view.Dot(l.Negate().Reflect(n)), 0), exponent)
		spec := specular.MultiplyVec(light.Color()).Multiply(highlight * strength)
		color = color.Add(s.diffuseTerm(light, n, l, diffuse, strength)).Add(spec)
	})
	return color
}

func (s *Shader) diffuseTerm(light lights.Light, n, l, diffuse core.Vec3, strength float64) core.Vec3 {
	return diffuse.MultiplyVec(light.Color()).Multiply(strength * math.Max(n.Dot(l), 0))
}

// eachVisibleSample calls fn once per light sample whose shadow ray from
// p + n*ShadowBias hits nothing
func (s *Shader) eachVisibleSample(p, n core.Vec3, fn func(light lights.Light, l core.Vec3, strength float64)) {
	origin := p.Add(n.Multiply(ShadowBias))
	for _, light := range s.Lights {
		l := light.Position().Subtract(p).Normalize()
		strength := light.Intensity() + s.Params.GlobalIntensity
		distance := math.Inf(1)
		if s.Params.ShadowCutoff {
			distance = light.Position().Distance(origin)
		}

		for range light.RaySamples(p) {
			if s.Occluder != nil && s.Occluder.Occluded(core.NewRay(origin, l), distance) {
				continue
			}
			fn(light, l, strength)
		}
	}
}
