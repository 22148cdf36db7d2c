package lights

import "github.com/df07/go-scene-raytracer/pkg/core"

// sampleOffset moves sample ray origins off the shaded point toward the light
const sampleOffset = 0.001

// PointLight is an infinitesimal light that always returns a single sample
type PointLight struct {
	position  core.Vec3
	intensity float64
	color     core.Vec3
}

// NewPointLight creates a point light at position
func NewPointLight(position core.Vec3, intensity float64, color core.Vec3) *PointLight {
	return &PointLight{
		position:  position,
		intensity: intensity,
		color:     color,
	}
}

func (pl *PointLight) Type() LightType {
	return LightTypePoint
}

// RaySamples returns one ray from point toward the light
func (pl *PointLight) RaySamples(point core.Vec3) []core.Ray {
	toLight := pl.position.Subtract(point).Normalize()
	return []core.Ray{core.NewRay(point.Add(toLight.Multiply(sampleOffset)), toLight)}
}

func (pl *PointLight) Position() core.Vec3 {
	return pl.position
}

func (pl *PointLight) Intensity() float64 {
	return pl.intensity
}

func (pl *PointLight) Color() core.Vec3 {
	return pl.color
}
