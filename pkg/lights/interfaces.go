package lights

import "github.com/df07/go-scene-raytracer/pkg/core"

type LightType string

const (
	LightTypePoint LightType = "point"
)

// Light is anything that can generate shadow-test rays toward itself
type Light interface {
	Type() LightType

	// RaySamples returns the sample rays from a shaded point toward the light.
	// Each sample contributes separately, so callers sum over all of them.
	RaySamples(point core.Vec3) []core.Ray

	Position() core.Vec3
	Intensity() float64
	Color() core.Vec3
}
