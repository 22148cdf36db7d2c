package geometry

import (
	"math"

	"github.com/df07/go-scene-raytracer/pkg/core"
)

// hitSphere intersects an object-space ray with a sphere of the given radius at the origin
func hitSphere(ray core.Ray, radius float64) (float64, core.Vec3, bool) {
	if radius <= 0 {
		return 0, core.Vec3{}, false
	}

	// Direction is unit length, so a == 1
	halfB := ray.Origin.Dot(ray.Direction)
	c := ray.Origin.LengthSquared() - radius*radius
	discriminant := halfB*halfB - c
	if discriminant < 0 {
		return 0, core.Vec3{}, false
	}

	sqrtd := math.Sqrt(discriminant)
	root := -halfB - sqrtd
	if root <= Epsilon {
		root = -halfB + sqrtd
		if root <= Epsilon {
			return 0, core.Vec3{}, false
		}
	}

	normal := ray.At(root).Multiply(1 / radius)
	return root, normal, true
}
