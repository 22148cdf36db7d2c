package geometry

import (
	"github.com/df07/go-scene-raytracer/pkg/core"
	"github.com/df07/go-scene-raytracer/pkg/transform"
	"github.com/go-gl/mathgl/mgl64"
)

// Epsilon is the minimum object-space ray parameter accepted as a hit
const Epsilon = 1e-4

// LightRadius is the visual radius used when picking point lights
const LightRadius = 0.1

// HitRecord contains information about a ray-object intersection
type HitRecord struct {
	Point    core.Vec3 // World-space intersection point
	Normal   core.Vec3 // World-space outward surface normal
	Distance float64   // Euclidean distance from the world ray origin
	Local    core.Vec3 // Object-space intersection point
}

// Shape holds the extents of a primitive in its own object space
type Shape struct {
	Kind   Kind
	Radius float64   // Sphere and cone radius
	Width  float64   // Cube X extent, plane first tangent extent
	Height float64   // Cube Y extent, cone height, plane second tangent extent
	Depth  float64   // Cube Z extent
	Normal core.Vec3 // Plane normal, axis aligned
}

// Intersect tests a world-space ray against the shape placed by world.
// inverse must be the inverse of world. The ray is mapped into object space
// by transforming its origin and origin+direction, so non-uniform scale is
// handled, and hits are mapped back to world space.
func (s Shape) Intersect(ray core.Ray, world, inverse mgl64.Mat4) (*HitRecord, bool) {
	origin := transform.Point(inverse, ray.Origin)
	ahead := transform.Point(inverse, ray.Origin.Add(ray.Direction))
	local := core.NewRay(origin, ahead.Subtract(origin))
	if local.Direction.IsZero() {
		return nil, false
	}

	var (
		t      float64
		normal core.Vec3
		ok     bool
	)
	switch s.Kind {
	case Sphere:
		t, normal, ok = hitSphere(local, s.Radius)
	case PointLight:
		t, normal, ok = hitSphere(local, LightRadius)
	case Cube:
		half := core.NewVec3(s.Width/2, s.Height/2, s.Depth/2)
		t, normal, ok = hitBox(local, half.Negate(), half)
	case Cone:
		t, normal, ok = hitBox(local,
			core.NewVec3(-s.Radius, -s.Radius, 0),
			core.NewVec3(s.Radius, s.Radius, s.Height))
	case Plane:
		t, normal, ok = hitPlane(local, s.Normal, s.Width, s.Height)
	}
	if !ok {
		return nil, false
	}

	localPoint := local.At(t)
	point := transform.Point(world, localPoint)
	return &HitRecord{
		Point:    point,
		Normal:   transform.Normal(inverse, normal),
		Distance: point.Distance(ray.Origin),
		Local:    localPoint,
	}, true
}

// Valid reports whether the shape has positive extents
func (s Shape) Valid() bool {
	switch s.Kind {
	case Sphere:
		return s.Radius > 0
	case Cube:
		return s.Width > 0 && s.Height > 0 && s.Depth > 0
	case Cone:
		return s.Radius > 0 && s.Height > 0
	case Plane:
		_, ok := dominantAxis(s.Normal)
		return ok && s.Width > 0 && s.Height > 0
	case PointLight:
		return true
	}
	return false
}
