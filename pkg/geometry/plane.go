package geometry

import (
	"math"

	"github.com/df07/go-scene-raytracer/pkg/core"
)

// tangentAxes maps a plane's normal axis to the axes measured by width and height
var tangentAxes = [3][2]int{
	{1, 2}, // X normal: y by width, z by height
	{0, 2}, // Y normal: x by width, z by height
	{0, 1}, // Z normal: x by width, y by height
}

// hitPlane intersects an object-space ray with a finite rectangle through the
// origin. Only the six axis-aligned normals are supported.
func hitPlane(ray core.Ray, normal core.Vec3, width, height float64) (float64, core.Vec3, bool) {
	axis, ok := dominantAxis(normal)
	if !ok || width <= 0 || height <= 0 {
		return 0, core.Vec3{}, false
	}

	denominator := ray.Direction.Dot(normal)
	if denominator == 0 {
		return 0, core.Vec3{}, false
	}

	t := -ray.Origin.Dot(normal) / denominator
	if t <= Epsilon {
		return 0, core.Vec3{}, false
	}

	p := ray.At(t)
	a := p.Axis(tangentAxes[axis][0])
	b := p.Axis(tangentAxes[axis][1])
	if !(math.Abs(a) < width/2 && math.Abs(b) < height/2) {
		return 0, core.Vec3{}, false
	}
	return t, normal, true
}

// dominantAxis returns the axis an axis-aligned unit normal points along
func dominantAxis(n core.Vec3) (int, bool) {
	switch {
	case n.X != 0 && n.Y == 0 && n.Z == 0:
		return 0, true
	case n.Y != 0 && n.X == 0 && n.Z == 0:
		return 1, true
	case n.Z != 0 && n.X == 0 && n.Y == 0:
		return 2, true
	}
	return 0, false
}

// PlaneUV maps an object-space point on a plane to [0,1]² over its extents
func PlaneUV(local, normal core.Vec3, width, height float64) (float64, float64) {
	axis, ok := dominantAxis(normal)
	if !ok || width <= 0 || height <= 0 {
		return 0, 0
	}
	u := (local.Axis(tangentAxes[axis][0]) + width/2) / width
	v := (local.Axis(tangentAxes[axis][1]) + height/2) / height
	return u, v
}
