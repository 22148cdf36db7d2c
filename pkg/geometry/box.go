package geometry

import (
	"math"

	"github.com/df07/go-scene-raytracer/pkg/core"
)

// hitBox intersects an object-space ray with the axis-aligned box [lo, hi]
// using the slab method. The returned normal is the outward normal of the
// face that produced the hit. A ray starting inside the box hits the exit face.
func hitBox(ray core.Ray, lo, hi core.Vec3) (float64, core.Vec3, bool) {
	tNear := math.Inf(-1)
	tFar := math.Inf(1)
	var nearNormal, farNormal core.Vec3

	for axis := 0; axis < 3; axis++ {
		slabMin, slabMax := lo.Axis(axis), hi.Axis(axis)
		if slabMax <= slabMin {
			return 0, core.Vec3{}, false
		}

		o := ray.Origin.Axis(axis)
		d := ray.Direction.Axis(axis)
		if d == 0 {
			// Parallel to this slab: inside it or never
			if o < slabMin || o > slabMax {
				return 0, core.Vec3{}, false
			}
			continue
		}

		t0 := (slabMin - o) / d
		t1 := (slabMax - o) / d
		sign := 1.0
		if t0 > t1 {
			t0, t1 = t1, t0
			sign = -1
		}

		if t0 > tNear {
			tNear = t0
			nearNormal = unitAxis(axis, -sign)
		}
		if t1 < tFar {
			tFar = t1
			farNormal = unitAxis(axis, sign)
		}
		if tNear > tFar {
			return 0, core.Vec3{}, false
		}
	}

	if tFar <= Epsilon {
		return 0, core.Vec3{}, false
	}
	if tNear > Epsilon {
		return tNear, nearNormal, true
	}
	return tFar, farNormal, true
}

func unitAxis(axis int, sign float64) core.Vec3 {
	switch axis {
	case 0:
		return core.NewVec3(sign, 0, 0)
	case 1:
		return core.NewVec3(0, sign, 0)
	default:
		return core.NewVec3(0, 0, sign)
	}
}
