package geometry

import (
	"github.com/df07/go-scene-raytracer/pkg/core"
)

// ViewPlane is the image rectangle in camera-local 2D, placed at world depth Z
type ViewPlane struct {
	Min core.Vec2
	Max core.Vec2
	Z   float64
}

// NewDefaultViewPlane returns the 6x4 view plane at z=5
func NewDefaultViewPlane() ViewPlane {
	return ViewPlane{
		Min: core.NewVec2(-3, -2),
		Max: core.NewVec2(3, 2),
		Z:   5,
	}
}

func (vp ViewPlane) Width() float64 {
	return vp.Max.X - vp.Min.X
}

func (vp ViewPlane) Height() float64 {
	return vp.Max.Y - vp.Min.Y
}

// ToWorld maps normalized (u, v) in [0,1]² to a point on the view plane
func (vp ViewPlane) ToWorld(u, v float64) core.Vec3 {
	return core.NewVec3(vp.Min.X+u*vp.Width(), vp.Min.Y+v*vp.Height(), vp.Z)
}

// Position returns the center of the view plane
func (vp ViewPlane) Position() core.Vec3 {
	return vp.ToWorld(0.5, 0.5)
}

// Camera generates rays for rendering. Rays run from Position through the
// view plane, so the view plane alone sets the viewing direction.
type Camera struct {
	Position core.Vec3
	Aim      core.Vec3 // Informational; saved with the scene but not used by GetRay
	View     ViewPlane
}

// NewCamera creates the default render camera at (0,0,10) looking down -Z
func NewCamera() *Camera {
	return &Camera{
		Position: core.NewVec3(0, 0, 10),
		Aim:      core.NewVec3(0, 0, -1),
		View:     NewDefaultViewPlane(),
	}
}

// GetRay generates a ray toward view plane coordinates (u, v) where 0 <= u,v <= 1
func (c *Camera) GetRay(u, v float64) core.Ray {
	target := c.View.ToWorld(u, v)
	return core.NewRay(c.Position, target.Subtract(c.Position))
}
