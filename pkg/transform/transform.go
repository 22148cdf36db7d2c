// Package transform builds the local and world matrices of scene nodes.
//
// A node's local matrix is T(position) * T(pivot) * R * T(-pivot) * S(scale),
// where R is the yaw(Y)-pitch(X)-roll(Z) Euler rotation with angles in degrees.
// World matrices are composed parent-first: world = parentWorld * local.
package transform

import (
	"errors"
	"math"

	"github.com/df07/go-scene-raytracer/pkg/core"
	"github.com/go-gl/mathgl/mgl64"
)

// singularEpsilon bounds |det| relative to the product of the basis column
// lengths. The ratio is 1 for any rotation and scale and does not shrink with
// uniform scale.
const singularEpsilon = 1e-12

var (
	// ErrSingularMatrix is returned when a world matrix cannot be inverted
	ErrSingularMatrix = errors.New("transform: matrix is singular")
	// ErrDegenerateScale is returned for transforms with a zero scale component
	ErrDegenerateScale = errors.New("transform: scale component is zero")
)

// Transform holds the local placement channels of a scene node
type Transform struct {
	Position core.Vec3 // Translation
	Rotation core.Vec3 // Euler angles in degrees: X=pitch, Y=yaw, Z=roll
	Scale    core.Vec3 // Non-uniform scale
	Pivot    core.Vec3 // Rotation pivot in local space
}

// Identity returns a transform that leaves points unchanged
func Identity() Transform {
	return Transform{Scale: core.NewVec3(1, 1, 1)}
}

// At returns an identity transform translated to position
func At(position core.Vec3) Transform {
	t := Identity()
	t.Position = position
	return t
}

// Validate rejects transforms whose matrix could never be inverted
func (t Transform) Validate() error {
	if t.Scale.X == 0 || t.Scale.Y == 0 || t.Scale.Z == 0 {
		return ErrDegenerateScale
	}
	return nil
}

// RotationMatrix returns Ry(yaw) * Rx(pitch) * Rz(roll)
func (t Transform) RotationMatrix() mgl64.Mat4 {
	yaw := mgl64.HomogRotate3DY(mgl64.DegToRad(t.Rotation.Y))
	pitch := mgl64.HomogRotate3DX(mgl64.DegToRad(t.Rotation.X))
	roll := mgl64.HomogRotate3DZ(mgl64.DegToRad(t.Rotation.Z))
	return yaw.Mul4(pitch).Mul4(roll)
}

// LocalMatrix returns T(position) * T(pivot) * R * T(-pivot) * S(scale)
func (t Transform) LocalMatrix() mgl64.Mat4 {
	trans := mgl64.Translate3D(t.Position.X, t.Position.Y, t.Position.Z)
	post := mgl64.Translate3D(t.Pivot.X, t.Pivot.Y, t.Pivot.Z)
	pre := mgl64.Translate3D(-t.Pivot.X, -t.Pivot.Y, -t.Pivot.Z)
	scale := mgl64.Scale3D(t.Scale.X, t.Scale.Y, t.Scale.Z)

	return trans.Mul4(post).Mul4(t.RotationMatrix()).Mul4(pre).Mul4(scale)
}

// Compose returns parent * local
func Compose(parent, local mgl64.Mat4) mgl64.Mat4 {
	return parent.Mul4(local)
}

// Invert returns the inverse of the affine matrix m or ErrSingularMatrix.
// The bottom row of m is assumed to be (0, 0, 0, 1).
func Invert(m mgl64.Mat4) (mgl64.Mat4, error) {
	c0, c1, c2 := m.Col(0).Vec3(), m.Col(1).Vec3(), m.Col(2).Vec3()
	det := c0.Dot(c1.Cross(c2))
	bound := c0.Len() * c1.Len() * c2.Len()
	if bound == 0 || math.IsNaN(det) || math.Abs(det) < singularEpsilon*bound {
		return mgl64.Mat4{}, ErrSingularMatrix
	}

	// Rows of the 3x3 inverse are the cross products of the other two columns
	r0 := c1.Cross(c2).Mul(1 / det)
	r1 := c2.Cross(c0).Mul(1 / det)
	r2 := c0.Cross(c1).Mul(1 / det)
	t := m.Col(3).Vec3()
	inv := mgl64.Mat4FromRows(
		r0.Vec4(-r0.Dot(t)),
		r1.Vec4(-r1.Dot(t)),
		r2.Vec4(-r2.Dot(t)),
		mgl64.Vec4{0, 0, 0, 1},
	)
	for _, v := range inv {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return mgl64.Mat4{}, ErrSingularMatrix
		}
	}
	return inv, nil
}

// Point applies m to a point (w=1)
func Point(m mgl64.Mat4, p core.Vec3) core.Vec3 {
	return FromMgl(m.Mul4x1(ToMgl(p).Vec4(1)).Vec3())
}

// Direction applies m to a direction (w=0), ignoring translation
func Direction(m mgl64.Mat4, d core.Vec3) core.Vec3 {
	return FromMgl(m.Mul4x1(ToMgl(d).Vec4(0)).Vec3())
}

// Normal maps an object-space normal to world space using the inverse world matrix
func Normal(inverse mgl64.Mat4, n core.Vec3) core.Vec3 {
	return Direction(inverse.Transpose(), n).Normalize()
}

// ToMgl converts a core vector to mgl64
func ToMgl(v core.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

// FromMgl converts an mgl64 vector to a core vector
func FromMgl(v mgl64.Vec3) core.Vec3 {
	return core.NewVec3(v[0], v[1], v[2])
}

// ApproxEqual reports whether every element of a and b differs by at most eps
func ApproxEqual(a, b mgl64.Mat4, eps float64) bool {
	return a.ApproxFuncEqual(b, func(x, y float64) bool {
		return math.Abs(x-y) <= eps
	})
}
