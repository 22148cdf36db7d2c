package material

import (
	"github.com/df07/go-scene-raytracer/pkg/core"
)

// ColorSource provides spatially-varying colors for surfaces
type ColorSource interface {
	// Evaluate returns the color at normalized UV coordinates
	Evaluate(uv core.Vec2) core.Vec3
}

var (
	_ ColorSource = SolidColor{}
	_ ColorSource = (*ImageTexture)(nil)
)

// SolidColor is the color source of untextured surfaces
type SolidColor struct {
	Color core.Vec3
}

// NewSolidColor wraps a diffuse color as a color source
func NewSolidColor(color core.Vec3) SolidColor {
	return SolidColor{Color: color}
}

// Evaluate returns the solid color regardless of UV
func (s SolidColor) Evaluate(uv core.Vec2) core.Vec3 {
	return s.Color
}
