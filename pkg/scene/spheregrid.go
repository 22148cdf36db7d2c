package scene

import (
	"fmt"
	"math"

	"github.com/df07/go-scene-raytracer/pkg/core"
	"github.com/df07/go-scene-raytracer/pkg/material"
)

// oklchToRGB converts OKLCH color values to RGB
// L: lightness (0-1), C: chroma (0-0.4+), H: hue (0-360 degrees)
func oklchToRGB(l, c, h float64) core.Vec3 {
	hRad := h * math.Pi / 180.0

	// OKLCH to OKLAB
	a := c * math.Cos(hRad)
	b := c * math.Sin(hRad)

	// OKLAB to LMS, cubed
	l_ := l + 0.3963377774*a + 0.2158037573*b
	m_ := l - 0.1055613458*a - 0.0638541728*b
	s_ := l - 0.0894841775*a - 1.2914855480*b
	l_ = l_ * l_ * l_
	m_ = m_ * m_ * m_
	s_ = s_ * s_ * s_

	// LMS to linear RGB
	r := +4.0767416621*l_ - 3.3077115913*m_ + 0.2309699292*s_
	g := -1.2684380046*l_ + 2.6097574011*m_ - 0.3413193965*s_
	blue := -0.0041960863*l_ - 0.7034186147*m_ + 1.7076147010*s_

	return core.NewVec3(r, g, blue).Clamp(0, 1)
}

// SphereGridSize is the number of spheres along each side of the grid
const SphereGridSize = 5

// NewSphereGridScene creates a grid of small spheres on the floor, hue
// varying across X and chroma across Z, lit by two point lights
func NewSphereGridScene() *Scene {
	s := New()

	floor := NewPlane("floor", core.NewVec3(0, -2, -2), core.NewVec3(0, 1, 0), 30, 20, material.Grey)
	floor.Material.Texture = FloorTexture
	_, _ = s.Add(floor)

	const (
		spacing   = 2.0
		radius    = 0.4
		lightness = 0.65
		minChroma = 0.05
		maxChroma = 0.25
	)
	last := float64(SphereGridSize - 1)
	for i := 0; i < SphereGridSize; i++ {
		for j := 0; j < SphereGridSize; j++ {
			x := float64(i)*spacing - last*spacing/2
			z := -float64(j) * spacing
			hue := float64(i) / last * 360
			chroma := minChroma + float64(j)/last*(maxChroma-minChroma)

			sphere := NewSphere(fmt.Sprintf("grid%d_%d", i, j), core.NewVec3(x, -2+radius, z), radius,
				oklchToRGB(lightness+0.1*math.Sin(float64(i+j)*0.5), chroma, hue))
			_, _ = s.Add(sphere)
		}
	}

	_, _ = s.Add(NewPointLight("key", core.NewVec3(0, 6, 8), 0.6))
	_, _ = s.Add(NewPointLight("fill", core.NewVec3(-6, 4, 2), 0.3))
	return s
}
