package scene

import (
	"github.com/df07/go-scene-raytracer/pkg/core"
	"github.com/df07/go-scene-raytracer/pkg/material"
)

// NewConeScene creates a small still life: an upright cone standing on a
// pedestal cube (as its child), a tilted cone, a shiny sphere and a light
func NewConeScene() *Scene {
	s := New()

	wall := NewPlane("wall", core.NewVec3(0, -4, -10), core.NewVec3(0, 0, 1), 30, 30, material.LightGray)
	wall.Material.Texture = WallTexture
	floor := NewPlane("floor", core.NewVec3(0, -2, 0), core.NewVec3(0, 1, 0), 30, 20, material.Grey)
	floor.Material.Texture = FloorTexture
	_, _ = s.Add(wall)
	_, _ = s.Add(floor)

	pedestal, _ := s.Add(NewCube("pedestal", core.NewVec3(0, -1.5, 0), 2, 1, 2, material.LightGray))

	// Cones run along local +Z; pitching by -90 stands one upright
	upright := NewCone("cone", core.NewVec3(0, 0.5, 0), 0.6, 1.5, material.DarkRed)
	upright.Transform.Rotation = core.NewVec3(-90, 0, 0)
	cone, _ := s.Add(upright)
	_ = s.AttachChild(pedestal, cone)

	tilted := NewCone("tilted", core.NewVec3(2.5, -2, 1), 0.5, 1.2, material.Yellow)
	tilted.Transform.Rotation = core.NewVec3(-60, 0, 30)
	_, _ = s.Add(tilted)

	ball := NewSphere("ball", core.NewVec3(-2.5, -1, 0.5), 1, material.Blue)
	ball.Material.Specular = material.White
	_, _ = s.Add(ball)

	_, _ = s.Add(NewPointLight("lamp", core.NewVec3(0, 5, 10), 0.8))
	return s
}
