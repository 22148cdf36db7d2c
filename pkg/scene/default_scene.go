package scene

import (
	"github.com/df07/go-scene-raytracer/pkg/core"
	"github.com/df07/go-scene-raytracer/pkg/material"
)

// Texture names referenced by the default backdrops
const (
	WallTexture  = "wall"
	FloorTexture = "floor"
)

// NewDefaultScene creates the editor's starting scene: a dark green back wall
// and a dark red floor, both non-selectable and textured when textures are
// enabled, and the default camera. It has no lights.
func NewDefaultScene() *Scene {
	s := New()

	wall := NewPlane("wall", core.NewVec3(0, -4, -10), core.NewVec3(0, 0, 1), 30, 30, material.DarkGreen)
	wall.Material.Texture = WallTexture

	floor := NewPlane("floor", core.NewVec3(0, -2, 0), core.NewVec3(0, 1, 0), 30, 20, material.DarkRed)
	floor.Material.Texture = FloorTexture

	// Identity transforms always validate
	_, _ = s.Add(wall)
	_, _ = s.Add(floor)
	return s
}
