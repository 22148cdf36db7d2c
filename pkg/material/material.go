package material

import "github.com/df07/go-scene-raytracer/pkg/core"

// Named colors used by the default scene and new nodes
var (
	Grey      = core.ColorFromBytes(128, 128, 128)
	LightGray = core.ColorFromBytes(211, 211, 211)
	DarkGreen = core.ColorFromBytes(0, 100, 0)
	DarkRed   = core.ColorFromBytes(139, 0, 0)
	Blue      = core.ColorFromBytes(0, 0, 255)
	Yellow    = core.ColorFromBytes(255, 255, 0)
	White     = core.NewVec3(1, 1, 1)
	Black     = core.NewVec3(0, 0, 0)
)

// Material describes how a surface is shaded
type Material struct {
	Diffuse  core.Vec3
	Specular core.Vec3
	Texture  string // Optional texture name replacing Diffuse when textures are enabled
}

// New returns a material with the given diffuse color and the default specular color
func New(diffuse core.Vec3) Material {
	return Material{Diffuse: diffuse, Specular: LightGray}
}

// Default returns the material assigned to nodes created without a color
func Default() Material {
	return New(Grey)
}

// Textured reports whether the material references a texture
func (m Material) Textured() bool {
	return m.Texture != ""
}
