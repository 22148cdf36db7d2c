package renderer

import (
	"errors"
	"fmt"
	"image"
	"runtime"

	"github.com/df07/go-scene-raytracer/pkg/core"
	"github.com/df07/go-scene-raytracer/pkg/geometry"
	"github.com/df07/go-scene-raytracer/pkg/material"
	"github.com/df07/go-scene-raytracer/pkg/scene"
	"github.com/df07/go-scene-raytracer/pkg/shading"
)

// ErrMissingTexture is returned when textures are enabled and a node references
// a texture that was not supplied
var ErrMissingTexture = errors.New("missing texture")

// Options contains rendering configuration
type Options struct {
	Width      int
	Height     int
	Mode       shading.Mode
	Textures   bool      // Sample textured planes from their texture instead of the diffuse color
	Background core.Vec3 // Color of pixels that hit nothing
	Params     shading.Params
	TileSize   int // Size of each tile (64x64 recommended)
	NumWorkers int // Number of parallel workers (0 = use CPU count)
}

// DefaultOptions returns a 1200x800 Lambert render on a black background
func DefaultOptions() Options {
	return Options{
		Width:      1200,
		Height:     800,
		Mode:       shading.Lambert,
		Background: material.Black,
		Params:     shading.DefaultParams(),
		TileSize:   64,
		NumWorkers: 0,
	}
}

// Raytracer renders one snapshot of a scene
type Raytracer struct {
	snap     *scene.Snapshot
	textures material.Textures
	opts     Options
	logger   core.Logger
}

// NewRaytracer creates a raytracer over an immutable scene snapshot
func NewRaytracer(snap *scene.Snapshot, textures material.Textures, opts Options, logger core.Logger) *Raytracer {
	if opts.TileSize <= 0 {
		opts.TileSize = 64
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = runtime.NumCPU()
	}
	if logger == nil {
		logger = core.NopLogger{}
	}
	return &Raytracer{snap: snap, textures: textures, opts: opts, logger: logger}
}

// Options returns the effective render options
func (rt *Raytracer) Options() Options {
	return rt.opts
}

func (rt *Raytracer) validate() error {
	if rt.opts.Width <= 0 || rt.opts.Height <= 0 {
		return fmt.Errorf("invalid image size %dx%d", rt.opts.Width, rt.opts.Height)
	}
	if !rt.opts.Textures {
		return nil
	}
	for _, obj := range rt.snap.Objects {
		if !obj.Material.Textured() {
			continue
		}
		if _, ok := rt.textures.Lookup(obj.Material.Texture); !ok {
			return fmt.Errorf("node %q: %w %q", obj.Name, ErrMissingTexture, obj.Material.Texture)
		}
	}
	return nil
}

func (rt *Raytracer) shader(occluder shading.Occluder) *shading.Shader {
	return &shading.Shader{
		Lights:       rt.snap.Lights,
		Occluder:     occluder,
		Params:       rt.opts.Params,
		ViewPosition: rt.snap.Camera.View.Position(),
	}
}

// pixelUV returns the view plane coordinate of the center of pixel (i, j)
func (rt *Raytracer) pixelUV(i, j int) (float64, float64) {
	return (float64(i) + 0.5) / float64(rt.opts.Width), (float64(j) + 0.5) / float64(rt.opts.Height)
}

// hitWorld finds the nearest object along the ray. On equal distances the
// object earlier in the scene wins.
func (rt *Raytracer) hitWorld(ray core.Ray) (*scene.Object, *geometry.HitRecord) {
	var closest *scene.Object
	var closestHit *geometry.HitRecord
	for i := range rt.snap.Objects {
		obj := &rt.snap.Objects[i]
		hit, ok := obj.Intersect(ray)
		if !ok {
			continue
		}
		if closestHit == nil || hit.Distance < closestHit.Distance {
			closest, closestHit = obj, hit
		}
	}
	return closest, closestHit
}

// rayColor traces a camera ray and reports whether it hit anything
func (rt *Raytracer) rayColor(ray core.Ray, shader *shading.Shader) (core.Vec3, bool) {
	obj, hit := rt.hitWorld(ray)
	if obj == nil {
		return rt.opts.Background, false
	}
	return shader.Shade(rt.opts.Mode, hit.Point, hit.Normal, rt.diffuse(obj, hit), obj.Material.Specular), true
}

// colorSource picks the node's texture for textured planes when textures are
// enabled and its diffuse color otherwise
func (rt *Raytracer) colorSource(obj *scene.Object) material.ColorSource {
	if rt.opts.Textures && obj.Material.Textured() && obj.Shape.Kind == geometry.Plane {
		if tex, ok := rt.textures.Lookup(obj.Material.Texture); ok {
			return tex
		}
	}
	return material.NewSolidColor(obj.Material.Diffuse)
}

// diffuse returns the surface color at a hit. Planes are sampled with
// planar UVs over their extents.
func (rt *Raytracer) diffuse(obj *scene.Object, hit *geometry.HitRecord) core.Vec3 {
	var uv core.Vec2
	if obj.Shape.Kind == geometry.Plane {
		u, v := geometry.PlaneUV(hit.Local, obj.Shape.Normal, obj.Shape.Width, obj.Shape.Height)
		uv = core.NewVec2(u, v)
	}
	return rt.colorSource(obj).Evaluate(uv)
}

// TracePixel returns the color of a single pixel, using the same path as a
// full render
func (rt *Raytracer) TracePixel(i, j int) core.Vec3 {
	u, v := rt.pixelUV(i, j)
	color, _ := rt.rayColor(rt.snap.Camera.GetRay(u, v), rt.shader(rt.snap))
	return color
}

// newBuffer allocates the bottom-up pixel buffer: row j holds v = (j+0.5)/H
func (rt *Raytracer) newBuffer() *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, rt.opts.Width, rt.opts.Height))
}
