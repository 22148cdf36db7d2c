package material

import (
	"image"
	"image/color"
	"testing"

	"github.com/df07/go-scene-raytracer/pkg/core"
)

// TestImageTextureEvaluate tests basic texture sampling
func TestImageTextureEvaluate(t *testing.T) {
	// Create a 2x2 checkerboard pattern
	// Layout:
	//   white black
	//   black white
	pixels := []core.Vec3{
		core.NewVec3(1, 1, 1), core.NewVec3(0, 0, 0), // Row 0 (top in image coords)
		core.NewVec3(0, 0, 0), core.NewVec3(1, 1, 1), // Row 1 (bottom in image coords)
	}
	texture := NewImageTexture(2, 2, pixels)

	white := core.NewVec3(1, 1, 1)
	black := core.NewVec3(0, 0, 0)

	tests := []struct {
		name     string
		uv       core.Vec2
		expected core.Vec3
	}{
		{"bottom-left", core.NewVec2(0.1, 0.1), black},
		{"bottom-right", core.NewVec2(0.9, 0.1), white},
		{"top-left", core.NewVec2(0.1, 0.9), white},
		{"top-right", core.NewVec2(0.9, 0.9), black},
		{"u=1 clamps to last column", core.NewVec2(1.0, 0.9), black},
		{"v=0 clamps to last row", core.NewVec2(0.1, 0.0), black},
		{"negative clamps", core.NewVec2(-0.5, 1.5), white},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := texture.Evaluate(tt.uv)
			if result != tt.expected {
				t.Errorf("UV(%v): expected %v, got %v", tt.uv, tt.expected, result)
			}
		})
	}
}

func TestNewImageTextureFromImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	img.Set(0, 0, color.RGBA{255, 0, 0, 255})
	img.Set(2, 1, color.RGBA{0, 0, 255, 255})

	texture := NewImageTextureFromImage(img)
	if texture.Width != 3 || texture.Height != 2 {
		t.Fatalf("Expected 3x2 texture, got %dx%d", texture.Width, texture.Height)
	}
	if texture.Pixels[0] != core.NewVec3(1, 0, 0) {
		t.Errorf("Expected red top-left pixel, got %v", texture.Pixels[0])
	}
	if texture.Pixels[5] != core.NewVec3(0, 0, 1) {
		t.Errorf("Expected blue bottom-right pixel, got %v", texture.Pixels[5])
	}
}

func TestTexturesLookup(t *testing.T) {
	textures := Textures{
		"floor": NewImageTexture(1, 1, []core.Vec3{{X: 1}}),
		"empty": nil,
	}

	if _, ok := textures.Lookup("floor"); !ok {
		t.Error("Expected floor texture to be found")
	}
	if _, ok := textures.Lookup("empty"); ok {
		t.Error("Expected nil texture to be treated as missing")
	}
	if _, ok := textures.Lookup("wall"); ok {
		t.Error("Expected wall texture to be missing")
	}
}

func TestDefaultMaterial(t *testing.T) {
	m := Default()
	if m.Diffuse != Grey || m.Specular != LightGray {
		t.Errorf("Unexpected default material %+v", m)
	}
	if m.Textured() {
		t.Error("Expected default material to be untextured")
	}
}
