package geometry

import (
	"math"
	"testing"

	"github.com/df07/go-scene-raytracer/pkg/core"
	"github.com/df07/go-scene-raytracer/pkg/transform"
)

func TestCube_FaceNormals(t *testing.T) {
	world, inv := placed(t, transform.Identity())
	cube := Shape{Kind: Cube, Width: 2, Height: 4, Depth: 6}

	tests := []struct {
		name           string
		origin         core.Vec3
		direction      core.Vec3
		expectedPoint  core.Vec3
		expectedNormal core.Vec3
	}{
		{"front", core.NewVec3(0, 0, 10), core.NewVec3(0, 0, -1), core.NewVec3(0, 0, 3), core.NewVec3(0, 0, 1)},
		{"back", core.NewVec3(0, 0, -10), core.NewVec3(0, 0, 1), core.NewVec3(0, 0, -3), core.NewVec3(0, 0, -1)},
		{"right", core.NewVec3(10, 0.5, 0), core.NewVec3(-1, 0, 0), core.NewVec3(1, 0.5, 0), core.NewVec3(1, 0, 0)},
		{"left", core.NewVec3(-10, 0, 0), core.NewVec3(1, 0, 0), core.NewVec3(-1, 0, 0), core.NewVec3(-1, 0, 0)},
		{"top", core.NewVec3(0, 10, 0), core.NewVec3(0, -1, 0), core.NewVec3(0, 2, 0), core.NewVec3(0, 1, 0)},
		{"bottom", core.NewVec3(0.5, -10, 1), core.NewVec3(0, 1, 0), core.NewVec3(0.5, -2, 1), core.NewVec3(0, -1, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, ok := cube.Intersect(core.NewRay(tt.origin, tt.direction), world, inv)
			if !ok {
				t.Fatal("Expected hit, but got miss")
			}
			if !vecClose(hit.Point, tt.expectedPoint, 1e-9) {
				t.Errorf("Expected point %v, got %v", tt.expectedPoint, hit.Point)
			}
			if !vecClose(hit.Normal, tt.expectedNormal, 1e-9) {
				t.Errorf("Expected normal %v, got %v", tt.expectedNormal, hit.Normal)
			}
		})
	}
}

func TestCube_OriginInside(t *testing.T) {
	tr := transform.At(core.NewVec3(1, 1, 1))
	tr.Rotation = core.NewVec3(15, 30, 45)
	tr.Scale = core.NewVec3(1, 2, 0.5)
	world, inv := placed(t, tr)
	cube := Shape{Kind: Cube, Width: 1, Height: 1, Depth: 1}

	// Any ray starting at the cube's center must hit its exit face
	directions := []core.Vec3{
		core.NewVec3(1, 0, 0),
		core.NewVec3(0, -1, 0),
		core.NewVec3(0.3, 0.4, -0.5),
	}
	for _, d := range directions {
		hit, ok := cube.Intersect(core.NewRay(core.NewVec3(1, 1, 1), d), world, inv)
		if !ok {
			t.Fatalf("Expected hit from inside along %v", d)
		}
		if hit.Distance <= 0 {
			t.Errorf("Expected positive distance, got %f", hit.Distance)
		}
		if math.Abs(hit.Normal.Length()-1) > 1e-9 {
			t.Errorf("Expected unit normal, got %v", hit.Normal)
		}
	}
}

func TestCube_Rotated(t *testing.T) {
	tr := transform.Identity()
	tr.Rotation = core.NewVec3(0, 45, 0)
	world, inv := placed(t, tr)
	cube := Shape{Kind: Cube, Width: 2, Height: 2, Depth: 2}

	// The vertical edge now faces the camera at z = sqrt(2)
	hit, ok := cube.Intersect(core.NewRay(core.NewVec3(0.01, 0, 10), core.NewVec3(0, 0, -1)), world, inv)
	if !ok {
		t.Fatal("Expected hit on rotated cube")
	}
	if math.Abs(hit.Point.Z-(math.Sqrt2-0.01)) > 1e-9 {
		t.Errorf("Expected z=%f, got %f", math.Sqrt2-0.01, hit.Point.Z)
	}
	expected := core.NewVec3(1, 0, 1).Normalize()
	if !vecClose(hit.Normal, expected, 1e-9) {
		t.Errorf("Expected normal %v, got %v", expected, hit.Normal)
	}
}

func TestCube_Miss(t *testing.T) {
	world, inv := placed(t, transform.Identity())
	cube := Shape{Kind: Cube, Width: 2, Height: 2, Depth: 2}

	tests := []core.Ray{
		core.NewRay(core.NewVec3(2, 0, 10), core.NewVec3(0, 0, -1)),
		core.NewRay(core.NewVec3(0, 0, 10), core.NewVec3(0, 0, 1)),
		core.NewRay(core.NewVec3(-5, 3, 0), core.NewVec3(1, 0, 0)),
	}
	for _, ray := range tests {
		if _, ok := cube.Intersect(ray, world, inv); ok {
			t.Errorf("Expected miss for ray %+v", ray)
		}
	}
}

func TestCone_BoundingBox(t *testing.T) {
	world, inv := placed(t, transform.Identity())
	cone := Shape{Kind: Cone, Radius: 1, Height: 2}

	// The box spans z in [0, h], so the top face is at z=2
	hit, ok := cone.Intersect(core.NewRay(core.NewVec3(0.9, 0.9, 10), core.NewVec3(0, 0, -1)), world, inv)
	if !ok {
		t.Fatal("Expected hit on cone bounds")
	}
	if !vecClose(hit.Point, core.NewVec3(0.9, 0.9, 2), 1e-9) {
		t.Errorf("Expected point (0.9,0.9,2), got %v", hit.Point)
	}
	if !vecClose(hit.Normal, core.NewVec3(0, 0, 1), 1e-9) {
		t.Errorf("Expected normal (0,0,1), got %v", hit.Normal)
	}

	// Below the base the bounds are empty
	if _, ok := cone.Intersect(core.NewRay(core.NewVec3(0, 10, -0.5), core.NewVec3(0, -1, 0)), world, inv); ok {
		t.Error("Expected miss below the cone base")
	}
}
