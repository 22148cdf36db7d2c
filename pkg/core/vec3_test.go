package core

import (
	"image/color"
	"math"
	"testing"
)

func vecApprox(a, b Vec3, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol && math.Abs(a.Z-b.Z) <= tol
}

func TestVec3_Reflect(t *testing.T) {
	tests := []struct {
		name     string
		incident Vec3
		normal   Vec3
		expected Vec3
	}{
		{"straight down onto floor", NewVec3(0, -1, 0), NewVec3(0, 1, 0), NewVec3(0, 1, 0)},
		{"45 degrees onto floor", NewVec3(1, -1, 0), NewVec3(0, 1, 0), NewVec3(1, 1, 0)},
		{"grazing", NewVec3(1, 0, 0), NewVec3(0, 1, 0), NewVec3(1, 0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.incident.Reflect(tt.normal)
			if !vecApprox(got, tt.expected, 1e-9) {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestVec3_NormalizeZero(t *testing.T) {
	if got := NewVec3(0, 0, 0).Normalize(); !got.IsZero() {
		t.Errorf("Expected zero vector, got %v", got)
	}
	if got := NewVec3(3, 0, 4).Normalize(); math.Abs(got.Length()-1) > 1e-12 {
		t.Errorf("Expected unit length, got %f", got.Length())
	}
}

func TestRay_NormalizesDirection(t *testing.T) {
	ray := NewRay(NewVec3(1, 2, 3), NewVec3(0, 0, -10))
	if !vecApprox(ray.Direction, NewVec3(0, 0, -1), 1e-12) {
		t.Errorf("Expected normalized direction, got %v", ray.Direction)
	}
	if p := ray.At(2); !vecApprox(p, NewVec3(1, 2, 1), 1e-12) {
		t.Errorf("Expected (1,2,1), got %v", p)
	}
}

func TestColorConversions(t *testing.T) {
	c := NewVec3(1.5, 0.5, -0.2).ToRGBA()
	if c.R != 255 || c.G != 128 || c.B != 0 || c.A != 255 {
		t.Errorf("Unexpected RGBA %v", c)
	}

	back := ColorFromRGBA(color.RGBA{R: 255, G: 0, B: 51, A: 255})
	if !vecApprox(back, NewVec3(1, 0, 0.2), 1e-9) {
		t.Errorf("Unexpected color %v", back)
	}

	if got := ColorFromBytes(255, 0, 0); got != NewVec3(1, 0, 0) {
		t.Errorf("Expected red, got %v", got)
	}
}
