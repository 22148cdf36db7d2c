package renderer

import (
	"image"
	"time"

	"github.com/df07/go-scene-raytracer/pkg/core"
)

// RenderStats contains statistics about the rendering process
type RenderStats struct {
	Pixels      int           // Total number of pixels rendered
	PrimaryRays int           // Camera rays traced
	Hits        int           // Camera rays that hit an object
	Misses      int           // Camera rays that fell through to the background
	ShadowRays  int           // Shadow rays cast toward lights
	Duration    time.Duration // Wall time of the whole render
	Luminance   float64       // Average luminance of the finished image
}

// Add accumulates the counters of another tile
func (s *RenderStats) Add(other RenderStats) {
	s.Pixels += other.Pixels
	s.PrimaryRays += other.PrimaryRays
	s.Hits += other.Hits
	s.Misses += other.Misses
	s.ShadowRays += other.ShadowRays
}

// HitRatio returns the fraction of camera rays that hit an object
func (s RenderStats) HitRatio() float64 {
	if s.PrimaryRays == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.PrimaryRays)
}

// CalculateAverageLuminance returns the mean Rec. 709 luminance of an image
func CalculateAverageLuminance(img image.Image) float64 {
	bounds := img.Bounds()
	count := bounds.Dx() * bounds.Dy()
	if count == 0 {
		return 0
	}

	total := 0.0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := core.ColorFromRGBA(img.At(x, y))
			total += 0.2126*c.X + 0.7152*c.Y + 0.0722*c.Z
		}
	}
	return total / float64(count)
}
