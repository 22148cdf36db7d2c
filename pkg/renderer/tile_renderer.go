package renderer

import (
	"image"

	"github.com/df07/go-scene-raytracer/pkg/core"
	"github.com/df07/go-scene-raytracer/pkg/scene"
)

// Tile represents a rectangular region of the pixel buffer to be rendered
type Tile struct {
	ID     int             // Unique tile identifier
	Bounds image.Rectangle // Pixel bounds in the bottom-up buffer
}

// NewTileGrid creates a grid of tiles covering the entire image
func NewTileGrid(width, height, tileSize int) []*Tile {
	var tiles []*Tile
	tileID := 0

	tilesX := (width + tileSize - 1) / tileSize // Ceiling division
	tilesY := (height + tileSize - 1) / tileSize

	for tileY := 0; tileY < tilesY; tileY++ {
		for tileX := 0; tileX < tilesX; tileX++ {
			x0 := tileX * tileSize
			y0 := tileY * tileSize
			x1 := min(x0+tileSize, width)
			y1 := min(y0+tileSize, height)

			tiles = append(tiles, &Tile{ID: tileID, Bounds: image.Rect(x0, y0, x1, y1)})
			tileID++
		}
	}
	return tiles
}

// countingOccluder forwards shadow queries to the snapshot and counts them.
// Each tile gets its own, so no synchronization is needed.
type countingOccluder struct {
	snap *scene.Snapshot
	rays int
}

func (c *countingOccluder) Occluded(ray core.Ray, maxDistance float64) bool {
	c.rays++
	return c.snap.Occluded(ray, maxDistance)
}

// renderTile traces every pixel of the tile into buf. Tiles have
// non-overlapping bounds, so concurrent calls never write the same pixel.
func (rt *Raytracer) renderTile(tile *Tile, buf *image.RGBA) RenderStats {
	occluder := &countingOccluder{snap: rt.snap}
	shader := rt.shader(occluder)
	stats := RenderStats{Pixels: tile.Bounds.Dx() * tile.Bounds.Dy()}

	for j := tile.Bounds.Min.Y; j < tile.Bounds.Max.Y; j++ {
		for i := tile.Bounds.Min.X; i < tile.Bounds.Max.X; i++ {
			u, v := rt.pixelUV(i, j)
			color, hit := rt.rayColor(rt.snap.Camera.GetRay(u, v), shader)
			stats.PrimaryRays++
			if hit {
				stats.Hits++
			} else {
				stats.Misses++
			}
			buf.SetRGBA(i, j, color.ToRGBA())
		}
	}

	stats.ShadowRays = occluder.rays
	return stats
}
