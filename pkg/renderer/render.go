package renderer

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/df07/go-scene-raytracer/pkg/core"
	"github.com/disintegration/imaging"
)

// DefaultLogger implements core.Logger by writing to stdout
type DefaultLogger struct{}

func (dl *DefaultLogger) Printf(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// NewDefaultLogger creates a new default logger
func NewDefaultLogger() core.Logger {
	return &DefaultLogger{}
}

// TileUpdate describes a finished tile in final (top-down) image coordinates
type TileUpdate struct {
	Bounds     image.Rectangle
	Image      *image.NRGBA // Pixels of just this tile, already flipped
	TileNumber int          // 1-based completion order
	TotalTiles int
}

// Render traces the whole image and returns it top-down
func (rt *Raytracer) Render(ctx context.Context) (*image.NRGBA, RenderStats, error) {
	return rt.RenderTiles(ctx, nil)
}

// RenderTiles traces the image on the worker pool. onTile, if not nil, is
// called from the calling goroutine once per finished tile.
func (rt *Raytracer) RenderTiles(ctx context.Context, onTile func(TileUpdate)) (*image.NRGBA, RenderStats, error) {
	if err := rt.validate(); err != nil {
		return nil, RenderStats{}, err
	}
	start := time.Now()

	buf := rt.newBuffer()
	tiles := NewTileGrid(rt.opts.Width, rt.opts.Height, rt.opts.TileSize)
	pool := NewWorkerPool(rt, rt.opts.NumWorkers, len(tiles))

	rt.logger.Printf("Rendering %dx%d (%s, %d objects, %d lights) using %d workers...\n",
		rt.opts.Width, rt.opts.Height, rt.opts.Mode, len(rt.snap.Objects), len(rt.snap.Lights), pool.GetNumWorkers())

	pool.Start()
	defer pool.Stop()

	for i, tile := range tiles {
		pool.SubmitTask(TileTask{Ctx: ctx, Tile: tile, TaskID: i, Buffer: buf})
	}

	var stats RenderStats
	for n := 0; n < len(tiles); n++ {
		result, ok := pool.GetResult()
		if !ok {
			return nil, RenderStats{}, fmt.Errorf("worker pool closed unexpectedly")
		}
		if result.Error != nil {
			rt.logger.Printf("Rendering cancelled after %d of %d tiles\n", n, len(tiles))
			return nil, RenderStats{}, result.Error
		}
		stats.Add(result.Stats)

		if onTile != nil {
			onTile(rt.tileUpdate(buf, tiles[result.TaskID], n+1, len(tiles)))
		}
	}

	img := imaging.FlipV(buf)
	stats.Duration = time.Since(start)
	stats.Luminance = CalculateAverageLuminance(img)
	rt.logger.Printf("Render completed in %v (%d hits, %d misses, %d shadow rays, luminance %.3f)\n",
		stats.Duration, stats.Hits, stats.Misses, stats.ShadowRays, stats.Luminance)
	return img, stats, nil
}

// tileUpdate extracts a finished tile and maps it into top-down coordinates
func (rt *Raytracer) tileUpdate(buf *image.RGBA, tile *Tile, number, total int) TileUpdate {
	b := tile.Bounds
	return TileUpdate{
		Bounds:     image.Rect(b.Min.X, rt.opts.Height-b.Max.Y, b.Max.X, rt.opts.Height-b.Min.Y),
		Image:      imaging.FlipV(buf.SubImage(b)),
		TileNumber: number,
		TotalTiles: total,
	}
}
