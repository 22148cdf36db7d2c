package loaders

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"

	"github.com/df07/go-scene-raytracer/pkg/material"
	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"

	_ "golang.org/x/image/bmp"  // BMP decoder
	_ "golang.org/x/image/tiff" // TIFF decoder
	_ "golang.org/x/image/webp" // WebP decoder
)

// LoadTexture decodes a PNG, JPEG, GIF, BMP, TIFF or WebP image into a
// texture. "builtin:" names are generated instead of read.
func LoadTexture(filename string) (*material.ImageTexture, error) {
	if material.IsProcedural(filename) {
		return material.NewProceduralTexture(filename)
	}
	img, err := imaging.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to load texture %s: %w", filename, err)
	}
	return material.NewImageTextureFromImage(img), nil
}

// LoadTextures loads every named texture concurrently. Relative paths are
// resolved against baseDir. The first failure cancels the rest.
func LoadTextures(ctx context.Context, baseDir string, paths map[string]string) (material.Textures, error) {
	textures := make(material.Textures, len(paths))
	var mu sync.Mutex

	names := make([]string, 0, len(paths))
	for name := range paths {
		names = append(names, name)
	}
	sort.Strings(names)

	g, ctx := errgroup.WithContext(ctx)
	for _, name := range names {
		path := paths[name]
		if !filepath.IsAbs(path) && baseDir != "" && !material.IsProcedural(path) {
			path = filepath.Join(baseDir, path)
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			tex, err := LoadTexture(path)
			if err != nil {
				return fmt.Errorf("texture %q: %w", name, err)
			}
			mu.Lock()
			textures[name] = tex
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return textures, nil
}
