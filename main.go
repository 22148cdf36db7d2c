package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/df07/go-scene-raytracer/pkg/core"
	"github.com/df07/go-scene-raytracer/pkg/export"
	"github.com/df07/go-scene-raytracer/pkg/loaders"
	"github.com/df07/go-scene-raytracer/pkg/material"
	"github.com/df07/go-scene-raytracer/pkg/renderer"
	"github.com/df07/go-scene-raytracer/pkg/scene"
	"github.com/df07/go-scene-raytracer/pkg/shading"
)

// cliOptions holds the parsed command line
type cliOptions struct {
	Scene     string
	Mode      string
	Textures  bool
	Floor     string
	Wall      string
	Width     int
	Height    int
	Ambient   float64
	Exponent  float64
	Cutoff    bool
	Workers   int
	Out       string
	Thumbnail uint
	S3Bucket  string
	S3Region  string
	S3Prefix  string
}

func main() {
	var opts cliOptions
	defaults := renderer.DefaultOptions()

	flag.StringVar(&opts.Scene, "scene", "default", "Scene: a built-in scene name or a .yaml scene file")
	flag.StringVar(&opts.Mode, "mode", defaults.Mode.String(), "Shading mode: flat, lambert or phong")
	flag.BoolVar(&opts.Textures, "textures", false, "Apply image textures to textured planes")
	flag.StringVar(&opts.Floor, "floor", "", "Floor texture image")
	flag.StringVar(&opts.Wall, "wall", "", "Wall texture image")
	flag.IntVar(&opts.Width, "width", defaults.Width, "Image width in pixels")
	flag.IntVar(&opts.Height, "height", defaults.Height, "Image height in pixels")
	flag.Float64Var(&opts.Ambient, "ambient", defaults.Params.GlobalIntensity, "Intensity added to every light")
	flag.Float64Var(&opts.Exponent, "exponent", defaults.Params.Exponent, "Phong specular exponent")
	flag.BoolVar(&opts.Cutoff, "shadow-cutoff", false, "Only objects between a point and a light cast shadows")
	flag.IntVar(&opts.Workers, "workers", 0, "Number of parallel workers (0 = auto-detect CPU count)")
	flag.StringVar(&opts.Out, "out", "", "Output file (default output/<scene>/render_<timestamp>.png)")
	flag.UintVar(&opts.Thumbnail, "thumbnail", 0, "Also save a thumbnail fitting within this many pixels")
	flag.StringVar(&opts.S3Bucket, "s3-bucket", "", "Upload the PNG to this S3 bucket")
	flag.StringVar(&opts.S3Region, "s3-region", "us-east-1", "S3 region")
	flag.StringVar(&opts.S3Prefix, "s3-prefix", "renders", "S3 key prefix")
	help := flag.Bool("help", false, "Show help information")
	flag.Parse()

	if *help {
		fmt.Println("Scene Raytracer")
		fmt.Println("Usage: raytracer [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		fmt.Println()
		fmt.Println("Scenes:")
		for _, info := range scene.BuiltinScenes {
			fmt.Printf("  %-11s- %s\n", info.ID, info.Description)
		}
		fmt.Printf("  %-11s- %s\n", "file.yaml", "Scene file saved by the web editor or written by hand")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts, renderer.NewDefaultLogger()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts cliOptions, logger core.Logger) error {
	mode, err := shading.ParseMode(opts.Mode)
	if err != nil {
		return err
	}

	sc, file, err := createScene(opts.Scene)
	if err != nil {
		return err
	}
	textures, err := loadTextures(ctx, file, opts)
	if err != nil {
		return err
	}

	snap, err := sc.Snapshot()
	if err != nil {
		return err
	}
	if snap.Skipped > 0 {
		logger.Printf("Skipping %d nodes with singular transforms\n", snap.Skipped)
	}

	renderOpts := renderer.DefaultOptions()
	renderOpts.Width, renderOpts.Height = opts.Width, opts.Height
	renderOpts.Mode = mode
	renderOpts.Textures = opts.Textures
	renderOpts.Params = shading.Params{GlobalIntensity: opts.Ambient, Exponent: opts.Exponent, ShadowCutoff: opts.Cutoff}
	renderOpts.NumWorkers = opts.Workers

	logger.Printf("Rendering %s at %dx%d (%s)...\n", opts.Scene, opts.Width, opts.Height, mode)
	start := time.Now()
	img, stats, err := renderer.NewRaytracer(snap, textures, renderOpts, logger).Render(ctx)
	if err != nil {
		return err
	}
	logger.Printf("Render completed in %v: %d primary rays, %.1f%% hits, %d shadow rays, luminance %.3f\n",
		time.Since(start), stats.PrimaryRays, stats.HitRatio()*100, stats.ShadowRays, stats.Luminance)

	out := opts.Out
	if out == "" {
		dir := createOutputDir(opts.Scene)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
		out = filepath.Join(dir, fmt.Sprintf("render_%s.png", time.Now().Format("20060102_150405")))
	}
	if err := renderer.Save(img, out); err != nil {
		return err
	}
	logger.Printf("Render saved as %s\n", out)

	if opts.Thumbnail > 0 {
		ext := filepath.Ext(out)
		thumbPath := strings.TrimSuffix(out, ext) + "_thumb" + ext
		if err := renderer.Save(renderer.Thumbnail(img, opts.Thumbnail), thumbPath); err != nil {
			return err
		}
		logger.Printf("Thumbnail saved as %s\n", thumbPath)
	}

	if opts.S3Bucket != "" {
		uploader, err := export.NewUploader(export.S3Config{
			Region: opts.S3Region,
			Bucket: opts.S3Bucket,
			Prefix: opts.S3Prefix,
		}, logger)
		if err != nil {
			return err
		}
		if _, err := uploader.UploadPNG(ctx, filepath.Base(out), img); err != nil {
			return err
		}
	}
	return nil
}

// createScene builds a built-in scene or loads a scene file. Scene files are returned too so their
// texture table can be loaded relative to the file.
func createScene(sceneType string) (*scene.Scene, *loaders.SceneFile, error) {
	if sc, ok := scene.NewBuiltinScene(sceneType); ok {
		return sc, nil, nil
	}

	switch {
	case strings.HasSuffix(sceneType, ".yaml") || strings.HasSuffix(sceneType, ".yml"):
		file, err := loaders.LoadScene(sceneType)
		if err != nil {
			return nil, nil, err
		}
		sc := scene.New()
		if _, err := loaders.ApplyScene(sc, file); err != nil {
			return nil, nil, fmt.Errorf("scene %s: %w", sceneType, err)
		}
		return sc, file, nil
	case sceneType == "":
		return nil, nil, errors.New("no scene given")
	default:
		return nil, nil, fmt.Errorf("unknown scene %q: use a built-in scene or a .yaml file", sceneType)
	}
}

// loadTextures loads the scene file's textures, then the -floor and -wall
// overrides. Nothing is loaded unless textures are enabled.
func loadTextures(ctx context.Context, file *loaders.SceneFile, opts cliOptions) (material.Textures, error) {
	textures := material.Textures{}
	if !opts.Textures {
		return textures, nil
	}

	if file != nil && len(file.Textures) > 0 {
		loaded, err := loaders.LoadTextures(ctx, file.Dir(), file.Textures)
		if err != nil {
			return nil, err
		}
		for name, tex := range loaded {
			textures[name] = tex
		}
	}

	overrides := map[string]string{}
	if opts.Floor != "" {
		overrides[scene.FloorTexture] = opts.Floor
	}
	if opts.Wall != "" {
		overrides[scene.WallTexture] = opts.Wall
	}
	loaded, err := loaders.LoadTextures(ctx, "", overrides)
	if err != nil {
		return nil, err
	}
	for name, tex := range loaded {
		textures[name] = tex
	}
	return textures, nil
}

// createOutputDir returns output/<scene name> for a built-in scene or file
func createOutputDir(sceneType string) string {
	name := strings.TrimSuffix(filepath.Base(sceneType), filepath.Ext(sceneType))
	if name == "" || name == "." {
		name = "scene"
	}
	return filepath.Join("output", name)
}
