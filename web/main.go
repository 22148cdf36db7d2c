package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/df07/go-scene-raytracer/pkg/export"
	"github.com/df07/go-scene-raytracer/pkg/loaders"
	"github.com/df07/go-scene-raytracer/pkg/scene"
	"github.com/df07/go-scene-raytracer/web/server"
)

func main() {
	envFile := flag.String("env", ".env", "Optional env file with SCENE_* settings")
	debug := flag.Bool("debug", false, "Log every request")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := run(*envFile, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(envFile string, logger *slog.Logger) error {
	cfg, err := server.LoadConfig(envFile)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	textures, err := loaders.LoadTextures(ctx, "", cfg.Textures())
	if err != nil {
		return err
	}
	logger.Info("textures loaded", "count", len(textures))

	var uploader *export.Uploader
	if s3cfg, ok := cfg.S3(); ok {
		if uploader, err = export.NewUploader(s3cfg, server.NewSlogLogger(logger)); err != nil {
			return err
		}
		logger.Info("render uploads enabled", "bucket", s3cfg.Bucket)
	}

	srv := server.NewServer(cfg, scene.NewDefaultScene(), textures, uploader, logger)
	logger.Info("scene raytracer web server", "port", cfg.Port, "scenes", cfg.ScenesDir)
	return srv.Start(ctx)
}
