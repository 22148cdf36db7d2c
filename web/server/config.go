package server

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/df07/go-scene-raytracer/pkg/export"
	"github.com/df07/go-scene-raytracer/pkg/scene"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config is read from SCENE_* environment variables
type Config struct {
	Port           int     `envconfig:"PORT" default:"8080"`
	ScenesDir      string  `envconfig:"SCENES_DIR" default:"scenes"`
	StaticDir      string  `envconfig:"STATIC_DIR" default:"static"`
	WallTexture    string  `envconfig:"WALL_TEXTURE"`
	FloorTexture   string  `envconfig:"FLOOR_TEXTURE"`
	Width          int     `envconfig:"WIDTH" default:"600"`
	Height         int     `envconfig:"HEIGHT" default:"400"`
	Ambient        float64 `envconfig:"AMBIENT" default:"0"`
	Exponent       float64 `envconfig:"EXPONENT" default:"10"`
	Workers        int     `envconfig:"WORKERS" default:"0"`
	AllowedOrigins string  `envconfig:"ALLOWED_ORIGINS" default:"localhost:8080"`

	S3Bucket    string `envconfig:"S3_BUCKET"`
	S3Region    string `envconfig:"S3_REGION"`
	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3Prefix    string `envconfig:"S3_PREFIX" default:"renders"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY"`
	S3SecretKey string `envconfig:"S3_SECRET_KEY"`
}

// LoadConfig loads an optional .env file and then the environment. A
// missing env file is not an error.
func LoadConfig(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("SCENE", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Origins splits AllowedOrigins into websocket origin patterns
func (c *Config) Origins() []string {
	var origins []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// Textures maps the default backdrop texture names to configured files
func (c *Config) Textures() map[string]string {
	paths := map[string]string{}
	if c.WallTexture != "" {
		paths[scene.WallTexture] = c.WallTexture
	}
	if c.FloorTexture != "" {
		paths[scene.FloorTexture] = c.FloorTexture
	}
	return paths
}

// S3 returns upload settings, or false when no bucket is configured
func (c *Config) S3() (export.S3Config, bool) {
	if c.S3Bucket == "" {
		return export.S3Config{}, false
	}
	return export.S3Config{
		Endpoint:  c.S3Endpoint,
		Region:    c.S3Region,
		Bucket:    c.S3Bucket,
		Prefix:    c.S3Prefix,
		AccessKey: c.S3AccessKey,
		SecretKey: c.S3SecretKey,
	}, true
}
