package renderer

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/df07/go-scene-raytracer/pkg/core"
	"github.com/df07/go-scene-raytracer/pkg/geometry"
	"github.com/df07/go-scene-raytracer/pkg/material"
	"github.com/df07/go-scene-raytracer/pkg/scene"
	"github.com/df07/go-scene-raytracer/pkg/shading"
)

func mustAdd(t *testing.T, s *scene.Scene, n *scene.Node) scene.NodeID {
	t.Helper()
	id, err := s.Add(n)
	if err != nil {
		t.Fatalf("add %s: %v", n.Name, err)
	}
	return id
}

func mustSnapshot(t *testing.T, s *scene.Scene) *scene.Snapshot {
	t.Helper()
	snap, err := s.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	return snap
}

func render(t *testing.T, snap *scene.Snapshot, textures material.Textures, opts Options) (*image.NRGBA, RenderStats) {
	t.Helper()
	img, stats, err := NewRaytracer(snap, textures, opts, nil).Render(context.Background())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return img, stats
}

// sphereScene is a unit sphere at the origin seen through a 2x2 view plane
func sphereScene(t *testing.T, light core.Vec3) *scene.Snapshot {
	t.Helper()
	s := scene.New()
	s.SetCamera(geometry.Camera{
		Position: core.NewVec3(0, 0, 10),
		Aim:      core.NewVec3(0, 0, -1),
		View:     geometry.ViewPlane{Min: core.NewVec2(-1, -1), Max: core.NewVec2(1, 1), Z: 5},
	})
	mustAdd(t, s, scene.NewSphere("ball", core.Vec3{}, 1, material.Grey))
	mustAdd(t, s, scene.NewPointLight("sun", light, 1))
	return mustSnapshot(t, s)
}

func TestRender_EndToEnd(t *testing.T) {
	opts := DefaultOptions()
	opts.Width, opts.Height = 100, 100
	opts.Mode = shading.Lambert
	opts.Background = material.Blue
	background := opts.Background.ToRGBA()

	// A light straight above the sphere grazes the front: the center pixel is
	// a hit but the facing surface gets no direct light.
	img, stats := render(t, sphereScene(t, core.NewVec3(0, 5, 0)), nil, opts)
	if got := img.NRGBAAt(50, 50); sameRGB(got, background) {
		t.Errorf("center pixel is background, expected a sphere hit")
	}
	if got := img.NRGBAAt(0, 0); !sameRGB(got, background) {
		t.Errorf("corner pixel = %v, expected background %v", got, background)
	}
	if stats.Hits == 0 || stats.Hits+stats.Misses != stats.Pixels {
		t.Errorf("unexpected stats %+v", stats)
	}

	// A light in front of the sphere lights the center
	img, stats = render(t, sphereScene(t, core.NewVec3(0, 5, 10)), nil, opts)
	if stats.Luminance <= 0 || stats.Luminance != CalculateAverageLuminance(img) {
		t.Errorf("stats luminance %f does not match the image", stats.Luminance)
	}
	center := img.NRGBAAt(50, 50)
	if sameRGB(center, background) {
		t.Fatalf("center pixel is background")
	}
	if center.R == 0 && center.G == 0 && center.B == 0 {
		t.Errorf("center pixel is black, expected a lit sphere")
	}
	if center.R != center.G || center.G != center.B {
		t.Errorf("center pixel %v should be grey", center)
	}
}

func TestRender_Deterministic(t *testing.T) {
	s := scene.NewDefaultScene()
	mustAdd(t, s, scene.NewSphere("a", core.NewVec3(-1, 0, 0), 0.8, material.Blue))
	mustAdd(t, s, scene.NewCube("b", core.NewVec3(1.5, -1, 1), 1, 1, 1, material.Yellow))
	mustAdd(t, s, scene.NewPointLight("l", core.NewVec3(0, 5, 8), 0.6))
	snap := mustSnapshot(t, s)

	opts := DefaultOptions()
	opts.Width, opts.Height = 90, 60
	opts.Mode = shading.Phong

	opts.NumWorkers, opts.TileSize = 1, 64
	first, firstStats := render(t, snap, nil, opts)

	opts.NumWorkers, opts.TileSize = 4, 7
	second, secondStats := render(t, snap, nil, opts)

	if !bytes.Equal(first.Pix, second.Pix) {
		t.Errorf("renders differ across worker and tile configurations")
	}
	if firstStats.ShadowRays != secondStats.ShadowRays || firstStats.Hits != secondStats.Hits {
		t.Errorf("stats differ: %+v vs %+v", firstStats, secondStats)
	}
}

func TestShadow_OccluderBeyondLight(t *testing.T) {
	s := scene.New()
	mustAdd(t, s, scene.NewSphere("far", core.NewVec3(0, 20, 0), 1, material.Grey))
	mustAdd(t, s, scene.NewPointLight("lamp", core.NewVec3(0, 5, 0), 0.4))
	snap := mustSnapshot(t, s)

	p, n := core.NewVec3(0, 1, 0), core.NewVec3(0, 1, 0)
	white := core.NewVec3(1, 1, 1)

	opts := DefaultOptions()
	if got := NewRaytracer(snap, nil, opts, nil).shader(snap).Lambert(p, n, white); got != (core.Vec3{}) {
		t.Errorf("Expected the sphere past the light to shadow the point, got %v", got)
	}

	opts.Params.ShadowCutoff = true
	if got := NewRaytracer(snap, nil, opts, nil).shader(snap).Lambert(p, n, white); got.IsZero() {
		t.Error("Expected the point to be lit when only nearer occluders count")
	}
}

func TestColorSource(t *testing.T) {
	snap := mustSnapshot(t, scene.NewDefaultScene())
	wall := solidTexture(material.Yellow)
	textures := material.Textures{scene.WallTexture: wall, scene.FloorTexture: solidTexture(material.White)}

	opts := DefaultOptions()
	for i := range snap.Objects {
		obj := &snap.Objects[i]
		src := NewRaytracer(snap, textures, opts, nil).colorSource(obj)
		if solid, ok := src.(material.SolidColor); !ok || solid.Color != obj.Material.Diffuse {
			t.Errorf("%s: expected its solid diffuse with textures off, got %#v", obj.Name, src)
		}
	}

	opts.Textures = true
	for i := range snap.Objects {
		obj := &snap.Objects[i]
		if obj.Material.Texture != scene.WallTexture {
			continue
		}
		if src := NewRaytracer(snap, textures, opts, nil).colorSource(obj); src != material.ColorSource(wall) {
			t.Errorf("%s: expected the wall texture, got %#v", obj.Name, src)
		}
	}
}

func TestRender_FlipOrientation(t *testing.T) {
	s := scene.New()
	// Projects to v = 0.6875 on the default view plane, above center
	mustAdd(t, s, scene.NewSphere("high", core.NewVec3(0, 1.5, 0), 0.5, material.Blue))

	opts := DefaultOptions()
	opts.Width, opts.Height = 60, 40
	opts.Mode = shading.Flat
	img, _ := render(t, mustSnapshot(t, s), nil, opts)

	blue := material.Blue.ToRGBA()
	if got := img.NRGBAAt(30, 12); !sameRGB(got, blue) {
		t.Errorf("upper pixel = %v, expected sphere %v", got, blue)
	}
	if got := img.NRGBAAt(30, 27); sameRGB(got, blue) {
		t.Errorf("lower pixel shows the sphere, image is not flipped")
	}
}

func solidTexture(c core.Vec3) *material.ImageTexture {
	return material.NewImageTexture(1, 1, []core.Vec3{c})
}

func TestRender_Textures(t *testing.T) {
	snap := mustSnapshot(t, scene.NewDefaultScene())
	opts := DefaultOptions()
	opts.Width, opts.Height = 40, 40
	opts.Mode = shading.Flat

	t.Run("missing", func(t *testing.T) {
		opts := opts
		opts.Textures = true
		textures := material.Textures{scene.WallTexture: solidTexture(material.Yellow)}
		_, _, err := NewRaytracer(snap, textures, opts, nil).Render(context.Background())
		if !errors.Is(err, ErrMissingTexture) {
			t.Fatalf("expected ErrMissingTexture, got %v", err)
		}
	})

	t.Run("disabled ignores missing textures", func(t *testing.T) {
		img, _ := render(t, snap, nil, opts)
		if got := img.NRGBAAt(20, 39); !sameRGB(got, material.DarkRed.ToRGBA()) {
			t.Errorf("floor pixel = %v, expected flat dark red", got)
		}
	})

	t.Run("sampled", func(t *testing.T) {
		opts := opts
		opts.Textures = true
		textures := material.Textures{
			scene.WallTexture:  solidTexture(material.Yellow),
			scene.FloorTexture: solidTexture(material.White),
		}
		img, _ := render(t, snap, textures, opts)
		if got := img.NRGBAAt(20, 39); !sameRGB(got, material.White.ToRGBA()) {
			t.Errorf("floor pixel = %v, expected floor texture", got)
		}
		if got := img.NRGBAAt(20, 0); !sameRGB(got, material.Yellow.ToRGBA()) {
			t.Errorf("wall pixel = %v, expected wall texture", got)
		}
	})
}

func TestRender_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	opts := DefaultOptions()
	opts.Width, opts.Height = 32, 32
	_, _, err := NewRaytracer(mustSnapshot(t, scene.NewDefaultScene()), nil, opts, nil).Render(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRender_InvalidSize(t *testing.T) {
	opts := DefaultOptions()
	opts.Width = 0
	if _, _, err := NewRaytracer(mustSnapshot(t, scene.New()), nil, opts, nil).Render(context.Background()); err == nil {
		t.Error("expected error for zero width")
	}
}

func TestRenderTiles_CoverImage(t *testing.T) {
	opts := DefaultOptions()
	opts.Width, opts.Height, opts.TileSize = 50, 30, 16
	opts.Mode = shading.Flat
	rt := NewRaytracer(mustSnapshot(t, scene.NewDefaultScene()), nil, opts, nil)

	covered := 0
	var updates []TileUpdate
	img, _, err := rt.RenderTiles(context.Background(), func(u TileUpdate) {
		updates = append(updates, u)
		covered += u.Bounds.Dx() * u.Bounds.Dy()
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if len(updates) != 4*2 {
		t.Errorf("expected 8 tiles, got %d", len(updates))
	}
	if covered != 50*30 {
		t.Errorf("tiles cover %d pixels, expected %d", covered, 50*30)
	}
	for i, u := range updates {
		if u.TileNumber != i+1 || u.TotalTiles != len(updates) {
			t.Errorf("tile %d numbered %d/%d", i, u.TileNumber, u.TotalTiles)
		}
		if got, want := u.Image.NRGBAAt(0, 0), img.NRGBAAt(u.Bounds.Min.X, u.Bounds.Min.Y); got != want {
			t.Errorf("tile %v top-left = %v, image has %v", u.Bounds, got, want)
		}
	}
}

func TestNewTileGrid(t *testing.T) {
	tiles := NewTileGrid(100, 50, 64)
	if len(tiles) != 2 {
		t.Fatalf("expected 2 tiles, got %d", len(tiles))
	}
	if tiles[1].Bounds != image.Rect(64, 0, 100, 50) {
		t.Errorf("edge tile bounds = %v", tiles[1].Bounds)
	}
}

func TestTracePixel_MatchesRender(t *testing.T) {
	snap := sphereScene(t, core.NewVec3(0, 5, 10))
	opts := DefaultOptions()
	opts.Width, opts.Height = 20, 20
	rt := NewRaytracer(snap, nil, opts, nil)
	img, _, err := rt.Render(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	// Buffer row 12 ends up as image row 7 after the flip
	want := rt.TracePixel(10, 12).ToRGBA()
	if got := img.NRGBAAt(10, 7); !sameRGB(got, want) {
		t.Errorf("rendered pixel %v, traced %v", got, want)
	}
}

func sameRGB(a color.NRGBA, b color.RGBA) bool {
	return a.R == b.R && a.G == b.G && a.B == b.B
}
