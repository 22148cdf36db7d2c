package server

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/df07/go-scene-raytracer/pkg/scene"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	cfg := &Config{
		ScenesDir: t.TempDir(),
		Width:     40,
		Height:    30,
		Exponent:  10,
		Workers:   2,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := NewServer(cfg, scene.NewDefaultScene(), nil, nil, logger)
	ts := httptest.NewServer(s.Router())
	t.Cleanup(ts.Close)
	return s, ts
}

func do(t *testing.T, method, url string, body interface{}) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, want int, into interface{}) {
	t.Helper()
	if resp.StatusCode != want {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("status %d, want %d: %s", resp.StatusCode, want, body)
	}
	if into != nil {
		if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
			t.Fatalf("decode: %v", err)
		}
	}
}

func TestHealth(t *testing.T) {
	_, ts := newTestServer(t)
	var body map[string]string
	decode(t, do(t, "GET", ts.URL+"/api/health", nil), http.StatusOK, &body)
	if body["status"] != "ok" {
		t.Errorf("unexpected body %v", body)
	}
}

func TestNodeLifecycle(t *testing.T) {
	_, ts := newTestServer(t)

	var ball NodeView
	decode(t, do(t, "POST", ts.URL+"/api/nodes", map[string]interface{}{
		"name": "ball", "kind": "sphere", "radius": 1,
		"position": []float64{0, 0, 0}, "diffuse": []float64{0, 0, 1}, "selectable": true,
	}), http.StatusCreated, &ball)
	if ball.ID == "" || ball.Name != "ball" {
		t.Fatalf("unexpected node %+v", ball)
	}

	var random NodeView
	decode(t, do(t, "POST", ts.URL+"/api/nodes", map[string]interface{}{
		"kind": "sphere", "position": []float64{2, 0, 0},
	}), http.StatusCreated, &random)
	if random.Name != "sphere0" || random.Radius < scene.MinSphereRadius || random.Radius >= scene.MaxSphereRadius {
		t.Errorf("unexpected random sphere %+v", random)
	}

	var lamp NodeView
	decode(t, do(t, "POST", ts.URL+"/api/nodes", map[string]interface{}{
		"kind": "light", "position": []float64{0, 4, 6},
	}), http.StatusCreated, &lamp)
	if lamp.Intensity != scene.DefaultLightIntensity {
		t.Errorf("light intensity = %v", lamp.Intensity)
	}

	var view SceneView
	decode(t, do(t, "GET", ts.URL+"/api/scene", nil), http.StatusOK, &view)
	if len(view.Nodes) != 5 || view.Nodes[4].ID != lamp.ID {
		t.Fatalf("expected 2 planes, 2 spheres and the light last, got %d nodes", len(view.Nodes))
	}

	var pick PickResponse
	decode(t, do(t, "POST", ts.URL+"/api/pick", PickRequest{U: 0.5, V: 0.5}), http.StatusOK, &pick)
	if !pick.Hit || pick.Node.ID != ball.ID {
		t.Errorf("pick = %+v, want %s", pick, ball.ID)
	}
	decode(t, do(t, "POST", ts.URL+"/api/pick", PickRequest{X: 0, Y: 0, Width: 40, Height: 30}), http.StatusOK, &pick)
	if pick.Hit {
		t.Errorf("corner pick hit %+v", pick.Node)
	}

	// Attach the random sphere under the ball, then move the ball
	var child NodeView
	decode(t, do(t, "POST", ts.URL+"/api/nodes/"+ball.ID+"/children", AttachRequest{Child: random.ID}), http.StatusOK, &child)
	if child.Parent != "ball" {
		t.Errorf("child parent = %q", child.Parent)
	}
	decode(t, do(t, "POST", ts.URL+"/api/nodes/"+random.ID+"/children", AttachRequest{Child: ball.ID}), http.StatusConflict, nil)

	var moved NodeView
	decode(t, do(t, "PATCH", ts.URL+"/api/nodes/"+ball.ID, map[string]interface{}{
		"translate": []float64{0, 1, 0},
	}), http.StatusOK, &moved)
	if moved.World != (scene.Vec{0, 1, 0}) {
		t.Errorf("ball world = %v", moved.World)
	}
	decode(t, do(t, "GET", ts.URL+"/api/nodes/"+random.ID, nil), http.StatusOK, &child)
	if child.World != (scene.Vec{2, 1, 0}) {
		t.Errorf("child world = %v, expected it to follow the parent", child.World)
	}

	decode(t, do(t, "PATCH", ts.URL+"/api/nodes/"+ball.ID, map[string]interface{}{
		"scale": []float64{0, 1, 1},
	}), http.StatusUnprocessableEntity, nil)

	// A failing drag leaves the absolute fields of the same update unapplied
	decode(t, do(t, "PATCH", ts.URL+"/api/nodes/"+ball.ID, map[string]interface{}{
		"name":    "renamed",
		"diffuse": []float64{1, 1, 0},
		"rotate":  map[string]interface{}{"axis": 5, "delta": 1},
	}), http.StatusBadRequest, nil)
	var unchanged NodeView
	decode(t, do(t, "GET", ts.URL+"/api/nodes/"+ball.ID, nil), http.StatusOK, &unchanged)
	if unchanged.Name != "ball" || unchanged.World != (scene.Vec{0, 1, 0}) {
		t.Errorf("rejected update was partly applied: %+v", unchanged)
	}

	// Removing the parent removes the child too
	decode(t, do(t, "DELETE", ts.URL+"/api/nodes/"+ball.ID, nil), http.StatusNoContent, nil)
	decode(t, do(t, "GET", ts.URL+"/api/nodes/"+random.ID, nil), http.StatusNotFound, nil)
	decode(t, do(t, "DELETE", ts.URL+"/api/nodes/not-an-id", nil), http.StatusBadRequest, nil)
}

func TestRenderEndpoints(t *testing.T) {
	_, ts := newTestServer(t)

	resp := do(t, "GET", ts.URL+"/api/render?mode=phong&width=48&height=32", nil)
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "image/png" {
		t.Fatalf("status %d, content type %q", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
	if resp.Header.Get("X-Render-ID") == "" {
		t.Error("missing render id")
	}
	cfg, err := png.DecodeConfig(resp.Body)
	if err != nil || cfg.Width != 48 || cfg.Height != 32 {
		t.Errorf("render is not a 48x32 PNG: %+v, %v", cfg, err)
	}

	resp = do(t, "GET", ts.URL+"/api/render/thumbnail?width=64&height=32&size=16", nil)
	if cfg, err := png.DecodeConfig(resp.Body); err != nil || cfg.Width != 16 || cfg.Height != 8 {
		t.Errorf("thumbnail is not 16x8: %+v, %v", cfg, err)
	}

	decode(t, do(t, "GET", ts.URL+"/api/render?textures=true", nil), http.StatusUnprocessableEntity, nil)
	decode(t, do(t, "GET", ts.URL+"/api/render?mode=toon", nil), http.StatusBadRequest, nil)
	decode(t, do(t, "GET", ts.URL+"/api/render?width=5", nil), http.StatusBadRequest, nil)
	decode(t, do(t, "GET", ts.URL+"/api/render?upload=true", nil), http.StatusBadGateway, nil)
}

func TestRenderSocket(t *testing.T) {
	_, ts := newTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/render/ws?width=40&height=30"
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.CloseNow()
	conn.SetReadLimit(1 << 20)

	tiles := 0
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		var event struct {
			Type string          `json:"type"`
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(data, &event); err != nil {
			t.Fatal(err)
		}

		switch event.Type {
		case "tile":
			tiles++
		case "console":
		case "complete":
			var complete CompleteMessage
			if err := json.Unmarshal(event.Data, &complete); err != nil {
				t.Fatal(err)
			}
			if tiles != 1 {
				t.Errorf("expected 1 tile for a 40x30 image, got %d", tiles)
			}
			if complete.Stats.Pixels != 40*30 || complete.ImageData == "" || complete.RenderID == "" {
				t.Errorf("unexpected completion %+v", complete.Stats)
			}
			return
		default:
			t.Fatalf("unexpected event %s: %s", event.Type, event.Data)
		}
	}
}

func TestSaveAndLoadScene(t *testing.T) {
	s, ts := newTestServer(t)

	decode(t, do(t, "POST", ts.URL+"/api/nodes", map[string]interface{}{
		"name": "marker", "kind": "cube", "width": 1, "height": 1, "depth": 1, "selectable": true,
	}), http.StatusCreated, nil)

	var info scene.SceneInfo
	decode(t, do(t, "POST", ts.URL+"/api/scene/save", SaveRequest{Name: "with-marker", Description: "one cube"}), http.StatusOK, &info)
	if info.ID != "file:with-marker" || info.Description != "one cube" {
		t.Errorf("unexpected info %+v", info)
	}
	if _, err := os.Stat(filepath.Join(s.cfg.ScenesDir, "with-marker.yaml")); err != nil {
		t.Fatalf("scene file not written: %v", err)
	}

	var scenes []scene.SceneInfo
	decode(t, do(t, "GET", ts.URL+"/api/scenes", nil), http.StatusOK, &scenes)
	if len(scenes) != len(scene.BuiltinScenes)+1 || scenes[0].ID != "default" || scenes[len(scenes)-1].ID != "file:with-marker" {
		t.Errorf("unexpected scene list %+v", scenes)
	}

	var view SceneView
	decode(t, do(t, "POST", ts.URL+"/api/scene/load", LoadRequest{ID: "default"}), http.StatusOK, &view)
	if len(view.Nodes) != 2 {
		t.Errorf("default scene has %d nodes", len(view.Nodes))
	}

	decode(t, do(t, "POST", ts.URL+"/api/scene/load", LoadRequest{ID: "spheregrid"}), http.StatusOK, &view)
	if len(view.Nodes) != 1+scene.SphereGridSize*scene.SphereGridSize+2 {
		t.Errorf("sphere grid has %d nodes", len(view.Nodes))
	}

	decode(t, do(t, "POST", ts.URL+"/api/scene/load", LoadRequest{ID: "file:with-marker"}), http.StatusOK, &view)
	if len(view.Nodes) != 3 || view.Nodes[2].Name != "marker" {
		t.Errorf("loaded scene = %+v", view.Nodes)
	}

	decode(t, do(t, "POST", ts.URL+"/api/scene/load", LoadRequest{Name: "../etc"}), http.StatusBadRequest, nil)
	decode(t, do(t, "POST", ts.URL+"/api/scene/load", LoadRequest{Name: "missing"}), http.StatusNotFound, nil)
}

func TestLoadConfig(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(envFile, []byte("SCENE_PORT=9090\nSCENE_WALL_TEXTURE=wall.png\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SCENE_ALLOWED_ORIGINS", "a.example, b.example")
	t.Setenv("SCENE_S3_BUCKET", "renders")

	cfg, err := LoadConfig(envFile)
	os.Unsetenv("SCENE_PORT")
	os.Unsetenv("SCENE_WALL_TEXTURE")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Port != 9090 || cfg.ScenesDir != "scenes" || cfg.Exponent != 10 {
		t.Errorf("unexpected config %+v", cfg)
	}
	if got := cfg.Textures(); got[scene.WallTexture] != "wall.png" || len(got) != 1 {
		t.Errorf("textures = %v", got)
	}
	if got := cfg.Origins(); len(got) != 2 || got[1] != "b.example" {
		t.Errorf("origins = %v", got)
	}
	if s3cfg, ok := cfg.S3(); !ok || s3cfg.Bucket != "renders" || s3cfg.Prefix != "renders" {
		t.Errorf("s3 = %+v, %v", s3cfg, ok)
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("missing env file should be ignored: %v", err)
	}
}
