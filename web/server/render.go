package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/df07/go-scene-raytracer/pkg/core"
	"github.com/df07/go-scene-raytracer/pkg/material"
	"github.com/df07/go-scene-raytracer/pkg/renderer"
	"github.com/df07/go-scene-raytracer/pkg/shading"
	"github.com/google/uuid"
)

const writeWait = 10 * time.Second

// RenderRequest represents a render request from the client
type RenderRequest struct {
	Width    int          `json:"width"`
	Height   int          `json:"height"`
	Mode     shading.Mode `json:"mode"`
	Textures bool         `json:"textures"`
	Ambient  float64      `json:"ambient"`      // Added to every light's intensity
	Exponent float64      `json:"exponent"`     // Phong specular exponent
	Cutoff   bool         `json:"shadowCutoff"` // Only occluders nearer than the light cast shadows
	Upload   bool         `json:"upload"`       // Also upload the PNG to S3
}

// Stats represents render statistics
type Stats struct {
	Pixels      int     `json:"pixels"`
	PrimaryRays int     `json:"primaryRays"`
	Hits        int     `json:"hits"`
	Misses      int     `json:"misses"`
	ShadowRays  int     `json:"shadowRays"`
	Luminance   float64 `json:"luminance"`
	ElapsedMs   int64   `json:"elapsedMs"`
}

// TileMessage is a finished tile sent over the websocket
type TileMessage struct {
	TileX      int    `json:"tileX"` // Pixel coordinates of the tile's top-left corner
	TileY      int    `json:"tileY"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	ImageData  string `json:"imageData"` // Base64 encoded PNG of just this tile
	TileNumber int    `json:"tileNumber"`
	TotalTiles int    `json:"totalTiles"`
}

// CompleteMessage ends a websocket render
type CompleteMessage struct {
	RenderID  string `json:"renderId"`
	ImageData string `json:"imageData"` // Base64 encoded PNG of the whole image
	Stats     Stats  `json:"stats"`
	Key       string `json:"key,omitempty"` // S3 key when uploaded
}

// SocketEvent is one websocket message
type SocketEvent struct {
	Type string      `json:"type"` // "console", "tile", "complete", "error"
	Data interface{} `json:"data"`
}

// parseRenderRequest parses request parameters
func (s *Server) parseRenderRequest(r *http.Request) (*RenderRequest, error) {
	query := r.URL.Query()
	req := &RenderRequest{Mode: shading.Lambert}

	var err error
	if req.Width, err = parseIntParam(query, "width", s.cfg.Width, 16, 4000); err != nil {
		return nil, err
	}
	if req.Height, err = parseIntParam(query, "height", s.cfg.Height, 16, 4000); err != nil {
		return nil, err
	}
	if mode := query.Get("mode"); mode != "" {
		if req.Mode, err = shading.ParseMode(mode); err != nil {
			return nil, err
		}
	}
	if req.Textures, err = parseBoolParam(query, "textures", false); err != nil {
		return nil, err
	}
	if req.Ambient, err = parseFloatParam(query, "ambient", s.cfg.Ambient, -1, 10); err != nil {
		return nil, err
	}
	if req.Exponent, err = parseFloatParam(query, "exponent", s.cfg.Exponent, 0, 1000); err != nil {
		return nil, err
	}
	if req.Cutoff, err = parseBoolParam(query, "shadowCutoff", false); err != nil {
		return nil, err
	}
	if req.Upload, err = parseBoolParam(query, "upload", false); err != nil {
		return nil, err
	}
	return req, nil
}

// newRaytracer snapshots the scene for one render
func (s *Server) newRaytracer(req *RenderRequest, logger core.Logger) (*renderer.Raytracer, error) {
	snap, err := s.scene.Snapshot()
	if err != nil {
		return nil, err
	}
	opts := renderer.DefaultOptions()
	opts.Width, opts.Height = req.Width, req.Height
	opts.Mode = req.Mode
	opts.Textures = req.Textures
	opts.Background = material.Black
	opts.Params = shading.Params{GlobalIntensity: req.Ambient, Exponent: req.Exponent, ShadowCutoff: req.Cutoff}
	opts.NumWorkers = s.cfg.Workers
	return renderer.NewRaytracer(snap, s.texturesSnapshot(), opts, logger), nil
}

func (s *Server) renderImage(ctx context.Context, req *RenderRequest, renderID string) (*image.NRGBA, renderer.RenderStats, error) {
	rt, err := s.newRaytracer(req, NewWebLogger(s.logger, renderID, nil))
	if err != nil {
		return nil, renderer.RenderStats{}, err
	}
	return rt.Render(ctx)
}

func (s *Server) writeRenderError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, renderer.ErrMissingTexture):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, context.Canceled):
		// Client went away
	default:
		s.logger.Error("render failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// upload stores the image when requested and an uploader is configured
func (s *Server) upload(ctx context.Context, req *RenderRequest, renderID string, img image.Image) (string, error) {
	if !req.Upload {
		return "", nil
	}
	if s.uploader == nil {
		return "", fmt.Errorf("uploads are not configured")
	}
	return s.uploader.UploadPNG(ctx, renderID+".png", img)
}

// handleRender renders the current scene and returns it as PNG
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRenderRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	renderID := uuid.New().String()
	img, _, err := s.renderImage(r.Context(), req, renderID)
	if err != nil {
		s.writeRenderError(w, err)
		return
	}

	key, err := s.upload(r.Context(), req, renderID, img)
	if err != nil {
		s.logger.Error("upload failed", "render", renderID, "error", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	var buf bytes.Buffer
	if err := renderer.EncodePNG(&buf, img); err != nil {
		s.writeRenderError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("X-Render-ID", renderID)
	if key != "" {
		w.Header().Set("X-Render-Key", key)
	}
	w.Write(buf.Bytes())
}

// handleThumbnail renders and scales the result to fit within size x size
func (s *Server) handleThumbnail(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRenderRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request: %v", err))
		return
	}
	size, err := parseIntParam(r.URL.Query(), "size", 128, 8, 1024)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	renderID := uuid.New().String()
	img, _, err := s.renderImage(r.Context(), req, renderID)
	if err != nil {
		s.writeRenderError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := renderer.EncodePNG(&buf, renderer.Thumbnail(img, uint(size))); err != nil {
		s.writeRenderError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("X-Render-ID", renderID)
	w.Write(buf.Bytes())
}

// handleRenderSocket streams console messages and finished tiles over a
// websocket, then the whole image
func (s *Server) handleRenderSocket(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRenderRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.cfg.Origins(),
	})
	if err != nil {
		s.logger.Error("websocket accept", "error", err)
		return
	}
	defer conn.CloseNow()

	ctx := conn.CloseRead(r.Context())
	renderID := uuid.New().String()

	// A single writer goroutine owns the connection
	events := make(chan SocketEvent, 100)
	consoleChan := make(chan ConsoleMessage, 100)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.writeSocketEvents(ctx, conn, events)
	}()

	send := func(event SocketEvent) {
		select {
		case events <- event:
		case <-ctx.Done():
		}
	}
	forwardConsole := func() {
		for {
			select {
			case msg := <-consoleChan:
				send(SocketEvent{Type: "console", Data: msg})
			default:
				return
			}
		}
	}

	start := time.Now()
	rt, err := s.newRaytracer(req, NewWebLogger(s.logger, renderID, consoleChan))
	var img *image.NRGBA
	var stats renderer.RenderStats
	if err == nil {
		img, stats, err = rt.RenderTiles(ctx, func(update renderer.TileUpdate) {
			forwardConsole()
			data, encErr := imageToBase64PNG(update.Image)
			if encErr != nil {
				return
			}
			send(SocketEvent{Type: "tile", Data: TileMessage{
				TileX:      update.Bounds.Min.X,
				TileY:      update.Bounds.Min.Y,
				Width:      update.Bounds.Dx(),
				Height:     update.Bounds.Dy(),
				ImageData:  data,
				TileNumber: update.TileNumber,
				TotalTiles: update.TotalTiles,
			}})
		})
	}
	forwardConsole()

	var complete CompleteMessage
	if err == nil {
		complete = CompleteMessage{RenderID: renderID, Stats: toStats(stats, time.Since(start))}
		complete.Key, err = s.upload(ctx, req, renderID, img)
	}
	if err == nil {
		complete.ImageData, err = imageToBase64PNG(img)
	}
	if err != nil {
		send(SocketEvent{Type: "error", Data: err.Error()})
	} else {
		send(SocketEvent{Type: "complete", Data: complete})
	}

	close(events)
	wg.Wait()
	conn.Close(websocket.StatusNormalClosure, "render finished")
}

// writeSocketEvents writes events until the channel is closed or the
// connection fails
func (s *Server) writeSocketEvents(ctx context.Context, conn *websocket.Conn, events <-chan SocketEvent) {
	for event := range events {
		data, err := json.Marshal(event)
		if err != nil {
			s.logger.Error("marshal event", "error", err)
			continue
		}
		writeCtx, cancel := context.WithTimeout(ctx, writeWait)
		err = conn.Write(writeCtx, websocket.MessageText, data)
		cancel()
		if err != nil {
			s.logger.Debug("websocket write", "error", err)
			// Drain so senders never block
			for range events {
			}
			return
		}
	}
}

func toStats(stats renderer.RenderStats, elapsed time.Duration) Stats {
	return Stats{
		Pixels:      stats.Pixels,
		PrimaryRays: stats.PrimaryRays,
		Hits:        stats.Hits,
		Misses:      stats.Misses,
		ShadowRays:  stats.ShadowRays,
		Luminance:   stats.Luminance,
		ElapsedMs:   elapsed.Milliseconds(),
	}
}

// imageToBase64PNG converts an image to base64-encoded PNG
func imageToBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := renderer.EncodePNG(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
