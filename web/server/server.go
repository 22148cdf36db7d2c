package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/df07/go-scene-raytracer/pkg/export"
	"github.com/df07/go-scene-raytracer/pkg/material"
	"github.com/df07/go-scene-raytracer/pkg/scene"
	"github.com/df07/go-scene-raytracer/pkg/transform"
	"github.com/gorilla/mux"
)

// Server exposes one editable scene over HTTP
type Server struct {
	cfg      *Config
	scene    *scene.Scene
	uploader *export.Uploader // nil disables uploads
	logger   *slog.Logger

	mu       sync.RWMutex
	textures material.Textures

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewServer creates a server for sc. textures may be nil.
func NewServer(cfg *Config, sc *scene.Scene, textures material.Textures, uploader *export.Uploader, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if textures == nil {
		textures = material.Textures{}
	}
	return &Server{
		cfg:      cfg,
		scene:    sc,
		uploader: uploader,
		logger:   logger,
		textures: textures,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Router builds the HTTP routes
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.handleHealth).Methods("GET")
	api.HandleFunc("/scene", s.handleGetScene).Methods("GET")
	api.HandleFunc("/scenes", s.handleListScenes).Methods("GET")
	api.HandleFunc("/scene/save", s.handleSaveScene).Methods("POST")
	api.HandleFunc("/scene/load", s.handleLoadScene).Methods("POST")
	api.HandleFunc("/nodes", s.handleCreateNode).Methods("POST")
	api.HandleFunc("/nodes/{id}", s.handleGetNode).Methods("GET")
	api.HandleFunc("/nodes/{id}", s.handleUpdateNode).Methods("PATCH")
	api.HandleFunc("/nodes/{id}", s.handleDeleteNode).Methods("DELETE")
	api.HandleFunc("/nodes/{id}/children", s.handleAttachChild).Methods("POST")
	api.HandleFunc("/pick", s.handlePick).Methods("POST")
	api.HandleFunc("/render", s.handleRender).Methods("GET")
	api.HandleFunc("/render/thumbnail", s.handleThumbnail).Methods("GET")
	api.HandleFunc("/render/ws", s.handleRenderSocket)

	if s.cfg.StaticDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(s.cfg.StaticDir)))
	}
	return r
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info("server starting", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) texturesSnapshot() material.Textures {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp := make(material.Textures, len(s.textures))
	for name, tex := range s.textures {
		cp[name] = tex
	}
	return cp
}

func (s *Server) mergeTextures(textures material.Textures) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, tex := range textures {
		s.textures[name] = tex
	}
}

func (s *Server) random() *rand.Rand {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return rand.New(rand.NewSource(s.rng.Int63()))
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeSceneError maps scene errors onto HTTP status codes
func (s *Server) writeSceneError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, scene.ErrNodeNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, scene.ErrCycle):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, transform.ErrSingularMatrix), errors.Is(err, transform.ErrDegenerateScale):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		s.logger.Warn("request failed", "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
	}
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseFloatParam parses a float parameter from URL query with validation
func parseFloatParam(values url.Values, key string, defaultValue, min, max float64) (float64, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %f and %f, got: %f", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseBoolParam parses a boolean parameter from URL query
func parseBoolParam(values url.Values, key string, defaultValue bool) (bool, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return false, fmt.Errorf("invalid %s: %s", key, value)
		}
		return parsed, nil
	}
	return defaultValue, nil
}
