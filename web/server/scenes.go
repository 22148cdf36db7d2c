package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/df07/go-scene-raytracer/pkg/loaders"
	"github.com/df07/go-scene-raytracer/pkg/scene"
)

// SaveRequest names the file to write under the scenes directory
type SaveRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadRequest selects a scene by discovery ID (a built-in ID such as
// "default", or "file:<name>") or by file name
type LoadRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// handleListScenes lists the built-in scene and the scene files on disk
func (s *Server) handleListScenes(w http.ResponseWriter, r *http.Request) {
	scenes, err := scene.ListAllScenes(s.cfg.ScenesDir)
	if err != nil {
		s.logger.Error("list scenes", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list scenes")
		return
	}
	writeJSON(w, http.StatusOK, scenes)
}

func (s *Server) handleSaveScene(w http.ResponseWriter, r *http.Request) {
	var req SaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	path, err := loaders.ResolveScenePath(s.cfg.ScenesDir, req.Name)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	title := strings.TrimSuffix(req.Name, ".yaml")
	if err := loaders.SaveScene(path, loaders.CaptureScene(s.scene, title, req.Description)); err != nil {
		s.logger.Error("save scene", "path", path, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.logger.Info("scene saved", "path", path)

	info, err := scene.ParseSceneMetadata(path)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// handleLoadScene replaces the current scene. Textures listed by a scene
// file are loaded before any node is replaced.
func (s *Server) handleLoadScene(w http.ResponseWriter, r *http.Request) {
	var req LoadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.ID == "" && req.Name == "" {
		req.ID = scene.DefaultSceneInfo.ID
	}

	var file *loaders.SceneFile
	if built, ok := scene.NewBuiltinScene(req.ID); ok {
		info, _ := scene.BuiltinSceneInfo(req.ID)
		file = loaders.CaptureScene(built, info.Name, info.Description)
	} else {
		name := req.Name
		if id, ok := strings.CutPrefix(req.ID, "file:"); ok {
			name = id
		}
		path, err := loaders.ResolveScenePath(s.cfg.ScenesDir, name)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if file, err = loaders.LoadScene(path); err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
	}

	if len(file.Textures) > 0 {
		textures, err := loaders.LoadTextures(r.Context(), file.Dir(), file.Textures)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		s.mergeTextures(textures)
	}

	if _, err := loaders.ApplyScene(s.scene, file); err != nil {
		s.writeSceneError(w, err)
		return
	}
	s.logger.Info("scene loaded", "name", file.Name, "nodes", s.scene.Len())

	view, err := s.sceneView()
	if err != nil {
		s.writeSceneError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
