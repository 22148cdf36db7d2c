package server

import (
	"encoding/json"
	"net/http"

	"github.com/df07/go-scene-raytracer/pkg/geometry"
	"github.com/df07/go-scene-raytracer/pkg/scene"
)

// NodeUpdate is a partial edit of a node. Absolute fields are applied first,
// then the world position and the interactive edits (translate, rotate,
// scale) in that order. The update is applied whole or not at all.
type NodeUpdate struct {
	Name          *string    `json:"name,omitempty"`
	Position      *scene.Vec `json:"position,omitempty"`
	WorldPosition *scene.Vec `json:"worldPosition,omitempty"`
	Rotation      *scene.Vec `json:"rotation,omitempty"`
	Scale         *scene.Vec `json:"scale,omitempty"`
	Pivot         *scene.Vec `json:"pivot,omitempty"`
	Diffuse       *scene.Vec `json:"diffuse,omitempty"`
	Specular      *scene.Vec `json:"specular,omitempty"`
	Texture       *string    `json:"texture,omitempty"`
	Intensity     *float64   `json:"intensity,omitempty"`
	LightColor    *scene.Vec `json:"lightColor,omitempty"`
	Selectable    *bool      `json:"selectable,omitempty"`

	Translate *scene.Vec  `json:"translate,omitempty"`
	Rotate    *RotateDrag `json:"rotate,omitempty"`
	ScaleBy   *float64    `json:"scaleBy,omitempty"`
}

// RotateDrag is a mouse drag of Delta pixels rotating about Axis (0=x, 1=y, 2=z)
type RotateDrag struct {
	Axis  int     `json:"axis"`
	Delta float64 `json:"delta"`
}

// AttachRequest names the node to attach under the node in the URL
type AttachRequest struct {
	Child string `json:"child"`
}

// apply edits n in place. The scene rolls every field back if any step fails.
func (u *NodeUpdate) apply(g *scene.Graph, n *scene.Node) error {
	if u.Name != nil {
		n.Name = *u.Name
	}
	if u.Position != nil {
		n.Transform.Position = u.Position.Vec3()
	}
	if u.Rotation != nil {
		n.Transform.Rotation = u.Rotation.Vec3()
	}
	if u.Scale != nil {
		n.Transform.Scale = u.Scale.Vec3()
	}
	if u.Pivot != nil {
		n.Transform.Pivot = u.Pivot.Vec3()
	}
	if u.Diffuse != nil {
		n.Material.Diffuse = u.Diffuse.Vec3()
	}
	if u.Specular != nil {
		n.Material.Specular = u.Specular.Vec3()
	}
	if u.Texture != nil {
		n.Material.Texture = *u.Texture
	}
	if u.Intensity != nil {
		n.Intensity = *u.Intensity
	}
	if u.LightColor != nil {
		n.LightColor = u.LightColor.Vec3()
	}
	if u.Selectable != nil {
		n.Selectable = *u.Selectable
	}

	var err error
	if u.WorldPosition != nil {
		err = g.SetWorldPosition(n.ID, u.WorldPosition.Vec3())
	}
	if err == nil && u.Translate != nil {
		err = g.Translate(n.ID, u.Translate.Vec3())
	}
	if err == nil && u.Rotate != nil {
		err = g.Rotate(n.ID, u.Rotate.Axis, u.Rotate.Delta)
	}
	if err == nil && u.ScaleBy != nil {
		err = g.ScaleBy(n.ID, *u.ScaleBy)
	}
	return err
}

// handleCreateNode adds a node. A sphere or light without a name is created
// the interactive way: a random sphere or a default light at the position.
func (s *Server) handleCreateNode(w http.ResponseWriter, r *http.Request) {
	var spec scene.NodeSpec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	var id scene.NodeID
	switch {
	case spec.Name == "" && spec.Kind == geometry.Sphere:
		id = s.scene.CreateSphere(spec.Position.Vec3(), s.random())
	case spec.Name == "" && spec.Kind == geometry.PointLight:
		id = s.scene.CreateLight(spec.Position.Vec3())
	default:
		ids, err := s.scene.Build([]scene.NodeSpec{spec})
		if err != nil {
			if len(ids) > 0 {
				s.scene.Remove(ids[0])
			}
			s.writeSceneError(w, err)
			return
		}
		id = ids[0]
	}

	view, err := s.nodeView(id)
	if err != nil {
		s.writeSceneError(w, err)
		return
	}
	s.logger.Info("node created", "id", id, "name", view.Name, "kind", view.Kind)
	writeJSON(w, http.StatusCreated, view)
}

func (s *Server) handleUpdateNode(w http.ResponseWriter, r *http.Request) {
	id, err := parseNodeID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var update NodeUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if err := s.scene.Edit(id, update.apply); err != nil {
		s.writeSceneError(w, err)
		return
	}

	view, err := s.nodeView(id)
	if err != nil {
		s.writeSceneError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// handleDeleteNode removes a node together with its descendants
func (s *Server) handleDeleteNode(w http.ResponseWriter, r *http.Request) {
	id, err := parseNodeID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.scene.Remove(id); err != nil {
		s.writeSceneError(w, err)
		return
	}
	s.logger.Info("node removed", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAttachChild(w http.ResponseWriter, r *http.Request) {
	parent, err := parseNodeID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req AttachRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	child, _, err := scene.ParseNodeID(req.Child)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.scene.AttachChild(parent, child); err != nil {
		s.writeSceneError(w, err)
		return
	}
	view, err := s.nodeView(child)
	if err != nil {
		s.writeSceneError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
