package server

import (
	"encoding/json"
	"net/http"

	"github.com/df07/go-scene-raytracer/pkg/loaders"
	"github.com/df07/go-scene-raytracer/pkg/scene"
	"github.com/gorilla/mux"
)

// NodeView is a node as returned by the API
type NodeView struct {
	ID string `json:"id"`
	scene.NodeSpec
	World    scene.Vec `json:"world"`
	Children []string  `json:"children,omitempty"`
}

// SceneView is the whole scene as returned by the API
type SceneView struct {
	Camera loaders.CameraSpec `json:"camera"`
	Nodes  []NodeView         `json:"nodes"`
}

// PickRequest selects by view plane coordinate (u, v) or, when Width and
// Height are set, by pixel (x, y) of a top-down image of that size
type PickRequest struct {
	U      float64 `json:"u"`
	V      float64 `json:"v"`
	X      int     `json:"x"`
	Y      int     `json:"y"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
}

// UV returns the view plane coordinate of the request
func (p PickRequest) UV() (float64, float64) {
	if p.Width <= 0 || p.Height <= 0 {
		return p.U, p.V
	}
	u := (float64(p.X) + 0.5) / float64(p.Width)
	v := 1 - (float64(p.Y)+0.5)/float64(p.Height)
	return u, v
}

// PickResponse reports the selected node, if any
type PickResponse struct {
	Hit  bool      `json:"hit"`
	Node *NodeView `json:"node,omitempty"`
}

func (s *Server) nodeView(id scene.NodeID) (NodeView, error) {
	spec, err := s.scene.DescribeNode(id)
	if err != nil {
		return NodeView{}, err
	}
	n, err := s.scene.Node(id)
	if err != nil {
		return NodeView{}, err
	}
	world, err := s.scene.WorldPosition(id)
	if err != nil {
		return NodeView{}, err
	}

	view := NodeView{ID: id.String(), NodeSpec: spec, World: scene.Vec{world.X, world.Y, world.Z}}
	for _, child := range n.Children {
		view.Children = append(view.Children, child.String())
	}
	return view, nil
}

func (s *Server) sceneView() (SceneView, error) {
	view := SceneView{Camera: loaders.CameraSpecOf(s.scene.Camera()), Nodes: []NodeView{}}
	ids := append(s.scene.Renderables(), s.scene.Lights()...)
	for _, id := range ids {
		nv, err := s.nodeView(id)
		if err != nil {
			return SceneView{}, err
		}
		view.Nodes = append(view.Nodes, nv)
	}
	return view, nil
}

// handleGetScene returns the camera and every node, renderables first
func (s *Server) handleGetScene(w http.ResponseWriter, r *http.Request) {
	view, err := s.sceneView()
	if err != nil {
		s.writeSceneError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleGetNode(w http.ResponseWriter, r *http.Request) {
	id, err := parseNodeID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	view, err := s.nodeView(id)
	if err != nil {
		s.writeSceneError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// handlePick selects the node under a view plane coordinate
func (s *Server) handlePick(w http.ResponseWriter, r *http.Request) {
	var req PickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, v := req.UV()
	id, ok, err := s.scene.PickAt(u, v)
	if err != nil {
		s.writeSceneError(w, err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusOK, PickResponse{Hit: false})
		return
	}

	view, err := s.nodeView(id)
	if err != nil {
		s.writeSceneError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PickResponse{Hit: true, Node: &view})
}

func parseNodeID(r *http.Request) (scene.NodeID, error) {
	id, _, err := scene.ParseNodeID(mux.Vars(r)["id"])
	return id, err
}
