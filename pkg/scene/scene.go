package scene

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/df07/go-scene-raytracer/pkg/core"
	"github.com/df07/go-scene-raytracer/pkg/geometry"
)

// Default parameters for nodes created interactively
const (
	DefaultLightIntensity = 0.4
	MinSphereRadius       = 0.5
	MaxSphereRadius       = 1.0
)

// Scene contains an ordered list of renderable nodes, an ordered list of
// point lights and the render camera. All methods are safe for concurrent use;
// edits take the write lock and renders work on a Snapshot.
type Scene struct {
	mu          sync.RWMutex
	graph       *Graph
	renderables []NodeID
	lights      []NodeID
	camera      geometry.Camera

	sphereCount int
	lightCount  int
}

// New creates an empty scene with the default camera
func New() *Scene {
	return &Scene{
		graph:  NewGraph(),
		camera: *geometry.NewCamera(),
	}
}

// Add inserts a root node. Point lights go to the light list, everything
// else to the renderable list, each in insertion order.
func (s *Scene) Add(n *Node) (NodeID, error) {
	if err := n.Transform.Validate(); err != nil {
		return "", fmt.Errorf("add %q: %w", n.Name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addLocked(n), nil
}

func (s *Scene) addLocked(n *Node) NodeID {
	n.Parent = ""
	n.Children = nil
	id := s.graph.Insert(n)
	if n.Kind().IsLight() {
		s.lights = append(s.lights, id)
	} else {
		s.renderables = append(s.renderables, id)
	}
	return id
}

// CreateSphere adds a sphere with a random radius in [0.5, 1) and a random
// color at position, named sphere0, sphere1, ...
func (s *Scene) CreateSphere(position core.Vec3, rng *rand.Rand) NodeID {
	radius := MinSphereRadius + rng.Float64()*(MaxSphereRadius-MinSphereRadius)
	color := core.NewVec3(rng.Float64(), rng.Float64(), rng.Float64())

	s.mu.Lock()
	defer s.mu.Unlock()
	name := fmt.Sprintf("sphere%d", s.sphereCount)
	s.sphereCount++
	return s.addLocked(NewSphere(name, position, radius, color))
}

// CreateLight adds a point light of the default intensity at position,
// named light0, light1, ...
func (s *Scene) CreateLight(position core.Vec3) NodeID {
	s.mu.Lock()
	defer s.mu.Unlock()
	name := fmt.Sprintf("light%d", s.lightCount)
	s.lightCount++
	return s.addLocked(NewPointLight(name, position, DefaultLightIntensity))
}

// Remove deletes a node and its descendants from the graph and from both lists
func (s *Scene) Remove(id NodeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed, err := s.graph.Remove(id)
	if err != nil {
		return err
	}
	gone := make(map[NodeID]bool, len(removed))
	for _, r := range removed {
		gone[r] = true
	}
	s.renderables = without(s.renderables, gone)
	s.lights = without(s.lights, gone)
	return nil
}

func without(ids []NodeID, gone map[NodeID]bool) []NodeID {
	kept := ids[:0]
	for _, id := range ids {
		if !gone[id] {
			kept = append(kept, id)
		}
	}
	return kept
}

// AttachChild makes child a child of parent, rejecting attachments that would
// make a node its own ancestor
func (s *Scene) AttachChild(parent, child NodeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.graph.Get(parent); err != nil {
		return err
	}
	if _, err := s.graph.Get(child); err != nil {
		return err
	}
	if parent == child || s.graph.IsAncestor(child, parent) {
		return fmt.Errorf("%w: %s under %s", ErrCycle, child, parent)
	}
	return s.graph.Attach(parent, child)
}

// Node returns a copy of the node with the given ID
func (s *Scene) Node(id NodeID) (Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, err := s.graph.Get(id)
	if err != nil {
		return Node{}, err
	}
	cp := *n
	cp.Children = append([]NodeID(nil), n.Children...)
	return cp, nil
}

// FindByName returns the first node, renderables before lights, with the given name
func (s *Scene) FindByName(name string) (NodeID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, list := range [][]NodeID{s.renderables, s.lights} {
		for _, id := range list {
			if s.graph.Nodes[id].Name == name {
				return id, true
			}
		}
	}
	return "", false
}

// Update applies edit to the node under the write lock. The edit is rolled
// back if it leaves the node with a degenerate transform.
func (s *Scene) Update(id NodeID, edit func(n *Node) error) error {
	return s.Edit(id, func(_ *Graph, n *Node) error {
		return edit(n)
	})
}

// Edit is Update with access to the graph, for edits that need world
// matrices such as Graph.SetWorldPosition. The edit may change only the node
// itself; every change is rolled back if it returns an error.
func (s *Scene) Edit(id NodeID, edit func(g *Graph, n *Node) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.graph.Get(id)
	if err != nil {
		return err
	}
	before := *n
	if err := edit(s.graph, n); err != nil {
		*n = before
		return err
	}
	if err := n.Transform.Validate(); err != nil {
		*n = before
		return fmt.Errorf("update %s: %w", id, err)
	}
	// Identity, kind and hierarchy are owned by the graph
	n.ID, n.Parent, n.Children = before.ID, before.Parent, before.Children
	n.Shape.Kind = before.Shape.Kind
	return nil
}

// WorldPosition returns the world-space position of a node
func (s *Scene) WorldPosition(id NodeID) (core.Vec3, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.graph.WorldPosition(id)
}

// SetWorldPosition moves a node so its origin lands on the world point p
func (s *Scene) SetWorldPosition(id NodeID, p core.Vec3) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.SetWorldPosition(id, p)
}

// Translate offsets a node's local position
func (s *Scene) Translate(id NodeID, delta core.Vec3) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.Translate(id, delta)
}

// Rotate applies a rotation drag of dx along axis
func (s *Scene) Rotate(id NodeID, axis int, dx float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.Rotate(id, axis, dx)
}

// ScaleBy grows a node's extents by delta
func (s *Scene) ScaleBy(id NodeID, delta float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.ScaleBy(id, delta)
}

// Renderables returns the renderable node IDs in insertion order
func (s *Scene) Renderables() []NodeID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]NodeID(nil), s.renderables...)
}

// Lights returns the light node IDs in insertion order
func (s *Scene) Lights() []NodeID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]NodeID(nil), s.lights...)
}

// Len returns the total number of nodes
func (s *Scene) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.renderables) + len(s.lights)
}

// Camera returns the render camera
func (s *Scene) Camera() geometry.Camera {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.camera
}

// SetCamera replaces the render camera
func (s *Scene) SetCamera(c geometry.Camera) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.camera = c
}

// Clear removes every node and resets the name counters
func (s *Scene) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.graph = NewGraph()
	s.renderables = nil
	s.lights = nil
	s.sphereCount = 0
	s.lightCount = 0
}
