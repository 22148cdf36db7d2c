package scene

import (
	"fmt"

	"github.com/df07/go-scene-raytracer/pkg/core"
	"github.com/df07/go-scene-raytracer/pkg/geometry"
	"github.com/df07/go-scene-raytracer/pkg/lights"
	"github.com/df07/go-scene-raytracer/pkg/material"
	"github.com/df07/go-scene-raytracer/pkg/transform"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/jinzhu/copier"
)

// Object is a node resolved for tracing: its world matrix and inverse are
// computed once when the snapshot is taken
type Object struct {
	ID         NodeID
	Name       string
	Shape      geometry.Shape
	Material   material.Material
	Selectable bool
	Position   core.Vec3 // World-space position of the node origin
	World      mgl64.Mat4
	Inverse    mgl64.Mat4
}

// Intersect tests a world-space ray against the object
func (o *Object) Intersect(ray core.Ray) (*geometry.HitRecord, bool) {
	return o.Shape.Intersect(ray, o.World, o.Inverse)
}

// Snapshot is an immutable copy of a scene taken at render or pick time.
// Later edits to the scene do not affect it.
type Snapshot struct {
	Camera       geometry.Camera
	Objects      []Object       // Renderables in scene order
	LightObjects []Object       // Lights as pickable objects, in scene order
	Lights       []lights.Light // Lights for shading, in scene order
	Skipped      int            // Nodes left out because their world matrix is singular

	graph *Graph
}

// Snapshot deep-copies the scene graph under the read lock and resolves
// every node's world matrix
func (s *Scene) Snapshot() (*Snapshot, error) {
	s.mu.RLock()
	graph := NewGraph()
	for id, n := range s.graph.Nodes {
		var cp Node
		if err := copier.CopyWithOption(&cp, n, copier.Option{DeepCopy: true}); err != nil {
			s.mu.RUnlock()
			return nil, fmt.Errorf("snapshot node %s: %w", id, err)
		}
		graph.Nodes[id] = &cp
	}
	renderables := append([]NodeID(nil), s.renderables...)
	lightIDs := append([]NodeID(nil), s.lights...)
	camera := s.camera
	s.mu.RUnlock()

	snap := &Snapshot{Camera: camera, graph: graph}
	for _, id := range renderables {
		obj, ok, err := resolve(graph, id)
		if err != nil {
			return nil, err
		}
		if !ok {
			snap.Skipped++
			continue
		}
		snap.Objects = append(snap.Objects, obj)
	}
	for _, id := range lightIDs {
		obj, ok, err := resolve(graph, id)
		if err != nil {
			return nil, err
		}
		if !ok {
			snap.Skipped++
			continue
		}
		n := graph.Nodes[id]
		snap.LightObjects = append(snap.LightObjects, obj)
		snap.Lights = append(snap.Lights, lights.NewPointLight(obj.Position, n.Intensity, n.LightColor))
	}
	return snap, nil
}

// resolve computes the world placement of a node. Nodes whose world matrix
// cannot be inverted are reported as not ok and never intersect.
func resolve(g *Graph, id NodeID) (Object, bool, error) {
	n, err := g.Get(id)
	if err != nil {
		return Object{}, false, err
	}
	world, err := g.WorldMatrix(id)
	if err != nil {
		return Object{}, false, err
	}
	inverse, err := transform.Invert(world)
	if err != nil {
		return Object{}, false, nil
	}
	return Object{
		ID:         n.ID,
		Name:       n.Name,
		Shape:      n.Shape,
		Material:   n.Material,
		Selectable: n.Selectable,
		Position:   transform.Point(world, core.Vec3{}),
		World:      world,
		Inverse:    inverse,
	}, true, nil
}

// Node returns the snapshot's copy of a node
func (snap *Snapshot) Node(id NodeID) (Node, bool) {
	n, ok := snap.graph.Nodes[id]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// Occluded reports whether any renderable is hit closer than maxDistance.
// Pass math.Inf(1) to count every hit along the ray.
func (snap *Snapshot) Occluded(ray core.Ray, maxDistance float64) bool {
	for i := range snap.Objects {
		if hit, ok := snap.Objects[i].Intersect(ray); ok && hit.Distance < maxDistance {
			return true
		}
	}
	return false
}
