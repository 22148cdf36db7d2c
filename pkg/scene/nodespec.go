package scene

import (
	"fmt"

	"github.com/df07/go-scene-raytracer/pkg/core"
	"github.com/df07/go-scene-raytracer/pkg/geometry"
	"github.com/df07/go-scene-raytracer/pkg/material"
	"github.com/df07/go-scene-raytracer/pkg/transform"
)

// Vec is the serialized form of a vector or RGB color
type Vec [3]float64

func vecOf(v core.Vec3) Vec {
	return Vec{v.X, v.Y, v.Z}
}

func (v Vec) Vec3() core.Vec3 {
	return core.NewVec3(v[0], v[1], v[2])
}

// NodeSpec is the flat description of a node used by scene files and the
// editing API. Parent refers to another node by name.
type NodeSpec struct {
	Name       string        `yaml:"name" json:"name"`
	Kind       geometry.Kind `yaml:"kind" json:"kind"`
	Position   Vec           `yaml:"position,flow" json:"position"`
	Rotation   Vec           `yaml:"rotation,flow" json:"rotation"`
	Scale      *Vec          `yaml:"scale,flow,omitempty" json:"scale,omitempty"`
	Pivot      Vec           `yaml:"pivot,flow" json:"pivot"`
	Radius     float64       `yaml:"radius,omitempty" json:"radius,omitempty"`
	Width      float64       `yaml:"width,omitempty" json:"width,omitempty"`
	Height     float64       `yaml:"height,omitempty" json:"height,omitempty"`
	Depth      float64       `yaml:"depth,omitempty" json:"depth,omitempty"`
	Normal     *Vec          `yaml:"normal,flow,omitempty" json:"normal,omitempty"`
	Diffuse    Vec           `yaml:"diffuse,flow" json:"diffuse"`
	Specular   *Vec          `yaml:"specular,flow,omitempty" json:"specular,omitempty"`
	Texture    string        `yaml:"texture,omitempty" json:"texture,omitempty"`
	Intensity  float64       `yaml:"intensity,omitempty" json:"intensity,omitempty"`
	LightColor *Vec          `yaml:"lightColor,flow,omitempty" json:"lightColor,omitempty"`
	Selectable bool          `yaml:"selectable" json:"selectable"`
	Parent     string        `yaml:"parent,omitempty" json:"parent,omitempty"`
}

// NewNode converts a spec into a detached node. Missing scale defaults to
// (1,1,1), missing specular to light gray and missing light color to white.
func (ns NodeSpec) NewNode() *Node {
	tr := transform.Identity()
	tr.Position = ns.Position.Vec3()
	tr.Rotation = ns.Rotation.Vec3()
	tr.Pivot = ns.Pivot.Vec3()
	if ns.Scale != nil {
		tr.Scale = ns.Scale.Vec3()
	}

	n := &Node{
		Name:      ns.Name,
		Transform: tr,
		Shape: geometry.Shape{
			Kind:   ns.Kind,
			Radius: ns.Radius,
			Width:  ns.Width,
			Height: ns.Height,
			Depth:  ns.Depth,
		},
		Material:   material.New(ns.Diffuse.Vec3()),
		Intensity:  ns.Intensity,
		LightColor: material.White,
		Selectable: ns.Selectable,
	}
	n.Material.Texture = ns.Texture
	if ns.Normal != nil {
		n.Shape.Normal = ns.Normal.Vec3()
	}
	if ns.Specular != nil {
		n.Material.Specular = ns.Specular.Vec3()
	}
	if ns.LightColor != nil {
		n.LightColor = ns.LightColor.Vec3()
	}
	if ns.Kind == geometry.PointLight && n.Shape.Radius == 0 {
		n.Shape.Radius = geometry.LightRadius
	}
	return n
}

// SpecOf describes a node. parentName is the name of the node's parent, if any.
func SpecOf(n *Node, parentName string) NodeSpec {
	scale := vecOf(n.Transform.Scale)
	specular := vecOf(n.Material.Specular)
	ns := NodeSpec{
		Name:       n.Name,
		Kind:       n.Kind(),
		Position:   vecOf(n.Transform.Position),
		Rotation:   vecOf(n.Transform.Rotation),
		Scale:      &scale,
		Pivot:      vecOf(n.Transform.Pivot),
		Radius:     n.Shape.Radius,
		Width:      n.Shape.Width,
		Height:     n.Shape.Height,
		Depth:      n.Shape.Depth,
		Diffuse:    vecOf(n.Material.Diffuse),
		Specular:   &specular,
		Texture:    n.Material.Texture,
		Selectable: n.Selectable,
		Parent:     parentName,
	}
	if n.Kind() == geometry.Plane {
		normal := vecOf(n.Shape.Normal)
		ns.Normal = &normal
	}
	if n.Kind().IsLight() {
		color := vecOf(n.LightColor)
		ns.Intensity = n.Intensity
		ns.LightColor = &color
	}
	return ns
}

// Build adds the nodes described by specs to the scene in order, then links
// parents by name. Parent names may refer to nodes already in the scene.
func (s *Scene) Build(specs []NodeSpec) ([]NodeID, error) {
	ids := make([]NodeID, 0, len(specs))
	byName := make(map[string]NodeID, len(specs))

	for _, ns := range specs {
		id, err := s.Add(ns.NewNode())
		if err != nil {
			return ids, err
		}
		ids = append(ids, id)
		if _, dup := byName[ns.Name]; !dup {
			byName[ns.Name] = id
		}
	}

	for i, ns := range specs {
		if ns.Parent == "" {
			continue
		}
		parent, ok := byName[ns.Parent]
		if !ok {
			if parent, ok = s.FindByName(ns.Parent); !ok {
				return ids, fmt.Errorf("%w: parent %q of %q", ErrNodeNotFound, ns.Parent, ns.Name)
			}
		}
		if err := s.AttachChild(parent, ids[i]); err != nil {
			return ids, err
		}
	}
	return ids, nil
}

// Describe returns the scene as node specs, renderables first then lights,
// each in scene order
func (s *Scene) Describe() []NodeSpec {
	s.mu.RLock()
	defer s.mu.RUnlock()

	specs := make([]NodeSpec, 0, len(s.renderables)+len(s.lights))
	for _, list := range [][]NodeID{s.renderables, s.lights} {
		for _, id := range list {
			specs = append(specs, s.describeLocked(id))
		}
	}
	return specs
}

// DescribeNode returns the spec of a single node
func (s *Scene) DescribeNode(id NodeID) (NodeSpec, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, err := s.graph.Get(id); err != nil {
		return NodeSpec{}, err
	}
	return s.describeLocked(id), nil
}

func (s *Scene) describeLocked(id NodeID) NodeSpec {
	n := s.graph.Nodes[id]
	parentName := ""
	if parent, ok := s.graph.Nodes[n.Parent]; ok {
		parentName = parent.Name
	}
	return SpecOf(n, parentName)
}
