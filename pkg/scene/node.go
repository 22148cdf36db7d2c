package scene

import (
	"github.com/df07/go-scene-raytracer/pkg/core"
	"github.com/df07/go-scene-raytracer/pkg/geometry"
	"github.com/df07/go-scene-raytracer/pkg/material"
	"github.com/df07/go-scene-raytracer/pkg/transform"
)

// Node is a single object in the scene graph. Parent is a non-owning
// reference; the Graph that holds the node owns it and its children.
type Node struct {
	ID         NodeID
	Name       string
	Transform  transform.Transform
	Shape      geometry.Shape
	Material   material.Material
	Intensity  float64   // Light intensity, PointLight only
	LightColor core.Vec3 // Emitted color, PointLight only
	Selectable bool

	Parent   NodeID
	Children []NodeID
}

// Kind returns the node's primitive variant
func (n *Node) Kind() geometry.Kind {
	return n.Shape.Kind
}

// NewSphere creates a selectable sphere centered at position
func NewSphere(name string, position core.Vec3, radius float64, diffuse core.Vec3) *Node {
	return &Node{
		Name:       name,
		Transform:  transform.At(position),
		Shape:      geometry.Shape{Kind: geometry.Sphere, Radius: radius},
		Material:   material.New(diffuse),
		Selectable: true,
	}
}

// NewCube creates a selectable box with the given full extents
func NewCube(name string, position core.Vec3, width, height, depth float64, diffuse core.Vec3) *Node {
	return &Node{
		Name:       name,
		Transform:  transform.At(position),
		Shape:      geometry.Shape{Kind: geometry.Cube, Width: width, Height: height, Depth: depth},
		Material:   material.New(diffuse),
		Selectable: true,
	}
}

// NewCone creates a selectable cone whose base sits at position and whose
// axis runs along local +Z
func NewCone(name string, position core.Vec3, radius, height float64, diffuse core.Vec3) *Node {
	return &Node{
		Name:       name,
		Transform:  transform.At(position),
		Shape:      geometry.Shape{Kind: geometry.Cone, Radius: radius, Height: height},
		Material:   material.New(diffuse),
		Selectable: true,
	}
}

// NewPlane creates a finite plane. Planes are backdrops and are not selectable.
func NewPlane(name string, position, normal core.Vec3, width, height float64, diffuse core.Vec3) *Node {
	return &Node{
		Name:      name,
		Transform: transform.At(position),
		Shape:     geometry.Shape{Kind: geometry.Plane, Normal: normal, Width: width, Height: height},
		Material:  material.New(diffuse),
	}
}

// NewPointLight creates a selectable white point light drawn in yellow
func NewPointLight(name string, position core.Vec3, intensity float64) *Node {
	return &Node{
		Name:       name,
		Transform:  transform.At(position),
		Shape:      geometry.Shape{Kind: geometry.PointLight, Radius: geometry.LightRadius},
		Material:   material.New(material.Yellow),
		Intensity:  intensity,
		LightColor: material.White,
		Selectable: true,
	}
}
