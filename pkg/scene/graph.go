package scene

import (
	"errors"
	"fmt"

	"github.com/df07/go-scene-raytracer/pkg/core"
	"github.com/df07/go-scene-raytracer/pkg/transform"
	"github.com/go-gl/mathgl/mgl64"
)

var (
	// ErrNodeNotFound is returned for IDs the graph does not hold
	ErrNodeNotFound = errors.New("scene: node not found")
	// ErrCycle is returned when an attach would make a node its own ancestor
	ErrCycle = errors.New("scene: attach would create a cycle")
)

// rotateDragFactor converts drag distance into degrees of rotation
const rotateDragFactor = 20.0

// Graph is the arena that owns every node of a scene. Nodes reference their
// parent and children by ID only.
type Graph struct {
	Nodes map[NodeID]*Node
}

// NewGraph creates an empty graph
func NewGraph() *Graph {
	return &Graph{Nodes: make(map[NodeID]*Node)}
}

// Insert adds n to the arena, assigning an ID if it has none
func (g *Graph) Insert(n *Node) NodeID {
	if n.ID == "" {
		n.ID = newNodeID(n.Kind())
	}
	g.Nodes[n.ID] = n
	return n.ID
}

// Get returns the node with the given ID
func (g *Graph) Get(id NodeID) (*Node, error) {
	n, ok := g.Nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	return n, nil
}

// Attach makes child a child of parent. A previous parent link is dropped.
// No cycle check is performed; callers must keep the graph tree-shaped.
func (g *Graph) Attach(parentID, childID NodeID) error {
	parent, err := g.Get(parentID)
	if err != nil {
		return err
	}
	child, err := g.Get(childID)
	if err != nil {
		return err
	}

	g.detach(child)
	child.Parent = parentID
	parent.Children = append(parent.Children, childID)
	return nil
}

// IsAncestor reports whether ancestor appears on the parent chain of id
func (g *Graph) IsAncestor(ancestor, id NodeID) bool {
	steps := 0
	for cur := g.Nodes[id]; cur != nil && cur.Parent != ""; cur = g.Nodes[cur.Parent] {
		if cur.Parent == ancestor {
			return true
		}
		if steps++; steps > len(g.Nodes) {
			return false
		}
	}
	return false
}

func (g *Graph) detach(child *Node) {
	if child.Parent == "" {
		return
	}
	if parent, ok := g.Nodes[child.Parent]; ok {
		for i, id := range parent.Children {
			if id == child.ID {
				parent.Children = append(parent.Children[:i], parent.Children[i+1:]...)
				break
			}
		}
	}
	child.Parent = ""
}

// Remove deletes a node and its whole subtree, returning the removed IDs
// parent-first.
func (g *Graph) Remove(id NodeID) ([]NodeID, error) {
	n, err := g.Get(id)
	if err != nil {
		return nil, err
	}
	g.detach(n)

	var removed []NodeID
	stack := []NodeID{id}
	for len(stack) > 0 {
		cur := stack[0]
		stack = stack[1:]
		node, ok := g.Nodes[cur]
		if !ok {
			continue
		}
		removed = append(removed, cur)
		stack = append(stack, node.Children...)
		delete(g.Nodes, cur)
	}
	return removed, nil
}

// WorldMatrix returns parentWorld * local, evaluated recursively parent-first
func (g *Graph) WorldMatrix(id NodeID) (mgl64.Mat4, error) {
	n, err := g.Get(id)
	if err != nil {
		return mgl64.Mat4{}, err
	}

	m := n.Transform.LocalMatrix()
	steps := 0
	for cur := n; cur.Parent != ""; {
		parent, err := g.Get(cur.Parent)
		if err != nil {
			return mgl64.Mat4{}, err
		}
		if steps++; steps > len(g.Nodes) {
			return mgl64.Mat4{}, fmt.Errorf("%w: %s", ErrCycle, id)
		}
		m = transform.Compose(parent.Transform.LocalMatrix(), m)
		cur = parent
	}
	return m, nil
}

// parentWorld returns the world matrix of id's parent, or identity for roots
func (g *Graph) parentWorld(n *Node) (mgl64.Mat4, error) {
	if n.Parent == "" {
		return mgl64.Ident4(), nil
	}
	return g.WorldMatrix(n.Parent)
}

// WorldPosition returns the world-space location of the node's local origin
func (g *Graph) WorldPosition(id NodeID) (core.Vec3, error) {
	m, err := g.WorldMatrix(id)
	if err != nil {
		return core.Vec3{}, err
	}
	return transform.Point(m, core.Vec3{}), nil
}

// SetWorldPosition moves the node so that its local origin lands on p.
// The node's world matrix must be invertible.
func (g *Graph) SetWorldPosition(id NodeID, p core.Vec3) error {
	n, err := g.Get(id)
	if err != nil {
		return err
	}
	if err := n.Transform.Validate(); err != nil {
		return fmt.Errorf("set world position of %s: %w", id, err)
	}
	world, err := g.WorldMatrix(id)
	if err != nil {
		return err
	}
	if _, err := transform.Invert(world); err != nil {
		return fmt.Errorf("set world position of %s: %w", id, err)
	}

	parent, err := g.parentWorld(n)
	if err != nil {
		return err
	}
	parentInv, err := transform.Invert(parent)
	if err != nil {
		return fmt.Errorf("set world position of %s: %w", id, err)
	}

	// The local origin maps to position + pivot - R*pivot in parent space
	pivot := n.Transform.Pivot
	rotatedPivot := transform.Direction(n.Transform.RotationMatrix(), pivot)
	n.Transform.Position = transform.Point(parentInv, p).Subtract(pivot).Add(rotatedPivot)
	return nil
}

// Translate offsets the node's local position
func (g *Graph) Translate(id NodeID, delta core.Vec3) error {
	n, err := g.Get(id)
	if err != nil {
		return err
	}
	n.Transform.Position = n.Transform.Position.Add(delta)
	return nil
}

// Rotate applies a drag of dx along the given axis (0=X, 1=Y, 2=Z) as
// dx*20 degrees of rotation
func (g *Graph) Rotate(id NodeID, axis int, dx float64) error {
	n, err := g.Get(id)
	if err != nil {
		return err
	}
	switch axis {
	case 0:
		n.Transform.Rotation.X += dx * rotateDragFactor
	case 1:
		n.Transform.Rotation.Y += dx * rotateDragFactor
	case 2:
		n.Transform.Rotation.Z += dx * rotateDragFactor
	default:
		return fmt.Errorf("invalid rotation axis %d", axis)
	}
	return nil
}

// ScaleBy grows every extent of the node's shape by delta
func (g *Graph) ScaleBy(id NodeID, delta float64) error {
	n, err := g.Get(id)
	if err != nil {
		return err
	}
	n.Shape.Radius += delta
	n.Shape.Width += delta
	n.Shape.Height += delta
	n.Shape.Depth += delta
	return nil
}
