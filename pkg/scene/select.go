package scene

import (
	"math"

	"github.com/df07/go-scene-raytracer/pkg/core"
)

// Pick returns the selectable renderable or light hit by ray whose node
// position is nearest to cameraPos. Distance is measured to the node origin,
// not to the hit point. Ties keep the first hit in scene order, renderables
// before lights.
func (snap *Snapshot) Pick(ray core.Ray, cameraPos core.Vec3) (NodeID, bool) {
	var picked NodeID
	nearest := math.Inf(1)

	for _, list := range [][]Object{snap.Objects, snap.LightObjects} {
		for i := range list {
			obj := &list[i]
			if !obj.Selectable {
				continue
			}
			if _, ok := obj.Intersect(ray); !ok {
				continue
			}
			if d := obj.Position.Distance(cameraPos); d < nearest {
				nearest = d
				picked = obj.ID
			}
		}
	}

	return picked, picked != ""
}

// PickAt picks through the view plane coordinate (u, v) of the snapshot camera
func (snap *Snapshot) PickAt(u, v float64) (NodeID, bool) {
	return snap.Pick(snap.Camera.GetRay(u, v), snap.Camera.Position)
}

// Pick runs a selection query against the current state of the scene
func (s *Scene) Pick(ray core.Ray, cameraPos core.Vec3) (NodeID, bool, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return "", false, err
	}
	id, ok := snap.Pick(ray, cameraPos)
	return id, ok, nil
}

// PickAt runs a selection query through view plane coordinate (u, v)
func (s *Scene) PickAt(u, v float64) (NodeID, bool, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return "", false, err
	}
	id, ok := snap.PickAt(u, v)
	return id, ok, nil
}
