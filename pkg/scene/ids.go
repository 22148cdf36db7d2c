package scene

import (
	"fmt"

	"github.com/df07/go-scene-raytracer/pkg/geometry"
	"go.jetify.com/typeid/v2"
)

// NodeID identifies a node in a scene graph. IDs are TypeIDs whose prefix is
// the node's kind, e.g. "sphere_01h455vb4pex5vsknk084sn02q".
type NodeID string

func newNodeID(kind geometry.Kind) NodeID {
	return NodeID(typeid.MustGenerate(kind.String()).String())
}

// ParseNodeID validates id and returns the kind encoded in its prefix
func ParseNodeID(id string) (NodeID, geometry.Kind, error) {
	parsed, err := typeid.Parse(id)
	if err != nil {
		return "", 0, fmt.Errorf("invalid node id %q: %w", id, err)
	}
	kind, err := geometry.ParseKind(parsed.Prefix())
	if err != nil {
		return "", 0, fmt.Errorf("invalid node id %q: %w", id, err)
	}
	return NodeID(id), kind, nil
}

func (id NodeID) String() string {
	return string(id)
}
