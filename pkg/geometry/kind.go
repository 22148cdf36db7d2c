package geometry

import (
	"fmt"
	"strings"
)

// Kind identifies the primitive variant of a scene node
type Kind int

const (
	Sphere Kind = iota
	Cube
	Cone
	Plane
	PointLight
)

var kindNames = [...]string{"sphere", "cube", "cone", "plane", "light"}

// String returns the lower-case name of the kind, also used as its ID prefix
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// IsLight reports whether nodes of this kind belong to the light list
func (k Kind) IsLight() bool {
	return k == PointLight
}

// ParseKind converts a kind name into a Kind
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "pointlight" {
		return PointLight, nil
	}
	for i, n := range kindNames {
		if n == name {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown shape kind %q", s)
}

// MarshalText implements encoding.TextMarshaler
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
