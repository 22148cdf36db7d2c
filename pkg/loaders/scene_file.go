package loaders

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/df07/go-scene-raytracer/pkg/core"
	"github.com/df07/go-scene-raytracer/pkg/geometry"
	"github.com/df07/go-scene-raytracer/pkg/scene"
	"gopkg.in/yaml.v3"
)

// CameraSpec is the persisted form of the render camera
type CameraSpec struct {
	Position scene.Vec  `yaml:"position,flow" json:"position"`
	Aim      scene.Vec  `yaml:"aim,flow" json:"aim"`
	ViewMin  [2]float64 `yaml:"viewMin,flow" json:"viewMin"`
	ViewMax  [2]float64 `yaml:"viewMax,flow" json:"viewMax"`
	ViewZ    float64    `yaml:"viewZ" json:"viewZ"`
}

// CameraSpecOf captures a camera
func CameraSpecOf(c geometry.Camera) CameraSpec {
	return CameraSpec{
		Position: scene.Vec{c.Position.X, c.Position.Y, c.Position.Z},
		Aim:      scene.Vec{c.Aim.X, c.Aim.Y, c.Aim.Z},
		ViewMin:  [2]float64{c.View.Min.X, c.View.Min.Y},
		ViewMax:  [2]float64{c.View.Max.X, c.View.Max.Y},
		ViewZ:    c.View.Z,
	}
}

// Camera converts the spec back into a camera
func (cs CameraSpec) Camera() geometry.Camera {
	return geometry.Camera{
		Position: cs.Position.Vec3(),
		Aim:      cs.Aim.Vec3(),
		View: geometry.ViewPlane{
			Min: core.NewVec2(cs.ViewMin[0], cs.ViewMin[1]),
			Max: core.NewVec2(cs.ViewMax[0], cs.ViewMax[1]),
			Z:   cs.ViewZ,
		},
	}
}

// SceneFile is a whole scene as stored on disk. Name and Description are
// written as "# Scene:" and "# Description:" header comments so scene
// discovery can read them without decoding the file.
type SceneFile struct {
	Name        string            `yaml:"-"`
	Description string            `yaml:"-"`
	Camera      *CameraSpec       `yaml:"camera,omitempty"`
	Textures    map[string]string `yaml:"textures,omitempty"` // Texture name -> image path
	Nodes       []scene.NodeSpec  `yaml:"nodes"`

	dir string // Directory the file was loaded from, for relative texture paths
}

// Dir returns the directory the file was loaded from
func (f *SceneFile) Dir() string {
	return f.dir
}

// DecodeScene parses a YAML scene document
func DecodeScene(r io.Reader) (*SceneFile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene: %w", err)
	}

	var file SceneFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse scene: %w", err)
	}
	file.Name, file.Description = parseHeader(data)
	return &file, nil
}

// LoadScene reads a YAML scene file
func LoadScene(filename string) (*SceneFile, error) {
	if err := validateScenePath(filename); err != nil {
		return nil, err
	}

	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open scene file: %w", err)
	}
	defer f.Close()

	file, err := DecodeScene(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	file.dir = filepath.Dir(filename)
	return file, nil
}

// EncodeScene writes the header comments followed by the YAML document
func EncodeScene(w io.Writer, file *SceneFile) error {
	var buf bytes.Buffer
	if file.Name != "" {
		fmt.Fprintf(&buf, "# Scene: %s\n", file.Name)
	}
	if file.Description != "" {
		fmt.Fprintf(&buf, "# Description: %s\n", file.Description)
	}

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(file); err != nil {
		return fmt.Errorf("failed to encode scene: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// SaveScene writes a YAML scene file
func SaveScene(filename string, file *SceneFile) error {
	if err := validateScenePath(filename); err != nil {
		return err
	}
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create scene file: %w", err)
	}
	if err := EncodeScene(f, file); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// CaptureScene describes the scene's nodes and camera as a scene file
func CaptureScene(s *scene.Scene, name, description string) *SceneFile {
	camera := CameraSpecOf(s.Camera())
	return &SceneFile{
		Name:        name,
		Description: description,
		Camera:      &camera,
		Nodes:       s.Describe(),
	}
}

// ApplyScene replaces the contents of s with the file's camera and nodes
func ApplyScene(s *scene.Scene, file *SceneFile) ([]scene.NodeID, error) {
	s.Clear()
	if file.Camera != nil {
		s.SetCamera(file.Camera.Camera())
	}
	ids, err := s.Build(file.Nodes)
	if err != nil {
		return nil, fmt.Errorf("failed to build scene %q: %w", file.Name, err)
	}
	return ids, nil
}

func parseHeader(data []byte) (name, description string) {
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "#") {
			break
		}
		content := strings.TrimSpace(strings.TrimPrefix(line, "#"))
		if value, ok := strings.CutPrefix(content, "Scene:"); ok {
			name = strings.TrimSpace(value)
		} else if value, ok := strings.CutPrefix(content, "Description:"); ok {
			description = strings.TrimSpace(value)
		}
	}
	return name, description
}

// validateScenePath rejects paths that are not YAML files or look malformed
func validateScenePath(filename string) error {
	if filename == "" {
		return fmt.Errorf("filename cannot be empty")
	}
	if strings.Contains(filename, "\x00") {
		return fmt.Errorf("invalid file path: null bytes not allowed")
	}
	if len(filename) > 512 {
		return fmt.Errorf("file path too long: maximum 512 characters allowed")
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return nil
	}
	return fmt.Errorf("invalid file type: only .yaml and .yml files are allowed")
}

// ResolveScenePath joins a scene name onto dir and rejects names that would
// escape it
func ResolveScenePath(dir, name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid scene name %q", name)
	}
	if ext := strings.ToLower(filepath.Ext(name)); ext != ".yaml" && ext != ".yml" {
		name += ".yaml"
	}
	path := filepath.Join(dir, name)
	if err := validateScenePath(path); err != nil {
		return "", err
	}
	return path, nil
}
