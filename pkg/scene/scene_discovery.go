package scene

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SceneInfo represents a discovered scene with its metadata
type SceneInfo struct {
	ID          string `json:"id"`          // Unique identifier
	Name        string `json:"name"`        // Scene name
	Description string `json:"description"` // Optional description
	Type        string `json:"type"`        // "builtin" or "file"
	FilePath    string `json:"filePath"`    // Path to the scene file (file type only)
}

// DefaultSceneInfo describes the built-in starting scene
var DefaultSceneInfo = SceneInfo{
	ID:          "default",
	Name:        "Default Scene",
	Description: "Back wall and floor backdrops",
	Type:        "builtin",
}

// BuiltinScenes describes the scenes constructed in code, in display order
var BuiltinScenes = []SceneInfo{
	DefaultSceneInfo,
	{ID: "cones", Name: "Cones", Description: "A cone on a pedestal, a tilted cone and a shiny sphere", Type: "builtin"},
	{ID: "spheregrid", Name: "Sphere Grid", Description: "A grid of spheres in graded hues", Type: "builtin"},
}

// NewBuiltinScene constructs the built-in scene with the given ID
func NewBuiltinScene(id string) (*Scene, bool) {
	switch id {
	case DefaultSceneInfo.ID:
		return NewDefaultScene(), true
	case "cones":
		return NewConeScene(), true
	case "spheregrid":
		return NewSphereGridScene(), true
	default:
		return nil, false
	}
}

// BuiltinSceneInfo returns the description of a built-in scene
func BuiltinSceneInfo(id string) (SceneInfo, bool) {
	for _, info := range BuiltinScenes {
		if info.ID == id {
			return info, true
		}
	}
	return SceneInfo{}, false
}

// ListSceneFiles scans dir for .yaml and .yml scene files. A missing
// directory yields an empty list.
func ListSceneFiles(dir string) ([]SceneInfo, error) {
	if _, err := os.Stat(dir); err != nil {
		return []SceneInfo{}, nil
	}

	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("failed to scan scenes directory: %w", err)
		}
		files = append(files, matches...)
	}

	scenes := []SceneInfo{}
	for _, filePath := range files {
		info, err := ParseSceneMetadata(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to parse metadata for %s: %w", filePath, err)
		}
		scenes = append(scenes, info)
	}

	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].Name < scenes[j].Name
	})
	return scenes, nil
}

// ParseSceneMetadata extracts "# Scene:" and "# Description:" header comments
// from a scene file, falling back to a name derived from the filename
func ParseSceneMetadata(filePath string) (SceneInfo, error) {
	filename := filepath.Base(filePath)
	nameWithoutExt := strings.TrimSuffix(filename, filepath.Ext(filename))

	info := SceneInfo{
		ID:       "file:" + nameWithoutExt,
		Name:     titleCase(nameWithoutExt),
		Type:     "file",
		FilePath: filePath,
	}

	file, err := os.Open(filePath)
	if err != nil {
		return info, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Stop parsing at first non-comment line
		if !strings.HasPrefix(line, "#") {
			break
		}

		content := strings.TrimSpace(strings.TrimPrefix(line, "#"))
		if value, ok := strings.CutPrefix(content, "Scene:"); ok && strings.TrimSpace(value) != "" {
			info.Name = strings.TrimSpace(value)
		} else if value, ok := strings.CutPrefix(content, "Description:"); ok {
			info.Description = strings.TrimSpace(value)
		}
	}

	return info, scanner.Err()
}

// ListAllScenes returns the built-in scenes followed by the scene files in dir
func ListAllScenes(dir string) ([]SceneInfo, error) {
	files, err := ListSceneFiles(dir)
	if err != nil {
		return nil, err
	}
	scenes := append([]SceneInfo{}, BuiltinScenes...)
	return append(scenes, files...), nil
}

// titleCase converts a filename-style string to title case
// e.g., "two-spheres" -> "Two Spheres"
func titleCase(s string) string {
	// Replace hyphens and underscores with spaces
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	// Title case each word
	words := strings.Fields(s)
	for i, word := range words {
		if len(word) > 0 {
			words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
		}
	}

	return strings.Join(words, " ")
}
