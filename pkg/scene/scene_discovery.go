package scene

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SceneInfo represents a discovered scene with its metadata
type SceneInfo struct {
	ID          string `json:"id"`          // Unique identifier
	DisplayName string `json:"displayName"` // UI display name
	Description string `json:"description"` // Optional description
	Type        string `json:"type"`        // "builtin" or "file"
	FilePath    string `json:"filePath"`    // Path to the saved world (file type only)
}

type builtinScene struct {
	info  SceneInfo
	build func() *World
}

var builtinScenes = []builtinScene{
	{
		info: SceneInfo{
			ID:          "cornell",
			DisplayName: "Cornell Box",
			Description: "Cornell box of infinite planes with a glass vase and ball under a disc light",
			Type:        "builtin",
		},
		build: NewCornellScene,
	},
	{
		info: SceneInfo{
			ID:          "spheres",
			DisplayName: "Spheres",
			Description: "Open scene with every primitive and material kind under a dim sky",
			Type:        "builtin",
		},
		build: NewSpheresScene,
	},
	{
		info: SceneInfo{
			ID:          "sphere-grid",
			DisplayName: "Sphere Grid",
			Description: "Grid of OKLCH colored spheres with a floating mirror ball",
			Type:        "builtin",
		},
		build: NewSphereGridScene,
	},
}

// ListBuiltinScenes returns the scenes that are constructed in code
func ListBuiltinScenes() []SceneInfo {
	scenes := make([]SceneInfo, len(builtinScenes))
	for i, s := range builtinScenes {
		scenes[i] = s.info
	}
	return scenes
}

// NewScene builds the built-in scene with the given id
func NewScene(id string) (*World, error) {
	for _, s := range builtinScenes {
		if s.info.ID == id {
			return s.build(), nil
		}
	}
	return nil, fmt.Errorf("unknown scene %q", id)
}

// ListSavedScenes scans dir for saved worlds (.json and .gob files). A
// missing directory yields an empty list.
func ListSavedScenes(dir string) ([]SceneInfo, error) {
	if _, err := os.Stat(dir); err != nil {
		return []SceneInfo{}, nil
	}

	var scenes []SceneInfo
	for _, pattern := range []string{"*.json", "*.gob"} {
		files, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("failed to scan scenes directory: %w", err)
		}
		for _, filePath := range files {
			filename := filepath.Base(filePath)
			nameWithoutExt := strings.TrimSuffix(filename, filepath.Ext(filename))
			scenes = append(scenes, SceneInfo{
				ID:          "file:" + filename,
				DisplayName: titleCase(nameWithoutExt),
				Description: fmt.Sprintf("Saved world %s", filename),
				Type:        "file",
				FilePath:    filePath,
			})
		}
	}

	// Sort scenes by display name
	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].DisplayName < scenes[j].DisplayName
	})

	return scenes, nil
}

// titleCase converts a filename-style string to title case
// e.g., "cornell-empty" -> "Cornell Empty"
func titleCase(s string) string {
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	words := strings.Fields(s)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
	}

	return strings.Join(words, " ")
}
