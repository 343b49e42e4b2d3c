package scene

import (
	"os"
	"path/filepath"
	"testing"
)

func TestTitleCase(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"cornell-empty", "Cornell Empty"},
		{"dragon_gold", "Dragon Gold"},
		{"my-custom-scene", "My Custom Scene"},
		{"simple", "Simple"},
		{"UPPER-case", "Upper Case"},
		{"", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			result := titleCase(tc.input)
			if result != tc.expected {
				t.Errorf("titleCase(%q) = %q, want %q", tc.input, result, tc.expected)
			}
		})
	}
}

func TestBuiltinScenes(t *testing.T) {
	scenes := ListBuiltinScenes()
	if len(scenes) == 0 {
		t.Fatal("Expected built-in scenes")
	}

	for _, info := range scenes {
		t.Run(info.ID, func(t *testing.T) {
			world, err := NewScene(info.ID)
			if err != nil {
				t.Fatalf("NewScene(%q) failed: %v", info.ID, err)
			}
			if err := world.Prepare(); err != nil {
				t.Fatalf("Prepare failed: %v", err)
			}
			if len(world.Objects) == 0 {
				t.Error("Expected objects in scene")
			}
			if world.Light.Disc == nil {
				t.Error("Expected a light")
			}
			if len(world.Meshes()) == 0 {
				t.Error("Expected at least one mesh")
			}
			for _, mesh := range world.Meshes() {
				if mesh.Tree() == nil {
					t.Error("Expected mesh KD-tree to be built")
				}
			}
		})
	}

	if _, err := NewScene("no-such-scene"); err == nil {
		t.Error("Expected error for unknown scene")
	}
}

func TestListSavedScenes(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"glass-vase.json", "my_box.gob", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}

	scenes, err := ListSavedScenes(dir)
	if err != nil {
		t.Fatalf("ListSavedScenes failed: %v", err)
	}
	if len(scenes) != 2 {
		t.Fatalf("Expected 2 saved scenes, got %d: %+v", len(scenes), scenes)
	}
	if scenes[0].DisplayName != "Glass Vase" || scenes[1].DisplayName != "My Box" {
		t.Errorf("Unexpected scenes %+v", scenes)
	}
	if scenes[1].Type != "file" || scenes[1].FilePath != filepath.Join(dir, "my_box.gob") {
		t.Errorf("Unexpected file info %+v", scenes[1])
	}

	missing, err := ListSavedScenes(filepath.Join(dir, "missing"))
	if err != nil || len(missing) != 0 {
		t.Errorf("Expected empty list for missing directory, got %v, %v", missing, err)
	}
}
