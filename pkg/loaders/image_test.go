package loaders

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/df07/go-kdtracer/pkg/core"
)

// writeTestPNG creates a 2x2 PNG: white, red on top; green, mid grey below
func writeTestPNG(t *testing.T) string {
	t.Helper()
	testFile := filepath.Join(t.TempDir(), "test.png")

	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	img.Set(1, 0, color.RGBA{R: 255, G: 0, B: 0, A: 255})
	img.Set(0, 1, color.RGBA{R: 0, G: 255, B: 0, A: 255})
	img.Set(1, 1, color.RGBA{R: 128, G: 128, B: 128, A: 255})

	f, err := os.Create(testFile)
	if err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		t.Fatalf("Failed to encode PNG: %v", err)
	}
	f.Close()
	return testFile
}

func checkColor(t *testing.T, name string, got, expected core.Vec3) {
	t.Helper()
	const tolerance = 0.001
	if abs(got.X-expected.X) > tolerance ||
		abs(got.Y-expected.Y) > tolerance ||
		abs(got.Z-expected.Z) > tolerance {
		t.Errorf("%s: expected %v, got %v", name, expected, got)
	}
}

// TestLoadTexture creates a test PNG and verifies loading into linear colors
func TestLoadTexture(t *testing.T) {
	texture, err := LoadTexture(writeTestPNG(t), false)
	if err != nil {
		t.Fatalf("LoadTexture failed: %v", err)
	}

	if texture.Width != 2 || texture.Height != 2 {
		t.Errorf("Expected 2x2 image, got %dx%d", texture.Width, texture.Height)
	}
	if err := texture.Validate(); err != nil {
		t.Errorf("Expected a valid texture: %v", err)
	}

	// (128/255)^2.2
	grey := core.NewVec3(0.2195, 0.2195, 0.2195)

	checkColor(t, "Top-left (white)", texture.Pixels[0], core.NewVec3(1, 1, 1))
	checkColor(t, "Top-right (red)", texture.Pixels[1], core.NewVec3(1, 0, 0))
	checkColor(t, "Bottom-left (green)", texture.Pixels[2], core.NewVec3(0, 1, 0))
	checkColor(t, "Bottom-right (grey)", texture.Pixels[3], grey)
}

func TestLoadTexture_Flip(t *testing.T) {
	texture, err := LoadTexture(writeTestPNG(t), true)
	if err != nil {
		t.Fatalf("LoadTexture failed: %v", err)
	}

	checkColor(t, "Top-left (green)", texture.Pixels[0], core.NewVec3(0, 1, 0))
	checkColor(t, "Bottom-left (white)", texture.Pixels[2], core.NewVec3(1, 1, 1))
	checkColor(t, "Bottom-right (red)", texture.Pixels[3], core.NewVec3(1, 0, 0))
}

// TestLoadTextureNotFound verifies error handling for missing files
func TestLoadTextureNotFound(t *testing.T) {
	_, err := LoadTexture("nonexistent.png", false)
	if err == nil {
		t.Error("Expected error for non-existent file, got nil")
	}
}

func TestDecodeTexture_NotAnImage(t *testing.T) {
	_, err := DecodeTexture(bytes.NewReader([]byte("plain text")), false)
	if err == nil || !strings.Contains(err.Error(), "decode") {
		t.Errorf("Expected decode error, got %v", err)
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
