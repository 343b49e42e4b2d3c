package material

import (
	"fmt"
	"math"

	"github.com/df07/go-kdtracer/pkg/core"
)

// ImageTexture provides color from a 2D image
type ImageTexture struct {
	Width  int         `json:"width"`
	Height int         `json:"height"`
	Pixels []core.Vec3 `json:"pixels"` // Row-major: Pixels[y*Width + x]
}

// NewImageTexture creates a new image texture
func NewImageTexture(width, height int, pixels []core.Vec3) *ImageTexture {
	return &ImageTexture{
		Width:  width,
		Height: height,
		Pixels: pixels,
	}
}

// Validate checks that the pixel array matches the dimensions
func (t *ImageTexture) Validate() error {
	if t.Width <= 0 || t.Height <= 0 {
		return fmt.Errorf("texture has invalid size %dx%d", t.Width, t.Height)
	}
	if len(t.Pixels) != t.Width*t.Height {
		return fmt.Errorf("texture has %d pixels, want %dx%d", len(t.Pixels), t.Width, t.Height)
	}
	return nil
}

// Evaluate samples the texture using nearest-neighbor lookup. Coordinates
// wrap, so the texture tiles in both directions.
func (t *ImageTexture) Evaluate(uv core.Vec2) core.Vec3 {
	x := wrap(math.Floor(uv.X*float64(t.Width)), t.Width)
	y := wrap(math.Floor(uv.Y*float64(t.Height)), t.Height)
	return t.Pixels[y*t.Width+x]
}

// wrap reduces an integral coordinate into [0, n)
func wrap(c float64, n int) int {
	if math.IsNaN(c) || math.IsInf(c, 0) {
		return 0
	}
	i := int(math.Mod(c, float64(n)))
	if i < 0 {
		i += n
	}
	return i
}
