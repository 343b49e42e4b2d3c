package material

import (
	"github.com/df07/go-kdtracer/pkg/core"
)

// ColorSource provides spatially-varying colors for surfaces
type ColorSource interface {
	// Evaluate returns the color at the given surface coordinates
	Evaluate(uv core.Vec2) core.Vec3
}

// SolidColor provides uniform color
type SolidColor struct {
	Color core.Vec3 `json:"color"`
}

// NewSolidColor creates a new solid color source
func NewSolidColor(color core.Vec3) *SolidColor {
	return &SolidColor{Color: color}
}

// Evaluate returns the solid color regardless of UV
func (s *SolidColor) Evaluate(uv core.Vec2) core.Vec3 {
	return s.Color
}

// Color is the serializable union of the color sources; exactly one field is set.
type Color struct {
	Solid *SolidColor   `json:"solid,omitempty"`
	Image *ImageTexture `json:"image,omitempty"`
}

// Solid creates a uniform color
func Solid(r, g, b float64) Color {
	return Color{Solid: NewSolidColor(core.NewVec3(r, g, b))}
}

// Textured creates an image color
func Textured(texture *ImageTexture) Color {
	return Color{Image: texture}
}

// Source returns the active color source
func (c Color) Source() ColorSource {
	if c.Image != nil {
		return c.Image
	}
	if c.Solid != nil {
		return c.Solid
	}
	return NewSolidColor(core.Vec3{})
}

// Evaluate returns the color at the given surface coordinates.
// An empty Color is black.
func (c Color) Evaluate(uv core.Vec2) core.Vec3 {
	return c.Source().Evaluate(uv)
}
