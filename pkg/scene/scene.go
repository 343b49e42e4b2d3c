package scene

import (
	"fmt"
	"math"

	"github.com/df07/go-kdtracer/pkg/core"
	"github.com/df07/go-kdtracer/pkg/geometry"
	"github.com/df07/go-kdtracer/pkg/material"
)

// Geometry is the serializable union of the primitive shapes; exactly one field is set.
type Geometry struct {
	Sphere    *geometry.Sphere    `json:"sphere,omitempty"`
	Plane     *geometry.Plane     `json:"plane,omitempty"`
	Disc      *geometry.Disc      `json:"disc,omitempty"`
	Rectangle *geometry.Rectangle `json:"rectangle,omitempty"`
	Triangle  *geometry.Triangle  `json:"triangle,omitempty"`
	Mesh      *geometry.Mesh      `json:"mesh,omitempty"`
}

// GeometryOf wraps a shape in the union. It panics on shapes the union cannot hold.
func GeometryOf(shape geometry.Shape) Geometry {
	switch s := shape.(type) {
	case *geometry.Sphere:
		return Geometry{Sphere: s}
	case *geometry.Plane:
		return Geometry{Plane: s}
	case *geometry.Disc:
		return Geometry{Disc: s}
	case *geometry.Rectangle:
		return Geometry{Rectangle: s}
	case *geometry.Triangle:
		return Geometry{Triangle: s}
	case *geometry.Mesh:
		return Geometry{Mesh: s}
	default:
		panic(fmt.Sprintf("unsupported shape type %T", shape))
	}
}

// Shape returns the active shape, or nil for an empty union
func (g Geometry) Shape() geometry.Shape {
	switch {
	case g.Sphere != nil:
		return g.Sphere
	case g.Plane != nil:
		return g.Plane
	case g.Disc != nil:
		return g.Disc
	case g.Rectangle != nil:
		return g.Rectangle
	case g.Triangle != nil:
		return g.Triangle
	case g.Mesh != nil:
		return g.Mesh
	}
	return nil
}

// Object is a renderable surface
type Object struct {
	Geometry Geometry          `json:"geometry"`
	Color    material.Color    `json:"color"`
	Material material.Material `json:"material"`
}

// NewObject creates an object from a shape
func NewObject(shape geometry.Shape, color material.Color, mat material.Material) Object {
	return Object{Geometry: GeometryOf(shape), Color: color, Material: mat}
}

// LightSource is the scene's single area light. Light hits end a path.
type LightSource struct {
	Disc     *geometry.Disc `json:"disc"`
	Emission core.Vec3      `json:"emission"`
}

// World contains everything needed to render an image. It must not be
// modified once rendering has started.
type World struct {
	Objects     []Object    `json:"objects"`
	Light       LightSource `json:"light"`
	Environment core.Vec3   `json:"environment"` // Radiance of rays that escape the scene
	Camera      core.Ray    `json:"camera"`      // Eye position and unit view direction
	Width       int         `json:"width"`
	Height      int         `json:"height"`
	Epsilon     float64     `json:"epsilon,omitempty"`   // Intersection tolerance, core.DefaultEpsilon when zero
	NearPlane   float64     `json:"nearPlane,omitempty"` // Primary rays start this far along their direction
}

// Interaction describes the nearest surface along a ray
type Interaction struct {
	geometry.HitRecord
	Point  core.Vec3
	Object *Object // nil when the light was hit
}

// IsLight reports whether the ray hit the light source
func (i *Interaction) IsLight() bool {
	return i.Object == nil
}

// Hit finds the nearest object or light hit along the ray
func (w *World) Hit(ray core.Ray) (Interaction, bool) {
	eps := w.Eps()
	var closest Interaction
	closestT := math.Inf(1)
	found := false

	for i := range w.Objects {
		obj := &w.Objects[i]
		shape := obj.Geometry.Shape()
		if shape == nil {
			continue
		}
		if hit, ok := shape.Hit(ray, eps, closestT); ok {
			closest = Interaction{HitRecord: hit, Object: obj}
			closestT = hit.T
			found = true
		}
	}

	if w.Light.Disc != nil {
		if hit, ok := w.Light.Disc.Hit(ray, eps, closestT); ok {
			closest = Interaction{HitRecord: hit}
			found = true
		}
	}

	if found {
		closest.Point = ray.At(closest.T)
	}
	return closest, found
}

// Eps returns the intersection tolerance
func (w *World) Eps() float64 {
	if w.Epsilon > 0 {
		return w.Epsilon
	}
	return core.DefaultEpsilon
}

// Prepare validates the world and builds every mesh's KD-tree. It must be
// called after decoding a world and before rendering.
func (w *World) Prepare() error {
	if w.Width <= 0 || w.Height <= 0 {
		return fmt.Errorf("invalid resolution %dx%d", w.Width, w.Height)
	}
	if w.Camera.Direction.LengthSquared() == 0 {
		return fmt.Errorf("camera direction is zero")
	}
	w.Camera.Direction = w.Camera.Direction.Normalize()

	for i := range w.Objects {
		obj := &w.Objects[i]
		if obj.Geometry.Shape() == nil {
			return fmt.Errorf("object %d has no geometry", i)
		}
		if obj.Color.Image != nil {
			if err := obj.Color.Image.Validate(); err != nil {
				return fmt.Errorf("object %d: %w", i, err)
			}
		}
		if mesh := obj.Geometry.Mesh; mesh != nil {
			if err := mesh.Validate(); err != nil {
				return fmt.Errorf("object %d: %w", i, err)
			}
			if mesh.Tree() == nil {
				mesh.BuildTree(geometry.DefaultKDTreeOptions())
			}
		}
	}
	return nil
}

// Meshes returns the meshes in the world in object order
func (w *World) Meshes() []*geometry.Mesh {
	var meshes []*geometry.Mesh
	for _, obj := range w.Objects {
		if obj.Geometry.Mesh != nil {
			meshes = append(meshes, obj.Geometry.Mesh)
		}
	}
	return meshes
}

// PrimitiveCount returns the number of primitives, counting each mesh triangle
func (w *World) PrimitiveCount() int {
	count := 0
	for _, obj := range w.Objects {
		if obj.Geometry.Mesh != nil {
			count += obj.Geometry.Mesh.TriangleCount()
		} else {
			count++
		}
	}
	return count
}

// ReplaceTextures swaps the image of every textured object for texture
func (w *World) ReplaceTextures(texture *material.ImageTexture) int {
	replaced := 0
	for i := range w.Objects {
		if w.Objects[i].Color.Image != nil {
			w.Objects[i].Color = material.Textured(texture)
			replaced++
		}
	}
	return replaced
}
