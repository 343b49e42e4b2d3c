package geometry

import (
	"github.com/df07/go-kdtracer/pkg/core"
)

// Plane represents an infinite plane defined by a point and normal
type Plane struct {
	Point  core.Vec3 `json:"point"`  // A point on the plane
	Normal core.Vec3 `json:"normal"` // Unit normal vector
}

// NewPlane creates a new plane
func NewPlane(point, normal core.Vec3) *Plane {
	return &Plane{
		Point:  point,
		Normal: normal.Normalize(),
	}
}

// Hit tests if a ray intersects with the plane
func (p *Plane) Hit(ray core.Ray, eps, tMax float64) (HitRecord, bool) {
	t, ok := hitPlane(p.Point, p.Normal, ray, eps, tMax)
	if !ok {
		return HitRecord{}, false
	}
	return HitRecord{T: t, Normal: p.Normal}, true
}
