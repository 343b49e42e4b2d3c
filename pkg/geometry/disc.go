package geometry

import (
	"github.com/df07/go-kdtracer/pkg/core"
)

// Disc represents a circular disc in 3D space
type Disc struct {
	Center core.Vec3 `json:"center"` // Center of the disc
	Normal core.Vec3 `json:"normal"` // Unit normal vector
	Radius float64   `json:"radius"` // Radius of the disc
}

// NewDisc creates a new disc
func NewDisc(center, normal core.Vec3, radius float64) *Disc {
	return &Disc{
		Center: center,
		Normal: normal.Normalize(),
		Radius: radius,
	}
}

// Hit implements the Shape interface
func (d *Disc) Hit(ray core.Ray, eps, tMax float64) (HitRecord, bool) {
	t, ok := hitPlane(d.Center, d.Normal, ray, eps, tMax)
	if !ok {
		return HitRecord{}, false
	}

	if ray.At(t).Subtract(d.Center).LengthSquared() >= d.Radius*d.Radius {
		return HitRecord{}, false // outside disc
	}
	return HitRecord{T: t, Normal: d.Normal}, true
}
