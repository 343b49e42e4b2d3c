package geometry

import "github.com/df07/go-kdtracer/pkg/core"

// HitRecord contains information about a ray-object intersection.
// It is produced per query and never stored.
type HitRecord struct {
	T      float64   // Parameter t along the ray
	Normal core.Vec3 // Unit surface normal (outward, not flipped toward the ray)
	UV     core.Vec2 // Surface coordinates
}

// Shape is implemented by every primitive that can be hit by rays.
//
// A hit is reported only for eps < t < tMax. The same eps guards the
// near-parallel and degenerate-determinant rejections of each primitive.
type Shape interface {
	Hit(ray core.Ray, eps, tMax float64) (HitRecord, bool)
}

// hitPlane intersects a ray with the plane through point with unit normal.
func hitPlane(point, normal core.Vec3, ray core.Ray, eps, tMax float64) (float64, bool) {
	denominator := ray.Direction.Dot(normal)
	if denominator > -eps && denominator < eps {
		return 0, false // near parallel
	}

	t := point.Subtract(ray.Origin).Dot(normal) / denominator
	if t <= eps || t >= tMax {
		return 0, false
	}
	return t, true
}
