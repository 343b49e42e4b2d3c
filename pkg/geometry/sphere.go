package geometry

import (
	"math"

	"github.com/df07/go-kdtracer/pkg/core"
)

// Sphere represents a sphere shape
type Sphere struct {
	Center core.Vec3 `json:"center"`
	Radius float64   `json:"radius"`
}

// NewSphere creates a new sphere
func NewSphere(center core.Vec3, radius float64) *Sphere {
	return &Sphere{
		Center: center,
		Radius: radius,
	}
}

// Hit tests if a ray intersects with the sphere
func (s *Sphere) Hit(ray core.Ray, eps, tMax float64) (HitRecord, bool) {
	// With |d| = 1 the quadratic reduces to t² - 2bt + (|oc|² - r²) = 0
	oc := s.Center.Subtract(ray.Origin)
	b := oc.Dot(ray.Direction)
	discriminant := b*b - oc.LengthSquared() + s.Radius*s.Radius
	if discriminant < 0 {
		return HitRecord{}, false
	}

	sqrtD := math.Sqrt(discriminant)

	// Prefer the nearer root; fall back to the farther one when the origin is inside
	t := b - sqrtD
	if t <= eps {
		t = b + sqrtD
		if t <= eps {
			return HitRecord{}, false // sphere is behind the ray
		}
	}
	if t >= tMax {
		return HitRecord{}, false
	}

	normal := ray.At(t).Subtract(s.Center).Normalize()
	return HitRecord{
		T:      t,
		Normal: normal,
		UV:     sphereUV(normal),
	}, true
}

// sphereUV maps a unit normal to azimuth/elevation texture coordinates
func sphereUV(n core.Vec3) core.Vec2 {
	y := math.Max(-1, math.Min(1, n.Y))
	return core.NewVec2(
		0.5+math.Atan2(n.Z, n.X)/(2*math.Pi),
		0.5-math.Asin(y)/math.Pi,
	)
}
