package geometry

import (
	"math"

	"github.com/df07/go-kdtracer/pkg/core"
)

// Rectangle is a planar rectangle spanned by two orthogonal edge vectors from a corner
type Rectangle struct {
	Corner core.Vec3 `json:"corner"` // One corner of the rectangle
	U      core.Vec3 `json:"u"`      // First edge vector
	V      core.Vec3 `json:"v"`      // Second edge vector, orthogonal to U
	Normal core.Vec3 `json:"normal"` // Unit normal (U × V)
}

// NewRectangle creates a rectangle from a corner and two edge vectors.
// It panics if the edges are not orthogonal.
func NewRectangle(corner, u, v core.Vec3) *Rectangle {
	if math.Abs(u.Dot(v)) > core.DefaultEpsilon*u.Length()*v.Length() {
		panic("rectangle edge vectors must be orthogonal")
	}
	return &Rectangle{
		Corner: corner,
		U:      u,
		V:      v,
		Normal: u.Cross(v).Normalize(),
	}
}

// Hit tests if a ray intersects with the rectangle. Hits within eps of an
// edge (in normalized edge coordinates) are rejected.
func (r *Rectangle) Hit(ray core.Ray, eps, tMax float64) (HitRecord, bool) {
	t, ok := hitPlane(r.Corner, r.Normal, ray, eps, tMax)
	if !ok {
		return HitRecord{}, false
	}

	p := ray.At(t).Subtract(r.Corner)
	u := p.Dot(r.U) / r.U.LengthSquared()
	v := p.Dot(r.V) / r.V.LengthSquared()
	if u <= eps || u >= 1-eps || v <= eps || v >= 1-eps {
		return HitRecord{}, false
	}

	return HitRecord{
		T:      t,
		Normal: r.Normal,
		UV:     core.NewVec2(u, v),
	}, true
}
