package geometry

import (
	"github.com/df07/go-kdtracer/pkg/core"
)

// Triangle represents a single flat-shaded triangle defined by three vertices
type Triangle struct {
	V0     core.Vec3 `json:"v0"`
	V1     core.Vec3 `json:"v1"`
	V2     core.Vec3 `json:"v2"`
	Normal core.Vec3 `json:"normal"` // Unit normal, (V1-V0) × (V2-V0)
}

// NewTriangle creates a new triangle from three vertices
func NewTriangle(v0, v1, v2 core.Vec3) *Triangle {
	return &Triangle{
		V0:     v0,
		V1:     v1,
		V2:     v2,
		Normal: v1.Subtract(v0).Cross(v2.Subtract(v0)).Normalize(),
	}
}

// Hit tests if a ray intersects with the triangle. UV holds the barycentric
// weights of V1 and V2.
func (tr *Triangle) Hit(ray core.Ray, eps, tMax float64) (HitRecord, bool) {
	t, u, v, ok := intersectTriangle(ray, tr.V0, tr.V1, tr.V2, eps)
	if !ok || t >= tMax {
		return HitRecord{}, false
	}
	return HitRecord{
		T:      t,
		Normal: tr.Normal,
		UV:     core.NewVec2(u, v),
	}, true
}

// intersectTriangle is the Möller–Trumbore ray/triangle test shared by
// Triangle and Mesh. It returns the ray parameter and the barycentric
// coordinates (u, v) of the hit relative to p2 and p3. Near-parallel rays and
// degenerate triangles (|det| < eps) never hit, nor do hits with t <= eps.
func intersectTriangle(ray core.Ray, p1, p2, p3 core.Vec3, eps float64) (t, u, v float64, ok bool) {
	e1 := p2.Subtract(p1)
	e2 := p3.Subtract(p1)

	p := ray.Direction.Cross(e2)
	det := e1.Dot(p)
	if det > -eps && det < eps {
		return 0, 0, 0, false
	}
	invDet := 1.0 / det

	s := ray.Origin.Subtract(p1)
	u = s.Dot(p) * invDet
	if u < 0 || u > 1 {
		return 0, 0, 0, false
	}

	q := s.Cross(e1)
	v = ray.Direction.Dot(q) * invDet
	if v < 0 || u+v > 1 {
		return 0, 0, 0, false
	}

	t = e2.Dot(q) * invDet
	if t <= eps {
		return 0, 0, 0, false
	}
	return t, u, v, true
}
