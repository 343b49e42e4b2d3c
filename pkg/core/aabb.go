package core

import "math"

// AABB represents an axis-aligned bounding box
type AABB struct {
	Min Vec3 // Minimum corner
	Max Vec3 // Maximum corner
}

// NewAABB creates a new AABB from min and max points
func NewAABB(min, max Vec3) AABB {
	return AABB{Min: min, Max: max}
}

// EmptyAABB returns a box with min > max on every axis. Extending it by any
// point yields the degenerate box around that point.
func EmptyAABB() AABB {
	inf := math.Inf(1)
	return AABB{
		Min: Vec3{inf, inf, inf},
		Max: Vec3{-inf, -inf, -inf},
	}
}

// NewAABBFromPoints creates an AABB that bounds all given points
func NewAABBFromPoints(points ...Vec3) AABB {
	box := EmptyAABB()
	for _, point := range points {
		box = box.Extend(point)
	}
	return box
}

// Extend returns the smallest box containing both the box and the point
func (aabb AABB) Extend(point Vec3) AABB {
	return AABB{
		Min: Vec3{math.Min(aabb.Min.X, point.X), math.Min(aabb.Min.Y, point.Y), math.Min(aabb.Min.Z, point.Z)},
		Max: Vec3{math.Max(aabb.Max.X, point.X), math.Max(aabb.Max.Y, point.Y), math.Max(aabb.Max.Z, point.Z)},
	}
}

// Union returns an AABB that bounds both this AABB and another
func (aabb AABB) Union(other AABB) AABB {
	return aabb.Extend(other.Min).Extend(other.Max)
}

// IsEmpty reports whether min > max on any axis
func (aabb AABB) IsEmpty() bool {
	return aabb.Min.X > aabb.Max.X || aabb.Min.Y > aabb.Max.Y || aabb.Min.Z > aabb.Max.Z
}

// Size returns the size (extent) of the AABB along each axis
func (aabb AABB) Size() Vec3 {
	return aabb.Max.Subtract(aabb.Min)
}

// SurfaceArea returns the surface area of the AABB
func (aabb AABB) SurfaceArea() float64 {
	if aabb.IsEmpty() {
		return 0
	}
	size := aabb.Size()
	return 2.0 * (size.X*size.Y + size.Y*size.Z + size.Z*size.X)
}

// Expand returns an AABB expanded by the given amount in all directions
func (aabb AABB) Expand(amount float64) AABB {
	expansion := NewVec3(amount, amount, amount)
	return AABB{
		Min: aabb.Min.Subtract(expansion),
		Max: aabb.Max.Add(expansion),
	}
}

// Hit intersects a ray with the box using the slab method and returns the
// entry and exit parameters. invDir is the component-wise reciprocal of the
// ray direction; infinite components (axis-parallel rays) are handled by IEEE
// arithmetic. An empty box is never hit. A NaN slab bound (origin exactly on
// a face of an axis-parallel ray) is ignored in favour of the other bound, so
// the result is never NaN.
func (aabb AABB) Hit(origin, invDir Vec3) (tMin, tMax float64, ok bool) {
	if aabb.IsEmpty() {
		return 0, 0, false
	}
	t0x := (aabb.Min.X - origin.X) * invDir.X
	t1x := (aabb.Max.X - origin.X) * invDir.X
	t0y := (aabb.Min.Y - origin.Y) * invDir.Y
	t1y := (aabb.Max.Y - origin.Y) * invDir.Y
	t0z := (aabb.Min.Z - origin.Z) * invDir.Z
	t1z := (aabb.Max.Z - origin.Z) * invDir.Z

	tMin = maxNum(maxNum(minNum(t0x, t1x), minNum(t0y, t1y)), minNum(t0z, t1z))
	tMax = minNum(minNum(maxNum(t0x, t1x), maxNum(t0y, t1y)), maxNum(t0z, t1z))
	if maxNum(tMin, 0) < tMax {
		return tMin, tMax, true
	}
	return 0, 0, false
}

// Intersects reports whether the ray enters the box in front of its origin
func (aabb AABB) Intersects(origin, invDir Vec3) bool {
	_, _, ok := aabb.Hit(origin, invDir)
	return ok
}

// minNum and maxNum ignore a NaN operand, returning the other one.
func minNum(a, b float64) float64 {
	if a < b || b != b {
		return a
	}
	return b
}

func maxNum(a, b float64) float64 {
	if a > b || b != b {
		return a
	}
	return b
}
