package core

import (
	"math"
	"testing"
)

func TestAABB_Hit(t *testing.T) {
	box := NewAABB(NewVec3(-1, -1, -1), NewVec3(1, 1, 1))

	tests := []struct {
		name      string
		origin    Vec3
		direction Vec3
		hit       bool
		tMin      float64
		tMax      float64
	}{
		{"axis aligned from outside", NewVec3(0, 0, -5), NewVec3(0, 0, 1), true, 4, 6},
		{"axis aligned from inside", NewVec3(0, 0, 0), NewVec3(1, 0, 0), true, -1, 1},
		{"box behind ray", NewVec3(0, 0, 5), NewVec3(0, 0, 1), false, 0, 0},
		{"parallel outside slab", NewVec3(0, 2, -5), NewVec3(0, 0, 1), false, 0, 0},
		{"diagonal", NewVec3(-5, -5, -5), NewVec3(1, 1, 1), true, 4 * math.Sqrt(3), 6 * math.Sqrt(3)},
		{"negative direction", NewVec3(0, 0, 5), NewVec3(0, 0, -1), true, 4, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ray := NewRay(tt.origin, tt.direction)
			tMin, tMax, ok := box.Hit(ray.Origin, ray.Direction.Reciprocal())
			if ok != tt.hit {
				t.Fatalf("Expected hit=%t, got %t", tt.hit, ok)
			}
			if !ok {
				return
			}
			if math.Abs(tMin-tt.tMin) > 1e-9 || math.Abs(tMax-tt.tMax) > 1e-9 {
				t.Errorf("Expected interval [%f, %f], got [%f, %f]", tt.tMin, tt.tMax, tMin, tMax)
			}
		})
	}
}

func TestAABB_Hit_OriginOnFace(t *testing.T) {
	// The origin lies exactly on the y = 1 plane while travelling parallel to it:
	// (1 - 1) * Inf is NaN. A grazing ray counts as a miss and nothing is NaN.
	box := NewAABB(NewVec3(-1, -1, -1), NewVec3(1, 1, 1))
	ray := NewRay(NewVec3(0, 1, -5), NewVec3(0, 0, 1))

	tMin, tMax, ok := box.Hit(ray.Origin, ray.Direction.Reciprocal())
	if ok {
		t.Errorf("Expected grazing ray to miss, got [%f, %f]", tMin, tMax)
	}
	if math.IsNaN(tMin) || math.IsNaN(tMax) {
		t.Errorf("Expected no NaN in result, got [%f, %f]", tMin, tMax)
	}

	// Just inside the face the slab is entered normally
	ray = NewRay(NewVec3(0, 0.999, -5), NewVec3(0, 0, 1))
	if _, _, ok := box.Hit(ray.Origin, ray.Direction.Reciprocal()); !ok {
		t.Error("Expected hit for ray just inside the face")
	}
}

func TestAABB_EmptyAndExtend(t *testing.T) {
	box := EmptyAABB()
	if !box.IsEmpty() {
		t.Error("Expected EmptyAABB to be empty")
	}
	if box.SurfaceArea() != 0 {
		t.Errorf("Expected zero surface area, got %f", box.SurfaceArea())
	}

	box = NewAABBFromPoints(NewVec3(1, 2, 3), NewVec3(-1, 5, 0))
	if box.Min != NewVec3(-1, 2, 0) || box.Max != NewVec3(1, 5, 3) {
		t.Errorf("Unexpected bounds %v", box)
	}

	for _, dir := range []Vec3{NewVec3(0, 1, 0), NewVec3(1, 2, 3).Normalize()} {
		ray := NewRay(NewVec3(0, 0, 0), dir)
		if _, _, ok := EmptyAABB().Hit(ray.Origin, ray.Direction.Reciprocal()); ok {
			t.Errorf("Expected ray along %v to miss an empty box", dir)
		}
	}
}
