package scene

import (
	"math"

	"github.com/df07/go-kdtracer/pkg/core"
	"github.com/df07/go-kdtracer/pkg/geometry"
)

// SurfaceFunc evaluates a parametric surface at (u, v) in [0, 1]², returning
// the point and its normal.
type SurfaceFunc func(u, v float64) (point, normal core.Vec3)

// CurveFunc evaluates a profile curve in the xy plane at t in [0, 1],
// returning the point and the tangent dP/dt.
type CurveFunc func(t float64) (point, tangent core.Vec2)

// Tessellate samples a surface on a samplesU × samplesV grid and emits two
// triangles per grid cell. Collapsed cells, such as those at the pole of a
// revolved curve, are dropped. It panics if either sample count is below 2.
func Tessellate(surface SurfaceFunc, samplesU, samplesV int) *geometry.Mesh {
	if samplesU < 2 || samplesV < 2 {
		panic("tessellation needs at least two samples per direction")
	}

	du := 1.0 / float64(samplesU-1)
	dv := 1.0 / float64(samplesV-1)
	grid := make([]geometry.MeshVertex, 0, samplesU*samplesV)
	for i := 0; i < samplesU; i++ {
		u := float64(i) * du
		for j := 0; j < samplesV; j++ {
			v := float64(j) * dv
			point, normal := surface(u, v)
			grid = append(grid, geometry.MeshVertex{
				Position: point,
				UV:       core.NewVec2(u, v),
				Normal:   normal.Normalize(),
			})
		}
	}

	b := geometry.NewMeshBuilder()
	for i := 1; i < samplesU; i++ {
		for j := 1; j < samplesV; j++ {
			k := i*samplesV + j
			b.AddTriangle(grid[k], grid[k-1-samplesV], grid[k-1])
			b.AddTriangle(grid[k], grid[k-samplesV], grid[k-1-samplesV])
		}
	}
	return b.Build()
}

// Revolve rotates a profile curve around the y axis and tessellates the
// resulting surface, then moves it by offset. u runs along the curve and v
// around the axis. Normals are the profile normal (ty, -tx) rotated into place,
// so they stay defined where the curve touches the axis; they face outwards
// where the curve runs upwards at positive x.
func Revolve(curve CurveFunc, samplesT, samplesTheta int, offset core.Vec3) *geometry.Mesh {
	return Tessellate(func(t, s float64) (core.Vec3, core.Vec3) {
		theta := 2 * math.Pi * s
		cos, sin := math.Cos(theta), math.Sin(theta)
		p, tangent := curve(t)

		point := core.NewVec3(p.X*cos, p.Y, -p.X*sin).Add(offset)
		normal := core.NewVec3(tangent.Y*cos, -tangent.X, -tangent.Y*sin)
		return point, normal
	}, samplesT, samplesTheta)
}
