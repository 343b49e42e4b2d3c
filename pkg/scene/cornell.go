package scene

import (
	"math"

	"github.com/df07/go-kdtracer/pkg/core"
	"github.com/df07/go-kdtracer/pkg/geometry"
	"github.com/df07/go-kdtracer/pkg/material"
)

// NewCornellScene creates a Cornell box bounded by six infinite planes, lit by
// a disc just below the ceiling, holding a glass vase and a glass ball.
//
//	 y
//	 |
//	 |     z (into the box)
//	 |
//	 +---------> x
func NewCornellScene() *World {
	w := &World{
		Light: LightSource{
			Disc:     geometry.NewDisc(core.NewVec3(5, 8.5-0.02, 5), core.NewVec3(0, 1, 0), 1.75),
			Emission: core.NewVec3(15, 15, 15),
		},
		Environment: core.Vec3{},
		Camera:      core.NewRay(core.NewVec3(5, 5.2, 29.56), core.NewVec3(0, -0.042612, -1)),
		Width:       256,
		Height:      256,
		Epsilon:     core.DefaultEpsilon,
		NearPlane:   14, // Starts primary rays inside the front wall
	}

	red := material.Solid(0.75, 0.25, 0.25)
	blue := material.Solid(0.25, 0.25, 0.75)
	grey := material.Solid(0.75, 0.75, 0.75)
	white := material.Solid(1, 1, 1)
	diffuse := material.NewDiffuse()

	w.Objects = append(w.Objects,
		NewObject(geometry.NewPlane(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0)), red, diffuse),    // left
		NewObject(geometry.NewPlane(core.NewVec3(10, 0, 0), core.NewVec3(1, 0, 0)), blue, diffuse),  // right
		NewObject(geometry.NewPlane(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1)), grey, diffuse),   // back
		NewObject(geometry.NewPlane(core.NewVec3(0, 0, 20), core.NewVec3(0, 0, 1)), grey, diffuse),  // front
		NewObject(geometry.NewPlane(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0)), grey, diffuse),   // bottom
		NewObject(geometry.NewPlane(core.NewVec3(0, 8.5, 0), core.NewVec3(0, 1, 0)), grey, diffuse), // top
		NewObject(Revolve(vaseProfile, 48, 64, core.NewVec3(3, 0, 5)), white, material.NewRefractive()),
		NewObject(Revolve(ballProfile(1.5), 32, 64, core.NewVec3(7, 1.5, 10)), white, material.NewRefractive()),
	)
	return w
}

// vaseProfile rises from a narrow foot through a wide belly to a flared lip
func vaseProfile(t float64) (core.Vec2, core.Vec2) {
	const height = 4.0
	x := 0.6 + 0.9*math.Sin(math.Pi*t*1.2) + 0.2*t*t
	dx := 0.9*1.2*math.Pi*math.Cos(math.Pi*t*1.2) + 0.4*t
	return core.NewVec2(x, height*t), core.NewVec2(dx, height)
}

// ballProfile is a half circle from the bottom pole to the top pole
func ballProfile(radius float64) CurveFunc {
	return func(t float64) (core.Vec2, core.Vec2) {
		a := math.Pi * t
		return core.NewVec2(radius*math.Sin(a), -radius*math.Cos(a)),
			core.NewVec2(radius*math.Pi*math.Cos(a), radius*math.Pi*math.Sin(a))
	}
}
