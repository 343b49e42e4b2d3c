package scene

import (
	"github.com/df07/go-kdtracer/pkg/core"
	"github.com/df07/go-kdtracer/pkg/geometry"
	"github.com/df07/go-kdtracer/pkg/material"
)

// NewSpheresScene creates an open scene under a dim sky showing every
// primitive and material kind: a textured ball, a mirror ball, a mixed
// material ball, a tessellated bowl, a rectangle and a triangle on a floor.
func NewSpheresScene() *World {
	w := &World{
		Light: LightSource{
			Disc:     geometry.NewDisc(core.NewVec3(0, 6, 1), core.NewVec3(0, -1, 0), 2),
			Emission: core.NewVec3(8, 8, 7.5),
		},
		Environment: core.NewVec3(0.15, 0.18, 0.25),
		Camera:      core.NewRay(core.NewVec3(0, 2, 9), core.NewVec3(0, -0.15, -1)),
		Width:       320,
		Height:      240,
		Epsilon:     core.DefaultEpsilon,
	}

	checker := material.NewCheckerboardTexture(64, 32, 8,
		core.NewVec3(0.9, 0.9, 0.9),
		core.NewVec3(0.2, 0.2, 0.7),
	)
	sunset := material.NewGradientTexture(8, 64,
		core.NewVec3(0.9, 0.5, 0.2),
		core.NewVec3(0.3, 0.2, 0.6),
	)

	w.Objects = append(w.Objects,
		NewObject(geometry.NewPlane(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0)),
			material.Solid(0.6, 0.6, 0.5), material.NewDiffuse()),
		NewObject(geometry.NewSphere(core.NewVec3(-2.2, 1, 0), 1),
			material.Textured(checker), material.NewDiffuse()),
		NewObject(geometry.NewSphere(core.NewVec3(0, 1, -1), 1),
			material.Solid(0.9, 0.9, 0.9), material.NewSpecular()),
		NewObject(geometry.NewSphere(core.NewVec3(2.2, 1, 0), 1),
			material.Solid(0.8, 0.5, 0.3), material.NewMixed(0.6, 0.3)),
		NewObject(Revolve(ballProfile(0.6), 16, 32, core.NewVec3(0.8, 0.6, 2)),
			material.Solid(1, 1, 1), material.NewRefractive()),
		NewObject(geometry.NewRectangle(core.NewVec3(-4, 0, -3), core.NewVec3(8, 0, 0), core.NewVec3(0, 3, 0)),
			material.Textured(sunset), material.NewDiffuse()),
		NewObject(geometry.NewTriangle(core.NewVec3(-1.5, 0, 2.5), core.NewVec3(-0.5, 0, 2.5), core.NewVec3(-1, 1.2, 2)),
			material.Solid(0.3, 0.7, 0.3), material.NewDiffuse()),
	)
	return w
}
