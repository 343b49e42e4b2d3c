package scene

import (
	"math"

	"github.com/df07/go-kdtracer/pkg/core"
	"github.com/df07/go-kdtracer/pkg/geometry"
	"github.com/df07/go-kdtracer/pkg/material"
)

// oklchToRGB converts an OKLCH color to clamped linear RGB.
// l: lightness (0-1), c: chroma (0-0.4+), h: hue (0-360 degrees)
func oklchToRGB(l, c, h float64) core.Vec3 {
	hRad := h * math.Pi / 180.0

	a := c * math.Cos(hRad)
	b := c * math.Sin(hRad)

	// OKLAB to LMS
	l_ := l + 0.3963377774*a + 0.2158037573*b
	m_ := l - 0.1055613458*a - 0.0638541728*b
	s_ := l - 0.0894841775*a - 1.2914855480*b

	l_ = l_ * l_ * l_
	m_ = m_ * m_ * m_
	s_ = s_ * s_ * s_

	r := +4.0767416621*l_ - 3.3077115913*m_ + 0.2309699292*s_
	g := -1.2684380046*l_ + 2.6097574011*m_ - 0.3413193965*s_
	blue := -0.0041960863*l_ - 0.7034186147*m_ + 1.7076147010*s_

	r = math.Max(0, math.Min(1, r))
	g = math.Max(0, math.Min(1, g))
	blue = math.Max(0, math.Min(1, blue))

	return core.NewVec3(r, g, blue)
}

// NewSphereGridScene creates a grid of colored spheres on a floor under a
// bright disc. Hue varies along x and chroma along z. Most spheres mix
// diffuse and mirror scattering; every fifth one is glass.
func NewSphereGridScene() *World {
	lookFrom := core.NewVec3(4.5, 6, 18)
	lookAt := core.NewVec3(4.5, 0.8, 4.5)

	w := &World{
		Light: LightSource{
			Disc:     geometry.NewDisc(core.NewVec3(4.5, 12, 6), core.NewVec3(0, -1, 0), 4),
			Emission: core.NewVec3(6, 5.75, 5),
		},
		Environment: core.NewVec3(0.25, 0.35, 0.5),
		Camera:      core.NewRay(lookFrom, lookAt.Subtract(lookFrom).Normalize()),
		Width:       400,
		Height:      225,
		Epsilon:     core.DefaultEpsilon,
	}

	w.Objects = append(w.Objects, NewObject(
		geometry.NewPlane(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0)),
		material.Solid(0.5, 0.5, 0.5), material.NewDiffuse(),
	))

	const (
		gridSize      = 8
		targetArea    = 9.0
		baseLightness = 0.65
		minChroma     = 0.05
		maxChroma     = 0.25
	)
	spacing := targetArea / float64(gridSize-1)
	radius := math.Min(0.35, spacing*0.35)

	for i := 0; i < gridSize; i++ {
		for j := 0; j < gridSize; j++ {
			x := float64(i)*spacing - targetArea/2.0 + 4.5
			z := float64(j)*spacing - targetArea/2.0 + 4.5

			hue := float64(i) / float64(gridSize-1) * 360.0
			chroma := minChroma + float64(j)/float64(gridSize-1)*(maxChroma-minChroma)
			lightness := baseLightness + 0.1*math.Sin(float64(i+j)*0.5)
			c := oklchToRGB(lightness, chroma, hue)

			mat := material.NewMixed(0.7-0.2*float64((i+j)%3), 0.3)
			if (i*gridSize+j)%5 == 0 {
				mat = material.NewRefractive()
			}
			w.Objects = append(w.Objects, NewObject(
				geometry.NewSphere(core.NewVec3(x, radius, z), radius),
				material.Solid(c.X, c.Y, c.Z), mat,
			))
		}
	}

	// Mirror ball floating over the middle of the grid
	w.Objects = append(w.Objects, NewObject(
		Revolve(ballProfile(0.8), 24, 48, core.NewVec3(4.5, 2.2, 4.5)),
		material.Solid(0.95, 0.95, 0.95), material.NewSpecular(),
	))
	return w
}
