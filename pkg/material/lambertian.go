package material

import (
	"github.com/df07/go-kdtracer/pkg/core"
)

// scatterDiffuse picks a cosine-weighted direction in the hemisphere on the
// side of the surface the ray arrived from.
func scatterDiffuse(rayIn core.Ray, point, normal core.Vec3, sampler core.Sampler) ScatterResult {
	w := normal
	if normal.Dot(rayIn.Direction) >= 0 {
		w = normal.Negate()
	}
	direction := core.SampleCosineHemisphere(w, sampler.Get2D())
	return single(core.NewRay(point, direction))
}
