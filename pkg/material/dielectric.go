package material

import (
	"math"

	"github.com/df07/go-kdtracer/pkg/core"
)

// Refractive indices of the two media at every glass boundary
const (
	AirIndex   = 1.0
	GlassIndex = 1.5
)

// Reflectance calculates the Fresnel reflectance at an air/glass boundary
// using Schlick's approximation. cosine is the cosine of the angle between
// the ray and the normal on the air side.
func Reflectance(cosine float64) float64 {
	r0 := (AirIndex - GlassIndex) / (AirIndex + GlassIndex)
	r0 = r0 * r0
	return r0 + (1-r0)*math.Pow(1-cosine, 5)
}

// Refract splits a ray hitting a glass surface at point into a reflected and
// a refracted lobe weighted by Fresnel reflectance. The side of the surface
// is read from the sign of the ray direction against normal: a ray against
// the normal enters the glass. ok is false under total internal reflection,
// in which case only reflect is meaningful: it carries weight 1 and is
// untinted.
func Refract(point, normal core.Vec3, ray core.Ray) (reflect, refract Lobe, ok bool) {
	d := ray.Direction
	reflect = Lobe{Ray: core.Ray{Origin: point, Direction: Reflect(d, normal)}, Weight: 1}

	cosTheta := normal.Dot(d)
	sinTheta := math.Sqrt(math.Max(0, 1-cosTheta*cosTheta))

	// normD points to the side the ray travels into
	normD := normal
	var n float64
	if cosTheta < 0 {
		n = GlassIndex / AirIndex
		cosTheta = -cosTheta
		normD = normal.Negate()
	} else {
		n = AirIndex / GlassIndex
		if sinTheta >= n {
			reflect.Untinted = true
			return reflect, Lobe{}, false
		}
	}

	// Solve |a·normD + d/n| = 1 for the transmitted direction
	a := math.Sqrt(1-sinTheta*sinTheta/(n*n)) - cosTheta/n
	direction := normD.Multiply(a).Add(d.Multiply(1 / n))

	r := Reflectance(cosTheta)
	reflect.Weight = r
	refract = Lobe{Ray: core.Ray{Origin: point, Direction: direction}, Weight: 1 - r}
	return reflect, refract, true
}

func scatterRefractive(rayIn core.Ray, point, normal core.Vec3, sampler core.Sampler, split bool) ScatterResult {
	reflect, refract, ok := Refract(point, normal, rayIn)
	if !ok {
		return ScatterResult{Lobes: [2]Lobe{reflect}, Count: 1}
	}
	if split {
		return ScatterResult{Lobes: [2]Lobe{reflect, refract}, Count: 2}
	}
	if sampler.Get1D() < reflect.Weight {
		return single(reflect.Ray)
	}
	return single(refract.Ray)
}
