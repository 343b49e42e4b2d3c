package material

import (
	"github.com/df07/go-kdtracer/pkg/core"
)

// Choose draws the kind a Mixed material behaves as for one scattering event.
// Non-mixed materials return their own kind without consuming a sample.
func (m Material) Choose(sampler core.Sampler) Kind {
	if m.Kind != Mixed {
		return m.Kind
	}
	u := sampler.Get1D()
	switch {
	case u < m.DiffuseProb:
		return Diffuse
	case u < m.DiffuseProb+m.SpecularProb:
		return Specular
	default:
		return Refractive
	}
}
