package material

import (
	"fmt"

	"github.com/df07/go-kdtracer/pkg/core"
)

// Kind selects how a surface scatters light
type Kind int

const (
	Diffuse    Kind = iota // Cosine-weighted hemisphere scattering
	Specular               // Perfect mirror
	Refractive             // Glass: Fresnel-weighted reflection and refraction
	Mixed                  // Stochastic choice between the other three
)

var kindNames = [...]string{"diffuse", "specular", "refractive", "mixed"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// MarshalText encodes the kind by name
func (k Kind) MarshalText() ([]byte, error) {
	if k < 0 || int(k) >= len(kindNames) {
		return nil, fmt.Errorf("unknown material kind %d", int(k))
	}
	return []byte(kindNames[k]), nil
}

// UnmarshalText decodes a kind name
func (k *Kind) UnmarshalText(text []byte) error {
	for i, name := range kindNames {
		if name == string(text) {
			*k = Kind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown material kind %q", text)
}

// Material describes a surface's scattering behaviour. The probabilities are
// only used by Mixed; the remainder 1 - DiffuseProb - SpecularProb goes to
// refraction.
type Material struct {
	Kind         Kind    `json:"kind"`
	DiffuseProb  float64 `json:"diffuseProb,omitempty"`
	SpecularProb float64 `json:"specularProb,omitempty"`
}

// NewDiffuse creates a diffuse material
func NewDiffuse() Material { return Material{Kind: Diffuse} }

// NewSpecular creates a mirror material
func NewSpecular() Material { return Material{Kind: Specular} }

// NewRefractive creates a glass material
func NewRefractive() Material { return Material{Kind: Refractive} }

// NewMixed creates a material that scatters diffusely with probability
// diffuseProb, specularly with probability specularProb and refracts otherwise.
func NewMixed(diffuseProb, specularProb float64) Material {
	return Material{Kind: Mixed, DiffuseProb: diffuseProb, SpecularProb: specularProb}
}

// Lobe is one outgoing ray and the fraction of its radiance that reaches the
// viewer. Untinted lobes bypass the surface color.
type Lobe struct {
	Ray      core.Ray
	Weight   float64
	Untinted bool
}

// ScatterResult holds up to two lobes. Refractive surfaces split into a
// reflected and a refracted lobe when asked to; everything else yields one.
type ScatterResult struct {
	Lobes [2]Lobe
	Count int
}

func single(ray core.Ray) ScatterResult {
	return ScatterResult{Lobes: [2]Lobe{{Ray: ray, Weight: 1}}, Count: 1}
}

// Scatter produces the outgoing lobes at a surface point. normal is the
// geometric normal as reported by the shape. When split is set, refractive
// surfaces return both Fresnel-weighted lobes; otherwise one of them is chosen
// at random in proportion to its weight.
func (m Material) Scatter(rayIn core.Ray, point, normal core.Vec3, sampler core.Sampler, split bool) ScatterResult {
	kind := m.Kind
	if kind == Mixed {
		kind = m.Choose(sampler)
	}

	switch kind {
	case Diffuse:
		return scatterDiffuse(rayIn, point, normal, sampler)
	case Specular:
		return scatterSpecular(rayIn, point, normal)
	default:
		return scatterRefractive(rayIn, point, normal, sampler, split)
	}
}
