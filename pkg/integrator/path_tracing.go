package integrator

import (
	"github.com/df07/go-kdtracer/pkg/core"
	"github.com/df07/go-kdtracer/pkg/scene"
)

// PathTracingConfig bounds the recursion of the path tracer
type PathTracingConfig struct {
	MaxDepth   int // Paths reaching this depth return the environment radiance
	SplitDepth int // Refractive hits shallower than this trace both Fresnel lobes
}

// DefaultPathTracingConfig returns five bounces with lobe splitting on the first two
func DefaultPathTracingConfig() PathTracingConfig {
	return PathTracingConfig{MaxDepth: 5, SplitDepth: 2}
}

// PathTracingIntegrator implements recursive unidirectional path tracing. The
// area light is only found by rays that happen to hit it; there is no
// explicit light sampling.
type PathTracingIntegrator struct {
	config PathTracingConfig
}

// NewPathTracingIntegrator creates a new path tracing integrator
func NewPathTracingIntegrator(config PathTracingConfig) *PathTracingIntegrator {
	return &PathTracingIntegrator{config: config}
}

// RayColor computes the color for a single camera ray
func (pt *PathTracingIntegrator) RayColor(ray core.Ray, world *scene.World, sampler core.Sampler) core.Vec3 {
	return pt.trace(ray, world, sampler, 0)
}

func (pt *PathTracingIntegrator) trace(ray core.Ray, world *scene.World, sampler core.Sampler, depth int) core.Vec3 {
	if depth >= pt.config.MaxDepth {
		return world.Environment
	}

	hit, ok := world.Hit(ray)
	if !ok {
		return world.Environment
	}
	if hit.IsLight() {
		return world.Light.Emission
	}

	obj := hit.Object
	color := obj.Color.Evaluate(hit.UV)
	scatter := obj.Material.Scatter(ray, hit.Point, hit.Normal, sampler, depth < pt.config.SplitDepth)

	var tinted, untinted core.Vec3
	for _, lobe := range scatter.Lobes[:scatter.Count] {
		radiance := pt.trace(lobe.Ray, world, sampler, depth+1).Multiply(lobe.Weight)
		if lobe.Untinted {
			untinted = untinted.Add(radiance)
		} else {
			tinted = tinted.Add(radiance)
		}
	}
	return color.MultiplyVec(tinted).Add(untinted)
}
