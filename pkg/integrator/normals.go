package integrator

import (
	"github.com/df07/go-kdtracer/pkg/core"
	"github.com/df07/go-kdtracer/pkg/scene"
)

// NormalsIntegrator shows the surface normal at the first hit as a color.
// Useful for checking mesh normals and the KD-tree without noise.
type NormalsIntegrator struct{}

// NewNormalsIntegrator creates a normals debug integrator
func NewNormalsIntegrator() *NormalsIntegrator {
	return &NormalsIntegrator{}
}

// RayColor maps the normal from [-1, 1] to [0, 1] per channel. Misses return
// the environment and the light its emission.
func (n *NormalsIntegrator) RayColor(ray core.Ray, world *scene.World, sampler core.Sampler) core.Vec3 {
	hit, ok := world.Hit(ray)
	if !ok {
		return world.Environment
	}
	if hit.IsLight() {
		return world.Light.Emission
	}
	return hit.Normal.Add(core.NewVec3(1, 1, 1)).Multiply(0.5)
}
