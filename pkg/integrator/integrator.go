package integrator

import (
	"fmt"

	"github.com/df07/go-kdtracer/pkg/core"
	"github.com/df07/go-kdtracer/pkg/scene"
)

// Integrator defines the interface for light transport algorithms
type Integrator interface {
	// RayColor computes the radiance arriving along ray. The result is not
	// clamped; the renderer clamps once per pixel.
	RayColor(ray core.Ray, world *scene.World, sampler core.Sampler) core.Vec3
}

// New returns the integrator registered under name
func New(name string) (Integrator, error) {
	switch name {
	case "path-tracing", "":
		return NewPathTracingIntegrator(DefaultPathTracingConfig()), nil
	case "normals":
		return NewNormalsIntegrator(), nil
	default:
		return nil, fmt.Errorf("unknown integrator %q (want path-tracing or normals)", name)
	}
}
