package material

import (
	"github.com/df07/go-kdtracer/pkg/core"
)

// Reflect mirrors direction d about the unit normal n: d - 2(d·n)n.
// The result has the same length as d, so unit inputs give a unit result.
func Reflect(d, n core.Vec3) core.Vec3 {
	return d.Subtract(n.Multiply(2 * d.Dot(n)))
}

func scatterSpecular(rayIn core.Ray, point, normal core.Vec3) ScatterResult {
	return single(core.Ray{Origin: point, Direction: Reflect(rayIn.Direction, normal)})
}
