package renderer

import (
	"github.com/df07/go-kdtracer/pkg/core"
)

// fieldOfView is half the width of the image plane at unit distance for a square image
const fieldOfView = 0.5135

// Camera generates primary rays for a pinhole eye. The image plane is
// spanned by cx (horizontal, along world x) and cy (vertical, perpendicular
// to both cx and the view direction). Pixel rows are counted from the bottom.
type Camera struct {
	origin    core.Vec3
	direction core.Vec3
	cx, cy    core.Vec3
	width     int
	height    int
	nearPlane float64
}

// NewCamera creates a camera for an eye ray with a unit direction. Primary
// rays start nearPlane units along their direction from the eye.
func NewCamera(eye core.Ray, width, height int, nearPlane float64) *Camera {
	cx := core.NewVec3(float64(width)*fieldOfView/float64(height), 0, 0)
	cy := cx.Cross(eye.Direction).Normalize().Multiply(fieldOfView)
	return &Camera{
		origin:    eye.Origin,
		direction: eye.Direction,
		cx:        cx,
		cy:        cy,
		width:     width,
		height:    height,
		nearPlane: nearPlane,
	}
}

// GetRay returns the ray through sub-pixel (sx, sy) of the 2×2 grid of pixel
// (x, y), displaced by the tent filter offsets dx, dy in [-1, 1).
func (c *Camera) GetRay(x, y, sx, sy int, dx, dy float64) core.Ray {
	u := ((float64(sx)+0.5+dx)*0.5+float64(x))/float64(c.width) - 0.5
	v := ((float64(sy)+0.5+dy)*0.5+float64(y))/float64(c.height) - 0.5
	d := c.cx.Multiply(u).Add(c.cy.Multiply(v)).Add(c.direction)
	return core.NewRay(c.origin.Add(d.Multiply(c.nearPlane)), d)
}
