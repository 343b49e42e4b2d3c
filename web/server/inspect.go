package server

import (
	"net/http"
	"strconv"

	"github.com/df07/go-kdtracer/pkg/core"
	"github.com/df07/go-kdtracer/pkg/material"
	"github.com/df07/go-kdtracer/pkg/renderer"
	"github.com/df07/go-kdtracer/pkg/scene"
)

// InspectResponse describes the surface seen through the center of a pixel
type InspectResponse struct {
	Hit          bool                   `json:"hit"`
	ObjectIndex  int                    `json:"objectIndex"` // -1 for the light
	MaterialType string                 `json:"materialType,omitempty"`
	GeometryType string                 `json:"geometryType,omitempty"`
	Point        [3]float64             `json:"point"`
	Normal       [3]float64             `json:"normal"`
	UV           [2]float64             `json:"uv"`
	Color        [3]float64             `json:"color"` // Surface color, or emission for the light
	Distance     float64                `json:"distance"`
	FrontFace    bool                   `json:"frontFace"`
	Properties   map[string]interface{} `json:"properties,omitempty"`
}

// handleInspect casts the camera ray through a pixel and reports what it hits.
// Pixel coordinates count from the top-left corner of the image.
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	req, err := parseRenderRequest(r.URL.Query())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid scene parameters: " + err.Error()})
		return
	}

	pixelX, err := strconv.Atoi(r.URL.Query().Get("x"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid x coordinate"})
		return
	}
	pixelY, err := strconv.Atoi(r.URL.Query().Get("y"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid y coordinate"})
		return
	}

	world, err := s.loadWorld(req)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if pixelX < 0 || pixelX >= world.Width || pixelY < 0 || pixelY >= world.Height {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Pixel coordinates out of bounds"})
		return
	}

	writeJSON(w, http.StatusOK, inspectPixel(world, pixelX, pixelY))
}

// inspectPixel traces the ray through the center of pixel (x, y)
func inspectPixel(world *scene.World, x, y int) InspectResponse {
	camera := renderer.NewCamera(world.Camera, world.Width, world.Height, world.NearPlane)
	ray := camera.GetRay(x, world.Height-1-y, 0, 0, 0.5, 0.5)

	hit, ok := world.Hit(ray)
	if !ok {
		return InspectResponse{Hit: false, ObjectIndex: -1}
	}

	response := InspectResponse{
		Hit:       true,
		Point:     vec3Array(hit.Point),
		Normal:    vec3Array(hit.Normal),
		UV:        [2]float64{hit.UV.X, hit.UV.Y},
		Distance:  hit.T * ray.Direction.Length(),
		FrontFace: ray.Direction.Dot(hit.Normal) < 0,
	}

	if hit.IsLight() {
		response.ObjectIndex = -1
		response.MaterialType = "light"
		response.GeometryType = "disc"
		response.Color = vec3Array(world.Light.Emission)
		response.Properties = map[string]interface{}{
			"center": vec3Array(world.Light.Disc.Center),
			"radius": world.Light.Disc.Radius,
		}
		return response
	}

	for i := range world.Objects {
		if &world.Objects[i] == hit.Object {
			response.ObjectIndex = i
			break
		}
	}
	response.Color = vec3Array(hit.Object.Color.Evaluate(hit.UV))

	materialProps := make(map[string]interface{})
	mat := hit.Object.Material
	response.MaterialType = mat.Kind.String()
	if mat.Kind == material.Mixed {
		materialProps["diffuseProb"] = mat.DiffuseProb
		materialProps["specularProb"] = mat.SpecularProb
	}
	if img := hit.Object.Color.Image; img != nil {
		materialProps["texture"] = [2]int{img.Width, img.Height}
	}

	geometryType, geometryProps := extractGeometryInfo(hit.Object.Geometry)
	response.GeometryType = geometryType
	response.Properties = map[string]interface{}{
		"material": materialProps,
		"geometry": geometryProps,
	}
	return response
}

// extractGeometryInfo describes the active shape of a geometry union
func extractGeometryInfo(g scene.Geometry) (string, map[string]interface{}) {
	properties := make(map[string]interface{})

	switch {
	case g.Sphere != nil:
		properties["center"] = vec3Array(g.Sphere.Center)
		properties["radius"] = g.Sphere.Radius
		return "sphere", properties

	case g.Plane != nil:
		properties["point"] = vec3Array(g.Plane.Point)
		properties["normal"] = vec3Array(g.Plane.Normal)
		return "plane", properties

	case g.Disc != nil:
		properties["center"] = vec3Array(g.Disc.Center)
		properties["normal"] = vec3Array(g.Disc.Normal)
		properties["radius"] = g.Disc.Radius
		return "disc", properties

	case g.Rectangle != nil:
		properties["corner"] = vec3Array(g.Rectangle.Corner)
		properties["u"] = vec3Array(g.Rectangle.U)
		properties["v"] = vec3Array(g.Rectangle.V)
		properties["normal"] = vec3Array(g.Rectangle.Normal)
		return "rectangle", properties

	case g.Triangle != nil:
		properties["vertices"] = [3][3]float64{
			vec3Array(g.Triangle.V0), vec3Array(g.Triangle.V1), vec3Array(g.Triangle.V2),
		}
		properties["normal"] = vec3Array(g.Triangle.Normal)
		return "triangle", properties

	case g.Mesh != nil:
		properties["triangleCount"] = g.Mesh.TriangleCount()
		properties["vertexCount"] = len(g.Mesh.Vertices)
		if tree := g.Mesh.Tree(); tree != nil {
			stats := tree.Stats()
			properties["kdtree"] = map[string]interface{}{
				"nodes":       stats.Nodes,
				"leaves":      stats.Leaves,
				"maxDepth":    stats.MaxDepth,
				"duplication": stats.DuplicationFactor(),
			}
		}
		return "mesh", properties

	default:
		return "unknown", properties
	}
}

func vec3Array(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}
