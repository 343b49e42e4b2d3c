package loaders

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/df07/go-kdtracer/pkg/core"
	"github.com/df07/go-kdtracer/pkg/geometry"
)

// Transform places a loaded mesh in the world: positions are scaled about
// the origin and then moved by Offset.
type Transform struct {
	Scale  float64
	Offset core.Vec3
}

// Identity leaves positions unchanged
func Identity() Transform {
	return Transform{Scale: 1}
}

func (t Transform) apply(p core.Vec3) core.Vec3 {
	return p.Multiply(t.Scale).Add(t.Offset)
}

// OBJStats describes what a loaded OBJ file contained
type OBJStats struct {
	Positions int // v statements
	UVs       int // vt statements
	Normals   int // vn statements
	Faces     int // f statements (polygons before triangulation)
	Triangles int // Triangles kept after triangulation
	Vertices  int // Distinct (position, uv, normal) vertices in the mesh
}

// objCorner holds the 0-based indices of one face corner; -1 means absent
type objCorner struct {
	v, vt, vn int
}

// LoadOBJ loads a Wavefront OBJ file as a mesh
func LoadOBJ(filename string, transform Transform) (*geometry.Mesh, OBJStats, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, OBJStats{}, fmt.Errorf("failed to open OBJ file: %w", err)
	}
	defer file.Close()

	mesh, stats, err := ParseOBJ(file, transform)
	if err != nil {
		return nil, stats, fmt.Errorf("failed to parse %s: %w", filename, err)
	}
	return mesh, stats, nil
}

// ParseOBJ reads the geometry statements of an OBJ stream (v, vt, vn and f)
// and ignores the rest. Polygons are triangulated as fans around their first
// corner. Texture v is flipped so that v = 1 is the top row of an image.
// Normals are used only if every face corner references one; otherwise the
// mesh is flat shaded. The same holds for texture coordinates.
func ParseOBJ(r io.Reader, transform Transform) (*geometry.Mesh, OBJStats, error) {
	var (
		stats     OBJStats
		positions []core.Vec3
		uvs       []core.Vec2
		normals   []core.Vec3
		faces     [][]objCorner
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "v":
			values, err := parseFloats(parts[1:], 3)
			if err != nil {
				return nil, stats, fmt.Errorf("line %d: vertex: %w", lineNumber, err)
			}
			positions = append(positions, transform.apply(core.NewVec3(values[0], values[1], values[2])))
		case "vt":
			values, err := parseFloats(parts[1:], 2)
			if err != nil {
				return nil, stats, fmt.Errorf("line %d: texture coordinate: %w", lineNumber, err)
			}
			uvs = append(uvs, core.NewVec2(values[0], 1-values[1]))
		case "vn":
			values, err := parseFloats(parts[1:], 3)
			if err != nil {
				return nil, stats, fmt.Errorf("line %d: normal: %w", lineNumber, err)
			}
			normals = append(normals, core.NewVec3(values[0], values[1], values[2]).Normalize())
		case "f":
			if len(parts) < 4 {
				return nil, stats, fmt.Errorf("line %d: face needs at least 3 corners, got %d", lineNumber, len(parts)-1)
			}
			face := make([]objCorner, len(parts)-1)
			for i, token := range parts[1:] {
				corner, err := parseCorner(token, len(positions), len(uvs), len(normals))
				if err != nil {
					return nil, stats, fmt.Errorf("line %d: %w", lineNumber, err)
				}
				face[i] = corner
			}
			faces = append(faces, face)
		default:
			// o, g, s, usemtl, mtllib and friends carry no geometry
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, stats, fmt.Errorf("failed to read OBJ data: %w", err)
	}

	stats.Positions = len(positions)
	stats.UVs = len(uvs)
	stats.Normals = len(normals)
	stats.Faces = len(faces)

	useUVs, useNormals := true, true
	for _, face := range faces {
		for _, c := range face {
			useUVs = useUVs && c.vt >= 0
			useNormals = useNormals && c.vn >= 0
		}
	}

	vertex := func(c objCorner) geometry.MeshVertex {
		v := geometry.MeshVertex{Position: positions[c.v]}
		if useUVs {
			v.UV = uvs[c.vt]
		}
		if useNormals {
			v.Normal = normals[c.vn]
		}
		return v
	}

	b := geometry.NewMeshBuilder()
	for _, face := range faces {
		first := vertex(face[0])
		for i := 1; i+1 < len(face); i++ {
			if b.AddTriangle(first, vertex(face[i]), vertex(face[i+1])) {
				stats.Triangles++
			}
		}
	}
	mesh := b.Build()
	stats.Vertices = b.VertexCount()
	return mesh, stats, nil
}

// parseFloats parses at least n leading values; extra values (such as the
// optional w of a vertex) are ignored
func parseFloats(fields []string, n int) ([]float64, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("expected %d values, got %d", n, len(fields))
	}
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", fields[i])
		}
		values[i] = v
	}
	return values, nil
}

// parseCorner parses a face corner of the form v, v/vt, v//vn or v/vt/vn
func parseCorner(token string, numPositions, numUVs, numNormals int) (objCorner, error) {
	fields := strings.Split(token, "/")
	if len(fields) > 3 {
		return objCorner{}, fmt.Errorf("invalid face corner %q", token)
	}

	corner := objCorner{v: -1, vt: -1, vn: -1}
	targets := []*int{&corner.v, &corner.vt, &corner.vn}
	counts := []int{numPositions, numUVs, numNormals}
	for i, field := range fields {
		if field == "" {
			if i == 0 {
				return objCorner{}, fmt.Errorf("face corner %q has no vertex index", token)
			}
			continue
		}
		index, err := resolveIndex(field, counts[i])
		if err != nil {
			return objCorner{}, fmt.Errorf("face corner %q: %w", token, err)
		}
		*targets[i] = index
	}
	return corner, nil
}

// resolveIndex converts a 1-based or negative (relative) OBJ index to 0-based
func resolveIndex(field string, count int) (int, error) {
	index, err := strconv.Atoi(field)
	if err != nil {
		return 0, fmt.Errorf("invalid index %q", field)
	}
	switch {
	case index > 0 && index <= count:
		return index - 1, nil
	case index < 0 && -index <= count:
		return count + index, nil
	default:
		return 0, fmt.Errorf("index %d out of range (%d defined)", index, count)
	}
}
