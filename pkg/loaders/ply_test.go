package loaders

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/df07/go-kdtracer/pkg/core"
)

// plyWriter builds a PLY file: a text header followed by packed values
type plyWriter struct {
	buf   bytes.Buffer
	order binary.ByteOrder
}

func (w *plyWriter) header(lines ...string) {
	for _, line := range lines {
		w.buf.WriteString(line + "\n")
	}
}

func (w *plyWriter) write(values ...interface{}) {
	for _, v := range values {
		binary.Write(&w.buf, w.order, v)
	}
}

// createSquarePLY writes the unit square in z = 0 as two triangles with
// +z normals and per-vertex colors
func createSquarePLY() []byte {
	w := &plyWriter{order: binary.LittleEndian}
	w.header(
		"ply",
		"format binary_little_endian 1.0",
		"comment unit square",
		"element vertex 4",
		"property float x",
		"property float y",
		"property float z",
		"property float nx",
		"property float ny",
		"property float nz",
		"property uchar red",
		"property uchar green",
		"property uchar blue",
		"element face 2",
		"property list uchar int vertex_indices",
		"end_header",
	)

	vertices := []struct {
		x, y, z    float32
		nx, ny, nz float32
		r, g, b    uint8
	}{
		{0, 0, 0, 0, 0, 1, 255, 0, 0},
		{1, 0, 0, 0, 0, 1, 0, 255, 0},
		{1, 1, 0, 0, 0, 1, 0, 0, 255},
		{0, 1, 0, 0, 0, 1, 255, 255, 0},
	}
	for _, v := range vertices {
		w.write(v.x, v.y, v.z, v.nx, v.ny, v.nz, v.r, v.g, v.b)
	}
	w.write(uint8(3), [3]int32{0, 1, 2})
	w.write(uint8(3), [3]int32{0, 2, 3})
	return w.buf.Bytes()
}

const quadPLY = `ply
format ascii 1.0
comment unit quad with texture coordinates and an extra element
element vertex 4
property float x
property float y
property float z
property float s
property float t
element face 1
property list uchar int vertex_indices
element edge 1
property int vertex1
property int vertex2
end_header
0 0 0 0 0
1 0 0 1 0
1 1 0 1 1

0 1 0 0 1
4 0 1 2 3
0 2
`

func TestParsePLY_BinaryLittleEndian(t *testing.T) {
	mesh, stats, err := ParsePLY(bytes.NewReader(createSquarePLY()), Identity())
	if err != nil {
		t.Fatalf("ParsePLY failed: %v", err)
	}

	expected := PLYStats{Format: "binary_little_endian", Positions: 4, Faces: 2, Triangles: 2, Vertices: 4, Normals: true}
	if stats != expected {
		t.Errorf("Expected stats %+v, got %+v", expected, stats)
	}
	if mesh.TriangleCount() != 2 || len(mesh.Vertices) != 4 {
		t.Fatalf("Expected 2 triangles over 4 vertices, got %d over %d", mesh.TriangleCount(), len(mesh.Vertices))
	}
	for i, expected := range []core.Vec3{
		core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), core.NewVec3(1, 1, 0), core.NewVec3(0, 1, 0),
	} {
		if mesh.Vertices[i] != expected {
			t.Errorf("Vertex %d: expected %v, got %v", i, expected, mesh.Vertices[i])
		}
	}

	hit, ok := mesh.Hit(core.NewRay(core.NewVec3(0.25, 0.75, 1), core.NewVec3(0, 0, -1)), core.DefaultEpsilon, math.Inf(1))
	if !ok {
		t.Fatal("Expected hit")
	}
	if math.Abs(hit.T-1) > 1e-9 {
		t.Errorf("Expected t=1, got %f", hit.T)
	}
	if hit.Normal != core.NewVec3(0, 0, 1) {
		t.Errorf("Expected normal (0, 0, 1), got %v", hit.Normal)
	}
}

func TestParsePLY_ASCIIQuadAndTransform(t *testing.T) {
	transform := Transform{Scale: 2, Offset: core.NewVec3(0, 0, -1)}
	mesh, stats, err := ParsePLY(strings.NewReader(quadPLY), transform)
	if err != nil {
		t.Fatalf("ParsePLY failed: %v", err)
	}

	expected := PLYStats{Format: "ascii", Positions: 4, Faces: 1, Triangles: 2, Vertices: 4, UVs: true}
	if stats != expected {
		t.Errorf("Expected stats %+v, got %+v", expected, stats)
	}
	if mesh.Vertices[2] != core.NewVec3(2, 2, -1) {
		t.Errorf("Expected scaled and offset vertex, got %v", mesh.Vertices[2])
	}

	hit, ok := mesh.Hit(core.NewRay(core.NewVec3(0.5, 1.5, 0), core.NewVec3(0, 0, -1)), core.DefaultEpsilon, math.Inf(1))
	if !ok {
		t.Fatal("Expected hit")
	}
	if math.Abs(hit.T-1) > 1e-9 {
		t.Errorf("Expected t=1, got %f", hit.T)
	}
	// t is flipped like OBJ texture v
	if math.Abs(hit.UV.X-0.25) > 1e-9 || math.Abs(hit.UV.Y-0.25) > 1e-9 {
		t.Errorf("Expected uv (0.25, 0.25), got %v", hit.UV)
	}
}

func TestParsePLY_BinaryBigEndian(t *testing.T) {
	w := &plyWriter{order: binary.BigEndian}
	w.header(
		"ply",
		"format binary_big_endian 1.0",
		"element vertex 3",
		"property double x",
		"property double y",
		"property double z",
		"element face 1",
		"property uchar flags",
		"property list uchar uint vertex_indices",
		"end_header",
	)
	w.write(0.0, 0.0, 0.0, 1.0, 0.0, 0.0, 0.0, 1.0, 0.0)
	w.write(uint8(7), uint8(3), [3]uint32{0, 1, 2})

	mesh, stats, err := ParsePLY(bytes.NewReader(w.buf.Bytes()), Identity())
	if err != nil {
		t.Fatalf("ParsePLY failed: %v", err)
	}
	if stats.Format != "binary_big_endian" || stats.Triangles != 1 || stats.Vertices != 3 {
		t.Errorf("Unexpected stats %+v", stats)
	}
	if _, ok := mesh.Hit(core.NewRay(core.NewVec3(0.25, 0.25, 1), core.NewVec3(0, 0, -1)), core.DefaultEpsilon, math.Inf(1)); !ok {
		t.Error("Expected hit")
	}
}

func TestParsePLY_Errors(t *testing.T) {
	const vertexHeader = "ply\nformat ascii 1.0\nelement vertex 3\nproperty float x\nproperty float y\nproperty float z\n"

	truncated := createSquarePLY()
	truncated = truncated[:len(truncated)-20]

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"not ply", "PLY\nformat ascii 1.0\nend_header\n", "not a PLY file"},
		{"no end_header", "ply\nformat ascii 1.0\nelement vertex 0\n", "missing end_header"},
		{"no format", "ply\nelement vertex 0\nend_header\n", "missing format"},
		{"unknown format", "ply\nformat binary_middle_endian 1.0\nend_header\n", "unsupported PLY format"},
		{"unknown type", "ply\nformat ascii 1.0\nelement vertex 1\nproperty quad x\nend_header\n", "unsupported data type"},
		{"orphan property", "ply\nformat ascii 1.0\nproperty float x\nend_header\n", "property before any element"},
		{"no z", "ply\nformat ascii 1.0\nelement vertex 1\nproperty float x\nproperty float y\nend_header\n0 0\n", "needs x, y and z"},
		{"bad value", vertexHeader + "end_header\n0 0 zero\n", "invalid float value"},
		{"short line", vertexHeader + "end_header\n0 0\n", "line ended early"},
		{"missing vertices", vertexHeader + "end_header\n0 0 0\n", "unexpected EOF"},
		{"index out of range", vertexHeader + "element face 1\nproperty list uchar int vertex_indices\nend_header\n0 0 0\n1 0 0\n0 1 0\n3 0 1 3\n", "out of range"},
		{"two corners", vertexHeader + "element face 1\nproperty list uchar int vertex_indices\nend_header\n0 0 0\n1 0 0\n0 1 0\n2 0 1\n", "at least 3 corners"},
		{"no index list", vertexHeader + "element face 1\nproperty int material\nend_header\n0 0 0\n1 0 0\n0 1 0\n5\n", "no vertex_indices"},
		{"truncated binary", string(truncated), "unexpected EOF"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParsePLY(strings.NewReader(tt.input), Identity())
			if err == nil {
				t.Fatal("Expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestLoadPLY(t *testing.T) {
	path := filepath.Join(t.TempDir(), "square.ply")
	if err := os.WriteFile(path, createSquarePLY(), 0644); err != nil {
		t.Fatalf("Failed to write PLY: %v", err)
	}

	mesh, stats, err := LoadPLY(path, Identity())
	if err != nil {
		t.Fatalf("LoadPLY failed: %v", err)
	}
	if mesh.Tree() == nil || stats.Triangles != 2 {
		t.Errorf("Expected a built mesh with 2 triangles, got %+v", stats)
	}

	if _, _, err := LoadPLY(filepath.Join(t.TempDir(), "missing.ply"), Identity()); err == nil {
		t.Error("Expected error for missing file")
	}
}
