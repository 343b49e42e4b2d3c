package geometry

import (
	"fmt"
	"math"

	"github.com/df07/go-kdtracer/pkg/core"
)

// Face is a triangle given as three indices into a mesh's vertex arrays
type Face [3]uint32

// Mesh is an indexed triangle mesh with per-vertex normals and uvs.
// The KD-tree is built eagerly and is read-only afterwards, so a Mesh may be
// shared between rendering goroutines. The tree is never serialized; call
// BuildTree after decoding a mesh.
type Mesh struct {
	Vertices []core.Vec3 `json:"vertices"`
	UVs      []core.Vec2 `json:"uvs,omitempty"`     // Optional, zero uv when absent
	Normals  []core.Vec3 `json:"normals,omitempty"` // Optional, face normal when absent
	Faces    []Face      `json:"faces"`

	tree *KDTree
}

// NewMesh creates a mesh from deduplicated vertex arrays and builds its KD-tree.
// It panics on malformed input.
func NewMesh(vertices []core.Vec3, uvs []core.Vec2, normals []core.Vec3, faces []Face) *Mesh {
	m := &Mesh{
		Vertices: vertices,
		UVs:      uvs,
		Normals:  normals,
		Faces:    faces,
	}
	if err := m.Validate(); err != nil {
		panic(err.Error())
	}
	m.BuildTree(DefaultKDTreeOptions())
	return m
}

// Validate checks array lengths and face indices
func (m *Mesh) Validate() error {
	if m.UVs != nil && len(m.UVs) != len(m.Vertices) {
		return fmt.Errorf("mesh has %d uvs for %d vertices", len(m.UVs), len(m.Vertices))
	}
	if m.Normals != nil && len(m.Normals) != len(m.Vertices) {
		return fmt.Errorf("mesh has %d normals for %d vertices", len(m.Normals), len(m.Vertices))
	}
	for i, face := range m.Faces {
		for _, index := range face {
			if int(index) >= len(m.Vertices) {
				return fmt.Errorf("face %d index %d out of bounds (%d vertices)", i, index, len(m.Vertices))
			}
		}
	}
	return nil
}

// BuildTree (re)builds the mesh's KD-tree
func (m *Mesh) BuildTree(opts KDTreeOptions) {
	m.tree = NewKDTree(m, opts)
}

// Tree returns the mesh's KD-tree
func (m *Mesh) Tree() *KDTree {
	return m.tree
}

// TriangleCount returns the number of triangles in this mesh
func (m *Mesh) TriangleCount() int {
	return len(m.Faces)
}

// Hit tests the mesh using stack-based KD-tree traversal
func (m *Mesh) Hit(ray core.Ray, eps, tMax float64) (HitRecord, bool) {
	return m.record(m.tree.hitStack(m, ray, eps), tMax)
}

// HitRecursive tests the mesh using recursive KD-tree traversal.
// It returns the same nearest hit as Hit.
func (m *Mesh) HitRecursive(ray core.Ray, eps, tMax float64) (HitRecord, bool) {
	return m.record(m.tree.hitRecursive(m, ray, eps), tMax)
}

// HitLinear tests every triangle without the KD-tree
func (m *Mesh) HitLinear(ray core.Ray, eps, tMax float64) (HitRecord, bool) {
	best := newTriangleHit()
	for face := range m.Faces {
		m.hitFace(int32(face), ray, eps, &best)
	}
	return m.record(best, tMax)
}

// triangleHit is the nearest hit found so far during a mesh query
type triangleHit struct {
	t, u, v float64
	face    int32
}

func newTriangleHit() triangleHit {
	return triangleHit{t: math.Inf(1), face: -1}
}

// hitFace tests one triangle and updates best if it is nearer
func (m *Mesh) hitFace(face int32, ray core.Ray, eps float64, best *triangleHit) bool {
	f := m.Faces[face]
	t, u, v, ok := intersectTriangle(ray, m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]], eps)
	if !ok || t >= best.t {
		return false
	}
	*best = triangleHit{t: t, u: u, v: v, face: face}
	return true
}

// record interpolates the vertex attributes of the hit triangle
func (m *Mesh) record(hit triangleHit, tMax float64) (HitRecord, bool) {
	if hit.face < 0 || hit.t >= tMax {
		return HitRecord{}, false
	}

	f := m.Faces[hit.face]
	w0, w1, w2 := 1-hit.u-hit.v, hit.u, hit.v

	var normal core.Vec3
	if m.Normals != nil {
		normal = m.Normals[f[0]].Multiply(w0).
			Add(m.Normals[f[1]].Multiply(w1)).
			Add(m.Normals[f[2]].Multiply(w2)).
			Normalize()
	} else {
		p1 := m.Vertices[f[0]]
		normal = m.Vertices[f[1]].Subtract(p1).Cross(m.Vertices[f[2]].Subtract(p1)).Normalize()
	}

	var uv core.Vec2
	if m.UVs != nil {
		uv = m.UVs[f[0]].Multiply(w0).
			Add(m.UVs[f[1]].Multiply(w1)).
			Add(m.UVs[f[2]].Multiply(w2))
	}

	return HitRecord{T: hit.t, Normal: normal, UV: uv}, true
}
