package geometry

import "github.com/df07/go-kdtracer/pkg/core"

// MeshVertex is one corner of a triangle as produced by a loader or tessellator
type MeshVertex struct {
	Position core.Vec3
	UV       core.Vec2
	Normal   core.Vec3
}

// MeshBuilder collects triangles and shares identical vertices between them
type MeshBuilder struct {
	vertices []core.Vec3
	uvs      []core.Vec2
	normals  []core.Vec3
	faces    []Face
	index    map[MeshVertex]uint32
}

// NewMeshBuilder creates an empty builder
func NewMeshBuilder() *MeshBuilder {
	return &MeshBuilder{index: make(map[MeshVertex]uint32)}
}

// AddVertex returns the index of v, appending it if it has not been seen
func (b *MeshBuilder) AddVertex(v MeshVertex) uint32 {
	if i, ok := b.index[v]; ok {
		return i
	}
	i := uint32(len(b.vertices))
	b.vertices = append(b.vertices, v.Position)
	b.uvs = append(b.uvs, v.UV)
	b.normals = append(b.normals, v.Normal)
	b.index[v] = i
	return i
}

// AddTriangle adds a triangle. Triangles with two corners at the same
// position are skipped; it reports whether the triangle was kept.
func (b *MeshBuilder) AddTriangle(v0, v1, v2 MeshVertex) bool {
	if v0.Position == v1.Position || v1.Position == v2.Position || v0.Position == v2.Position {
		return false
	}
	i0, i1, i2 := b.AddVertex(v0), b.AddVertex(v1), b.AddVertex(v2)
	b.faces = append(b.faces, Face{i0, i1, i2})
	return true
}

// VertexCount returns the number of distinct vertices added so far
func (b *MeshBuilder) VertexCount() int {
	return len(b.vertices)
}

// Build creates the mesh and its KD-tree. If no vertex was given a normal
// the mesh is flat shaded with face normals.
func (b *MeshBuilder) Build() *Mesh {
	normals := b.normals
	if !hasNormal(normals) {
		normals = nil
	}
	return NewMesh(b.vertices, b.uvs, normals, b.faces)
}

func hasNormal(normals []core.Vec3) bool {
	for _, n := range normals {
		if n != (core.Vec3{}) {
			return true
		}
	}
	return false
}
