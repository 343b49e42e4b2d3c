package geometry

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/df07/go-kdtracer/pkg/core"
)

// leafAxis marks a KDNode as a leaf
const leafAxis = -1

// Node bounds are padded so that meshes flat along an axis still have a
// non-empty slab interval.
const kdBoundsPadding = 1e-9

// kdStackSize covers the default depth budget without reallocating
const kdStackSize = 64

// KDTreeOptions controls KD-tree construction
type KDTreeOptions struct {
	MaxDepth int // Depth budget; a node at this depth becomes a leaf
	LeafSize int // Slices with fewer triangles become leaves
}

// DefaultKDTreeOptions returns sensible default values
func DefaultKDTreeOptions() KDTreeOptions {
	return KDTreeOptions{
		MaxDepth: 16,
		LeafSize: 16,
	}
}

// KDNode is either an internal node (Axis >= 0) with two children, or a leaf
// (Axis == -1) listing the triangles that overlap it. Triangles straddling a
// split plane are referenced from both sides.
type KDNode struct {
	Bounds    core.AABB
	Axis      int      // Split axis, or -1 for a leaf
	Split     float64  // Split plane coordinate along Axis
	Children  [2]int32 // Arena indices of the left (below split) and right children
	Triangles []int32  // Face indices, leaves only
}

// IsLeaf reports whether the node is a leaf
func (n *KDNode) IsLeaf() bool {
	return n.Axis == leafAxis
}

// KDTree is a spatial index over a mesh's triangles. Nodes live in a single
// arena with the root at index 0.
type KDTree struct {
	Nodes     []KDNode
	triangles int
}

// NewKDTree builds a KD-tree over all faces of the mesh
func NewKDTree(mesh *Mesh, opts KDTreeOptions) *KDTree {
	tree := &KDTree{triangles: len(mesh.Faces)}
	if len(mesh.Faces) == 0 {
		return tree
	}

	tris := make([]int32, len(mesh.Faces))
	for i := range tris {
		tris[i] = int32(i)
	}

	b := &kdBuilder{mesh: mesh, opts: opts}
	b.build(tris, opts.MaxDepth)
	tree.Nodes = b.nodes
	return tree
}

type kdBuilder struct {
	mesh  *Mesh
	opts  KDTreeOptions
	nodes []KDNode
	keys  []float64 // scratch buffer for split-axis variance
}

// build emits the node for tris and returns its arena index. tris is sorted in place.
func (b *kdBuilder) build(tris []int32, depth int) int32 {
	index := int32(len(b.nodes))
	b.nodes = append(b.nodes, KDNode{
		Bounds: b.bounds(tris).Expand(kdBoundsPadding),
		Axis:   leafAxis,
	})

	if depth <= 0 || len(tris) < b.opts.LeafSize {
		b.nodes[index].Triangles = tris
		return index
	}

	axis := b.splitAxis(tris)
	sort.SliceStable(tris, func(i, j int) bool {
		lo1, _ := b.extent(tris[i], axis)
		lo2, _ := b.extent(tris[j], axis)
		return lo1 < lo2
	})
	split, _ := b.extent(tris[len(tris)/2], axis)

	var left, right []int32
	for _, tri := range tris {
		lo, hi := b.extent(tri, axis)
		if lo < split || hi <= split {
			left = append(left, tri)
		}
		if hi > split {
			right = append(right, tri)
		}
	}

	// No progress: one side got everything
	if len(left) == len(tris) || len(right) == len(tris) {
		b.nodes[index].Triangles = tris
		return index
	}

	l := b.build(left, depth-1)
	r := b.build(right, depth-1)

	node := &b.nodes[index]
	node.Axis = axis
	node.Split = split
	node.Children = [2]int32{l, r}
	return index
}

// splitAxis picks the axis along which the triangles' minimum coordinates vary most
func (b *kdBuilder) splitAxis(tris []int32) int {
	best, bestVariance := 0, math.Inf(-1)
	for axis := 0; axis < 3; axis++ {
		b.keys = b.keys[:0]
		for _, tri := range tris {
			lo, _ := b.extent(tri, axis)
			b.keys = append(b.keys, lo)
		}
		if v := stat.Variance(b.keys, nil); v > bestVariance {
			best, bestVariance = axis, v
		}
	}
	return best
}

// extent returns the triangle's minimum and maximum coordinate along axis
func (b *kdBuilder) extent(tri int32, axis int) (lo, hi float64) {
	f := b.mesh.Faces[tri]
	c0 := b.mesh.Vertices[f[0]].Axis(axis)
	c1 := b.mesh.Vertices[f[1]].Axis(axis)
	c2 := b.mesh.Vertices[f[2]].Axis(axis)
	return min(c0, c1, c2), max(c0, c1, c2)
}

func (b *kdBuilder) bounds(tris []int32) core.AABB {
	box := core.EmptyAABB()
	for _, tri := range tris {
		for _, vi := range b.mesh.Faces[tri] {
			box = box.Extend(b.mesh.Vertices[vi])
		}
	}
	return box
}

// order returns the child on the ray origin's side of the split first, and
// the ray parameter at which the split plane is crossed. A ray parallel to
// the plane never crosses it. A ray lying in the plane can touch triangles
// on either side, so inPlane asks for both children over the whole interval.
func (n *KDNode) order(ray core.Ray, invDir core.Vec3) (near, far int32, tSplit float64, inPlane bool) {
	origin := ray.Origin.Axis(n.Axis)
	dir := ray.Direction.Axis(n.Axis)

	near, far = n.Children[0], n.Children[1]
	if origin > n.Split || (origin == n.Split && dir > 0) {
		near, far = far, near
	}

	tSplit = math.Inf(1)
	if dir != 0 {
		tSplit = (n.Split - origin) * invDir.Axis(n.Axis)
	}
	return near, far, tSplit, dir == 0 && origin == n.Split
}

// rootInterval clips the ray against the root bounds
func (t *KDTree) rootInterval(ray core.Ray, invDir core.Vec3) (tMin, tMax float64, ok bool) {
	if t == nil || len(t.Nodes) == 0 {
		return 0, 0, false
	}
	tMin, tMax, ok = t.Nodes[0].Bounds.Hit(ray.Origin, invDir)
	return max(tMin, 0), tMax, ok
}

// hitLeaf tests every triangle in a leaf, keeping the nearest
func (m *Mesh) hitLeaf(tris []int32, ray core.Ray, eps float64, best *triangleHit) {
	for _, tri := range tris {
		m.hitFace(tri, ray, eps, best)
	}
}

type kdStackEntry struct {
	node       int32
	tMin, tMax float64
}

// hitStack finds the nearest triangle hit using an explicit stack of
// (node, interval) entries. Near children are descended immediately; far
// children are pushed with the part of the interval beyond the split.
// Entries starting at or beyond the best hit so far are skipped.
func (t *KDTree) hitStack(m *Mesh, ray core.Ray, eps float64) triangleHit {
	best := newTriangleHit()
	invDir := ray.Direction.Reciprocal()
	rootMin, rootMax, ok := t.rootInterval(ray, invDir)
	if !ok {
		return best
	}

	var buf [kdStackSize]kdStackEntry
	stack := append(buf[:0], kdStackEntry{node: 0, tMin: rootMin, tMax: rootMax})

	for len(stack) > 0 {
		entry := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if entry.tMin >= best.t {
			continue
		}
		node, tMin, tMax := entry.node, entry.tMin, entry.tMax

		for {
			n := &t.Nodes[node]
			if !n.Bounds.Intersects(ray.Origin, invDir) {
				break
			}

			if n.IsLeaf() {
				m.hitLeaf(n.Triangles, ray, eps, &best)
				break
			}

			near, far, tSplit, inPlane := n.order(ray, invDir)
			switch {
			case inPlane:
				stack = append(stack, kdStackEntry{node: far, tMin: tMin, tMax: tMax})
				node = near
			case tSplit > tMax || tSplit <= 0:
				node = near
			case tSplit < tMin:
				node = far
			default:
				stack = append(stack, kdStackEntry{node: far, tMin: tSplit, tMax: tMax})
				node = near
				tMax = tSplit
			}
		}
	}
	return best
}

// hitRecursive finds the nearest triangle hit with the same decisions as
// hitStack, using the call stack instead of an explicit one.
func (t *KDTree) hitRecursive(m *Mesh, ray core.Ray, eps float64) triangleHit {
	best := newTriangleHit()
	invDir := ray.Direction.Reciprocal()
	tMin, tMax, ok := t.rootInterval(ray, invDir)
	if !ok {
		return best
	}
	t.recurse(0, m, ray, invDir, eps, tMin, tMax, &best)
	return best
}

// recurse reports true once best can no longer be improved by any node
// beyond the current interval.
func (t *KDTree) recurse(node int32, m *Mesh, ray core.Ray, invDir core.Vec3, eps, tMin, tMax float64, best *triangleHit) bool {
	n := &t.Nodes[node]
	if !n.Bounds.Intersects(ray.Origin, invDir) {
		return false
	}

	if n.IsLeaf() {
		m.hitLeaf(n.Triangles, ray, eps, best)
		return best.t < tMax
	}

	near, far, tSplit, inPlane := n.order(ray, invDir)
	switch {
	case inPlane:
		t.recurse(near, m, ray, invDir, eps, tMin, tMax, best)
		if best.t > tMin {
			t.recurse(far, m, ray, invDir, eps, tMin, tMax, best)
		}
		return best.t < tMax
	case tSplit > tMax || tSplit <= 0:
		return t.recurse(near, m, ray, invDir, eps, tMin, tMax, best)
	case tSplit < tMin:
		return t.recurse(far, m, ray, invDir, eps, tMin, tMax, best)
	}

	if t.recurse(near, m, ray, invDir, eps, tMin, tSplit, best) {
		return true
	}
	return t.recurse(far, m, ray, invDir, eps, tSplit, tMax, best)
}

// KDTreeStats contains statistics about the KD-tree structure
type KDTreeStats struct {
	Nodes        int   // Total number of nodes
	Leaves       int   // Number of leaf nodes
	MaxDepth     int   // Depth of the deepest leaf (root is 0)
	Triangles    int   // Number of distinct triangles in the mesh
	TriangleRefs int   // Triangle references summed over leaves
	LeafSizes    []int // Triangle count of each leaf, in arena order
}

// DuplicationFactor returns the average number of leaves referencing each triangle
func (s KDTreeStats) DuplicationFactor() float64 {
	if s.Triangles == 0 {
		return 0
	}
	return float64(s.TriangleRefs) / float64(s.Triangles)
}

// Stats returns statistics about the tree
func (t *KDTree) Stats() KDTreeStats {
	stats := KDTreeStats{Triangles: t.triangles}
	if len(t.Nodes) == 0 {
		return stats
	}
	t.collectStats(0, 0, &stats)
	return stats
}

// collectStats recursively collects statistics about the tree
func (t *KDTree) collectStats(node int32, depth int, stats *KDTreeStats) {
	stats.Nodes++
	stats.MaxDepth = max(stats.MaxDepth, depth)

	n := &t.Nodes[node]
	if n.IsLeaf() {
		stats.Leaves++
		stats.TriangleRefs += len(n.Triangles)
		stats.LeafSizes = append(stats.LeafSizes, len(n.Triangles))
		return
	}
	t.collectStats(n.Children[0], depth+1, stats)
	t.collectStats(n.Children[1], depth+1, stats)
}
