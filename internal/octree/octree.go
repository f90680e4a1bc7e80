// Package octree implements the chunk spatial index (§4.14): addChunk,
// removeChunk, a region query, and a ray query over chunk bounds. The
// physics collider and raycaster read blocks through a BlockSource and do
// not query this index. It is a loose octree (Ulrich): a node's
// query bounds are its tight bounds scaled by a looseness factor, which
// lets a moderately sized chunk AABB settle at one node instead of
// fracturing across a boundary.
package octree

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl32"

	"voxelcore/internal/voxel"
)

const (
	looseness   = 2.0
	maxDepth    = 20
	rootHalf    = float32(1 << 20) // world units; comfortably larger than any reachable render distance
)

// AABB is an axis-aligned bounding box in world-space float coordinates.
type AABB struct {
	Min, Max mgl32.Vec3
}

func (b AABB) intersects(o AABB) bool {
	return b.Min.X() <= o.Max.X() && b.Max.X() >= o.Min.X() &&
		b.Min.Y() <= o.Max.Y() && b.Max.Y() >= o.Min.Y() &&
		b.Min.Z() <= o.Max.Z() && b.Max.Z() >= o.Min.Z()
}

func (b AABB) fitsIn(o AABB) bool {
	return b.Min.X() >= o.Min.X() && b.Max.X() <= o.Max.X() &&
		b.Min.Y() >= o.Min.Y() && b.Max.Y() <= o.Max.Y() &&
		b.Min.Z() >= o.Min.Z() && b.Max.Z() <= o.Max.Z()
}

type entry struct {
	coord voxel.Coord
	bound AABB
}

type node struct {
	center   mgl32.Vec3
	halfSize float32
	entries  []entry
	children [8]*node
}

func (n *node) looseBounds() AABB {
	h := n.halfSize * looseness
	return AABB{
		Min: n.center.Sub(mgl32.Vec3{h, h, h}),
		Max: n.center.Add(mgl32.Vec3{h, h, h}),
	}
}

func (n *node) tightBounds() AABB {
	h := n.halfSize
	return AABB{
		Min: n.center.Sub(mgl32.Vec3{h, h, h}),
		Max: n.center.Add(mgl32.Vec3{h, h, h}),
	}
}

// childCenter returns the center of child index i (0..7, one bit per axis).
func (n *node) childCenter(i int) mgl32.Vec3 {
	q := n.halfSize / 2
	dx, dy, dz := -q, -q, -q
	if i&1 != 0 {
		dx = q
	}
	if i&2 != 0 {
		dy = q
	}
	if i&4 != 0 {
		dz = q
	}
	return n.center.Add(mgl32.Vec3{dx, dy, dz})
}

// Octree is the chunk spatial index described by §4.14.
type Octree struct {
	root  *node
	index map[voxel.Coord]*node
}

// New creates an empty octree, rooted on a cube large enough to hold any
// chunk coordinate reachable within a sane render distance.
func New() *Octree {
	return &Octree{
		root:  &node{halfSize: rootHalf},
		index: make(map[voxel.Coord]*node),
	}
}

func chunkBounds(c voxel.Coord) AABB {
	n := float32(voxel.N)
	min := mgl32.Vec3{float32(c.X) * n, float32(c.Y) * n, float32(c.Z) * n}
	return AABB{Min: min, Max: min.Add(mgl32.Vec3{n, n, n})}
}

// AddChunk inserts the chunk at coord. Re-inserting an already-present
// coordinate first removes the old entry.
func (o *Octree) AddChunk(c voxel.Coord) {
	o.RemoveChunk(c)
	bound := chunkBounds(c)
	n := o.root
	for depth := 0; depth < maxDepth; depth++ {
		placed := false
		for i := 0; i < 8; i++ {
			childCenter := n.childCenter(i)
			childHalf := n.halfSize / 2
			child := &node{center: childCenter, halfSize: childHalf}
			if !bound.fitsIn(child.looseBounds()) {
				continue
			}
			if n.children[i] == nil {
				n.children[i] = child
			}
			n = n.children[i]
			placed = true
			break
		}
		if !placed {
			break
		}
	}
	n.entries = append(n.entries, entry{coord: c, bound: bound})
	o.index[c] = n
}

// RemoveChunk removes coord from the octree, if present.
func (o *Octree) RemoveChunk(c voxel.Coord) {
	n, ok := o.index[c]
	if !ok {
		return
	}
	for i, e := range n.entries {
		if e.coord == c {
			n.entries = append(n.entries[:i], n.entries[i+1:]...)
			break
		}
	}
	delete(o.index, c)
}

// GetChunksInRegion returns every chunk coordinate whose AABB intersects
// region.
func (o *Octree) GetChunksInRegion(region AABB) []voxel.Coord {
	var out []voxel.Coord
	var walk func(n *node)
	walk = func(n *node) {
		if n == nil || !n.looseBounds().intersects(region) {
			return
		}
		for _, e := range n.entries {
			if e.bound.intersects(region) {
				out = append(out, e.coord)
			}
		}
		for _, child := range n.children {
			walk(child)
		}
	}
	walk(o.root)
	return out
}

// GetChunksAlongRay returns every chunk coordinate whose AABB the ray
// (origin, dir, within maxDist) intersects, nearest first.
func (o *Octree) GetChunksAlongRay(origin, dir mgl32.Vec3, maxDist float32) []voxel.Coord {
	type hit struct {
		coord voxel.Coord
		dist  float32
	}
	var hits []hit

	var walk func(n *node)
	walk = func(n *node) {
		if n == nil {
			return
		}
		if _, ok := rayAABB(origin, dir, n.looseBounds(), maxDist); !ok {
			return
		}
		for _, e := range n.entries {
			if d, ok := rayAABB(origin, dir, e.bound, maxDist); ok {
				hits = append(hits, hit{coord: e.coord, dist: d})
			}
		}
		for _, child := range n.children {
			walk(child)
		}
	}
	walk(o.root)

	sort.Slice(hits, func(i, j int) bool { return hits[i].dist < hits[j].dist })
	out := make([]voxel.Coord, len(hits))
	for i, h := range hits {
		out[i] = h.coord
	}
	return out
}

// rayAABB implements the slab method, returning the entry distance along
// the ray and whether it lies within [0, maxDist].
func rayAABB(origin, dir mgl32.Vec3, box AABB, maxDist float32) (float32, bool) {
	tMin, tMax := float32(0), maxDist

	axis := func(o, d, lo, hi float32) bool {
		if d == 0 {
			return o >= lo && o <= hi
		}
		inv := 1 / d
		t1 := (lo - o) * inv
		t2 := (hi - o) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tMin {
			tMin = t1
		}
		if t2 < tMax {
			tMax = t2
		}
		return tMin <= tMax
	}

	if !axis(origin.X(), dir.X(), box.Min.X(), box.Max.X()) {
		return 0, false
	}
	if !axis(origin.Y(), dir.Y(), box.Min.Y(), box.Max.Y()) {
		return 0, false
	}
	if !axis(origin.Z(), dir.Z(), box.Min.Z(), box.Max.Z()) {
		return 0, false
	}
	if tMin > maxDist || tMax < 0 {
		return 0, false
	}
	return float32(math.Max(float64(tMin), 0)), true
}
