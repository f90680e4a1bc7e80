// Package drawtable implements Indirect Draw Assembly (§4.13): it flattens
// every live chunk's Chunk Mesh into one contiguous Face Instance buffer
// and produces one Indirect Draw Entry per chunk recording that chunk's
// slice of the buffer plus its world-space bounds, for frustum culling on
// the renderer side.
//
// Grounded on the teacher's chunkMeshes/columnMeshes tracking in
// internal/graphics/renderables/blocks/meshing.go, which keeps a
// firstFloat/firstVertex span per chunk into a combined buffer and
// recombines it whenever a column is marked dirty; this package takes the
// same "track an offset/count span per chunk, rebuild on demand" shape but
// performs one full rebuild per call rather than the teacher's incremental
// atlas region compaction, since the chunk manager already batches its
// completed-mesh drain per tick (§4.12).
package drawtable

import (
	"github.com/go-gl/mathgl/mgl32"

	"voxelcore/internal/mesh"
	"voxelcore/internal/voxel"
	"voxelcore/internal/world"
)

// Table holds the most recently assembled draw buffer.
type Table struct {
	faces   []mesh.FaceInstance
	entries []mesh.IndirectDrawEntry
	index   map[voxel.Coord]int
}

// New creates an empty draw table.
func New() *Table {
	return &Table{index: make(map[voxel.Coord]int)}
}

// Rebuild reconstructs the flattened buffer from scratch out of every
// coordinate in coords that currently has a live mesh in m. Coordinates
// without a live mesh (still loading, meshing, or absent) are skipped, not
// zero-filled, so FirstFaceIndex offsets stay contiguous.
func (t *Table) Rebuild(m *world.Manager, coords []voxel.Coord) {
	t.faces = t.faces[:0]
	t.entries = t.entries[:0]
	for k := range t.index {
		delete(t.index, k)
	}

	for _, c := range coords {
		cm, ok := m.ChunkMesh(c)
		if !ok {
			continue
		}
		flat := cm.Flatten()
		if len(flat) == 0 {
			continue
		}

		first := uint32(len(t.faces))
		t.faces = append(t.faces, flat...)

		n := float32(voxel.N)
		origin := mgl32.Vec3{float32(c.X) * n, float32(c.Y) * n, float32(c.Z) * n}
		entry := mesh.IndirectDrawEntry{
			MinBounds:      origin,
			MaxBounds:      origin.Add(mgl32.Vec3{n, n, n}),
			FirstFaceIndex: first,
			FaceCount:      uint32(len(flat)),
		}

		t.index[c] = len(t.entries)
		t.entries = append(t.entries, entry)
	}
}

// Faces returns the flattened face instance buffer from the last Rebuild.
func (t *Table) Faces() []mesh.FaceInstance { return t.faces }

// Entries returns the per-chunk draw entries from the last Rebuild.
func (t *Table) Entries() []mesh.IndirectDrawEntry { return t.entries }

// EntryFor returns the draw entry for chunk c from the last Rebuild, if it
// had a live mesh at that time.
func (t *Table) EntryFor(c voxel.Coord) (mesh.IndirectDrawEntry, bool) {
	i, ok := t.index[c]
	if !ok {
		return mesh.IndirectDrawEntry{}, false
	}
	return t.entries[i], true
}

// TotalFaceCount returns the number of face instances in the last Rebuild.
func (t *Table) TotalFaceCount() int { return len(t.faces) }
