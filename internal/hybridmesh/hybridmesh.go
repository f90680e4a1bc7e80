// Package hybridmesh implements the Hybrid Chunk Mesh Generator (§4.11):
// the dispatch policy between the binary greedy mesher and the traditional
// per-block mesher.
package hybridmesh

import (
	"voxelcore/internal/greedymesh"
	"voxelcore/internal/mesh"
	"voxelcore/internal/registry"
	"voxelcore/internal/tradmesh"
	"voxelcore/internal/voxel"
)

// Path identifies which mesher produced a chunk's quads, useful for
// diagnostics and for the testable-property suite (§8).
type Path int

const (
	PathBinary Path = iota
	PathTraditional
)

// CanUseBinaryMeshing reports whether every active block type in data's
// chunk qualifies for the binary path: a single model element spanning the
// full unit cube on every face (§4.11 step 2).
func CanUseBinaryMeshing(reg *registry.Registry, data *voxel.BinaryData) bool {
	for _, t := range data.ActiveTypes() {
		def := reg.Get(t)
		if !def.SingleFullCube {
			return false
		}
		for f := registry.BlockFace(0); f < 6; f++ {
			if !def.FaceBounds[f].IsFull() {
				return false
			}
		}
	}
	return true
}

// Build runs the hybrid dispatch policy for one chunk: binary data is
// always built first (§4.11 step 1); if every active type qualifies, the
// binary mesher runs, otherwise the whole chunk falls back to the
// traditional mesher. Mixing the two within one chunk is intentionally
// rejected (§4.11 rationale).
func Build(reg *registry.Registry, src voxel.Source, c *voxel.Chunk) ([]mesh.Quad, Path) {
	data := voxel.BuildBinaryData(c)
	if CanUseBinaryMeshing(reg, data) {
		return greedymesh.BuildFromData(reg, src, c, data), PathBinary
	}
	return tradmesh.Build(reg, src, c), PathTraditional
}
