// Package mesh holds the data types shared by every stage of the meshing
// pipeline: the Mesh Quad produced by the greedy mesher, the Face Instance
// GPU record produced by the converter and the traditional mesher, and the
// Chunk Mesh / Indirect Draw Table that the chunk manager assembles from
// them (§3).
package mesh

import (
	"voxelcore/internal/registry"

	"github.com/go-gl/mathgl/mgl32"
)

// Quad is one maximal rectangle produced by greedy meshing (§3, §4.5).
type Quad struct {
	BlockType registry.BlockType
	Face      registry.BlockFace

	// Origin in chunk-local integer coordinates; Size has one axis equal
	// to 1 (the face normal axis).
	OriginX, OriginY, OriginZ int
	SizeX, SizeY, SizeZ       int

	// ElementIndex is -1 when the block has a single element.
	ElementIndex int
	// ElementOffset/ElementSize are normalized 0..1 sub-cube coordinates,
	// used to tile UVs for multi-element blocks (§4.6).
	ElementOffset, ElementSize [3]float32

	// Bounds is the face's 2D bounds in 0..1, used for tiling and for the
	// bounds-compatibility merge rule (§4.5 step 3).
	Bounds registry.FaceBounds
}

// RenderLayer groups face instances for the ordered Chunk Mesh
// concatenation (OPAQUE, CUTOUT, TRANSLUCENT).
type RenderLayer = registry.RenderLayer

// FaceInstance is one emitted GPU primitive (§3, §6). Exact byte layout is
// left to the caller; this is the semantic field set.
type FaceInstance struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    [2]float32 // in-plane axes; normal axis is implicitly 1
	Face     registry.BlockFace
	UV       [4]float32 // pixel-space rect, 0..16 units, tiled by quad size
	TextureLayer uint32
	RenderLayer  RenderLayer
	AO           [4]float32
}

// ChunkMesh is the ordered concatenation of face instances for one chunk,
// grouped OPAQUE, CUTOUT, TRANSLUCENT.
type ChunkMesh struct {
	Opaque      []FaceInstance
	Cutout      []FaceInstance
	Translucent []FaceInstance
}

// Flatten returns the three layers concatenated in render-layer order.
func (m *ChunkMesh) Flatten() []FaceInstance {
	out := make([]FaceInstance, 0, len(m.Opaque)+len(m.Cutout)+len(m.Translucent))
	out = append(out, m.Opaque...)
	out = append(out, m.Cutout...)
	out = append(out, m.Translucent...)
	return out
}

// Append adds fi to the layer named by its RenderLayer field.
func (m *ChunkMesh) Append(fi FaceInstance) {
	switch fi.RenderLayer {
	case registry.LayerCutout:
		m.Cutout = append(m.Cutout, fi)
	case registry.LayerTranslucent:
		m.Translucent = append(m.Translucent, fi)
	default:
		m.Opaque = append(m.Opaque, fi)
	}
}

// Count returns the total number of face instances across all layers.
func (m *ChunkMesh) Count() int {
	return len(m.Opaque) + len(m.Cutout) + len(m.Translucent)
}

// IndirectDrawEntry describes one live chunk's slice of the flattened face
// instance buffer (§4.13, §6).
type IndirectDrawEntry struct {
	MinBounds, MaxBounds mgl32.Vec3
	FirstFaceIndex       uint32
	FaceCount            uint32
}
