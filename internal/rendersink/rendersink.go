// Package rendersink defines the narrow boundary between the engine core
// and whatever GPU renderer consumes its output. Device setup, descriptor
// pools, command-buffer recording, and pipeline creation are explicitly out
// of scope (see spec's Non-goals); this package only describes the shape
// of data a renderer needs from the core, grounded on the chunk manager's
// Chunk Mesh / Indirect Draw Table (§4.13) and the draw table's assembled
// output.
package rendersink

import (
	"voxelcore/internal/mesh"
	"voxelcore/internal/voxel"
)

// Sink is implemented by a renderer that wants to stay in lockstep with
// the chunk manager's draw table (§4.13): it is told the full flattened
// face instance buffer and per-chunk draw entries whenever drawtable.Table
// is rebuilt.
type Sink interface {
	// UpdateDrawBuffer replaces the renderer's GPU-side copy of the face
	// instance buffer in full.
	UpdateDrawBuffer(faces []mesh.FaceInstance)

	// UpdateDrawEntries replaces the renderer's indirect draw command
	// table, one entry per chunk with a live mesh.
	UpdateDrawEntries(entries []mesh.IndirectDrawEntry)
}

// PickTarget is the renderer-facing shape of a successful block pick,
// handed to a Sink implementation that wants to draw a selection outline;
// it mirrors physics.RaycastResult without importing the physics package.
type PickTarget struct {
	Block    [3]int
	Adjacent [3]int
}

// Highlighter is implemented by a renderer that draws a wireframe outline
// around the currently targeted block, mirroring the teacher's
// hasHoveredBlock/hoveredBlock pair from its demo main loop.
type Highlighter interface {
	SetHighlight(target PickTarget, visible bool)
}

// CameraState is everything a renderer needs to build its view/projection
// matrices for one frame; the engine core owns player position and look
// direction, the renderer owns the matrices.
type CameraState struct {
	Position    [3]float32
	Yaw, Pitch  float32
	ChunkCenter voxel.Coord
}
