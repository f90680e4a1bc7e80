// Package culling implements the cross-chunk face visibility decision table
// from §4.10, shared by the binary greedy mesher and the traditional
// per-block mesher so both agree on when a face is hidden.
package culling

import "voxelcore/internal/registry"

// Visible decides whether block a's face in direction d is visible given
// the adjacent block b in that direction, per the §4.10 decision table.
func Visible(reg *registry.Registry, a, b registry.BlockType, d registry.BlockFace) bool {
	defA := reg.Get(a)
	defB := reg.Get(b)

	if defA.IsStairs {
		// Stairs are always visible and never cull neighbors: a deliberate
		// override to avoid incorrect culling against their partial bounds.
		return true
	}

	if b == registry.Air {
		return true
	}
	if defB.IsStairs {
		return true // a stairs neighbor never culls the current face
	}
	if defA.Transparent && a == b {
		return false // glass-to-glass, water-to-water
	}
	if defA.Liquid && defB.CanBeCulled && reg.CullPolicy(b, opposite(d)) == registry.CullFull {
		return false
	}
	if defA.Transparent {
		return true
	}
	if defB.Transparent {
		return true
	}

	// A opaque, B opaque: cull only if B's face toward A fully covers A's
	// face and A allows being culled.
	bFace := reg.FaceBoundsOf(b)[opposite(d)]
	aFace := reg.FaceBoundsOf(a)[d]
	if bFace.Covers(aFace) && defA.CanBeCulled {
		return false
	}
	return true
}

// opposite returns the face direction pointing back at the current cell
// from its neighbor's side.
func opposite(d registry.BlockFace) registry.BlockFace {
	switch d {
	case registry.FaceDown:
		return registry.FaceUp
	case registry.FaceUp:
		return registry.FaceDown
	case registry.FaceNorth:
		return registry.FaceSouth
	case registry.FaceSouth:
		return registry.FaceNorth
	case registry.FaceWest:
		return registry.FaceEast
	default: // FaceEast
		return registry.FaceWest
	}
}

// FaceDelta returns the (dx,dy,dz) unit offset for a face direction,
// matching the Mesh Quad direction numbering in §3.
func FaceDelta(d registry.BlockFace) (int, int, int) {
	switch d {
	case registry.FaceDown:
		return 0, -1, 0
	case registry.FaceUp:
		return 0, 1, 0
	case registry.FaceNorth:
		return 0, 0, -1
	case registry.FaceSouth:
		return 0, 0, 1
	case registry.FaceWest:
		return -1, 0, 0
	default: // FaceEast
		return 1, 0, 0
	}
}
