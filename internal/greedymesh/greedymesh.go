// Package greedymesh implements the Binary Greedy Mesher (§4.5, §4.6):
// slice extraction over per-block-type occupancy bitsets, a neighbor-aware
// visible-face mask per plane, and maximal-rectangle packing into Mesh
// Quads.
package greedymesh

import (
	"voxelcore/internal/culling"
	"voxelcore/internal/mesh"
	"voxelcore/internal/registry"
	"voxelcore/internal/voxel"
)

// Build runs the binary greedy mesher over every active block type and
// face direction of chunk, consulting src for cross-chunk neighbor reads.
// It does not check canUseBinaryMeshing — that decision belongs to the
// hybrid dispatcher (§4.11); Build always runs the full binary algorithm.
func Build(reg *registry.Registry, src voxel.Source, c *voxel.Chunk) []mesh.Quad {
	return BuildFromData(reg, src, c, voxel.BuildBinaryData(c))
}

// BuildFromData runs the same algorithm as Build but reuses a Binary Chunk
// Data snapshot already computed by the caller (the hybrid dispatcher
// builds one to decide the meshing path, so there is no reason to scan the
// chunk twice).
func BuildFromData(reg *registry.Registry, src voxel.Source, c *voxel.Chunk, data *voxel.BinaryData) []mesh.Quad {
	var quads []mesh.Quad

	for _, t := range data.ActiveTypes() {
		def := reg.Get(t)
		elements := def.Elements
		if len(elements) == 0 {
			// No parsed model (asset missing/malformed, §7): treat as one
			// synthetic full-bounds element so the block still meshes with
			// a missing-texture indicator rather than vanishing.
			elements = []registry.ElementGeometry{syntheticElement()}
		}
		single := len(elements) == 1

		for elemIdx, elem := range elements {
			emitIdx := elemIdx
			if single {
				emitIdx = -1
			}
			for face := registry.BlockFace(0); face < 6; face++ {
				quads = append(quads, meshPlane(reg, src, c, t, face, elem, emitIdx)...)
			}
		}
	}
	return quads
}

func syntheticElement() registry.ElementGeometry {
	g := registry.ElementGeometry{To: [3]float32{1, 1, 1}}
	for f := range g.FaceBounds {
		g.FaceBounds[f] = registry.FullFaceBounds
		g.HasFace[f] = true
	}
	return g
}

// axisLayout describes, for one face direction, how to decompose chunk
// coordinates into (plane index along the normal axis, u, v) per §4.5.
type axisLayout struct {
	// toUV maps (x,y,z) -> (plane, u, v)
	toUV func(x, y, z int) (plane, u, v int)
	// fromUV maps (plane, u, v) -> (x,y,z)
	fromUV func(plane, u, v int) (x, y, z int)
}

func layoutFor(face registry.BlockFace) axisLayout {
	switch face {
	case registry.FaceDown, registry.FaceUp:
		return axisLayout{
			toUV:   func(x, y, z int) (int, int, int) { return y, x, z },
			fromUV: func(p, u, v int) (int, int, int) { return u, p, v },
		}
	case registry.FaceNorth, registry.FaceSouth:
		return axisLayout{
			toUV:   func(x, y, z int) (int, int, int) { return z, x, y },
			fromUV: func(p, u, v int) (int, int, int) { return u, v, p },
		}
	default: // FaceWest, FaceEast
		return axisLayout{
			toUV:   func(x, y, z int) (int, int, int) { return x, y, z },
			fromUV: func(p, u, v int) (int, int, int) { return p, u, v },
		}
	}
}

// meshPlane runs steps 1-4 of §4.5 for one (block type, element, face
// direction) combination.
func meshPlane(reg *registry.Registry, src voxel.Source, c *voxel.Chunk, t registry.BlockType, face registry.BlockFace, elem registry.ElementGeometry, elementIndex int) []mesh.Quad {
	if !elem.HasFace[face] {
		return nil
	}
	layout := layoutFor(face)
	dx, dy, dz := culling.FaceDelta(face)

	var quads []mesh.Quad
	for plane := 0; plane < voxel.N; plane++ {
		visible := make([]bool, voxel.N*voxel.N)
		any := false
		for u := 0; u < voxel.N; u++ {
			for v := 0; v < voxel.N; v++ {
				x, y, z := layout.fromUV(plane, u, v)
				if c.Block(x, y, z) != t {
					continue
				}
				if isVisible(reg, src, c, x, y, z, dx, dy, dz) {
					visible[u*voxel.N+v] = true
					any = true
				}
			}
		}
		if !any {
			continue
		}
		quads = append(quads, packPlane(visible, plane, layout, t, face, elem, elementIndex)...)
	}
	return quads
}

// isVisible resolves the neighbor cell (in-chunk or cross-chunk via src)
// and applies the §4.10 decision table.
func isVisible(reg *registry.Registry, src voxel.Source, c *voxel.Chunk, x, y, z, dx, dy, dz int) bool {
	a := c.Block(x, y, z)
	nx, ny, nz := x+dx, y+dy, z+dz
	var b registry.BlockType
	if nx >= 0 && nx < voxel.N && ny >= 0 && ny < voxel.N && nz >= 0 && nz < voxel.N {
		b = c.Block(nx, ny, nz)
	} else {
		neighborCoord := voxel.Coord{X: c.Coord.X, Y: c.Coord.Y, Z: c.Coord.Z}
		wx, wy, wz := c.LocalToWorld(nx, ny, nz)
		neighborCoord = voxel.WorldToChunk(wx, wy, wz)
		var neighbor *voxel.Chunk
		if src != nil {
			neighbor = src.ChunkAt(neighborCoord)
		}
		if neighbor == nil {
			return true // no neighbor chunk: treat as visible
		}
		lx, ly, lz := voxel.LocalOf(wx, wy, wz)
		b = neighbor.Block(lx, ly, lz)
	}

	var faceDir registry.BlockFace
	switch {
	case dx == -1:
		faceDir = registry.FaceWest
	case dx == 1:
		faceDir = registry.FaceEast
	case dy == -1:
		faceDir = registry.FaceDown
	case dy == 1:
		faceDir = registry.FaceUp
	case dz == -1:
		faceDir = registry.FaceNorth
	default:
		faceDir = registry.FaceSouth
	}
	return culling.Visible(reg, a, b, faceDir)
}

// packPlane implements maximal rectangle packing (§4.5 step 3): width
// expansion before height expansion, both maximal, never revisiting a
// consumed cell.
func packPlane(visible []bool, plane int, layout axisLayout, t registry.BlockType, face registry.BlockFace, elem registry.ElementGeometry, elementIndex int) []mesh.Quad {
	const n = voxel.N
	var quads []mesh.Quad

	for u0 := 0; u0 < n; u0++ {
		for v0 := 0; v0 < n; v0++ {
			if !visible[u0*n+v0] {
				continue
			}

			width := 1
			for u0+width < n && visible[(u0+width)*n+v0] {
				width++
			}

			height := 1
		heightLoop:
			for v0+height < n {
				for du := 0; du < width; du++ {
					if !visible[(u0+du)*n+v0+height] {
						break heightLoop
					}
				}
				height++
			}

			for du := 0; du < width; du++ {
				for dv := 0; dv < height; dv++ {
					visible[(u0+du)*n+v0+dv] = false
				}
			}

			quads = append(quads, quadFrom(plane, u0, v0, width, height, layout, t, face, elem, elementIndex))
		}
	}
	return quads
}

func quadFrom(plane, u0, v0, width, height int, layout axisLayout, t registry.BlockType, face registry.BlockFace, elem registry.ElementGeometry, elementIndex int) mesh.Quad {
	x, y, z := layout.fromUV(plane, u0, v0)

	q := mesh.Quad{
		BlockType:    t,
		Face:         face,
		OriginX:      x,
		OriginY:      y,
		OriginZ:      z,
		SizeX:        1,
		SizeY:        1,
		SizeZ:        1,
		ElementIndex: elementIndex,
		ElementOffset: elem.From,
		ElementSize: [3]float32{
			elem.To[0] - elem.From[0],
			elem.To[1] - elem.From[1],
			elem.To[2] - elem.From[2],
		},
		Bounds: elem.FaceBounds[face],
	}

	switch face {
	case registry.FaceDown, registry.FaceUp:
		q.SizeX, q.SizeZ = width, height
	case registry.FaceNorth, registry.FaceSouth:
		q.SizeX, q.SizeY = width, height
	default:
		q.SizeY, q.SizeZ = width, height
	}
	return q
}
