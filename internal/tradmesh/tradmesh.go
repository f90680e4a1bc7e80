// Package tradmesh implements the Traditional Per-Block Mesher (§4.9): used
// for chunks containing at least one block type whose model is not a
// single full cube. Every non-air cell's parsed model elements are meshed
// individually, using the same §4.10 culling rules as the binary mesher so
// both produce Face Instances of identical shape.
package tradmesh

import (
	"voxelcore/internal/culling"
	"voxelcore/internal/mesh"
	"voxelcore/internal/registry"
	"voxelcore/internal/voxel"
)

// Build meshes every cell of chunk using its block's parsed model,
// consulting src for cross-chunk neighbor reads at chunk boundaries.
func Build(reg *registry.Registry, src voxel.Source, c *voxel.Chunk) []mesh.Quad {
	var quads []mesh.Quad
	for z := 0; z < voxel.N; z++ {
		for y := 0; y < voxel.N; y++ {
			for x := 0; x < voxel.N; x++ {
				t := c.Block(x, y, z)
				if t == registry.Air {
					continue
				}
				quads = append(quads, meshCell(reg, src, c, x, y, z, t)...)
			}
		}
	}
	return quads
}

func meshCell(reg *registry.Registry, src voxel.Source, c *voxel.Chunk, x, y, z int, t registry.BlockType) []mesh.Quad {
	def := reg.Get(t)
	elements := def.Elements
	if len(elements) == 0 {
		elements = []registry.ElementGeometry{syntheticElement()}
	}
	single := len(elements) == 1

	var quads []mesh.Quad
	for elemIdx, elem := range elements {
		emitIdx := elemIdx
		if single {
			emitIdx = -1
		}
		for face := registry.BlockFace(0); face < 6; face++ {
			if !elem.HasFace[face] {
				continue
			}
			dx, dy, dz := culling.FaceDelta(face)
			neighbor := neighborBlock(src, c, x+dx, y+dy, z+dz)
			if !culling.Visible(reg, t, neighbor, face) {
				continue
			}
			quads = append(quads, mesh.Quad{
				BlockType:    t,
				Face:         face,
				OriginX:      x,
				OriginY:      y,
				OriginZ:      z,
				SizeX:        1,
				SizeY:        1,
				SizeZ:        1,
				ElementIndex: emitIdx,
				ElementOffset: elem.From,
				ElementSize: [3]float32{
					elem.To[0] - elem.From[0],
					elem.To[1] - elem.From[1],
					elem.To[2] - elem.From[2],
				},
				Bounds: elem.FaceBounds[face],
			})
		}
	}
	return quads
}

func neighborBlock(src voxel.Source, c *voxel.Chunk, x, y, z int) registry.BlockType {
	if x >= 0 && x < voxel.N && y >= 0 && y < voxel.N && z >= 0 && z < voxel.N {
		return c.Block(x, y, z)
	}
	wx, wy, wz := c.LocalToWorld(x, y, z)
	if src == nil {
		return registry.Air
	}
	neighbor := src.ChunkAt(voxel.WorldToChunk(wx, wy, wz))
	if neighbor == nil {
		return registry.Air
	}
	lx, ly, lz := voxel.LocalOf(wx, wy, wz)
	return neighbor.Block(lx, ly, lz)
}

func syntheticElement() registry.ElementGeometry {
	g := registry.ElementGeometry{To: [3]float32{1, 1, 1}}
	for f := range g.FaceBounds {
		g.FaceBounds[f] = registry.FullFaceBounds
		g.HasFace[f] = true
	}
	return g
}
