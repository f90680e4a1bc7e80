// Package ao implements the per-vertex ambient occlusion sampler (§4.8):
// three occluding-neighbor samples per quad corner, cross-chunk aware via
// a voxel.Source, with a runtime debug override and multiplier.
package ao

import (
	"voxelcore/internal/culling"
	"voxelcore/internal/mesh"
	"voxelcore/internal/registry"
	"voxelcore/internal/voxel"
)

// Sampler computes per-quad vertex AO. Debug and Multiplier are
// runtime-tunable per §4.8's "both are runtime-tunable" requirement.
type Sampler struct {
	Debug      bool
	DebugValue [4]float32
	Multiplier float32
}

// NewSampler returns a sampler with AO fully enabled (multiplier 1, no
// debug override).
func NewSampler() *Sampler {
	return &Sampler{Multiplier: 1, DebugValue: [4]float32{1, 1, 1, 1}}
}

// axisFor returns the quad's in-plane (u,v) unit vectors, matching the same
// (u,v) convention the greedy mesher uses when it assigns SizeX/SizeY/SizeZ
// (§4.5 step 1's per-direction 2D mapping), so a quad's OriginU/SizeU here
// addresses the same cells the mesher merged.
func axisFor(face registry.BlockFace) (u, v [3]int) {
	switch face {
	case registry.FaceDown, registry.FaceUp:
		return [3]int{1, 0, 0}, [3]int{0, 0, 1}
	case registry.FaceNorth, registry.FaceSouth:
		return [3]int{1, 0, 0}, [3]int{0, 1, 0}
	default: // FaceWest, FaceEast
		return [3]int{0, 1, 0}, [3]int{0, 0, 1}
	}
}

// blockAt resolves a cell in chunk-local coordinates relative to c, crossing
// into neighbor chunks via src when out of bounds.
func blockAt(c *voxel.Chunk, src voxel.Source, x, y, z int) registry.BlockType {
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

func occluding(reg *registry.Registry, t registry.BlockType) bool {
	if t == registry.Air {
		return false
	}
	def := reg.Get(t)
	return !def.Transparent && !def.Liquid
}

// corner computes one vertex's s1,s2,c occlusion flags and AO value, with
// base sitting on the layer immediately outside the solid face (base already
// includes the face-normal step), and (du,dv) the ±1 step toward the corner
// along the quad's u and v axes.
func (s *Sampler) corner(reg *registry.Registry, c *voxel.Chunk, src voxel.Source, base [3]int, u, v [3]int, du, dv int) float32 {
	side1 := blockAt(c, src, base[0]+u[0]*du, base[1]+u[1]*du, base[2]+u[2]*du)
	side2 := blockAt(c, src, base[0]+v[0]*dv, base[1]+v[1]*dv, base[2]+v[2]*dv)
	diag := blockAt(c, src, base[0]+u[0]*du+v[0]*dv, base[1]+u[1]*du+v[1]*dv, base[2]+u[2]*du+v[2]*dv)

	s1, s2, cc := 0, 0, 0
	if occluding(reg, side1) {
		s1 = 1
	}
	if occluding(reg, side2) {
		s2 = 1
	}
	if occluding(reg, diag) {
		cc = 1
	}

	if s1 == 1 && s2 == 1 {
		return 0
	}
	return float32(3-(s1+s2+cc)) / 3
}

// ForQuad returns the AO value at each of the quad's four corners, in order
// (min,min), (max,min), (max,max), (min,max) along the quad's (u,v) axes.
// For a greedy-merged quad spanning more than one cell, the corners sit at
// the rectangle's actual extent, not at a per-cell midpoint, per §4.8's
// seam-consistency requirement.
func (s *Sampler) ForQuad(reg *registry.Registry, c *voxel.Chunk, src voxel.Source, q mesh.Quad) [4]float32 {
	if s.Debug {
		out := s.DebugValue
		for i := range out {
			out[i] *= s.Multiplier
		}
		return out
	}

	dx, dy, dz := culling.FaceDelta(q.Face)
	u, v := axisFor(q.Face)

	origin := [3]int{q.OriginX, q.OriginY, q.OriginZ}
	sizeU, sizeV := quadUVSize(q)

	corners := [4][2]int{
		{0, 0},
		{sizeU, 0},
		{sizeU, sizeV},
		{0, sizeV},
	}
	signs := [4][2]int{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}

	var out [4]float32
	for i, corner2d := range corners {
		base := [3]int{
			origin[0] + u[0]*corner2d[0] + v[0]*corner2d[1] + dx,
			origin[1] + u[1]*corner2d[0] + v[1]*corner2d[1] + dy,
			origin[2] + u[2]*corner2d[0] + v[2]*corner2d[1] + dz,
		}
		out[i] = s.corner(reg, c, src, base, u, v, signs[i][0], signs[i][1]) * s.Multiplier
	}
	return out
}

func quadUVSize(q mesh.Quad) (int, int) {
	switch q.Face {
	case registry.FaceDown, registry.FaceUp:
		return q.SizeX, q.SizeZ
	case registry.FaceNorth, registry.FaceSouth:
		return q.SizeX, q.SizeY
	default:
		return q.SizeY, q.SizeZ
	}
}
