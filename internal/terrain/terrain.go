// Package terrain implements the Terrain Generator (§4.3): a pure,
// deterministic function from a chunk coordinate and world seed to a
// populated Chunk.
package terrain

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"

	"voxelcore/internal/registry"
	"voxelcore/internal/voxel"
)

// SeaLevel is the world-block-coordinate sea level (§6, SPEC_FULL.md §3).
const SeaLevel = 62

// Generator is a deterministic (Coord) -> Chunk function given a seed. Two
// invocations with the same chunk coordinate and seed produce identical
// block arrays (§4.3 determinism contract); it owns no mutable state.
type Generator struct {
	seed        int64
	noise       opensimplex.Noise
	detail      opensimplex.Noise
	scale       float64
	baseHeight  float64
	amplitude   float64
	octaves     int
	persistence float64
	lacunarity  float64

	stone, dirt, grass, bedrock registry.BlockType
}

// New builds a generator for the given world seed, resolving its block
// types from reg so it never has to hold registry state of its own.
func New(seed int64, reg *registry.Registry) *Generator {
	stone, _ := reg.ByName("stone")
	dirt, _ := reg.ByName("dirt")
	grass, _ := reg.ByName("grass_block")
	bedrock, _ := reg.ByName("bedrock")
	return &Generator{
		seed:        seed,
		noise:       opensimplex.NewNormalized(seed),
		detail:      opensimplex.NewNormalized(seed ^ 0x5bd1e995),
		scale:       1.0 / 96.0,
		baseHeight:  float64(SeaLevel),
		amplitude:   40,
		octaves:     4,
		persistence: 0.5,
		lacunarity:  2.0,
		stone:       stone,
		dirt:        dirt,
		grass:       grass,
		bedrock:     bedrock,
	}
}

// HeightAt computes the deterministic world-block surface height at
// world-space (x,z), layering octave noise plus a smaller detail term in
// the teacher generator's shape (see SPEC_FULL.md DOMAIN STACK).
func (g *Generator) HeightAt(worldX, worldZ int) int {
	x := float64(worldX) * g.scale
	z := float64(worldZ) * g.scale

	amplitude := 1.0
	frequency := 1.0
	sum := 0.0
	norm := 0.0
	for i := 0; i < g.octaves; i++ {
		v := g.noise.Eval2(x*frequency, z*frequency)*2 - 1
		sum += v * amplitude
		norm += amplitude
		amplitude *= g.persistence
		frequency *= g.lacunarity
	}
	var base float64
	if norm > 0 {
		base = sum / norm
	}

	detail := (g.detail.Eval2(x*4, z*4)*2 - 1) * 3

	h := g.baseHeight + base*g.amplitude + detail
	if h < 0 {
		h = 0
	}
	return int(math.Floor(h))
}

// Generate produces a fully populated chunk at c. Pure and deterministic:
// it reads no mutable state besides the (fixed) generator fields.
func (g *Generator) Generate(c voxel.Coord) *voxel.Chunk {
	chunk := voxel.New(c)
	baseX, baseY, baseZ := chunk.WorldOrigin()

	for lx := 0; lx < voxel.N; lx++ {
		for lz := 0; lz < voxel.N; lz++ {
			worldX, worldZ := baseX+lx, baseZ+lz
			height := g.HeightAt(worldX, worldZ)

			for ly := 0; ly < voxel.N; ly++ {
				worldY := baseY + ly
				switch {
				case worldY > height:
					continue // air
				case worldY == 0:
					chunk.SetBlock(lx, ly, lz, g.bedrock)
				case worldY == height:
					if height < SeaLevel {
						chunk.SetBlock(lx, ly, lz, g.dirt)
					} else {
						chunk.SetBlock(lx, ly, lz, g.grass)
					}
				case worldY >= height-3:
					chunk.SetBlock(lx, ly, lz, g.dirt)
				default:
					chunk.SetBlock(lx, ly, lz, g.stone)
				}
			}
		}
	}
	return chunk
}
