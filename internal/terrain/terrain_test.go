package terrain

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"voxelcore/internal/registry"
	"voxelcore/internal/voxel"
	"voxelcore/pkg/blockmodel"
)

const fullCubeModel = `{
  "textures": {"all": "block/stone"},
  "elements": [
    {
      "from": [0, 0, 0],
      "to": [16, 16, 16],
      "faces": {
        "down":  {"texture": "#all"},
        "up":    {"texture": "#all"},
        "north": {"texture": "#all"},
        "south": {"texture": "#all"},
        "west":  {"texture": "#all"},
        "east":  {"texture": "#all"}
      }
    }
  ]
}`

func newTestRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "models", "block"), 0o755))
	for _, name := range []string{"stone", "dirt", "grass_block", "bedrock"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "models", "block", name+".json"), []byte(fullCubeModel), 0o644))
	}
	loader := blockmodel.NewLoader(dir)
	reg := registry.New(loader, nil)
	reg.InitDefaults()
	return reg
}

func chunkBlocks(c *voxel.Chunk) [voxel.N * voxel.N * voxel.N]registry.BlockType {
	var out [voxel.N * voxel.N * voxel.N]registry.BlockType
	i := 0
	for x := 0; x < voxel.N; x++ {
		for y := 0; y < voxel.N; y++ {
			for z := 0; z < voxel.N; z++ {
				out[i] = c.Block(x, y, z)
				i++
			}
		}
	}
	return out
}

func TestGenerate_SameCoordAndSeedIsDeterministic(t *testing.T) {
	reg := newTestRegistry(t)
	g1 := New(42, reg)
	g2 := New(42, reg)

	coord := voxel.Coord{X: 3, Y: 1, Z: -2}
	a := chunkBlocks(g1.Generate(coord))
	b := chunkBlocks(g2.Generate(coord))
	require.Equal(t, a, b, "identical (coord, seed) must produce identical chunk contents")
}

func TestGenerate_DifferentSeedsCanDiffer(t *testing.T) {
	reg := newTestRegistry(t)
	g1 := New(1, reg)
	g2 := New(2, reg)

	coord := voxel.Coord{X: 3, Y: 1, Z: -2}
	a := chunkBlocks(g1.Generate(coord))
	b := chunkBlocks(g2.Generate(coord))
	require.NotEqual(t, a, b, "different seeds should (almost certainly) produce different terrain")
}

func TestHeightAt_IsPureAndDeterministic(t *testing.T) {
	reg := newTestRegistry(t)
	g := New(7, reg)

	h1 := g.HeightAt(100, -50)
	h2 := g.HeightAt(100, -50)
	require.Equal(t, h1, h2)
}

func TestGenerate_BottomLayerIsBedrock(t *testing.T) {
	reg := newTestRegistry(t)
	bedrock, _ := reg.ByName("bedrock")
	g := New(7, reg)

	c := g.Generate(voxel.Coord{Y: 0})
	require.Equal(t, bedrock, c.Block(0, 0, 0))
}
