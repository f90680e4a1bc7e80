package tradmesh

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

const stairsModel = `{
  "textures": {"all": "block/oak_stairs"},
  "elements": [
    {
      "from": [0, 0, 0],
      "to": [16, 8, 16],
      "faces": {
        "down":  {"texture": "#all"},
        "up":    {"texture": "#all"},
        "north": {"texture": "#all"},
        "south": {"texture": "#all"},
        "west":  {"texture": "#all"},
        "east":  {"texture": "#all"}
      }
    },
    {
      "from": [0, 8, 0],
      "to": [16, 16, 8],
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
	require.NoError(t, os.WriteFile(filepath.Join(dir, "models", "block", "oak_stairs.json"), []byte(stairsModel), 0o644))
	loader := blockmodel.NewLoader(dir)
	reg := registry.New(loader, nil)
	reg.InitDefaults()
	return reg
}

func TestBuild_SingleBlockEmitsSixQuads(t *testing.T) {
	reg := newTestRegistry(t)
	stone, _ := reg.ByName("stone")
	c := voxel.New(voxel.Coord{})
	c.SetBlock(5, 5, 5, stone)

	quads := Build(reg, nil, c)
	require.Len(t, quads, 6)
	for _, q := range quads {
		require.Equal(t, -1, q.ElementIndex, "a single-element block emits a synthetic/unindexed element")
	}
}

func TestBuild_MultiElementBlockEmitsPerElementQuads(t *testing.T) {
	reg := newTestRegistry(t)
	stairs, _ := reg.ByName("oak_stairs")
	c := voxel.New(voxel.Coord{})
	c.SetBlock(5, 5, 5, stairs)

	quads := Build(reg, nil, c)
	require.Len(t, quads, 12, "two 6-faced elements emit 12 quads")
	seen := map[int]bool{}
	for _, q := range quads {
		seen[q.ElementIndex] = true
	}
	require.True(t, seen[0])
	require.True(t, seen[1])
}

func TestBuild_AdjacentOpaqueBlocksCullSharedFace(t *testing.T) {
	reg := newTestRegistry(t)
	stone, _ := reg.ByName("stone")
	c := voxel.New(voxel.Coord{})
	c.SetBlock(5, 5, 5, stone)
	c.SetBlock(5, 6, 5, stone)

	quads := Build(reg, nil, c)
	for _, q := range quads {
		if q.OriginX == 5 && q.OriginY == 5 && q.OriginZ == 5 {
			require.NotEqual(t, registry.FaceUp, q.Face, "face shared with the block above must be culled")
		}
	}
}

func TestBuild_AirEmitsNoQuads(t *testing.T) {
	reg := newTestRegistry(t)
	c := voxel.New(voxel.Coord{})
	quads := Build(reg, nil, c)
	require.Empty(t, quads)
}
