package culling

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"voxelcore/internal/registry"
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
	for _, name := range []string{"stone", "dirt", "grass_block", "bedrock", "glass", "water", "oak_stairs"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "models", "block", name+".json"), []byte(fullCubeModel), 0o644))
	}
	loader := blockmodel.NewLoader(dir)
	reg := registry.New(loader, nil)
	reg.InitDefaults()
	return reg
}

func TestVisible_OpaqueAgainstAir(t *testing.T) {
	reg := newTestRegistry(t)
	stone, _ := reg.ByName("stone")
	require.True(t, Visible(reg, stone, registry.Air, registry.FaceUp))
}

func TestVisible_OpaqueFullCubeAgainstOpaqueFullCube(t *testing.T) {
	reg := newTestRegistry(t)
	stone, _ := reg.ByName("stone")
	dirt, _ := reg.ByName("dirt")
	require.False(t, Visible(reg, stone, dirt, registry.FaceUp), "a fully covered, cullable face must be hidden")
}

func TestVisible_SameTransparentTypeIsHidden(t *testing.T) {
	reg := newTestRegistry(t)
	glass, _ := reg.ByName("glass")
	require.False(t, Visible(reg, glass, glass, registry.FaceNorth), "glass-to-glass must not render a shared internal face")
}

func TestVisible_TransparentAgainstOpaqueIsVisible(t *testing.T) {
	reg := newTestRegistry(t)
	glass, _ := reg.ByName("glass")
	stone, _ := reg.ByName("stone")
	require.True(t, Visible(reg, glass, stone, registry.FaceNorth))
}

func TestVisible_OpaqueAgainstTransparentIsVisible(t *testing.T) {
	reg := newTestRegistry(t)
	stone, _ := reg.ByName("stone")
	glass, _ := reg.ByName("glass")
	require.True(t, Visible(reg, stone, glass, registry.FaceNorth))
}

func TestVisible_LiquidHiddenUnderCullingNeighbor(t *testing.T) {
	reg := newTestRegistry(t)
	water, _ := reg.ByName("water")
	stone, _ := reg.ByName("stone")
	require.False(t, Visible(reg, water, stone, registry.FaceUp), "water under a cullable opaque block must not render that face")
}

func TestVisible_StairsAlwaysVisible(t *testing.T) {
	reg := newTestRegistry(t)
	stairs, _ := reg.ByName("oak_stairs")
	stone, _ := reg.ByName("stone")
	require.True(t, Visible(reg, stairs, stone, registry.FaceUp))
	require.True(t, Visible(reg, stairs, registry.Air, registry.FaceUp))
}

func TestFaceDelta(t *testing.T) {
	cases := []struct {
		face           registry.BlockFace
		dx, dy, dz int
	}{
		{registry.FaceDown, 0, -1, 0},
		{registry.FaceUp, 0, 1, 0},
		{registry.FaceNorth, 0, 0, -1},
		{registry.FaceSouth, 0, 0, 1},
		{registry.FaceWest, -1, 0, 0},
		{registry.FaceEast, 1, 0, 0},
	}
	for _, c := range cases {
		dx, dy, dz := FaceDelta(c.face)
		require.Equal(t, c.dx, dx)
		require.Equal(t, c.dy, dy)
		require.Equal(t, c.dz, dz)
	}
}
