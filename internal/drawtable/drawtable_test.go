package drawtable

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"voxelcore/internal/ao"
	"voxelcore/internal/meshconvert"
	"voxelcore/internal/registry"
	"voxelcore/internal/terrain"
	"voxelcore/internal/texturearray"
	"voxelcore/internal/threadpool"
	"voxelcore/internal/voxel"
	"voxelcore/internal/world"
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

func newTestManager(t *testing.T) (*world.Manager, *threadpool.Pool) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "models", "block"), 0o755))
	for _, name := range []string{"stone", "dirt", "grass_block", "bedrock"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "models", "block", name+".json"), []byte(fullCubeModel), 0o644))
	}

	loader := blockmodel.NewLoader(dir)
	reg := registry.New(loader, nil)
	reg.InitDefaults()

	gen := terrain.New(1, reg)
	tex := texturearray.New(nil)
	conv := meshconvert.New(reg, tex, ao.NewSampler())
	pool := threadpool.New(2)

	return world.NewManager(reg, gen, conv, pool), pool
}

func TestTable_RebuildSkipsChunksWithoutLiveMesh(t *testing.T) {
	m, pool := newTestManager(t)
	defer pool.Shutdown()

	live := voxel.Coord{}
	stillLoading := voxel.Coord{X: 5}

	m.RequestLoad(live, 0)
	require.Eventually(t, func() bool {
		m.ProcessCompleted(64)
		return m.State(live) == world.StateLive
	}, 2*time.Second, time.Millisecond)

	tbl := New()
	tbl.Rebuild(m, []voxel.Coord{live, stillLoading})

	_, ok := tbl.EntryFor(live)
	require.True(t, ok)
	_, ok = tbl.EntryFor(stillLoading)
	require.False(t, ok)

	entry, _ := tbl.EntryFor(live)
	require.EqualValues(t, 0, entry.FirstFaceIndex)
	require.EqualValues(t, len(tbl.Faces()), entry.FaceCount)
	require.Equal(t, len(tbl.Faces()), tbl.TotalFaceCount())
}
