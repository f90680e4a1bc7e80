package world

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

func newTestManager(t *testing.T) (*Manager, *threadpool.Pool) {
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

	return NewManager(reg, gen, conv, pool), pool
}

func drainUntilLive(t *testing.T, m *Manager, c voxel.Coord) {
	t.Helper()
	require.Eventually(t, func() bool {
		m.ProcessCompleted(64)
		return m.State(c) == StateLive
	}, 2*time.Second, time.Millisecond, "chunk never reached Live")
}

func TestManager_LifecycleReachesLive(t *testing.T) {
	m, pool := newTestManager(t)
	defer pool.Shutdown()

	c := voxel.Coord{}
	require.Equal(t, StateAbsent, m.State(c))

	m.RequestLoad(c, 0)
	drainUntilLive(t, m, c)

	cm, ok := m.ChunkMesh(c)
	require.True(t, ok)
	require.Greater(t, cm.Count(), 0, "a generated chunk with terrain should produce at least one face")

	require.NotNil(t, m.ChunkAt(c))
}

func TestManager_RequestLoadIsIdempotent(t *testing.T) {
	m, pool := newTestManager(t)
	defer pool.Shutdown()

	c := voxel.Coord{}
	m.RequestLoad(c, 0)
	m.RequestLoad(c, 0) // second call while Loading must be a no-op, not a duplicate task
	drainUntilLive(t, m, c)

	require.Equal(t, 1, m.Len())
}

func TestManager_UnloadDiscardsInFlightResults(t *testing.T) {
	m, pool := newTestManager(t)
	defer pool.Shutdown()

	c := voxel.Coord{}
	m.RequestLoad(c, 0)
	m.Unload(c)
	require.Equal(t, StateAbsent, m.State(c))

	// Drain whatever the in-flight task still produces; it must not resurrect
	// the entry.
	for i := 0; i < 10; i++ {
		m.ProcessCompleted(64)
		time.Sleep(time.Millisecond)
	}
	require.Equal(t, StateAbsent, m.State(c))
	require.Nil(t, m.ChunkAt(c))
}

func TestManager_SetBlockBumpsVersionAndRemeshes(t *testing.T) {
	m, pool := newTestManager(t)
	defer pool.Shutdown()

	c := voxel.Coord{}
	m.RequestLoad(c, 0)
	drainUntilLive(t, m, c)

	before := m.ChunkAt(c).MeshVersion()
	stone, _ := m.reg.ByName("stone")
	m.SetBlock(0, voxel.N-1, 0, stone, 0)
	require.Greater(t, m.ChunkAt(c).MeshVersion(), before)

	require.Eventually(t, func() bool {
		m.ProcessCompleted(64)
		mesh, ok := m.ChunkMesh(c)
		return ok && mesh.Count() >= 0
	}, 2*time.Second, time.Millisecond)
}

func TestBorderNeighbors(t *testing.T) {
	c := voxel.Coord{X: 1, Y: 1, Z: 1}

	require.ElementsMatch(t, []voxel.Coord{{X: 0, Y: 1, Z: 1}, {X: 1, Y: 0, Z: 1}, {X: 1, Y: 1, Z: 0}},
		borderNeighbors(c, 0, 0, 0))
	require.ElementsMatch(t, []voxel.Coord{{X: 2, Y: 1, Z: 1}, {X: 1, Y: 2, Z: 1}, {X: 1, Y: 1, Z: 2}},
		borderNeighbors(c, voxel.N-1, voxel.N-1, voxel.N-1))
	require.Empty(t, borderNeighbors(c, voxel.N/2, voxel.N/2, voxel.N/2))
}

func TestPriorityOf(t *testing.T) {
	center := voxel.Coord{}
	require.Equal(t, 0.0, PriorityOf(center, center))
	require.Equal(t, 8.0, PriorityOf(voxel.Coord{X: 2, Y: 2, Z: 0}, center))
}

func TestManager_UpdateLoadedChunksEvictsOutOfShell(t *testing.T) {
	m, pool := newTestManager(t)
	defer pool.Shutdown()

	center := voxel.Coord{}
	near := voxel.Coord{X: 1}
	far := voxel.Coord{X: 10}

	m.RequestLoad(near, 0)
	m.RequestLoad(far, 0)
	drainUntilLive(t, m, near)
	drainUntilLive(t, m, far)
	require.Equal(t, 2, m.Len())

	m.UpdateLoadedChunks(center, 3)
	require.Equal(t, StateAbsent, m.State(far), "chunk outside the shell must be evicted")
	require.Equal(t, StateLive, m.State(near), "chunk inside the shell must survive")
}

func TestManager_UpdateLoadedChunksIsIdempotent(t *testing.T) {
	m, pool := newTestManager(t)
	defer pool.Shutdown()

	center := voxel.Coord{}
	m.UpdateLoadedChunks(center, 1)
	before := m.Len() // RequestLoad creates each entry synchronously
	require.Greater(t, before, 0)

	// A second call with the same arguments must not queue any new load
	// task: every in-shell chunk is already tracked (RequestLoad is a
	// no-op past Absent) and nothing falls outside the shell to evict.
	m.UpdateLoadedChunks(center, 1)
	require.Equal(t, before, m.Len())
}

func TestManager_RequestLoadRejectsOutsideYBand(t *testing.T) {
	m, pool := newTestManager(t)
	defer pool.Shutdown()

	below := voxel.Coord{Y: voxel.MinYChunk - 1}
	above := voxel.Coord{Y: voxel.MaxYChunk + 1}

	m.RequestLoad(below, 0)
	m.RequestLoad(above, 0)
	time.Sleep(10 * time.Millisecond)
	m.ProcessCompleted(64)

	require.Equal(t, StateAbsent, m.State(below))
	require.Equal(t, StateAbsent, m.State(above))
	require.Equal(t, 0, m.Len())
}
