// Package world implements the Chunk Manager (§4.12): the lifecycle state
// machine that takes a chunk coordinate from Absent through Loading,
// Loaded, Meshing, to Live, dispatching generation and meshing onto the
// thread pool and committing every result on the calling (main) goroutine
// only. It owns the live voxel.Store and the chunk octree, the same
// separation of concerns the teacher's ChunkStore/ChunkStreamer/World split
// uses, generalized to the spec's richer per-chunk state machine.
package world

import (
	"sync"

	"voxelcore/internal/hybridmesh"
	"voxelcore/internal/mesh"
	"voxelcore/internal/meshconvert"
	"voxelcore/internal/octree"
	"voxelcore/internal/registry"
	"voxelcore/internal/terrain"
	"voxelcore/internal/threadpool"
	"voxelcore/internal/voxel"
)

// State is one stop on the chunk lifecycle (§4.12).
type State int

const (
	StateAbsent State = iota
	StateLoading
	StateLoaded // generated, not yet meshed
	StateMeshing
	StateLive
)

type chunkEntry struct {
	// mu guards this chunk's blocks array against a concurrent background
	// read during meshing (§4.12's "per-chunk lock"); SetBlock and the mesh
	// task both take it for the duration of their access.
	mu sync.Mutex

	state State

	mesh          mesh.ChunkMesh
	meshPath      hybridmesh.Path
	meshedVersion uint64

	loadTaskID  threadpool.TaskID
	meshTaskID  threadpool.TaskID
	hasLoadTask bool
	hasMeshTask bool
}

type loadResult struct {
	coord voxel.Coord
	chunk *voxel.Chunk
}

type meshResult struct {
	coord   voxel.Coord
	cm      mesh.ChunkMesh
	path    hybridmesh.Path
	version uint64
}

// Manager is the Chunk Manager described by §4.12.
type Manager struct {
	reg  *registry.Registry
	gen  *terrain.Generator
	conv *meshconvert.Converter
	pool *threadpool.Pool

	store *voxel.Store
	tree  *octree.Octree

	mu      sync.RWMutex
	entries map[voxel.Coord]*chunkEntry

	completedLoads  chan loadResult
	completedMeshes chan meshResult
}

// NewManager wires a chunk manager over an already-built registry, terrain
// generator, mesh converter, and thread pool.
func NewManager(reg *registry.Registry, gen *terrain.Generator, conv *meshconvert.Converter, pool *threadpool.Pool) *Manager {
	return &Manager{
		reg:             reg,
		gen:             gen,
		conv:            conv,
		pool:            pool,
		store:           voxel.NewStore(),
		tree:            octree.New(),
		entries:         make(map[voxel.Coord]*chunkEntry),
		completedLoads:  make(chan loadResult, 256),
		completedMeshes: make(chan meshResult, 256),
	}
}

// PriorityOf returns the squared chunk-space distance from c to center, the
// scheduling priority the thread pool's queue orders by (§4.12, lower
// value runs first).
func PriorityOf(c, center voxel.Coord) float64 {
	dx := float64(c.X - center.X)
	dy := float64(c.Y - center.Y)
	dz := float64(c.Z - center.Z)
	return dx*dx + dy*dy + dz*dz
}

// State reports the lifecycle state of c (StateAbsent if never requested).
func (m *Manager) State(c voxel.Coord) State {
	e, ok := m.entry(c)
	if !ok {
		return StateAbsent
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (m *Manager) entry(c voxel.Coord) (*chunkEntry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[c]
	return e, ok
}

func (m *Manager) entryOrCreate(c voxel.Coord) *chunkEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[c]
	if !ok {
		e = &chunkEntry{}
		m.entries[c] = e
	}
	return e
}

// RequestLoad schedules terrain generation for c if it is currently Absent.
// A no-op for any other state (already loading, loaded, or live), and a
// no-op for any chunk fully outside the world's vertical band (§3, §8):
// "chunks fully outside [WORLD_MIN_Y, WORLD_MAX_Y] are never loaded."
func (m *Manager) RequestLoad(c voxel.Coord, priority float64) {
	if !voxel.InYBand(c) {
		return
	}
	e := m.entryOrCreate(c)

	e.mu.Lock()
	if e.state != StateAbsent {
		e.mu.Unlock()
		return
	}
	e.state = StateLoading
	e.mu.Unlock()

	id := m.pool.Submit(priority, func(cancelled threadpool.CancelCheck) {
		if cancelled() {
			return
		}
		chunk := m.gen.Generate(c)
		if cancelled() {
			return
		}
		m.completedLoads <- loadResult{coord: c, chunk: chunk}
	})

	e.mu.Lock()
	e.loadTaskID = id
	e.hasLoadTask = true
	e.mu.Unlock()
}

// RequestMesh schedules a (re)mesh of an already-loaded or live chunk.
// A no-op if c is not loaded.
func (m *Manager) RequestMesh(c voxel.Coord, priority float64) {
	e, ok := m.entry(c)
	if !ok {
		return
	}

	e.mu.Lock()
	if e.state != StateLoaded && e.state != StateLive {
		e.mu.Unlock()
		return
	}
	e.state = StateMeshing
	e.mu.Unlock()

	id := m.pool.Submit(priority, func(cancelled threadpool.CancelCheck) {
		if cancelled() {
			return
		}
		chunk := m.store.ChunkAt(c)
		if chunk == nil {
			return
		}

		e.mu.Lock()
		version := chunk.MeshVersion()
		quads, path := hybridmesh.Build(m.reg, m.store, chunk)
		cm := m.conv.ConvertChunk(chunk, m.store, quads)
		e.mu.Unlock()

		if cancelled() {
			return
		}
		m.completedMeshes <- meshResult{coord: c, cm: cm, path: path, version: version}
	})

	e.mu.Lock()
	e.meshTaskID = id
	e.hasMeshTask = true
	e.mu.Unlock()
}

// ProcessCompleted drains up to maxPerCall entries from each of the
// completed-load and completed-mesh queues, installing their results. Per
// §4.12, this and Unload are the only places the voxel.Store or octree are
// mutated, and the caller is expected to invoke both from a single
// dedicated goroutine (the "main thread").
func (m *Manager) ProcessCompleted(maxPerCall int) (loaded, meshed int) {
loadLoop:
	for loaded < maxPerCall {
		select {
		case r := <-m.completedLoads:
			m.applyLoad(r)
			loaded++
		default:
			break loadLoop
		}
	}

meshLoop:
	for meshed < maxPerCall {
		select {
		case r := <-m.completedMeshes:
			m.applyMesh(r)
			meshed++
		default:
			break meshLoop
		}
	}
	return
}

func (m *Manager) applyLoad(r loadResult) {
	e, ok := m.entry(r.coord)
	if !ok {
		return
	}

	e.mu.Lock()
	if e.state != StateLoading {
		e.mu.Unlock() // unloaded while the generation task was in flight
		return
	}
	e.state = StateLoaded
	e.hasLoadTask = false
	e.mu.Unlock()

	m.store.Put(r.chunk)
	m.tree.AddChunk(r.coord)

	// A freshly generated chunk has no mesh yet; schedule one immediately
	// (resolves the "when does meshing start" open question: right after
	// load, not deferred to a caller). The mesh task is submitted at
	// priority 0, ahead of every queued distance-ordered task; the load's
	// own priority is not carried over.
	m.RequestMesh(r.coord, 0)
}

func (m *Manager) applyMesh(r meshResult) {
	e, ok := m.entry(r.coord)
	if !ok {
		return
	}

	e.mu.Lock()
	if e.state != StateMeshing {
		e.mu.Unlock()
		return
	}
	e.hasMeshTask = false

	chunk := m.store.ChunkAt(r.coord)
	if chunk == nil || chunk.MeshVersion() != r.version {
		// The chunk mutated while this mesh was being built; the result is
		// stale (§4.12 mesh-version tagging). The SetBlock that bumped the
		// version found the chunk Meshing and could not queue a mesh, so
		// fall back to Loaded and request a fresh one here.
		e.state = StateLoaded
		e.mu.Unlock()
		if chunk != nil {
			m.RequestMesh(r.coord, 0)
		}
		return
	}

	e.mesh = r.cm
	e.meshPath = r.path
	e.meshedVersion = r.version
	e.state = StateLive
	e.mu.Unlock()
}

// UpdateLoadedChunks implements the §4.12 "Any state → on
// updateLoadedChunks(player)" transition: every chunk within the spherical
// render-distance shell around center (clipped to the world's vertical
// band, §3) gets a RequestLoad, and every chunk this manager currently
// tracks but which has fallen outside that shell is evicted via Unload —
// cancelling its in-flight tasks, removing it from the octree, and
// dropping its storage back to Absent. Calling this twice with the same
// arguments is idempotent: RequestLoad is a no-op past Absent and no
// additional chunk falls outside the shell, so the second call queues no
// new tasks (§8).
func (m *Manager) UpdateLoadedChunks(center voxel.Coord, renderDistance int) {
	shell := float64(renderDistance) * float64(renderDistance)

	for _, c := range m.Coords() {
		if PriorityOf(c, center) > shell {
			m.Unload(c)
		}
	}

	for dx := -renderDistance; dx <= renderDistance; dx++ {
		for dy := -renderDistance; dy <= renderDistance; dy++ {
			for dz := -renderDistance; dz <= renderDistance; dz++ {
				if float64(dx*dx+dy*dy+dz*dz) > shell {
					continue
				}
				c := center.Add(dx, dy, dz)
				if !voxel.InYBand(c) {
					continue
				}
				m.RequestLoad(c, PriorityOf(c, center))
			}
		}
	}
}

// Coords returns every chunk coordinate this manager currently tracks, in
// any lifecycle state past Absent.
func (m *Manager) Coords() []voxel.Coord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]voxel.Coord, 0, len(m.entries))
	for c := range m.entries {
		out = append(out, c)
	}
	return out
}

// Unload cancels any in-flight work for c and removes it from the world
// entirely, returning it to Absent.
func (m *Manager) Unload(c voxel.Coord) {
	m.mu.Lock()
	e, ok := m.entries[c]
	if ok {
		delete(m.entries, c)
	}
	m.mu.Unlock()
	if !ok {
		return
	}

	e.mu.Lock()
	if e.hasLoadTask {
		m.pool.Cancel(e.loadTaskID)
	}
	if e.hasMeshTask {
		m.pool.Cancel(e.meshTaskID)
	}
	e.mu.Unlock()

	m.store.Delete(c)
	m.tree.RemoveChunk(c)
}

// SetBlock mutates one world-space cell and schedules remeshing of its
// chunk plus any neighbor chunk whose shared boundary the edit touched,
// since cross-chunk face visibility (§4.10) depends on both sides.
func (m *Manager) SetBlock(wx, wy, wz int, t registry.BlockType, priority float64) {
	c := voxel.WorldToChunk(wx, wy, wz)
	chunk := m.store.ChunkAt(c)
	if chunk == nil {
		return
	}
	e, ok := m.entry(c)
	if !ok {
		return
	}

	lx, ly, lz := voxel.LocalOf(wx, wy, wz)
	e.mu.Lock()
	chunk.SetBlock(lx, ly, lz, t)
	e.mu.Unlock()

	m.RequestMesh(c, priority)
	for _, nc := range borderNeighbors(c, lx, ly, lz) {
		ne, ok := m.entry(nc)
		if !ok {
			continue
		}
		ne.mu.Lock()
		needsRemesh := ne.state == StateLive || ne.state == StateLoaded
		ne.mu.Unlock()
		if needsRemesh {
			m.RequestMesh(nc, priority)
		}
	}
}

// borderNeighbors returns the neighbor chunk coordinates whose shared face
// a local edit at (lx,ly,lz) within c touches, if any.
func borderNeighbors(c voxel.Coord, lx, ly, lz int) []voxel.Coord {
	var out []voxel.Coord
	switch lx {
	case 0:
		out = append(out, c.Add(-1, 0, 0))
	case voxel.N - 1:
		out = append(out, c.Add(1, 0, 0))
	}
	switch ly {
	case 0:
		out = append(out, c.Add(0, -1, 0))
	case voxel.N - 1:
		out = append(out, c.Add(0, 1, 0))
	}
	switch lz {
	case 0:
		out = append(out, c.Add(0, 0, -1))
	case voxel.N - 1:
		out = append(out, c.Add(0, 0, 1))
	}
	return out
}

// ChunkMesh returns the mesh currently live for c, if it has one.
func (m *Manager) ChunkMesh(c voxel.Coord) (mesh.ChunkMesh, bool) {
	e, ok := m.entry(c)
	if !ok {
		return mesh.ChunkMesh{}, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateLive {
		return mesh.ChunkMesh{}, false
	}
	return e.mesh, true
}

// MeshPath reports which mesher produced c's currently live mesh.
func (m *Manager) MeshPath(c voxel.Coord) (hybridmesh.Path, bool) {
	e, ok := m.entry(c)
	if !ok {
		return 0, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateLive {
		return 0, false
	}
	return e.meshPath, true
}

// ChunkAt implements voxel.Source.
func (m *Manager) ChunkAt(c voxel.Coord) *voxel.Chunk { return m.store.ChunkAt(c) }

// BlockAt implements physics.BlockSource.
func (m *Manager) BlockAt(wx, wy, wz int) registry.BlockType { return m.store.BlockAt(wx, wy, wz) }

// Octree exposes the spatial index backing region and ray chunk queries
// (§4.14).
func (m *Manager) Octree() *octree.Octree { return m.tree }

// RequeueChunksWithBlock requests a remesh for every currently-tracked
// chunk whose contents reference block type t, in place (not its
// neighbors, since geometry changed, not occupancy). Called by the asset
// watcher after a hot-reloaded model invalidates t's derived face bounds.
func (m *Manager) RequeueChunksWithBlock(t registry.BlockType) {
	for _, c := range m.Coords() {
		chunk := m.store.ChunkAt(c)
		if chunk == nil || !chunk.Contains(t) {
			continue
		}
		m.RequestMesh(c, 0)
	}
}

// Len returns the number of chunks the manager currently tracks, in any
// lifecycle state past Absent.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
