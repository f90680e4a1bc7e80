package physics_test

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"

	"voxelcore/internal/physics"
	"voxelcore/internal/registry"
	"voxelcore/internal/voxel"
)

func mglVec(x, y, z float32) mgl32.Vec3 { return mgl32.Vec3{x, y, z} }

func newCollisionFixture(t *testing.T) (*registry.Registry, *voxel.Store, registry.BlockType, registry.BlockType) {
	t.Helper()
	reg := registry.New(nil, nil)
	reg.InitDefaults()
	stone, ok := reg.ByName("stone")
	require.True(t, ok)
	water, ok := reg.ByName("water")
	require.True(t, ok)
	return reg, voxel.NewStore(), stone, water
}

func TestCollides_GroundSlab(t *testing.T) {
	reg, store, stone, _ := newCollisionFixture(t)
	c := voxel.New(voxel.Coord{})
	for x := 0; x < voxel.N; x++ {
		for z := 0; z < voxel.N; z++ {
			c.SetBlock(x, 0, z, stone)
		}
	}
	store.Put(c)

	standing := physics.PlayerAABB(mglVec(5, 1.01, 5), 0.6, 1.8)
	require.False(t, physics.Collides(reg, store, standing), "player standing just above the slab should not collide")

	embedded := physics.PlayerAABB(mglVec(5, 0.5, 5), 0.6, 1.8)
	require.True(t, physics.Collides(reg, store, embedded), "player overlapping the slab should collide")
}

func TestCollides_NonCollidingLiquidIgnored(t *testing.T) {
	reg, store, _, water := newCollisionFixture(t)
	c := voxel.New(voxel.Coord{})
	c.SetBlock(5, 0, 5, water)
	store.Put(c)

	box := physics.PlayerAABB(mglVec(5.3, 0.2, 5.3), 0.6, 1.8)
	require.False(t, physics.Collides(reg, store, box), "water has no collision, so standing in it should not collide")
}

func TestResolveAxis_StopsAtWall(t *testing.T) {
	reg, store, stone, _ := newCollisionFixture(t)
	c := voxel.New(voxel.Coord{})
	c.SetBlock(6, 0, 5, stone)
	c.SetBlock(6, 1, 5, stone)
	store.Put(c)

	box := physics.PlayerAABB(mglVec(5.0, 0, 5), 0.6, 1.8)
	moved, _ := physics.ResolveAxis(reg, store, box, mglVec(1.0, 0, 0))
	require.Less(t, moved.X(), float32(1.0), "movement into a wall should be clamped short of the full delta")
}

func TestFindGroundLevel(t *testing.T) {
	reg, store, stone, _ := newCollisionFixture(t)
	c := voxel.New(voxel.Coord{})
	c.SetBlock(5, 3, 5, stone)
	store.Put(c)

	ground := physics.FindGroundLevel(reg, store, 5, 5, mglVec(5, 10, 5), 0.6)
	require.False(t, math.IsInf(float64(ground), -1))
	require.InDelta(t, 4.0, ground, 1e-6)
}

func BenchmarkCollides(b *testing.B) {
	reg := registry.New(nil, nil)
	reg.InitDefaults()
	stone, _ := reg.ByName("stone")
	store := voxel.NewStore()
	c := voxel.New(voxel.Coord{})
	for x := 0; x < voxel.N; x++ {
		for z := 0; z < voxel.N; z++ {
			c.SetBlock(x, 0, z, stone)
		}
	}
	store.Put(c)
	box := physics.PlayerAABB(mglVec(5, 1.5, 5), 0.6, 1.8)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = physics.Collides(reg, store, box)
	}
}
