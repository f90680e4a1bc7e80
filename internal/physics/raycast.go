package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"voxelcore/internal/registry"
)

const (
	MinReachDistance = 0.1
	MaxReachDistance = 5.0
)

// RaycastResult stores the result of a raycast operation.
type RaycastResult struct {
	HitPosition      [3]int
	AdjacentPosition [3]int
	Distance         float32
	Hit              bool
}

// Raycast marches a ray in small steps from start along direction, testing
// each sampled cell against the block registry's collision flag, and
// returns the first colliding block hit plus the last empty cell stepped
// through (the placement-adjacent cell used by the block picker).
func Raycast(reg *registry.Registry, src BlockSource, start, direction mgl32.Vec3, minDist, maxDist float32) RaycastResult {
	const stepSize = float32(0.02)
	steps := int(maxDist / stepSize)

	var lastEmptyPos [3]int
	result := RaycastResult{}

	for i := 0; i <= steps; i++ {
		dist := float32(i) * stepSize
		if dist < minDist {
			continue
		}

		pos := start.Add(direction.Mul(dist))
		blockPos := [3]int{
			int(math.Floor(float64(pos.X()))),
			int(math.Floor(float64(pos.Y()))),
			int(math.Floor(float64(pos.Z()))),
		}

		t := src.BlockAt(blockPos[0], blockPos[1], blockPos[2])
		if t != registry.Air && reg.Get(t).Collision {
			result.HitPosition = blockPos
			result.AdjacentPosition = lastEmptyPos
			result.Distance = dist
			result.Hit = true
			return result
		}

		lastEmptyPos = blockPos
	}

	return result
}
