// Package physics implements the player collision and picking contract
// consumed from the Chunk Manager (§6): "given an AABB, enumerate block
// AABBs inside it whose block type has collision; the collider resolves
// axis-by-axis." Player physics beyond AABB-vs-block collision (gravity,
// friction, jumping) is out of scope.
package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"voxelcore/internal/registry"
)

// BlockSource is the read surface the collider and raycaster need from the
// Chunk Manager: world-space block lookups, AIR for anything not loaded.
type BlockSource interface {
	BlockAt(wx, wy, wz int) registry.BlockType
}

// AABB is an axis-aligned bounding box in world-space float coordinates.
type AABB struct {
	Min, Max mgl32.Vec3
}

func (b AABB) intersects(o AABB) bool {
	return b.Min.X() < o.Max.X() && b.Max.X() > o.Min.X() &&
		b.Min.Y() < o.Max.Y() && b.Max.Y() > o.Min.Y() &&
		b.Min.Z() < o.Max.Z() && b.Max.Z() > o.Min.Z()
}

func blockAABB(x, y, z int) AABB {
	return AABB{
		Min: mgl32.Vec3{float32(x), float32(y), float32(z)},
		Max: mgl32.Vec3{float32(x) + 1, float32(y) + 1, float32(z) + 1},
	}
}

// PlayerAABB returns the collision box for a player standing with feet at
// pos, matching the teacher's width/height convention: horizontally
// centered on pos, vertically [pos.Y, pos.Y+height).
func PlayerAABB(pos mgl32.Vec3, width, height float32) AABB {
	half := width / 2
	return AABB{
		Min: mgl32.Vec3{pos.X() - half, pos.Y(), pos.Z() - half},
		Max: mgl32.Vec3{pos.X() + half, pos.Y() + height, pos.Z() + half},
	}
}

// EnumerateBlockAABBs returns the AABB of every block inside region whose
// type has collision enabled, per the §6 player collision contract.
func EnumerateBlockAABBs(reg *registry.Registry, src BlockSource, region AABB) []AABB {
	minX := int(math.Floor(float64(region.Min.X())))
	maxX := int(math.Floor(float64(region.Max.X())))
	minY := int(math.Floor(float64(region.Min.Y())))
	maxY := int(math.Floor(float64(region.Max.Y())))
	minZ := int(math.Floor(float64(region.Min.Z())))
	maxZ := int(math.Floor(float64(region.Max.Z())))

	var out []AABB
	for x := minX; x <= maxX; x++ {
		for y := minY; y <= maxY; y++ {
			for z := minZ; z <= maxZ; z++ {
				t := src.BlockAt(x, y, z)
				if t == registry.Air {
					continue
				}
				if !reg.Get(t).Collision {
					continue
				}
				box := blockAABB(x, y, z)
				if region.intersects(box) {
					out = append(out, box)
				}
			}
		}
	}
	return out
}

// Collides reports whether the player's AABB overlaps any colliding block
// in a 1-block margin around playerBox, matching the teacher's over-scan.
func Collides(reg *registry.Registry, src BlockSource, playerBox AABB) bool {
	scan := AABB{
		Min: mgl32.Vec3{playerBox.Min.X() - 1, playerBox.Min.Y() - 1, playerBox.Min.Z() - 1},
		Max: mgl32.Vec3{playerBox.Max.X() + 1, playerBox.Max.Y() + 1, playerBox.Max.Z() + 1},
	}
	for _, box := range EnumerateBlockAABBs(reg, src, scan) {
		if playerBox.intersects(box) {
			return true
		}
	}
	return false
}

// ResolveAxis resolves a player movement delta against colliding blocks one
// axis at a time (X, then Y, then Z), the teacher's axis-separated sweep:
// each axis is moved and tested independently so sliding along a wall on
// one axis is unaffected by a blocked adjacent axis.
func ResolveAxis(reg *registry.Registry, src BlockSource, box AABB, delta mgl32.Vec3) (mgl32.Vec3, AABB) {
	resolved := delta
	cur := box

	moveAxis := func(d mgl32.Vec3) bool {
		moved := AABB{Min: cur.Min.Add(d), Max: cur.Max.Add(d)}
		scan := AABB{
			Min: mgl32.Vec3{moved.Min.X() - 1, moved.Min.Y() - 1, moved.Min.Z() - 1},
			Max: mgl32.Vec3{moved.Max.X() + 1, moved.Max.Y() + 1, moved.Max.Z() + 1},
		}
		for _, blockBox := range EnumerateBlockAABBs(reg, src, scan) {
			if moved.intersects(blockBox) {
				return false
			}
		}
		cur = moved
		return true
	}

	if !moveAxis(mgl32.Vec3{resolved.X(), 0, 0}) {
		resolved = mgl32.Vec3{0, resolved.Y(), resolved.Z()}
	}
	if !moveAxis(mgl32.Vec3{0, resolved.Y(), 0}) {
		resolved = mgl32.Vec3{resolved.X(), 0, resolved.Z()}
	}
	if !moveAxis(mgl32.Vec3{0, 0, resolved.Z()}) {
		resolved = mgl32.Vec3{resolved.X(), resolved.Y(), 0}
	}
	return resolved, cur
}

// FindGroundLevel returns the Y coordinate of the highest colliding block
// top surface beneath the player's footprint, or -Inf if none is found.
func FindGroundLevel(reg *registry.Registry, src BlockSource, x, z float32, playerPos mgl32.Vec3, width float32) float32 {
	minX := int(math.Floor(float64(x - width/2)))
	maxX := int(math.Floor(float64(x + width/2)))
	minZ := int(math.Floor(float64(z - width/2)))
	maxZ := int(math.Floor(float64(z + width/2)))

	playerMinX, playerMaxX := x-width/2, x+width/2
	playerMinZ, playerMaxZ := z-width/2, z+width/2

	maxGroundY := float32(math.Inf(-1))
	startY := int(math.Floor(float64(playerPos.Y())))
	for bx := minX; bx <= maxX; bx++ {
		for bz := minZ; bz <= maxZ; bz++ {
			blockMinX, blockMaxX := float32(bx), float32(bx)+1
			blockMinZ, blockMaxZ := float32(bz), float32(bz)+1
			if !(playerMinX < blockMaxX && playerMaxX > blockMinX && playerMinZ < blockMaxZ && playerMaxZ > blockMinZ) {
				continue
			}
			for by := startY; by >= 0; by-- {
				t := src.BlockAt(bx, by, bz)
				if t != registry.Air && reg.Get(t).Collision {
					groundY := float32(by) + 1
					if groundY > maxGroundY {
						maxGroundY = groundY
					}
					break
				}
			}
		}
	}
	return maxGroundY
}
