package voxel

import (
	"sort"

	"voxelcore/internal/registry"
)

// wordsPerChunk is the number of uint64 words needed for one N^3 bitset.
const wordsPerChunk = (N * N * N) / 64

// Bitset is a fixed-size N^3 occupancy mask, one bit per chunk cell.
type Bitset [wordsPerChunk]uint64

func (b *Bitset) Set(x, y, z int) {
	i := index(x, y, z)
	b[i/64] |= 1 << uint(i%64)
}

func (b *Bitset) Get(x, y, z int) bool {
	i := index(x, y, z)
	return b[i/64]&(1<<uint(i%64)) != 0
}

// BinaryData is the Binary Chunk Data snapshot (§4.4): a per-block-type
// occupancy bitset over one chunk, built fresh for the duration of a single
// mesh task.
type BinaryData struct {
	masks  map[registry.BlockType]*Bitset
	active []registry.BlockType
}

// BuildBinaryData scans every cell of chunk and produces one bitset per
// non-air block type, plus a sorted list of active types. O(N^3).
func BuildBinaryData(c *Chunk) *BinaryData {
	d := &BinaryData{masks: make(map[registry.BlockType]*Bitset)}
	seen := make(map[registry.BlockType]bool)
	for z := 0; z < N; z++ {
		for y := 0; y < N; y++ {
			for x := 0; x < N; x++ {
				t := c.Block(x, y, z)
				if t == registry.Air {
					continue
				}
				mask, ok := d.masks[t]
				if !ok {
					mask = &Bitset{}
					d.masks[t] = mask
				}
				mask.Set(x, y, z)
				if !seen[t] {
					seen[t] = true
					d.active = append(d.active, t)
				}
			}
		}
	}
	sort.Slice(d.active, func(i, j int) bool { return d.active[i] < d.active[j] })
	return d
}

// Mask returns the occupancy bitset for t, or an empty bitset if t has no
// cells in this chunk.
func (d *BinaryData) Mask(t registry.BlockType) *Bitset {
	if m, ok := d.masks[t]; ok {
		return m
	}
	return &Bitset{}
}

// ActiveTypes returns the deterministically ordered list of non-air block
// types present in this chunk.
func (d *BinaryData) ActiveTypes() []registry.BlockType { return d.active }

// Has reports whether cell (x,y,z) holds block type t.
func (d *BinaryData) Has(x, y, z int, t registry.BlockType) bool {
	m, ok := d.masks[t]
	if !ok {
		return false
	}
	return m.Get(x, y, z)
}
