/*
Copyright (C) 2023  Carl-Philip Hänsch

    This program is free software: you can redistribute it and/or modify
    it under the terms of the GNU General Public License as published by
    the Free Software Foundation, either version 3 of the License, or
    (at your option) any later version.

    This program is distributed in the hope that it will be useful,
    but WITHOUT ANY WARRANTY; without even the implied warranty of
    MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
    GNU General Public License for more details.

    You should have received a copy of the GNU General Public License
    along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/
package table

import (
	"github.com/google/btree"

	"github.com/fieldglass/simcore/fx"
)

// chunkKey identifies one active chunk in an unbounded chunked-mode spatial
// index. Negative coordinates use floor division so every world point maps
// to exactly one chunk (spec.md §4.2 cell boundary policy).
type chunkKey struct {
	X, Y int32
}

func lessChunkKey(a, b chunkKey) bool {
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	return a.X < b.X
}

type chunkEntry struct {
	key  chunkKey
	grid *Grid
}

func lessChunkEntry(a, b chunkEntry) bool {
	return lessChunkKey(a.key, b.key)
}

// ChunkedGrid discovers active chunks from current positions each sort and
// keeps them in a pool keyed by integer (chunk_x, chunk_y), grounded on
// memcp's own use of github.com/google/btree for its delta index
// (storage/index.go) — the btree gives deterministic sorted-key iteration
// for free, which spec.md §4.2 requires ("enumerate chunks in sorted key
// order to remain deterministic").
type ChunkedGrid struct {
	cellSize  fx.Fx
	gridSize  int
	chunkSize fx.Fx
	maxChunks int

	pool       *btree.BTreeG[chunkEntry]
	overflowed bool
}

func newChunkedGrid(cellSize fx.Fx, gridSize int, chunkSizeCells int, maxChunks int) *ChunkedGrid {
	return &ChunkedGrid{
		cellSize:  cellSize,
		gridSize:  gridSize,
		chunkSize: cellSize.Mul(fx.FromInt(int64(chunkSizeCells))),
		maxChunks: maxChunks,
		pool:      btree.NewG(32, lessChunkEntry),
	}
}

func (c *ChunkedGrid) reset() {
	c.pool.Clear(false)
}

func (c *ChunkedGrid) chunkOf(pos fx.FxVec2) chunkKey {
	return chunkKey{
		X: int32(floorDivFx(pos.X, c.chunkSize)),
		Y: int32(floorDivFx(pos.Y, c.chunkSize)),
	}
}

// floorDivFx performs floor division (not truncation) so negative
// coordinates still map to exactly one chunk, per spec.md §4.2. Since a and
// b share the same Q48.16 scale factor, floor(a/b) in real terms is exactly
// floor division of their raw int64 representations.
func floorDivFx(a, b fx.Fx) int64 {
	x, y := int64(a), int64(b)
	q := x / y
	if (x%y != 0) && ((x < 0) != (y < 0)) {
		q--
	}
	return q
}

func (c *ChunkedGrid) localOffset(pos fx.FxVec2, key chunkKey) fx.FxVec2 {
	origin := fx.Vec2(c.chunkSize.Mul(fx.FromInt(int64(key.X))), c.chunkSize.Mul(fx.FromInt(int64(key.Y))))
	return pos.Sub(origin)
}

// sort discovers active chunks from current positions, (re)builds a Grid per
// chunk, and prunes chunks that went empty. Exceeding MaxChunks is a fatal
// schema-sizing error (spec.md §7); ChunkedGrid records the overflow here so
// Core.SpatialSort can translate it into ErrMaxChunksExceeded.
func (c *ChunkedGrid) sort(position PositionFunc, liveCount int32) {
	bySlot := make(map[chunkKey][]int32)
	for s := int32(0); s < liveCount; s++ {
		key := c.chunkOf(position(int(s)))
		bySlot[key] = append(bySlot[key], s)
	}
	if len(bySlot) > c.maxChunks {
		c.overflowed = true
	} else {
		c.overflowed = false
	}

	c.pool.Clear(false)
	for key, slots := range bySlot {
		g := newGrid(c.cellSize, c.gridSize)
		localPos := func(slot int) fx.FxVec2 {
			return c.localOffset(position(slot), key)
		}
		g.rebuild(slots, localPos)
		c.pool.ReplaceOrInsert(chunkEntry{key: key, grid: g})
	}
}

// Overflowed reports whether the most recent sort required more
// simultaneously active chunks than MaxChunks allows.
func (c *ChunkedGrid) Overflowed() bool { return c.overflowed }

// Chunks returns active chunk keys in deterministic sorted order.
func (c *ChunkedGrid) Chunks() []chunkKey {
	keys := make([]chunkKey, 0, c.pool.Len())
	c.pool.Ascend(func(e chunkEntry) bool {
		keys = append(keys, e.key)
		return true
	})
	return keys
}

// ChunkGrid returns the Grid for a given chunk key, or nil if inactive.
func (c *ChunkedGrid) ChunkGrid(key chunkKey) *Grid {
	if e, ok := c.pool.Get(chunkEntry{key: key}); ok {
		return e.grid
	}
	return nil
}
