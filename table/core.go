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
// Package table implements the columnar entity store: a generational-handle
// slot table that any fixed row schema embeds, plus its co-located spatial
// index (grid.go, chunked.go).
//
// The split mirrors the teacher's storage package, where a table (schema,
// dispatch, locking) is distinct from a storageShard (the dense column
// storage plus its free-list/counters): here Core plays the storageShard
// role for every schema, generalized from memcp's SQL rows to fixed game
// state, and each concrete schema (see package rts) plays the table role by
// holding a *Core and supplying its own row storage through Ops (package rts
// keeps each schema's rows in one array-of-structs slice).
package table

import (
	"hash"
	"hash/fnv"
	"io"

	"github.com/fieldglass/simcore/fx"
	"github.com/fieldglass/simcore/handle"
)

// Kind distinguishes the three schema shapes spec.md §3 allows.
type Kind uint8

const (
	// KindSpatial is a normal multi-row schema with a Position field,
	// participating in the spatial grid.
	KindSpatial Kind = iota
	// KindSingleton is a data-only table with exactly one row, no grid.
	KindSingleton
	// KindSpatialLRU is KindSpatial, but Allocate on a full table evicts the
	// row with the smallest value of a configured key field.
	KindSpatialLRU
)

// Ops is implemented by every concrete schema's generated/hand-written
// table type. Core calls back into it for anything that touches actual
// column data, since Core itself is schema-agnostic.
type Ops interface {
	// ClearSlot resets the row at slot to its schema-declared defaults.
	ClearSlot(slot int)
	// CopySlot copies all column values from src into dst (swap-pop donor).
	CopySlot(dst, src int)
	// HashSlot feeds the authoritative column bytes of slot, in declared
	// field order and the spec's fixed per-type encoding, into h.
	HashSlot(h hash.Hash64, slot int)
	// WriteAuthoritative writes every non-computed column's full
	// capacity-sized backing array, in declared order, little-endian.
	WriteAuthoritative(w io.Writer) error
	// ReadAuthoritative reads back what WriteAuthoritative wrote.
	ReadAuthoritative(r io.Reader) error
	// AuthoritativeSize reports the exact byte length WriteAuthoritative
	// writes, so callers can slice a snapshot into per-table regions
	// without invoking a mutating read first.
	AuthoritativeSize() int
	// RecomputeSlot rebuilds slot's computed columns from its authoritative
	// columns. Called for every live slot after ReadAuthoritative.
	RecomputeSlot(slot int)
}

// EvictionKeyFunc returns the comparable key for a live slot under a
// KindSpatialLRU policy; Allocate on a full table frees the slot with the
// smallest key.
type EvictionKeyFunc func(slot int) int64

// PositionFunc returns a row's world-space position; required for spatial
// schemas so Core can own the grid.
type PositionFunc func(slot int) fx.FxVec2

// Config is the per-schema configuration an author declares (spec.md §6).
type Config struct {
	Capacity     int
	Kind         Kind
	AutoAllocate bool // only meaningful for KindSingleton

	// spatial-only
	CellSize    fx.Fx
	GridSize    int
	Chunked     bool
	ChunkSize   int
	MaxChunks   int
	Position    PositionFunc
	EvictionKey EvictionKeyFunc // required for KindSpatialLRU
}

// Core is the generational slot-table substrate embedded by every concrete
// schema. It owns liveness bookkeeping, the version counter, and (for
// spatial schemas) the Grid; it never touches column data directly.
type Core struct {
	tableID uint16
	cfg     Config
	ops     Ops

	count     int32
	nextRawID int32

	rawToSlot    []int32 // raw_id -> slot, -1 if not live
	slotToPacked []int32 // slot -> (gen<<16)|raw_id, -1 if beyond count
	generation   []uint16
	nextFree     []int32 // intrusive free list: raw_id -> next free raw_id, -1 terminator
	freeListHead int32   // -1 if empty

	version uint32

	Grid        *Grid        // non-nil for KindSpatial / KindSpatialLRU, non-chunked
	ChunkedGrid *ChunkedGrid // non-nil when cfg.Chunked
}

// NewCore allocates the bookkeeping arrays for a schema and, for an
// auto-allocating singleton, its one permanent row.
func NewCore(tableID uint16, ops Ops, cfg Config) *Core {
	c := &Core{
		tableID:      tableID,
		cfg:          cfg,
		ops:          ops,
		rawToSlot:    make([]int32, cfg.Capacity),
		slotToPacked: make([]int32, cfg.Capacity),
		generation:   make([]uint16, cfg.Capacity),
		nextFree:     make([]int32, cfg.Capacity),
		freeListHead: -1,
	}
	c.resetMaps()
	if cfg.Kind != KindSingleton {
		if cfg.Chunked {
			c.ChunkedGrid = newChunkedGrid(cfg.CellSize, cfg.GridSize, cfg.ChunkSize, cfg.MaxChunks)
		} else {
			c.Grid = newGrid(cfg.CellSize, cfg.GridSize)
		}
	}
	if cfg.Kind == KindSingleton && cfg.AutoAllocate {
		if _, err := c.Allocate(); err != nil {
			panic(err) // build-time misconfiguration: capacity 0 singleton
		}
	}
	return c
}

func (c *Core) resetMaps() {
	for i := range c.rawToSlot {
		c.rawToSlot[i] = -1
		c.slotToPacked[i] = -1
		c.nextFree[i] = -1
		c.generation[i] = 0
	}
	c.count = 0
	c.nextRawID = 0
	c.freeListHead = -1
}

func (c *Core) TableID() uint16   { return c.tableID }
func (c *Core) Count() int        { return int(c.count) }
func (c *Core) Capacity() int     { return len(c.rawToSlot) }
func (c *Core) Version() uint32   { return c.version }
func (c *Core) Kind() Kind        { return c.cfg.Kind }

// Allocate reserves a new row, evicting per policy if the table is full
// under KindSpatialLRU, or failing with ErrCapacityExhausted otherwise.
func (c *Core) Allocate() (handle.Handle, error) {
	if int(c.count) >= len(c.rawToSlot) {
		if c.cfg.Kind != KindSpatialLRU {
			return handle.Invalid, ErrCapacityExhausted
		}
		c.evictLRU()
	}

	var rawID int32
	if c.freeListHead != -1 {
		rawID = c.freeListHead
		c.freeListHead = c.nextFree[rawID]
		c.nextFree[rawID] = -1
	} else {
		rawID = c.nextRawID
		c.nextRawID++
	}

	slot := c.count
	c.count++
	c.ops.ClearSlot(int(slot))
	c.rawToSlot[rawID] = slot
	c.slotToPacked[slot] = packGenRaw(c.generation[rawID], uint16(rawID))
	c.version++

	return handle.New(c.tableID, uint16(rawID), c.generation[rawID]), nil
}

func (c *Core) evictLRU() {
	if c.cfg.EvictionKey == nil || c.count == 0 {
		return
	}
	bestSlot := int32(0)
	bestKey := c.cfg.EvictionKey(0)
	for s := int32(1); s < c.count; s++ {
		k := c.cfg.EvictionKey(int(s))
		if k < bestKey {
			bestKey = k
			bestSlot = s
		}
	}
	rawID := uint16(c.slotToPacked[bestSlot])
	gen := c.generation[rawID]
	c.Free(handle.New(c.tableID, rawID, gen))
}

// Free releases h's row, if h is live. Stale or out-of-range handles are a
// silent no-op per spec.md §7.
func (c *Core) Free(h handle.Handle) {
	slot := c.GetSlot(h)
	if slot < 0 {
		return
	}
	rawID := int32(h.RawID())
	last := c.count - 1
	if slot != last {
		c.ops.CopySlot(int(slot), int(last))
		movedRaw := uint16(c.slotToPacked[last])
		c.rawToSlot[movedRaw] = slot
		c.slotToPacked[slot] = c.slotToPacked[last]
	}
	c.rawToSlot[rawID] = -1
	c.slotToPacked[last] = -1
	c.generation[rawID]++ // wraps at 2^16 per spec.md §3
	c.nextFree[rawID] = c.freeListHead
	c.freeListHead = rawID
	c.count--
	c.version++
}

// GetSlot resolves h to a live dense slot, or -1 if h is stale, out of
// range, or the sentinel Invalid handle.
func (c *Core) GetSlot(h handle.Handle) int32 {
	rawID := h.RawID()
	if !h.Valid() || int(rawID) >= len(c.generation) {
		return -1
	}
	if c.generation[rawID] != h.Generation() {
		return -1
	}
	return c.rawToSlot[rawID]
}

// HandleForSlot reconstructs the Handle currently occupying slot. Used by
// iteration paths (spatial queries, union queries) that walk slots and must
// hand back a stable reference.
func (c *Core) HandleForSlot(slot int32) handle.Handle {
	packed := c.slotToPacked[slot]
	rawID := uint16(packed)
	return handle.New(c.tableID, rawID, c.generation[rawID])
}

// Reset clears the table back to empty, re-running auto-allocation for an
// auto-allocating singleton. Bumps the version per spec.md §4.1.
func (c *Core) Reset() {
	c.resetMaps()
	if c.Grid != nil {
		c.Grid.reset()
	}
	if c.ChunkedGrid != nil {
		c.ChunkedGrid.reset()
	}
	c.version++
	if c.cfg.Kind == KindSingleton && c.cfg.AutoAllocate {
		c.Allocate()
	}
}

// ComputeTableHash rolls up every live row's authoritative columns via
// FNV-1a, in slot order, per spec.md §4.1/§4.6.
func (c *Core) ComputeTableHash() uint64 {
	h := fnv.New64a()
	for s := int32(0); s < c.count; s++ {
		c.ops.HashSlot(h, int(s))
	}
	return h.Sum64()
}

// SpatialSort rebuilds the grid's cell index from current positions. It does
// not touch the version counter (spec.md design note, Open Question i):
// moving entities between cells is not a row-set change. It returns
// ErrMaxChunksExceeded if a chunked schema's positions now span more
// simultaneous chunks than its configured MaxChunks (spec.md §7: fatal,
// signals a design error in schema sizing).
func (c *Core) SpatialSort() error {
	if c.Grid != nil {
		c.Grid.sort(c.cfg.Position, c.count)
	}
	if c.ChunkedGrid != nil {
		c.ChunkedGrid.sort(c.cfg.Position, c.count)
		if c.ChunkedGrid.Overflowed() {
			return ErrMaxChunksExceeded
		}
	}
	return nil
}

func packGenRaw(gen uint16, rawID uint16) int32 {
	return int32(uint32(gen)<<16 | uint32(rawID))
}
