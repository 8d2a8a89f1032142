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
	"hash"
	"io"
	"testing"

	"github.com/fieldglass/simcore/fx"
	"github.com/fieldglass/simcore/handle"
)

// testRows is a minimal Ops implementation used only by this package's
// tests: one int32 Health column, one FxVec2 Position column.
type testRows struct {
	core     *Core
	health   []int32
	position []fx.FxVec2
}

func newTestRows(capacity int, cellSize fx.Fx, gridSize int) *testRows {
	t := &testRows{
		health:   make([]int32, capacity),
		position: make([]fx.FxVec2, capacity),
	}
	t.core = NewCore(1, t, Config{
		Capacity: capacity,
		Kind:     KindSpatial,
		CellSize: cellSize,
		GridSize: gridSize,
		Position: func(slot int) fx.FxVec2 { return t.position[slot] },
	})
	return t
}

func (t *testRows) ClearSlot(slot int) {
	t.health[slot] = 0
	t.position[slot] = fx.FxVec2{}
}

func (t *testRows) CopySlot(dst, src int) {
	t.health[dst] = t.health[src]
	t.position[dst] = t.position[src]
}

func (t *testRows) HashSlot(h hash.Hash64, slot int) {}
func (t *testRows) WriteAuthoritative(w io.Writer) error { return nil }
func (t *testRows) ReadAuthoritative(r io.Reader) error  { return nil }
func (t *testRows) AuthoritativeSize() int               { return 0 }
func (t *testRows) RecomputeSlot(slot int)               {}

func TestS1AllocateFreeAllocate(t *testing.T) {
	rows := newTestRows(4, fx.FromInt(32), 256)

	h1, err := rows.core.Allocate()
	if err != nil {
		t.Fatalf("allocate h1: %v", err)
	}
	if h1.TableID() != 1 || h1.RawID() != 0 || h1.Generation() != 0 {
		t.Fatalf("h1 = %v, want (1,0,0)", h1)
	}

	rows.core.Free(h1)

	h2, err := rows.core.Allocate()
	if err != nil {
		t.Fatalf("allocate h2: %v", err)
	}
	if h2.TableID() != 1 || h2.RawID() != 0 || h2.Generation() != 1 {
		t.Fatalf("h2 = %v, want (1,0,1)", h2)
	}

	if slot := rows.core.GetSlot(h1); slot != -1 {
		t.Fatalf("get_slot(h1) = %d, want -1", slot)
	}
	if slot := rows.core.GetSlot(h2); slot != 0 {
		t.Fatalf("get_slot(h2) = %d, want 0", slot)
	}
}

func TestS2SwapPop(t *testing.T) {
	rows := newTestRows(4, fx.FromInt(32), 256)

	a, _ := rows.core.Allocate()
	b, _ := rows.core.Allocate()
	c, _ := rows.core.Allocate()

	rows.health[rows.core.GetSlot(a)] = 10
	rows.health[rows.core.GetSlot(b)] = 20
	rows.health[rows.core.GetSlot(c)] = 30

	rows.core.Free(b)

	if rows.core.Count() != 2 {
		t.Fatalf("count = %d, want 2", rows.core.Count())
	}
	if rows.health[0] != 10 {
		t.Fatalf("Health[0] = %d, want 10", rows.health[0])
	}
	if rows.health[1] != 30 {
		t.Fatalf("Health[1] = %d, want 30", rows.health[1])
	}
	if slot := rows.core.GetSlot(c); slot != 1 {
		t.Fatalf("get_slot(c) = %d, want 1", slot)
	}
}

func TestS6StaleHandle(t *testing.T) {
	rows := newTestRows(4, fx.FromInt(32), 256)

	h, _ := rows.core.Allocate()
	rows.core.Free(h)

	for i := 0; i < 65536; i++ {
		hh, err := rows.core.Allocate()
		if err != nil {
			t.Fatalf("allocate %d: %v", i, err)
		}
		rows.core.Free(hh)
	}

	if slot := rows.core.GetSlot(h); slot != -1 {
		t.Fatalf("get_slot(h) = %d, want -1 (generation must differ)", slot)
	}
}

func TestSlotContiguity(t *testing.T) {
	rows := newTestRows(8, fx.FromInt(32), 256)
	var handles []handle.Handle
	for i := 0; i < 5; i++ {
		h, _ := rows.core.Allocate()
		handles = append(handles, h)
	}
	rows.core.Free(handles[1])
	rows.core.Free(handles[3])

	count := rows.core.Count()
	for s := 0; s < rows.core.Capacity(); s++ {
		live := s < count
		packed := rows.core.slotToPacked[s]
		if live && packed < 0 {
			t.Fatalf("slot %d should be live but slotToPacked is %d", s, packed)
		}
		if !live && packed >= 0 {
			t.Fatalf("slot %d should not be live but slotToPacked is %d", s, packed)
		}
	}
}

func TestVersionDiscipline(t *testing.T) {
	rows := newTestRows(4, fx.FromInt(32), 256)
	v0 := rows.core.Version()
	h, _ := rows.core.Allocate()
	v1 := rows.core.Version()
	if v1 == v0 {
		t.Fatalf("allocate did not bump version")
	}
	rows.core.SpatialSort()
	v2 := rows.core.Version()
	if v2 != v1 {
		t.Fatalf("spatial_sort must not bump version: %d -> %d", v1, v2)
	}
	rows.core.Free(h)
	v3 := rows.core.Version()
	if v3 == v2 {
		t.Fatalf("free did not bump version")
	}
}

func TestCapacityExhausted(t *testing.T) {
	rows := newTestRows(1, fx.FromInt(32), 256)
	if _, err := rows.core.Allocate(); err != nil {
		t.Fatalf("first allocate: %v", err)
	}
	if _, err := rows.core.Allocate(); err != ErrCapacityExhausted {
		t.Fatalf("second allocate: got %v, want ErrCapacityExhausted", err)
	}
}

func TestSpatialLRUEviction(t *testing.T) {
	var spawn []int32
	rows := &testRows{health: make([]int32, 2), position: make([]fx.FxVec2, 2)}
	rows.core = NewCore(2, rows, Config{
		Capacity:    2,
		Kind:        KindSpatialLRU,
		CellSize:    fx.FromInt(32),
		GridSize:    256,
		Position:    func(slot int) fx.FxVec2 { return rows.position[slot] },
		EvictionKey: func(slot int) int64 { return int64(spawn[slot]) },
	})
	spawn = []int32{0, 0}

	h1, _ := rows.core.Allocate()
	spawn[rows.core.GetSlot(h1)] = 1
	h2, _ := rows.core.Allocate()
	spawn[rows.core.GetSlot(h2)] = 2

	h3, err := rows.core.Allocate()
	if err != nil {
		t.Fatalf("lru allocate: %v", err)
	}
	spawn[rows.core.GetSlot(h3)] = 3

	if rows.core.GetSlot(h1) != -1 {
		t.Fatalf("oldest entry h1 should have been evicted")
	}
	if rows.core.GetSlot(h2) == -1 {
		t.Fatalf("h2 should still be live")
	}
	if rows.core.GetSlot(h3) == -1 {
		t.Fatalf("h3 should be live")
	}
}
