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

// Package query implements the multi-table union query: a virtual
// "one-of-many-tables" view over every concrete schema that shares a common
// field projection, without collapsing those schemas into one archetype or
// allowing their storage to migrate at runtime (spec.md §4.3, Non-goals).
//
// Each participant keeps its own Core and column layout; Union only ever
// holds closures a participant's schema wrapper supplies, mirroring the
// world package's table-agnostic dispatch one level down, at field
// granularity instead of table granularity.
package query

import (
	"github.com/fieldglass/simcore/handle"
)

// Participant is what a concrete schema's table wrapper registers with a
// Union: enough to iterate its live rows, project them into T, write a
// mutated T back, and free a row by handle.
type Participant[T any] struct {
	TableID  uint16
	Count    func() int
	HandleAt func(slot int) handle.Handle
	// SlotOf resolves a handle to its live slot in O(1), backed directly by
	// the participant's table.Core.GetSlot; ok is false for a stale or
	// out-of-range handle.
	SlotOf  func(h handle.Handle) (slot int, ok bool)
	Project func(slot int) T
	Commit  func(slot int, v T)
	Free    func(h handle.Handle)
}

// Union is a query over a fixed, build-time-declared set of participant
// tables that all expose the same projection T. Participants are either
// registered explicitly (Register) or found by AutoDiscover.
type Union[T any] struct {
	participants []Participant[T]
	byTableID    map[uint16]int // index into participants
}

// NewUnion creates an empty Union. Register participants before use.
func NewUnion[T any]() *Union[T] {
	return &Union[T]{byTableID: make(map[uint16]int)}
}

// Register adds one participant in declaration order; order is significant
// since Iter visits participants in that order, then slot order (spec.md
// §4.3).
func (u *Union[T]) Register(p Participant[T]) {
	u.byTableID[p.TableID] = len(u.participants)
	u.participants = append(u.participants, p)
}

// UnionRef is a projected view of one live row from one participant table.
// Value holds a snapshot of the projected fields; mutate it and call Commit
// to write the change back through the owning participant — Go has no
// portable way to hand out a live reference into an arbitrary schema's
// column slice across table boundaries, so Union models "&mut fi" as an
// explicit read-modify-write instead of a true reference, which is a
// deliberate simplification (see DESIGN.md).
type UnionRef[T any] struct {
	Value T

	tableID uint16
	slot    int
	h       handle.Handle
	commit  func(slot int, v T)
	free    func(h handle.Handle)
}

// Handle returns the stable handle identifying this row.
func (r UnionRef[T]) Handle() handle.Handle { return r.h }

// Is reports whether this row belongs to the table identified by tableID.
func (r UnionRef[T]) Is(tableID uint16) bool { return r.tableID == tableID }

// Commit writes Value back into the owning participant's columns.
func (r UnionRef[T]) Commit() { r.commit(r.slot, r.Value) }

// Free dispatches through the owning participant, the same as calling
// world's table_id -> table dispatch directly.
func (r UnionRef[T]) Free() { r.free(r.h) }

// Iter yields one UnionRef per live row across every participant, in
// participant-declaration order then slot order. Unlike the spatial grid's
// iterators this is not zero-allocation: spec.md only mandates that
// property for §4.2's region iterators.
func (u *Union[T]) Iter() []UnionRef[T] {
	total := 0
	for _, p := range u.participants {
		total += p.Count()
	}
	out := make([]UnionRef[T], 0, total)
	for _, p := range u.participants {
		p := p
		n := p.Count()
		for s := 0; s < n; s++ {
			out = append(out, UnionRef[T]{
				Value:   p.Project(s),
				tableID: p.TableID,
				slot:    s,
				h:       p.HandleAt(s),
				commit:  p.Commit,
				free:    p.Free,
			})
		}
	}
	return out
}

// TableChunk is one participant's live rows, materialized into a single
// contiguous []T so a caller can run a plain index loop over Values instead
// of Iter's flat per-row sequence of individually-allocated UnionRefs. A
// per-element accessor closure (the first draft of this type) still pays a
// function-call indirection per row and defeats the loop-vectorization
// spec.md §4.3 asks for; a real slice does not.
type TableChunk[T any] struct {
	TableID uint16
	Values  []T
}

// ByTable yields per-participant chunks instead of a flattened row stream.
// Each chunk's Values is a freshly materialized copy, since no participant's
// backing storage is laid out as a contiguous []T across its own columns
// (see DESIGN.md's query section) — Project assembles T field-by-field
// regardless of table. The copy is what makes the result an actual
// contiguous span rather than a second closure-based accessor.
func (u *Union[T]) ByTable() []TableChunk[T] {
	out := make([]TableChunk[T], 0, len(u.participants))
	for _, p := range u.participants {
		n := p.Count()
		values := make([]T, n)
		for i := 0; i < n; i++ {
			values[i] = p.Project(i)
		}
		out = append(out, TableChunk[T]{
			TableID: p.TableID,
			Values:  values,
		})
	}
	return out
}

// TryGet resolves h through the participant whose TableID matches
// h.TableID(), in O(1) via that participant's own slot map, or reports
// ok=false if h names a table this Union has no participant for, or h is
// stale.
func (u *Union[T]) TryGet(h handle.Handle) (ref UnionRef[T], ok bool) {
	idx, known := u.byTableID[h.TableID()]
	if !known {
		return UnionRef[T]{}, false
	}
	p := u.participants[idx]
	slot, found := p.SlotOf(h)
	if !found {
		return UnionRef[T]{}, false
	}
	return UnionRef[T]{
		Value:   p.Project(slot),
		tableID: p.TableID,
		slot:    slot,
		h:       h,
		commit:  p.Commit,
		free:    p.Free,
	}, true
}
