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

// Package world aggregates every schema table into one dispatchable unit:
// reset, snapshot, state hash, and debug dump all walk the table set in a
// fixed table_id order so the operations stay deterministic across runs.
package world

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"io"
	"sort"

	"github.com/fieldglass/simcore/table"
)

// Table is the surface each schema exposes so World can dispatch across
// heterogeneous schemas without knowing their column types.
type Table interface {
	TableID() uint16
	Name() string
	// SchemaFingerprint is the FNV-1a hash of {name, (field_name, field_type,
	// array_length) list}; a reader refuses a snapshot whose embedded
	// fingerprint disagrees with this table's own (spec.md §6).
	SchemaFingerprint() uint64
	Reset()
	SaveTo(w io.Writer) error
	LoadFrom(r io.Reader) error
	SlabSize() int
	SaveMetaTo(w io.Writer) error
	LoadMetaFrom(r io.Reader) error
	MetaSize() int
	RecomputeAll()
	ComputeTableHash() uint64
	DebugRows() []map[string]any
}

// World holds one table per schema and dispatches by table_id, mirroring
// the teacher's database (a name-keyed map of tables) narrowed to a fixed,
// build-time-declared set: schemas never come and go at runtime here.
type World struct {
	tables map[uint16]Table
	order  []uint16 // table_id ascending, fixed after Register
}

// New creates an empty World. Callers register every schema's table via
// Register before the world is used.
func New() *World {
	return &World{tables: make(map[uint16]Table)}
}

// Register adds a schema's table to the dispatch map. Panics on a
// duplicate table_id: that is a build-time schema declaration bug, not a
// runtime condition a host should recover from.
func (w *World) Register(t Table) {
	id := t.TableID()
	if _, exists := w.tables[id]; exists {
		panic(fmt.Sprintf("world: table_id %d already registered", id))
	}
	w.tables[id] = t
	w.order = append(w.order, id)
	sort.Slice(w.order, func(i, j int) bool { return w.order[i] < w.order[j] })
}

// Table returns the table registered under id, or nil if none.
func (w *World) Table(id uint16) Table {
	return w.tables[id]
}

// Reset clears every table back to empty (re-running auto-allocation for
// auto-allocating singletons).
func (w *World) Reset() {
	for _, id := range w.order {
		w.tables[id].Reset()
	}
}

// SaveTo writes every table's (fingerprint, slab, meta) triple in table_id
// order: the 8-byte schema fingerprint precedes the slab spec.md §6
// describes so a reader can refuse a mismatched snapshot before touching
// any column bytes.
func (w *World) SaveTo(out io.Writer) error {
	for _, id := range w.order {
		t := w.tables[id]
		if err := writeFingerprint(out, t.SchemaFingerprint()); err != nil {
			return fmt.Errorf("world: save table %d (%s) fingerprint: %w", id, t.Name(), err)
		}
		if err := t.SaveTo(out); err != nil {
			return fmt.Errorf("world: save table %d (%s) slab: %w", id, t.Name(), err)
		}
		if err := t.SaveMetaTo(out); err != nil {
			return fmt.Errorf("world: save table %d (%s) meta: %w", id, t.Name(), err)
		}
	}
	return nil
}

// LoadFrom reads back what SaveTo wrote. Per spec.md §7, a load mismatch
// (schema fingerprint or length) is fatal and the world "remains in its
// prior state" — so LoadFrom buffers the whole snapshot and validates every
// table's fingerprint and region length in a first pass before mutating
// any table in a second pass. A table.ErrSchemaMismatch or a short read
// aborts before anything changes.
func (w *World) LoadFrom(in io.Reader) error {
	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("world: read snapshot: %w", err)
	}

	offsets := make([]int, len(w.order))
	off := 0
	for i, id := range w.order {
		t := w.tables[id]
		offsets[i] = off
		regionLen := 8 + t.SlabSize() + t.MetaSize()
		if off+regionLen > len(data) {
			return fmt.Errorf("world: table %d (%s): truncated snapshot", id, t.Name())
		}
		fp := binary.LittleEndian.Uint64(data[off : off+8])
		if fp != t.SchemaFingerprint() {
			return fmt.Errorf("world: table %d (%s): %w", id, t.Name(), table.ErrSchemaMismatch)
		}
		off += regionLen
	}

	for i, id := range w.order {
		t := w.tables[id]
		r := bytes.NewReader(data[offsets[i]+8:])
		if err := t.LoadFrom(r); err != nil {
			return fmt.Errorf("world: load table %d (%s) slab: %w", id, t.Name(), err)
		}
		if err := t.LoadMetaFrom(r); err != nil {
			return fmt.Errorf("world: load table %d (%s) meta: %w", id, t.Name(), err)
		}
		t.RecomputeAll()
	}
	return nil
}

func writeFingerprint(w io.Writer, fp uint64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], fp)
	_, err := w.Write(buf[:])
	return err
}

// ComputeStateHash combines every table's own FNV-1a rollup into one value
// by feeding each table's 64-bit hash, in table_id order, into a second
// FNV-1a accumulator (spec.md §4.6).
func (w *World) ComputeStateHash() uint64 {
	h := fnv.New64a()
	var buf [8]byte
	for _, id := range w.order {
		th := w.tables[id].ComputeTableHash()
		for i := 0; i < 8; i++ {
			buf[i] = byte(th >> (8 * i))
		}
		h.Write(buf[:])
	}
	return h.Sum64()
}

// DebugDump is the decoded shape export.go's JSON encoder walks: one entry
// per table, each holding its live rows' debug objects.
type DebugDump struct {
	Tables map[string][]map[string]any
}

// ExportDebug builds the debug-dump structure (spec.md §6): one key per
// table name, one object per live row, computed fields present but not
// hashable. JSON encoding itself lives in export.go.
func (w *World) ExportDebug() DebugDump {
	dump := DebugDump{Tables: make(map[string][]map[string]any, len(w.order))}
	for _, id := range w.order {
		t := w.tables[id]
		dump.Tables[t.Name()] = t.DebugRows()
	}
	return dump
}
