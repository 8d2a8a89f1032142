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
package rts

import (
	"hash"
	"io"

	"github.com/fieldglass/simcore/table"
)

// MatchStateTableID identifies the singleton MatchState schema.
const MatchStateTableID uint16 = 3

// MatchPhase is the match's coarse lifecycle state; systems guard their
// per-tick work on it (spec.md §4.5).
type MatchPhase int32

const (
	PhaseLobby MatchPhase = iota
	PhasePlaying
	PhaseEnded
)

// MatchStateRow is the single row of match-wide bookkeeping: no Position,
// so MatchState never participates in a spatial grid.
type MatchStateRow struct {
	Phase  MatchPhase
	Frame  int32
	Winner int32 // -1 until PhaseEnded
}

var matchStateFingerprint = table.ComputeSchemaFingerprint("MatchState", []table.FieldDesc{
	{Name: "Phase", Type: "int32"},
	{Name: "Frame", Type: "int32"},
	{Name: "Winner", Type: "int32"},
})

// MatchState is a data-only, auto-allocating singleton: capacity 1, and
// Reset immediately re-allocates its one row so a fresh match always has a
// live MatchState handle (spec.md §4.1 KindSingleton/AutoAllocate).
type MatchState struct {
	core *table.Core
	rows []MatchStateRow
}

func NewMatchState() *MatchState {
	m := &MatchState{rows: make([]MatchStateRow, 1)}
	m.core = table.NewCore(MatchStateTableID, m, table.Config{
		Capacity:     1,
		Kind:         table.KindSingleton,
		AutoAllocate: true,
	})
	return m
}

func (m *MatchState) Core() *table.Core { return m.core }
func (m *MatchState) Version() uint32   { return m.core.Version() }

// Row returns the single live row for direct mutation.
func (m *MatchState) Row() *MatchStateRow { return &m.rows[0] }

// --- world.Table ---

func (m *MatchState) TableID() uint16           { return MatchStateTableID }
func (m *MatchState) Name() string              { return "MatchState" }
func (m *MatchState) SchemaFingerprint() uint64  { return matchStateFingerprint }
func (m *MatchState) Reset()                    { m.core.Reset() }
func (m *MatchState) SlabSize() int             { return m.core.SlabSize() }
func (m *MatchState) MetaSize() int             { return m.core.MetaSize() }
func (m *MatchState) SaveTo(w io.Writer) error   { return m.core.SaveTo(w) }
func (m *MatchState) LoadFrom(r io.Reader) error { return m.core.LoadFrom(r) }
func (m *MatchState) SaveMetaTo(w io.Writer) error {
	return m.core.SaveMetaTo(w)
}
func (m *MatchState) LoadMetaFrom(r io.Reader) error {
	return m.core.LoadMetaFrom(r)
}
func (m *MatchState) RecomputeAll()            {}
func (m *MatchState) ComputeTableHash() uint64 { return m.core.ComputeTableHash() }

func (m *MatchState) DebugRows() []map[string]any {
	if m.core.Count() == 0 {
		return nil
	}
	row := m.rows[0]
	return []map[string]any{{
		"slot":   0,
		"phase":  row.Phase,
		"frame":  row.Frame,
		"winner": row.Winner,
	}}
}

// --- table.Ops ---

func (m *MatchState) ClearSlot(slot int) {
	m.rows[slot] = MatchStateRow{Phase: PhaseLobby, Winner: -1}
}

func (m *MatchState) CopySlot(dst, src int) { m.rows[dst] = m.rows[src] }

func (m *MatchState) HashSlot(h hash.Hash64, slot int) {
	row := m.rows[slot]
	hashI32(h, int32(row.Phase))
	hashI32(h, row.Frame)
	hashI32(h, row.Winner)
}

const matchStateAuthBytes = 4 + 4 + 4

func (m *MatchState) AuthoritativeSize() int { return len(m.rows) * matchStateAuthBytes }

func (m *MatchState) WriteAuthoritative(w io.Writer) error {
	cap := len(m.rows)
	buf := make([]byte, matchStateAuthBytes*cap)
	for i, row := range m.rows {
		off := i * matchStateAuthBytes
		putI32(buf[off:], int32(row.Phase))
		putI32(buf[off+4:], row.Frame)
		putI32(buf[off+8:], row.Winner)
	}
	return writeAll(w, buf)
}

func (m *MatchState) ReadAuthoritative(r io.Reader) error {
	cap := len(m.rows)
	buf := make([]byte, matchStateAuthBytes*cap)
	if err := readFull(r, buf); err != nil {
		return err
	}
	for i := range m.rows {
		off := i * matchStateAuthBytes
		m.rows[i].Phase = MatchPhase(getI32(buf[off:]))
		m.rows[i].Frame = getI32(buf[off+4:])
		m.rows[i].Winner = getI32(buf[off+8:])
	}
	return nil
}

func (m *MatchState) RecomputeSlot(slot int) {}
