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

	"github.com/fieldglass/simcore/fx"
	"github.com/fieldglass/simcore/handle"
	"github.com/fieldglass/simcore/table"
)

// UnitTableID identifies the Unit schema in every world built from this
// package. Table ids are build-time fixed, never assigned at runtime.
const UnitTableID uint16 = 1

// UnitRow is one unit's full row. Rows are stored array-of-structs, not as
// separate column slices: query.Candidate's AutoDiscover projection needs a
// genuinely addressable pointer into live storage so its reflection-based
// Commit actually writes through (see DESIGN.md); the wire/hash format
// still walks fields in declared order, independent of this in-memory
// layout choice.
type UnitRow struct {
	Position  fx.FxVec2
	Health    int32
	Owner     int32
	Waypoints [4]fx.FxVec2
	Garrison  handle.Handle

	// ThreatScore is computed from Health by RecomputeSlot; it is never
	// serialized or hashed.
	ThreatScore int32
}

var unitFingerprint = table.ComputeSchemaFingerprint("Unit", []table.FieldDesc{
	{Name: "Position", Type: "FxVec2"},
	{Name: "Health", Type: "int32"},
	{Name: "Owner", Type: "int32"},
	{Name: "Waypoints", Type: "FxVec2", ArrayLen: 4},
	{Name: "Garrison", Type: "Handle"},
})

// Unit is the spatial schema for a player-controlled combat unit: position,
// health, owning player, a fixed path of waypoints, and a handle to the
// transport it currently rides in (Invalid when not garrisoned).
type Unit struct {
	core *table.Core
	rows []UnitRow
}

// NewUnit builds an empty Unit table of the given capacity, with a uniform
// grid of gridSize x gridSize cells of cellSize world units each.
func NewUnit(capacity int, cellSize fx.Fx, gridSize int) *Unit {
	u := &Unit{rows: make([]UnitRow, capacity)}
	u.core = table.NewCore(UnitTableID, u, table.Config{
		Capacity: capacity,
		Kind:     table.KindSpatial,
		CellSize: cellSize,
		GridSize: gridSize,
		Position: func(slot int) fx.FxVec2 { return u.rows[slot].Position },
	})
	return u
}

// Core exposes the embedded generational slot table for callers that need
// it directly (derived.Dependency.Version, spatial queries).
func (u *Unit) Core() *table.Core { return u.core }

func (u *Unit) Allocate() (handle.Handle, error) { return u.core.Allocate() }
func (u *Unit) Free(h handle.Handle)             { u.core.Free(h) }
func (u *Unit) Count() int                       { return u.core.Count() }
func (u *Unit) Version() uint32                  { return u.core.Version() }

// SlotOf resolves h to its live slot, or reports it stale/out of range.
func (u *Unit) SlotOf(h handle.Handle) (int, bool) {
	slot := u.core.GetSlot(h)
	if slot < 0 {
		return 0, false
	}
	return int(slot), true
}

// Row returns a pointer to slot's row for direct in-place mutation by
// gameplay systems; it aliases live storage, unlike a union query's
// projected UnionRef.Value copy.
func (u *Unit) Row(slot int) *UnitRow { return &u.rows[slot] }

// QueryRadius iterates every live unit within radius of center, in cell
// row-major order and then the grid's within-cell sorted order (spec.md
// §4.2). The iterator is allocated once per query; stepping it allocates
// nothing.
func (u *Unit) QueryRadius(center fx.FxVec2, radius fx.Fx) *table.RegionIter {
	return u.core.Grid.QueryRadius(u.Position, center, radius)
}

func (u *Unit) Position(slot int) fx.FxVec2 { return u.rows[slot].Position }

// SpatialSort rebuilds the grid from current positions; call once per tick
// after any system that moves units has run.
func (u *Unit) SpatialSort() error { return u.core.SpatialSort() }

// --- world.Table ---

func (u *Unit) TableID() uint16          { return UnitTableID }
func (u *Unit) Name() string             { return "Unit" }
func (u *Unit) SchemaFingerprint() uint64 { return unitFingerprint }
func (u *Unit) Reset()                   { u.core.Reset() }
func (u *Unit) SlabSize() int            { return u.core.SlabSize() }
func (u *Unit) MetaSize() int            { return u.core.MetaSize() }
func (u *Unit) SaveTo(w io.Writer) error { return u.core.SaveTo(w) }
func (u *Unit) LoadFrom(r io.Reader) error {
	return u.core.LoadFrom(r)
}
func (u *Unit) SaveMetaTo(w io.Writer) error { return u.core.SaveMetaTo(w) }
func (u *Unit) LoadMetaFrom(r io.Reader) error {
	return u.core.LoadMetaFrom(r)
}
func (u *Unit) RecomputeAll()           { u.core.RecomputeAll() }
func (u *Unit) ComputeTableHash() uint64 { return u.core.ComputeTableHash() }

func (u *Unit) DebugRows() []map[string]any {
	rows := make([]map[string]any, 0, u.core.Count())
	for s := 0; s < u.core.Count(); s++ {
		h := u.core.HandleForSlot(int32(s))
		row := u.rows[s]
		waypoints := make([]fx.FxVec2, len(row.Waypoints))
		copy(waypoints, row.Waypoints[:])
		rows = append(rows, map[string]any{
			"slot":         s,
			"stable_id":    h.RawID(),
			"position":     row.Position,
			"health":       row.Health,
			"owner":        row.Owner,
			"waypoints":    waypoints,
			"garrison":     debugHandle(row.Garrison),
			"threat_score": row.ThreatScore,
		})
	}
	return rows
}

// --- table.Ops ---

func (u *Unit) ClearSlot(slot int) {
	u.rows[slot] = UnitRow{
		Health:   100,
		Owner:    -1,
		Garrison: handle.Invalid,
	}
}

func (u *Unit) CopySlot(dst, src int) { u.rows[dst] = u.rows[src] }

func (u *Unit) HashSlot(h hash.Hash64, slot int) {
	row := u.rows[slot]
	hashFx(h, row.Position.X)
	hashFx(h, row.Position.Y)
	hashI32(h, row.Health)
	hashI32(h, row.Owner)
	for i := range row.Waypoints {
		hashFx(h, row.Waypoints[i].X)
		hashFx(h, row.Waypoints[i].Y)
	}
	hashHandle(h, row.Garrison)
}

// unitAuthBytes is the per-row byte length of every non-computed column:
// Position (16) + Health (4) + Owner (4) + 4 Waypoints (64) + Garrison (8).
const unitAuthBytes = 16 + 4 + 4 + 64 + 8

func (u *Unit) AuthoritativeSize() int { return len(u.rows) * unitAuthBytes }

func (u *Unit) WriteAuthoritative(w io.Writer) error {
	cap := len(u.rows)

	buf := make([]byte, 16*cap)
	for i, row := range u.rows {
		putFx(buf[i*16:], row.Position.X)
		putFx(buf[i*16+8:], row.Position.Y)
	}
	if err := writeAll(w, buf); err != nil {
		return err
	}

	buf = make([]byte, 4*cap)
	for i, row := range u.rows {
		putI32(buf[i*4:], row.Health)
	}
	if err := writeAll(w, buf); err != nil {
		return err
	}

	buf = make([]byte, 4*cap)
	for i, row := range u.rows {
		putI32(buf[i*4:], row.Owner)
	}
	if err := writeAll(w, buf); err != nil {
		return err
	}

	buf = make([]byte, 64*cap)
	for i, row := range u.rows {
		for j, wp := range row.Waypoints {
			off := i*64 + j*16
			putFx(buf[off:], wp.X)
			putFx(buf[off+8:], wp.Y)
		}
	}
	if err := writeAll(w, buf); err != nil {
		return err
	}

	buf = make([]byte, 8*cap)
	for i, row := range u.rows {
		putHandle(buf[i*8:], row.Garrison)
	}
	return writeAll(w, buf)
}

func (u *Unit) ReadAuthoritative(r io.Reader) error {
	cap := len(u.rows)

	buf := make([]byte, 16*cap)
	if err := readFull(r, buf); err != nil {
		return err
	}
	for i := range u.rows {
		u.rows[i].Position.X = getFx(buf[i*16:])
		u.rows[i].Position.Y = getFx(buf[i*16+8:])
	}

	buf = make([]byte, 4*cap)
	if err := readFull(r, buf); err != nil {
		return err
	}
	for i := range u.rows {
		u.rows[i].Health = getI32(buf[i*4:])
	}

	buf = make([]byte, 4*cap)
	if err := readFull(r, buf); err != nil {
		return err
	}
	for i := range u.rows {
		u.rows[i].Owner = getI32(buf[i*4:])
	}

	buf = make([]byte, 64*cap)
	if err := readFull(r, buf); err != nil {
		return err
	}
	for i := range u.rows {
		for j := range u.rows[i].Waypoints {
			off := i*64 + j*16
			u.rows[i].Waypoints[j].X = getFx(buf[off:])
			u.rows[i].Waypoints[j].Y = getFx(buf[off+8:])
		}
	}

	buf = make([]byte, 8*cap)
	if err := readFull(r, buf); err != nil {
		return err
	}
	for i := range u.rows {
		u.rows[i].Garrison = getHandle(buf[i*8:])
	}
	return nil
}

func (u *Unit) RecomputeSlot(slot int) {
	u.rows[slot].ThreatScore = u.rows[slot].Health / 2
}

func debugHandle(h handle.Handle) map[string]any {
	return map[string]any{
		"table_id":   h.TableID(),
		"raw_id":     h.RawID(),
		"generation": h.Generation(),
	}
}

// --- query.Candidate (AutoDiscover eligibility) ---

func (u *Unit) HandleAt(slot int) handle.Handle { return u.core.HandleForSlot(int32(slot)) }
func (u *Unit) RowPtr(slot int) any             { return &u.rows[slot] }
