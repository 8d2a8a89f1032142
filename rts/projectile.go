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

// ProjectileTableID identifies the Projectile schema.
const ProjectileTableID uint16 = 2

// ProjectileRow is one in-flight projectile. SpawnFrame is the eviction key
// under the table's LRU policy: when a full Projectile table needs a free
// slot, the projectile with the smallest SpawnFrame (the oldest) is evicted,
// modeling "never stall gameplay waiting for a slot; drop the oldest shot
// instead" (spec.md §4.1 KindSpatialLRU).
type ProjectileRow struct {
	Position   fx.FxVec2
	Velocity   fx.FxVec2
	Owner      int32
	SpawnFrame int32
}

var projectileFingerprint = table.ComputeSchemaFingerprint("Projectile", []table.FieldDesc{
	{Name: "Position", Type: "FxVec2"},
	{Name: "Velocity", Type: "FxVec2"},
	{Name: "Owner", Type: "int32"},
	{Name: "SpawnFrame", Type: "int32"},
})

// Projectile is the LRU-evicting spatial schema for in-flight shots.
type Projectile struct {
	core *table.Core
	rows []ProjectileRow
}

// NewProjectile builds an empty Projectile table. Allocate on a full table
// evicts the oldest live projectile rather than failing.
func NewProjectile(capacity int, cellSize fx.Fx, gridSize int) *Projectile {
	p := &Projectile{rows: make([]ProjectileRow, capacity)}
	p.core = table.NewCore(ProjectileTableID, p, table.Config{
		Capacity:    capacity,
		Kind:        table.KindSpatialLRU,
		CellSize:    cellSize,
		GridSize:    gridSize,
		Position:    func(slot int) fx.FxVec2 { return p.rows[slot].Position },
		EvictionKey: func(slot int) int64 { return int64(p.rows[slot].SpawnFrame) },
	})
	return p
}

func (p *Projectile) Core() *table.Core                        { return p.core }
func (p *Projectile) Allocate() (handle.Handle, error)          { return p.core.Allocate() }
func (p *Projectile) Free(h handle.Handle)                      { p.core.Free(h) }
func (p *Projectile) Count() int                                { return p.core.Count() }
func (p *Projectile) Version() uint32                           { return p.core.Version() }
func (p *Projectile) Row(slot int) *ProjectileRow               { return &p.rows[slot] }
func (p *Projectile) Position(slot int) fx.FxVec2                { return p.rows[slot].Position }
func (p *Projectile) SpatialSort() error                        { return p.core.SpatialSort() }

func (p *Projectile) SlotOf(h handle.Handle) (int, bool) {
	slot := p.core.GetSlot(h)
	if slot < 0 {
		return 0, false
	}
	return int(slot), true
}

func (p *Projectile) QueryRadius(center fx.FxVec2, radius fx.Fx) *table.RegionIter {
	return p.core.Grid.QueryRadius(p.Position, center, radius)
}

// --- world.Table ---

func (p *Projectile) TableID() uint16            { return ProjectileTableID }
func (p *Projectile) Name() string                { return "Projectile" }
func (p *Projectile) SchemaFingerprint() uint64    { return projectileFingerprint }
func (p *Projectile) Reset()                      { p.core.Reset() }
func (p *Projectile) SlabSize() int               { return p.core.SlabSize() }
func (p *Projectile) MetaSize() int               { return p.core.MetaSize() }
func (p *Projectile) SaveTo(w io.Writer) error     { return p.core.SaveTo(w) }
func (p *Projectile) LoadFrom(r io.Reader) error   { return p.core.LoadFrom(r) }
func (p *Projectile) SaveMetaTo(w io.Writer) error { return p.core.SaveMetaTo(w) }
func (p *Projectile) LoadMetaFrom(r io.Reader) error {
	return p.core.LoadMetaFrom(r)
}
func (p *Projectile) RecomputeAll()            {} // no computed columns
func (p *Projectile) ComputeTableHash() uint64 { return p.core.ComputeTableHash() }

func (p *Projectile) DebugRows() []map[string]any {
	rows := make([]map[string]any, 0, p.core.Count())
	for s := 0; s < p.core.Count(); s++ {
		h := p.core.HandleForSlot(int32(s))
		row := p.rows[s]
		rows = append(rows, map[string]any{
			"slot":        s,
			"stable_id":   h.RawID(),
			"position":    row.Position,
			"velocity":    row.Velocity,
			"owner":       row.Owner,
			"spawn_frame": row.SpawnFrame,
		})
	}
	return rows
}

// --- table.Ops ---

func (p *Projectile) ClearSlot(slot int) { p.rows[slot] = ProjectileRow{} }
func (p *Projectile) CopySlot(dst, src int) { p.rows[dst] = p.rows[src] }

func (p *Projectile) HashSlot(h hash.Hash64, slot int) {
	row := p.rows[slot]
	hashFx(h, row.Position.X)
	hashFx(h, row.Position.Y)
	hashFx(h, row.Velocity.X)
	hashFx(h, row.Velocity.Y)
	hashI32(h, row.Owner)
	hashI32(h, row.SpawnFrame)
}

// projectileAuthBytes: Position(16) + Velocity(16) + Owner(4) + SpawnFrame(4).
const projectileAuthBytes = 16 + 16 + 4 + 4

func (p *Projectile) AuthoritativeSize() int { return len(p.rows) * projectileAuthBytes }

func (p *Projectile) WriteAuthoritative(w io.Writer) error {
	cap := len(p.rows)

	buf := make([]byte, 16*cap)
	for i, row := range p.rows {
		putFx(buf[i*16:], row.Position.X)
		putFx(buf[i*16+8:], row.Position.Y)
	}
	if err := writeAll(w, buf); err != nil {
		return err
	}

	buf = make([]byte, 16*cap)
	for i, row := range p.rows {
		putFx(buf[i*16:], row.Velocity.X)
		putFx(buf[i*16+8:], row.Velocity.Y)
	}
	if err := writeAll(w, buf); err != nil {
		return err
	}

	buf = make([]byte, 4*cap)
	for i, row := range p.rows {
		putI32(buf[i*4:], row.Owner)
	}
	if err := writeAll(w, buf); err != nil {
		return err
	}

	buf = make([]byte, 4*cap)
	for i, row := range p.rows {
		putI32(buf[i*4:], row.SpawnFrame)
	}
	return writeAll(w, buf)
}

func (p *Projectile) ReadAuthoritative(r io.Reader) error {
	cap := len(p.rows)

	buf := make([]byte, 16*cap)
	if err := readFull(r, buf); err != nil {
		return err
	}
	for i := range p.rows {
		p.rows[i].Position.X = getFx(buf[i*16:])
		p.rows[i].Position.Y = getFx(buf[i*16+8:])
	}

	buf = make([]byte, 16*cap)
	if err := readFull(r, buf); err != nil {
		return err
	}
	for i := range p.rows {
		p.rows[i].Velocity.X = getFx(buf[i*16:])
		p.rows[i].Velocity.Y = getFx(buf[i*16+8:])
	}

	buf = make([]byte, 4*cap)
	if err := readFull(r, buf); err != nil {
		return err
	}
	for i := range p.rows {
		p.rows[i].Owner = getI32(buf[i*4:])
	}

	buf = make([]byte, 4*cap)
	if err := readFull(r, buf); err != nil {
		return err
	}
	for i := range p.rows {
		p.rows[i].SpawnFrame = getI32(buf[i*4:])
	}
	return nil
}

func (p *Projectile) RecomputeSlot(slot int) {}

// --- query.Candidate ---

func (p *Projectile) HandleAt(slot int) handle.Handle { return p.core.HandleForSlot(int32(slot)) }
func (p *Projectile) RowPtr(slot int) any             { return &p.rows[slot] }
