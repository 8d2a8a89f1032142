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
	"fmt"

	units "github.com/docker/go-units"

	"github.com/fieldglass/simcore/fx"
)

// WorldConfig is how a host authors a world's schema sizing: capacities as
// human-readable size strings ("4Ki" for 4096 rows) the same way memcp's
// command-line flags accept byte sizes, plus the spatial grid's physical
// dimensions as float64 design-time literals.
type WorldConfig struct {
	UnitCapacity       string
	ProjectileCapacity string
	CellSizeMeters     float64
	GridSize           int
	ChunkSizeCells     int
	MaxChunks          int
}

// Resolved is WorldConfig after its human-readable sizes have been parsed
// into the scalar types NewUnit/NewProjectile expect.
type Resolved struct {
	UnitCapacity       int
	ProjectileCapacity int
	CellSize           fx.Fx
	GridSize           int
	ChunkSizeCells     int
	MaxChunks          int
}

// Resolve parses c's size strings and converts its float64 literal into Fx.
// This is the one place a float crosses into Fx for an rts world: every
// per-tick path downstream only ever sees the resolved Fx value.
func (c WorldConfig) Resolve() (Resolved, error) {
	unitCap, err := units.RAMInBytes(c.UnitCapacity)
	if err != nil {
		return Resolved{}, fmt.Errorf("rts: unit_capacity %q: %w", c.UnitCapacity, err)
	}
	projCap, err := units.RAMInBytes(c.ProjectileCapacity)
	if err != nil {
		return Resolved{}, fmt.Errorf("rts: projectile_capacity %q: %w", c.ProjectileCapacity, err)
	}
	return Resolved{
		UnitCapacity:       int(unitCap),
		ProjectileCapacity: int(projCap),
		CellSize:           fx.FromFloatLiteral(c.CellSizeMeters),
		GridSize:           c.GridSize,
		ChunkSizeCells:     c.ChunkSizeCells,
		MaxChunks:          c.MaxChunks,
	}, nil
}
