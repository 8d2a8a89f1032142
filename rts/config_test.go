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
	"testing"

	"github.com/fieldglass/simcore/fx"
)

func TestWorldConfigResolveParsesSizes(t *testing.T) {
	c := WorldConfig{
		UnitCapacity:       "4Ki",
		ProjectileCapacity: "1Ki",
		CellSizeMeters:     3.5,
		GridSize:           256,
	}
	r, err := c.Resolve()
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if r.UnitCapacity != 4*1024 {
		t.Fatalf("unit_capacity = %d, want %d", r.UnitCapacity, 4*1024)
	}
	if r.ProjectileCapacity != 1024 {
		t.Fatalf("projectile_capacity = %d, want 1024", r.ProjectileCapacity)
	}
	if r.CellSize != fx.FromFloatLiteral(3.5) {
		t.Fatalf("cell_size = %v, want %v", r.CellSize, fx.FromFloatLiteral(3.5))
	}
}

func TestWorldConfigResolveRejectsBadSize(t *testing.T) {
	c := WorldConfig{UnitCapacity: "not-a-size", ProjectileCapacity: "1Ki"}
	if _, err := c.Resolve(); err == nil {
		t.Fatalf("expected an error for a malformed capacity string")
	}
}
