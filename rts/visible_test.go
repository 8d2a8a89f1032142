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

func TestVisibleQueryAutoDiscoversUnitAndProjectile(t *testing.T) {
	units := newTestUnits(4)
	projectiles := newTestProjectiles(4)

	uh, _ := units.Allocate()
	uSlot, _ := units.SlotOf(uh)
	units.Row(uSlot).Position = fx.Vec2(fx.FromInt(1), fx.FromInt(1))
	units.Row(uSlot).Owner = 3

	ph, _ := projectiles.Allocate()
	pSlot, _ := projectiles.SlotOf(ph)
	projectiles.Row(pSlot).Position = fx.Vec2(fx.FromInt(2), fx.FromInt(2))
	projectiles.Row(pSlot).Owner = 4

	q := NewVisibleQuery(units, projectiles)
	refs := q.Iter()
	if len(refs) != 2 {
		t.Fatalf("iter len = %d, want 2", len(refs))
	}
	if refs[0].Value.Owner != 3 || refs[1].Value.Owner != 4 {
		t.Fatalf("unexpected projection values: %+v", refs)
	}
}

func TestVisibleQueryCommitWritesBackThroughToUnit(t *testing.T) {
	units := newTestUnits(2)
	uh, _ := units.Allocate()

	q := NewVisibleQuery(units)
	refs := q.Iter()
	refs[0].Value.Owner = 9
	refs[0].Commit()

	slot, _ := units.SlotOf(uh)
	if units.Row(slot).Owner != 9 {
		t.Fatalf("commit did not write through to Unit's own storage: got %d", units.Row(slot).Owner)
	}
}
