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

func newTestProjectiles(capacity int) *Projectile {
	return NewProjectile(capacity, fx.FromInt(8), 64)
}

func TestProjectileLRUEvictsOldestOnFullAllocate(t *testing.T) {
	p := newTestProjectiles(2)

	oldest, _ := p.Allocate()
	oldestSlot, _ := p.SlotOf(oldest)
	p.Row(oldestSlot).SpawnFrame = 1

	newer, _ := p.Allocate()
	newerSlot, _ := p.SlotOf(newer)
	p.Row(newerSlot).SpawnFrame = 5

	// Table is full (capacity 2); this allocate must evict "oldest" (the
	// smallest SpawnFrame) rather than fail.
	third, err := p.Allocate()
	if err != nil {
		t.Fatalf("allocate under LRU policy should not fail: %v", err)
	}
	thirdSlot, _ := p.SlotOf(third)
	p.Row(thirdSlot).SpawnFrame = 9

	if _, ok := p.SlotOf(oldest); ok {
		t.Fatalf("oldest projectile should have been evicted")
	}
	if _, ok := p.SlotOf(newer); !ok {
		t.Fatalf("newer projectile should still be live")
	}
	if p.Count() != 2 {
		t.Fatalf("count = %d, want 2 (capacity never exceeded)", p.Count())
	}
}
