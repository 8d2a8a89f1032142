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
package main

import (
	"path/filepath"
	"testing"

	"github.com/fieldglass/simcore/rts"
)

func newTestHost(t *testing.T) *Host {
	t.Helper()
	h, err := newHost(defaultConfig())
	if err != nil {
		t.Fatalf("newHost: %v", err)
	}
	return h
}

func TestHostTickAdvancesFrame(t *testing.T) {
	h := newTestHost(t)
	if h.Frame() != 0 {
		t.Fatalf("initial frame = %d, want 0", h.Frame())
	}
	h.Tick(3)
	if h.Frame() != 3 {
		t.Fatalf("frame after Tick(3) = %d, want 3", h.Frame())
	}
}

func TestHostSaveLoadRoundTripPreservesHash(t *testing.T) {
	h := newTestHost(t)

	hUnit, err := h.units.Allocate()
	if err != nil {
		t.Fatalf("allocate unit: %v", err)
	}
	slot, _ := h.units.SlotOf(hUnit)
	h.units.Row(slot).Owner = 1
	h.units.RecomputeSlot(slot)
	h.Tick(2)

	preHash := h.Hash()

	path := filepath.Join(t.TempDir(), "gen-0001.snap")
	if err := h.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	h2 := newTestHost(t)
	if err := h2.Load(path); err != nil {
		t.Fatalf("load: %v", err)
	}
	if h2.Hash() != preHash {
		t.Fatalf("loaded hash = %d, want %d", h2.Hash(), preHash)
	}
}

func TestHostApplyConfigRetunesSystems(t *testing.T) {
	h := newTestHost(t)
	h.match.Row().Phase = rts.PhasePlaying

	attacker, err := h.units.Allocate()
	if err != nil {
		t.Fatalf("allocate attacker: %v", err)
	}
	attackerSlot, _ := h.units.SlotOf(attacker)
	h.units.Row(attackerSlot).Owner = 1

	victim, err := h.units.Allocate()
	if err != nil {
		t.Fatalf("allocate victim: %v", err)
	}
	victimSlot, _ := h.units.SlotOf(victim)
	h.units.Row(victimSlot).Owner = 2
	h.units.Row(victimSlot).Health = 10

	cfg := defaultConfig()
	cfg.AttackDamage = 1 // too weak to kill on its own
	h.ApplyConfig(cfg)

	h.SetInput(1, rts.PlayerCommand{HasAttack: true, AttackTarget: victim})
	h.Tick(1)
	if _, ok := h.units.SlotOf(victim); !ok {
		t.Fatalf("victim should have survived a damage=1 hit against health=10")
	}

	cfg.AttackDamage = 100 // lethal
	h.ApplyConfig(cfg)

	h.SetInput(1, rts.PlayerCommand{HasAttack: true, AttackTarget: victim})
	h.Tick(1)
	if _, ok := h.units.SlotOf(victim); ok {
		t.Fatalf("victim should have died once ApplyConfig raised damage to 100")
	}
}

func TestHostDumpJSONProducesNonEmptyOutput(t *testing.T) {
	h := newTestHost(t)
	data, err := h.DumpJSON()
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	if len(data) == 0 {
		t.Fatalf("dump JSON was empty")
	}
}
