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
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/fieldglass/simcore/derived"
	"github.com/fieldglass/simcore/rts"
	"github.com/fieldglass/simcore/sim"
	"github.com/fieldglass/simcore/snapshot"
	"github.com/fieldglass/simcore/world"
)

// maxPlayers bounds the demo host's input ring buffer; a real game client
// would size this to its own lobby limit.
const maxPlayers = 8

// Host bundles a world built from this package's real schemas with the
// tick driver that runs over it, the same grouping memcp's Repl closes
// over a storage.Database. Only the rest of cmd/simrepl knows about
// readline, websockets, and fsnotify; Host itself is plain engine plumbing
// a non-interactive caller (a future headless replay tool, a test) could
// drive just as well.
type Host struct {
	world       *world.World
	units       *rts.Unit
	projectiles *rts.Projectile
	match       *rts.MatchState
	movement    *rts.MovementSystem
	combat      *rts.CombatSystem
	driver      *sim.Driver[rts.PlayerCommand]
	inputs      *sim.InputRingBuffer[rts.PlayerCommand]
	runner      *derived.Runner
	threats     *rts.ThreatCache
}

func newHost(cfg Config) (*Host, error) {
	resolved, err := cfg.World.Resolve()
	if err != nil {
		return nil, fmt.Errorf("simrepl: resolve world config: %w", err)
	}

	units := rts.NewUnit(resolved.UnitCapacity, resolved.CellSize, resolved.GridSize)
	projectiles := rts.NewProjectile(resolved.ProjectileCapacity, resolved.CellSize, resolved.GridSize)
	match := rts.NewMatchState()

	w := world.New()
	w.Register(units)
	w.Register(projectiles)
	w.Register(match)

	threats := rts.NewThreatCache(units)
	runner := derived.NewRunner()
	runner.Register(threats, threats.Dependency())

	movement := rts.NewMovementSystem(units, match, cfg.unitSpeed())
	combat := rts.NewCombatSystem(units, match, projectiles, cfg.AttackDamage, cfg.ProjectileLifetime)

	inputs := sim.NewInputRingBuffer[rts.PlayerCommand](maxPlayers, 64)
	driver := sim.NewDriver[rts.PlayerCommand](runner, maxPlayers, 0, inputs)
	driver.Register(movement)
	driver.Register(combat)

	return &Host{
		world:       w,
		units:       units,
		projectiles: projectiles,
		match:       match,
		movement:    movement,
		combat:      combat,
		driver:      driver,
		inputs:      inputs,
		runner:      runner,
		threats:     threats,
	}, nil
}

// ApplyConfig re-tunes the running systems' live knobs from a reloaded
// Config, without rebuilding the world or losing any match state.
func (h *Host) ApplyConfig(cfg Config) {
	h.movement.SetSpeed(cfg.unitSpeed())
	h.combat.SetDamage(cfg.AttackDamage)
	h.combat.SetProjectileLifetime(cfg.ProjectileLifetime)
}

// SetInput records player's command for the frame the next Tick call will
// run, so the REPL's "tick" command always drives the driver with whatever
// the last queued commands were.
func (h *Host) SetInput(player int32, cmd rts.PlayerCommand) {
	h.inputs.Set(h.driver.Frame(), player, cmd)
}

// Tick advances the match n frames.
func (h *Host) Tick(n int) {
	for i := 0; i < n; i++ {
		h.driver.Tick()
	}
}

// Frame returns the frame number the next Tick call will run.
func (h *Host) Frame() int32 { return h.driver.Frame() }

// Hash returns the current deterministic state hash (spec.md §4.6).
func (h *Host) Hash() uint64 { return h.world.ComputeStateHash() }

// DumpJSON returns the current debug dump (spec.md §6) as indented JSON.
func (h *Host) DumpJSON() ([]byte, error) { return h.world.ExportDebugJSONBytes() }

// Save writes a snapshot of the current world state to path, through the
// same FileStore a deployed host would use for generation checkpoints.
func (h *Host) Save(path string) error {
	store := snapshot.NewFileStore(filepath.Dir(path))
	var buf bytes.Buffer
	if err := h.world.SaveTo(&buf); err != nil {
		return fmt.Errorf("simrepl: save: %w", err)
	}
	return store.WriteSnapshot(filepath.Base(path), &buf)
}

// Load replaces the current world state with the snapshot at path, and
// forces every derived cache to rebuild cold since the loaded table
// versions must not be compared against whatever was cached before load.
func (h *Host) Load(path string) error {
	store := snapshot.NewFileStore(filepath.Dir(path))
	r, err := store.ReadSnapshot(filepath.Base(path))
	if err != nil {
		return fmt.Errorf("simrepl: load: %w", err)
	}
	defer r.Close()
	if err := h.world.LoadFrom(r); err != nil {
		return fmt.Errorf("simrepl: load: %w", err)
	}
	h.runner.InvalidateAll()
	return nil
}
