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
	"github.com/fieldglass/simcore/fx"
	"github.com/fieldglass/simcore/handle"
	"github.com/fieldglass/simcore/sim"
)

// PlayerCommand is the per-player, per-frame input this package's systems
// read through sim.Context.GetInput. A host (cmd/simrepl, a real game
// client) is responsible for filling a sim.InputRingBuffer[PlayerCommand]
// before the frame it applies to is ticked.
type PlayerCommand struct {
	HasMove      bool
	MoveTarget   fx.FxVec2
	HasAttack    bool
	AttackTarget handle.Handle
}

// MovementSystem advances every unit toward its first waypoint at a fixed
// speed per tick, replacing that waypoint with a player's move command when
// one arrives this frame. It is a no-op outside PhasePlaying.
type MovementSystem struct {
	units *Unit
	match *MatchState
	speed fx.Fx
}

func NewMovementSystem(units *Unit, match *MatchState, speed fx.Fx) *MovementSystem {
	return &MovementSystem{units: units, match: match, speed: speed}
}

// SetSpeed changes the per-tick movement step for every future Tick call, so
// a host can re-tune it from a reloaded config without rebuilding the
// system (and losing its place in a sim.Driver's registration order).
func (s *MovementSystem) SetSpeed(speed fx.Fx) { s.speed = speed }

func (s *MovementSystem) Tick(ctx sim.Context[PlayerCommand]) {
	if s.match.Row().Phase != PhasePlaying {
		return
	}
	for slot := 0; slot < s.units.Count(); slot++ {
		row := s.units.Row(slot)
		cmd := ctx.GetInput(row.Owner)
		if cmd.HasMove {
			row.Waypoints[0] = cmd.MoveTarget
		}
		target := row.Waypoints[0]
		delta := target.Sub(row.Position)
		distSq := delta.LengthSq()
		if distSq == fx.FxZero {
			continue
		}
		stepSq := s.speed.Mul(s.speed)
		if distSq.Cmp(stepSq) <= 0 {
			row.Position = target
			continue
		}
		dist := delta.Length()
		row.Position = row.Position.Add(delta.Scale(s.speed.Div(dist)))
	}
}

// CombatSystem applies a player's attack command against the targeted unit,
// dealing fixed damage and freeing units whose health drops to zero. It
// also advances each in-flight projectile and frees those that expired
// (at least projectileLifetime frames old).
type CombatSystem struct {
	units              *Unit
	match              *MatchState
	projectiles        *Projectile
	damage             int32
	projectileLifetime int32
}

func NewCombatSystem(units *Unit, match *MatchState, projectiles *Projectile, damage int32, projectileLifetime int32) *CombatSystem {
	return &CombatSystem{
		units:              units,
		match:              match,
		projectiles:        projectiles,
		damage:             damage,
		projectileLifetime: projectileLifetime,
	}
}

// SetDamage changes the per-hit damage applied by future Tick calls.
func (s *CombatSystem) SetDamage(damage int32) { s.damage = damage }

// SetProjectileLifetime changes the frame count after which an in-flight
// projectile expires on future Tick calls.
func (s *CombatSystem) SetProjectileLifetime(frames int32) { s.projectileLifetime = frames }

func (s *CombatSystem) Tick(ctx sim.Context[PlayerCommand]) {
	if s.match.Row().Phase != PhasePlaying {
		return
	}

	// Collect attack targets by handle before applying any damage: freeing a
	// unit swap-pops another row into its slot, so resolving by handle (via
	// a fresh SlotOf) rather than a slot captured during collection keeps
	// every hit pointed at the row the player actually targeted.
	var targets []handle.Handle
	for slot := 0; slot < s.units.Count(); slot++ {
		row := s.units.Row(slot)
		cmd := ctx.GetInput(row.Owner)
		if cmd.HasAttack {
			targets = append(targets, cmd.AttackTarget)
		}
	}
	for _, target := range targets {
		slot, ok := s.units.SlotOf(target)
		if !ok {
			continue
		}
		row := s.units.Row(slot)
		row.Health -= s.damage
		if row.Health <= 0 {
			s.units.Free(target)
		}
	}

	frame := ctx.Frame
	for slot := 0; slot < s.projectiles.Count(); {
		row := s.projectiles.Row(slot)
		if frame-row.SpawnFrame >= s.projectileLifetime {
			s.projectiles.Free(s.projectiles.core.HandleForSlot(int32(slot)))
			continue // a swap-pop donor now occupies this slot; re-check it
		}
		row.Position = row.Position.Add(row.Velocity)
		slot++
	}
}
