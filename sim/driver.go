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
package sim

import "github.com/fieldglass/simcore/derived"

// Driver is the top-level entry point a host calls once per tick, the same
// role memcp's top-level "rebuild" walk plays for its shard maintenance
// cycle, generalized from "rebuild every shard" to "rebuild every derived
// cache, then run every gameplay system" (spec.md §4.5).
type Driver[I any] struct {
	systems     []System[I]
	runner      *derived.Runner
	frame       int32
	playerCount int32
	sessionSeed int32
	inputs      *InputRingBuffer[I]
}

// NewDriver builds a Driver over a fixed player count and session seed. The
// seed and player count are constant for the life of a match; only frame
// and per-player input vary tick to tick.
func NewDriver[I any](runner *derived.Runner, playerCount, sessionSeed int32, inputs *InputRingBuffer[I]) *Driver[I] {
	return &Driver[I]{
		runner:      runner,
		playerCount: playerCount,
		sessionSeed: sessionSeed,
		inputs:      inputs,
	}
}

// Register appends a system to the tick pipeline in declared order.
// Registration order is the order Tick invokes systems in.
func (d *Driver[I]) Register(s System[I]) {
	d.systems = append(d.systems, s)
}

// Frame returns the frame number the next Tick call will run.
func (d *Driver[I]) Frame() int32 { return d.frame }

// Tick composes this frame's Context, refreshes every derived cache whose
// dependencies changed, then runs every registered system once in
// declared order, and finally advances the frame counter (spec.md §4.5,
// steps 1-4).
func (d *Driver[I]) Tick() {
	frame := d.frame
	ctx := Context[I]{
		Frame:       frame,
		PlayerCount: d.playerCount,
		SessionSeed: d.sessionSeed,
		GetInput: func(player int32) I {
			return d.inputs.Get(frame, player)
		},
	}

	d.runner.RebuildAll()
	for _, s := range d.systems {
		s.Tick(ctx)
	}
	d.frame++
}
