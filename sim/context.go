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

// Package sim implements the tick-driven system scheduler: a Context every
// system receives by value, and a Driver that refreshes derived caches then
// runs systems in declared order once per tick (spec.md §4.5).
package sim

// Context is the per-tick read-only bundle carried by value into every
// system. I is the gameplay-defined input command type; the core never
// interprets it, only threads it from the ring buffer to GetInput.
type Context[I any] struct {
	Frame       int32
	PlayerCount int32
	SessionSeed int32
	GetInput    func(player int32) I
}

// System is one ordered step of the tick driver's pipeline.
type System[I any] interface {
	Tick(ctx Context[I])
}

// InputRingBuffer holds the last Capacity frames of per-player input,
// indexed by (frame, player) as spec.md §3 requires. It is pre-populated by
// the host (e.g. from a network input channel) before the frame it covers
// is ticked.
type InputRingBuffer[I any] struct {
	players  int32
	capacity int32
	data     []I
	zero     I
	written  []bool
}

// NewInputRingBuffer allocates a buffer holding `capacity` frames of input
// for `players` players.
func NewInputRingBuffer[I any](players, capacity int32) *InputRingBuffer[I] {
	return &InputRingBuffer[I]{
		players:  players,
		capacity: capacity,
		data:     make([]I, int(players)*int(capacity)),
		written:  make([]bool, int(players)*int(capacity)),
	}
}

func (b *InputRingBuffer[I]) index(frame, player int32) int {
	slot := frame % b.capacity
	if slot < 0 {
		slot += b.capacity
	}
	return int(slot)*int(b.players) + int(player)
}

// Set records player's input for frame, to be consumed once that frame is
// ticked.
func (b *InputRingBuffer[I]) Set(frame, player int32, in I) {
	i := b.index(frame, player)
	b.data[i] = in
	b.written[i] = true
}

// Get returns the recorded input for (frame, player), or the zero value of
// I if nothing was ever written for that slot (e.g. a disconnected player).
func (b *InputRingBuffer[I]) Get(frame, player int32) I {
	i := b.index(frame, player)
	if !b.written[i] {
		return b.zero
	}
	return b.data[i]
}
