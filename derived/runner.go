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

// Package derived implements the dependency-tracked cache runner: a
// version-polling alternative to push-based invalidation, the same shape as
// the teacher's storageShard.rebuild (only redo the work when main_count or
// the delta set actually changed) generalized from "one table's own delta"
// to "N systems, each depending on M tables' versions" (spec.md §4.4).
package derived

// System is a read-only cache over one or more tables. Invalidate marks the
// cache stale; Rebuild recomputes it from the current world state.
// Rebuild is always safe to call even when nothing changed — the runner
// only calls Invalidate when a dependency's version moved.
type System interface {
	Invalidate()
	Rebuild()
}

// Dependency names one table a system reads, by its current version.
type Dependency struct {
	TableID uint16
	Version func() uint32
}

type entry struct {
	system       System
	deps         []Dependency
	lastVersions []uint32
}

// Runner owns an ordered list of (system, dependencies) pairs declared at
// build time. Because declaration order is significant, a later system may
// depend on state an earlier system's Rebuild produced; the runner is a
// pipeline, not a fixed-point iterator (spec.md §4.4).
type Runner struct {
	entries []entry
}

// NewRunner creates an empty Runner. Register every derived system before
// the first RebuildAll.
func NewRunner() *Runner {
	return &Runner{}
}

// Register appends a system and its dependencies to the pipeline.
func (r *Runner) Register(system System, deps ...Dependency) {
	r.entries = append(r.entries, entry{
		system:       system,
		deps:         deps,
		lastVersions: make([]uint32, len(deps)),
	})
}

// InvalidateAll marks every system stale and zeros all stored versions,
// forcing a cold rebuild on the next RebuildAll. Used after world.LoadFrom,
// since a loaded world's table versions start wherever the snapshot left
// them and must not be compared against whatever was cached before load.
func (r *Runner) InvalidateAll() {
	for i := range r.entries {
		e := &r.entries[i]
		e.system.Invalidate()
		for j := range e.lastVersions {
			e.lastVersions[j] = 0
		}
	}
}

// RebuildAll walks systems in declared order. For each, it reads every
// dependency's current version; if any differs from the stored value, it
// calls Invalidate and records the new versions. It then always calls
// Rebuild, whether or not anything changed (spec.md §4.4, testable
// property 9, scenario S5).
func (r *Runner) RebuildAll() {
	for i := range r.entries {
		e := &r.entries[i]
		changed := false
		for j, d := range e.deps {
			v := d.Version()
			if v != e.lastVersions[j] {
				changed = true
				e.lastVersions[j] = v
			}
		}
		if changed {
			e.system.Invalidate()
		}
		e.system.Rebuild()
	}
}
