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

import "github.com/fieldglass/simcore/derived"

// ThreatCache is a derived system depending on Unit: it holds each player's
// total threat score, recomputed only on the tick a unit was allocated,
// freed, or otherwise changed the table's version (spec.md §4.4).
type ThreatCache struct {
	units *Unit
	total map[int32]int64
	stale bool
}

// NewThreatCache builds a ThreatCache over units. The cache starts stale so
// its first Rebuild always computes from scratch, regardless of whether
// units' version happens to already equal whatever a Runner's dependency
// tracking was last initialized to.
func NewThreatCache(units *Unit) *ThreatCache {
	return &ThreatCache{units: units, total: make(map[int32]int64), stale: true}
}

// Dependency returns the derived.Dependency this cache should be registered
// under: its version tracks units' version counter directly.
func (c *ThreatCache) Dependency() derived.Dependency {
	return derived.Dependency{TableID: UnitTableID, Version: c.units.Version}
}

func (c *ThreatCache) Invalidate() { c.stale = true }

func (c *ThreatCache) Rebuild() {
	if !c.stale {
		return
	}
	for k := range c.total {
		delete(c.total, k)
	}
	for s := 0; s < c.units.Count(); s++ {
		row := c.units.rows[s]
		c.total[row.Owner] += int64(row.ThreatScore)
	}
	c.stale = false
}

// Total returns owner's accumulated threat score as of the last rebuild.
func (c *ThreatCache) Total(owner int32) int64 { return c.total[owner] }
