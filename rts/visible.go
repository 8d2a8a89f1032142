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
	"github.com/fieldglass/simcore/query"
)

// VisibleEntity is the projection every schema that wants to be considered
// "a visible thing on the battlefield" must expose a matching field set
// for: Unit and Projectile both qualify, a future schema would too just by
// declaring a Position and Owner field of the same types (spec.md §4.3).
type VisibleEntity struct {
	Position fx.FxVec2
	Owner    int32
}

// NewVisibleQuery auto-discovers every registered candidate that projects
// onto VisibleEntity. Unlike Unit's and Projectile's own table wrappers,
// this query never needs updating when a new compatible schema is added —
// only the candidate list passed in here does.
func NewVisibleQuery(candidates ...query.Candidate) *query.Union[VisibleEntity] {
	return query.AutoDiscover[VisibleEntity](candidates)
}
