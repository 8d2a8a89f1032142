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
package table

import "errors"

// ErrCapacityExhausted is returned by Allocate when the table is full and no
// eviction policy applies. It is a fatal signal to the caller: the host's
// gameplay code is expected to prevent this in normal play (spec.md §7).
var ErrCapacityExhausted = errors.New("table: capacity exhausted")

// ErrMaxChunksExceeded is returned by a chunked spatial index when a sort
// would require more simultaneously active chunks than the schema allows.
var ErrMaxChunksExceeded = errors.New("table: max simultaneous chunks exceeded")

// ErrSchemaMismatch is returned (wrapped) by world.World.LoadFrom when a
// table's persisted schema fingerprint disagrees with the table's own; a
// snapshot too short for a table's region is reported by a different error.
var ErrSchemaMismatch = errors.New("table: schema fingerprint mismatch")
