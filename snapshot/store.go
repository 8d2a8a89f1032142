/*
Copyright (C) 2024-2026  Carl-Philip Hänsch

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

// Package snapshot wraps world.World's binary wire format (spec.md §6) in
// named blobs across interchangeable storage backends, the same role
// memcp's PersistenceEngine plays for shard columns and logs — narrowed
// here to a single named object per snapshot generation, since the core has
// no column-at-a-time or log-replay persistence model.
package snapshot

import "io"

// Store persists and retrieves a named snapshot blob. A name is an opaque
// backend-relative key, e.g. "match-42/gen-0007".
type Store interface {
	WriteSnapshot(name string, data io.Reader) error
	ReadSnapshot(name string) (io.ReadCloser, error)
	RemoveSnapshot(name string) error
}

// ErrorReader is an io.ReadCloser that always fails with e, used to report
// a missing object without a special-cased nil-interface return — the same
// device memcp's persistence layer uses for "file not found".
type ErrorReader struct {
	Err error
}

func (e ErrorReader) Read([]byte) (int, error) { return 0, e.Err }
func (e ErrorReader) Close() error             { return nil }
