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

import (
	"fmt"
	"hash/fnv"
)

// FieldDesc names one authoritative column for schema-fingerprint purposes.
// ArrayLen is 0 for a scalar column.
type FieldDesc struct {
	Name     string
	Type     string
	ArrayLen int
}

// ComputeSchemaFingerprint hashes {name, (field_name, field_type,
// array_length) list} with FNV-1a (spec.md §6). Every concrete schema calls
// this once, in a package-level variable, and returns the cached result from
// SchemaFingerprint; this keeps the fingerprint stable across process
// restarts without requiring reflection over the schema's Go struct tags.
func ComputeSchemaFingerprint(name string, fields []FieldDesc) uint64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s", name)
	for _, f := range fields {
		fmt.Fprintf(h, "|%s:%s:%d", f.Name, f.Type, f.ArrayLen)
	}
	return h.Sum64()
}
