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
package world

import (
	"io"

	json "github.com/goccy/go-json"
)

// ExportDebugJSON writes the debug dump as one top-level JSON object keyed
// by table name, each value an array of row objects (spec.md §6). Every
// schema's DebugRows already encodes Fx as {"raw","decimal"} (raw as a hex
// string), handles as
// {"table_id","raw_id","generation"}, and 64-bit integers as strings, so
// this is a direct marshal with no further transformation — the same
// "walk columns, marshal, done" shape the teacher's bulk-export paths use
// goccy/go-json for instead of encoding/json.
func (w *World) ExportDebugJSON(out io.Writer) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(w.ExportDebug().Tables)
}

// ExportDebugJSONBytes is a convenience wrapper returning the encoded bytes
// directly, for hosts that want to hand the snapshot to another sink (a
// websocket frame, a log line) without owning an io.Writer.
func (w *World) ExportDebugJSONBytes() ([]byte, error) {
	return json.MarshalIndent(w.ExportDebug().Tables, "", "  ")
}
