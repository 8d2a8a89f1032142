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
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/fieldglass/simcore/table"
)

// fakeTable is a minimal Table for exercising World's orchestration without
// depending on a concrete gameplay schema.
type fakeTable struct {
	id          uint16
	name        string
	fingerprint uint64
	slabByte    byte // single byte "slab" so size math stays simple
	resetCount  int
	recomputed  bool
}

func (f *fakeTable) TableID() uint16          { return f.id }
func (f *fakeTable) Name() string             { return f.name }
func (f *fakeTable) SchemaFingerprint() uint64 { return f.fingerprint }
func (f *fakeTable) Reset()                   { f.resetCount++; f.slabByte = 0 }
func (f *fakeTable) SlabSize() int            { return 1 }
func (f *fakeTable) MetaSize() int            { return 1 }

func (f *fakeTable) SaveTo(w io.Writer) error {
	_, err := w.Write([]byte{f.slabByte})
	return err
}

func (f *fakeTable) LoadFrom(r io.Reader) error {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return err
	}
	f.slabByte = buf[0]
	return nil
}

func (f *fakeTable) SaveMetaTo(w io.Writer) error {
	_, err := w.Write([]byte{0xAB})
	return err
}

func (f *fakeTable) LoadMetaFrom(r io.Reader) error {
	var buf [1]byte
	_, err := io.ReadFull(r, buf[:])
	return err
}

func (f *fakeTable) RecomputeAll()              { f.recomputed = true }
func (f *fakeTable) ComputeTableHash() uint64    { return uint64(f.slabByte) + 1 }
func (f *fakeTable) DebugRows() []map[string]any {
	return []map[string]any{{"slot": 0, "value": f.slabByte}}
}

func TestWorldRoundTrip(t *testing.T) {
	w := New()
	a := &fakeTable{id: 5, name: "a", fingerprint: 111, slabByte: 42}
	b := &fakeTable{id: 2, name: "b", fingerprint: 222, slabByte: 7}
	w.Register(a)
	w.Register(b)

	preHash := w.ComputeStateHash()

	var buf bytes.Buffer
	if err := w.SaveTo(&buf); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	a.slabByte = 0
	b.slabByte = 0

	if err := w.LoadFrom(&buf); err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}

	if a.slabByte != 42 || b.slabByte != 7 {
		t.Fatalf("round trip did not restore slab bytes: a=%d b=%d", a.slabByte, b.slabByte)
	}
	if !a.recomputed || !b.recomputed {
		t.Fatalf("RecomputeAll was not called for every table")
	}

	postHash := w.ComputeStateHash()
	if preHash != postHash {
		t.Fatalf("state hash changed across round trip: %d -> %d", preHash, postHash)
	}
}

func TestWorldTableOrderIsTableIDAscending(t *testing.T) {
	w := New()
	w.Register(&fakeTable{id: 9, name: "nine", fingerprint: 1})
	w.Register(&fakeTable{id: 1, name: "one", fingerprint: 1})
	w.Register(&fakeTable{id: 5, name: "five", fingerprint: 1})

	if len(w.order) != 3 || w.order[0] != 1 || w.order[1] != 5 || w.order[2] != 9 {
		t.Fatalf("table order = %v, want [1 5 9]", w.order)
	}
}

func TestWorldLoadRefusesSchemaMismatch(t *testing.T) {
	w := New()
	a := &fakeTable{id: 1, name: "a", fingerprint: 111, slabByte: 42}
	w.Register(a)

	var buf bytes.Buffer
	if err := w.SaveTo(&buf); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	a.fingerprint = 999 // simulate a schema change since the snapshot was taken
	a.slabByte = 0

	err := w.LoadFrom(&buf)
	if !errors.Is(err, table.ErrSchemaMismatch) {
		t.Fatalf("LoadFrom error = %v, want ErrSchemaMismatch", err)
	}
	if a.slabByte != 0 {
		t.Fatalf("a should be untouched after a rejected load, got slabByte=%d", a.slabByte)
	}
}

func TestWorldReset(t *testing.T) {
	w := New()
	a := &fakeTable{id: 1, name: "a"}
	b := &fakeTable{id: 2, name: "b"}
	w.Register(a)
	w.Register(b)
	w.Reset()
	if a.resetCount != 1 || b.resetCount != 1 {
		t.Fatalf("Reset did not reach every table: a=%d b=%d", a.resetCount, b.resetCount)
	}
}

func TestExportDebugJSON(t *testing.T) {
	w := New()
	w.Register(&fakeTable{id: 1, name: "widgets", slabByte: 3})

	data, err := w.ExportDebugJSONBytes()
	if err != nil {
		t.Fatalf("ExportDebugJSONBytes: %v", err)
	}
	if len(data) == 0 {
		t.Fatalf("expected non-empty JSON")
	}
}
