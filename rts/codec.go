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

// Package rts implements a minimal gameplay layer over the table/world/
// query/derived/sim core: concrete row schemas (Unit, Projectile,
// MatchState), a union-query projection (VisibleEntity), a derived cache
// (ThreatCache), and two tick systems (MovementSystem, CombatSystem). It is
// an external collaborator per spec.md §1, not part of the core — included
// so every core operation has a real caller.
package rts

import (
	"encoding/binary"
	"hash"
	"io"

	"github.com/fieldglass/simcore/fx"
	"github.com/fieldglass/simcore/handle"
)

// The fixed per-type byte encoding spec.md §4.1/§4.6 mandates: little-endian
// integers, Fx as its raw bit pattern, handles as their packed uint64. Every
// schema's WriteAuthoritative/ReadAuthoritative/HashSlot goes through these
// so the on-wire and hashed representation is identical across schemas.

func putFx(buf []byte, v fx.Fx)      { binary.LittleEndian.PutUint64(buf, uint64(v)) }
func getFx(buf []byte) fx.Fx         { return fx.Fx(binary.LittleEndian.Uint64(buf)) }
func putI32(buf []byte, v int32)     { binary.LittleEndian.PutUint32(buf, uint32(v)) }
func getI32(buf []byte) int32        { return int32(binary.LittleEndian.Uint32(buf)) }
func putU64(buf []byte, v uint64)    { binary.LittleEndian.PutUint64(buf, v) }
func getU64(buf []byte) uint64       { return binary.LittleEndian.Uint64(buf) }
func putHandle(buf []byte, h handle.Handle) { binary.LittleEndian.PutUint64(buf, uint64(h)) }
func getHandle(buf []byte) handle.Handle    { return handle.Handle(binary.LittleEndian.Uint64(buf)) }

func writeAll(w io.Writer, buf []byte) error {
	_, err := w.Write(buf)
	return err
}

func readFull(r io.Reader, buf []byte) error {
	_, err := io.ReadFull(r, buf)
	return err
}

func hashFx(h hash.Hash64, v fx.Fx) {
	var buf [8]byte
	putFx(buf[:], v)
	h.Write(buf[:])
}

func hashI32(h hash.Hash64, v int32) {
	var buf [4]byte
	putI32(buf[:], v)
	h.Write(buf[:])
}

func hashU64(h hash.Hash64, v uint64) {
	var buf [8]byte
	putU64(buf[:], v)
	h.Write(buf[:])
}

func hashHandle(h hash.Hash64, v handle.Handle) {
	hashU64(h, uint64(v))
}
