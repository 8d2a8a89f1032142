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
	"encoding/binary"
	"io"
)

// SaveTo writes this table's authoritative slab: an 8-byte header (version,
// reserved) followed by every non-computed column's full capacity-sized
// backing array, exactly as spec.md §6 mandates.
func (c *Core) SaveTo(w io.Writer) error {
	var header [8]byte
	binary.LittleEndian.PutUint32(header[0:4], c.version)
	// header[4:8] is reserved, always zero on the wire.
	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	return c.ops.WriteAuthoritative(w)
}

// LoadFrom reads back what SaveTo wrote. It only restores authoritative
// column bytes; it does not touch count or recompute computed columns,
// since the wire format places a table's meta (which carries count) after
// its slab (spec.md §6). Callers must call LoadMetaFrom and then
// RecomputeAll once the meta for this table has also been read — see
// world.World.LoadFrom for the per-table read order this requires.
func (c *Core) LoadFrom(r io.Reader) error {
	var header [8]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return err
	}
	c.version = binary.LittleEndian.Uint32(header[0:4])
	return c.ops.ReadAuthoritative(r)
}

// RecomputeAll rebuilds every live row's computed columns from its
// authoritative columns. Call once after both LoadFrom and LoadMetaFrom
// have run for this table.
func (c *Core) RecomputeAll() {
	for s := int32(0); s < c.count; s++ {
		c.ops.RecomputeSlot(int(s))
	}
}

// SaveMetaTo writes count, next_raw_id, free_list_head, then fixed-size
// images of raw_to_slot, slot_to_packed, next_free and generation, each
// capacity entries long, per spec.md §6.
func (c *Core) SaveMetaTo(w io.Writer) error {
	if err := writeI32(w, c.count); err != nil {
		return err
	}
	if err := writeI32(w, c.nextRawID); err != nil {
		return err
	}
	if err := writeI32(w, c.freeListHead); err != nil {
		return err
	}
	if err := writeI32Slice(w, c.rawToSlot); err != nil {
		return err
	}
	if err := writeI32Slice(w, c.slotToPacked); err != nil {
		return err
	}
	if err := writeI32Slice(w, c.nextFree); err != nil {
		return err
	}
	gen := make([]int32, len(c.generation))
	for i, g := range c.generation {
		gen[i] = int32(g)
	}
	return writeI32Slice(w, gen)
}

// SlabSize returns the exact byte length SaveTo writes: the 8-byte header
// plus the authoritative columns' size.
func (c *Core) SlabSize() int {
	return 8 + c.ops.AuthoritativeSize()
}

// MetaSize returns the exact byte length SaveMetaTo writes: three int32
// scalars plus four capacity-length int32 arrays.
func (c *Core) MetaSize() int {
	return 3*4 + 4*len(c.rawToSlot)*4
}

// LoadMetaFrom reads back what SaveMetaTo wrote. Call after LoadFrom, since
// the wire format places a table's slab before its meta (spec.md §6).
func (c *Core) LoadMetaFrom(r io.Reader) error {
	capacity := len(c.rawToSlot)
	var err error
	if c.count, err = readI32(r); err != nil {
		return err
	}
	if c.nextRawID, err = readI32(r); err != nil {
		return err
	}
	if c.freeListHead, err = readI32(r); err != nil {
		return err
	}
	if c.rawToSlot, err = readI32Slice(r, capacity); err != nil {
		return err
	}
	if c.slotToPacked, err = readI32Slice(r, capacity); err != nil {
		return err
	}
	if c.nextFree, err = readI32Slice(r, capacity); err != nil {
		return err
	}
	gen, err := readI32Slice(r, capacity)
	if err != nil {
		return err
	}
	c.generation = make([]uint16, capacity)
	for i, g := range gen {
		c.generation[i] = uint16(g)
	}
	return nil
}

func writeI32(w io.Writer, v int32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(v))
	_, err := w.Write(buf[:])
	return err
}

func writeI32Slice(w io.Writer, s []int32) error {
	buf := make([]byte, 4*len(s))
	for i, v := range s {
		binary.LittleEndian.PutUint32(buf[i*4:], uint32(v))
	}
	_, err := w.Write(buf)
	return err
}

func readI32(r io.Reader) (int32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(buf[:])), nil
}

func readI32Slice(r io.Reader, n int) ([]int32, error) {
	buf := make([]byte, 4*n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	out := make([]int32, n)
	for i := range out {
		out[i] = int32(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return out, nil
}
