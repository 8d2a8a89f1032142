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
	"testing"

	"github.com/fieldglass/simcore/fx"
	"github.com/fieldglass/simcore/handle"
)

func TestFxAndHandleCodecRoundTrip(t *testing.T) {
	var buf [8]byte

	v := fx.FromInt(-7)
	putFx(buf[:], v)
	if got := getFx(buf[:]); got != v {
		t.Fatalf("fx round trip = %v, want %v", got, v)
	}

	h := handle.New(3, 4, 5)
	putHandle(buf[:], h)
	if got := getHandle(buf[:]); got != h {
		t.Fatalf("handle round trip = %v, want %v", got, h)
	}
}

func TestI32CodecRoundTrip(t *testing.T) {
	var buf [4]byte
	putI32(buf[:], -123)
	if got := getI32(buf[:]); got != -123 {
		t.Fatalf("i32 round trip = %d, want -123", got)
	}
}
