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
package fx

// quarterWaveBits controls the resolution of the precomputed sine table:
// 2^quarterWaveBits samples cover [0, pi/2]. Computed once at package init
// from integer angle steps, never from a runtime float call, so two builds
// of this package produce byte-identical tables.
const quarterWaveBits = 10
const quarterWaveSize = 1 << quarterWaveBits

var sinTable [quarterWaveSize + 1]Fx

func init() {
	// Bhaskara I's sine approximation, evaluated entirely in integer
	// arithmetic so the table is reproducible without relying on the host's
	// math library rounding a transcendental function identically.
	for i := 0; i <= quarterWaveSize; i++ {
		// angle in [0, 90] degrees scaled by i/quarterWaveSize * 90
		degTimesScale := int64(i) * 90
		scale := int64(quarterWaveSize)
		// Bhaskara: sin(x) ~= 4x(180-x) / (40500-x(180-x)), x in degrees
		x := degTimesScale / scale
		rem := degTimesScale % scale
		// linear-interpolate between integer degree steps for smoothness
		v0 := bhaskaraSinQ16(x)
		v1 := bhaskaraSinQ16(x + 1)
		if x >= 180 {
			v1 = v0
		}
		interp := v0 + (v1-v0)*rem/scale
		sinTable[i] = Fx(interp)
	}
}

// bhaskaraSinQ16 returns sin(degrees) in Q48.16 for integer degrees in [0,180].
func bhaskaraSinQ16(degrees int64) int64 {
	if degrees < 0 {
		degrees = -degrees
	}
	if degrees > 180 {
		degrees = 180
	}
	num := 4 * degrees * (180 - degrees)
	den := 40500 - degrees*(180-degrees)
	if den == 0 {
		return int64(FxOne)
	}
	return num * int64(FxOne) / den
}

// Sin returns the sine of a, where a is an angle in radians expressed as Fx.
func (a Fx) Sin() Fx {
	// normalize a into [0, 2*pi)
	twoPi := FxPi.Mul(FromInt(2))
	x := a % twoPi
	if x < 0 {
		x += twoPi
	}
	halfPi := FxPi.Div(FromInt(2))
	neg := false
	switch {
	case x <= halfPi:
		// quadrant 1, as is
	case x <= FxPi:
		x = FxPi - x
	case x <= FxPi+halfPi:
		x = x - FxPi
		neg = true
	default:
		x = twoPi - x
		neg = true
	}
	idx := uint64(x) * quarterWaveSize / uint64(halfPi)
	if idx > quarterWaveSize {
		idx = quarterWaveSize
	}
	v := sinTable[idx]
	if neg {
		v = -v
	}
	return v
}

// Cos returns the cosine of a via the sine quarter-wave identity.
func (a Fx) Cos() Fx {
	halfPi := FxPi.Div(FromInt(2))
	return a.Add(halfPi).Sin()
}
