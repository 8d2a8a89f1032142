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

// FxVec2 is a deterministic 2-vector over Fx. Used for every
// simulation-visible position, velocity, and direction.
type FxVec2 struct {
	X, Y Fx
}

func Vec2(x, y Fx) FxVec2 { return FxVec2{X: x, Y: y} }

func (v FxVec2) Add(o FxVec2) FxVec2 { return FxVec2{v.X.Add(o.X), v.Y.Add(o.Y)} }
func (v FxVec2) Sub(o FxVec2) FxVec2 { return FxVec2{v.X.Sub(o.X), v.Y.Sub(o.Y)} }
func (v FxVec2) Scale(s Fx) FxVec2   { return FxVec2{v.X.Mul(s), v.Y.Mul(s)} }

// LengthSq returns squared length, avoiding a Sqrt call on hot paths such as
// radius queries where only a comparison against radius^2 is needed.
func (v FxVec2) LengthSq() Fx {
	return v.X.Mul(v.X).Add(v.Y.Mul(v.Y))
}

func (v FxVec2) Length() Fx {
	return v.LengthSq().Sqrt()
}

// DistanceSq returns the squared distance between v and o.
func (v FxVec2) DistanceSq(o FxVec2) Fx {
	return v.Sub(o).LengthSq()
}

func (v FxVec2) IsZero() bool {
	return v.X == 0 && v.Y == 0
}
