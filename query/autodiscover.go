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
package query

import (
	"reflect"

	"github.com/fieldglass/simcore/handle"
)

// Candidate is implemented by any concrete schema's table wrapper that
// wants to be eligible for AutoDiscover: enough to iterate its rows and
// hand back a pointer to its row struct for reflection to inspect.
type Candidate interface {
	TableID() uint16
	Count() int
	HandleAt(slot int) handle.Handle
	SlotOf(h handle.Handle) (slot int, ok bool)
	RowPtr(slot int) any // *RowStruct; valid for any slot in [0, capacity)
	Free(h handle.Handle)
}

// AutoDiscover builds a Union[T] from every candidate whose row struct
// declares a field for each exported field of T with a matching name and
// identical type (spec.md §4.3: "every schema whose columns include all
// (fi, Ti) with matching names and types"). A candidate missing even one
// field is silently excluded, the same way a SQL `SELECT` projection
// silently drops non-matching tables from a `UNION` of heterogeneous
// schemas.
func AutoDiscover[T any](candidates []Candidate) *Union[T] {
	u := NewUnion[T]()
	var zero T
	projType := reflect.TypeOf(zero)

	for _, c := range candidates {
		sample := reflect.ValueOf(c.RowPtr(0))
		if sample.Kind() != reflect.Ptr {
			continue
		}
		rowType := sample.Elem().Type()

		matched := true
		for i := 0; i < projType.NumField(); i++ {
			pf := projType.Field(i)
			rf, found := rowType.FieldByName(pf.Name)
			if !found || rf.Type != pf.Type {
				matched = false
				break
			}
		}
		if !matched {
			continue
		}

		c := c
		u.Register(Participant[T]{
			TableID:  c.TableID(),
			Count:    c.Count,
			HandleAt: c.HandleAt,
			SlotOf:   c.SlotOf,
			Project: func(slot int) T {
				row := reflect.ValueOf(c.RowPtr(slot)).Elem()
				var out T
				outVal := reflect.ValueOf(&out).Elem()
				for i := 0; i < projType.NumField(); i++ {
					name := projType.Field(i).Name
					outVal.Field(i).Set(row.FieldByName(name))
				}
				return out
			},
			Commit: func(slot int, v T) {
				row := reflect.ValueOf(c.RowPtr(slot)).Elem()
				inVal := reflect.ValueOf(v)
				for i := 0; i < projType.NumField(); i++ {
					name := projType.Field(i).Name
					row.FieldByName(name).Set(inVal.Field(i))
				}
			},
			Free: c.Free,
		})
	}
	return u
}
