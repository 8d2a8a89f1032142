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
	"github.com/RoaringBitmap/roaring/v2"

	"github.com/fieldglass/simcore/fx"
)

// Grid is a bucketed uniform G×G grid over a bounded world, embedded in any
// spatial table's Core. Cell membership is rebuilt in one pass by SpatialSort
// (a counting sort); box/radius iteration walks the precomputed cell ranges
// and uses three hierarchical "is this block empty" bitmaps to skip past
// empty regions in O(1), per spec.md §4.2.
//
// The masks are backed by RoaringBitmap's Bitmap rather than a hand-rolled
// []uint64: even at these small fixed domains (4096 bits for L1 at G=256) it
// gives the "is this block empty" test one Contains call, the same off-the-
// shelf bitset idiom the erigon half of the retrieval pack reaches for.
type Grid struct {
	cellSize fx.Fx
	gridSize int

	cellStart []int32 // len gridSize*gridSize + 1, prefix sums
	fillCursor []int32 // scratch, reused each sort
	sortedOrder []int32 // len == live count after the most recent sort

	l1, l2, l3 *roaring.Bitmap
	l1Per, l2Per, l3Per int // blocks per axis at each level
}

const (
	l1BlockCells = 4
	l2BlockCells = 16
	l3BlockCells = 64
)

func newGrid(cellSize fx.Fx, gridSize int) *Grid {
	g := &Grid{
		cellSize:   cellSize,
		gridSize:   gridSize,
		cellStart:  make([]int32, gridSize*gridSize+1),
		fillCursor: make([]int32, gridSize*gridSize),
		l1:         roaring.New(),
		l2:         roaring.New(),
		l3:         roaring.New(),
		l1Per:      ceilDiv(gridSize, l1BlockCells),
		l2Per:      ceilDiv(gridSize, l2BlockCells),
		l3Per:      ceilDiv(gridSize, l3BlockCells),
	}
	return g
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

func (g *Grid) reset() {
	g.sortedOrder = g.sortedOrder[:0]
	for i := range g.cellStart {
		g.cellStart[i] = 0
	}
	g.l1.Clear()
	g.l2.Clear()
	g.l3.Clear()
}

// cellOf clamps a world position into grid cell coordinates (bounded mode:
// clamp, never wrap, per spec.md §4.2).
func (g *Grid) cellOf(pos fx.FxVec2) (cx, cy int) {
	cx = int(pos.X.Div(g.cellSize).ToInt())
	cy = int(pos.Y.Div(g.cellSize).ToInt())
	if cx < 0 {
		cx = 0
	}
	if cx >= g.gridSize {
		cx = g.gridSize - 1
	}
	if cy < 0 {
		cy = 0
	}
	if cy >= g.gridSize {
		cy = g.gridSize - 1
	}
	return
}

// sort is the counting-sort rebuild over the dense live range [0, liveCount).
func (g *Grid) sort(position PositionFunc, liveCount int32) {
	members := make([]int32, liveCount)
	for i := range members {
		members[i] = int32(i)
	}
	g.rebuild(members, position)
}

// rebuild counts per cell, prefix-sums into cellStart, scatters members into
// sortedOrder, then rebuilds the three hierarchical empty-block masks from
// the same cell counts. members need not be a dense [0,n) range, which lets
// ChunkedGrid reuse this for an arbitrary subset of original slot ids.
func (g *Grid) rebuild(members []int32, position PositionFunc) {
	n := g.gridSize * g.gridSize
	counts := make([]int32, n)
	cellOfMember := make([]int32, len(members))
	for i, s := range members {
		cx, cy := g.cellOf(position(int(s)))
		idx := int32(cy*g.gridSize + cx)
		cellOfMember[i] = idx
		counts[idx]++
	}

	g.cellStart[0] = 0
	for i := 0; i < n; i++ {
		g.cellStart[i+1] = g.cellStart[i] + counts[i]
	}
	copy(g.fillCursor, g.cellStart[:n])

	if len(g.sortedOrder) != len(members) {
		g.sortedOrder = make([]int32, len(members))
	}
	for i, s := range members {
		idx := cellOfMember[i]
		pos := g.fillCursor[idx]
		g.sortedOrder[pos] = s
		g.fillCursor[idx]++
	}

	g.l1.Clear()
	g.l2.Clear()
	g.l3.Clear()
	for idx := 0; idx < n; idx++ {
		if counts[idx] == 0 {
			continue
		}
		cx, cy := idx%g.gridSize, idx/g.gridSize
		g.l1.Add(uint32((cy/l1BlockCells)*g.l1Per + cx/l1BlockCells))
		g.l2.Add(uint32((cy/l2BlockCells)*g.l2Per + cx/l2BlockCells))
		g.l3.Add(uint32((cy/l3BlockCells)*g.l3Per + cx/l3BlockCells))
	}
}

func (g *Grid) blockEmptyAndSkip(cx, cy int) (empty bool, skipToCx int) {
	bx, by := cx/l3BlockCells, cy/l3BlockCells
	if !g.l3.Contains(uint32(by*g.l3Per + bx)) {
		return true, (bx + 1) * l3BlockCells
	}
	bx, by = cx/l2BlockCells, cy/l2BlockCells
	if !g.l2.Contains(uint32(by*g.l2Per + bx)) {
		return true, (bx + 1) * l2BlockCells
	}
	bx, by = cx/l1BlockCells, cy/l1BlockCells
	if !g.l1.Contains(uint32(by*g.l1Per + bx)) {
		return true, (bx + 1) * l1BlockCells
	}
	return false, 0
}

// RegionIter is a zero-per-step-allocation cursor over the grid's live rows
// that satisfy a predicate, visiting cells in row-major order and, within a
// cell, sortedOrder order (spec.md §4.2). It does not observe mutations made
// during iteration.
type RegionIter struct {
	g                          *Grid
	minCx, maxCx, minCy, maxCy int
	cx, cy                     int
	idx, end                   int32
	position                   PositionFunc
	pred                       func(fx.FxVec2) bool
	started                    bool
}

func (g *Grid) newRegionIter(minCx, maxCx, minCy, maxCy int, position PositionFunc, pred func(fx.FxVec2) bool) *RegionIter {
	if minCx < 0 {
		minCx = 0
	}
	if minCy < 0 {
		minCy = 0
	}
	if maxCx >= g.gridSize {
		maxCx = g.gridSize - 1
	}
	if maxCy >= g.gridSize {
		maxCy = g.gridSize - 1
	}
	return &RegionIter{
		g: g, minCx: minCx, maxCx: maxCx, minCy: minCy, maxCy: maxCy,
		cx: minCx, cy: minCy, position: position, pred: pred,
	}
}

// Next returns the next matching slot, or ok=false when exhausted.
func (it *RegionIter) Next() (slot int32, ok bool) {
	if it.g == nil || it.minCx > it.maxCx || it.minCy > it.maxCy {
		return 0, false
	}
	for {
		for it.idx < it.end {
			s := it.g.sortedOrder[it.idx]
			it.idx++
			p := it.position(int(s))
			if it.pred(p) {
				return s, true
			}
		}
		if !it.advanceCell() {
			return 0, false
		}
	}
}

// advanceCell moves the cursor to the next non-trivially-empty cell,
// loading its sortedOrder range. Returns false once the region is exhausted.
func (it *RegionIter) advanceCell() bool {
	if it.started {
		it.cx++
	}
	it.started = true
	for {
		if it.cx > it.maxCx {
			it.cx = it.minCx
			it.cy++
		}
		if it.cy > it.maxCy {
			return false
		}
		empty, skipTo := it.g.blockEmptyAndSkip(it.cx, it.cy)
		if empty {
			if skipTo <= it.cx {
				skipTo = it.cx + 1
			}
			it.cx = skipTo
			continue
		}
		idx := it.cy*it.g.gridSize + it.cx
		it.idx = it.g.cellStart[idx]
		it.end = it.g.cellStart[idx+1]
		if it.idx == it.end {
			// block is non-empty somewhere but not in this exact fine cell
			it.cx++
			continue
		}
		return true
	}
}

// QueryBox enumerates every live slot whose position lies within
// [minX,maxX] x [minY,maxY], inclusive.
func (g *Grid) QueryBox(position PositionFunc, minX, maxX, minY, maxY fx.Fx) *RegionIter {
	minCx, minCy := g.cellOf(fx.Vec2(minX, minY))
	maxCx, maxCy := g.cellOf(fx.Vec2(maxX, maxY))
	pred := func(p fx.FxVec2) bool {
		return p.X >= minX && p.X <= maxX && p.Y >= minY && p.Y <= maxY
	}
	return g.newRegionIter(minCx, maxCx, minCy, maxCy, position, pred)
}

// QueryRadius enumerates every live slot within radius of center, using a
// squared-distance comparison (spec.md §4.2: "radius², not radius").
func (g *Grid) QueryRadius(position PositionFunc, center fx.FxVec2, radius fx.Fx) *RegionIter {
	minCx, minCy := g.cellOf(fx.Vec2(center.X.Sub(radius), center.Y.Sub(radius)))
	maxCx, maxCy := g.cellOf(fx.Vec2(center.X.Add(radius), center.Y.Add(radius)))
	radiusSq := radius.Mul(radius)
	pred := func(p fx.FxVec2) bool {
		return p.DistanceSq(center) <= radiusSq
	}
	return g.newRegionIter(minCx, maxCx, minCy, maxCy, position, pred)
}
