// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package wfc

// wave is the grid of cells for one run. All cell storage is allocated
// once at construction and reused across resets.
type wave struct {
	size  Size
	wrap  Wrap
	cells []cell
}

func newWave(size Size, wrap Wrap) *wave {
	return &wave{
		size:  size,
		wrap:  wrap,
		cells: make([]cell, size.Count()),
	}
}

func (w *wave) init(cat *Catalogue, rng Rand) {
	for i := range w.cells {
		w.cells[i].init(cat, rng)
	}
}

// neighbour resolves the cell index adjacent to index in direction d,
// honouring the wrap mode. ok is false at a clipped edge.
func (w *wave) neighbour(index int, d Direction) (int, bool) {
	c, ok := w.wrap.Normalize(w.size.CoordOf(index).Add(d.Delta()), w.size)
	if !ok {
		return 0, false
	}
	return w.size.Index(c), true
}

// CellView is read-only access to one cell of an in-progress or
// completed run. Renderers use it to paint progress frames.
type CellView struct {
	cell *cell
	cat  *Catalogue
}

// NumPossible returns how many patterns remain possible in the cell.
// 1 means decided; 0 means the cell is contradicted.
func (v CellView) NumPossible() int {
	return v.cell.numPossible
}

// ChosenPattern returns the decided pattern. ok is false unless exactly
// one pattern remains.
func (v CellView) ChosenPattern() (PatternID, bool) {
	return v.cell.chosenPattern()
}

// Possible calls fn for each still-possible pattern in ascending id
// order, stopping early if fn returns false.
func (v CellView) Possible(fn func(PatternID) bool) {
	v.cell.eachPossible(fn)
}

// PatternWeights calls fn with each still-possible pattern and its
// catalogue weight, in ascending id order. Renderers use this to blend
// a weighted-average colour for undecided cells.
func (v CellView) PatternWeights(fn func(PatternID, uint32) bool) {
	v.cell.eachPossible(func(p PatternID) bool {
		return fn(p, v.cat.Weight(p))
	})
}

// SumWeights returns the summed weight of the still-possible patterns.
func (v CellView) SumWeights() uint64 {
	return v.cell.sumWeights
}
