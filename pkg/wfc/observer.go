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

// observer selects the next cell to collapse. It owns the entropy heap;
// stale entries (version mismatch) and decided cells are filtered
// lazily on pop rather than removed eagerly.
type observer struct {
	heap entropyHeap
}

func (o *observer) reset() {
	o.heap.reset()
}

// chooseNextCell pops until it finds a live undecided cell. ok is false
// when the heap empties, meaning no undecided cell remains.
func (o *observer) chooseNextCell(w *wave) (int, bool) {
	for {
		entry, ok := o.heap.pop()
		if !ok {
			return 0, false
		}
		c := &w.cells[entry.index]
		if c.version != entry.version || c.decided() {
			continue
		}
		return entry.index, true
	}
}

// samplePattern draws one pattern from the cell's possibility set,
// weighted by catalogue frequency, using inverse-CDF over the exact
// integer weight sum.
func samplePattern(c *cell, cat *Catalogue, rng Rand) PatternID {
	target := uint64(rng.Float64() * float64(c.sumWeights))
	if target >= c.sumWeights {
		target = c.sumWeights - 1
	}
	chosen := PatternID(-1)
	c.eachPossible(func(p PatternID) bool {
		w := uint64(cat.Weight(p))
		if target < w {
			chosen = p
			return false
		}
		target -= w
		return true
	})
	return chosen
}

// forceCell removes every pattern except keep from the cell, queueing
// each removal for propagation. The caller adjusts numUndecided.
func (r *Run) forceCell(index int, keep PatternID) {
	c := &r.wave.cells[index]
	r.scratch = r.scratch[:0]
	c.eachPossible(func(p PatternID) bool {
		if p != keep {
			r.scratch = append(r.scratch, p)
		}
		return true
	})
	for _, p := range r.scratch {
		c.remove(p, r.cat)
		r.prop.push(index, p)
	}
}
