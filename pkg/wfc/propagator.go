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

import "context"

// removal is one unit of propagation work: a pattern that just became
// impossible at a cell.
type removal struct {
	index   int
	pattern PatternID
}

// propagator is the worklist engine. The buffer is reused across steps
// and resets so the hot path allocates nothing.
type propagator struct {
	worklist []removal
}

func (pr *propagator) push(index int, p PatternID) {
	pr.worklist = append(pr.worklist, removal{index: index, pattern: p})
}

func (pr *propagator) reset() {
	pr.worklist = pr.worklist[:0]
}

// propagate drains the worklist, cascading pattern removals until the
// wave is quiescent or a cell runs out of patterns.
//
// Removing pattern p at cell c withdraws one unit of support from every
// q in compat[p][d] at the neighbour n in direction d: those q needed p
// available across the shared edge (seen from n, in direction
// d.Opposite()). When a support count hits zero the pattern is removed
// from n, the removal is queued in turn, and n is re-pushed into the
// entropy heap with a fresh key and version.
//
// Pop order does not affect the final wave state. Each removal is
// queued exactly once, because a pattern leaves a cell only once. The
// worklist is not deduplicated: the bitset gate only skips neighbour
// patterns that are already gone, so a duplicated work item would
// withdraw its support a second time.
//
// Returns false on contradiction. The run state bookkeeping
// (numUndecided, metrics) lives on the Run.
func (r *Run) propagate() bool {
	pr := &r.prop
	removed := int64(0)
	contradiction := false

	for len(pr.worklist) > 0 && !contradiction {
		item := pr.worklist[len(pr.worklist)-1]
		pr.worklist = pr.worklist[:len(pr.worklist)-1]

		for _, d := range Directions {
			nIdx, ok := r.wave.neighbour(item.index, d)
			if !ok {
				continue
			}
			n := &r.wave.cells[nIdx]
			opp := d.Opposite()
			for _, q := range r.cat.Compatible(item.pattern, d) {
				if !n.isPossible(q) {
					continue
				}
				if !n.decrementSupport(q, opp) {
					continue
				}
				removed++
				switch n.remove(q, r.cat) {
				case removeContradiction:
					contradiction = true
				case removeDecided:
					r.numUndecided--
				case removeOK:
					r.obs.heap.push(heapEntry{
						key:     n.entropyKey(r.cat),
						index:   nIdx,
						version: n.version,
					})
				}
				pr.push(nIdx, q)
				if contradiction {
					break
				}
			}
			if contradiction {
				break
			}
		}
	}

	pr.reset()
	if r.metricsOK {
		removalsTotal.Add(context.Background(), removed)
		if contradiction {
			contradictionsTotal.Add(context.Background(), 1)
		}
	}
	return !contradiction
}
