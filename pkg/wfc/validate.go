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

import "fmt"

// Validate recomputes every per-cell quantity from first principles and
// compares it with the maintained state. It holds between steps on a
// consistent run and is intended for tests and debugging; it is far too
// slow for the hot path.
//
// Checked:
//   - numPossible and sumWeights match a literal recount of the bitset.
//   - For every possible pattern and every in-bounds direction, the
//     support counter equals the number of compatible patterns still
//     possible in that neighbour, and is at least one on undecided or
//     decided (non-contradicted) cells.
func (r *Run) Validate() error {
	for i := range r.wave.cells {
		c := &r.wave.cells[i]
		coord := r.wave.size.CoordOf(i)

		count := 0
		var sum uint64
		c.eachPossible(func(p PatternID) bool {
			count++
			sum += uint64(r.cat.Weight(p))
			return true
		})
		if count != c.numPossible {
			return fmt.Errorf("cell (%d,%d): numPossible %d, bitset has %d",
				coord.X, coord.Y, c.numPossible, count)
		}
		if sum != c.sumWeights {
			return fmt.Errorf("cell (%d,%d): sumWeights %d, literal sum %d",
				coord.X, coord.Y, c.sumWeights, sum)
		}

		var supportErr error
		c.eachPossible(func(p PatternID) bool {
			for _, d := range Directions {
				nIdx, ok := r.wave.neighbour(i, d)
				if !ok {
					continue
				}
				n := &r.wave.cells[nIdx]
				live := 0
				for _, q := range r.cat.Compatible(p, d) {
					if n.isPossible(q) {
						live++
					}
				}
				got := int(c.support[p*NumDirections+int(d)])
				if got != live {
					supportErr = fmt.Errorf(
						"cell (%d,%d) pattern %d direction %s: support %d, %d compatible patterns live",
						coord.X, coord.Y, p, d, got, live)
					return false
				}
				if live == 0 {
					supportErr = fmt.Errorf(
						"cell (%d,%d) pattern %d direction %s: possible but unsupported",
						coord.X, coord.Y, p, d)
					return false
				}
			}
			return true
		})
		if supportErr != nil {
			return supportErr
		}
	}
	return nil
}
