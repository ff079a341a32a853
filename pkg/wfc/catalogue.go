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

import (
	"fmt"
	"math"
	"sort"
)

// PatternID identifies a pattern in a Catalogue. IDs are dense and run
// from 0 to NumPatterns-1.
type PatternID = int

// maxSupportCount is the largest per-direction compatibility list the
// 8-bit support counters can represent.
const maxSupportCount = math.MaxUint8

// PatternDescription is the caller-facing description of one pattern:
// its frequency in the sample and, for each direction, the patterns that
// may sit in the neighbouring cell.
type PatternDescription struct {
	// Weight is the pattern's frequency in the sample. Must be positive.
	Weight uint32

	// AllowedNeighbours lists, per direction, the pattern ids that are
	// consistent with this pattern in that direction. The relation must
	// be symmetric: q in AllowedNeighbours[d] of p iff p in
	// AllowedNeighbours[d.Opposite()] of q.
	AllowedNeighbours [NumDirections][]PatternID
}

// Catalogue is the immutable pattern table a run solves against: weights,
// precomputed weight*ln(weight) terms, and per-direction compatibility
// lists. A Catalogue is safe to share between concurrent runs.
type Catalogue struct {
	weights          []uint32
	weightLogWeights []float64
	compat           [][NumDirections][]PatternID
	// supportSeeds[p][d] is len(compat[p][d]), the initial support count
	// for p in any cell whose neighbour in direction d still allows
	// every pattern.
	supportSeeds [][NumDirections]uint8
	sumWeights   uint64
}

// NewCatalogue validates pattern descriptions and builds a Catalogue.
//
// Construction fails fast on programmer error rather than surfacing
// problems mid-run: zero weights, out-of-range neighbour ids, an
// asymmetric compatibility relation, or a compatibility list too long
// for the 8-bit support counters all reject the catalogue.
//
// Inputs:
//   - descs: One description per pattern; the slice index is the pattern id.
//
// Outputs:
//   - *Catalogue: The validated, immutable catalogue.
//   - error: ErrNoPatterns, ErrZeroWeightPattern, ErrPatternOutOfRange,
//     ErrCatalogueTooLarge or ErrAsymmetricCompat, wrapped with the
//     offending pattern id.
func NewCatalogue(descs []PatternDescription) (*Catalogue, error) {
	numPatterns := len(descs)
	if numPatterns == 0 {
		return nil, ErrNoPatterns
	}

	cat := &Catalogue{
		weights:          make([]uint32, numPatterns),
		weightLogWeights: make([]float64, numPatterns),
		compat:           make([][NumDirections][]PatternID, numPatterns),
		supportSeeds:     make([][NumDirections]uint8, numPatterns),
	}

	for p, desc := range descs {
		if desc.Weight == 0 {
			return nil, fmt.Errorf("pattern %d: %w", p, ErrZeroWeightPattern)
		}
		cat.weights[p] = desc.Weight
		w := float64(desc.Weight)
		cat.weightLogWeights[p] = w * math.Log(w)
		cat.sumWeights += uint64(desc.Weight)

		for _, d := range Directions {
			list := normalizeCompatList(desc.AllowedNeighbours[d])
			for _, q := range list {
				if q < 0 || q >= numPatterns {
					return nil, fmt.Errorf("pattern %d, direction %s, neighbour %d: %w",
						p, d, q, ErrPatternOutOfRange)
				}
			}
			if len(list) > maxSupportCount {
				return nil, fmt.Errorf("pattern %d, direction %s: %d compatible patterns: %w",
					p, d, len(list), ErrCatalogueTooLarge)
			}
			cat.compat[p][d] = list
			cat.supportSeeds[p][d] = uint8(len(list))
		}
	}

	// The propagator relies on q in compat[p][d] iff p in compat[q][opp(d)].
	for p := 0; p < numPatterns; p++ {
		for _, d := range Directions {
			for _, q := range cat.compat[p][d] {
				if !containsPattern(cat.compat[q][d.Opposite()], p) {
					return nil, fmt.Errorf(
						"pattern %d allows %d to the %s but not vice versa: %w",
						p, q, d, ErrAsymmetricCompat)
				}
			}
		}
	}

	return cat, nil
}

// normalizeCompatList returns a sorted, deduplicated copy of a
// compatibility list. Sorted lists keep every downstream iteration in
// ascending pattern-id order.
func normalizeCompatList(list []PatternID) []PatternID {
	out := make([]PatternID, len(list))
	copy(out, list)
	sort.Ints(out)
	dedup := out[:0]
	for i, q := range out {
		if i == 0 || q != out[i-1] {
			dedup = append(dedup, q)
		}
	}
	return dedup
}

func containsPattern(sorted []PatternID, p PatternID) bool {
	i := sort.SearchInts(sorted, p)
	return i < len(sorted) && sorted[i] == p
}

// NumPatterns returns the number of patterns in the catalogue.
func (c *Catalogue) NumPatterns() int {
	return len(c.weights)
}

// Weight returns the sample frequency of a pattern.
func (c *Catalogue) Weight(p PatternID) uint32 {
	return c.weights[p]
}

// WeightLogWeight returns the precomputed weight*ln(weight) term used in
// the entropy calculation.
func (c *Catalogue) WeightLogWeight(p PatternID) float64 {
	return c.weightLogWeights[p]
}

// Compatible returns the patterns allowed in the neighbouring cell in
// the given direction, in ascending id order. The returned slice is
// owned by the catalogue and must not be modified.
func (c *Catalogue) Compatible(p PatternID, d Direction) []PatternID {
	return c.compat[p][d]
}

// SumWeights returns the total weight across all patterns.
func (c *Catalogue) SumWeights() uint64 {
	return c.sumWeights
}

func (c *Catalogue) supportSeed(p PatternID, d Direction) uint8 {
	return c.supportSeeds[p][d]
}
