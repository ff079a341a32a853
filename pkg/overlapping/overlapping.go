// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package overlapping extracts weighted pattern catalogues from sample
// grids for the solver in package wfc.
//
// A sample is a grid of uint32 values (callers pack pixel colours or
// tile ids). Every patternSize x patternSize window of the sample
// becomes a pattern; identical windows collapse into one pattern whose
// weight is its occurrence count, and two patterns are compatible in a
// direction when their windows agree on the overlap left by shifting
// one cell that way.
//
// Pattern ids are assigned in first-occurrence scan order (row-major),
// so the same sample always yields the same catalogue — a requirement
// for cross-machine determinism of seeded runs.
package overlapping

import (
	"fmt"

	"github.com/AleutianAI/AleutianWFC/pkg/wfc"
)

// Sample is an immutable grid of packed values to extract patterns from.
type Sample struct {
	size   wfc.Size
	values []uint32
}

// NewSample wraps row-major values in a Sample.
func NewSample(values []uint32, size wfc.Size) (*Sample, error) {
	if size.Width <= 0 || size.Height <= 0 {
		return nil, fmt.Errorf("sample dimensions must be positive, got %dx%d",
			size.Width, size.Height)
	}
	if len(values) != size.Count() {
		return nil, fmt.Errorf("sample has %d values, size %dx%d needs %d",
			len(values), size.Width, size.Height, size.Count())
	}
	return &Sample{size: size, values: values}, nil
}

// Size returns the sample dimensions.
func (s *Sample) Size() wfc.Size {
	return s.size
}

// get reads the sample with torus wrapping; extraction coordinates are
// pre-normalized, so the wrap here only triggers for window overhang.
func (s *Sample) get(c wfc.Coord) uint32 {
	x := c.X % s.size.Width
	if x < 0 {
		x += s.size.Width
	}
	y := c.Y % s.size.Height
	if y < 0 {
		y += s.size.Height
	}
	return s.values[y*s.size.Width+x]
}

// Patterns is the deduplicated window catalogue of one sample.
type Patterns struct {
	sample      *Sample
	patternSize int
	// windows[p] is the row-major cell values of pattern p.
	windows [][]uint32
	counts  []uint32
	// firstCoord[p] is the first sample coordinate the pattern was seen
	// at; ids are assigned in scan order of these coordinates.
	firstCoord []wfc.Coord
	// idAt maps each extraction coordinate (row-major sample index) to
	// its pattern id, -1 where no window was extracted (clipped edges).
	idAt []int
}

// Extract slides a patternSize window over the sample and builds the
// pattern catalogue.
//
// Inputs:
//   - sample: The source grid.
//   - patternSize: Window edge length, at least 1 and at most the
//     smaller sample dimension.
//   - periodic: When true the window wraps around the sample edges
//     (every coordinate yields a window); when false only fully
//     in-bounds windows are extracted.
//
// Outputs:
//   - *Patterns: The deduplicated catalogue with occurrence counts.
//   - error: Invalid patternSize.
func Extract(sample *Sample, patternSize int, periodic bool) (*Patterns, error) {
	if patternSize < 1 {
		return nil, fmt.Errorf("pattern size must be at least 1, got %d", patternSize)
	}
	if patternSize > sample.size.Width || patternSize > sample.size.Height {
		return nil, fmt.Errorf("pattern size %d exceeds sample dimensions %dx%d",
			patternSize, sample.size.Width, sample.size.Height)
	}

	p := &Patterns{
		sample:      sample,
		patternSize: patternSize,
		idAt:        make([]int, sample.size.Count()),
	}
	for i := range p.idAt {
		p.idAt[i] = -1
	}

	maxX, maxY := sample.size.Width, sample.size.Height
	if !periodic {
		maxX -= patternSize - 1
		maxY -= patternSize - 1
	}

	index := make(map[string]int)
	window := make([]uint32, patternSize*patternSize)
	for y := 0; y < maxY; y++ {
		for x := 0; x < maxX; x++ {
			origin := wfc.Coord{X: x, Y: y}
			readWindow(sample, origin, patternSize, window)
			key := windowKey(window)
			id, seen := index[key]
			if !seen {
				id = len(p.windows)
				index[key] = id
				stored := make([]uint32, len(window))
				copy(stored, window)
				p.windows = append(p.windows, stored)
				p.counts = append(p.counts, 0)
				p.firstCoord = append(p.firstCoord, origin)
			}
			p.counts[id]++
			p.idAt[y*sample.size.Width+x] = id
		}
	}

	return p, nil
}

func readWindow(s *Sample, origin wfc.Coord, n int, out []uint32) {
	for dy := 0; dy < n; dy++ {
		for dx := 0; dx < n; dx++ {
			out[dy*n+dx] = s.get(wfc.Coord{X: origin.X + dx, Y: origin.Y + dy})
		}
	}
}

// windowKey encodes a window's values into a map key.
func windowKey(window []uint32) string {
	buf := make([]byte, 0, len(window)*4)
	for _, v := range window {
		buf = append(buf, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
	}
	return string(buf)
}

// NumPatterns returns the number of distinct patterns.
func (p *Patterns) NumPatterns() int {
	return len(p.windows)
}

// Weight returns the occurrence count of a pattern in the sample.
func (p *Patterns) Weight(id wfc.PatternID) uint32 {
	return p.counts[id]
}

// TopLeft returns the value at a pattern's top-left cell, which is what
// renderers paint for a decided wave cell.
func (p *Patterns) TopLeft(id wfc.PatternID) uint32 {
	return p.windows[id][0]
}

// Value returns the pattern value at (dx, dy) within the window.
func (p *Patterns) Value(id wfc.PatternID, dx, dy int) uint32 {
	return p.windows[id][dy*p.patternSize+dx]
}

// IDGrid returns the pattern id extracted at each sample coordinate in
// row-major order, -1 where no window was extracted.
func (p *Patterns) IDGrid() []int {
	out := make([]int, len(p.idAt))
	copy(out, p.idAt)
	return out
}

// compatible reports whether pattern b may sit one cell away from
// pattern a in direction d: the two windows must agree everywhere they
// overlap after the shift.
func (p *Patterns) compatible(a, b wfc.PatternID, d wfc.Direction) bool {
	n := p.patternSize
	var aOff, bOff wfc.Coord
	switch d {
	case wfc.North:
		aOff, bOff = wfc.Coord{X: 0, Y: 0}, wfc.Coord{X: 0, Y: 1}
	case wfc.South:
		aOff, bOff = wfc.Coord{X: 0, Y: 1}, wfc.Coord{X: 0, Y: 0}
	case wfc.East:
		aOff, bOff = wfc.Coord{X: 1, Y: 0}, wfc.Coord{X: 0, Y: 0}
	default: // West
		aOff, bOff = wfc.Coord{X: 0, Y: 0}, wfc.Coord{X: 1, Y: 0}
	}

	overlapW, overlapH := n, n
	if d == wfc.East || d == wfc.West {
		overlapW = n - 1
	} else {
		overlapH = n - 1
	}

	for y := 0; y < overlapH; y++ {
		for x := 0; x < overlapW; x++ {
			av := p.Value(a, x+aOff.X, y+aOff.Y)
			bv := p.Value(b, x+bOff.X, y+bOff.Y)
			if av != bv {
				return false
			}
		}
	}
	return true
}

// Descriptions builds the solver-facing catalogue input: weights plus
// per-direction compatibility derived from overlap agreement. The
// result feeds wfc.NewCatalogue directly.
func (p *Patterns) Descriptions() []wfc.PatternDescription {
	descs := make([]wfc.PatternDescription, p.NumPatterns())
	for a := 0; a < p.NumPatterns(); a++ {
		descs[a].Weight = p.counts[a]
		for _, d := range wfc.Directions {
			var allowed []wfc.PatternID
			for b := 0; b < p.NumPatterns(); b++ {
				if p.compatible(a, b, d) {
					allowed = append(allowed, b)
				}
			}
			descs[a].AllowedNeighbours[d] = allowed
		}
	}
	return descs
}

// Catalogue is a convenience wrapper: Descriptions fed through
// wfc.NewCatalogue.
func (p *Patterns) Catalogue() (*wfc.Catalogue, error) {
	return wfc.NewCatalogue(p.Descriptions())
}
