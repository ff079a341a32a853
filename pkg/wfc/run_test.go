// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package wfc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCatalogue(t *testing.T, descs []PatternDescription) *Catalogue {
	t.Helper()
	cat, err := NewCatalogue(descs)
	require.NoError(t, err)
	return cat
}

func mustRun(t *testing.T, cat *Catalogue, size Size, wrap Wrap, rng Rand) *Run {
	t.Helper()
	run, err := NewRun(RunParams{Catalogue: cat, Size: size, Wrap: wrap}, rng)
	require.NoError(t, err)
	return run
}

// chosenAt returns the decided pattern at coord, failing the test on an
// undecided cell.
func chosenAt(t *testing.T, run *Run, coord Coord) PatternID {
	t.Helper()
	view, err := run.CellAt(coord)
	require.NoError(t, err)
	p, ok := view.ChosenPattern()
	require.True(t, ok, "cell (%d,%d) is not decided", coord.X, coord.Y)
	return p
}

// assertLocallyConsistent verifies that every pair of adjacent decided
// cells satisfies the compatibility relation.
func assertLocallyConsistent(t *testing.T, run *Run, cat *Catalogue) {
	t.Helper()
	size := run.Size()
	run.Cells(func(coord Coord, view CellView) bool {
		p, ok := view.ChosenPattern()
		require.True(t, ok)
		for _, d := range Directions {
			nCoord, inBounds := run.wave.wrap.Normalize(coord.Add(d.Delta()), size)
			if !inBounds {
				continue
			}
			q := chosenAt(t, run, nCoord)
			assert.True(t, containsPattern(cat.Compatible(p, d), q),
				"cells (%d,%d)=%d and (%d,%d)=%d clash in direction %s",
				coord.X, coord.Y, p, nCoord.X, nCoord.Y, q, d)
		}
		return true
	})
}

func TestChequerboardEvenTorus(t *testing.T) {
	cat := mustCatalogue(t, chequerboardDescs())

	for _, seed := range []int64{1, 2, 99, 424242} {
		rng := NewRand(seed)
		run := mustRun(t, cat, Size{Width: 6, Height: 4}, WrapXY, rng)

		result := run.Collapse(rng)
		require.Equal(t, StepComplete, result, "seed %d", seed)

		// One observation fixes the parity; propagation does the rest.
		parity := chosenAt(t, run, Coord{0, 0})
		run.Cells(func(coord Coord, view CellView) bool {
			want := parity ^ ((coord.X + coord.Y) & 1)
			p, ok := view.ChosenPattern()
			require.True(t, ok)
			assert.Equal(t, want, p, "seed %d cell (%d,%d)", seed, coord.X, coord.Y)
			return true
		})
		assertLocallyConsistent(t, run, cat)
		assert.NoError(t, run.Validate())
	}
}

func TestChequerboardOddTorusContradicts(t *testing.T) {
	cat := mustCatalogue(t, chequerboardDescs())

	for _, seed := range []int64{1, 7, 1234} {
		rng := NewRand(seed)
		run := mustRun(t, cat, Size{Width: 3, Height: 3}, WrapXY, rng)

		// The odd cycle cannot two-colour: every attempt must fail.
		assert.Equal(t, StepContradiction, run.Collapse(rng), "seed %d", seed)
		assert.Equal(t, StepContradiction, run.State())
	}
}

func TestSinglePatternIdentity(t *testing.T) {
	cat := mustCatalogue(t, freeDescs(1))
	rng := NewRand(1)
	run := mustRun(t, cat, Size{Width: 5, Height: 3}, WrapXY, rng)

	// With one pattern every cell is decided at init.
	assert.Equal(t, StepComplete, run.Step(rng))
	run.Cells(func(coord Coord, view CellView) bool {
		p, ok := view.ChosenPattern()
		require.True(t, ok)
		assert.Equal(t, 0, p)
		return true
	})
}

// abcDescs: A(0) pairs only with B(1), B pairs with A and C(2), in all
// directions. B cells therefore form one parity class of the torus.
func abcDescs() []PatternDescription {
	return []PatternDescription{
		allDirections(1, 1),
		allDirections(1, 0, 2),
		allDirections(1, 1),
	}
}

func TestAnchorForcedCorner(t *testing.T) {
	cat := mustCatalogue(t, abcDescs())
	const a, b = 0, 1
	anchor := Coord{X: 9, Y: 9}

	constraint := ConstraintFunc(func(view ConstraintView, rng Rand) error {
		return view.Force(anchor, a)
	})

	for _, seed := range []int64{3, 17, 2026} {
		rng := NewRand(seed)
		run, err := NewRun(RunParams{
			Catalogue:  cat,
			Size:       Size{Width: 10, Height: 10},
			Wrap:       WrapXY,
			Constraint: constraint,
		}, rng)
		require.NoError(t, err)

		result, err := run.CollapseRetrying(rng, NumTimes(20))
		require.NoError(t, err)
		require.Equal(t, StepComplete, result, "seed %d", seed)

		assert.Equal(t, a, chosenAt(t, run, anchor), "seed %d", seed)
		for _, nCoord := range []Coord{{8, 9}, {0, 9}, {9, 8}, {9, 0}} {
			assert.Equal(t, b, chosenAt(t, run, nCoord),
				"seed %d neighbour (%d,%d)", seed, nCoord.X, nCoord.Y)
		}
		assertLocallyConsistent(t, run, cat)
	}
}

func TestForbidThenSolve(t *testing.T) {
	cat := mustCatalogue(t, chequerboardDescs())
	rng := NewRand(11)
	run := mustRun(t, cat, Size{Width: 4, Height: 4}, WrapXY, rng)

	// Forbidding pattern 0 at the origin pins the parity for the whole
	// grid via propagation.
	require.NoError(t, run.Forbid(Coord{0, 0}, 0))
	require.Equal(t, StepComplete, run.Collapse(rng))

	assert.Equal(t, 1, chosenAt(t, run, Coord{0, 0}))
	run.Cells(func(coord Coord, view CellView) bool {
		want := 1 ^ ((coord.X + coord.Y) & 1)
		p, _ := view.ChosenPattern()
		assert.Equal(t, want, p)
		return true
	})
}

func TestForbidAllPatternsContradicts(t *testing.T) {
	cat := mustCatalogue(t, chequerboardDescs())
	rng := NewRand(5)
	run := mustRun(t, cat, Size{Width: 4, Height: 4}, WrapXY, rng)

	err := run.Forbid(Coord{1, 2}, 0, 1)
	assert.ErrorIs(t, err, ErrContradiction)
	assert.Equal(t, StepContradiction, run.State())
}

func TestForbidValidation(t *testing.T) {
	cat := mustCatalogue(t, chequerboardDescs())
	rng := NewRand(5)
	run := mustRun(t, cat, Size{Width: 4, Height: 4}, WrapXY, rng)

	assert.ErrorIs(t, run.Forbid(Coord{4, 0}, 0), ErrCoordOutOfRange)
	assert.ErrorIs(t, run.Forbid(Coord{0, 0}, 2), ErrPatternOutOfRange)
	assert.ErrorIs(t, run.Force(Coord{0, -1}, 0), ErrCoordOutOfRange)
	assert.ErrorIs(t, run.Force(Coord{0, 0}, -1), ErrPatternOutOfRange)
}

func TestForceImpossiblePatternContradicts(t *testing.T) {
	cat := mustCatalogue(t, chequerboardDescs())
	rng := NewRand(5)
	run := mustRun(t, cat, Size{Width: 4, Height: 4}, WrapXY, rng)

	require.NoError(t, run.Forbid(Coord{0, 0}, 0))
	assert.ErrorIs(t, run.Force(Coord{0, 0}, 0), ErrContradiction)
}

func TestBudgetExhaustionAndResume(t *testing.T) {
	// Four mutually compatible patterns: propagation never removes
	// anything, so every cell costs one observation.
	cat := mustCatalogue(t, freeDescs(1, 1, 1, 1))
	rng := NewRand(21)
	run := mustRun(t, cat, Size{Width: 3, Height: 3}, WrapXY, rng)

	result, err := run.StepAll(rng, 1)
	assert.ErrorIs(t, err, ErrBudgetExhausted)
	assert.Equal(t, StepIncomplete, result)

	// The run is still valid; an unbudgeted StepAll finishes the job.
	result, err = run.StepAll(rng, 0)
	require.NoError(t, err)
	assert.Equal(t, StepComplete, result)
	assert.NoError(t, run.Validate())
}

func TestDeterminism(t *testing.T) {
	cat := mustCatalogue(t, abcDescs())
	size := Size{Width: 8, Height: 8}

	collect := func(seed int64) []PatternID {
		rng := NewRand(seed)
		run := mustRun(t, cat, size, WrapXY, rng)
		result, err := run.CollapseRetrying(rng, NumTimes(50))
		require.NoError(t, err)
		require.Equal(t, StepComplete, result)
		var out []PatternID
		run.Cells(func(_ Coord, view CellView) bool {
			p, _ := view.ChosenPattern()
			out = append(out, p)
			return true
		})
		return out
	}

	first := collect(31337)
	second := collect(31337)
	assert.Equal(t, first, second, "identical seeds must produce identical waves")
}

func TestInvariantsHoldAfterEveryStep(t *testing.T) {
	cat := mustCatalogue(t, abcDescs())
	rng := NewRand(77)
	run := mustRun(t, cat, Size{Width: 6, Height: 6}, WrapXY, rng)

	for run.State() == StepIncomplete {
		result := run.Step(rng)
		if result == StepContradiction {
			// Contradicted waves are not quiescent; restart and keep going.
			require.NoError(t, run.Reset(rng))
			continue
		}
		require.NoError(t, run.Validate())
	}
	require.Equal(t, StepComplete, run.State())
	assertLocallyConsistent(t, run, cat)
}

func TestIdempotentPropagation(t *testing.T) {
	cat := mustCatalogue(t, chequerboardDescs())
	rng := NewRand(13)
	run := mustRun(t, cat, Size{Width: 4, Height: 4}, WrapXY, rng)
	require.Equal(t, StepComplete, run.Collapse(rng))

	before := make([]PatternID, 0, 16)
	run.Cells(func(_ Coord, view CellView) bool {
		p, _ := view.ChosenPattern()
		before = append(before, p)
		return true
	})

	// An extra propagation round on a quiescent wave changes nothing.
	require.True(t, run.propagate())
	require.NoError(t, run.Validate())

	after := make([]PatternID, 0, 16)
	run.Cells(func(_ Coord, view CellView) bool {
		p, _ := view.ChosenPattern()
		after = append(after, p)
		return true
	})
	assert.Equal(t, before, after)
}

func TestOneByOneGrid(t *testing.T) {
	cat := mustCatalogue(t, chequerboardDescs())
	rng := NewRand(9)
	run := mustRun(t, cat, Size{Width: 1, Height: 1}, WrapNone, rng)

	// No neighbours means no propagation: a single observation decides
	// the only cell.
	assert.Equal(t, StepComplete, run.Step(rng))
	p := chosenAt(t, run, Coord{0, 0})
	assert.Contains(t, []PatternID{0, 1}, p)
	assert.NoError(t, run.Validate())
}

func TestClippedBoundaries(t *testing.T) {
	cat := mustCatalogue(t, chequerboardDescs())

	// Odd dimensions are only colourable when the edges do not wrap.
	for _, seed := range []int64{2, 8, 64} {
		rng := NewRand(seed)
		run := mustRun(t, cat, Size{Width: 5, Height: 5}, WrapNone, rng)
		require.Equal(t, StepComplete, run.Collapse(rng), "seed %d", seed)
		assertLocallyConsistent(t, run, cat)
		assert.NoError(t, run.Validate())
	}
}

func TestDeadPatternRemovedAtInit(t *testing.T) {
	// Pattern 2 has an empty compatibility list in every direction: on
	// a torus it can never be placed and must be gone before the first
	// observation.
	descs := []PatternDescription{
		allDirections(1, 0, 1),
		allDirections(1, 0, 1),
		{Weight: 1},
	}
	cat := mustCatalogue(t, descs)
	rng := NewRand(3)
	run := mustRun(t, cat, Size{Width: 4, Height: 4}, WrapXY, rng)

	run.Cells(func(coord Coord, view CellView) bool {
		view.Possible(func(p PatternID) bool {
			assert.NotEqual(t, 2, p, "cell (%d,%d)", coord.X, coord.Y)
			return true
		})
		return true
	})
	require.NoError(t, run.Validate())
	require.Equal(t, StepComplete, run.Collapse(rng))
}

func TestWeightTendency(t *testing.T) {
	// Two mutually compatible patterns with weights 1:3. Over enough
	// cells the empirical frequency should approach 25%:75%.
	cat := mustCatalogue(t, freeDescs(1, 3))
	counts := [2]int{}

	for seed := int64(1); seed <= 20; seed++ {
		rng := NewRand(seed)
		run := mustRun(t, cat, Size{Width: 8, Height: 8}, WrapXY, rng)
		require.Equal(t, StepComplete, run.Collapse(rng))
		run.Cells(func(_ Coord, view CellView) bool {
			p, _ := view.ChosenPattern()
			counts[p]++
			return true
		})
	}

	total := counts[0] + counts[1]
	ratio := float64(counts[1]) / float64(total)
	assert.Greater(t, ratio, 0.6, "heavy pattern should dominate (got %.2f)", ratio)
	assert.Less(t, ratio, 0.9, "light pattern should still appear (got %.2f)", ratio)
}

func TestNewRunValidation(t *testing.T) {
	cat := mustCatalogue(t, chequerboardDescs())
	rng := NewRand(1)

	_, err := NewRun(RunParams{Size: Size{4, 4}}, rng)
	assert.ErrorIs(t, err, ErrNilCatalogue)

	_, err = NewRun(RunParams{Catalogue: cat, Size: Size{0, 4}}, rng)
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestConstraintContradictionSurfacesFromNewRun(t *testing.T) {
	cat := mustCatalogue(t, chequerboardDescs())
	rng := NewRand(1)

	_, err := NewRun(RunParams{
		Catalogue: cat,
		Size:      Size{4, 4},
		Wrap:      WrapXY,
		Constraint: ConstraintFunc(func(view ConstraintView, rng Rand) error {
			return view.Forbid(Coord{0, 0}, 0, 1)
		}),
	}, rng)
	assert.ErrorIs(t, err, ErrContradiction)
}

func TestCellViewProgress(t *testing.T) {
	cat := mustCatalogue(t, freeDescs(2, 3))
	rng := NewRand(1)
	run := mustRun(t, cat, Size{Width: 2, Height: 2}, WrapXY, rng)

	view, err := run.CellAt(Coord{0, 0})
	require.NoError(t, err)
	assert.Equal(t, 2, view.NumPossible())
	assert.Equal(t, uint64(5), view.SumWeights())

	var seen []PatternID
	var weights []uint32
	view.PatternWeights(func(p PatternID, w uint32) bool {
		seen = append(seen, p)
		weights = append(weights, w)
		return true
	})
	assert.Equal(t, []PatternID{0, 1}, seen)
	assert.Equal(t, []uint32{2, 3}, weights)

	_, ok := view.ChosenPattern()
	assert.False(t, ok)

	_, err = run.CellAt(Coord{2, 0})
	assert.ErrorIs(t, err, ErrCoordOutOfRange)
}
