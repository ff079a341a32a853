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
	"context"
	"fmt"
	"time"

	"github.com/AleutianAI/AleutianWFC/pkg/logging"
	"github.com/google/uuid"
)

// StepResult reports the outcome of driving a run forward.
type StepResult int

const (
	// StepIncomplete: progress was made and undecided cells remain.
	StepIncomplete StepResult = iota
	// StepComplete: every cell is decided.
	StepComplete
	// StepContradiction: some cell has no possible patterns. The run
	// stays in this state until Reset.
	StepContradiction
)

// String returns the lowercase name of the result.
func (s StepResult) String() string {
	switch s {
	case StepIncomplete:
		return "incomplete"
	case StepComplete:
		return "complete"
	case StepContradiction:
		return "contradiction"
	default:
		return "unknown"
	}
}

// RunParams configures a solver run.
type RunParams struct {
	// Catalogue is the immutable pattern table. Required.
	Catalogue *Catalogue

	// Size is the output grid dimensions. Both must be positive.
	Size Size

	// Wrap selects torus or clipped boundary behaviour. The zero value
	// is WrapNone (clipped).
	Wrap Wrap

	// Constraint, if non-nil, is applied at construction and after
	// every Reset, before the first observation.
	Constraint Constraint

	// Logger, if non-nil, receives run lifecycle events. Defaults to
	// no logging.
	Logger *logging.Logger
}

// Run drives one wave to completion. A Run is single-threaded; the
// caller owns progress by calling Step, StepAll or Collapse, and must
// not read cells while a call is in flight.
type Run struct {
	id     string
	cat    *Catalogue
	wave   *wave
	obs    observer
	prop   propagator
	params RunParams
	logger *logging.Logger

	numUndecided int
	state        StepResult
	metricsOK    bool

	// scratch buffers pattern ids during force operations so the hot
	// path does not allocate.
	scratch []PatternID
}

// NewRun allocates a run and initialises it: every pattern possible in
// every cell, support counters seeded from the catalogue, entropy heap
// primed, init-time arc consistency propagated, and the constraint hook
// applied.
//
// Inputs:
//   - params: Catalogue, grid size, wrap mode, optional constraint and logger.
//   - rng: Deterministic random source; consumed for per-cell noise and
//     by the constraint hook.
//
// Outputs:
//   - *Run: The initialised run. Non-nil even when the constraint
//     contradicts, so the caller can inspect or Reset it.
//   - error: ErrNilCatalogue/ErrInvalidSize on programmer error, or the
//     constraint's error (ErrContradiction when the initial constraints
//     are unsatisfiable).
func NewRun(params RunParams, rng Rand) (*Run, error) {
	if params.Catalogue == nil {
		return nil, ErrNilCatalogue
	}
	if params.Size.Width <= 0 || params.Size.Height <= 0 {
		return nil, fmt.Errorf("%dx%d: %w", params.Size.Width, params.Size.Height, ErrInvalidSize)
	}

	r := &Run{
		id:     uuid.NewString(),
		cat:    params.Catalogue,
		wave:   newWave(params.Size, params.Wrap),
		params: params,
		logger: params.Logger,
	}
	r.metricsOK = initMetrics() == nil

	if err := r.initState(rng); err != nil {
		return r, err
	}
	r.logEvent("run initialised",
		"width", params.Size.Width,
		"height", params.Size.Height,
		"wrap", params.Wrap.String(),
		"patterns", params.Catalogue.NumPatterns(),
	)
	return r, nil
}

// initState (re)initialises all per-run state. Shared by NewRun and
// Reset; the wave and worklist buffers are reused.
func (r *Run) initState(rng Rand) error {
	r.wave.init(r.cat, rng)
	r.obs.reset()
	r.prop.reset()
	r.state = StepIncomplete

	r.numUndecided = 0
	for i := range r.wave.cells {
		if !r.wave.cells[i].decided() {
			r.numUndecided++
		}
	}

	for i := range r.wave.cells {
		c := &r.wave.cells[i]
		if !c.decided() {
			r.obs.heap.push(heapEntry{
				key:     c.entropyKey(r.cat),
				index:   i,
				version: c.version,
			})
		}
	}

	// Init-time arc consistency: a pattern with no compatible
	// neighbour toward an in-bounds direction can never be placed, so
	// its removal is queued and cascaded before the first observation.
	if !r.removeUnsupportable() || !r.propagate() {
		r.state = StepContradiction
		r.logEvent("run contradicted during initialisation")
		return nil
	}
	if r.numUndecided == 0 {
		r.state = StepComplete
	}

	if r.params.Constraint != nil {
		if err := r.params.Constraint.Apply(r, rng); err != nil {
			return fmt.Errorf("applying constraint: %w", err)
		}
	}
	return nil
}

// removeUnsupportable queues removal of patterns whose compatibility
// list is empty toward a direction that has a neighbour. Returns false
// when a cell loses its last pattern.
func (r *Run) removeUnsupportable() bool {
	for p := 0; p < r.cat.NumPatterns(); p++ {
		deadDirs := [NumDirections]bool{}
		anyDead := false
		for _, d := range Directions {
			if r.cat.supportSeed(p, d) == 0 {
				deadDirs[d] = true
				anyDead = true
			}
		}
		if !anyDead {
			continue
		}
		for i := range r.wave.cells {
			c := &r.wave.cells[i]
			if !c.isPossible(p) {
				continue
			}
			dead := false
			for _, d := range Directions {
				if !deadDirs[d] {
					continue
				}
				if _, ok := r.wave.neighbour(i, d); ok {
					dead = true
					break
				}
			}
			if !dead {
				continue
			}
			switch c.remove(p, r.cat) {
			case removeContradiction:
				return false
			case removeDecided:
				r.numUndecided--
			case removeOK:
				r.obs.heap.push(heapEntry{
					key:     c.entropyKey(r.cat),
					index:   i,
					version: c.version,
				})
			}
			r.prop.push(i, p)
		}
	}
	return true
}

// ID returns the run's correlation id, present in all log output.
func (r *Run) ID() string {
	return r.id
}

// Size returns the output grid dimensions.
func (r *Run) Size() Size {
	return r.wave.size
}

// State returns the run's current terminal or non-terminal state.
func (r *Run) State() StepResult {
	return r.state
}

// Step performs one observation followed by full constraint
// propagation. It is the atomic unit of externally-visible state
// change: the wave must not be read between the observation and the
// end of its propagation, which this method encapsulates.
//
// Returns StepComplete when no undecided cells remain (including when
// called on an already-complete run), StepContradiction if propagation
// emptied a cell, and StepIncomplete otherwise.
func (r *Run) Step(rng Rand) StepResult {
	if r.state != StepIncomplete {
		return r.state
	}
	if r.numUndecided == 0 {
		r.state = StepComplete
		return r.state
	}

	index, ok := r.obs.chooseNextCell(r.wave)
	if !ok {
		// Every remaining heap entry was stale; all cells are decided.
		r.state = StepComplete
		return r.state
	}

	c := &r.wave.cells[index]
	chosen := samplePattern(c, r.cat, rng)
	r.forceCell(index, chosen)
	r.numUndecided--
	if r.metricsOK {
		observationsTotal.Add(context.Background(), 1)
	}

	if !r.propagate() {
		r.state = StepContradiction
		return r.state
	}
	if r.numUndecided == 0 {
		r.state = StepComplete
	}
	return r.state
}

// StepAll loops Step until the run is terminal or the budget runs out.
//
// Inputs:
//   - rng: Random source for observations.
//   - budget: Maximum number of steps; <= 0 means unlimited.
//
// Outputs:
//   - StepResult: Terminal state, or StepIncomplete on budget exhaustion.
//   - error: ErrBudgetExhausted when the budget ran out. The run remains
//     valid; calling StepAll again resumes where it left off.
func (r *Run) StepAll(rng Rand, budget int) (StepResult, error) {
	steps := 0
	for r.state == StepIncomplete {
		if budget > 0 && steps >= budget {
			return StepIncomplete, ErrBudgetExhausted
		}
		r.Step(rng)
		steps++
	}
	return r.state, nil
}

// Collapse drives the run to a terminal state with no step budget.
func (r *Run) Collapse(rng Rand) StepResult {
	start := time.Now()
	result, _ := r.StepAll(rng, 0)
	if r.metricsOK {
		runDuration.Record(context.Background(), time.Since(start).Seconds())
		if result == StepComplete {
			runsCompletedTotal.Add(context.Background(), 1)
		}
	}
	return result
}

// Reset discards the wave, counters and heap and re-initialises them
// from the catalogue, re-applying the constraint hook with a fresh RNG
// subsequence. Memory is reused; nothing is reallocated.
func (r *Run) Reset(rng Rand) error {
	return r.initState(rng)
}

// CellAt returns a read-only view of the cell at coord.
func (r *Run) CellAt(coord Coord) (CellView, error) {
	if !r.wave.size.Contains(coord) {
		return CellView{}, fmt.Errorf("(%d,%d): %w", coord.X, coord.Y, ErrCoordOutOfRange)
	}
	return CellView{cell: &r.wave.cells[r.wave.size.Index(coord)], cat: r.cat}, nil
}

// Cells calls fn for every cell in row-major order, stopping early if
// fn returns false.
func (r *Run) Cells(fn func(Coord, CellView) bool) {
	for i := range r.wave.cells {
		view := CellView{cell: &r.wave.cells[i], cat: r.cat}
		if !fn(r.wave.size.CoordOf(i), view) {
			return
		}
	}
}

// Forbid removes the given patterns from the cell at coord and
// propagates to quiescence. Intended for global constraints before the
// run starts or between steps.
//
// Returns ErrContradiction if the removals empty any cell (the run
// stays contradicted until Reset), ErrCoordOutOfRange or
// ErrPatternOutOfRange on programmer error.
func (r *Run) Forbid(coord Coord, patterns ...PatternID) error {
	if !r.wave.size.Contains(coord) {
		return fmt.Errorf("(%d,%d): %w", coord.X, coord.Y, ErrCoordOutOfRange)
	}
	for _, p := range patterns {
		if p < 0 || p >= r.cat.NumPatterns() {
			return fmt.Errorf("pattern %d: %w", p, ErrPatternOutOfRange)
		}
	}

	index := r.wave.size.Index(coord)
	c := &r.wave.cells[index]
	for _, p := range patterns {
		if !c.isPossible(p) {
			continue
		}
		wasUndecided := !c.decided()
		result := c.remove(p, r.cat)
		r.prop.push(index, p)
		switch result {
		case removeContradiction:
			r.state = StepContradiction
			return ErrContradiction
		case removeDecided:
			if wasUndecided {
				r.numUndecided--
			}
		case removeOK:
			r.obs.heap.push(heapEntry{
				key:     c.entropyKey(r.cat),
				index:   index,
				version: c.version,
			})
		}
	}

	if !r.propagate() {
		r.state = StepContradiction
		return ErrContradiction
	}
	if r.numUndecided == 0 && r.state == StepIncomplete {
		r.state = StepComplete
	}
	return nil
}

// Force collapses the cell at coord to a single pattern and propagates
// to quiescence. Forcing a pattern the cell no longer allows is a
// contradiction, not a programmer error.
func (r *Run) Force(coord Coord, p PatternID) error {
	if !r.wave.size.Contains(coord) {
		return fmt.Errorf("(%d,%d): %w", coord.X, coord.Y, ErrCoordOutOfRange)
	}
	if p < 0 || p >= r.cat.NumPatterns() {
		return fmt.Errorf("pattern %d: %w", p, ErrPatternOutOfRange)
	}

	index := r.wave.size.Index(coord)
	c := &r.wave.cells[index]
	if !c.isPossible(p) {
		r.state = StepContradiction
		return ErrContradiction
	}
	if !c.decided() {
		r.forceCell(index, p)
		r.numUndecided--
	}
	if !r.propagate() {
		r.state = StepContradiction
		return ErrContradiction
	}
	if r.numUndecided == 0 && r.state == StepIncomplete {
		r.state = StepComplete
	}
	return nil
}

// fork builds a fresh run with the same parameters and its own RNG.
// Used by the Parallel retry strategy; the catalogue is shared, all
// mutable state is owned by the new run.
func (r *Run) fork(rng Rand) (*Run, error) {
	return NewRun(r.params, rng)
}

// adopt takes over another run's wave and state. The winning parallel
// attempt is adopted into the caller-visible run.
func (r *Run) adopt(other *Run) {
	r.wave = other.wave
	r.obs = other.obs
	r.prop = other.prop
	r.numUndecided = other.numUndecided
	r.state = other.state
}

func (r *Run) logEvent(msg string, args ...any) {
	if r.logger == nil {
		return
	}
	r.logger.With("run_id", r.id).Info(msg, args...)
}
