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
	"errors"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// RetryStrategy decides how a run recovers from contradictions. On each
// restart the wave, counters and heap are re-initialised from the
// catalogue, the constraint hook is re-applied, and a fresh RNG
// subsequence is consumed.
type RetryStrategy interface {
	// Retry drives the run to completion under the strategy's policy.
	// Returns StepComplete on success, StepContradiction when the
	// policy gave up, and an error only for non-contradiction failures
	// (a constraint programmer error surfaced during Reset).
	Retry(r *Run, rng Rand) (StepResult, error)
}

// Forever restarts until the run completes. Only suitable for
// catalogues known to be solvable.
type Forever struct{}

// Retry implements RetryStrategy.
func (Forever) Retry(r *Run, rng Rand) (StepResult, error) {
	for {
		if r.Collapse(rng) == StepComplete {
			return StepComplete, nil
		}
		if err := r.restart(rng); err != nil {
			return StepContradiction, err
		}
	}
}

// NumTimes makes at most n attempts in total, sequentially, and
// surfaces the contradiction when all of them fail.
type NumTimes int

// Retry implements RetryStrategy.
func (n NumTimes) Retry(r *Run, rng Rand) (StepResult, error) {
	for attempt := 0; ; attempt++ {
		if r.Collapse(rng) == StepComplete {
			return StepComplete, nil
		}
		if attempt+1 >= int(n) {
			return StepContradiction, nil
		}
		if err := r.restart(rng); err != nil {
			return StepContradiction, err
		}
	}
}

// Parallel runs n independent attempts concurrently, one shot each.
// The first attempt to complete wins; the others are cancelled
// cooperatively between steps via a shared stop flag. Each attempt owns
// its wave, counters, heap and RNG (seeded from the caller's rng); the
// only shared state is the immutable catalogue and the flag.
//
// Parallel trades reproducibility for speed: with more than one
// solvable attempt, which one wins depends on scheduling.
type Parallel int

// Retry implements RetryStrategy.
func (n Parallel) Retry(r *Run, rng Rand) (StepResult, error) {
	attempts := int(n)
	if attempts <= 1 {
		return NumTimes(1).Retry(r, rng)
	}

	// Seeds are drawn up front so the caller's rng is consumed a fixed
	// amount regardless of scheduling.
	seeds := make([]int64, attempts)
	for i := range seeds {
		seeds[i] = deriveSeed(rng)
	}

	var (
		stop   atomic.Bool
		mu     sync.Mutex
		winner *Run
	)
	var g errgroup.Group
	for _, seed := range seeds {
		g.Go(func() error {
			attemptRng := NewRand(seed)
			attempt, err := r.fork(attemptRng)
			if err != nil {
				if errors.Is(err, ErrContradiction) {
					return nil
				}
				return err
			}
			for attempt.State() == StepIncomplete {
				if stop.Load() {
					return nil
				}
				attempt.Step(attemptRng)
			}
			if attempt.State() == StepComplete {
				mu.Lock()
				if winner == nil {
					winner = attempt
					stop.Store(true)
				}
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return StepContradiction, err
	}

	if winner == nil {
		return StepContradiction, nil
	}
	r.adopt(winner)
	return StepComplete, nil
}

// CollapseRetrying orchestrates restarts after contradictions using
// the given strategy.
//
// Inputs:
//   - rng: Random source; sequential strategies consume it directly,
//     Parallel derives per-attempt seeds from it.
//   - strategy: Forever, NumTimes(n) or Parallel(n).
//
// Outputs:
//   - StepResult: StepComplete or StepContradiction.
//   - error: Only for non-contradiction failures.
func (r *Run) CollapseRetrying(rng Rand, strategy RetryStrategy) (StepResult, error) {
	_, span := tracer.Start(context.Background(), "wfc.collapse_retrying",
		trace.WithAttributes(
			attribute.String("run_id", r.id),
			attribute.Int("grid_cells", r.wave.size.Count()),
		))
	defer span.End()

	result, err := strategy.Retry(r, rng)
	if err != nil {
		return result, err
	}
	r.logEvent("collapse finished", "result", result.String())
	return result, nil
}

// restart resets the run for another attempt and records the restart.
func (r *Run) restart(rng Rand) error {
	if r.metricsOK {
		restartsTotal.Add(context.Background(), 1)
	}
	r.logEvent("restarting after contradiction")
	err := r.Reset(rng)
	if err != nil && !errors.Is(err, ErrContradiction) {
		return err
	}
	return nil
}
