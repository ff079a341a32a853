// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package wfc implements the core of a Wave Function Collapse constraint
// solver: given a frequency-weighted catalogue of patterns and a symmetric
// adjacency relation between them, it populates a two-dimensional grid so
// that every placed pattern is locally compatible with its neighbours and
// the global pattern frequency approximates the catalogue's weights.
//
// The solver is grid-agnostic. Pattern extraction from sample data lives in
// package overlapping, and image handling in package imagegen; this package
// only consumes a Catalogue and produces a populated wave.
//
// # Architecture
//
//	┌───────────────────────────────────────────────────────────┐
//	│                           Run                             │
//	│  ┌───────────┐ ┌──────────┐ ┌────────────┐ ┌───────────┐  │
//	│  │   wave    │ │ entropy  │ │ propagator │ │ observer  │  │
//	│  │ (cells +  │ │ min-heap │ │ (worklist) │ │ (sampler) │  │
//	│  │  support) │ │          │ │            │ │           │  │
//	│  └───────────┘ └──────────┘ └────────────┘ └───────────┘  │
//	└───────────────────────────────────────────────────────────┘
//
// A Run is driven by the caller: Step performs one observation followed by
// full constraint propagation, StepAll loops until a terminal state or a
// step budget is exhausted, and CollapseRetrying orchestrates restarts
// after contradictions.
//
// # Basic Usage
//
//	cat, err := wfc.NewCatalogue(descs)
//	if err != nil { ... }
//	rng := wfc.NewRand(seed)
//	run, err := wfc.NewRun(wfc.RunParams{
//	    Catalogue: cat,
//	    Size:      wfc.Size{Width: 48, Height: 48},
//	    Wrap:      wfc.WrapXY,
//	}, rng)
//	if err != nil { ... }
//	result, err := run.CollapseRetrying(rng, wfc.NumTimes(10))
//
// # Thread Safety
//
// A Run is single-threaded: no operation blocks, and callers must not read
// the wave while a Step is in flight. The Catalogue is immutable after
// construction and safe to share across runs and goroutines, which is what
// the Parallel retry strategy relies on.
//
// # Determinism
//
// Given the same seed, catalogue, grid size, wrap mode and constraints, a
// run produces bit-identical results on every platform: integer sums are
// maintained exactly, and the floating-point entropy term is always
// recomputed in ascending pattern-id order. Parallel retries trade this
// reproducibility away for speed (the first finishing attempt wins).
package wfc
