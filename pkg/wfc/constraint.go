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

// ConstraintView is the narrow surface a global constraint may touch:
// pin or forbid patterns at coordinates before any observation runs.
// Both operations propagate to quiescence and may report
// ErrContradiction synchronously.
type ConstraintView interface {
	Size() Size
	Forbid(coord Coord, patterns ...PatternID) error
	Force(coord Coord, pattern PatternID) error
}

// Constraint is a caller-supplied hook applied at run construction and
// after every Reset, so retry strategies re-establish the same global
// constraints on each attempt.
type Constraint interface {
	Apply(view ConstraintView, rng Rand) error
}

// ConstraintFunc adapts a function to the Constraint interface.
type ConstraintFunc func(view ConstraintView, rng Rand) error

// Apply implements Constraint.
func (f ConstraintFunc) Apply(view ConstraintView, rng Rand) error {
	return f(view, rng)
}

// NopConstraint constrains nothing.
type NopConstraint struct{}

// Apply implements Constraint.
func (NopConstraint) Apply(ConstraintView, Rand) error { return nil }

var _ Constraint = (*NopConstraint)(nil)
var _ ConstraintView = (*Run)(nil)
