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

import "errors"

// Sentinel errors for the wfc package.
var (
	// Run outcomes
	ErrContradiction   = errors.New("wfc: contradiction")
	ErrBudgetExhausted = errors.New("wfc: step budget exhausted")

	// Catalogue construction errors
	ErrNoPatterns        = errors.New("wfc: catalogue has no patterns")
	ErrZeroWeightPattern = errors.New("wfc: pattern weight must be positive")
	ErrAsymmetricCompat  = errors.New("wfc: compatibility table is not symmetric")
	ErrCatalogueTooLarge = errors.New("wfc: compatibility list exceeds support counter range")

	// Programmer errors on run operations
	ErrPatternOutOfRange = errors.New("wfc: pattern id out of range")
	ErrCoordOutOfRange   = errors.New("wfc: coordinate out of bounds")
	ErrInvalidSize       = errors.New("wfc: grid dimensions must be positive")
	ErrNilCatalogue      = errors.New("wfc: catalogue must not be nil")
)
