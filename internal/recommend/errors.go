// Crossfeed - Cross-Platform Content Preference Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crossfeed

package recommend

import (
	"fmt"

	"github.com/tomtom215/crossfeed/internal/validation"
)

// ValidationError rejects a write before any storage is touched.
type ValidationError struct {
	Op  string
	Err *validation.RequestValidationError
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: invalid input: %v", e.Op, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// validate returns nil or a *ValidationError for op.
func validate(op string, v interface{}) error {
	if verr := validation.ValidateStruct(v); verr != nil {
		return &ValidationError{Op: op, Err: verr}
	}
	return nil
}
