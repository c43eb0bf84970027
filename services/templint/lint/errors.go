// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package lint

import (
	"errors"
	"fmt"
)

// Sentinel errors for lint operations.
var (
	// ErrUnknownRule indicates a rule name that is not registered.
	ErrUnknownRule = errors.New("unknown rule")

	// ErrInvalidInput indicates invalid input parameters.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidOption indicates a rule option value the rule cannot use.
	ErrInvalidOption = errors.New("invalid rule option")

	// ErrOverlappingEdits indicates fixes that touch the same bytes.
	ErrOverlappingEdits = errors.New("overlapping edits")
)

// RuleError reports a failure attributed to one rule.
type RuleError struct {
	// Rule is the rule name.
	Rule string

	// File is the file being linted, if any.
	File string

	// Err is the underlying error.
	Err error
}

// Error returns a formatted error message.
func (e *RuleError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("rule %s (%s): %v", e.Rule, e.File, e.Err)
	}
	return fmt.Sprintf("rule %s: %v", e.Rule, e.Err)
}

// Unwrap returns the underlying error.
func (e *RuleError) Unwrap() error {
	return e.Err
}

// NewRuleError creates a RuleError.
func NewRuleError(rule, file string, err error) *RuleError {
	return &RuleError{Rule: rule, File: file, Err: err}
}
