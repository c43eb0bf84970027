// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package extract

import (
	"errors"
	"fmt"
)

// Sentinel errors for extraction failures.
//
// These errors can be checked using errors.Is() to determine the
// category of failure without inspecting error messages.
var (
	// ErrUnsupportedLanguage indicates the file extension has no grammar.
	ErrUnsupportedLanguage = errors.New("unsupported language")

	// ErrFileTooLarge indicates the content exceeds the configured limit.
	ErrFileTooLarge = errors.New("file exceeds maximum size limit")

	// ErrInvalidContent indicates the content is not valid UTF-8.
	ErrInvalidContent = errors.New("invalid content")
)

// ExtractError attaches a file path to an extraction failure.
//
// Example:
//
//	_, err := extractor.Extract(ctx, "view.ts", content)
//	var extractErr *ExtractError
//	if errors.As(err, &extractErr) {
//	    fmt.Println(extractErr.FilePath)
//	}
type ExtractError struct {
	// FilePath is the path of the file that failed.
	FilePath string

	// Cause is the underlying error.
	Cause error
}

// Error returns "path: cause".
func (e *ExtractError) Error() string {
	return fmt.Sprintf("%s: %v", e.FilePath, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *ExtractError) Unwrap() error {
	return e.Cause
}

func wrapError(path string, err error) error {
	if err == nil {
		return nil
	}
	var extractErr *ExtractError
	if errors.As(err, &extractErr) {
		return err
	}
	return &ExtractError{FilePath: path, Cause: err}
}
