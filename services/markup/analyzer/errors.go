// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package analyzer

import "errors"

// Sentinel errors for the analyzer package.
var (
	// ErrNilTemplate indicates a nil template was passed to New.
	ErrNilTemplate = errors.New("template must not be nil")

	// ErrNilSource indicates a nil source was passed to New or NewPass.
	ErrNilSource = errors.New("source must not be nil")

	// ErrInvertedRange indicates a resolved range whose end precedes its start.
	ErrInvertedRange = errors.New("resolved range end precedes start")
)
