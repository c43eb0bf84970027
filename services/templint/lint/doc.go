// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package lint checks the HTML inside tagged template literals.
//
// The package is a thin consumer of the markup analyzer: it extracts the
// templates of a file, analyzes each one once per pass and hands the
// analyzer to every enabled rule. Rules report issues at source ranges the
// analyzer resolved, so positions point into the JavaScript or TypeScript
// file rather than into the synthetic HTML.
//
// # Rules
//
//	| Rule                      | Default | Fix |
//	|---------------------------|---------|-----|
//	| no-invalid-html           | error   |     |
//	| no-duplicate-attributes   | error   |     |
//	| binding-positions         | error   |     |
//	| attribute-value-entities  | warning | yes |
//	| quoted-expressions        | warning | yes |
//	| no-value-attribute        | warning | yes |
//
// quoted-expressions takes one option, style, which is "never" (default)
// or "always".
//
// # Usage
//
//	runner, err := lint.NewRunner(lint.WithWorkers(4))
//	if err != nil {
//	    return err
//	}
//	results, err := runner.LintDirectory(ctx, "src")
//
//	// Fixes
//	fixed, n, err := lint.ApplyFixes(content, result.AllIssues())
//	preview, err := lint.UnifiedDiff(path, content, fixed)
//
// # Thread Safety
//
// Runner is safe for concurrent use. Results are owned by the caller.
package lint
