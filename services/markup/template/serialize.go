// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package template

import "strings"

// Serialize concatenates the raw segments of t with a placeholder in place of
// every expression.
//
// Description:
//
//	The result is the single HTML source string fed to the tree builder.
//	Serialize is total: any template produces a string, even when that
//	string is not valid HTML. Validity is the tree builder's concern.
//
// Inputs:
//
//	t - The template. Must not be nil.
//
// Outputs:
//
//	string - The serialized HTML source.
func Serialize(t *Template) string {
	size := 0
	for _, seg := range t.Segments {
		size += len(seg.Raw)
	}
	size += len(t.Expressions) * (len(placeholderPrefix) + len(placeholderSuffix) + 4)

	var b strings.Builder
	b.Grow(size)
	for i, seg := range t.Segments {
		b.WriteString(seg.Raw)
		if t.HasExpression(i) {
			b.WriteString(PlaceholderFor(t, i))
		}
	}
	return b.String()
}
