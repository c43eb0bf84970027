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

import (
	"github.com/AleutianAI/templint/services/markup/htmltree"
	"github.com/AleutianAI/templint/services/markup/template"
)

// interpolationPunctuation is the width of "$", "{" and "}" around an
// expression. Segment ranges include "${" and "}", so the gap between two
// segments is the expression syntax minus these three bytes.
const interpolationPunctuation = 3

// resolution is the outcome of mapping a serialized span to the source.
type resolution int

const (
	// resolvedExact means the span was translated offset by offset.
	resolvedExact resolution = iota

	// resolvedExpression means the span lay inside one placeholder and the
	// expression's own range was used.
	resolvedExpression

	// resolvedTemplate means no finer location was available.
	resolvedTemplate
)

// String returns the string representation of the resolution.
func (r resolution) String() string {
	switch r {
	case resolvedExact:
		return "exact"
	case resolvedExpression:
		return "expression"
	default:
		return "template"
	}
}

// resolveOffsets translates a span of the serialized HTML into a span of
// original source offsets.
//
// Description:
//
//	Scans the segments left to right keeping a running correction, the
//	signed amount added to a serialized offset to get a source offset. It
//	starts at the first byte after the opening backtick. Each placeholder
//	replaces "${expr}" in the source, so after passing one the correction
//	drops by the placeholder length and grows by the length of the original
//	interpolation syntax.
//
//	The start offset uses the correction in force where the span starts.
//	A start that falls inside a placeholder snaps to the "${" of that
//	interpolation. An end inside a placeholder extends to just past its "}".
//	A span wholly inside one placeholder resolves to the expression range,
//	or the template range when the expression has none.
//
// Inputs:
//
//	t - The template. Its Span must be non-nil.
//	span - Offsets into template.Serialize(t).
//
// Outputs:
//
//	template.Span - Source offsets. Not validated against the file bounds.
//	resolution - How precise the result is.
func resolveOffsets(t *template.Template, span htmltree.Span) (template.Span, resolution) {
	if len(t.Segments) == 0 {
		return *t.Span, resolvedTemplate
	}

	correction := t.Segments[0].Start + 1
	consumed := 0
	start, startFrozen := 0, false

	for i, seg := range t.Segments {
		consumed += len(seg.Raw)
		if !startFrozen && consumed > span.Start {
			start, startFrozen = span.Start+correction, true
		}
		if span.End <= consumed || !t.HasExpression(i) || i+1 >= len(t.Segments) {
			break
		}

		ph := template.PlaceholderFor(t, i)
		phStart := consumed
		consumed += len(ph)

		if span.Start >= phStart && span.End <= consumed {
			if expr := t.Expressions[i].Span; expr != nil {
				return *expr, resolvedExpression
			}
			return *t.Span, resolvedTemplate
		}

		next := t.Segments[i+1]
		if !startFrozen && consumed > span.Start {
			start, startFrozen = seg.End-2, true
		}
		if span.End <= consumed {
			return template.Span{Start: start, End: next.Start + 1}, resolvedExact
		}

		gap := next.Start - seg.End
		correction += -len(ph) + gap + interpolationPunctuation
	}

	// The tree builder can report offsets at or past the end of input; such
	// a span never freezes and takes the final correction.
	if !startFrozen {
		start = span.Start + correction
	}
	return template.Span{Start: start, End: span.End + correction}, resolvedExact
}
