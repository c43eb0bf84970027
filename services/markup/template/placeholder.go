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

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	placeholderPrefix = "{{__Q:"
	placeholderSuffix = "__}}"
)

// placeholderPattern matches an unwrapped placeholder and nothing else.
var placeholderPattern = regexp.MustCompile(`^\{\{__Q:(\d+)__\}\}$`)

// Placeholder returns the synthetic token substituted for expression index.
//
// Description:
//
//	The unwrapped form "{{__Q:<index>__}}" is usable in text, tag name and
//	attribute name position. When quoted is true the token is wrapped in
//	double quotes so that an unquoted attribute binding such as
//	title=${x} still serializes to a well-formed quoted attribute.
//
// Inputs:
//
//	index  - Position of the expression in Template.Expressions.
//	quoted - True when the preceding raw segment ends with "=".
//
// Outputs:
//
//	string - The placeholder. Pure function of its inputs.
func Placeholder(index int, quoted bool) string {
	var b strings.Builder
	b.Grow(len(placeholderPrefix) + len(placeholderSuffix) + 6)
	if quoted {
		b.WriteByte('"')
	}
	b.WriteString(placeholderPrefix)
	b.WriteString(strconv.Itoa(index))
	b.WriteString(placeholderSuffix)
	if quoted {
		b.WriteByte('"')
	}
	return b.String()
}

// PlaceholderFor returns the placeholder for the expression that follows
// segment i of t, quoted when the segment ends with "=".
func PlaceholderFor(t *Template, i int) string {
	return Placeholder(i, endsWithEquals(t.Segments[i].Raw))
}

// IsPlaceholder reports whether value is exactly one unwrapped placeholder.
//
// Checks use this to tell whether a parsed attribute value is entirely one
// expression rather than a literal or a mixed string. The quoted form never
// matches; the tree builder strips those quotes while parsing.
func IsPlaceholder(value string) bool {
	return placeholderPattern.MatchString(value)
}

// PlaceholderIndex decodes the expression index from an unwrapped placeholder.
func PlaceholderIndex(value string) (int, bool) {
	m := placeholderPattern.FindStringSubmatch(value)
	if m == nil {
		return 0, false
	}
	idx, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return idx, true
}

// ContainsPlaceholder reports whether value contains a placeholder anywhere.
//
// The comparison is case-insensitive because the HTML tokenizer lowercases
// tag and attribute names.
func ContainsPlaceholder(value string) bool {
	return strings.Contains(strings.ToUpper(value), placeholderPrefix)
}

func endsWithEquals(raw string) bool {
	return strings.HasSuffix(raw, "=")
}
