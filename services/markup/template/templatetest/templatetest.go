// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package templatetest builds templates from source snippets for tests.
//
// It scans the first tagged template literal in a snippet such as
//
//	const x = html`<div title=${808}></div>`;
//
// without a full JavaScript parser, which keeps tests of the markup core
// free of the tree-sitter dependency.
package templatetest

import (
	"strings"
	"testing"

	"github.com/AleutianAI/templint/services/markup/template"
)

// MustParse returns the first template literal in src.
//
// The tag is the identifier immediately before the opening backtick.
// Expression kinds are guessed from their text: numbers, quoted strings and
// everything else as "identifier". Fails the test when src has no template.
func MustParse(t testing.TB, src string) *template.Template {
	t.Helper()
	tpl, ok := Parse(src)
	if !ok {
		t.Fatalf("templatetest: no template literal in %q", src)
	}
	return tpl
}

// Parse is MustParse without the testing dependency.
func Parse(src string) (*template.Template, bool) {
	open := strings.IndexByte(src, '`')
	if open < 0 {
		return nil, false
	}

	tagStart := open
	for tagStart > 0 && isIdentByte(src[tagStart-1]) {
		tagStart--
	}

	var (
		segments    []template.Segment
		expressions []template.Expression
		segStart    = open
		pos         = open + 1
	)
	for pos < len(src) {
		switch {
		case src[pos] == '\\':
			pos += 2
		case src[pos] == '`':
			segments = append(segments, template.Segment{
				Raw:   src[segStart+1 : pos],
				Start: segStart,
				End:   pos + 1,
			})
			span := &template.Span{Start: open, End: pos + 1}
			return template.New(0, src[tagStart:open], segments, expressions, span), true
		case strings.HasPrefix(src[pos:], "${"):
			segments = append(segments, template.Segment{
				Raw:   src[segStart+1 : pos],
				Start: segStart,
				End:   pos + 2,
			})
			closeAt := matchBrace(src, pos+2)
			if closeAt < 0 {
				return nil, false
			}
			exprStart, exprEnd := trimSpace(src, pos+2, closeAt)
			text := src[exprStart:exprEnd]
			expressions = append(expressions, template.Expression{
				Kind: guessKind(text),
				Text: text,
				Span: &template.Span{Start: exprStart, End: exprEnd},
			})
			segStart = closeAt
			pos = closeAt + 1
		default:
			pos++
		}
	}
	return nil, false
}

func matchBrace(src string, from int) int {
	depth := 0
	for i := from; i < len(src); i++ {
		switch src[i] {
		case '{':
			depth++
		case '}':
			if depth == 0 {
				return i
			}
			depth--
		}
	}
	return -1
}

func trimSpace(src string, start, end int) (int, int) {
	for start < end && isSpace(src[start]) {
		start++
	}
	for end > start && isSpace(src[end-1]) {
		end--
	}
	return start, end
}

func guessKind(text string) string {
	switch {
	case text == "":
		return "identifier"
	case text[0] >= '0' && text[0] <= '9':
		return "number"
	case text[0] == '"' || text[0] == '\'':
		return "string"
	case text[0] == '`':
		return "template_string"
	default:
		return "identifier"
	}
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '$' || c == '.' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
