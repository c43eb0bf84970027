// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package template models tagged template literals that embed HTML markup.
//
// A template is an ordered interleaving of literal text segments and
// interpolated expressions:
//
//	segment0 ${expr0} segment1 ${expr1} segment2
//
// The package also owns the placeholder codec and the serializer that turns
// a template into one linear HTML string for the tree builder.
package template

// ID identifies a template within one analysis pass.
//
// IDs are arena indexes assigned by the extractor in source order. They are
// only meaningful together with the file the template came from.
type ID int

// Span is a half-open byte range [Start, End) in some coordinate system.
//
// Whether the offsets refer to the original source or to the serialized HTML
// string depends on where the span came from; every field documents it.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// Contains reports whether other lies entirely within s.
func (s Span) Contains(other Span) bool {
	return other.Start >= s.Start && other.End <= s.End
}

// Segment is one literal text part of a template.
//
// Start and End are byte offsets into the original source and follow the
// ESTree TemplateElement convention: the range includes the delimiters around
// the text. Start points at the opening backtick (first segment) or at the
// closing "}" of the previous interpolation; End points just past the "${"
// of the next interpolation or past the closing backtick (last segment).
type Segment struct {
	// Raw is the literal text exactly as written in the source, escapes intact.
	Raw string `json:"raw"`

	Start int `json:"start"`
	End   int `json:"end"`
}

// Expression is one interpolated expression of a template.
type Expression struct {
	// Kind is the syntax node type of the expression (e.g. "number",
	// "string", "identifier", "member_expression").
	Kind string `json:"kind"`

	// Text is the expression source text.
	Text string `json:"text"`

	// Span is the original-source range of the expression text.
	// Nil when the upstream parser did not provide positional metadata.
	Span *Span `json:"span,omitempty"`
}

// IsStringLiteral reports whether the expression is a plain string literal.
func (e *Expression) IsStringLiteral() bool {
	return e.Kind == "string"
}

// Template is a tagged template literal with its literal segments and
// interpolated expressions.
//
// Invariant (assumed, not checked): len(Segments) == len(Expressions)+1.
// A template always starts and ends with a segment, possibly empty.
type Template struct {
	// ID is the arena index of the template within its file.
	ID ID `json:"id"`

	// Tag is the tag function name, e.g. "html" or "svg".
	Tag string `json:"tag"`

	Segments    []Segment    `json:"segments"`
	Expressions []Expression `json:"expressions"`

	// Span is the original-source range of the template literal including
	// its backticks. Nil when positional metadata is unavailable.
	Span *Span `json:"span,omitempty"`
}

// New creates a template from literal segments and expressions.
func New(id ID, tag string, segments []Segment, expressions []Expression, span *Span) *Template {
	return &Template{
		ID:          id,
		Tag:         tag,
		Segments:    segments,
		Expressions: expressions,
		Span:        span,
	}
}

// HasExpression reports whether an expression follows segment i.
func (t *Template) HasExpression(i int) bool {
	return i >= 0 && i < len(t.Expressions)
}

// ExpressionAt returns the expression following segment i, or nil.
func (t *Template) ExpressionAt(i int) *Expression {
	if !t.HasExpression(i) {
		return nil
	}
	return &t.Expressions[i]
}
