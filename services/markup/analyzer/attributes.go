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
	"strings"

	"github.com/AleutianAI/templint/services/markup/htmltree"
	"github.com/AleutianAI/templint/services/markup/template"
)

// =============================================================================
// NODE LOCATIONS
// =============================================================================

// LocationForAttribute returns the source location of the full attribute
// text (name, "=" and value), or nil when the element has no such
// attribute or no location. The name is matched case-insensitively.
func (a *Analyzer) LocationForAttribute(el *htmltree.Element, name string) *SourceRange {
	span, ok := el.AttrSpan(name)
	if !ok {
		return nil
	}
	return a.ResolveLocation(span)
}

// LocationForElement returns the source location of the element's start
// tag, or nil for implied elements.
func (a *Analyzer) LocationForElement(el *htmltree.Element) *SourceRange {
	if el.Location == nil {
		return nil
	}
	return a.ResolveLocation(el.Location.Span)
}

// LocationForComment returns the source location of a comment, or nil.
func (a *Analyzer) LocationForComment(c *htmltree.Comment) *SourceRange {
	if c.Span == nil {
		return nil
	}
	return a.ResolveLocation(*c.Span)
}

// ErrorLocation pairs a parse error with its resolved source location.
type ErrorLocation struct {
	Error    htmltree.ParseError `json:"error"`
	Location *SourceRange        `json:"location,omitempty"`
}

// ErrorLocations resolves every parse error, in error order.
func (a *Analyzer) ErrorLocations() []ErrorLocation {
	out := make([]ErrorLocation, 0, len(a.errors))
	for _, e := range a.errors {
		out = append(out, ErrorLocation{Error: e, Location: a.ResolveLocation(e.Span)})
	}
	return out
}

// =============================================================================
// ATTRIBUTE VALUES
// =============================================================================

// AttributeValue is the value of an attribute: either the expression bound
// to it or the parsed literal string.
type AttributeValue struct {
	// Expr is the first expression inside the attribute value, or nil.
	Expr *template.Expression

	// Literal is the parsed value. Set even when Expr is non-nil, in which
	// case it contains placeholders.
	Literal string
}

// IsExpression reports whether the value is bound to an expression.
func (v AttributeValue) IsExpression() bool {
	return v.Expr != nil
}

// AttributeValue returns the value of the named attribute.
//
// Description:
//
//	When the attribute's value region, the attribute's source range minus
//	the length of its name, contains an expression, the first such
//	expression is returned. Mixed values such as "${a} ${b}" yield only a.
//	Otherwise the parsed string is returned.
//
// Outputs:
//
//	AttributeValue - The value.
//	bool - False when the element has no such attribute.
func (a *Analyzer) AttributeValue(el *htmltree.Element, name string) (AttributeValue, bool) {
	literal, ok := el.Attr(name)
	if !ok {
		return AttributeValue{}, false
	}
	value := AttributeValue{Literal: literal}

	if loc := a.LocationForAttribute(el, name); loc != nil {
		region := template.Span{Start: loc.Offsets.Start + len(name), End: loc.Offsets.End}
		for i := range a.tpl.Expressions {
			expr := &a.tpl.Expressions[i]
			if expr.Span != nil && region.Contains(*expr.Span) {
				value.Expr = expr
				return value, true
			}
		}
		return value, true
	}

	// Without a location, fall back to recognising a whole-value placeholder.
	if idx, ok := template.PlaceholderIndex(literal); ok {
		value.Expr = a.tpl.ExpressionAt(idx)
	}
	return value, true
}

// RawAttribute is the unparsed source text of an attribute.
type RawAttribute struct {
	// Name is the attribute name as written.
	Name string `json:"name"`

	// Value is the value with one layer of matching quotes removed.
	Value string `json:"value"`

	// QuotedValue is the value exactly as written, quotes included.
	QuotedValue string `json:"quoted_value"`
}

// RawAttributeValue returns the original source text of the named attribute,
// split on the first "=". Entities are not decoded and expressions appear as
// "${...}".
func (a *Analyzer) RawAttributeValue(el *htmltree.Element, name string) (RawAttribute, bool) {
	loc := a.LocationForAttribute(el, name)
	if loc == nil {
		return RawAttribute{}, false
	}
	text, err := a.src.Slice(loc.Offsets.Start, loc.Offsets.End)
	if err != nil {
		return RawAttribute{}, false
	}
	return splitRawAttribute(text), true
}

func splitRawAttribute(text string) RawAttribute {
	name, quoted, found := strings.Cut(text, "=")
	if !found {
		return RawAttribute{Name: strings.TrimSpace(text)}
	}
	quoted = strings.TrimSpace(quoted)
	return RawAttribute{
		Name:        strings.TrimSpace(name),
		Value:       unquote(quoted),
		QuotedValue: quoted,
	}
}

func unquote(s string) string {
	if len(s) >= 2 {
		if q := s[0]; (q == '"' || q == '\'') && s[len(s)-1] == q {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// ExpressionForValue returns the expression a parsed value stands for when
// the value is exactly one placeholder, or nil.
func (a *Analyzer) ExpressionForValue(value string) *template.Expression {
	idx, ok := template.PlaceholderIndex(value)
	if !ok {
		return nil
	}
	return a.tpl.ExpressionAt(idx)
}
