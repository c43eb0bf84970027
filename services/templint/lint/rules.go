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
	"fmt"
	"regexp"
	"strings"

	"github.com/AleutianAI/templint/services/markup/analyzer"
	"github.com/AleutianAI/templint/services/markup/htmltree"
	"github.com/AleutianAI/templint/services/markup/template"
)

// =============================================================================
// no-invalid-html
// =============================================================================

type noInvalidHTML struct{}

func (noInvalidHTML) Name() string { return "no-invalid-html" }

func (noInvalidHTML) Description() string {
	return "Disallow markup the HTML parser has to recover from"
}

func (noInvalidHTML) DefaultSeverity() Severity { return SeverityError }

func (noInvalidHTML) Check(ctx *RuleContext) {
	for _, e := range ctx.Analyzer.ErrorLocations() {
		if e.Error.Code == htmltree.CodeDuplicateAttribute {
			continue
		}
		ctx.Report(e.Location, e.Error.Message())
	}
}

// =============================================================================
// no-duplicate-attributes
// =============================================================================

type noDuplicateAttributes struct{}

func (noDuplicateAttributes) Name() string { return "no-duplicate-attributes" }

func (noDuplicateAttributes) Description() string {
	return "Disallow repeating an attribute on one element"
}

func (noDuplicateAttributes) DefaultSeverity() Severity { return SeverityError }

func (noDuplicateAttributes) Check(ctx *RuleContext) {
	serialized := ctx.Analyzer.Serialized()
	for _, e := range ctx.Analyzer.ErrorLocations() {
		if e.Error.Code != htmltree.CodeDuplicateAttribute {
			continue
		}
		name := serialized[e.Error.Span.Start:e.Error.Span.End]
		name, _, _ = strings.Cut(name, "=")
		ctx.Report(e.Location, fmt.Sprintf("duplicate attribute %q; only the first is used", strings.TrimSpace(name)),
			WithSuggestion("remove the repeated attribute"))
	}
}

// =============================================================================
// binding-positions
// =============================================================================

// tagNameBinding matches a placeholder directly after "<" or "</".
var tagNameBinding = regexp.MustCompile(`</?(\{\{__Q:\d+__\}\})`)

type bindingPositions struct{}

func (bindingPositions) Name() string { return "binding-positions" }

func (bindingPositions) Description() string {
	return "Disallow expressions in tag name or attribute name position"
}

func (bindingPositions) DefaultSeverity() Severity { return SeverityError }

func (bindingPositions) Check(ctx *RuleContext) {
	a := ctx.Analyzer

	for _, m := range tagNameBinding.FindAllStringSubmatchIndex(a.Serialized(), -1) {
		loc := a.ResolveLocation(htmltree.Span{Start: m[2], End: m[3]})
		ctx.Report(loc, "expressions cannot be used as tag names",
			WithSuggestion("use a conditional or static tags instead"))
	}

	for _, el := range htmltree.Elements(a.Root()) {
		for _, attr := range el.Attrs {
			if !template.ContainsPlaceholder(attr.Name) {
				continue
			}
			ctx.Report(a.LocationForAttribute(el, attr.Name), "expressions cannot be used in attribute names",
				WithSuggestion("bind a value to a fixed attribute name"))
		}
	}
}

// =============================================================================
// attribute-value-entities
// =============================================================================

type attributeValueEntities struct{}

func (attributeValueEntities) Name() string { return "attribute-value-entities" }

func (attributeValueEntities) Description() string {
	return "Require characters with meaning in markup to be encoded in attribute values"
}

func (attributeValueEntities) DefaultSeverity() Severity { return SeverityWarning }

func (attributeValueEntities) Check(ctx *RuleContext) {
	a := ctx.Analyzer
	for _, el := range htmltree.Elements(a.Root()) {
		for _, attr := range el.Attrs {
			loc := a.LocationForAttribute(el, attr.Name)
			if loc == nil {
				continue
			}
			text, err := ctx.File.Slice(loc.Offsets.Start, loc.Offsets.End)
			if err != nil {
				continue
			}
			eq := strings.IndexByte(text, '=')
			if eq < 0 {
				continue
			}
			base := loc.Offsets.Start + eq + 1
			edits := unencodedEntities(text[eq+1:], base)
			if len(edits) == 0 {
				continue
			}
			ctx.Report(loc, fmt.Sprintf("attribute %q contains characters that should be encoded", attr.Name),
				WithSuggestion("use &gt; for > and &quot; for \" in attribute values"),
				WithFix(edits...))
		}
	}
}

// unencodedEntities returns an edit for every ">" in value and every '"'
// in a single-quoted value, skipping "${...}" interpolations. base is the
// source offset of value.
func unencodedEntities(value string, base int) []TextEdit {
	trimmed := strings.TrimLeft(value, " \t\n\r\f")
	lead := len(value) - len(trimmed)
	singleQuoted := strings.HasPrefix(trimmed, "'")

	var edits []TextEdit
	depth := 0
	for i := lead; i < len(value); i++ {
		c := value[i]
		switch {
		case depth == 0 && c == '$' && i+1 < len(value) && value[i+1] == '{':
			depth = 1
			i++
		case depth > 0 && c == '{':
			depth++
		case depth > 0 && c == '}':
			depth--
		case depth > 0:
		case c == '>':
			edits = append(edits, TextEdit{Start: base + i, End: base + i + 1, NewText: "&gt;"})
		case c == '"' && singleQuoted:
			edits = append(edits, TextEdit{Start: base + i, End: base + i + 1, NewText: "&quot;"})
		}
	}
	return edits
}

// =============================================================================
// quoted-expressions
// =============================================================================

const (
	quoteAlways = "always"
	quoteNever  = "never"
)

type quotedExpressions struct{}

func (quotedExpressions) Name() string { return "quoted-expressions" }

func (quotedExpressions) Description() string {
	return "Enforce or forbid quotes around attribute expressions (option style: always|never)"
}

func (quotedExpressions) DefaultSeverity() Severity { return SeverityWarning }

func (quotedExpressions) ValidateOptions(options map[string]string) error {
	for key, value := range options {
		if key != "style" {
			return fmt.Errorf("%w: unknown option %q", ErrInvalidOption, key)
		}
		if value != quoteAlways && value != quoteNever {
			return fmt.Errorf("%w: style must be %q or %q, got %q", ErrInvalidOption, quoteAlways, quoteNever, value)
		}
	}
	return nil
}

func (quotedExpressions) Check(ctx *RuleContext) {
	style := ctx.Option("style", quoteNever)

	a := ctx.Analyzer
	for _, el := range htmltree.Elements(a.Root()) {
		for _, attr := range el.Attrs {
			b, ok := singleBinding(ctx, el, attr.Name)
			if !ok {
				continue
			}
			switch {
			case style == quoteNever && b.quote != 0:
				ctx.Report(b.loc, fmt.Sprintf("expression in %q should not be quoted", attr.Name),
					WithFix(
						TextEdit{Start: b.interp.Start - 1, End: b.interp.Start},
						TextEdit{Start: b.interp.End, End: b.interp.End + 1},
					))
			case style == quoteAlways && b.quote == 0:
				ctx.Report(b.loc, fmt.Sprintf("expression in %q should be quoted", attr.Name),
					WithFix(
						TextEdit{Start: b.interp.Start, End: b.interp.Start, NewText: `"`},
						TextEdit{Start: b.interp.End, End: b.interp.End, NewText: `"`},
					))
			}
		}
	}
}

// =============================================================================
// no-value-attribute
// =============================================================================

// valueElements hold live state in the value property; the attribute only
// sets the initial value.
var valueElements = map[string]bool{
	"input":    true,
	"select":   true,
	"textarea": true,
}

type noValueAttribute struct{}

func (noValueAttribute) Name() string { return "no-value-attribute" }

func (noValueAttribute) Description() string {
	return "Prefer the .value property binding on form controls"
}

func (noValueAttribute) DefaultSeverity() Severity { return SeverityWarning }

func (noValueAttribute) Check(ctx *RuleContext) {
	for _, el := range htmltree.Elements(ctx.Analyzer.Root()) {
		if el.Namespace != "" || !valueElements[el.Name] {
			continue
		}
		b, ok := singleBinding(ctx, el, "value")
		if !ok || b.expr.IsStringLiteral() || b.expr.Kind == "template_string" {
			continue
		}
		ctx.Report(b.loc, fmt.Sprintf("value=${%s} only sets the initial value of <%s>", b.expr.Text, el.Name),
			WithSuggestion("bind the property with .value"),
			WithFix(TextEdit{Start: b.loc.Offsets.Start, End: b.loc.Offsets.Start, NewText: "."}))
	}
}

// =============================================================================
// HELPERS
// =============================================================================

// attributeBinding is an attribute whose whole value is one interpolation.
type attributeBinding struct {
	loc  *analyzer.SourceRange
	expr *template.Expression

	// interp is the source range of "${...}".
	interp template.Span

	// quote is the quote character around the interpolation, or 0.
	quote byte
}

// singleBinding reports whether the named attribute's value is exactly one
// interpolation, optionally quoted.
func singleBinding(ctx *RuleContext, el *htmltree.Element, name string) (attributeBinding, bool) {
	a := ctx.Analyzer
	loc := a.LocationForAttribute(el, name)
	if loc == nil {
		return attributeBinding{}, false
	}
	text, err := ctx.File.Slice(loc.Offsets.Start, loc.Offsets.End)
	if err != nil {
		return attributeBinding{}, false
	}
	eq := strings.IndexByte(text, '=')
	if eq < 0 {
		return attributeBinding{}, false
	}
	value := strings.TrimLeft(text[eq+1:], " \t\n\r\f")
	valueStart := loc.Offsets.End - len(value)

	t := a.Template()
	for i := range t.Expressions {
		interp := interpolation(t, i)
		if interp.Start < valueStart || interp.End > loc.Offsets.End {
			continue
		}
		b := attributeBinding{loc: loc, expr: &t.Expressions[i], interp: interp}
		if interp.Start == valueStart && interp.End == loc.Offsets.End {
			return b, true
		}
		if interp.Start == valueStart+1 && interp.End == loc.Offsets.End-1 {
			if q := value[0]; (q == '"' || q == '\'') && value[len(value)-1] == q {
				b.quote = q
				return b, true
			}
		}
		return attributeBinding{}, false
	}
	return attributeBinding{}, false
}

// interpolation returns the source range of "${...}" for expression i.
func interpolation(t *template.Template, i int) template.Span {
	return template.Span{Start: t.Segments[i].End - 2, End: t.Segments[i+1].Start + 1}
}
