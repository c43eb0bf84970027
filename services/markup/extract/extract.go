// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package extract finds tagged template literals in JavaScript and
// TypeScript source using tree-sitter.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/AleutianAI/templint/services/markup/source"
	"github.com/AleutianAI/templint/services/markup/template"
)

const (
	// DefaultMaxFileSize is the maximum file size the extractor will accept (10MB).
	DefaultMaxFileSize = 10 * 1024 * 1024

	// WarnFileSize is the threshold at which a warning is logged (1MB).
	WarnFileSize = 1 * 1024 * 1024
)

// DefaultTags are the template tags recognised when none are configured.
var DefaultTags = []string{"html"}

// Option configures an Extractor.
type Option func(*Extractor)

// WithTags sets the tag names whose templates are extracted. A tag matches
// a bare identifier (html`...`) or the property of a member expression
// (lit.html`...`).
func WithTags(tags ...string) Option {
	return func(e *Extractor) {
		if len(tags) == 0 {
			return
		}
		e.tags = make(map[string]bool, len(tags))
		for _, tag := range tags {
			e.tags[tag] = true
		}
	}
}

// WithMaxFileSize sets the maximum file size the extractor will accept.
func WithMaxFileSize(bytes int64) Option {
	return func(e *Extractor) {
		if bytes > 0 {
			e.maxFileSize = bytes
		}
	}
}

// Extractor finds tagged templates in source files.
//
// Thread Safety:
//
//	Safe for concurrent use. Each call creates its own tree-sitter parser.
type Extractor struct {
	tags        map[string]bool
	maxFileSize int64
}

// New creates an Extractor.
func New(opts ...Option) *Extractor {
	e := &Extractor{maxFileSize: DefaultMaxFileSize}
	WithTags(DefaultTags...)(e)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Result is the output of extracting one file.
type Result struct {
	// File is the indexed source, used to resolve positions.
	File *source.File

	// Language is "javascript", "typescript" or "tsx".
	Language string

	// Templates are the tagged templates in source order. Template IDs are
	// their indexes in this slice.
	Templates []*template.Template

	// HasSyntaxErrors is set when tree-sitter recovered from syntax errors.
	// Templates are still extracted from the recovered tree.
	HasSyntaxErrors bool
}

// Extract parses content and returns every tagged template.
//
// Description:
//
//	Walks the syntax tree for call expressions whose function is a
//	configured tag and whose argument is a template string. Segment ranges
//	include their delimiters: the first starts at the opening backtick, the
//	others at the "}" closing the previous interpolation, and each ends just
//	past the next "${" or the closing backtick.
//
// Inputs:
//
//	ctx - Context for cancellation. Checked before and after parsing.
//	path - File path; its extension selects the grammar.
//	content - File content. Must be valid UTF-8.
//
// Outputs:
//
//	*Result - The templates. Never nil on success.
//	error - Wraps ErrUnsupportedLanguage, ErrFileTooLarge,
//	ErrInvalidContent or a context error, as *ExtractError.
//
// Thread Safety:
//
//	This method is safe for concurrent use.
func (e *Extractor) Extract(ctx context.Context, path string, content []byte) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, wrapError(path, fmt.Errorf("extract canceled before start: %w", err))
	}

	lang, langName, ok := languageFor(path)
	if !ok {
		return nil, wrapError(path, ErrUnsupportedLanguage)
	}
	if int64(len(content)) > e.maxFileSize {
		return nil, wrapError(path, fmt.Errorf("%w: size %d exceeds limit %d", ErrFileTooLarge, len(content), e.maxFileSize))
	}
	if len(content) > WarnFileSize {
		slog.Warn("extracting from large file",
			slog.String("file", path),
			slog.Int("size_bytes", len(content)))
	}
	if !utf8.Valid(content) {
		return nil, wrapError(path, fmt.Errorf("%w: content is not valid UTF-8", ErrInvalidContent))
	}

	ctx, span := startExtractSpan(ctx, path, langName, len(content))
	defer span.End()
	start := time.Now()

	parser := sitter.NewParser()
	parser.SetLanguage(lang)

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, wrapError(path, fmt.Errorf("tree-sitter parse failed: %w", err))
	}
	defer tree.Close()

	if err := ctx.Err(); err != nil {
		return nil, wrapError(path, fmt.Errorf("extract canceled after tree-sitter: %w", err))
	}

	result := &Result{
		File:     source.NewFile(path, content),
		Language: langName,
	}

	root := tree.RootNode()
	if root == nil {
		return result, nil
	}
	result.HasSyntaxErrors = root.HasError()

	e.walk(root, content, result)

	setExtractSpanResult(span, len(result.Templates), result.HasSyntaxErrors)
	recordExtractMetrics(ctx, langName, time.Since(start), len(result.Templates))
	return result, nil
}

// walk visits every node in pre-order, so nested templates follow the
// template that contains them.
func (e *Extractor) walk(node *sitter.Node, content []byte, result *Result) {
	if node.Type() == nodeCallExpression {
		if tpl := e.templateFrom(node, content, template.ID(len(result.Templates))); tpl != nil {
			result.Templates = append(result.Templates, tpl)
		}
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		if child := node.Child(i); child != nil {
			e.walk(child, content, result)
		}
	}
}

// templateFrom builds a template from a tagged call expression, or returns
// nil when the call is not a configured tag applied to a template string.
func (e *Extractor) templateFrom(call *sitter.Node, content []byte, id template.ID) *template.Template {
	fn := call.ChildByFieldName(fieldFunction)
	args := call.ChildByFieldName(fieldArguments)
	if fn == nil || args == nil || args.Type() != nodeTemplateString {
		return nil
	}

	tag, ok := e.tagName(fn, content)
	if !ok {
		return nil
	}

	var subs []*sitter.Node
	for i := 0; i < int(args.NamedChildCount()); i++ {
		if child := args.NamedChild(i); child != nil && child.Type() == nodeTemplateSubstitution {
			subs = append(subs, child)
		}
	}

	tsStart, tsEnd := int(args.StartByte()), int(args.EndByte())
	segments := make([]template.Segment, 0, len(subs)+1)
	expressions := make([]template.Expression, 0, len(subs))

	segStart := tsStart
	for _, sub := range subs {
		subStart, subEnd := int(sub.StartByte()), int(sub.EndByte())
		segments = append(segments, template.Segment{
			Raw:   string(content[segStart+1 : subStart]),
			Start: segStart,
			End:   subStart + 2,
		})
		expressions = append(expressions, expressionFrom(sub, content))
		segStart = subEnd - 1
	}
	segments = append(segments, template.Segment{
		Raw:   string(content[segStart+1 : tsEnd-1]),
		Start: segStart,
		End:   tsEnd,
	})

	span := &template.Span{Start: tsStart, End: tsEnd}
	return template.New(id, tag, segments, expressions, span)
}

// tagName returns the tag of a call's function node if it is configured.
func (e *Extractor) tagName(fn *sitter.Node, content []byte) (string, bool) {
	var name string
	switch fn.Type() {
	case nodeIdentifier:
		name = fn.Content(content)
	case nodeMemberExpression:
		prop := fn.ChildByFieldName(fieldProperty)
		if prop == nil {
			return "", false
		}
		name = prop.Content(content)
	default:
		return "", false
	}
	return name, e.tags[name]
}

// expressionFrom converts the expression inside a template substitution.
// An empty substitution ("${}") has no expression node and no location.
func expressionFrom(sub *sitter.Node, content []byte) template.Expression {
	if sub.NamedChildCount() == 0 {
		return template.Expression{Kind: "empty"}
	}
	expr := sub.NamedChild(0)
	return template.Expression{
		Kind: expr.Type(),
		Text: expr.Content(content),
		Span: &template.Span{Start: int(expr.StartByte()), End: int(expr.EndByte())},
	}
}
