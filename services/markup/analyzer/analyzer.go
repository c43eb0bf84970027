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
	"context"
	"log/slog"
	"time"

	"github.com/AleutianAI/templint/services/markup/htmltree"
	"github.com/AleutianAI/templint/services/markup/template"
)

// Source converts original-source offsets to positions and text.
//
// Implemented by *source.File.
type Source interface {
	// PositionAt converts a byte offset to a line/column position.
	// Returns an error when offset is outside the source.
	PositionAt(offset int) (template.Position, error)

	// Slice returns the source text in [start, end).
	Slice(start, end int) (string, error)
}

// SourceRange is a resolved location in the original source.
type SourceRange struct {
	Offsets template.Span     `json:"offsets" yaml:"offsets"`
	Start   template.Position `json:"start" yaml:"start"`
	End     template.Position `json:"end" yaml:"end"`
}

// Analyzer holds the analysis of one template: its serialized HTML, the
// parsed tree and the parse errors.
//
// Description:
//
//	Built once by New and immutable afterwards. Queries translate locations
//	found in the tree back into the original source.
//
// Thread Safety:
//
//	Safe for concurrent reads after construction.
type Analyzer struct {
	tpl        *template.Template
	src        Source
	serialized string
	root       *htmltree.Root
	errors     []htmltree.ParseError
}

// New serializes and parses a template.
//
// Description:
//
//	Substitutes a placeholder for every expression, parses the result as an
//	HTML document or fragment and stores the tree and parse errors. Parse
//	errors are part of the result, not a failure.
//
// Inputs:
//
//	ctx - Context for tracing.
//	t - The template to analyze. Must not be nil.
//	src - The source the template was extracted from. Must not be nil.
//
// Outputs:
//
//	*Analyzer - The analysis result.
//	error - ErrNilTemplate or ErrNilSource.
func New(ctx context.Context, t *template.Template, src Source) (*Analyzer, error) {
	if t == nil {
		return nil, ErrNilTemplate
	}
	if src == nil {
		return nil, ErrNilSource
	}

	ctx, span := startAnalyzeSpan(ctx, t)
	defer span.End()
	start := time.Now()

	serialized := template.Serialize(t)
	root, errs := htmltree.Parse(serialized)

	a := &Analyzer{
		tpl:        t,
		src:        src,
		serialized: serialized,
		root:       root,
		errors:     errs,
	}

	setAnalyzeSpanResult(span, root.Mode, len(errs))
	recordAnalyzeMetrics(ctx, root.Mode, time.Since(start), len(errs))

	slog.Debug("template analyzed",
		slog.Int("template_id", int(t.ID)),
		slog.String("tag", t.Tag),
		slog.String("mode", root.Mode.String()),
		slog.Int("expressions", len(t.Expressions)),
		slog.Int("parse_errors", len(errs)),
	)
	return a, nil
}

// Template returns the analyzed template.
func (a *Analyzer) Template() *template.Template {
	return a.tpl
}

// Serialized returns the HTML string the tree was parsed from.
func (a *Analyzer) Serialized() string {
	return a.serialized
}

// Root returns the parsed tree.
func (a *Analyzer) Root() *htmltree.Root {
	return a.root
}

// Errors returns the parse errors in serialized coordinates, sorted by
// start offset.
func (a *Analyzer) Errors() []htmltree.ParseError {
	return a.errors
}

// Traverse walks the tree in document order.
func (a *Analyzer) Traverse(v htmltree.Visitor) {
	htmltree.Walk(a.root, v)
}

// ResolveLocation maps a serialized span to the original source.
//
// Description:
//
//	Never fails on bad input. A span that cannot be mapped precisely
//	degrades to the enclosing expression, then to the whole template.
//
// Outputs:
//
//	*SourceRange - The source location. Nil only when the template itself
//	has no location.
func (a *Analyzer) ResolveLocation(span htmltree.Span) *SourceRange {
	if a.tpl.Span == nil {
		return nil
	}

	offsets, res := resolveOffsets(a.tpl, span)
	r, err := a.toRange(offsets)
	if err != nil {
		slog.Debug("location out of range, using template location",
			slog.Int("template_id", int(a.tpl.ID)),
			slog.Int("start", offsets.Start),
			slog.Int("end", offsets.End),
			slog.String("error", err.Error()),
		)
		res = resolvedTemplate
		if r, err = a.toRange(*a.tpl.Span); err != nil {
			return nil
		}
	}

	if res != resolvedExact {
		recordResolveFallback(context.Background(), res)
	}
	return r
}

// TemplateLocation returns the location of the whole template, or nil.
func (a *Analyzer) TemplateLocation() *SourceRange {
	if a.tpl.Span == nil {
		return nil
	}
	r, err := a.toRange(*a.tpl.Span)
	if err != nil {
		return nil
	}
	return r
}

func (a *Analyzer) toRange(offsets template.Span) (*SourceRange, error) {
	if offsets.End < offsets.Start {
		return nil, ErrInvertedRange
	}
	start, err := a.src.PositionAt(offsets.Start)
	if err != nil {
		return nil, err
	}
	end, err := a.src.PositionAt(offsets.End)
	if err != nil {
		return nil, err
	}
	return &SourceRange{Offsets: offsets, Start: start, End: end}, nil
}
