// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.


// Package inspect dumps what the analyzer sees for each template in a file:
// the serialized HTML, the parsed tree and every parse error, all with
// locations resolved back to the source.
//
// It exists for debugging rules and for bug reports against the parser.
package inspect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/templint/services/markup/analyzer"
	"github.com/AleutianAI/templint/services/markup/extract"
	"github.com/AleutianAI/templint/services/markup/htmltree"
)

// File is the inspection of one source file.
type File struct {
	Path            string     `json:"path" yaml:"path"`
	Language        string     `json:"language" yaml:"language"`
	HasSyntaxErrors bool       `json:"has_syntax_errors,omitempty" yaml:"has_syntax_errors,omitempty"`
	Templates       []Template `json:"templates" yaml:"templates"`
}

// Template is the inspection of one tagged template.
type Template struct {
	ID          int                   `json:"id" yaml:"id"`
	Tag         string                `json:"tag" yaml:"tag"`
	Location    *analyzer.SourceRange `json:"location,omitempty" yaml:"location,omitempty"`
	Expressions []string              `json:"expressions,omitempty" yaml:"expressions,omitempty"`
	Serialized  string                `json:"serialized" yaml:"serialized"`
	Mode        string                `json:"mode" yaml:"mode"`
	Tree        []Node                `json:"tree" yaml:"tree"`
	Errors      []Error               `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// Node is a tree node with resolved locations.
type Node struct {
	Kind      string                `json:"kind" yaml:"kind"`
	Name      string                `json:"name,omitempty" yaml:"name,omitempty"`
	Namespace string                `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	Data      string                `json:"data,omitempty" yaml:"data,omitempty"`
	Implied   bool                  `json:"implied,omitempty" yaml:"implied,omitempty"`
	Location  *analyzer.SourceRange `json:"location,omitempty" yaml:"location,omitempty"`
	Attrs     []Attr                `json:"attrs,omitempty" yaml:"attrs,omitempty"`
	Children  []Node                `json:"children,omitempty" yaml:"children,omitempty"`
}

// Attr is an attribute with its resolved location.
type Attr struct {
	Name     string                `json:"name" yaml:"name"`
	Value    string                `json:"value" yaml:"value"`
	Location *analyzer.SourceRange `json:"location,omitempty" yaml:"location,omitempty"`
}

// Error is a parse error with its resolved location.
type Error struct {
	Code     string                `json:"code" yaml:"code"`
	Message  string                `json:"message" yaml:"message"`
	Location *analyzer.SourceRange `json:"location,omitempty" yaml:"location,omitempty"`
}

// Inspect extracts and analyzes every template in content.
//
// Inputs:
//
//	ctx - Context for cancellation.
//	ex - Extractor configured with the tags to look for.
//	path - File path; its extension selects the grammar.
//	content - File content.
//
// Outputs:
//
//	*File - The inspection, templates in source order.
//	error - Extraction failures.
func Inspect(ctx context.Context, ex *extract.Extractor, path string, content []byte) (*File, error) {
	res, err := ex.Extract(ctx, path, content)
	if err != nil {
		return nil, err
	}

	out := &File{
		Path:            path,
		Language:        res.Language,
		HasSyntaxErrors: res.HasSyntaxErrors,
		Templates:       make([]Template, 0, len(res.Templates)),
	}
	for _, t := range res.Templates {
		a, err := analyzer.New(ctx, t, res.File)
		if err != nil {
			return nil, fmt.Errorf("analyzing template %d: %w", t.ID, err)
		}
		out.Templates = append(out.Templates, inspectTemplate(a))
	}
	return out, nil
}

func inspectTemplate(a *analyzer.Analyzer) Template {
	t := a.Template()
	out := Template{
		ID:         int(t.ID),
		Tag:        t.Tag,
		Location:   a.TemplateLocation(),
		Serialized: a.Serialized(),
		Mode:       a.Root().Mode.String(),
	}
	for _, e := range t.Expressions {
		out.Expressions = append(out.Expressions, e.Text)
	}
	for _, child := range a.Root().Children {
		out.Tree = append(out.Tree, inspectNode(a, child))
	}
	for _, e := range a.ErrorLocations() {
		out.Errors = append(out.Errors, Error{
			Code:     e.Error.Code,
			Message:  e.Error.Message(),
			Location: e.Location,
		})
	}
	return out
}

func inspectNode(a *analyzer.Analyzer, n htmltree.Node) Node {
	out := Node{Kind: n.Kind().String()}
	switch node := n.(type) {
	case *htmltree.Element:
		out.Name = node.Name
		out.Namespace = node.Namespace
		out.Implied = node.Implied
		out.Location = a.LocationForElement(node)
		for _, attr := range node.Attrs {
			out.Attrs = append(out.Attrs, Attr{
				Name:     attr.Name,
				Value:    attr.Value,
				Location: a.LocationForAttribute(node, attr.Name),
			})
		}
		for _, child := range node.Children {
			out.Children = append(out.Children, inspectNode(a, child))
		}
	case *htmltree.Text:
		out.Data = node.Data
	case *htmltree.Comment:
		out.Data = node.Data
		out.Location = a.LocationForComment(node)
	}
	return out
}

// Encode writes f as "json" or "yaml".
func Encode(w io.Writer, format string, f *File) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(f); err != nil {
			return fmt.Errorf("encoding inspection: %w", err)
		}
		return nil
	case "yaml":
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(f); err != nil {
			return fmt.Errorf("encoding inspection: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("encoding inspection: %w", err)
		}
		_, err := w.Write(buf.Bytes())
		return err
	default:
		return fmt.Errorf("unknown inspect format %q (want json or yaml)", format)
	}
}
