// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.


// Package report renders lint results for people and for machines.
//
// The text format groups issues by file and colors severities when the
// output is a terminal. The JSON format is stable and intended for editor
// integrations and CI annotations.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"github.com/AleutianAI/templint/services/templint/lint"
)

// Format selects the output encoding.
type Format string

const (
	// FormatText is human-readable output grouped by file.
	FormatText Format = "text"

	// FormatJSON is a single JSON document with results and a summary.
	FormatJSON Format = "json"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatText, "":
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text or json)", s)
	}
}

// Options controls rendering.
type Options struct {
	// Color enables ANSI styling in text output.
	Color bool

	// Root, when set, makes file paths relative to it.
	Root string

	// Quiet drops warnings and infos, keeping only errors.
	Quiet bool
}

// ColorEnabled reports whether f is a terminal that should receive color.
// NO_COLOR disables color regardless of the terminal.
func ColorEnabled(f *os.File) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Write renders results to w in the given format.
func Write(w io.Writer, format Format, results []*lint.LintResult, opts Options) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, results, opts)
	case FormatText, "":
		return NewTextWriter(w, opts).Write(results)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// Document is the JSON report layout.
type Document struct {
	Results []*lint.LintResult `json:"results"`
	Summary lint.Summary       `json:"summary"`
}

func writeJSON(w io.Writer, results []*lint.LintResult, opts Options) error {
	doc := Document{
		Results: make([]*lint.LintResult, 0, len(results)),
		Summary: lint.Summarize(results),
	}
	for _, r := range results {
		if r == nil {
			continue
		}
		if opts.Quiet {
			cp := *r
			cp.Warnings = []lint.LintIssue{}
			cp.Infos = nil
			r = &cp
		}
		doc.Results = append(doc.Results, r)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return nil
}

// displayPath shortens path relative to root when possible.
func displayPath(root, path string) string {
	if root == "" {
		return path
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}

// newRenderer returns a lipgloss renderer for w with color on or off.
func newRenderer(w io.Writer, color bool) *lipgloss.Renderer {
	r := lipgloss.NewRenderer(w)
	if color {
		r.SetColorProfile(termenv.ANSI256)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}
	return r
}
