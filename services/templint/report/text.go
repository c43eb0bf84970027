// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.


package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/AleutianAI/templint/services/templint/lint"
)

// Palette, shared with the rest of the Aleutian tooling.
var (
	colorTeal    = lipgloss.Color("#20B9B4")
	colorSuccess = lipgloss.Color("#2CD7C7")
	colorWarning = lipgloss.Color("#F4D03F")
	colorError   = lipgloss.Color("#E74C3C")
	colorMuted   = lipgloss.Color("#2C4A54")
)

// styles holds the renderer-bound styles used by TextWriter.
type styles struct {
	file    lipgloss.Style
	pos     lipgloss.Style
	rule    lipgloss.Style
	muted   lipgloss.Style
	error   lipgloss.Style
	warning lipgloss.Style
	info    lipgloss.Style
	success lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		file:    r.NewStyle().Bold(true).Underline(true),
		pos:     r.NewStyle().Foreground(colorMuted),
		rule:    r.NewStyle().Foreground(colorMuted),
		muted:   r.NewStyle().Foreground(colorMuted),
		error:   r.NewStyle().Foreground(colorError).Bold(true),
		warning: r.NewStyle().Foreground(colorWarning),
		info:    r.NewStyle().Foreground(colorTeal),
		success: r.NewStyle().Foreground(colorSuccess).Bold(true),
	}
}

// TextWriter renders results grouped by file.
type TextWriter struct {
	w      io.Writer
	opts   Options
	styles styles
}

// NewTextWriter creates a text renderer for w.
func NewTextWriter(w io.Writer, opts Options) *TextWriter {
	return &TextWriter{
		w:      w,
		opts:   opts,
		styles: newStyles(newRenderer(w, opts.Color)),
	}
}

// Write renders every file with issues followed by a summary line.
func (t *TextWriter) Write(results []*lint.LintResult) error {
	var b strings.Builder
	for _, r := range results {
		if r == nil {
			continue
		}
		t.writeFile(&b, r)
	}
	t.writeSummary(&b, lint.Summarize(results))

	_, err := io.WriteString(t.w, b.String())
	return err
}

func (t *TextWriter) writeFile(b *strings.Builder, r *lint.LintResult) {
	issues := r.AllIssues()
	if t.opts.Quiet {
		issues = r.Errors
	}
	if len(issues) == 0 {
		return
	}

	b.WriteString(t.styles.file.Render(displayPath(t.opts.Root, r.FilePath)))
	b.WriteByte('\n')

	posWidth := 0
	for _, issue := range issues {
		posWidth = max(posWidth, len(position(issue)))
	}

	for _, issue := range issues {
		pos := fmt.Sprintf("%-*s", posWidth, position(issue))
		fmt.Fprintf(b, "  %s  %s  %s  %s\n",
			t.styles.pos.Render(pos),
			t.severity(issue.Severity),
			issue.Message,
			t.styles.rule.Render(issue.Rule),
		)
		if issue.Suggestion != "" {
			fmt.Fprintf(b, "  %s  %s\n",
				strings.Repeat(" ", posWidth),
				t.styles.muted.Render("hint: "+issue.Suggestion),
			)
		}
	}
	b.WriteByte('\n')
}

func position(issue lint.LintIssue) string {
	return fmt.Sprintf("%d:%d", issue.Line, issue.Column)
}

// severity renders a fixed-width severity label.
func (t *TextWriter) severity(s lint.Severity) string {
	label := fmt.Sprintf("%-7s", s.String())
	switch s {
	case lint.SeverityError:
		return t.styles.error.Render(label)
	case lint.SeverityWarning:
		return t.styles.warning.Render(label)
	default:
		return t.styles.info.Render(label)
	}
}

func (t *TextWriter) writeSummary(b *strings.Builder, s lint.Summary) {
	warnings := s.Warnings
	infos := s.Infos
	if t.opts.Quiet {
		warnings, infos = 0, 0
	}
	problems := s.Errors + warnings + infos

	if problems == 0 {
		fmt.Fprintf(b, "%s %s\n",
			t.styles.success.Render("✓"),
			fmt.Sprintf("No problems in %s (%s)", plural(s.Files, "file"), plural(s.Templates, "template")),
		)
		return
	}

	icon := t.styles.warning.Render("⚠")
	if s.Errors > 0 {
		icon = t.styles.error.Render("✗")
	}
	fmt.Fprintf(b, "%s %s (%s, %s) in %s\n",
		icon,
		plural(problems, "problem"),
		plural(s.Errors, "error"),
		plural(warnings, "warning"),
		plural(s.Files, "file"),
	)
	if s.Fixable > 0 {
		b.WriteString(t.styles.muted.Render(
			fmt.Sprintf("  %s potentially fixable with --fix", plural(s.Fixable, "issue")),
		))
		b.WriteByte('\n')
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
