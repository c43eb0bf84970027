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
	"sort"
	"strings"
	"time"
)

// =============================================================================
// SEVERITY
// =============================================================================

// Severity represents the severity level of a lint issue.
type Severity int

const (
	// SeverityOff disables a rule.
	SeverityOff Severity = iota - 1

	// SeverityInfo represents informational/style issues.
	SeverityInfo

	// SeverityWarning represents issues that should be noted but don't fail a check.
	SeverityWarning

	// SeverityError represents issues that fail a check.
	SeverityError
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityOff:
		return "off"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Severity) UnmarshalText(text []byte) error {
	*s = SeverityFromString(string(text))
	return nil
}

// SeverityFromString converts a severity name to a Severity.
//
// Unknown names map to SeverityWarning.
func SeverityFromString(s string) Severity {
	switch strings.ToLower(s) {
	case "off", "none", "disabled":
		return SeverityOff
	case "error", "err", "fatal":
		return SeverityError
	case "warning", "warn":
		return SeverityWarning
	case "info", "note", "hint":
		return SeverityInfo
	default:
		return SeverityWarning
	}
}

// =============================================================================
// ISSUES
// =============================================================================

// TextEdit replaces the source bytes in [Start, End) with NewText.
type TextEdit struct {
	Start   int    `json:"start"`
	End     int    `json:"end"`
	NewText string `json:"new_text"`
}

// LintIssue represents a single issue found in a template.
type LintIssue struct {
	// File is the path to the file containing the issue.
	File string `json:"file"`

	// Line is the 1-indexed line number where the issue starts.
	Line int `json:"line"`

	// Column is the 1-indexed column number where the issue starts.
	Column int `json:"column"`

	// EndLine is the 1-indexed line where the issue ends.
	EndLine int `json:"end_line"`

	// EndColumn is the 1-indexed column where the issue ends (exclusive).
	EndColumn int `json:"end_column"`

	// Offset is the byte offset of the issue start, used for ordering.
	Offset int `json:"offset"`

	// Rule is the rule that reported the issue.
	Rule string `json:"rule"`

	// Severity is the configured severity of the rule.
	Severity Severity `json:"severity"`

	// Message is the human-readable description of the issue.
	Message string `json:"message"`

	// Suggestion is a suggested fix if available.
	Suggestion string `json:"suggestion,omitempty"`

	// Edits are the automatic fix for the issue. Empty when there is none.
	Edits []TextEdit `json:"edits,omitempty"`

	// TemplateID is the index of the template within the file.
	TemplateID int `json:"template_id"`
}

// CanAutoFix reports whether the issue carries an automatic fix.
func (i *LintIssue) CanAutoFix() bool {
	return len(i.Edits) > 0
}

// Location returns "file:line:column".
func (i *LintIssue) Location() string {
	return fmt.Sprintf("%s:%d:%d", i.File, i.Line, i.Column)
}

// =============================================================================
// RESULTS
// =============================================================================

// LintResult is the outcome of linting one file.
type LintResult struct {
	// Valid is true if no error-severity issues were found.
	Valid bool `json:"valid"`

	// Errors are issues with SeverityError.
	Errors []LintIssue `json:"errors"`

	// Warnings are issues with SeverityWarning.
	Warnings []LintIssue `json:"warnings"`

	// Infos are informational issues.
	Infos []LintIssue `json:"infos,omitempty"`

	// Duration is how long linting took.
	Duration time.Duration `json:"duration"`

	// FilePath is the file that was linted.
	FilePath string `json:"file_path"`

	// Language is the grammar used to extract templates.
	Language string `json:"language"`

	// Templates is the number of tagged templates found.
	Templates int `json:"templates"`

	// Cached is true when the result came from the result store.
	Cached bool `json:"cached,omitempty"`
}

// newResult classifies issues by severity, each group in source order.
func newResult(path string, issues []LintIssue) *LintResult {
	sort.SliceStable(issues, func(i, j int) bool {
		return issues[i].Offset < issues[j].Offset
	})

	r := &LintResult{
		FilePath: path,
		Errors:   make([]LintIssue, 0),
		Warnings: make([]LintIssue, 0),
	}
	for _, issue := range issues {
		switch issue.Severity {
		case SeverityError:
			r.Errors = append(r.Errors, issue)
		case SeverityWarning:
			r.Warnings = append(r.Warnings, issue)
		case SeverityInfo:
			r.Infos = append(r.Infos, issue)
		}
	}
	r.Valid = len(r.Errors) == 0
	return r
}

// HasErrors returns true if any error-severity issues were found.
func (r *LintResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// HasWarnings returns true if any warning-severity issues were found.
func (r *LintResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// HasIssues returns true if any issues were found.
func (r *LintResult) HasIssues() bool {
	return r.IssueCount() > 0
}

// AllIssues returns all issues sorted by source position.
func (r *LintResult) AllIssues() []LintIssue {
	issues := make([]LintIssue, 0, r.IssueCount())
	issues = append(issues, r.Errors...)
	issues = append(issues, r.Warnings...)
	issues = append(issues, r.Infos...)
	sort.SliceStable(issues, func(i, j int) bool {
		return issues[i].Offset < issues[j].Offset
	})
	return issues
}

// IssueCount returns the total number of issues.
func (r *LintResult) IssueCount() int {
	return len(r.Errors) + len(r.Warnings) + len(r.Infos)
}

// AutoFixableCount returns the number of issues with an automatic fix.
func (r *LintResult) AutoFixableCount() int {
	count := 0
	for _, issue := range r.AllIssues() {
		if issue.CanAutoFix() {
			count++
		}
	}
	return count
}

// Summary aggregates results across files.
type Summary struct {
	Files     int `json:"files"`
	Templates int `json:"templates"`
	Errors    int `json:"errors"`
	Warnings  int `json:"warnings"`
	Infos     int `json:"infos"`
	Fixable   int `json:"fixable"`
	Cached    int `json:"cached"`
}

// Summarize aggregates a set of results.
func Summarize(results []*LintResult) Summary {
	var s Summary
	for _, r := range results {
		if r == nil {
			continue
		}
		s.Files++
		s.Templates += r.Templates
		s.Errors += len(r.Errors)
		s.Warnings += len(r.Warnings)
		s.Infos += len(r.Infos)
		s.Fixable += r.AutoFixableCount()
		if r.Cached {
			s.Cached++
		}
	}
	return s
}
