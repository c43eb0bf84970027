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
	"bytes"
	"fmt"
	"sort"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/sourcegraph/go-diff/diff"
)

// =============================================================================
// AUTO-FIX
// =============================================================================

// diffContext is the number of unchanged lines around each hunk.
const diffContext = 3

// ApplyFixes applies the automatic fixes of issues to content.
//
// Description:
//
//	Each issue's edits are applied together or not at all. Issues are
//	taken in order of their first edit; an issue whose edits overlap an
//	already accepted edit is skipped and left for a later run.
//
// Inputs:
//
//	content - The original file content.
//	issues - Issues from a LintResult over the same content.
//
// Outputs:
//
//	[]byte - The fixed content. content itself is not modified.
//	int - Number of issues fixed.
//	error - ErrInvalidInput if an edit lies outside content.
//
// Example:
//
//	fixed, n, err := lint.ApplyFixes(content, result.AllIssues())
func ApplyFixes(content []byte, issues []LintIssue) ([]byte, int, error) {
	type group struct {
		edits []TextEdit
		first int
	}

	var groups []group
	for _, issue := range issues {
		if !issue.CanAutoFix() {
			continue
		}
		edits := make([]TextEdit, len(issue.Edits))
		copy(edits, issue.Edits)
		sort.SliceStable(edits, func(i, j int) bool { return edits[i].Start < edits[j].Start })
		for _, e := range edits {
			if e.Start < 0 || e.End < e.Start || e.End > len(content) {
				return nil, 0, fmt.Errorf("%w: edit [%d,%d) outside content of %d bytes",
					ErrInvalidInput, e.Start, e.End, len(content))
			}
		}
		groups = append(groups, group{edits: edits, first: edits[0].Start})
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].first < groups[j].first })

	var accepted []TextEdit
	fixed := 0
	for _, g := range groups {
		if overlapsAny(g.edits, accepted) {
			continue
		}
		accepted = append(accepted, g.edits...)
		fixed++
	}
	sort.SliceStable(accepted, func(i, j int) bool { return accepted[i].Start < accepted[j].Start })

	var out bytes.Buffer
	out.Grow(len(content))
	pos := 0
	for _, e := range accepted {
		out.Write(content[pos:e.Start])
		out.WriteString(e.NewText)
		pos = e.End
	}
	out.Write(content[pos:])
	return out.Bytes(), fixed, nil
}

// overlapsAny reports whether any edit in a touches an edit in b. Two
// insertions at the same offset overlap; an insertion at the boundary of a
// replacement does not.
func overlapsAny(a, b []TextEdit) bool {
	for _, x := range a {
		for _, y := range b {
			if x.Start == y.Start && (x.Start == x.End || y.Start == y.End) {
				return true
			}
			if x.Start < y.End && y.Start < x.End {
				return true
			}
		}
	}
	return false
}

// =============================================================================
// DIFF PREVIEW
// =============================================================================

// UnifiedDiff renders the change from orig to fixed as a unified diff.
//
// Description:
//
//	Line opcodes come from go-difflib's sequence matcher, grouped into
//	hunks with three lines of context, and go-diff prints the file diff.
//
// Outputs:
//
//	string - The diff, or "" when nothing changed.
//	error - Formatting failure from go-diff.
func UnifiedDiff(path string, orig, fixed []byte) (string, error) {
	if bytes.Equal(orig, fixed) {
		return "", nil
	}
	a := splitLines(orig)
	b := splitLines(fixed)

	matcher := difflib.NewMatcher(a, b)
	var hunks []*diff.Hunk
	for _, group := range matcher.GetGroupedOpCodes(diffContext) {
		hunks = append(hunks, hunkFor(group, a, b))
	}

	fd := &diff.FileDiff{
		OrigName: "a/" + path,
		NewName:  "b/" + path,
		Hunks:    hunks,
	}
	out, err := diff.PrintFileDiff(fd)
	if err != nil {
		return "", fmt.Errorf("formatting diff for %s: %w", path, err)
	}
	return string(out), nil
}

// splitLines splits content into lines, each keeping its newline.
func splitLines(content []byte) []string {
	var lines []string
	for len(content) > 0 {
		i := bytes.IndexByte(content, '\n')
		if i < 0 {
			lines = append(lines, string(content))
			break
		}
		lines = append(lines, string(content[:i+1]))
		content = content[i+1:]
	}
	return lines
}

// hunkFor converts one group of opcodes into a hunk.
func hunkFor(group []difflib.OpCode, a, b []string) *diff.Hunk {
	first, last := group[0], group[len(group)-1]

	var body bytes.Buffer
	for _, op := range group {
		switch op.Tag {
		case 'e':
			for _, line := range a[op.I1:op.I2] {
				writeLine(&body, ' ', line)
			}
		case 'r', 'd', 'i':
			for _, line := range a[op.I1:op.I2] {
				writeLine(&body, '-', line)
			}
			for _, line := range b[op.J1:op.J2] {
				writeLine(&body, '+', line)
			}
		}
	}

	h := &diff.Hunk{
		OrigStartLine: int32(first.I1 + 1),
		OrigLines:     int32(last.I2 - first.I1),
		NewStartLine:  int32(first.J1 + 1),
		NewLines:      int32(last.J2 - first.J1),
		Body:          body.Bytes(),
	}
	// An empty side names the line before the hunk.
	if h.OrigLines == 0 {
		h.OrigStartLine = int32(first.I1)
	}
	if h.NewLines == 0 {
		h.NewStartLine = int32(first.J1)
	}
	return h
}

func writeLine(buf *bytes.Buffer, prefix byte, line string) {
	buf.WriteByte(prefix)
	buf.WriteString(line)
	if len(line) == 0 || line[len(line)-1] != '\n' {
		buf.WriteByte('\n')
	}
}
