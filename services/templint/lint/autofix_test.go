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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func issueWith(edits ...TextEdit) LintIssue {
	return LintIssue{Rule: "test", Edits: edits}
}

func TestApplyFixes(t *testing.T) {
	tests := []struct {
		name   string
		issues []LintIssue
		want   string
		fixed  int
	}{
		{
			name:   "single replacement",
			issues: []LintIssue{issueWith(TextEdit{Start: 4, End: 5, NewText: "X"})},
			want:   "abcdXfgh",
			fixed:  1,
		},
		{
			name: "applied back to front regardless of order",
			issues: []LintIssue{
				issueWith(TextEdit{Start: 6, End: 7, NewText: "77"}),
				issueWith(TextEdit{Start: 0, End: 1, NewText: ""}),
			},
			want:  "bcdef77h",
			fixed: 2,
		},
		{
			name: "multi-edit issue is atomic",
			issues: []LintIssue{
				issueWith(TextEdit{Start: 0, End: 0, NewText: "<"}, TextEdit{Start: 8, End: 8, NewText: ">"}),
			},
			want:  "<abcdefgh>",
			fixed: 1,
		},
		{
			name: "overlapping issue skipped",
			issues: []LintIssue{
				issueWith(TextEdit{Start: 2, End: 5, NewText: "-"}),
				issueWith(TextEdit{Start: 4, End: 6, NewText: "+"}),
			},
			want:  "ab-fgh",
			fixed: 1,
		},
		{
			name: "same insertion point skipped",
			issues: []LintIssue{
				issueWith(TextEdit{Start: 3, End: 3, NewText: "1"}),
				issueWith(TextEdit{Start: 3, End: 3, NewText: "2"}),
			},
			want:  "abc1defgh",
			fixed: 1,
		},
		{
			name: "insertion at replacement boundary kept",
			issues: []LintIssue{
				issueWith(TextEdit{Start: 2, End: 4, NewText: "__"}),
				issueWith(TextEdit{Start: 4, End: 4, NewText: "!"}),
			},
			want:  "ab__!efgh",
			fixed: 2,
		},
		{
			name:   "issues without fixes ignored",
			issues: []LintIssue{{Rule: "plain"}},
			want:   "abcdefgh",
			fixed:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := []byte("abcdefgh")
			got, n, err := ApplyFixes(content, tt.issues)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
			assert.Equal(t, tt.fixed, n)
			assert.Equal(t, "abcdefgh", string(content))
		})
	}
}

func TestApplyFixes_OutOfRange(t *testing.T) {
	_, _, err := ApplyFixes([]byte("abc"), []LintIssue{issueWith(TextEdit{Start: 2, End: 9})})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, _, err = ApplyFixes([]byte("abc"), []LintIssue{issueWith(TextEdit{Start: 2, End: 1})})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUnifiedDiff(t *testing.T) {
	orig := "line1\nline2\nline3\nline4\nline5\nline6\nline7\nline8\nline9\nline10\nline11\nline12\n"
	fixed := strings.Replace(orig, "line2\n", "LINE2\n", 1)
	fixed = strings.Replace(fixed, "line11\n", "LINE11\n", 1)

	out, err := UnifiedDiff("src/view.js", []byte(orig), []byte(fixed))
	require.NoError(t, err)

	assert.Contains(t, out, "--- a/src/view.js\n")
	assert.Contains(t, out, "+++ b/src/view.js\n")
	assert.Contains(t, out, "@@ -1,5 +1,5 @@")
	assert.Contains(t, out, "@@ -8,5 +8,5 @@")
	assert.Contains(t, out, "-line2\n+LINE2\n")
	assert.Contains(t, out, "-line11\n+LINE11\n")
	assert.NotContains(t, out, " line6\n")
}

func TestUnifiedDiff_MergesNearbyChanges(t *testing.T) {
	orig := "a\nb\nc\nd\ne\nf\n"
	fixed := "A\nb\nc\nd\ne\nF\n"

	out, err := UnifiedDiff("x.js", []byte(orig), []byte(fixed))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "@@ -"))
	assert.Contains(t, out, "@@ -1,6 +1,6 @@")
}

func TestUnifiedDiff_LineCountChange(t *testing.T) {
	orig := "one\ntwo\nthree\n"
	fixed := "one\ntwo\ninserted\nthree\n"

	out, err := UnifiedDiff("x.js", []byte(orig), []byte(fixed))
	require.NoError(t, err)
	assert.Contains(t, out, "@@ -1,3 +1,4 @@")
	assert.Contains(t, out, "+inserted\n")
	assert.Contains(t, out, " three\n")
}

func TestUnifiedDiff_SeparateHunksAcrossInsertion(t *testing.T) {
	var orig, fixed strings.Builder
	for i := 1; i <= 20; i++ {
		line := fmt.Sprintf("l%d\n", i)
		orig.WriteString(line)
		switch i {
		case 2:
			fixed.WriteString(line + "NEW\n")
		case 15:
			fixed.WriteString("L15\n")
		default:
			fixed.WriteString(line)
		}
	}

	out, err := UnifiedDiff("x.js", []byte(orig.String()), []byte(fixed.String()))
	require.NoError(t, err)

	assert.Equal(t, 2, strings.Count(out, "@@ -"))
	assert.Contains(t, out, "@@ -1,5 +1,6 @@")
	assert.Contains(t, out, " l2\n+NEW\n l3\n")
	assert.Contains(t, out, "@@ -12,7 +13,7 @@")
	assert.Contains(t, out, "-l15\n+L15\n")
	assert.NotContains(t, out, "-l8\n")
}

func TestUnifiedDiff_NoChange(t *testing.T) {
	out, err := UnifiedDiff("x.js", []byte("same"), []byte("same"))
	require.NoError(t, err)
	assert.Empty(t, out)
}
