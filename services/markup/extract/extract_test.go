// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package extract

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/templint/services/markup/template"
	"github.com/AleutianAI/templint/services/markup/template/templatetest"
)

func TestExtract_FindsTaggedTemplates(t *testing.T) {
	src := strings.Join([]string{
		"import {html} from 'lit';",
		"const a = html`<p>${name}</p>`;",
		"const b = lit.html`<a href=${url}>go</a>`;",
		"const c = css`:host { color: red }`;",
		"const d = `<p>untagged</p>`;",
		"const e = html(`<p>call</p>`);",
	}, "\n")

	res, err := New().Extract(context.Background(), "view.js", []byte(src))
	require.NoError(t, err)
	assert.Equal(t, "javascript", res.Language)
	assert.False(t, res.HasSyntaxErrors)

	require.Len(t, res.Templates, 2)
	assert.Equal(t, template.ID(0), res.Templates[0].ID)
	assert.Equal(t, "html", res.Templates[0].Tag)
	assert.Equal(t, template.ID(1), res.Templates[1].ID)
	assert.Equal(t, "html", res.Templates[1].Tag)
	assert.Equal(t, "url", res.Templates[1].Expressions[0].Text)
}

func TestExtract_MatchesDelimiterConvention(t *testing.T) {
	src := "x = html`<a href=${ url }>go ${n + 1}</a>`;"

	res, err := New().Extract(context.Background(), "view.js", []byte(src))
	require.NoError(t, err)
	require.Len(t, res.Templates, 1)

	want := templatetest.MustParse(t, src)
	got := res.Templates[0]

	if diff := cmp.Diff(want.Segments, got.Segments); diff != "" {
		t.Errorf("segments mismatch (-want +got):\n%s", diff)
	}
	ignoreKind := cmpopts.IgnoreFields(template.Expression{}, "Kind")
	if diff := cmp.Diff(want.Expressions, got.Expressions, ignoreKind); diff != "" {
		t.Errorf("expressions mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want.Span, got.Span); diff != "" {
		t.Errorf("span mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "binary_expression", got.Expressions[1].Kind)
}

func TestExtract_ExpressionKinds(t *testing.T) {
	src := "html`<p title=${'x'} data-n=${42}>${items}</p>`"

	res, err := New().Extract(context.Background(), "view.js", []byte(src))
	require.NoError(t, err)
	require.Len(t, res.Templates, 1)

	exprs := res.Templates[0].Expressions
	require.Len(t, exprs, 3)
	assert.True(t, exprs[0].IsStringLiteral())
	assert.Equal(t, "number", exprs[1].Kind)
	assert.Equal(t, "identifier", exprs[2].Kind)
}

func TestExtract_NestedTemplatesFollowParent(t *testing.T) {
	src := "html`<ul>${items.map(i => html`<li>${i}</li>`)}</ul>`"

	res, err := New().Extract(context.Background(), "list.js", []byte(src))
	require.NoError(t, err)
	require.Len(t, res.Templates, 2)

	assert.Equal(t, "<ul>", res.Templates[0].Segments[0].Raw)
	assert.Equal(t, "<li>", res.Templates[1].Segments[0].Raw)
	assert.True(t, res.Templates[0].Span.Contains(*res.Templates[1].Span))
}

func TestExtract_TypeScriptAndTSX(t *testing.T) {
	tests := []struct {
		path string
		src  string
		lang string
	}{
		{"view.ts", "const v: TemplateResult = html`<p>${this.name as string}</p>`;", "typescript"},
		{"view.tsx", "const el = <div/>; const v = html`<p>${x}</p>`;", "tsx"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			res, err := New().Extract(context.Background(), tt.path, []byte(tt.src))
			require.NoError(t, err)
			assert.Equal(t, tt.lang, res.Language)
			require.Len(t, res.Templates, 1)
			assert.Equal(t, "<p>", res.Templates[0].Segments[0].Raw)
		})
	}
}

func TestExtract_CustomTags(t *testing.T) {
	src := "svg`<circle r=${r}></circle>`; html`<p></p>`;"

	res, err := New(WithTags("svg")).Extract(context.Background(), "icon.js", []byte(src))
	require.NoError(t, err)
	require.Len(t, res.Templates, 1)
	assert.Equal(t, "svg", res.Templates[0].Tag)
}

func TestExtract_Errors(t *testing.T) {
	ex := New(WithMaxFileSize(16))

	_, err := ex.Extract(context.Background(), "style.css", []byte("a{}"))
	assert.True(t, errors.Is(err, ErrUnsupportedLanguage), "got %v", err)

	_, err = ex.Extract(context.Background(), "big.js", []byte(strings.Repeat("x", 17)))
	assert.True(t, errors.Is(err, ErrFileTooLarge), "got %v", err)

	_, err = ex.Extract(context.Background(), "bad.js", []byte{0xff, 0xfe})
	assert.True(t, errors.Is(err, ErrInvalidContent), "got %v", err)

	var extractErr *ExtractError
	require.True(t, errors.As(err, &extractErr))
	assert.Equal(t, "bad.js", extractErr.FilePath)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = ex.Extract(ctx, "a.js", []byte("x"))
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
}

func TestExtract_SyntaxErrorsStillExtract(t *testing.T) {
	src := "const a = html`<p>${x}</p>`;\nfunction (\n"

	res, err := New().Extract(context.Background(), "broken.js", []byte(src))
	require.NoError(t, err)
	assert.True(t, res.HasSyntaxErrors)
	assert.Len(t, res.Templates, 1)
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported("a/b/view.TS"))
	assert.True(t, Supported("view.mjs"))
	assert.False(t, Supported("view.html"))
	assert.Contains(t, Extensions(), ".tsx")
}
