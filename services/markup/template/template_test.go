// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package template_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/templint/services/markup/template"
	"github.com/AleutianAI/templint/services/markup/template/templatetest"
)

func TestPlaceholder(t *testing.T) {
	tests := []struct {
		index  int
		quoted bool
		want   string
	}{
		{0, false, "{{__Q:0__}}"},
		{7, false, "{{__Q:7__}}"},
		{12, true, `"{{__Q:12__}}"`},
	}

	for _, tt := range tests {
		got := template.Placeholder(tt.index, tt.quoted)
		if got != tt.want {
			t.Errorf("Placeholder(%d, %v) = %q, want %q", tt.index, tt.quoted, got, tt.want)
		}
	}
}

func TestIsPlaceholder(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"{{__Q:0__}}", true},
		{"{{__Q:42__}}", true},
		{`"{{__Q:0__}}"`, false},
		{"{{__Q:0__}} {{__Q:1__}}", false},
		{"x{{__Q:0__}}", false},
		{"{{__q:0__}}", false},
		{"{{__Q:__}}", false},
		{"party", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := template.IsPlaceholder(tt.value); got != tt.want {
			t.Errorf("IsPlaceholder(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestPlaceholderIndex(t *testing.T) {
	idx, ok := template.PlaceholderIndex("{{__Q:3__}}")
	require.True(t, ok)
	assert.Equal(t, 3, idx)

	_, ok = template.PlaceholderIndex("{{__Q:3__}}x")
	assert.False(t, ok)
}

func TestContainsPlaceholder(t *testing.T) {
	assert.True(t, template.ContainsPlaceholder("data-{{__q:0__}}"))
	assert.True(t, template.ContainsPlaceholder("a {{__Q:1__}} b"))
	assert.False(t, template.ContainsPlaceholder("{{ not one }}"))
}

func TestSerialize_LiteralOnly(t *testing.T) {
	tpl := templatetest.MustParse(t, "html`<div class=\"a\">Hi</div>`")

	require.Empty(t, tpl.Expressions)
	assert.Equal(t, tpl.Segments[0].Raw, template.Serialize(tpl))
	assert.Equal(t, `<div class="a">Hi</div>`, template.Serialize(tpl))
}

func TestSerialize_QuotesUnquotedAttributeBindings(t *testing.T) {
	tpl := templatetest.MustParse(t, "html`<div title=${808} class=\"${a}\">${b}</div>`")

	got := template.Serialize(tpl)

	assert.Equal(t, `<div title="{{__Q:0__}}" class="{{__Q:1__}}">{{__Q:2__}}</div>`, got)
}

func TestSerialize_PlaceholderUniqueness(t *testing.T) {
	var src strings.Builder
	src.WriteString("html`<ul>")
	const n = 12
	for i := 0; i < n; i++ {
		if i%2 == 0 {
			fmt.Fprintf(&src, "<li id=${id%d}>${v%d}</li>", i, i)
		} else {
			fmt.Fprintf(&src, "<li>${v%d}</li>", i)
		}
	}
	src.WriteString("</ul>`")

	tpl := templatetest.MustParse(t, src.String())
	got := template.Serialize(tpl)

	for i := range tpl.Expressions {
		ph := template.Placeholder(i, false)
		assert.Equal(t, 1, strings.Count(got, ph), "placeholder %s", ph)
	}
}

func TestSpan(t *testing.T) {
	s := template.Span{Start: 4, End: 10}

	assert.Equal(t, 6, s.Len())
	assert.True(t, s.Contains(template.Span{Start: 4, End: 10}))
	assert.True(t, s.Contains(template.Span{Start: 5, End: 9}))
	assert.False(t, s.Contains(template.Span{Start: 3, End: 9}))
}

func TestTemplate_ExpressionAt(t *testing.T) {
	tpl := templatetest.MustParse(t, "html`<p>${a}</p>`")

	require.NotNil(t, tpl.ExpressionAt(0))
	assert.Equal(t, "a", tpl.ExpressionAt(0).Text)
	assert.Nil(t, tpl.ExpressionAt(1))
	assert.Nil(t, tpl.ExpressionAt(-1))
}
