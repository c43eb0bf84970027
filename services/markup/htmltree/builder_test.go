// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package htmltree

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func errorCodes(errs []ParseError) []string {
	codes := make([]string, 0, len(errs))
	for _, e := range errs {
		codes = append(codes, e.Code)
	}
	return codes
}

func TestIsDocument(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"<html><body></body></html>", true},
		{"<!doctype html><HTML lang=en>", true},
		{"<div>html</div>", false},
		{"<p></p>", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsDocument(tt.text); got != tt.want {
			t.Errorf("IsDocument(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestParse_DocumentInsertsImpliedElements(t *testing.T) {
	root, errs := Parse("<html><body><p>x</p></body></html>")

	require.Empty(t, errs)
	assert.Equal(t, ModeDocument, root.Mode)
	require.Len(t, root.Children, 1)

	htmlEl, ok := root.Children[0].(*Element)
	require.True(t, ok)
	assert.Equal(t, "html", htmlEl.Name)
	assert.False(t, htmlEl.Implied)

	head := FindElement(root, "head")
	require.NotNil(t, head)
	assert.True(t, head.Implied)
	assert.Nil(t, head.Location)

	body := FindElement(root, "body")
	require.NotNil(t, body)
	assert.False(t, body.Implied)
	assert.Equal(t, Span{Start: 6, End: 12}, body.Location.Span)
}

func TestParse_FragmentHasNoImpliedDocumentElements(t *testing.T) {
	root, errs := Parse("<p>x</p>")

	require.Empty(t, errs)
	assert.Equal(t, ModeFragment, root.Mode)
	require.Len(t, root.Children, 1)
	assert.Equal(t, "p", root.Children[0].(*Element).Name)
	assert.Nil(t, FindElement(root, "html"))
	assert.Nil(t, FindElement(root, "body"))
}

func TestParse_FragmentImpliedTableBody(t *testing.T) {
	root, _ := Parse("<table><tr><td>1</td></tr></table>")

	tbody := FindElement(root, "tbody")
	require.NotNil(t, tbody)
	assert.True(t, tbody.Implied)

	tr := FindElement(root, "tr")
	require.NotNil(t, tr)
	assert.False(t, tr.Implied)
	assert.Equal(t, Span{Start: 7, End: 11}, tr.Location.Span)
}

func TestParse_AttributeLocations(t *testing.T) {
	root, errs := Parse(`<div title="party" id=x></div>`)
	require.Empty(t, errs)

	div := FindElement(root, "div")
	require.NotNil(t, div)
	require.NotNil(t, div.Location)

	assert.Equal(t, Span{Start: 0, End: 24}, div.Location.Span)

	span, ok := div.AttrSpan("title")
	require.True(t, ok)
	assert.Equal(t, Span{Start: 5, End: 18}, span)

	span, ok = div.AttrSpan("id")
	require.True(t, ok)
	assert.Equal(t, Span{Start: 19, End: 23}, span)

	_, ok = div.AttrSpan("class")
	assert.False(t, ok)
}

func TestParse_AttributeNamesAreCaseInsensitive(t *testing.T) {
	root, _ := Parse(`<DIV Title="x"></DIV>`)

	div := FindElement(root, "div")
	require.NotNil(t, div)

	v, ok := div.Attr("TITLE")
	require.True(t, ok)
	assert.Equal(t, "x", v)

	_, ok = div.AttrSpan("tItLe")
	assert.True(t, ok)
}

func TestParse_AttributeValuesAreDecoded(t *testing.T) {
	root, _ := Parse(`<a title="a &amp; b"></a>`)

	v, ok := FindElement(root, "a").Attr("title")
	require.True(t, ok)
	assert.Equal(t, "a & b", v)
}

func TestParse_PlaceholderAttributeNamesAreLowercased(t *testing.T) {
	root, _ := Parse(`<div data-{{__Q:0__}}="x"></div>`)

	div := FindElement(root, "div")
	require.NotNil(t, div)
	require.Len(t, div.Attrs, 1)
	assert.Equal(t, "data-{{__q:0__}}", div.Attrs[0].Name)

	_, ok := div.AttrSpan("data-{{__Q:0__}}")
	assert.True(t, ok)
}

func TestParse_DuplicateAttributeKeepsFirst(t *testing.T) {
	root, errs := Parse(`<a href="x" href="y"></a>`)

	a := FindElement(root, "a")
	require.NotNil(t, a)
	require.Len(t, a.Attrs, 1)
	assert.Equal(t, "x", a.Attrs[0].Value)

	span, _ := a.AttrSpan("href")
	assert.Equal(t, Span{Start: 3, End: 11}, span)

	require.Len(t, errs, 1)
	assert.Equal(t, CodeDuplicateAttribute, errs[0].Code)
	assert.Equal(t, Span{Start: 12, End: 20}, errs[0].Span)
}

func TestParse_CommentSpan(t *testing.T) {
	root, errs := Parse("<p></p><!-- hi -->")
	require.Empty(t, errs)
	require.Len(t, root.Children, 2)

	c, ok := root.Children[1].(*Comment)
	require.True(t, ok)
	assert.Equal(t, " hi ", c.Data)
	require.NotNil(t, c.Span)
	assert.Equal(t, Span{Start: 7, End: 18}, *c.Span)
}

func TestParse_TextHasNoLocation(t *testing.T) {
	root, _ := Parse("hello")

	require.Len(t, root.Children, 1)
	text, ok := root.Children[0].(*Text)
	require.True(t, ok)
	assert.Equal(t, "hello", text.Data)
	assert.Equal(t, KindText, text.Kind())
	assert.Same(t, root, text.Parent())
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		codes []string
		first Span
	}{
		{
			name:  "eof in tag",
			text:  `<div class="a"`,
			codes: []string{CodeEOFInTag},
			first: Span{Start: 0, End: 14},
		},
		{
			name:  "non-void self-closing",
			text:  `<div/><br/>`,
			codes: []string{CodeNonVoidElementWithTrailingSolidus},
			first: Span{Start: 0, End: 6},
		},
		{
			name:  "missing whitespace between attributes",
			text:  `<div a="1"b="2"></div>`,
			codes: []string{CodeMissingWhitespaceBetweenAttributes},
			first: Span{Start: 10, End: 11},
		},
		{
			name:  "unexpected character in unquoted value",
			text:  `<a b=c"d></a>`,
			codes: []string{CodeUnexpectedCharacterInUnquotedAttrValue},
			first: Span{Start: 6, End: 7},
		},
		{
			name:  "end tag with attributes",
			text:  `<p></p class="x">`,
			codes: []string{CodeEndTagWithAttributes},
			first: Span{Start: 3, End: 17},
		},
		{
			name:  "abrupt empty comment",
			text:  `<!-->`,
			codes: []string{CodeAbruptClosingOfEmptyComment},
			first: Span{Start: 0, End: 5},
		},
		{
			name:  "processing instruction",
			text:  `<?xml?><p></p>`,
			codes: []string{CodeUnexpectedQuestionMarkInsteadOfTagName},
			first: Span{Start: 0, End: 7},
		},
		{
			name:  "errors are sorted",
			text:  `<div/><a href="1" href="2"></a>`,
			codes: []string{CodeNonVoidElementWithTrailingSolidus, CodeDuplicateAttribute},
			first: Span{Start: 0, End: 6},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errs := Parse(tt.text)
			require.Equal(t, tt.codes, errorCodes(errs))
			assert.Equal(t, tt.first, errs[0].Span)
		})
	}
}

func TestParse_ForeignSelfClosingIsAllowed(t *testing.T) {
	root, errs := Parse(`<svg><path d="M0"/></svg>`)

	assert.Empty(t, errs)
	path := FindElement(root, "path")
	require.NotNil(t, path)
	assert.Equal(t, "svg", path.Namespace)
}

func elementsNamed(n Node, name string) []*Element {
	var out []*Element
	for _, el := range Elements(n) {
		if el.Name == name {
			out = append(out, el)
		}
	}
	return out
}

func TestParse_CDATA(t *testing.T) {
	t.Run("allowed in foreign content", func(t *testing.T) {
		root, errs := Parse(`<svg><![CDATA[a<b]]></svg>`)
		assert.Empty(t, errs)

		svg := FindElement(root, "svg")
		require.NotNil(t, svg)
		require.Len(t, svg.Children, 1)
		text, ok := svg.Children[0].(*Text)
		require.True(t, ok)
		assert.Equal(t, "a<b", text.Data)
	})

	t.Run("error in html content", func(t *testing.T) {
		_, errs := Parse(`<div><![CDATA[x]]></div>`)
		require.Len(t, errs, 1)
		assert.Equal(t, CodeCDATAInHTMLContent, errs[0].Code)
		assert.Equal(t, Span{Start: 5, End: 18}, errs[0].Span)
	})

	t.Run("html integration point", func(t *testing.T) {
		_, errs := Parse(`<svg><foreignObject><p><![CDATA[x]]></p></foreignObject></svg>`)
		assert.Equal(t, []string{CodeCDATAInHTMLContent}, errorCodes(errs))
	})
}

func TestParse_ForeignTitleChildrenHaveLocations(t *testing.T) {
	text := `<svg><title><tspan class="a">x</tspan></title></svg><tspan id="b"></tspan>`
	root, errs := Parse(text)
	assert.Empty(t, errs)

	spans := elementsNamed(root, "tspan")
	require.Len(t, spans, 2)

	inner := spans[0]
	require.NotNil(t, inner.Location)
	assert.False(t, inner.Implied)
	assert.Equal(t, strings.Index(text, `<tspan class`), inner.Location.Span.Start)
	class, ok := inner.AttrSpan("class")
	require.True(t, ok)
	assert.Equal(t, `class="a"`, text[class.Start:class.End])

	outer := spans[1]
	require.NotNil(t, outer.Location)
	assert.False(t, outer.Implied)
	assert.Equal(t, strings.Index(text, `<tspan id`), outer.Location.Span.Start)
	id, ok := outer.AttrSpan("id")
	require.True(t, ok)
	assert.Equal(t, `id="b"`, text[id.Start:id.End])
}

func TestParse_ForeignRawTextTagsAreNotRawText(t *testing.T) {
	text := `<svg><style><rect x="1"/></style></svg><p class="c"></p>`
	root, errs := Parse(text)
	assert.Empty(t, errs)

	rect := FindElement(root, "rect")
	require.NotNil(t, rect)
	assert.Equal(t, "svg", rect.Namespace)
	require.NotNil(t, rect.Location)
	assert.Equal(t, strings.Index(text, "<rect"), rect.Location.Span.Start)

	p := FindElement(root, "p")
	require.NotNil(t, p)
	require.NotNil(t, p.Location)
	assert.Equal(t, strings.Index(text, "<p"), p.Location.Span.Start)
}

func TestParse_ReconstructedFormattingElementIsImplied(t *testing.T) {
	text := `<b>1<p>2</b>3</p><b id="z">x</b>`
	root, _ := Parse(text)

	bs := elementsNamed(root, "b")
	require.Len(t, bs, 3)

	require.NotNil(t, bs[0].Location)
	assert.Equal(t, 0, bs[0].Location.Span.Start)

	assert.True(t, bs[1].Implied, "clone inside <p> has no start tag")
	assert.Nil(t, bs[1].Location)

	require.NotNil(t, bs[2].Location)
	assert.False(t, bs[2].Implied)
	assert.Equal(t, strings.Index(text, `<b id`), bs[2].Location.Span.Start)
	id, ok := bs[2].AttrSpan("id")
	require.True(t, ok)
	assert.Equal(t, `id="z"`, text[id.Start:id.End])
}

func TestParse_MergedBodyAttributesKeepLocation(t *testing.T) {
	text := `<html><body><p></p><body class="x"></body></html>`
	root, _ := Parse(text)
	assert.Equal(t, ModeDocument, root.Mode)

	body := FindElement(root, "body")
	require.NotNil(t, body)
	assert.False(t, body.Implied)
	require.NotNil(t, body.Location)
	assert.Equal(t, strings.Index(text, "<body>"), body.Location.Span.Start)
}

func TestParseError_Message(t *testing.T) {
	e := ParseError{Code: CodeDuplicateAttribute, Span: Span{Start: 1, End: 2}}
	assert.Equal(t, "duplicate attribute", e.Message())
	assert.Equal(t, "duplicate-attribute@1-2", e.String())

	assert.Equal(t, "made-up", ParseError{Code: "made-up"}.Message())
}
