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

	"golang.org/x/net/html"
)

// =============================================================================
// TOKEN SCAN
// =============================================================================

// startTag is a start tag seen by the tokenizer with its serialized location.
type startTag struct {
	name     string
	location *TagLocation
	used     bool
}

// commentTok is a comment seen by the tokenizer.
type commentTok struct {
	data string
	span Span
	used bool
}

// tokenScan is the result of a tokenizer pass over the serialized HTML.
//
// The tree builder discards offsets, so a second pass with the bare
// tokenizer recovers them. Raw() slices are contiguous, so a running sum of
// their lengths is the byte offset of each token.
type tokenScan struct {
	tags     map[string][]*startTag
	comments []*commentTok
	errors   []ParseError
}

// voidElements never have content and may legally use "/>".
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// scanTokens tokenizes text and records start tags, comments and
// tokenizer-level parse errors in document order.
//
// The tokenizer alone cannot tell foreign content from HTML, so the scan
// keeps its own stack of open elements and drives AllowCDATA and
// NextIsNotRawText the way the x/net/html tree builder does. fragment
// disables the foreign-content breakout, matching html.ParseFragment.
func scanTokens(text string, fragment bool) *tokenScan {
	s := &tokenScan{tags: make(map[string][]*startTag)}
	z := html.NewTokenizer(strings.NewReader(text))

	var open openElements
	offset := 0
	for {
		z.AllowCDATA(open.top().namespace != "")
		tt := z.Next()
		// Copy before Token(), which unescapes attribute values in place.
		raw := string(z.Raw())
		start := offset
		offset += len(raw)
		span := Span{Start: start, End: offset}

		switch tt {
		case html.ErrorToken:
			if strings.HasPrefix(raw, "<") {
				s.addError(CodeEOFInTag, span)
			}
			return s

		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			loc := s.scanStartTag(raw, start)
			s.tags[tok.Data] = append(s.tags[tok.Data], &startTag{name: tok.Data, location: loc})

			ns := open.startTag(tok, fragment)
			if ns != "" {
				// Foreign elements such as an SVG <title> never switch the
				// tokenizer into raw text.
				z.NextIsNotRawText()
			}
			selfClosing := tt == html.SelfClosingTagToken
			if selfClosing && ns == "" && !voidElements[tok.Data] {
				s.addError(CodeNonVoidElementWithTrailingSolidus, span)
			}
			if (ns != "" && !selfClosing) || (ns == "" && !voidElements[tok.Data]) {
				open.push(tok, ns)
			}

		case html.EndTagToken:
			tok := z.Token()
			open.endTag(tok.Data)
			if endTagHasAttributes(raw) {
				s.addError(CodeEndTagWithAttributes, span)
			}
			if strings.HasSuffix(raw, "/>") {
				s.addError(CodeEndTagWithTrailingSolidus, span)
			}

		case html.CommentToken:
			s.scanComment(z.Token().Data, raw, span)
		}
	}
}

func (s *tokenScan) addError(code string, span Span) {
	s.errors = append(s.errors, ParseError{Code: code, Span: span})
}

// scanComment records a comment token and classifies malformed ones.
//
// The tokenizer reports bogus comments ("<!x>", "<?x>", "</ x>") and the
// empty "</>" as comment tokens; the tree builder inserts all of them as
// comment nodes, so every one is recorded for correlation.
func (s *tokenScan) scanComment(data, raw string, span Span) {
	s.comments = append(s.comments, &commentTok{data: data, span: span})

	switch {
	case raw == "<!-->" || raw == "<!--->":
		s.addError(CodeAbruptClosingOfEmptyComment, span)
	case strings.HasPrefix(raw, "<!--"):
		switch {
		case strings.HasSuffix(raw, "--!>"):
			s.addError(CodeIncorrectlyClosedComment, span)
		case !strings.HasSuffix(raw, "-->"):
			s.addError(CodeEOFInComment, span)
		}
	case strings.HasPrefix(raw, "<![CDATA["):
		s.addError(CodeCDATAInHTMLContent, span)
	case strings.HasPrefix(raw, "<!"):
		s.addError(CodeIncorrectlyOpenedComment, span)
	case strings.HasPrefix(raw, "<?"):
		s.addError(CodeUnexpectedQuestionMarkInsteadOfTagName, span)
	case raw == "</>":
		s.addError(CodeMissingEndTagName, span)
	case strings.HasPrefix(raw, "</"):
		s.addError(CodeInvalidFirstCharacterOfTagName, span)
	}
}

// =============================================================================
// ATTRIBUTE SCANNER
// =============================================================================

// rawAttr is one attribute found in the raw text of a start tag. Offsets
// are relative to the start of the tag.
type rawAttr struct {
	name  string
	start int
	end   int
}

// scanStartTag builds the location of a start tag and records
// attribute-level parse errors. base is the serialized offset of raw.
func (s *tokenScan) scanStartTag(raw string, base int) *TagLocation {
	loc := &TagLocation{
		Span:  Span{Start: base, End: base + len(raw)},
		Attrs: make(map[string]Span),
	}

	attrs := s.scanAttributes(raw, base)
	for _, a := range attrs {
		span := Span{Start: base + a.start, End: base + a.end}
		if _, dup := loc.Attrs[a.name]; dup {
			s.addError(CodeDuplicateAttribute, span)
			continue
		}
		loc.Attrs[a.name] = span
	}
	return loc
}

// scanAttributes walks the attribute list of a raw start tag following the
// WHATWG tokenizer states from "before attribute name" through "after
// attribute value (quoted)".
func (s *tokenScan) scanAttributes(raw string, base int) []rawAttr {
	n := len(raw)
	if strings.HasSuffix(raw, ">") {
		n--
	}

	i := 1
	for i < n && !isTagSpace(raw[i]) && raw[i] != '/' {
		i++
	}

	var attrs []rawAttr
	for {
		for i < n && isTagSpace(raw[i]) {
			i++
		}
		if i >= n {
			return attrs
		}

		if raw[i] == '/' {
			if i+1 < n {
				s.addError(CodeUnexpectedSolidusInTag, Span{Start: base + i, End: base + i + 1})
			}
			i++
			continue
		}

		nameStart := i
		if raw[i] == '=' {
			s.addError(CodeUnexpectedEqualsSignBeforeAttributeName, Span{Start: base + i, End: base + i + 1})
			i++
		}
		for i < n && !isTagSpace(raw[i]) && raw[i] != '/' && raw[i] != '=' {
			switch raw[i] {
			case '"', '\'', '<':
				s.addError(CodeUnexpectedCharacterInAttributeName, Span{Start: base + i, End: base + i + 1})
			}
			i++
		}
		attr := rawAttr{
			name:  strings.ToLower(raw[nameStart:i]),
			start: nameStart,
			end:   i,
		}

		j := i
		for j < n && isTagSpace(raw[j]) {
			j++
		}
		if j < n && raw[j] == '=' {
			j++
			for j < n && isTagSpace(raw[j]) {
				j++
			}
			attr.end, i = s.scanAttributeValue(raw, base, j, n)
		}
		attrs = append(attrs, attr)
	}
}

// scanAttributeValue scans the value starting at j and returns the end of
// the attribute and the position to resume scanning from.
func (s *tokenScan) scanAttributeValue(raw string, base, j, n int) (int, int) {
	if j >= n {
		s.addError(CodeMissingAttributeValue, Span{Start: base + j, End: base + j})
		return j, j
	}

	if q := raw[j]; q == '"' || q == '\'' {
		k := strings.IndexByte(raw[j+1:n], q)
		if k < 0 {
			return n, n
		}
		end := j + 1 + k + 1
		if end < n && !isTagSpace(raw[end]) && raw[end] != '/' {
			s.addError(CodeMissingWhitespaceBetweenAttributes, Span{Start: base + end, End: base + end + 1})
		}
		return end, end
	}

	k := j
	for k < n && !isTagSpace(raw[k]) {
		switch raw[k] {
		case '"', '\'', '<', '=', '`':
			s.addError(CodeUnexpectedCharacterInUnquotedAttrValue, Span{Start: base + k, End: base + k + 1})
		}
		k++
	}
	return k, k
}

// endTagHasAttributes reports whether an end tag carries anything after its
// name. The tokenizer does not keep end tag attributes.
func endTagHasAttributes(raw string) bool {
	rest := strings.TrimSuffix(strings.TrimPrefix(raw, "</"), ">")
	i := 0
	for i < len(rest) && !isTagSpace(rest[i]) && rest[i] != '/' {
		i++
	}
	return strings.Trim(rest[i:], " \t\n\r\f/") != ""
}

func isTagSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}
