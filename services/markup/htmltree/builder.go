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
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// documentPattern selects full-document parsing.
var documentPattern = regexp.MustCompile(`(?i)<html`)

// IsDocument reports whether text should be parsed as a full document.
//
// Description:
//
//	A case-insensitive "<html" anywhere in the text selects document mode.
//	The sniff is deliberately loose: a comment or attribute value that
//	contains "<html" also selects document mode.
func IsDocument(text string) bool {
	return documentPattern.MatchString(text)
}

// Parse builds an HTML tree from serialized template text.
//
// Description:
//
//	Selects document or fragment mode with IsDocument and delegates to
//	ParseDocument or ParseFragment. Never fails: malformed input yields a
//	best-effort tree plus parse errors.
//
// Inputs:
//
//	text - The serialized HTML, placeholders included.
//
// Outputs:
//
//	*Root - The tree root. Never nil.
//	[]ParseError - Structural violations sorted by start offset.
//
// Thread Safety:
//
//	Safe for concurrent use.
func Parse(text string) (*Root, []ParseError) {
	if IsDocument(text) {
		return ParseDocument(text)
	}
	return ParseFragment(text)
}

// ParseDocument parses text as a full HTML document with implicit html,
// head and body insertion.
func ParseDocument(text string) (*Root, []ParseError) {
	scan := scanTokens(text, false)
	root := &Root{Mode: ModeDocument}

	doc, err := html.Parse(strings.NewReader(text))
	if err != nil {
		slog.Warn("html document parse failed", slog.String("error", err.Error()))
		return root, sortErrors(scan.errors)
	}

	c := &converter{scan: scan}
	root.Children = c.convertChildren(doc, root)
	return root, sortErrors(scan.errors)
}

// ParseFragment parses text as a document fragment in a template context,
// so no implicit html, head or body elements are inserted.
func ParseFragment(text string) (*Root, []ParseError) {
	scan := scanTokens(text, true)
	root := &Root{Mode: ModeFragment}

	context := &html.Node{Type: html.ElementNode, Data: "template", DataAtom: atom.Template}
	nodes, err := html.ParseFragment(strings.NewReader(text), context)
	if err != nil {
		slog.Warn("html fragment parse failed", slog.String("error", err.Error()))
		return root, sortErrors(scan.errors)
	}

	c := &converter{scan: scan}
	for _, n := range nodes {
		if child := c.convert(n, root); child != nil {
			root.Children = append(root.Children, child)
		}
	}
	return root, sortErrors(scan.errors)
}

func sortErrors(errs []ParseError) []ParseError {
	sort.SliceStable(errs, func(i, j int) bool {
		return errs[i].Span.Start < errs[j].Span.Start
	})
	return errs
}

// =============================================================================
// CONVERSION
// =============================================================================

// converter turns x/net/html nodes into the tree union and attaches the
// locations recovered by the token scan.
//
// Elements are matched to start tags by name in document order. The tree
// builder may reorder content (foster parenting, the adoption agency
// algorithm) but it never reorders start tags of the same name relative to
// one another, except for reconstructed formatting elements, which carry no
// start tag of their own and are marked implied.
type converter struct {
	scan       *tokenScan
	commentPos int
}

func (c *converter) convertChildren(parent *html.Node, owner Node) []Node {
	var out []Node
	for n := parent.FirstChild; n != nil; n = n.NextSibling {
		if child := c.convert(n, owner); child != nil {
			out = append(out, child)
		}
	}
	return out
}

func (c *converter) convert(n *html.Node, parent Node) Node {
	switch n.Type {
	case html.ElementNode:
		el := &Element{
			Name:      n.Data,
			Namespace: n.Namespace,
			Attrs:     dedupeAttrs(n.Attr),
			parent:    parent,
		}
		el.Location = c.takeStartTag(strings.ToLower(n.Data), n.Attr)
		el.Implied = el.Location == nil
		el.Children = c.convertChildren(n, el)
		return el

	case html.TextNode:
		return &Text{Data: n.Data, parent: parent}

	case html.CommentNode:
		return &Comment{Data: n.Data, Span: c.takeComment(n.Data), parent: parent}

	default:
		// Doctype and raw nodes are not part of the tree.
		return nil
	}
}

// takeStartTag claims the first unused start tag with the given name.
//
// A reconstructed formatting element copies the attributes of its
// original, so it never has fewer attributes than its source tag. A tag
// with more attributes than the node therefore belongs to a later element.
// A node may have more attributes than its tag: the tree builder merges
// attributes of repeated html and body tags into the first one.
func (c *converter) takeStartTag(name string, attrs []html.Attribute) *TagLocation {
	for _, tag := range c.scan.tags[name] {
		if tag.used {
			continue
		}
		if len(tag.location.Attrs) > len(attrs) {
			continue
		}
		tag.used = true
		return tag.location
	}
	return nil
}

// takeComment claims the next unused comment with matching data.
func (c *converter) takeComment(data string) *Span {
	for i := c.commentPos; i < len(c.scan.comments); i++ {
		tok := c.scan.comments[i]
		if tok.used || tok.data != data {
			continue
		}
		tok.used = true
		if i == c.commentPos {
			c.commentPos++
		}
		span := tok.span
		return &span
	}
	return nil
}

// dedupeAttrs keeps the first occurrence of each attribute name.
func dedupeAttrs(attrs []html.Attribute) []Attribute {
	if len(attrs) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(attrs))
	out := make([]Attribute, 0, len(attrs))
	for _, a := range attrs {
		key := a.Namespace + ":" + a.Key
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, Attribute{Namespace: a.Namespace, Name: a.Key, Value: a.Val})
	}
	return out
}
