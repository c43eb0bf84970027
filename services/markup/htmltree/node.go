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

import "strings"

// =============================================================================
// SPANS
// =============================================================================

// Span is a half-open byte range [Start, End) in the serialized HTML string.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// =============================================================================
// NODES
// =============================================================================

// NodeKind enumerates the variants of Node.
type NodeKind int

const (
	// KindRoot is the document or document-fragment root.
	KindRoot NodeKind = iota

	// KindElement is an HTML, SVG or MathML element.
	KindElement

	// KindText is a text run.
	KindText

	// KindComment is an HTML comment.
	KindComment
)

// String returns the string representation of the kind.
func (k NodeKind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindElement:
		return "element"
	case KindText:
		return "text"
	case KindComment:
		return "comment"
	default:
		return "unknown"
	}
}

// Node is one of *Root, *Element, *Text or *Comment.
//
// The set of implementations is closed; switch on the concrete type.
type Node interface {
	Kind() NodeKind
	Parent() Node
	node()
}

// RootMode records which tree-construction mode built a root.
type RootMode int

const (
	// ModeFragment is a bare fragment with no implicit html/head/body.
	ModeFragment RootMode = iota

	// ModeDocument is a full document with HTML5 implicit element insertion.
	ModeDocument
)

// String returns the string representation of the mode.
func (m RootMode) String() string {
	if m == ModeDocument {
		return "document"
	}
	return "fragment"
}

// Root is the document or fragment root.
type Root struct {
	Mode     RootMode `json:"mode"`
	Children []Node   `json:"children"`
}

// Kind implements Node.
func (r *Root) Kind() NodeKind { return KindRoot }

// Parent implements Node. A root has no parent.
func (r *Root) Parent() Node { return nil }

func (r *Root) node() {}

// Attribute is a parsed attribute of an element.
//
// Value is the decoded value after entity unescaping.
type Attribute struct {
	Namespace string `json:"namespace,omitempty"`
	Name      string `json:"name"`
	Value     string `json:"value"`
}

// TagLocation holds serialized-space locations of an element's start tag.
type TagLocation struct {
	// Span covers the whole start tag, "<" through ">".
	Span Span `json:"span"`

	// Attrs maps the lowercased attribute name to the span of the full
	// attribute text, name through the closing quote of its value. Only the
	// first occurrence of a duplicated attribute is recorded.
	Attrs map[string]Span `json:"attrs,omitempty"`
}

// Element is an element node.
type Element struct {
	// Name is the tag name as produced by the tree builder (lowercase for
	// HTML, case-adjusted for SVG such as "foreignObject").
	Name string `json:"name"`

	// Namespace is "" for HTML, "svg" or "math" for foreign content.
	Namespace string `json:"namespace,omitempty"`

	Attrs    []Attribute `json:"attrs,omitempty"`
	Children []Node      `json:"children,omitempty"`

	// Location is nil for elements the tree builder inserted implicitly.
	Location *TagLocation `json:"location,omitempty"`

	// Implied is true when the element has no start tag in the source.
	Implied bool `json:"implied,omitempty"`

	parent Node
}

// Kind implements Node.
func (e *Element) Kind() NodeKind { return KindElement }

// Parent implements Node.
func (e *Element) Parent() Node { return e.parent }

func (e *Element) node() {}

// Attr returns the value of the named attribute. The lookup is
// case-insensitive.
func (e *Element) Attr(name string) (string, bool) {
	name = strings.ToLower(name)
	for _, a := range e.Attrs {
		if strings.ToLower(a.Name) == name {
			return a.Value, true
		}
	}
	return "", false
}

// HasAttr reports whether the element carries the named attribute.
func (e *Element) HasAttr(name string) bool {
	_, ok := e.Attr(name)
	return ok
}

// AttrSpan returns the serialized-space span of the named attribute.
func (e *Element) AttrSpan(name string) (Span, bool) {
	if e.Location == nil {
		return Span{}, false
	}
	span, ok := e.Location.Attrs[strings.ToLower(name)]
	return span, ok
}

// Text is a text node.
type Text struct {
	Data string `json:"data"`

	parent Node
}

// Kind implements Node.
func (t *Text) Kind() NodeKind { return KindText }

// Parent implements Node.
func (t *Text) Parent() Node { return t.parent }

func (t *Text) node() {}

// Comment is a comment node.
type Comment struct {
	Data string `json:"data"`

	// Span covers "<!--" through "-->". Nil when it could not be matched.
	Span *Span `json:"span,omitempty"`

	parent Node
}

// Kind implements Node.
func (c *Comment) Kind() NodeKind { return KindComment }

// Parent implements Node.
func (c *Comment) Parent() Node { return c.parent }

func (c *Comment) node() {}

// Children returns the child nodes of n, or nil for leaf nodes.
func Children(n Node) []Node {
	switch v := n.(type) {
	case *Root:
		return v.Children
	case *Element:
		return v.Children
	default:
		return nil
	}
}
