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

// openElement is an element left open by the token scan.
type openElement struct {
	name      string
	namespace string

	// integration marks HTML integration points (SVG desc, foreignObject
	// and title, MathML annotation-xml with an HTML encoding).
	integration bool

	// mathText marks MathML text integration points.
	mathText bool

	// annotation marks MathML annotation-xml, which admits a nested svg.
	annotation bool
}

// openElements approximates the tree builder's stack of open elements,
// closely enough to know when the tokenizer is inside foreign content.
type openElements []openElement

// breakoutTags end foreign content when they start inside it.
var breakoutTags = map[string]bool{
	"b": true, "big": true, "blockquote": true, "body": true, "br": true,
	"center": true, "code": true, "dd": true, "div": true, "dl": true,
	"dt": true, "em": true, "embed": true, "h1": true, "h2": true,
	"h3": true, "h4": true, "h5": true, "h6": true, "head": true,
	"hr": true, "i": true, "img": true, "li": true, "listing": true,
	"menu": true, "meta": true, "nobr": true, "ol": true, "p": true,
	"pre": true, "ruby": true, "s": true, "small": true, "span": true,
	"strong": true, "strike": true, "sub": true, "sup": true, "table": true,
	"tt": true, "u": true, "ul": true, "var": true,
}

func (o openElements) top() openElement {
	if len(o) == 0 {
		return openElement{}
	}
	return o[len(o)-1]
}

// startTag returns the namespace of the element opened by tok, popping
// foreign elements first when tok breaks out of foreign content.
func (o *openElements) startTag(tok html.Token, fragment bool) string {
	if o.inForeignContent(tok.Data) {
		if fragment || !breaksOut(tok) {
			return o.top().namespace
		}
		o.popForeign()
	}
	switch tok.Data {
	case "svg", "math":
		return tok.Data
	}
	return ""
}

// inForeignContent reports whether a start tag named name is processed
// by the foreign content rules.
func (o openElements) inForeignContent(name string) bool {
	top := o.top()
	switch {
	case top.namespace == "":
		return false
	case top.mathText && name != "mglyph" && name != "malignmark":
		return false
	case top.annotation && name == "svg":
		return false
	case top.integration:
		return false
	}
	return true
}

func (o *openElements) popForeign() {
	stack := *o
	for i := len(stack) - 1; i >= 0; i-- {
		e := stack[i]
		if e.namespace == "" || e.integration || e.mathText {
			*o = stack[:i+1]
			return
		}
	}
	*o = stack[:0]
}

func (o *openElements) push(tok html.Token, ns string) {
	e := openElement{name: tok.Data, namespace: ns}
	switch ns {
	case "svg":
		switch tok.Data {
		case "desc", "foreignobject", "title":
			e.integration = true
		}
	case "math":
		switch tok.Data {
		case "mi", "mo", "mn", "ms", "mtext":
			e.mathText = true
		case "annotation-xml":
			e.annotation = true
			for _, a := range tok.Attr {
				if a.Key == "encoding" &&
					(strings.EqualFold(a.Val, "text/html") || strings.EqualFold(a.Val, "application/xhtml+xml")) {
					e.integration = true
				}
			}
		}
	}
	*o = append(*o, e)
}

// endTag closes the innermost open element named name, if any.
func (o *openElements) endTag(name string) {
	stack := *o
	for i := len(stack) - 1; i >= 0; i-- {
		if strings.EqualFold(stack[i].name, name) {
			*o = stack[:i]
			return
		}
	}
}

func breaksOut(tok html.Token) bool {
	if breakoutTags[tok.Data] {
		return true
	}
	if tok.Data == "font" {
		for _, a := range tok.Attr {
			switch a.Key {
			case "color", "face", "size":
				return true
			}
		}
	}
	return false
}
