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

// Visitor holds optional callbacks for Walk. Nil callbacks are skipped.
//
// Enter and Exit fire for every node. The typed Enter* callbacks fire after
// Enter for nodes of their kind.
type Visitor struct {
	Enter        func(n Node)
	Exit         func(n Node)
	EnterRoot    func(r *Root)
	EnterElement func(e *Element)
	EnterText    func(t *Text)
	EnterComment func(c *Comment)
}

// Walk visits n and its descendants depth-first in document order.
//
// Description:
//
//	For each node: Enter, the typed enter callback, children (roots and
//	elements only), then Exit. The walk is a single recursive pass and
//	cannot be stopped early.
func Walk(n Node, v Visitor) {
	if n == nil {
		return
	}

	if v.Enter != nil {
		v.Enter(n)
	}

	switch node := n.(type) {
	case *Root:
		if v.EnterRoot != nil {
			v.EnterRoot(node)
		}
	case *Element:
		if v.EnterElement != nil {
			v.EnterElement(node)
		}
	case *Text:
		if v.EnterText != nil {
			v.EnterText(node)
		}
	case *Comment:
		if v.EnterComment != nil {
			v.EnterComment(node)
		}
	}

	for _, child := range Children(n) {
		Walk(child, v)
	}

	if v.Exit != nil {
		v.Exit(n)
	}
}

// Elements returns every element under n in document order.
func Elements(n Node) []*Element {
	var out []*Element
	Walk(n, Visitor{
		EnterElement: func(e *Element) {
			out = append(out, e)
		},
	})
	return out
}

// FindElement returns the first element under n named name, or nil.
func FindElement(n Node, name string) *Element {
	for _, el := range Elements(n) {
		if el.Name == name {
			return el
		}
	}
	return nil
}
