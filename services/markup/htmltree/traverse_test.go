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
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestWalk_CallbackCounts(t *testing.T) {
	root, _ := Parse("<div></div><div></div>Text<!--c-->")

	var enter, exit, roots, elements, texts, comments int
	Walk(root, Visitor{
		Enter:        func(Node) { enter++ },
		Exit:         func(Node) { exit++ },
		EnterRoot:    func(*Root) { roots++ },
		EnterElement: func(*Element) { elements++ },
		EnterText:    func(*Text) { texts++ },
		EnterComment: func(*Comment) { comments++ },
	})

	if enter != 5 || exit != 5 {
		t.Errorf("enter/exit = %d/%d, want 5/5", enter, exit)
	}
	if roots != 1 {
		t.Errorf("roots = %d, want 1", roots)
	}
	if elements != 2 {
		t.Errorf("elements = %d, want 2", elements)
	}
	if texts != 1 {
		t.Errorf("texts = %d, want 1", texts)
	}
	if comments != 1 {
		t.Errorf("comments = %d, want 1", comments)
	}
}

func TestWalk_DocumentOrder(t *testing.T) {
	root, _ := Parse("<ul><li>a</li><li>b<em>c</em></li></ul><p></p>")

	var got []string
	Walk(root, Visitor{
		Enter: func(n Node) {
			switch v := n.(type) {
			case *Element:
				got = append(got, "<"+v.Name)
			case *Text:
				got = append(got, v.Data)
			}
		},
		Exit: func(n Node) {
			if el, ok := n.(*Element); ok {
				got = append(got, el.Name+">")
			}
		},
	})

	want := []string{
		"<ul", "<li", "a", "li>", "<li", "b", "<em", "c", "em>", "li>", "ul>",
		"<p", "p>",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("walk order mismatch (-want +got):\n%s", diff)
	}
}

func TestWalk_NilCallbacksAndNilNode(t *testing.T) {
	root, _ := Parse("<p>x</p>")

	Walk(root, Visitor{})
	Walk(nil, Visitor{Enter: func(Node) { t.Error("enter called for nil node") }})
}

func TestElements(t *testing.T) {
	root, _ := Parse("<div><span></span></div><img>")

	var names []string
	for _, el := range Elements(root) {
		names = append(names, el.Name)
	}
	if diff := cmp.Diff([]string{"div", "span", "img"}, names); diff != "" {
		t.Errorf("Elements mismatch (-want +got):\n%s", diff)
	}

	if FindElement(root, "span") == nil {
		t.Error("FindElement(span) = nil")
	}
	if FindElement(root, "table") != nil {
		t.Error("FindElement(table) != nil")
	}
}
