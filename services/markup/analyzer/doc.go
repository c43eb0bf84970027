// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package analyzer turns a tagged template into an HTML tree and maps
// locations in that tree back to the original source.
//
// # Pipeline
//
//	template -> Serialize -> htmltree.Parse -> Analyzer
//
// Every expression is replaced by a placeholder such as {{__Q:0__}} before
// parsing, so the tree builder only ever sees plain HTML. Locations reported
// by the tree builder are offsets into that serialized string; ResolveLocation
// translates them back through the length difference of every placeholder
// before the offset.
//
// # Usage
//
//	pass, _ := analyzer.NewPass(file)
//	a, _ := pass.Analyzer(ctx, tpl)
//	a.Traverse(htmltree.Visitor{
//	    EnterElement: func(el *htmltree.Element) {
//	        if loc := a.LocationForAttribute(el, "title"); loc != nil {
//	            fmt.Println(loc.Start)
//	        }
//	    },
//	})
//
// # Degradation
//
// ResolveLocation never fails. A location that cannot be computed precisely
// becomes the range of the enclosing expression, then of the whole template.
// It returns nil only when the template carries no location at all.
package analyzer
