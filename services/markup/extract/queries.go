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
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Tree-sitter node types shared by the JavaScript and TypeScript grammars.
const (
	nodeCallExpression       = "call_expression"
	nodeMemberExpression     = "member_expression"
	nodeIdentifier           = "identifier"
	nodeTemplateString       = "template_string"
	nodeTemplateSubstitution = "template_substitution"
)

// Tree-sitter field names.
const (
	fieldFunction  = "function"
	fieldArguments = "arguments"
	fieldProperty  = "property"
)

// languageFor returns the grammar for a file extension.
func languageFor(path string) (*sitter.Language, string, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".js", ".mjs", ".cjs", ".jsx":
		return javascript.GetLanguage(), "javascript", true
	case ".ts", ".mts", ".cts":
		return typescript.GetLanguage(), "typescript", true
	case ".tsx":
		return tsx.GetLanguage(), "tsx", true
	default:
		return nil, "", false
	}
}

// Extensions returns the file extensions the extractor understands.
func Extensions() []string {
	return []string{".js", ".mjs", ".cjs", ".jsx", ".ts", ".mts", ".cts", ".tsx"}
}

// Supported reports whether path has an extension the extractor understands.
func Supported(path string) bool {
	_, _, ok := languageFor(path)
	return ok
}
