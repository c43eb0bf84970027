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

import "fmt"

// Parse error codes, named after the WHATWG HTML parse errors.
const (
	CodeAbruptClosingOfEmptyComment             = "abrupt-closing-of-empty-comment"
	CodeCDATAInHTMLContent                      = "cdata-in-html-content"
	CodeDuplicateAttribute                      = "duplicate-attribute"
	CodeEndTagWithAttributes                    = "end-tag-with-attributes"
	CodeEndTagWithTrailingSolidus               = "end-tag-with-trailing-solidus"
	CodeEOFInComment                            = "eof-in-comment"
	CodeEOFInTag                                = "eof-in-tag"
	CodeIncorrectlyClosedComment                = "incorrectly-closed-comment"
	CodeIncorrectlyOpenedComment                = "incorrectly-opened-comment"
	CodeInvalidFirstCharacterOfTagName          = "invalid-first-character-of-tag-name"
	CodeMissingAttributeValue                   = "missing-attribute-value"
	CodeMissingEndTagName                       = "missing-end-tag-name"
	CodeMissingWhitespaceBetweenAttributes      = "missing-whitespace-between-attributes"
	CodeNonVoidElementWithTrailingSolidus       = "non-void-html-element-start-tag-with-trailing-solidus"
	CodeUnexpectedCharacterInAttributeName      = "unexpected-character-in-attribute-name"
	CodeUnexpectedCharacterInUnquotedAttrValue  = "unexpected-character-in-unquoted-attribute-value"
	CodeUnexpectedEqualsSignBeforeAttributeName = "unexpected-equals-sign-before-attribute-name"
	CodeUnexpectedQuestionMarkInsteadOfTagName  = "unexpected-question-mark-instead-of-tag-name"
	CodeUnexpectedSolidusInTag                  = "unexpected-solidus-in-tag"
)

var codeMessages = map[string]string{
	CodeAbruptClosingOfEmptyComment:             "empty comment closed abruptly",
	CodeCDATAInHTMLContent:                      "CDATA section outside of foreign content",
	CodeDuplicateAttribute:                      "duplicate attribute",
	CodeEndTagWithAttributes:                    "end tag with attributes",
	CodeEndTagWithTrailingSolidus:               "end tag with trailing solidus",
	CodeEOFInComment:                            "unexpected end of input in comment",
	CodeEOFInTag:                                "unexpected end of input in tag",
	CodeIncorrectlyClosedComment:                "comment closed with --!>",
	CodeIncorrectlyOpenedComment:                "incorrectly opened comment",
	CodeInvalidFirstCharacterOfTagName:          "invalid first character of tag name",
	CodeMissingAttributeValue:                   "missing attribute value",
	CodeMissingEndTagName:                       "missing end tag name",
	CodeMissingWhitespaceBetweenAttributes:      "missing whitespace between attributes",
	CodeNonVoidElementWithTrailingSolidus:       "self-closing syntax on a non-void element",
	CodeUnexpectedCharacterInAttributeName:      "unexpected character in attribute name",
	CodeUnexpectedCharacterInUnquotedAttrValue:  "unexpected character in unquoted attribute value",
	CodeUnexpectedEqualsSignBeforeAttributeName: "unexpected equals sign before attribute name",
	CodeUnexpectedQuestionMarkInsteadOfTagName:  "unexpected question mark instead of tag name",
	CodeUnexpectedSolidusInTag:                  "unexpected solidus in tag",
}

// ParseError is a structural HTML violation found while parsing.
//
// Parse errors are values, never returned as Go errors. There is no
// severity; consumers decide what to report.
type ParseError struct {
	// Code is one of the Code* constants.
	Code string `json:"code"`

	// Span is the offending range in serialized coordinates.
	Span Span `json:"span"`
}

// Message returns a human-readable description of the error code.
func (e ParseError) Message() string {
	if msg, ok := codeMessages[e.Code]; ok {
		return msg
	}
	return e.Code
}

// String returns "code@start-end".
func (e ParseError) String() string {
	return fmt.Sprintf("%s@%d-%d", e.Code, e.Span.Start, e.Span.End)
}
