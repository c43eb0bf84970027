// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package source holds source files and converts byte offsets to
// line/column positions.
package source

import (
	"errors"
	"fmt"
	"sort"

	"github.com/AleutianAI/templint/services/markup/template"
)

// ErrOutOfRange indicates an offset or position outside the file.
var ErrOutOfRange = errors.New("position out of range")

// File is an in-memory source file with a line index.
//
// Thread Safety:
//
//	Immutable after NewFile; safe for concurrent use.
type File struct {
	path    string
	content string

	// lineStarts[i] is the byte offset of the first byte of line i+1.
	lineStarts []int
}

// NewFile indexes content. path is informational.
func NewFile(path string, content []byte) *File {
	f := &File{path: path, content: string(content)}
	f.lineStarts = append(f.lineStarts, 0)
	for i := 0; i < len(f.content); i++ {
		if f.content[i] == '\n' {
			f.lineStarts = append(f.lineStarts, i+1)
		}
	}
	return f
}

// Path returns the file path.
func (f *File) Path() string {
	return f.path
}

// Content returns the file content.
func (f *File) Content() string {
	return f.content
}

// Len returns the content length in bytes.
func (f *File) Len() int {
	return len(f.content)
}

// LineCount returns the number of lines.
func (f *File) LineCount() int {
	return len(f.lineStarts)
}

// PositionAt converts a byte offset to a 1-based line and 0-based column.
// The offset equal to Len() is valid and addresses the end of the file.
func (f *File) PositionAt(offset int) (template.Position, error) {
	if offset < 0 || offset > len(f.content) {
		return template.Position{}, fmt.Errorf("%w: offset %d not in [0, %d]", ErrOutOfRange, offset, len(f.content))
	}
	line := sort.Search(len(f.lineStarts), func(i int) bool {
		return f.lineStarts[i] > offset
	}) - 1
	return template.Position{Line: line + 1, Column: offset - f.lineStarts[line]}, nil
}

// OffsetAt converts a position back to a byte offset.
func (f *File) OffsetAt(pos template.Position) (int, error) {
	if pos.Line < 1 || pos.Line > len(f.lineStarts) || pos.Column < 0 {
		return 0, fmt.Errorf("%w: line %d", ErrOutOfRange, pos.Line)
	}
	lineEnd := len(f.content)
	if pos.Line < len(f.lineStarts) {
		lineEnd = f.lineStarts[pos.Line] - 1
	}
	offset := f.lineStarts[pos.Line-1] + pos.Column
	if offset > lineEnd {
		return 0, fmt.Errorf("%w: column %d past end of line %d", ErrOutOfRange, pos.Column, pos.Line)
	}
	return offset, nil
}

// Slice returns the content in [start, end).
func (f *File) Slice(start, end int) (string, error) {
	if start < 0 || end > len(f.content) || start > end {
		return "", fmt.Errorf("%w: [%d, %d) of %d bytes", ErrOutOfRange, start, end, len(f.content))
	}
	return f.content[start:end], nil
}
