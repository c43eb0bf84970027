// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package source

import (
	"errors"
	"testing"

	"github.com/AleutianAI/templint/services/markup/template"
)

func TestFile_PositionAt(t *testing.T) {
	f := NewFile("a.js", []byte("ab\ncd\n\nx"))

	tests := []struct {
		offset int
		want   template.Position
	}{
		{0, template.Position{Line: 1, Column: 0}},
		{2, template.Position{Line: 1, Column: 2}},
		{3, template.Position{Line: 2, Column: 0}},
		{6, template.Position{Line: 3, Column: 0}},
		{7, template.Position{Line: 4, Column: 0}},
		{8, template.Position{Line: 4, Column: 1}},
	}

	for _, tt := range tests {
		got, err := f.PositionAt(tt.offset)
		if err != nil {
			t.Fatalf("PositionAt(%d) error: %v", tt.offset, err)
		}
		if got != tt.want {
			t.Errorf("PositionAt(%d) = %v, want %v", tt.offset, got, tt.want)
		}

		back, err := f.OffsetAt(got)
		if err != nil {
			t.Fatalf("OffsetAt(%v) error: %v", got, err)
		}
		if back != tt.offset {
			t.Errorf("OffsetAt(%v) = %d, want %d", got, back, tt.offset)
		}
	}
}

func TestFile_OutOfRange(t *testing.T) {
	f := NewFile("a.js", []byte("ab\ncd"))

	if _, err := f.PositionAt(-1); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("PositionAt(-1) error = %v, want ErrOutOfRange", err)
	}
	if _, err := f.PositionAt(6); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("PositionAt(6) error = %v, want ErrOutOfRange", err)
	}
	if _, err := f.OffsetAt(template.Position{Line: 1, Column: 3}); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("OffsetAt past line end error = %v, want ErrOutOfRange", err)
	}
	if _, err := f.OffsetAt(template.Position{Line: 3}); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("OffsetAt(line 3) error = %v, want ErrOutOfRange", err)
	}
	if _, err := f.Slice(3, 2); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Slice(3, 2) error = %v, want ErrOutOfRange", err)
	}
}

func TestFile_Slice(t *testing.T) {
	f := NewFile("a.js", []byte("hello world"))

	got, err := f.Slice(6, 11)
	if err != nil {
		t.Fatalf("Slice error: %v", err)
	}
	if got != "world" {
		t.Errorf("Slice = %q, want world", got)
	}
	if f.LineCount() != 1 || f.Len() != 11 || f.Path() != "a.js" {
		t.Errorf("unexpected file metadata: lines=%d len=%d path=%q", f.LineCount(), f.Len(), f.Path())
	}
}
