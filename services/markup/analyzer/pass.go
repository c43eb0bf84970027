// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package analyzer

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/AleutianAI/templint/services/markup/template"
)

// Pass memoizes analyzers for the templates of one source file during one
// analysis pass.
//
// Description:
//
//	Several checks analyzing the same template share one Analyzer. Entries
//	are keyed by template ID and never invalidated; the whole Pass is
//	dropped when the pass ends.
//
// Thread Safety:
//
//	Safe for concurrent use.
type Pass struct {
	id  string
	src Source

	mu      sync.Mutex
	entries map[template.ID]*Analyzer
	hits    int
}

// NewPass creates an empty cache for templates extracted from src.
func NewPass(src Source) (*Pass, error) {
	if src == nil {
		return nil, ErrNilSource
	}
	return &Pass{
		id:      uuid.NewString(),
		src:     src,
		entries: make(map[template.ID]*Analyzer),
	}, nil
}

// ID returns the unique identifier of this pass, used to correlate logs.
func (p *Pass) ID() string {
	return p.id
}

// Analyzer returns the cached analyzer for t, building it on first use.
//
// Inputs:
//
//	ctx - Context for tracing.
//	t - A template extracted from this pass's source.
//
// Outputs:
//
//	*Analyzer - The shared analyzer for t.
//	error - ErrNilTemplate.
func (p *Pass) Analyzer(ctx context.Context, t *template.Template) (*Analyzer, error) {
	if t == nil {
		return nil, ErrNilTemplate
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if a, ok := p.entries[t.ID]; ok {
		p.hits++
		return a, nil
	}

	a, err := New(ctx, t, p.src)
	if err != nil {
		return nil, err
	}
	p.entries[t.ID] = a
	return a, nil
}

// Stats returns the number of cached analyzers and cache hits so far.
func (p *Pass) Stats() (entries, hits int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries), p.hits
}
