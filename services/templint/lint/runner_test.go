// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package lint

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/templint/services/markup/extract"
)

// memoryCache is an in-process Cache for tests.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string]LintResult
	puts    int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string]LintResult)}
}

func (c *memoryCache) Get(_ context.Context, key string) (*LintResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return &r, true
}

func (c *memoryCache) Put(_ context.Context, key string, result *LintResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = *result
	c.puts++
	return nil
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestNewRunner_Defaults(t *testing.T) {
	runner, err := NewRunner()
	require.NoError(t, err)

	assert.Equal(t, []string{
		"attribute-value-entities",
		"binding-positions",
		"no-duplicate-attributes",
		"no-invalid-html",
		"no-value-attribute",
		"quoted-expressions",
	}, runner.Rules())
}

func TestNewRunner_InvalidSettings(t *testing.T) {
	_, err := NewRunner(WithSettings(Settings{"nope": {}}))
	assert.ErrorIs(t, err, ErrUnknownRule)

	_, err = NewRunner(WithExclude("[bad"))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRunner_DisabledRule(t *testing.T) {
	settings := DefaultSettings()
	settings["no-invalid-html"] = RuleSetting{Severity: SeverityOff}

	runner, err := NewRunner(WithSettings(settings))
	require.NoError(t, err)
	assert.NotContains(t, runner.Rules(), "no-invalid-html")

	result, err := runner.LintContent(context.Background(), "view.js", []byte("html`<div><p/></div>`"))
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.False(t, result.HasIssues())
}

func TestRunner_LintContent(t *testing.T) {
	src := "const a = html`<div><p/></div>`;\nconst b = html`<p title=\"a > b\"></p>`;\n"

	runner, err := NewRunner()
	require.NoError(t, err)

	result, err := runner.LintContent(context.Background(), "view.js", []byte(src))
	require.NoError(t, err)

	assert.False(t, result.Valid)
	assert.True(t, result.HasErrors())
	assert.True(t, result.HasWarnings())
	assert.Equal(t, 2, result.Templates)
	assert.Equal(t, "javascript", result.Language)
	assert.Equal(t, "view.js", result.FilePath)
	require.Len(t, result.Errors, 1)
	require.Len(t, result.Warnings, 1)

	assert.Equal(t, "view.js:1:21", result.Errors[0].Location())
	assert.Equal(t, 0, result.Errors[0].TemplateID)
	assert.Equal(t, 2, result.Warnings[0].Line)
	assert.Equal(t, 1, result.Warnings[0].TemplateID)
	assert.Equal(t, 1, result.AutoFixableCount())

	all := result.AllIssues()
	require.Len(t, all, 2)
	assert.Less(t, all[0].Offset, all[1].Offset)
}

func TestRunner_NoTemplates(t *testing.T) {
	runner, err := NewRunner()
	require.NoError(t, err)

	result, err := runner.LintContent(context.Background(), "plain.ts", []byte("export const x: number = 1;"))
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Zero(t, result.Templates)
	assert.NotNil(t, result.Errors)
	assert.NotNil(t, result.Warnings)
}

func TestRunner_Errors(t *testing.T) {
	runner, err := NewRunner(WithMaxFileSize(8))
	require.NoError(t, err)

	//nolint:staticcheck // nil context is the input under test
	_, err = runner.LintContent(nil, "a.js", nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = runner.LintContent(context.Background(), "a.css", []byte("a{}"))
	assert.ErrorIs(t, err, extract.ErrUnsupportedLanguage)

	_, err = runner.LintContent(context.Background(), "a.js", []byte("html`<p></p>`"))
	assert.ErrorIs(t, err, extract.ErrFileTooLarge)

	_, err = runner.LintFile(context.Background(), filepath.Join(t.TempDir(), "missing.js"))
	assert.True(t, errors.Is(err, os.ErrNotExist), "got %v", err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = runner.LintContent(ctx, "a.js", []byte("x"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunner_Cache(t *testing.T) {
	cache := newMemoryCache()
	runner, err := NewRunner(WithCache(cache))
	require.NoError(t, err)

	src := []byte("html`<div><p/></div>`")
	first, err := runner.LintContent(context.Background(), "view.js", src)
	require.NoError(t, err)
	assert.False(t, first.Cached)

	second, err := runner.LintContent(context.Background(), "view.js", src)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Errors, second.Errors)
	assert.Equal(t, 1, cache.puts)

	// Different content misses.
	_, err = runner.LintContent(context.Background(), "view.js", []byte("html`<p></p>`"))
	require.NoError(t, err)
	assert.Equal(t, 2, cache.puts)

	// Different settings miss.
	settings := DefaultSettings()
	settings["no-invalid-html"] = RuleSetting{Severity: SeverityWarning}
	other, err := NewRunner(WithCache(cache), WithSettings(settings))
	require.NoError(t, err)
	third, err := other.LintContent(context.Background(), "view.js", src)
	require.NoError(t, err)
	assert.False(t, third.Cached)
	assert.Len(t, third.Warnings, 1)
}

func TestRunner_CacheKeyIncludesVersion(t *testing.T) {
	cache := newMemoryCache()
	src := []byte("html`<div><p/></div>`")

	older, err := NewRunner(WithCache(cache), WithVersion("v1.0.0"))
	require.NoError(t, err)
	_, err = older.LintContent(context.Background(), "view.js", src)
	require.NoError(t, err)

	same, err := NewRunner(WithCache(cache), WithVersion("v1.0.0"))
	require.NoError(t, err)
	hit, err := same.LintContent(context.Background(), "view.js", src)
	require.NoError(t, err)
	assert.True(t, hit.Cached)

	newer, err := NewRunner(WithCache(cache), WithVersion("v1.1.0"))
	require.NoError(t, err)
	miss, err := newer.LintContent(context.Background(), "view.js", src)
	require.NoError(t, err)
	assert.False(t, miss.Cached)
	assert.Equal(t, 2, cache.puts)
}

func TestBuildVersion_NotEmpty(t *testing.T) {
	assert.NotEmpty(t, buildVersion())
}

func TestRunner_Directory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.js"), "html`<div><p/></div>`")
	writeFile(t, filepath.Join(root, "sub", "b.ts"), "html`<p>${x}</p>`")
	writeFile(t, filepath.Join(root, "sub", "c.min.js"), "html`<p/>`")
	writeFile(t, filepath.Join(root, "node_modules", "dep", "d.js"), "html`<p/>`")
	writeFile(t, filepath.Join(root, "dist", "e.js"), "html`<p/>`")
	writeFile(t, filepath.Join(root, "README.md"), "# readme")

	runner, err := NewRunner(WithExclude("*.min.js", "dist/**"), WithWorkers(2))
	require.NoError(t, err)

	paths, err := runner.Collect(root)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "a.js"),
		filepath.Join(root, "sub", "b.ts"),
	}, paths)

	results, err := runner.LintDirectory(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, paths[0], results[0].FilePath)
	assert.False(t, results[0].Valid)
	assert.True(t, results[1].Valid)

	summary := Summarize(results)
	assert.Equal(t, Summary{Files: 2, Templates: 2, Errors: 1}, summary)
}

func TestRunner_CollectSingleFile(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "view.tsx")
	writeFile(t, path, "html`<p></p>`")
	writeFile(t, filepath.Join(root, "notes.txt"), "")

	runner, err := NewRunner()
	require.NoError(t, err)

	paths, err := runner.Collect(path)
	require.NoError(t, err)
	assert.Equal(t, []string{path}, paths)

	paths, err = runner.Collect(filepath.Join(root, "notes.txt"))
	require.NoError(t, err)
	assert.Empty(t, paths)

	_, err = runner.Collect(filepath.Join(root, "missing"))
	assert.Error(t, err)
}

func TestRunner_LintFilesStopsOnFailure(t *testing.T) {
	root := t.TempDir()
	good := filepath.Join(root, "good.js")
	writeFile(t, good, "html`<p></p>`")

	runner, err := NewRunner()
	require.NoError(t, err)

	results, err := runner.LintFiles(context.Background(), []string{good})
	require.NoError(t, err)
	require.Len(t, results, 1)

	_, err = runner.LintFiles(context.Background(), []string{good, filepath.Join(root, "gone.js")})
	assert.Error(t, err)
}

func TestRunner_Accepts(t *testing.T) {
	runner, err := NewRunner(WithExclude("*.min.js", "dist/**"))
	require.NoError(t, err)

	root := filepath.Join("repo")
	tests := []struct {
		path string
		want bool
	}{
		{"repo/src/app.ts", true},
		{"repo/src/app.min.js", false},
		{"repo/dist/bundle.js", false},
		{"repo/node_modules/lit/index.js", false},
		{"repo/styles.css", false},
		{"other/app.js", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, runner.Accepts(root, filepath.FromSlash(tt.path)))
		})
	}

	assert.True(t, runner.SkipDir(root, filepath.Join(root, ".git")))
	assert.True(t, runner.SkipDir(root, filepath.Join(root, "dist")))
	assert.False(t, runner.SkipDir(root, root))
	assert.False(t, runner.SkipDir(root, filepath.Join(root, "src")))
}
