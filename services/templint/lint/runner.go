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
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/templint/services/markup/analyzer"
	"github.com/AleutianAI/templint/services/markup/extract"
)

// =============================================================================
// CACHE
// =============================================================================

// Cache stores lint results across runs, keyed by content and settings.
//
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the result stored under key.
	Get(ctx context.Context, key string) (*LintResult, bool)

	// Put stores a result under key.
	Put(ctx context.Context, key string, result *LintResult) error
}

// =============================================================================
// RUNNER
// =============================================================================

// skippedDirs are never descended into by LintDirectory.
var skippedDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
}

// Runner lints files with the built-in rules.
//
// Description:
//
//	Extracts tagged templates from each file, analyzes every template once
//	per pass and runs the enabled rules over it. Files are linted
//	concurrently, bounded by the worker limit.
//
// Thread Safety: Safe for concurrent use.
type Runner struct {
	tags        []string
	maxFileSize int64
	settings    Settings
	rules       []activeRule
	extractor   *extract.Extractor
	cache       Cache
	workers     int
	exclude     []string
	version     string
}

// Option configures the Runner.
type Option func(*Runner)

// WithSettings sets per-rule severity and options.
func WithSettings(settings Settings) Option {
	return func(r *Runner) {
		r.settings = settings
	}
}

// WithTags sets the template tag names to lint.
func WithTags(tags ...string) Option {
	return func(r *Runner) {
		r.tags = tags
	}
}

// WithMaxFileSize sets the largest file that will be linted.
func WithMaxFileSize(bytes int64) Option {
	return func(r *Runner) {
		r.maxFileSize = bytes
	}
}

// WithCache enables the result cache.
func WithCache(cache Cache) Option {
	return func(r *Runner) {
		r.cache = cache
	}
}

// WithWorkers bounds concurrent file linting. Values below 1 use GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(r *Runner) {
		r.workers = n
	}
}

// WithExclude sets glob patterns for paths LintDirectory skips. Patterns
// match either the base name or the slash-separated path relative to the
// directory root.
func WithExclude(patterns ...string) Option {
	return func(r *Runner) {
		r.exclude = patterns
	}
}

// WithVersion sets the tool version mixed into cache keys, so results
// cached by another release are not reused. Defaults to the module
// version or VCS revision recorded in the build info.
func WithVersion(version string) Option {
	return func(r *Runner) {
		r.version = version
	}
}

// NewRunner creates a Runner.
//
// Description:
//
//	Applies options, validates the rule settings and builds the template
//	extractor.
//
// Inputs:
//
//	opts - Optional configuration options.
//
// Outputs:
//
//	*Runner - The configured runner.
//	error - ErrUnknownRule or ErrInvalidOption from the settings.
func NewRunner(opts ...Option) (*Runner, error) {
	r := &Runner{
		tags:     extract.DefaultTags,
		settings: DefaultSettings(),
	}
	for _, opt := range opts {
		opt(r)
	}

	if err := r.settings.Validate(); err != nil {
		return nil, err
	}
	for _, pattern := range r.exclude {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return nil, fmt.Errorf("%w: exclude pattern %q: %v", ErrInvalidInput, pattern, err)
		}
	}
	if r.workers < 1 {
		r.workers = runtime.GOMAXPROCS(0)
	}
	if r.version == "" {
		r.version = buildVersion()
	}

	extractOpts := []extract.Option{extract.WithTags(r.tags...)}
	if r.maxFileSize > 0 {
		extractOpts = append(extractOpts, extract.WithMaxFileSize(r.maxFileSize))
	}
	r.extractor = extract.New(extractOpts...)
	r.rules = resolveRules(r.settings)

	return r, nil
}

// Rules returns the names of the enabled rules.
func (r *Runner) Rules() []string {
	names := make([]string, len(r.rules))
	for i, ar := range r.rules {
		names[i] = ar.rule.Name()
	}
	return names
}

// LintFile reads and lints one file.
//
// Inputs:
//
//	ctx - Context for cancellation.
//	path - Path to a JavaScript or TypeScript file.
//
// Outputs:
//
//	*LintResult - Issues found in the file.
//	error - Read failures or extraction errors.
//
// Thread Safety: Safe for concurrent use.
func (r *Runner) LintFile(ctx context.Context, path string) (*LintResult, error) {
	if ctx == nil {
		return nil, fmt.Errorf("%w: ctx must not be nil", ErrInvalidInput)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return r.LintContent(ctx, path, content)
}

// LintContent lints in-memory content as if it were the file at path.
//
// Description:
//
//	Extracts templates, then for each template obtains the analyzer from
//	the file's pass and runs every enabled rule. Results are served from
//	and written to the cache when one is configured.
//
// Inputs:
//
//	ctx - Context for cancellation. Checked between templates.
//	path - File path; selects the grammar and is reported in issues.
//	content - File content.
//
// Outputs:
//
//	*LintResult - Issues grouped by severity.
//	error - Extraction errors (*extract.ExtractError) or context errors.
//
// Thread Safety: Safe for concurrent use.
func (r *Runner) LintContent(ctx context.Context, path string, content []byte) (*LintResult, error) {
	if ctx == nil {
		return nil, fmt.Errorf("%w: ctx must not be nil", ErrInvalidInput)
	}

	ctx, span := startLintSpan(ctx, path)
	defer span.End()
	start := time.Now()

	var key string
	if r.cache != nil {
		key = r.cacheKey(path, content)
		if cached, ok := r.cache.Get(ctx, key); ok {
			cached.Cached = true
			cached.FilePath = path
			setLintSpanResult(span, len(cached.Errors), len(cached.Warnings), true)
			recordLintMetrics(ctx, cached.Language, time.Since(start), len(cached.Errors), len(cached.Warnings), true)
			return cached, nil
		}
	}

	res, err := r.extractor.Extract(ctx, path, content)
	if err != nil {
		recordLintFailure(ctx)
		return nil, err
	}

	pass, err := analyzer.NewPass(res.File)
	if err != nil {
		return nil, err
	}

	var issues []LintIssue
	for _, t := range res.Templates {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("lint %s canceled: %w", path, err)
		}
		for _, ar := range r.rules {
			a, err := pass.Analyzer(ctx, t)
			if err != nil {
				return nil, NewRuleError(ar.rule.Name(), path, err)
			}
			rctx := &RuleContext{
				Context:  ctx,
				File:     res.File,
				Template: t,
				Analyzer: a,
				rule:     ar.rule.Name(),
				severity: ar.severity,
				options:  ar.options,
			}
			ar.rule.Check(rctx)
			issues = append(issues, rctx.issues...)
		}
	}

	result := newResult(path, issues)
	result.Language = res.Language
	result.Templates = len(res.Templates)
	result.Duration = time.Since(start)

	entries, hits := pass.Stats()
	slog.Debug("Lint completed",
		slog.String("file", path),
		slog.String("pass_id", pass.ID()),
		slog.Int("templates", result.Templates),
		slog.Int("analyzers", entries),
		slog.Int("analyzer_hits", hits),
		slog.Int("errors", len(result.Errors)),
		slog.Int("warnings", len(result.Warnings)),
		slog.Duration("duration", result.Duration),
	)

	if r.cache != nil {
		if err := r.cache.Put(ctx, key, result); err != nil {
			slog.Warn("Failed to cache lint result",
				slog.String("file", path),
				slog.String("error", err.Error()),
			)
		}
	}

	setLintSpanResult(span, len(result.Errors), len(result.Warnings), false)
	recordLintMetrics(ctx, result.Language, result.Duration, len(result.Errors), len(result.Warnings), false)
	return result, nil
}

// LintFiles lints several files concurrently.
//
// Description:
//
//	Runs LintFile for each path with at most the configured number of
//	workers. The first failure cancels the remaining files.
//
// Outputs:
//
//	[]*LintResult - One result per path, in input order.
//	error - The first failure.
//
// Thread Safety: Safe for concurrent use.
func (r *Runner) LintFiles(ctx context.Context, paths []string) ([]*LintResult, error) {
	if ctx == nil {
		return nil, fmt.Errorf("%w: ctx must not be nil", ErrInvalidInput)
	}

	results := make([]*LintResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for i, path := range paths {
		g.Go(func() error {
			result, err := r.LintFile(gctx, path)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// LintDirectory lints every supported file under root.
//
// Description:
//
//	Walks root, skipping .git, node_modules and excluded paths, and lints
//	files whose extension has a grammar.
//
// Outputs:
//
//	[]*LintResult - Results sorted by file path.
//	error - Walk or lint failures.
func (r *Runner) LintDirectory(ctx context.Context, root string) ([]*LintResult, error) {
	paths, err := r.Collect(root)
	if err != nil {
		return nil, err
	}
	return r.LintFiles(ctx, paths)
}

// Collect returns the lintable files under root in lexical order. A root
// that is a file is returned as is when it is supported.
func (r *Runner) Collect(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", root, err)
	}
	if !info.IsDir() {
		if extract.Supported(root) {
			return []string{root}, nil
		}
		return nil, nil
	}

	var paths []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		if d.IsDir() {
			if skippedDirs[d.Name()] || r.excluded(root, path) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !extract.Supported(path) || r.excluded(root, path) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	sort.Strings(paths)
	return paths, nil
}

// Accepts reports whether LintDirectory(root) would lint path. The file
// need not exist.
func (r *Runner) Accepts(root, path string) bool {
	if !extract.Supported(path) || r.excluded(root, path) {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return false
	}
	for _, part := range strings.Split(filepath.ToSlash(filepath.Dir(rel)), "/") {
		if skippedDirs[part] {
			return false
		}
	}
	return true
}

// SkipDir reports whether LintDirectory(root) would skip the directory dir.
func (r *Runner) SkipDir(root, dir string) bool {
	return skippedDirs[filepath.Base(dir)] || (dir != root && r.excluded(root, dir))
}

// excluded reports whether path matches an exclude pattern.
func (r *Runner) excluded(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)
	base := filepath.Base(path)
	for _, pattern := range r.exclude {
		if ok, _ := filepath.Match(pattern, base); ok {
			return true
		}
		if ok, _ := filepath.Match(pattern, rel); ok {
			return true
		}
		if strings.HasSuffix(pattern, "/**") && strings.HasPrefix(rel+"/", strings.TrimSuffix(pattern, "**")) {
			return true
		}
	}
	return false
}

// cacheKey hashes everything that can change a result.
func (r *Runner) cacheKey(path string, content []byte) string {
	h := sha256.New()
	h.Write([]byte(path))
	h.Write([]byte{0})
	h.Write(content)
	h.Write([]byte{0})
	h.Write([]byte(strings.Join(r.tags, ",")))
	h.Write([]byte{0})
	h.Write([]byte(r.settings.Fingerprint()))
	h.Write([]byte{0})
	h.Write([]byte(r.version))
	return hex.EncodeToString(h.Sum(nil))
}

// buildVersion identifies the running binary: the module version when
// built from a tagged module, else the VCS revision.
func buildVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	if v := info.Main.Version; v != "" && v != "(devel)" {
		return v
	}
	var revision, modified string
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			if setting.Value == "true" {
				modified = "+dirty"
			}
		}
	}
	if revision == "" {
		return "devel"
	}
	return revision + modified
}
