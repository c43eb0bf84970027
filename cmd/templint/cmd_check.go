// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/templint/services/templint/lint"
	"github.com/AleutianAI/templint/services/templint/report"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

type checkFlags struct {
	fix         bool
	diff        bool
	format      string
	quiet       bool
	noCache     bool
	maxWarnings int
}

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

func newCheckCmd(g *globalFlags) *cobra.Command {
	f := &checkFlags{}
	cmd := &cobra.Command{
		Use:   "check [path...]",
		Short: "Lint files and directories",
		Long: `Lint tagged templates in JavaScript and TypeScript files.

Directories are walked recursively; .git, node_modules and paths matching
the configured exclude patterns are skipped.

Examples:
  templint check
  templint check ./src ./components
  templint check --fix ./src
  templint check --diff ./src
  templint check --format json --quiet

Exit Codes:
  0 = No errors
  1 = Errors found, warnings above --max-warnings, or --diff produced output
  2 = Error (invalid config, unreadable path)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, g, f, args)
		},
	}

	cmd.Flags().BoolVar(&f.fix, "fix", false,
		"Apply automatic fixes to files in place")
	cmd.Flags().BoolVar(&f.diff, "diff", false,
		"Print fixes as a unified diff instead of writing files")
	cmd.Flags().StringVar(&f.format, "format", "text",
		"Output format: text or json")
	cmd.Flags().BoolVarP(&f.quiet, "quiet", "q", false,
		"Report errors only")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false,
		"Ignore the result cache for this run")
	cmd.Flags().IntVar(&f.maxWarnings, "max-warnings", -1,
		"Exit with status 1 when warnings exceed this number (-1 = unlimited)")
	cmd.MarkFlagsMutuallyExclusive("fix", "diff")
	return cmd
}

// =============================================================================
// COMMAND IMPLEMENTATION
// =============================================================================

func runCheck(cmd *cobra.Command, g *globalFlags, f *checkFlags, args []string) error {
	format, err := report.ParseFormat(f.format)
	if err != nil {
		return &exitError{code: ExitFailure, err: err}
	}

	a, err := g.newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	runner, err := a.newRunner(!f.noCache)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if len(args) == 0 {
		args = []string{"."}
	}

	files, err := collectPaths(runner, args)
	if err != nil {
		return &exitError{code: ExitFailure, err: err}
	}

	results, err := runner.LintFiles(ctx, files)
	if err != nil {
		return &exitError{code: ExitFailure, err: err}
	}

	if f.diff {
		changed, err := writeDiffs(g.stdout, results)
		if err != nil {
			return &exitError{code: ExitFailure, err: err}
		}
		if changed > 0 {
			return issuesFound()
		}
		return nil
	}

	if f.fix {
		results, err = applyFixes(ctx, runner, results)
		if err != nil {
			return &exitError{code: ExitFailure, err: err}
		}
	}

	opts := report.Options{
		Color: isStdout(g.stdout) && report.ColorEnabled(os.Stdout),
		Quiet: f.quiet,
	}
	if cwd, err := os.Getwd(); err == nil {
		opts.Root = cwd
	}
	if err := report.Write(g.stdout, format, results, opts); err != nil {
		return &exitError{code: ExitFailure, err: err}
	}

	summary := lint.Summarize(results)
	a.logger.Debug("Check completed",
		slog.Int("files", summary.Files),
		slog.Int("errors", summary.Errors),
		slog.Int("warnings", summary.Warnings),
		slog.Int("cached", summary.Cached),
	)

	if summary.Errors > 0 {
		return issuesFound()
	}
	if f.maxWarnings >= 0 && summary.Warnings > f.maxWarnings {
		return issuesFound()
	}
	return nil
}

// collectPaths expands each argument into lintable files, dropping
// duplicates while keeping argument order.
func collectPaths(runner *lint.Runner, args []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	for _, arg := range args {
		paths, err := runner.Collect(arg)
		if err != nil {
			return nil, err
		}
		for _, p := range paths {
			key := filepath.Clean(p)
			if seen[key] {
				continue
			}
			seen[key] = true
			files = append(files, p)
		}
	}
	return files, nil
}

// writeDiffs prints the fixes for every fixable file and returns how many
// files would change.
func writeDiffs(w io.Writer, results []*lint.LintResult) (int, error) {
	changed := 0
	for _, r := range results {
		if r == nil || r.AutoFixableCount() == 0 {
			continue
		}
		orig, err := os.ReadFile(r.FilePath)
		if err != nil {
			return changed, fmt.Errorf("reading %s: %w", r.FilePath, err)
		}
		fixed, _, err := lint.ApplyFixes(orig, r.AllIssues())
		if err != nil {
			return changed, fmt.Errorf("%s: %w", r.FilePath, err)
		}
		d, err := lint.UnifiedDiff(filepath.ToSlash(r.FilePath), orig, fixed)
		if err != nil {
			return changed, err
		}
		if d == "" {
			continue
		}
		changed++
		if _, err := io.WriteString(w, d); err != nil {
			return changed, err
		}
	}
	return changed, nil
}

// applyFixes rewrites fixable files and re-lints them so the report shows
// what is left.
func applyFixes(ctx context.Context, runner *lint.Runner, results []*lint.LintResult) ([]*lint.LintResult, error) {
	for i, r := range results {
		if r == nil || r.AutoFixableCount() == 0 {
			continue
		}
		info, err := os.Stat(r.FilePath)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", r.FilePath, err)
		}
		orig, err := os.ReadFile(r.FilePath)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", r.FilePath, err)
		}
		fixed, n, err := lint.ApplyFixes(orig, r.AllIssues())
		if err != nil {
			return nil, fmt.Errorf("%s: %w", r.FilePath, err)
		}
		if n == 0 {
			continue
		}
		if err := os.WriteFile(r.FilePath, fixed, info.Mode().Perm()); err != nil {
			return nil, fmt.Errorf("writing %s: %w", r.FilePath, err)
		}
		slog.Info("Applied fixes", slog.String("file", r.FilePath), slog.Int("fixes", n))

		relinted, err := runner.LintContent(ctx, r.FilePath, fixed)
		if err != nil {
			return nil, err
		}
		results[i] = relinted
	}
	return results, nil
}

// isStdout reports whether w is the process's standard output.
func isStdout(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && f == os.Stdout
}
