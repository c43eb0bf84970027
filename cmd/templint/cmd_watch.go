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
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/templint/services/templint/lint"
	"github.com/AleutianAI/templint/services/templint/report"
	"github.com/AleutianAI/templint/services/templint/telemetry"
	"github.com/AleutianAI/templint/services/templint/watch"
)

type watchFlags struct {
	metricsAddr string
	debounce    time.Duration
	format      string
}

func newWatchCmd(g *globalFlags) *cobra.Command {
	f := &watchFlags{}
	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Lint a directory and re-lint files as they change",
		Long: `Lint every file under a directory once, then watch for changes and
re-lint changed files until interrupted.

With --metrics-addr, Prometheus metrics are served at /metrics.

Examples:
  templint watch
  templint watch ./src --metrics-addr :9464`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, g, f, args)
		},
	}
	cmd.Flags().StringVar(&f.metricsAddr, "metrics-addr", "",
		"Serve Prometheus metrics on this address (e.g. :9464)")
	cmd.Flags().DurationVar(&f.debounce, "debounce", watch.DefaultOptions().Debounce,
		"Wait this long after the last change before linting")
	cmd.Flags().StringVar(&f.format, "format", "text",
		"Output format: text or json")
	return cmd
}

func runWatch(cmd *cobra.Command, g *globalFlags, f *watchFlags, args []string) error {
	format, err := report.ParseFormat(f.format)
	if err != nil {
		return &exitError{code: ExitFailure, err: err}
	}

	var opts []appOption
	if f.metricsAddr != "" {
		opts = append(opts, withMetricsExporter("prometheus"))
	}
	a, err := g.newApp(cmd, opts...)
	if err != nil {
		return err
	}
	defer a.close()

	runner, err := a.newRunner(true)
	if err != nil {
		return err
	}

	root := "."
	if len(args) > 0 {
		root = args[0]
	}

	ctx := cmd.Context()
	if f.metricsAddr != "" {
		stop, err := serveMetrics(ctx, f.metricsAddr)
		if err != nil {
			return &exitError{code: ExitFailure, err: err}
		}
		defer stop()
	}

	ropts := report.Options{Color: isStdout(g.stdout) && report.ColorEnabled(os.Stdout)}
	results, err := runner.LintDirectory(ctx, root)
	if err != nil {
		return &exitError{code: ExitFailure, err: err}
	}
	if err := report.Write(g.stdout, format, results, ropts); err != nil {
		return &exitError{code: ExitFailure, err: err}
	}

	handler := func(e watch.Event) {
		for _, path := range e.Removed {
			a.logger.Info("File removed", slog.String("file", path))
		}
		if e.Err != nil {
			a.logger.Error("Lint failed", slog.String("error", e.Err.Error()))
			return
		}
		if len(e.Results) == 0 {
			return
		}
		if err := report.Write(g.stdout, format, e.Results, ropts); err != nil {
			a.logger.Error("Report failed", slog.String("error", err.Error()))
		}
	}

	wopts := watch.DefaultOptions()
	wopts.Debounce = f.debounce
	wopts.Logger = a.logger.Slog()
	w, err := watch.New(root, runner, handler, &wopts)
	if err != nil {
		return &exitError{code: ExitFailure, err: err}
	}
	if err := w.Start(ctx); err != nil {
		return &exitError{code: ExitFailure, err: err}
	}
	defer w.Stop()

	<-ctx.Done()
	a.logger.Info("Stopping watcher")
	return nil
}

// serveMetrics starts an HTTP server for /metrics and returns a function
// that shuts it down.
func serveMetrics(ctx context.Context, addr string) (func(), error) {
	handler := telemetry.MetricsHandler()
	if handler == nil {
		return nil, fmt.Errorf("%w: prometheus exporter not initialized", lint.ErrInvalidInput)
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Metrics server failed", slog.String("error", err.Error()))
		}
	}()
	slog.Info("Serving metrics", slog.String("address", ln.Addr().String()))

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}, nil
}
