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

	"github.com/spf13/cobra"

	"github.com/AleutianAI/templint/pkg/logging"
	"github.com/AleutianAI/templint/services/templint/config"
	"github.com/AleutianAI/templint/services/templint/lint"
	"github.com/AleutianAI/templint/services/templint/store"
	"github.com/AleutianAI/templint/services/templint/telemetry"
)

// app holds the per-invocation state built from flags and config.
type app struct {
	cfg    *config.Config
	logger *logging.Logger
	flags  *globalFlags

	shutdownTelemetry func(context.Context) error
	cache             *store.Store
}

// appOption adjusts the loaded configuration before anything is started.
type appOption func(*config.Config)

// withMetricsExporter forces a metrics exporter regardless of config.
func withMetricsExporter(name string) appOption {
	return func(c *config.Config) {
		c.Telemetry.Metrics = name
	}
}

// newApp loads configuration and starts logging and telemetry.
//
// Description:
//
//	Configuration errors exit with ExitFailure. The caller must call close
//	when the command finishes.
func (g *globalFlags) newApp(cmd *cobra.Command, opts ...appOption) (*app, error) {
	cfg, err := config.LoadOrDefault(g.configPath)
	if err != nil {
		return nil, &exitError{code: ExitFailure, err: err}
	}
	if g.logLevel != "" {
		cfg.Logging.Level = g.logLevel
	}
	if g.logJSON {
		cfg.Logging.JSON = true
	}
	for _, opt := range opts {
		opt(cfg)
	}

	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, &exitError{code: ExitFailure, err: err}
	}
	logger := logging.New(logging.Config{
		Level:   level,
		LogDir:  cfg.Logging.Dir,
		Service: "templint",
		JSON:    cfg.Logging.JSON,
		Output:  g.stderr,
	})
	logger.SetDefault()

	tcfg := telemetry.DefaultConfig()
	tcfg.ServiceVersion = version
	tcfg.TraceExporter = cfg.Telemetry.Traces
	tcfg.MetricExporter = cfg.Telemetry.Metrics
	if cfg.Telemetry.OTLPEndpoint != "" {
		tcfg.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
	}
	tcfg.Writer = g.stderr

	shutdown, err := telemetry.Init(cmd.Context(), tcfg)
	if err != nil {
		_ = logger.Close()
		return nil, &exitError{code: ExitFailure, err: fmt.Errorf("init telemetry: %w", err)}
	}

	logger.Debug("Configuration loaded",
		slog.Any("tags", cfg.Tags),
		slog.String("traces", cfg.Telemetry.Traces),
		slog.String("metrics", cfg.Telemetry.Metrics),
		slog.Bool("cache", cfg.Cache.Enabled),
	)

	return &app{
		cfg:               cfg,
		logger:            logger,
		flags:             g,
		shutdownTelemetry: shutdown,
	}, nil
}

// openCache opens the result store when caching is enabled.
func (a *app) openCache() error {
	if !a.cfg.Cache.Enabled || a.cache != nil {
		return nil
	}
	scfg := store.DefaultConfig(a.cfg.Cache.Dir)
	if a.cfg.Logging.Level == "debug" {
		scfg.Logger = a.logger.Slog().With(slog.String("component", "store"))
	}
	s, err := store.Open(scfg)
	if err != nil {
		return &exitError{code: ExitFailure, err: err}
	}
	a.cache = s
	return nil
}

// newRunner builds a lint runner from the configuration.
func (a *app) newRunner(useCache bool) (*lint.Runner, error) {
	settings, err := a.cfg.RuleSettings()
	if err != nil {
		return nil, &exitError{code: ExitFailure, err: err}
	}

	opts := []lint.Option{
		lint.WithSettings(settings),
		lint.WithTags(a.cfg.Tags...),
		lint.WithMaxFileSize(a.cfg.MaxFileSize),
		lint.WithWorkers(a.cfg.Workers),
		lint.WithExclude(a.cfg.Exclude...),
	}
	if version != "dev" {
		opts = append(opts, lint.WithVersion(version))
	}
	if useCache {
		if err := a.openCache(); err != nil {
			return nil, err
		}
		if a.cache != nil {
			opts = append(opts, lint.WithCache(a.cache))
		}
	}

	runner, err := lint.NewRunner(opts...)
	if err != nil {
		return nil, &exitError{code: ExitFailure, err: err}
	}
	return runner, nil
}

// close flushes telemetry and closes the cache and log file.
func (a *app) close() {
	var errs []error
	if a.cache != nil {
		errs = append(errs, a.cache.Close())
	}
	if a.shutdownTelemetry != nil {
		errs = append(errs, a.shutdownTelemetry(context.Background()))
	}
	if err := errors.Join(errs...); err != nil {
		a.logger.Warn("Shutdown failed", slog.String("error", err.Error()))
	}
	_ = a.logger.Close()
}
