// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads templint configuration from .templint.yaml.
//
// A missing file is not an error; every field has a default. Unknown keys
// are rejected so that typos surface instead of silently doing nothing.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/templint/services/markup/extract"
	"github.com/AleutianAI/templint/services/templint/lint"
)

// FileName is the configuration file looked up in the working directory.
const FileName = ".templint.yaml"

// ErrInvalidConfig indicates a configuration that failed to parse or validate.
var ErrInvalidConfig = errors.New("invalid config")

// =============================================================================
// Shared Validator Instance
// =============================================================================

var (
	configValidate *validator.Validate

	// tagNamePattern matches a JavaScript identifier.
	tagNamePattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)
)

func init() {
	configValidate = validator.New()
	_ = configValidate.RegisterValidation("tagname", validateTagName)
}

// validateTagName checks that a template tag is a plain identifier.
func validateTagName(fl validator.FieldLevel) bool {
	return tagNamePattern.MatchString(fl.Field().String())
}

// =============================================================================
// Types
// =============================================================================

// Config is the root of .templint.yaml.
type Config struct {
	// Tags are the template tag functions to lint, e.g. html and svg.
	Tags []string `yaml:"tags" validate:"required,min=1,dive,tagname"`

	// Exclude are glob patterns for paths to skip.
	Exclude []string `yaml:"exclude,omitempty" validate:"dive,required"`

	// MaxFileSize is the largest file linted, in bytes.
	MaxFileSize int64 `yaml:"max_file_size" validate:"gte=0"`

	// Workers bounds concurrent file linting. 0 uses GOMAXPROCS.
	Workers int `yaml:"workers" validate:"gte=0,lte=256"`

	// Rules override rule severities and options by rule name.
	Rules map[string]RuleConfig `yaml:"rules,omitempty" validate:"dive"`

	Cache     CacheConfig     `yaml:"cache"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// RuleConfig configures one rule.
type RuleConfig struct {
	Severity string            `yaml:"severity,omitempty" validate:"omitempty,oneof=off info warning warn error"`
	Options  map[string]string `yaml:"options,omitempty"`
}

// CacheConfig configures the persistent result cache.
type CacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir" validate:"required_if=Enabled true"`
}

// TelemetryConfig selects OpenTelemetry exporters.
type TelemetryConfig struct {
	// Traces is none, stdout or otlp.
	Traces string `yaml:"traces" validate:"oneof=none stdout otlp"`

	// Metrics is none, stdout or prometheus.
	Metrics string `yaml:"metrics" validate:"oneof=none stdout prometheus"`

	// OTLPEndpoint is the collector address for otlp traces.
	OTLPEndpoint string `yaml:"otlp_endpoint,omitempty" validate:"required_if=Traces otlp"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn warning error"`
	JSON  bool   `yaml:"json"`

	// Dir enables JSON file logging into this directory.
	Dir string `yaml:"dir,omitempty"`
}

// =============================================================================
// Loading
// =============================================================================

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Tags:        append([]string(nil), extract.DefaultTags...),
		MaxFileSize: extract.DefaultMaxFileSize,
		Cache: CacheConfig{
			Dir: filepath.Join(".templint", "cache"),
		},
		Telemetry: TelemetryConfig{
			Traces:  "none",
			Metrics: "none",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads and validates the configuration at path.
//
// Description:
//
//	Fields absent from the file keep their defaults. Unknown keys and
//	values failing validation return ErrInvalidConfig.
//
// Inputs:
//
//	path - Path to a YAML file.
//
// Outputs:
//
//	*Config - The validated configuration.
//	error - Read errors or ErrInvalidConfig.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault loads path, or FileName in the working directory when path
// is empty. A missing default file yields Default(); a missing explicit
// path is an error.
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		return Load(path)
	}
	cfg, err := Load(FileName)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Parse decodes YAML on top of the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints and rule names.
func (c *Config) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := c.RuleSettings(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	for _, pattern := range c.Exclude {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return fmt.Errorf("%w: exclude pattern %q: %v", ErrInvalidConfig, pattern, err)
		}
	}
	return nil
}

// RuleSettings merges the configured rules over the rule defaults.
//
// Outputs:
//
//	lint.Settings - Settings for every built-in rule.
//	error - lint.ErrUnknownRule or lint.ErrInvalidOption.
func (c *Config) RuleSettings() (lint.Settings, error) {
	settings := lint.DefaultSettings()
	for name, rc := range c.Rules {
		setting, ok := settings[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", lint.ErrUnknownRule, name)
		}
		if rc.Severity != "" {
			setting.Severity = lint.SeverityFromString(rc.Severity)
		}
		setting.Options = rc.Options
		settings[name] = setting
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return buf.Bytes(), nil
}
