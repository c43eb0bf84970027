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
	"fmt"
	"sort"
	"strings"

	"github.com/AleutianAI/templint/services/markup/analyzer"
	"github.com/AleutianAI/templint/services/markup/source"
	"github.com/AleutianAI/templint/services/markup/template"
)

// =============================================================================
// RULE
// =============================================================================

// Rule is a check over one analyzed template.
//
// Rules only read the analyzer; they report through the RuleContext and
// never return errors. A rule that cannot decide stays silent.
type Rule interface {
	// Name is the stable identifier used in configuration and reports.
	Name() string

	// Description is a one-line summary for help output.
	Description() string

	// DefaultSeverity is used when the configuration does not set one.
	DefaultSeverity() Severity

	// Check inspects one template.
	Check(ctx *RuleContext)
}

// =============================================================================
// RULE SETTINGS
// =============================================================================

// RuleSetting configures one rule.
type RuleSetting struct {
	// Severity overrides the rule's default. SeverityOff disables the rule.
	Severity Severity `json:"severity" yaml:"severity"`

	// Options are rule-specific settings.
	Options map[string]string `json:"options,omitempty" yaml:"options,omitempty"`
}

// Settings maps rule names to their configuration.
type Settings map[string]RuleSetting

// DefaultSettings returns every built-in rule at its default severity.
func DefaultSettings() Settings {
	s := make(Settings, len(builtinRules))
	for _, rule := range builtinRules {
		s[rule.Name()] = RuleSetting{Severity: rule.DefaultSeverity()}
	}
	return s
}

// optionValidator is implemented by rules that take options.
type optionValidator interface {
	ValidateOptions(options map[string]string) error
}

// Validate checks that every configured rule exists and accepts its options.
func (s Settings) Validate() error {
	for name, setting := range s {
		rule, ok := LookupRule(name)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownRule, name)
		}
		if v, ok := rule.(optionValidator); ok {
			if err := v.ValidateOptions(setting.Options); err != nil {
				return NewRuleError(name, "", err)
			}
		} else if len(setting.Options) > 0 {
			return NewRuleError(name, "", fmt.Errorf("%w: rule takes no options", ErrInvalidOption))
		}
	}
	return nil
}

// Fingerprint returns a deterministic rendering of the settings, used in
// result cache keys.
func (s Settings) Fingerprint() string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		setting := s[name]
		fmt.Fprintf(&b, "%s=%s", name, setting.Severity)
		keys := make([]string, 0, len(setting.Options))
		for k := range setting.Options {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, ",%s:%s", k, setting.Options[k])
		}
		b.WriteByte(';')
	}
	return b.String()
}

// =============================================================================
// RULE CONTEXT
// =============================================================================

// RuleContext is handed to Rule.Check for one template.
type RuleContext struct {
	// Context carries cancellation for the lint run.
	Context context.Context

	// File is the source file the template came from.
	File *source.File

	// Template is the template being checked.
	Template *template.Template

	// Analyzer answers tree and location queries for Template.
	Analyzer *analyzer.Analyzer

	rule     string
	severity Severity
	options  map[string]string
	issues   []LintIssue
}

// Option returns a rule option, or def when unset.
func (c *RuleContext) Option(key, def string) string {
	if v, ok := c.options[key]; ok && v != "" {
		return v
	}
	return def
}

// IssueOption adjusts a reported issue.
type IssueOption func(*LintIssue)

// WithSuggestion attaches a human-readable suggestion.
func WithSuggestion(suggestion string) IssueOption {
	return func(i *LintIssue) {
		i.Suggestion = suggestion
	}
}

// WithFix attaches an automatic fix.
func WithFix(edits ...TextEdit) IssueOption {
	return func(i *LintIssue) {
		i.Edits = append(i.Edits, edits...)
	}
}

// Report records an issue at loc. A nil location is dropped, since it
// means the template itself has no position.
func (c *RuleContext) Report(loc *analyzer.SourceRange, message string, opts ...IssueOption) {
	if loc == nil {
		return
	}
	issue := LintIssue{
		File:       c.File.Path(),
		Line:       loc.Start.Line,
		Column:     loc.Start.Column + 1,
		EndLine:    loc.End.Line,
		EndColumn:  loc.End.Column + 1,
		Offset:     loc.Offsets.Start,
		Rule:       c.rule,
		Severity:   c.severity,
		Message:    message,
		TemplateID: int(c.Template.ID),
	}
	for _, opt := range opts {
		opt(&issue)
	}
	c.issues = append(c.issues, issue)
}

// =============================================================================
// RULE SET
// =============================================================================

var builtinRules = []Rule{
	&attributeValueEntities{},
	&bindingPositions{},
	&noDuplicateAttributes{},
	&noInvalidHTML{},
	&noValueAttribute{},
	&quotedExpressions{},
}

// Rules returns the built-in rules sorted by name.
func Rules() []Rule {
	out := make([]Rule, len(builtinRules))
	copy(out, builtinRules)
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name() < out[j].Name()
	})
	return out
}

// LookupRule returns the built-in rule with the given name.
func LookupRule(name string) (Rule, bool) {
	for _, rule := range builtinRules {
		if rule.Name() == name {
			return rule, true
		}
	}
	return nil, false
}

// activeRule is a rule resolved against settings.
type activeRule struct {
	rule     Rule
	severity Severity
	options  map[string]string
}

// resolveRules applies settings to the built-in rules. Rules absent from
// settings run at their default severity.
func resolveRules(settings Settings) []activeRule {
	var out []activeRule
	for _, rule := range Rules() {
		severity := rule.DefaultSeverity()
		var options map[string]string
		if s, ok := settings[rule.Name()]; ok {
			severity = s.Severity
			options = s.Options
		}
		if severity == SeverityOff {
			continue
		}
		out = append(out, activeRule{rule: rule, severity: severity, options: options})
	}
	return out
}
