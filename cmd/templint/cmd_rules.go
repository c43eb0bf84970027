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
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/templint/services/templint/lint"
)

func newRulesCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List the built-in rules and their configured severity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.newApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			settings, err := a.cfg.RuleSettings()
			if err != nil {
				return &exitError{code: ExitFailure, err: err}
			}

			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("RULE", "DEFAULT", "CONFIGURED", "DESCRIPTION")
			for _, rule := range lint.Rules() {
				t.Row(
					rule.Name(),
					rule.DefaultSeverity().String(),
					settings[rule.Name()].Severity.String(),
					rule.Description(),
				)
			}
			_, err = fmt.Fprintln(g.stdout, t.String())
			return err
		},
	}
}
