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
	"io"

	"github.com/spf13/cobra"
)

// globalFlags are the persistent flags shared by every subcommand.
type globalFlags struct {
	configPath string
	logLevel   string
	logJSON    bool

	stdout io.Writer
	stderr io.Writer
}

// newRootCmd builds the command tree. Output goes to stdout and stderr so
// tests can capture it.
func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	g := &globalFlags{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "templint",
		Short: "Lint HTML in JavaScript and TypeScript tagged templates",
		Long: `templint finds HTML mistakes inside tagged template literals such as
` + "html`<div>${x}</div>`" + ` and reports them at their position in the source file.

Configuration is read from .templint.yaml in the working directory.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVar(&g.configPath, "config", "",
		"Path to the config file (default: ./.templint.yaml if present)")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "",
		"Log level: debug, info, warn, error (overrides config)")
	root.PersistentFlags().BoolVar(&g.logJSON, "log-json", false,
		"Emit logs as JSON")

	root.AddCommand(
		newCheckCmd(g),
		newInspectCmd(g),
		newWatchCmd(g),
		newRulesCmd(g),
		newInitCmd(g),
		newCacheCmd(g),
	)
	return root
}
