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
	"os"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/templint/services/markup/extract"
	"github.com/AleutianAI/templint/services/templint/inspect"
)

func newInspectCmd(g *globalFlags) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Show the parsed HTML tree of each template in a file",
		Long: `Print the serialized HTML, the parsed tree and the parse errors of every
tagged template in a file, with locations resolved to the source.

Examples:
  templint inspect src/view.ts
  templint inspect --format yaml src/view.ts`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "json" && format != "yaml" {
				return &exitError{code: ExitFailure, err: fmt.Errorf("unknown format %q (want json or yaml)", format)}
			}

			a, err := g.newApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			path := args[0]
			content, err := os.ReadFile(path)
			if err != nil {
				return &exitError{code: ExitFailure, err: fmt.Errorf("reading %s: %w", path, err)}
			}

			ex := extract.New(
				extract.WithTags(a.cfg.Tags...),
				extract.WithMaxFileSize(a.cfg.MaxFileSize),
			)
			f, err := inspect.Inspect(cmd.Context(), ex, path, content)
			if err != nil {
				return &exitError{code: ExitFailure, err: err}
			}
			return inspect.Encode(g.stdout, format, f)
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "Output format: json or yaml")
	return cmd
}
