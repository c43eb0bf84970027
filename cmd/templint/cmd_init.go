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
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/templint/services/templint/config"
)

func newInitCmd(g *globalFlags) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default " + config.FileName,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := g.configPath
			if path == "" {
				path = config.FileName
			}

			if _, err := os.Stat(path); err == nil && !force {
				return &exitError{code: ExitFailure, err: fmt.Errorf("%s already exists (use --force to overwrite)", path)}
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return &exitError{code: ExitFailure, err: err}
			}

			data, err := config.Default().Marshal()
			if err != nil {
				return &exitError{code: ExitFailure, err: err}
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return &exitError{code: ExitFailure, err: fmt.Errorf("writing %s: %w", path, err)}
			}
			_, err = fmt.Fprintf(g.stdout, "Wrote %s\n", path)
			return err
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}
