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

	"github.com/spf13/cobra"
)

func newCacheCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the lint result cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete every cached lint result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.newApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			if !a.cfg.Cache.Enabled {
				_, err := fmt.Fprintln(g.stdout, "Cache is disabled")
				return err
			}
			if err := a.openCache(); err != nil {
				return err
			}

			n, err := a.cache.Len()
			if err != nil {
				return &exitError{code: ExitFailure, err: err}
			}
			if err := a.cache.Purge(); err != nil {
				return &exitError{code: ExitFailure, err: err}
			}
			_, err = fmt.Fprintf(g.stdout, "Removed %d cached results from %s\n", n, a.cfg.Cache.Dir)
			return err
		},
	})
	return cmd
}
