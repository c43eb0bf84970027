// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command templint lints HTML inside tagged template literals in
// JavaScript and TypeScript sources.
//
// Usage:
//
//	templint check ./src
//	templint check --fix ./src
//	templint check --diff --format json ./src
//	templint inspect ./src/view.ts
//	templint watch ./src --metrics-addr :9464
//	templint rules
//
// Configuration is read from .templint.yaml in the working directory, or
// from the file named by --config.
//
// Exit Codes:
//
//	0 = No errors
//	1 = Lint errors found (or warnings above --max-warnings)
//	2 = Usage, configuration or I/O failure
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}

	var exit *exitError
	if errors.As(err, &exit) {
		if exit.err != nil {
			fmt.Fprintf(stderr, "templint: %v\n", exit.err)
		}
		return exit.code
	}
	fmt.Fprintf(stderr, "templint: %v\n", err)
	return ExitFailure
}
