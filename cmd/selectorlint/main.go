// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command selectorlint checks Capybara selector usage in Ruby test suites.
//
// Usage:
//
//	selectorlint check [paths...]      Report offenses
//	selectorlint check --fix           Apply safe corrections in place
//	selectorlint check --diff          Show corrections without writing
//	selectorlint selector '#a.b[c=d]'  Print a selector's parts as JSON
//	selectorlint escape '1abc'         Escape a string as a CSS identifier
//	selectorlint rules                 List rules and their configuration
//
// Exit codes: 0 clean, 1 offenses at or above the fail level, 2 errors.
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
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newApp(stdout, stderr)
	root := a.rootCmd()
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if closeErr := a.close(context.WithoutCancel(ctx)); closeErr != nil {
		fmt.Fprintf(stderr, "Error: %v\n", closeErr)
		if err == nil {
			return ExitError
		}
	}
	if err == nil {
		return ExitSuccess
	}

	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", ee.err)
		}
		return ee.code
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return ExitError
}
