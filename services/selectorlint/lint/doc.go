// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package lint runs the selector rules over Ruby browser-test sources.
//
// The runner parses each file with the ast package, dispatches every call
// expression to the rules in package cops that inspect its method name,
// and turns their offenses into issues with a severity taken from the
// configuration:
//
//	Discover → Parse → Dispatch calls → Apply policy → Result
//
// # Auto-fix
//
// FixContent applies the edits of correctable issues pass by pass. Within
// a pass, issues are visited in source order and an issue whose edits
// overlap an already selected one waits for the next pass. Fixing stops
// when a pass yields no edits and fails with ErrFixDiverged after
// MaxFixPasses. Sources with syntax errors are never edited.
//
// # Usage
//
//	runner, err := lint.NewRunner(lint.WithConfig(cfg))
//	if err != nil {
//	    return err
//	}
//
//	// Lint a file
//	result, err := runner.LintFile(ctx, "spec/features/login_spec.rb")
//
//	// Fix content in memory
//	fixed, err := runner.FixContent(ctx, src, "login_spec.rb")
//
// # Thread Safety
//
// All exported types are safe for concurrent use.
package lint
