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
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/selectorlint/pkg/ux"
	"github.com/AleutianAI/selectorlint/services/selectorlint/lint"
)

const (
	formatText = "text"
	formatJSON = "json"
)

// checkOptions are the flags of the check command.
type checkOptions struct {
	fix       bool
	diff      bool
	format    string
	only      []string
	failLevel string
	workers   int
	watch     bool
}

// checkReport is everything one check pass produced.
type checkReport struct {
	RunID    string            `json:"run_id"`
	Config   string            `json:"config,omitempty"`
	Files    []*lint.Result    `json:"files"`
	Diffs    map[string]string `json:"diffs,omitempty"`
	Summary  checkSummary      `json:"summary"`
	Duration time.Duration     `json:"duration"`
}

type checkSummary struct {
	Files        int `json:"files"`
	Issues       int `json:"issues"`
	Fixable      int `json:"fixable"`
	Corrected    int `json:"corrected"`
	SyntaxErrors int `json:"syntax_errors"`
	Failing      int `json:"failing"`
}

func (a *app) checkCmd() *cobra.Command {
	opts := &checkOptions{}
	cmd := &cobra.Command{
		Use:   "check [paths...]",
		Short: "Report selector offenses in Ruby files",
		Long: `Check Ruby files for Capybara selector offenses.

Directories are searched for files matching the configured include globs.
Explicit file arguments are always checked.

Examples:
  selectorlint check
  selectorlint check spec/features
  selectorlint check --fix
  selectorlint check --diff --only SpecificFinders
  selectorlint check --format json --fail-level error

Exit Codes:
  0 = No offenses at/above the fail level
  1 = Offenses found at/above the fail level, or unparsable files
  2 = Error (invalid flag, unreadable path, bad configuration)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCheck(cmd.Context(), args, opts)
		},
	}

	flags := cmd.Flags()
	flags.BoolVarP(&opts.fix, "fix", "a", false, "Apply corrections in place")
	flags.BoolVar(&opts.diff, "diff", false, "Print corrections as a unified diff")
	flags.StringVarP(&opts.format, "format", "f", formatText, "Output format: text, json")
	flags.StringSliceVar(&opts.only, "only", nil, "Run only these rules (comma separated)")
	flags.StringVar(&opts.failLevel, "fail-level", "", "Minimum severity for a non-zero exit: info, warning, error (default: from config)")
	flags.IntVarP(&opts.workers, "workers", "j", 0, "Number of parallel workers (0 = from config or NumCPU)")
	flags.BoolVarP(&opts.watch, "watch", "w", false, "Re-check files when they change")
	return cmd
}

// runCheck resolves the configuration, builds a runner and runs one pass,
// or keeps running passes when watching.
func (a *app) runCheck(ctx context.Context, args []string, opts *checkOptions) error {
	if opts.format != formatText && opts.format != formatJSON {
		return failf("invalid --format %q: want text or json", opts.format)
	}

	cfg, cfgPath, err := a.loadConfig()
	if err != nil {
		return err
	}

	failLevel := lint.FailLevel(cfg)
	if opts.failLevel != "" {
		level, ok := lint.ParseSeverity(opts.failLevel)
		if !ok {
			return failf("invalid --fail-level %q", opts.failLevel)
		}
		failLevel = level
	}

	runnerOpts := []lint.Option{lint.WithConfig(cfg)}
	if len(opts.only) > 0 {
		runnerOpts = append(runnerOpts, lint.WithCops(opts.only...))
	}
	if opts.workers > 0 {
		runnerOpts = append(runnerOpts, lint.WithWorkers(opts.workers))
	}
	runner, err := lint.NewRunner(runnerOpts...)
	if err != nil {
		return failf("%w", err)
	}

	paths := args
	if len(paths) == 0 {
		paths = []string{"."}
	}

	files, err := runner.DiscoverAll(paths)
	if err != nil {
		return failf("%w", err)
	}
	a.logger.Debug("discovered files",
		slog.String("run_id", runner.RunID()),
		slog.Int("files", len(files)))

	report, err := a.checkFiles(ctx, runner, files, opts, failLevel)
	if err != nil {
		return err
	}
	report.Config = cfgPath
	if err := a.render(report, opts); err != nil {
		return err
	}

	if opts.watch {
		return a.watch(ctx, runner, paths, opts, failLevel)
	}
	if report.Summary.Failing > 0 {
		return &exitError{code: ExitIssues}
	}
	return nil
}

// checkFiles lints or fixes files and collects the results.
//
// With --fix the results describe the files after writing. With --diff
// alone nothing is written and the results describe the files on disk.
func (a *app) checkFiles(ctx context.Context, runner *lint.Runner, files []string, opts *checkOptions, failLevel lint.Severity) (*checkReport, error) {
	start := time.Now()
	report := &checkReport{RunID: runner.RunID()}

	if opts.fix {
		for _, file := range files {
			if err := ctx.Err(); err != nil {
				return nil, failf("%w", err)
			}
			fr, err := a.fixFile(ctx, runner, file, true)
			if err != nil {
				return nil, err
			}
			report.Files = append(report.Files, fr.Remaining)
			if fr.Written {
				report.Summary.Corrected += fr.Corrections
			}
			if err := report.addDiff(opts, file, fr); err != nil {
				return nil, err
			}
		}
	} else {
		results, err := runner.LintFiles(ctx, files)
		if err != nil {
			return nil, failf("%w", err)
		}
		report.Files = results

		if opts.diff {
			for _, res := range results {
				if res.AutoFixableCount() == 0 {
					continue
				}
				fr, err := a.fixFile(ctx, runner, res.File, false)
				if err != nil {
					return nil, err
				}
				if err := report.addDiff(opts, res.File, fr); err != nil {
					return nil, err
				}
			}
		}
	}

	for _, res := range report.Files {
		report.Summary.Files++
		report.Summary.Issues += len(res.Issues)
		report.Summary.Fixable += res.AutoFixableCount()
		report.Summary.Failing += res.CountAtLeast(failLevel)
		if len(res.SyntaxErrors) > 0 {
			report.Summary.SyntaxErrors++
			report.Summary.Failing++
		}
	}
	report.Duration = time.Since(start)

	a.logger.Info("check complete",
		slog.String("run_id", report.RunID),
		slog.Int("files", report.Summary.Files),
		slog.Int("issues", report.Summary.Issues),
		slog.Int("corrected", report.Summary.Corrected),
		slog.Duration("duration", report.Duration))
	return report, nil
}

// fixFile runs FixFile and turns a diverged fix into an untouched file.
func (a *app) fixFile(ctx context.Context, runner *lint.Runner, file string, write bool) (*lint.FixResult, error) {
	fr, err := runner.FixFile(ctx, file, write)
	if err == nil {
		return fr, nil
	}
	if !errors.Is(err, lint.ErrFixDiverged) || fr == nil {
		return nil, failf("%w", err)
	}

	a.logger.Warn("corrections did not converge, file left unchanged",
		slog.String("file", file),
		slog.Int("passes", fr.Passes))
	// Report the file as it is on disk.
	res, err := runner.LintContent(ctx, fr.Original, file)
	if err != nil {
		return nil, failf("%w", err)
	}
	fr.Fixed, fr.Remaining, fr.Corrections = fr.Original, res, 0
	return fr, nil
}

// addDiff records the diff of fr when --diff is set and fr changed.
func (r *checkReport) addDiff(opts *checkOptions, file string, fr *lint.FixResult) error {
	if !opts.diff || !fr.Changed() {
		return nil
	}
	d, err := lint.UnifiedDiff(file, fr.Original, fr.Fixed)
	if err != nil {
		return failf("diff %s: %w", file, err)
	}
	if r.Diffs == nil {
		r.Diffs = make(map[string]string)
	}
	r.Diffs[file] = string(d)
	return nil
}

// render writes the report in the selected format.
func (a *app) render(report *checkReport, opts *checkOptions) error {
	if opts.format == formatJSON {
		if report.Files == nil {
			report.Files = []*lint.Result{}
		}
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return failf("encode report: %w", err)
		}
		return nil
	}

	p := a.printer
	for _, res := range report.Files {
		for _, msg := range res.SyntaxErrors {
			p.Error(fmt.Sprintf("%s: syntax error: %s", res.File, msg))
		}
		for _, issue := range res.Issues {
			p.Diagnostic(ux.Diagnostic{
				File:     issue.File,
				Line:     issue.Line,
				Column:   issue.Column,
				Severity: issue.Severity.String(),
				Rule:     issue.Rule,
				Message:  issue.Message,
				Fixable:  issue.CanAutoFix,
			})
		}
	}

	files := make([]string, 0, len(report.Diffs))
	for f := range report.Diffs {
		files = append(files, f)
	}
	slices.Sort(files)
	for _, f := range files {
		p.Diff([]byte(report.Diffs[f]))
	}

	p.Summary(ux.Summary{
		Files:     report.Summary.Files,
		Issues:    report.Summary.Issues,
		Fixable:   report.Summary.Fixable,
		Corrected: report.Summary.Corrected,
	})
	return nil
}
