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
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/selectorlint/pkg/logging"
	"github.com/AleutianAI/selectorlint/pkg/ux"
	"github.com/AleutianAI/selectorlint/services/selectorlint/config"
	"github.com/AleutianAI/selectorlint/services/selectorlint/telemetry"
)

// app holds the state shared by every subcommand of one invocation.
type app struct {
	stdout io.Writer
	stderr io.Writer

	// --- Global flags ---
	configPath     string
	logLevel       string
	logFormat      string
	logFile        string
	outputLevel    string
	traceExporter  string
	metricExporter string
	metricsFile    string

	log      *logging.Logger
	logger   *slog.Logger
	printer  *ux.Printer
	shutdown func(context.Context) error
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{stdout: stdout, stderr: stderr}
}

// rootCmd builds the command tree.
func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "selectorlint",
		Short: "Lint Capybara selector usage in Ruby test suites",
		Long: `selectorlint inspects Capybara finder, matcher and action calls and
reports selectors that can be written more directly. Most offenses can be
corrected automatically with --fix.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "",
		"Path to "+config.FileName+" (default: nearest one above the working directory)")
	flags.StringVar(&a.logLevel, "log-level", "warn",
		"Log level: debug, info, warn, error")
	flags.StringVar(&a.logFormat, "log-format", "text",
		"Log format on stderr: text, json")
	flags.StringVar(&a.logFile, "log-file", "",
		"Also append JSON logs to this file")
	flags.StringVar(&a.outputLevel, "output", "",
		"Output style: full, minimal, machine (default: detected from the terminal)")
	flags.StringVar(&a.traceExporter, "trace-exporter", "",
		"Trace exporter: none, stdout, otlp (default: $OTEL_TRACES_EXPORTER or none)")
	flags.StringVar(&a.metricExporter, "metric-exporter", "",
		"Metric exporter: none, stdout, prometheus (default: $OTEL_METRICS_EXPORTER or none)")
	flags.StringVar(&a.metricsFile, "metrics-file", "",
		"Textfile written by the prometheus metric exporter")

	root.AddCommand(
		a.checkCmd(),
		a.selectorCmd(),
		a.escapeCmd(),
		a.rulesCmd(),
		a.versionCmd(),
	)
	return root
}

// setup configures logging, output and telemetry before any subcommand.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	level, err := logging.ParseLevel(a.logLevel)
	if err != nil {
		return failf("invalid --log-level: %w", err)
	}
	if a.logFormat != "text" && a.logFormat != "json" {
		return failf("invalid --log-format %q (want text or json)", a.logFormat)
	}
	a.log, err = logging.New(logging.Config{
		Level:   level,
		Writer:  a.stderr,
		JSON:    a.logFormat == "json",
		LogFile: a.logFile,
	})
	if err != nil {
		return failf("init logging: %w", err)
	}
	a.logger = a.log.Slog()
	slog.SetDefault(a.logger)

	a.printer = ux.NewPrinter(a.stdout, a.detectLevel())

	tcfg := telemetry.DefaultConfig()
	tcfg.ServiceVersion = version
	if a.traceExporter != "" {
		tcfg.TraceExporter = a.traceExporter
	}
	if a.metricExporter != "" {
		tcfg.MetricExporter = a.metricExporter
	}
	if a.metricsFile != "" {
		tcfg.MetricsFile = a.metricsFile
	}
	shutdown, err := telemetry.Init(cmd.Context(), tcfg)
	if err != nil {
		return failf("init telemetry: %w", err)
	}
	a.shutdown = shutdown

	a.logger.Debug("selectorlint starting",
		slog.String("command", cmd.Name()),
		slog.String("version", version),
		slog.String("trace_exporter", tcfg.TraceExporter),
		slog.String("metric_exporter", tcfg.MetricExporter))
	return nil
}

func (a *app) detectLevel() ux.Level {
	if a.outputLevel != "" {
		return ux.ParseLevel(a.outputLevel)
	}
	if f, ok := a.stdout.(*os.File); ok {
		return ux.DetectLevel(f)
	}
	return ux.LevelMachine
}

// close flushes telemetry and the log file. Safe to call when setup
// never ran.
func (a *app) close(ctx context.Context) error {
	var errs []error
	if a.shutdown != nil {
		errs = append(errs, a.shutdown(ctx))
		a.shutdown = nil
	}
	if a.log != nil {
		errs = append(errs, a.log.Close())
		a.log = nil
	}
	return errors.Join(errs...)
}

// loadConfig resolves the configuration for this run.
func (a *app) loadConfig() (*config.Config, string, error) {
	cfg, path, err := config.Resolve(a.configPath, ".")
	if err != nil {
		return nil, "", failf("%w", err)
	}
	if path != "" {
		a.logger.Debug("loaded config", slog.String("path", path))
	}
	return cfg, path, nil
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the selectorlint version",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			fmt.Fprintf(a.stdout, "selectorlint %s\n", version)
			return nil
		},
	}
}
