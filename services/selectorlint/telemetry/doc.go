// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package telemetry wires OpenTelemetry tracing and metrics for selectorlint.
//
// The linter packages record spans and instruments through the global otel
// providers. Init installs real providers behind them; without Init the
// globals stay no-ops and nothing is exported.
//
// # Exporters
//
// Traces go to stdout or to an OTLP gRPC collector. Metrics go to stdout or
// to a Prometheus registry that is written as a node_exporter textfile when
// the shutdown function runs. A CLI run is short lived, so nothing is served
// over HTTP for scraping.
//
// # Usage
//
//	cfg := telemetry.DefaultConfig()
//	cfg.MetricExporter = "prometheus"
//	cfg.MetricsFile = "/var/lib/node_exporter/selectorlint.prom"
//	shutdown, err := telemetry.Init(ctx, cfg)
//	if err != nil {
//	    return fmt.Errorf("init telemetry: %w", err)
//	}
//	defer shutdown(context.Background())
//
// # Environment Variables
//
//   - OTEL_TRACES_EXPORTER: otlp, stdout, or none (default: none)
//   - OTEL_METRICS_EXPORTER: prometheus, stdout, or none (default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint (default: localhost:4317)
//   - SELECTORLINT_METRICS_FILE: textfile path for the prometheus exporter
//   - SELECTORLINT_ENV: environment name (default: development)
//
// # Thread Safety
//
// Init is called once at startup. The returned shutdown function is not
// safe to call concurrently with itself.
package telemetry
