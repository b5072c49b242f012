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
	"strconv"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/selectorlint/services/selectorlint/cops"
	"github.com/AleutianAI/selectorlint/services/selectorlint/lint"
)

func (a *app) rulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List rules with their enabled state and severity",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			cfg, _, err := a.loadConfig()
			if err != nil {
				return err
			}

			descriptions := make(map[string]string)
			for _, c := range cops.All() {
				descriptions[c.Name()] = c.Description()
			}

			policies := lint.Policies(cfg)
			rows := make([][]string, 0, len(policies))
			for _, p := range policies {
				rows = append(rows, []string{
					p.Rule,
					strconv.FormatBool(p.Enabled),
					p.Severity.String(),
					p.EnforcedStyle,
					descriptions[p.Rule],
				})
			}
			a.printer.Table([]string{"Rule", "Enabled", "Severity", "Style", "Description"}, rows)
			return nil
		},
	}
}
