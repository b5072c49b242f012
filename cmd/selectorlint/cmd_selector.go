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
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/selectorlint/services/selectorlint/selector"
)

// selectorReport is the decomposition printed by the selector command.
type selectorReport struct {
	Selector      string            `json:"selector"`
	ID            *string           `json:"id"`
	Classes       []string          `json:"classes"`
	Attributes    []attributeReport `json:"attributes"`
	PseudoClasses []string          `json:"pseudo_classes"`
	Multiple      bool              `json:"multiple"`
}

type attributeReport struct {
	Name  string `json:"name"`
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

// decompose splits s into the parts the rules reason about.
func decompose(s string) (*selectorReport, error) {
	attrs, err := selector.Attributes(s)
	if err != nil {
		return nil, err
	}

	report := &selectorReport{
		Selector:      s,
		Classes:       selector.Classes(s),
		Attributes:    make([]attributeReport, 0, attrs.Len()),
		PseudoClasses: selector.PseudoClasses(s),
		Multiple:      selector.MultipleSelectors(s),
	}
	if id, ok := selector.ID(s); ok {
		report.ID = &id
	}
	for _, attr := range attrs.All() {
		report.Attributes = append(report.Attributes, attributeReport{
			Name:  attr.Key,
			Kind:  attr.Value.Kind.String(),
			Value: attr.Value.String(),
		})
	}
	return report, nil
}

func (a *app) selectorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "selector <selector>",
		Short: "Print the id, classes, attributes and pseudo-classes of a selector",
		Long: `Decompose a CSS selector the way the rules see it and print the parts
as JSON. Attribute values are normalized: true and false become booleans,
bare attributes are nil, and everything else is a single-quoted string.

Example:
  selectorlint selector 'button#save.primary[disabled]:hover'`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			report, err := decompose(args[0])
			if err != nil {
				return failf("%w", err)
			}
			enc := json.NewEncoder(a.stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return failf("encode selector: %w", err)
			}
			return nil
		},
	}
}

func (a *app) escapeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "escape <string>",
		Short: "Escape a string for use as a CSS identifier",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			fmt.Fprintln(a.stdout, selector.Escape(args[0]))
			return nil
		},
	}
}
