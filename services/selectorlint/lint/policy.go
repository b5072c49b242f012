// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package lint

import (
	"github.com/AleutianAI/selectorlint/services/selectorlint/config"
	"github.com/AleutianAI/selectorlint/services/selectorlint/cops"
)

// =============================================================================
// RULE POLICY
// =============================================================================

// RulePolicy defines how one rule runs and how its issues are reported.
//
// Thread Safety: Treat as immutable after creation.
type RulePolicy struct {
	// Rule is the rule name.
	Rule string `json:"rule"`

	// Enabled is false when configuration turned the rule off.
	Enabled bool `json:"enabled"`

	// Severity is assigned to every issue of the rule.
	Severity Severity `json:"severity"`

	// EnforcedStyle is passed to the rule at construction.
	EnforcedStyle string `json:"enforced_style,omitempty"`
}

// DefaultSeverity is the severity of rules without a configured one.
const DefaultSeverity = SeverityWarning

// PolicyFor derives the policy of one rule from cfg. A nil cfg yields the
// defaults.
func PolicyFor(cfg *config.Config, rule string) RulePolicy {
	rc := cfg.Rule(rule)
	p := RulePolicy{
		Rule:          rule,
		Enabled:       rc.IsEnabled(),
		Severity:      DefaultSeverity,
		EnforcedStyle: rc.EnforcedStyle,
	}
	if rc.Severity != "" {
		p.Severity = SeverityFromString(rc.Severity)
	}
	return p
}

// Policies returns the policy of every registered rule, sorted by name.
func Policies(cfg *config.Config) []RulePolicy {
	names := cops.Names()
	out := make([]RulePolicy, len(names))
	for i, name := range names {
		out[i] = PolicyFor(cfg, name)
	}
	return out
}

// FailLevel returns the configured fail level, SeverityWarning by default.
func FailLevel(cfg *config.Config) Severity {
	if cfg == nil || cfg.FailLevel == "" {
		return SeverityWarning
	}
	return SeverityFromString(cfg.FailLevel)
}
