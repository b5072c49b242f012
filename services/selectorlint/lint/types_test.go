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
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/selectorlint/services/selectorlint/config"
)

func TestSeverity_String(t *testing.T) {
	tests := []struct {
		severity Severity
		want     string
	}{
		{SeverityInfo, "info"},
		{SeverityWarning, "warning"},
		{SeverityError, "error"},
		{Severity(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.severity.String(); got != tt.want {
			t.Errorf("Severity(%d).String() = %q, want %q", tt.severity, got, tt.want)
		}
	}
}

func TestSeverityFromString(t *testing.T) {
	tests := []struct {
		input string
		want  Severity
	}{
		{"error", SeverityError},
		{"err", SeverityError},
		{"fatal", SeverityError},
		{"warning", SeverityWarning},
		{"warn", SeverityWarning},
		{"info", SeverityInfo},
		{"convention", SeverityInfo},
		{"unknown", SeverityWarning},
		{"", SeverityWarning},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := SeverityFromString(tt.input); got != tt.want {
				t.Errorf("SeverityFromString(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}

	_, ok := ParseSeverity("loud")
	assert.False(t, ok)
}

func TestSeverity_JSON(t *testing.T) {
	data, err := json.Marshal(Issue{Rule: "ChainedFind", Severity: SeverityError})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"severity":"error"`)

	var back Issue
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, SeverityError, back.Severity)

	var s Severity
	assert.ErrorIs(t, s.UnmarshalText([]byte("loud")), ErrInvalidInput)
}

func TestResult_Counts(t *testing.T) {
	r := &Result{Issues: []Issue{
		{Severity: SeverityInfo},
		{Severity: SeverityWarning, CanAutoFix: true},
		{Severity: SeverityError, CanAutoFix: true},
	}}

	assert.True(t, r.HasIssues())
	assert.True(t, r.HasErrors())
	assert.Equal(t, 3, r.CountAtLeast(SeverityInfo))
	assert.Equal(t, 2, r.CountAtLeast(SeverityWarning))
	assert.Equal(t, 1, r.CountAtLeast(SeverityError))
	assert.Equal(t, 2, r.AutoFixableCount())

	empty := &Result{}
	assert.False(t, empty.HasIssues())
	assert.False(t, empty.HasErrors())

	var none *Result
	assert.Zero(t, none.CountAtLeast(SeverityInfo))
	assert.Zero(t, none.AutoFixableCount())
}

func TestIssue_Location(t *testing.T) {
	i := Issue{File: "spec/a_spec.rb", Line: 3, Column: 7}
	assert.Equal(t, "spec/a_spec.rb:3:7", i.Location())
}

func TestTextEdit_Overlaps(t *testing.T) {
	assert.False(t, TextEdit{Start: 0, End: 3}.Overlaps(TextEdit{Start: 3, End: 4}))
	assert.True(t, TextEdit{Start: 0, End: 4}.Overlaps(TextEdit{Start: 3, End: 4}))
	assert.True(t, TextEdit{Start: 2, End: 2}.Overlaps(TextEdit{Start: 2, End: 2}))
	assert.False(t, TextEdit{Start: 2, End: 2}.Overlaps(TextEdit{Start: 2, End: 5}))
}

func TestPolicyFor(t *testing.T) {
	off := false
	cfg := config.Default()
	cfg.Rules["AssertStyle"] = config.RuleConfig{Enabled: &off}
	cfg.Rules["ChainedFind"] = config.RuleConfig{Severity: "error"}
	cfg.Rules["ClickLinkOrButtonStyle"] = config.RuleConfig{EnforcedStyle: "link_or_button"}

	assert.Equal(t, RulePolicy{Rule: "AssertStyle", Enabled: false, Severity: SeverityWarning}, PolicyFor(cfg, "AssertStyle"))
	assert.Equal(t, RulePolicy{Rule: "ChainedFind", Enabled: true, Severity: SeverityError}, PolicyFor(cfg, "ChainedFind"))
	assert.Equal(t, "link_or_button", PolicyFor(cfg, "ClickLinkOrButtonStyle").EnforcedStyle)
	assert.Equal(t, RulePolicy{Rule: "MatchStyle", Enabled: true, Severity: SeverityWarning}, PolicyFor(nil, "MatchStyle"))

	assert.Len(t, Policies(cfg), 6)
}

func TestFailLevel(t *testing.T) {
	assert.Equal(t, SeverityWarning, FailLevel(nil))
	cfg := config.Default()
	cfg.FailLevel = "error"
	assert.Equal(t, SeverityError, FailLevel(cfg))
}
