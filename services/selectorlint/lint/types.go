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
	"fmt"
	"strconv"
	"time"
)

// =============================================================================
// SEVERITY
// =============================================================================

// Severity represents the severity level of a lint issue.
type Severity int

const (
	// SeverityInfo represents informational issues.
	SeverityInfo Severity = iota

	// SeverityWarning represents issues that fail a check at the default
	// fail level.
	SeverityWarning

	// SeverityError represents issues that fail a check at every fail
	// level.
	SeverityError
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalText encodes the severity by name.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a severity name.
func (s *Severity) UnmarshalText(text []byte) error {
	parsed, ok := ParseSeverity(string(text))
	if !ok {
		return fmt.Errorf("%w: severity %q", ErrInvalidInput, text)
	}
	*s = parsed
	return nil
}

// SeverityFromString parses a severity string.
//
// Description:
//
//	Accepts the common aliases. Unknown values default to
//	SeverityWarning.
//
// Inputs:
//
//	s - Severity string (e.g., "error", "warning", "info")
//
// Outputs:
//
//	Severity - The parsed severity level
func SeverityFromString(s string) Severity {
	sev, ok := ParseSeverity(s)
	if !ok {
		return SeverityWarning
	}
	return sev
}

// ParseSeverity is SeverityFromString that reports unknown values.
func ParseSeverity(s string) (Severity, bool) {
	switch s {
	case "error", "err", "fatal":
		return SeverityError, true
	case "warning", "warn":
		return SeverityWarning, true
	case "info", "note", "convention":
		return SeverityInfo, true
	default:
		return SeverityWarning, false
	}
}

// =============================================================================
// ISSUE
// =============================================================================

// TextEdit replaces the bytes [Start, End) of the linted content.
//
// Thread Safety: Immutable after creation.
type TextEdit struct {
	// Start and End are byte offsets.
	Start int `json:"start"`
	End   int `json:"end"`

	// StartLine and StartColumn are 1-indexed.
	StartLine   int `json:"start_line"`
	StartColumn int `json:"start_column"`

	// EndLine and EndColumn are 1-indexed. EndColumn is exclusive.
	EndLine   int `json:"end_line"`
	EndColumn int `json:"end_column"`

	// NewText is the replacement text.
	NewText string `json:"new_text"`
}

// Overlaps reports whether two edits touch the same bytes. Insertions at
// the same offset overlap; an insertion at a replacement boundary does not.
func (e TextEdit) Overlaps(other TextEdit) bool {
	if e.Start == e.End && other.Start == other.End {
		return e.Start == other.Start
	}
	return e.Start < other.End && other.Start < e.End
}

// Issue is one offense found in a file.
//
// Thread Safety: Immutable after creation.
type Issue struct {
	// File is the path to the file containing the issue.
	File string `json:"file"`

	// Line is the 1-indexed line number where the issue occurs.
	Line int `json:"line"`

	// Column is the 1-indexed byte column where the issue occurs.
	Column int `json:"column"`

	// EndLine is the ending line of the highlighted range.
	EndLine int `json:"end_line"`

	// EndColumn is the exclusive 1-indexed ending column.
	EndColumn int `json:"end_column"`

	// Rule is the rule that reported the issue (e.g., "ChainedFind").
	Rule string `json:"rule"`

	// Severity is the severity level after policy.
	Severity Severity `json:"severity"`

	// Message is the human-readable description of the issue.
	Message string `json:"message"`

	// CanAutoFix indicates whether the issue carries edits.
	CanAutoFix bool `json:"can_auto_fix"`

	// Edits fix the issue when applied together.
	Edits []TextEdit `json:"edits,omitempty"`

	// Offset is the byte offset of the highlighted range.
	Offset int `json:"offset"`
}

// Location returns a formatted location string (file:line:col).
func (i *Issue) Location() string {
	return i.File + ":" + strconv.Itoa(i.Line) + ":" + strconv.Itoa(i.Column)
}

// =============================================================================
// RESULT
// =============================================================================

// Result is the outcome of linting one file.
//
// Thread Safety: Immutable after creation by the runner.
type Result struct {
	// RunID identifies the runner invocation that produced the result.
	RunID string `json:"run_id"`

	// File is the linted path.
	File string `json:"file"`

	// Language is the parser language.
	Language string `json:"language"`

	// Issues are sorted by position, then rule.
	Issues []Issue `json:"issues"`

	// SyntaxErrors lists parse error locations. A file with syntax errors
	// is linted on the recovered tree but never auto-fixed.
	SyntaxErrors []string `json:"syntax_errors,omitempty"`

	// Duration is how long the lint took.
	Duration time.Duration `json:"duration"`
}

// HasErrors returns true if any issue has SeverityError.
func (r *Result) HasErrors() bool {
	return r.CountAtLeast(SeverityError) > 0
}

// HasIssues returns true if there are any issues of any severity.
func (r *Result) HasIssues() bool {
	return len(r.Issues) > 0
}

// CountAtLeast returns the number of issues at or above level.
func (r *Result) CountAtLeast(level Severity) int {
	if r == nil {
		return 0
	}
	count := 0
	for _, issue := range r.Issues {
		if issue.Severity >= level {
			count++
		}
	}
	return count
}

// AutoFixableCount returns the count of issues that can be auto-fixed.
func (r *Result) AutoFixableCount() int {
	if r == nil {
		return 0
	}
	count := 0
	for _, issue := range r.Issues {
		if issue.CanAutoFix {
			count++
		}
	}
	return count
}

// FixResult is the outcome of auto-fixing one file.
//
// Thread Safety: Immutable after creation by the runner.
type FixResult struct {
	// File is the fixed path.
	File string `json:"file"`

	// Original is the content before fixing.
	Original []byte `json:"-"`

	// Fixed is the content after every pass.
	Fixed []byte `json:"-"`

	// Passes counts the lint passes run, including the final clean one.
	Passes int `json:"passes"`

	// Corrections counts the issues whose edits were applied.
	Corrections int `json:"corrections"`

	// Remaining is the lint result of the fixed content.
	Remaining *Result `json:"remaining"`

	// Written is true when the fixed content was saved to File.
	Written bool `json:"written"`
}

// Changed reports whether fixing altered the content.
func (f *FixResult) Changed() bool {
	return string(f.Original) != string(f.Fixed)
}
