// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package cops holds the rules that inspect element-lookup calls in Ruby
// browser tests and propose source edits.
//
// Each rule implements Cop. The lint runner dispatches every parsed call to
// the rules whose Methods() contain the call's method name. A rule reports
// offenses through a Reporter and, when a rewrite is safe, attaches edits
// built with a Corrector.
package cops

import (
	"sort"

	"github.com/AleutianAI/selectorlint/services/selectorlint/ast"
)

// Cop is one rule.
//
// Thread Safety:
//
//	Implementations must be stateless after construction so one instance
//	can check calls from many files concurrently.
type Cop interface {
	// Name returns the rule name used in configuration, e.g. "ChainedFind".
	Name() string

	// Description returns a one-line summary.
	Description() string

	// Methods returns the method names the rule inspects.
	Methods() []string

	// Check inspects one call and reports offenses to r.
	Check(call *ast.Call, r *Reporter)
}

// Options configures a rule at construction.
type Options struct {
	// EnforcedStyle selects a style for rules that have more than one.
	// Empty selects the rule's default.
	EnforcedStyle string
}

// =============================================================================
// EDITS
// =============================================================================

// Edit replaces the bytes [Start, End) with NewText. An insertion has
// Start == End.
type Edit struct {
	Start   int    `json:"start"`
	End     int    `json:"end"`
	NewText string `json:"new_text"`
}

// Overlaps reports whether two edits touch the same bytes. An insertion at
// the boundary of a removal does not overlap it.
func (e Edit) Overlaps(other Edit) bool {
	if e.Start == e.End && other.Start == other.End {
		return e.Start == other.Start
	}
	return e.Start < other.End && other.Start < e.End
}

// Corrector collects the edits of one offense.
type Corrector struct {
	edits []Edit
}

// Replace substitutes the text of s.
func (c *Corrector) Replace(s ast.Span, text string) {
	c.edits = append(c.edits, Edit{Start: s.Start, End: s.End, NewText: text})
}

// Remove deletes the text of s.
func (c *Corrector) Remove(s ast.Span) {
	c.RemoveRange(s.Start, s.End)
}

// RemoveRange deletes the bytes [start, end).
func (c *Corrector) RemoveRange(start, end int) {
	c.edits = append(c.edits, Edit{Start: start, End: end})
}

// InsertAfter inserts text right after s.
func (c *Corrector) InsertAfter(s ast.Span, text string) {
	c.edits = append(c.edits, Edit{Start: s.End, End: s.End, NewText: text})
}

// InsertBefore inserts text right before s.
func (c *Corrector) InsertBefore(s ast.Span, text string) {
	c.edits = append(c.edits, Edit{Start: s.Start, End: s.Start, NewText: text})
}

// Edits returns the collected edits sorted by (Start, End).
func (c *Corrector) Edits() []Edit {
	out := make([]Edit, len(c.edits))
	copy(out, c.edits)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Start != out[j].Start {
			return out[i].Start < out[j].Start
		}
		return out[i].End < out[j].End
	})
	return out
}

// =============================================================================
// OFFENSES
// =============================================================================

// Offense is one reported problem.
type Offense struct {
	// Cop is the reporting rule's name.
	Cop string

	// Message describes the problem.
	Message string

	// Span is the highlighted source range.
	Span ast.Span

	// Edits fix the problem. Empty for flag-only offenses.
	Edits []Edit
}

// Correctable reports whether the offense carries edits.
func (o Offense) Correctable() bool {
	return len(o.Edits) > 0
}

// Reporter accumulates the offenses of one rule.
type Reporter struct {
	cop      string
	offenses []Offense
}

// NewReporter creates a Reporter for the named rule.
func NewReporter(cop string) *Reporter {
	return &Reporter{cop: cop}
}

// Add reports a flag-only offense.
func (r *Reporter) Add(span ast.Span, message string) {
	r.offenses = append(r.offenses, Offense{Cop: r.cop, Message: message, Span: span})
}

// AddCorrectable reports an offense and records the edits fix makes. A fix
// that records nothing leaves the offense flag-only.
func (r *Reporter) AddCorrectable(span ast.Span, message string, fix func(*Corrector)) {
	var c Corrector
	if fix != nil {
		fix(&c)
	}
	o := Offense{Cop: r.cop, Message: message, Span: span}
	if len(c.edits) > 0 {
		o.Edits = c.Edits()
	}
	r.offenses = append(r.offenses, o)
}

// Offenses returns the offenses reported so far.
func (r *Reporter) Offenses() []Offense {
	return r.offenses
}

// Reset clears the reporter for reuse.
func (r *Reporter) Reset() {
	r.offenses = nil
}

// spanBetween joins the start of a and the end of b.
func spanBetween(a, b ast.Span) ast.Span {
	return ast.Span{
		Start:       a.Start,
		StartLine:   a.StartLine,
		StartColumn: a.StartColumn,
		End:         b.End,
		EndLine:     b.EndLine,
		EndColumn:   b.EndColumn,
	}
}
