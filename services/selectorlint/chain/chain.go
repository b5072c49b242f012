// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package chain decides whether chained element-lookup calls can be merged
// into a single lookup with a descendant selector.
//
// A chain is a lookup call whose receiver is itself a lookup call, such as
// page.find('#foo').find('.bar'). When every link has exactly one plain
// string argument and no block, the chain merges into
// page.find('#foo .bar'). Otherwise the chain is still reported but no
// rewrite is proposed.
package chain

import (
	"strings"

	"github.com/AleutianAI/selectorlint/services/selectorlint/ast"
)

// DefaultMethod is the lookup method merged when none is configured.
const DefaultMethod = "find"

// =============================================================================
// DECISIONS AND STATES
// =============================================================================

// Decision is the outcome for one finding.
type Decision int

const (
	// Merge means every link is simple and the chain can be rewritten.
	Merge Decision = iota

	// UnsafeMerge means at least one link carries extra arguments, a
	// non-literal argument or a block. The chain is flagged only.
	UnsafeMerge
)

// String returns the decision name.
func (d Decision) String() string {
	if d == Merge {
		return "merge"
	}
	return "unsafe_merge"
}

// State is the chain walk state.
type State int

const (
	// Scanning collects simple links.
	Scanning State = iota

	// Blocked means a link broke safety. The walk keeps counting links.
	Blocked

	// Root means the walk reached a non-lookup receiver with every link
	// simple.
	Root
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Scanning:
		return "scanning"
	case Blocked:
		return "blocked"
	case Root:
		return "root"
	default:
		return "unknown"
	}
}

// =============================================================================
// FINDINGS
// =============================================================================

// Replacement is a proposed substitution of one source span.
type Replacement struct {
	Span ast.Span
	Text string
}

// Finding reports one lookup call whose receiver is also a lookup call.
type Finding struct {
	// Call is the reported link.
	Call *ast.Call

	// Links are the lookup links from Call inward, outermost first.
	Links []*ast.Call

	// Merged is the space-joined selector in source order. Empty unless
	// Decision is Merge.
	Merged string

	// Decision tells whether the links from Call inward are all simple.
	Decision Decision

	// State is the final walk state for this finding's links.
	State State

	// Outermost marks the finding for the maximal chain.
	Outermost bool

	// Replacement is set only on the outermost finding of a mergeable
	// chain.
	Replacement *Replacement
}

// Correctable reports whether the finding carries a rewrite.
func (f Finding) Correctable() bool {
	return f.Replacement != nil
}

// =============================================================================
// COMBINER
// =============================================================================

// Combiner merges chains of one lookup method.
//
// Thread Safety: Stateless after construction, safe for concurrent use.
type Combiner struct {
	// Method is the lookup method name, e.g. "find".
	Method string
}

// NewCombiner returns a Combiner for method, defaulting to DefaultMethod.
func NewCombiner(method string) *Combiner {
	if method == "" {
		method = DefaultMethod
	}
	return &Combiner{Method: method}
}

// IsLookup reports whether expr is a call to the lookup method.
func (c *Combiner) IsLookup(expr ast.Expr) (*ast.Call, bool) {
	if expr == nil {
		return nil, false
	}
	call, ok := expr.(*ast.Call)
	if !ok || call == nil || call.Method != c.Method {
		return nil, false
	}
	return call, true
}

// SimpleSelector returns the selector of a simple link: exactly one
// argument, a plain string literal, and no block.
func (c *Combiner) SimpleSelector(call *ast.Call) (string, bool) {
	if call == nil || call.Block || len(call.Args) != 1 {
		return "", false
	}
	return call.StringArg(0)
}

// IsMaximal reports whether call is a lookup that is not itself the
// receiver of another lookup, i.e. the head of its chain.
func (c *Combiner) IsMaximal(call *ast.Call) bool {
	if _, ok := c.IsLookup(call); !ok {
		return false
	}
	_, usedByLookup := c.IsLookup(exprOf(call.ReceiverOf))
	return !usedByLookup
}

// exprOf avoids wrapping a nil *ast.Call in a non-nil interface.
func exprOf(call *ast.Call) ast.Expr {
	if call == nil {
		return nil
	}
	return call
}

// Links returns the lookup links from outer inward, outermost first. It
// stops at the first receiver that is not a lookup call. A non-lookup
// outer yields nil.
func (c *Combiner) Links(outer *ast.Call) []*ast.Call {
	cur, ok := c.IsLookup(exprOf(outer))
	if !ok {
		return nil
	}
	var links []*ast.Call
	for ok {
		links = append(links, cur)
		cur, ok = c.IsLookup(cur.Receiver)
	}
	return links
}

// walk runs the state machine over links, outermost first.
func (c *Combiner) walk(links []*ast.Call) ([]string, State) {
	state := Scanning
	selectors := make([]string, 0, len(links))
	for _, link := range links {
		sel, ok := c.SimpleSelector(link)
		if !ok {
			state = Blocked
			break
		}
		selectors = append(selectors, sel)
	}
	if state == Scanning {
		state = Root
	}
	return selectors, state
}

// Combine reports every link of the chain headed by outer whose receiver is
// also a lookup.
//
// Description:
//
//	Findings are ordered innermost-out. Each finding covers the links from
//	its call inward and is Merge only when all of them are simple. Only the
//	outermost finding carries a Replacement, so a chain produces exactly
//	one non-overlapping edit.
//
// Inputs:
//
//	outer - Head of the chain. Findings for a non-maximal call are produced
//	        but the outermost one gets no Replacement.
//
// Outputs:
//
//	[]Finding - Empty for a single unchained lookup or a non-lookup call.
//
// Example:
//
//	findings := NewCombiner("find").Combine(call) // find('.a').find('.b').find('.c')
//	// findings[0].Merged == ".a .b", findings[1].Merged == ".a .b .c"
//	// findings[1].Replacement.Text == "find('.a .b .c')"
func (c *Combiner) Combine(outer *ast.Call) []Finding {
	links := c.Links(outer)
	if len(links) < 2 {
		return nil
	}

	maximal := c.IsMaximal(outer)
	findings := make([]Finding, 0, len(links)-1)

	for i := len(links) - 2; i >= 0; i-- {
		sub := links[i:]
		selectors, state := c.walk(sub)

		f := Finding{
			Call:      links[i],
			Links:     sub,
			Decision:  UnsafeMerge,
			State:     state,
			Outermost: i == 0 && maximal,
		}
		if state == Root {
			f.Decision = Merge
			f.Merged = joinSourceOrder(selectors)
		}
		if f.Outermost && f.Decision == Merge {
			f.Replacement = &Replacement{
				Span: links[0].Loc,
				Text: c.replacement(sub[len(sub)-1], f.Merged),
			}
		}
		findings = append(findings, f)
	}
	return findings
}

// joinSourceOrder joins selectors collected outermost first, so the
// innermost receiver's selector comes first as it does in the source.
func joinSourceOrder(selectors []string) string {
	parts := make([]string, len(selectors))
	for i, s := range selectors {
		parts[len(selectors)-1-i] = s
	}
	return strings.Join(parts, " ")
}

// replacement renders <root-receiver><op><method>('<merged>').
func (c *Combiner) replacement(innermost *ast.Call, merged string) string {
	lookup := c.Method + "(" + ast.Quote(merged, '\'') + ")"
	if innermost.Receiver == nil {
		return lookup
	}
	op := innermost.Operator
	if op == "" {
		op = "."
	}
	return innermost.Receiver.Text() + op + lookup
}
