// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ast

import (
	"fmt"
)

// =============================================================================
// SOURCE SPANS
// =============================================================================

// Span locates a piece of source text.
//
// Start and End are byte offsets (End exclusive). Lines are 1-indexed and
// columns are 0-indexed byte columns, matching tree-sitter points.
type Span struct {
	Start       int `json:"start"`
	End         int `json:"end"`
	StartLine   int `json:"start_line"`
	StartColumn int `json:"start_column"`
	EndLine     int `json:"end_line"`
	EndColumn   int `json:"end_column"`
}

// Len returns the span length in bytes.
func (s Span) Len() int {
	return s.End - s.Start
}

// IsZero reports whether the span is unset.
func (s Span) IsZero() bool {
	return s == Span{}
}

// Contains reports whether other lies entirely within s.
func (s Span) Contains(other Span) bool {
	return other.Start >= s.Start && other.End <= s.End
}

// String formats the span as line:col-line:col.
func (s Span) String() string {
	return fmt.Sprintf("%d:%d-%d:%d", s.StartLine, s.StartColumn, s.EndLine, s.EndColumn)
}

// =============================================================================
// EXPRESSIONS
// =============================================================================

// Expr is a receiver expression: either a *Call or an *Opaque.
type Expr interface {
	// Range returns the expression's span in the source.
	Range() Span

	// Text returns the expression's source text.
	Text() string
}

// Opaque is any receiver expression that is not a method call, such as a
// local variable, constant or literal.
type Opaque struct {
	// Kind is the syntax node type, e.g. "identifier" or "constant".
	Kind string

	Loc Span
	Src string
}

// Range implements Expr.
func (o *Opaque) Range() Span { return o.Loc }

// Text implements Expr.
func (o *Opaque) Text() string { return o.Src }

// Call is one method call expression.
//
// Description:
//
//	Call is the shared input of every rule and of the chain combiner. It
//	carries the method name, the receiver (nil when the call has none),
//	ordered arguments and whether a trailing block is attached. Spans let
//	callers substitute text without knowing the source layout.
//
// Thread Safety: Immutable after parsing.
type Call struct {
	// Method is the called method name, e.g. "find".
	Method string

	// Receiver is the expression the method is called on, nil for a
	// receiverless call such as find('#foo').
	Receiver Expr

	// Operator is the call operator between receiver and method: ".",
	// "&." or "::". Empty without a receiver.
	Operator string

	// Args are the arguments in source order. Keyword arguments appear as
	// ArgPair entries.
	Args []Arg

	// Parens reports whether the arguments are wrapped in parentheses.
	Parens bool

	// Block reports whether a trailing { } or do/end block is attached.
	Block bool

	// Loc spans the whole call including any block.
	Loc Span

	// MethodLoc spans the method name only.
	MethodLoc Span

	// ArgsLoc spans the argument list including parentheses. Zero when the
	// call has no argument list.
	ArgsLoc Span

	// BlockLoc spans the block. Zero without a block.
	BlockLoc Span

	// Src is the source text of Loc.
	Src string

	// ReceiverOf is the call that uses this call as its receiver, if any.
	ReceiverOf *Call
}

// Range implements Expr.
func (c *Call) Range() Span { return c.Loc }

// Text implements Expr.
func (c *Call) Text() string { return c.Src }

// IsMethod reports whether the call's method is one of names.
func (c *Call) IsMethod(names ...string) bool {
	if c == nil {
		return false
	}
	for _, n := range names {
		if c.Method == n {
			return true
		}
	}
	return false
}

// HasReceiver reports whether the call has an explicit receiver.
func (c *Call) HasReceiver() bool {
	return c != nil && c.Receiver != nil
}

// ReceiverCall returns the receiver when it is itself a call.
func (c *Call) ReceiverCall() (*Call, bool) {
	if c == nil || c.Receiver == nil {
		return nil, false
	}
	rc, ok := c.Receiver.(*Call)
	return rc, ok
}

// FirstArg returns the first argument.
func (c *Call) FirstArg() (*Arg, bool) {
	return c.Arg(0)
}

// Arg returns the argument at index i.
func (c *Call) Arg(i int) (*Arg, bool) {
	if c == nil || i < 0 || i >= len(c.Args) {
		return nil, false
	}
	return &c.Args[i], true
}

// StringArg returns the decoded value of argument i when it is a plain
// string literal.
func (c *Call) StringArg(i int) (string, bool) {
	a, ok := c.Arg(i)
	if !ok || a.Kind != ArgString {
		return "", false
	}
	return a.Value, true
}

// SymbolArg returns the name of argument i when it is a symbol literal.
func (c *Call) SymbolArg(i int) (string, bool) {
	a, ok := c.Arg(i)
	if !ok || a.Kind != ArgSymbol {
		return "", false
	}
	return a.Value, true
}

// FindPair returns the keyword argument named key.
func (c *Call) FindPair(key string) (*Arg, bool) {
	if c == nil {
		return nil, false
	}
	for i := range c.Args {
		if c.Args[i].Kind == ArgPair && c.Args[i].Key == key {
			return &c.Args[i], true
		}
	}
	return nil, false
}

// Pairs returns the keyword arguments in source order.
func (c *Call) Pairs() []*Arg {
	var pairs []*Arg
	for i := range c.Args {
		if c.Args[i].Kind == ArgPair {
			pairs = append(pairs, &c.Args[i])
		}
	}
	return pairs
}

// Outermost walks from c to the outermost call that uses it, directly or
// transitively, as a receiver.
func (c *Call) Outermost() *Call {
	out := c
	for out != nil && out.ReceiverOf != nil {
		out = out.ReceiverOf
	}
	return out
}

// =============================================================================
// ARGUMENTS
// =============================================================================

// ArgKind tags an argument.
type ArgKind int

const (
	// ArgOther is anything without a more specific tag.
	ArgOther ArgKind = iota

	// ArgString is a plain string literal without interpolation.
	ArgString

	// ArgSymbol is a plain symbol literal such as :css.
	ArgSymbol

	// ArgPair is a keyword argument such as text: 'x'.
	ArgPair

	// ArgArray is an array literal.
	ArgArray

	// ArgCall is a method call.
	ArgCall
)

// String returns the kind name.
func (k ArgKind) String() string {
	switch k {
	case ArgString:
		return "string"
	case ArgSymbol:
		return "symbol"
	case ArgPair:
		return "pair"
	case ArgArray:
		return "array"
	case ArgCall:
		return "call"
	default:
		return "other"
	}
}

// Arg is one call argument.
type Arg struct {
	Kind ArgKind

	// Value is the decoded string for ArgString and the symbol name for
	// ArgSymbol.
	Value string

	// Quote is the opening quote character of an ArgString.
	Quote byte

	Loc Span
	Src string

	// Key and Val are set for ArgPair.
	Key string
	Val *Arg

	// Elems are the elements of an ArgArray.
	Elems []Arg

	// Call is set for ArgCall.
	Call *Call
}

// IsString reports whether the argument is a plain string literal.
func (a *Arg) IsString() bool {
	return a != nil && a.Kind == ArgString
}
