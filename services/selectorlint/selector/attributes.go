// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package selector

import (
	"strings"
)

// =============================================================================
// ATTRIBUTE VALUES
// =============================================================================

// ValueKind classifies a normalized attribute value.
type ValueKind int

const (
	// ValueNil is a bare attribute such as [disabled].
	ValueNil ValueKind = iota

	// ValueTrue is the literal token true.
	ValueTrue

	// ValueFalse is the literal token false.
	ValueFalse

	// ValueString is any other value, held as a single-quoted literal.
	ValueString
)

// String returns the kind name.
func (k ValueKind) String() string {
	switch k {
	case ValueNil:
		return "nil"
	case ValueTrue:
		return "true"
	case ValueFalse:
		return "false"
	case ValueString:
		return "string"
	default:
		return "unknown"
	}
}

// Value is a normalized attribute value.
//
// Thread Safety: Immutable.
type Value struct {
	// Kind classifies the value.
	Kind ValueKind

	// Text is the single-quoted literal for ValueString (e.g. 'baz'),
	// empty otherwise.
	Text string
}

// NormalizeValue converts a raw attribute value into its normalized form.
//
// Description:
//
//	The literal tokens true and false become booleans. An absent or empty
//	value is nil. Anything else is wrapped in single quotes after every
//	embedded " and ' character is removed.
//
// Inputs:
//
//	raw     - Text to the right of the first unquoted '='.
//	present - Whether the clause contained an '=' at all.
//
// Outputs:
//
//	Value - The normalized value.
func NormalizeValue(raw string, present bool) Value {
	if !present || raw == "" {
		return Value{Kind: ValueNil}
	}
	switch raw {
	case "true":
		return Value{Kind: ValueTrue}
	case "false":
		return Value{Kind: ValueFalse}
	}
	stripped := strings.NewReplacer(`"`, "", `'`, "").Replace(raw)
	return Value{Kind: ValueString, Text: "'" + stripped + "'"}
}

// IsNil reports whether the attribute was bare.
func (v Value) IsNil() bool {
	return v.Kind == ValueNil
}

// Unquoted returns the string value without its surrounding quotes.
func (v Value) Unquoted() string {
	if v.Kind != ValueString || len(v.Text) < 2 {
		return ""
	}
	return v.Text[1 : len(v.Text)-1]
}

// String renders the value as Ruby source: 'text', true, false or nil.
func (v Value) String() string {
	switch v.Kind {
	case ValueTrue:
		return "true"
	case ValueFalse:
		return "false"
	case ValueString:
		return v.Text
	default:
		return "nil"
	}
}

// =============================================================================
// ATTRIBUTE MAP
// =============================================================================

// Attribute is one key/value pair in source order.
type Attribute struct {
	Key   string
	Value Value
}

// AttributeMap is an ordered mapping from attribute name to value.
//
// Description:
//
//	Keys keep the position of their first occurrence. A repeated key takes
//	the value of its last occurrence. A nil *AttributeMap behaves as empty.
//
// Thread Safety: Immutable once returned by Attributes.
type AttributeMap struct {
	attrs []Attribute
	index map[string]int
}

func newAttributeMap() *AttributeMap {
	return &AttributeMap{index: make(map[string]int)}
}

func (m *AttributeMap) set(key string, value Value) {
	if i, ok := m.index[key]; ok {
		m.attrs[i].Value = value
		return
	}
	m.index[key] = len(m.attrs)
	m.attrs = append(m.attrs, Attribute{Key: key, Value: value})
}

// Get returns the value for key.
func (m *AttributeMap) Get(key string) (Value, bool) {
	if m == nil {
		return Value{}, false
	}
	i, ok := m.index[key]
	if !ok {
		return Value{}, false
	}
	return m.attrs[i].Value, true
}

// Has reports whether key is present.
func (m *AttributeMap) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Len returns the number of distinct keys.
func (m *AttributeMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.attrs)
}

// Keys returns the keys in source order.
func (m *AttributeMap) Keys() []string {
	keys := make([]string, 0, m.Len())
	if m == nil {
		return keys
	}
	for _, a := range m.attrs {
		keys = append(keys, a.Key)
	}
	return keys
}

// All returns a copy of the pairs in source order.
func (m *AttributeMap) All() []Attribute {
	if m == nil {
		return []Attribute{}
	}
	out := make([]Attribute, len(m.attrs))
	copy(out, m.attrs)
	return out
}

// =============================================================================
// BRACKET SCANNER
// =============================================================================

// clause is one top-level [...] span.
type clause struct {
	// text is the content between the outermost brackets.
	text string

	// start is the offset of the opening '['.
	start int

	// end is the offset just past the closing ']'.
	end int
}

// scanClauses walks s once, tracking bracket depth and quoting.
//
// Description:
//
//	A '[' outside quotes increments the depth and opens a clause on the
//	0→1 transition; ']' decrements it and closes the clause on 1→0. A quote
//	character opens a quoted run unless one is already open, and only the
//	same character closes it. Inside quotes brackets are plain text. A
//	backslash escapes the following byte.
//
// Outputs:
//
//	[]clause - Closed top-level clauses in source order.
//	int      - Offset of an unterminated top-level '[', or -1.
func scanClauses(s string) ([]clause, int) {
	var (
		clauses []clause
		depth   int
		quote   byte
		start   = -1
	)

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\':
			i++
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '[':
			depth++
			if depth == 1 {
				start = i
			}
		case c == ']':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				clauses = append(clauses, clause{text: s[start+1 : i], start: start, end: i + 1})
			}
		}
	}

	if depth > 0 {
		return clauses, start
	}
	return clauses, -1
}

// scanAttributeClauses returns the raw text of each top-level attribute clause.
//
// Outputs:
//
//	[]string - Clause texts, e.g. `foo="bar[baz][qux]"`.
//	error    - *SyntaxError wrapping ErrMalformedSelector when a bracket is
//	           never closed.
func scanAttributeClauses(s string) ([]string, error) {
	clauses, open := scanClauses(s)
	if open >= 0 {
		return nil, &SyntaxError{Selector: s, Offset: open, Message: "unterminated attribute bracket"}
	}
	texts := make([]string, len(clauses))
	for i, c := range clauses {
		texts[i] = c.text
	}
	return texts, nil
}

// stripClauses removes every closed top-level clause from s. An
// unterminated tail is left in place.
func stripClauses(s string) string {
	clauses, _ := scanClauses(s)
	if len(clauses) == 0 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	prev := 0
	for _, c := range clauses {
		b.WriteString(s[prev:c.start])
		prev = c.end
	}
	b.WriteString(s[prev:])
	return b.String()
}

// splitClause splits a clause on its first unquoted '='.
func splitClause(text string) (key, value string, hasValue bool) {
	var quote byte
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '\\':
			i++
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '=':
			return text[:i], text[i+1:], true
		}
	}
	return text, "", false
}

// =============================================================================
// PUBLIC API
// =============================================================================

// IsAttribute reports whether s starts with an attribute bracket.
func IsAttribute(s string) bool {
	return strings.HasPrefix(s, "[")
}

// Attributes extracts the ordered attribute mapping of a selector.
//
// Description:
//
//	Runs the bracket scanner, splits each clause on its first unquoted '='
//	and normalizes the value (see NormalizeValue). Brackets nested inside a
//	quoted value stay part of that value.
//
// Inputs:
//
//	s - Selector string, e.g. `button[foo][bar=baz]`.
//
// Outputs:
//
//	*AttributeMap - Ordered mapping; empty when s has no brackets.
//	error         - ErrMalformedSelector (as *SyntaxError) for an
//	                unterminated bracket.
//
// Example:
//
//	attrs, _ := Attributes(`[foo="bar[baz][qux]"]`)
//	v, _ := attrs.Get("foo") // v.Text == "'bar[baz][qux]'"
func Attributes(s string) (*AttributeMap, error) {
	clauses, err := scanAttributeClauses(s)
	if err != nil {
		return nil, err
	}
	m := newAttributeMap()
	for _, text := range clauses {
		key, raw, ok := splitClause(text)
		m.set(key, NormalizeValue(raw, ok))
	}
	return m, nil
}
