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

// combinators are the characters that join compound selectors. The
// descendant combinator is a space.
const combinators = " >,+~"

// isIDTerminator reports whether c ends the id segment of a selector.
func isIDTerminator(c byte) bool {
	switch c {
	case '>', ',', '+', '~', '.', ' ', '\t', '\n', '\r', '\f':
		return true
	}
	return false
}

// isClassChar reports whether c may appear in a class name. Matches the
// ASCII word class plus hyphen.
func isClassChar(c byte) bool {
	return c == '-' || c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}

// IsID reports whether s starts with an id selector.
func IsID(s string) bool {
	return strings.HasPrefix(s, "#")
}

// ID returns the leading id token of s.
//
// Description:
//
//	Strips the leading '#' and cuts at the first unescaped character that
//	starts a class, a combinator or a selector-list separator. A backslash
//	escapes the following character, so `#some-id\.id` keeps
//	`some-id\.id` verbatim. An escaped '#' inside the id is not supported.
//
// Outputs:
//
//	string - The id token, escapes kept as written.
//	bool   - False when s does not start with '#'.
//
// Example:
//
//	ID("#a.b") // "a", true
//	ID(".b")   // "", false
func ID(s string) (string, bool) {
	if !IsID(s) {
		return "", false
	}
	rest := s[1:]
	for i := 0; i < len(rest); i++ {
		c := rest[i]
		if c == '\\' {
			i++
			continue
		}
		if isIDTerminator(c) {
			return rest[:i], true
		}
	}
	return rest, true
}

// Classes returns every class name in s, in order, duplicates kept.
//
// Each unescaped '.' starts a class whose name is the run of word and
// hyphen characters that follows. The run may be empty.
func Classes(s string) []string {
	classes := []string{}
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '.':
			j := i + 1
			for j < len(s) && isClassChar(s[j]) {
				j++
			}
			classes = append(classes, s[i+1:j])
			i = j - 1
		}
	}
	return classes
}

// PseudoClasses returns the pseudo-class tokens of s.
//
// Description:
//
//	Top-level attribute clauses are removed first so colons inside
//	attribute values are never read as separators. Each remaining unescaped
//	':' then yields the text up to the next unescaped ':' or the end.
//	Because bracket contents are gone, a functional pseudo-class such as
//	:not([disabled]) surfaces as "not()".
//
// Example:
//
//	PseudoClasses("a:not([href='http://x.com']):enabled") // ["not()", "enabled"]
func PseudoClasses(s string) []string {
	stripped := stripClauses(s)

	var colons []int
	for i := 0; i < len(stripped); i++ {
		switch stripped[i] {
		case '\\':
			i++
		case ':':
			colons = append(colons, i)
		}
	}

	pseudo := make([]string, 0, len(colons))
	for n, at := range colons {
		end := len(stripped)
		if n+1 < len(colons) {
			end = colons[n+1]
		}
		pseudo = append(pseudo, stripped[at+1:end])
	}
	return pseudo
}

// MultipleSelectors reports whether s joins more than one compound
// selector.
//
// Description:
//
//	Backslash-escaped characters and balanced parenthesized spans are
//	ignored, then any remaining space, '>', ',', '+' or '~' makes the
//	selector multiple. An unbalanced '(' is literal text.
//
//	A pseudo-class argument that is itself a complex selector, such as
//	:has(a b), is hidden by the parenthesis rule and classified as single.
//
// Example:
//
//	MultipleSelectors(`a.cls>b`)  // true
//	MultipleSelectors(`a.cls\>b`) // false
func MultipleSelectors(s string) bool {
	unescaped := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' {
			i++
			continue
		}
		unescaped = append(unescaped, s[i])
	}

	hidden := make([]bool, len(unescaped))
	var open []int
	for i, c := range unescaped {
		switch c {
		case '(':
			open = append(open, i)
		case ')':
			if len(open) == 0 {
				continue
			}
			start := open[len(open)-1]
			open = open[:len(open)-1]
			for j := start; j <= i; j++ {
				hidden[j] = true
			}
		}
	}

	for i, c := range unescaped {
		if !hidden[i] && strings.IndexByte(combinators, c) >= 0 {
			return true
		}
	}
	return false
}
