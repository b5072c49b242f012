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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsID(t *testing.T) {
	inputs := []string{"#foo", "#", "foo", ".foo", "", " #foo", "[id=foo]", "#a.b c"}
	for _, s := range inputs {
		assert.Equal(t, strings.HasPrefix(s, "#"), IsID(s), "IsID(%q)", s)
	}
}

func TestID(t *testing.T) {
	tests := []struct {
		input  string
		want   string
		wantOK bool
	}{
		{"#some-id", "some-id", true},
		{"#a.b", "a", true},
		{`#some-id\.id`, `some-id\.id`, true},
		{"#foo>bar", "foo", true},
		{"#foo,#bar", "foo", true},
		{"#foo+bar", "foo", true},
		{"#foo~bar", "foo", true},
		{"#foo bar", "foo", true},
		{`#foo\>bar`, `foo\>bar`, true},
		{`#trailing\`, `trailing\`, true},
		{"#", "", true},
		{".b", "", false},
		{"foo#bar", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := ID(tt.input)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("ID(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestID_OKMatchesIsID(t *testing.T) {
	inputs := []string{"#a", "a", "#", ".x#y", "#x.y"}
	for _, s := range inputs {
		_, ok := ID(s)
		assert.Equal(t, IsID(s), ok, s)
	}
}

func TestID_NeverContainsUnescapedCombinator(t *testing.T) {
	inputs := []string{"#a>b", "#a, #b", "#a+b~c", "#a b", "#a.b>c"}
	for _, s := range inputs {
		id, _ := ID(s)
		assert.NotContains(t, id, ">")
		assert.NotContains(t, id, ",")
		assert.NotContains(t, id, "+")
		assert.NotContains(t, id, "~")
		assert.NotContains(t, id, " ")
	}
}

func TestClasses(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"#a.b", []string{"b"}},
		{".a.b", []string{"a", "b"}},
		{"div.a-b_c.d", []string{"a-b_c", "d"}},
		{".a.a", []string{"a", "a"}},
		{"#some-id", []string{}},
		{`#some-id\.id`, []string{}},
		{"a.cls[href=x]", []string{"cls"}},
		{".", []string{""}},
		{"", []string{}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Classes(tt.input), "Classes(%q)", tt.input)
	}
}

func TestPseudoClasses(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"button:not([disabled])", []string{"not()"}},
		{"a:enabled:not([valid])", []string{"enabled", "not()"}},
		{"a:not([href='http://x.com']):enabled", []string{"not()", "enabled"}},
		{"a[href='http://x.com']", []string{}},
		{"input:checked", []string{"checked"}},
		{"a::before", []string{"", "before"}},
		{`a\:b`, []string{}},
		{"#foo", []string{}},
		{"a[href='x:y':hover", []string{"y'", "hover"}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, PseudoClasses(tt.input), "PseudoClasses(%q)", tt.input)
	}
}

func TestMultipleSelectors(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"a b", true},
		{"a>b", true},
		{"a.cls>b", true},
		{"a, b", true},
		{"a+b", true},
		{"a~b", true},
		{"a.cls", false},
		{`a.cls\>b`, false},
		{`a\ b`, false},
		{"#foo", false},
		{"a:not(.x > .y)", false},
		{"a:not(.x) b", true},
		{"a:is(b, c):not(d)", false},
		{"a(b c", true},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, MultipleSelectors(tt.input), "MultipleSelectors(%q)", tt.input)
	}
}

// A complex selector inside a pseudo-class argument is hidden by the
// parenthesis rule, so :has(a b) reads as a single compound selector even
// though it relates two elements.
func TestMultipleSelectors_HasArgumentReadsAsSingle(t *testing.T) {
	assert.False(t, MultipleSelectors("div:has(a b)"))
}

func TestDecomposition_IsDeterministic(t *testing.T) {
	s := `#main.a.b[data-x="1"]:not([y]):hover`
	for i := 0; i < 3; i++ {
		id, _ := ID(s)
		assert.Equal(t, "main", id)
		assert.Equal(t, []string{"a", "b"}, Classes(s))
		assert.Equal(t, []string{"not()", "hover"}, PseudoClasses(s))
		assert.False(t, MultipleSelectors(s))
	}
}

// Whitespace is a descendant combinator and ends the id like '>' does.
func TestID_WhitespaceEndsID(t *testing.T) {
	for _, s := range []string{"#a b", "#a\tb", "#a\nb"} {
		id, ok := ID(s)
		assert.True(t, ok, s)
		assert.Equal(t, "a", id, s)
	}
}
