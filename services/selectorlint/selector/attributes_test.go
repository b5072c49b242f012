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
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func str(text string) Value { return Value{Kind: ValueString, Text: text} }

var bare = Value{Kind: ValueNil}

func TestAttributes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Attribute
	}{
		{
			name:  "bare attribute with word and hyphen chars",
			input: "a[foo-bar_baz]",
			want:  []Attribute{{Key: "foo-bar_baz", Value: bare}},
		},
		{
			name:  "unquoted value",
			input: "table[foo=bar]",
			want:  []Attribute{{Key: "foo", Value: str("'bar'")}},
		},
		{
			name:  "multiple clauses keep order",
			input: "button[foo][bar=baz]",
			want: []Attribute{
				{Key: "foo", Value: bare},
				{Key: "bar", Value: str("'baz'")},
			},
		},
		{
			name:  "booleans",
			input: "[disabled=true][checked=false]",
			want: []Attribute{
				{Key: "disabled", Value: Value{Kind: ValueTrue}},
				{Key: "checked", Value: Value{Kind: ValueFalse}},
			},
		},
		{
			name:  "quoted value with brackets",
			input: `[foo="bar[baz]"]`,
			want:  []Attribute{{Key: "foo", Value: str("'bar[baz]'")}},
		},
		{
			name:  "quoted value with two bracket groups",
			input: `[foo="bar[baz][qux]"]`,
			want:  []Attribute{{Key: "foo", Value: str("'bar[baz][qux]'")}},
		},
		{
			name:  "single quoted value containing double quote",
			input: `[title='say "hi"']`,
			want:  []Attribute{{Key: "title", Value: str("'say hi'")}},
		},
		{
			name:  "equals inside quotes does not split",
			input: `[data-x="a=b"]`,
			want:  []Attribute{{Key: "data-x", Value: str("'a=b'")}},
		},
		{
			name:  "first unquoted equals splits",
			input: `[href=a=b]`,
			want:  []Attribute{{Key: "href", Value: str("'a=b'")}},
		},
		{
			name:  "empty value is nil",
			input: `[foo=]`,
			want:  []Attribute{{Key: "foo", Value: bare}},
		},
		{
			name:  "empty brackets give empty key",
			input: `a[]`,
			want:  []Attribute{{Key: "", Value: bare}},
		},
		{
			name:  "repeated key keeps first position and last value",
			input: `[a=1][b=2][a=3]`,
			want: []Attribute{
				{Key: "a", Value: str("'3'")},
				{Key: "b", Value: str("'2'")},
			},
		},
		{
			name:  "escaped bracket is literal",
			input: `[foo=a\]b]`,
			want:  []Attribute{{Key: "foo", Value: str(`'a\]b'`)}},
		},
		{
			name:  "no attributes",
			input: "h1.cls#id",
			want:  []Attribute{},
		},
		{
			name:  "stray closing bracket ignored",
			input: "a]b[c=d]",
			want:  []Attribute{{Key: "c", Value: str("'d'")}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Attributes(tt.input)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got.All()); diff != "" {
				t.Errorf("Attributes(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestAttributes_Unterminated(t *testing.T) {
	inputs := []string{
		"[foo",
		`a[foo="bar]"`,
		"a[x=1][y",
		"[[a]",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			got, err := Attributes(input)
			require.Error(t, err)
			assert.Nil(t, got)
			assert.True(t, errors.Is(err, ErrMalformedSelector))

			var syn *SyntaxError
			require.True(t, errors.As(err, &syn))
			assert.Equal(t, input, syn.Selector)
		})
	}
}

func TestAttributes_UnterminatedOffset(t *testing.T) {
	_, err := Attributes("a[x=1][y")
	var syn *SyntaxError
	require.True(t, errors.As(err, &syn))
	assert.Equal(t, 6, syn.Offset)
}

func TestAttributeMap_Accessors(t *testing.T) {
	m, err := Attributes("input[id=foo][type=text]")
	require.NoError(t, err)

	assert.Equal(t, 2, m.Len())
	assert.Equal(t, []string{"id", "type"}, m.Keys())
	assert.True(t, m.Has("id"))
	assert.False(t, m.Has("class"))

	v, ok := m.Get("id")
	require.True(t, ok)
	assert.Equal(t, "foo", v.Unquoted())
	assert.Equal(t, "'foo'", v.String())

	_, ok = m.Get("missing")
	assert.False(t, ok)
}

func TestAttributeMap_Nil(t *testing.T) {
	var m *AttributeMap
	assert.Equal(t, 0, m.Len())
	assert.Empty(t, m.Keys())
	assert.Empty(t, m.All())
	assert.False(t, m.Has("x"))
}

func TestAttributeMap_AllReturnsCopy(t *testing.T) {
	m, err := Attributes("[a=1]")
	require.NoError(t, err)

	all := m.All()
	all[0].Key = "changed"

	assert.Equal(t, []string{"a"}, m.Keys())
}

func TestNormalizeValue(t *testing.T) {
	tests := []struct {
		raw     string
		present bool
		want    string
	}{
		{"", false, "nil"},
		{"", true, "nil"},
		{"true", true, "true"},
		{"false", true, "false"},
		{"bar", true, "'bar'"},
		{`"bar"`, true, "'bar'"},
		{`'bar'`, true, "'bar'"},
		{`"it's"`, true, "'its'"},
		{"True", true, "'True'"},
	}

	for _, tt := range tests {
		got := NormalizeValue(tt.raw, tt.present).String()
		if got != tt.want {
			t.Errorf("NormalizeValue(%q, %v) = %s, want %s", tt.raw, tt.present, got, tt.want)
		}
	}
}

func TestValueKind_String(t *testing.T) {
	assert.Equal(t, "nil", ValueNil.String())
	assert.Equal(t, "string", ValueString.String())
	assert.Equal(t, "unknown", ValueKind(42).String())
}

func TestIsAttribute(t *testing.T) {
	assert.True(t, IsAttribute("[foo]"))
	assert.True(t, IsAttribute("[id=bar]"))
	assert.False(t, IsAttribute("a[foo]"))
	assert.False(t, IsAttribute(""))
}

func TestStripClauses(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"a[href='x:y']:hover", "a:hover"},
		{"a[x][y]b", "ab"},
		{"a[x]b[unterminated", "ab[unterminated"},
		{"plain", "plain"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, stripClauses(tt.input), tt.input)
	}
}

// Quote characters are removed without regard to escapes, so a backslash
// that escaped a quote is kept in the value. Escaped quotes inside
// attribute values are not unescaped.
func TestNormalizeValue_EscapedQuoteKeepsBackslash(t *testing.T) {
	m, err := Attributes(`[x="a\"]"]`)
	require.NoError(t, err)
	v, ok := m.Get("x")
	require.True(t, ok)
	assert.Equal(t, `'a\]'`, v.String())
	assert.Equal(t, `'a\'`, NormalizeValue(`"a\"`, true).String())
}
