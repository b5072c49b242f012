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
	"testing"

	"github.com/stretchr/testify/assert"
	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

func TestEscape(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lone hyphen", "-", `\-`},
		{"nul", "\x00", "�"},
		{"control characters", "abc\x01\x1F\x7Fdef", `abc\1 \1f \7f def`},
		{"leading digit", "1abc", `\31 abc`},
		{"hyphen then digit", "-1abc", `-\31 abc`},
		{"digit after other char", "a1", "a1"},
		{"identifier chars", "a-Z_0-9", "a-Z_0-9"},
		{"punctuation", "a!b@c#d$", `a\!b\@c\#d\$`},
		{"nul and delete", "ab\x00\x7F", "ab�\\7f "},
		{"dot", "foo.bar", `foo\.bar`},
		{"space", "a b", `a\ b`},
		{"non-ascii kept", "héllo☃", "héllo☃"},
		{"double hyphen", "--x", "--x"},
		{"hyphen not alone", "-a", "-a"},
		{"second digit only after hyphen", "a-1", "a-1"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Escape(tt.input))
		})
	}
}

func TestEscape_IdentityOnSafeStrings(t *testing.T) {
	inputs := []string{"foo", "foo-bar", "foo_bar", "Foo123", "a-Z_0-9", "_x", "ünïcödé"}
	for _, s := range inputs {
		assert.Equal(t, s, Escape(s), s)
	}
}

// The escaped form must lex back as exactly one CSS identifier token.
func TestEscape_LexesAsSingleIdent(t *testing.T) {
	inputs := []string{
		"-",
		"1abc",
		"-1abc",
		"a!b@c#d$",
		"foo.bar",
		"foo bar",
		"abc\x01\x1F\x7Fdef",
		"héllo",
		"[x]",
	}

	for _, s := range inputs {
		t.Run(s, func(t *testing.T) {
			escaped := Escape(s)
			lexer := css.NewLexer(parse.NewInputString(escaped))

			tt, text := lexer.Next()
			assert.Equal(t, css.IdentToken, tt, "escaped %q", escaped)
			assert.Equal(t, escaped, string(text))

			next, _ := lexer.Next()
			assert.Equal(t, css.ErrorToken, next, "trailing tokens after %q", escaped)
		})
	}
}
