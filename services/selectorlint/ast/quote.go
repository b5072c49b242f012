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
	"strconv"
	"strings"
	"unicode/utf8"
)

// QuoteLiteral returns the body of a Ruby string literal that decodes to
// value when wrapped in quote.
//
// Description:
//
//	For single quotes only ' and backslashes that would otherwise combine
//	with the next character are escaped, so `foo\.bar` stays as written.
//	For double quotes backslash and " are escaped, as is a '#' that would
//	start an interpolation.
//
// Inputs:
//
//	value - The decoded string.
//	quote - '\'' or '"'. Any other byte is treated as '\''.
//
// Outputs:
//
//	string - The literal body without the surrounding quotes.
//
// Example:
//
//	QuoteLiteral(`#foo\.bar`, '\'') // `#foo\.bar`
//	QuoteLiteral(`#foo\.bar`, '"')  // `#foo\\.bar`
func QuoteLiteral(value string, quote byte) string {
	var b strings.Builder
	b.Grow(len(value) + 4)

	if quote != '"' {
		for i := 0; i < len(value); i++ {
			c := value[i]
			switch c {
			case '\'':
				b.WriteString(`\'`)
			case '\\':
				if i+1 == len(value) || value[i+1] == '\'' || value[i+1] == '\\' {
					b.WriteString(`\\`)
				} else {
					b.WriteByte('\\')
				}
			default:
				b.WriteByte(c)
			}
		}
		return b.String()
	}

	for i := 0; i < len(value); i++ {
		c := value[i]
		switch c {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '#':
			if i+1 < len(value) && strings.IndexByte("{$@", value[i+1]) >= 0 {
				b.WriteString(`\#`)
			} else {
				b.WriteByte(c)
			}
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Quote wraps QuoteLiteral's output in the quote character.
func Quote(value string, quote byte) string {
	if quote != '"' {
		quote = '\''
	}
	q := string(quote)
	return q + QuoteLiteral(value, quote) + q
}

// decodeSingleQuoted decodes the body of a '...' literal. Only \\ and \'
// are escapes.
func decodeSingleQuoted(body string) string {
	if strings.IndexByte(body, '\\') < 0 {
		return body
	}
	var b strings.Builder
	b.Grow(len(body))
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c == '\\' && i+1 < len(body) && (body[i+1] == '\\' || body[i+1] == '\'') {
			b.WriteByte(body[i+1])
			i++
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// doubleQuotedEscapes maps single-character escapes of "..." literals.
var doubleQuotedEscapes = map[byte]string{
	'n': "\n", 't': "\t", 'r': "\r", 's': " ", 'e': "\x1b",
	'a': "\a", 'b': "\b", 'f': "\f", 'v': "\v",
}

// decodeDoubleQuoted decodes the body of a "..." literal without
// interpolation. Returns false for escapes it cannot decode.
func decodeDoubleQuoted(body string) (string, bool) {
	if strings.IndexByte(body, '\\') < 0 {
		return body, true
	}
	var b strings.Builder
	b.Grow(len(body))
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		if i+1 == len(body) {
			return "", false
		}
		i++
		next := body[i]
		if next >= '0' && next <= '7' {
			j := i
			for j < len(body) && j < i+3 && body[j] >= '0' && body[j] <= '7' {
				j++
			}
			v, _ := strconv.ParseUint(body[i:j], 8, 16)
			b.WriteByte(byte(v))
			i = j - 1
			continue
		}
		if s, ok := doubleQuotedEscapes[next]; ok {
			b.WriteString(s)
			continue
		}
		switch next {
		case '\n':
			// line continuation
		case 'u':
			r, n, ok := decodeUnicodeEscape(body[i+1:])
			if !ok {
				return "", false
			}
			b.WriteRune(r)
			i += n
		case 'x':
			j := i + 1
			for j < len(body) && j < i+3 && isHex(body[j]) {
				j++
			}
			if j == i+1 {
				return "", false
			}
			v, _ := strconv.ParseUint(body[i+1:j], 16, 8)
			b.WriteByte(byte(v))
			i = j - 1
		case 'c', 'C', 'M':
			return "", false
		default:
			b.WriteByte(next)
		}
	}
	return b.String(), true
}

// decodeUnicodeEscape reads the part of a \u escape after the 'u'. It
// returns the rune and the number of bytes consumed. The \u{a b} form
// with several code points is not supported.
func decodeUnicodeEscape(s string) (rune, int, bool) {
	if strings.HasPrefix(s, "{") {
		end := strings.IndexByte(s, '}')
		if end < 2 {
			return 0, 0, false
		}
		v, err := strconv.ParseUint(s[1:end], 16, 32)
		if err != nil || !utf8.ValidRune(rune(v)) {
			return 0, 0, false
		}
		return rune(v), end + 1, true
	}
	if len(s) < 4 {
		return 0, 0, false
	}
	v, err := strconv.ParseUint(s[:4], 16, 32)
	if err != nil || !utf8.ValidRune(rune(v)) {
		return 0, 0, false
	}
	return rune(v), 4, true
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
