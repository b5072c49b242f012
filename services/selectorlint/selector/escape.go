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
	"strconv"
	"strings"
)

// replacementChar substitutes U+0000, which CSS cannot represent.
const replacementChar = '\uFFFD'

// Escape serializes s as a CSS identifier following CSS.escape.
//
// Description:
//
//	Rules, first match wins per code point:
//	  - a lone "-" becomes `\-`
//	  - U+0000 becomes U+FFFD
//	  - U+0001..U+001F and U+007F become a hex escape with a trailing space
//	  - a digit at position 0, or at position 1 after a leading '-', is
//	    hex escaped
//	  - ASCII letters, digits, '-', '_' and anything at or above U+0080 are
//	    kept
//	  - everything else is prefixed with a backslash
//
//	Positions count code points, not bytes.
//
// Inputs:
//
//	s - Arbitrary string. Invalid UTF-8 bytes are read as U+FFFD.
//
// Outputs:
//
//	string - The escaped identifier.
//
// Example:
//
//	Escape("1abc")  // `\31 abc`
//	Escape("a!b@c") // `a\!b\@c`
func Escape(s string) string {
	if s == "-" {
		return `\-`
	}

	var b strings.Builder
	b.Grow(len(s) + len(s)/4)

	var first rune
	pos := 0
	for _, r := range s {
		switch {
		case r == 0:
			b.WriteRune(replacementChar)
		case (r >= 0x01 && r <= 0x1F) || r == 0x7F:
			writeHexEscape(&b, r)
		case pos == 0 && isDigit(r):
			writeHexEscape(&b, r)
		case pos == 1 && isDigit(r) && first == '-':
			writeHexEscape(&b, r)
		case r >= 0x80 || r == '-' || r == '_' || isDigit(r) || isASCIILetter(r):
			b.WriteRune(r)
		default:
			b.WriteByte('\\')
			b.WriteRune(r)
		}
		if pos == 0 {
			first = r
		}
		pos++
	}
	return b.String()
}

func writeHexEscape(b *strings.Builder, r rune) {
	b.WriteByte('\\')
	b.WriteString(strconv.FormatInt(int64(r), 16))
	b.WriteByte(' ')
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
