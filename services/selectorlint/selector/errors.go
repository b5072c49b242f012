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
	"fmt"
)

// ErrMalformedSelector indicates that a selector's attribute brackets are
// not balanced and no attribute map can be derived from it.
//
// Callers must surface this instead of guessing a split point.
var ErrMalformedSelector = errors.New("malformed selector")

// SyntaxError reports where the attribute scanner gave up.
//
// It wraps ErrMalformedSelector so callers can use errors.Is.
type SyntaxError struct {
	// Selector is the full input string.
	Selector string

	// Offset is the byte offset of the bracket that was never closed.
	Offset int

	// Message describes the failure.
	Message string
}

// Error returns a formatted message including the offset.
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s at offset %d in %q: %s", ErrMalformedSelector, e.Offset, e.Selector, e.Message)
}

// Unwrap returns ErrMalformedSelector.
func (e *SyntaxError) Unwrap() error {
	return ErrMalformedSelector
}
