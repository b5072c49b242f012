// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package selector decomposes CSS selector strings passed to element-lookup
// calls and escapes arbitrary strings into CSS identifiers.
//
// The package knows just enough selector structure to answer the questions
// the rules ask: is there a leading id, which classes and attributes are
// present, are there pseudo-classes, and is this one compound selector or a
// combinator-joined group. It does not validate or execute selectors.
//
// # Components
//
//	attributes.go - bracket/quote-depth scanner for [key=value] clauses
//	selector.go   - id, classes, pseudo-classes, multiple-selector detection
//	escape.go     - CSS.escape identifier serialization
//
// # Error Policy
//
// Predicates and list queries are total: a string without the structure in
// question yields false or an empty result. Only Attributes fails, with
// ErrMalformedSelector, when a bracket is never closed.
//
// # Thread Safety
//
// Every function is pure and safe for concurrent use.
package selector
