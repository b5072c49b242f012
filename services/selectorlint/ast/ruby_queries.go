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

// Ruby Tree-sitter Node Types
//
// This file documents the tree-sitter node types used by RubyParser. The
// parser walks nodes directly rather than using tree-sitter queries.
//
// Reference: https://github.com/tree-sitter/tree-sitter-ruby/blob/master/src/grammar.json

// Node type constants for Ruby AST traversal.
const (
	// Top-level nodes
	rbNodeProgram = "program"

	// Calls
	rbNodeCall         = "call"
	rbNodeArgumentList = "argument_list"
	rbNodeBlock        = "block"
	rbNodeDoBlock      = "do_block"

	// Literals
	rbNodeString        = "string"
	rbNodeInterpolation = "interpolation"
	rbNodeSimpleSymbol  = "simple_symbol"
	rbNodeHashKeySymbol = "hash_key_symbol"
	rbNodeArray         = "array"
	rbNodePair          = "pair"

	// Wrappers and misc
	rbNodeParenthesized = "parenthesized_statements"
	rbNodeComment       = "comment"
	rbNodeError         = "ERROR"
)

// Field names used on Ruby nodes.
const (
	rbFieldReceiver  = "receiver"
	rbFieldMethod    = "method"
	rbFieldArguments = "arguments"
	rbFieldBlock     = "block"
	rbFieldKey       = "key"
	rbFieldValue     = "value"
)
