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
	"context"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// File is the parsed form of one source file.
type File struct {
	// Path is the path given to Parse.
	Path string

	// Language is the parser's language name.
	Language string

	// Hash is the hex SHA-256 of Content.
	Hash string

	// Content is the parsed source.
	Content []byte

	// Calls are every call expression in the file, ordered by start offset
	// and, for calls starting at the same offset, outermost first.
	Calls []*Call

	// Errors are non-fatal syntax problems found in the tree.
	Errors []string
}

// Text returns the source text of span s.
func (f *File) Text(s Span) string {
	if s.Start < 0 || s.End > len(f.Content) || s.Start > s.End {
		return ""
	}
	return string(f.Content[s.Start:s.End])
}

// Parser defines the contract for turning source into call expressions.
//
// Description:
//
//	Implementations are context-aware and error-tolerant: syntax errors
//	yield a File with Errors populated rather than a failure.
//
// Inputs:
//
//	ctx      - Context for cancellation. Checked before and after parsing.
//	content  - Raw source bytes. Must be valid UTF-8.
//	filePath - Path used for error reporting.
//
// Outputs:
//
//	*File - The call expressions found. Never nil on success.
//	error - Non-nil only for complete failures.
//
// Thread Safety:
//
//	Implementations must be safe for concurrent use.
type Parser interface {
	Parse(ctx context.Context, content []byte, filePath string) (*File, error)

	// Language returns the lowercase language name, e.g. "ruby".
	Language() string

	// Extensions returns the handled file extensions including the dot.
	Extensions() []string
}

// ParserRegistry manages parser instances by language and file extension.
//
// Thread Safety:
//
//	ParserRegistry is fully thread-safe. Registration uses write locks,
//	lookups use read locks.
type ParserRegistry struct {
	mu sync.RWMutex

	byLanguage  map[string]Parser
	byExtension map[string]Parser
}

// NewParserRegistry creates a new empty ParserRegistry.
func NewParserRegistry() *ParserRegistry {
	return &ParserRegistry{
		byLanguage:  make(map[string]Parser),
		byExtension: make(map[string]Parser),
	}
}

// DefaultRegistry returns a registry holding a RubyParser.
func DefaultRegistry() *ParserRegistry {
	r := NewParserRegistry()
	r.Register(NewRubyParser())
	return r
}

// Register adds a parser under its Language() name and all its
// Extensions(). Existing entries are overwritten. A nil parser is ignored.
func (r *ParserRegistry) Register(parser Parser) {
	if parser == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.byLanguage[parser.Language()] = parser

	for _, ext := range parser.Extensions() {
		r.byExtension[ext] = parser
	}
}

// GetByLanguage returns the parser for the given language name.
func (r *ParserRegistry) GetByLanguage(language string) (Parser, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	parser, ok := r.byLanguage[language]
	return parser, ok
}

// GetByExtension returns the parser for the given extension, e.g. ".rb".
// Lookup is case-insensitive.
func (r *ParserRegistry) GetByExtension(ext string) (Parser, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	parser, ok := r.byExtension[strings.ToLower(ext)]
	return parser, ok
}

// ForPath returns the parser for a file path based on its extension.
func (r *ParserRegistry) ForPath(path string) (Parser, bool) {
	return r.GetByExtension(filepath.Ext(path))
}

// Extensions returns the registered extensions, sorted.
func (r *ParserRegistry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	extensions := make([]string, 0, len(r.byExtension))
	for ext := range r.byExtension {
		extensions = append(extensions, ext)
	}
	sort.Strings(extensions)
	return extensions
}
