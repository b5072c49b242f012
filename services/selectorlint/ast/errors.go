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
	"errors"
	"fmt"
)

// Sentinel errors for parse failures.
//
// These errors can be checked using errors.Is() to determine the
// category of failure without inspecting error messages.
var (
	// ErrUnsupportedLanguage indicates that no parser is registered for the
	// requested language or file extension.
	ErrUnsupportedLanguage = errors.New("unsupported language")

	// ErrParseFailed indicates that tree-sitter produced no tree at all.
	//
	// Syntax errors inside an otherwise parsed file are not failures; they
	// are reported in File.Errors.
	ErrParseFailed = errors.New("parse failed")

	// ErrInvalidContent indicates content that cannot be processed, such as
	// non-UTF-8 bytes.
	ErrInvalidContent = errors.New("invalid content")

	// ErrFileTooLarge is returned when content exceeds the parser's limit.
	ErrFileTooLarge = errors.New("file exceeds maximum size limit")

	// ErrContextCanceled indicates that parsing was canceled via context.
	ErrContextCanceled = errors.New("parse canceled")
)

// ParseError provides file context for a parse failure.
//
// Example:
//
//	file, err := parser.Parse(ctx, content, "spec/login_spec.rb")
//	var parseErr *ParseError
//	if errors.As(err, &parseErr) {
//	    fmt.Printf("%s:%d: %s\n", parseErr.FilePath, parseErr.Line, parseErr.Message)
//	}
type ParseError struct {
	// FilePath is the file where the error occurred.
	FilePath string

	// Line is 1-indexed, 0 when unknown.
	Line int

	// Column is 0-indexed, 0 when unknown.
	Column int

	// Message describes the error.
	Message string

	// Cause is the underlying error, may be nil.
	Cause error
}

// Error returns "file:line:col: message", dropping unknown parts.
func (e *ParseError) Error() string {
	if e.Line > 0 && e.Column > 0 {
		return fmt.Sprintf("%s:%d:%d: %s", e.FilePath, e.Line, e.Column, e.Message)
	}
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.FilePath, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.FilePath, e.Message)
}

// Unwrap returns the underlying cause.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// WrapParseError wraps err with file context. A *ParseError is returned
// unchanged and nil stays nil.
func WrapParseError(err error, filePath string) error {
	if err == nil {
		return nil
	}

	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		return err
	}

	return &ParseError{
		FilePath: filePath,
		Message:  err.Error(),
		Cause:    err,
	}
}

// IsParseError checks if an error is or wraps a ParseError.
func IsParseError(err error) bool {
	var parseErr *ParseError
	return errors.As(err, &parseErr)
}

// IsUnsupportedLanguage checks if an error is or wraps ErrUnsupportedLanguage.
func IsUnsupportedLanguage(err error) bool {
	return errors.Is(err, ErrUnsupportedLanguage)
}
