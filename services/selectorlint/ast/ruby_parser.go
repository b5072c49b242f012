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
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/ruby"
)

const (
	// DefaultMaxFileSize is the maximum file size the parser will accept (10MB).
	DefaultMaxFileSize = 10 * 1024 * 1024

	// WarnFileSize is the threshold at which a warning is logged (1MB).
	WarnFileSize = 1 * 1024 * 1024

	// maxReportedSyntaxErrors caps File.Errors for badly broken files.
	maxReportedSyntaxErrors = 20
)

// RubyParserOption configures a RubyParser instance.
type RubyParserOption func(*RubyParser)

// WithMaxFileSize sets the maximum file size the parser will accept.
// Non-positive values are ignored.
func WithMaxFileSize(bytes int64) RubyParserOption {
	return func(p *RubyParser) {
		if bytes > 0 {
			p.maxFileSize = bytes
		}
	}
}

// RubyParser extracts call expressions from Ruby source.
//
// Description:
//
//	RubyParser uses tree-sitter to parse Ruby files and converts every
//	call node into a *Call. Receivers are linked both ways: a call's
//	Receiver points at the expression it is called on, and a call used as
//	a receiver gets ReceiverOf set to its user. A parenthesized single
//	expression is transparent, so (find('a')).find('b') still chains.
//
// Thread Safety:
//
//	RubyParser is safe for concurrent use. Each Parse call creates its own
//	tree-sitter parser instance.
//
// Example:
//
//	parser := NewRubyParser()
//	file, err := parser.Parse(ctx, content, "spec/features/login_spec.rb")
//	if err != nil {
//	    return fmt.Errorf("parse: %w", err)
//	}
//	for _, call := range file.Calls {
//	    fmt.Println(call.Method)
//	}
type RubyParser struct {
	maxFileSize int64
}

// NewRubyParser creates a RubyParser with the given options.
func NewRubyParser(opts ...RubyParserOption) *RubyParser {
	p := &RubyParser{maxFileSize: DefaultMaxFileSize}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Language returns "ruby".
func (p *RubyParser) Language() string {
	return "ruby"
}

// Extensions returns the file extensions this parser handles.
func (p *RubyParser) Extensions() []string {
	return []string{".rb", ".rake", ".ru"}
}

// Parse extracts call expressions from Ruby source.
//
// Description:
//
//	Validates size and encoding, parses with tree-sitter, then walks the
//	tree once in pre-order so File.Calls is ordered by start offset with
//	outer calls ahead of the receivers they share a start with.
//
// Inputs:
//
//	ctx      - Context for cancellation. Checked before and after parsing.
//	content  - Raw Ruby source bytes. Must be valid UTF-8.
//	filePath - Path to the file (for error reporting).
//
// Outputs:
//
//	*File - Parsed calls. Syntax errors are listed in File.Errors.
//	error - Non-nil for complete failures:
//	  - ErrFileTooLarge: content exceeds the size limit
//	  - ErrInvalidContent: content is not valid UTF-8
//	  - ErrContextCanceled: the context was canceled
//	  - ErrParseFailed: tree-sitter produced no tree
//
// Thread Safety:
//
//	This method is safe for concurrent use.
func (p *RubyParser) Parse(ctx context.Context, content []byte, filePath string) (*File, error) {
	ctx, span := startParseSpan(ctx, "ruby", filePath, len(content))
	defer span.End()

	start := time.Now()

	if err := ctx.Err(); err != nil {
		recordParseMetrics(ctx, "ruby", time.Since(start), 0, false)
		return nil, fmt.Errorf("%w before start: %w", ErrContextCanceled, err)
	}

	if int64(len(content)) > p.maxFileSize {
		recordParseMetrics(ctx, "ruby", time.Since(start), 0, false)
		return nil, fmt.Errorf("%w: size %d exceeds limit %d", ErrFileTooLarge, len(content), p.maxFileSize)
	}

	if len(content) > WarnFileSize {
		slog.Warn("parsing large file",
			slog.String("file", filePath),
			slog.Int("size_bytes", len(content)))
	}

	if !utf8.Valid(content) {
		recordParseMetrics(ctx, "ruby", time.Since(start), 0, false)
		return nil, fmt.Errorf("%w: content is not valid UTF-8", ErrInvalidContent)
	}

	hash := sha256.Sum256(content)

	parser := sitter.NewParser()
	parser.SetLanguage(ruby.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		recordParseMetrics(ctx, "ruby", time.Since(start), 0, false)
		return nil, WrapParseError(fmt.Errorf("%w: %w", ErrParseFailed, err), filePath)
	}
	defer tree.Close()

	if err := ctx.Err(); err != nil {
		recordParseMetrics(ctx, "ruby", time.Since(start), 0, false)
		return nil, fmt.Errorf("%w after tree-sitter: %w", ErrContextCanceled, err)
	}

	root := tree.RootNode()
	if root == nil {
		recordParseMetrics(ctx, "ruby", time.Since(start), 0, false)
		return nil, WrapParseError(fmt.Errorf("%w: nil root node", ErrParseFailed), filePath)
	}

	file := &File{
		Path:     filePath,
		Language: "ruby",
		Hash:     hex.EncodeToString(hash[:]),
		Content:  content,
		Calls:    make([]*Call, 0),
		Errors:   make([]string, 0),
	}

	if root.HasError() {
		collectSyntaxErrors(root, file)
	}

	b := &rubyBuilder{
		content: content,
		memo:    make(map[nodeKey]*Call),
	}
	b.walk(root, file)

	setParseSpanResult(span, len(file.Calls), len(file.Errors))
	recordParseMetrics(ctx, "ruby", time.Since(start), len(file.Calls), true)

	slog.Debug("parsed ruby file",
		slog.String("file", filePath),
		slog.Int("calls", len(file.Calls)),
		slog.Int("syntax_errors", len(file.Errors)),
		slog.Duration("duration", time.Since(start)))

	return file, nil
}

// collectSyntaxErrors records ERROR and missing nodes in file.Errors.
func collectSyntaxErrors(node *sitter.Node, file *File) {
	if node == nil || len(file.Errors) >= maxReportedSyntaxErrors {
		return
	}
	if node.IsMissing() || node.Type() == rbNodeError {
		pt := node.StartPoint()
		file.Errors = append(file.Errors,
			fmt.Sprintf("syntax error at %d:%d", pt.Row+1, pt.Column+1))
		if node.IsMissing() {
			return
		}
	}
	if !node.HasError() {
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		collectSyntaxErrors(node.Child(i), file)
	}
}

// =============================================================================
// TREE CONVERSION
// =============================================================================

// nodeKey identifies a node in one tree.
type nodeKey struct {
	start, end uint32
	kind       string
}

func keyOf(n *sitter.Node) nodeKey {
	return nodeKey{start: n.StartByte(), end: n.EndByte(), kind: n.Type()}
}

// rubyBuilder converts one tree into Calls.
type rubyBuilder struct {
	content []byte
	memo    map[nodeKey]*Call
}

func (b *rubyBuilder) text(n *sitter.Node) string {
	return string(b.content[n.StartByte():n.EndByte()])
}

func spanOf(n *sitter.Node) Span {
	sp, ep := n.StartPoint(), n.EndPoint()
	return Span{
		Start:       int(n.StartByte()),
		End:         int(n.EndByte()),
		StartLine:   int(sp.Row) + 1,
		StartColumn: int(sp.Column),
		EndLine:     int(ep.Row) + 1,
		EndColumn:   int(ep.Column),
	}
}

// walk visits the tree in pre-order, appending each call when reached.
func (b *rubyBuilder) walk(node *sitter.Node, file *File) {
	if node == nil {
		return
	}
	if node.Type() == rbNodeCall {
		if c := b.call(node); c != nil {
			file.Calls = append(file.Calls, c)
		}
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		b.walk(node.NamedChild(i), file)
	}
}

// call converts a call node, memoized so receiver links share pointers.
func (b *rubyBuilder) call(node *sitter.Node) *Call {
	key := keyOf(node)
	if c, ok := b.memo[key]; ok {
		return c
	}

	methodNode := node.ChildByFieldName(rbFieldMethod)
	if methodNode == nil {
		return nil
	}

	c := &Call{
		Method:    b.text(methodNode),
		Loc:       spanOf(node),
		MethodLoc: spanOf(methodNode),
		Src:       b.text(node),
		Args:      []Arg{},
	}
	b.memo[key] = c

	if recv := node.ChildByFieldName(rbFieldReceiver); recv != nil {
		c.Receiver = b.expr(recv)
		between := string(b.content[recv.EndByte():methodNode.StartByte()])
		c.Operator = strings.TrimSpace(between)
		if rc, ok := c.Receiver.(*Call); ok {
			rc.ReceiverOf = c
		}
	}

	if args := b.argumentList(node); args != nil {
		c.ArgsLoc = spanOf(args)
		c.Parens = strings.HasPrefix(b.text(args), "(")
		for i := 0; i < int(args.NamedChildCount()); i++ {
			child := args.NamedChild(i)
			if child.Type() == rbNodeComment {
				continue
			}
			c.Args = append(c.Args, b.arg(child))
		}
	}

	if blk := b.blockOf(node); blk != nil {
		c.Block = true
		c.BlockLoc = spanOf(blk)
	}

	return c
}

func (b *rubyBuilder) argumentList(node *sitter.Node) *sitter.Node {
	if args := node.ChildByFieldName(rbFieldArguments); args != nil {
		return args
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if child := node.NamedChild(i); child.Type() == rbNodeArgumentList {
			return child
		}
	}
	return nil
}

func (b *rubyBuilder) blockOf(node *sitter.Node) *sitter.Node {
	if blk := node.ChildByFieldName(rbFieldBlock); blk != nil {
		return blk
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if t := child.Type(); t == rbNodeBlock || t == rbNodeDoBlock {
			return child
		}
	}
	return nil
}

// unwrapParens strips parentheses around a single expression.
func unwrapParens(node *sitter.Node) *sitter.Node {
	for node != nil && node.Type() == rbNodeParenthesized {
		var only *sitter.Node
		count := 0
		for i := 0; i < int(node.NamedChildCount()); i++ {
			child := node.NamedChild(i)
			if child.Type() == rbNodeComment {
				continue
			}
			only = child
			count++
		}
		if count != 1 {
			return node
		}
		node = only
	}
	return node
}

// expr converts a receiver node.
func (b *rubyBuilder) expr(node *sitter.Node) Expr {
	inner := unwrapParens(node)
	if inner.Type() == rbNodeCall {
		if c := b.call(inner); c != nil {
			return c
		}
	}
	return &Opaque{Kind: node.Type(), Loc: spanOf(node), Src: b.text(node)}
}

// arg converts one argument node.
func (b *rubyBuilder) arg(node *sitter.Node) Arg {
	a := Arg{Kind: ArgOther, Loc: spanOf(node), Src: b.text(node)}

	switch node.Type() {
	case rbNodeString:
		if value, quote, ok := b.decodeString(node); ok {
			a.Kind = ArgString
			a.Value = value
			a.Quote = quote
		}
	case rbNodeSimpleSymbol:
		a.Kind = ArgSymbol
		a.Value = strings.TrimPrefix(a.Src, ":")
	case rbNodePair:
		keyNode := node.ChildByFieldName(rbFieldKey)
		valNode := node.ChildByFieldName(rbFieldValue)
		if keyNode == nil || valNode == nil {
			return a
		}
		a.Kind = ArgPair
		a.Key = b.pairKey(keyNode)
		val := b.arg(valNode)
		a.Val = &val
	case rbNodeArray:
		a.Kind = ArgArray
		a.Elems = []Arg{}
		for i := 0; i < int(node.NamedChildCount()); i++ {
			child := node.NamedChild(i)
			if child.Type() == rbNodeComment {
				continue
			}
			a.Elems = append(a.Elems, b.arg(child))
		}
	case rbNodeCall:
		if c := b.call(node); c != nil {
			a.Kind = ArgCall
			a.Call = c
		}
	}
	return a
}

// pairKey returns the symbol name of a keyword key such as text: or
// :text =>. Other keys are returned as source text.
func (b *rubyBuilder) pairKey(node *sitter.Node) string {
	src := b.text(node)
	switch node.Type() {
	case rbNodeHashKeySymbol:
		return strings.TrimSuffix(src, ":")
	case rbNodeSimpleSymbol:
		return strings.TrimPrefix(src, ":")
	case rbNodeString:
		if value, _, ok := b.decodeString(node); ok {
			return value
		}
	}
	return src
}

// decodeString decodes a plain '...' or "..." literal. Interpolated,
// percent and heredoc strings are not plain.
func (b *rubyBuilder) decodeString(node *sitter.Node) (string, byte, bool) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if node.NamedChild(i).Type() == rbNodeInterpolation {
			return "", 0, false
		}
	}
	src := b.text(node)
	if len(src) < 2 {
		return "", 0, false
	}
	quote := src[0]
	if (quote != '\'' && quote != '"') || src[len(src)-1] != quote {
		return "", 0, false
	}
	body := src[1 : len(src)-1]
	if quote == '\'' {
		return decodeSingleQuoted(body), quote, true
	}
	value, ok := decodeDoubleQuoted(body)
	if !ok {
		return "", 0, false
	}
	return value, quote, true
}
