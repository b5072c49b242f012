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
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseRuby(t *testing.T, src string) *File {
	t.Helper()
	file, err := NewRubyParser().Parse(context.Background(), []byte(src), "test.rb")
	require.NoError(t, err)
	require.NotNil(t, file)
	return file
}

func callsNamed(file *File, method string) []*Call {
	var out []*Call
	for _, c := range file.Calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

func TestRubyParser_Metadata(t *testing.T) {
	p := NewRubyParser()
	assert.Equal(t, "ruby", p.Language())
	assert.Contains(t, p.Extensions(), ".rb")
}

func TestRubyParser_ReceiverlessCall(t *testing.T) {
	file := parseRuby(t, "find('#foo')\n")

	require.Len(t, file.Calls, 1)
	c := file.Calls[0]
	assert.Equal(t, "find", c.Method)
	assert.Nil(t, c.Receiver)
	assert.False(t, c.HasReceiver())
	assert.True(t, c.Parens)
	assert.False(t, c.Block)

	v, ok := c.StringArg(0)
	require.True(t, ok)
	assert.Equal(t, "#foo", v)
	assert.Equal(t, "find('#foo')", c.Src)
	assert.Equal(t, 1, c.Loc.StartLine)
	assert.Equal(t, 0, c.Loc.StartColumn)
}

func TestRubyParser_ChainLinksReceivers(t *testing.T) {
	src := "page.find('#foo').find('.bar')\n"
	file := parseRuby(t, src)

	finds := callsNamed(file, "find")
	require.Len(t, finds, 2)

	outer, inner := finds[0], finds[1]
	assert.Equal(t, "page.find('#foo').find('.bar')", outer.Src)
	assert.Equal(t, "page.find('#foo')", inner.Src)

	rc, ok := outer.ReceiverCall()
	require.True(t, ok)
	assert.Same(t, inner, rc)
	assert.Same(t, outer, inner.ReceiverOf)
	assert.Nil(t, outer.ReceiverOf)
	assert.Same(t, outer, inner.Outermost())
	assert.Equal(t, ".", outer.Operator)

	recv, ok := inner.Receiver.(*Opaque)
	require.True(t, ok)
	assert.Equal(t, "page", recv.Text())

	assert.Equal(t, "find", src[outer.MethodLoc.Start:outer.MethodLoc.End])
}

func TestRubyParser_CallsOrderedOuterFirst(t *testing.T) {
	file := parseRuby(t, "find('.a').find('.b').find('.c')\n")

	require.Len(t, file.Calls, 3)
	assert.Equal(t, "find('.a').find('.b').find('.c')", file.Calls[0].Src)
	assert.Equal(t, "find('.a').find('.b')", file.Calls[1].Src)
	assert.Equal(t, "find('.a')", file.Calls[2].Src)
}

func TestRubyParser_Block(t *testing.T) {
	file := parseRuby(t, "page.find('#foo') { |el| el.text }.find('.bar')\n")

	finds := callsNamed(file, "find")
	require.Len(t, finds, 2)
	inner := finds[1]
	assert.True(t, inner.Block)
	assert.False(t, inner.BlockLoc.IsZero())
	assert.False(t, finds[0].Block)
}

func TestRubyParser_DoBlockOnCommandCall(t *testing.T) {
	src := "within find('#form') do\n  click_on 'Save'\nend\n"
	file := parseRuby(t, src)

	within := callsNamed(file, "within")
	require.Len(t, within, 1)
	assert.True(t, within[0].Block)
	assert.False(t, within[0].Parens)

	arg, ok := within[0].FirstArg()
	require.True(t, ok)
	require.Equal(t, ArgCall, arg.Kind)
	assert.Equal(t, "find", arg.Call.Method)

	clicks := callsNamed(file, "click_on")
	require.Len(t, clicks, 1)
	v, ok := clicks[0].StringArg(0)
	require.True(t, ok)
	assert.Equal(t, "Save", v)
}

func TestRubyParser_Arguments(t *testing.T) {
	src := `find(:css, "#foo", text: 'bar', class: ['a', 'b'], visible: true, :match => :first)` + "\n"
	file := parseRuby(t, src)

	require.Len(t, file.Calls, 1)
	c := file.Calls[0]
	require.Len(t, c.Args, 6)

	sym, ok := c.SymbolArg(0)
	require.True(t, ok)
	assert.Equal(t, "css", sym)

	s, ok := c.StringArg(1)
	require.True(t, ok)
	assert.Equal(t, "#foo", s)
	assert.Equal(t, byte('"'), c.Args[1].Quote)

	text, ok := c.FindPair("text")
	require.True(t, ok)
	require.NotNil(t, text.Val)
	assert.Equal(t, ArgString, text.Val.Kind)
	assert.Equal(t, "bar", text.Val.Value)

	class, ok := c.FindPair("class")
	require.True(t, ok)
	require.Equal(t, ArgArray, class.Val.Kind)
	require.Len(t, class.Val.Elems, 2)
	assert.Equal(t, "b", class.Val.Elems[1].Value)

	visible, ok := c.FindPair("visible")
	require.True(t, ok)
	assert.Equal(t, ArgOther, visible.Val.Kind)
	assert.Equal(t, "true", visible.Val.Src)

	match, ok := c.FindPair("match")
	require.True(t, ok)
	assert.Equal(t, ArgSymbol, match.Val.Kind)
	assert.Equal(t, "first", match.Val.Value)

	assert.Len(t, c.Pairs(), 4)
}

func TestRubyParser_StringDecoding(t *testing.T) {
	tests := []struct {
		src  string
		want string
		ok   bool
	}{
		{`find('a\'b')`, "a'b", true},
		{`find('a\\b')`, `a\b`, true},
		{`find('#foo\.bar')`, `#foo\.bar`, true},
		{`find("#foo\\.bar")`, `#foo\.bar`, true},
		{`find("a\tb")`, "a\tb", true},
		{`find("#{x}")`, "", false},
		{`find(%q(abc))`, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			file := parseRuby(t, tt.src+"\n")
			require.Len(t, file.Calls, 1)
			got, ok := file.Calls[0].StringArg(0)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRubyParser_ParenthesizedReceiverIsTransparent(t *testing.T) {
	file := parseRuby(t, "(find('#foo')).find('.bar')\n")

	finds := callsNamed(file, "find")
	require.Len(t, finds, 2)
	rc, ok := finds[0].ReceiverCall()
	require.True(t, ok)
	assert.Same(t, finds[1], rc)
}

func TestRubyParser_SyntaxErrorsAreNonFatal(t *testing.T) {
	file := parseRuby(t, "find('#foo'\nfind('.bar')\n")
	assert.NotEmpty(t, file.Errors)
}

func TestRubyParser_Guardrails(t *testing.T) {
	t.Run("too large", func(t *testing.T) {
		p := NewRubyParser(WithMaxFileSize(8))
		_, err := p.Parse(context.Background(), []byte(strings.Repeat("a", 9)), "big.rb")
		assert.True(t, errors.Is(err, ErrFileTooLarge))
	})

	t.Run("invalid utf8", func(t *testing.T) {
		_, err := NewRubyParser().Parse(context.Background(), []byte{0xff, 0xfe}, "bad.rb")
		assert.True(t, errors.Is(err, ErrInvalidContent))
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := NewRubyParser().Parse(ctx, []byte("find('x')"), "c.rb")
		assert.True(t, errors.Is(err, ErrContextCanceled))
		assert.True(t, errors.Is(err, context.Canceled))
	})
}

func TestRubyParser_HashIsStable(t *testing.T) {
	a := parseRuby(t, "find('x')\n")
	b := parseRuby(t, "find('x')\n")
	c := parseRuby(t, "find('y')\n")
	assert.Equal(t, a.Hash, b.Hash)
	assert.NotEqual(t, a.Hash, c.Hash)
	assert.Len(t, a.Hash, 64)
}

func TestFile_Text(t *testing.T) {
	file := parseRuby(t, "find('#foo')\n")
	c := file.Calls[0]
	assert.Equal(t, "'#foo'", file.Text(c.Args[0].Loc))
	assert.Equal(t, "", file.Text(Span{Start: 5, End: 2}))
}
