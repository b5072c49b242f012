// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package cops

import (
	"fmt"
	"strings"

	"github.com/AleutianAI/selectorlint/services/selectorlint/ast"
	"github.com/AleutianAI/selectorlint/services/selectorlint/selector"
)

// RedundantWithinFindName is the configuration name of RedundantWithinFind.
const RedundantWithinFindName = "RedundantWithinFind"

const redundantWithinFindMsg = "Redundant `within %s(...)` call detected."

// RedundantWithinFind flags within calls wrapping a find, since within
// accepts the locator directly.
//
//	# bad
//	within find('foo.bar') do
//	end
//	within find_by_id('foo') do
//	end
//
//	# good
//	within 'foo.bar' do
//	end
//	within '#foo' do
//	end
type RedundantWithinFind struct{}

// NewRedundantWithinFind returns the rule.
func NewRedundantWithinFind() *RedundantWithinFind { return &RedundantWithinFind{} }

// Name implements Cop.
func (w *RedundantWithinFind) Name() string { return RedundantWithinFindName }

// Description implements Cop.
func (w *RedundantWithinFind) Description() string {
	return "Pass the locator to within instead of a find call."
}

// Methods implements Cop.
func (w *RedundantWithinFind) Methods() []string { return []string{"within"} }

// Check implements Cop.
func (w *RedundantWithinFind) Check(call *ast.Call, r *Reporter) {
	if !call.IsMethod("within") || call.HasReceiver() || len(call.Args) != 1 {
		return
	}
	arg := call.Args[0]
	if arg.Kind != ast.ArgCall {
		return
	}
	find := arg.Call
	if find.HasReceiver() || find.Block || len(find.Args) == 0 || !find.IsMethod("find", "find_by_id") {
		return
	}

	replacement := w.replaced(find)
	r.AddCorrectable(find.Loc, fmt.Sprintf(redundantWithinFindMsg, find.Method), func(c *Corrector) {
		c.Replace(find.Loc, replacement)
	})
}

// replaced renders the within arguments that replace the find call.
func (w *RedundantWithinFind) replaced(find *ast.Call) string {
	sources := make([]string, len(find.Args))
	for i, a := range find.Args {
		sources[i] = a.Src
	}
	if !find.IsMethod("find_by_id") {
		return strings.Join(sources, ", ")
	}

	first := find.Args[0]
	if first.Kind == ast.ArgString {
		sources[0] = ast.Quote("#"+selector.Escape(first.Value), first.Quote)
		return strings.Join(sources, ", ")
	}

	joined := strings.Join(sources, ", ")
	if strings.HasPrefix(joined, `"`) || strings.HasPrefix(joined, "'") {
		return joined[:1] + "#" + joined[1:]
	}
	return joined
}
