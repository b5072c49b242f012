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

	"github.com/AleutianAI/selectorlint/services/selectorlint/ast"
	"github.com/AleutianAI/selectorlint/services/selectorlint/chain"
)

// ChainedFindName is the configuration name of ChainedFind.
const ChainedFindName = "ChainedFind"

const (
	chainedFindMsg         = "Avoid chaining `find` methods. Combine the selectors into a single `find` call."
	chainedFindCombinedMsg = "Use `find('%s')` instead of chaining `find` methods."
)

// ChainedFind flags find calls chained on find calls.
//
//	# bad
//	page.find('#foo').find('.bar')
//
//	# good
//	page.find('#foo .bar')
//
// Only the head of a chain is examined, so a chain of n links yields n-1
// offenses and at most one edit.
type ChainedFind struct {
	combiner *chain.Combiner
}

// NewChainedFind returns the rule.
func NewChainedFind() *ChainedFind {
	return &ChainedFind{combiner: chain.NewCombiner(chain.DefaultMethod)}
}

// Name implements Cop.
func (c *ChainedFind) Name() string { return ChainedFindName }

// Description implements Cop.
func (c *ChainedFind) Description() string {
	return "Combine chained `find` calls into a single descendant selector."
}

// Methods implements Cop.
func (c *ChainedFind) Methods() []string { return []string{chain.DefaultMethod} }

// Check implements Cop.
func (c *ChainedFind) Check(call *ast.Call, r *Reporter) {
	if !c.combiner.IsMaximal(call) {
		return
	}
	for _, f := range c.combiner.Combine(call) {
		if f.Decision != chain.Merge {
			r.Add(f.Call.Loc, chainedFindMsg)
			continue
		}
		msg := fmt.Sprintf(chainedFindCombinedMsg, f.Merged)
		if f.Replacement == nil {
			r.Add(f.Call.Loc, msg)
			continue
		}
		rep := f.Replacement
		r.AddCorrectable(f.Call.Loc, msg, func(corr *Corrector) {
			corr.Replace(rep.Span, rep.Text)
		})
	}
}
