// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package lint

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/sourcegraph/go-diff/diff"
)

// DiffContext is the number of unchanged lines around each hunk.
const DiffContext = 3

const noNewlineMarker = "\\ No newline at end of file\n"

// lineOp is one line of a line-level diff.
type lineOp struct {
	op      diffmatchpatch.Operation
	text    string
	noNewln bool
}

// UnifiedDiff renders the change from before to after as a unified diff.
//
// Description:
//
//	Lines are compared with diffmatchpatch's line mode and grouped into
//	hunks with DiffContext lines of context, then printed with go-diff.
//	Headers are "a/<path>" and "b/<path>".
//
// Outputs:
//
//	[]byte - The diff; empty when the contents are equal
//	error  - Non-nil if printing fails
func UnifiedDiff(path string, before, after []byte) ([]byte, error) {
	if string(before) == string(after) {
		return nil, nil
	}

	ops := lineOps(string(before), string(after))
	fd := &diff.FileDiff{
		OrigName: "a/" + path,
		NewName:  "b/" + path,
		Hunks:    hunks(ops, DiffContext),
	}
	return diff.PrintFileDiff(fd)
}

// lineOps computes the line-level diff of a and b.
func lineOps(a, b string) []lineOp {
	dmp := diffmatchpatch.New()
	ca, cb, lines := dmp.DiffLinesToChars(a, b)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(ca, cb, false), lines)

	var ops []lineOp
	for _, d := range diffs {
		text := d.Text
		for text != "" {
			i := strings.IndexByte(text, '\n')
			if i < 0 {
				ops = append(ops, lineOp{op: d.Type, text: text, noNewln: true})
				break
			}
			ops = append(ops, lineOp{op: d.Type, text: text[:i]})
			text = text[i+1:]
		}
	}
	return ops
}

// hunks groups ops into hunks with context lines around changes.
func hunks(ops []lineOp, context int) []*diff.Hunk {
	// origBefore[i] and newBefore[i] count the lines ahead of ops[i].
	origBefore := make([]int, len(ops)+1)
	newBefore := make([]int, len(ops)+1)
	for i, o := range ops {
		origBefore[i+1] = origBefore[i]
		newBefore[i+1] = newBefore[i]
		if o.op != diffmatchpatch.DiffInsert {
			origBefore[i+1]++
		}
		if o.op != diffmatchpatch.DiffDelete {
			newBefore[i+1]++
		}
	}

	var changes []int
	for i, o := range ops {
		if o.op != diffmatchpatch.DiffEqual {
			changes = append(changes, i)
		}
	}

	var out []*diff.Hunk
	for g := 0; g < len(changes); {
		first, last := changes[g], changes[g]
		g++
		for g < len(changes) && changes[g]-last <= 2*context+1 {
			last = changes[g]
			g++
		}

		start := max(0, first-context)
		end := min(len(ops), last+1+context)

		var body strings.Builder
		for _, o := range ops[start:end] {
			switch o.op {
			case diffmatchpatch.DiffEqual:
				body.WriteByte(' ')
			case diffmatchpatch.DiffDelete:
				body.WriteByte('-')
			case diffmatchpatch.DiffInsert:
				body.WriteByte('+')
			}
			body.WriteString(o.text)
			body.WriteByte('\n')
			if o.noNewln {
				body.WriteString(noNewlineMarker)
			}
		}

		h := &diff.Hunk{
			OrigLines: int32(origBefore[end] - origBefore[start]),
			NewLines:  int32(newBefore[end] - newBefore[start]),
			Body:      []byte(body.String()),
		}
		h.OrigStartLine = int32(origBefore[start])
		if h.OrigLines > 0 {
			h.OrigStartLine++
		}
		h.NewStartLine = int32(newBefore[start])
		if h.NewLines > 0 {
			h.NewStartLine++
		}
		out = append(out, h)
	}
	return out
}
