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
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
)

// MaxFixPasses bounds the lint-and-apply passes of FixContent.
const MaxFixPasses = 10

// =============================================================================
// AUTO-FIX
// =============================================================================

// FixContent repeatedly applies the edits of correctable issues.
//
// Description:
//
//	Each pass lints the current content, selects the edits of correctable
//	issues in source order (an issue whose edits overlap an earlier
//	selected issue waits for the next pass), and applies them. Passes stop
//	when no edits remain.
//
//	Content with syntax errors is never edited. If a pass introduces a
//	syntax error, its edits are discarded and the previous content is
//	returned.
//
// Inputs:
//
//	ctx     - Context for cancellation
//	content - The source to fix
//	path    - Path used for parser selection and reporting
//
// Outputs:
//
//	*FixResult - The fixed content and the issues that remain. Returned
//	             alongside ErrFixDiverged with the content of the last pass.
//	error      - ErrFixDiverged when edits remain after MaxFixPasses, or
//	             any LintContent error
//
// Thread Safety: Safe for concurrent use.
func (r *Runner) FixContent(ctx context.Context, content []byte, path string) (*FixResult, error) {
	if ctx == nil {
		return nil, fmt.Errorf("%w: ctx must not be nil", ErrInvalidInput)
	}

	ctx, span := startLintSpan(ctx, "Runner.FixContent", path, r.runID)
	defer span.End()

	fr := &FixResult{File: path, Original: content}
	corrected := make(map[string]int)
	defer func() { recordCorrections(ctx, corrected) }()

	current := content
	var previous *Result
	var previousContent []byte
	var pending map[string]int

	for pass := 1; ; pass++ {
		res, err := r.LintContent(ctx, current, path)
		if err != nil {
			return nil, err
		}
		fr.Passes = pass

		if len(res.SyntaxErrors) > 0 {
			if previous != nil {
				slog.Warn("auto-fix produced a syntax error, keeping previous pass",
					slog.String("run_id", r.runID),
					slog.String("file", path),
					slog.Int("pass", pass))
				fr.Fixed = previousContent
				fr.Remaining = previous
				return fr, nil
			}
			fr.Fixed = current
			fr.Remaining = res
			return fr, nil
		}
		for rule, n := range pending {
			corrected[rule] += n
			fr.Corrections += n
		}
		pending = nil

		edits, fixed := SelectEdits(res.Issues)
		if len(edits) == 0 {
			fr.Fixed = current
			fr.Remaining = res
			return fr, nil
		}
		if pass > MaxFixPasses {
			fr.Fixed = current
			fr.Remaining = res
			return fr, fmt.Errorf("%w: %s still has %d fixable issues after %d passes",
				ErrFixDiverged, path, len(fixed), MaxFixPasses)
		}

		next, err := ApplyEdits(current, edits)
		if err != nil {
			return nil, fmt.Errorf("applying fixes to %s: %w", path, err)
		}

		pending = make(map[string]int)
		for _, issue := range fixed {
			pending[issue.Rule]++
		}
		previous, previousContent = res, current
		current = next
	}
}

// FixFile fixes the file at path, writing the result when write is true
// and the content changed. Nothing is written when fixing diverges.
//
// Thread Safety: Safe for concurrent use.
func (r *Runner) FixFile(ctx context.Context, path string, write bool) (*FixResult, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: path must not be empty", ErrInvalidInput)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	fr, err := r.FixContent(ctx, content, path)
	if err != nil {
		if errors.Is(err, ErrFixDiverged) {
			return fr, err
		}
		return nil, err
	}

	if write && fr.Changed() {
		if err := os.WriteFile(path, fr.Fixed, info.Mode().Perm()); err != nil {
			return fr, fmt.Errorf("writing %s: %w", path, err)
		}
		fr.Written = true
		slog.Info("fixed file",
			slog.String("run_id", r.runID),
			slog.String("file", path),
			slog.Int("corrections", fr.Corrections),
			slog.Int("passes", fr.Passes))
	}
	return fr, nil
}

// =============================================================================
// EDIT APPLICATION
// =============================================================================

// SelectEdits picks the edits to apply in one pass.
//
// Description:
//
//	Walks issues in order. A correctable issue is taken whole when none
//	of its edits overlap an edit already taken; otherwise it is left for
//	a later pass.
//
// Outputs:
//
//	[]TextEdit - The chosen edits, in no particular order
//	[]Issue    - The issues the edits fix
func SelectEdits(issues []Issue) ([]TextEdit, []Issue) {
	var edits []TextEdit
	var fixed []Issue
	for _, issue := range issues {
		if !issue.CanAutoFix || len(issue.Edits) == 0 {
			continue
		}
		if conflicts(issue.Edits, edits) {
			continue
		}
		edits = append(edits, issue.Edits...)
		fixed = append(fixed, issue)
	}
	return edits, fixed
}

// conflicts reports whether any edit of a overlaps any edit of b.
func conflicts(a, b []TextEdit) bool {
	for _, x := range a {
		for _, y := range b {
			if x.Overlaps(y) {
				return true
			}
		}
	}
	return false
}

// ApplyEdits applies non-overlapping edits to content.
//
// Description:
//
//	Edits are applied from the end of the content backwards so earlier
//	offsets stay valid. At equal start offsets the longer edit is applied
//	first, which places an insertion ahead of a replacement that starts
//	at the same offset.
//
// Outputs:
//
//	[]byte - New content; content itself is not modified
//	error  - ErrInvalidInput for out-of-range or overlapping edits
func ApplyEdits(content []byte, edits []TextEdit) ([]byte, error) {
	sorted := make([]TextEdit, len(edits))
	copy(sorted, edits)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].End < sorted[j].End
	})

	for i, e := range sorted {
		if e.Start < 0 || e.End < e.Start || e.End > len(content) {
			return nil, fmt.Errorf("%w: edit [%d,%d) outside content of %d bytes",
				ErrInvalidInput, e.Start, e.End, len(content))
		}
		for _, prev := range sorted[:i] {
			if prev.Overlaps(e) {
				return nil, fmt.Errorf("%w: edits [%d,%d) and [%d,%d) overlap",
					ErrInvalidInput, prev.Start, prev.End, e.Start, e.End)
			}
		}
	}

	out := append([]byte(nil), content...)
	for i := len(sorted) - 1; i >= 0; i-- {
		e := sorted[i]
		tail := append([]byte(e.NewText), out[e.End:]...)
		out = append(out[:e.Start], tail...)
	}
	return out, nil
}
