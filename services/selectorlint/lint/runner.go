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
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/selectorlint/services/selectorlint/ast"
	"github.com/AleutianAI/selectorlint/services/selectorlint/config"
	"github.com/AleutianAI/selectorlint/services/selectorlint/cops"
)

// =============================================================================
// RUNNER
// =============================================================================

// Runner parses files and runs the enabled rules over their calls.
//
// Description:
//
//	Rules are built once at construction from the configuration. Each
//	call in a parsed file is dispatched to the rules whose Methods()
//	contain the call's method name.
//
// Thread Safety: Safe for concurrent use.
type Runner struct {
	cfg      *config.Config
	parsers  *ast.ParserRegistry
	only     []string
	workers  int
	runID    string
	cops     []cops.Cop
	byMethod map[string][]cops.Cop
	policies map[string]RulePolicy
}

// Option configures the Runner.
type Option func(*Runner)

// WithConfig sets the configuration. Nil keeps config.Default().
func WithConfig(cfg *config.Config) Option {
	return func(r *Runner) {
		if cfg != nil {
			r.cfg = cfg
		}
	}
}

// WithCops restricts the run to the named rules. Named rules run even when
// configuration disables them.
func WithCops(names ...string) Option {
	return func(r *Runner) {
		r.only = append(r.only, names...)
	}
}

// WithWorkers bounds the files linted in parallel. Values below 1 fall
// back to the configuration, then to the number of CPUs.
func WithWorkers(n int) Option {
	return func(r *Runner) {
		r.workers = n
	}
}

// WithRegistry sets the parser registry.
func WithRegistry(parsers *ast.ParserRegistry) Option {
	return func(r *Runner) {
		if parsers != nil {
			r.parsers = parsers
		}
	}
}

// WithRunID sets the run identifier attached to results and logs.
func WithRunID(id string) Option {
	return func(r *Runner) {
		r.runID = id
	}
}

// NewRunner creates a runner.
//
// Description:
//
//	Applies options, then constructs every enabled rule with its
//	configured style.
//
// Inputs:
//
//	opts - Optional configuration options
//
// Outputs:
//
//	*Runner - The configured runner
//	error   - cops.ErrUnknownCop for an unknown WithCops name,
//	          cops.ErrInvalidOption for a rejected enforced_style
func NewRunner(opts ...Option) (*Runner, error) {
	r := &Runner{
		cfg:      config.Default(),
		parsers:  ast.DefaultRegistry(),
		byMethod: make(map[string][]cops.Cop),
		policies: make(map[string]RulePolicy),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.runID == "" {
		r.runID = uuid.NewString()
	}
	if r.workers < 1 {
		r.workers = r.cfg.Workers
	}
	if r.workers < 1 {
		r.workers = runtime.NumCPU()
	}

	selected := make(map[string]bool)
	for _, name := range r.only {
		if _, err := cops.New(name, cops.Options{EnforcedStyle: r.cfg.Rule(name).EnforcedStyle}); err != nil {
			return nil, err
		}
		selected[name] = true
	}

	for _, policy := range Policies(r.cfg) {
		run := policy.Enabled
		if len(selected) > 0 {
			run = selected[policy.Rule]
			policy.Enabled = run
		}
		r.policies[policy.Rule] = policy
		if !run {
			continue
		}
		c, err := cops.New(policy.Rule, cops.Options{EnforcedStyle: policy.EnforcedStyle})
		if err != nil {
			return nil, err
		}
		r.cops = append(r.cops, c)
		for _, method := range c.Methods() {
			r.byMethod[method] = append(r.byMethod[method], c)
		}
	}

	slog.Debug("lint runner ready",
		slog.String("run_id", r.runID),
		slog.Int("rules", len(r.cops)),
		slog.Int("workers", r.workers))

	return r, nil
}

// RunID returns the run identifier.
func (r *Runner) RunID() string { return r.runID }

// Config returns the configuration in use.
func (r *Runner) Config() *config.Config { return r.cfg }

// Cops returns the rules that run, sorted by name.
func (r *Runner) Cops() []cops.Cop {
	out := make([]cops.Cop, len(r.cops))
	copy(out, r.cops)
	return out
}

// Policy returns the policy of the named rule.
func (r *Runner) Policy(rule string) (RulePolicy, bool) {
	p, ok := r.policies[rule]
	return p, ok
}

// LintContent lints content as if read from path.
//
// Description:
//
//	Parses content with the parser registered for path's extension,
//	dispatches every call to the matching rules, assigns severities by
//	policy, and sorts the issues by position.
//
// Inputs:
//
//	ctx     - Context for cancellation
//	content - The source to lint
//	path    - Path used for parser selection and reporting
//
// Outputs:
//
//	*Result - The issues found
//	error   - ErrInvalidInput for a nil context, ast.ErrUnsupportedLanguage
//	          for an unknown extension, or the parser's error
//
// Thread Safety: Safe for concurrent use.
func (r *Runner) LintContent(ctx context.Context, content []byte, path string) (*Result, error) {
	if ctx == nil {
		return nil, fmt.Errorf("%w: ctx must not be nil", ErrInvalidInput)
	}

	ctx, span := startLintSpan(ctx, "Runner.LintContent", path, r.runID)
	defer span.End()
	start := time.Now()

	parser, ok := r.parsers.ForPath(path)
	if !ok {
		recordLintMetrics(ctx, time.Since(start), nil, false)
		return nil, fmt.Errorf("%w: %q", ast.ErrUnsupportedLanguage, filepath.Ext(path))
	}

	file, err := parser.Parse(ctx, content, path)
	if err != nil {
		recordLintMetrics(ctx, time.Since(start), nil, false)
		return nil, err
	}

	issues := r.check(file)

	result := &Result{
		RunID:        r.runID,
		File:         path,
		Language:     file.Language,
		Issues:       issues,
		SyntaxErrors: file.Errors,
		Duration:     time.Since(start),
	}

	setLintSpanResult(span, len(issues), result.AutoFixableCount(), len(file.Errors))
	recordLintMetrics(ctx, result.Duration, issues, true)

	slog.Debug("lint completed",
		slog.String("run_id", r.runID),
		slog.String("file", path),
		slog.Int("issues", len(issues)),
		slog.Int("fixable", result.AutoFixableCount()),
		slog.Duration("duration", result.Duration))

	return result, nil
}

// check runs the rules over file's calls.
func (r *Runner) check(file *ast.File) []Issue {
	reporters := make(map[string]*cops.Reporter, len(r.cops))
	for _, call := range file.Calls {
		for _, c := range r.byMethod[call.Method] {
			rep, ok := reporters[c.Name()]
			if !ok {
				rep = cops.NewReporter(c.Name())
				reporters[c.Name()] = rep
			}
			c.Check(call, rep)
		}
	}

	idx := newLineIndex(file.Content)
	issues := make([]Issue, 0)
	for _, rep := range reporters {
		for _, o := range rep.Offenses() {
			issues = append(issues, r.issueOf(file.Path, o, idx))
		}
	}

	sort.SliceStable(issues, func(i, j int) bool {
		a, b := issues[i], issues[j]
		if a.Offset != b.Offset {
			return a.Offset < b.Offset
		}
		if a.EndLine != b.EndLine {
			return a.EndLine < b.EndLine
		}
		if a.EndColumn != b.EndColumn {
			return a.EndColumn < b.EndColumn
		}
		if a.Rule != b.Rule {
			return a.Rule < b.Rule
		}
		return a.Message < b.Message
	})
	return issues
}

// issueOf converts an offense with the rule's policy applied.
func (r *Runner) issueOf(path string, o cops.Offense, idx lineIndex) Issue {
	issue := Issue{
		File:       path,
		Line:       o.Span.StartLine,
		Column:     o.Span.StartColumn + 1,
		EndLine:    o.Span.EndLine,
		EndColumn:  o.Span.EndColumn + 1,
		Rule:       o.Cop,
		Severity:   r.policies[o.Cop].Severity,
		Message:    o.Message,
		CanAutoFix: o.Correctable(),
		Offset:     o.Span.Start,
	}
	for _, e := range o.Edits {
		sl, sc := idx.position(e.Start)
		el, ec := idx.position(e.End)
		issue.Edits = append(issue.Edits, TextEdit{
			Start:       e.Start,
			End:         e.End,
			StartLine:   sl,
			StartColumn: sc,
			EndLine:     el,
			EndColumn:   ec,
			NewText:     e.NewText,
		})
	}
	return issue
}

// LintFile reads and lints the file at path.
//
// Thread Safety: Safe for concurrent use.
func (r *Runner) LintFile(ctx context.Context, path string) (*Result, error) {
	if ctx == nil {
		return nil, fmt.Errorf("%w: ctx must not be nil", ErrInvalidInput)
	}
	if path == "" {
		return nil, fmt.Errorf("%w: path must not be empty", ErrInvalidInput)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return r.LintContent(ctx, content, path)
}

// =============================================================================
// BATCH OPERATIONS
// =============================================================================

// LintFiles lints files concurrently.
//
// Description:
//
//	Lints at most the configured number of files at a time. Results are
//	returned in the same order as the input paths. The first failure
//	cancels the remaining work.
//
// Inputs:
//
//	ctx   - Context for cancellation
//	paths - Paths to files to lint
//
// Outputs:
//
//	[]*Result - Results in same order as input
//	error     - Non-nil if any file failed to lint
//
// Thread Safety: Safe for concurrent use.
func (r *Runner) LintFiles(ctx context.Context, paths []string) ([]*Result, error) {
	if ctx == nil {
		return nil, fmt.Errorf("%w: ctx must not be nil", ErrInvalidInput)
	}

	results := make([]*Result, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for i, path := range paths {
		g.Go(func() error {
			result, err := r.LintFile(gctx, path)
			if err != nil {
				return fmt.Errorf("linting %s: %w", path, err)
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// Discover lists the lintable files under root.
//
// Description:
//
//	A file root is returned as is when a parser handles its extension.
//	A directory is walked in lexical order, skipping hidden, vendor,
//	node_modules and excluded directories. Files must have a registered
//	extension and match the configuration's include and exclude globs
//	relative to root.
//
// Inputs:
//
//	root - File or directory to search
//
// Outputs:
//
//	[]string - Paths found, in walk order
//	error    - Non-nil if root cannot be read
func (r *Runner) Discover(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("discovering %s: %w", root, err)
	}
	if !info.IsDir() {
		if _, ok := r.parsers.ForPath(root); ok {
			return []string{root}, nil
		}
		return nil, nil
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}

		if d.IsDir() {
			if path == root {
				return nil
			}
			name := d.Name()
			if strings.HasPrefix(name, ".") || name == "vendor" || name == "node_modules" || r.cfg.Excluded(rel) {
				return filepath.SkipDir
			}
			return nil
		}

		if _, ok := r.parsers.ForPath(path); !ok {
			return nil
		}
		if r.cfg.Matches(rel) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	return files, nil
}

// DiscoverAll runs Discover over every root and drops duplicates.
func (r *Runner) DiscoverAll(roots []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, root := range roots {
		files, err := r.Discover(root)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			clean := filepath.Clean(f)
			if !seen[clean] {
				seen[clean] = true
				out = append(out, f)
			}
		}
	}
	return out, nil
}

// =============================================================================
// POSITIONS
// =============================================================================

// lineIndex maps byte offsets to 1-indexed lines and columns.
type lineIndex []int

func newLineIndex(content []byte) lineIndex {
	starts := lineIndex{0}
	for i, b := range content {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// position returns the 1-indexed line and byte column of offset.
func (idx lineIndex) position(offset int) (int, int) {
	line := sort.Search(len(idx), func(i int) bool { return idx[i] > offset }) - 1
	if line < 0 {
		line = 0
	}
	return line + 1, offset - idx[line] + 1
}
