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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/selectorlint/services/selectorlint/ast"
	"github.com/AleutianAI/selectorlint/services/selectorlint/config"
	"github.com/AleutianAI/selectorlint/services/selectorlint/cops"
)

func newTestRunner(t *testing.T, opts ...Option) *Runner {
	t.Helper()
	r, err := NewRunner(opts...)
	require.NoError(t, err)
	return r
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func rules(issues []Issue) []string {
	out := make([]string, len(issues))
	for i, issue := range issues {
		out[i] = issue.Rule
	}
	return out
}

func TestNewRunner_Defaults(t *testing.T) {
	r := newTestRunner(t)
	assert.NotEmpty(t, r.RunID())
	assert.Len(t, r.Cops(), len(cops.Names()))
	assert.Equal(t, config.Default(), r.Config())

	p, ok := r.Policy(cops.ChainedFindName)
	require.True(t, ok)
	assert.True(t, p.Enabled)
}

func TestNewRunner_Options(t *testing.T) {
	off := false
	cfg := config.Default()
	cfg.Rules[cops.AssertStyleName] = config.RuleConfig{Enabled: &off}

	r := newTestRunner(t, WithConfig(cfg), WithRunID("run-1"), WithWorkers(2))
	assert.Equal(t, "run-1", r.RunID())
	assert.Len(t, r.Cops(), len(cops.Names())-1)

	only := newTestRunner(t, WithConfig(cfg), WithCops(cops.AssertStyleName))
	require.Len(t, only.Cops(), 1)
	assert.Equal(t, cops.AssertStyleName, only.Cops()[0].Name())
	p, _ := only.Policy(cops.ChainedFindName)
	assert.False(t, p.Enabled)
}

func TestNewRunner_Errors(t *testing.T) {
	_, err := NewRunner(WithCops("Nope"))
	assert.ErrorIs(t, err, cops.ErrUnknownCop)

	cfg := config.Default()
	cfg.Rules[cops.ClickLinkOrButtonStyleName] = config.RuleConfig{EnforcedStyle: "loose"}
	_, err = NewRunner(WithConfig(cfg))
	assert.ErrorIs(t, err, cops.ErrInvalidOption)
}

func TestLintContent(t *testing.T) {
	r := newTestRunner(t)
	src := "page.find('.a').find('.b')\npage.assert_style(a: 'b')\n"

	res, err := r.LintContent(context.Background(), []byte(src), "login_spec.rb")
	require.NoError(t, err)

	assert.Equal(t, r.RunID(), res.RunID)
	assert.Equal(t, "ruby", res.Language)
	require.Equal(t, []string{cops.ChainedFindName, cops.AssertStyleName}, rules(res.Issues))

	chained := res.Issues[0]
	assert.Equal(t, 1, chained.Line)
	assert.Equal(t, 1, chained.Column)
	assert.Equal(t, "Use `find('.a .b')` instead of chaining `find` methods.", chained.Message)
	assert.Equal(t, SeverityWarning, chained.Severity)
	assert.True(t, chained.CanAutoFix)

	assert.Equal(t, 2, res.Issues[1].Line)
	assert.Equal(t, 6, res.Issues[1].Column)
	assert.Equal(t, 18, res.Issues[1].EndColumn)
	require.Len(t, res.Issues[1].Edits, 1)
	edit := res.Issues[1].Edits[0]
	assert.Equal(t, 2, edit.StartLine)
	assert.Equal(t, 6, edit.StartColumn)
	assert.Equal(t, "assert_matches_style", edit.NewText)

	assert.Equal(t, 2, res.AutoFixableCount())
	assert.False(t, res.HasErrors())
}

func TestLintContent_SeverityPolicy(t *testing.T) {
	cfg := config.Default()
	cfg.Rules[cops.ClickLinkOrButtonStyleName] = config.RuleConfig{Severity: "error"}
	r := newTestRunner(t, WithConfig(cfg))

	res, err := r.LintContent(context.Background(), []byte("click_on 'Save'\n"), "a.rb")
	require.NoError(t, err)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, SeverityError, res.Issues[0].Severity)
	assert.False(t, res.Issues[0].CanAutoFix)
	assert.True(t, res.HasErrors())
}

func TestLintContent_Errors(t *testing.T) {
	r := newTestRunner(t)

	_, err := r.LintContent(nil, nil, "a.rb") //nolint:staticcheck
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = r.LintContent(context.Background(), []byte("x = 1"), "a.py")
	assert.ErrorIs(t, err, ast.ErrUnsupportedLanguage)

	_, err = r.LintContent(context.Background(), []byte{0xff, 0xfe}, "a.rb")
	assert.ErrorIs(t, err, ast.ErrInvalidContent)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.LintContent(ctx, []byte("find('a')"), "a.rb")
	assert.ErrorIs(t, err, ast.ErrContextCanceled)
}

func TestLintFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a_spec.rb")
	writeFile(t, path, "expect(page).to have_style(color: 'red')\n")

	r := newTestRunner(t)
	res, err := r.LintFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, path, res.File)
	assert.Equal(t, []string{cops.MatchStyleName}, rules(res.Issues))

	_, err = r.LintFile(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = r.LintFile(context.Background(), filepath.Join(dir, "missing.rb"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLintFiles_Order(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for i, src := range []string{
		"find('#x')\n",
		"click_on 'a'\n",
		"within find('.y') do\nend\n",
		"puts 'clean'\n",
	} {
		p := filepath.Join(dir, string(rune('a'+i))+".rb")
		writeFile(t, p, src)
		paths = append(paths, p)
	}

	r := newTestRunner(t, WithWorkers(2))
	results, err := r.LintFiles(context.Background(), paths)
	require.NoError(t, err)
	require.Len(t, results, 4)

	for i, res := range results {
		assert.Equal(t, paths[i], res.File)
	}
	assert.Equal(t, []string{cops.SpecificFindersName}, rules(results[0].Issues))
	assert.Equal(t, []string{cops.ClickLinkOrButtonStyleName}, rules(results[1].Issues))
	assert.Equal(t, []string{cops.RedundantWithinFindName}, rules(results[2].Issues))
	assert.Empty(t, results[3].Issues)

	_, err = r.LintFiles(context.Background(), []string{paths[0], filepath.Join(dir, "missing.rb")})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	for _, rel := range []string{
		"spec/features/login_spec.rb",
		"lib/tasks/db.rake",
		"vendor/gems/x.rb",
		"node_modules/pkg/y.rb",
		".git/hooks/z.rb",
		"tmp/cache.rb",
		"README.md",
	} {
		writeFile(t, filepath.Join(root, rel), "puts 1\n")
	}

	r := newTestRunner(t)
	files, err := r.Discover(root)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "lib/tasks/db.rake"),
		filepath.Join(root, "spec/features/login_spec.rb"),
	}, files)

	single := filepath.Join(root, "vendor/gems/x.rb")
	files, err = r.Discover(single)
	require.NoError(t, err)
	assert.Equal(t, []string{single}, files, "explicit files bypass globs")

	files, err = r.Discover(filepath.Join(root, "README.md"))
	require.NoError(t, err)
	assert.Empty(t, files)

	_, err = r.Discover(filepath.Join(root, "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	all, err := r.DiscoverAll([]string{root, filepath.Join(root, "spec")})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestDiscover_ConfigGlobs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "spec/a_spec.rb"), "")
	writeFile(t, filepath.Join(root, "spec/fixtures/b.rb"), "")
	writeFile(t, filepath.Join(root, "app/c.rb"), "")

	cfg := config.Default()
	cfg.Include = []string{"spec/**/*.rb"}
	cfg.Exclude = []string{"spec/fixtures/**"}

	files, err := newTestRunner(t, WithConfig(cfg)).Discover(root)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "spec/a_spec.rb")}, files)
}

func TestLineIndex(t *testing.T) {
	idx := newLineIndex([]byte("ab\ncd\n\nx"))
	tests := []struct {
		offset, line, col int
	}{
		{0, 1, 1},
		{2, 1, 3},
		{3, 2, 1},
		{5, 2, 3},
		{6, 3, 1},
		{7, 4, 1},
		{8, 4, 2},
	}
	for _, tt := range tests {
		line, col := idx.position(tt.offset)
		assert.Equal(t, tt.line, line, "line of %d", tt.offset)
		assert.Equal(t, tt.col, col, "column of %d", tt.offset)
	}
}
