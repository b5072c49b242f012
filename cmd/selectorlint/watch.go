// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/AleutianAI/selectorlint/services/selectorlint/lint"
)

// watchDebounce is how long events are collected before a re-check.
const watchDebounce = 200 * time.Millisecond

// watch re-checks files under paths whenever they change, until ctx ends.
func (a *app) watch(ctx context.Context, runner *lint.Runner, paths []string, opts *checkOptions, failLevel lint.Severity) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return failf("create watcher: %w", err)
	}
	defer watcher.Close()

	dirs, err := watchDirs(runner, paths)
	if err != nil {
		return failf("%w", err)
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return failf("watch %s: %w", dir, err)
		}
	}
	a.printer.Success(fmt.Sprintf("Watching %d %s for changes (Ctrl+C to stop)", len(dirs), plural(len(dirs), "directory", "directories")))

	pending := make(map[string]struct{})
	timer := time.NewTimer(watchDebounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			info, err := os.Stat(event.Name)
			if err != nil {
				continue
			}
			if info.IsDir() {
				if !skipDir(runner, event.Name, filepath.Base(event.Name)) {
					if err := watcher.Add(event.Name); err != nil {
						a.logger.Warn("watch new directory failed", slog.String("dir", event.Name), slog.String("error", err.Error()))
					}
				}
				continue
			}
			files, err := runner.Discover(event.Name)
			if err != nil || len(files) == 0 {
				continue
			}
			pending[files[0]] = struct{}{}
			timer.Reset(watchDebounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			a.logger.Warn("file watcher error", slog.String("error", err.Error()))

		case <-timer.C:
			files := make([]string, 0, len(pending))
			for f := range pending {
				files = append(files, f)
			}
			clear(pending)
			slices.Sort(files)

			report, err := a.checkFiles(ctx, runner, files, opts, failLevel)
			if err != nil {
				a.printer.Error(err.Error())
				continue
			}
			if err := a.render(report, opts); err != nil {
				return err
			}
		}
	}
}

// watchDirs lists the directories to watch for roots: every directory a
// check would descend into, or the parent of a file root.
func watchDirs(runner *lint.Runner, roots []string) ([]string, error) {
	seen := make(map[string]bool)
	var dirs []string
	add := func(dir string) {
		clean := filepath.Clean(dir)
		if !seen[clean] {
			seen[clean] = true
			dirs = append(dirs, clean)
		}
	}

	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("watching %s: %w", root, err)
		}
		if !info.IsDir() {
			add(filepath.Dir(root))
			continue
		}
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				return nil
			}
			if path != root {
				rel, relErr := filepath.Rel(root, path)
				if relErr != nil {
					return relErr
				}
				if skipDir(runner, rel, d.Name()) {
					return filepath.SkipDir
				}
			}
			add(path)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", root, err)
		}
	}
	return dirs, nil
}

// skipDir mirrors the directories Runner.Discover never descends into.
func skipDir(runner *lint.Runner, rel, name string) bool {
	return strings.HasPrefix(name, ".") || name == "vendor" || name == "node_modules" ||
		runner.Config().Excluded(filepath.ToSlash(rel))
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
