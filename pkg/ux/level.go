// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ux

import (
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Level defines how rich the CLI output is.
type Level string

const (
	// LevelFull enables colors, icons, and boxes.
	LevelFull Level = "full"

	// LevelMinimal uses icons and layout without colors.
	LevelMinimal Level = "minimal"

	// LevelMachine outputs plain lines suitable for scripting and parsing.
	LevelMachine Level = "machine"
)

// EnvOutput overrides the detected output level.
const EnvOutput = "SELECTORLINT_OUTPUT"

// ParseLevel converts a string to a Level.
//
// Unknown values map to LevelMinimal.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "full", "f", "color":
		return LevelFull
	case "minimal", "min", "m", "plain":
		return LevelMinimal
	case "machine", "quiet", "q":
		return LevelMachine
	default:
		return LevelMinimal
	}
}

// DetectLevel picks an output level for f.
//
// Description:
//
//	SELECTORLINT_OUTPUT wins when set. Otherwise a non-terminal gets
//	LevelMachine, a terminal with NO_COLOR set gets LevelMinimal, and any
//	other terminal gets LevelFull.
//
// Inputs:
//
//	f - The file output is written to, usually os.Stdout.
//
// Outputs:
//
//	Level - The detected level.
func DetectLevel(f *os.File) Level {
	if env := os.Getenv(EnvOutput); env != "" {
		return ParseLevel(env)
	}
	if !IsTerminal(f) {
		return LevelMachine
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return LevelMinimal
	}
	return LevelFull
}

// IsTerminal reports whether f is an interactive terminal.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
