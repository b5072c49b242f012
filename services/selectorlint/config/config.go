// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads and validates .selectorlint.yml.
//
// A configuration file looks like:
//
//	include:
//	  - "spec/**/*.rb"
//	exclude:
//	  - "spec/fixtures/**"
//	fail_level: warning
//	workers: 4
//	rules:
//	  ClickLinkOrButtonStyle:
//	    enforced_style: link_or_button
//	  AssertStyle:
//	    enabled: false
//	  ChainedFind:
//	    severity: error
//
// Missing keys keep the values of Default.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/selectorlint/services/selectorlint/cops"
)

// FileName is the configuration file looked up by Discover.
const FileName = ".selectorlint.yml"

// ErrInvalidConfig indicates a configuration that failed to decode or
// validate.
var ErrInvalidConfig = errors.New("invalid config")

// =============================================================================
// TYPES
// =============================================================================

// RuleConfig configures one rule.
type RuleConfig struct {
	// Enabled turns the rule off when set to false. Nil keeps the default,
	// which is enabled.
	Enabled *bool `yaml:"enabled,omitempty" json:"enabled,omitempty"`

	// Severity overrides the reported severity: info, warning or error.
	Severity string `yaml:"severity,omitempty" json:"severity,omitempty" validate:"omitempty,oneof=info warning error"`

	// EnforcedStyle selects a style for rules that have more than one.
	EnforcedStyle string `yaml:"enforced_style,omitempty" json:"enforced_style,omitempty"`
}

// IsEnabled reports whether the rule runs.
func (r RuleConfig) IsEnabled() bool {
	return r.Enabled == nil || *r.Enabled
}

// Config is the whole configuration.
//
// Thread Safety: Treat as immutable after Load.
type Config struct {
	// Include holds doublestar globs of files to lint, relative to the
	// lint root.
	Include []string `yaml:"include" json:"include" validate:"dive,required,glob"`

	// Exclude holds doublestar globs of files to skip. Exclude wins over
	// Include.
	Exclude []string `yaml:"exclude" json:"exclude" validate:"dive,required,glob"`

	// FailLevel is the lowest severity that makes a check fail.
	FailLevel string `yaml:"fail_level" json:"fail_level" validate:"oneof=info warning error"`

	// Workers bounds the files linted in parallel. Zero picks the number
	// of CPUs.
	Workers int `yaml:"workers" json:"workers" validate:"gte=0,lte=256"`

	// Rules configures rules by name.
	Rules map[string]RuleConfig `yaml:"rules" json:"rules" validate:"dive"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Include:   []string{"**/*.rb", "**/*.rake"},
		Exclude:   []string{"vendor/**", "**/node_modules/**", "tmp/**"},
		FailLevel: "warning",
		Rules:     map[string]RuleConfig{},
	}
}

// Rule returns the configuration of the named rule, zero when absent.
func (c *Config) Rule(name string) RuleConfig {
	if c == nil {
		return RuleConfig{}
	}
	return c.Rules[name]
}

// Matches reports whether the slash- or OS-separated path, relative to the
// lint root, is included and not excluded.
func (c *Config) Matches(rel string) bool {
	rel = filepath.ToSlash(rel)
	rel = strings.TrimPrefix(rel, "./")
	for _, pattern := range c.Exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return false
		}
	}
	for _, pattern := range c.Include {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// Excluded reports whether a directory, relative to the lint root, is
// excluded as a whole so a walk can skip it.
func (c *Config) Excluded(relDir string) bool {
	relDir = strings.TrimPrefix(filepath.ToSlash(relDir), "./")
	for _, pattern := range c.Exclude {
		if ok, _ := doublestar.Match(pattern, relDir); ok {
			return true
		}
		if ok, _ := doublestar.Match(pattern, relDir+"/"); ok {
			return true
		}
	}
	return false
}

// =============================================================================
// VALIDATION
// =============================================================================

// configValidate is shared by every Validate call.
var configValidate *validator.Validate

func init() {
	configValidate = validator.New()
	_ = configValidate.RegisterValidation("glob", validateGlob)
}

// validateGlob accepts strings that doublestar can compile.
func validateGlob(fl validator.FieldLevel) bool {
	return doublestar.ValidatePattern(fl.Field().String())
}

// Validate checks field constraints and rule names.
//
// Outputs:
//
//	error - Wraps ErrInvalidConfig naming every failed field.
func (c *Config) Validate() error {
	var problems []string

	if err := configValidate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		for _, fe := range verrs {
			problems = append(problems, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
		}
	}

	known := make(map[string]bool)
	for _, name := range cops.Names() {
		known[name] = true
	}
	names := make([]string, 0, len(c.Rules))
	for name := range c.Rules {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if !known[name] {
			problems = append(problems, fmt.Sprintf("unknown rule %q", name))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// =============================================================================
// LOADING
// =============================================================================

// Parse decodes YAML over Default and validates the result. Unknown keys
// are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if len(bytes.TrimSpace(data)) > 0 {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}
	if cfg.Rules == nil {
		cfg.Rules = map[string]RuleConfig{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads and parses the file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Discover looks for FileName in dir and its parents.
//
// Outputs:
//
//	string - Path of the nearest configuration file.
//	bool   - False when none exists up to the filesystem root.
func Discover(dir string) (string, bool) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}
	for {
		candidate := filepath.Join(abs, FileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return "", false
		}
		abs = parent
	}
}

// Resolve loads path when given, otherwise the file found by Discover from
// dir, otherwise Default.
func Resolve(path, dir string) (*Config, string, error) {
	if path == "" {
		found, ok := Discover(dir)
		if !ok {
			return Default(), "", nil
		}
		path = found
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}
