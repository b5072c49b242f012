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
)

// Rule names.
const (
	AssertStyleName            = "AssertStyle"
	MatchStyleName             = "MatchStyle"
	ClickLinkOrButtonStyleName = "ClickLinkOrButtonStyle"
)

// =============================================================================
// ASSERT STYLE
// =============================================================================

const assertStyleMsg = "Use `assert_matches_style` instead of `assert_style`."

// AssertStyle renames the deprecated assert_style.
type AssertStyle struct{}

// NewAssertStyle returns the rule.
func NewAssertStyle() *AssertStyle { return &AssertStyle{} }

// Name implements Cop.
func (a *AssertStyle) Name() string { return AssertStyleName }

// Description implements Cop.
func (a *AssertStyle) Description() string {
	return "Use assert_matches_style instead of the deprecated assert_style."
}

// Methods implements Cop.
func (a *AssertStyle) Methods() []string { return []string{"assert_style"} }

// Check implements Cop.
func (a *AssertStyle) Check(call *ast.Call, r *Reporter) {
	if !call.IsMethod("assert_style") {
		return
	}
	r.AddCorrectable(call.MethodLoc, assertStyleMsg, func(c *Corrector) {
		c.Replace(call.MethodLoc, "assert_matches_style")
	})
}

// =============================================================================
// MATCH STYLE
// =============================================================================

const matchStyleMsg = "Use `%s` instead of `%s`."

// preferredStyleMatchers maps deprecated style matchers to their
// replacements.
var preferredStyleMatchers = map[string]string{
	"has_style?": "matches_style?",
	"have_style": "match_style",
}

// MatchStyle renames the deprecated has_style? and have_style matchers.
type MatchStyle struct{}

// NewMatchStyle returns the rule.
func NewMatchStyle() *MatchStyle { return &MatchStyle{} }

// Name implements Cop.
func (m *MatchStyle) Name() string { return MatchStyleName }

// Description implements Cop.
func (m *MatchStyle) Description() string {
	return "Use matches_style? and match_style instead of has_style? and have_style."
}

// Methods implements Cop.
func (m *MatchStyle) Methods() []string { return []string{"has_style?", "have_style"} }

// Check implements Cop.
func (m *MatchStyle) Check(call *ast.Call, r *Reporter) {
	preferred, ok := preferredStyleMatchers[call.Method]
	if !ok {
		return
	}
	r.AddCorrectable(call.MethodLoc, fmt.Sprintf(matchStyleMsg, preferred, call.Method), func(c *Corrector) {
		c.Replace(call.MethodLoc, preferred)
	})
}

// =============================================================================
// CLICK LINK OR BUTTON STYLE
// =============================================================================

// Enforced styles of ClickLinkOrButtonStyle.
const (
	StyleStrict       = "strict"
	StyleLinkOrButton = "link_or_button"
)

const (
	clickStrictMsg       = "Use `click_link` or `click_button` instead of `%s`."
	clickLinkOrButtonMsg = "Use `click_link_or_button` or `click_on` instead of `%s`."
)

var (
	strictClickMethods       = []string{"click_link", "click_button"}
	linkOrButtonClickMethods = []string{"click_link_or_button", "click_on"}
)

// ClickLinkOrButtonStyle enforces one family of click methods. The strict
// style wants click_link or click_button; link_or_button wants
// click_link_or_button or click_on. Offenses are flag-only because the
// right replacement depends on the element clicked.
type ClickLinkOrButtonStyle struct {
	style string
}

// NewClickLinkOrButtonStyle returns the rule for style, defaulting to
// StyleStrict. Any other style fails with ErrInvalidOption.
func NewClickLinkOrButtonStyle(style string) (*ClickLinkOrButtonStyle, error) {
	switch style {
	case "":
		style = StyleStrict
	case StyleStrict, StyleLinkOrButton:
	default:
		return nil, fmt.Errorf("%w: %s enforced_style %q (want %s)",
			ErrInvalidOption, ClickLinkOrButtonStyleName, style,
			strings.Join([]string{StyleStrict, StyleLinkOrButton}, " or "))
	}
	return &ClickLinkOrButtonStyle{style: style}, nil
}

// Name implements Cop.
func (c *ClickLinkOrButtonStyle) Name() string { return ClickLinkOrButtonStyleName }

// Description implements Cop.
func (c *ClickLinkOrButtonStyle) Description() string {
	return "Use one consistent family of click methods."
}

// Style returns the enforced style.
func (c *ClickLinkOrButtonStyle) Style() string { return c.style }

// Methods implements Cop.
func (c *ClickLinkOrButtonStyle) Methods() []string {
	return append(append([]string{}, strictClickMethods...), linkOrButtonClickMethods...)
}

// Check implements Cop.
func (c *ClickLinkOrButtonStyle) Check(call *ast.Call, r *Reporter) {
	switch c.style {
	case StyleStrict:
		if call.IsMethod(linkOrButtonClickMethods...) {
			r.Add(call.Loc, fmt.Sprintf(clickStrictMsg, call.Method))
		}
	case StyleLinkOrButton:
		if call.IsMethod(strictClickMethods...) {
			r.Add(call.Loc, fmt.Sprintf(clickLinkOrButtonMsg, call.Method))
		}
	}
}
