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

// SpecificFindersName is the configuration name of SpecificFinders.
const SpecificFindersName = "SpecificFinders"

const specificFindersMsg = "Prefer `%s` over `find`."

// commonAttributes may appear in an attribute selector rewritten to
// find_by_id. Anything else makes the selector too specific to convert.
var commonAttributes = map[string]bool{"id": true, "class": true, "style": true}

// SpecificFinders flags find calls that a dedicated finder expresses.
//
//	# bad
//	find('#some-id')
//	find('[id=some-id]')
//	find(:css, '#some-id')
//	find(:id, 'some-id')
//	find(:link, 'Home')
//	find(:field, 'Name')
//
//	# good
//	find_by_id('some-id')
//	find_link('Home')
//	find_field('Name')
//
// CSS locators with pseudo-classes or more than one compound selector are
// left alone. The :id, :link and :field forms take the locator verbatim.
type SpecificFinders struct{}

// NewSpecificFinders returns the rule.
func NewSpecificFinders() *SpecificFinders { return &SpecificFinders{} }

// Name implements Cop.
func (s *SpecificFinders) Name() string { return SpecificFindersName }

// Description implements Cop.
func (s *SpecificFinders) Description() string {
	return "Prefer find_by_id, find_link and find_field over generic find."
}

// Methods implements Cop.
func (s *SpecificFinders) Methods() []string { return []string{"find"} }

// finderCall is a matched find call: an optional leading selector-type
// symbol followed by a string locator.
type finderCall struct {
	call    *ast.Call
	kind    string
	locator string
	hasSym  bool
}

// match recognizes find([:css|:id|:link|:field,] 'locator', ...).
func (s *SpecificFinders) match(call *ast.Call) (finderCall, bool) {
	if !call.IsMethod("find") {
		return finderCall{}, false
	}
	if kind, ok := call.SymbolArg(0); ok {
		switch kind {
		case "css", "id", "link", "field":
		default:
			return finderCall{}, false
		}
		locator, ok := call.StringArg(1)
		if !ok {
			return finderCall{}, false
		}
		return finderCall{call: call, kind: kind, locator: locator, hasSym: true}, true
	}
	locator, ok := call.StringArg(0)
	if !ok {
		return finderCall{}, false
	}
	return finderCall{call: call, kind: "css", locator: locator}, true
}

// Check implements Cop.
func (s *SpecificFinders) Check(call *ast.Call, r *Reporter) {
	m, ok := s.match(call)
	if !ok {
		return
	}

	switch m.kind {
	case "link", "field":
		s.onSymSelector(m, r)
	case "id":
		s.registerByID(m, m.locator, "", nil, r)
	default:
		if len(selector.PseudoClasses(m.locator)) > 0 || selector.MultipleSelectors(m.locator) {
			return
		}
		switch {
		case selector.IsAttribute(m.locator):
			s.onAttribute(m, r)
		case selector.IsID(m.locator):
			s.onID(m, r)
		}
	}
}

// onSymSelector rewrites find(:link, 'x') to find_link('x').
func (s *SpecificFinders) onSymSelector(m finderCall, r *Reporter) {
	finder := "find_" + m.kind
	call := m.call
	r.AddCorrectable(offenseRange(call), fmt.Sprintf(specificFindersMsg, finder), func(c *Corrector) {
		c.Replace(call.MethodLoc, finder)
		if len(call.Args) == 1 {
			c.Remove(call.Args[0].Loc)
			return
		}
		c.RemoveRange(call.Args[0].Loc.Start, call.Args[1].Loc.Start)
	})
}

// onAttribute handles '[id=x]' locators whose attributes are all common.
func (s *SpecificFinders) onAttribute(m finderCall, r *Reporter) {
	attrs, err := selector.Attributes(m.locator)
	if err != nil {
		return
	}
	for _, key := range attrs.Keys() {
		if !commonAttributes[key] {
			return
		}
	}
	id, ok := attrs.Get("id")
	if !ok || id.Kind != selector.ValueString {
		return
	}
	if attrs.Has("class") {
		return
	}

	var options []string
	correctable := true
	for _, a := range attrs.All() {
		if a.Key == "id" {
			continue
		}
		if a.Value.IsNil() {
			correctable = false
		}
		options = append(options, a.Key+": "+a.Value.String())
	}

	if !correctable {
		r.Add(offenseRange(m.call), fmt.Sprintf(specificFindersMsg, "find_by_id"))
		return
	}
	s.registerByID(m, unescapeCSS(id.Unquoted()), strings.Join(options, ", "), nil, r)
}

// onID handles '#id' and '#id.cls' locators without attributes.
func (s *SpecificFinders) onID(m finderCall, r *Reporter) {
	attrs, err := selector.Attributes(m.locator)
	if err != nil || attrs.Len() > 0 {
		return
	}
	id, _ := selector.ID(m.locator)
	rest := strings.Replace(m.locator, "#"+id, "", 1)

	var classes []string
	for _, cls := range selector.Classes(rest) {
		if cls != "" {
			classes = append(classes, cls)
		}
	}
	s.registerByID(m, unescapeCSS(id), "", classes, r)
}

// registerByID reports the offense and rewrites to find_by_id.
//
// Description:
//
//	The method name becomes find_by_id and the first argument becomes the
//	id literal, followed by options when given. A selector-type symbol and
//	the comma after it are removed. Classes move to a class: option,
//	merging an existing one.
func (s *SpecificFinders) registerByID(m finderCall, id, options string, classes []string, r *Reporter) {
	call := m.call
	msg := fmt.Sprintf(specificFindersMsg, "find_by_id")

	var classOption *ast.Arg
	if len(classes) > 0 {
		if opt, ok := call.FindPair("class"); ok {
			merged, ok := appendClassValues(classes, opt.Val)
			if !ok {
				r.Add(offenseRange(call), msg)
				return
			}
			classes = merged
			classOption = opt
		}
	}

	replacement := ast.Quote(id, '\'')
	if options != "" {
		replacement += ", " + options
	}

	first := call.Args[0]
	r.AddCorrectable(offenseRange(call), msg, func(c *Corrector) {
		c.Replace(call.MethodLoc, "find_by_id")
		c.Replace(first.Loc, replacement)
		if len(classes) > 0 {
			if classOption != nil {
				c.Replace(classOption.Val.Loc, rubyStringArray(classes))
			} else {
				c.InsertAfter(first.Loc, ", class: "+classValue(classes))
			}
		}
		if m.hasSym {
			c.RemoveRange(first.Loc.End, call.Args[1].Loc.End)
		}
	})
}

// appendClassValues adds the strings of an existing class: option. Values
// that are not string literals cannot be merged.
func appendClassValues(classes []string, val *ast.Arg) ([]string, bool) {
	if val == nil {
		return nil, false
	}
	out := append([]string{}, classes...)
	switch val.Kind {
	case ast.ArgString:
		return append(out, val.Value), true
	case ast.ArgArray:
		for _, e := range val.Elems {
			if e.Kind != ast.ArgString {
				return nil, false
			}
			out = append(out, e.Value)
		}
		return out, true
	default:
		return nil, false
	}
}

// classValue renders 'a' for one class and ["a", "b"] for several.
func classValue(classes []string) string {
	if len(classes) == 1 {
		return ast.Quote(classes[0], '\'')
	}
	return rubyStringArray(classes)
}

// rubyStringArray renders classes as a double-quoted Ruby array literal.
func rubyStringArray(classes []string) string {
	parts := make([]string, len(classes))
	for i, c := range classes {
		parts[i] = ast.Quote(c, '"')
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// unescapeCSS drops CSS escape backslashes from an id.
func unescapeCSS(id string) string {
	return strings.ReplaceAll(id, `\`, "")
}

// offenseRange spans from the method name to the end of the arguments.
func offenseRange(call *ast.Call) ast.Span {
	if !call.ArgsLoc.IsZero() {
		return spanBetween(call.MethodLoc, call.ArgsLoc)
	}
	return call.MethodLoc
}
