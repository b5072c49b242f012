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
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrUnknownCop indicates a rule name that is not registered.
	ErrUnknownCop = errors.New("unknown cop")

	// ErrInvalidOption indicates a rule option value the rule rejects.
	ErrInvalidOption = errors.New("invalid cop option")
)

// Factory constructs a rule from its options.
type Factory func(Options) (Cop, error)

var factories = map[string]Factory{
	ChainedFindName: func(Options) (Cop, error) { return NewChainedFind(), nil },
	SpecificFindersName: func(Options) (Cop, error) {
		return NewSpecificFinders(), nil
	},
	RedundantWithinFindName: func(Options) (Cop, error) {
		return NewRedundantWithinFind(), nil
	},
	AssertStyleName: func(Options) (Cop, error) { return NewAssertStyle(), nil },
	MatchStyleName:  func(Options) (Cop, error) { return NewMatchStyle(), nil },
	ClickLinkOrButtonStyleName: func(o Options) (Cop, error) {
		c, err := NewClickLinkOrButtonStyle(o.EnforcedStyle)
		if err != nil {
			return nil, err
		}
		return c, nil
	},
}

// Names returns every registered rule name, sorted.
func Names() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New constructs the named rule.
//
// Outputs:
//
//	Cop   - The rule.
//	error - ErrUnknownCop for an unregistered name, ErrInvalidOption when
//	        the rule rejects opts.
func New(name string, opts Options) (Cop, error) {
	factory, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCop, name)
	}
	return factory(opts)
}

// All constructs every registered rule with default options, sorted by
// name.
func All() []Cop {
	names := Names()
	all := make([]Cop, 0, len(names))
	for _, name := range names {
		c, err := New(name, Options{})
		if err != nil {
			// default options are always valid
			panic(err)
		}
		all = append(all, c)
	}
	return all
}
