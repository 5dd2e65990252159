// Config section access
//
// Copyright (C) 2026  Foamcut Go Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package config

import (
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Section provides typed access to one config section and records which
// options were read.
type Section struct {
	name    string
	options map[string]string

	mu       sync.Mutex
	accessed map[string]struct{}
}

func newSection(name string, options map[string]string) *Section {
	opts := make(map[string]string, len(options))
	for k, v := range options {
		opts[strings.ToLower(k)] = v
	}
	return &Section{
		name:     name,
		options:  opts,
		accessed: make(map[string]struct{}),
	}
}

// GetName returns the section name.
func (s *Section) GetName() string {
	return s.name
}

// Arg returns the words after the first one of the section name, e.g.
// "wing_root" for [cut wing_root].
func (s *Section) Arg() string {
	_, arg, _ := strings.Cut(s.name, " ")
	return arg
}

// raw returns the option value and marks it accessed.
func (s *Section) raw(option string) (string, bool) {
	key := strings.ToLower(option)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessed[key] = struct{}{}
	v, ok := s.options[key]
	return v, ok
}

// GetUnusedOptions returns the options that were never read, sorted.
func (s *Section) GetUnusedOptions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []string
	for opt := range s.options {
		if _, ok := s.accessed[opt]; !ok {
			result = append(result, opt)
		}
	}
	sort.Strings(result)
	return result
}

// HasOption checks if an option exists in this section.
func (s *Section) HasOption(option string) bool {
	_, ok := s.options[strings.ToLower(option)]
	return ok
}

// get looks up option and converts it with parse. With no fallback a
// missing option is an error.
func get[T any](s *Section, option string, parse func(string) (T, error), fallback []T) (T, error) {
	var zero T
	v, ok := s.raw(option)
	if !ok {
		if len(fallback) > 0 {
			return fallback[0], nil
		}
		return zero, ErrMissingOption(s.name, option)
	}
	return parse(strings.TrimSpace(v))
}

// Get returns a string option value.
func (s *Section) Get(option string, fallback ...string) (string, error) {
	return get(s, option, func(v string) (string, error) { return v, nil }, fallback)
}

// GetInt returns an integer option value.
func (s *Section) GetInt(option string, fallback ...int) (int, error) {
	return get(s, option, func(v string) (int, error) {
		i, err := strconv.Atoi(v)
		if err != nil {
			return 0, ErrInvalidValue(s.name, option, v, "integer")
		}
		return i, nil
	}, fallback)
}

// GetIntWithBounds returns an integer option value within [minVal, maxVal].
func (s *Section) GetIntWithBounds(option string, minVal, maxVal int, fallback ...int) (int, error) {
	v, err := s.GetInt(option, fallback...)
	if err != nil {
		return 0, err
	}
	if v < minVal {
		return 0, ErrOutOfRange(s.name, option, float64(v), "must have minimum of "+strconv.Itoa(minVal))
	}
	if v > maxVal {
		return 0, ErrOutOfRange(s.name, option, float64(v), "must have maximum of "+strconv.Itoa(maxVal))
	}
	return v, nil
}

// GetFloat returns a float64 option value.
func (s *Section) GetFloat(option string, fallback ...float64) (float64, error) {
	return get(s, option, func(v string) (float64, error) {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, ErrInvalidValue(s.name, option, v, "float")
		}
		return f, nil
	}, fallback)
}

// FloatBounds specifies bounds for GetFloatWithBounds.
type FloatBounds struct {
	MinVal *float64 // minimum value (>=)
	MaxVal *float64 // maximum value (<=)
	Above  *float64 // must be above this value (>)
}

// Above is shorthand for FloatBounds{Above: &v}.
func Above(v float64) FloatBounds { return FloatBounds{Above: &v} }

// AtLeast is shorthand for FloatBounds{MinVal: &v}.
func AtLeast(v float64) FloatBounds { return FloatBounds{MinVal: &v} }

// GetFloatWithBounds returns a float64 option value with bounds checking.
func (s *Section) GetFloatWithBounds(option string, bounds FloatBounds, fallback ...float64) (float64, error) {
	v, err := s.GetFloat(option, fallback...)
	if err != nil {
		return 0, err
	}
	ff := func(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
	switch {
	case bounds.MinVal != nil && v < *bounds.MinVal:
		return 0, ErrOutOfRange(s.name, option, v, "must have minimum of "+ff(*bounds.MinVal))
	case bounds.MaxVal != nil && v > *bounds.MaxVal:
		return 0, ErrOutOfRange(s.name, option, v, "must have maximum of "+ff(*bounds.MaxVal))
	case bounds.Above != nil && v <= *bounds.Above:
		return 0, ErrOutOfRange(s.name, option, v, "must be above "+ff(*bounds.Above))
	}
	return v, nil
}

// GetOptionalFloat returns nil when option is absent.
func (s *Section) GetOptionalFloat(option string, bounds FloatBounds) (*float64, error) {
	if !s.HasOption(option) {
		return nil, nil
	}
	v, err := s.GetFloatWithBounds(option, bounds)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// GetChoice returns a string option that must be one of choices.
func (s *Section) GetChoice(option string, choices []string, fallback ...string) (string, error) {
	v, err := s.Get(option, fallback...)
	if err != nil {
		return "", err
	}
	for _, c := range choices {
		if strings.EqualFold(v, c) {
			return c, nil
		}
	}
	return "", ErrInvalidChoice(s.name, option, v, choices)
}

// GetFloatList returns a list of floats split by sep.
func (s *Section) GetFloatList(option string, sep string, fallback ...[]float64) ([]float64, error) {
	return get(s, option, func(v string) ([]float64, error) {
		result := []float64{}
		for _, p := range strings.Split(v, sep) {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			f, err := strconv.ParseFloat(p, 64)
			if err != nil {
				return nil, ErrInvalidValue(s.name, option, p, "float")
			}
			result = append(result, f)
		}
		return result, nil
	}, fallback)
}
