// Configuration errors
//
// Copyright (C) 2026  Foamcut Go Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

// Package config parses the INI-style job files that describe a batch of
// cuts, with typed option access and unused-option reporting.
package config

import (
	"fmt"

	ferrors "foamcut-go/pkg/errors"
)

// Configuration errors are CutErrors carrying one of the CONFIG_* codes
// and, when known, the section and option in their context.

// NewConfigError creates a validation error for section/option.
func NewConfigError(section, option, message string) *ferrors.CutError {
	return withLocation(ferrors.New(ferrors.ErrConfigValidation, locate(section, option, message)), section, option)
}

// WrapError wraps an existing error with config context.
func WrapError(section, option string, err error) *ferrors.CutError {
	return withLocation(ferrors.Wrap(err, ferrors.ErrConfigValidation, locate(section, option, "invalid configuration")), section, option)
}

// ErrMissingOption returns an error for a required but missing option.
func ErrMissingOption(section, option string) *ferrors.CutError {
	return withLocation(ferrors.New(ferrors.ErrConfigOption, locate(section, option, "must be specified")), section, option)
}

// ErrMissingSection returns an error for a missing section.
func ErrMissingSection(section string) *ferrors.CutError {
	return ferrors.ConfigSectionError(section)
}

// ErrInvalidValue returns an error for a value that does not parse.
func ErrInvalidValue(section, option, value, expected string) *ferrors.CutError {
	return ferrors.ConfigValidationError(section, option, fmt.Sprintf("invalid value '%s', expected %s", value, expected))
}

// ErrOutOfRange returns an error for a value outside the allowed range.
func ErrOutOfRange(section, option string, value float64, constraint string) *ferrors.CutError {
	return ferrors.ConfigValidationError(section, option, fmt.Sprintf("value %v %s", value, constraint))
}

// ErrInvalidChoice returns an error for an invalid choice value.
func ErrInvalidChoice(section, option, value string, choices []string) *ferrors.CutError {
	return ferrors.ConfigValidationError(section, option, fmt.Sprintf("'%s' is not a valid choice (valid: %v)", value, choices))
}

func locate(section, option, message string) string {
	switch {
	case option != "":
		return fmt.Sprintf("option '%s' in section '%s': %s", option, section, message)
	case section != "":
		return fmt.Sprintf("section '%s': %s", section, message)
	}
	return message
}

func withLocation(e *ferrors.CutError, section, option string) *ferrors.CutError {
	if section != "" {
		e.SetContext("section", section)
	}
	if option != "" {
		e.SetContext("option", option)
	}
	return e
}
