// Unified error handling for foamcut-go
//
// Copyright (C) 2026  Foamcut Go Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrorCode represents the category of error
type ErrorCode string

const (
	// Path construction errors
	ErrUnknownEntity    ErrorCode = "UNKNOWN_ENTITY"
	ErrDisconnectedPath ErrorCode = "DISCONNECTED_PATH"
	ErrMisplacedMarker  ErrorCode = "MISPLACED_MARKER"
	ErrEntityInvalid    ErrorCode = "ENTITY_INVALID"

	// Entry/exit errors
	ErrAsymmetricMarker ErrorCode = "ASYMMETRIC_MARKER"
	ErrMarkerConfig     ErrorCode = "MARKER_CONFIG"

	// Synchronization and emission errors
	ErrDegeneratePath ErrorCode = "DEGENERATE_PATH"
	ErrEmptySyncPath  ErrorCode = "EMPTY_SYNC_PATH"

	// G-code errors
	ErrGCodeParse ErrorCode = "GCODE_PARSE"
	ErrGCodeSync  ErrorCode = "GCODE_SYNC"

	// Configuration errors
	ErrConfigSection    ErrorCode = "CONFIG_SECTION"
	ErrConfigOption     ErrorCode = "CONFIG_OPTION"
	ErrConfigValidation ErrorCode = "CONFIG_VALIDATION"
)

// CutError is the error type reported for a cutting-path request.
// All of them are terminal for the request they belong to.
type CutError struct {
	// Code is the error category
	Code ErrorCode

	// Message is a human-readable error description
	Message string

	// Side is "left" or "right" when the failure is tied to one gantry
	Side string

	// IDs lists the offending entity or marker identifiers
	IDs []int

	// Err wraps the underlying error
	Err error

	// Context provides additional context
	Context map[string]interface{}
}

// Error implements the error interface
func (e *CutError) Error() string {
	var sb strings.Builder
	sb.WriteByte('[')
	sb.WriteString(string(e.Code))
	if e.Side != "" {
		sb.WriteByte(':')
		sb.WriteString(e.Side)
	}
	sb.WriteString("] ")
	sb.WriteString(e.Message)
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

// Unwrap returns the underlying error
func (e *CutError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match on the code of a bare CutError target.
func (e *CutError) Is(target error) bool {
	t, ok := target.(*CutError)
	if !ok {
		return false
	}
	return t.Message == "" && t.Code == e.Code
}

// SetSide sets the gantry side
func (e *CutError) SetSide(side string) *CutError {
	e.Side = side
	return e
}

// SetIDs records the offending identifiers
func (e *CutError) SetIDs(ids ...int) *CutError {
	e.IDs = append(e.IDs[:0], ids...)
	return e
}

// SetContext adds additional context
func (e *CutError) SetContext(key string, value interface{}) *CutError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// Wrap wraps an existing error with additional context
func Wrap(err error, code ErrorCode, message string) *CutError {
	return &CutError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// New creates a new CutError
func New(code ErrorCode, message string) *CutError {
	return &CutError{
		Code:    code,
		Message: message,
	}
}

// Sentinels usable with errors.Is.
var (
	UnknownEntity    = &CutError{Code: ErrUnknownEntity}
	DisconnectedPath = &CutError{Code: ErrDisconnectedPath}
	AsymmetricMarker = &CutError{Code: ErrAsymmetricMarker}
	DegeneratePath   = &CutError{Code: ErrDegeneratePath}
	EmptySyncPath    = &CutError{Code: ErrEmptySyncPath}
	MisplacedMarker  = &CutError{Code: ErrMisplacedMarker}
	MarkerConfig     = &CutError{Code: ErrMarkerConfig}
)

// Path errors

// UnknownEntityError creates an error for an id with no resolvable geometry
func UnknownEntityError(id int) *CutError {
	return New(ErrUnknownEntity, fmt.Sprintf("entity %d has no geometry", id)).SetIDs(id)
}

// DisconnectedPathError creates an error for a gap between stitched entities
func DisconnectedPathError(fromID, toID int, gap, tolerance float64) *CutError {
	return New(ErrDisconnectedPath,
		fmt.Sprintf("gap of %.3f mm between entity %d and entity %d exceeds tolerance %.3f mm", gap, fromID, toID, tolerance)).
		SetIDs(fromID, toID).
		SetContext("gap", gap).
		SetContext("tolerance", tolerance)
}

// MisplacedMarkerError creates an error for an entry not at the head or an exit not at the tail
func MisplacedMarkerError(id int, kind string, index int) *CutError {
	return New(ErrMisplacedMarker, fmt.Sprintf("%s marker %d at position %d", kind, id, index)).
		SetIDs(id).
		SetContext("index", index)
}

// EntityInvalidError creates an error for an entity that cannot be rendered
func EntityInvalidError(id int, reason string) *CutError {
	return New(ErrEntityInvalid, fmt.Sprintf("entity %d: %s", id, reason)).SetIDs(id)
}

// Entry/exit errors

// AsymmetricMarkerError creates an error for entry/exit markers that differ between sides
func AsymmetricMarkerError(kind string, left, right int) *CutError {
	msg := fmt.Sprintf("%s marker mismatch: left=%s right=%s", kind, markerID(left), markerID(right))
	e := New(ErrAsymmetricMarker, msg)
	for _, id := range []int{left, right} {
		if id >= 0 {
			e.IDs = append(e.IDs, id)
		}
	}
	return e
}

func markerID(id int) string {
	if id < 0 {
		return "none"
	}
	return fmt.Sprintf("%d", id)
}

// MarkerConfigError creates an error for a missing or invalid marker config entry
func MarkerConfigError(id int, reason string) *CutError {
	return New(ErrMarkerConfig, fmt.Sprintf("marker %d: %s", id, reason)).SetIDs(id)
}

// Synchronization errors

// DegeneratePathError creates an error for a side with fewer than 2 usable points
func DegeneratePathError(side string, points int) *CutError {
	return New(ErrDegeneratePath, fmt.Sprintf("path resolves to %d distinct point(s)", points)).
		SetSide(side).
		SetContext("points", points)
}

// EmptySyncPathError creates an error for a synchronized pair that cannot be emitted
func EmptySyncPathError(samples int) *CutError {
	return New(ErrEmptySyncPath, fmt.Sprintf("synchronized path has %d sample(s), need at least 2", samples)).
		SetContext("samples", samples)
}

// G-code errors

// GCodeParseError creates an error for G-code parsing failure
func GCodeParseError(line string, reason string) *CutError {
	return New(ErrGCodeParse, fmt.Sprintf("failed to parse G-code: %s (reason: %s)", line, reason))
}

// GCodeSyncError creates an error for a replayed block whose gantries lose lockstep
func GCodeSyncError(block int, reason string) *CutError {
	return New(ErrGCodeSync, fmt.Sprintf("block %d: %s", block, reason)).SetContext("block", block)
}

// Config errors

// ConfigSectionError creates an error for missing config section
func ConfigSectionError(section string) *CutError {
	return New(ErrConfigSection, fmt.Sprintf("section '%s' not found", section)).
		SetContext("section", section)
}

// ConfigValidationError creates an error for config validation failure
func ConfigValidationError(section, option string, reason string) *CutError {
	return New(ErrConfigValidation, fmt.Sprintf("option '%s' in section '%s': %s", option, section, reason)).
		SetContext("section", section).
		SetContext("option", option)
}

// Is checks if error matches given error code
func Is(err error, code ErrorCode) bool {
	var cutErr *CutError
	if stderrors.As(err, &cutErr) {
		return cutErr.Code == code
	}
	return false
}

// CodeOf returns the code of the first CutError in the chain, or "".
func CodeOf(err error) ErrorCode {
	var cutErr *CutError
	if stderrors.As(err, &cutErr) {
		return cutErr.Code
	}
	return ""
}

// IsConfig checks if error is a config error
func IsConfig(err error) bool {
	return Is(err, ErrConfigSection) ||
		Is(err, ErrConfigOption) ||
		Is(err, ErrConfigValidation) ||
		Is(err, ErrMarkerConfig)
}
