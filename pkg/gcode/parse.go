// G-code line parsing
//
// Copyright (C) 2026  Foamcut Go Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package gcode

import (
	"regexp"
	"strconv"
	"strings"

	ferrors "foamcut-go/pkg/errors"
)

// Command is one parsed G-code block.
type Command struct {
	Name    string            // e.g. "G1", "M3"
	Args    map[string]string // word letter to raw value
	Comment string
	Raw     string
}

var reParenComment = regexp.MustCompile(`\([^)]*\)`)

// Parse parses a single line. Blank and comment-only lines return a nil
// command and no error.
func Parse(line string) (*Command, error) {
	ln := strings.TrimSpace(line)
	comment := ""
	if idx := strings.IndexByte(ln, ';'); idx >= 0 {
		comment = strings.TrimSpace(ln[idx+1:])
		ln = ln[:idx]
	}
	ln = strings.TrimSpace(reParenComment.ReplaceAllString(ln, " "))
	if ln == "" {
		return nil, nil
	}

	fields := strings.Fields(ln)
	name := strings.ToUpper(fields[0])
	if !isCommand(name) {
		return nil, ferrors.GCodeParseError(line, "invalid command "+strconv.Quote(fields[0]))
	}
	name = normalizeName(name)
	args := make(map[string]string, len(fields)-1)
	for _, f := range fields[1:] {
		k := strings.ToUpper(f[:1])
		if k[0] < 'A' || k[0] > 'Z' {
			return nil, ferrors.GCodeParseError(line, "invalid word "+strconv.Quote(f))
		}
		if _, dup := args[k]; dup {
			return nil, ferrors.GCodeParseError(line, "repeated word "+k)
		}
		args[k] = f[1:]
	}
	return &Command{Name: name, Args: args, Comment: comment, Raw: line}, nil
}

// isCommand accepts G, M and T words with a numeric code.
func isCommand(s string) bool {
	if len(s) < 2 || strings.IndexByte("GMT", s[0]) < 0 {
		return false
	}
	_, err := strconv.ParseFloat(s[1:], 64)
	return err == nil
}

// normalizeName maps "G01" to "G1" and "G00" to "G0".
func normalizeName(s string) string {
	num := strings.TrimLeft(s[1:], "0")
	if num == "" || num[0] == '.' {
		num = "0" + num
	}
	return s[:1] + num
}

// Has reports whether the word letter k is present.
func (c *Command) Has(k string) bool {
	_, ok := c.Args[k]
	return ok
}

// Float returns the numeric value of word k. ok is false when the word is
// absent.
func (c *Command) Float(k string) (v float64, ok bool, err error) {
	raw, ok := c.Args[k]
	if !ok {
		return 0, false, nil
	}
	v, err = strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, true, ferrors.GCodeParseError(c.Raw, "word "+k+" is not a number")
	}
	return v, true, nil
}
