// G-code program model
//
// Copyright (C) 2026  Foamcut Go Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package gcode

import (
	"bufio"
	"io"
	"strings"
)

// Program is an emitted motion program, one command per line.
type Program struct {
	Lines []string
	// CutTime is the estimated duration of the linear blocks in seconds.
	CutTime float64
}

// WriteTo writes the program with a trailing newline after every line.
func (p *Program) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var n int64
	for _, line := range p.Lines {
		m, err := bw.WriteString(line)
		n += int64(m)
		if err != nil {
			return n, err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return n, err
		}
		n++
	}
	return n, bw.Flush()
}

// String returns the program text.
func (p *Program) String() string {
	var sb strings.Builder
	p.WriteTo(&sb)
	return sb.String()
}

// Len returns the number of lines.
func (p *Program) Len() int {
	return len(p.Lines)
}

// Counts returns the number of rapid (G0) and linear (G1) blocks.
func (p *Program) Counts() (rapid, linear int) {
	for _, line := range p.Lines {
		switch {
		case strings.HasPrefix(line, "G0 "):
			rapid++
		case strings.HasPrefix(line, "G1 "):
			linear++
		}
	}
	return rapid, linear
}
