// G-code emission for a synchronized path pair
//
// Copyright (C) 2026  Foamcut Go Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

// Package gcode emits, parses and replays the 4-axis motion programs sent
// to the foam cutter controller.
package gcode

import (
	"fmt"
	"math"
	"strconv"

	ferrors "foamcut-go/pkg/errors"
	"foamcut-go/pkg/kinematics"
	"foamcut-go/pkg/log"
	"foamcut-go/pkg/pool"
	"foamcut-go/pkg/syncpath"
	"foamcut-go/pkg/toolpath"
)

// Program header and footer commands.
const (
	PlaneXY  = "G17"
	UnitsMM  = "G21"
	Absolute = "G90"
	WireOff  = "M5"
	End      = "M2"
)

// DefaultDecimals is the coordinate precision of emitted blocks.
const DefaultDecimals = 3

// FeedDecimals is the precision of the F word.
const FeedDecimals = 1

// Options control emission.
type Options struct {
	FeedRate    float64 // nominal feed, mm/min
	WireCurrent float64 // S word of the wire-on command
	Decimals    int     // coordinate decimals, 0 selects DefaultDecimals
	AxisMap     kinematics.AxisMap
	Comment     string // appended to the rapid line
}

func (o Options) withDefaults() Options {
	if o.Decimals <= 0 {
		o.Decimals = DefaultDecimals
	}
	if o.AxisMap == (kinematics.AxisMap{}) {
		o.AxisMap = kinematics.DefaultAxisMap
	}
	return o
}

// Validate checks option ranges.
func (o Options) Validate() error {
	if !(o.FeedRate > 0) || math.IsInf(o.FeedRate, 0) {
		return fmt.Errorf("feed rate must be positive, got %v", o.FeedRate)
	}
	if o.WireCurrent < 0 || math.IsNaN(o.WireCurrent) {
		return fmt.Errorf("wire current must not be negative, got %v", o.WireCurrent)
	}
	if o.Decimals > 6 {
		return fmt.Errorf("at most 6 decimals, got %d", o.Decimals)
	}
	return o.withDefaults().AxisMap.Validate()
}

// NominalFeed returns the feed a block ending at samples l and r should
// run at: the smaller entry/exit override carried by either sample, or
// global when neither carries one. A sample carries the override of any
// input segment its block crosses, so the rule holds for coarse
// sampling too.
func NominalFeed(l, r toolpath.Vertex, global float64) float64 {
	f := 0.0
	for _, o := range [2]float64{l.Feed, r.Feed} {
		if o > 0 && (f == 0 || o < f) {
			f = o
		}
	}
	if f == 0 {
		return global
	}
	return f
}

// WireOn returns the wire heat command for current.
func WireOn(current float64) string {
	return "M3 S" + strconv.FormatFloat(current, 'f', -1, 64)
}

// Emit turns pair into a motion program. The left gantry drives the first
// two axes of opts.AxisMap and the right gantry the last two. Each linear
// block carries a feed scaled so that the gantry travelling farther in
// that block moves at the nominal feed.
func Emit(pair *syncpath.Pair, opts Options) (*Program, error) {
	if pair == nil || pair.Len() < 2 {
		n := 0
		if pair != nil {
			n = pair.Len()
		}
		return nil, ferrors.EmptySyncPathError(n)
	}
	if err := opts.Validate(); err != nil {
		return nil, ferrors.Wrap(err, ferrors.ErrConfigValidation, "invalid emitter options")
	}
	opts = opts.withDefaults()
	letters := opts.AxisMap.Letters()

	n := pair.Len()
	prog := &Program{Lines: make([]string, 0, n+6)}
	prog.Lines = append(prog.Lines, PlaneXY, UnitsMM, Absolute, WireOn(opts.WireCurrent))

	buf := pool.GetByteBuffer()
	defer pool.PutByteBuffer(buf)

	l0, r0 := pair.At(0)
	buf.WriteString("G0")
	writeAxes(buf, letters, kinematics.PositionOf(l0.Point, r0.Point), opts.Decimals)
	if opts.Comment != "" {
		buf.WriteString(" ; ")
		buf.WriteString(opts.Comment)
	}
	prog.Lines = append(prog.Lines, buf.String())

	lastF := ""
	for k := 1; k < n; k++ {
		lp, rp := pair.At(k - 1)
		l, r := pair.At(k)
		nominal := NominalFeed(l, r, opts.FeedRate)
		mv := kinematics.Move{
			LeftFrom: lp.Point, LeftTo: l.Point,
			RightFrom: rp.Point, RightTo: r.Point,
			Feed: nominal,
		}
		feed := mv.CorrectedFeed(nominal)
		prog.CutTime += mv.Duration(feed)

		buf.Reset()
		buf.WriteString("G1")
		writeAxes(buf, letters, kinematics.PositionOf(l.Point, r.Point), opts.Decimals)
		f := strconv.FormatFloat(feed, 'f', FeedDecimals, 64)
		if f != lastF {
			buf.WriteString(" F")
			buf.WriteString(f)
			lastF = f
		}
		prog.Lines = append(prog.Lines, buf.String())
	}
	prog.Lines = append(prog.Lines, WireOff, End)

	log.GetLogger("gcode").WithFields(log.Fields{
		"samples":  n,
		"lines":    len(prog.Lines),
		"cut_time": prog.CutTime,
	}).Debug("program emitted")
	return prog, nil
}

func writeAxes(buf *pool.ByteBuffer, letters [4]string, pos kinematics.Position, decimals int) {
	for i, l := range letters {
		buf.WriteByte(' ')
		buf.WriteString(l)
		buf.AppendFloat(round(pos[i], decimals), decimals)
	}
}

// round rounds v to decimals and drops the sign of a zero result so that
// tiny negative values never print as -0.000.
func round(v float64, decimals int) float64 {
	scale := math.Pow10(decimals)
	v = math.Round(v*scale) / scale
	if v == 0 {
		return 0
	}
	return v
}
