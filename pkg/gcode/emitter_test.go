// G-code emitter tests
//
// Copyright (C) 2026  Foamcut Go Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package gcode

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "foamcut-go/pkg/errors"
	"foamcut-go/pkg/geom"
	"foamcut-go/pkg/kinematics"
	"foamcut-go/pkg/syncpath"
	"foamcut-go/pkg/toolpath"
)

func mustPair(t *testing.T, left, right []toolpath.Vertex) *syncpath.Pair {
	t.Helper()
	pair, err := syncpath.Synchronize(left, right)
	require.NoError(t, err)
	return pair
}

func arcVerts(cx, cy, r float64, n int) []toolpath.Vertex {
	vs := make([]toolpath.Vertex, n)
	for i := range vs {
		a := math.Pi * float64(i) / float64(n-1)
		vs[i] = toolpath.V(cx+r*math.Cos(a), cy+r*math.Sin(a))
	}
	return vs
}

func TestEmitLineCounts(t *testing.T) {
	pair := mustPair(t, arcVerts(0, 0, 50, 40), arcVerts(0, 0, 20, 25))
	prog, err := Emit(pair, Options{FeedRate: 300, WireCurrent: 2.5})
	require.NoError(t, err)

	rapid, linear := prog.Counts()
	assert.Equal(t, 1, rapid)
	assert.Equal(t, pair.Len()-1, linear)
	assert.Equal(t, pair.Len()+6, prog.Len())

	assert.Equal(t, []string{"G17", "G21", "G90", "M3 S2.5"}, prog.Lines[:4])
	assert.Equal(t, []string{"M5", "M2"}, prog.Lines[prog.Len()-2:])
	assert.Greater(t, prog.CutTime, 0.0)
}

func TestEmitBlockFormat(t *testing.T) {
	pair := mustPair(t,
		[]toolpath.Vertex{toolpath.V(0, 0), toolpath.V(10, 0), toolpath.V(20, 0)},
		[]toolpath.Vertex{toolpath.V(0, 0), toolpath.V(5, 0), toolpath.V(10, 0)})
	prog, err := Emit(pair, Options{FeedRate: 300, WireCurrent: 1, Comment: "root rib"})
	require.NoError(t, err)

	assert.Equal(t, "G0 X0.000 Y0.000 A0.000 Z0.000 ; root rib", prog.Lines[4])
	// 300 * sqrt(10^2+5^2) / 10
	assert.Equal(t, "G1 X10.000 Y0.000 A5.000 Z0.000 F335.4", prog.Lines[5])
	assert.Equal(t, "G1 X20.000 Y0.000 A10.000 Z0.000", prog.Lines[6], "unchanged feed is omitted")
}

func TestEmitFeedOverrideScope(t *testing.T) {
	// entry -5..0 at 100 mm/min, exit 10..15 at 50 mm/min
	side := []toolpath.Vertex{
		toolpath.V(-5, 0),
		{Point: geom.Pt(0, 0), Feed: 100},
		toolpath.V(5, 0),
		toolpath.V(10, 0),
		{Point: geom.Pt(15, 0), Feed: 50},
	}
	pair := mustPair(t, side, side)
	prog, err := Emit(pair, Options{FeedRate: 300})
	require.NoError(t, err)

	motion := prog.Lines[5 : prog.Len()-2]
	require.Len(t, motion, 4)
	assert.True(t, strings.HasSuffix(motion[0], " F141.4"), motion[0])
	assert.True(t, strings.HasSuffix(motion[1], " F424.3"), motion[1])
	assert.NotContains(t, motion[2], "F")
	assert.True(t, strings.HasSuffix(motion[3], " F70.7"), motion[3])
}

func TestEmitCoarseLeadInKeepsFeed(t *testing.T) {
	// a 5 mm lead-in on a 105 mm side: no sample falls inside it
	left := []toolpath.Vertex{
		toolpath.V(0, 0),
		{Point: geom.Pt(5, 0), Feed: 100},
		toolpath.V(105, 0),
	}
	right := []toolpath.Vertex{
		toolpath.V(0, 0),
		{Point: geom.Pt(5, 0), Feed: 100},
		toolpath.V(15, 0),
	}
	pair := mustPair(t, left, right)
	opts := Options{FeedRate: 300}
	prog, err := Emit(pair, opts)
	require.NoError(t, err)

	motion := prog.Lines[5 : prog.Len()-2]
	require.Len(t, motion, 2)
	assert.Equal(t, "G1 X52.500 Y0.000 A7.500 Z0.000 F101.0", motion[0])
	assert.Equal(t, "G1 X105.000 Y0.000 A15.000 Z0.000 F303.0", motion[1])
	require.NoError(t, Verify(prog, pair, opts))
}

func TestNominalFeed(t *testing.T) {
	plain := toolpath.V(0, 0)
	slow := toolpath.Vertex{Feed: 80}
	slower := toolpath.Vertex{Feed: 60}
	assert.Equal(t, 300.0, NominalFeed(plain, plain, 300))
	assert.Equal(t, 80.0, NominalFeed(slow, plain, 300))
	assert.Equal(t, 80.0, NominalFeed(plain, slow, 300))
	assert.Equal(t, 60.0, NominalFeed(slow, slower, 300))
	assert.Equal(t, 500.0, NominalFeed(toolpath.Vertex{Feed: 500}, plain, 300))
}

func TestEmitNoNegativeZero(t *testing.T) {
	pair := mustPair(t,
		[]toolpath.Vertex{toolpath.V(-0.0001, 0), toolpath.V(10, -0.0002)},
		[]toolpath.Vertex{toolpath.V(0, 0), toolpath.V(10, 0)})
	prog, err := Emit(pair, Options{FeedRate: 300})
	require.NoError(t, err)
	assert.NotContains(t, prog.String(), "-0.000")
	assert.Equal(t, "G0 X0.000 Y0.000 A0.000 Z0.000", prog.Lines[4])
}

func TestEmitAxisMapAndDecimals(t *testing.T) {
	pair := mustPair(t,
		[]toolpath.Vertex{toolpath.V(0, 0), toolpath.V(1.23456, 0)},
		[]toolpath.Vertex{toolpath.V(0, 0), toolpath.V(0, 1.23456)})
	axes := kinematics.AxisMap{LeftH: "X", LeftV: "Y", RightH: "U", RightV: "V"}
	prog, err := Emit(pair, Options{FeedRate: 200, AxisMap: axes, Decimals: 2})
	require.NoError(t, err)
	assert.Equal(t, "G1 X1.23 Y0.00 U0.00 V1.23 F282.8", prog.Lines[5])
}

func TestEmitEmptyPair(t *testing.T) {
	_, err := Emit(nil, Options{FeedRate: 300})
	assert.ErrorIs(t, err, ferrors.EmptySyncPath)

	_, err = Emit(&syncpath.Pair{}, Options{FeedRate: 300})
	assert.ErrorIs(t, err, ferrors.EmptySyncPath)
}

func TestEmitInvalidOptions(t *testing.T) {
	pair := mustPair(t, arcVerts(0, 0, 5, 4), arcVerts(0, 0, 5, 4))
	for _, opts := range []Options{
		{FeedRate: 0},
		{FeedRate: -1},
		{FeedRate: 300, WireCurrent: -2},
		{FeedRate: 300, AxisMap: kinematics.AxisMap{LeftH: "X", LeftV: "X", RightH: "A", RightV: "Z"}},
	} {
		_, err := Emit(pair, opts)
		require.Error(t, err, "%+v", opts)
		assert.True(t, ferrors.IsConfig(err))
	}
}

func TestProgramWriteTo(t *testing.T) {
	prog := &Program{Lines: []string{"G17", "M2"}}
	var buf bytes.Buffer
	n, err := prog.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
	assert.Equal(t, "G17\nM2\n", buf.String())
	assert.Equal(t, buf.String(), prog.String())
}

func TestEmitVerifyRoundTrip(t *testing.T) {
	left := append([]toolpath.Vertex{{Point: geom.Pt(-60, 0)}}, arcVerts(0, 0, 50, 60)...)
	left[1].Feed = 120
	right := append([]toolpath.Vertex{{Point: geom.Pt(-30, 0)}}, arcVerts(0, 0, 20, 33)...)
	right[1].Feed = 120
	// the synthetic lead-ins end at (50,0) / (20,0) reached through the arc start
	pair := mustPair(t, left, right)

	opts := Options{FeedRate: 400, WireCurrent: 3}
	prog, err := Emit(pair, opts)
	require.NoError(t, err)
	require.NoError(t, Verify(prog, pair, opts))

	// dropping a block breaks lockstep
	broken := &Program{Lines: append(append([]string{}, prog.Lines[:6]...), prog.Lines[7:]...)}
	err = Verify(broken, pair, opts)
	assert.True(t, ferrors.Is(err, ferrors.ErrGCodeSync), "%v", err)
}
