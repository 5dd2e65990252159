// G-code parser and simulator tests
//
// Copyright (C) 2026  Foamcut Go Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package gcode

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "foamcut-go/pkg/errors"
	"foamcut-go/pkg/kinematics"
)

func TestParse(t *testing.T) {
	tests := []struct {
		line    string
		name    string
		args    map[string]string
		comment string
	}{
		{"G1 X1.5 Y-2 A0 Z3 F300.0", "G1", map[string]string{"X": "1.5", "Y": "-2", "A": "0", "Z": "3", "F": "300.0"}, ""},
		{"g0 x1 y2 ; start", "G0", map[string]string{"X": "1", "Y": "2"}, "start"},
		{"G01 X1 (inline) Y2", "G1", map[string]string{"X": "1", "Y": "2"}, ""},
		{"G00", "G0", map[string]string{}, ""},
		{"M3 S2.5", "M3", map[string]string{"S": "2.5"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			cmd, err := Parse(tt.line)
			require.NoError(t, err)
			require.NotNil(t, cmd)
			assert.Equal(t, tt.name, cmd.Name)
			assert.Equal(t, tt.args, cmd.Args)
			assert.Equal(t, tt.comment, cmd.Comment)
			assert.Equal(t, tt.line, cmd.Raw)
		})
	}
}

func TestParseBlankAndComments(t *testing.T) {
	for _, line := range []string{"", "   ", "; only a comment", "(paren only)"} {
		cmd, err := Parse(line)
		assert.NoError(t, err)
		assert.Nil(t, cmd, "%q", line)
	}
}

func TestParseErrors(t *testing.T) {
	for _, line := range []string{"X10", "G1 X1 X2", "G1 #5", "Gx"} {
		_, err := Parse(line)
		require.Error(t, err, line)
		assert.True(t, ferrors.Is(err, ferrors.ErrGCodeParse))
	}
}

func TestCommandFloat(t *testing.T) {
	cmd, err := Parse("G1 X2.5 Yabc")
	require.NoError(t, err)

	v, ok, err := cmd.Float("X")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2.5, v)

	_, ok, err = cmd.Float("Z")
	assert.NoError(t, err)
	assert.False(t, ok)

	_, _, err = cmd.Float("Y")
	assert.Error(t, err)
	assert.True(t, cmd.Has("Y"))
}

func TestSimulatorReplay(t *testing.T) {
	program := strings.Join([]string{
		"G17", "G21", "G90", "M3 S2",
		"G0 X0 Y0 A0 Z0",
		"G1 X10 Y0 A5 Z0 F335.4",
		"G91",
		"G1 X10 A5",
		"M5", "M2",
	}, "\n")
	sim := NewSimulator(kinematics.DefaultAxisMap)
	require.NoError(t, sim.Run(strings.NewReader(program)))

	assert.Equal(t, kinematics.Position{20, 0, 10, 0}, sim.Position())
	assert.Equal(t, 335.4, sim.Feed())
	on, _ := sim.WireOn()
	assert.False(t, on)
	assert.True(t, sim.Ended())

	blocks := sim.Blocks()
	require.Len(t, blocks, 3)
	assert.True(t, blocks[0].Rapid)
	assert.Equal(t, 6, blocks[1].Line)
	assert.InDelta(t, 300, blocks[1].LeadSpeed(), 0.1)
	assert.InDelta(t, 300, blocks[2].LeadSpeed(), 0.1)
	assert.InDelta(t, 4.0, sim.CutTime(), 1e-3)
}

func TestSimulatorWireState(t *testing.T) {
	sim := NewSimulator(kinematics.AxisMap{})
	require.NoError(t, sim.Execute("M3 S1.75"))
	on, current := sim.WireOn()
	assert.True(t, on)
	assert.Equal(t, 1.75, current)
	require.NoError(t, sim.Execute("M117 hello"))
}

func TestSimulatorErrors(t *testing.T) {
	tests := map[string][]string{
		"unknown axis":   {"G0 B1"},
		"no feed":        {"G1 X1"},
		"zero feed":      {"G1 X1 F0"},
		"after end":      {"M2", "G0 X1"},
		"bad number":     {"G0 X1..2"},
		"bad wire level": {"M3 Sx"},
	}
	for name, lines := range tests {
		t.Run(name, func(t *testing.T) {
			sim := NewSimulator(kinematics.DefaultAxisMap)
			var err error
			for _, l := range lines {
				if err = sim.Execute(l); err != nil {
					break
				}
			}
			require.Error(t, err)
			assert.True(t, ferrors.Is(err, ferrors.ErrGCodeParse), "%v", err)
		})
	}
}
