// Kinematics tests
//
// Copyright (C) 2026  Foamcut Go Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package kinematics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foamcut-go/pkg/geom"
)

func TestAxisMapValidate(t *testing.T) {
	require.NoError(t, DefaultAxisMap.Validate())
	assert.Equal(t, "XYAZ", DefaultAxisMap.String())

	tests := []struct {
		name string
		m    AxisMap
	}{
		{"duplicate", AxisMap{"X", "Y", "X", "Z"}},
		{"reserved", AxisMap{"X", "Y", "F", "Z"}},
		{"empty", AxisMap{"X", "", "A", "Z"}},
		{"lower", AxisMap{"x", "Y", "A", "Z"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.m.Validate())
		})
	}
}

func TestParseAxisMap(t *testing.T) {
	m, err := ParseAxisMap("x, y, u, v")
	require.NoError(t, err)
	assert.Equal(t, AxisMap{"X", "Y", "U", "V"}, m)

	_, err = ParseAxisMap("XYZ")
	assert.Error(t, err)
	_, err = ParseAxisMap("XYXZ")
	assert.Error(t, err)
}

func TestAxisMapString(t *testing.T) {
	for _, in := range []string{"XYAZ", "XYUV", "a b x y"} {
		m, err := ParseAxisMap(in)
		require.NoError(t, err)
		back, err := ParseAxisMap(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, back)
	}
	assert.Equal(t, "XYUV", AxisMap{LeftH: "X", LeftV: "Y", RightH: "U", RightV: "V"}.String())
}

func TestPosition(t *testing.T) {
	p := PositionOf(geom.Pt(1, 2), geom.Pt(3, 4))
	assert.Equal(t, Position{1, 2, 3, 4}, p)
	assert.Equal(t, geom.Pt(1, 2), p.Left())
	assert.Equal(t, geom.Pt(3, 4), p.Right())
}

func TestCorrectedFeedEqualTravel(t *testing.T) {
	m := Move{
		LeftFrom: geom.Pt(0, 0), LeftTo: geom.Pt(3, 4),
		RightFrom: geom.Pt(0, 0), RightTo: geom.Pt(0, 5),
	}
	assert.Equal(t, 5.0, m.LeftDistance())
	assert.Equal(t, 5.0, m.RightDistance())
	assert.InDelta(t, 5*math.Sqrt2, m.CombinedDistance(), 1e-12)
	assert.InDelta(t, 300*math.Sqrt2, m.CorrectedFeed(300), 1e-9)
}

func TestCorrectedFeedFartherSideRunsNominal(t *testing.T) {
	m := Move{
		LeftFrom: geom.Pt(0, 0), LeftTo: geom.Pt(10, 0),
		RightFrom: geom.Pt(0, 0), RightTo: geom.Pt(5, 0),
	}
	f := m.CorrectedFeed(300)
	// time at f over the combined distance equals time at 300 over 10 mm
	assert.InDelta(t, 10.0/300, m.CombinedDistance()/f, 1e-12)
	assert.InDelta(t, 2.0, m.Duration(f), 1e-9)
}

func TestCorrectedFeedNoTravel(t *testing.T) {
	m := Move{LeftFrom: geom.Pt(1, 1), LeftTo: geom.Pt(1, 1), RightFrom: geom.Pt(2, 2), RightTo: geom.Pt(2, 2)}
	assert.Equal(t, 300.0, m.CorrectedFeed(300))
	assert.Zero(t, m.Duration(300))
	assert.Zero(t, m.Duration(0))
}
