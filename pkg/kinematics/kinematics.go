// Dual-gantry 4-axis kinematics
//
// Copyright (C) 2026  Foamcut Go Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

// Package kinematics maps a pair of gantry positions onto the four machine
// axes and derives the commanded feed of a synchronized move.
package kinematics

import (
	"fmt"
	"math"
	"strings"

	"foamcut-go/pkg/geom"
)

// AxisMap names the machine axis letter driven by each gantry coordinate.
type AxisMap struct {
	LeftH  string // left horizontal
	LeftV  string // left vertical
	RightH string // right horizontal
	RightV string // right vertical
}

// DefaultAxisMap drives the left gantry on X/Y and the right one on A/Z.
var DefaultAxisMap = AxisMap{LeftH: "X", LeftV: "Y", RightH: "A", RightV: "Z"}

// reserved letters carry non-axis words in a motion block.
const reserved = "FGMNST"

// Letters returns the axis letters in block order.
func (m AxisMap) Letters() [4]string {
	return [4]string{m.LeftH, m.LeftV, m.RightH, m.RightV}
}

// Validate checks that the map uses four distinct single-letter axes.
func (m AxisMap) Validate() error {
	seen := make(map[string]bool, 4)
	for _, l := range m.Letters() {
		if len(l) != 1 || l[0] < 'A' || l[0] > 'Z' {
			return fmt.Errorf("invalid axis letter %q", l)
		}
		if strings.Contains(reserved, l) {
			return fmt.Errorf("axis letter %q is reserved", l)
		}
		if seen[l] {
			return fmt.Errorf("duplicate axis letter %q", l)
		}
		seen[l] = true
	}
	return nil
}

// String returns the compact form, e.g. "XYAZ".
func (m AxisMap) String() string {
	l := m.Letters()
	return strings.Join(l[:], "")
}

// ParseAxisMap parses "XYAZ" or "X, Y, A, Z".
func ParseAxisMap(s string) (AxisMap, error) {
	s = strings.ToUpper(strings.NewReplacer(",", "", " ", "").Replace(s))
	if len(s) != 4 {
		return AxisMap{}, fmt.Errorf("axis map %q must name 4 axes", s)
	}
	m := AxisMap{LeftH: s[0:1], LeftV: s[1:2], RightH: s[2:3], RightV: s[3:4]}
	if err := m.Validate(); err != nil {
		return AxisMap{}, err
	}
	return m, nil
}

// Position is a machine position in AxisMap order.
type Position [4]float64

// PositionOf combines the two gantry points into a machine position.
func PositionOf(left, right geom.Point) Position {
	return Position{left.X, left.Y, right.X, right.Y}
}

// Left returns the left gantry point.
func (p Position) Left() geom.Point { return geom.Pt(p[0], p[1]) }

// Right returns the right gantry point.
func (p Position) Right() geom.Point { return geom.Pt(p[2], p[3]) }

// Move is one synchronized motion segment between consecutive samples.
type Move struct {
	LeftFrom, LeftTo   geom.Point
	RightFrom, RightTo geom.Point
	Feed               float64 // nominal feed, mm/min
}

// LeftDistance returns the travel of the left gantry.
func (m Move) LeftDistance() float64 {
	return m.LeftFrom.Dist(m.LeftTo)
}

// RightDistance returns the travel of the right gantry.
func (m Move) RightDistance() float64 {
	return m.RightFrom.Dist(m.RightTo)
}

// MaxDistance returns the travel of the farther-moving gantry.
func (m Move) MaxDistance() float64 {
	return math.Max(m.LeftDistance(), m.RightDistance())
}

// CombinedDistance returns the 4-D Euclidean length of the move, which is
// what the controller divides by the F word.
func (m Move) CombinedDistance() float64 {
	return math.Hypot(m.LeftDistance(), m.RightDistance())
}

// CorrectedFeed returns the F word that makes the farther gantry travel at
// nominal mm/min once the controller spreads F over the 4-D distance.
// A move with no travel keeps the nominal feed.
func (m Move) CorrectedFeed(nominal float64) float64 {
	d := m.MaxDistance()
	if d < geom.Epsilon {
		return nominal
	}
	return nominal * m.CombinedDistance() / d
}

// Duration returns the move time in seconds when commanded at feed
// (mm/min) over the combined distance.
func (m Move) Duration(feed float64) float64 {
	if feed <= 0 {
		return 0
	}
	return m.CombinedDistance() / feed * 60
}
