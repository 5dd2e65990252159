// G-code program replay
//
// Copyright (C) 2026  Foamcut Go Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package gcode

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strings"

	ferrors "foamcut-go/pkg/errors"
	"foamcut-go/pkg/geom"
	"foamcut-go/pkg/kinematics"
	"foamcut-go/pkg/log"
	"foamcut-go/pkg/syncpath"
)

// Block is one replayed motion block.
type Block struct {
	Line  int // 1-based source line
	Rapid bool
	From  kinematics.Position
	To    kinematics.Position
	Feed  float64 // modal F in effect, mm/min
}

// Move returns the block as a dual-gantry move.
func (b Block) Move() kinematics.Move {
	return kinematics.Move{
		LeftFrom: b.From.Left(), LeftTo: b.To.Left(),
		RightFrom: b.From.Right(), RightTo: b.To.Right(),
		Feed: b.Feed,
	}
}

// Duration returns the block time in seconds. Rapids are not timed.
func (b Block) Duration() float64 {
	if b.Rapid {
		return 0
	}
	return b.Move().Duration(b.Feed)
}

// LeadSpeed returns the speed (mm/min) of the gantry travelling farther.
func (b Block) LeadSpeed() float64 {
	d := b.Duration()
	if d == 0 {
		return 0
	}
	return b.Move().MaxDistance() / d * 60
}

// Simulator replays a program and tracks the four axis positions, the
// modal feed and the wire state.
type Simulator struct {
	axes     kinematics.AxisMap
	index    map[string]int
	pos      kinematics.Position
	feed     float64
	absolute bool
	wireOn   bool
	current  float64
	ended    bool
	line     int
	blocks   []Block
	log      *log.Logger
}

// NewSimulator returns a simulator for the given axis map.
func NewSimulator(axes kinematics.AxisMap) *Simulator {
	if axes == (kinematics.AxisMap{}) {
		axes = kinematics.DefaultAxisMap
	}
	idx := make(map[string]int, 4)
	for i, l := range axes.Letters() {
		idx[l] = i
	}
	return &Simulator{
		axes:     axes,
		index:    idx,
		absolute: true,
		log:      log.GetLogger("simulator"),
	}
}

// Execute replays one line.
func (s *Simulator) Execute(line string) error {
	s.line++
	cmd, err := Parse(line)
	if cmd == nil || err != nil {
		return err
	}
	if s.ended {
		return ferrors.GCodeParseError(line, "command after program end")
	}

	switch cmd.Name {
	case "G0", "G1":
		return s.executeMove(cmd)
	case PlaneXY, UnitsMM:
		return nil
	case Absolute:
		s.absolute = true
	case "G91":
		s.absolute = false
	case "M3":
		v, _, err := cmd.Float("S")
		if err != nil {
			return err
		}
		s.wireOn, s.current = true, v
	case WireOff:
		s.wireOn = false
	case End:
		s.ended = true
	default:
		s.log.Debug("ignoring %s at line %d", cmd.Name, s.line)
	}
	return nil
}

func (s *Simulator) executeMove(cmd *Command) error {
	newPos := s.pos
	for k := range cmd.Args {
		v, _, err := cmd.Float(k)
		if err != nil {
			return err
		}
		if k == "F" {
			if v <= 0 {
				return ferrors.GCodeParseError(cmd.Raw, "feed must be positive")
			}
			s.feed = v
			continue
		}
		i, ok := s.index[k]
		if !ok {
			return ferrors.GCodeParseError(cmd.Raw, "unknown axis "+k)
		}
		if s.absolute {
			newPos[i] = v
		} else {
			newPos[i] += v
		}
	}

	rapid := cmd.Name == "G0"
	if !rapid && s.feed == 0 {
		return ferrors.GCodeParseError(cmd.Raw, "linear move without feed")
	}
	s.blocks = append(s.blocks, Block{
		Line:  s.line,
		Rapid: rapid,
		From:  s.pos,
		To:    newPos,
		Feed:  s.feed,
	})
	s.pos = newPos
	return nil
}

// Run replays every line of r.
func (s *Simulator) Run(r io.Reader) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if err := s.Execute(sc.Text()); err != nil {
			return err
		}
	}
	return sc.Err()
}

// Position returns the current machine position.
func (s *Simulator) Position() kinematics.Position { return s.pos }

// Feed returns the modal feed in mm/min.
func (s *Simulator) Feed() float64 { return s.feed }

// WireOn reports whether the wire is heated and at which current.
func (s *Simulator) WireOn() (bool, float64) { return s.wireOn, s.current }

// Ended reports whether the program end command was seen.
func (s *Simulator) Ended() bool { return s.ended }

// Blocks returns the replayed motion blocks.
func (s *Simulator) Blocks() []Block { return s.blocks }

// CutTime returns the summed duration of the linear blocks in seconds.
func (s *Simulator) CutTime() float64 {
	t := 0.0
	for _, b := range s.blocks {
		t += b.Duration()
	}
	return t
}

// FeedTolerance is the relative speed error Verify accepts on top of the
// error caused by coordinate rounding.
const FeedTolerance = 1e-3

// Verify replays prog and checks it against the pair it was emitted from:
// one rapid to sample 0, one linear block per following sample landing on
// that sample, and the farther gantry of every block moving at its nominal
// feed.
func Verify(prog *Program, pair *syncpath.Pair, opts Options) error {
	opts = opts.withDefaults()
	sim := NewSimulator(opts.AxisMap)
	if err := sim.Run(strings.NewReader(prog.String())); err != nil {
		return err
	}
	if !sim.Ended() {
		return ferrors.GCodeSyncError(0, "program has no end command")
	}
	blocks := sim.Blocks()
	if len(blocks) != pair.Len() {
		return ferrors.GCodeSyncError(0, fmt.Sprintf("%d motion blocks for %d samples", len(blocks), pair.Len()))
	}

	res := 0.5 * math.Pow10(-opts.Decimals)
	for k, b := range blocks {
		if b.Rapid != (k == 0) {
			return ferrors.GCodeSyncError(k, "unexpected block type")
		}
		l, r := pair.At(k)
		want := kinematics.PositionOf(l.Point, r.Point)
		for i := range want {
			if math.Abs(b.To[i]-want[i]) > res+1e-9 {
				return ferrors.GCodeSyncError(k, fmt.Sprintf("axis %s at %.6f, want %.6f", opts.AxisMap.Letters()[i], b.To[i], want[i]))
			}
		}
		if b.Rapid {
			continue
		}
		d := b.Move().MaxDistance()
		if d < geom.Epsilon {
			continue
		}
		nominal := NominalFeed(l, r, opts.FeedRate)
		// axis rounding shifts each gantry distance by up to 2*sqrt(2)*res
		slack := FeedTolerance + 0.05/nominal + 8*res/d
		if got := b.LeadSpeed(); math.Abs(got-nominal) > slack*nominal {
			return ferrors.GCodeSyncError(k, fmt.Sprintf("lead gantry at %.3f mm/min, want %.3f", got, nominal))
		}
	}
	return nil
}
