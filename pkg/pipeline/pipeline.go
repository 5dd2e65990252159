// Cutting-path request pipeline
//
// Copyright (C) 2026  Foamcut Go Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

// Package pipeline runs one cutting-path request through path building,
// entry/exit expansion, synchronization and G-code emission.
package pipeline

import (
	"context"
	stderrors "errors"
	"time"

	"foamcut-go/pkg/config"
	"foamcut-go/pkg/entity"
	"foamcut-go/pkg/entryexit"
	ferrors "foamcut-go/pkg/errors"
	"foamcut-go/pkg/gcode"
	"foamcut-go/pkg/log"
	"foamcut-go/pkg/syncpath"
	"foamcut-go/pkg/toolpath"
)

// Request describes one cut: the reference lists of both gantries and
// everything needed to resolve them. A Request only reads shared state,
// so any number can run concurrently against the same Lookup and Markers.
type Request struct {
	Name    string
	Left    []toolpath.Ref
	Right   []toolpath.Ref
	Markers *entryexit.Config
	Lookup  entity.Lookup
	Build   toolpath.BuildOptions
	Emit    gcode.Options
	// Output is where the caller intends to write the program.
	Output string
}

// Stats summarizes a finished request.
type Stats struct {
	Samples     int
	LeftLength  float64 // mm, including lead-in and lead-out
	RightLength float64
	Lines       int
	CutTime     float64 // estimated seconds on the machine
	Elapsed     time.Duration
}

// Result is the output of a successful request.
type Result struct {
	Name    string
	Left    *toolpath.Path
	Right   *toolpath.Path
	Pair    *syncpath.Pair
	Program *gcode.Program
	Stats   Stats
}

// Run executes req. The context is checked between stages; the stages
// themselves are bounded by the input size.
func Run(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	logger := log.GetLogger("pipeline").WithField("cut", req.Name)

	if err := entryexit.CheckSymmetry(req.Left, req.Right); err != nil {
		return nil, err
	}
	for _, refs := range [][]toolpath.Ref{req.Left, req.Right} {
		if err := req.Markers.Check(refs); err != nil {
			return nil, err
		}
	}

	res := &Result{Name: req.Name}
	var err error
	if res.Left, err = side(ctx, syncpath.Left, req, req.Left); err != nil {
		return nil, err
	}
	if res.Right, err = side(ctx, syncpath.Right, req, req.Right); err != nil {
		return nil, err
	}
	logger.WithFields(log.Fields{
		"left":         toolpath.FormatRefs(req.Left),
		"right":        toolpath.FormatRefs(req.Right),
		"left_points":  res.Left.Len(),
		"right_points": res.Right.Len(),
	}).Debug("paths resolved")

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if res.Pair, err = syncpath.Synchronize(res.Left.Vertices, res.Right.Vertices); err != nil {
		return nil, err
	}
	logger.WithField("samples", res.Pair.Len()).Debug("paths synchronized")

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if res.Program, err = gcode.Emit(res.Pair, req.Emit); err != nil {
		return nil, err
	}

	res.Stats = Stats{
		Samples:     res.Pair.Len(),
		LeftLength:  res.Left.Length(),
		RightLength: res.Right.Length(),
		Lines:       res.Program.Len(),
		CutTime:     res.Program.CutTime,
		Elapsed:     time.Since(start),
	}
	logger.WithFields(log.Fields{
		"lines":    res.Stats.Lines,
		"cut_time": res.Stats.CutTime,
	}).Info("cut generated")
	return res, nil
}

// side builds and expands the path of one gantry.
func side(ctx context.Context, name string, req Request, refs []toolpath.Ref) (*toolpath.Path, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	built, err := toolpath.Build(refs, req.Lookup, req.Build)
	if err != nil {
		return nil, withSide(err, name)
	}
	path, err := entryexit.Resolve(built, req.Markers)
	if err != nil {
		return nil, withSide(err, name)
	}
	return path, nil
}

func withSide(err error, name string) error {
	var cutErr *ferrors.CutError
	if stderrors.As(err, &cutErr) && cutErr.Side == "" {
		cutErr.SetSide(name)
	}
	return err
}

// FromJob turns every cut of job into a request resolved against lookup.
func FromJob(job *config.Job, lookup entity.Lookup) []Request {
	m := job.Machine
	reqs := make([]Request, 0, len(job.Cuts))
	for _, cut := range job.Cuts {
		feed := m.FeedRate
		if cut.FeedRate > 0 {
			feed = cut.FeedRate
		}
		reqs = append(reqs, Request{
			Name:    cut.Name,
			Left:    cut.Left,
			Right:   cut.Right,
			Markers: job.Markers,
			Lookup:  lookup,
			Build:   toolpath.BuildOptions{Tolerance: m.Tolerance},
			Emit: gcode.Options{
				FeedRate:    feed,
				WireCurrent: m.WireCurrent,
				Decimals:    m.Decimals,
				AxisMap:     m.AxisMap,
				Comment:     cut.Comment,
			},
			Output: cut.Output,
		})
	}
	return reqs
}
