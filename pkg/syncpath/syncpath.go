// Dual-path arc-length synchronization
//
// Copyright (C) 2026  Foamcut Go Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

// Package syncpath resamples the left and right gantry paths so that
// sample k on both sides sits at the same fraction of its path length.
package syncpath

import (
	"gonum.org/v1/gonum/floats"

	ferrors "foamcut-go/pkg/errors"
	"foamcut-go/pkg/geom"
	"foamcut-go/pkg/pool"
	"foamcut-go/pkg/toolpath"
)

// Gantry sides.
const (
	Left  = "left"
	Right = "right"
)

// Pair holds the two index-aligned sample sequences. It is read-only
// once returned by Synchronize and safe to share between goroutines.
type Pair struct {
	left  []toolpath.Vertex
	right []toolpath.Vertex
}

// Len returns the number of samples per side.
func (p *Pair) Len() int {
	return len(p.left)
}

// At returns sample k of both sides.
func (p *Pair) At(k int) (left, right toolpath.Vertex) {
	return p.left[k], p.right[k]
}

// Progress returns the normalized progress t_k of sample k.
func (p *Pair) Progress(k int) float64 {
	n := len(p.left)
	if n < 2 {
		return 0
	}
	return float64(k) / float64(n-1)
}

// Left returns a copy of the left samples.
func (p *Pair) Left() []toolpath.Vertex {
	return append([]toolpath.Vertex(nil), p.left...)
}

// Right returns a copy of the right samples.
func (p *Pair) Right() []toolpath.Vertex {
	return append([]toolpath.Vertex(nil), p.right...)
}

// Synchronize resamples both paths to N = max(len(left), len(right))
// samples placed at t_k = k/(N-1) of each path's arc length. Sample k
// carries the smallest feed override among the input segments that
// overlap the stretch (t_{k-1}, t_k], so an override survives even when
// no sample lands inside its segment. Sample 0 carries the override of
// the first segment.
func Synchronize(left, right []toolpath.Vertex) (*Pair, error) {
	if err := check(Left, left); err != nil {
		return nil, err
	}
	if err := check(Right, right); err != nil {
		return nil, err
	}
	n := max(len(left), len(right))
	return &Pair{
		left:  resample(left, n),
		right: resample(right, n),
	}, nil
}

func check(side string, vs []toolpath.Vertex) error {
	if len(vs) < 2 {
		return ferrors.DegeneratePathError(side, len(vs))
	}
	pts := toolpath.Points(vs)
	if geom.Length(pts) < geom.Epsilon {
		return ferrors.DegeneratePathError(side, len(geom.Collapse(pts)))
	}
	return nil
}

// cumulate fills s with the cumulative arc length of vs.
func cumulate(s []float64, vs []toolpath.Vertex) {
	seg := pool.GetFloat64Slice(len(vs) - 1)
	defer pool.PutFloat64Slice(seg)
	for i := 1; i < len(vs); i++ {
		seg[i-1] = vs[i-1].Dist(vs[i].Point)
	}
	s[0] = 0
	floats.CumSum(s[1:], seg)
}

func resample(vs []toolpath.Vertex, n int) []toolpath.Vertex {
	s := pool.GetFloat64Slice(len(vs))
	defer pool.PutFloat64Slice(s)
	cumulate(s, vs)
	total := s[len(s)-1]

	out := make([]toolpath.Vertex, n)
	// segment i runs from vs[i] to vs[i+1] and carries vs[i+1].Feed;
	// lo is the first segment that can overlap (prev, target]
	j, lo := 0, 0
	prev := 0.0
	for k := range out {
		target := total * float64(k) / float64(n-1)
		if k == n-1 {
			target = total
		}
		for j < len(vs)-2 && s[j+1] < target {
			j++
		}
		if k == 0 {
			out[k] = toolpath.Vertex{Point: vs[0].Point, Feed: vs[1].Feed}
			continue
		}
		for lo < j && s[lo+1] <= prev {
			lo++
		}
		v := toolpath.Vertex{Feed: minOverride(vs[lo+1 : j+2])}
		if k == n-1 {
			v.Point = vs[len(vs)-1].Point
		} else {
			u := 0.0
			if d := s[j+1] - s[j]; d > 0 {
				u = (target - s[j]) / d
			}
			v.Point = vs[j].Lerp(vs[j+1].Point, u)
		}
		out[k] = v
		prev = target
	}
	return out
}

// minOverride returns the smallest non-zero feed of vs, or 0.
func minOverride(vs []toolpath.Vertex) float64 {
	f := 0.0
	for _, v := range vs {
		if v.Feed > 0 && (f == 0 || v.Feed < f) {
			f = v.Feed
		}
	}
	return f
}

// Fractions returns the normalized arc-length fraction of every point.
// A zero-length polyline yields all zeros.
func Fractions(pts []geom.Point) []float64 {
	s := geom.CumulativeLength(pts)
	if len(s) == 0 {
		return s
	}
	if total := s[len(s)-1]; total > 0 {
		floats.Scale(1/total, s)
	}
	return s
}
