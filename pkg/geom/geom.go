// 2D points and polyline helpers shared by both gantries
//
// Copyright (C) 2026  Foamcut Go Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

// Package geom provides the planar point type and the polyline arithmetic
// used to build, resample and emit gantry paths.
package geom

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Epsilon is the distance (mm) under which two points are coincident.
const Epsilon = 1e-6

// Point is a position in a gantry plane. On the right gantry Y carries the
// machine Z coordinate.
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{x, y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

func (p Point) String() string {
	return fmt.Sprintf("(%.3f, %.3f)", p.X, p.Y)
}

// Add returns p+q.
func (p Point) Add(q Point) Point {
	return Point{p.X + q.X, p.Y + q.Y}
}

// Sub returns p-q.
func (p Point) Sub(q Point) Point {
	return Point{p.X - q.X, p.Y - q.Y}
}

// Scale returns p*k.
func (p Point) Scale(k float64) Point {
	return Point{p.X * k, p.Y * k}
}

// Norm returns the length of p as a vector.
func (p Point) Norm() float64 {
	return math.Hypot(p.X, p.Y)
}

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

// Near reports whether p and q are within eps of each other.
func (p Point) Near(q Point, eps float64) bool {
	return p.Dist(q) <= eps
}

// Lerp returns the point at fraction t along p→q.
func (p Point) Lerp(q Point, t float64) Point {
	return Point{p.X + (q.X-p.X)*t, p.Y + (q.Y-p.Y)*t}
}

// Rotate rotates p counter-clockwise about the origin by deg degrees.
func (p Point) Rotate(deg float64) Point {
	if deg == 0 {
		return p
	}
	s, c := math.Sincos(deg * math.Pi / 180)
	return Point{p.X*c - p.Y*s, p.X*s + p.Y*c}
}

// Collapse drops every point closer than Epsilon to the point kept before
// it. The result never aliases pts.
func Collapse(pts []Point) []Point {
	out := make([]Point, 0, len(pts))
	for _, p := range pts {
		if n := len(out); n > 0 && out[n-1].Near(p, Epsilon) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Reverse returns pts in reverse order without modifying the input.
func Reverse(pts []Point) []Point {
	out := make([]Point, len(pts))
	for i, p := range pts {
		out[len(pts)-1-i] = p
	}
	return out
}

// SegmentLengths writes the length of each segment of pts into dst, which
// must have room for len(pts)-1 values, and returns it.
func SegmentLengths(dst []float64, pts []Point) []float64 {
	dst = dst[:0]
	for i := 1; i < len(pts); i++ {
		dst = append(dst, pts[i-1].Dist(pts[i]))
	}
	return dst
}

// CumulativeLength returns s where s[i] is the arc length from pts[0] to
// pts[i]. s[0] is always 0.
func CumulativeLength(pts []Point) []float64 {
	s := make([]float64, len(pts))
	if len(pts) < 2 {
		return s
	}
	floats.CumSum(s[1:], SegmentLengths(make([]float64, 0, len(pts)-1), pts))
	return s
}

// Length returns the total arc length of the polyline.
func Length(pts []Point) float64 {
	if len(pts) < 2 {
		return 0
	}
	return floats.Sum(SegmentLengths(make([]float64, 0, len(pts)-1), pts))
}
