// Gantry paths
//
// Copyright (C) 2026  Foamcut Go Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

// Package toolpath turns an ordered list of entity and marker references
// for one gantry into a continuous polyline.
package toolpath

import (
	"foamcut-go/pkg/geom"
)

// Vertex is a path point. Feed, when non-zero, is the feed rate (mm/min)
// of the segment that ends at this vertex and overrides the global feed.
type Vertex struct {
	geom.Point
	Feed float64
}

// V is shorthand for a vertex without feed override.
func V(x, y float64) Vertex {
	return Vertex{Point: geom.Pt(x, y)}
}

// Path is the ordered polyline for one gantry. Entry and Exit are the
// virtual markers still waiting for expansion; they are cleared once the
// lead-in and lead-out segments have been spliced in.
type Path struct {
	Vertices []Vertex
	Entry    *MarkerRef
	Exit     *MarkerRef
	// Entities lists the real entity ids in cut order.
	Entities []int
}

// Len returns the number of vertices.
func (p *Path) Len() int {
	return len(p.Vertices)
}

// Points returns the vertex positions.
func (p *Path) Points() []geom.Point {
	return Points(p.Vertices)
}

// Length returns the arc length of the path.
func (p *Path) Length() float64 {
	return geom.Length(p.Points())
}

// First returns the first vertex. The path must not be empty.
func (p *Path) First() Vertex {
	return p.Vertices[0]
}

// Last returns the last vertex. The path must not be empty.
func (p *Path) Last() Vertex {
	return p.Vertices[len(p.Vertices)-1]
}

// Clone returns a deep copy of p.
func (p *Path) Clone() *Path {
	c := &Path{
		Vertices: append([]Vertex(nil), p.Vertices...),
		Entities: append([]int(nil), p.Entities...),
	}
	if p.Entry != nil {
		e := *p.Entry
		c.Entry = &e
	}
	if p.Exit != nil {
		e := *p.Exit
		c.Exit = &e
	}
	return c
}

// Points extracts the positions of vs.
func Points(vs []Vertex) []geom.Point {
	pts := make([]geom.Point, len(vs))
	for i, v := range vs {
		pts[i] = v.Point
	}
	return pts
}

// Vertices wraps points into vertices without feed override.
func Vertices(pts []geom.Point) []Vertex {
	vs := make([]Vertex, len(pts))
	for i, p := range pts {
		vs[i] = Vertex{Point: p}
	}
	return vs
}
