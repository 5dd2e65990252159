// Geometric entities and their point renderings
//
// Copyright (C) 2026  Foamcut Go Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

// Package entity holds the CAD entities a cutting path refers to and renders
// them into ordered point sequences. It stands in for the CAD import step:
// the path builder only ever sees the rendered points through Lookup.
package entity

import (
	"fmt"
	"math"

	ferrors "foamcut-go/pkg/errors"
	"foamcut-go/pkg/geom"
)

// Kind is the entity type tag.
type Kind string

const (
	Line     Kind = "line"
	Arc      Kind = "arc"
	Circle   Kind = "circle"
	Polyline Kind = "polyline"
	Spline   Kind = "spline"
)

// ParseKind validates a type tag.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case Line, Arc, Circle, Polyline, Spline:
		return k, nil
	}
	return "", fmt.Errorf("unknown entity type %q", s)
}

// Lookup resolves an entity id to its ordered point rendering.
type Lookup interface {
	Resolve(id int) ([]geom.Point, error)
}

// Entity is one CAD primitive. Points holds the vertices of lines and
// polylines and the fit points of splines; arcs and circles use Center,
// Radius and the angles (degrees, counter-clockwise).
type Entity struct {
	ID         int
	Kind       Kind
	Points     []geom.Point
	Center     geom.Point
	Radius     float64
	StartAngle float64
	EndAngle   float64
}

// RenderOptions controls how curved entities are flattened.
type RenderOptions struct {
	// Segment is the target chord length (mm) for arcs and circles.
	Segment float64
	// MinArcSegments is the minimum chord count of any arc.
	MinArcSegments int
	// SplineSteps is the number of chords per spline span.
	SplineSteps int
}

// DefaultRenderOptions returns 1 mm chords, 8 segments minimum per arc and
// 8 steps per spline span.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{Segment: 1.0, MinArcSegments: 8, SplineSteps: 8}
}

func (o RenderOptions) withDefaults() RenderOptions {
	d := DefaultRenderOptions()
	if o.Segment <= 0 {
		o.Segment = d.Segment
	}
	if o.MinArcSegments <= 0 {
		o.MinArcSegments = d.MinArcSegments
	}
	if o.SplineSteps <= 0 {
		o.SplineSteps = d.SplineSteps
	}
	return o
}

// Validate checks the fields the entity kind needs.
func (e *Entity) Validate() error {
	switch e.Kind {
	case Line:
		if len(e.Points) != 2 {
			return ferrors.EntityInvalidError(e.ID, fmt.Sprintf("line needs 2 points, got %d", len(e.Points)))
		}
	case Polyline, Spline:
		if len(e.Points) < 2 {
			return ferrors.EntityInvalidError(e.ID, fmt.Sprintf("%s needs at least 2 points, got %d", e.Kind, len(e.Points)))
		}
	case Arc:
		if e.Radius <= 0 {
			return ferrors.EntityInvalidError(e.ID, "arc radius must be positive")
		}
		if sweep(e.StartAngle, e.EndAngle) == 0 {
			return ferrors.EntityInvalidError(e.ID, "arc start and end angle coincide")
		}
	case Circle:
		if e.Radius <= 0 {
			return ferrors.EntityInvalidError(e.ID, "circle radius must be positive")
		}
	default:
		return ferrors.EntityInvalidError(e.ID, fmt.Sprintf("unknown type %q", e.Kind))
	}
	return nil
}

// Render returns the entity as an ordered point sequence from its natural
// start to its natural end. Circles come back closed (first == last).
func (e *Entity) Render(opts RenderOptions) ([]geom.Point, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()

	var pts []geom.Point
	switch e.Kind {
	case Line, Polyline:
		pts = append([]geom.Point(nil), e.Points...)
	case Spline:
		pts = catmullRom(e.Points, opts.SplineSteps)
	case Arc:
		pts = arcPoints(e.Center, e.Radius, e.StartAngle, sweep(e.StartAngle, e.EndAngle), opts)
	case Circle:
		pts = arcPoints(e.Center, e.Radius, e.StartAngle, 360, opts)
		pts[len(pts)-1] = pts[0]
	}

	pts = geom.Collapse(pts)
	if len(pts) < 2 {
		return nil, ferrors.EntityInvalidError(e.ID, "renders to a single point")
	}
	return pts, nil
}

// sweep returns the counter-clockwise angle from start to end in (0, 360),
// or 0 when they coincide.
func sweep(start, end float64) float64 {
	s := math.Mod(end-start, 360)
	if s < 0 {
		s += 360
	}
	if s < 1e-9 || 360-s < 1e-9 {
		return 0
	}
	return s
}

func arcPoints(c geom.Point, r, startDeg, sweepDeg float64, opts RenderOptions) []geom.Point {
	arcLen := r * sweepDeg * math.Pi / 180
	n := int(math.Ceil(arcLen / opts.Segment))
	if n < opts.MinArcSegments {
		n = opts.MinArcSegments
	}
	pts := make([]geom.Point, n+1)
	for i := 0; i <= n; i++ {
		a := (startDeg + sweepDeg*float64(i)/float64(n)) * math.Pi / 180
		s, co := math.Sincos(a)
		pts[i] = geom.Pt(c.X+r*co, c.Y+r*s)
	}
	return pts
}

// catmullRom interpolates a uniform Catmull-Rom spline through fit points.
// The curve passes through every fit point, ends included.
func catmullRom(fit []geom.Point, steps int) []geom.Point {
	if len(fit) == 2 {
		return []geom.Point{fit[0], fit[1]}
	}
	at := func(i int) geom.Point {
		switch {
		case i < 0:
			return fit[0].Scale(2).Sub(fit[1])
		case i >= len(fit):
			n := len(fit)
			return fit[n-1].Scale(2).Sub(fit[n-2])
		}
		return fit[i]
	}

	pts := make([]geom.Point, 0, (len(fit)-1)*steps+1)
	pts = append(pts, fit[0])
	for i := 0; i < len(fit)-1; i++ {
		p0, p1, p2, p3 := at(i-1), at(i), at(i+1), at(i+2)
		for s := 1; s <= steps; s++ {
			t := float64(s) / float64(steps)
			t2, t3 := t*t, t*t*t
			x := 0.5 * (2*p1.X + (-p0.X+p2.X)*t + (2*p0.X-5*p1.X+4*p2.X-p3.X)*t2 + (-p0.X+3*p1.X-3*p2.X+p3.X)*t3)
			y := 0.5 * (2*p1.Y + (-p0.Y+p2.Y)*t + (2*p0.Y-5*p1.Y+4*p2.Y-p3.Y)*t2 + (-p0.Y+3*p1.Y-3*p2.Y+p3.Y)*t3)
			pts = append(pts, geom.Pt(x, y))
		}
		pts[len(pts)-1] = p2
	}
	return pts
}
