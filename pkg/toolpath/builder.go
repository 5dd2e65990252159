// Path building: stitching resolved entities into one polyline
//
// Copyright (C) 2026  Foamcut Go Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package toolpath

import (
	"foamcut-go/pkg/entity"
	ferrors "foamcut-go/pkg/errors"
	"foamcut-go/pkg/geom"
)

// BuildOptions configures path stitching.
type BuildOptions struct {
	// Tolerance is the largest gap (mm) allowed between the end of one
	// entity and the start of the next.
	Tolerance float64
}

// DefaultBuildOptions returns a 1 mm stitching tolerance.
func DefaultBuildOptions() BuildOptions {
	return BuildOptions{Tolerance: 1.0}
}

type segment struct {
	id  int
	pts []geom.Point
}

func (s *segment) start() geom.Point { return s.pts[0] }
func (s *segment) end() geom.Point   { return s.pts[len(s.pts)-1] }
func (s *segment) reverse()          { s.pts = geom.Reverse(s.pts) }

// Build resolves every entity reference through lookup and stitches the
// renderings into one path, reversing entities as needed so each one
// starts where the previous one ended. Markers are kept on the returned
// path for the entry/exit stage.
func Build(refs []Ref, lookup entity.Lookup, opts BuildOptions) (*Path, error) {
	if opts.Tolerance <= 0 {
		opts.Tolerance = DefaultBuildOptions().Tolerance
	}
	if err := checkPlacement(refs); err != nil {
		return nil, err
	}

	path := &Path{}
	path.Entry, path.Exit = Markers(refs)

	var segs []*segment
	for _, r := range refs {
		er, ok := r.(EntityRef)
		if !ok {
			continue
		}
		pts, err := lookup.Resolve(er.ID)
		if err != nil {
			if ferrors.CodeOf(err) != "" {
				return nil, err
			}
			return nil, ferrors.Wrap(err, ferrors.ErrUnknownEntity, "resolve entity").SetIDs(er.ID)
		}
		if len(pts) == 0 {
			return nil, ferrors.UnknownEntityError(er.ID)
		}
		segs = append(segs, &segment{id: er.ID, pts: pts})
		path.Entities = append(path.Entities, er.ID)
	}
	if len(segs) == 0 {
		return nil, ferrors.DegeneratePathError("", 0)
	}

	orientFirst(segs)

	pts := append([]geom.Point(nil), segs[0].pts...)
	for i := 1; i < len(segs); i++ {
		prev, cur := segs[i-1], segs[i]
		running := pts[len(pts)-1]
		dStart, dEnd := cur.start().Dist(running), cur.end().Dist(running)
		if dEnd < dStart {
			cur.reverse()
			dStart = dEnd
		}
		if dStart > opts.Tolerance {
			return nil, ferrors.DisconnectedPathError(prev.id, cur.id, dStart, opts.Tolerance)
		}
		pts = append(pts, cur.pts...)
	}

	path.Vertices = Vertices(geom.Collapse(pts))
	return path, nil
}

// orientFirst reverses the first entity when its start, not its end, is
// the endpoint nearest to the second entity.
func orientFirst(segs []*segment) {
	if len(segs) < 2 {
		return
	}
	first, next := segs[0], segs[1]
	nearest := func(p geom.Point) float64 {
		return min(p.Dist(next.start()), p.Dist(next.end()))
	}
	if nearest(first.start()) < nearest(first.end()) {
		first.reverse()
	}
}

// checkPlacement enforces entry markers only at the head and exit markers
// only at the tail of the list.
func checkPlacement(refs []Ref) error {
	last := len(refs) - 1
	for i, r := range refs {
		m, ok := r.(MarkerRef)
		if !ok {
			continue
		}
		switch {
		case m.Kind == EntryMarker && i != 0:
			return ferrors.MisplacedMarkerError(m.ID, m.Kind.String(), i)
		case m.Kind == ExitMarker && i != last:
			return ferrors.MisplacedMarkerError(m.ID, m.Kind.String(), i)
		}
	}
	return nil
}
