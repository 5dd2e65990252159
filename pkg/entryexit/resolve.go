// Entry/exit expansion
//
// Copyright (C) 2026  Foamcut Go Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

// Package entryexit expands virtual entry and exit markers into the
// straight lead-in and lead-out segments that take the wire into and out
// of the foam.
package entryexit

import (
	ferrors "foamcut-go/pkg/errors"
	"foamcut-go/pkg/toolpath"
)

// Resolve returns a copy of path with its entry segment prepended and its
// exit segment appended. The inner end of each segment touches the profile;
// the outer end lies the configured displacement away from it. The input
// path is not modified.
func Resolve(path *toolpath.Path, cfg *Config) (*toolpath.Path, error) {
	if path.Len() == 0 {
		return nil, ferrors.DegeneratePathError("", 0)
	}
	out := path.Clone()

	if m := path.Entry; m != nil {
		spec, err := specFor(cfg, *m)
		if err != nil {
			return nil, err
		}
		first := path.First()
		outer := toolpath.Vertex{Point: first.Sub(spec.Vector())}
		inner := toolpath.Vertex{Point: first.Point, Feed: spec.Feed()}
		out.Vertices = append([]toolpath.Vertex{outer, inner}, out.Vertices[1:]...)
		out.Entry = nil
	}

	if m := path.Exit; m != nil {
		spec, err := specFor(cfg, *m)
		if err != nil {
			return nil, err
		}
		last := path.Last()
		outer := toolpath.Vertex{Point: last.Add(spec.Vector()), Feed: spec.Feed()}
		out.Vertices = append(out.Vertices, outer)
		out.Exit = nil
	}
	return out, nil
}

func specFor(cfg *Config, m toolpath.MarkerRef) (Spec, error) {
	spec, ok := cfg.Lookup(m.ID)
	if !ok {
		return Spec{}, ferrors.MarkerConfigError(m.ID, "no entry/exit configuration")
	}
	if spec.Kind != m.Kind {
		return Spec{}, ferrors.MarkerConfigError(m.ID, "marker kind does not match configuration")
	}
	return spec, nil
}

// CheckSymmetry verifies that both gantries start with the same entry
// marker and end with the same exit marker. A marker present on one side
// only would make the two wire ends reach the profile at different times.
func CheckSymmetry(left, right []toolpath.Ref) error {
	lEntry, lExit := toolpath.Markers(left)
	rEntry, rExit := toolpath.Markers(right)
	if !sameMarker(lEntry, rEntry) {
		return ferrors.AsymmetricMarkerError("entry", markerID(lEntry), markerID(rEntry))
	}
	if !sameMarker(lExit, rExit) {
		return ferrors.AsymmetricMarkerError("exit", markerID(lExit), markerID(rExit))
	}
	if markerPos(left, lEntry) != markerPos(right, rEntry) || markerPos(left, lExit) != markerPos(right, rExit) {
		return ferrors.AsymmetricMarkerError("placement", markerID(lEntry), markerID(rEntry))
	}
	return nil
}

func sameMarker(a, b *toolpath.MarkerRef) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func markerID(m *toolpath.MarkerRef) int {
	if m == nil {
		return -1
	}
	return m.ID
}

// markerPos reports whether m sits at the head (-1), tail (1) or elsewhere
// (0) of refs; absent markers report -2.
func markerPos(refs []toolpath.Ref, m *toolpath.MarkerRef) int {
	if m == nil {
		return -2
	}
	switch {
	case len(refs) > 0 && refs[0] == toolpath.Ref(*m):
		return -1
	case len(refs) > 0 && refs[len(refs)-1] == toolpath.Ref(*m):
		return 1
	}
	return 0
}
