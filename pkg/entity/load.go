// Entity file loading
//
// Copyright (C) 2026  Foamcut Go Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package entity

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	sfgeom "github.com/peterstace/simplefeatures/geom"

	ferrors "foamcut-go/pkg/errors"
	"foamcut-go/pkg/geom"
)

// record is one entry of an entity file:
//
//	[{"id": 1, "type": "line", "wkt": "LINESTRING (0 0, 10 0)"},
//	 {"id": 2, "type": "arc", "center": [10, 5], "radius": 5, "start_angle": 270, "end_angle": 90}]
type record struct {
	ID         int       `json:"id"`
	Type       string    `json:"type"`
	WKT        string    `json:"wkt,omitempty"`
	Center     []float64 `json:"center,omitempty"`
	Radius     float64   `json:"radius,omitempty"`
	StartAngle float64   `json:"start_angle,omitempty"`
	EndAngle   float64   `json:"end_angle,omitempty"`
}

// LoadFile reads an entity file from disk.
func LoadFile(path string, opts RenderOptions) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("entity: unable to open %s: %w", path, err)
	}
	defer f.Close()
	return LoadJSON(f, opts)
}

// LoadJSON decodes a JSON entity list into a Store.
func LoadJSON(r io.Reader, opts RenderOptions) (*Store, error) {
	var records []record
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("entity: failed to parse entity file: %w", err)
	}

	store, err := NewStore(opts)
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		e, err := rec.entity()
		if err != nil {
			return nil, err
		}
		if err := store.Add(e); err != nil {
			return nil, err
		}
	}
	return store, nil
}

func (rec record) entity() (*Entity, error) {
	kind, err := ParseKind(rec.Type)
	if err != nil {
		return nil, ferrors.Wrap(err, ferrors.ErrEntityInvalid, fmt.Sprintf("entity %d", rec.ID)).SetIDs(rec.ID)
	}
	e := &Entity{ID: rec.ID, Kind: kind}

	switch kind {
	case Line, Polyline, Spline:
		if rec.WKT == "" {
			return nil, ferrors.EntityInvalidError(rec.ID, "missing wkt geometry")
		}
		e.Points, err = parseLineString(rec.WKT)
		if err != nil {
			return nil, ferrors.Wrap(err, ferrors.ErrEntityInvalid, fmt.Sprintf("entity %d", rec.ID)).SetIDs(rec.ID)
		}
	case Arc, Circle:
		if len(rec.Center) != 2 {
			return nil, ferrors.EntityInvalidError(rec.ID, "center must have 2 coordinates")
		}
		e.Center = geom.Pt(rec.Center[0], rec.Center[1])
		e.Radius = rec.Radius
		e.StartAngle = rec.StartAngle
		e.EndAngle = rec.EndAngle
	}
	return e, nil
}

// parseLineString parses a WKT LINESTRING into points.
func parseLineString(wkt string) ([]geom.Point, error) {
	g, err := sfgeom.UnmarshalWKT(wkt)
	if err != nil {
		return nil, err
	}
	ls, ok := g.AsLineString()
	if !ok {
		return nil, fmt.Errorf("expected LINESTRING, got %s", g.Type())
	}
	seq := ls.Coordinates()
	pts := make([]geom.Point, seq.Length())
	for i := range pts {
		c := seq.Get(i)
		pts[i] = geom.Pt(c.X, c.Y)
	}
	return pts, nil
}
