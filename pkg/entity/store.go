// In-memory entity store
//
// Copyright (C) 2026  Foamcut Go Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package entity

import (
	"fmt"
	"math"
	"sort"

	ferrors "foamcut-go/pkg/errors"
	"foamcut-go/pkg/geom"
)

// Store is an in-memory Lookup. Entities are rendered when added; once
// populated the store is read-only and safe for concurrent Resolve calls.
type Store struct {
	opts     RenderOptions
	entities map[int]*Entity
	rendered map[int][]geom.Point
	order    []int
}

// NewStore renders and stores the given entities.
func NewStore(opts RenderOptions, entities ...*Entity) (*Store, error) {
	s := &Store{
		opts:     opts.withDefaults(),
		entities: make(map[int]*Entity, len(entities)),
		rendered: make(map[int][]geom.Point, len(entities)),
	}
	for _, e := range entities {
		if err := s.Add(e); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Add renders e and stores it. Adding an id twice is an error: two
// entities under one id make every path through it ambiguous.
func (s *Store) Add(e *Entity) error {
	if _, ok := s.entities[e.ID]; ok {
		return ferrors.EntityInvalidError(e.ID, "duplicate entity id")
	}
	pts, err := e.Render(s.opts)
	if err != nil {
		return err
	}
	s.entities[e.ID] = e
	s.rendered[e.ID] = pts
	s.order = append(s.order, e.ID)
	return nil
}

// Resolve implements Lookup. The returned slice is a copy.
func (s *Store) Resolve(id int) ([]geom.Point, error) {
	pts, ok := s.rendered[id]
	if !ok {
		return nil, ferrors.UnknownEntityError(id)
	}
	return append([]geom.Point(nil), pts...), nil
}

// Get returns the stored entity.
func (s *Store) Get(id int) (*Entity, bool) {
	e, ok := s.entities[id]
	return e, ok
}

// Len returns the number of entities.
func (s *Store) Len() int {
	return len(s.order)
}

// IDs returns the entity ids in ascending order.
func (s *Store) IDs() []int {
	ids := append([]int(nil), s.order...)
	sort.Ints(ids)
	return ids
}

// Bounds returns the bounding box of the rendered ids, or of every entity
// when ids is empty.
func (s *Store) Bounds(ids ...int) (min, max geom.Point, err error) {
	if len(ids) == 0 {
		ids = s.order
	}
	if len(ids) == 0 {
		return min, max, fmt.Errorf("entity: bounds of empty store")
	}
	min = geom.Pt(math.Inf(1), math.Inf(1))
	max = geom.Pt(math.Inf(-1), math.Inf(-1))
	for _, id := range ids {
		pts, ok := s.rendered[id]
		if !ok {
			return min, max, ferrors.UnknownEntityError(id)
		}
		for _, p := range pts {
			min.X, min.Y = math.Min(min.X, p.X), math.Min(min.Y, p.Y)
			max.X, max.Y = math.Max(max.X, p.X), math.Max(max.Y, p.Y)
		}
	}
	return min, max, nil
}
