// Entry/exit marker configuration
//
// Copyright (C) 2026  Foamcut Go Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package entryexit

import (
	"fmt"
	"math"
	"sort"

	ferrors "foamcut-go/pkg/errors"
	"foamcut-go/pkg/geom"
	"foamcut-go/pkg/toolpath"
)

// Spec configures one virtual marker.
type Spec struct {
	Kind toolpath.MarkerKind
	// Distance is the (Δx, Δz) displacement of the synthesized segment.
	Distance geom.Point
	// FeedRate overrides the global feed (mm/min) on this segment.
	FeedRate *float64
	// Direction rotates Distance counter-clockwise by this many degrees.
	Direction *float64
}

// Vector returns the displacement with the direction override applied.
func (s Spec) Vector() geom.Point {
	if s.Direction == nil {
		return s.Distance
	}
	return s.Distance.Rotate(*s.Direction)
}

// Feed returns the override feed or 0 when the global feed applies.
func (s Spec) Feed() float64 {
	if s.FeedRate == nil {
		return 0
	}
	return *s.FeedRate
}

// Config maps virtual marker ids to their specs. It is immutable once
// built by NewConfig and can be shared between requests.
type Config struct {
	specs map[int]Spec
}

// NewConfig validates specs and returns the config.
func NewConfig(specs map[int]Spec) (*Config, error) {
	c := &Config{specs: make(map[int]Spec, len(specs))}
	for _, id := range sortedIDs(specs) {
		s := specs[id]
		if s.Kind != toolpath.EntryMarker && s.Kind != toolpath.ExitMarker {
			return nil, ferrors.MarkerConfigError(id, fmt.Sprintf("invalid kind %d", s.Kind))
		}
		if s.Distance.Near(geom.Point{}, geom.Epsilon) {
			return nil, ferrors.MarkerConfigError(id, "distance must be non-zero")
		}
		if isBad(s.Distance.X) || isBad(s.Distance.Y) {
			return nil, ferrors.MarkerConfigError(id, "distance must be finite")
		}
		if s.FeedRate != nil && (*s.FeedRate <= 0 || isBad(*s.FeedRate)) {
			return nil, ferrors.MarkerConfigError(id, "feed_rate must be positive")
		}
		if s.Direction != nil && isBad(*s.Direction) {
			return nil, ferrors.MarkerConfigError(id, "direction must be finite")
		}
		c.specs[id] = s
	}
	return c, nil
}

// MustConfig is NewConfig for static tables; it panics on error.
func MustConfig(specs map[int]Spec) *Config {
	c, err := NewConfig(specs)
	if err != nil {
		panic(err)
	}
	return c
}

func isBad(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}

func sortedIDs(specs map[int]Spec) []int {
	ids := make([]int, 0, len(specs))
	for id := range specs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Lookup returns the spec for marker id.
func (c *Config) Lookup(id int) (Spec, bool) {
	if c == nil {
		return Spec{}, false
	}
	s, ok := c.specs[id]
	return s, ok
}

// IDs returns the configured marker ids in ascending order.
func (c *Config) IDs() []int {
	if c == nil {
		return nil
	}
	return sortedIDs(c.specs)
}

// Check verifies that every marker in refs has a config entry of the same
// kind.
func (c *Config) Check(refs []toolpath.Ref) error {
	for _, r := range refs {
		m, ok := r.(toolpath.MarkerRef)
		if !ok {
			continue
		}
		s, ok := c.Lookup(m.ID)
		if !ok {
			return ferrors.MarkerConfigError(m.ID, "no entry/exit configuration")
		}
		if s.Kind != m.Kind {
			return ferrors.MarkerConfigError(m.ID, fmt.Sprintf("used as %s but configured as %s", m.Kind, s.Kind))
		}
	}
	return nil
}
