// Cutting-path references: real entities and virtual entry/exit markers
//
// Copyright (C) 2026  Foamcut Go Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package toolpath

import (
	"fmt"
	"strconv"
	"strings"
)

// MarkerKind distinguishes lead-in from lead-out markers.
type MarkerKind int

const (
	EntryMarker MarkerKind = iota
	ExitMarker
)

func (k MarkerKind) String() string {
	switch k {
	case EntryMarker:
		return "entry"
	case ExitMarker:
		return "exit"
	default:
		return "unknown"
	}
}

// ParseMarkerKind parses "entry" or "exit".
func ParseMarkerKind(s string) (MarkerKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "entry":
		return EntryMarker, nil
	case "exit":
		return ExitMarker, nil
	}
	return 0, fmt.Errorf("unknown marker kind %q", s)
}

// Ref is one element of a cutting-path list: either an EntityRef or a
// MarkerRef. The set is closed.
type Ref interface {
	fmt.Stringer
	isRef()
}

// EntityRef refers to real CAD geometry.
type EntityRef struct {
	ID int
}

// MarkerRef is a virtual entry or exit marker. The same id is shared by
// both gantries.
type MarkerRef struct {
	ID   int
	Kind MarkerKind
}

func (EntityRef) isRef() {}
func (MarkerRef) isRef() {}

func (r EntityRef) String() string { return strconv.Itoa(r.ID) }
func (r MarkerRef) String() string { return fmt.Sprintf("%s:%d", r.Kind, r.ID) }

// Entity returns a reference to entity id.
func Entity(id int) Ref { return EntityRef{ID: id} }

// Entry returns an entry marker reference.
func Entry(id int) Ref { return MarkerRef{ID: id, Kind: EntryMarker} }

// Exit returns an exit marker reference.
func Exit(id int) Ref { return MarkerRef{ID: id, Kind: ExitMarker} }

// ParseRefs parses a comma separated list such as "entry:101, 1, 2, exit:102".
func ParseRefs(s string) ([]Ref, error) {
	var refs []Ref
	for _, tok := range strings.Split(s, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		if kind, id, ok := strings.Cut(tok, ":"); ok {
			k, err := ParseMarkerKind(kind)
			if err != nil {
				return nil, err
			}
			n, err := strconv.Atoi(strings.TrimSpace(id))
			if err != nil {
				return nil, fmt.Errorf("invalid marker id %q", id)
			}
			refs = append(refs, MarkerRef{ID: n, Kind: k})
			continue
		}
		n, err := strconv.Atoi(tok)
		if err != nil {
			return nil, fmt.Errorf("invalid entity id %q", tok)
		}
		refs = append(refs, EntityRef{ID: n})
	}
	return refs, nil
}

// FormatRefs is the inverse of ParseRefs.
func FormatRefs(refs []Ref) string {
	parts := make([]string, len(refs))
	for i, r := range refs {
		parts[i] = r.String()
	}
	return strings.Join(parts, ", ")
}

// Markers returns the entry and exit markers of a reference list, if any.
// It does not validate their placement.
func Markers(refs []Ref) (entry, exit *MarkerRef) {
	for _, r := range refs {
		m, ok := r.(MarkerRef)
		if !ok {
			continue
		}
		switch m.Kind {
		case EntryMarker:
			if entry == nil {
				entry = &m
			}
		case ExitMarker:
			exit = &m
		}
	}
	return entry, exit
}
