// Cutting job files
//
// Copyright (C) 2026  Foamcut Go Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package config

import (
	"fmt"
	"path/filepath"
	"strconv"

	"foamcut-go/pkg/entryexit"
	"foamcut-go/pkg/geom"
	"foamcut-go/pkg/kinematics"
	"foamcut-go/pkg/toolpath"
)

// Machine holds the [machine] section.
type Machine struct {
	FeedRate    float64 // mm/min
	WireCurrent float64
	Tolerance   float64 // stitching gap, mm
	Decimals    int
	AxisMap     kinematics.AxisMap
	ArcSegment  float64 // chord length used to render arcs, mm
	Entities    string  // entity file, resolved against the job directory
}

// Cut holds one [cut <name>] section.
type Cut struct {
	Name     string
	Left     []toolpath.Ref
	Right    []toolpath.Ref
	Output   string  // resolved against the job directory
	FeedRate float64 // overrides the machine feed when non-zero
	Comment  string
}

// Job is a parsed job file.
type Job struct {
	Path    string
	Machine Machine
	Markers *entryexit.Config
	Cuts    []Cut
}

// LoadJob reads and validates a job file. Unknown sections and options
// are reported as errors.
func LoadJob(path string) (*Job, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	job, err := ParseJob(cfg, filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	job.Path = path
	return job, nil
}

// ParseJob builds a Job from cfg. Relative file names are resolved against
// dir.
func ParseJob(cfg *Config, dir string) (*Job, error) {
	job := &Job{}
	var err error
	if job.Machine, err = parseMachine(cfg, dir); err != nil {
		return nil, err
	}
	if job.Markers, err = parseMarkers(cfg); err != nil {
		return nil, err
	}

	for _, sec := range cfg.GetPrefixSections("cut") {
		cut, err := parseCut(sec, dir)
		if err != nil {
			return nil, err
		}
		if err := job.Markers.Check(cut.Left); err != nil {
			return nil, WrapError(sec.GetName(), "left", err)
		}
		if err := job.Markers.Check(cut.Right); err != nil {
			return nil, WrapError(sec.GetName(), "right", err)
		}
		job.Cuts = append(job.Cuts, cut)
	}
	if len(job.Cuts) == 0 {
		return nil, NewConfigError("", "", "no [cut <name>] section")
	}

	if err := cfg.CheckUnused(); err != nil {
		return nil, err
	}
	return job, nil
}

func parseMachine(cfg *Config, dir string) (Machine, error) {
	var m Machine
	sec, err := cfg.GetSection("machine")
	if err != nil {
		return m, err
	}
	if m.FeedRate, err = sec.GetFloatWithBounds("feed_rate", Above(0)); err != nil {
		return m, err
	}
	if m.WireCurrent, err = sec.GetFloatWithBounds("wire_current", AtLeast(0), 0); err != nil {
		return m, err
	}
	if m.Tolerance, err = sec.GetFloatWithBounds("tolerance", Above(0), toolpath.DefaultBuildOptions().Tolerance); err != nil {
		return m, err
	}
	if m.Decimals, err = sec.GetIntWithBounds("decimals", 1, 6, 3); err != nil {
		return m, err
	}
	if m.ArcSegment, err = sec.GetFloatWithBounds("arc_segment", Above(0), 1.0); err != nil {
		return m, err
	}
	axes, err := sec.Get("axes", kinematics.DefaultAxisMap.String())
	if err != nil {
		return m, err
	}
	if m.AxisMap, err = kinematics.ParseAxisMap(axes); err != nil {
		return m, WrapError(sec.GetName(), "axes", err)
	}
	entities, err := sec.Get("entities", "")
	if err != nil {
		return m, err
	}
	if entities != "" {
		m.Entities = resolve(dir, entities)
	}
	return m, nil
}

func parseMarkers(cfg *Config) (*entryexit.Config, error) {
	specs := make(map[int]entryexit.Spec)
	for _, kind := range []toolpath.MarkerKind{toolpath.EntryMarker, toolpath.ExitMarker} {
		for _, sec := range cfg.GetPrefixSections(kind.String()) {
			id, err := strconv.Atoi(sec.Arg())
			if err != nil {
				return nil, NewConfigError(sec.GetName(), "", "marker id must be an integer")
			}
			if _, dup := specs[id]; dup {
				return nil, NewConfigError(sec.GetName(), "", fmt.Sprintf("marker %d defined twice", id))
			}
			spec := entryexit.Spec{Kind: kind}
			d, err := sec.GetFloatList("distance", ",")
			if err != nil {
				return nil, err
			}
			if len(d) != 2 {
				return nil, ErrInvalidValue(sec.GetName(), "distance", fmt.Sprint(d), "two values: dx, dz")
			}
			spec.Distance = geom.Pt(d[0], d[1])
			if spec.FeedRate, err = sec.GetOptionalFloat("feed_rate", Above(0)); err != nil {
				return nil, err
			}
			if spec.Direction, err = sec.GetOptionalFloat("direction", FloatBounds{}); err != nil {
				return nil, err
			}
			specs[id] = spec
		}
	}
	return entryexit.NewConfig(specs)
}

func parseCut(sec *Section, dir string) (Cut, error) {
	cut := Cut{Name: sec.Arg()}
	if cut.Name == "" {
		return cut, NewConfigError(sec.GetName(), "", "cut needs a name")
	}
	var err error
	if cut.Left, err = parseRefs(sec, "left"); err != nil {
		return cut, err
	}
	if cut.Right, err = parseRefs(sec, "right"); err != nil {
		return cut, err
	}
	output, err := sec.Get("output", cut.Name+".nc")
	if err != nil {
		return cut, err
	}
	cut.Output = resolve(dir, output)
	feed, err := sec.GetOptionalFloat("feed_rate", Above(0))
	if err != nil {
		return cut, err
	}
	if feed != nil {
		cut.FeedRate = *feed
	}
	if cut.Comment, err = sec.Get("comment", cut.Name); err != nil {
		return cut, err
	}
	return cut, nil
}

func parseRefs(sec *Section, option string) ([]toolpath.Ref, error) {
	v, err := sec.Get(option)
	if err != nil {
		return nil, err
	}
	refs, err := toolpath.ParseRefs(v)
	if err != nil {
		return nil, WrapError(sec.GetName(), option, err)
	}
	if len(refs) == 0 {
		return nil, ErrInvalidValue(sec.GetName(), option, v, "a non-empty reference list")
	}
	return refs, nil
}

func resolve(dir, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}
