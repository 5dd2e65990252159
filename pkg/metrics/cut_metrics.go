// Cutting job metrics
//
// Copyright (C) 2026  Foamcut Go Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package metrics

import "time"

// Result label values of CutsTotal.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// CutMetrics holds the metrics recorded for every processed cut.
type CutMetrics struct {
	CutsTotal     *Counter
	GCodeLines    *Counter
	Samples       *Histogram
	CutDuration   *Histogram // wall time spent generating a cut
	MachiningTime *Histogram // estimated time on the machine
	ErrorsByCode  *Counter

	registry *Registry
}

// NewCutMetrics creates and registers the cut metrics in a fresh registry.
func NewCutMetrics() *CutMetrics {
	m := &CutMetrics{
		CutsTotal:     NewCounter("foamcut_cuts_total", "Processed cuts by result"),
		GCodeLines:    NewCounter("foamcut_gcode_lines_total", "Emitted G-code lines"),
		Samples:       NewHistogram("foamcut_sync_samples", "Synchronized samples per cut", ExponentialBuckets(16, 4, 6)),
		CutDuration:   NewHistogram("foamcut_cut_duration_seconds", "Time to generate one cut", DefaultBuckets()),
		MachiningTime: NewHistogram("foamcut_machining_seconds", "Estimated machining time per cut", ExponentialBuckets(10, 3, 7)),
		ErrorsByCode:  NewCounter("foamcut_errors_total", "Failed cuts by error code"),
		registry:      NewRegistry(),
	}
	for _, metric := range []Metric{m.CutsTotal, m.GCodeLines, m.Samples, m.CutDuration, m.MachiningTime, m.ErrorsByCode} {
		m.registry.MustRegister(metric)
	}
	return m
}

// Registry returns the registry holding the cut metrics.
func (m *CutMetrics) Registry() *Registry {
	return m.registry
}

// RecordSuccess records a generated cut.
func (m *CutMetrics) RecordSuccess(elapsed time.Duration, samples, lines int, machining float64) {
	m.CutsTotal.Inc(Labels{"result": ResultOK})
	m.GCodeLines.Add(nil, uint64(lines))
	m.Samples.Observe(nil, float64(samples))
	m.CutDuration.Observe(nil, elapsed.Seconds())
	m.MachiningTime.Observe(nil, machining)
}

// RecordFailure records a failed cut under its error code.
func (m *CutMetrics) RecordFailure(elapsed time.Duration, code string) {
	if code == "" {
		code = "UNKNOWN"
	}
	m.CutsTotal.Inc(Labels{"result": ResultError})
	m.ErrorsByCode.Inc(Labels{"code": code})
	m.CutDuration.Observe(nil, elapsed.Seconds())
}
