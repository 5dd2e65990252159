// Metrics collection for foamcut-go
//
// Prometheus text-format metrics for batch runs:
// - Counter: monotonically increasing values
// - Histogram: distribution of observations in buckets
//
// Copyright (C) 2026  Foamcut Go Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package metrics

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// Labels represents metric labels as key-value pairs
type Labels map[string]string

// key returns a canonical key for the label set.
func (l Labels) key() string {
	if len(l) == 0 {
		return ""
	}
	keys := l.sortedKeys()
	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(l[k])
	}
	return sb.String()
}

func (l Labels) sortedKeys() []string {
	keys := make([]string, 0, len(l))
	for k := range l {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// String returns labels in Prometheus format, e.g. {result="ok"}.
func (l Labels) String() string {
	if len(l) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteByte('{')
	for i, k := range l.sortedKeys() {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(k)
		sb.WriteString(`="`)
		sb.WriteString(escapeLabel(l[k]))
		sb.WriteByte('"')
	}
	sb.WriteByte('}')
	return sb.String()
}

// with returns a copy of l with k set to v.
func (l Labels) with(k, v string) Labels {
	out := make(Labels, len(l)+1)
	for lk, lv := range l {
		out[lk] = lv
	}
	out[k] = v
	return out
}

var labelEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

func escapeLabel(s string) string {
	return labelEscaper.Replace(s)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Metric is the interface for all metric types
type Metric interface {
	Name() string
	Help() string
	Write(sb *strings.Builder)
}

func writeHeader(sb *strings.Builder, name, help, typ string) {
	fmt.Fprintf(sb, "# HELP %s %s\n# TYPE %s %s\n", name, help, name, typ)
}

// series is one labelled time series of a metric.
type series[V any] struct {
	labels Labels
	value  V
}

// sortedSeries returns the series of m ordered by label key.
func sortedSeries[V any](m *sync.Map) []*series[V] {
	var keys []string
	byKey := make(map[string]*series[V])
	m.Range(func(k, v any) bool {
		keys = append(keys, k.(string))
		byKey[k.(string)] = v.(*series[V])
		return true
	})
	sort.Strings(keys)
	out := make([]*series[V], len(keys))
	for i, k := range keys {
		out[i] = byKey[k]
	}
	return out
}

// Counter is a monotonically increasing metric
type Counter struct {
	name   string
	help   string
	values sync.Map // label key -> *series[atomic.Uint64]
}

// NewCounter creates a new counter metric
func NewCounter(name, help string) *Counter {
	return &Counter{name: name, help: help}
}

func (c *Counter) Name() string { return c.name }
func (c *Counter) Help() string { return c.help }

// Inc increments the counter by 1
func (c *Counter) Inc(labels Labels) {
	c.Add(labels, 1)
}

// Add increments the counter by delta
func (c *Counter) Add(labels Labels, delta uint64) {
	v, _ := c.values.LoadOrStore(labels.key(), &series[atomic.Uint64]{labels: labels})
	v.(*series[atomic.Uint64]).value.Add(delta)
}

// Get returns the current counter value for labels
func (c *Counter) Get(labels Labels) uint64 {
	v, ok := c.values.Load(labels.key())
	if !ok {
		return 0
	}
	return v.(*series[atomic.Uint64]).value.Load()
}

func (c *Counter) Write(sb *strings.Builder) {
	writeHeader(sb, c.name, c.help, "counter")
	for _, s := range sortedSeries[atomic.Uint64](&c.values) {
		fmt.Fprintf(sb, "%s%s %d\n", c.name, s.labels, s.value.Load())
	}
}

// Histogram tracks the distribution of observations
type Histogram struct {
	name    string
	help    string
	buckets []float64
	values  sync.Map // label key -> *series[histogramValue]
}

type histogramValue struct {
	mu      sync.Mutex
	count   uint64
	sum     float64
	buckets []uint64 // non-cumulative per-bucket counts
}

// NewHistogram creates a new histogram metric with the given upper bounds
func NewHistogram(name, help string, buckets []float64) *Histogram {
	sorted := append([]float64(nil), buckets...)
	sort.Float64s(sorted)
	return &Histogram{name: name, help: help, buckets: sorted}
}

// DefaultBuckets returns default histogram buckets for latency metrics
func DefaultBuckets() []float64 {
	return []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
}

// ExponentialBuckets creates count buckets starting at start with factor multiplier
func ExponentialBuckets(start, factor float64, count int) []float64 {
	buckets := make([]float64, count)
	for i := range buckets {
		buckets[i] = start
		start *= factor
	}
	return buckets
}

func (h *Histogram) Name() string { return h.name }
func (h *Histogram) Help() string { return h.help }

// Observe records a value in the histogram
func (h *Histogram) Observe(labels Labels, value float64) {
	v, _ := h.values.LoadOrStore(labels.key(), &series[histogramValue]{
		labels: labels,
		value:  histogramValue{buckets: make([]uint64, len(h.buckets))},
	})
	hv := &v.(*series[histogramValue]).value
	hv.mu.Lock()
	defer hv.mu.Unlock()
	hv.count++
	hv.sum += value
	if i := sort.SearchFloat64s(h.buckets, value); i < len(h.buckets) {
		hv.buckets[i]++
	}
}

// HistogramSnapshot contains a point-in-time snapshot of histogram values
type HistogramSnapshot struct {
	Count   uint64
	Sum     float64
	Buckets map[float64]uint64 // cumulative counts by upper bound
}

// GetSnapshot returns a snapshot of histogram values for the given labels
func (h *Histogram) GetSnapshot(labels Labels) HistogramSnapshot {
	snap := HistogramSnapshot{Buckets: make(map[float64]uint64, len(h.buckets))}
	v, ok := h.values.Load(labels.key())
	if !ok {
		return snap
	}
	hv := &v.(*series[histogramValue]).value
	hv.mu.Lock()
	defer hv.mu.Unlock()
	cumulative := uint64(0)
	for i, bound := range h.buckets {
		cumulative += hv.buckets[i]
		snap.Buckets[bound] = cumulative
	}
	snap.Count, snap.Sum = hv.count, hv.sum
	return snap
}

func (h *Histogram) Write(sb *strings.Builder) {
	writeHeader(sb, h.name, h.help, "histogram")
	for _, s := range sortedSeries[histogramValue](&h.values) {
		snap := h.GetSnapshot(s.labels)
		for _, bound := range h.buckets {
			fmt.Fprintf(sb, "%s_bucket%s %d\n", h.name, s.labels.with("le", formatFloat(bound)), snap.Buckets[bound])
		}
		fmt.Fprintf(sb, "%s_bucket%s %d\n", h.name, s.labels.with("le", "+Inf"), snap.Count)
		fmt.Fprintf(sb, "%s_sum%s %s\n", h.name, s.labels, formatFloat(snap.Sum))
		fmt.Fprintf(sb, "%s_count%s %d\n", h.name, s.labels, snap.Count)
	}
}

// Registry holds registered metrics in registration order
type Registry struct {
	mu      sync.RWMutex
	metrics map[string]Metric
	order   []string
}

// NewRegistry creates a new metrics registry
func NewRegistry() *Registry {
	return &Registry{metrics: make(map[string]Metric)}
}

// Register adds a metric to the registry
func (r *Registry) Register(metric Metric) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := metric.Name()
	if _, exists := r.metrics[name]; exists {
		return fmt.Errorf("metric %q already registered", name)
	}
	r.metrics[name] = metric
	r.order = append(r.order, name)
	return nil
}

// MustRegister adds a metric and panics on error
func (r *Registry) MustRegister(metric Metric) {
	if err := r.Register(metric); err != nil {
		panic(err)
	}
}

// Get returns a metric by name
func (r *Registry) Get(name string) Metric {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.metrics[name]
}

// Gather collects all metrics in Prometheus text format
func (r *Registry) Gather() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var sb strings.Builder
	for _, name := range r.order {
		r.metrics[name].Write(&sb)
	}
	return sb.String()
}

// WriteTo writes the Prometheus text format to w.
func (r *Registry) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, r.Gather())
	return int64(n), err
}
