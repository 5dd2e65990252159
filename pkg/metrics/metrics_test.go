// Unit tests for Prometheus metrics implementation
//
// Copyright (C) 2026  Foamcut Go Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package metrics

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestCounterBasic(t *testing.T) {
	c := NewCounter("test_counter", "A test counter")

	if v := c.Get(nil); v != 0 {
		t.Errorf("expected initial value 0, got %d", v)
	}
	c.Inc(nil)
	c.Add(nil, 10)
	if v := c.Get(nil); v != 11 {
		t.Errorf("expected 11, got %d", v)
	}
	if c.Name() != "test_counter" || c.Help() != "A test counter" {
		t.Errorf("unexpected name/help %q %q", c.Name(), c.Help())
	}
}

func TestCounterWithLabels(t *testing.T) {
	c := NewCounter("cuts_total", "Cuts")
	ok := Labels{"result": "ok"}
	fail := Labels{"result": "error"}

	c.Inc(ok)
	c.Inc(ok)
	c.Inc(fail)

	if v := c.Get(ok); v != 2 {
		t.Errorf("expected ok=2, got %d", v)
	}
	if v := c.Get(Labels{"result": "error"}); v != 1 {
		t.Errorf("expected error=1, got %d", v)
	}

	var sb strings.Builder
	c.Write(&sb)
	want := "# HELP cuts_total Cuts\n# TYPE cuts_total counter\n" +
		"cuts_total{result=\"error\"} 1\n" +
		"cuts_total{result=\"ok\"} 2\n"
	if sb.String() != want {
		t.Errorf("unexpected output:\n%s", sb.String())
	}
}

func TestCounterConcurrent(t *testing.T) {
	c := NewCounter("concurrent", "")
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Inc(Labels{"w": "x"})
			}
		}()
	}
	wg.Wait()
	if v := c.Get(Labels{"w": "x"}); v != 5000 {
		t.Errorf("expected 5000, got %d", v)
	}
}

func TestLabelsEscaping(t *testing.T) {
	l := Labels{"cut": "wing \"root\"\n", "a": `c:\x`}
	want := `{a="c:\\x",cut="wing \"root\"\n"}`
	if got := l.String(); got != want {
		t.Errorf("got %s, want %s", got, want)
	}
	if Labels(nil).String() != "" {
		t.Error("empty labels should format as empty string")
	}
}

func TestHistogram(t *testing.T) {
	h := NewHistogram("latency", "Latency", []float64{1, 0.1, 0.5})
	for _, v := range []float64{0.05, 0.2, 0.3, 0.7, 2} {
		h.Observe(nil, v)
	}

	snap := h.GetSnapshot(nil)
	if snap.Count != 5 {
		t.Errorf("expected count 5, got %d", snap.Count)
	}
	if snap.Sum < 3.2499 || snap.Sum > 3.2501 {
		t.Errorf("expected sum 3.25, got %v", snap.Sum)
	}
	want := map[float64]uint64{0.1: 1, 0.5: 3, 1: 4}
	for bound, n := range want {
		if snap.Buckets[bound] != n {
			t.Errorf("bucket le=%v: expected %d, got %d", bound, n, snap.Buckets[bound])
		}
	}

	var sb strings.Builder
	h.Write(&sb)
	out := sb.String()
	for _, line := range []string{
		`latency_bucket{le="0.1"} 1`,
		`latency_bucket{le="0.5"} 3`,
		`latency_bucket{le="1"} 4`,
		`latency_bucket{le="+Inf"} 5`,
		`latency_count 5`,
	} {
		if !strings.Contains(out, line+"\n") {
			t.Errorf("missing %q in:\n%s", line, out)
		}
	}
}

func TestExponentialBuckets(t *testing.T) {
	got := ExponentialBuckets(1, 2, 4)
	want := []float64{1, 2, 4, 8}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	a := NewCounter("a_total", "A")
	b := NewCounter("b_total", "B")
	r.MustRegister(b)
	r.MustRegister(a)

	if err := r.Register(NewCounter("a_total", "dup")); err == nil {
		t.Error("expected duplicate registration error")
	}
	if r.Get("a_total") != a {
		t.Error("Get returned wrong metric")
	}

	a.Inc(nil)
	var buf bytes.Buffer
	if _, err := r.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if strings.Index(out, "b_total") > strings.Index(out, "a_total") {
		t.Error("metrics should be written in registration order")
	}
	if !strings.Contains(out, "a_total 1\n") {
		t.Errorf("missing sample in:\n%s", out)
	}
}

func TestCutMetrics(t *testing.T) {
	m := NewCutMetrics()
	m.RecordSuccess(20*time.Millisecond, 120, 126, 42)
	m.RecordSuccess(10*time.Millisecond, 60, 66, 21)
	m.RecordFailure(time.Millisecond, "DISCONNECTED_PATH")
	m.RecordFailure(time.Millisecond, "")

	if v := m.CutsTotal.Get(Labels{"result": ResultOK}); v != 2 {
		t.Errorf("ok cuts = %d", v)
	}
	if v := m.CutsTotal.Get(Labels{"result": ResultError}); v != 2 {
		t.Errorf("failed cuts = %d", v)
	}
	if v := m.GCodeLines.Get(nil); v != 192 {
		t.Errorf("lines = %d", v)
	}
	if v := m.ErrorsByCode.Get(Labels{"code": "UNKNOWN"}); v != 1 {
		t.Errorf("unknown code count = %d", v)
	}
	if snap := m.CutDuration.GetSnapshot(nil); snap.Count != 4 {
		t.Errorf("duration count = %d", snap.Count)
	}

	out := m.Registry().Gather()
	for _, s := range []string{
		`foamcut_cuts_total{result="ok"} 2`,
		`foamcut_gcode_lines_total 192`,
		`foamcut_errors_total{code="DISCONNECTED_PATH"} 1`,
		"# TYPE foamcut_cut_duration_seconds histogram",
	} {
		if !strings.Contains(out, s) {
			t.Errorf("missing %q", s)
		}
	}
}
