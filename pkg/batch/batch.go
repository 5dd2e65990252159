// Concurrent execution of cutting-path requests
//
// Copyright (C) 2026  Foamcut Go Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

// Package batch runs many independent cutting-path requests on a bounded
// worker pool.
package batch

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	ferrors "foamcut-go/pkg/errors"
	"foamcut-go/pkg/log"
	"foamcut-go/pkg/metrics"
	"foamcut-go/pkg/pipeline"
)

// Outcome is the result of one request. Exactly one of Result and Err is
// set.
type Outcome struct {
	ID      string
	Name    string
	Output  string
	Result  *pipeline.Result
	Err     error
	Elapsed time.Duration
}

// Runner executes requests concurrently. A failing request does not stop
// the others.
type Runner struct {
	// Workers bounds the number of requests in flight. Zero means
	// GOMAXPROCS.
	Workers int
	// Metrics is optional.
	Metrics *metrics.CutMetrics
}

// NewRunner creates a runner with the given worker count.
func NewRunner(workers int, m *metrics.CutMetrics) *Runner {
	return &Runner{Workers: workers, Metrics: m}
}

func (r *Runner) workers(n int) int {
	w := r.Workers
	if w <= 0 {
		w = runtime.GOMAXPROCS(0)
	}
	return max(1, min(w, n))
}

// Run executes reqs and returns their outcomes in input order. The
// returned error joins every request failure, each prefixed with its cut
// name; it is the context error alone when ctx ends first.
func (r *Runner) Run(ctx context.Context, reqs []pipeline.Request) ([]Outcome, error) {
	out := make([]Outcome, len(reqs))
	if len(reqs) == 0 {
		return out, nil
	}

	batchID := uuid.NewString()
	logger := log.GetLogger("batch").WithField("batch", batchID)
	logger.WithFields(log.Fields{
		"cuts":    len(reqs),
		"workers": r.workers(len(reqs)),
	}).Info("batch started")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers(len(reqs)))
	for i, req := range reqs {
		out[i] = Outcome{ID: uuid.NewString(), Name: req.Name, Output: req.Output}
		if gctx.Err() != nil {
			out[i].Err = gctx.Err()
			continue
		}
		g.Go(func() error {
			o := &out[i]
			start := time.Now()
			o.Result, o.Err = pipeline.Run(gctx, req)
			o.Elapsed = time.Since(start)
			r.record(o)
			if o.Err != nil {
				logger.WithFields(log.Fields{
					"cut":  o.Name,
					"id":   o.ID,
					"code": string(ferrors.CodeOf(o.Err)),
				}).WithError(o.Err).Warn("cut failed")
			}
			// only cancellation aborts the batch
			if errors.Is(o.Err, context.Canceled) || errors.Is(o.Err, context.DeadlineExceeded) {
				return o.Err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return out, err
	}
	if err := ctx.Err(); err != nil {
		return out, err
	}

	var errs []error
	failed := 0
	for _, o := range out {
		if o.Err != nil {
			failed++
			errs = append(errs, fmt.Errorf("cut %q: %w", o.Name, o.Err))
		}
	}
	logger.WithFields(log.Fields{
		"ok":     len(out) - failed,
		"failed": failed,
	}).Info("batch finished")
	return out, errors.Join(errs...)
}

func (r *Runner) record(o *Outcome) {
	if r.Metrics == nil {
		return
	}
	if o.Err != nil {
		r.Metrics.RecordFailure(o.Elapsed, string(ferrors.CodeOf(o.Err)))
		return
	}
	s := o.Result.Stats
	r.Metrics.RecordSuccess(o.Elapsed, s.Samples, s.Lines, s.CutTime)
}

// Failed returns the outcomes that carry an error.
func Failed(outs []Outcome) []Outcome {
	var failed []Outcome
	for _, o := range outs {
		if o.Err != nil {
			failed = append(failed, o)
		}
	}
	return failed
}
