// foamcut generates synchronized 4-axis G-code for a hot-wire foam cutter.
// It reads a job file, resolves each cut's left and right entity lists,
// adds the configured lead-in and lead-out segments, resamples both
// paths to a common progress grid and writes one program per cut.
//
// Usage:
//
//	foamcut -job wing.cfg [options]
//
// Options:
//
//	-job string        Job file (required)
//	-entities string   Entity file, overrides [machine] entities
//	-out string        Output directory for relative cut outputs
//	-workers int       Cuts generated concurrently (default: GOMAXPROCS)
//	-verify            Replay every program and check it against its paths
//	-preview string    Also plot each cut (png, svg or pdf)
//	-metrics string    Write Prometheus text metrics to this file
//	-log-level string  DEBUG, INFO, WARN or ERROR
//	-log-format string text or json
//
// The exit status is 2 for an invalid job file and 1 for any other
// failure.
//
// Examples:
//
//	# Generate every cut of a job
//	foamcut -job wing.cfg
//
//	# Generate, verify and plot into build/
//	foamcut -job wing.cfg -out build -verify -preview svg
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"foamcut-go/pkg/batch"
	"foamcut-go/pkg/config"
	"foamcut-go/pkg/entity"
	ferrors "foamcut-go/pkg/errors"
	"foamcut-go/pkg/gcode"
	"foamcut-go/pkg/log"
	"foamcut-go/pkg/metrics"
	"foamcut-go/pkg/pipeline"
	"foamcut-go/pkg/preview"
)

type options struct {
	job      string
	entities string
	out      string
	workers  int
	verify   bool
	preview  string
	metrics  string
}

func main() {
	var opts options
	flag.StringVar(&opts.job, "job", "", "Job file (required)")
	flag.StringVar(&opts.entities, "entities", "", "Entity file, overrides [machine] entities")
	flag.StringVar(&opts.out, "out", "", "Output directory for relative cut outputs")
	flag.IntVar(&opts.workers, "workers", 0, "Cuts generated concurrently (0: GOMAXPROCS)")
	flag.BoolVar(&opts.verify, "verify", false, "Replay every program and check it against its paths")
	flag.StringVar(&opts.preview, "preview", "", "Also plot each cut (png, svg or pdf)")
	flag.StringVar(&opts.metrics, "metrics", "", "Write Prometheus text metrics to this file")
	logLevel := flag.String("log-level", "", "Log level: DEBUG, INFO, WARN, ERROR")
	logFormat := flag.String("log-format", "", "Log format: text or json")
	flag.Parse()

	if opts.job == "" {
		fmt.Fprintf(os.Stderr, "Error: -job is required\n")
		flag.Usage()
		os.Exit(1)
	}

	root := log.New("foamcut")
	log.ConfigureFromEnv(root)
	if *logLevel != "" {
		root.SetLevel(log.ParseLevel(*logLevel))
	}
	if *logFormat != "" {
		root.SetFormat(log.ParseFormat(*logFormat))
	}
	log.SetDefaultLogger(root)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts); err != nil {
		root.WithError(err).Error("job failed")
		stop()
		os.Exit(exitCode(err))
	}
}

// exitCode is 2 when the job or marker configuration is invalid and 1 for
// any other failure.
func exitCode(err error) int {
	if ferrors.IsConfig(err) {
		return 2
	}
	return 1
}

func run(ctx context.Context, opts options) error {
	logger := log.GetLogger("main")

	job, err := config.LoadJob(opts.job)
	if err != nil {
		return err
	}
	entitiesFile := job.Machine.Entities
	if opts.entities != "" {
		entitiesFile = opts.entities
	}
	if entitiesFile == "" {
		return fmt.Errorf("no entity file: set [machine] entities or -entities")
	}
	store, err := entity.LoadFile(entitiesFile, entity.RenderOptions{Segment: job.Machine.ArcSegment})
	if err != nil {
		return err
	}
	logger.WithFields(log.Fields{
		"job":      opts.job,
		"entities": store.Len(),
		"cuts":     len(job.Cuts),
		"axes":     job.Machine.AxisMap.String(),
	}).Info("job loaded")

	reqs := pipeline.FromJob(job, store)
	if opts.out != "" {
		for i := range reqs {
			if !filepath.IsAbs(reqs[i].Output) {
				reqs[i].Output = filepath.Join(opts.out, filepath.Base(reqs[i].Output))
			}
		}
	}

	m := metrics.NewCutMetrics()
	start := time.Now()
	outs, runErr := batch.NewRunner(opts.workers, m).Run(ctx, reqs)
	if ctx.Err() != nil {
		return runErr
	}

	written := 0
	for i, o := range outs {
		if o.Err != nil {
			continue
		}
		if err := finish(o, reqs[i].Emit, opts); err != nil {
			logger.WithField("cut", o.Name).WithError(err).Error("cut not written")
			runErr = errors.Join(runErr, fmt.Errorf("cut %q: %w", o.Name, err))
			continue
		}
		written++
	}
	logger.WithFields(log.Fields{
		"written": written,
		"failed":  len(outs) - written,
		"elapsed": time.Since(start).String(),
	}).Info("job finished")

	if opts.metrics != "" {
		if err := writeMetrics(opts.metrics, m); err != nil {
			return errors.Join(runErr, err)
		}
	}
	return runErr
}

// finish verifies and writes one generated cut.
func finish(o batch.Outcome, emit gcode.Options, opts options) error {
	res := o.Result
	if opts.verify {
		if err := gcode.Verify(res.Program, res.Pair, emit); err != nil {
			return err
		}
	}
	if err := writeProgram(o.Output, res.Program); err != nil {
		return err
	}
	if opts.preview != "" {
		if err := preview.Render(res.Pair, preview.FileName(o.Output, opts.preview), preview.Options{Title: o.Name}); err != nil {
			return err
		}
	}
	log.GetLogger("main").WithFields(log.Fields{
		"cut":      o.Name,
		"output":   o.Output,
		"samples":  res.Stats.Samples,
		"cut_time": fmt.Sprintf("%.1fs", res.Stats.CutTime),
	}).Info("program written")
	return nil
}

func writeProgram(path string, prog *gcode.Program) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := prog.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeMetrics(path string, m *metrics.CutMetrics) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := m.Registry().WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
