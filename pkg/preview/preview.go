// Synchronized path previews
//
// Copyright (C) 2026  Foamcut Go Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

// Package preview iterates over and plots a synchronized path pair, with
// the wire drawn between matching samples.
package preview

import (
	"fmt"
	"image/color"
	"io"
	"iter"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"foamcut-go/pkg/geom"
	"foamcut-go/pkg/syncpath"
	"foamcut-go/pkg/toolpath"
)

// Frame is one synchronized sample: where both gantries are when the
// wire reaches progress Progress along both paths.
type Frame struct {
	Index    int
	Progress float64
	Left     geom.Point
	Right    geom.Point
}

// Frames yields every step-th sample of pair. The last sample is always
// yielded. A step below 1 is treated as 1.
func Frames(pair *syncpath.Pair, step int) iter.Seq[Frame] {
	step = max(step, 1)
	return func(yield func(Frame) bool) {
		if pair == nil {
			return
		}
		n := pair.Len()
		for k := 0; k < n; k += step {
			if !yield(frame(pair, k)) {
				return
			}
			if k != n-1 && k+step > n-1 {
				k = n - 1 - step
			}
		}
	}
}

func frame(pair *syncpath.Pair, k int) Frame {
	l, r := pair.At(k)
	return Frame{Index: k, Progress: pair.Progress(k), Left: l.Point, Right: r.Point}
}

// Options controls the rendered image.
type Options struct {
	Title string
	// WireEvery draws the wire every WireEvery samples; 0 picks a step
	// that yields about 40 chords.
	WireEvery int
	Width     vg.Length
	Height    vg.Length
}

var (
	leftColor  = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	rightColor = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	wireColor  = color.RGBA{R: 150, G: 150, B: 150, A: 255}
)

func (o Options) withDefaults(n int) Options {
	if o.WireEvery <= 0 {
		o.WireEvery = max(1, n/40)
	}
	if o.Width <= 0 {
		o.Width = 10 * vg.Inch
	}
	if o.Height <= 0 {
		o.Height = 6 * vg.Inch
	}
	return o
}

// Plot builds the preview plot of pair.
func Plot(pair *syncpath.Pair, opts Options) (*plot.Plot, error) {
	if pair == nil || pair.Len() == 0 {
		return nil, fmt.Errorf("preview: empty path pair")
	}
	opts = opts.withDefaults(pair.Len())

	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = "horizontal (mm)"
	p.Y.Label.Text = "vertical (mm)"

	for f := range Frames(pair, opts.WireEvery) {
		wire, err := plotter.NewLine(plotter.XYs{
			{X: f.Left.X, Y: f.Left.Y},
			{X: f.Right.X, Y: f.Right.Y},
		})
		if err != nil {
			return nil, err
		}
		wire.Color = wireColor
		wire.Width = vg.Points(0.5)
		wire.Dashes = []vg.Length{vg.Points(2), vg.Points(2)}
		p.Add(wire)
	}

	left, right := toolpath.Points(pair.Left()), toolpath.Points(pair.Right())
	for _, s := range []struct {
		name string
		pts  []geom.Point
		c    color.Color
	}{
		{syncpath.Left, left, leftColor},
		{syncpath.Right, right, rightColor},
	} {
		line, err := plotter.NewLine(xys(s.pts))
		if err != nil {
			return nil, err
		}
		line.Color = s.c
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(s.name, line)
	}

	start, err := plotter.NewScatter(xys([]geom.Point{left[0], right[0]}))
	if err != nil {
		return nil, err
	}
	start.GlyphStyle.Radius = vg.Points(3)
	p.Add(start)
	p.Legend.Add("start", start)

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return p, nil
}

func xys(pts []geom.Point) plotter.XYs {
	out := make(plotter.XYs, len(pts))
	for i, pt := range pts {
		out[i] = plotter.XY{X: pt.X, Y: pt.Y}
	}
	return out
}

// Render writes the preview of pair to file. The image format follows
// the file extension (png, svg, pdf, ...).
func Render(pair *syncpath.Pair, file string, opts Options) error {
	p, err := Plot(pair, opts)
	if err != nil {
		return err
	}
	opts = opts.withDefaults(pair.Len())
	return p.Save(opts.Width, opts.Height, file)
}

// Encode writes the preview of pair to w in format.
func Encode(w io.Writer, pair *syncpath.Pair, format string, opts Options) error {
	p, err := Plot(pair, opts)
	if err != nil {
		return err
	}
	opts = opts.withDefaults(pair.Len())
	wt, err := p.WriterTo(opts.Width, opts.Height, strings.TrimPrefix(format, "."))
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

// FileName returns the preview file name for a program output path.
func FileName(output, format string) string {
	return strings.TrimSuffix(output, filepath.Ext(output)) + "." + strings.TrimPrefix(format, ".")
}
