// Job file tests
//
// Copyright (C) 2026  Foamcut Go Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "foamcut-go/pkg/errors"
	"foamcut-go/pkg/geom"
	"foamcut-go/pkg/kinematics"
	"foamcut-go/pkg/toolpath"
)

const wingJob = `
[machine]
feed_rate: 300          # mm/min
wire_current: 2.5
tolerance: 0.5
entities: wing.json

[entry 101]
distance: 5, 0
feed_rate: 120
direction: 10

[exit 102]
distance: 5, 0

[cut wing_root]
left: entry:101, 1, 2, 3, exit:102
right: entry:101, 11, 12, 13, exit:102
output: out/wing_root.nc

[cut tip]
left: 4
right: 14
feed_rate: 200
`

func writeJob(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "job.cfg")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadJob(t *testing.T) {
	path := writeJob(t, wingJob)
	dir := filepath.Dir(path)

	job, err := LoadJob(path)
	require.NoError(t, err)

	assert.Equal(t, path, job.Path)
	assert.Equal(t, Machine{
		FeedRate:    300,
		WireCurrent: 2.5,
		Tolerance:   0.5,
		Decimals:    3,
		AxisMap:     kinematics.DefaultAxisMap,
		ArcSegment:  1,
		Entities:    filepath.Join(dir, "wing.json"),
	}, job.Machine)

	entry, ok := job.Markers.Lookup(101)
	require.True(t, ok)
	assert.Equal(t, toolpath.EntryMarker, entry.Kind)
	assert.Equal(t, geom.Pt(5, 0), entry.Distance)
	require.NotNil(t, entry.FeedRate)
	assert.Equal(t, 120.0, *entry.FeedRate)
	require.NotNil(t, entry.Direction)
	assert.Equal(t, 10.0, *entry.Direction)

	exit, ok := job.Markers.Lookup(102)
	require.True(t, ok)
	assert.Equal(t, toolpath.ExitMarker, exit.Kind)
	assert.Nil(t, exit.FeedRate)

	require.Len(t, job.Cuts, 2)
	root := job.Cuts[0]
	assert.Equal(t, "wing_root", root.Name)
	assert.Equal(t, "entry:101, 1, 2, 3, exit:102", toolpath.FormatRefs(root.Left))
	assert.Equal(t, "entry:101, 11, 12, 13, exit:102", toolpath.FormatRefs(root.Right))
	assert.Equal(t, filepath.Join(dir, "out", "wing_root.nc"), root.Output)
	assert.Zero(t, root.FeedRate)
	assert.Equal(t, "wing_root", root.Comment)

	tip := job.Cuts[1]
	assert.Equal(t, filepath.Join(dir, "tip.nc"), tip.Output)
	assert.Equal(t, 200.0, tip.FeedRate)
}

func TestLoadJobAxes(t *testing.T) {
	job, err := LoadJob(writeJob(t, "[machine]\nfeed_rate: 100\naxes: X Y U V\n[cut a]\nleft: 1\nright: 2\n"))
	require.NoError(t, err)
	assert.Equal(t, "XYUV", job.Machine.AxisMap.String())
	assert.Empty(t, job.Machine.Entities)
}

func TestLoadJobErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		code ferrors.ErrorCode
	}{
		{"no machine", "[cut a]\nleft: 1\nright: 2\n", ferrors.ErrConfigSection},
		{"no feed", "[machine]\n[cut a]\nleft: 1\nright: 2\n", ferrors.ErrConfigOption},
		{"zero feed", "[machine]\nfeed_rate: 0\n[cut a]\nleft: 1\nright: 2\n", ferrors.ErrConfigValidation},
		{"no cuts", "[machine]\nfeed_rate: 300\n", ferrors.ErrConfigValidation},
		{"unknown option", "[machine]\nfeed_rate: 300\nspeed: 3\n[cut a]\nleft: 1\nright: 2\n", ferrors.ErrConfigValidation},
		{"unknown section", "[machine]\nfeed_rate: 300\n[heater]\n[cut a]\nleft: 1\nright: 2\n", ferrors.ErrConfigValidation},
		{"bad refs", "[machine]\nfeed_rate: 300\n[cut a]\nleft: 1, lead:3\nright: 2\n", ferrors.ErrConfigValidation},
		{"missing right", "[machine]\nfeed_rate: 300\n[cut a]\nleft: 1\n", ferrors.ErrConfigOption},
		{"bad distance", "[machine]\nfeed_rate: 300\n[entry 1]\ndistance: 5\n[cut a]\nleft: 1\nright: 2\n", ferrors.ErrConfigValidation},
		{"bad marker id", "[machine]\nfeed_rate: 300\n[entry one]\ndistance: 5, 0\n[cut a]\nleft: 1\nright: 2\n", ferrors.ErrConfigValidation},
		{"zero distance", "[machine]\nfeed_rate: 300\n[exit 2]\ndistance: 0, 0\n[cut a]\nleft: 1\nright: 2\n", ferrors.ErrMarkerConfig},
		{"bad axes", "[machine]\nfeed_rate: 300\naxes: XYF\n[cut a]\nleft: 1\nright: 2\n", ferrors.ErrConfigValidation},
		{"undeclared marker", "[machine]\nfeed_rate: 300\n[cut a]\nleft: entry:7, 1\nright: entry:7, 2\n", ferrors.ErrConfigValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadJob(writeJob(t, tt.body))
			require.Error(t, err)
			assert.Equal(t, tt.code, ferrors.CodeOf(err), "%v", err)
			assert.True(t, ferrors.IsConfig(err))
		})
	}
}

func TestLoadJobDuplicateMarker(t *testing.T) {
	_, err := LoadJob(writeJob(t, "[machine]\nfeed_rate: 300\n[entry 5]\ndistance: 1, 0\n[exit 5]\ndistance: 1, 0\n[cut a]\nleft: 1\nright: 2\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "defined twice")
}
