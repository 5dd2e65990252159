// Structured logging tests
//
// Copyright (C) 2026  Foamcut Go Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(buf *bytes.Buffer, format OutputFormat) *Logger {
	logger := New("test")
	logger.SetWriter(buf)
	logger.SetColorize(false)
	logger.SetFormat(format)
	logger.SetLevel(DEBUG)
	return logger
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "output: %s", buf.String())
	return entry
}

func TestLoggerBasic(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf, FormatText)

	logger.Info("hello %s", "world")

	output := buf.String()
	assert.Contains(t, output, "INF")
	assert.Contains(t, output, "hello world")
	assert.Contains(t, output, "logger=test")
}

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf, FormatText)
	logger.SetLevel(INFO)

	logger.Debug("debug message")
	assert.Zero(t, buf.Len(), "DEBUG should be filtered")

	logger.Info("info message")
	assert.Contains(t, buf.String(), "info message")
	buf.Reset()

	logger.Warn("warn message")
	assert.Contains(t, buf.String(), "warn message")
	buf.Reset()

	logger.Error("error message")
	assert.Contains(t, buf.String(), "error message")
}

func TestLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf, FormatJSON)

	logger.Info("json test")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "test", entry["logger"])
	assert.Equal(t, "json test", entry["message"])
	assert.NotEmpty(t, entry["time"])
}

func TestLoggerWithFieldsText(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf, FormatText)

	logger.WithField("cut", "wing").Info("with field")

	assert.Contains(t, buf.String(), "cut=wing")
}

func TestLoggerWithFieldsJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf, FormatJSON)

	logger.WithFields(Fields{
		"cut":     "wing",
		"samples": 42,
	}).Info("synchronized")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "wing", entry["cut"])
	assert.Equal(t, float64(42), entry["samples"])
}

func TestLoggerWithError(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf, FormatJSON)

	logger.WithError(errors.New("gap too large")).Error("build failed")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "gap too large", entry["error"])
}

func TestLoggerWithPrefix(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf, FormatJSON)

	child := logger.WithPrefix("child")
	child.Info("child message")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "child", entry["logger"])
	assert.Equal(t, "child", child.Prefix())
	assert.Equal(t, DEBUG, child.GetLevel())
}

func TestEntryChaining(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf, FormatJSON)

	logger.
		WithField("a", 1).
		WithField("b", 2).
		WithFields(Fields{"c": 3}).
		Infof("chained %d", 3)

	entry := decodeLine(t, &buf)
	assert.Equal(t, "chained 3", entry["message"])
	for _, k := range []string{"a", "b", "c"} {
		assert.Contains(t, entry, k)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
	}{
		{"DEBUG", DEBUG},
		{"debug", DEBUG},
		{"trace", DEBUG},
		{"INFO", INFO},
		{"WARN", WARN},
		{"WARNING", WARN},
		{"error", ERROR},
		{"invalid", INFO},
		{"", INFO},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ParseLevel(tt.input), "ParseLevel(%q)", tt.input)
	}
}

func TestParseFormat(t *testing.T) {
	assert.Equal(t, FormatJSON, ParseFormat("JSON"))
	assert.Equal(t, FormatText, ParseFormat("text"))
	assert.Equal(t, FormatText, ParseFormat("yaml"))
}

func TestLogLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", DEBUG.String())
	assert.Equal(t, "ERROR", ERROR.String())
	assert.Equal(t, "UNKNOWN", LogLevel(99).String())
}

func TestConfigureFromEnv(t *testing.T) {
	t.Setenv("FOAMCUT_LOG_LEVEL", "warn")
	t.Setenv("FOAMCUT_LOG_FORMAT", "json")

	var buf bytes.Buffer
	logger := New("env")
	logger.SetWriter(&buf)
	ConfigureFromEnv(logger)

	logger.Info("dropped")
	assert.Zero(t, buf.Len())

	logger.Warn("kept")
	entry := decodeLine(t, &buf)
	assert.Equal(t, "kept", entry["message"])
}

func TestGetLogger(t *testing.T) {
	logger := GetLogger("syncpath")
	require.NotNil(t, logger)
	assert.Equal(t, "syncpath", logger.Prefix())
}

func BenchmarkLoggerJSON(b *testing.B) {
	var buf bytes.Buffer
	logger := New("bench")
	logger.SetWriter(&buf)
	logger.SetFormat(FormatJSON)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf.Reset()
		logger.Info("benchmark message %d", i)
	}
}

func BenchmarkLoggerFiltered(b *testing.B) {
	var buf bytes.Buffer
	logger := New("bench")
	logger.SetWriter(&buf)
	logger.SetLevel(ERROR)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Info("this should be filtered")
	}
}
