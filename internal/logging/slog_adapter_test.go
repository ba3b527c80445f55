// Lumen - Street-Lighting Dimming Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lumen

package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &m); err != nil {
		t.Fatalf("invalid JSON log line %q: %v", buf.String(), err)
	}
	return m
}

func TestSlogHandler_Enabled(t *testing.T) {
	t.Parallel()

	h := NewSlogHandler(zerolog.New(&bytes.Buffer{}).Level(zerolog.WarnLevel))
	tests := []struct {
		level slog.Level
		want  bool
	}{
		{slog.LevelDebug, false},
		{slog.LevelInfo, false},
		{slog.LevelWarn, true},
		{slog.LevelError, true},
	}
	for _, tt := range tests {
		if got := h.Enabled(context.Background(), tt.level); got != tt.want {
			t.Errorf("Enabled(%v) = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestSlogHandler_Handle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level slog.Level
		want  string
	}{
		{slog.LevelInfo, "info"},
		{slog.LevelWarn, "warn"},
		{slog.LevelError, "error"},
		{slog.Level(2), "info"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		logger := slog.New(NewSlogHandler(zerolog.New(&buf).Level(zerolog.TraceLevel)))
		logger.Log(context.Background(), tt.level, "service restarted")

		m := decodeLine(t, &buf)
		if m["level"] != tt.want || m["message"] != "service restarted" {
			t.Errorf("level %v logged %v", tt.level, m)
		}
	}
}

// TestSlogHandler_SupervisorEvent mirrors the attributes sutureslog emits for
// a service failure.
func TestSlogHandler_SupervisorEvent(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(NewSlogHandler(zerolog.New(&buf))).With("supervisor", "lumen")
	logger.Error("service failed",
		"service", "http-server",
		"restarting", true,
		"failures", 2.0,
		"backoff", 15*time.Second,
		"attempt", int64(3),
		"port", uint64(8000),
	)

	m := decodeLine(t, &buf)
	want := map[string]interface{}{
		"supervisor": "lumen",
		"service":    "http-server",
		"restarting": true,
		"failures":   2.0,
		"attempt":    3.0,
		"port":       8000.0,
	}
	for k, v := range want {
		if m[k] != v {
			t.Errorf("%s = %v, want %v", k, m[k], v)
		}
	}
	if _, ok := m["backoff"]; !ok {
		t.Error("backoff duration missing")
	}
}

func TestSlogHandler_Groups(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(NewSlogHandler(zerolog.New(&buf))).WithGroup("tree").WithGroup("api")
	logger.Info("started", slog.Group("http", slog.Int("port", 8000)), slog.String("state", "up"))

	m := decodeLine(t, &buf)
	if m["tree.api.state"] != "up" {
		t.Errorf("tree.api.state = %v, log = %v", m["tree.api.state"], m)
	}
	if m["tree.api.http.port"] != 8000.0 {
		t.Errorf("tree.api.http.port = %v, log = %v", m["tree.api.http.port"], m)
	}
}

func TestSlogHandler_WithGroupEmpty(t *testing.T) {
	t.Parallel()

	h := NewSlogHandler(zerolog.Nop())
	if h.WithGroup("") != h {
		t.Error("WithGroup(\"\") should return the same handler")
	}
}

func TestSlogHandler_WithAttrsDoesNotShare(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	base := NewSlogHandler(zerolog.New(&buf))
	a := slog.New(base.WithAttrs([]slog.Attr{slog.String("service", "a")}))
	b := slog.New(base.WithAttrs([]slog.Attr{slog.String("service", "b")}))

	a.Info("x")
	if !strings.Contains(buf.String(), `"service":"a"`) {
		t.Errorf("a logged %s", buf.String())
	}
	buf.Reset()
	b.Info("x")
	if strings.Contains(buf.String(), `"service":"a"`) {
		t.Errorf("attrs leaked between handlers: %s", buf.String())
	}
}

func TestSlogToZerologLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   slog.Level
		want zerolog.Level
	}{
		{slog.LevelDebug - 4, zerolog.TraceLevel},
		{slog.LevelDebug, zerolog.DebugLevel},
		{slog.LevelInfo, zerolog.InfoLevel},
		{slog.LevelWarn, zerolog.WarnLevel},
		{slog.LevelError, zerolog.ErrorLevel},
		{slog.LevelError + 4, zerolog.ErrorLevel},
	}
	for _, tt := range tests {
		if got := slogToZerologLevel(tt.in); got != tt.want {
			t.Errorf("slogToZerologLevel(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSlogHandler_AttrsBeforeGroup(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(NewSlogHandler(zerolog.New(&buf))).
		WithGroup("tree").With("layer", "maintenance").WithGroup("job")
	logger.Warn("backoff", "name", "grid-reloader")

	m := decodeLine(t, &buf)
	if m["tree.layer"] != "maintenance" || m["tree.job.name"] != "grid-reloader" {
		t.Errorf("log = %v", m)
	}
}

func TestNewSlogLogger(t *testing.T) {
	restoreGlobal(t)

	var buf bytes.Buffer
	SetLogger(NewTestLogger(&buf))
	NewSlogLogger("supervisor").Error("service failed", "service", "cache-sweeper")

	m := decodeLine(t, &buf)
	if m["component"] != "supervisor" || m["service"] != "cache-sweeper" || m["level"] != "error" {
		t.Errorf("log = %v", m)
	}
}
