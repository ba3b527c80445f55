// Lumen - Street-Lighting Dimming Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lumen

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"
)

func TestNewPeriodicService(t *testing.T) {
	t.Parallel()

	if _, err := NewPeriodicService("nil-task", nil, PeriodicConfig{}, zerolog.Nop()); !errors.Is(err, ErrNilTask) {
		t.Errorf("NewPeriodicService(nil) error = %v, want ErrNilTask", err)
	}

	svc, err := NewPeriodicService("cache-sweeper", func(context.Context) error { return nil }, PeriodicConfig{}, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if svc.config.Interval != time.Minute || svc.config.Timeout != time.Minute {
		t.Errorf("defaults = %+v", svc.config)
	}
	if svc.String() != "cache-sweeper" {
		t.Errorf("String() = %q", svc.String())
	}

	var _ suture.Service = svc
}

func TestPeriodicService_RunsOnTicks(t *testing.T) {
	t.Parallel()

	var runs atomic.Int32
	done := make(chan struct{})
	task := func(context.Context) error {
		if runs.Add(1) == 3 {
			close(done)
		}
		return nil
	}
	svc, err := NewPeriodicService("ticker", task, PeriodicConfig{Interval: 5 * time.Millisecond}, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("task ran %d times before timeout", runs.Load())
	}
	cancel()

	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() = %v, want context.Canceled", err)
	}
}

func TestPeriodicService_RunOnStart(t *testing.T) {
	t.Parallel()

	started := make(chan struct{}, 1)
	task := func(context.Context) error {
		select {
		case started <- struct{}{}:
		default:
		}
		return nil
	}
	svc, err := NewPeriodicService("eager", task, PeriodicConfig{Interval: time.Hour, RunOnStart: true}, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = svc.Serve(ctx) }()

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("task did not run on start")
	}
}

func TestPeriodicService_TaskErrorsDoNotStop(t *testing.T) {
	t.Parallel()

	var runs atomic.Int32
	done := make(chan struct{})
	task := func(context.Context) error {
		if runs.Add(1) == 2 {
			close(done)
		}
		return errors.New("journal busy")
	}
	svc, err := NewPeriodicService("flaky", task, PeriodicConfig{Interval: 5 * time.Millisecond}, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	select {
	case <-done:
	case err := <-errCh:
		t.Fatalf("Serve returned early: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("task was not retried")
	}
}

func TestPeriodicService_TimeoutBoundsRun(t *testing.T) {
	t.Parallel()

	deadlines := make(chan bool, 1)
	task := func(ctx context.Context) error {
		_, ok := ctx.Deadline()
		select {
		case deadlines <- ok:
		default:
		}
		return nil
	}
	cfg := PeriodicConfig{Interval: time.Hour, RunOnStart: true, Timeout: 50 * time.Millisecond}
	svc, err := NewPeriodicService("bounded", task, cfg, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = svc.Serve(ctx) }()

	select {
	case ok := <-deadlines:
		if !ok {
			t.Error("task context has no deadline")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("task did not run")
	}
}
