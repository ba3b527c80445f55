// Lumen - Street-Lighting Dimming Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lumen

package services

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"
)

var _ HTTPServer = (*http.Server)(nil)

// fakeServer blocks in ListenAndServe until Shutdown unless listenErr is set.
type fakeServer struct {
	listenErr   error
	shutdownErr error

	listens   atomic.Int32
	shutdowns atomic.Int32
	started   chan struct{}
	stop      chan struct{}
}

func newFakeServer() *fakeServer {
	return &fakeServer{started: make(chan struct{}, 1), stop: make(chan struct{})}
}

func (f *fakeServer) ListenAndServe() error {
	f.listens.Add(1)
	select {
	case f.started <- struct{}{}:
	default:
	}
	if f.listenErr != nil {
		return f.listenErr
	}
	<-f.stop
	return http.ErrServerClosed
}

func (f *fakeServer) Shutdown(context.Context) error {
	if f.shutdowns.Add(1) == 1 {
		close(f.stop)
	}
	return f.shutdownErr
}

func (f *fakeServer) waitStarted(t *testing.T) {
	t.Helper()
	select {
	case <-f.started:
	case <-time.After(2 * time.Second):
		t.Fatal("ListenAndServe was not called")
	}
}

func TestNewHTTPServerService(t *testing.T) {
	t.Parallel()

	tests := []struct {
		timeout time.Duration
		want    time.Duration
	}{
		{3 * time.Second, 3 * time.Second},
		{0, 10 * time.Second},
		{-time.Second, 10 * time.Second},
	}
	for _, tt := range tests {
		svc := NewHTTPServerService(newFakeServer(), tt.timeout, zerolog.Nop())
		if svc.shutdownTimeout != tt.want {
			t.Errorf("timeout %v: shutdownTimeout = %v, want %v", tt.timeout, svc.shutdownTimeout, tt.want)
		}
		if svc.String() != "http-server" {
			t.Errorf("String() = %q", svc.String())
		}
	}
}

func TestHTTPServerService_Serve(t *testing.T) {
	t.Parallel()

	errBind := errors.New("listen tcp :8000: bind: address already in use")
	errDrain := errors.New("context deadline exceeded while draining")

	tests := []struct {
		name        string
		listenErr   error
		shutdownErr error
		cancel      bool
		want        error
	}{
		{name: "graceful shutdown", cancel: true, want: context.Canceled},
		{name: "bind failure is returned for restart", listenErr: errBind, want: errBind},
		{name: "shutdown failure", shutdownErr: errDrain, cancel: true, want: errDrain},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := newFakeServer()
			server.listenErr, server.shutdownErr = tt.listenErr, tt.shutdownErr
			svc := NewHTTPServerService(server, time.Second, zerolog.Nop())

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			errCh := make(chan error, 1)
			go func() { errCh <- svc.Serve(ctx) }()

			server.waitStarted(t)
			if tt.cancel {
				cancel()
			}

			select {
			case err := <-errCh:
				if !errors.Is(err, tt.want) {
					t.Errorf("Serve() = %v, want %v", err, tt.want)
				}
			case <-time.After(2 * time.Second):
				t.Fatal("Serve did not return")
			}
			if tt.cancel && server.shutdowns.Load() != 1 {
				t.Errorf("Shutdown called %d times, want 1", server.shutdowns.Load())
			}
		})
	}
}

func TestHTTPServerService_UnderSupervisor(t *testing.T) {
	t.Parallel()

	server := newFakeServer()
	sup := suture.New("api-layer", suture.Spec{FailureBackoff: 10 * time.Millisecond, Timeout: 2 * time.Second})
	sup.Add(NewHTTPServerService(server, time.Second, zerolog.Nop()))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := sup.ServeBackground(ctx)
	server.waitStarted(t)
	cancel()
	<-errCh

	if server.listens.Load() != 1 || server.shutdowns.Load() != 1 {
		t.Errorf("listens = %d, shutdowns = %d, want 1/1", server.listens.Load(), server.shutdowns.Load())
	}
}

func TestHTTPServerService_ServesHealth(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()

	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true,"model_loaded":true}`))
	})
	server := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: time.Second}
	svc := NewHTTPServerService(server, time.Second, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	client := &http.Client{Timeout: time.Second}
	var resp *http.Response
	for i := 0; i < 50; i++ {
		if resp, err = client.Get("http://" + addr + "/health"); err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("server never answered: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if string(body) != `{"ok":true,"model_loaded":true}` {
		t.Errorf("body = %s", body)
	}

	cancel()
	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Serve did not return after cancellation")
	}
}
