// Lumen - Street-Lighting Dimming Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lumen

package supervisor

import (
	"context"
	"errors"
	"sync/atomic"
)

var errSimulated = errors.New("simulated failure")

// stubService fails the first failures calls to Serve, then blocks until
// its context ends.
type stubService struct {
	name     string
	failures int32
	starts   atomic.Int32
}

func (s *stubService) Serve(ctx context.Context) error {
	if n := s.starts.Add(1); n <= s.failures {
		return errSimulated
	}
	<-ctx.Done()
	return ctx.Err()
}

func (s *stubService) String() string { return s.name }

func (s *stubService) StartCount() int32 { return s.starts.Load() }
