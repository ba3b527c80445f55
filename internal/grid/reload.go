// Lumen - Street-Lighting Dimming Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lumen

package grid

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"
)

// Reloader reloads a feature file into a Store when the file's
// modification time or size changes. It is polled from a maintenance job
// rather than driven by file events, so a failed load is retried on the
// next tick and mounts without inotify support still reload.
type Reloader struct {
	store *Store
	path  string

	mu      sync.Mutex
	modTime time.Time
	size    int64
}

// NewReloader watches path. The current state of the file is taken as
// already loaded.
func NewReloader(store *Store, path string) *Reloader {
	r := &Reloader{store: store, path: path}
	if info, err := os.Stat(path); err == nil {
		r.modTime, r.size = info.ModTime(), info.Size()
	}
	return r
}

// Reload loads the file if it changed since the last successful load and
// reports whether it did. A failed load is retried on the next call.
func (r *Reloader) Reload(ctx context.Context) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	info, err := os.Stat(r.path)
	if err != nil {
		return false, fmt.Errorf("stat grid feature file: %w", err)
	}
	if info.ModTime().Equal(r.modTime) && info.Size() == r.size {
		return false, nil
	}

	if _, err := r.store.Load(ctx, r.path); err != nil {
		return false, err
	}
	r.modTime, r.size = info.ModTime(), info.Size()
	return true, nil
}
